package domain

import "time"

// Stage is the step of the ordering funnel a session currently occupies.
type Stage string

const (
	StageGreeting             Stage = "GREETING"
	StageChoosingItem         Stage = "CHOOSING_ITEM"
	StageChoosingVariation    Stage = "CHOOSING_VARIATION"
	StageChoosingQuantity     Stage = "CHOOSING_QUANTITY"
	StageOrdering             Stage = "ORDERING"
	StageAwaitingConfirmation Stage = "AWAITING_CONFIRMATION"
)

// String representation (for logging)
func (s Stage) String() string {
	return string(s)
}

// Session is one user's in-progress conversation. Cart lines are appended
// in selection order and never reordered or merged.
type Session struct {
	UserID           string     `json:"user_id"`
	Stage            Stage      `json:"stage"`
	Cart             []CartLine `json:"cart"`
	PendingItemID    string     `json:"pending_item_id,omitempty"`
	PendingVariation string     `json:"pending_variation,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewSession(userID string) *Session {
	now := time.Now()
	return &Session{
		UserID:    userID,
		Stage:     StageGreeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ClearPending drops the half-selected item. A pending variation must never
// outlive its pending item, so both are cleared together.
func (s *Session) ClearPending() {
	s.PendingItemID = ""
	s.PendingVariation = ""
}
