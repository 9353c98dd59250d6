package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/puchkadas/orderbot/internal/domain"
)

// Repository loads the menu from a SQLite database.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// Load reads the full menu into a StaticCatalog. The result is immutable;
// price changes in the database require a restart to take effect.
func (r *Repository) Load(ctx context.Context) (*StaticCatalog, error) {
	itemQuery := `
		SELECT id, name
		FROM menu_items
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, itemQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		item := domain.CatalogItem{}
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for i := range items {
		variations, err := r.loadVariations(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		if len(variations) == 0 {
			return nil, fmt.Errorf("menu item %q has no variations", items[i].ID)
		}
		items[i].Variations = variations
	}

	return NewStaticCatalog(items), nil
}

func (r *Repository) loadVariations(ctx context.Context, itemID string) ([]domain.Variation, error) {
	variationQuery := `
		SELECT name, price
		FROM menu_variations
		WHERE item_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, variationQuery, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variations: %w", err)
	}
	defer rows.Close()

	var variations []domain.Variation
	for rows.Next() {
		v := domain.Variation{}
		if err := rows.Scan(&v.Name, &v.Price); err != nil {
			return nil, fmt.Errorf("failed to scan variation: %w", err)
		}
		variations = append(variations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return variations, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
