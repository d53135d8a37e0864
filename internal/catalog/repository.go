package catalog

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_checkout/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Repository reads the product catalog from SQLite.
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

	// one connection: ":memory:" databases are per connection, and writes
	// serialise in SQLite anyway
	db.SetMaxOpenConns(1)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// Snapshot loads every product with its variants.
func (r *Repository) Snapshot(ctx context.Context) (*Catalog, error) {
	products, err := r.queryProducts(ctx, `
		SELECT id, name, price, stock_quantity, weight
		FROM products
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}

	variants, err := r.queryVariants(ctx, `
		SELECT product_id, id, price, stock_quantity, weight, attributes
		FROM product_variants
		ORDER BY product_id, position, id
	`)
	if err != nil {
		return nil, err
	}

	for i := range products {
		products[i].Variants = variants[products[i].ID]
	}
	return New(products...), nil
}

func (r *Repository) GetProduct(ctx context.Context, id domain.ID) (*domain.Product, error) {
	products, err := r.queryProducts(ctx, `
		SELECT id, name, price, stock_quantity, weight
		FROM products
		WHERE id = $1
	`, id.String())
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}

	variants, err := r.queryVariants(ctx, `
		SELECT product_id, id, price, stock_quantity, weight, attributes
		FROM product_variants
		WHERE product_id = $1
		ORDER BY position, id
	`, id.String())
	if err != nil {
		return nil, err
	}

	p := products[0]
	p.Variants = variants[p.ID]
	return &p, nil
}

// UpsertProduct replaces a product and all of its variants.
func (r *Repository) UpsertProduct(ctx context.Context, p domain.Product) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const upsertProductSQL = `
INSERT INTO products (id, name, price, stock_quantity, weight)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET name = excluded.name, price = excluded.price,
    stock_quantity = excluded.stock_quantity, weight = excluded.weight
`
	if _, err = tx.ExecContext(ctx, upsertProductSQL,
		p.ID.String(), p.Name, nullable(p.Price), nullable(p.StockQuantity), nullable(p.Weight)); err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM product_variants WHERE product_id = $1`, p.ID.String()); err != nil {
		return fmt.Errorf("failed to clear variants of %s: %w", p.ID, err)
	}

	for i, v := range p.Variants {
		var attrs sql.NullString
		if v.Attributes != nil {
			b, mErr := json.Marshal(v.Attributes)
			if mErr != nil {
				err = fmt.Errorf("failed to encode attributes of variant %s: %w", v.ID, mErr)
				return err
			}
			attrs = sql.NullString{String: string(b), Valid: true}
		}
		if _, err = tx.ExecContext(ctx, `
INSERT INTO product_variants (id, product_id, price, stock_quantity, weight, attributes, position)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			v.ID.String(), p.ID.String(), nullable(v.Price), nullable(v.StockQuantity), nullable(v.Weight), attrs, i); err != nil {
			return fmt.Errorf("failed to insert variant %s: %w", v.ID, err)
		}
	}

	err = tx.Commit()
	return err
}

func (r *Repository) DeleteProduct(ctx context.Context, id domain.ID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM product_variants WHERE product_id = $1`, id.String()); err != nil {
		return fmt.Errorf("failed to delete variants of %s: %w", id, err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			id                   string
			p                    domain.Product
			price, stock, weight sql.NullString
		)
		if err := rows.Scan(&id, &p.Name, &price, &stock, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.ID = domain.ID(id)
		p.Price = number(price)
		p.StockQuantity = number(stock)
		p.Weight = number(weight)
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (r *Repository) queryVariants(ctx context.Context, query string, args ...any) (map[domain.ID][]domain.Variant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.ID][]domain.Variant)
	for rows.Next() {
		var (
			productID, id               string
			price, stock, weight, attrs sql.NullString
		)
		if err := rows.Scan(&productID, &id, &price, &stock, &weight, &attrs); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		v := domain.Variant{
			ID:            domain.ID(id),
			Price:         number(price),
			StockQuantity: number(stock),
			Weight:        number(weight),
		}
		if attrs.Valid && attrs.String != "" {
			if err := json.Unmarshal([]byte(attrs.String), &v.Attributes); err != nil {
				return nil, fmt.Errorf("failed to decode attributes of variant %s: %w", id, err)
			}
		}
		out[domain.ID(productID)] = append(out[domain.ID(productID)], v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

func number(s sql.NullString) domain.Number {
	if !s.Valid {
		return domain.Number{}
	}
	return domain.RawNumber(s.String)
}

func nullable(n domain.Number) sql.NullString {
	raw, ok := n.Raw()
	return sql.NullString{String: raw, Valid: ok}
}
