package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed catalog repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectSQL = `
	SELECT id, name, description, price, stock, image_url, is_active, created_at, updated_at
	FROM products`

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, stock, image_url, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.IsActive)
	return err
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name=$1, description=$2, price=$3, stock=$4, image_url=$5, is_active=$6, updated_at=$7
		WHERE id=$8`,
		p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.IsActive, time.Now(), p.ID)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, selectSQL+` WHERE id=$1`, id).Scan)
}

func (r *postgresRepo) GetActive(ctx context.Context, id uuid.UUID) (*Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, selectSQL+` WHERE id=$1 AND is_active=true`, id).Scan)
}

func (r *postgresRepo) ListActive(ctx context.Context, params ListParams) ([]*Product, error) {
	query := selectSQL + ` WHERE is_active=true`
	args := []interface{}{}
	n := 1

	if params.Query != "" {
		query += fmt.Sprintf(` AND (name ILIKE $%d OR description ILIKE $%d)`, n, n)
		args = append(args, "%"+params.Query+"%")
		n++
	}
	if params.MinPrice != nil {
		query += fmt.Sprintf(` AND price >= $%d`, n)
		args = append(args, *params.MinPrice)
		n++
	}
	if params.MaxPrice != nil {
		query += fmt.Sprintf(` AND price <= $%d`, n)
		args = append(args, *params.MaxPrice)
		n++
	}

	switch params.Sort {
	case SortPriceAsc:
		query += ` ORDER BY price ASC`
	case SortPriceDesc:
		query += ` ORDER BY price DESC`
	default:
		query += ` ORDER BY created_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *postgresRepo) ListActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error) {
	if len(ids) == 0 {
		return []*Product{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		selectSQL+` WHERE id = ANY($1) AND is_active=true`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	err := scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func collectProducts(rows *sql.Rows) ([]*Product, error) {
	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if products == nil {
		products = []*Product{}
	}
	return products, rows.Err()
}
