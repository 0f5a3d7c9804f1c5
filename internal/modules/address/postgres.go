package address

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed address repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectSQL = `
	SELECT id, user_id, label, full_name, whatsapp, address, reference, notes, is_default, created_at
	FROM addresses`

func (r *postgresRepo) Create(ctx context.Context, a *Address) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if err := clearDefault(ctx, tx, a.UserID); err != nil {
			return err
		}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO addresses
		  (id, user_id, label, full_name, whatsapp, address, reference, notes, is_default)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.UserID, a.Label, a.FullName, a.Whatsapp, a.Address, a.Reference, a.Notes, a.IsDefault)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return tx.Commit()
}

func (r *postgresRepo) Update(ctx context.Context, a *Address) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if err := clearDefault(ctx, tx, a.UserID); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE addresses
		SET label=$1, full_name=$2, whatsapp=$3, address=$4, reference=$5, notes=$6, is_default=$7
		WHERE id=$8 AND user_id=$9`,
		a.Label, a.FullName, a.Whatsapp, a.Address, a.Reference, a.Notes, a.IsDefault, a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

func (r *postgresRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM addresses WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*Address, error) {
	return scanAddress(r.db.QueryRowContext(ctx, selectSQL+` WHERE id=$1 AND user_id=$2`, id, userID).Scan)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Address, error) {
	rows, err := r.db.QueryContext(ctx,
		selectSQL+` WHERE user_id=$1 ORDER BY is_default DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := []*Address{}
	for rows.Next() {
		a, err := scanAddress(rows.Scan)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (r *postgresRepo) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := clearDefault(ctx, tx, userID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_default=TRUE WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

func scanAddress(scan func(...interface{}) error) (*Address, error) {
	a := &Address{}
	err := scan(&a.ID, &a.UserID, &a.Label, &a.FullName, &a.Whatsapp,
		&a.Address, &a.Reference, &a.Notes, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func clearDefault(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_default=FALSE WHERE user_id=$1 AND is_default`, userID)
	return err
}
