// repository/borrower/borrowerRepository.go
package borrowerrepo

import (
	"context"
	"database/sql"

	"github.com/arzeeee/libloan/model"
	"github.com/arzeeee/libloan/util/database"
)

// Detail carries a borrower with its derived loan state. ActiveLoanID is the
// lowest-id occupying loan; more than one would be a data-integrity
// violation, MIN keeps the lookup deterministic anyway.
type Detail struct {
	model.Borrower
	HasActiveLoan bool   `json:"has_active_loan"`
	ActiveLoanID  *int64 `json:"active_loan"`
}

type Repo interface {
	Create(ctx context.Context, p *model.Borrower) error
	Get(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context) ([]Detail, error)
	Update(ctx context.Context, p *model.Borrower) error

	GetForUpdate(ctx context.Context, tx database.DBTX, id int64) (*model.Borrower, error)
	HasOccupyingLoans(ctx context.Context, tx database.DBTX, borrowerID int64) (bool, error)
	Delete(ctx context.Context, tx database.DBTX, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, p *model.Borrower) error {
	const q = `
		INSERT INTO borrowers (id_card_number, name, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, q, p.IDCardNumber, p.Name, p.Email).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

const detailColumns = `
		p.id, p.id_card_number, p.name, p.email, p.created_at, p.updated_at,
		COUNT(l.id) FILTER (WHERE l.status IN ('active','overdue')) > 0 AS has_active_loan,
		MIN(l.id) FILTER (WHERE l.status IN ('active','overdue')) AS active_loan_id`

func (r *repo) Get(ctx context.Context, id int64) (*Detail, error) {
	const q = `
		SELECT` + detailColumns + `
		FROM borrowers p
		LEFT JOIN loans l ON l.borrower_id = p.id
		WHERE p.id = $1
		GROUP BY p.id`
	var d Detail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.IDCardNumber, &d.Name, &d.Email, &d.CreatedAt, &d.UpdatedAt,
		&d.HasActiveLoan, &d.ActiveLoanID,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) List(ctx context.Context) ([]Detail, error) {
	const q = `
		SELECT` + detailColumns + `
		FROM borrowers p
		LEFT JOIN loans l ON l.borrower_id = p.id
		GROUP BY p.id
		ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(
			&d.ID, &d.IDCardNumber, &d.Name, &d.Email, &d.CreatedAt, &d.UpdatedAt,
			&d.HasActiveLoan, &d.ActiveLoanID,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, p *model.Borrower) error {
	const q = `
		UPDATE borrowers
		SET id_card_number = $2, name = $3, email = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.db.QueryRowContext(ctx, q, p.ID, p.IDCardNumber, p.Name, p.Email).Scan(&p.UpdatedAt)
}

func (r *repo) GetForUpdate(ctx context.Context, tx database.DBTX, id int64) (*model.Borrower, error) {
	const q = `
		SELECT id, id_card_number, name, email, created_at, updated_at
		FROM borrowers
		WHERE id = $1
		FOR UPDATE`
	var p model.Borrower
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.IDCardNumber, &p.Name, &p.Email, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// HasOccupyingLoans covers both active and overdue, unlike the book guard.
func (r *repo) HasOccupyingLoans(ctx context.Context, tx database.DBTX, borrowerID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE borrower_id = $1 AND status IN ('active','overdue')
		)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, borrowerID).Scan(&exists)
	return exists, err
}

func (r *repo) Delete(ctx context.Context, tx database.DBTX, id int64) error {
	const q = `DELETE FROM borrowers WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
