// repository/loan/loanRepository.go
package loanrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/arzeeee/libloan/model"
	"github.com/arzeeee/libloan/util/database"
)

// Detail is a loan joined with the book and borrower fields the API embeds.
type Detail struct {
	model.Loan
	BookTitle      string
	BookIsbn       string
	BorrowerName   string
	BorrowerIDCard string
}

type Repo interface {
	Insert(ctx context.Context, tx database.DBTX, l *model.Loan) error
	GetForUpdate(ctx context.Context, tx database.DBTX, id int64) (*model.Loan, error)
	Update(ctx context.Context, tx database.DBTX, l *model.Loan) error
	Delete(ctx context.Context, tx database.DBTX, id int64) error

	// Creation-time snapshot reads. Both run inside the create transaction
	// after the book and borrower rows are locked.
	LockBook(ctx context.Context, tx database.DBTX, id int64) (*model.Book, error)
	LockBorrower(ctx context.Context, tx database.DBTX, id int64) (*model.Borrower, error)
	OccupyingForBook(ctx context.Context, tx database.DBTX, bookID int64) ([]model.Loan, error)
	OccupyingForBorrower(ctx context.Context, tx database.DBTX, borrowerID int64) ([]model.Loan, error)

	DueActiveForUpdate(ctx context.Context, tx database.DBTX, now time.Time) ([]model.Loan, error)

	Detail(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context, status string) ([]Detail, error)
	DetailsByIDs(ctx context.Context, ids []int64) ([]Detail, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx database.DBTX, l *model.Loan) error {
	const q = `
		INSERT INTO loans (book_id, borrower_id, borrowed_at, due_date, returned_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return tx.QueryRowContext(ctx, q,
		l.BookID, l.BorrowerID, l.BorrowedAt, l.DueDate, l.ReturnedAt, l.Status,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

const loanColumns = `id, book_id, borrower_id, borrowed_at, due_date, returned_at, status, created_at, updated_at`

func scanLoan(row interface{ Scan(...any) error }, l *model.Loan) error {
	return row.Scan(
		&l.ID, &l.BookID, &l.BorrowerID, &l.BorrowedAt, &l.DueDate,
		&l.ReturnedAt, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
}

func (r *repo) GetForUpdate(ctx context.Context, tx database.DBTX, id int64) (*model.Loan, error) {
	const q = `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1
		FOR UPDATE`
	var l model.Loan
	if err := scanLoan(tx.QueryRowContext(ctx, q, id), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repo) Update(ctx context.Context, tx database.DBTX, l *model.Loan) error {
	const q = `
		UPDATE loans
		SET book_id = $2, borrower_id = $3, borrowed_at = $4, due_date = $5,
			returned_at = $6, status = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return tx.QueryRowContext(ctx, q,
		l.ID, l.BookID, l.BorrowerID, l.BorrowedAt, l.DueDate, l.ReturnedAt, l.Status,
	).Scan(&l.UpdatedAt)
}

func (r *repo) Delete(ctx context.Context, tx database.DBTX, id int64) error {
	const q = `DELETE FROM loans WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// LockBook serializes concurrent loan creation on the same book, so the
// availability check and the insert see one consistent snapshot.
func (r *repo) LockBook(ctx context.Context, tx database.DBTX, id int64) (*model.Book, error) {
	const q = `
		SELECT id, title, isbn, stock, created_at, updated_at
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var b model.Book
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Title, &b.Isbn, &b.Stock, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) LockBorrower(ctx context.Context, tx database.DBTX, id int64) (*model.Borrower, error) {
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

func (r *repo) OccupyingForBook(ctx context.Context, tx database.DBTX, bookID int64) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE book_id = $1 AND status IN ('active','overdue')
		ORDER BY id`
	return queryLoans(ctx, tx, q, bookID)
}

func (r *repo) OccupyingForBorrower(ctx context.Context, tx database.DBTX, borrowerID int64) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE borrower_id = $1 AND status IN ('active','overdue')
		ORDER BY id`
	return queryLoans(ctx, tx, q, borrowerID)
}

func (r *repo) DueActiveForUpdate(ctx context.Context, tx database.DBTX, now time.Time) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = 'active' AND due_date < $1
		ORDER BY id
		FOR UPDATE`
	return queryLoans(ctx, tx, q, now)
}

func queryLoans(ctx context.Context, tx database.DBTX, q string, args ...any) ([]model.Loan, error) {
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Loan
	for rows.Next() {
		var l model.Loan
		if err := scanLoan(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

const detailQuery = `
		SELECT
			l.id, l.book_id, l.borrower_id, l.borrowed_at, l.due_date,
			l.returned_at, l.status, l.created_at, l.updated_at,
			b.title, b.isbn, p.name, p.id_card_number
		FROM loans l
		JOIN books b ON b.id = l.book_id
		JOIN borrowers p ON p.id = l.borrower_id`

func scanDetail(row interface{ Scan(...any) error }, d *Detail) error {
	return row.Scan(
		&d.ID, &d.BookID, &d.BorrowerID, &d.BorrowedAt, &d.DueDate,
		&d.ReturnedAt, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.BookTitle, &d.BookIsbn, &d.BorrowerName, &d.BorrowerIDCard,
	)
}

func (r *repo) Detail(ctx context.Context, id int64) (*Detail, error) {
	const q = detailQuery + `
		WHERE l.id = $1`
	var d Detail
	if err := scanDetail(r.db.QueryRowContext(ctx, q, id), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) List(ctx context.Context, status string) ([]Detail, error) {
	q := detailQuery
	var args []any
	if status != "" {
		q += `
		WHERE l.status = $1`
		args = append(args, status)
	}
	q += `
		ORDER BY l.id`
	return r.queryDetails(ctx, q, args...)
}

func (r *repo) DetailsByIDs(ctx context.Context, ids []int64) ([]Detail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = detailQuery + `
		WHERE l.id = ANY($1)
		ORDER BY l.id`
	return r.queryDetails(ctx, q, ids)
}

func (r *repo) queryDetails(ctx context.Context, q string, args ...any) ([]Detail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Detail
	for rows.Next() {
		var d Detail
		if err := scanDetail(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
