// repository/book/bookRepository.go
package bookrepo

import (
	"context"
	"database/sql"

	"github.com/arzeeee/libloan/model"
	"github.com/arzeeee/libloan/util/database"
)

// Detail carries a book together with its derived availability, computed in
// SQL over the current loan set.
type Detail struct {
	model.Book
	AvailableStock int `json:"available_stock"`
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	Get(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context) ([]Detail, error)
	Update(ctx context.Context, b *model.Book) error

	GetForUpdate(ctx context.Context, tx database.DBTX, id int64) (*model.Book, error)
	HasActiveLoans(ctx context.Context, tx database.DBTX, bookID int64) (bool, error)
	Delete(ctx context.Context, tx database.DBTX, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, isbn, stock)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, q, b.Title, b.Isbn, b.Stock).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

const detailColumns = `
		b.id, b.title, b.isbn, b.stock, b.created_at, b.updated_at,
		(b.stock - COUNT(l.id) FILTER (WHERE l.status IN ('active','overdue')))::INT AS available_stock`

func (r *repo) Get(ctx context.Context, id int64) (*Detail, error) {
	const q = `
		SELECT` + detailColumns + `
		FROM books b
		LEFT JOIN loans l ON l.book_id = b.id
		WHERE b.id = $1
		GROUP BY b.id`
	var d Detail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.Title, &d.Isbn, &d.Stock, &d.CreatedAt, &d.UpdatedAt, &d.AvailableStock,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) List(ctx context.Context) ([]Detail, error) {
	const q = `
		SELECT` + detailColumns + `
		FROM books b
		LEFT JOIN loans l ON l.book_id = b.id
		GROUP BY b.id
		ORDER BY b.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(
			&d.ID, &d.Title, &d.Isbn, &d.Stock, &d.CreatedAt, &d.UpdatedAt, &d.AvailableStock,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET title = $2, isbn = $3, stock = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.db.QueryRowContext(ctx, q, b.ID, b.Title, b.Isbn, b.Stock).Scan(&b.UpdatedAt)
}

func (r *repo) GetForUpdate(ctx context.Context, tx database.DBTX, id int64) (*model.Book, error) {
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

// HasActiveLoans checks status = 'active' only. Overdue loans do not block
// book deletion.
func (r *repo) HasActiveLoans(ctx context.Context, tx database.DBTX, bookID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE book_id = $1 AND status = 'active'
		)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&exists)
	return exists, err
}

func (r *repo) Delete(ctx context.Context, tx database.DBTX, id int64) error {
	const q = `DELETE FROM books WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
