package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arzeeee/libloan/model"
	bookrepo "github.com/arzeeee/libloan/repository/book"
	"github.com/arzeeee/libloan/util/database"
)

type ErrCode string

const (
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrHasActiveLoans ErrCode = "HAS_ACTIVE_LOANS"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Detail = repository shape
type Detail = bookrepo.Detail

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	Get(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context) ([]Detail, error)
	Update(ctx context.Context, b *model.Book) error

	GetForUpdate(ctx context.Context, tx database.DBTX, id int64) (*model.Book, error)
	HasActiveLoans(ctx context.Context, tx database.DBTX, bookID int64) (bool, error)
	Delete(ctx context.Context, tx database.DBTX, id int64) error
}

type CreateInput struct {
	Title string
	Isbn  string
	Stock int
}

type UpdateInput struct {
	Title *string
	Isbn  *string
	Stock *int
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*Detail, error)
	Get(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context) ([]Detail, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Detail, error)

	// Delete is blocked while the book has loans with status active. Overdue
	// loans do not block it; remaining loans go with the book.
	Delete(ctx context.Context, id int64) error
}

type txRunner func(ctx context.Context, fn func(ctx context.Context, tx database.DBTX) error) error

type service struct {
	r   Repo
	run txRunner
}

func New(db *sql.DB, r Repo) Service {
	return &service{
		r: r,
		run: func(ctx context.Context, fn func(ctx context.Context, tx database.DBTX) error) error {
			return database.RunInTx(ctx, db, fn)
		},
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Detail, error) {
	b := model.Book{Title: in.Title, Isbn: in.Isbn, Stock: in.Stock}
	if verrs := validateBook(&b); len(verrs) > 0 {
		return nil, verrs
	}
	if err := s.r.Create(ctx, &b); err != nil {
		if verrs := mapDuplicateErr(err); verrs != nil {
			return nil, verrs
		}
		return nil, err
	}
	return s.r.Get(ctx, b.ID)
}

func (s *service) Get(ctx context.Context, id int64) (*Detail, error) {
	d, err := s.r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return d, nil
}

func (s *service) List(ctx context.Context) ([]Detail, error) {
	return s.r.List(ctx)
}

func (s *service) Update(ctx context.Context, id int64, in UpdateInput) (*Detail, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	b := d.Book
	if in.Title != nil {
		b.Title = *in.Title
	}
	if in.Isbn != nil {
		b.Isbn = *in.Isbn
	}
	if in.Stock != nil {
		b.Stock = *in.Stock
	}

	if verrs := validateBook(&b); len(verrs) > 0 {
		return nil, verrs
	}
	if err := s.r.Update(ctx, &b); err != nil {
		if verrs := mapDuplicateErr(err); verrs != nil {
			return nil, verrs
		}
		return nil, err
	}
	return s.r.Get(ctx, b.ID)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.run(ctx, func(ctx context.Context, tx database.DBTX) error {
		b, err := s.r.GetForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		active, err := s.r.HasActiveLoans(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		if active {
			return makeErr(ErrHasActiveLoans)
		}
		return s.r.Delete(ctx, tx, b.ID)
	})
}

func validateBook(b *model.Book) model.ValidationErrors {
	var errs model.ValidationErrors
	if b.Title == "" {
		errs.Add("title", "can't be blank")
	}
	if b.Isbn == "" {
		errs.Add("isbn", "can't be blank")
	}
	if b.Stock < 0 {
		errs.Add("stock", "must be greater than or equal to 0")
	}
	return errs
}

func mapDuplicateErr(err error) model.ValidationErrors {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if strings.Contains(strings.ToLower(pgErr.ConstraintName), "isbn") {
			return model.ValidationErrors{{Field: "isbn", Message: "has already been taken"}}
		}
	}
	return nil
}
