package borrowersvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arzeeee/libloan/model"
	borrowerrepo "github.com/arzeeee/libloan/repository/borrower"
	"github.com/arzeeee/libloan/util/database"
)

type ErrCode string

const (
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrHasActiveLoan ErrCode = "HAS_ACTIVE_LOAN"
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
type Detail = borrowerrepo.Detail

type Repo interface {
	Create(ctx context.Context, p *model.Borrower) error
	Get(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context) ([]Detail, error)
	Update(ctx context.Context, p *model.Borrower) error

	GetForUpdate(ctx context.Context, tx database.DBTX, id int64) (*model.Borrower, error)
	HasOccupyingLoans(ctx context.Context, tx database.DBTX, borrowerID int64) (bool, error)
	Delete(ctx context.Context, tx database.DBTX, id int64) error
}

type CreateInput struct {
	IDCardNumber string
	Name         string
	Email        string
}

type UpdateInput struct {
	IDCardNumber *string
	Name         *string
	Email        *string
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*Detail, error)
	Get(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context) ([]Detail, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Detail, error)

	// Delete is blocked while the borrower holds any active or overdue loan.
	Delete(ctx context.Context, id int64) error
}

type txRunner func(ctx context.Context, fn func(ctx context.Context, tx database.DBTX) error) error

type service struct {
	r   Repo
	run txRunner
}

var validate = validator.New()

func New(db *sql.DB, r Repo) Service {
	return &service{
		r: r,
		run: func(ctx context.Context, fn func(ctx context.Context, tx database.DBTX) error) error {
			return database.RunInTx(ctx, db, fn)
		},
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Detail, error) {
	p := model.Borrower{IDCardNumber: in.IDCardNumber, Name: in.Name, Email: in.Email}
	if verrs := validateBorrower(&p); len(verrs) > 0 {
		return nil, verrs
	}
	if err := s.r.Create(ctx, &p); err != nil {
		if verrs := mapDuplicateErr(err); verrs != nil {
			return nil, verrs
		}
		return nil, err
	}
	return s.r.Get(ctx, p.ID)
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

	p := d.Borrower
	if in.IDCardNumber != nil {
		p.IDCardNumber = *in.IDCardNumber
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Email != nil {
		p.Email = *in.Email
	}

	if verrs := validateBorrower(&p); len(verrs) > 0 {
		return nil, verrs
	}
	if err := s.r.Update(ctx, &p); err != nil {
		if verrs := mapDuplicateErr(err); verrs != nil {
			return nil, verrs
		}
		return nil, err
	}
	return s.r.Get(ctx, p.ID)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.run(ctx, func(ctx context.Context, tx database.DBTX) error {
		p, err := s.r.GetForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		occupied, err := s.r.HasOccupyingLoans(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if occupied {
			return makeErr(ErrHasActiveLoan)
		}
		return s.r.Delete(ctx, tx, p.ID)
	})
}

func validateBorrower(p *model.Borrower) model.ValidationErrors {
	var errs model.ValidationErrors
	if p.IDCardNumber == "" {
		errs.Add("id_card_number", "can't be blank")
	}
	if p.Name == "" {
		errs.Add("name", "can't be blank")
	}
	if p.Email == "" {
		errs.Add("email", "can't be blank")
	} else if validate.Var(p.Email, "email") != nil {
		errs.Add("email", "is invalid")
	}
	return errs
}

func mapDuplicateErr(err error) model.ValidationErrors {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if strings.Contains(strings.ToLower(pgErr.ConstraintName), "id_card_number") {
			return model.ValidationErrors{{Field: "id_card_number", Message: "has already been taken"}}
		}
	}
	return nil
}
