package loansvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arzeeee/libloan/model"
	loanrepo "github.com/arzeeee/libloan/repository/loan"
	"github.com/arzeeee/libloan/util/database"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound   ErrCode = "NOT_FOUND"
	ErrActiveLoan ErrCode = "ACTIVE_LOAN"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Detail = repository shape
type Detail = loanrepo.Detail

type Repo interface {
	Insert(ctx context.Context, tx database.DBTX, l *model.Loan) error
	GetForUpdate(ctx context.Context, tx database.DBTX, id int64) (*model.Loan, error)
	Update(ctx context.Context, tx database.DBTX, l *model.Loan) error
	Delete(ctx context.Context, tx database.DBTX, id int64) error

	LockBook(ctx context.Context, tx database.DBTX, id int64) (*model.Book, error)
	LockBorrower(ctx context.Context, tx database.DBTX, id int64) (*model.Borrower, error)
	OccupyingForBook(ctx context.Context, tx database.DBTX, bookID int64) ([]model.Loan, error)
	OccupyingForBorrower(ctx context.Context, tx database.DBTX, borrowerID int64) ([]model.Loan, error)

	DueActiveForUpdate(ctx context.Context, tx database.DBTX, now time.Time) ([]model.Loan, error)

	Detail(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context, status string) ([]Detail, error)
	DetailsByIDs(ctx context.Context, ids []int64) ([]Detail, error)
}

type CreateInput struct {
	BookID     int64
	BorrowerID int64
	BorrowedAt *time.Time
	DueDate    *time.Time
	Status     model.LoanStatus
}

// UpdateInput is the direct-edit path. It deliberately re-checks only the
// status enum and the due-date bound, never borrower eligibility or book
// availability; nil fields are left unchanged.
type UpdateInput struct {
	BookID     *int64
	BorrowerID *int64
	DueDate    *time.Time
	Status     *model.LoanStatus
}

type Service interface {
	// Create: apply defaults, validate against a locked snapshot, insert.
	Create(ctx context.Context, in CreateInput) (*View, error)

	Get(ctx context.Context, id int64) (*View, error)
	List(ctx context.Context, status string) ([]View, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*View, error)
	Delete(ctx context.Context, id int64) error

	// Return: move an active or overdue loan to returned.
	Return(ctx context.Context, id int64) (*View, error)

	// SweepOverdue: flip every active loan past due to overdue and report them.
	SweepOverdue(ctx context.Context) ([]View, error)
}

// ----- Service implementation -----

type txRunner func(ctx context.Context, fn func(ctx context.Context, tx database.DBTX) error) error

type service struct {
	r     Repo
	run   txRunner
	clock Clock
}

func New(db *sql.DB, r Repo) Service {
	return &service{
		r:     r,
		clock: realClock{},
		run: func(ctx context.Context, fn func(ctx context.Context, tx database.DBTX) error) error {
			return database.RunInTx(ctx, db, fn)
		},
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*View, error) {
	l := &model.Loan{
		BookID:     in.BookID,
		BorrowerID: in.BorrowerID,
		Status:     in.Status,
	}

	// Defaults are applied before validation, not as a fallback inside it.
	if in.BorrowedAt != nil {
		l.BorrowedAt = *in.BorrowedAt
	} else {
		l.BorrowedAt = s.clock.Now()
	}
	if l.Status == "" {
		l.Status = model.LoanActive
	}
	if in.DueDate != nil {
		l.DueDate = *in.DueDate
	} else if !l.BorrowedAt.IsZero() {
		l.DueDate = l.BorrowedAt.AddDate(0, 0, model.MaxLoanDays)
	}

	err := s.run(ctx, func(ctx context.Context, tx database.DBTX) error {
		// Locking both rows serializes concurrent creators per book and per
		// borrower; the snapshot below stays consistent with the insert.
		book, err := s.r.LockBook(ctx, tx, in.BookID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		borrower, err := s.r.LockBorrower(ctx, tx, in.BorrowerID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		var bookLoans, borrowerLoans []model.Loan
		if book != nil {
			if bookLoans, err = s.r.OccupyingForBook(ctx, tx, book.ID); err != nil {
				return err
			}
		}
		if borrower != nil {
			if borrowerLoans, err = s.r.OccupyingForBorrower(ctx, tx, borrower.ID); err != nil {
				return err
			}
		}

		if verrs := validateCreate(l, book, borrower, bookLoans, borrowerLoans); len(verrs) > 0 {
			return verrs
		}
		return s.r.Insert(ctx, tx, l)
	})
	if err != nil {
		var verrs model.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, verrs
		}
		// Partial-unique-index backstop: a racing creator that slipped past
		// the locks surfaces here as the same borrower-scoped error.
		if isConstraint(err, pgerrcode.UniqueViolation, "loans_one_active_per_borrower") {
			return nil, model.ValidationErrors{{Field: "borrower", Message: "already has an active loan"}}
		}
		return nil, err
	}
	return s.view(ctx, l.ID)
}

func (s *service) Get(ctx context.Context, id int64) (*View, error) {
	return s.view(ctx, id)
}

func (s *service) List(ctx context.Context, status string) ([]View, error) {
	details, err := s.r.List(ctx, status)
	if err != nil {
		return nil, err
	}
	return s.views(details), nil
}

func (s *service) Update(ctx context.Context, id int64, in UpdateInput) (*View, error) {
	var loanID int64
	err := s.run(ctx, func(ctx context.Context, tx database.DBTX) error {
		l, err := s.r.GetForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}

		prev := l.Status
		if in.BookID != nil {
			l.BookID = *in.BookID
		}
		if in.BorrowerID != nil {
			l.BorrowerID = *in.BorrowerID
		}
		if in.DueDate != nil {
			l.DueDate = *in.DueDate
		}
		if in.Status != nil {
			l.Status = *in.Status
		}

		if verrs := validateUpdate(l); len(verrs) > 0 {
			return verrs
		}

		// Keep returned_at consistent with status flips through the raw edit
		// path: stamp it entering returned, clear it anywhere else.
		if l.Status == model.LoanReturned {
			if prev != model.LoanReturned && l.ReturnedAt == nil {
				t := s.clock.Now()
				l.ReturnedAt = &t
			}
		} else {
			l.ReturnedAt = nil
		}

		loanID = l.ID
		return s.r.Update(ctx, tx, l)
	})
	if err != nil {
		var verrs model.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, verrs
		}
		if isConstraint(err, pgerrcode.ForeignKeyViolation, "loans_book_id_fkey") {
			return nil, model.ValidationErrors{{Field: "book", Message: "must exist"}}
		}
		if isConstraint(err, pgerrcode.ForeignKeyViolation, "loans_borrower_id_fkey") {
			return nil, model.ValidationErrors{{Field: "borrower", Message: "must exist"}}
		}
		if isConstraint(err, pgerrcode.UniqueViolation, "loans_one_active_per_borrower") {
			return nil, model.ValidationErrors{{Field: "borrower", Message: "already has an active loan"}}
		}
		return nil, err
	}
	return s.view(ctx, loanID)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.run(ctx, func(ctx context.Context, tx database.DBTX) error {
		l, err := s.r.GetForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		if l.Status == model.LoanActive {
			return makeErr(ErrActiveLoan)
		}
		return s.r.Delete(ctx, tx, l.ID)
	})
}

func (s *service) Return(ctx context.Context, id int64) (*View, error) {
	var loanID int64
	err := s.run(ctx, func(ctx context.Context, tx database.DBTX) error {
		l, err := s.r.GetForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		if err := l.Return(s.clock.Now()); err != nil {
			return err
		}
		loanID = l.ID
		return s.r.Update(ctx, tx, l)
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, loanID)
}

func (s *service) SweepOverdue(ctx context.Context) ([]View, error) {
	now := s.clock.Now()
	var ids []int64
	err := s.run(ctx, func(ctx context.Context, tx database.DBTX) error {
		due, err := s.r.DueActiveForUpdate(ctx, tx, now)
		if err != nil {
			return err
		}
		for i := range due {
			l := &due[i]
			if !l.MarkOverdue(now) {
				continue
			}
			if err := s.r.Update(ctx, tx, l); err != nil {
				return err
			}
			ids = append(ids, l.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	details, err := s.r.DetailsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.views(details), nil
}

func (s *service) view(ctx context.Context, id int64) (*View, error) {
	d, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	v := buildView(d, s.clock.Now())
	return &v, nil
}

func (s *service) views(details []Detail) []View {
	now := s.clock.Now()
	out := make([]View, len(details))
	for i := range details {
		out[i] = buildView(&details[i], now)
	}
	return out
}

func isConstraint(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code && pgErr.ConstraintName == constraint
}
