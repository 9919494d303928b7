package borrowersvc

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzeeee/libloan/model"
	"github.com/arzeeee/libloan/util/database"
)

var _ Repo = (*mockRepo)(nil)

type mockRepo struct {
	createFn       func(ctx context.Context, p *model.Borrower) error
	getFn          func(ctx context.Context, id int64) (*Detail, error)
	listFn         func(ctx context.Context) ([]Detail, error)
	updateFn       func(ctx context.Context, p *model.Borrower) error
	getForUpdateFn func(ctx context.Context, tx database.DBTX, id int64) (*model.Borrower, error)
	hasOccupyingFn func(ctx context.Context, tx database.DBTX, borrowerID int64) (bool, error)
	deleteFn       func(ctx context.Context, tx database.DBTX, id int64) error
}

func (m *mockRepo) Create(ctx context.Context, p *model.Borrower) error { return m.createFn(ctx, p) }
func (m *mockRepo) Get(ctx context.Context, id int64) (*Detail, error) {
	return m.getFn(ctx, id)
}
func (m *mockRepo) List(ctx context.Context) ([]Detail, error)          { return m.listFn(ctx) }
func (m *mockRepo) Update(ctx context.Context, p *model.Borrower) error { return m.updateFn(ctx, p) }
func (m *mockRepo) GetForUpdate(ctx context.Context, tx database.DBTX, id int64) (*model.Borrower, error) {
	return m.getForUpdateFn(ctx, tx, id)
}
func (m *mockRepo) HasOccupyingLoans(ctx context.Context, tx database.DBTX, borrowerID int64) (bool, error) {
	return m.hasOccupyingFn(ctx, tx, borrowerID)
}
func (m *mockRepo) Delete(ctx context.Context, tx database.DBTX, id int64) error {
	return m.deleteFn(ctx, tx, id)
}

func newSvc(m *mockRepo) *service {
	return &service{
		r: m,
		run: func(ctx context.Context, fn func(context.Context, database.DBTX) error) error {
			return fn(ctx, nil)
		},
	}
}

func TestCreateValidation(t *testing.T) {
	s := newSvc(&mockRepo{})

	_, err := s.Create(context.Background(), CreateInput{})

	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{
		"Id card number can't be blank",
		"Name can't be blank",
		"Email can't be blank",
	}, verrs.FullMessages())
}

func TestCreateInvalidEmail(t *testing.T) {
	s := newSvc(&mockRepo{})

	_, err := s.Create(context.Background(), CreateInput{
		IDCardNumber: "CARD-001",
		Name:         "Alice",
		Email:        "not-an-email",
	})

	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"Email is invalid"}, verrs.FullMessages())
}

func TestCreateDuplicateCard(t *testing.T) {
	m := &mockRepo{
		createFn: func(_ context.Context, _ *model.Borrower) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "borrowers_id_card_number_key"}
		},
	}
	s := newSvc(m)

	_, err := s.Create(context.Background(), CreateInput{
		IDCardNumber: "CARD-001",
		Name:         "Alice",
		Email:        "alice@example.com",
	})

	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.FullMessages(), "Id card number has already been taken")
}

func TestCreateOK(t *testing.T) {
	m := &mockRepo{
		createFn: func(_ context.Context, p *model.Borrower) error {
			p.ID = 3
			return nil
		},
		getFn: func(_ context.Context, id int64) (*Detail, error) {
			return &Detail{
				Borrower: model.Borrower{ID: id, IDCardNumber: "CARD-001", Name: "Alice", Email: "alice@example.com"},
			}, nil
		},
	}
	s := newSvc(m)

	d, err := s.Create(context.Background(), CreateInput{
		IDCardNumber: "CARD-001",
		Name:         "Alice",
		Email:        "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.ID)
	assert.False(t, d.HasActiveLoan)
}

func TestUpdatePartial(t *testing.T) {
	var saved model.Borrower
	m := &mockRepo{
		getFn: func(_ context.Context, id int64) (*Detail, error) {
			return &Detail{
				Borrower: model.Borrower{ID: id, IDCardNumber: "CARD-001", Name: "Alice", Email: "alice@example.com"},
			}, nil
		},
		updateFn: func(_ context.Context, p *model.Borrower) error {
			saved = *p
			return nil
		},
	}
	s := newSvc(m)

	name := "Alice B."
	_, err := s.Update(context.Background(), 3, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", saved.Name)
	assert.Equal(t, "alice@example.com", saved.Email)
}

func TestGetNotFound(t *testing.T) {
	m := &mockRepo{
		getFn: func(_ context.Context, _ int64) (*Detail, error) { return nil, sql.ErrNoRows },
	}
	s := newSvc(m)

	_, err := s.Get(context.Background(), 99)
	assert.Equal(t, ErrNotFound, Code(err))
}

func TestDelete(t *testing.T) {
	t.Run("blocked while a loan is open", func(t *testing.T) {
		// HasOccupyingLoans counts overdue as well as active, so an overdue
		// borrower is still protected.
		deleted := false
		m := &mockRepo{
			getForUpdateFn: func(_ context.Context, _ database.DBTX, id int64) (*model.Borrower, error) {
				return &model.Borrower{ID: id}, nil
			},
			hasOccupyingFn: func(_ context.Context, _ database.DBTX, _ int64) (bool, error) {
				return true, nil
			},
			deleteFn: func(_ context.Context, _ database.DBTX, _ int64) error {
				deleted = true
				return nil
			},
		}
		s := newSvc(m)

		err := s.Delete(context.Background(), 3)
		assert.Equal(t, ErrHasActiveLoan, Code(err))
		assert.False(t, deleted)
	})

	t.Run("returned-only history deletes", func(t *testing.T) {
		deleted := false
		m := &mockRepo{
			getForUpdateFn: func(_ context.Context, _ database.DBTX, id int64) (*model.Borrower, error) {
				return &model.Borrower{ID: id}, nil
			},
			hasOccupyingFn: func(_ context.Context, _ database.DBTX, _ int64) (bool, error) {
				return false, nil
			},
			deleteFn: func(_ context.Context, _ database.DBTX, _ int64) error {
				deleted = true
				return nil
			},
		}
		s := newSvc(m)

		require.NoError(t, s.Delete(context.Background(), 3))
		assert.True(t, deleted)
	})

	t.Run("missing borrower", func(t *testing.T) {
		m := &mockRepo{
			getForUpdateFn: func(_ context.Context, _ database.DBTX, _ int64) (*model.Borrower, error) {
				return nil, sql.ErrNoRows
			},
		}
		s := newSvc(m)

		err := s.Delete(context.Background(), 99)
		assert.Equal(t, ErrNotFound, Code(err))
	})
}
