package booksvc

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
	createFn       func(ctx context.Context, b *model.Book) error
	getFn          func(ctx context.Context, id int64) (*Detail, error)
	listFn         func(ctx context.Context) ([]Detail, error)
	updateFn       func(ctx context.Context, b *model.Book) error
	getForUpdateFn func(ctx context.Context, tx database.DBTX, id int64) (*model.Book, error)
	hasActiveFn    func(ctx context.Context, tx database.DBTX, bookID int64) (bool, error)
	deleteFn       func(ctx context.Context, tx database.DBTX, id int64) error
}

func (m *mockRepo) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *mockRepo) Get(ctx context.Context, id int64) (*Detail, error) {
	return m.getFn(ctx, id)
}
func (m *mockRepo) List(ctx context.Context) ([]Detail, error)      { return m.listFn(ctx) }
func (m *mockRepo) Update(ctx context.Context, b *model.Book) error { return m.updateFn(ctx, b) }
func (m *mockRepo) GetForUpdate(ctx context.Context, tx database.DBTX, id int64) (*model.Book, error) {
	return m.getForUpdateFn(ctx, tx, id)
}
func (m *mockRepo) HasActiveLoans(ctx context.Context, tx database.DBTX, bookID int64) (bool, error) {
	return m.hasActiveFn(ctx, tx, bookID)
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

	_, err := s.Create(context.Background(), CreateInput{Stock: -1})

	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{
		"Title can't be blank",
		"Isbn can't be blank",
		"Stock must be greater than or equal to 0",
	}, verrs.FullMessages())
}

func TestCreateDuplicateIsbn(t *testing.T) {
	m := &mockRepo{
		createFn: func(_ context.Context, _ *model.Book) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "books_isbn_key"}
		},
	}
	s := newSvc(m)

	_, err := s.Create(context.Background(), CreateInput{Title: "Dune", Isbn: "9780441013593", Stock: 3})

	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.FullMessages(), "Isbn has already been taken")
}

func TestCreateOK(t *testing.T) {
	m := &mockRepo{
		createFn: func(_ context.Context, b *model.Book) error {
			b.ID = 7
			return nil
		},
		getFn: func(_ context.Context, id int64) (*Detail, error) {
			return &Detail{
				Book:           model.Book{ID: id, Title: "Dune", Isbn: "9780441013593", Stock: 3},
				AvailableStock: 3,
			}, nil
		},
	}
	s := newSvc(m)

	d, err := s.Create(context.Background(), CreateInput{Title: "Dune", Isbn: "9780441013593", Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.ID)
	assert.Equal(t, 3, d.AvailableStock)
}

func TestGetNotFound(t *testing.T) {
	m := &mockRepo{
		getFn: func(_ context.Context, _ int64) (*Detail, error) { return nil, sql.ErrNoRows },
	}
	s := newSvc(m)

	_, err := s.Get(context.Background(), 99)
	assert.Equal(t, ErrNotFound, Code(err))
}

func TestUpdatePartial(t *testing.T) {
	var saved model.Book
	m := &mockRepo{
		getFn: func(_ context.Context, id int64) (*Detail, error) {
			return &Detail{Book: model.Book{ID: id, Title: "Dune", Isbn: "9780441013593", Stock: 3}}, nil
		},
		updateFn: func(_ context.Context, b *model.Book) error {
			saved = *b
			return nil
		},
	}
	s := newSvc(m)

	stock := 5
	_, err := s.Update(context.Background(), 7, UpdateInput{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, "Dune", saved.Title)
	assert.Equal(t, 5, saved.Stock)
}

func TestUpdateValidation(t *testing.T) {
	m := &mockRepo{
		getFn: func(_ context.Context, id int64) (*Detail, error) {
			return &Detail{Book: model.Book{ID: id, Title: "Dune", Isbn: "9780441013593", Stock: 3}}, nil
		},
	}
	s := newSvc(m)

	blank := ""
	_, err := s.Update(context.Background(), 7, UpdateInput{Title: &blank})

	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"Title can't be blank"}, verrs.FullMessages())
}

func TestDelete(t *testing.T) {
	t.Run("blocked by active loans", func(t *testing.T) {
		deleted := false
		m := &mockRepo{
			getForUpdateFn: func(_ context.Context, _ database.DBTX, id int64) (*model.Book, error) {
				return &model.Book{ID: id}, nil
			},
			hasActiveFn: func(_ context.Context, _ database.DBTX, _ int64) (bool, error) {
				return true, nil
			},
			deleteFn: func(_ context.Context, _ database.DBTX, _ int64) error {
				deleted = true
				return nil
			},
		}
		s := newSvc(m)

		err := s.Delete(context.Background(), 7)
		assert.Equal(t, ErrHasActiveLoans, Code(err))
		assert.False(t, deleted)
	})

	t.Run("overdue-only book deletes", func(t *testing.T) {
		// HasActiveLoans filters on status active alone, so a book whose
		// loans are all overdue or returned reports false here.
		deleted := false
		m := &mockRepo{
			getForUpdateFn: func(_ context.Context, _ database.DBTX, id int64) (*model.Book, error) {
				return &model.Book{ID: id}, nil
			},
			hasActiveFn: func(_ context.Context, _ database.DBTX, _ int64) (bool, error) {
				return false, nil
			},
			deleteFn: func(_ context.Context, _ database.DBTX, _ int64) error {
				deleted = true
				return nil
			},
		}
		s := newSvc(m)

		require.NoError(t, s.Delete(context.Background(), 7))
		assert.True(t, deleted)
	})

	t.Run("missing book", func(t *testing.T) {
		m := &mockRepo{
			getForUpdateFn: func(_ context.Context, _ database.DBTX, _ int64) (*model.Book, error) {
				return nil, sql.ErrNoRows
			},
		}
		s := newSvc(m)

		err := s.Delete(context.Background(), 99)
		assert.Equal(t, ErrNotFound, Code(err))
	})
}
