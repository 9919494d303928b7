package loansvc

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/arzeeee/libloan/model"
	"github.com/arzeeee/libloan/util/database"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// passthroughTx stands in for RunInTx; the fake repo ignores the tx handle.
func passthroughTx(ctx context.Context, fn func(context.Context, database.DBTX) error) error {
	return fn(ctx, nil)
}

func newTestService(r Repo, now time.Time) *service {
	return &service{r: r, run: passthroughTx, clock: fixedClock{t: now}}
}

// fakeRepo is an in-memory stand-in for the SQL store, faithful to its query
// semantics (status filters, lowest-id ordering, join shapes).
type fakeRepo struct {
	books      map[int64]model.Book
	borrowers  map[int64]model.Borrower
	loans      map[int64]model.Loan
	nextLoanID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		books:      make(map[int64]model.Book),
		borrowers:  make(map[int64]model.Borrower),
		loans:      make(map[int64]model.Loan),
		nextLoanID: 1,
	}
}

func (f *fakeRepo) addBook(id int64, title, isbn string, stock int) {
	f.books[id] = model.Book{ID: id, Title: title, Isbn: isbn, Stock: stock}
}

func (f *fakeRepo) addBorrower(id int64, name, card string) {
	f.borrowers[id] = model.Borrower{ID: id, Name: name, IDCardNumber: card, Email: name + "@example.com"}
}

func (f *fakeRepo) addLoan(l model.Loan) model.Loan {
	if l.ID == 0 {
		l.ID = f.nextLoanID
	}
	if l.ID >= f.nextLoanID {
		f.nextLoanID = l.ID + 1
	}
	f.loans[l.ID] = l
	return l
}

func (f *fakeRepo) Insert(_ context.Context, _ database.DBTX, l *model.Loan) error {
	l.ID = f.nextLoanID
	f.nextLoanID++
	f.loans[l.ID] = *l
	return nil
}

func (f *fakeRepo) GetForUpdate(_ context.Context, _ database.DBTX, id int64) (*model.Loan, error) {
	l, ok := f.loans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &l, nil
}

func (f *fakeRepo) Update(_ context.Context, _ database.DBTX, l *model.Loan) error {
	if _, ok := f.loans[l.ID]; !ok {
		return sql.ErrNoRows
	}
	f.loans[l.ID] = *l
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, _ database.DBTX, id int64) error {
	delete(f.loans, id)
	return nil
}

func (f *fakeRepo) LockBook(_ context.Context, _ database.DBTX, id int64) (*model.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &b, nil
}

func (f *fakeRepo) LockBorrower(_ context.Context, _ database.DBTX, id int64) (*model.Borrower, error) {
	p, ok := f.borrowers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (f *fakeRepo) OccupyingForBook(_ context.Context, _ database.DBTX, bookID int64) ([]model.Loan, error) {
	var out []model.Loan
	for _, l := range f.sorted() {
		if l.BookID == bookID && l.Occupying() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeRepo) OccupyingForBorrower(_ context.Context, _ database.DBTX, borrowerID int64) ([]model.Loan, error) {
	var out []model.Loan
	for _, l := range f.sorted() {
		if l.BorrowerID == borrowerID && l.Occupying() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeRepo) DueActiveForUpdate(_ context.Context, _ database.DBTX, now time.Time) ([]model.Loan, error) {
	var out []model.Loan
	for _, l := range f.sorted() {
		if l.Status == model.LoanActive && l.DueDate.Before(now) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeRepo) Detail(_ context.Context, id int64) (*Detail, error) {
	l, ok := f.loans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := f.join(l)
	return &d, nil
}

func (f *fakeRepo) List(_ context.Context, status string) ([]Detail, error) {
	var out []Detail
	for _, l := range f.sorted() {
		if status != "" && string(l.Status) != status {
			continue
		}
		out = append(out, f.join(l))
	}
	return out, nil
}

func (f *fakeRepo) DetailsByIDs(_ context.Context, ids []int64) ([]Detail, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Detail
	for _, l := range f.sorted() {
		if want[l.ID] {
			out = append(out, f.join(l))
		}
	}
	return out, nil
}

func (f *fakeRepo) join(l model.Loan) Detail {
	b := f.books[l.BookID]
	p := f.borrowers[l.BorrowerID]
	return Detail{
		Loan:           l,
		BookTitle:      b.Title,
		BookIsbn:       b.Isbn,
		BorrowerName:   p.Name,
		BorrowerIDCard: p.IDCardNumber,
	}
}

func (f *fakeRepo) sorted() []model.Loan {
	out := make([]model.Loan, 0, len(f.loans))
	for _, l := range f.loans {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
