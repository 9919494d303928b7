// model/loan.go
package model

import "time"

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
	LoanOverdue  LoanStatus = "overdue"
)

// MaxLoanDays bounds due_date relative to borrowed_at.
const MaxLoanDays = 30

type Loan struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	BorrowerID int64      `json:"borrower_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueDate    time.Time  `json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Status     LoanStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanActive, LoanReturned, LoanOverdue:
		return true
	}
	return false
}

// OccupyingStatuses are the statuses that still tie up a book copy and
// block the borrower from taking another loan.
var OccupyingStatuses = []LoanStatus{LoanActive, LoanOverdue}

func (l *Loan) Occupying() bool {
	return l.Status == LoanActive || l.Status == LoanOverdue
}

// Overdue is true only for an active loan past its due date. A loan whose
// status is already "overdue" reports false: the predicate detects the
// transition, it doesn't describe the state.
func (l *Loan) Overdue(now time.Time) bool {
	return l.Status == LoanActive && l.DueDate.Before(now)
}

// DaysOverdue is the whole-day date difference between now and the due date,
// 0 for any loan that Overdue rejects.
func (l *Loan) DaysOverdue(now time.Time) int {
	if !l.Overdue(now) {
		return 0
	}
	return int(dateOf(now).Sub(dateOf(l.DueDate)).Hours() / 24)
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LifecycleError signals an illegal status transition. Recoverable, surfaced
// to clients as-is.
type LifecycleError struct {
	Reason string
}

func (e *LifecycleError) Error() string { return e.Reason }

// Return moves the loan to returned and stamps returned_at. Legal from
// active or overdue; returned is terminal.
func (l *Loan) Return(now time.Time) error {
	if !l.Occupying() {
		return &LifecycleError{Reason: "This loan is not active"}
	}
	l.Status = LoanReturned
	t := now
	l.ReturnedAt = &t
	return nil
}

// MarkOverdue flips an active loan past its due date to overdue and reports
// whether it did. Everything else is a no-op so a sweep can run repeatedly.
func (l *Loan) MarkOverdue(now time.Time) bool {
	if !l.Overdue(now) {
		return false
	}
	l.Status = LoanOverdue
	return true
}
