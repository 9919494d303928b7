package loansvc

import (
	"github.com/arzeeee/libloan/model"
)

// validateCreate evaluates every create-time rule against the locked
// snapshot and accumulates field errors; it never short-circuits. A nil book
// or borrower means the referenced row does not exist; the dependent
// availability and eligibility checks are skipped for it.
func validateCreate(l *model.Loan, book *model.Book, borrower *model.Borrower, bookLoans, borrowerLoans []model.Loan) model.ValidationErrors {
	var errs model.ValidationErrors

	if l.BorrowedAt.IsZero() {
		errs.Add("borrowed_at", "can't be blank")
	}
	if l.DueDate.IsZero() {
		errs.Add("due_date", "can't be blank")
	}
	if l.Status == "" {
		errs.Add("status", "can't be blank")
	} else if !l.Status.Valid() {
		errs.Add("status", "is not included in the list")
	}

	if borrower == nil {
		errs.Add("borrower", "must exist")
	} else if borrower.HasActiveLoan(borrowerLoans) {
		errs.Add("borrower", "already has an active loan")
	}

	if book == nil {
		errs.Add("book", "must exist")
	} else if !book.Available(bookLoans) {
		errs.Add("book", "is not available (no stock)")
	}

	if !l.BorrowedAt.IsZero() && !l.DueDate.IsZero() {
		if l.DueDate.After(l.BorrowedAt.AddDate(0, 0, model.MaxLoanDays)) {
			errs.Add("due_date", "cannot be more than 30 days from borrowed date")
		}
	}

	return errs
}

// validateUpdate is the narrow edit-path validator: status enum and due-date
// bound only. It does not re-run the create-time invariants.
func validateUpdate(l *model.Loan) model.ValidationErrors {
	var errs model.ValidationErrors

	if l.Status == "" {
		errs.Add("status", "can't be blank")
	} else if !l.Status.Valid() {
		errs.Add("status", "is not included in the list")
	}

	if l.DueDate.After(l.BorrowedAt.AddDate(0, 0, model.MaxLoanDays)) {
		errs.Add("due_date", "cannot be more than 30 days from borrowed date")
	}

	return errs
}
