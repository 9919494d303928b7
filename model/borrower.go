// model/borrower.go
package model

import "time"

type Borrower struct {
	ID           int64     `json:"id"`
	IDCardNumber string    `json:"id_card_number"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasActiveLoan checks the snapshot for any loan of this borrower that still
// occupies a copy (active or overdue).
func (p *Borrower) HasActiveLoan(loans []Loan) bool {
	return p.ActiveLoan(loans) != nil
}

func (p *Borrower) CanBorrow(loans []Loan) bool {
	return !p.HasActiveLoan(loans)
}

// ActiveLoan returns the borrower's single occupying loan, or nil. At most
// one such loan may exist; if the store ever holds more, the lowest id wins
// deterministically, and that situation is a data-integrity violation rather
// than a supported state.
func (p *Borrower) ActiveLoan(loans []Loan) *Loan {
	var found *Loan
	for i := range loans {
		l := &loans[i]
		if l.BorrowerID != p.ID || !l.Occupying() {
			continue
		}
		if found == nil || l.ID < found.ID {
			found = l
		}
	}
	return found
}
