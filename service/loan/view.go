package loansvc

import (
	"time"

	"github.com/arzeeee/libloan/model"
)

type BookRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Isbn  string `json:"isbn"`
}

type BorrowerRef struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	IDCardNumber string `json:"id_card_number"`
}

// View is the API shape of a loan: the row plus embedded references and the
// overdue figures derived at render time.
type View struct {
	ID          int64            `json:"id"`
	Book        BookRef          `json:"book"`
	Borrower    BorrowerRef      `json:"borrower"`
	BorrowedAt  time.Time        `json:"borrowed_at"`
	DueDate     time.Time        `json:"due_date"`
	ReturnedAt  *time.Time       `json:"returned_at"`
	Status      model.LoanStatus `json:"status"`
	Overdue     bool             `json:"overdue"`
	DaysOverdue int              `json:"days_overdue"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func buildView(d *Detail, now time.Time) View {
	return View{
		ID: d.ID,
		Book: BookRef{
			ID:    d.BookID,
			Title: d.BookTitle,
			Isbn:  d.BookIsbn,
		},
		Borrower: BorrowerRef{
			ID:           d.BorrowerID,
			Name:         d.BorrowerName,
			IDCardNumber: d.BorrowerIDCard,
		},
		BorrowedAt:  d.BorrowedAt,
		DueDate:     d.DueDate,
		ReturnedAt:  d.ReturnedAt,
		Status:      d.Status,
		Overdue:     d.Overdue(now),
		DaysOverdue: d.DaysOverdue(now),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
