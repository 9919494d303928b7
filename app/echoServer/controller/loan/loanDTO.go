package loan

import "time"

type CreateLoanReq struct {
	BookID     int64      `json:"book_id"`
	BorrowerID int64      `json:"borrower_id"`
	DueDate    *time.Time `json:"due_date"`
}

type UpdateLoanReq struct {
	BookID     *int64     `json:"book_id"`
	BorrowerID *int64     `json:"borrower_id"`
	DueDate    *time.Time `json:"due_date"`
	Status     *string    `json:"status"`
}
