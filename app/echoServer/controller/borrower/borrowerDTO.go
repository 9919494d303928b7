package borrower

import (
	"time"

	borrowersvc "github.com/arzeeee/libloan/service/borrower"
)

type CreateBorrowerReq struct {
	IDCardNumber string `json:"id_card_number"`
	Name         string `json:"name"`
	Email        string `json:"email"`
}

type UpdateBorrowerReq struct {
	IDCardNumber *string `json:"id_card_number"`
	Name         *string `json:"name"`
	Email        *string `json:"email"`
}

type BorrowerResp struct {
	ID            int64     `json:"id"`
	IDCardNumber  string    `json:"id_card_number"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	HasActiveLoan bool      `json:"has_active_loan"`
	CanBorrow     bool      `json:"can_borrow"`
	ActiveLoan    *int64    `json:"active_loan"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toResp(d *borrowersvc.Detail) BorrowerResp {
	return BorrowerResp{
		ID:            d.ID,
		IDCardNumber:  d.IDCardNumber,
		Name:          d.Name,
		Email:         d.Email,
		HasActiveLoan: d.HasActiveLoan,
		CanBorrow:     !d.HasActiveLoan,
		ActiveLoan:    d.ActiveLoanID,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
