package book

import (
	"time"

	booksvc "github.com/arzeeee/libloan/service/book"
)

type CreateBookReq struct {
	Title string `json:"title"`
	Isbn  string `json:"isbn"`
	Stock int    `json:"stock"`
}

type UpdateBookReq struct {
	Title *string `json:"title"`
	Isbn  *string `json:"isbn"`
	Stock *int    `json:"stock"`
}

type BookResp struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Isbn           string    `json:"isbn"`
	Stock          int       `json:"stock"`
	AvailableStock int       `json:"available_stock"`
	Available      bool      `json:"available"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toResp(d *booksvc.Detail) BookResp {
	return BookResp{
		ID:             d.ID,
		Title:          d.Title,
		Isbn:           d.Isbn,
		Stock:          d.Stock,
		AvailableStock: d.AvailableStock,
		Available:      d.AvailableStock > 0,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
