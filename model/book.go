// model/book.go
package model

import "time"

type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Isbn      string    `json:"isbn"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AvailableStock derives the free copies from total stock minus the loans on
// this book that still occupy a copy. Always recomputed from the snapshot
// passed in; availability is never cached.
func (b *Book) AvailableStock(loans []Loan) int {
	out := b.Stock
	for i := range loans {
		if loans[i].BookID == b.ID && loans[i].Occupying() {
			out--
		}
	}
	return out
}

func (b *Book) Available(loans []Loan) bool {
	return b.AvailableStock(loans) > 0
}
