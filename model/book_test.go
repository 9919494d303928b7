package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arzeeee/libloan/model"
)

func TestBookAvailableStock(t *testing.T) {
	b := &model.Book{ID: 1, Title: "Dune", Isbn: "9780441013593", Stock: 3}

	loans := []model.Loan{
		{ID: 1, BookID: 1, Status: model.LoanActive},
		{ID: 2, BookID: 1, Status: model.LoanOverdue},
		{ID: 3, BookID: 1, Status: model.LoanReturned},
		{ID: 4, BookID: 2, Status: model.LoanActive}, // other book
	}

	// active and overdue both occupy a copy; returned and other books don't
	assert.Equal(t, 1, b.AvailableStock(loans))
	assert.True(t, b.Available(loans))
}

func TestBookAvailableStockExhausted(t *testing.T) {
	b := &model.Book{ID: 1, Stock: 1}
	loans := []model.Loan{{ID: 1, BookID: 1, Status: model.LoanActive}}

	assert.Equal(t, 0, b.AvailableStock(loans))
	assert.False(t, b.Available(loans))
}

func TestBookAvailableStockEmptySnapshot(t *testing.T) {
	b := &model.Book{ID: 1, Stock: 2}
	assert.Equal(t, 2, b.AvailableStock(nil))
	assert.True(t, b.Available(nil))
}
