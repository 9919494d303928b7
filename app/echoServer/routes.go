package echoServer

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/arzeeee/libloan/app/echoServer/controller/auth"
	"github.com/arzeeee/libloan/app/echoServer/controller/book"
	"github.com/arzeeee/libloan/app/echoServer/controller/borrower"
	"github.com/arzeeee/libloan/app/echoServer/controller/loan"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Borrower  *borrower.Controller
	Loan      *loan.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public reads
	pub := e.Group("/api")
	pub.POST("/auth/token", c.Auth.Token)

	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Show)

	pub.GET("/borrowers", c.Borrower.List)
	pub.GET("/borrowers/:id", c.Borrower.Show)

	pub.GET("/loans", c.Loan.List)
	pub.GET("/loans/overdue", c.Loan.Overdue)
	pub.GET("/loans/:id", c.Loan.Show)

	// Writes. Token-guarded when a JWT secret is configured, open in dev.
	mut := e.Group("/api")
	if c.JWTSecret != "" {
		mut.Use(echojwt.WithConfig(echojwt.Config{
			SigningKey: []byte(c.JWTSecret),
		}))
	}

	mut.POST("/books", c.Book.Create)
	mut.PUT("/books/:id", c.Book.Update)
	mut.PATCH("/books/:id", c.Book.Update)
	mut.DELETE("/books/:id", c.Book.Delete)

	mut.POST("/borrowers", c.Borrower.Create)
	mut.PUT("/borrowers/:id", c.Borrower.Update)
	mut.PATCH("/borrowers/:id", c.Borrower.Update)
	mut.DELETE("/borrowers/:id", c.Borrower.Delete)

	mut.POST("/loans", c.Loan.Create)
	mut.PUT("/loans/:id", c.Loan.Update)
	mut.PATCH("/loans/:id", c.Loan.Update)
	mut.DELETE("/loans/:id", c.Loan.Delete)
	mut.POST("/loans/:id/return", c.Loan.Return)
}
