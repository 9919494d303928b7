// Package main library API.
//
// @title           Library Loans API
// @version         1.0
// @description     library-management service (books, borrowers, loans).
// @BasePath        /
// @schemes         http
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/arzeeee/libloan/app/echoServer"
	authctrl "github.com/arzeeee/libloan/app/echoServer/controller/auth"
	bookctrl "github.com/arzeeee/libloan/app/echoServer/controller/book"
	borrowerctrl "github.com/arzeeee/libloan/app/echoServer/controller/borrower"
	loanctrl "github.com/arzeeee/libloan/app/echoServer/controller/loan"
	"github.com/arzeeee/libloan/app/echoServer/validation"
	"github.com/arzeeee/libloan/config"
	bookrepo "github.com/arzeeee/libloan/repository/book"
	borrowerrepo "github.com/arzeeee/libloan/repository/borrower"
	loanrepo "github.com/arzeeee/libloan/repository/loan"
	authsvc "github.com/arzeeee/libloan/service/auth"
	booksvc "github.com/arzeeee/libloan/service/book"
	borrowersvc "github.com/arzeeee/libloan/service/borrower"
	loansvc "github.com/arzeeee/libloan/service/loan"
	"github.com/arzeeee/libloan/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	br := bookrepo.New(db)
	pr := borrowerrepo.New(db)
	lr := loanrepo.New(db)

	// services
	as := authsvc.New(cfg.AdminAPIKey, cfg.JWTSecret)
	bs := booksvc.New(db, br)
	ps := borrowersvc.New(db, pr)
	ls := loansvc.New(db, lr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	borrowerC := &borrowerctrl.Controller{Svc: ps, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: ls, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Book:      bookC,
		Borrower:  borrowerC,
		Loan:      loanC,
		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
