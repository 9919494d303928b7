package book

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/arzeeee/libloan/model"
	booksvc "github.com/arzeeee/libloan/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /api/books
func (h *Controller) List(c echo.Context) error {
	details, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	out := make([]BookResp, len(details))
	for i := range details {
		out[i] = toResp(&details[i])
	}
	return c.JSON(http.StatusOK, out)
}

// GET /api/books/:id
func (h *Controller) Show(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Book not found"})
	}
	d, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.mapErr(c, "book show", err)
	}
	return c.JSON(http.StatusOK, toResp(d))
}

// POST /api/books
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	d, err := h.Svc.Create(c.Request().Context(), booksvc.CreateInput{
		Title: req.Title,
		Isbn:  req.Isbn,
		Stock: req.Stock,
	})
	if err != nil {
		return h.mapErr(c, "book create", err)
	}
	return c.JSON(http.StatusCreated, toResp(d))
}

// PUT/PATCH /api/books/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Book not found"})
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}

	d, err := h.Svc.Update(c.Request().Context(), id, booksvc.UpdateInput{
		Title: req.Title,
		Isbn:  req.Isbn,
		Stock: req.Stock,
	})
	if err != nil {
		return h.mapErr(c, "book update", err)
	}
	return c.JSON(http.StatusOK, toResp(d))
}

// DELETE /api/books/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Book not found"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.mapErr(c, "book delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": verrs.FullMessages()})
	}
	switch booksvc.Code(err) {
	case booksvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Book not found"})
	case booksvc.ErrHasActiveLoans:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Cannot delete book with active loans"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
