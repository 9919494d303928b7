package loan

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/arzeeee/libloan/model"
	loansvc "github.com/arzeeee/libloan/service/loan"
)

type Controller struct {
	Svc loansvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /api/loans
func (h *Controller) List(c echo.Context) error {
	views, err := h.Svc.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		h.Log.Error("loan list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if views == nil {
		views = []loansvc.View{}
	}
	return c.JSON(http.StatusOK, views)
}

// GET /api/loans/:id
func (h *Controller) Show(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Loan not found"})
	}
	v, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.mapErr(c, "loan show", err)
	}
	return c.JSON(http.StatusOK, v)
}

// POST /api/loans (borrow a book)
func (h *Controller) Create(c echo.Context) error {
	var req CreateLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	v, err := h.Svc.Create(c.Request().Context(), loansvc.CreateInput{
		BookID:     req.BookID,
		BorrowerID: req.BorrowerID,
		DueDate:    req.DueDate,
	})
	if err != nil {
		return h.mapErr(c, "loan create", err)
	}
	return c.JSON(http.StatusCreated, v)
}

// PUT/PATCH /api/loans/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Loan not found"})
	}
	var req UpdateLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}

	in := loansvc.UpdateInput{
		BookID:     req.BookID,
		BorrowerID: req.BorrowerID,
		DueDate:    req.DueDate,
	}
	if req.Status != nil {
		st := model.LoanStatus(*req.Status)
		in.Status = &st
	}

	v, err := h.Svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return h.mapErr(c, "loan update", err)
	}
	return c.JSON(http.StatusOK, v)
}

// DELETE /api/loans/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Loan not found"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.mapErr(c, "loan delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// POST /api/loans/:id/return (return a book)
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Loan not found"})
	}
	v, err := h.Svc.Return(c.Request().Context(), id)
	if err != nil {
		return h.mapErr(c, "loan return", err)
	}
	return c.JSON(http.StatusOK, v)
}

// GET /api/loans/overdue (sweep: mark active loans past due, list them)
func (h *Controller) Overdue(c echo.Context) error {
	views, err := h.Svc.SweepOverdue(c.Request().Context())
	if err != nil {
		h.Log.Error("loan overdue sweep", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if views == nil {
		views = []loansvc.View{}
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": verrs.FullMessages()})
	}
	var lerr *model.LifecycleError
	if errors.As(err, &lerr) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": lerr.Reason})
	}
	switch loansvc.Code(err) {
	case loansvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Loan not found"})
	case loansvc.ErrActiveLoan:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Cannot delete active loan. Please return the book first."})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
