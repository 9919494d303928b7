package borrower

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/arzeeee/libloan/model"
	borrowersvc "github.com/arzeeee/libloan/service/borrower"
)

type Controller struct {
	Svc borrowersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /api/borrowers
func (h *Controller) List(c echo.Context) error {
	details, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("borrower list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	out := make([]BorrowerResp, len(details))
	for i := range details {
		out[i] = toResp(&details[i])
	}
	return c.JSON(http.StatusOK, out)
}

// GET /api/borrowers/:id
func (h *Controller) Show(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Borrower not found"})
	}
	d, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.mapErr(c, "borrower show", err)
	}
	return c.JSON(http.StatusOK, toResp(d))
}

// POST /api/borrowers
func (h *Controller) Create(c echo.Context) error {
	var req CreateBorrowerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	d, err := h.Svc.Create(c.Request().Context(), borrowersvc.CreateInput{
		IDCardNumber: req.IDCardNumber,
		Name:         req.Name,
		Email:        req.Email,
	})
	if err != nil {
		return h.mapErr(c, "borrower create", err)
	}
	return c.JSON(http.StatusCreated, toResp(d))
}

// PUT/PATCH /api/borrowers/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Borrower not found"})
	}
	var req UpdateBorrowerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}

	d, err := h.Svc.Update(c.Request().Context(), id, borrowersvc.UpdateInput{
		IDCardNumber: req.IDCardNumber,
		Name:         req.Name,
		Email:        req.Email,
	})
	if err != nil {
		return h.mapErr(c, "borrower update", err)
	}
	return c.JSON(http.StatusOK, toResp(d))
}

// DELETE /api/borrowers/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Borrower not found"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.mapErr(c, "borrower delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": verrs.FullMessages()})
	}
	switch borrowersvc.Code(err) {
	case borrowersvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Borrower not found"})
	case borrowersvc.ErrHasActiveLoan:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Cannot delete borrower with active loans"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
