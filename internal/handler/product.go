package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/micebot/server/internal/repository"
)

// ProductHandler exposes CRUD endpoints for redemption codes.  All
// routes run behind the access gate; handlers only translate repository
// outcomes into the API's status codes and fixed detail messages.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(products *repository.ProductRepo) *ProductHandler {
	return &ProductHandler{Products: products}
}

// ----- DTOs -----

type productReq struct {
	Code    string `json:"code"`
	Summary string `json:"summary"`
}

// List handles GET /products.  Query parameters: skip (default 0),
// limit (default 50), taken (default false), desc (default true).  The
// response pairs the filtered page with the global counter triple.
// An empty page yields 404 rather than an empty envelope.
func (h *ProductHandler) List(c echo.Context) error {
	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 50)
	taken := queryBool(c, "taken", false)
	desc := queryBool(c, "desc", true)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.List(ctx, skip, limit, taken, desc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to load products."})
	}
	if len(products) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "No products registered yet."})
	}

	totals, err := h.Products.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to count products."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":    totals,
		"products": products,
	})
}

// Create handles POST /products.  The code must be globally unique;
// summary is optional.
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid request body."})
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "code is required."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Products.GetByCode(ctx, req.Code); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"detail": "The code is already in use by another product."})
	} else if !errors.Is(err, repository.ErrProductNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to create product."})
	}

	p, err := h.Products.Create(ctx, req.Code, req.Summary)
	if err != nil {
		// The unique index catches a code racing in between the pre-check
		// and the insert.
		if errors.Is(err, repository.ErrCodeInUse) {
			return c.JSON(http.StatusConflict, echo.Map{"detail": "The code is already in use by another product."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to create product."})
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /products/:uuid.  The code is always overwritten;
// the summary only when a non-empty value is supplied.  Taken products
// are locked.
func (h *ProductHandler) Update(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid request body."})
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "code is required."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.Update(ctx, c.Param("uuid"), req.Code, req.Summary)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "No product found for the code specified."})
		case errors.Is(err, repository.ErrProductTaken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "The product is already taken and cannot be edited."})
		case errors.Is(err, repository.ErrCodeInUse):
			return c.JSON(http.StatusConflict, echo.Map{"detail": "The code is already in use by another product."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to update product."})
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /products/:uuid.  Taken products cannot be
// removed; their order is the permanent audit record.
func (h *ProductHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.Delete(ctx, c.Param("uuid")); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "No product found for the code specified."})
		case errors.Is(err, repository.ErrProductTaken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Cannot delete products already taken."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to delete product."})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}
