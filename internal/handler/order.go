package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/micebot/server/internal/queue"
	"github.com/micebot/server/internal/repository"
)

// OrderEvents is the slice of the publisher the order handler needs.
// A nil value disables event publishing entirely.
type OrderEvents interface {
	PublishOrderCreated(ctx context.Context, ev queue.OrderCreatedEvent) error
}

// OrderHandler exposes the order listing and the redemption endpoint.
// Redemption is the only operation in the API that mutates two records,
// and the atomicity lives in the repository, not here: the handler's
// taken check is a fast path for a friendly 409, while the conditional
// update inside CreateForProduct decides the race.
type OrderHandler struct {
	Orders   *repository.OrderRepo
	Products *repository.ProductRepo
	Events   OrderEvents
}

func NewOrderHandler(orders *repository.OrderRepo, products *repository.ProductRepo, events OrderEvents) *OrderHandler {
	return &OrderHandler{Orders: orders, Products: products, Events: events}
}

// ----- DTOs -----

type orderReq struct {
	ModID            string `json:"mod_id"`
	ModDisplayName   string `json:"mod_display_name"`
	OwnerDisplayName string `json:"owner_display_name"`
}

// List handles GET /orders.  Query parameters: skip (default 0), limit
// (default 50), moderator and owner (optional, conjunctive), desc
// (default false).  Unlike products, an empty result is a 200 with an
// empty list.
func (h *OrderHandler) List(c echo.Context) error {
	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 50)
	moderator := c.QueryParam("moderator")
	owner := c.QueryParam("owner")
	desc := queryBool(c, "desc", false)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.List(ctx, skip, limit, moderator, owner, desc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to load orders."})
	}
	total, err := h.Orders.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to count orders."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":  total,
		"orders": orders,
	})
}

// Create handles POST /orders/:ref.  The path segment is resolved as a
// product code first and as a product uuid when no code matches.  A
// successful redemption returns the order with the product embedded,
// now showing taken = true; redeeming an already-taken product is a
// 409, never a silent dedup.
func (h *OrderHandler) Create(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("ref"))
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "A product code or uuid is required."})
	}

	var req orderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid request body."})
	}
	if strings.TrimSpace(req.ModID) == "" ||
		strings.TrimSpace(req.ModDisplayName) == "" ||
		strings.TrimSpace(req.OwnerDisplayName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "mod_id, mod_display_name and owner_display_name are required."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	product, err := h.Products.GetByCode(ctx, ref)
	if errors.Is(err, repository.ErrProductNotFound) {
		product, err = h.Products.GetByUUID(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "No product found for the code specified."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to load product."})
	}
	if product.Taken {
		return c.JSON(http.StatusConflict, echo.Map{"detail": "The product code is already taken."})
	}

	order, err := h.Orders.CreateForProduct(ctx, product, req.ModID, req.ModDisplayName, req.OwnerDisplayName)
	if err != nil {
		// A concurrent redemption won the conditional update between our
		// read and the transaction.
		if errors.Is(err, repository.ErrProductTaken) {
			return c.JSON(http.StatusConflict, echo.Map{"detail": "The product code is already taken."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to create order."})
	}

	if h.Events != nil {
		// Fire-and-forget: the audit event never fails the redemption.
		_ = h.Events.PublishOrderCreated(ctx, queue.OrderCreatedEvent{
			OrderUUID:        order.UUID,
			ProductUUID:      order.Product.UUID,
			ProductCode:      order.Product.Code,
			ModID:            order.ModID,
			ModDisplayName:   order.ModDisplayName,
			OwnerDisplayName: order.OwnerDisplayName,
			RequestedAt:      order.RequestedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusCreated, order)
}
