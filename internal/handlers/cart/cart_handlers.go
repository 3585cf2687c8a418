package cart

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maurocmendes/leechycupcakes/internal/cart"
	"github.com/maurocmendes/leechycupcakes/internal/logging"
	"github.com/maurocmendes/leechycupcakes/internal/models"
	"github.com/maurocmendes/leechycupcakes/internal/mykafka"
	"github.com/maurocmendes/leechycupcakes/internal/service"
)

var errNotEnoughStock = errors.New("Not enough stock")

type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Carts    *cart.Registry
}

type cartResponse struct {
	Items []cart.Item `json:"items"`
	Total string      `json:"total"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	store := h.session(c, userID)
	return c.JSON(http.StatusOK, cartResponse{
		Items: store.Items(),
		Total: store.Total().StringFixed(2),
	})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_add")

	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		CupcakeID int  `json:"cupcake_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Quantity = clampQuantity(req.Quantity)

	var cupcake models.Cupcake
	if err := h.DB.WithContext(ctx).First(&cupcake, req.CupcakeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cupcake not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	unitPrice := discountedPrice(cupcake)

	// resolve the session before touching the mirror, so a reseed of a fresh
	// session picks up only the pre-add quantities
	store := h.session(c, userID)

	if err := h.mirrorAdd(c, userID, cupcake, unitPrice, req.Quantity); err != nil {
		if strings.Contains(err.Error(), errNotEnoughStock.Error()) {
			l.Warn("cart_add_rejected", "reason", "not_enough_stock", "cupcakeID", cupcake.ID)
			return echo.NewHTTPError(http.StatusConflict, "sorry, there is not enough stock for this item")
		}
		l.Error("cart_add_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	store.Add(cupcake.ID, cupcake.Title, unitPrice, req.Quantity)

	h.publish(c, map[string]interface{}{
		"type":      "cart_item_added",
		"userID":    userID,
		"cupcakeID": cupcake.ID,
		"quantity":  req.Quantity,
	})

	return c.JSON(http.StatusOK, cartResponse{
		Items: store.Items(),
		Total: store.Total().StringFixed(2),
	})
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	// the store itself takes quantities verbatim; the API clamps the way the
	// storefront quantity input did
	req.Quantity = clampQuantity(req.Quantity)

	store := h.session(c, userID)
	store.UpdateQuantity(id, req.Quantity)

	if err := h.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND cupcake_id = ?", userID, id).
		Update("quantity", req.Quantity).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]interface{}{
		"type":      "cart_quantity_updated",
		"userID":    userID,
		"cupcakeID": id,
		"quantity":  req.Quantity,
	})

	return c.JSON(http.StatusOK, cartResponse{
		Items: store.Items(),
		Total: store.Total().StringFixed(2),
	})
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	store := h.session(c, userID)
	store.Remove(id)

	// absent rows delete zero rows; that is fine, removal is a no-op then
	if err := h.DB.WithContext(ctx).
		Where("user_id = ? AND cupcake_id = ?", userID, id).
		Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]interface{}{
		"type":      "cart_item_removed",
		"userID":    userID,
		"cupcakeID": id,
	})

	return c.JSON(http.StatusOK, cartResponse{
		Items: store.Items(),
		Total: store.Total().StringFixed(2),
	})
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	h.session(c, userID).Clear()

	if err := h.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]interface{}{
		"type":   "cart_cleared",
		"userID": userID,
	})

	return c.NoContent(http.StatusNoContent)
}

// Checkout turns the session cart into an order in one transaction: stock is
// re-checked and decremented, order_count incremented, line prices frozen
// from the add-time snapshots, and both the mirror rows and the session cart
// are emptied.
func (h *CartHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_checkout")

	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	store := h.session(c, userID)
	items := store.Items()
	if len(items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
	}

	var (
		order      models.Order
		orderItems []models.OrderItem
	)

	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		for _, it := range items {
			var cupcake models.Cupcake
			if err := tx.First(&cupcake, it.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("cupcake %d not found", it.ID)
				}
				return err
			}
			if cupcake.Stock < int(it.Quantity) {
				return fmt.Errorf("%w for cupcake %d", errNotEnoughStock, it.ID)
			}
			if err := tx.Model(&cupcake).Updates(map[string]interface{}{
				"stock":       gorm.Expr("stock - ?", it.Quantity),
				"order_count": gorm.Expr("order_count + ?", it.Quantity),
			}).Error; err != nil {
				return err
			}
			total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}

		order = models.Order{
			UserID:      userID,
			TotalAmount: total.InexactFloat64(),
			Status:      "pending",
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		orderItems = make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			oi := models.OrderItem{
				OrderID:     order.ID,
				CupcakeID:   it.ID,
				Quantity:    it.Quantity,
				PriceAtTime: it.Price.InexactFloat64(),
			}
			if err := tx.Create(&oi).Error; err != nil {
				return err
			}
			orderItems = append(orderItems, oi)
		}

		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if txErr != nil {
		if strings.Contains(txErr.Error(), errNotEnoughStock.Error()) {
			l.Warn("checkout_rejected", "reason", "not_enough_stock")
			return echo.NewHTTPError(http.StatusConflict, "sorry, there is not enough stock for this item")
		}
		l.Error("checkout_failed", "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	store.Clear()

	h.publish(c, map[string]interface{}{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.TotalAmount,
	})

	l.Info("order_created", "userID", userID, "orderID", order.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"order_id": order.ID,
		"total":    order.TotalAmount,
		"status":   order.Status,
		"items":    orderItems,
	})
}
