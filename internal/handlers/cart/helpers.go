package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maurocmendes/leechycupcakes/internal/cart"
	"github.com/maurocmendes/leechycupcakes/internal/logging"
	"github.com/maurocmendes/leechycupcakes/internal/models"
	"github.com/maurocmendes/leechycupcakes/internal/service"
)

const sessionCookie = "cartSession"

// session returns the cart for the request's session cookie, issuing a new
// session when the cookie is missing or empty. An empty store is reseeded
// from the user's persisted cart rows, so a lost cookie or a process restart
// does not leave the visible cart out of step with the mirror the stock
// guard checks.
func (h *CartHandler) session(c echo.Context, userID uint) *cart.Store {
	var store *cart.Store
	if ck, err := c.Cookie(sessionCookie); err == nil && ck.Value != "" {
		store = h.Carts.Get(ck.Value)
	} else {
		id := h.Carts.NewSession()
		c.SetCookie(service.CreateCookie(sessionCookie, id, "/", time.Now().Add(24*time.Hour)))
		store = h.Carts.Get(id)
	}

	if store.Len() == 0 {
		h.reseed(c.Request().Context(), store, userID)
	}
	return store
}

func (h *CartHandler) reseed(ctx context.Context, store *cart.Store, userID uint) {
	var rows []models.CartItem
	if err := h.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		logging.FromContext(ctx).Error("cart reseed error", "error", err)
		return
	}
	for _, row := range rows {
		store.Add(row.CupcakeID, row.Title, decimal.NewFromFloat(row.Price), row.Quantity)
	}
}

func clampQuantity(q uint) uint {
	if q < 1 {
		return 1
	}
	if q > 99 {
		return 99
	}
	return q
}

// discountedPrice folds an active discount into the unit price, which is the
// snapshot the cart keeps.
func discountedPrice(cupcake models.Cupcake) decimal.Decimal {
	price := decimal.NewFromFloat(cupcake.Price)
	if cupcake.Discount > 0 {
		factor := decimal.NewFromInt(int64(100 - cupcake.Discount)).
			Div(decimal.NewFromInt(100))
		price = price.Mul(factor).Round(2)
	}
	return price
}

// mirrorAdd upserts the user's persisted cart row, guarding against the
// available stock. The wrapped "Not enough stock" message is the one
// constraint the handlers inspect.
func (h *CartHandler) mirrorAdd(c echo.Context, userID uint, cupcake models.Cupcake, unitPrice decimal.Decimal, quantity uint) error {
	ctx := c.Request().Context()

	return h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.CartItem
		err := tx.Where("user_id = ? AND cupcake_id = ?", userID, cupcake.ID).First(&row).Error
		switch {
		case err == nil:
			newQuantity := row.Quantity + quantity
			if cupcake.Stock < int(newQuantity) {
				return fmt.Errorf("%w for cupcake %d", errNotEnoughStock, cupcake.ID)
			}
			row.Quantity = newQuantity
			return tx.Save(&row).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if cupcake.Stock < int(quantity) {
				return fmt.Errorf("%w for cupcake %d", errNotEnoughStock, cupcake.ID)
			}
			row = models.CartItem{
				UserID:    userID,
				CupcakeID: cupcake.ID,
				Title:     cupcake.Title,
				Price:     unitPrice.InexactFloat64(),
				Quantity:  quantity,
			}
			return tx.Create(&row).Error
		default:
			return err
		}
	})
}

func (h *CartHandler) publish(c echo.Context, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["userID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
