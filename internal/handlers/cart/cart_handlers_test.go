package cart

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/maurocmendes/leechycupcakes/internal/cart"
	"github.com/maurocmendes/leechycupcakes/internal/models"
	"github.com/maurocmendes/leechycupcakes/internal/mykafka"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Cupcake{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newHandler(t *testing.T) *CartHandler {
	return &CartHandler{
		DB:       initTestDB(t),
		Producer: &mykafka.Producer{},
		Carts:    cart.NewRegistry(),
	}
}

func seedCupcakes(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.Cupcake{
		Title: "Chocolate Dream", Description: "d", Ingredients: "i",
		Price: 5.00, Stock: 10,
	}).Error)
	require.NoError(t, db.Create(&models.Cupcake{
		Title: "Vanilla Sky", Description: "d", Ingredients: "i",
		Price: 3.00, Stock: 4, Discount: 50,
	}).Error)
}

func userContext(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	e := echo.New()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("userID", uint(1))
	return rec, c
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			return ck
		}
	}
	t.Fatal("no cart session cookie issued")
	return nil
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAddToCartMergesSameCupcake(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	rec, c := userContext(t, http.MethodPost, "/cart", map[string]int{"cupcake_id": 1, "quantity": 2})
	require.NoError(t, h.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)
	session := sessionCookieFrom(t, rec)

	rec2, c2 := userContext(t, http.MethodPost, "/cart", map[string]int{"cupcake_id": 1, "quantity": 3}, session)
	require.NoError(t, h.AddToCart(c2))

	resp := decodeCart(t, rec2)
	require.Len(t, resp.Items, 1)
	require.Equal(t, uint(5), resp.Items[0].Quantity)
	require.Equal(t, "25.00", resp.Total)

	// mirror row merged too
	var row models.CartItem
	require.NoError(t, h.DB.Where("user_id = ? AND cupcake_id = ?", 1, 1).First(&row).Error)
	require.Equal(t, uint(5), row.Quantity)
}

func TestAddToCartSnapshotsDiscountedPrice(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	rec, c := userContext(t, http.MethodPost, "/cart", map[string]int{"cupcake_id": 2, "quantity": 2})
	require.NoError(t, h.AddToCart(c))

	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	// 3.00 at 50% off, times two
	require.Equal(t, "3.00", resp.Total)
}

func TestAddToCartStockShortage(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	// cupcake 2 has stock 4
	_, c := userContext(t, http.MethodPost, "/cart", map[string]int{"cupcake_id": 2, "quantity": 5})
	err := h.AddToCart(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
	require.Contains(t, he.Message, "not enough stock")

	var count int64
	h.DB.Model(&models.CartItem{}).Count(&count)
	require.Zero(t, count)
}

func TestAddToCartUnknownCupcake(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	_, c := userContext(t, http.MethodPost, "/cart", map[string]int{"cupcake_id": 99, "quantity": 1})
	err := h.AddToCart(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestSessionReseedsFromMirror(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	rec, c := userContext(t, http.MethodPost, "/cart", map[string]int{"cupcake_id": 1, "quantity": 2})
	require.NoError(t, h.AddToCart(c))
	require.Len(t, decodeCart(t, rec).Items, 1)

	// a request without the session cookie (new browser) sees the mirrored cart
	recGet, cGet := userContext(t, http.MethodGet, "/cart", nil)
	require.NoError(t, h.GetCart(cGet))
	resp := decodeCart(t, recGet)
	require.Len(t, resp.Items, 1)
	require.Equal(t, uint(2), resp.Items[0].Quantity)
	require.Equal(t, "10.00", resp.Total)

	// an add without the cookie merges on top of the mirrored quantities
	recAdd, cAdd := userContext(t, http.MethodPost, "/cart", map[string]int{"cupcake_id": 1, "quantity": 3})
	require.NoError(t, h.AddToCart(cAdd))
	resp = decodeCart(t, recAdd)
	require.Len(t, resp.Items, 1)
	require.Equal(t, uint(5), resp.Items[0].Quantity)

	var row models.CartItem
	require.NoError(t, h.DB.Where("user_id = ? AND cupcake_id = ?", 1, 1).First(&row).Error)
	require.Equal(t, uint(5), row.Quantity)
}

func TestUpdateQuantityClampsAtAPI(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	rec, c := userContext(t, http.MethodPost, "/cart", map[string]int{"cupcake_id": 1, "quantity": 2})
	require.NoError(t, h.AddToCart(c))
	session := sessionCookieFrom(t, rec)

	rec2, c2 := userContext(t, http.MethodPatch, "/cart/1", map[string]int{"quantity": 500}, session)
	c2.SetParamNames("id")
	c2.SetParamValues("1")
	require.NoError(t, h.UpdateQuantity(c2))

	resp := decodeCart(t, rec2)
	require.Equal(t, uint(99), resp.Items[0].Quantity)
}

func TestRemoveFromCartAbsentIsNoop(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	rec, c := userContext(t, http.MethodPost, "/cart", map[string]int{"cupcake_id": 1, "quantity": 1})
	require.NoError(t, h.AddToCart(c))
	session := sessionCookieFrom(t, rec)

	rec2, c2 := userContext(t, http.MethodDelete, "/cart/42", nil, session)
	c2.SetParamNames("id")
	c2.SetParamValues("42")
	require.NoError(t, h.RemoveFromCart(c2))
	require.Len(t, decodeCart(t, rec2).Items, 1)

	rec3, c3 := userContext(t, http.MethodDelete, "/cart/1", nil, session)
	c3.SetParamNames("id")
	c3.SetParamValues("1")
	require.NoError(t, h.RemoveFromCart(c3))
	require.Empty(t, decodeCart(t, rec3).Items)
}

func TestClearCart(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	rec, c := userContext(t, http.MethodPost, "/cart", map[string]int{"cupcake_id": 1, "quantity": 1})
	require.NoError(t, h.AddToCart(c))
	session := sessionCookieFrom(t, rec)

	recClear, cClear := userContext(t, http.MethodDelete, "/cart", nil, session)
	require.NoError(t, h.ClearCart(cClear))
	require.Equal(t, http.StatusNoContent, recClear.Code)

	recGet, cGet := userContext(t, http.MethodGet, "/cart", nil, session)
	require.NoError(t, h.GetCart(cGet))
	resp := decodeCart(t, recGet)
	require.Empty(t, resp.Items)
	require.Equal(t, "0.00", resp.Total)

	var count int64
	h.DB.Model(&models.CartItem{}).Count(&count)
	require.Zero(t, count)
}

func TestCheckout(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	rec, c := userContext(t, http.MethodPost, "/cart", map[string]int{"cupcake_id": 1, "quantity": 2})
	require.NoError(t, h.AddToCart(c))
	session := sessionCookieFrom(t, rec)

	_, c2 := userContext(t, http.MethodPost, "/cart", map[string]int{"cupcake_id": 2, "quantity": 1}, session)
	require.NoError(t, h.AddToCart(c2))

	recOrder, cOrder := userContext(t, http.MethodPost, "/cart/checkout", nil, session)
	require.NoError(t, h.Checkout(cOrder))
	require.Equal(t, http.StatusOK, recOrder.Code)

	var resp struct {
		OrderID uint    `json:"order_id"`
		Total   float64 `json:"total"`
		Status  string  `json:"status"`
	}
	require.NoError(t, json.Unmarshal(recOrder.Body.Bytes(), &resp))
	// 2 x 5.00 + 1 x 1.50 (discounted)
	require.InDelta(t, 11.50, resp.Total, 0.001)
	require.Equal(t, "pending", resp.Status)

	var order models.Order
	require.NoError(t, h.DB.First(&order, resp.OrderID).Error)
	var orderItems []models.OrderItem
	require.NoError(t, h.DB.Where("order_id = ?", order.ID).Find(&orderItems).Error)
	require.Len(t, orderItems, 2)

	// stock decremented, popularity incremented, carts emptied
	var choc models.Cupcake
	require.NoError(t, h.DB.First(&choc, 1).Error)
	require.Equal(t, 8, choc.Stock)
	require.Equal(t, 2, choc.OrderCount)

	var count int64
	h.DB.Model(&models.CartItem{}).Count(&count)
	require.Zero(t, count)

	recGet, cGet := userContext(t, http.MethodGet, "/cart", nil, session)
	require.NoError(t, h.GetCart(cGet))
	require.Empty(t, decodeCart(t, recGet).Items)
}

func TestCheckoutEmptyCart(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	_, c := userContext(t, http.MethodPost, "/cart/checkout", nil)
	err := h.Checkout(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}
