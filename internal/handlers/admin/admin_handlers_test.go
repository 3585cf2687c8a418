package admin

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/maurocmendes/leechycupcakes/internal/models"
	"github.com/maurocmendes/leechycupcakes/internal/mykafka"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Cupcake{}, &models.Order{}, &models.ActivityLog{}, &models.Profile{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newHandler(t *testing.T) *AdminHandler {
	return &AdminHandler{DB: initTestDB(t), Producer: &mykafka.Producer{}}
}

func adminContext(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	e := echo.New()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("userID", uint(1))
	return rec, c
}

func seedCupcakes(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, cupcake := range []models.Cupcake{
		{Title: "Chocolate Dream", Price: 5.00, Stock: 10},
		{Title: "Vanilla Sky", Price: 3.00, Stock: 4},
		{Title: "Red Velvet", Price: 6.50, Stock: 7},
	} {
		require.NoError(t, db.Create(&cupcake).Error)
	}
}

func TestCreateCupcake(t *testing.T) {
	h := newHandler(t)

	rec, c := adminContext(t, http.MethodPost, "/admin/cupcakes", map[string]interface{}{
		"title": "Pistachio", "price": 7.25, "stock": 12, "discount": 10,
	})
	require.NoError(t, h.CreateCupcake(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Cupcake
	require.NoError(t, h.DB.Where("title = ?", "Pistachio").First(&created).Error)
	require.True(t, created.IsNew, "new cupcakes start in the novelty category")
	require.Equal(t, 10, created.Discount)

	var entry models.ActivityLog
	require.NoError(t, h.DB.First(&entry).Error)
	require.Equal(t, "create", entry.Action)
	require.Equal(t, "cupcakes", entry.EntityType)
}

func TestCreateCupcakeValidation(t *testing.T) {
	h := newHandler(t)

	for name, body := range map[string]map[string]interface{}{
		"missing title": {"price": 5.0},
		"zero price":    {"title": "x", "price": 0},
		"bad discount":  {"title": "x", "price": 5.0, "discount": 150},
	} {
		_, c := adminContext(t, http.MethodPost, "/admin/cupcakes", body)
		err := h.CreateCupcake(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "%s: expected HTTPError", name)
		require.Equal(t, http.StatusBadRequest, he.Code, name)
	}

	var count int64
	h.DB.Model(&models.Cupcake{}).Count(&count)
	require.Zero(t, count)
}

func TestBatchUpdate(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	rec, c := adminContext(t, http.MethodPost, "/admin/cupcakes/batch", map[string]interface{}{
		"ids": []int{1, 3}, "discount": 25, "promotion_type": "blackfriday",
	})
	require.NoError(t, h.BatchUpdate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp["updated"])

	var patched models.Cupcake
	require.NoError(t, h.DB.First(&patched, 1).Error)
	require.Equal(t, 25, patched.Discount)
	require.True(t, patched.IsBlackFriday)

	// untouched row keeps its values
	var untouched models.Cupcake
	require.NoError(t, h.DB.First(&untouched, 2).Error)
	require.Zero(t, untouched.Discount)
	require.False(t, untouched.IsBlackFriday)

	var entry models.ActivityLog
	require.NoError(t, h.DB.First(&entry).Error)
	require.Equal(t, "batch_update", entry.Action)
	require.Equal(t, "1,3", entry.EntityID)
}

func TestBatchUpdateGuards(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	// an empty selection is rejected
	_, c := adminContext(t, http.MethodPost, "/admin/cupcakes/batch", map[string]interface{}{
		"discount": 25,
	})
	err := h.BatchUpdate(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)

	// so is a selection with no fields to patch
	_, cEmpty := adminContext(t, http.MethodPost, "/admin/cupcakes/batch", map[string]interface{}{
		"ids": []int{1},
	})
	err = h.BatchUpdate(cEmpty)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetStats(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	require.NoError(t, h.DB.Create(&models.Order{UserID: 1, TotalAmount: 10.50, Status: "completed"}).Error)
	require.NoError(t, h.DB.Create(&models.Order{UserID: 2, TotalAmount: 4.25, Status: "completed"}).Error)
	require.NoError(t, h.DB.Create(&models.Order{UserID: 1, TotalAmount: 99.99, Status: "pending"}).Error)

	rec, c := adminContext(t, http.MethodGet, "/admin/stats", nil)
	require.NoError(t, h.GetStats(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "14.75", resp.TotalSales)
	require.Equal(t, int64(3), resp.ProductCount)
	require.Equal(t, int64(1), resp.PendingOrders)
}

func TestGetSalesReport(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)
	require.NoError(t, h.DB.Model(&models.Cupcake{}).Where("id = ?", 2).
		Update("order_count", 15).Error)

	monday := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	tuesday := monday.Add(24 * time.Hour)
	for _, order := range []models.Order{
		{UserID: 1, TotalAmount: 10.50, Status: "completed", CreatedAt: monday},
		{UserID: 2, TotalAmount: 4.25, Status: "pending", CreatedAt: monday},
		{UserID: 1, TotalAmount: 7.00, Status: "completed", CreatedAt: tuesday},
	} {
		require.NoError(t, h.DB.Create(&order).Error)
	}

	rec, c := adminContext(t, http.MethodGet, "/admin/reports", nil)
	require.NoError(t, h.GetSalesReport(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sales []struct {
			Date       string `json:"date"`
			Total      string `json:"total"`
			OrderCount int    `json:"order_count"`
		} `json:"sales"`
		TopProducts []struct {
			Title      string `json:"title"`
			OrderCount int    `json:"order_count"`
		} `json:"top_products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Sales, 2)
	// chronological, grouped by calendar day
	require.Equal(t, "2026-08-24", resp.Sales[0].Date)
	require.Equal(t, "14.75", resp.Sales[0].Total)
	require.Equal(t, 2, resp.Sales[0].OrderCount)
	require.Equal(t, "2026-08-25", resp.Sales[1].Date)
	require.Equal(t, "7.00", resp.Sales[1].Total)
	require.Equal(t, 1, resp.Sales[1].OrderCount)

	require.Len(t, resp.TopProducts, 3)
	require.Equal(t, "Vanilla Sky", resp.TopProducts[0].Title)
	require.Equal(t, 15, resp.TopProducts[0].OrderCount)
}

func TestGetUsers(t *testing.T) {
	h := newHandler(t)

	older := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	for i, profile := range []models.Profile{
		{UserID: 1, FirstName: "Maria", LastName: "Silva", Email: "maria@example.com"},
		{UserID: 2, FirstName: "Joana", LastName: "Souza", Email: "joana@example.com"},
	} {
		profile.CreatedAt = older.Add(time.Duration(i) * time.Hour)
		require.NoError(t, h.DB.Create(&profile).Error)
	}

	rec, c := adminContext(t, http.MethodGet, "/admin/users", nil)
	require.NoError(t, h.GetUsers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data  []models.Profile `json:"data"`
		Total int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Data, 2)
	// newest registration first
	require.Equal(t, "Joana", resp.Data[0].FirstName)
	require.Equal(t, "Maria", resp.Data[1].FirstName)
}

func TestGetActivityLogs(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	// generate a trail via real handler calls
	_, c := adminContext(t, http.MethodPost, "/admin/cupcakes/batch", map[string]interface{}{
		"ids": []int{1}, "discount": 5,
	})
	require.NoError(t, h.BatchUpdate(c))

	_, cDel := adminContext(t, http.MethodDelete, "/admin/cupcakes/2", nil)
	cDel.SetParamNames("id")
	cDel.SetParamValues("2")
	require.NoError(t, h.DeleteCupcake(cDel))

	rec, cList := adminContext(t, http.MethodGet, "/admin/activity", nil)
	require.NoError(t, h.GetActivityLogs(cList))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data  []models.ActivityLog `json:"data"`
		Total int64                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Data, 2)
	// newest first
	require.Equal(t, "delete", resp.Data[0].Action)
	require.Equal(t, "batch_update", resp.Data[1].Action)
}

func TestExportCupcakes(t *testing.T) {
	h := newHandler(t)
	seedCupcakes(t, h.DB)

	rec, c := adminContext(t, http.MethodGet, "/admin/export", nil)
	require.NoError(t, h.ExportCupcakes(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header plus three rows
	require.Equal(t, "id", records[0][0])
	require.Equal(t, "Chocolate Dream", records[1][1])
	require.Equal(t, "5.00", records[1][4])
}
