package admin

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/maurocmendes/leechycupcakes/internal/models"
	"github.com/maurocmendes/leechycupcakes/internal/util"
)

type statsResponse struct {
	TotalSales    string `json:"total_sales"`
	ProductCount  int64  `json:"product_count"`
	PendingOrders int64  `json:"pending_orders"`
}

// GetStats aggregates the back-office dashboard numbers: completed sales
// total, catalog size, pending order count.
func (h *AdminHandler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	var totals []float64
	if err := h.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", "completed").
		Pluck("total_amount", &totals).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	sales := decimal.Zero
	for _, t := range totals {
		sales = sales.Add(decimal.NewFromFloat(t))
	}

	var productCount int64
	if err := h.DB.WithContext(ctx).Model(&models.Cupcake{}).Count(&productCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var pendingOrders int64
	if err := h.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", "pending").
		Count(&pendingOrders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, statsResponse{
		TotalSales:    sales.StringFixed(2),
		ProductCount:  productCount,
		PendingOrders: pendingOrders,
	})
}

type salesByDay struct {
	Date       string `json:"date"`
	Total      string `json:"total"`
	OrderCount int    `json:"order_count"`
}

type topProduct struct {
	Title      string `json:"title"`
	OrderCount int    `json:"order_count"`
}

// GetSalesReport feeds the reports dashboard: per-day order totals in
// chronological order, plus the ten most ordered cupcakes.
func (h *AdminHandler) GetSalesReport(c echo.Context) error {
	ctx := c.Request().Context()

	var orders []models.Order
	if err := h.DB.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	sales := []salesByDay{}
	totals := map[string]decimal.Decimal{}
	index := map[string]int{}
	for _, o := range orders {
		day := o.CreatedAt.Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			i = len(sales)
			index[day] = i
			sales = append(sales, salesByDay{Date: day})
		}
		totals[day] = totals[day].Add(decimal.NewFromFloat(o.TotalAmount))
		sales[i].OrderCount++
	}
	for i := range sales {
		sales[i].Total = totals[sales[i].Date].StringFixed(2)
	}

	var top []topProduct
	if err := h.DB.WithContext(ctx).Model(&models.Cupcake{}).
		Select("title", "order_count").
		Order("order_count DESC").
		Limit(10).
		Find(&top).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"sales":        sales,
		"top_products": top,
	})
}

// GetUsers lists registered profiles for the back office, newest first.
func (h *AdminHandler) GetUsers(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.Profile{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var profiles []models.Profile
	if err := h.DB.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&profiles).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":  profiles,
		"total": total,
	})
}

// GetActivityLogs returns the audit trail, newest first.
func (h *AdminHandler) GetActivityLogs(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.ActivityLog{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var logs []models.ActivityLog
	if err := h.DB.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&logs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":  logs,
		"total": total,
	})
}

// ExportCupcakes streams the cupcakes table as CSV.
func (h *AdminHandler) ExportCupcakes(c echo.Context) error {
	ctx := c.Request().Context()

	var rows []models.Cupcake
	if err := h.DB.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="cupcakes-export.csv"`)
	res.WriteHeader(http.StatusOK)

	w := csv.NewWriter(res)
	if err := w.Write([]string{
		"id", "title", "description", "ingredients", "price", "stock",
		"discount", "is_new", "is_black_friday", "is_christmas", "order_count",
	}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.ID),
			row.Title,
			row.Description,
			row.Ingredients,
			strconv.FormatFloat(row.Price, 'f', 2, 64),
			strconv.Itoa(row.Stock),
			strconv.Itoa(row.Discount),
			strconv.FormatBool(row.IsNew),
			strconv.FormatBool(row.IsBlackFriday),
			strconv.FormatBool(row.IsChristmas),
			strconv.Itoa(row.OrderCount),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
