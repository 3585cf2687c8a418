package catalog

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/maurocmendes/leechycupcakes/internal/catalog"
	"github.com/maurocmendes/leechycupcakes/internal/models"
)

type CatalogHandler struct {
	DB *gorm.DB
}

// GetCatalog fetches the raw cupcake list and runs it through the pure view
// pipeline. Filters come from query params; missing ones pass everything
// through.
func (h *CatalogHandler) GetCatalog(c echo.Context) error {
	ctx := c.Request().Context()

	var rows []models.Cupcake
	if err := h.DB.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	products := make([]catalog.Product, len(rows))
	for i, row := range rows {
		products[i] = toProduct(row)
	}

	view := catalog.Derive(products, filterFromQuery(c))
	return c.JSON(http.StatusOK, view)
}

// GetCupcake returns one product row.
func (h *CatalogHandler) GetCupcake(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var row models.Cupcake
	if err := h.DB.WithContext(c.Request().Context()).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cupcake not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, row)
}

type menuItem struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Ingredients string  `json:"ingredients"`
	Price       float64 `json:"price"`
}

// GetMenu is the printable menu listing: name, ingredients, price.
func (h *CatalogHandler) GetMenu(c echo.Context) error {
	var items []menuItem
	if err := h.DB.WithContext(c.Request().Context()).
		Model(&models.Cupcake{}).
		Select("id", "title", "ingredients", "price").
		Order("title ASC").
		Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, items)
}

func filterFromQuery(c echo.Context) catalog.FilterState {
	f := catalog.FilterState{
		Search:   c.QueryParam("q"),
		Category: catalog.CategoryAll,
		SortBy:   catalog.SortMostOrdered,
		MinPrice: 0,
		MaxPrice: math.MaxFloat64,
		Page:     1,
	}

	switch cat := catalog.Category(c.QueryParam("category")); cat {
	case catalog.CategoryNew, catalog.CategoryBlackFriday, catalog.CategoryChristmas:
		f.Category = cat
	}
	switch key := catalog.SortKey(c.QueryParam("sort")); key {
	case catalog.SortNewest, catalog.SortLowestPrice, catalog.SortHighestDiscount:
		f.SortBy = key
	}
	if v, err := strconv.ParseFloat(c.QueryParam("min_price"), 64); err == nil {
		f.MinPrice = v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("max_price"), 64); err == nil {
		f.MaxPrice = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		f.Page = v
	}
	return f
}

func toProduct(row models.Cupcake) catalog.Product {
	return catalog.Product{
		ID:            row.ID,
		Title:         row.Title,
		Description:   row.Description,
		Ingredients:   row.Ingredients,
		Price:         row.Price,
		Image:         row.Image,
		IsNew:         row.IsNew,
		IsBlackFriday: row.IsBlackFriday,
		IsChristmas:   row.IsChristmas,
		Discount:      row.Discount,
		OrderCount:    row.OrderCount,
	}
}
