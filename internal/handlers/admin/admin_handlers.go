package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/maurocmendes/leechycupcakes/internal/activity"
	"github.com/maurocmendes/leechycupcakes/internal/logging"
	"github.com/maurocmendes/leechycupcakes/internal/models"
	"github.com/maurocmendes/leechycupcakes/internal/mykafka"
	"github.com/maurocmendes/leechycupcakes/internal/service"
)

type AdminHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type cupcakeRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Ingredients        string     `json:"ingredients"`
	Price              float64    `json:"price"`
	Image              string     `json:"image"`
	Stock              int        `json:"stock"`
	Discount           int        `json:"discount"`
	IsBlackFriday      bool       `json:"is_black_friday"`
	IsChristmas        bool       `json:"is_christmas"`
	PromotionType      *string    `json:"promotion_type"`
	PromotionValue     *float64   `json:"promotion_value"`
	PromotionStartDate *time.Time `json:"promotion_start_date"`
	PromotionEndDate   *time.Time `json:"promotion_end_date"`
}

func (h *AdminHandler) CreateCupcake(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_cupcake_create")

	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	var req cupcakeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" || req.Price <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "title and a positive price are required")
	}
	if req.Discount < 0 || req.Discount > 100 {
		return echo.NewHTTPError(http.StatusBadRequest, "discount must be between 0 and 100")
	}

	// freshly created cupcakes always start in the novelty category
	cupcake := models.Cupcake{
		Title:              req.Title,
		Description:        req.Description,
		Ingredients:        req.Ingredients,
		Price:              req.Price,
		Image:              req.Image,
		Stock:              req.Stock,
		Discount:           req.Discount,
		IsNew:              true,
		IsBlackFriday:      req.IsBlackFriday,
		IsChristmas:        req.IsChristmas,
		PromotionType:      req.PromotionType,
		PromotionValue:     req.PromotionValue,
		PromotionStartDate: req.PromotionStartDate,
		PromotionEndDate:   req.PromotionEndDate,
	}
	if err := h.DB.WithContext(ctx).Create(&cupcake).Error; err != nil {
		l.Error("cupcake_create_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := activity.Log(h.DB.WithContext(ctx), userID, "create", "cupcakes", strconv.Itoa(cupcake.ID), cupcake); err != nil {
		l.Error("activity_log_failed", "error", err)
	}
	h.publish(c, map[string]interface{}{
		"type":      "product_created",
		"userID":    userID,
		"cupcakeID": cupcake.ID,
		"title":     cupcake.Title,
	})

	l.Info("cupcake_created", "cupcakeID", cupcake.ID)
	return c.JSON(http.StatusCreated, cupcake)
}

func (h *AdminHandler) PatchCupcake(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_cupcake_patch")

	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req cupcakeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var cupcake models.Cupcake
	if err := h.DB.WithContext(ctx).First(&cupcake, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cupcake not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	cupcake.Title = req.Title
	cupcake.Description = req.Description
	cupcake.Ingredients = req.Ingredients
	cupcake.Price = req.Price
	cupcake.Image = req.Image
	cupcake.Stock = req.Stock
	cupcake.Discount = req.Discount
	cupcake.IsBlackFriday = req.IsBlackFriday
	cupcake.IsChristmas = req.IsChristmas
	cupcake.PromotionType = req.PromotionType
	cupcake.PromotionValue = req.PromotionValue
	cupcake.PromotionStartDate = req.PromotionStartDate
	cupcake.PromotionEndDate = req.PromotionEndDate

	if err := h.DB.WithContext(ctx).Save(&cupcake).Error; err != nil {
		l.Error("cupcake_patch_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := activity.Log(h.DB.WithContext(ctx), userID, "update", "cupcakes", strconv.Itoa(cupcake.ID), req); err != nil {
		l.Error("activity_log_failed", "error", err)
	}
	h.publish(c, map[string]interface{}{
		"type":      "product_updated",
		"userID":    userID,
		"cupcakeID": cupcake.ID,
		"title":     cupcake.Title,
	})

	return c.JSON(http.StatusOK, cupcake)
}

func (h *AdminHandler) DeleteCupcake(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_cupcake_delete")

	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.WithContext(ctx).Delete(&models.Cupcake{}, id).Error; err != nil {
		l.Error("cupcake_delete_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := activity.Log(h.DB.WithContext(ctx), userID, "delete", "cupcakes", strconv.Itoa(id), nil); err != nil {
		l.Error("activity_log_failed", "error", err)
	}
	h.publish(c, map[string]interface{}{
		"type":      "product_deleted",
		"userID":    userID,
		"cupcakeID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

type batchUpdateRequest struct {
	IDs                []int      `json:"ids"`
	Price              *float64   `json:"price"`
	Discount           *int       `json:"discount"`
	PromotionType      *string    `json:"promotion_type"`
	PromotionValue     *float64   `json:"promotion_value"`
	PromotionStartDate *time.Time `json:"promotion_start_date"`
	PromotionEndDate   *time.Time `json:"promotion_end_date"`
}

// BatchUpdate applies a sparse patch to a selected id set in one statement.
// Either the whole batch lands or none of it does; there is no per-row
// accounting.
func (h *AdminHandler) BatchUpdate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_batch_update")

	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	var req batchUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "select at least one cupcake")
	}

	patch := map[string]interface{}{}
	if req.Price != nil {
		patch["price"] = *req.Price
	}
	if req.Discount != nil {
		if *req.Discount < 0 || *req.Discount > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, "discount must be between 0 and 100")
		}
		patch["discount"] = *req.Discount
	}
	if req.PromotionType != nil {
		patch["promotion_type"] = *req.PromotionType
		if req.PromotionValue != nil {
			patch["promotion_value"] = *req.PromotionValue
		}
		if req.PromotionStartDate != nil {
			patch["promotion_start_date"] = *req.PromotionStartDate
		}
		if req.PromotionEndDate != nil {
			patch["promotion_end_date"] = *req.PromotionEndDate
		}
		switch *req.PromotionType {
		case "blackfriday":
			patch["is_black_friday"] = true
		case "christmas":
			patch["is_christmas"] = true
		}
	}
	if len(patch) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	res := h.DB.WithContext(ctx).Model(&models.Cupcake{}).
		Where("id IN ?", req.IDs).
		Updates(patch)
	if res.Error != nil {
		l.Error("batch_update_failed", "error", res.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	entityID := strings.Trim(strings.Join(strings.Fields(fmt.Sprint(req.IDs)), ","), "[]")
	if err := activity.Log(h.DB.WithContext(ctx), userID, "batch_update", "cupcakes", entityID, patch); err != nil {
		l.Error("activity_log_failed", "error", err)
	}
	h.publish(c, map[string]interface{}{
		"type":    "products_batch_updated",
		"userID":  userID,
		"ids":     req.IDs,
		"updated": res.RowsAffected,
	})

	l.Info("batch_updated", "ids", req.IDs, "rows", res.RowsAffected)
	return c.JSON(http.StatusOK, echo.Map{
		"updated": res.RowsAffected,
	})
}

func (h *AdminHandler) publish(c echo.Context, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["userID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
