package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/maurocmendes/leechycupcakes/internal/logging"
	"github.com/maurocmendes/leechycupcakes/internal/models"
	"github.com/maurocmendes/leechycupcakes/internal/service"
)

// GetAccount returns the authenticated user's profile.
func (h *AuthHandler) GetAccount(c echo.Context) error {
	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	var profile models.Profile
	if err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, profile)
}

type accountUpdateRequest struct {
	Phone          *string `json:"phone"`
	CEP            *string `json:"cep"`
	Address        *string `json:"address"`
	Number         *string `json:"number"`
	Complement     *string `json:"complement"`
	Neighborhood   *string `json:"neighborhood"`
	City           *string `json:"city"`
	AdditionalInfo *string `json:"additional_info"`
}

// UpdateAccount patches the mutable profile sections (address, phone,
// additional info). Identity fields are fixed at registration.
func (h *AuthHandler) UpdateAccount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_update")

	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	var req accountUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	patch := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			patch[col] = *v
		}
	}
	set("phone", req.Phone)
	set("cep", req.CEP)
	set("address", req.Address)
	set("number", req.Number)
	set("complement", req.Complement)
	set("neighborhood", req.Neighborhood)
	set("city", req.City)
	set("additional_info", req.AdditionalInfo)

	if len(patch) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	res := h.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).Updates(patch)
	if res.Error != nil {
		l.Error("account_update_failed", "error", res.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}

	var profile models.Profile
	if err := h.DB.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("account_updated", "userID", userID)
	return c.JSON(http.StatusOK, profile)
}

// DeleteAccount removes the user and everything keyed to it: profile, cart
// mirror, refresh tokens. Orders stay for bookkeeping.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_delete")

	userID, err := service.UserID(c)
	if err != nil {
		return err
	}

	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if txErr != nil {
		l.Error("account_delete_failed", "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]interface{}{
		"type":   "user_deleted",
		"userID": userID,
	})

	c.SetCookie(service.DeleteCookie("refreshToken", "/"))
	c.SetCookie(service.DeleteCookie("accessToken", "/"))
	l.Info("account_deleted", "userID", userID)
	return c.NoContent(http.StatusNoContent)
}
