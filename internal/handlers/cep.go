package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maurocmendes/leechycupcakes/internal/viacep"
)

// CEPHandler prefills address forms from a postal code.
type CEPHandler struct {
	Client *viacep.Client
}

func (h *CEPHandler) Lookup(c echo.Context) error {
	addr, err := h.Client.Lookup(c.Request().Context(), c.Param("code"))
	if err != nil {
		switch {
		case errors.Is(err, viacep.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "cep not found")
		case errors.Is(err, viacep.ErrInvalidCEP):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid cep")
		default:
			return echo.NewHTTPError(http.StatusBadGateway, "cep service unavailable")
		}
	}

	return c.JSON(http.StatusOK, addr)
}
