package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ghost-ofc/peru-reservas/internal/model"
	"github.com/Ghost-ofc/peru-reservas/internal/repository"
)

// CatalogHandler serves the public tour catalog. The list route sits behind
// the Redis response cache; the catalog changes rarely and staleness there
// is harmless, unlike availability.
type CatalogHandler struct {
	Destinations *repository.DestinationRepo
}

func NewCatalogHandler(d *repository.DestinationRepo) *CatalogHandler {
	return &CatalogHandler{Destinations: d}
}

type destinationResp struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Region         string `json:"region"`
	UnitPriceCents uint32 `json:"unit_price_cents"`
	SlotCapacity   int    `json:"slot_capacity"`
}

func toDestinationResp(d model.Destination) destinationResp {
	return destinationResp{
		ID:             d.ID,
		Name:           d.Name,
		Region:         d.Region,
		UnitPriceCents: d.UnitPriceCents,
		SlotCapacity:   d.SlotCapacity,
	}
}

// List: all bookable destinations.
func (h *CatalogHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Destinations.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]destinationResp, 0, len(items))
	for _, d := range items {
		out = append(out, toDestinationResp(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"destinations": out})
}

// Get: a single destination by id.
func (h *CatalogHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Destinations.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrDestinationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "destination not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toDestinationResp(*d))
}
