package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"mira/internal/model"
	"mira/internal/repository"
)

// ListingStore is the read side of the catalog
type ListingStore interface {
	ListAll(ctx context.Context) ([]model.Listing, error)
	Get(ctx context.Context, id int64) (*model.Listing, error)
}

// ListingsHandler serves catalog lookups
type ListingsHandler struct {
	store ListingStore
}

// NewListingsHandler creates a new listings handler
func NewListingsHandler(store ListingStore) *ListingsHandler {
	return &ListingsHandler{store: store}
}

// List handles GET /api/properties
func (h *ListingsHandler) List(c *gin.Context) {
	listings, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve properties"})
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}

	c.JSON(http.StatusOK, model.ListingsResponse{
		Properties: listings,
		Total:      len(listings),
	})
}

// Get handles GET /api/property/:id
func (h *ListingsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	listing, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrListingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve property"})
		return
	}

	c.JSON(http.StatusOK, model.ListingResponse{Property: *listing})
}
