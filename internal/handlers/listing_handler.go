package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/actor"
	apperrors "marketplace/internal/errors"
	"marketplace/internal/models"
	"marketplace/internal/services"
)

// ListingHandler handles the owner-facing and public listing routes.
type ListingHandler struct {
	listingService services.ListingServicer
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingService services.ListingServicer) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// CreateListingRequest represents the request payload for creating a listing.
type CreateListingRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Price       int64  `json:"price" binding:"gte=0"`
}

// UpdateListingRequest represents the owner's edit payload. Status is
// accepted only so that an attempt to set it is rejected explicitly.
type UpdateListingRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Price       *int64  `json:"price" binding:"omitempty,gte=0"`
	Status      *string `json:"status"`
}

func (r UpdateListingRequest) toUpdate() services.ListingUpdate {
	return services.ListingUpdate{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Status:      r.Status,
	}
}

// CreateListing handles the creation of a new listing
// @Summary     Create a listing
// @Description Create a listing owned by the authenticated user. New listings are pending moderation.
// @Tags        listings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateListingRequest true "Listing details"
// @Success     201 {object} models.Listing "Listing created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /listings [post]
func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), userID, req.Title, req.Description, req.Price)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}

// GetListings returns approved listings
// @Summary     List approved listings
// @Tags        listings
// @Produce     json
// @Param       page      query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Listing]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /listings [get]
func (h *ListingHandler) GetListings(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.listingService.GetListings(c.Request.Context(), page, services.ListingFilter{Status: models.ListingStatusApproved})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetListing returns one listing. Unapproved listings are visible only to
// their owner and to moderators.
// @Summary     Get a listing
// @Tags        listings
// @Produce     json
// @Param       id path int true "Listing ID"
// @Success     200 {object} models.Listing
// @Failure     404 {object} ErrorResponse "Listing not found"
// @Router      /listings/{id} [get]
func (h *ListingHandler) GetListing(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	listing, err := h.listingService.GetListingByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if !canView(c, listing) {
		respondWithError(c, apperrors.ErrListingNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

func canView(c *gin.Context, listing *models.Listing) bool {
	if models.NormalizeStatus(listing.Status) == models.ListingStatusApproved {
		return true
	}
	a, ok := actor.FromContext(c.Request.Context())
	if !ok {
		return false
	}
	return a.ID == listing.OwnerID || a.IsAdmin() || a.Role == models.RoleEditor
}

// UpdateListing lets the owner edit a listing
// @Summary     Update own listing
// @Tags        listings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Listing ID"
// @Param       request body UpdateListingRequest true "Fields to change"
// @Success     200 {object} models.Listing
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not the owner, or status change attempted"
// @Failure     404 {object} ErrorResponse "Listing not found"
// @Router      /listings/{id} [put]
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	listing, err := h.listingService.UpdateOwnListing(c.Request.Context(), userID, id, req.toUpdate())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// DeleteListing removes an owned listing
// @Summary     Delete own listing
// @Tags        listings
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Listing ID"
// @Success     200 {object} MessageResponse
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Listing not found"
// @Router      /listings/{id} [delete]
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.listingService.DeleteListing(c.Request.Context(), userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Listing deleted successfully"})
}
