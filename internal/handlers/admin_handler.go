package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/logger"
	"marketplace/internal/models"
	"marketplace/internal/services"
)

// AdminHandler serves the moderation and audit routes under /admin.
type AdminHandler struct {
	listingService services.ListingServicer
	userService    services.UserServicer
	auditService   services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(listingService services.ListingServicer, userService services.UserServicer, auditService services.AuditServicer) *AdminHandler {
	return &AdminHandler{listingService: listingService, userService: userService, auditService: auditService}
}

// ModerateListingRequest is the moderator's update payload.
type ModerateListingRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Price       *int64  `json:"price" binding:"omitempty,gte=0"`
	Status      *string `json:"status" binding:"omitempty,listing_status"`
}

// UpdateRoleRequest is the payload for changing a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

// ListListings returns listings of any status for moderation
// @Summary     List listings for moderation
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by status"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Listing]
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /admin/listings [get]
func (h *AdminHandler) ListListings(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.listingService.GetListings(c.Request.Context(), page, services.ListingFilter{Status: c.Query("status")})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ModerateListing updates a listing, including its status. A status change
// made by an administrator is written to the audit trail.
// @Summary     Moderate a listing
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                    true "Listing ID"
// @Param       request body ModerateListingRequest true "Fields to change"
// @Success     200 {object} models.Listing
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Listing not found"
// @Router      /admin/listings/{id} [put]
func (h *AdminHandler) ModerateListing(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ModerateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), id, services.ListingUpdate{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Status:      req.Status,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// ListAuditLogs returns the audit trail, newest first
// @Summary     List audit entries
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       action    query string false "Substring of the action"
// @Param       actor_id  query int    false "Acting user ID"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Success     200 {object} pagination.PageResponse[models.AuditLog]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /admin/audit-logs [get]
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := services.AuditFilter{Action: c.Query("action")}
	if raw := c.Query("actor_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid actor_id"))
			return
		}
		actorID := uint(id)
		filter.ActorID = &actorID
	}

	result, err := h.auditService.ListAuditLogs(c.Request.Context(), page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateUserRole changes a user's role and records it in the audit trail
// @Summary     Change a user's role
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "User ID"
// @Param       request body UpdateRoleRequest true "New role"
// @Success     200 {object} UserResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /admin/users/{id}/role [put]
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	role := models.ParseRole(req.Role)
	user, err := h.userService.UpdateUserRole(c.Request.Context(), id, role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	action := "User Role Changed to " + role.String()
	target := fmt.Sprintf("%s (user%d)", user.Username, user.ID)
	if err := h.auditService.LogAdminAction(c.Request.Context(), action, target); err != nil {
		logger.Get().Warnw("audit write failed", "action", action, "target", target, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}
