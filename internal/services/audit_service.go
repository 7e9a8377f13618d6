package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"marketplace/internal/actor"
	"marketplace/internal/audit"
	apperrors "marketplace/internal/errors"
	"marketplace/internal/logger"
	"marketplace/internal/models"
	"marketplace/internal/pagination"
	"marketplace/internal/telemetry"
)

const shipTimeout = 5 * time.Second

// auditedRoles is the allow-list of roles whose actions are recorded.
var auditedRoles = map[models.Role]bool{
	models.RoleAdmin: true,
}

// auditService handles audit log recording.
type auditService struct {
	db      *gorm.DB
	shipper audit.Shipper
}

// NewAuditService creates a new AuditServicer. A nil shipper disables
// external shipping.
func NewAuditService(db *gorm.DB, shipper audit.Shipper) AuditServicer {
	if shipper == nil {
		shipper = audit.NopShipper{}
	}
	return &auditService{db: db, shipper: shipper}
}

// LogAdminAction records an admin action. It never panics into the caller.
func (s *auditService) LogAdminAction(ctx context.Context, action, target string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.AuditRecordsTotal.WithLabelValues(telemetry.AuditOutcomeFailed).Inc()
			logger.Get().Errorw("recovered panic while recording audit entry", "panic", r, "action", action)
			err = apperrors.Wrap(apperrors.ErrAuditWriteFailed, fmt.Errorf("panic: %v", r))
		}
	}()

	a, ok := actor.FromContext(ctx)
	if !ok {
		telemetry.AuditRecordsTotal.WithLabelValues(telemetry.AuditOutcomeSkippedNoActor).Inc()
		return nil
	}
	if !auditedRoles[a.Role] {
		telemetry.AuditRecordsTotal.WithLabelValues(telemetry.AuditOutcomeSkippedRole).Inc()
		return nil
	}

	entry := &models.AuditLog{
		Action:      action,
		Target:      target,
		PerformedBy: a.Label(),
		ActorID:     a.ID,
		RequestID:   actor.RequestID(ctx),
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		telemetry.AuditRecordsTotal.WithLabelValues(telemetry.AuditOutcomeFailed).Inc()
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"actor_id", a.ID,
			"action", action,
			"target", target,
		)
		return apperrors.Wrap(apperrors.ErrAuditWriteFailed, err)
	}
	telemetry.AuditRecordsTotal.WithLabelValues(telemetry.AuditOutcomeRecorded).Inc()

	s.ship(ctx, entry)
	return nil
}

// ship forwards a persisted entry. The request may finish before the sink
// answers, so the request's cancellation is detached.
func (s *auditService) ship(ctx context.Context, entry *models.AuditLog) {
	shipCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shipTimeout)
	defer cancel()

	if err := s.shipper.Ship(shipCtx, audit.EntryFromLog(entry)); err != nil {
		telemetry.AuditShipFailuresTotal.Inc()
		logger.Get().Warnw("failed to ship audit log entry", "error", err, "audit_id", entry.ID)
	}
}

// ListAuditLogs returns the audit trail newest first.
func (s *auditService) ListAuditLogs(ctx context.Context, page pagination.PageRequest, filter AuditFilter) (*pagination.PageResponse[models.AuditLog], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.Action != "" {
		base = base.Where("LOWER(action) LIKE ?", containsPattern(filter.Action))
	}
	if filter.ActorID != nil {
		base = base.Where("actor_id = ?", *filter.ActorID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.AuditLog
	if err := base.Order("created_at DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}
