package services

import (
	"context"
	"sync"

	"marketplace/internal/audit"
	"marketplace/internal/models"
	"marketplace/internal/pagination"
)

// auditCall is one recorded LogAdminAction invocation.
type auditCall struct {
	ctx    context.Context
	action string
	target string
}

// recordingAuditService captures LogAdminAction calls.
type recordingAuditService struct {
	mu    sync.Mutex
	calls []auditCall
	err   error
}

func (r *recordingAuditService) LogAdminAction(ctx context.Context, action, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, auditCall{ctx: ctx, action: action, target: target})
	return r.err
}

func (r *recordingAuditService) ListAuditLogs(context.Context, pagination.PageRequest, AuditFilter) (*pagination.PageResponse[models.AuditLog], error) {
	resp := pagination.NewPageResponse([]models.AuditLog{}, 1, 20, 0)
	return &resp, nil
}

var _ AuditServicer = (*recordingAuditService)(nil)

// captureShipper records shipped entries.
type captureShipper struct {
	mu      sync.Mutex
	entries []*audit.Entry
	err     error
}

func (s *captureShipper) Ship(_ context.Context, e *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return s.err
}

func (s *captureShipper) Close() error { return nil }

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }
