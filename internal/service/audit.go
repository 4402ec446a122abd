package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
	"github.com/urbanmart/marketplace-admin/internal/ports"
)

const auditTimeLayout = "02 Jan 2006 15:04"

// AuditServiceOptions groups dependencies for AuditService.
type AuditServiceOptions struct {
	Reader   ports.AuditReader
	PageSize int
	Logger   *slog.Logger
}

// AuditService pages through the console audit trail.
type AuditService struct {
	reader   ports.AuditReader
	pageSize int
	logger   *slog.Logger
}

// NewAuditService constructs an AuditService. A nil reader means the audit
// store is not configured; Enabled reports false and no view can be built.
func NewAuditService(opts AuditServiceOptions) *AuditService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.PageSize
	if size <= 0 {
		size = model.DefaultAuditPageSize
	}
	return &AuditService{reader: opts.Reader, pageSize: size, logger: logger.With("component", "audit_service")}
}

// Enabled reports whether an audit store is configured.
func (s *AuditService) Enabled() bool { return s != nil && s.reader != nil }

// AuditFilter narrows the audit list.
type AuditFilter struct {
	Resource string
	Actor    string
}

// NewListView builds a pagination controller over the audit store. The
// store needs no bearer credential.
func (s *AuditService) NewListView(page int, f AuditFilter) (*listing.Controller[model.AuditEntry], error) {
	if !s.Enabled() {
		return nil, apperrors.NotFound("Audit trail is not configured")
	}
	opts := model.AuditListOptions{Limit: s.pageSize}
	if v := strings.TrimSpace(f.Resource); v != "" {
		opts.Resource = &v
	}
	if v := strings.TrimSpace(f.Actor); v != "" {
		opts.Actor = &v
	}
	binder := listing.NewBinder(listing.BinderOptions[model.AuditEntry]{
		Fetch: func(ctx context.Context, page int) (listing.Result[model.AuditEntry], error) {
			q := opts
			q.Page = page
			res, err := s.reader.List(ctx, q)
			if err != nil {
				return listing.Result[model.AuditEntry]{}, err
			}
			return listing.Result[model.AuditEntry]{Rows: res.Entries, TotalPages: res.TotalPages}, nil
		},
		Columns:  auditColumns(),
		RowID:    func(e model.AuditEntry) string { return e.ID },
		PageSize: s.pageSize,
		Describe: apperrors.UserMessage,
		Logger:   s.logger,
	})
	return listing.NewController(binder, page), nil
}

func auditColumns() []listing.Column[model.AuditEntry] {
	text := func(key, label string, get func(model.AuditEntry) string) listing.Column[model.AuditEntry] {
		return listing.Column[model.AuditEntry]{Key: key, Label: label,
			Render: func(rc listing.RowContext[model.AuditEntry]) listing.Cell {
				return listing.Cell{Text: get(rc.Row)}
			}}
	}
	return []listing.Column[model.AuditEntry]{
		text("when", "When", func(e model.AuditEntry) string { return e.CreatedAt.Format(auditTimeLayout) }),
		text("actor", "Admin", func(e model.AuditEntry) string { return e.Actor }),
		text("resource", "Resource", func(e model.AuditEntry) string { return e.Resource }),
		text("action", "Action", func(e model.AuditEntry) string { return e.Action }),
		text("target", "Target", func(e model.AuditEntry) string {
			if e.TargetID == nil {
				return ""
			}
			return *e.TargetID
		}),
		{Key: "outcome", Label: "Outcome", Render: func(rc listing.RowContext[model.AuditEntry]) listing.Cell {
			if rc.Row.Outcome == model.AuditOutcomeSuccess {
				return listing.Cell{Text: "Success", Tone: listing.ToneSuccess}
			}
			return listing.Cell{Text: "Failed", Tone: listing.ToneDanger}
		}},
		text("message", "Message", func(e model.AuditEntry) string { return e.Message }),
	}
}
