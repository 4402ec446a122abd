package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
	"github.com/urbanmart/marketplace-admin/internal/ports"
)

// SettingsServiceOptions groups dependencies for SettingsService.
type SettingsServiceOptions struct {
	API ports.MarketplaceAPI
	// Audit is optional.
	Audit  ports.AuditRecorder
	Logger *slog.Logger
}

// SettingsService reads and writes platform settings.
type SettingsService struct {
	api    ports.MarketplaceAPI
	audit  ports.AuditRecorder
	logger *slog.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(opts SettingsServiceOptions) *SettingsService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{api: opts.API, audit: opts.Audit, logger: logger.With("component", "settings_service")}
}

// Get returns the current settings. A marketplace that has never saved
// settings answers 404; that yields the defaults.
func (s *SettingsService) Get(ctx context.Context) (model.Settings, error) {
	settings, err := s.api.GetSettings(ctx)
	if err != nil {
		if apperrors.GetStatus(err) == http.StatusNotFound {
			s.logger.InfoContext(ctx, "settings not found upstream, using defaults")
			return model.DefaultSettings(), nil
		}
		return model.Settings{}, err
	}
	return settings, nil
}

// Save validates and stores settings. Validation failures come back as a
// validation error naming the first offending field; FieldErrors recovers
// the rest.
func (s *SettingsService) Save(ctx context.Context, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		appErr := &apperrors.AppError{Code: apperrors.ErrCodeValidation, Message: "Invalid settings", Cause: err}
		var fe *model.SettingsFieldError
		if errors.As(err, &fe) {
			appErr.Field = fe.Field
			appErr.Message = fe.Message
		}
		return appErr
	}
	err := s.api.SaveSettings(ctx, settings)
	if s.audit != nil {
		entry := model.AuditEntry{
			Actor:    actorFrom(ctx),
			Resource: "settings",
			Action:   "update",
			Outcome:  model.AuditOutcomeSuccess,
		}
		if err != nil {
			entry.Outcome = model.AuditOutcomeFailure
			entry.Message = apperrors.UserMessage(err)
		}
		if aerr := s.audit.Record(context.WithoutCancel(ctx), entry); aerr != nil {
			s.logger.ErrorContext(ctx, "record audit entry failed", "resource", "settings", "error", aerr)
		}
	}
	return err
}

// FieldErrors flattens a settings error into field -> message for
// re-rendering the form.
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var fe *model.SettingsFieldError
			if errors.As(e, &fe) {
				out[fe.Field] = fe.Message
			}
		}
	}
	if f := apperrors.GetField(err); f != "" {
		if _, ok := out[f]; !ok {
			out[f] = apperrors.UserMessage(err)
		}
	}
	return out
}
