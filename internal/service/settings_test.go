package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
	"github.com/urbanmart/marketplace-admin/internal/mocks"
)

func newSettingsService(t *testing.T) (*mocks.MockMarketplaceAPI, *mocks.MockAuditRecorder, *SettingsService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMarketplaceAPI(ctrl)
	audit := mocks.NewMockAuditRecorder(ctrl)
	return api, audit, NewSettingsService(SettingsServiceOptions{API: api, Audit: audit})
}

func TestSettingsService_Get(t *testing.T) {
	t.Parallel()

	stored := model.Settings{VendorCommission: 12.5, PlatformFee: 20, GST: 18, DeliveryFee: 40}

	tests := []struct {
		name    string
		result  model.Settings
		err     error
		want    model.Settings
		wantErr bool
	}{
		{name: "stored settings", result: stored, want: stored},
		{
			name: "not found yields defaults",
			err:  &apperrors.AppError{Code: apperrors.ErrCodeValidation, Message: "Settings not found", Status: 404},
			want: model.DefaultSettings(),
		},
		{name: "server failure surfaces", err: apperrors.Server(503, "unavailable"), wantErr: true},
		{name: "auth failure surfaces", err: apperrors.Auth("expired"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			api, _, svc := newSettingsService(t)
			api.EXPECT().GetSettings(gomock.Any()).Return(tt.result, tt.err)

			got, err := svc.Get(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_SaveRejectsInvalidWithoutCallingAPI(t *testing.T) {
	t.Parallel()
	_, _, svc := newSettingsService(t)

	err := svc.Save(context.Background(), model.Settings{VendorCommission: 120, PlatformFee: -1, GST: math.NaN()})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "vendorCommission", apperrors.GetField(err))

	fields := FieldErrors(err)
	assert.Equal(t, map[string]string{
		"vendorCommission": "Vendor commission cannot exceed 100%",
		"plateformfee":     "Platform fee cannot be negative",
		"gst":              "GST must be a number",
	}, fields)
}

func TestSettingsService_SaveRecordsAudit(t *testing.T) {
	t.Parallel()
	api, audit, svc := newSettingsService(t)

	s := model.Settings{VendorCommission: 10, PlatformFee: 5, GST: 18, DeliveryFee: 0}
	api.EXPECT().SaveSettings(gomock.Any(), s).Return(nil)
	audit.EXPECT().Record(gomock.Any(), model.AuditEntry{
		Actor:    ActorCLI,
		Resource: "settings",
		Action:   "update",
		Outcome:  model.AuditOutcomeSuccess,
	}).Return(nil)

	require.NoError(t, svc.Save(context.Background(), s))
}

func TestSettingsService_SaveUpstreamRejection(t *testing.T) {
	t.Parallel()
	api, audit, svc := newSettingsService(t)

	rejected := apperrors.Validation("GST must be set")
	api.EXPECT().SaveSettings(gomock.Any(), gomock.Any()).Return(rejected)
	audit.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e model.AuditEntry) error {
		assert.Equal(t, model.AuditOutcomeFailure, e.Outcome)
		assert.Equal(t, "GST must be set", e.Message)
		return nil
	})

	err := svc.Save(context.Background(), model.Settings{})
	require.ErrorIs(t, err, rejected)
	assert.Empty(t, FieldErrors(err))
}
