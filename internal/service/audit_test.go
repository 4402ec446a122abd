package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
	"github.com/urbanmart/marketplace-admin/internal/mocks"
	"github.com/urbanmart/marketplace-admin/internal/testutil"
)

func TestAuditService_ListViewPagesStore(t *testing.T) {
	t.Parallel()
	reader := mocks.NewMockAuditReader(gomock.NewController(t))
	svc := NewAuditService(AuditServiceOptions{Reader: reader, PageSize: 2})

	target := "o-1"
	reader.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, opts model.AuditListOptions) (model.AuditPage, error) {
			assert.Equal(t, 2, opts.Page)
			assert.Equal(t, 2, opts.Limit)
			require.NotNil(t, opts.Resource)
			assert.Equal(t, "orders", *opts.Resource)
			assert.Nil(t, opts.Actor)
			return model.AuditPage{
				Entries: []model.AuditEntry{{
					ID: "a1", Actor: "ops@example.com", Resource: "orders", Action: "status",
					TargetID: &target, Outcome: model.AuditOutcomeFailure, Message: "Invalid status",
					CreatedAt: testutil.TestTime(),
				}},
				TotalPages: 3,
			}, nil
		})

	ctrl, err := svc.NewListView(2, AuditFilter{Resource: " orders ", Actor: "  "})
	require.NoError(t, err)
	defer ctrl.Close()
	require.NoError(t, ctrl.Mount(context.Background()))

	view := ctrl.Snapshot()
	assert.True(t, view.State.IsSuccess())
	assert.Equal(t, 3, view.Page.Total)
	require.Len(t, view.Table.Rows, 1)
	cells := view.Table.Rows[0].Cells
	assert.Equal(t, testutil.TestTime().Format(auditTimeLayout), cells[0].Text)
	assert.Equal(t, "o-1", cells[4].Text)
	assert.Equal(t, "Failed", cells[5].Text)
}

func TestAuditService_StoreErrorBecomesErrorState(t *testing.T) {
	t.Parallel()
	reader := mocks.NewMockAuditReader(gomock.NewController(t))
	svc := NewAuditService(AuditServiceOptions{Reader: reader})
	reader.EXPECT().List(gomock.Any(), gomock.Any()).Return(model.AuditPage{}, errors.New("connection refused"))

	ctrl, err := svc.NewListView(1, AuditFilter{})
	require.NoError(t, err)
	defer ctrl.Close()

	require.Error(t, ctrl.Mount(context.Background()))
	view := ctrl.Snapshot()
	assert.True(t, view.State.IsError())
	assert.Empty(t, view.Rows)
}

func TestAuditService_Disabled(t *testing.T) {
	t.Parallel()
	svc := NewAuditService(AuditServiceOptions{})
	assert.False(t, svc.Enabled())

	_, err := svc.NewListView(1, AuditFilter{})
	assert.True(t, apperrors.IsNotFound(err))

	var nilSvc *AuditService
	assert.False(t, nilSvc.Enabled())
}
