package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
)

func TestAuditRepo_WithoutDatabase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewAuditRepo(nil)

	valid := model.AuditEntry{Actor: "a", Resource: "orders", Action: "delete", Outcome: model.AuditOutcomeSuccess}
	require.ErrorIs(t, repo.Record(ctx, valid), ErrNoDatabase)

	_, err := repo.List(ctx, model.AuditListOptions{})
	require.ErrorIs(t, err, ErrNoDatabase)

	_, err = repo.DeleteOlderThan(ctx, time.Hour, 10)
	require.ErrorIs(t, err, ErrNoDatabase)

	var nilRepo *AuditRepo
	_, err = nilRepo.DeleteOlderThan(ctx, time.Hour, 10)
	require.ErrorIs(t, err, ErrNoDatabase)
}

func TestAuditRepo_RecordRejectsInvalidEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry model.AuditEntry
		want  string
	}{
		{name: "actor", entry: model.AuditEntry{Resource: "orders", Action: "delete", Outcome: model.AuditOutcomeSuccess}, want: "actor is required"},
		{name: "blank action", entry: model.AuditEntry{Actor: "cli", Resource: "orders", Action: "  ", Outcome: model.AuditOutcomeSuccess}, want: "action is required"},
		{name: "outcome", entry: model.AuditEntry{Actor: "cli", Resource: "orders", Action: "delete"}, want: "outcome must be success or failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			// No database: validation must answer before the store is needed.
			err := NewAuditRepo(nil).Record(context.Background(), tt.entry)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.NotErrorIs(t, err, ErrNoDatabase)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
