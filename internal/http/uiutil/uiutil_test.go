package uiutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelative(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(time.Hour), "just now"},
		{now.Add(-59 * time.Second), "just now"},
		{now.Add(-time.Minute), "1 minute ago"},
		{now.Add(-42 * time.Minute), "42 minutes ago"},
		{now.Add(-time.Hour), "1 hour ago"},
		{now.Add(-23 * time.Hour), "23 hours ago"},
		{now.Add(-49 * time.Hour), "2 days ago"},
		{now.Add(-8 * 24 * time.Hour), "07 Jan 2025, 12:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Relative(tt.at, now), tt.at)
	}
}

func TestDateTime(t *testing.T) {
	assert.Empty(t, DateTime(time.Time{}))
	assert.Equal(t, "15 Jan 2025, 09:30", DateTime(time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Fresh bread", Truncate("Fresh bread", 11))
	assert.Equal(t, "Fres…", Truncate("Fresh bread", 5))
	assert.Equal(t, "…", Truncate("Fresh bread", 1))
	assert.Equal(t, "चाय…", Truncate("चायपत्ती", 4))
	assert.Equal(t, "Fresh bread", Truncate("Fresh bread", 0))
}
