package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
	"github.com/urbanmart/marketplace-admin/internal/observability/statsd"
)

func TestEmitUpstreamRequest(t *testing.T) {
	var rec statsd.Recorder

	EmitUpstreamRequest(&rec, UpstreamMetric{Resource: "orders", Operation: "list", Status: 200, Duration: 40 * time.Millisecond})
	EmitUpstreamRequest(&rec, UpstreamMetric{Resource: "orders", Operation: "list", Status: 503, Err: apperrors.Server(503, "down")})

	counts := rec.Named("upstream.request")
	require.Len(t, counts, 2)
	assert.Equal(t, "success", counts[0].Tags["result"])
	assert.Equal(t, "200", counts[0].Tags["status"])
	assert.Equal(t, "error", counts[1].Tags["result"])
	assert.Equal(t, "marketplace_server", counts[1].Tags["error_class"])
	assert.Len(t, rec.Named("upstream.duration"), 1, "timing only when a duration is known")
}

func TestEmitMutationAndCache(t *testing.T) {
	var rec statsd.Recorder

	EmitMutation(&rec, MutationMetric{Resource: "vendors", Action: "delete"})
	CacheLookup(&rec, "categories", true)
	EmitUpstreamRequest(nil, UpstreamMetric{})

	require.Len(t, rec.Named("console.mutation"), 1)
	assert.Equal(t, "hit", rec.Named("lookup.cache")[0].Tags["result"])
}
