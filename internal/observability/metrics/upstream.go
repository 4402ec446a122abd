package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/urbanmart/marketplace-admin/internal/observability/errors"
	"github.com/urbanmart/marketplace-admin/internal/observability/statsd"
)

// UpstreamMetric describes one request to the marketplace API.
type UpstreamMetric struct {
	Resource  string
	Operation string
	Status    int
	Duration  time.Duration
	Err       error
}

// EmitUpstreamRequest counts and times a marketplace API request.
func EmitUpstreamRequest(sink statsd.Sink, in UpstreamMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"resource":  in.Resource,
		"operation": in.Operation,
		"result":    resultOf(in.Err),
	}
	if in.Status > 0 {
		tags["status"] = strconv.Itoa(in.Status)
	}
	if in.Err != nil {
		tags["error_class"] = obserrors.Classify(in.Err)
	}
	sink.Count("upstream.request", 1, tags)
	if in.Duration > 0 {
		sink.Timing("upstream.duration", in.Duration, CloneTags(tags))
	}
}

// MutationMetric describes one console mutation (create, update, delete, action).
type MutationMetric struct {
	Resource string
	Action   string
	Err      error
}

// EmitMutation counts a console mutation by outcome.
func EmitMutation(sink statsd.Sink, in MutationMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"resource": in.Resource,
		"action":   in.Action,
		"result":   resultOf(in.Err),
	}
	if in.Err != nil {
		tags["error_class"] = obserrors.Classify(in.Err)
	}
	sink.Count("console.mutation", 1, tags)
}

// CacheLookup counts lookup cache hits and misses.
func CacheLookup(sink statsd.Sink, resource string, hit bool) {
	if sink == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	sink.Count("lookup.cache", 1, map[string]string{"resource": resource, "result": result})
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
