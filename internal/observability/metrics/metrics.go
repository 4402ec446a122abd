// Package metrics defines the metric names and tags the console emits.
package metrics

// Result tag values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)
