package listing

// Status is the coarse phase of a list view's most recent fetch.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// RequestState governs whether a view shows a spinner, the table, or an error banner.
type RequestState struct {
	Status  Status
	Message string
}

// Idle is the state before any fetch has been issued.
func Idle() RequestState { return RequestState{Status: StatusIdle} }

// Loading marks a fetch in flight.
func Loading() RequestState { return RequestState{Status: StatusLoading} }

// Succeeded marks a completed fetch.
func Succeeded() RequestState { return RequestState{Status: StatusSuccess} }

// Failed marks a failed fetch with a user-facing message.
func Failed(message string) RequestState {
	return RequestState{Status: StatusError, Message: message}
}

func (s RequestState) IsIdle() bool    { return s.Status == StatusIdle || s.Status == "" }
func (s RequestState) IsLoading() bool { return s.Status == StatusLoading }
func (s RequestState) IsSuccess() bool { return s.Status == StatusSuccess }
func (s RequestState) IsError() bool   { return s.Status == StatusError }

// NoticeKind classifies a transient notification.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message produced by a row action.
type Notice struct {
	Kind    NoticeKind
	Message string
}
