package model

type SubmissionStatus string

const (
	SubmissionStatusPending SubmissionStatus = "pending"
	SubmissionStatusLoading SubmissionStatus = "loading"
	SubmissionStatusSuccess SubmissionStatus = "success"
	SubmissionStatusError   SubmissionStatus = "error"
)

// IsTerminal reports whether no further transition is allowed.
func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionStatusSuccess || s == SubmissionStatusError
}

// CanTransitionTo enforces pending -> loading -> {success, error}.
func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	switch s {
	case SubmissionStatusPending:
		return next == SubmissionStatusLoading
	case SubmissionStatusLoading:
		return next.IsTerminal()
	default:
		return false
	}
}

// SubmissionItem is a snapshot of one payment taken at enqueue time. It is
// also the request body sent to the remote endpoint.
type SubmissionItem struct {
	ID          string           `json:"id"`
	AdmissionNo string           `json:"admissionNo"`
	Name        string           `json:"name"`
	Class       string           `json:"class"`
	Amount      string           `json:"amount"`
	Status      SubmissionStatus `json:"status"`
	Timestamp   string           `json:"timestamp"`
	Message     string           `json:"message,omitempty"`
}

type SubmissionPayload struct {
	AdmissionNo string `json:"admissionNo"`
	Name        string `json:"name"`
	Class       string `json:"class"`
	Amount      string `json:"amount"`
}
