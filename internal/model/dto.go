package model

// SubmitResponse is the body returned by the spreadsheet endpoint.
type SubmitResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (r SubmitResponse) Succeeded() bool {
	return r.Status == "success"
}

type PaymentRequest struct {
	AdmissionNo string `json:"admissionNo"`
	Amount      string `json:"amount"`
}

type QueueStats struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Loading int `json:"loading"`
	Success int `json:"success"`
	Error   int `json:"error"`
}

type QueueResponse struct {
	Items    []SubmissionItem `json:"items"`
	Stats    QueueStats       `json:"stats"`
	InFlight bool             `json:"in_flight"`
}

// OutcomeRecord is pushed to Redis after an item reaches a terminal state.
type OutcomeRecord struct {
	Item        SubmissionItem `json:"item"`
	CompletedAt string         `json:"completed_at"`
}
