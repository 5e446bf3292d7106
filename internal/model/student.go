package model

type StudentRecord struct {
	AdmissionNo string `json:"admissionNo"`
	Name        string `json:"name"`
	Class       string `json:"class"`
	Team        string `json:"team,omitempty"`
}

// RosterRow is the shape written by the roster converter.
type RosterRow struct {
	AdmissionNo string `json:"admissionNo"`
	Name        string `json:"name"`
	Class       string `json:"class"`
}
