package excel

import (
	"context"
	"strconv"

	"fee-desk/internal/model"
	"fee-desk/pkg/errors"
)

// Validator reports problems that do not stop a conversion. The roster
// keyed by admission number keeps only the last of any duplicates.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(ctx context.Context, rows []model.RosterRow) []error {
	var problems []error
	seen := make(map[string]int, len(rows))

	for i, row := range rows {
		if prev, dup := seen[row.AdmissionNo]; dup {
			problems = append(problems, errors.ValidationError{
				Field:   "admissionNo",
				Value:   row.AdmissionNo,
				Message: "duplicate of entry " + strconv.Itoa(prev+1),
			})
		}
		seen[row.AdmissionNo] = i

		if row.Name == "" {
			problems = append(problems, errors.ValidationError{
				Field:   "name",
				Value:   row.AdmissionNo,
				Message: "student has no name",
			})
		}
		if row.Class == "" {
			problems = append(problems, errors.ValidationError{
				Field:   "class",
				Value:   row.AdmissionNo,
				Message: "student has no class",
			})
		}
	}

	return problems
}
