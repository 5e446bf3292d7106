package excel

import (
	"context"
	"encoding/json"
	"fmt"

	"fee-desk/internal/model"
)

// OutputFilename is the name the converted roster is offered under.
const OutputFilename = "converted_data.json"

type ParsingStrategy interface {
	Parse(ctx context.Context, data []byte) ([]model.RosterRow, error)
	Validate(ctx context.Context, rows []model.RosterRow) []error
}

type ExcelStrategy struct {
	parser    *Parser
	validator *Validator
}

func NewExcelStrategy() ParsingStrategy {
	return &ExcelStrategy{
		parser:    NewParser(),
		validator: NewValidator(),
	}
}

func (s *ExcelStrategy) Parse(ctx context.Context, data []byte) ([]model.RosterRow, error) {
	return s.parser.Parse(ctx, data)
}

func (s *ExcelStrategy) Validate(ctx context.Context, rows []model.RosterRow) []error {
	return s.validator.Validate(ctx, rows)
}

// MarshalRoster renders rows as the pretty-printed JSON array the roster
// loader reads. An empty conversion renders as [].
func MarshalRoster(rows []model.RosterRow) ([]byte, error) {
	if rows == nil {
		rows = []model.RosterRow{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal roster: %w", err)
	}
	return data, nil
}
