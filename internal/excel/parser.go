package excel

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"fee-desk/internal/model"
	"fee-desk/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// Column positions in the school's fee register export. Column 2 is unused.
const (
	colAdmissionNo = 0
	colName        = 1
	colClass       = 3
	minColumns     = 4
)

var headerLabels = map[int]string{
	colAdmissionNo: "Ad.No.",
	colName:        "Name",
	colClass:       "Class",
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads the first worksheet. Everything up to and including the
// header row is discarded; rows after it need at least four columns and an
// admission number.
func (p *Parser) Parse(ctx context.Context, data []byte) ([]model.RosterRow, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w: %v", errors.ErrInvalidFileFormat, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrInvalidFileFormat
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	headerIdx := findHeader(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], errors.ErrHeaderNotFound)
	}

	roster := make([]model.RosterRow, 0, len(rows)-headerIdx-1)
	for _, row := range rows[headerIdx+1:] {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		r, ok := parseRow(row)
		if !ok {
			continue
		}
		roster = append(roster, r)
	}

	return roster, nil
}

func findHeader(rows [][]string) int {
	for i, row := range rows {
		if isHeader(row) {
			return i
		}
	}
	return -1
}

func isHeader(row []string) bool {
	if len(row) < minColumns {
		return false
	}
	for col, label := range headerLabels {
		if strings.TrimSpace(row[col]) != label {
			return false
		}
	}
	return true
}

func parseRow(row []string) (model.RosterRow, bool) {
	if len(row) < minColumns {
		return model.RosterRow{}, false
	}

	admissionNo := strings.TrimSpace(row[colAdmissionNo])
	if admissionNo == "" {
		return model.RosterRow{}, false
	}

	return model.RosterRow{
		AdmissionNo: admissionNo,
		Name:        strings.TrimSpace(row[colName]),
		Class:       strings.TrimSpace(row[colClass]),
	}, true
}
