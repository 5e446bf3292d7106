package excel

import (
	"context"
	"errors"
	"testing"

	"fee-desk/internal/model"
	feeerrors "fee-desk/pkg/errors"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

// workbook builds an in-memory xlsx whose first sheet holds rows.
func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseRoster(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"St. Mary's School"},
		{"Fee register 2024", "", "", ""},
		{"Ad.No.", "Name", "Sec", "Class", "Team"},
		{101, " Asha ", "A", "5B", "Red"},
		{"0102", "Ravi", "B", "6A"},
		{"", "No Number", "C", "7A"},
		{"103", "Short"},
		{" 104 ", "Meera", "", " 4C "},
	})

	rows, err := NewParser().Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []model.RosterRow{
		{AdmissionNo: "101", Name: "Asha", Class: "5B"},
		{AdmissionNo: "0102", Name: "Ravi", Class: "6A"},
		{AdmissionNo: "104", Name: "Meera", Class: "4C"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCountsOnlyUsableRows(t *testing.T) {
	rows := [][]interface{}{{"Ad.No.", "Name", "", "Class"}}
	usable := 0
	for i := 0; i < 25; i++ {
		switch i % 3 {
		case 0:
			rows = append(rows, []interface{}{1000 + i, "Student", "", "3A"})
			usable++
		case 1:
			rows = append(rows, []interface{}{"", "Blank", "", "3A"})
		case 2:
			rows = append(rows, []interface{}{1000 + i, "Student"})
		}
	}

	got, err := NewParser().Parse(context.Background(), workbook(t, rows))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != usable {
		t.Errorf("Parse() returned %d rows, want %d", len(got), usable)
	}
}

func TestParseHeaderRequired(t *testing.T) {
	tests := map[string][][]interface{}{
		"no header":         {{"101", "Asha", "", "5B"}},
		"class in column 2": {{"Ad.No.", "Name", "Class", "Sec"}, {"101", "Asha", "5B", "A"}},
		"lowercase labels":  {{"ad.no.", "name", "", "class"}, {"101", "Asha", "", "5B"}},
		"header too narrow": {{"Ad.No.", "Name"}},
	}

	for name, rows := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewParser().Parse(context.Background(), workbook(t, rows))
			if !errors.Is(err, feeerrors.ErrHeaderNotFound) {
				t.Errorf("Parse() error = %v, want ErrHeaderNotFound", err)
			}
		})
	}
}

func TestParseHeaderOnly(t *testing.T) {
	rows, err := NewParser().Parse(context.Background(), workbook(t, [][]interface{}{{"Ad.No.", "Name", "", "Class"}}))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Parse() = %v, want no rows", rows)
	}
}

func TestParseRejectsNonExcel(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), []byte("admission,name\n101,Asha\n"))
	if !errors.Is(err, feeerrors.ErrInvalidFileFormat) {
		t.Errorf("Parse() error = %v, want ErrInvalidFileFormat", err)
	}
}

func TestMarshalRoster(t *testing.T) {
	data, err := MarshalRoster([]model.RosterRow{{AdmissionNo: "101", Name: "Asha", Class: "5B"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "[\n  {\n    \"admissionNo\": \"101\",\n    \"name\": \"Asha\",\n    \"class\": \"5B\"\n  }\n]"
	if string(data) != want {
		t.Errorf("MarshalRoster() =\n%s\nwant\n%s", data, want)
	}

	empty, _ := MarshalRoster(nil)
	if string(empty) != "[]" {
		t.Errorf("MarshalRoster(nil) = %s, want []", empty)
	}
}

func TestValidatorReportsProblems(t *testing.T) {
	rows := []model.RosterRow{
		{AdmissionNo: "101", Name: "Asha", Class: "5B"},
		{AdmissionNo: "102", Name: "", Class: "5B"},
		{AdmissionNo: "101", Name: "Asha Again", Class: ""},
	}

	problems := NewExcelStrategy().Validate(context.Background(), rows)
	var fields []string
	for _, p := range problems {
		var ve feeerrors.ValidationError
		if !errors.As(p, &ve) {
			t.Fatalf("problem %v is not a ValidationError", p)
		}
		fields = append(fields, ve.Field)
	}
	if diff := cmp.Diff([]string{"name", "admissionNo", "class"}, fields); diff != "" {
		t.Errorf("problem fields mismatch (-want +got):\n%s", diff)
	}
}
