package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fee-desk/internal/model"
	"fee-desk/internal/storage"
	feeerrors "fee-desk/pkg/errors"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConvertSingleFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "register.xlsx")
	writeWorkbook(t, input, [][]interface{}{
		{"Fee register"},
		{"Ad.No.", "Name", "Sec", "Class"},
		{"101", "Asha", "A", "5B"},
		{"", "Skipped", "A", "5B"},
	})

	outDir := filepath.Join(dir, "out")
	stdout, err := execute(t, "convert", input, "-o", outDir)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if !strings.Contains(stdout, "1 students") {
		t.Errorf("stdout = %q", stdout)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "converted_data.json"))
	if err != nil {
		t.Fatal(err)
	}
	var rows []model.RosterRow
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]model.RosterRow{{AdmissionNo: "101", Name: "Asha", Class: "5B"}}, rows); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertManyFilesReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "grade5.xlsx")
	bad := filepath.Join(dir, "grade6.xlsx")
	writeWorkbook(t, good, [][]interface{}{{"Ad.No.", "Name", "", "Class"}, {"101", "Asha", "", "5B"}})
	writeWorkbook(t, bad, [][]interface{}{{"No", "header", "here", "at all"}})

	stdout, err := execute(t, "convert", good, bad, "-o", dir)
	if !errors.Is(err, feeerrors.ErrHeaderNotFound) {
		t.Fatalf("convert error = %v, want ErrHeaderNotFound", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "grade5_converted_data.json")); statErr != nil {
		t.Errorf("good input was not converted: %v", statErr)
	}
	if strings.Contains(stdout, "grade6") {
		t.Errorf("failed input reported as converted: %q", stdout)
	}
}

func TestConvertUploads(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "register.xlsx")
	writeWorkbook(t, input, [][]interface{}{{"Ad.No.", "Name", "", "Class"}, {"101", "Asha", "", "5B"}})

	store := storage.NewMemoryStorage()
	opts := convertOptions{outDir: dir, workers: 1, uploadPrefix: "rosters/2024/"}
	if err := runConvert(context.Background(), newConvertCmd(), []string{input}, opts, store); err != nil {
		t.Fatalf("runConvert() error = %v", err)
	}

	exists, _ := store.Exists(context.Background(), "rosters/2024/converted_data.json")
	if !exists {
		t.Error("roster was not uploaded")
	}
}

func TestLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	if err := os.WriteFile(path, []byte(`{"101":{"admissionNo":"101","name":"Asha","class":"5B"}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout, err := execute(t, "lookup", path, "101")
	if err != nil {
		t.Fatalf("lookup error = %v", err)
	}
	var got model.StudentRecord
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("stdout is not JSON: %q", stdout)
	}
	if got.Name != "Asha" {
		t.Errorf("Name = %q, want Asha", got.Name)
	}

	if _, err := execute(t, "lookup", path, "999"); !errors.Is(err, feeerrors.ErrStudentNotFound) {
		t.Errorf("lookup miss error = %v, want ErrStudentNotFound", err)
	}
}
