package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"fee-desk/internal/model"
	"fee-desk/internal/storage"
	"fee-desk/pkg/errors"
)

// admissionNumber accepts both JSON strings and numbers. Numbers keep their
// literal text so leading zeros in quoted values are never lost.
type admissionNumber string

func (a *admissionNumber) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch val := v.(type) {
	case nil:
		*a = ""
	case string:
		*a = admissionNumber(val)
	case json.Number:
		*a = admissionNumber(val.String())
	default:
		return fmt.Errorf("admission number must be a string or number, got %s", string(data))
	}
	return nil
}

type rosterEntry struct {
	AdmissionNo admissionNumber `json:"admissionNo"`
	Name        string          `json:"name"`
	Class       string          `json:"class"`
	Team        string          `json:"team"`
}

func (e rosterEntry) record() model.StudentRecord {
	return model.StudentRecord{
		AdmissionNo: strings.TrimSpace(string(e.AdmissionNo)),
		Name:        strings.TrimSpace(e.Name),
		Class:       strings.TrimSpace(e.Class),
		Team:        strings.TrimSpace(e.Team),
	}
}

// Load parses either a JSON object keyed by admission number or the array
// written by the roster converter.
func Load(data []byte, opts ...Option) (*Roster, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty roster: %w", errors.ErrInvalidFileFormat)
	}

	var records []model.StudentRecord
	switch trimmed[0] {
	case '{':
		var keyed map[string]rosterEntry
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return nil, fmt.Errorf("failed to decode roster map: %w", err)
		}
		records = make([]model.StudentRecord, 0, len(keyed))
		for key, entry := range keyed {
			rec := entry.record()
			if rec.AdmissionNo == "" {
				rec.AdmissionNo = strings.TrimSpace(key)
			}
			records = append(records, rec)
		}
	case '[':
		var entries []rosterEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode roster array: %w", err)
		}
		records = make([]model.StudentRecord, 0, len(entries))
		for _, entry := range entries {
			records = append(records, entry.record())
		}
	default:
		return nil, fmt.Errorf("roster must be a JSON object or array: %w", errors.ErrInvalidFileFormat)
	}

	return New(records, opts...), nil
}

func LoadFile(path string, opts ...Option) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	return Load(data, opts...)
}

func LoadFromStorage(ctx context.Context, store storage.Storage, key string, opts ...Option) (*Roster, error) {
	reader, err := store.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download roster %s: %w", key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster %s: %w", key, err)
	}
	return Load(data, opts...)
}
