package models

import (
	"encoding/json"
	"fmt"
)

// Statistics are the usage counters shown on the statistics view.
type Statistics struct {
	TotalFiles  int64 `json:"totalFiles"`
	StorageUsed int64 `json:"storageUsed"`
	Downloads   int64 `json:"downloads"`
}

// FormatCount is one [extension, count] pair of the file-formats report.
type FormatCount struct {
	Extension string
	Count     int64
}

func (f *FormatCount) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("format pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("format pair: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &f.Extension); err != nil {
		return fmt.Errorf("format extension: %w", err)
	}
	if err := json.Unmarshal(pair[1], &f.Count); err != nil {
		return fmt.Errorf("format count: %w", err)
	}
	return nil
}

// FileFormats is the /api/file-formats response body.
type FileFormats struct {
	Formats []FormatCount `json:"formats"`
}
