package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"hopper/internal/queue"
)

// Record is the persisted status document for one task.
type Record struct {
	Status           queue.Status `json:"status"`
	LastUpdated      time.Time    `json:"last_updated"`
	OriginalFilename string       `json:"original_filename"`
	ErrorMessage     string       `json:"error_message,omitempty"`
}

// Create writes a fresh record at path. It fails if a record already exists.
func Create(path, originalFilename string, status queue.Status) error {
	record := Record{
		Status:           status,
		LastUpdated:      time.Now().UTC(),
		OriginalFilename: originalFilename,
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata record: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create metadata record: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write metadata record: %w", err)
	}
	return nil
}

// Update merges a new status and optional error message into the record at
// path, refreshing its timestamp. The existing error message survives when
// the new one is empty.
func Update(path string, status queue.Status, errorMessage string) error {
	record, err := Read(path)
	if err != nil {
		return err
	}

	record.Status = status
	record.LastUpdated = time.Now().UTC()
	if errorMessage != "" {
		record.ErrorMessage = errorMessage
	}

	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata record: %w", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("rewrite metadata record: %w", err)
	}
	return nil
}

// Read parses the record at path.
func Read(path string) (*Record, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata record: %w", err)
	}
	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("parse metadata record %s: %w", path, err)
	}
	return &record, nil
}

// Remove deletes the record at path.
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove metadata record: %w", err)
	}
	return nil
}
