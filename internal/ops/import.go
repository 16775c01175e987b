package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/quietfold/rotor/internal/cipher"
	"github.com/quietfold/rotor/internal/config"
	"github.com/quietfold/rotor/internal/db"
	"github.com/quietfold/rotor/internal/errors"
	"github.com/quietfold/rotor/internal/history"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on collision (atomic)
	ImportModeReplace ImportMode = "replace" // overwrite on collision
	ImportModeSkip    ImportMode = "skip"    // keep existing on collision
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError represents an error that occurred during import.
type ImportError struct {
	Line    int    `json:"line,omitempty"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import imports history entries from a JSONL export file.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	// Validate input
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace && input.Mode != ImportModeSkip {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, skip")
	}

	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if errors.Is(err, errors.ErrFileNotFound) || errors.Is(err, errors.ErrInvalidRequest) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	// Parse all records first
	records, parseErrors := parseExportFile(file)

	// For mode:error, fail on any parse errors
	if input.Mode == ImportModeError && len(parseErrors) > 0 {
		return &ImportOutput{
			Imported: 0,
			Skipped:  0,
			Errors:   parseErrors,
		}, nil
	}

	switch input.Mode {
	case ImportModeError:
		return importModeError(ctx, database, records)
	case ImportModeReplace:
		return importModeReplace(ctx, database, records, parseErrors)
	case ImportModeSkip:
		return importModeSkip(ctx, database, records, parseErrors)
	default:
		return nil, errors.NewInvalidRequest("invalid mode")
	}
}

// parseExportFile parses a JSONL export file into records.
func parseExportFile(file *os.File) ([]history.ExportRecord, []ImportError) {
	var records []history.ExportRecord
	var parseErrors []ImportError

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		var record history.ExportRecord
		if err := json.Unmarshal(line, &record); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		// Skip header line
		if record.RotorExport {
			continue
		}

		// Skip lines with no ID (invalid)
		if record.ID == "" {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "INVALID_RECORD",
				Message: "missing id field",
			})
			continue
		}

		// Op must be one of the recordable operations
		if !history.KnownOp(record.Op) {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				ID:      record.ID,
				Code:    "INVALID_RECORD",
				Message: fmt.Sprintf("unknown op %q", record.Op),
			})
			continue
		}

		// Stored shifts are always canonical 0..25
		record.Shift = cipher.Normalize(record.Shift)

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, parseErrors
}

// importModeError imports all records atomically, aborting on any collision.
func importModeError(ctx context.Context, database *sql.DB, records []history.ExportRecord) (*ImportOutput, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	imported := 0
	var importErrors []ImportError

	for _, record := range records {
		// Check for ID collision
		existing, err := db.GetByID(ctx, database, record.ID, true)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			importErrors = append(importErrors, ImportError{
				ID:      record.ID,
				Code:    "ID_COLLISION",
				Message: fmt.Sprintf("history entry with id %q already exists", record.ID),
			})
			// Abort on first error for mode:error
			return &ImportOutput{
				Imported: 0,
				Skipped:  0,
				Errors:   importErrors,
			}, nil
		}

		if err := db.InsertTx(ctx, tx, record.ToRecord()); err != nil {
			return nil, err
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ImportOutput{
		Imported: imported,
		Skipped:  0,
		Errors:   importErrors,
	}, nil
}

// importModeReplace imports records, overwriting existing entries on ID collision.
func importModeReplace(ctx context.Context, database *sql.DB, records []history.ExportRecord, parseErrors []ImportError) (*ImportOutput, error) {
	imported := 0
	skipped := 0
	var importErrors []ImportError

	// Include parse errors
	importErrors = append(importErrors, parseErrors...)
	skipped += len(parseErrors)

	for _, record := range records {
		if err := db.Replace(ctx, database, record.ToRecord()); err != nil {
			return nil, err
		}
		imported++
	}

	return &ImportOutput{
		Imported: imported,
		Skipped:  skipped,
		Errors:   importErrors,
	}, nil
}

// importModeSkip imports records, keeping existing entries on ID collision.
func importModeSkip(ctx context.Context, database *sql.DB, records []history.ExportRecord, parseErrors []ImportError) (*ImportOutput, error) {
	imported := 0
	skipped := 0
	var importErrors []ImportError

	// Include parse errors
	importErrors = append(importErrors, parseErrors...)
	skipped += len(parseErrors)

	for _, record := range records {
		existing, err := db.GetByID(ctx, database, record.ID, true)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			skipped++
			continue
		}

		if err := db.Insert(ctx, database, record.ToRecord()); err != nil {
			return nil, err
		}
		imported++
	}

	return &ImportOutput{
		Imported: imported,
		Skipped:  skipped,
		Errors:   importErrors,
	}, nil
}
