package ops

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quietfold/rotor/internal/db"
	"github.com/quietfold/rotor/internal/errors"
	"github.com/quietfold/rotor/internal/history"
)

// writeImportFile writes raw JSONL lines to a .jsonl file in a temp dir.
func writeImportFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.jsonl")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write import file: %v", err)
	}
	return path
}

const importHeader = `{"_rotor_export":true,"schema_version":"1.0","exported_at":1700000000}`

func entryLine(id string) string {
	return `{"id":"` + id + `","op":"encrypt","shift":3,"input_text":"hello","output_text":"khoor","input_chars":5,"created_at":1000}`
}

func countEntries(t *testing.T, database *sql.DB) int {
	t.Helper()
	_, total, err := db.List(context.Background(), database, nil, MaxListLimit, 0, true)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	return total
}

func TestImport_HappyPath(t *testing.T) {
	database := newTestDB(t)
	cfg := unsafePathConfig()

	path := writeImportFile(t, importHeader, entryLine("01IMP001"), entryLine("01IMP002"))
	output, err := Import(context.Background(), database, cfg, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if output.Imported != 2 {
		t.Errorf("Imported = %d, want 2", output.Imported)
	}
	if output.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", output.Skipped)
	}
	if len(output.Errors) != 0 {
		t.Errorf("Errors = %v, want none", output.Errors)
	}

	rec, err := db.GetByID(context.Background(), database, "01IMP001", false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if rec.Op != history.OpEncrypt || rec.Shift != 3 {
		t.Errorf("imported record mismatch: %+v", rec)
	}
}

func TestImport_RecomputesInputChars(t *testing.T) {
	database := newTestDB(t)
	cfg := unsafePathConfig()

	// input_chars in the file is wrong; import must recompute from input_text
	line := `{"id":"01IMP010","op":"decrypt","shift":1,"input_text":"abcde","output_text":"zabcd","input_chars":999,"created_at":1000}`
	path := writeImportFile(t, importHeader, line)

	if _, err := Import(context.Background(), database, cfg, ImportInput{Path: path}); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	rec, err := db.GetByID(context.Background(), database, "01IMP010", false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if rec.InputChars != 5 {
		t.Errorf("InputChars = %d, want 5 (recomputed)", rec.InputChars)
	}
}

func TestImport_NormalizesShift(t *testing.T) {
	database := newTestDB(t)
	cfg := unsafePathConfig()

	line := `{"id":"01IMP011","op":"encrypt","shift":-1,"input_text":"abc","output_text":"zab","input_chars":3,"created_at":1000}`
	path := writeImportFile(t, importHeader, line)

	if _, err := Import(context.Background(), database, cfg, ImportInput{Path: path}); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	rec, err := db.GetByID(context.Background(), database, "01IMP011", false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if rec.Shift != 25 {
		t.Errorf("Shift = %d, want 25 (normalized)", rec.Shift)
	}
}

func TestImport_ModeError_AbortsOnCollision(t *testing.T) {
	database := newTestDB(t)
	cfg := unsafePathConfig()
	seedEntry(t, database, "01IMP020", history.OpEncrypt, 500)

	path := writeImportFile(t, importHeader, entryLine("01IMP021"), entryLine("01IMP020"))
	output, err := Import(context.Background(), database, cfg, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if output.Imported != 0 {
		t.Errorf("Imported = %d, want 0 (atomic abort)", output.Imported)
	}
	if len(output.Errors) != 1 || output.Errors[0].Code != "ID_COLLISION" {
		t.Errorf("Errors = %v, want one ID_COLLISION", output.Errors)
	}

	// The non-colliding record must not have been committed
	if total := countEntries(t, database); total != 1 {
		t.Errorf("total = %d, want 1 (only the seeded entry)", total)
	}
}

func TestImport_ModeError_FailsOnParseError(t *testing.T) {
	database := newTestDB(t)
	cfg := unsafePathConfig()

	path := writeImportFile(t, importHeader, "not json", entryLine("01IMP030"))
	output, err := Import(context.Background(), database, cfg, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if output.Imported != 0 {
		t.Errorf("Imported = %d, want 0", output.Imported)
	}
	if len(output.Errors) != 1 || output.Errors[0].Code != "PARSE_ERROR" {
		t.Errorf("Errors = %v, want one PARSE_ERROR", output.Errors)
	}
	if output.Errors[0].Line != 2 {
		t.Errorf("Line = %d, want 2", output.Errors[0].Line)
	}
}

func TestImport_ModeReplace_Overwrites(t *testing.T) {
	database := newTestDB(t)
	cfg := unsafePathConfig()
	seedEntry(t, database, "01IMP040", history.OpEncrypt, 500)

	line := `{"id":"01IMP040","op":"crack","shift":9,"input_text":"coded","output_text":"text","input_chars":5,"score":0.5,"created_at":1000}`
	path := writeImportFile(t, importHeader, line)

	output, err := Import(context.Background(), database, cfg, ImportInput{
		Path: path,
		Mode: ImportModeReplace,
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if output.Imported != 1 {
		t.Errorf("Imported = %d, want 1", output.Imported)
	}

	rec, err := db.GetByID(context.Background(), database, "01IMP040", false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if rec.Op != history.OpCrack || rec.Shift != 9 {
		t.Errorf("record not replaced: %+v", rec)
	}
	if rec.Score == nil || *rec.Score != 0.5 {
		t.Errorf("Score = %v, want 0.5", rec.Score)
	}
}

func TestImport_ModeSkip_KeepsExisting(t *testing.T) {
	database := newTestDB(t)
	cfg := unsafePathConfig()
	seedEntry(t, database, "01IMP050", history.OpEncrypt, 500)

	line := `{"id":"01IMP050","op":"crack","shift":9,"input_text":"x","output_text":"y","input_chars":1,"created_at":1000}`
	path := writeImportFile(t, importHeader, line, entryLine("01IMP051"))

	output, err := Import(context.Background(), database, cfg, ImportInput{
		Path: path,
		Mode: ImportModeSkip,
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if output.Imported != 1 {
		t.Errorf("Imported = %d, want 1", output.Imported)
	}
	if output.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", output.Skipped)
	}

	// Existing entry untouched
	rec, err := db.GetByID(context.Background(), database, "01IMP050", false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if rec.Op != history.OpEncrypt {
		t.Errorf("Op = %q, want encrypt (existing entry kept)", rec.Op)
	}
}

func TestImport_MissingID(t *testing.T) {
	database := newTestDB(t)
	cfg := unsafePathConfig()

	line := `{"op":"encrypt","shift":3,"input_text":"a","output_text":"d","input_chars":1,"created_at":1000}`
	path := writeImportFile(t, importHeader, line)

	output, err := Import(context.Background(), database, cfg, ImportInput{
		Path: path,
		Mode: ImportModeSkip,
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(output.Errors) != 1 || output.Errors[0].Code != "INVALID_RECORD" {
		t.Errorf("Errors = %v, want one INVALID_RECORD", output.Errors)
	}
	if output.Errors[0].Line != 2 {
		t.Errorf("Line = %d, want 2", output.Errors[0].Line)
	}
}

func TestImport_UnknownOp(t *testing.T) {
	database := newTestDB(t)
	cfg := unsafePathConfig()

	line := `{"id":"01IMP060","op":"vigenere","shift":3,"input_text":"a","output_text":"d","input_chars":1,"created_at":1000}`
	path := writeImportFile(t, importHeader, line)

	output, err := Import(context.Background(), database, cfg, ImportInput{
		Path: path,
		Mode: ImportModeSkip,
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(output.Errors) != 1 || output.Errors[0].Code != "INVALID_RECORD" {
		t.Errorf("Errors = %v, want one INVALID_RECORD for unknown op", output.Errors)
	}
	if countEntries(t, database) != 0 {
		t.Error("invalid record must not be imported")
	}
}

func TestImport_InvalidMode(t *testing.T) {
	database := newTestDB(t)
	cfg := unsafePathConfig()

	path := writeImportFile(t, importHeader)
	_, err := Import(context.Background(), database, cfg, ImportInput{
		Path: path,
		Mode: "merge",
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestImport_MissingPath(t *testing.T) {
	database := newTestDB(t)
	cfg := unsafePathConfig()

	_, err := Import(context.Background(), database, cfg, ImportInput{})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestImport_FileNotFound(t *testing.T) {
	database := newTestDB(t)
	cfg := unsafePathConfig()

	_, err := Import(context.Background(), database, cfg, ImportInput{
		Path: filepath.Join(t.TempDir(), "missing.jsonl"),
	})
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got: %v", err)
	}
}

func TestImport_RoundTrip(t *testing.T) {
	source := newTestDB(t)
	cfg := unsafePathConfig()

	score := 0.91
	rec := &history.Record{
		ID:         "01RT0001",
		Op:         history.OpCrack,
		Shift:      13,
		InputText:  "uryyb jbeyq",
		OutputText: "hello world",
		InputChars: 11,
		Score:      &score,
		Label:      stringPtr("rot13"),
		CreatedAt:  4000,
	}
	if err := db.Insert(context.Background(), source, rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	exportPath := filepath.Join(t.TempDir(), "roundtrip.jsonl")
	if _, err := Export(context.Background(), source, cfg, ExportInput{Path: exportPath}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	target := newTestDB(t)
	output, err := Import(context.Background(), target, cfg, ImportInput{Path: exportPath})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if output.Imported != 1 {
		t.Fatalf("Imported = %d, want 1", output.Imported)
	}

	got, err := db.GetByID(context.Background(), target, "01RT0001", false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Op != rec.Op || got.Shift != rec.Shift || got.InputText != rec.InputText ||
		got.OutputText != rec.OutputText || got.CreatedAt != rec.CreatedAt {
		t.Errorf("round-tripped record mismatch: %+v", got)
	}
	if got.Score == nil || *got.Score != score {
		t.Errorf("Score = %v, want %f", got.Score, score)
	}
	if got.Label == nil || *got.Label != "rot13" {
		t.Errorf("Label = %v, want rot13", got.Label)
	}
}
