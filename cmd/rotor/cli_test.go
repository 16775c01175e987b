package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/quietfold/rotor/internal/config"
	"github.com/quietfold/rotor/internal/db"
	"github.com/quietfold/rotor/internal/ops"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	cleanup := func() {
		database.Close()
	}
	return database, cleanup
}

// testConfig returns a default config for testing.
func testConfig() *config.Config {
	return &config.Config{
		MaxTextChars:     50000,
		AllowUnsafePaths: true,
	}
}

// runApp runs the CLI app with the given args and captures stdout.
func runApp(t *testing.T, app *cli.App, args ...string) (string, error) {
	t.Helper()
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := app.Run(append([]string{"rotor"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

// TestParseDuration tests the parseDuration helper function.
func TestParseDuration(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int
		expectError bool
	}{
		{
			name:     "valid days",
			input:    "7d",
			expected: 7,
		},
		{
			name:     "zero days",
			input:    "0d",
			expected: 0,
		},
		{
			name:     "large number",
			input:    "365d",
			expected: 365,
		},
		{
			name:        "negative days",
			input:       "-7d",
			expectError: true,
		},
		{
			name:        "no suffix",
			input:       "7",
			expectError: true,
		},
		{
			name:        "wrong suffix",
			input:       "7h",
			expectError: true,
		},
		{
			name:        "invalid number",
			input:       "abcd",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseDuration(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

// TestCLIEncrypt tests the encrypt command.
func TestCLIEncrypt(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	app := newCLIApp(database, cfg)

	out, err := runApp(t, app, "encrypt", "--shift=3", "--label=drill", "Hello, World!")
	if err != nil {
		t.Fatalf("encrypt command failed: %v", err)
	}

	var output ops.EncryptOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}

	if output.Text != "Khoor, Zruog!" {
		t.Errorf("expected text=Khoor, Zruog!, got %s", output.Text)
	}
	if output.NormalizedShift != 3 {
		t.Errorf("expected normalized_shift=3, got %d", output.NormalizedShift)
	}
	if output.HistoryID == "" {
		t.Error("expected non-empty history_id")
	}
}

// TestCLIEncryptFromStdin tests the encrypt command reading text from stdin.
func TestCLIEncryptFromStdin(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	app := newCLIApp(database, cfg)

	oldStdin := os.Stdin
	stdinR, stdinW, _ := os.Pipe()
	os.Stdin = stdinR
	go func() {
		_, _ = stdinW.WriteString("attack at dawn")
		stdinW.Close()
	}()

	out, err := runApp(t, app, "encrypt", "--shift=3")

	os.Stdin = oldStdin

	if err != nil {
		t.Fatalf("encrypt command failed: %v", err)
	}

	var output ops.EncryptOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Text != "dwwdfn dw gdzq" {
		t.Errorf("expected text=dwwdfn dw gdzq, got %s", output.Text)
	}
}

// TestCLIDecrypt tests the decrypt command.
func TestCLIDecrypt(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	app := newCLIApp(database, cfg)

	out, err := runApp(t, app, "decrypt", "--shift=3", "Khoor")
	if err != nil {
		t.Fatalf("decrypt command failed: %v", err)
	}

	var output ops.DecryptOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Text != "Hello" {
		t.Errorf("expected text=Hello, got %s", output.Text)
	}
}

// TestCLICrack tests the crack command.
func TestCLICrack(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	app := newCLIApp(database, cfg)

	out, err := runApp(t, app, "crack", "--top=3", "cqn zdrlt kaxfw oxg sdvyb xena cqn ujih mxp")
	if err != nil {
		t.Fatalf("crack command failed: %v", err)
	}

	var output ops.CrackOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Best.Shift != 17 {
		t.Errorf("expected best shift=17 (complement of the key), got %d", output.Best.Shift)
	}
	if output.Best.Text != "the quick brown fox jumps over the lazy dog" {
		t.Errorf("unexpected best text: %s", output.Best.Text)
	}
	if len(output.Candidates) != 3 {
		t.Errorf("expected 3 candidates, got %d", len(output.Candidates))
	}
}

// TestCLIScore tests the score command.
func TestCLIScore(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	app := newCLIApp(database, cfg)

	out, err := runApp(t, app, "score", "the quick brown fox jumps over the lazy dog")
	if err != nil {
		t.Fatalf("score command failed: %v", err)
	}

	var output ops.ScoreOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Score <= 0 || output.Score > 1 {
		t.Errorf("expected score in (0, 1], got %f", output.Score)
	}
}

// TestCLIFetch tests the fetch command.
func TestCLIFetch(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	encOut, err := ops.Encrypt(context.Background(), database, cfg, ops.EncryptInput{
		Text:  "attack at dawn",
		Shift: 3,
	})
	if err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	app := newCLIApp(database, cfg)

	out, err := runApp(t, app, "fetch", encOut.HistoryID)
	if err != nil {
		t.Fatalf("fetch command failed: %v", err)
	}

	var output ops.FetchOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.ID != encOut.HistoryID {
		t.Errorf("expected ID=%s, got %s", encOut.HistoryID, output.ID)
	}
	if output.InputText != "attack at dawn" {
		t.Errorf("expected input_text=attack at dawn, got %s", output.InputText)
	}
}

// TestCLIList tests the list command.
func TestCLIList(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	for range 3 {
		_, err := ops.Encrypt(context.Background(), database, cfg, ops.EncryptInput{
			Text:  "hello",
			Shift: 3,
		})
		if err != nil {
			t.Fatalf("failed to seed entry: %v", err)
		}
	}

	app := newCLIApp(database, cfg)

	out, err := runApp(t, app, "list")
	if err != nil {
		t.Fatalf("list command failed: %v", err)
	}

	var output ops.ListOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if len(output.Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(output.Items))
	}
	if output.Pagination.Total != 3 {
		t.Errorf("expected total=3, got %d", output.Pagination.Total)
	}
}

// TestCLILatest tests the latest command.
func TestCLILatest(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	_, err := ops.Crack(context.Background(), database, cfg, ops.CrackInput{
		Text: "dwwdfn dw gdzq",
	})
	if err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	app := newCLIApp(database, cfg)

	out, err := runApp(t, app, "latest", "--op=crack")
	if err != nil {
		t.Fatalf("latest command failed: %v", err)
	}

	var output ops.LatestOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Item == nil {
		t.Fatal("expected non-nil item")
	}
	if output.Item.Op != "crack" {
		t.Errorf("expected op=crack, got %s", output.Item.Op)
	}
}

// TestCLIDelete tests the delete command.
func TestCLIDelete(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	encOut, err := ops.Encrypt(context.Background(), database, cfg, ops.EncryptInput{
		Text:  "doomed",
		Shift: 3,
	})
	if err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	app := newCLIApp(database, cfg)

	out, err := runApp(t, app, "delete", encOut.HistoryID)
	if err != nil {
		t.Fatalf("delete command failed: %v", err)
	}

	var output ops.DeleteOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if !output.Deleted {
		t.Error("expected deleted=true")
	}
	if output.ID != encOut.HistoryID {
		t.Errorf("expected ID=%s, got %s", encOut.HistoryID, output.ID)
	}
}

// TestCLIPurge tests the purge command.
func TestCLIPurge(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	encOut, err := ops.Encrypt(context.Background(), database, cfg, ops.EncryptInput{
		Text:  "purge me",
		Shift: 3,
	})
	if err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	_, err = ops.Delete(context.Background(), database, ops.DeleteInput{ID: encOut.HistoryID})
	if err != nil {
		t.Fatalf("failed to delete entry: %v", err)
	}

	app := newCLIApp(database, cfg)

	// Purge without --older-than to purge all deleted entries
	out, err := runApp(t, app, "purge")
	if err != nil {
		t.Fatalf("purge command failed: %v", err)
	}

	var output ops.PurgeOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Purged != 1 {
		t.Errorf("expected purged=1, got %d", output.Purged)
	}
}

// TestCLIExportImport tests the export and import commands.
func TestCLIExportImport(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	for range 2 {
		_, err := ops.Encrypt(context.Background(), database, cfg, ops.EncryptInput{
			Text:  "hello",
			Shift: 3,
		})
		if err != nil {
			t.Fatalf("failed to seed entry: %v", err)
		}
	}

	app := newCLIApp(database, cfg)
	exportPath := filepath.Join(t.TempDir(), "export.jsonl")

	// Test export
	t.Run("export", func(t *testing.T) {
		out, err := runApp(t, app, "export", "--path="+exportPath)
		if err != nil {
			t.Fatalf("export command failed: %v", err)
		}

		var output ops.ExportOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}

		if output.Count != 2 {
			t.Errorf("expected count=2, got %d", output.Count)
		}
		if output.Path != exportPath {
			t.Errorf("expected path=%s, got %s", exportPath, output.Path)
		}
	})

	// Create new database for import test
	database2, cleanup2 := setupTestDB(t)
	defer cleanup2()
	app2 := newCLIApp(database2, cfg)

	// Test import
	t.Run("import", func(t *testing.T) {
		out, err := runApp(t, app2, "import", "--path="+exportPath)
		if err != nil {
			t.Fatalf("import command failed: %v", err)
		}

		var output ops.ImportOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}

		if output.Imported != 2 {
			t.Errorf("expected imported=2, got %d", output.Imported)
		}
	})
}

// TestCLIErrorHandling tests error handling in CLI commands.
func TestCLIErrorHandling(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	app := newCLIApp(database, cfg)

	t.Run("fetch not found returns error", func(t *testing.T) {
		// cli.Exit writes to stderr, so just verify the error is returned
		_, err := runApp(t, app, "fetch", "NONEXISTENT")
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("delete not found returns error", func(t *testing.T) {
		_, err := runApp(t, app, "delete", "NONEXISTENT")
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("invalid duration format returns error", func(t *testing.T) {
		_, err := runApp(t, app, "purge", "--older-than=invalid")
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("invalid op filter returns error", func(t *testing.T) {
		_, err := runApp(t, app, "list", "--op=rot13")
		if err == nil {
			t.Error("expected error, got nil")
		}
	})
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "no args",
			args:     []string{"rotor"},
			expected: false,
		},
		{
			name:     "encrypt command",
			args:     []string{"rotor", "encrypt"},
			expected: true,
		},
		{
			name:     "crack command",
			args:     []string{"rotor", "crack"},
			expected: true,
		},
		{
			name:     "web command",
			args:     []string{"rotor", "web"},
			expected: true,
		},
		{
			name:     "help flag",
			args:     []string{"rotor", "--help"},
			expected: true,
		},
		{
			name:     "version flag",
			args:     []string{"rotor", "--version"},
			expected: true,
		},
		{
			name:     "short help flag",
			args:     []string{"rotor", "-h"},
			expected: true,
		},
		{
			name:     "short version flag",
			args:     []string{"rotor", "-v"},
			expected: true,
		},
		{
			name:     "unknown arg defaults to MCP",
			args:     []string{"rotor", "--unknown"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save and restore os.Args
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isCLIMode()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "no args",
			args:     []string{"rotor"},
			expected: false,
		},
		{
			name:     "help flag",
			args:     []string{"rotor", "--help"},
			expected: true,
		},
		{
			name:     "short help flag",
			args:     []string{"rotor", "-h"},
			expected: true,
		},
		{
			name:     "version flag",
			args:     []string{"rotor", "--version"},
			expected: true,
		},
		{
			name:     "short version flag",
			args:     []string{"rotor", "-v"},
			expected: true,
		},
		{
			name:     "help subcommand",
			args:     []string{"rotor", "help"},
			expected: true,
		},
		{
			name:     "encrypt command is not help",
			args:     []string{"rotor", "encrypt"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isHelpOrVersion()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}
