package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/quietfold/rotor/internal/config"
	"github.com/quietfold/rotor/internal/errors"
	"github.com/quietfold/rotor/internal/ops"
	"github.com/quietfold/rotor/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "rotor",
		Usage:   "Caesar cipher workbench",
		Version: Version,
		Commands: []*cli.Command{
			encryptCmd(db, cfg),
			decryptCmd(db, cfg),
			crackCmd(db, cfg),
			scoreCmd(cfg),
			fetchCmd(db),
			listCmd(db),
			latestCmd(db),
			deleteCmd(db),
			purgeCmd(db),
			exportCmd(db, cfg),
			importCmd(db, cfg),
			webCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// readText returns the positional text argument, falling back to stdin.
func readText(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return c.Args().First(), nil
	}
	if stdinHasData() {
		return readStdin()
	}
	return "", errors.NewInvalidRequest("text must be given as an argument or piped via stdin")
}

// encryptCmd creates the encrypt command.
func encryptCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "encrypt",
		Usage:     "Encrypt text with a Caesar shift",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "shift", Aliases: []string{"s"}, Required: true, Usage: "Shift amount (any integer)"},
			&cli.StringFlag{Name: "label", Usage: "Note stored on the history entry"},
			&cli.BoolFlag{Name: "no-history", Usage: "Skip recording a history entry"},
		},
		Action: func(c *cli.Context) error {
			text, err := readText(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.EncryptInput{
				Text:      text,
				Shift:     c.Int("shift"),
				NoHistory: c.Bool("no-history"),
			}
			if label := c.String("label"); label != "" {
				input.Label = &label
			}

			output, err := ops.Encrypt(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// decryptCmd creates the decrypt command.
func decryptCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "decrypt",
		Usage:     "Decrypt Caesar-ciphered text with a known shift",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "shift", Aliases: []string{"s"}, Required: true, Usage: "The shift used to encrypt"},
			&cli.StringFlag{Name: "label", Usage: "Note stored on the history entry"},
			&cli.BoolFlag{Name: "no-history", Usage: "Skip recording a history entry"},
		},
		Action: func(c *cli.Context) error {
			text, err := readText(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.DecryptInput{
				Text:      text,
				Shift:     c.Int("shift"),
				NoHistory: c.Bool("no-history"),
			}
			if label := c.String("label"); label != "" {
				input.Label = &label
			}

			output, err := ops.Decrypt(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// crackCmd creates the crack command.
func crackCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "crack",
		Usage:     "Crack Caesar-ciphered text with an unknown shift",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "top", Aliases: []string{"t"}, Usage: "Trim the ranked candidate list to the top N"},
			&cli.StringFlag{Name: "label", Usage: "Note stored on the history entry"},
			&cli.BoolFlag{Name: "no-history", Usage: "Skip recording a history entry"},
		},
		Action: func(c *cli.Context) error {
			text, err := readText(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.CrackInput{
				Text:      text,
				Top:       c.Int("top"),
				NoHistory: c.Bool("no-history"),
			}
			if label := c.String("label"); label != "" {
				input.Label = &label
			}

			output, err := ops.Crack(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// scoreCmd creates the score command.
func scoreCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "Score how English-like a text is (0 to 1)",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			text, err := readText(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Score(cfg, ops.ScoreInput{Text: text})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a history entry by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted entries"},
			&cli.BoolFlag{Name: "no-text", Usage: "Exclude input/output texts from output"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{
				ID:             c.Args().First(),
				IncludeDeleted: c.Bool("include-deleted"),
			}

			if c.Bool("no-text") {
				includeText := false
				input.IncludeText = &includeText
			}

			output, err := ops.Fetch(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List history entries, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "op", Usage: "Filter by operation: encrypt|decrypt|crack"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted entries"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Op:             c.String("op"),
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			}

			output, err := ops.List(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// latestCmd creates the latest command.
func latestCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "latest",
		Usage: "Get the most recent history entry",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "op", Usage: "Filter by operation: encrypt|decrypt|crack"},
			&cli.BoolFlag{Name: "include-text", Usage: "Include input/output texts in output"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Consider soft-deleted entries"},
		},
		Action: func(c *cli.Context) error {
			input := ops.LatestInput{
				Op:             c.String("op"),
				IncludeDeleted: c.Bool("include-deleted"),
			}

			if c.Bool("include-text") {
				includeText := true
				input.IncludeText = &includeText
			}

			output, err := ops.Latest(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a history entry",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete soft-deleted history entries",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export history to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.rotor/exports/history-<timestamp>.jsonl)"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted entries"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ExportInput{
				Path:           c.String("path"),
				IncludeDeleted: c.Bool("include-deleted"),
			}

			output, err := ops.Export(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import history from a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|skip"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			}

			output, err := ops.Import(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Start the local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8217, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if rotorErr, ok := err.(*errors.RotorError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", rotorErr.Code, rotorErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
