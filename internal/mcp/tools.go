package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Handler wiring lives in the registry in server.go.

var encryptToolDef = mcp.NewTool("cipher_encrypt",
	mcp.WithDescription("Encrypt text with a Caesar shift cipher. Letters rotate forward through the alphabet, case is preserved, and non-letters pass through unchanged. Any integer shift works; it is reduced to the 0-25 range."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Plaintext to encrypt. May be empty."),
	),
	mcp.WithNumber("shift",
		mcp.Required(),
		mcp.Description("Shift amount. Any integer; normalized into 0-25."),
	),
	mcp.WithString("label",
		mcp.Description("Optional note stored on the history entry."),
	),
	mcp.WithBoolean("no_history",
		mcp.Description("Skip recording a history entry for this call."),
	),
)

var decryptToolDef = mcp.NewTool("cipher_decrypt",
	mcp.WithDescription("Decrypt Caesar-ciphered text with a known shift. Inverse of cipher_encrypt: decrypting with shift k equals encrypting with -k."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Ciphertext to decrypt."),
	),
	mcp.WithNumber("shift",
		mcp.Required(),
		mcp.Description("The shift that was used to encrypt. Any integer; normalized into 0-25."),
	),
	mcp.WithString("label",
		mcp.Description("Optional note stored on the history entry."),
	),
	mcp.WithBoolean("no_history",
		mcp.Description("Skip recording a history entry for this call."),
	),
)

var crackToolDef = mcp.NewTool("cipher_crack",
	mcp.WithDescription("Crack Caesar-ciphered text without knowing the shift. Tries all 26 shifts, scores each candidate against English letter frequencies, and returns the best match plus a ranked candidate list."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Ciphertext to crack."),
	),
	mcp.WithNumber("top",
		mcp.Description("Trim the ranked candidate list to the top N entries. Default: all 26."),
	),
	mcp.WithString("label",
		mcp.Description("Optional note stored on the history entry."),
	),
	mcp.WithBoolean("no_history",
		mcp.Description("Skip recording a history entry for this call."),
	),
)

var scoreToolDef = mcp.NewTool("cipher_score",
	mcp.WithDescription("Score how English-like a text is, from 0 (unlike English) to 1 (matches English letter frequencies). Texts with no ASCII letters score 0. Never records history."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Text to score."),
	),
)

var fetchToolDef = mcp.NewTool("history_fetch",
	mcp.WithDescription("Fetch a single history entry by ID, including the full input and output texts."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("History entry ULID."),
	),
	mcp.WithBoolean("include_deleted",
		mcp.Description("Allow fetching soft-deleted entries. Default: false."),
	),
	mcp.WithBoolean("include_text",
		mcp.Description("Include the full input/output texts. Default: true."),
	),
)

var listToolDef = mcp.NewTool("history_list",
	mcp.WithDescription("List history entry summaries, newest first, with pagination. Summaries carry a short input preview instead of the full texts."),
	mcp.WithString("op",
		mcp.Description("Filter by operation: encrypt, decrypt, or crack."),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum entries to return. Default: 20, max: 100."),
	),
	mcp.WithNumber("offset",
		mcp.Description("Number of entries to skip. Default: 0."),
	),
	mcp.WithBoolean("include_deleted",
		mcp.Description("Include soft-deleted entries. Default: false."),
	),
)

var latestToolDef = mcp.NewTool("history_latest",
	mcp.WithDescription("Get the most recent history entry, optionally filtered by operation."),
	mcp.WithString("op",
		mcp.Description("Filter by operation: encrypt, decrypt, or crack."),
	),
	mcp.WithBoolean("include_text",
		mcp.Description("Include the full input/output texts. Default: false."),
	),
	mcp.WithBoolean("include_deleted",
		mcp.Description("Consider soft-deleted entries. Default: false."),
	),
)

var deleteToolDef = mcp.NewTool("history_delete",
	mcp.WithDescription("Soft-delete a history entry by ID. Deleted entries are hidden from fetch/list/latest but can be recovered until purged."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("History entry ULID."),
	),
)

var purgeToolDef = mcp.NewTool("history_purge",
	mcp.WithDescription("Permanently remove soft-deleted history entries. Irreversible."),
	mcp.WithNumber("older_than_days",
		mcp.Description("Only purge entries deleted more than N days ago."),
	),
)

var exportToolDef = mcp.NewTool("history_export",
	mcp.WithDescription("Export history entries to a JSONL file (header line plus one entry per line). Default path: ~/.rotor/exports/history-<timestamp>.jsonl."),
	mcp.WithString("path",
		mcp.Description("Destination path. Must end in .jsonl and be directly in an allowed directory."),
	),
	mcp.WithBoolean("include_deleted",
		mcp.Description("Include soft-deleted entries. Default: false."),
	),
)

var importToolDef = mcp.NewTool("history_import",
	mcp.WithDescription("Import history entries from a JSONL export file. Modes: error (atomic, abort on collision), replace (overwrite on ID collision), skip (keep existing on ID collision)."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the JSONL file to import."),
	),
	mcp.WithString("mode",
		mcp.Description("Collision mode: error, replace, or skip. Default: error."),
	),
)
