package history

// ExportRecord represents a history entry in JSONL export format.
// It is also used for parsing export files during import.
type ExportRecord struct {
	// Header detection field - true only for header line
	RotorExport bool `json:"_rotor_export,omitempty"`

	// Header fields (only present in header line)
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`

	// Entry fields
	ID         string   `json:"id"`
	Op         Op       `json:"op"`
	Shift      int      `json:"shift"`
	InputText  string   `json:"input_text"`
	OutputText string   `json:"output_text"`
	InputChars int      `json:"input_chars"` // IGNORED on import, recomputed
	Score      *float64 `json:"score"`
	Label      *string  `json:"label"`
	CreatedAt  int64    `json:"created_at"`
	DeletedAt  *int64   `json:"deleted_at"`
}

// ToRecord converts an ExportRecord to a Record, recomputing derived fields.
func (r *ExportRecord) ToRecord() *Record {
	return &Record{
		ID:         r.ID,
		Op:         r.Op,
		Shift:      r.Shift,
		InputText:  r.InputText,
		OutputText: r.OutputText,
		InputChars: CountChars(r.InputText), // Recompute
		Score:      r.Score,
		Label:      r.Label,
		CreatedAt:  r.CreatedAt,
		DeletedAt:  r.DeletedAt,
	}
}

// RecordToExportRecord converts a Record to an ExportRecord for export.
func RecordToExportRecord(rec *Record) *ExportRecord {
	return &ExportRecord{
		ID:         rec.ID,
		Op:         rec.Op,
		Shift:      rec.Shift,
		InputText:  rec.InputText,
		OutputText: rec.OutputText,
		InputChars: rec.InputChars,
		Score:      rec.Score,
		Label:      rec.Label,
		CreatedAt:  rec.CreatedAt,
		DeletedAt:  rec.DeletedAt,
	}
}
