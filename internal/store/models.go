package store

// RecordRow is one persisted frequency row, columns joined into flat
// strings for the export format.
type RecordRow struct {
	Words     string `json:"words"`
	Tags      string `json:"tags"`
	Expansion string `json:"expansion"`
	Count     int    `json:"count"`
}

// Run is one logged build run.
type Run struct {
	ID          int64 `json:"id"`
	StartedAt   int64 `json:"startedAt"`
	Sentences   int   `json:"sentences"`
	Skipped     int   `json:"skipped"`
	Contracted  int   `json:"contracted"`
	NewRecords  int   `json:"newRecords"`
	Ambiguities int   `json:"ambiguities"`
	TagFailures int   `json:"tagFailures"`
}

// ExportData is the full-store JSON export payload.
type ExportData struct {
	Records []RecordRow `json:"records"`
	Runs    []Run       `json:"runs"`
}
