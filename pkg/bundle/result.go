package bundle

// Origin tells which format a payload came from.
type Origin string

const (
	OriginNative  Origin = "native"
	OriginTabular Origin = "tabular"
)

// Payload is the normalised input of reconciliation.
type Payload struct {
	Manifest *Manifest
	Origin   Origin
	// Root is the extraction directory media paths are relative to.
	Root string
	// Warnings are parser level diagnostics.
	Warnings []string
	// Summary is set for tabular payloads.
	Summary *TabularSummary
}

// TabularSummary counts files and rows seen by the tabular engine.
type TabularSummary struct {
	FilesFound   int `json:"files_found" yaml:"files_found"`
	FilesUsed    int `json:"files_used" yaml:"files_used"`
	FilesSkipped int `json:"files_skipped" yaml:"files_skipped"`
	RowsNonEmpty int `json:"rows_nonempty" yaml:"rows_nonempty"`
	RowsUsed     int `json:"rows_used" yaml:"rows_used"`
	RowsSkipped  int `json:"rows_skipped" yaml:"rows_skipped"`
	// WarningsSuppressed is the number of warnings beyond the cap.
	WarningsSuppressed int `json:"warnings_suppressed,omitempty" yaml:"warnings_suppressed,omitempty"`
}

// Count keeps created and updated numbers of one entity type.
type Count struct {
	Created int `json:"created" yaml:"created"`
	Updated int `json:"updated" yaml:"updated"`
}

// Counts are per entity type counters of an import.
type Counts struct {
	Categories Count `json:"categories" yaml:"categories"`
	Wordsets   Count `json:"wordsets" yaml:"wordsets"`
	WordImages Count `json:"word_images" yaml:"word_images"`
	Words      Count `json:"words" yaml:"words"`
	Audio      Count `json:"audio" yaml:"audio"`
	Media      Count `json:"media" yaml:"media"`
}

// Result is the outcome of an import.
type Result struct {
	OK        bool            `json:"ok" yaml:"ok"`
	Message   string          `json:"message" yaml:"message"`
	Errors    []string        `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings  []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Counts    Counts          `json:"counts" yaml:"counts"`
	Undo      UndoPayload     `json:"undo" yaml:"undo"`
	Summary   *TabularSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	HistoryID string          `json:"history_id,omitempty" yaml:"history_id,omitempty"`
}

// AddError records an entity level error.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddWarning records a warning.
func (r *Result) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Finish sets the ok flag from the error list.
func (r *Result) Finish() {
	r.OK = len(r.Errors) == 0
}
