package bundle

import "context"

// ImportOptions are caller choices of one import.
type ImportOptions struct {
	// WordsetMode is "create" (default) or "assign".
	WordsetMode string
	// Wordset is the existing wordset slug used in "assign" mode.
	Wordset string
	// Renames override names of payload wordsets by slug.
	Renames map[string]string
	// Actor is recorded in history.
	Actor string
	// Progress receives reconciliation progress if set.
	Progress func(total, done int)
}

// Wordset modes.
const (
	WordsetModeCreate = "create"
	WordsetModeAssign = "assign"
)

// ExportOptions select the export scope.
type ExportOptions struct {
	// Roots are category slugs, empty means all categories.
	Roots []string
	// Full adds wordset, words and audio.
	Full bool
	// Wordset is required for full exports.
	Wordset string
}

// ExportStats describe a written bundle.
type ExportStats struct {
	Categories int
	WordImages int
	Words      int
	Audio      int
	MediaFiles int
	MediaBytes int64
	Skipped    []string
}

// Importer imports bundle archives into the content store.
type Importer interface {
	// Import extracts, parses and reconciles an archive. A returned error
	// is fatal and means the store was not touched; entity level problems
	// are reported in the result.
	Import(ctx context.Context, archive string, opts ImportOptions) (*Result, error)

	// Preview parses an archive without touching the store.
	Preview(ctx context.Context, archive string) (*Preview, error)
}

// Exporter writes a scope of the content store to a bundle archive.
type Exporter interface {
	Export(ctx context.Context, dest string, opts ExportOptions) (*ExportStats, error)
}

// History keeps the capped history of imports and applies undo.
type History interface {
	// Add puts an entry on top of the history and returns its id.
	Add(ctx context.Context, e HistoryEntry) (string, error)
	// List returns entries, most recent first.
	List(ctx context.Context) ([]HistoryEntry, error)
	// Undo reverses the entry with the given id.
	Undo(ctx context.Context, id string, actor string) (*Result, error)
	// SavePreview keeps a preview for the actor.
	SavePreview(ctx context.Context, actor string, p *Preview) error
	// TakePreview returns and forgets the preview of the actor.
	TakePreview(ctx context.Context, actor string) (*Preview, error)
}
