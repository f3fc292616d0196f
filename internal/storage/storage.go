package storage

// Outcome values stored in the journal.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// OutcomeRecord is one item's journaled verification result. The journal is
// a run report, not job state: nothing ever reads it to resume work.
type OutcomeRecord struct {
	RunID        string
	FileName     string
	BatchIndex   int
	Outcome      string
	ArchivedPath string
	RecordedAt   string
}

// Summary aggregates a run's journal.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

type OutcomeWriteRepository interface {
	RecordOutcome(rec OutcomeRecord) error
}

type OutcomeReadRepository interface {
	GetOutcomes(runID string) ([]OutcomeRecord, error)
	GetSummary(runID string) (Summary, error)
}
