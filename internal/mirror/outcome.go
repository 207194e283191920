package mirror

// Outcome tags what happened to one remote record during a sync pass.
// Skips are policy, not errors; tagging them keeps the counts assertable.
type Outcome string

const (
	OutcomeAccepted                Outcome = "accepted"
	OutcomeSkippedMissingField     Outcome = "skipped_missing_field"
	OutcomeSkippedUnknownReference Outcome = "skipped_unknown_reference"
)

// RecordOutcome pairs a remote record id with its outcome.
type RecordOutcome struct {
	ExternalID string
	Outcome    Outcome
	Reason     string
}

// ReconcileStats summarizes the product phase of a run.
type ReconcileStats struct {
	Inserted int
	Updated  int
	Deleted  int
	Skipped  int
	Images   int
}

// LinkStats summarizes the attribute phase of a run.
type LinkStats struct {
	KeysCreated       int
	AttributesCreated int
	LinksCreated      int
	LinksExisting     int
	FactsSkipped      int
	UnknownReferences int
}

// SyncStats is the aggregate summary reported at the end of a run.
type SyncStats struct {
	Products ReconcileStats
	Links    LinkStats
}
