package models

// Outcome tells what a save did
type Outcome string

const (
	// OutcomeRejected means the URL is not a valid target and nothing was looked up
	OutcomeRejected Outcome = "rejected"
	// OutcomeDuplicate means an entry with the same title and URL already exists
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeCreated means a new entry was written
	OutcomeCreated Outcome = "created"
)

// SaveResult is the result of reconciling one page against the store
type SaveResult struct {
	Bookmark Bookmark
	Outcome  Outcome
}

// IsExistingBookmark is the single flag older callers consume.
// It is true for both rejected and duplicate saves.
func (r SaveResult) IsExistingBookmark() bool {
	return r.Outcome != OutcomeCreated
}
