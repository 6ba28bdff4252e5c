package types

// ActionType is one reconciliation decision for an artifact. The set is
// closed; every switch over it must be exhaustive.
type ActionType string

const (
	// ActionInstall writes an artifact that has no prior installation
	ActionInstall ActionType = "install"

	// ActionUpdate overwrites an installed artifact with new upstream
	// content
	ActionUpdate ActionType = "update"

	// ActionSkip leaves the artifact untouched
	ActionSkip ActionType = "skip"

	// ActionConflict means both upstream and the user changed the
	// artifact; never resolved silently
	ActionConflict ActionType = "conflict"

	// ActionDelete removes an orphaned managed artifact
	ActionDelete ActionType = "delete"
)

// IsValid reports whether a is a known action.
func (a ActionType) IsValid() bool {
	switch a {
	case ActionInstall, ActionUpdate, ActionSkip, ActionConflict, ActionDelete:
		return true
	}
	return false
}

// Mutates reports whether executing the action touches the file system.
func (a ActionType) Mutates() bool {
	switch a {
	case ActionInstall, ActionUpdate, ActionDelete:
		return true
	case ActionSkip, ActionConflict:
		return false
	}
	return false
}

// PlanEntry is one reconciliation decision with its justification.
// Entries are produced per run and consumed immediately by the executor.
type PlanEntry struct {
	Item   string
	Type   ArtifactType
	Target DeliveryTarget
	Action ActionType

	// Reason is the human-readable justification for the decision
	Reason string

	// FilePath is the rendered path the action applies to, when known
	FilePath string

	// SourcePath is the upstream path to install from, when known
	SourcePath string
}

// PlanSummary is the histogram of actions in a plan.
type PlanSummary struct {
	Install  int
	Update   int
	Skip     int
	Conflict int
	Delete   int
}

// Total returns the number of entries counted.
func (s PlanSummary) Total() int {
	return s.Install + s.Update + s.Skip + s.Conflict + s.Delete
}

// Plan is the full output of one reconciliation pass.
type Plan struct {
	Entries      []PlanEntry
	Summary      PlanSummary
	HasConflicts bool
}

// Add appends an entry, tallies it into the summary, and keeps
// HasConflicts in sync. Reconciliation appends through this so the
// histogram can never drift from the entry list.
func (p *Plan) Add(entry PlanEntry) {
	p.Entries = append(p.Entries, entry)
	switch entry.Action {
	case ActionInstall:
		p.Summary.Install++
	case ActionUpdate:
		p.Summary.Update++
	case ActionSkip:
		p.Summary.Skip++
	case ActionConflict:
		p.Summary.Conflict++
		p.HasConflicts = true
	case ActionDelete:
		p.Summary.Delete++
	}
}

// MutationCount returns how many entries will touch the file system.
func (p *Plan) MutationCount() int {
	return p.Summary.Install + p.Summary.Update + p.Summary.Delete
}
