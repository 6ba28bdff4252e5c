// Package settings deep-merges the structured settings document: the
// event-keyed hook lists and the flat server registry. The merge is
// pure and respects two invariants: user content is never clobbered,
// and a directive the user deliberately deleted is never re-added just
// because upstream still ships it.
package settings

// Directive is one leaf hook: a command to run, identified for merge
// purposes by its normalized command string.
type Directive struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// HookEntry groups directives under an optional matcher within one
// event's list.
type HookEntry struct {
	Matcher string      `json:"matcher,omitempty"`
	Hooks   []Directive `json:"hooks"`
}

// Document is the structured settings sub-document the merger owns:
// hook lists keyed by event name plus the server registry. Any other
// settings keys are carried around the merge untouched by the caller.
type Document struct {
	Hooks   map[string][]HookEntry    `json:"hooks,omitempty"`
	Servers map[string]map[string]any `json:"servers,omitempty"`
}

// PriorInstalled records what earlier runs installed, so the merger can
// tell "user never had this" apart from "user deleted this on purpose".
// Commands holds normalized command strings, Servers holds registry
// keys.
type PriorInstalled struct {
	Commands map[string]bool
	Servers  map[string]bool
}

// HadCommand reports whether a normalized command was installed by an
// earlier run.
func (p PriorInstalled) HadCommand(normalized string) bool {
	return p.Commands[normalized]
}

// HadServer reports whether a server key was installed by an earlier
// run.
func (p PriorInstalled) HadServer(key string) bool {
	return p.Servers[key]
}

// Stats counts merge outcomes, sufficient to render a summary and to
// assert exact behavior in tests.
type Stats struct {
	Added              int
	Preserved          int
	SkippedUserDeleted int
	DuplicatesSkipped  int
}

// Merge combines source (upstream) into dest (the user's document) and
// returns the merged document plus counters. dest is not mutated.
func Merge(source, dest Document, prior PriorInstalled) (Document, Stats) {
	var stats Stats
	merged := Document{
		Hooks:   mergeHooks(source.Hooks, dest.Hooks, prior, &stats),
		Servers: mergeServers(source.Servers, dest.Servers, prior, &stats),
	}
	return merged, stats
}
