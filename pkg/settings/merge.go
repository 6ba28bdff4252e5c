package settings

import "sort"

// mergeHooks merges the event-keyed hook lists. Per incoming entry: if
// a destination entry shares its matcher, only the genuinely new leaf
// directives are spliced into it; otherwise the entry is appended
// whole, minus leaves that are duplicates or intentional user
// deletions. Appending keeps every user-authored entry ahead of
// everything tool-authored, so user hooks can precondition managed
// ones.
func mergeHooks(source, dest map[string][]HookEntry, prior PriorInstalled, stats *Stats) map[string][]HookEntry {
	if source == nil && dest == nil {
		return nil
	}

	merged := make(map[string][]HookEntry, len(dest)+len(source))
	for event, entries := range dest {
		merged[event] = copyEntries(entries)
		for _, entry := range entries {
			stats.Preserved += len(entry.Hooks)
		}
	}

	for _, event := range sortedKeys(source) {
		for _, incoming := range source[event] {
			mergeEntry(merged, event, incoming, prior, stats)
		}
	}
	return merged
}

// mergeEntry folds one incoming hook entry into the merged event list.
func mergeEntry(merged map[string][]HookEntry, event string, incoming HookEntry, prior PriorInstalled, stats *Stats) {
	existing := merged[event]
	present := make(map[string]bool)
	for _, entry := range existing {
		for _, d := range entry.Hooks {
			present[NormalizeCommand(d.Command)] = true
		}
	}

	var fresh []Directive
	for _, d := range incoming.Hooks {
		norm := NormalizeCommand(d.Command)
		switch {
		case present[norm]:
			stats.DuplicatesSkipped++
		case prior.HadCommand(norm):
			// Installed before, gone now: the user deleted it on
			// purpose. Do not re-add.
			stats.SkippedUserDeleted++
		default:
			fresh = append(fresh, d)
		}
	}
	if len(fresh) == 0 {
		// Fully duplicate or fully user-deleted: drop the entry.
		return
	}

	for i, entry := range existing {
		if entry.Matcher == incoming.Matcher {
			// Splice new leaves into the matching entry, after the
			// user's own directives.
			existing[i].Hooks = append(existing[i].Hooks, fresh...)
			merged[event] = existing
			stats.Added += len(fresh)
			return
		}
	}

	merged[event] = append(existing, HookEntry{Matcher: incoming.Matcher, Hooks: fresh})
	stats.Added += len(fresh)
}

// mergeServers merges the keyed server registry. User keys always win:
// a key present in the destination is preserved as-is, and a source key
// the user previously deleted stays deleted.
func mergeServers(source, dest map[string]map[string]any, prior PriorInstalled, stats *Stats) map[string]map[string]any {
	if source == nil && dest == nil {
		return nil
	}

	merged := make(map[string]map[string]any, len(dest)+len(source))
	for key, cfg := range dest {
		merged[key] = cfg
		stats.Preserved++
	}

	for _, key := range sortedKeys(source) {
		if _, exists := merged[key]; exists {
			continue
		}
		if prior.HadServer(key) {
			stats.SkippedUserDeleted++
			continue
		}
		merged[key] = source[key]
		stats.Added++
	}
	return merged
}

func copyEntries(entries []HookEntry) []HookEntry {
	out := make([]HookEntry, len(entries))
	for i, entry := range entries {
		out[i] = HookEntry{
			Matcher: entry.Matcher,
			Hooks:   append([]Directive(nil), entry.Hooks...),
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
