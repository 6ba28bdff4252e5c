// Package display renders plans, execution results, and registry
// status for the terminal. Rendering is pure string assembly so the
// output is testable; the cmd layer decides where it goes.
package display

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/syncpack/pkg/executor"
	"github.com/arthur-debert/syncpack/pkg/registry"
	"github.com/arthur-debert/syncpack/pkg/style"
	"github.com/arthur-debert/syncpack/pkg/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
)

// RenderPlan renders the action plan, one line per non-skip entry plus
// a counts footer. With verbose set, skip entries are listed too.
func RenderPlan(plan types.Plan, verbose bool) string {
	var b strings.Builder

	for _, entry := range plan.Entries {
		if entry.Action == types.ActionSkip && !verbose {
			continue
		}
		st := style.ActionStyle(entry.Action)
		b.WriteString(fmt.Sprintf("%s %-9s %-40s %s\n",
			st.Render(style.ActionGlyph(entry.Action)),
			st.Render(string(entry.Action)),
			style.PathStyle.Render(displayPath(entry)),
			style.MutedStyle.Render(entry.Reason),
		))
	}

	b.WriteString(renderSummary(plan.Summary))
	return b.String()
}

func displayPath(entry types.PlanEntry) string {
	if entry.FilePath != "" {
		return entry.FilePath
	}
	return fmt.Sprintf("%s/%s (%s)", entry.Target.Key(), entry.Item, entry.Type)
}

func renderSummary(s types.PlanSummary) string {
	parts := []string{
		fmt.Sprintf("%d install", s.Install),
		fmt.Sprintf("%d update", s.Update),
		fmt.Sprintf("%d skip", s.Skip),
	}
	if s.Conflict > 0 {
		parts = append(parts, style.ErrorStyle.Render(fmt.Sprintf("%d conflict", s.Conflict)))
	}
	if s.Delete > 0 {
		parts = append(parts, style.WarningStyle.Render(fmt.Sprintf("%d delete", s.Delete)))
	}
	return style.MutedStyle.Render("plan: ") + strings.Join(parts, ", ") + "\n"
}

// RenderSyncPlan renders the three sync buckets.
func RenderSyncPlan(plan types.SyncPlan) string {
	var b strings.Builder
	section := func(title string, st lipgloss.Style, files []types.SyncFile) {
		if len(files) == 0 {
			return
		}
		b.WriteString(st.Render(title) + "\n")
		for _, f := range files {
			b.WriteString(fmt.Sprintf("  %-40s %s\n",
				style.PathStyle.Render(f.Path),
				style.MutedStyle.Render(f.Reason)))
		}
	}
	section("Auto-update", style.SuccessStyle, plan.AutoUpdate)
	section("Needs review", style.WarningStyle, plan.NeedsReview)
	section("Skipped", style.MutedStyle, plan.Skipped)

	b.WriteString(style.MutedStyle.Render(fmt.Sprintf(
		"sync: %d auto-update, %d needs-review, %d skipped\n",
		len(plan.AutoUpdate), len(plan.NeedsReview), len(plan.Skipped))))
	return b.String()
}

// RenderResult renders an execution outcome.
func RenderResult(result *executor.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s %d installed, %d updated, %d deleted, %d skipped\n",
		style.SuccessStyle.Render("done:"),
		result.Installed, result.Updated, result.Deleted, result.Skipped))

	stats := result.SettingsStats
	if stats.Added+stats.Preserved+stats.SkippedUserDeleted+stats.DuplicatesSkipped > 0 {
		b.WriteString(style.MutedStyle.Render(fmt.Sprintf(
			"settings: %d added, %d preserved, %d kept deleted, %d duplicates skipped\n",
			stats.Added, stats.Preserved, stats.SkippedUserDeleted, stats.DuplicatesSkipped)))
	}
	if result.HunksApplied+result.HunksRejected > 0 {
		b.WriteString(style.MutedStyle.Render(fmt.Sprintf(
			"merge: %d hunks applied, %d rejected\n",
			result.HunksApplied, result.HunksRejected)))
	}
	for _, f := range result.Failures {
		b.WriteString(style.ErrorStyle.Render("failed: ") + f.Path + " — " + f.Reason + "\n")
	}
	for _, blocked := range result.Blocked {
		b.WriteString(style.ErrorStyle.Render("blocked: ") + blocked.Path + "\n")
		b.WriteString(style.MutedStyle.Render("  "+blocked.Remediation) + "\n")
	}
	return b.String()
}

// RenderStatus renders the registry as a table: what is installed
// where, and whether the file still matches its baseline.
func RenderStatus(doc *registry.Document, targets map[string]types.TargetFileState) string {
	if len(doc.Entries) == 0 {
		return style.MutedStyle.Render("nothing installed") + "\n"
	}

	entries := append([]types.RegistryEntry(nil), doc.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].FilePath < entries[j].FilePath })

	rows := pterm.TableData{{"ITEM", "TYPE", "TARGET", "PATH", "STATE"}}
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.Item,
			string(entry.Type),
			entry.Target.Key(),
			entry.FilePath,
			fileState(entry, targets[entry.FilePath]),
		})
	}

	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		// Table rendering never fails on plain data; fall back anyway.
		var b strings.Builder
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t") + "\n")
		}
		return b.String()
	}
	return rendered + "\n"
}

func fileState(entry types.RegistryEntry, state types.TargetFileState) string {
	switch {
	case !state.Exists:
		return style.WarningStyle.Render("missing")
	case state.Checksum == entry.TargetChecksum:
		return style.SuccessStyle.Render("clean")
	default:
		return style.InfoStyle.Render("modified")
	}
}
