// Package confirmations provides the operator decision points: the
// pre-execution plan confirmation and the per-hunk merge prompts. The
// executor only sees the Prompter interface, so tests drive it with a
// scripted implementation.
package confirmations

import (
	"fmt"
	"os"
	"strings"

	"github.com/arthur-debert/syncpack/pkg/diffmerge"
	"github.com/mattn/go-isatty"
)

// Prompter answers the questions an execution run asks.
type Prompter interface {
	// Confirm asks a yes/no question. defaultYes controls the answer
	// for a bare return.
	Confirm(question string, defaultYes bool) (bool, error)

	// DecideHunk resolves one merge hunk.
	DecideHunk(label string, hunk diffmerge.Hunk, index, total int) (diffmerge.Decision, error)

	// Interactive reports whether the prompter can actually ask. A
	// non-interactive prompter blocks conflicts instead of merging.
	Interactive() bool
}

// Console prompts on stdin/stdout.
type Console struct{}

// NewConsole creates a console prompter.
func NewConsole() *Console {
	return &Console{}
}

// Interactive reports whether stdin is a terminal.
func (c *Console) Interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Confirm asks a yes/no question on the console.
func (c *Console) Confirm(question string, defaultYes bool) (bool, error) {
	marker := "[y/N]"
	if defaultYes {
		marker = "[Y/n]"
	}
	fmt.Printf("%s %s: ", question, marker)

	response, err := readLine()
	if err != nil {
		return false, err
	}
	if response == "" {
		return defaultYes, nil
	}
	return response == "y" || response == "yes", nil
}

// hunkHeader formats the one-line hunk summary. Hunk line numbers are
// already 1-based and are reported verbatim.
func hunkHeader(label string, hunk diffmerge.Hunk, index, total int) string {
	return fmt.Sprintf("%s — change %d of %d (line %d)", label, index+1, total, hunk.OldStart)
}

// DecideHunk renders one hunk and asks apply/reject/skip-file.
func (c *Console) DecideHunk(label string, hunk diffmerge.Hunk, index, total int) (diffmerge.Decision, error) {
	fmt.Printf("\n%s\n", hunkHeader(label, hunk, index, total))
	for _, line := range hunk.ContextBefore {
		fmt.Printf("  %s\n", line)
	}
	for _, line := range hunk.Removed {
		fmt.Printf("- %s\n", line)
	}
	for _, line := range hunk.Added {
		fmt.Printf("+ %s\n", line)
	}

	for {
		fmt.Print("Apply this change? [y]es / [n]o / [s]kip file: ")
		response, err := readLine()
		if err != nil {
			return diffmerge.DecisionReject, err
		}
		switch response {
		case "y", "yes":
			return diffmerge.DecisionApply, nil
		case "n", "no":
			return diffmerge.DecisionReject, nil
		case "s", "skip":
			return diffmerge.DecisionSkipFile, nil
		}
	}
}

func readLine() (string, error) {
	var response string
	_, err := fmt.Scanln(&response)
	if err != nil && err.Error() != "unexpected newline" {
		return "", fmt.Errorf("failed to read user input: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(response)), nil
}

// Auto answers without asking: plan confirmations succeed and every
// hunk is applied. Used for --yes runs that still allow merging.
type Auto struct{}

// NewAuto creates an auto-approving prompter.
func NewAuto() *Auto {
	return &Auto{}
}

func (a *Auto) Interactive() bool { return true }

func (a *Auto) Confirm(string, bool) (bool, error) {
	return true, nil
}

func (a *Auto) DecideHunk(string, diffmerge.Hunk, int, int) (diffmerge.Decision, error) {
	return diffmerge.DecisionApply, nil
}

// Unattended refuses everything interactive: plan confirmations use
// their default and hunk decisions are never reached because the
// executor blocks conflicts first.
type Unattended struct{}

// NewUnattended creates a non-interactive prompter.
func NewUnattended() *Unattended {
	return &Unattended{}
}

func (u *Unattended) Interactive() bool { return false }

func (u *Unattended) Confirm(_ string, defaultYes bool) (bool, error) {
	return defaultYes, nil
}

func (u *Unattended) DecideHunk(string, diffmerge.Hunk, int, int) (diffmerge.Decision, error) {
	return diffmerge.DecisionSkipFile, nil
}
