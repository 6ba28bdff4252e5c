package confirmations

import "github.com/arthur-debert/syncpack/pkg/diffmerge"

// Scripted replays canned answers. Test-only by convention; it lives
// in the package proper so command tests outside this package can use
// it.
type Scripted struct {
	// Confirms are consumed in order; when exhausted, ConfirmDefault
	// answers.
	Confirms       []bool
	ConfirmDefault bool

	// Hunks are consumed in order; when exhausted, reject.
	Hunks []diffmerge.Decision

	// Asked records every question, for assertions.
	Asked []string

	confirmIdx int
	hunkIdx    int
}

func (s *Scripted) Interactive() bool { return true }

func (s *Scripted) Confirm(question string, _ bool) (bool, error) {
	s.Asked = append(s.Asked, question)
	if s.confirmIdx < len(s.Confirms) {
		answer := s.Confirms[s.confirmIdx]
		s.confirmIdx++
		return answer, nil
	}
	return s.ConfirmDefault, nil
}

func (s *Scripted) DecideHunk(label string, _ diffmerge.Hunk, _, _ int) (diffmerge.Decision, error) {
	s.Asked = append(s.Asked, label)
	if s.hunkIdx < len(s.Hunks) {
		d := s.Hunks[s.hunkIdx]
		s.hunkIdx++
		return d, nil
	}
	return diffmerge.DecisionReject, nil
}
