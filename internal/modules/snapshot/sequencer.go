// README: Request sequencing so only the newest fetch completion is applied.
package snapshot

// Sequencer numbers fetch requests and filters their completions so a slow
// older fetch can never overwrite a newer one. Owned by one session; not
// safe for concurrent use.
type Sequencer struct {
	issued  uint64
	applied uint64
}

// Next returns the sequence number for a new request.
func (s *Sequencer) Next() uint64 {
	s.issued++
	return s.issued
}

// Apply reports whether a completion for seq should be applied, and records
// it as the newest applied one if so.
func (s *Sequencer) Apply(seq uint64) bool {
	if seq <= s.applied || seq > s.issued {
		return false
	}
	s.applied = seq
	return true
}

func (s *Sequencer) Applied() uint64 { return s.applied }
