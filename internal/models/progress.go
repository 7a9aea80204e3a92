package models

// ProgressState describes an enrichment run: Completed of Total lookups done, Label names the track being looked up.
//
// Finished is set once the lookup loop has ended, including runs with no tracks at all.
type ProgressState struct {
	Completed int
	Total     int
	Label     string
	Finished  bool
}

// Percent returns Completed / Total * 100, 100 once Finished, or 0 before the total is known.
func (p ProgressState) Percent() float64 {
	if p.Finished {
		return 100
	}
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// Fraction returns Percent scaled to 0–1.
func (p ProgressState) Fraction() float64 {
	return p.Percent() / 100
}

// Done reports whether every lookup has finished.
func (p ProgressState) Done() bool {
	return p.Finished || (p.Total > 0 && p.Completed >= p.Total)
}
