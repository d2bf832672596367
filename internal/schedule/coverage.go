package schedule

// Coverage summarizes which targets were captured by at least one of several
// independent schedules against the same target list.
type Coverage struct {
	Total    int   `json:"total"`
	Captured []int `json:"captured"`
	Missed   []int `json:"missed"`
}

// Summarize merges per-satellite capture lists over n targets.
func Summarize(n int, schedules ...[]Capture) Coverage {
	seen := make(map[int]bool)
	for _, caps := range schedules {
		for _, c := range caps {
			if c.Index >= 0 && c.Index < n {
				seen[c.Index] = true
			}
		}
	}

	cov := Coverage{Total: n, Captured: []int{}, Missed: []int{}}
	for i := 0; i < n; i++ {
		if seen[i] {
			cov.Captured = append(cov.Captured, i)
		} else {
			cov.Missed = append(cov.Missed, i)
		}
	}
	return cov
}

// Ratio is the captured fraction, or zero for an empty target list.
func (c Coverage) Ratio() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(len(c.Captured)) / float64(c.Total)
}
