package report

import "fmt"

// NotAvailable is rendered wherever a value could not be determined.
const NotAvailable = "N/A"

// Summary aggregates outcome counts for the console and JSON consumers.
// Failed counts FAILED outcomes only; timeouts and launch errors are counted
// in TimedOut and Errored.
type Summary struct {
	Total        int    `json:"total"`
	Passed       int    `json:"passed"`
	Failed       int    `json:"failed"`
	TimedOut     int    `json:"timed_out"`
	Errored      int    `json:"errored"`
	SuccessRate  string `json:"success_rate"`
	LineCoverage string `json:"line_coverage,omitempty"`
}

// Summarize derives the summary of r.
func Summarize(r *Report) Summary {
	s := Summary{Total: r.Tests.Len()}
	for _, o := range r.Tests.All() {
		switch o.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusTimeout:
			s.TimedOut++
		case StatusError:
			s.Errored++
		}
	}
	s.SuccessRate = SuccessRate(s.Passed, s.Total)
	if r.Coverage != nil {
		s.LineCoverage = r.Coverage.LineCoverage
		if s.LineCoverage == "" {
			s.LineCoverage = NotAvailable
		}
	}
	return s
}

// SuccessRate formats passed/total as a one-decimal percentage, or N/A when
// total is zero.
func SuccessRate(passed, total int) string {
	if total <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f%%", float64(passed)/float64(total)*100)
}

// AllPassed reports whether every outcome passed.
func (s Summary) AllPassed() bool {
	return s.Passed == s.Total
}
