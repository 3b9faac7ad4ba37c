package classify

import "github.com/veil-waf/framegate/internal/urlrisk"

// Status values of a Result.
const (
	StatusSafe   = "safe"
	StatusUnsafe = "unsafe"
	StatusError  = "error"
)

// Result is the check outcome shared by every strategy. Status and
// Confidence form the wire contract of the remote check endpoint; the other
// fields are filled in when the strategy has them.
type Result struct {
	Status         string           `json:"status"`
	Confidence     float64          `json:"confidence"`
	Tier           urlrisk.Tier     `json:"tier,omitempty"`
	RiskScore      *int             `json:"risk_score,omitempty"`
	Reason         string           `json:"reason,omitempty"`
	Strategy       string           `json:"strategy,omitempty"`
	ResponseTimeMs float64          `json:"response_time_ms,omitempty"`
	Verdict        *urlrisk.Verdict `json:"verdict,omitempty"`
}

// ErrorResult is what callers must use when a check could not be completed.
func ErrorResult(strategy, reason string) *Result {
	return &Result{
		Status:     StatusError,
		Confidence: 0,
		Reason:     reason,
		Strategy:   strategy,
	}
}

// FromVerdict converts a local engine verdict into a Result.
func FromVerdict(v urlrisk.Verdict) *Result {
	status := StatusUnsafe
	if v.Safe {
		status = StatusSafe
	}
	score := v.RiskScore
	return &Result{
		Status:     status,
		Confidence: float64(v.Confidence),
		Tier:       v.Tier,
		RiskScore:  &score,
		Reason:     v.Reason,
		Verdict:    &v,
	}
}

// Safe reports whether the result allows the URL to be embedded. Error
// results are never safe.
func (r *Result) Safe() bool {
	return r != nil && r.Status == StatusSafe
}
