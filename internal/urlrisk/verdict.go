// Package urlrisk decides whether a URL is safe to embed by looking only at
// its text. Assess is pure and holds no state, so it may be called from any
// number of goroutines.
package urlrisk

import (
	"fmt"
	"math"
	"strings"

	"github.com/veil-waf/framegate/internal/netguard"
)

// Tier is the discrete risk class of a verdict.
type Tier string

const (
	TierSafe   Tier = "Safe"
	TierLow    Tier = "Low"
	TierMedium Tier = "Medium"
	TierHigh   Tier = "High"
)

// Fixed reasons for verdicts that skip scoring.
const (
	ReasonInvalidURL   = "Invalid URL format"
	ReasonProtocol     = "Only HTTP and HTTPS protocols are allowed"
	ReasonLocal        = "Local or potentially unsafe URL detected"
	ReasonUnanalyzable = "Unable to analyze URL structure"
	ReasonSafe         = "No significant risk indicators detected"
)

// Tier thresholds on the combined score.
const (
	highThreshold   = 35
	mediumThreshold = 20
	lowThreshold    = 10
)

// Verdict is the only value returned to callers of Assess.
type Verdict struct {
	Safe       bool     `json:"safe"`
	RiskScore  int      `json:"risk_score"`
	Confidence int      `json:"confidence"`
	Tier       Tier     `json:"tier"`
	Reason     string   `json:"reason"`
	Reasons    []string `json:"reasons"`

	// Detail, present only when the URL reached the scorers.
	Score             float64    `json:"score,omitempty"`
	SubScores         []SubScore `json:"sub_scores,omitempty"`
	RegistrableDomain string     `json:"registrable_domain,omitempty"`
}

// Assess runs the whole pipeline on raw: parse, pre-filter, extract, score
// and classify. It never panics and never returns an error; every failure
// is expressed as an unsafe Verdict.
func Assess(raw string) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			v = blocked(ReasonUnanalyzable, 80)
		}
	}()

	p, err := Parse(raw)
	if err != nil {
		return blocked(ReasonInvalidURL, 90)
	}
	if verdict, stop := Prefilter(p); stop {
		return verdict
	}

	f, err := Extract(p)
	if err != nil {
		return blocked(ReasonUnanalyzable, 80)
	}

	v = Classify(Combine(ScoreStructural(f), ScorePattern(f), ScoreKeyword(f)))
	v.RegistrableDomain = p.RegistrableDomain
	return v
}

// Prefilter applies the protocol allow-list and the local/unsafe blocklist.
// When stop is true the returned verdict is final.
func Prefilter(p *ParsedURL) (v Verdict, stop bool) {
	if p.Protocol != "http" && p.Protocol != "https" {
		return blocked(ReasonProtocol, 100), true
	}
	if netguard.IsBlocked(p.Hostname, p.Raw) {
		return blocked(ReasonLocal, 95), true
	}
	return Verdict{}, false
}

// Classify maps a combined score onto a tier and builds the verdict.
func Classify(e Ensemble) Verdict {
	reasons := e.Reasons()
	v := Verdict{
		RiskScore: int(math.Round(e.Score)),
		Reasons:   reasons,
		Score:     e.Score,
		SubScores: []SubScore{e.Structural, e.Pattern, e.Keyword},
	}

	var (
		shown      int
		prefix     string
		confidence float64
	)
	switch {
	case e.Score >= highThreshold:
		v.Tier, shown, prefix = TierHigh, 3, "High risk detected"
		confidence = e.Confidence
	case e.Score >= mediumThreshold:
		v.Tier, shown, prefix = TierMedium, 2, "Medium risk detected"
		confidence = max(75, e.Confidence-5)
	case e.Score >= lowThreshold:
		v.Tier, shown, prefix = TierLow, 1, "Low risk detected"
		confidence = max(70, e.Confidence-10)
	default:
		v.Safe = true
		v.Tier = TierSafe
		v.Confidence = int(math.Round(max(85, 100-e.Score)))
		v.Reason = ReasonSafe
		return v
	}

	v.Confidence = int(math.Round(confidence))
	v.Reason = summarize(prefix, reasons, shown)
	return v
}

func summarize(prefix string, reasons []string, n int) string {
	if len(reasons) > n {
		reasons = reasons[:n]
	}
	if len(reasons) == 0 {
		return prefix
	}
	return fmt.Sprintf("%s: %s", prefix, strings.Join(reasons, ", "))
}

func blocked(reason string, confidence int) Verdict {
	return Verdict{
		Safe:       false,
		RiskScore:  100,
		Confidence: confidence,
		Tier:       TierHigh,
		Reason:     reason,
		Reasons:    []string{reason},
	}
}
