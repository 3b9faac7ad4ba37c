package urlrisk

// SubScore is the output of one rule-based scorer. Value is clamped to
// [0,100] and Reasons keeps first-trigger order without duplicates.
type SubScore struct {
	Name    string   `json:"name"`
	Value   float64  `json:"value"`
	Reasons []string `json:"reasons"`
}

// Ensemble weights.
const (
	structuralWeight = 0.35
	patternWeight    = 0.40
	keywordWeight    = 0.25
)

type tally struct {
	name    string
	points  float64
	reasons []string
}

func (t *tally) add(points float64, reason string) {
	t.points += points
	for _, r := range t.reasons {
		if r == reason {
			return
		}
	}
	t.reasons = append(t.reasons, reason)
}

func (t *tally) result() SubScore {
	return SubScore{Name: t.name, Value: clamp(t.points, 0, 100), Reasons: t.reasons}
}

// ScoreStructural rates length, entropy and punctuation density.
func ScoreStructural(f FeatureVector) SubScore {
	t := tally{name: "structural"}

	if f.URLLength > 100 {
		t.add(20, "Unusually long URL")
	} else if f.URLLength > 75 {
		t.add(10, "Long URL")
	}
	if f.HostnameLength > 50 {
		t.add(15, "Unusually long hostname")
	} else if f.HostnameLength > 30 {
		t.add(8, "Long hostname")
	}

	if f.URLEntropy > 4.8 {
		t.add(30, "Very high URL randomness")
	} else if f.URLEntropy > 4.2 {
		t.add(20, "High URL randomness")
	}
	if f.HostnameEntropy > 3.8 {
		t.add(25, "Random-looking hostname")
	}
	if f.PathEntropy > 4.0 {
		t.add(15, "Random-looking path")
	}

	if f.DigitRatio > 0.4 {
		t.add(20, "High proportion of digits")
	}
	if f.HyphenCount > 5 {
		t.add(15, "Excessive hyphens")
	}
	if f.DotCount > 6 {
		t.add(18, "Excessive dots")
	}
	if f.SubdomainCount > 4 {
		t.add(20, "Too many subdomains")
	}

	return t.result()
}

// ScorePattern rates known abuse patterns in the host.
func ScorePattern(f FeatureVector) SubScore {
	t := tally{name: "pattern"}

	if f.HasIPv4Host {
		t.add(35, "IP address used instead of domain name")
	}
	if f.SuspiciousTLD {
		t.add(30, "Suspicious top-level domain")
	}
	if f.IsShortener {
		t.add(25, "Uses a URL shortening service")
	}
	if f.BrandSimilarity {
		if !f.UsesHTTPS {
			t.add(35, "Brand impersonation without HTTPS")
		} else {
			t.add(20, "Possible brand impersonation")
		}
	}
	if f.BrandKeywords > 1 {
		t.add(25, "Multiple brand names in URL")
	}
	if f.HasHomoglyph {
		t.add(15, "Look-alike characters in hostname")
	}
	if f.MaxSubdomainLength > 25 {
		t.add(15, "Unusually long subdomain")
	}

	return t.result()
}

// ScoreKeyword rates social-engineering vocabulary and query/path shape.
func ScoreKeyword(f FeatureVector) SubScore {
	t := tally{name: "keyword"}

	switch total := f.FinancialKeywords + f.UrgencyKeywords + f.DeceptionKeywords; {
	case total > 3:
		t.add(25, "Many phishing-related keywords")
	case total > 1:
		t.add(15, "Phishing-related keywords")
	}
	if f.FinancialKeywords > 0 && !f.UsesHTTPS {
		t.add(30, "Financial terms without HTTPS")
	}
	if f.UrgencyKeywords > 1 {
		t.add(20, "Urgency language")
	}
	if f.HasSuspiciousParam {
		t.add(15, "Redirect-style query parameter")
	}
	if f.PathDepth > 5 {
		t.add(10, "Deeply nested path")
	}
	if f.MaxPathSegmentLength > 30 {
		t.add(12, "Unusually long path segment")
	}
	if f.ParamCount > 8 {
		t.add(10, "Many query parameters")
	}
	if f.MaxParamLength > 100 {
		t.add(15, "Unusually long query parameter")
	}

	return t.result()
}

// Ensemble is the weighted combination of the three sub-scores.
type Ensemble struct {
	Structural SubScore `json:"structural"`
	Pattern    SubScore `json:"pattern"`
	Keyword    SubScore `json:"keyword"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
}

// Combine weights the sub-scores into the final score and derives the
// agreement confidence from their population variance about that score.
func Combine(structural, pattern, keyword SubScore) Ensemble {
	score := structuralWeight*structural.Value +
		patternWeight*pattern.Value +
		keywordWeight*keyword.Value

	var variance float64
	for _, v := range []float64{structural.Value, pattern.Value, keyword.Value} {
		d := v - score
		variance += d * d
	}
	variance /= 3

	return Ensemble{
		Structural: structural,
		Pattern:    pattern,
		Keyword:    keyword,
		Score:      score,
		Confidence: clamp(90-variance/10, 70, 95),
	}
}

// Reasons merges the sub-score reasons in scorer order, dropping duplicates.
func (e Ensemble) Reasons() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range []SubScore{e.Structural, e.Pattern, e.Keyword} {
		for _, r := range s.Reasons {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
