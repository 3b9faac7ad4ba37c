package urlrisk

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"
)

// ErrNonFinite is returned by Extract when a feature evaluates to NaN or Inf.
var ErrNonFinite = errors.New("non-finite feature value")

// FeatureVector is the fixed feature schema computed for every assessed URL.
// Ratios use a denominator floor of 1, so empty components yield zeros.
type FeatureVector struct {
	// Lengths
	URLLength      int `json:"url_length"`
	HostnameLength int `json:"hostname_length"`
	PathLength     int `json:"path_length"`
	QueryLength    int `json:"query_length"`

	// Composition, ratios over the full URL length
	DigitCount  int     `json:"digit_count"`
	DigitRatio  float64 `json:"digit_ratio"`
	LetterCount int     `json:"letter_count"`
	LetterRatio float64 `json:"letter_ratio"`

	// Shannon entropy in bits per character
	URLEntropy      float64 `json:"url_entropy"`
	HostnameEntropy float64 `json:"hostname_entropy"`
	PathEntropy     float64 `json:"path_entropy"`

	// Punctuation counts over the full URL
	HyphenCount     int `json:"hyphen_count"`
	UnderscoreCount int `json:"underscore_count"`
	DotCount        int `json:"dot_count"`
	SlashCount      int `json:"slash_count"`
	QuestionCount   int `json:"question_count"`
	EqualsCount     int `json:"equals_count"`
	AmpersandCount  int `json:"ampersand_count"`
	PercentCount    int `json:"percent_count"`
	PlusCount       int `json:"plus_count"`
	TildeCount      int `json:"tilde_count"`
	HashCount       int `json:"hash_count"`

	// Protocol and structure
	UsesHTTPS   bool `json:"uses_https"`
	HasPort     bool `json:"has_port"`
	HasIPv4Host bool `json:"has_ipv4_host"`
	IsShortener bool `json:"is_shortener"`

	// Distinct keyword matches per category
	FinancialKeywords int `json:"financial_keywords"`
	BrandKeywords     int `json:"brand_keywords"`
	UrgencyKeywords   int `json:"urgency_keywords"`
	DeceptionKeywords int `json:"deception_keywords"`

	// Path
	PathDepth            int     `json:"path_depth"`
	AvgPathSegmentLength float64 `json:"avg_path_segment_length"`
	MaxPathSegmentLength int     `json:"max_path_segment_length"`

	// Query
	ParamCount         int  `json:"param_count"`
	MaxParamLength     int  `json:"max_param_length"`
	HasSuspiciousParam bool `json:"has_suspicious_param"`

	// TLD
	SuspiciousTLD bool `json:"suspicious_tld"`
	LegitimateTLD bool `json:"legitimate_tld"`
	TLDLength     int  `json:"tld_length"`

	// Lexical
	UniqueCharRatio     float64 `json:"unique_char_ratio"`
	VowelCount          int     `json:"vowel_count"`
	ConsonantCount      int     `json:"consonant_count"`
	VowelConsonantRatio float64 `json:"vowel_consonant_ratio"`

	// Domain structure
	SubdomainCount     int     `json:"subdomain_count"`
	MaxSubdomainLength int     `json:"max_subdomain_length"`
	AvgSubdomainLength float64 `json:"avg_subdomain_length"`
	MainDomainLength   int     `json:"main_domain_length"`
	MainDomainEntropy  float64 `json:"main_domain_entropy"`
	BrandSimilarity    bool    `json:"brand_similarity"`
	HasHomoglyph       bool    `json:"has_homoglyph"`

	// Derived ratios
	SubdomainHostRatio float64 `json:"subdomain_host_ratio"`
	QueryURLRatio      float64 `json:"query_url_ratio"`
	PathURLRatio       float64 `json:"path_url_ratio"`
}

// Extract computes the feature vector of p. Lengths count characters, not
// bytes, so multi-byte hostnames are measured the way a reader sees them.
func Extract(p *ParsedURL) (FeatureVector, error) {
	var f FeatureVector

	full := p.Raw
	lower := strings.ToLower(full)
	urlLen := utf8.RuneCountInString(full)

	f.URLLength = urlLen
	f.HostnameLength = utf8.RuneCountInString(p.Hostname)
	f.PathLength = utf8.RuneCountInString(p.Path)
	f.QueryLength = utf8.RuneCountInString(p.Query)

	for _, r := range full {
		switch {
		case r >= '0' && r <= '9':
			f.DigitCount++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			f.LetterCount++
		}
	}
	f.DigitRatio = ratio(f.DigitCount, urlLen)
	f.LetterRatio = ratio(f.LetterCount, urlLen)

	f.URLEntropy = shannonEntropy(full)
	f.HostnameEntropy = shannonEntropy(p.Hostname)
	f.PathEntropy = shannonEntropy(p.Path)

	f.HyphenCount = strings.Count(full, "-")
	f.UnderscoreCount = strings.Count(full, "_")
	f.DotCount = strings.Count(full, ".")
	f.SlashCount = strings.Count(full, "/")
	f.QuestionCount = strings.Count(full, "?")
	f.EqualsCount = strings.Count(full, "=")
	f.AmpersandCount = strings.Count(full, "&")
	f.PercentCount = strings.Count(full, "%")
	f.PlusCount = strings.Count(full, "+")
	f.TildeCount = strings.Count(full, "~")
	f.HashCount = strings.Count(full, "#")

	f.UsesHTTPS = p.Protocol == "https"
	f.HasPort = strings.Contains(p.Hostname, ":") && !strings.HasPrefix(p.Hostname, "www")
	f.HasIPv4Host = ipv4Host.MatchString(p.Hostname)
	f.IsShortener = isShortener(p.Hostname)

	f.FinancialKeywords = countKeywords(lower, financialKeywords)
	f.BrandKeywords = countKeywords(lower, brandKeywords)
	f.UrgencyKeywords = countKeywords(lower, urgencyKeywords)
	f.DeceptionKeywords = countKeywords(lower, deceptionKeywords)

	pathStats(p.Path, &f)
	queryStats(p, &f)

	labels := strings.Split(p.Hostname, ".")
	tld := labels[len(labels)-1]
	_, f.SuspiciousTLD = suspiciousTLDs[tld]
	_, f.LegitimateTLD = legitimateTLDs[tld]
	f.TLDLength = utf8.RuneCountInString(tld)

	f.UniqueCharRatio = ratio(distinctRunes(full), urlLen)
	for _, r := range lower {
		if r < 'a' || r > 'z' {
			continue
		}
		if strings.ContainsRune(vowels, r) {
			f.VowelCount++
		} else {
			f.ConsonantCount++
		}
	}
	f.VowelConsonantRatio = ratio(f.VowelCount, f.ConsonantCount)

	domainStats(labels, &f)
	f.HasHomoglyph = hasHomoglyph(p.Hostname) || hasHomoglyph(p.UnicodeHostname)

	f.SubdomainHostRatio = ratio(f.SubdomainCount, f.HostnameLength)
	f.QueryURLRatio = ratio(f.QueryLength, urlLen)
	f.PathURLRatio = ratio(f.PathLength, urlLen)

	if err := f.checkFinite(); err != nil {
		return FeatureVector{}, err
	}
	return f, nil
}

func pathStats(path string, f *FeatureVector) {
	total := 0
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		n := utf8.RuneCountInString(seg)
		f.PathDepth++
		total += n
		if n > f.MaxPathSegmentLength {
			f.MaxPathSegmentLength = n
		}
	}
	f.AvgPathSegmentLength = ratio(total, f.PathDepth)
}

func queryStats(p *ParsedURL, f *FeatureVector) {
	for key, values := range p.Params() {
		if _, ok := suspiciousParams[strings.ToLower(key)]; ok {
			f.HasSuspiciousParam = true
		}
		keyLen := utf8.RuneCountInString(key)
		for _, v := range values {
			f.ParamCount++
			f.MaxParamLength = max(f.MaxParamLength, keyLen, utf8.RuneCountInString(v))
		}
	}
}

func domainStats(labels []string, f *FeatureVector) {
	n := len(labels)
	f.SubdomainCount = max(0, n-2)

	total := 0
	for _, l := range labels[:f.SubdomainCount] {
		ln := utf8.RuneCountInString(l)
		total += ln
		f.MaxSubdomainLength = max(f.MaxSubdomainLength, ln)
	}
	f.AvgSubdomainLength = ratio(total, f.SubdomainCount)

	mainLabel := labels[0]
	if n >= 2 {
		mainLabel = labels[n-2]
	}
	f.MainDomainLength = utf8.RuneCountInString(mainLabel)
	f.MainDomainEntropy = shannonEntropy(mainLabel)
	for _, b := range popularBrands {
		if mainLabel != b && strings.Contains(mainLabel, b) {
			f.BrandSimilarity = true
			break
		}
	}
}

func isShortener(host string) bool {
	for _, s := range shorteners {
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}

func countKeywords(s string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(s, w) {
			n++
		}
	}
	return n
}

func hasHomoglyph(host string) bool {
	for _, r := range host {
		if _, ok := homoglyphs[r]; ok {
			return true
		}
	}
	return false
}

func distinctRunes(s string) int {
	seen := make(map[rune]struct{}, len(s))
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// shannonEntropy returns -Σ p·log2(p) over the character frequencies of s.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	var h float64
	for _, c := range freq {
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

func ratio(num, den int) float64 {
	return float64(num) / float64(max(1, den))
}

func (f *FeatureVector) checkFinite() error {
	v := reflect.ValueOf(f).Elem()
	for i := 0; i < v.NumField(); i++ {
		fv := v.Field(i)
		if fv.Kind() != reflect.Float64 {
			continue
		}
		if x := fv.Float(); math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s", ErrNonFinite, v.Type().Field(i).Name)
		}
	}
	return nil
}
