package urlrisk

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const randomSubdomainURL = "https://k3j9x7q2w8e5r1t6y4u0i9o2p7a3s5d.m4n8b2v6c1x9z3l7k5j0h2g4f8d6s1a." +
	"q9w3e7r1t5y2u8i4o6p0a3s7d1f.z5x9c3v7b1n4m8l2k6j0h3g5f9d.p2o6i0u4y8t1r5e9w3q7a2s6d0f.example.com/"

func TestAssess_SafeURL(t *testing.T) {
	v := Assess("https://example.com")
	if !v.Safe {
		t.Fatalf("expected safe, got %+v", v)
	}
	if v.RiskScore != 0 {
		t.Errorf("expected risk score 0, got %d", v.RiskScore)
	}
	if v.Confidence < 85 {
		t.Errorf("expected confidence >= 85, got %d", v.Confidence)
	}
	if v.Tier != TierSafe {
		t.Errorf("expected tier Safe, got %s", v.Tier)
	}
	if v.RegistrableDomain != "example.com" {
		t.Errorf("expected registrable domain example.com, got %q", v.RegistrableDomain)
	}
}

func TestAssess_PrivateAddress(t *testing.T) {
	v := Assess("http://192.168.1.1/login")
	if v.Safe {
		t.Fatal("expected unsafe verdict")
	}
	if v.Confidence != 95 {
		t.Errorf("expected confidence 95, got %d", v.Confidence)
	}
	if !strings.Contains(v.Reason, "Local or potentially unsafe") {
		t.Errorf("unexpected reason %q", v.Reason)
	}
}

func TestAssess_EmptyString(t *testing.T) {
	v := Assess("")
	if v.Safe || v.Reason != ReasonInvalidURL || v.Confidence != 90 {
		t.Errorf("unexpected verdict for empty input: %+v", v)
	}
	if v.Tier != TierHigh {
		t.Errorf("expected tier High, got %s", v.Tier)
	}
}

func TestAssess_NonHTTPProtocol(t *testing.T) {
	for _, raw := range []string{"ftp://example.com", "javascript:alert(1)", "mailto:someone@example.com"} {
		v := Assess(raw)
		if v.Safe || v.Confidence != 100 || v.Reason != ReasonProtocol {
			t.Errorf("Assess(%q) = %+v, want protocol rejection", raw, v)
		}
	}
}

func TestAssess_Shortener(t *testing.T) {
	raw := "http://bit.ly/xyz123"

	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f, err := Extract(p)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !f.IsShortener {
		t.Error("expected shortener flag")
	}
	if f.UsesHTTPS {
		t.Error("expected HTTPS to be absent")
	}
	if got := ScorePattern(f).Value; got < 25 {
		t.Errorf("expected pattern score >= 25, got %v", got)
	}

	v := Assess(raw)
	if v.Tier != TierMedium && v.Tier != TierHigh {
		t.Fatalf("expected Medium or High, got %s (%+v)", v.Tier, v)
	}
	if !strings.Contains(v.Reason, "shortening service") {
		t.Errorf("reason should mention the shortener: %q", v.Reason)
	}
}

func TestAssess_RandomSubdomains(t *testing.T) {
	p, err := Parse(randomSubdomainURL)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f, err := Extract(p)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if f.HostnameEntropy <= 3.8 {
		t.Fatalf("expected hostname entropy > 3.8, got %v", f.HostnameEntropy)
	}
	if f.SubdomainCount != 5 {
		t.Fatalf("expected 5 subdomains, got %d", f.SubdomainCount)
	}
	if s := ScoreStructural(f); s.Value < 25 {
		t.Errorf("structural score too low: %+v", s)
	}
	if s := ScorePattern(f); s.Value < 15 {
		t.Errorf("pattern score too low: %+v", s)
	}

	v := Assess(randomSubdomainURL)
	if v.Tier != TierHigh {
		t.Errorf("expected High, got %s (%+v)", v.Tier, v)
	}
	if !strings.HasPrefix(v.Reason, "High risk detected: ") {
		t.Errorf("unexpected reason %q", v.Reason)
	}
}

func TestAssess_Phishing(t *testing.T) {
	v := Assess("http://paypal-secure-login.tk/account/verify?redirect=x")
	if v.Safe || v.Tier != TierHigh {
		t.Fatalf("expected High, got %+v", v)
	}
	if v.RiskScore != 59 {
		t.Errorf("expected risk score 59, got %d", v.RiskScore)
	}
	want := []string{
		"High URL randomness",
		"Random-looking hostname",
		"Suspicious top-level domain",
		"Brand impersonation without HTTPS",
		"Many phishing-related keywords",
		"Financial terms without HTTPS",
		"Redirect-style query parameter",
	}
	if diff := cmp.Diff(want, v.Reasons); diff != "" {
		t.Errorf("reasons mismatch (-want +got):\n%s", diff)
	}
	if strings.Count(v.Reason, ",") != 2 {
		t.Errorf("High verdict should show three reasons: %q", v.Reason)
	}
}

func TestAssess_LowTier(t *testing.T) {
	v := Assess("https://tinyurl.com/abc")
	if v.Tier != TierLow {
		t.Fatalf("expected Low, got %+v", v)
	}
	if v.Safe {
		t.Error("Low tier must not be safe")
	}
	if v.Reason != "Low risk detected: Uses a URL shortening service" {
		t.Errorf("unexpected reason %q", v.Reason)
	}
	if v.Confidence != 70 {
		t.Errorf("expected confidence 70, got %d", v.Confidence)
	}
}

func TestAssess_Deterministic(t *testing.T) {
	inputs := []string{
		"",
		"https://example.com",
		"http://bit.ly/xyz123",
		randomSubdomainURL,
		"http://paypal-secure-login.tk/account/verify?redirect=x&a=1&b=2",
		"https://xn--pple-43d.com/login",
	}
	for _, in := range inputs {
		if diff := cmp.Diff(Assess(in), Assess(in)); diff != "" {
			t.Errorf("Assess(%q) not deterministic:\n%s", in, diff)
		}
	}
}

func TestAssess_PrefilterPrecedence(t *testing.T) {
	inputs := []string{
		"http://localhost:8080/",
		"http://127.0.0.1/admin",
		"https://10.0.0.5/paypal-login-verify-account",
		"http://172.20.1.1/",
		"https://[::1]/",
		"https://example.com/?next=javascript:alert(1)",
		"https://paypal-secure.tk/redirect?url=data:text/html;base64,AAAA",
		"https://example.com/?x=VBScript:msgbox",
		"http://2130706433/",
		"http://0x7f000001/",
		"http://0x7f.0.0.1/admin",
		"http://0177.0.0.1/",
		"http://3232235777/",
		"http://127.1/",
		"http://0/",
		"http://localhost./",
	}
	for _, in := range inputs {
		v := Assess(in)
		if v.Safe || v.Confidence != 95 || v.Reason != ReasonLocal {
			t.Errorf("Assess(%q) = %+v, want local/unsafe rejection", in, v)
		}
		if len(v.SubScores) != 0 {
			t.Errorf("Assess(%q) should skip scoring", in)
		}
	}
}

func TestAssess_BoundedOutputs(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"example.com",
		"://",
		"http://",
		"https://a",
		"https://" + strings.Repeat("a1-", 2000) + ".tk/" + strings.Repeat("x/", 500) + "?" + strings.Repeat("p=v&", 300),
		"https://" + strings.Repeat("ab.", 40) + "xyz",
		"https://пример.рф/путь",
		"http://%zz",
		"https://exa mple.com",
	}
	for _, in := range inputs {
		v := Assess(in)
		if v.RiskScore < 0 || v.RiskScore > 100 {
			t.Errorf("Assess(%.40q) risk score out of range: %d", in, v.RiskScore)
		}
		if v.Confidence < 70 || v.Confidence > 100 {
			t.Errorf("Assess(%.40q) confidence out of range: %d", in, v.Confidence)
		}
		if v.Reason == "" {
			t.Errorf("Assess(%.40q) has no reason", in)
		}
	}
}

func TestClassify_Thresholds(t *testing.T) {
	tests := []struct {
		name      string
		ensemble  Ensemble
		wantTier  Tier
		wantSafe  bool
		wantConf  int
		wantShown int
	}{
		{"high", Ensemble{Score: 35, Confidence: 80}, TierHigh, false, 80, 3},
		{"medium", Ensemble{Score: 20, Confidence: 72}, TierMedium, false, 75, 2},
		{"medium keeps higher confidence", Ensemble{Score: 34.9, Confidence: 90}, TierMedium, false, 85, 2},
		{"low", Ensemble{Score: 10, Confidence: 74}, TierLow, false, 70, 1},
		{"low keeps higher confidence", Ensemble{Score: 19.9, Confidence: 88}, TierLow, false, 78, 1},
		{"safe", Ensemble{Score: 9.9, Confidence: 70}, TierSafe, true, 90, 0},
		{"safe floor", Ensemble{Score: 0, Confidence: 70}, TierSafe, true, 100, 0},
	}
	reasons := []string{"a", "b", "c", "d"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.ensemble.Structural = SubScore{Name: "structural", Reasons: reasons}
			v := Classify(tt.ensemble)
			if v.Tier != tt.wantTier || v.Safe != tt.wantSafe || v.Confidence != tt.wantConf {
				t.Fatalf("got tier=%s safe=%v conf=%d", v.Tier, v.Safe, v.Confidence)
			}
			if tt.wantShown == 0 {
				if v.Reason != ReasonSafe {
					t.Errorf("unexpected safe reason %q", v.Reason)
				}
				return
			}
			shown := strings.Count(strings.SplitN(v.Reason, ": ", 2)[1], ",") + 1
			if shown != tt.wantShown {
				t.Errorf("expected %d reasons shown, got %d (%q)", tt.wantShown, shown, v.Reason)
			}
			if len(v.Reasons) != len(reasons) {
				t.Errorf("full reason list should be kept, got %v", v.Reasons)
			}
		})
	}
}

func TestClassify_RoundsRiskScore(t *testing.T) {
	v := Classify(Ensemble{Score: 22.5, Confidence: 70})
	if v.RiskScore != 23 {
		t.Errorf("expected 23, got %d", v.RiskScore)
	}
	if v.Reason != "Medium risk detected" {
		t.Errorf("reason without tags should be the bare prefix, got %q", v.Reason)
	}
}

func TestAssess_Detail(t *testing.T) {
	v := Assess("http://bit.ly/xyz123")
	if len(v.SubScores) != 3 {
		t.Fatalf("expected three sub-scores, got %d", len(v.SubScores))
	}
	names := []string{v.SubScores[0].Name, v.SubScores[1].Name, v.SubScores[2].Name}
	if diff := cmp.Diff([]string{"structural", "pattern", "keyword"}, names); diff != "" {
		t.Errorf("sub-score order (-want +got):\n%s", diff)
	}
	if v.SubScores[1].Value < 25 {
		t.Errorf("pattern sub-score = %v, want >= 25", v.SubScores[1].Value)
	}
	if got := int(math.Round(v.Score)); got != v.RiskScore {
		t.Errorf("risk score %d does not match rounded score %v", v.RiskScore, v.Score)
	}
	if v.RegistrableDomain != "bit.ly" {
		t.Errorf("registrable domain = %q", v.RegistrableDomain)
	}

	if blockedV := Assess("ftp://example.com"); blockedV.SubScores != nil || blockedV.Score != 0 {
		t.Errorf("short-circuit verdict should carry no detail: %+v", blockedV)
	}
}
