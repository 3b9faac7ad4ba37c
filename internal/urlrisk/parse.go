package urlrisk

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// ErrInvalidURL is returned by Parse when the input is not an absolute URL.
var ErrInvalidURL = errors.New("invalid URL format")

// ParsedURL is the structural split of one raw URL. Protocol is lowercase
// without the trailing colon. Query and Fragment keep their leading "?" and
// "#" when present, and Path is "/" for hierarchical URLs with no path.
type ParsedURL struct {
	Raw      string
	Protocol string
	Hostname string
	Port     string
	Path     string
	Query    string
	Fragment string

	// UnicodeHostname is Hostname with punycode labels decoded.
	UnicodeHostname string
	// RegistrableDomain is the eTLD+1 of Hostname, empty for IP literals
	// and single-label hosts.
	RegistrableDomain string

	params url.Values
}

// Parse splits raw into its URL components. Surrounding whitespace is
// ignored. Inputs without a scheme, and http(s) URLs without a host, are
// rejected with ErrInvalidURL.
func Parse(raw string) (*ParsedURL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	if u.Scheme == "" {
		return nil, ErrInvalidURL
	}

	p := &ParsedURL{
		Raw:      raw,
		Protocol: u.Scheme,
		Hostname: strings.TrimSuffix(strings.ToLower(u.Hostname()), "."),
		Port:     u.Port(),
	}
	if addr, ok, err := canonicalIPv4(p.Hostname); err != nil {
		return nil, err
	} else if ok {
		p.Hostname = addr
	}

	if (p.Protocol == "http" || p.Protocol == "https") && p.Hostname == "" {
		return nil, ErrInvalidURL
	}
	if u.Opaque != "" {
		// mailto:, javascript: and friends carry no authority or path.
		p.Path = u.Opaque
		return p, nil
	}

	p.Path = u.EscapedPath()
	if p.Path == "" {
		p.Path = "/"
	}
	if u.RawQuery != "" {
		p.Query = "?" + u.RawQuery
	}
	if u.Fragment != "" {
		p.Fragment = "#" + u.EscapedFragment()
	}
	p.params = u.Query()

	p.UnicodeHostname = p.Hostname
	if uh, err := idna.ToUnicode(p.Hostname); err == nil {
		p.UnicodeHostname = uh
	}
	if _, err := netip.ParseAddr(p.Hostname); err != nil {
		if d, err := publicsuffix.EffectiveTLDPlusOne(p.Hostname); err == nil {
			p.RegistrableDomain = d
		}
	}

	return p, nil
}

// canonicalIPv4 rewrites the numeric IPv4 host forms browsers accept
// (2130706433, 0x7f.1, 0177.0.0.1) to dotted-quad. ok is false when host does
// not end in a number. A host that ends in a number but is not a valid
// address is an ErrInvalidURL.
func canonicalIPv4(host string) (addr string, ok bool, err error) {
	parts := strings.Split(host, ".")
	if !isIPv4Number(parts[len(parts)-1]) {
		return "", false, nil
	}
	if len(parts) > 4 {
		return "", false, ErrInvalidURL
	}

	nums := make([]uint64, len(parts))
	for i, part := range parts {
		n, err := parseIPv4Part(part)
		if err != nil {
			return "", false, errors.Join(ErrInvalidURL, err)
		}
		nums[i] = n
	}

	last := len(nums) - 1
	var v uint64
	for i, n := range nums[:last] {
		if n > 255 {
			return "", false, ErrInvalidURL
		}
		v |= n << (8 * (3 - i))
	}
	if nums[last] >= 1<<(8*(4-last)) {
		return "", false, ErrInvalidURL
	}
	v |= nums[last]

	return fmt.Sprintf("%d.%d.%d.%d", byte(v>>24), byte(v>>16), byte(v>>8), byte(v)), true, nil
}

func isIPv4Number(s string) bool {
	if s == "" {
		return false
	}
	digits := "0123456789"
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
		digits = "0123456789abcdefABCDEF"
	}
	for _, r := range s {
		if !strings.ContainsRune(digits, r) {
			return false
		}
	}
	return true
}

func parseIPv4Part(s string) (uint64, error) {
	switch {
	case s == "":
		return 0, ErrInvalidURL
	case len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X'):
		if len(s) == 2 {
			return 0, nil
		}
		return strconv.ParseUint(s[2:], 16, 64)
	case len(s) >= 2 && s[0] == '0':
		return strconv.ParseUint(s[1:], 8, 64)
	default:
		return strconv.ParseUint(s, 10, 64)
	}
}

// Params returns the decoded query parameters.
func (p *ParsedURL) Params() url.Values {
	return p.params
}
