// Package netguard flags URLs that point at the local machine or a private
// network, or that smuggle a script-capable scheme. The checks are purely
// lexical; nothing is resolved.
package netguard

import (
	"net/netip"
	"regexp"
	"strings"
)

// localHostPatterns match hostnames naming loopback or RFC1918 space.
var localHostPatterns = compile(
	`^localhost$`,
	`^127\.`,
	`^0\.0\.0\.0$`,
	`^\[?::1\]?$`,
	`^192\.168\.`,
	`^10\.`,
	`^172\.(1[6-9]|2[0-9]|3[01])\.`,
)

// unsafeSchemes match anywhere in the raw URL, so a dangerous scheme hidden
// in a query value is caught as well.
var unsafeSchemes = compile(
	`(?i)file:`,
	`(?i)javascript:`,
	`(?i)data:`,
	`(?i)vbscript:`,
)

// privatePrefixes cover the same ranges for canonical IP forms the
// patterns above miss, such as IPv4-mapped IPv6.
var privatePrefixes = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// IsLocalHost reports whether host names loopback or a private IPv4 range.
// Numeric IPv4 forms such as 2130706433 must already be in dotted-quad form.
func IsLocalHost(host string) bool {
	host = strings.ToLower(host)
	for _, p := range localHostPatterns {
		if p.MatchString(host) {
			return true
		}
	}
	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	if addr.IsUnspecified() {
		return true
	}
	for _, pfx := range privatePrefixes {
		if pfx.Contains(addr) {
			return true
		}
	}
	return false
}

// HasUnsafeScheme reports whether raw contains file:, javascript:, data:
// or vbscript: anywhere.
func HasUnsafeScheme(raw string) bool {
	for _, p := range unsafeSchemes {
		if p.MatchString(raw) {
			return true
		}
	}
	return false
}

// IsBlocked reports whether a URL with the given host and raw form must be
// refused before any scoring.
func IsBlocked(host, raw string) bool {
	return IsLocalHost(host) || HasUnsafeScheme(raw)
}
