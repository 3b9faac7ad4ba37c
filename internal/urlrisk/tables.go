package urlrisk

import "regexp"

// Calibration data. Changing any entry changes observable verdicts.

var ipv4Host = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// shorteners are matched against the hostname on label boundaries.
var shorteners = []string{
	"bit.ly", "bitly.com", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd",
	"buff.ly", "adf.ly", "cutt.ly", "rebrand.ly", "shorturl.at", "tiny.cc",
	"rb.gy", "s.id", "v.gd", "t.ly", "bl.ink", "lnkd.in", "shorte.st",
}

var financialKeywords = []string{
	"bank", "banking", "account", "billing", "payment", "invoice", "credit",
	"debit", "card", "wallet", "refund", "transfer", "loan", "tax",
	"bitcoin", "crypto",
}

var brandKeywords = []string{
	"paypal", "apple", "google", "microsoft", "amazon", "facebook", "netflix",
	"instagram", "whatsapp", "linkedin", "twitter", "chase", "wellsfargo",
	"bankofamerica", "dropbox", "adobe", "ebay", "outlook", "office365",
	"icloud", "yahoo", "coinbase", "binance", "steam",
}

var urgencyKeywords = []string{
	"urgent", "immediately", "suspended", "suspend", "expire", "expired",
	"limited", "verify", "alert", "warning", "locked", "unlock", "confirm",
	"deadline", "final-notice",
}

var deceptionKeywords = []string{
	"login", "signin", "sign-in", "logon", "secure", "security", "update",
	"webscr", "password", "credential", "free", "bonus", "winner", "prize",
	"gift", "claim", "reward",
}

// popularBrands feed the brand-similarity flag on the main domain label.
var popularBrands = []string{
	"paypal", "apple", "google", "microsoft", "amazon", "facebook", "netflix",
	"instagram", "whatsapp", "linkedin", "twitter", "dropbox", "adobe",
	"ebay", "yahoo", "icloud", "outlook", "coinbase", "binance",
}

var suspiciousParams = map[string]struct{}{
	"redirect": {}, "url": {}, "link": {}, "goto": {},
}

var suspiciousTLDs = map[string]struct{}{
	"tk": {}, "ml": {}, "ga": {}, "cf": {}, "gq": {}, "xyz": {}, "top": {},
	"club": {}, "work": {}, "click": {}, "link": {}, "loan": {}, "win": {},
	"bid": {}, "racing": {}, "date": {}, "review": {}, "stream": {},
	"download": {}, "country": {}, "kim": {}, "men": {}, "party": {},
	"zip": {}, "mov": {}, "icu": {}, "buzz": {}, "rest": {}, "cam": {},
	"ly": {},
}

var legitimateTLDs = map[string]struct{}{
	"com": {}, "org": {}, "net": {}, "edu": {}, "gov": {}, "mil": {}, "int": {},
	"io": {}, "co": {}, "uk": {}, "de": {}, "fr": {}, "jp": {}, "ca": {},
	"au": {}, "us": {}, "eu": {}, "nl": {}, "ch": {}, "se": {},
}

// homoglyphs are non-Latin characters rendered like Latin letters.
var homoglyphs = map[rune]struct{}{
	'а': {}, 'е': {}, 'о': {}, 'р': {}, 'с': {}, 'у': {}, 'х': {}, // Cyrillic
	'і': {}, 'ј': {}, 'ѕ': {}, 'ԁ': {}, 'ӏ': {}, 'һ': {}, 'ԛ': {},
	'α': {}, 'ο': {}, 'ν': {}, 'ρ': {}, 'ι': {}, 'κ': {}, 'τ': {}, // Greek
	'ɑ': {}, 'ɡ': {}, 'ı': {}, 'ʟ': {}, // Latin extensions
}

const vowels = "aeiou"
