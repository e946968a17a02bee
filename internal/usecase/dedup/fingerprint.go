// Package dedup implements the two-stage deduplication engine.
// Stage A removes near-duplicates within one batch by normalized URL
// match or title similarity; Stage B drops items whose fingerprint
// matches a non-expired record in the persisted history store.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"unicode"
)

// trackingParams are query parameters stripped during URL normalization.
// The same article shared through different campaigns must normalize to
// one URL.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"gclid":        true,
	"fbclid":       true,
	"ref":          true,
	"source":       true,
}

// NormalizeURL reduces a URL to scheme, host, and path with tracking
// parameters stripped. The result is deterministic for any input; an
// unparseable URL falls back to the trimmed raw string.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}

	q := u.Query()
	for param := range q {
		if trackingParams[strings.ToLower(param)] {
			q.Del(param)
		}
	}

	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")

	path := strings.TrimSuffix(u.Path, "/")

	normalized := strings.ToLower(u.Scheme) + "://" + host + path
	if encoded := q.Encode(); encoded != "" {
		normalized += "?" + encoded
	}
	return normalized
}

// NormalizeTitle lowercases a title, collapses whitespace, and removes
// punctuation so cosmetic differences do not defeat similarity matching.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	prevSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r):
			if !prevSpace && b.Len() > 0 {
				b.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// ContentFingerprint derives the stable fingerprint used for historical
// lookup: a hash over the normalized title and the source name. The same
// story refetched from the same source in a later run produces the same
// fingerprint.
func ContentFingerprint(title, sourceName string) string {
	h := sha256.Sum256([]byte(NormalizeTitle(title) + "\n" + sourceName))
	return hex.EncodeToString(h[:])
}

// URLFingerprint derives the stable fingerprint of a normalized URL.
func URLFingerprint(rawURL string) string {
	h := sha256.Sum256([]byte(NormalizeURL(rawURL)))
	return hex.EncodeToString(h[:])
}
