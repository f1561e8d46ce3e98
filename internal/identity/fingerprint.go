package identity

import (
	"encoding/hex"
	"net/netip"
	"strconv"
	"strings"

	"github.com/mssola/useragent"
	"golang.org/x/crypto/blake2b"
)

const fingerprintVersion = "v1"

// Fingerprint returns a 64-character hex digest of the client visitor id,
// the per-device key duplicate detection runs on. Requests without one fail
// with ErrNoFingerprintSignal.
func Fingerprint(sig Signals) (string, error) {
	v := strings.ToLower(strings.TrimSpace(sig.VisitorID))
	if v == "" {
		return "", ErrNoFingerprintSignal
	}
	return digest(fingerprintVersion, "visitor", v), nil
}

// AgentSignature digests browser name and major version, OS, platform, the
// mobile flag and the primary Accept-Language tag. Many devices share it, so
// it is recorded alongside a vote and never used for matching. Empty when
// no user agent was sent.
func AgentSignature(sig Signals) string {
	if strings.TrimSpace(sig.UserAgent) == "" {
		return ""
	}
	ua := useragent.New(sig.UserAgent)
	name, version := ua.Browser()
	major, _, _ := strings.Cut(version, ".")
	return digest(fingerprintVersion, "agent",
		strings.ToLower(name),
		major,
		strings.ToLower(ua.OS()),
		strings.ToLower(ua.Platform()),
		strconv.FormatBool(ua.Mobile()),
		primaryLanguage(sig.AcceptLanguage),
	)
}

func digest(parts ...string) string {
	sum := blake2b.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// primaryLanguage returns the first Accept-Language tag, lowercased, without weight.
func primaryLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	return strings.ToLower(strings.TrimSpace(tag))
}

func parseAddr(raw string) (string, bool) {
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap.Addr().Unmap().String(), true
	}
	addr, err := netip.ParseAddr(strings.Trim(raw, "[]"))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}
