package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DomainTrace is the domain prefix for trace digests.
// The version suffix enables future algorithm migration.
const DomainTrace = "chainstat/trace/v1"

// NormalizeName returns the canonical key for a parameter name: surrounding
// whitespace trimmed and NFC-normalized.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Canonical returns the canonical JSON object for a named trace.
func Canonical(name string, t Trace) map[string]any {
	return map[string]any{
		"name":  NormalizeName(name),
		"shape": t.Shape(),
		"data":  t.Values(),
	}
}

// Digest computes the content-addressed digest of a named trace.
// Format: hex(SHA256(domain + 0x00 + canonical JSON)).
func Digest(name string, t Trace) (string, error) {
	canonical, err := MarshalCanonical(Canonical(name, t))
	if err != nil {
		return "", fmt.Errorf("digest %q: %w", name, err)
	}
	h := sha256.New()
	h.Write([]byte(DomainTrace))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
