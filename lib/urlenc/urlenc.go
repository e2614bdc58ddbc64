// Package urlenc encodes text for embedding in URL fragments.
package urlenc

import (
	"encoding/base64"
	"strings"

	"oss.terrastruct.com/xdefer"
)

// Encode returns the standard base64 encoding of the UTF-8 bytes of raw.
func Encode(raw string) string {
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// Decode reverses Encode. Padding may be missing and URL-safe characters
// are accepted, since both survive being pasted through chat clients.
func Decode(encoded string) (_ string, err error) {
	defer xdefer.Errorf(&err, "failed to decode fragment")

	encoded = strings.TrimSpace(encoded)
	encoded = strings.NewReplacer("-", "+", "_", "/").Replace(encoded)
	encoded = strings.TrimRight(encoded, "=")
	b, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
