package platform

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Verifier authenticates messages signed by the platform with the shared API
// secret. Webhook signatures are base64 over the raw request body; callback
// signatures are hex over the canonical query string.
type Verifier struct {
	secret string
}

// NewVerifier creates a verifier for the given shared secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// VerifyWebhook checks the base64 HMAC-SHA256 header against the raw body
// bytes exactly as received. Re-serialized JSON must never be passed here:
// whitespace or key-order differences would invalidate the signature.
func (v *Verifier) VerifyWebhook(rawBody []byte, signature string) bool {
	if v.secret == "" || signature == "" {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), expected)
}

// VerifyCallback checks the hex HMAC-SHA256 over the authorization callback's
// query parameters. The message is every parameter except the signature
// itself, sorted by key, in k=v form joined by "&".
func (v *Verifier) VerifyCallback(query url.Values) bool {
	signature := query.Get("hmac")
	if v.secret == "" || signature == "" {
		return false
	}
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(canonicalQuery(query)))
	return hmac.Equal(mac.Sum(nil), expected)
}

// canonicalQuery builds the provider's canonical query-string form: all
// parameters except hmac and the legacy signature field, sorted by key.
func canonicalQuery(query url.Values) string {
	pairs := make([]string, 0, len(query))
	for key, values := range query {
		if key == "hmac" || key == "signature" {
			continue
		}
		for _, value := range values {
			pairs = append(pairs, key+"="+value)
		}
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}
