// Package signing implements the gateway's keyed-digest integrity check.
// The same function signs outbound redirect parameters and verifies inbound
// notify webhooks, so generation and verification can never drift apart.
//
// The protocol concatenates fields in caller-chosen order (NOT sorted) and
// hashes with MD5. MD5 is what the gateway speaks; it is kept for wire
// compatibility, not as a modern signature scheme.
package signing

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Param is a single field in signing order.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered field sequence. Insertion order is significant: the
// gateway replays the same template back in its callback, so reordering
// before signing produces a different digest.
type Params []Param

// Set appends a pair, preserving order.
func (p *Params) Set(key, value string) {
	*p = append(*p, Param{Key: key, Value: value})
}

// Get returns the first value for key, or "".
func (p Params) Get(key string) string {
	for _, param := range p {
		if param.Key == key {
			return param.Value
		}
	}
	return ""
}

// Without returns a copy with every pair for key removed, order preserved.
func (p Params) Without(key string) Params {
	out := make(Params, 0, len(p))
	for _, param := range p {
		if param.Key != key {
			out = append(out, param)
		}
	}
	return out
}

// Signature carries the digest plus the intermediate strings for logging.
type Signature struct {
	Digest      string // lowercase hex MD5
	ParamString string // key=encoded&... without the passphrase segment
	BaseString  string // the exact byte string that was hashed
}

// Sign builds the parameter string from params in order, dropping
// empty values after trimming, and computes the keyed digest.
//
// Values are form-encoded: percent-encoding with space as "+". The
// passphrase segment is appended only when a passphrase is configured; with
// no passphrase the base string has no "passphrase=" clause at all, which
// matches the gateway's own behavior.
func Sign(params Params, passphrase string) Signature {
	var b strings.Builder
	for _, param := range params {
		value := strings.TrimSpace(param.Value)
		if value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(param.Key)
		b.WriteByte('=')
		b.WriteString(encode(value))
	}
	paramString := b.String()

	baseString := paramString
	if pp := strings.TrimSpace(passphrase); pp != "" {
		baseString = fmt.Sprintf("%s&passphrase=%s", paramString, encode(pp))
	}

	sum := md5.Sum([]byte(baseString))
	return Signature{
		Digest:      hex.EncodeToString(sum[:]),
		ParamString: paramString,
		BaseString:  baseString,
	}
}

// Verify recomputes the signature over params and compares it byte-for-byte
// with the received digest.
func Verify(params Params, passphrase, received string) bool {
	return Sign(params, passphrase).Digest == received
}

// encode applies the form-encoding convention: space becomes "+", the rest
// is percent-encoded. url.QueryEscape implements exactly this.
func encode(value string) string {
	return url.QueryEscape(value)
}
