package authgate

import (
	"net/http"
	"strings"
)

// DefaultIPAddressHeaders is the header precedence used to derive a client identity.
var DefaultIPAddressHeaders = []string{"cf-connecting-ip", "x-forwarded-for", "x-real-ip"}

// ClientIdentity returns the first non-empty header value among names, in order.
// A comma separated list (as in x-forwarded-for) yields its first entry.
// The result is empty when none of the headers is set.
func ClientIdentity(headers http.Header, names []string) string {
	for _, name := range names {
		raw := strings.TrimSpace(headers.Get(name))
		if raw == "" {
			continue
		}
		if i := strings.IndexByte(raw, ','); i >= 0 {
			raw = strings.TrimSpace(raw[:i])
		}
		if raw != "" {
			return raw
		}
	}
	return ""
}
