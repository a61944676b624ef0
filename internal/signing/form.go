package signing

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseOrderedForm decodes a raw form-urlencoded body into an ordered
// Params slice. url.ParseQuery cannot be used here: it returns a map and
// destroys field order, which the signature depends on.
func ParseOrderedForm(body string) (Params, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("empty body")
	}

	params := make(Params, 0, 16)
	for _, segment := range strings.Split(body, "&") {
		if segment == "" {
			continue
		}
		key, rawValue, found := strings.Cut(segment, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("malformed segment %q", segment)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("malformed value for %q: %w", key, err)
		}
		params.Set(key, value)
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("no fields in body")
	}
	return params, nil
}
