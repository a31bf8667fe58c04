package values

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// URI is the runtime shape produced by PARSE_URL. RETURN_ENDPOINT's URL
// operand is a string, not a URI. It exposes exactly the fixed field set the spec names:
// scheme, path, normalizedPath, authority, isIp. It is never stored as a
// bytecode constant; it only exists as an operand-stack/result value.
type URI struct {
	Scheme         string
	Path           string
	NormalizedPath string
	Authority      string
	IsIP           bool
}

var _ Value = (*URI)(nil)

func (u *URI) String() string { return fmt.Sprintf("%s://%s%s", u.Scheme, u.Authority, u.Path) }
func (*URI) Type() string     { return "uri" }

// Attr implements GET_PROPERTY/GET_PROPERTY_REG's fixed URI field set. An
// unknown name reports NoSuchAttrError, mirroring the convention used for
// map/list path-access misses in GetPath.
func (u *URI) Attr(name string) (Value, error) {
	switch name {
	case "scheme":
		return String(u.Scheme), nil
	case "path":
		return String(u.Path), nil
	case "normalizedPath":
		return String(u.NormalizedPath), nil
	case "authority":
		return String(u.Authority), nil
	case "isIp":
		return Bool(u.IsIP), nil
	default:
		return nil, NoSuchAttrError(fmt.Sprintf("uri has no field %q", name))
	}
}

// ParseURL implements the PARSE_URL opcode: it returns (nil, false) when s
// does not parse as a URL or when it carries a query component (the spec
// requires rejecting any URL with a query string), and (*URI, true)
// otherwise.
func ParseURL(s string) (*URI, bool) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	if u.RawQuery != "" {
		return nil, false
	}

	path := u.Path
	normalized := path
	if normalized == "" {
		normalized = "/"
	}
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}

	return &URI{
		Scheme:         u.Scheme,
		Path:           path,
		NormalizedPath: normalized,
		Authority:      u.Host,
		IsIP:           net.ParseIP(u.Hostname()) != nil,
	}, true
}

// IsValidHostLabel reports whether s is a valid DNS host label (a single
// dot-separated segment of a hostname) as required by the
// isValidHostLabel(s, allowDots) standard function: 1 to 63 characters,
// alphanumerics and hyphens only, never starting or ending with a hyphen.
// When allowDots is true, s may instead be a sequence of such labels joined
// by dots (a full hostname).
func IsValidHostLabel(s string, allowDots bool) bool {
	if s == "" {
		return false
	}
	labels := []string{s}
	if allowDots {
		labels = strings.Split(s, ".")
	}
	for _, label := range labels {
		if !isValidLabel(label) {
			return false
		}
	}
	return true
}

func isValidLabel(label string) bool {
	if len(label) == 0 || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}

// URIEncode percent-encodes s with url.QueryEscape's query-component rules
// (so "/" becomes "%2F" and a space becomes "+"), for the uriEncode(s)
// standard function.
func URIEncode(s string) string {
	return url.QueryEscape(s)
}
