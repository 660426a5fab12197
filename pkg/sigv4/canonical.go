package sigv4

import (
	"net/url"
	"sort"
	"strings"
)

// Header is a single header name/value pair taking part in a signature
type Header struct {
	Name  string
	Value string
}

// CanonicalRequest describes the parts of an HTTP request covered by the signature.
// Query is the already canonical query string, see CanonicalQuery; the object
// client never sends one and leaves it empty.
type CanonicalRequest struct {
	Method      string
	Path        string
	Query       string
	Headers     []Header
	PayloadHash string
}

// canonicalHeaders lower-cases, merges and sorts the headers
func (c *CanonicalRequest) canonicalHeaders() []Header {
	index := make(map[string]int, len(c.Headers))
	headers := make([]Header, 0, len(c.Headers))
	for _, h := range c.Headers {
		name := strings.ToLower(strings.TrimSpace(h.Name))
		value := strings.TrimSpace(h.Value)
		if i, ok := index[name]; ok {
			headers[i].Value += "," + value
			continue
		}
		index[name] = len(headers)
		headers = append(headers, Header{Name: name, Value: value})
	}
	sort.SliceStable(headers, func(i, j int) bool {
		return headers[i].Name < headers[j].Name
	})
	return headers
}

// SignedHeaders returns the sorted, semicolon separated list of signed header names
func (c *CanonicalRequest) SignedHeaders() string {
	headers := c.canonicalHeaders()
	names := make([]string, 0, len(headers))
	for _, h := range headers {
		names = append(names, h.Name)
	}
	return strings.Join(names, ";")
}

// String renders the canonical request
func (c *CanonicalRequest) String() string {
	headers := c.canonicalHeaders()

	var block strings.Builder
	names := make([]string, 0, len(headers))
	for _, h := range headers {
		block.WriteString(h.Name)
		block.WriteByte(':')
		block.WriteString(h.Value)
		block.WriteByte('\n')
		names = append(names, h.Name)
	}

	path := c.Path
	if path == "" {
		path = "/"
	}

	return strings.Join([]string{
		strings.ToUpper(c.Method),
		path,
		c.Query,
		block.String(),
		strings.Join(names, ";"),
		c.PayloadHash,
	}, "\n")
}

var noEscape [256]bool

func init() {
	for i := 0; i < len(noEscape); i++ {
		// Everything outside the RFC 3986 unreserved set is escaped
		noEscape[i] = (i >= 'A' && i <= 'Z') ||
			(i >= 'a' && i <= 'z') ||
			(i >= '0' && i <= '9') ||
			i == '-' ||
			i == '.' ||
			i == '_' ||
			i == '~'
	}
}

// EscapePath URI-encodes a path the way S3 expects, keeping '/' separators
func EscapePath(path string) string {
	return escape(path, true)
}

// CanonicalQuery sorts the parameters by name then value and joins the
// escaped pairs with '&'.
func CanonicalQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	names := make([]string, 0, len(query))
	for name := range query {
		names = append(names, name)
	}
	sort.Strings(names)

	var pairs []string
	for _, name := range names {
		values := append([]string(nil), query[name]...)
		sort.Strings(values)
		for _, v := range values {
			pairs = append(pairs, escape(name, false)+"="+escape(v, false))
		}
	}
	return strings.Join(pairs, "&")
}

func escape(s string, keepSlash bool) string {
	const hexDigits = "0123456789ABCDEF"
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (keepSlash && c == '/') || noEscape[c] {
			buf.WriteByte(c)
			continue
		}
		buf.WriteByte('%')
		buf.WriteByte(hexDigits[c>>4])
		buf.WriteByte(hexDigits[c&0x0f])
	}
	return buf.String()
}
