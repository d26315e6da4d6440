package sierra

import (
	"encoding/json"
	"strings"
)

// Header is an ordered multimap of response header fields.
//
// Names keep the case they were parsed with. A name seen once holds a single
// value; repeated names accumulate their values in arrival order.
type Header struct {
	names  []string
	values map[string][]string
}

// ParseHeader parses a raw header block (lines separated by CRLF).
//
// Lines without a colon, such as the status line, are skipped. Each field is
// split at its first colon and the value is trimmed.
func ParseHeader(raw string) Header {
	var h Header
	for _, line := range strings.Split(raw, "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h
}

// Add appends value under name.
func (h *Header) Add(name, value string) {
	if h.values == nil {
		h.values = make(map[string][]string)
	}
	if _, ok := h.values[name]; !ok {
		h.names = append(h.names, name)
	}
	h.values[name] = append(h.values[name], value)
}

// Get returns the first value for name, or "" when absent.
func (h Header) Get(name string) string {
	if vs := h.values[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Values returns every value recorded for name in arrival order.
func (h Header) Values(name string) []string {
	return h.values[name]
}

// IsMulti reports whether name was repeated.
func (h Header) IsMulti(name string) bool {
	return len(h.values[name]) > 1
}

// Names returns the field names in first-seen order.
func (h Header) Names() []string {
	return h.names
}

// Len returns the number of distinct names.
func (h Header) Len() int {
	return len(h.names)
}

// MarshalJSON renders single fields as strings and repeated ones as arrays.
func (h Header) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range h.names {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		var val []byte
		if h.IsMulti(name) {
			val, err = json.Marshal(h.values[name])
		} else {
			val, err = json.Marshal(h.values[name][0])
		}
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
