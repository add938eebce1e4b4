package search

import (
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// Query is a parsed query string that remembers the order in which the
// caller supplied each key.
type Query struct {
	keys   []string
	values url.Values
}

// ParseQuery parses raw, keeping first-occurrence key order. Malformed
// escapes are kept verbatim so they surface as validation failures rather
// than parse errors.
func ParseQuery(raw string) Query {
	q := Query{values: url.Values{}}
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		if uk, err := url.QueryUnescape(k); err == nil {
			k = uk
		}
		if uv, err := url.QueryUnescape(v); err == nil {
			v = uv
		}
		if _, seen := q.values[k]; !seen {
			q.keys = append(q.keys, k)
		}
		q.values.Add(k, v)
	}
	return q
}

// Get returns the first value of key.
func (q Query) Get(key string) string {
	return q.values.Get(key)
}

// Has reports whether the caller supplied key.
func (q Query) Has(key string) bool {
	_, ok := q.values[key]
	return ok
}

// Keys returns the keys in caller order.
func (q Query) Keys() []string {
	return append([]string(nil), q.keys...)
}

// orderFields sorts fields into the order the caller supplied them. Fields
// the caller did not supply keep their relative order at the end.
func (q Query) orderFields(fields map[string]bool) []string {
	ordered := make([]string, 0, len(fields))
	for _, k := range q.keys {
		if fields[k] {
			ordered = append(ordered, k)
			delete(fields, k)
		}
	}
	for _, k := range sortedKeys(fields) {
		ordered = append(ordered, k)
	}
	return ordered
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// bind copies query values into the string fields of dst tagged `query`.
func bind(q Query, dst any) {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("query")
		if name == "" || t.Field(i).Type.Kind() != reflect.String {
			continue
		}
		v.Field(i).SetString(q.Get(name))
	}
}

// filters returns the non-empty tagged fields of src as backend query
// values. page and display_size are left to the caller.
func filters(src any) url.Values {
	out := url.Values{}
	v := reflect.ValueOf(src)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("query")
		if name == "" || name == "page" || name == "display_size" {
			continue
		}
		if s := v.Field(i).String(); s != "" {
			out.Set(name, s)
		}
	}
	return out
}
