// package headers implements an ordered, case-insensitive, multi-value
// header map. Entries are kept as a flat name/value list so the original
// insertion order and the original case of each name survive a round trip.
package headers

import (
	"fmt"
	"iter"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/net/http/httpguts"
	"golang.org/x/net/http2/hpack"

	"github.com/frankli0324/go-http-message/internal/errs"
)

// Headers is safe for concurrent use. A zero Headers is an empty map.
type Headers struct {
	mu    sync.RWMutex
	list  []string            // name, value, name, value, ...
	names map[string]struct{} // lower-cased names present in list
}

// normalize returns the lookup key for name. The historical "Referrer"
// spelling is folded into the wire spelling.
func normalize(name string) string {
	key := strings.ToLower(name)
	if key == "referrer" {
		return "referer"
	}
	return key
}

func canonicalName(name string) string {
	if strings.EqualFold(name, "referrer") {
		return "Referer"
	}
	return name
}

// FromPairs creates headers from a flat name, value, name, value list.
func FromPairs(raw ...string) (*Headers, error) {
	if len(raw)%2 == 1 {
		return nil, errs.ErrMalformedHeaderList.Wrap(
			fmt.Errorf("expected headers length to be even, got %d", len(raw)))
	}
	h := &Headers{
		list:  make([]string, 0, len(raw)),
		names: make(map[string]struct{}, len(raw)/2),
	}
	for i := 0; i < len(raw); i += 2 {
		h.Append(raw[i], raw[i+1])
	}
	return h, nil
}

// New creates headers from init, see [Headers.Extend] for accepted types.
// A nil init creates an empty map.
func New(init any) (*Headers, error) {
	h := &Headers{names: map[string]struct{}{}}
	if raw, ok := init.([]string); ok {
		return FromPairs(raw...)
	}
	if err := h.Extend(init); err != nil {
		return nil, err
	}
	return h, nil
}

// Get returns the first value of name.
func (h *Headers) Get(name string) (string, bool) {
	if h == nil {
		return "", false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	key := normalize(name)
	if _, ok := h.names[key]; !ok {
		return "", false
	}
	for i := 0; i < len(h.list); i += 2 {
		if normalize(h.list[i]) == key {
			return h.list[i+1], true
		}
	}
	return "", false
}

// Value is like [Headers.Get] but returns "" for missing names.
func (h *Headers) Value(name string) string {
	v, _ := h.Get(name)
	return v
}

func (h *Headers) GetAll(name string) []string {
	result := []string{}
	if h == nil {
		return result
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	key := normalize(name)
	if _, ok := h.names[key]; !ok {
		return result
	}
	for i := 0; i < len(h.list); i += 2 {
		if normalize(h.list[i]) == key {
			result = append(result, h.list[i+1])
		}
	}
	return result
}

func (h *Headers) Has(name string) bool {
	if h == nil {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.names[normalize(name)]
	return ok
}

// Set replaces every value of name with values.
func (h *Headers) Set(name string, values ...string) *Headers {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delete(name)
	h.append(name, values)
	return h
}

// Append adds values for name without touching existing ones.
func (h *Headers) Append(name string, values ...string) *Headers {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.append(name, values)
	return h
}

func (h *Headers) Delete(name string) *Headers {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delete(name)
	return h
}

// append and delete must be called with h.mu held
func (h *Headers) append(name string, values []string) {
	if len(values) == 0 {
		return
	}
	if h.names == nil {
		h.names = map[string]struct{}{}
	}
	h.names[normalize(name)] = struct{}{}
	name = canonicalName(name)
	for _, v := range values {
		h.list = append(h.list, name, v)
	}
}

func (h *Headers) delete(name string) {
	key := normalize(name)
	if _, ok := h.names[key]; !ok {
		return
	}
	kept := h.list[:0]
	for i := 0; i < len(h.list); i += 2 {
		if normalize(h.list[i]) != key {
			kept = append(kept, h.list[i], h.list[i+1])
		}
	}
	clear(h.list[len(kept):])
	h.list = kept
	delete(h.names, key)
}

func (h *Headers) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.list)
	h.list = h.list[:0]
	clear(h.names)
}

// Len returns the number of name/value entries.
func (h *Headers) Len() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.list) / 2
}

// Raw returns a copy of the flat name/value list.
func (h *Headers) Raw() []string {
	if h == nil {
		return []string{}
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string{}, h.list...)
}

// Entries iterates over a snapshot of the entries taken when it is called,
// mutations during iteration are not observed.
func (h *Headers) Entries() iter.Seq2[string, string] {
	raw := h.Raw()
	return func(yield func(string, string) bool) {
		for i := 0; i < len(raw); i += 2 {
			if !yield(raw[i], raw[i+1]) {
				return
			}
		}
	}
}

func (h *Headers) Keys() iter.Seq[string] {
	raw := h.Raw()
	return func(yield func(string) bool) {
		for i := 0; i < len(raw); i += 2 {
			if !yield(raw[i]) {
				return
			}
		}
	}
}

func (h *Headers) Values() iter.Seq[string] {
	raw := h.Raw()
	return func(yield func(string) bool) {
		for i := 1; i < len(raw); i += 2 {
			if !yield(raw[i]) {
				return
			}
		}
	}
}

// Extend appends every entry of src. Accepted sources are *Headers,
// http.Header, map[string]string, map[string][]string, map[string]any
// (scalars are stringified, slices element by element), [][2]string and
// flat []string pairs.
func (h *Headers) Extend(src any) error {
	switch s := src.(type) {
	case nil:
	case *Headers:
		if s == nil {
			return nil
		}
		raw := s.Raw() // s may be h
		for i := 0; i < len(raw); i += 2 {
			h.Append(raw[i], raw[i+1])
		}
	case http.Header:
		for _, k := range sortedKeys(s) {
			h.Append(k, s[k]...)
		}
	case map[string][]string:
		for _, k := range sortedKeys(s) {
			h.Append(k, s[k]...)
		}
	case map[string]string:
		for _, k := range sortedKeys(s) {
			h.Append(k, s[k])
		}
	case map[string]any:
		for _, k := range sortedKeys(s) {
			values, err := stringify(s[k])
			if err != nil {
				return errs.ErrUnsupportedHeaders.Wrap(fmt.Errorf("header %q: %w", k, err))
			}
			h.Append(k, values...)
		}
	case [][2]string:
		for _, kv := range s {
			h.Append(kv[0], kv[1])
		}
	case []string:
		more, err := FromPairs(s...)
		if err != nil {
			return err
		}
		return h.Extend(more)
	default:
		return errs.ErrUnsupportedHeaders.Wrap(fmt.Errorf("%T", src))
	}
	return nil
}

// plain objects have no order of their own, sort for stable output
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringify(v any) ([]string, error) {
	switch v := v.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case int:
		return []string{strconv.Itoa(v)}, nil
	case int64:
		return []string{strconv.FormatInt(v, 10)}, nil
	case uint64:
		return []string{strconv.FormatUint(v, 10)}, nil
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}, nil
	case bool:
		return []string{strconv.FormatBool(v)}, nil
	case fmt.Stringer:
		return []string{v.String()}, nil
	case []int:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = strconv.Itoa(n)
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, err := stringify(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported header value type %T", v)
}

// Clone returns a copy sharing no mutable state with h.
func (h *Headers) Clone() *Headers {
	if h == nil {
		return &Headers{names: map[string]struct{}{}}
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	c := &Headers{names: make(map[string]struct{}, len(h.names))}
	c.list = append([]string{}, h.list...)
	for k := range h.names {
		c.names[k] = struct{}{}
	}
	return c
}

// Object groups values by name. Names are lower-cased when lower is set,
// otherwise the case of each entry is kept as is.
func (h *Headers) Object(lower bool) map[string][]string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	obj := make(map[string][]string, len(h.names))
	for i := 0; i < len(h.list); i += 2 {
		key := h.list[i]
		if lower {
			key = strings.ToLower(key)
		}
		obj[key] = append(obj[key], h.list[i+1])
	}
	return obj
}

// HTTPHeader converts h into the net/http vocabulary, names are
// canonicalized by [http.Header.Add].
func (h *Headers) HTTPHeader() http.Header {
	h.mu.RLock()
	defer h.mu.RUnlock()
	hh := make(http.Header, len(h.names))
	for i := 0; i < len(h.list); i += 2 {
		hh.Add(h.list[i], h.list[i+1])
	}
	return hh
}

// Validate reports the first entry that is not a legal HTTP field.
func (h *Headers) Validate() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for i := 0; i < len(h.list); i += 2 {
		if !httpguts.ValidHeaderFieldName(h.list[i]) {
			return errs.ErrInvalidHeader.Wrap(fmt.Errorf("invalid field name %q", h.list[i]))
		}
		if !httpguts.ValidHeaderFieldValue(h.list[i+1]) {
			return errs.ErrInvalidHeader.Wrap(fmt.Errorf("invalid value for field %q", h.list[i]))
		}
	}
	return nil
}

// ListSize is the header list size as defined by RFC 7541 Section 4.1,
// which HTTP/2 peers limit with SETTINGS_MAX_HEADER_LIST_SIZE.
func (h *Headers) ListSize() uint32 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := uint32(0)
	for i := 0; i < len(h.list); i += 2 {
		f := hpack.HeaderField{Name: strings.ToLower(h.list[i]), Value: h.list[i+1]}
		total += f.Size()
	}
	return total
}

func (h *Headers) MarshalJSON() ([]byte, error) {
	grouped := h.Object(true)
	obj := make(map[string]any, len(grouped))
	for k, v := range grouped {
		if len(v) == 1 {
			obj[k] = v[0]
		} else {
			obj[k] = v
		}
	}
	return json.Marshal(obj)
}

func (h *Headers) String() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var sb strings.Builder
	for i := 0; i < len(h.list); i += 2 {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(h.list[i])
		sb.WriteString(": ")
		sb.WriteString(h.list[i+1])
	}
	return sb.String()
}
