// Package template implements the placeholder substitution engine for
// configured event templates. Templates carry `{type:field}` tokens in their
// name and values; substitution resolves those tokens against the fact maps
// gathered for one trigger firing.
package template

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FactMap is the per-firing resolved data, keyed by option type id. It is
// built fresh on every firing; the underlying host data is mutable, so fact
// maps are never cached across firings.
type FactMap map[string]map[string]interface{}

// Merge shallow-merges other on top of f, type by type. Used for literal
// overrides a caller injects on top of resolver output.
func (f FactMap) Merge(other FactMap) {
	for typeID, fields := range other {
		dst, ok := f[typeID]
		if !ok {
			dst = make(map[string]interface{}, len(fields))
			f[typeID] = dst
		}
		for k, v := range fields {
			dst[k] = v
		}
	}
}

// Flatten collapses nested maps inside each type's field map into dot-joined
// flat keys, so `{order:customer.email}` resolves whether the resolver
// returned a nested document or a pre-flattened row. Non-map values pass
// through unchanged.
func (f FactMap) Flatten() FactMap {
	out := make(FactMap, len(f))
	for typeID, fields := range f {
		flat := make(map[string]interface{}, len(fields))
		flattenInto(flat, "", fields)
		out[typeID] = flat
	}
	return out
}

func flattenInto(dst map[string]interface{}, prefix string, src map[string]interface{}) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flattenInto(dst, key, nested)
			continue
		}
		dst[key] = v
	}
}

// KeyValue is one entry of a structured template value list.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Values is the tagged variant behind a template's value mapping: either one
// free-text scalar or a list of key/value pairs. The zero Values is empty.
type Values struct {
	scalar string
	pairs  []KeyValue
	kind   valuesKind
}

type valuesKind int

const (
	valuesEmpty valuesKind = iota
	valuesScalar
	valuesPairs
)

func Scalar(s string) Values {
	return Values{scalar: s, kind: valuesScalar}
}

func Pairs(pairs []KeyValue) Values {
	cp := make([]KeyValue, len(pairs))
	copy(cp, pairs)
	return Values{pairs: cp, kind: valuesPairs}
}

func (v Values) IsEmpty() bool { return v.kind == valuesEmpty }

func (v Values) IsScalar() bool { return v.kind == valuesScalar }

func (v Values) IsPairs() bool { return v.kind == valuesPairs }

func (v Values) ScalarValue() string { return v.scalar }

func (v Values) PairsValue() []KeyValue {
	cp := make([]KeyValue, len(v.pairs))
	copy(cp, v.pairs)
	return cp
}

// mapStrings applies fn to every value string and returns a new Values.
// Substitution is implemented once against this, never per wire shape.
func (v Values) mapStrings(fn func(string) string) Values {
	switch v.kind {
	case valuesScalar:
		return Values{scalar: fn(v.scalar), kind: valuesScalar}
	case valuesPairs:
		pairs := make([]KeyValue, len(v.pairs))
		for i, kv := range v.pairs {
			pairs[i] = KeyValue{Key: kv.Key, Value: fn(kv.Value)}
		}
		return Values{pairs: pairs, kind: valuesPairs}
	default:
		return v
	}
}

// strings returns every value string for read-only scans.
func (v Values) strings() []string {
	switch v.kind {
	case valuesScalar:
		return []string{v.scalar}
	case valuesPairs:
		out := make([]string, len(v.pairs))
		for i, kv := range v.pairs {
			out[i] = kv.Value
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON preserves the legacy wire shape: a scalar encodes as a JSON
// string, pairs encode as an array of {key,value} objects, empty as null.
func (v Values) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valuesScalar:
		return json.Marshal(v.scalar)
	case valuesPairs:
		return json.Marshal(v.pairs)
	default:
		return []byte("null"), nil
	}
}

func (v *Values) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*v = Values{}
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var pairs []KeyValue
		if err := json.Unmarshal(data, &pairs); err != nil {
			return fmt.Errorf("values: invalid pair list: %w", err)
		}
		*v = Values{pairs: pairs, kind: valuesPairs}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("values: expected string or pair list: %w", err)
	}
	*v = Values{scalar: s, kind: valuesScalar}
	return nil
}

// Template is a configured, author-supplied event: a name and value mapping,
// both of which may contain `{type:field}` placeholders. Condition is an
// optional CEL expression gating the firing.
type Template struct {
	Name      string `json:"name"`
	Values    Values `json:"values"`
	Condition string `json:"condition,omitempty"`
}
