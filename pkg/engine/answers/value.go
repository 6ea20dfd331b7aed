// FILE: pkg/engine/answers/value.go
// PURPOSE: Tagged answer value (string | number | bool | list | object)

package answers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Value is a single answer. The zero value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	flag bool
	list []Value
	obj  map[string]Value
}

func String(s string) Value { return Value{kind: KindString, str: s} }
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }
func List(items ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), items...)}
}

// Strings builds a list value out of plain strings (multi-select answers)
func Strings(items ...string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = String(s)
	}
	return Value{kind: KindList, list: list}
}

func Object(fields map[string]Value) Value {
	obj := make(map[string]Value, len(fields))
	for k, v := range fields {
		obj[k] = v
	}
	return Value{kind: KindObject, obj: obj}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Str() string { return v.str }
func (v Value) Items() []Value { return v.list }

// Field returns an object member, null when absent or v is not an object
func (v Value) Field(name string) Value {
	if v.kind != KindObject {
		return Value{}
	}
	return v.obj[name]
}

// Fields returns the object members (nil for other kinds)
func (v Value) Fields() map[string]Value {
	return v.obj
}

var numberPattern = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)

// Num coerces the value to a number. Strings are accepted when they carry a
// single numeric literal, optionally with thousands separators ("1,564,600 yen").
func (v Value) Num() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		match := numberPattern.FindString(v.str)
		if match == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Int64 returns Num rounded down to an integer amount
func (v Value) Int64() (int64, bool) {
	n, ok := v.Num()
	if !ok {
		return 0, false
	}
	return int64(math.Floor(n)), true
}

// Truthy reports yes-like answers for bool and select values
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.flag
	case KindString:
		switch strings.ToLower(strings.TrimSpace(v.str)) {
		case "yes", "true", "y", "1", "loss", "loss_making", "deficit":
			return true
		}
	case KindNumber:
		return v.num != 0
	}
	return false
}

// Text renders the value as plain text for heuristic evaluation
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, item := range v.list {
			if t := item.Text(); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, ", ")
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, v.obj[k].Text()))
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// Satisfies reports whether the value counts as provided information:
// non-null, strings with at least minRunes after trimming, non-empty lists and objects.
func (v Value) Satisfies(minRunes int) bool {
	switch v.kind {
	case KindString:
		return len([]rune(strings.TrimSpace(v.str))) >= minRunes
	case KindNumber, KindBool:
		return true
	case KindList:
		return len(v.list) > 0
	case KindObject:
		return len(v.obj) > 0
	default:
		return false
	}
}

// Equal compares two values structurally
func (v Value) Equal(other Value) bool {
	a, errA := json.Marshal(v)
	b, errB := json.Marshal(other)
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.flag)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode answer value: %w", err)
	}
	converted, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = converted
	return nil
}

// FromInterface converts decoded JSON/YAML data into a Value
func FromInterface(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Number(n), nil
	case float64:
		return Number(t), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case []interface{}:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			converted, err := FromInterface(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, converted)
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]interface{}:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			converted, err := FromInterface(item)
			if err != nil {
				return Value{}, err
			}
			fields[k] = converted
		}
		return Value{kind: KindObject, obj: fields}, nil
	default:
		return Value{}, fmt.Errorf("unsupported answer type %T", raw)
	}
}
