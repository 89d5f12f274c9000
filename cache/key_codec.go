package cache

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	hex "github.com/tmthrgd/go-hex"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// defaultKeyCodec implements KeyCodec using reflection-based canonical serialization.
// Map keys are sorted, so two descriptors holding the same logical values derive
// the same key no matter how their maps were populated.
type defaultKeyCodec struct{}

// NewDefaultKeyCodec creates a new instance of the default key codec.
func NewDefaultKeyCodec() KeyCodec {
	return &defaultKeyCodec{}
}

// DeriveKey builds a key of the form model::op::digest where digest is the
// hex encoded xxhash64 of the canonical descriptor.
func (s *defaultKeyCodec) DeriveKey(d Descriptor) string {
	h := xxhash.New()
	_, _ = h.WriteString(s.canonical(d))
	return strings.Join([]string{d.Model, string(d.Op), hex.EncodeToString(h.Sum(nil))}, KeySeparator)
}

// Canonical returns the pre-hash canonical form DeriveKey digests.
func Canonical(d Descriptor) string {
	return (&defaultKeyCodec{}).canonical(d)
}

func (s *defaultKeyCodec) canonical(d Descriptor) string {
	segments := []struct {
		name  string
		value any
	}{
		{"model", d.Model},
		{"op", string(d.Op)},
		{"skip", d.Skip},
		{"limit", d.Limit},
		{"sort", d.Sort},
		{"options", d.Options},
		{"conditions", d.Conditions},
		{"path", d.Path},
		{"distinct", d.Distinct},
		{"lean", d.Lean},
		{"pipeline", d.Pipeline},
		{"fields", map[string]int(d.Fields)},
	}

	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.name + "=" + s.serializeValue(seg.value)
	}
	return strings.Join(parts, KeySeparator)
}

// serializeValue handles individual value serialization based on type.
func (s *defaultKeyCodec) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	rt := reflect.TypeOf(v)

	switch rt.Kind() {
	case reflect.Func:
		// pointer identity is only stable within a process
		return fmt.Sprintf("func:%p", v)
	case reflect.Chan:
		return fmt.Sprintf("chan:%p", v)
	case reflect.Ptr:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return s.serializeList("slice", rv)
	case reflect.Array:
		return s.serializeList("array", rv)
	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.serializeMap(rv)
	case reflect.Struct:
		if tm, ok := v.(encoding.TextMarshaler); ok {
			if text, err := tm.MarshalText(); err == nil {
				return "text:" + strconv.Quote(string(text))
			}
		}
		return s.serializeStruct(rv, rt)
	case reflect.String:
		return strconv.Quote(rv.String())
	}

	if s.isBasicType(rt.Kind()) {
		return fmt.Sprintf("%v", v)
	}

	return s.jsonFallback(v)
}

func (s *defaultKeyCodec) serializeList(kind string, rv reflect.Value) string {
	length := rv.Len()
	parts := make([]string, length)
	for i := 0; i < length; i++ {
		parts[i] = s.serializeValue(rv.Index(i).Interface())
	}
	return fmt.Sprintf("%s[%d]:{%s}", kind, length, strings.Join(parts, ","))
}

// serializeMap sorts entries by their serialized key for determinism.
func (s *defaultKeyCodec) serializeMap(rv reflect.Value) string {
	type pair struct{ key, value string }

	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, pair{
			key:   s.serializeValue(iter.Key().Interface()),
			value: s.serializeValue(iter.Value().Interface()),
		})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.key + "=" + p.value
	}
	return fmt.Sprintf("map[%d]:{%s}", len(parts), strings.Join(parts, ","))
}

// serializeStruct handles struct serialization with field names
func (s *defaultKeyCodec) serializeStruct(rv reflect.Value, rt reflect.Type) string {
	numFields := rv.NumField()
	parts := make([]string, 0, numFields)

	for i := 0; i < numFields; i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldValue := rv.Field(i)
		if !fieldValue.CanInterface() {
			continue
		}

		parts = append(parts, fmt.Sprintf("%s:%s", field.Name, s.serializeValue(fieldValue.Interface())))
	}

	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

func (s *defaultKeyCodec) isBasicType(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}

// jsonFallback provides JSON serialization as a last resort
func (s *defaultKeyCodec) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%s", reflect.TypeOf(v).String())
	}
	return fmt.Sprintf("json:%s", string(data))
}
