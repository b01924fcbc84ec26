package manifest

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2/unstable"
)

// locateVersion finds the byte span of the package.version value in raw,
// covering the [package] table, a root package.version dotted key and an
// inline package = { version = ... } table. Callers still verify the edited
// document before trusting it.
func locateVersion(raw []byte) (start, end int, ok bool) {
	p := &unstable.Parser{}
	p.Reset(raw)

	var table []string
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table:
			table = keyParts(e.Key())
		case unstable.ArrayTable:
			// keys below an array of tables never resolve to package.version
			table = []string{"[["}
		case unstable.KeyValue:
			key := append(append([]string(nil), table...), keyParts(e.Key())...)
			v := e.Value()
			switch {
			case sameKey(key, packageKey, versionKey):
				return valueSpan(p, v)
			case sameKey(key, packageKey) && v.Kind == unstable.InlineTable:
				it := v.Children()
				for it.Next() {
					kv := it.Node()
					if kv.Kind == unstable.KeyValue && sameKey(keyParts(kv.Key()), versionKey) {
						return valueSpan(p, kv.Value())
					}
				}
			}
		}
	}
	return 0, 0, false
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func sameKey(key []string, want ...string) bool {
	if len(key) != len(want) {
		return false
	}
	for i := range key {
		if key[i] != want[i] {
			return false
		}
	}
	return true
}

// valueSpan returns the input range of a scalar value node. Strings carry
// their quoted token in Raw; other scalars keep Data as a slice of the input.
func valueSpan(p *unstable.Parser, v *unstable.Node) (start, end int, ok bool) {
	switch v.Kind {
	case unstable.Array, unstable.InlineTable:
		return 0, 0, false
	case unstable.String:
		if v.Raw.Length == 0 {
			return 0, 0, false
		}
		r := v.Raw
		return int(r.Offset), int(r.Offset + r.Length), true
	}
	if v.Raw.Length > 0 {
		return int(v.Raw.Offset), int(v.Raw.Offset + v.Raw.Length), true
	}
	if len(v.Data) == 0 {
		return 0, 0, false
	}
	defer func() {
		// Range panics when Data is not a slice of the parsed input
		if recover() != nil {
			start, end, ok = 0, 0, false
		}
	}()
	r := p.Range(v.Data)
	return int(r.Offset), int(r.Offset + r.Length), true
}

// quoteBasic encodes s as a TOML basic string. strconv.Quote is not used
// because Go escapes such as \x00 and \a are not valid TOML.
func quoteBasic(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// sameTree compares two decoded documents by value.
func sameTree(a, b map[string]any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// normalize maps decoded values to comparable forms: times carry a fresh
// *time.Location per decode and NaN never equals itself.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = normalize(e)
		}
		return m
	case []map[string]any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = normalize(e)
		}
		return s
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = normalize(e)
		}
		return s
	case time.Time:
		return x.Format(time.RFC3339Nano) + " " + x.Location().String()
	case float64:
		if math.IsNaN(x) {
			return "nan"
		}
		return x
	default:
		return v
	}
}
