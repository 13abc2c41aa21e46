package restlog

import (
	"sort"
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ParamsKind says which form of request parameters a Params value holds.
type ParamsKind int

const (
	NoParams ParamsKind = iota
	StructuredParams
	RawParams
)

// Param is one named request parameter. A Param with non-nil Children is a nested
// mapping and its Value is ignored.
type Param struct {
	Key      string
	Value    ldvalue.Value
	Children []Param
}

// Field returns a leaf parameter.
func Field(key string, value ldvalue.Value) Param {
	return Param{Key: key, Value: value}
}

// Group returns a nested mapping parameter.
func Group(key string, children ...Param) Param {
	if children == nil {
		children = []Param{}
	}
	return Param{Key: key, Children: children}
}

func (p Param) IsGroup() bool {
	return p.Children != nil
}

func (p Param) Equal(other Param) bool {
	if p.Key != other.Key || p.IsGroup() != other.IsGroup() || len(p.Children) != len(other.Children) {
		return false
	}
	if !p.IsGroup() && !p.Value.Equal(other.Value) {
		return false
	}
	for i := range p.Children {
		if !p.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Params holds the parameters of a request: either an ordered mapping, or a raw
// payload string such as a JSON request body. The zero value means no parameters.
type Params struct {
	kind   ParamsKind
	fields []Param
	raw    string
}

// Structured returns mapping parameters in the given order.
func Structured(fields ...Param) Params {
	return Params{kind: StructuredParams, fields: fields}
}

// Raw returns parameters sent as a raw payload.
func Raw(payload string) Params {
	return Params{kind: RawParams, raw: payload}
}

// paramsOf flattens an object or array value into parameters. Object keys are sorted
// since ldvalue does not keep their order.
func paramsOf(v ldvalue.Value) []Param {
	ret := []Param{}
	switch v.Type() {
	case ldvalue.ObjectType:
		keys := v.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			ret = append(ret, valueParam(k, v.GetByKey(k)))
		}
	case ldvalue.ArrayType:
		for i := 0; i < v.Count(); i++ {
			ret = append(ret, valueParam(strconv.Itoa(i), v.GetByIndex(i)))
		}
	}
	return ret
}

func valueParam(key string, v ldvalue.Value) Param {
	if isContainer(v) {
		return Group(key, paramsOf(v)...)
	}
	return Field(key, v)
}

func isContainer(v ldvalue.Value) bool {
	t := v.Type()
	return t == ldvalue.ObjectType || t == ldvalue.ArrayType
}

func (p Params) Kind() ParamsKind { return p.kind }

func (p Params) Fields() []Param { return p.fields }

func (p Params) RawString() string { return p.raw }

func (p Params) IsEmpty() bool {
	switch p.kind {
	case StructuredParams:
		return len(p.fields) == 0
	case RawParams:
		return p.raw == ""
	default:
		return true
	}
}

func (p Params) Equal(other Params) bool {
	if p.kind != other.kind || p.raw != other.raw || len(p.fields) != len(other.fields) {
		return false
	}
	for i := range p.fields {
		if !p.fields[i].Equal(other.fields[i]) {
			return false
		}
	}
	return true
}

// Pair is one flattened leaf of structured parameters.
type Pair struct {
	Key   string
	Value string
}

// Pairs flattens structured parameters into leaves named outer[inner], in order.
// It returns nil for raw parameters.
func (p Params) Pairs() []Pair {
	if p.kind != StructuredParams {
		return nil
	}
	return appendPairs(nil, "", false, p.fields)
}

func appendPairs(out []Pair, prefix string, nested bool, fields []Param) []Pair {
	for _, f := range fields {
		key := f.Key
		if nested {
			key = prefix + "[" + f.Key + "]"
		}
		switch {
		case f.IsGroup():
			out = appendPairs(out, key, true, f.Children)
		case isContainer(f.Value):
			out = appendPairs(out, key, true, paramsOf(f.Value))
		default:
			out = append(out, Pair{Key: key, Value: leafString(f.Value)})
		}
	}
	return out
}

func leafString(v ldvalue.Value) string {
	switch v.Type() {
	case ldvalue.NullType:
		return "null"
	case ldvalue.BoolType:
		return strconv.FormatBool(v.BoolValue())
	case ldvalue.NumberType:
		if v.IsInt() {
			return strconv.Itoa(v.IntValue())
		}
		return strconv.FormatFloat(v.Float64Value(), 'f', -1, 64)
	default:
		return v.StringValue()
	}
}

// Text is the display form of the parameters: one "key: value" line per leaf for
// structured parameters, or the payload for raw parameters, pretty-printed if it is
// JSON.
func (p Params) Text() string {
	switch p.kind {
	case StructuredParams:
		pairs := p.Pairs()
		lines := make([]string, 0, len(pairs))
		for _, pair := range pairs {
			lines = append(lines, pair.Key+": "+pair.Value)
		}
		return strings.Join(lines, "\n")
	case RawParams:
		if isJSON(p.raw) {
			return prettyJSON(p.raw)
		}
		return p.raw
	default:
		return ""
	}
}
