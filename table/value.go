// Package table turns decoded CPIC records into normalized, scalar-only
// tables ready to be written as columnar files.
package table

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Kind is the JSON kind of a single cell
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is one cell. Numbers keep their JSON literal in Text, Object and
// List keep their compact JSON text in Text, strings keep the decoded text.
type Value struct {
	Kind Kind
	Text string
	Bool bool
}

// Null is the missing cell
var Null = Value{}

func String(s string) Value { return Value{Kind: KindString, Text: s} }

func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Number builds a number cell from its JSON literal
func Number(literal string) Value { return Value{Kind: KindNumber, Text: literal} }

// Object builds an object cell from raw JSON text
func Object(raw string) Value { return Value{Kind: KindObject, Text: compact(raw)} }

// List builds a list cell from raw JSON text
func List(raw string) Value { return Value{Kind: KindList, Text: compact(raw)} }

// IsNull reports whether the cell is missing or JSON null
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsNested reports whether the cell still holds an object or a list
func (v Value) IsNested() bool { return v.Kind == KindObject || v.Kind == KindList }

// IsInteger reports whether a number cell is written without fraction or
// exponent and fits in an int64
func (v Value) IsInteger() bool {
	if v.Kind != KindNumber || strings.ContainsAny(v.Text, ".eE") {
		return false
	}
	_, err := strconv.ParseInt(v.Text, 10, 64)
	return err == nil
}

// Int returns the integer value of a number cell
func (v Value) Int() int64 {
	n, _ := strconv.ParseInt(v.Text, 10, 64)
	return n
}

// Float returns the floating point value of a number cell
func (v Value) Float() float64 {
	f, _ := strconv.ParseFloat(v.Text, 64)
	return f
}

// Display renders any non-null cell as text: strings as is, numbers as
// their literal, bools as true/false, nested cells as JSON
func (v Value) Display() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNull:
		return ""
	default:
		return v.Text
	}
}

// valueOf converts a gjson result into a cell
func valueOf(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.Number:
		return Number(r.Raw)
	case gjson.String:
		return String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			return List(r.Raw)
		}
		return Object(r.Raw)
	default:
		return Null
	}
}

func compact(raw string) string {
	return string(pretty.Ugly([]byte(raw)))
}
