package table

import (
	"errors"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON = errors.New("response body is not valid JSON")
	ErrNotArray    = errors.New("response body is not a JSON array")
)

// Field is one key/value pair of a record
type Field struct {
	Key   string
	Value Value
}

// Record is one decoded JSON object with its fields in document order
type Record []Field

// Get returns the value of key, Null when absent
func (r Record) Get(key string) (Value, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Null, false
}

// DecodeRecords parses a JSON array of objects. Fields keep document order;
// a key repeated inside one object keeps its first position and last value.
// Elements that are not objects decode to an empty record so the number of
// records always matches the array length.
func DecodeRecords(body []byte) ([]Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsArray() {
		return nil, ErrNotArray
	}

	var records []Record
	doc.ForEach(func(_, element gjson.Result) bool {
		records = append(records, decodeRecord(element))
		return true
	})

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func decodeRecord(element gjson.Result) Record {
	if !element.IsObject() {
		return Record{}
	}

	var rec Record
	positions := make(map[string]int)
	element.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if i, seen := positions[name]; seen {
			rec[i].Value = valueOf(value)
			return true
		}
		positions[name] = len(rec)
		rec = append(rec, Field{Key: name, Value: valueOf(value)})
		return true
	})
	return rec
}
