package models

import (
	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// Report is one activity payload as sent by an agent. The shape is
// deliberately schema-less: agents evolve independently of the daemon,
// so any well-formed JSON object is accepted and stored verbatim. Only
// the two metric fields below are ever interpreted.
type Report map[string]interface{}

const (
	FieldKeystrokes = "keystrokes"
	FieldActiveMs   = "sessionActiveMs"
)

// Keystrokes returns the keystroke count carried by the report.
// Absent, non-numeric or non-positive values count as zero.
func (r Report) Keystrokes() int64 {
	return r.positiveInt(FieldKeystrokes)
}

// ActiveMs returns the active-session milliseconds carried by the report.
// Absent, non-numeric or non-positive values count as zero.
func (r Report) ActiveMs() int64 {
	return r.positiveInt(FieldActiveMs)
}

func (r Report) positiveInt(field string) int64 {
	v, ok := r[field]
	if !ok {
		return 0
	}
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
	default:
		return 0
	}
	n, err := cast.ToInt64E(v)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// Canonical returns the report serialized to its canonical JSON text.
// This exact byte sequence is what gets journaled, cached and broadcast.
func (r Report) Canonical() ([]byte, error) {
	return json.Marshal(r)
}
