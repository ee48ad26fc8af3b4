// Package record defines the flat, ordered records produced by the file
// scanner and how their values are rendered for text and store sinks.
package record

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// TimeLayout is used for timestamps in every sink.
const TimeLayout = "2006-01-02 15:04:05"

// Column types map onto SQLite type affinities.
const (
	TypeText    = "TEXT"
	TypeInteger = "INTEGER"
	TypeReal    = "REAL"
	TypeBlob    = "BLOB"
	TypeTime    = "TIMESTAMP"
)

// Column names one field of a Record.
type Column struct {
	Name string
	Type string
}

// Fixed leading columns of every record.
const (
	PathField     = 0
	FilenameField = 1
)

// Record is an ordered list of field values for one matched file.
// Field 0 is the containing directory, field 1 the file name; the rest is
// profile-specific payload. Values are string, int64, float64, time.Time,
// []byte or nil.
type Record []any

// Path returns the containing directory.
func (r Record) Path() string { return asString(r[PathField]) }

// Filename returns the file's base name.
func (r Record) Filename() string { return asString(r[FilenameField]) }

// Payload returns the fields after path and filename.
func (r Record) Payload() []any { return r[FilenameField+1:] }

// Text renders every field as a string, for console and delimited output.
func (r Record) Text() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = FormatText(v)
	}
	return out
}

// FormatText renders a single value for text sinks: hashes as hex, times in
// TimeLayout and nil as the empty string.
func FormatText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return hex.EncodeToString(x)
	case time.Time:
		return x.Format(TimeLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(TimeLayout)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// FormatStore converts a value to a driver-friendly type. Times become text
// in TimeLayout; everything else passes through.
func FormatStore(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(TimeLayout)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.Format(TimeLayout)
	case int:
		return int64(x)
	default:
		return v
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return FormatText(v)
}
