package firestore

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var errNilClient = errors.New("firestore client is nil")

// Documents written by older clients are not always typed consistently
// (numbers as strings, ints as floats). These helpers read them best-effort.

func asString(v any) string {
	return strings.TrimSpace(cast.ToString(v))
}

// asQty reads a cart quantity; ok is false when v cannot be a quantity.
func asQty(v any) (int, bool) {
	if s, isStr := v.(string); isStr {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || f < 1 {
		return 0, false
	}
	return int(f), true
}

// asTime returns (time, ok)
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	default:
		return time.Time{}, false
	}
}
