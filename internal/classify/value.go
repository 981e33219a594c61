package classify

import (
	"fmt"
	"time"
)

// snapshotValueMax caps stringified values in the per-table column snapshot.
const snapshotValueMax = 100

// Stringify renders a sampled value as text. Database drivers hand back
// []byte for most textual column types.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}

// DisplayValue coerces a raw sampled value into its snapshot form: nil is
// preserved, numeric and boolean types pass through, everything else is
// stringified and capped at 100 runes.
func DisplayValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		return t
	case int:
		return t
	case int8:
		return t
	case int16:
		return t
	case int32:
		return t
	case int64:
		return t
	case uint:
		return t
	case uint8:
		return t
	case uint16:
		return t
	case uint32:
		return t
	case uint64:
		return t
	case float32:
		return t
	case float64:
		return t
	default:
		return Truncate(Stringify(v), snapshotValueMax)
	}
}
