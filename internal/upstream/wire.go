package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// flexInt accepts a JSON number, a numeric string or null.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	v, ok := parseNumber(b)
	if ok {
		*n = flexInt(int(v))
	}
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	v, ok := parseNumber(b)
	if ok {
		*f = flexFloat(v)
	}
	return nil
}

// flexString accepts a JSON string or number. Upstream user ids arrive as
// either.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	*s = flexString(string(b))
	return nil
}

func parseNumber(b []byte) (float64, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, false
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		return v, err == nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	return v, err == nil
}

// FlexTime decodes the date shapes the upstream has been seen to send: an
// RFC 3339 or plain ISO string, a millisecond timestamp, or an object with
// a timestamp field. Valid is false for anything else.
type FlexTime struct {
	Time  time.Time
	Valid bool
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	*t = FlexTime{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		for _, layout := range isoLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				*t = FlexTime{Time: parsed, Valid: true}
				return nil
			}
		}
	case '{':
		var obj struct {
			Timestamp *flexFloat `json:"timestamp"`
		}
		if err := json.Unmarshal(b, &obj); err == nil && obj.Timestamp != nil {
			*t = FlexTime{Time: time.UnixMilli(int64(*obj.Timestamp)), Valid: true}
		}
	default:
		if ms, ok := parseNumber(b); ok {
			*t = FlexTime{Time: time.UnixMilli(int64(ms)), Valid: true}
		}
	}
	return nil
}

// OrNow returns the parsed time or the current time.
func (t FlexTime) OrNow() time.Time {
	if t.Valid {
		return t.Time
	}
	return time.Now()
}

func (t FlexTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
