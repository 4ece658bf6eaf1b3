package field

import (
	"time"
)

// Layouts tried, in order, when a driver returns a temporal value as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"15:04:05.999999999",
	"15:04:05",
}

type timeType struct{ name, sqlType string }

// Timestamp returns a timestamp codec for time.Time values.
func Timestamp() Type { return timeType{name: "timestamp", sqlType: "timestamp"} }

// Date returns a date codec for time.Time values.
func Date() Type { return timeType{name: "date", sqlType: "date"} }

// Time returns a time-of-day codec for time.Time values.
func Time() Type { return timeType{name: "time", sqlType: "time"} }

func (t timeType) Name() string    { return t.name }
func (t timeType) SQLType() string { return t.sqlType }
func (timeType) Nullable() bool    { return true }

func (t timeType) Decode(src any) (any, error) {
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case int64:
		return time.Unix(v, 0), nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return nil, decodeError(t, src)
}

func (t timeType) parse(s string) (any, error) {
	for _, layout := range timeLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm, nil
		}
	}
	return nil, decodeError(t, s)
}

func (t timeType) Encode(v any) (any, error) {
	if tm, ok := v.(time.Time); ok {
		return tm, nil
	}
	return nil, encodeError(t, v)
}
