package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// SessionDate is a session's calendar date. Stored rows carry it as a native
// datetime, an ISO string, a date-only string or a {seconds, nanoseconds}
// timestamp object; all of them decode to the same instant. It is always
// written back as a datetime. The zero value means "unknown".
type SessionDate struct {
	time.Time
}

func NewSessionDate(t time.Time) SessionDate {
	return SessionDate{Time: t}
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

var dateOnlyLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
}

var dateLocation atomic.Pointer[time.Location]

// SetDateLocation sets the zone that date strings without an offset are read
// in when decoding. A nil loc restores time.Local.
func SetDateLocation(loc *time.Location) {
	dateLocation.Store(loc)
}

// DateLocation is the zone set by SetDateLocation, time.Local by default.
func DateLocation() *time.Location {
	if loc := dateLocation.Load(); loc != nil {
		return loc
	}
	return time.Local
}

// ParseSessionDate parses the string shapes a session date may be stored as,
// reading values without an offset in DateLocation.
func ParseSessionDate(s string) (SessionDate, error) {
	return ParseSessionDateIn(s, DateLocation())
}

// ParseSessionDateIn is ParseSessionDate with an explicit zone. Date-only
// values are read as midnight in loc.
func ParseSessionDateIn(s string, loc *time.Location) (SessionDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SessionDate{}, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return SessionDate{Time: t}, nil
		}
	}
	for _, layout := range dateOnlyLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return SessionDate{Time: t}, nil
		}
	}
	return SessionDate{}, fmt.Errorf("unrecognised session date %q", s)
}

func fromSeconds(seconds, nanos int64) SessionDate {
	return SessionDate{Time: time.Unix(seconds, nanos)}
}

func (d SessionDate) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if d.IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(d.Time)
}

func (d *SessionDate) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*d = SessionDate{}
	case bson.TypeDateTime:
		d.Time = raw.Time()
	case bson.TypeTimestamp:
		secs, _ := raw.Timestamp()
		*d = fromSeconds(int64(secs), 0)
	case bson.TypeString:
		parsed, err := ParseSessionDate(raw.StringValue())
		if err != nil {
			return err
		}
		*d = parsed
	case bson.TypeEmbeddedDocument:
		doc := raw.Document()
		secs, ok := rawInt(doc.Lookup("seconds"))
		if !ok {
			secs, ok = rawInt(doc.Lookup("_seconds"))
		}
		if !ok {
			return fmt.Errorf("session date object has no seconds field")
		}
		nanos, ok := rawInt(doc.Lookup("nanoseconds"))
		if !ok {
			nanos, _ = rawInt(doc.Lookup("_nanoseconds"))
		}
		*d = fromSeconds(secs, nanos)
	case bson.TypeInt32, bson.TypeInt64, bson.TypeDouble:
		ms, _ := rawInt(raw)
		d.Time = time.UnixMilli(ms)
	default:
		return fmt.Errorf("cannot decode session date from BSON %s", t)
	}
	return nil
}

func rawInt(v bson.RawValue) (int64, bool) {
	switch v.Type {
	case bson.TypeInt32:
		return int64(v.Int32()), true
	case bson.TypeInt64:
		return v.Int64(), true
	case bson.TypeDouble:
		return int64(v.Double()), true
	}
	return 0, false
}

func (d SessionDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.RFC3339))
}

func (d *SessionDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = SessionDate{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseSessionDate(s)
		if err != nil {
			return err
		}
		*d = parsed
	case '{':
		var ts struct {
			Seconds     *int64 `json:"seconds"`
			Nanoseconds int64  `json:"nanoseconds"`
		}
		if err := json.Unmarshal(data, &ts); err != nil {
			return err
		}
		if ts.Seconds == nil {
			return fmt.Errorf("session date object has no seconds field")
		}
		*d = fromSeconds(*ts.Seconds, ts.Nanoseconds)
	default:
		var ms int64
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("cannot decode session date from %s", data)
		}
		d.Time = time.UnixMilli(ms)
	}
	return nil
}

// StartOfDay is local midnight of the day d falls on, in loc.
func (d SessionDate) StartOfDay(loc *time.Location) time.Time {
	y, m, day := d.In(loc).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

var clockLayouts = []string{"3:04 PM", "3:04PM", "3 PM", "3PM", "15:04", "15:04:05"}

// ClockMinutes parses a session's time-of-day string into minutes after
// midnight. It returns -1 when the value is empty or unrecognised.
func ClockMinutes(s string) int {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return -1
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute()
		}
	}
	return -1
}
