package indicator

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Note attached to payloads whose value could not be obtained.
const NoteUnavailable = "Sem dado disponível no momento"

// Payload is the normalized, client-facing view of one indicator.
type Payload struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Category string       `json:"category"`
	Unit     string       `json:"unit"`
	Value    *json.Number `json:"value"`
	Source   string       `json:"source"`
	AsOf     Timestamp    `json:"as_of"`
	Note     string       `json:"note,omitempty"`
}

// Available reports whether the payload carries a value.
func (p Payload) Available() bool {
	return p.Value != nil
}

// Timestamp marshals as ISO-8601 in UTC with a +00:00 offset, with
// microseconds when they are non-zero.
type Timestamp time.Time

const (
	layoutMicros  = "2006-01-02T15:04:05.000000-07:00"
	layoutSeconds = "2006-01-02T15:04:05-07:00"
)

// String formats the timestamp.
func (t Timestamp) String() string {
	tt := time.Time(t).UTC()
	if tt.Nanosecond()/int(time.Microsecond) == 0 {
		return tt.Format(layoutSeconds)
	}
	return tt.Format(layoutMicros)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// IntValue encodes an integral value.
func IntValue(v int64) *json.Number {
	n := json.Number(strconv.FormatInt(v, 10))
	return &n
}

// FloatValue encodes a measured value so that it always reads as a float,
// keeping a trailing ".0" on integral numbers.
func FloatValue(v float64) *json.Number {
	var s string
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s = strconv.FormatFloat(v, 'g', -1, 64)
	} else {
		s = strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
	}
	n := json.Number(s)
	return &n
}

// List is the document served for the whole catalog.
type List struct {
	AsOf  Timestamp `json:"as_of"`
	Count int       `json:"count"`
	Items []Payload `json:"items"`
}

// NewList wraps items, which must already be in catalog order.
func NewList(asOf time.Time, items []Payload) List {
	if items == nil {
		items = []Payload{}
	}
	return List{AsOf: Timestamp(asOf.UTC()), Count: len(items), Items: items}
}

// MessageNotFound is returned for ids missing from the catalog.
const MessageNotFound = "Indicador não encontrado"

// ErrorBody is the body of error responses.
type ErrorBody struct {
	Error string `json:"error"`
}
