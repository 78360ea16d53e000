package reading

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TimestampLayout is the human-readable, second precision layout of Reading.Timestamp
const TimestampLayout = "2006-01-02 15:04:05"

// Unknown is the value rendered for fields that could not be determined
const Unknown = "unknown"

var ErrMalformed = errors.New("malformed reading")

// Reading is one temperature snapshot. A nil temperature renders as "unknown".
type Reading struct {
	Celsius    *float64
	Fahrenheit *float64
	Timestamp  string
}

// New creates a reading for the given Celsius temperature taken at t
func New(celsius float64, t time.Time) Reading {
	return Reading{
		Celsius:    Float64Pointer(celsius),
		Fahrenheit: Float64Pointer(CelsiusToFahrenheit(celsius)),
		Timestamp:  t.Format(TimestampLayout),
	}
}

// UnknownReading returns the sentinel reading used when no snapshot is available
func UnknownReading() Reading {
	return Reading{Timestamp: Unknown}
}

func CelsiusToFahrenheit(celsius float64) float64 {
	return celsius*9/5 + 32
}

func (r Reading) IsUnknown() bool {
	return r.Celsius == nil && r.Fahrenheit == nil
}

func (r Reading) String() string {
	if r.Celsius == nil || r.Fahrenheit == nil {
		return Unknown
	}
	return fmt.Sprintf("%.2f°C (%.2f°F)", *r.Celsius, *r.Fahrenheit)
}

type wireReading struct {
	Celsius    any    `json:"celsius"`
	Fahrenheit any    `json:"fahrenheit"`
	Timestamp  string `json:"timestamp"`
}

func (r Reading) MarshalJSON() ([]byte, error) {
	w := wireReading{
		Celsius:    Unknown,
		Fahrenheit: Unknown,
		Timestamp:  r.Timestamp,
	}
	if r.Celsius != nil {
		w.Celsius = *r.Celsius
	}
	if r.Fahrenheit != nil {
		w.Fahrenheit = *r.Fahrenheit
	}
	if w.Timestamp == "" {
		w.Timestamp = Unknown
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a reading strictly: all keys must be present, temperatures
// must be numbers or "unknown" and the timestamp a non-empty string.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("%w: expected an object", ErrMalformed)
	}
	celsius, err := decodeTemperature(raw, "celsius")
	if err != nil {
		return err
	}
	fahrenheit, err := decodeTemperature(raw, "fahrenheit")
	if err != nil {
		return err
	}
	ts, ok := raw["timestamp"]
	if !ok {
		return fmt.Errorf("%w: missing key timestamp", ErrMalformed)
	}
	var timestamp string
	if err := json.Unmarshal(ts, &timestamp); err != nil || timestamp == "" {
		return fmt.Errorf("%w: timestamp must be a non-empty string", ErrMalformed)
	}
	r.Celsius = celsius
	r.Fahrenheit = fahrenheit
	r.Timestamp = timestamp
	return nil
}

func decodeTemperature(raw map[string]json.RawMessage, key string) (*float64, error) {
	v, ok := raw[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing key %s", ErrMalformed, key)
	}
	v = bytes.TrimSpace(v)
	if bytes.Equal(v, []byte("null")) {
		return nil, fmt.Errorf("%w: %s cannot be null", ErrMalformed, key)
	}
	if len(v) > 0 && v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil || s != Unknown {
			return nil, fmt.Errorf("%w: %s must be a number or %q", ErrMalformed, key, Unknown)
		}
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return nil, fmt.Errorf("%w: %s must be a number or %q", ErrMalformed, key, Unknown)
	}
	return &f, nil
}

func Float64Pointer(v float64) *float64 {
	return &v
}
