package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the wire layout of Date.
	DateLayout = "2006-01-02"
	// TimeOfDayLayout is the wire layout of TimeOfDay.
	TimeOfDayLayout = "15:04"
)

// DateTime is a timestamp serialized with DateTimeLayout.
type DateTime struct {
	time.Time
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return marshalTime(d.Time, DateTimeLayout)
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	t, err := unmarshalTime(data, DateTimeLayout, time.RFC3339Nano)
	if err == nil {
		d.Time = t
	}
	return err
}

// Date is a calendar date without a time part.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return marshalTime(d.Time, DateLayout)
}

func (d *Date) UnmarshalJSON(data []byte) error {
	t, err := unmarshalTime(data, DateLayout, DateTimeLayout)
	if err == nil {
		d.Time = t
	}
	return err
}

// TimeOfDay is a wall clock time with minute precision.
type TimeOfDay struct {
	time.Time
}

func (d TimeOfDay) MarshalJSON() ([]byte, error) {
	return marshalTime(d.Time, TimeOfDayLayout)
}

func (d *TimeOfDay) UnmarshalJSON(data []byte) error {
	t, err := unmarshalTime(data, TimeOfDayLayout, "15:04:05")
	if err == nil {
		d.Time = t
	}
	return err
}

func marshalTime(t time.Time, layout string) ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(layout) + `"`), nil
}

func unmarshalTime(data []byte, layouts ...string) (time.Time, error) {
	if string(data) == "null" {
		return time.Time{}, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return time.Time{}, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// BoolInt is a boolean written as 1 or 0. Reading also accepts JSON booleans
// and the strings true/false, yes/no, y/n and 1/0.
type BoolInt bool

func (b BoolInt) MarshalJSON() ([]byte, error) {
	if b {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (b *BoolInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}

	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "yes", "y", "1":
		*b = true
		return nil
	case "false", "no", "n", "0":
		*b = false
		return nil
	}

	if n, err := strconv.ParseFloat(text, 64); err == nil {
		*b = n != 0
		return nil
	}
	return fmt.Errorf("serializer: cannot read boolean from %s", data)
}
