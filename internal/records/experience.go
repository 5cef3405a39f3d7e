package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Experience is experience_required as the generator produced it: free text
// such as "3+ years" or a plain number. The JSON kind survives round trips.
type Experience struct {
	text   string
	number *float64
}

func ExperienceText(text string) Experience {
	return Experience{text: text}
}

func ExperienceNumber(n float64) Experience {
	return Experience{number: &n}
}

func (e Experience) IsNumber() bool {
	return e.number != nil
}

func (e Experience) String() string {
	if e.IsNumber() {
		return strconv.FormatFloat(*e.number, 'f', -1, 64)
	}
	return e.text
}

func (e Experience) MarshalJSON() ([]byte, error) {
	if e.IsNumber() {
		return json.Marshal(*e.number)
	}
	return json.Marshal(e.text)
}

func (e *Experience) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*e = ExperienceText(text)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("experience must be a string or a number: %w", err)
	}
	*e = ExperienceNumber(n)
	return nil
}

var experienceType = reflect.TypeOf(Experience{})

func experienceHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != experienceType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		return ExperienceText(v), nil
	case float64:
		return ExperienceNumber(v), nil
	case float32:
		return ExperienceNumber(float64(v)), nil
	case int:
		return ExperienceNumber(float64(v)), nil
	case int64:
		return ExperienceNumber(float64(v)), nil
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("experience %q: %w", v, err)
		}
		return ExperienceNumber(n), nil
	case Experience:
		return v, nil
	default:
		return nil, fmt.Errorf("experience must be a string or a number, got %T", data)
	}
}
