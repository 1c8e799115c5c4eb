package generation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/northstar-backend/internal/modules/habits/normalize"
)

var (
	jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

	errNoJSON = errors.New("no JSON object in model output")
)

// ExtractJSON returns the span from the first '{' to the last '}' in text.
func ExtractJSON(text string) (string, error) {
	m := jsonObjectPattern.FindString(text)
	if m == "" {
		return "", errNoJSON
	}
	return m, nil
}

// DecodeHabits parses a {"habits": [...]} payload. Numeric fields may arrive
// as numbers or numeric strings; anything else is a decode error.
func DecodeHabits(payload string) ([]normalize.RawHabit, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	var doc struct {
		Habits []map[string]any `json:"habits"`
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode habits: %w", err)
	}
	if doc.Habits == nil {
		return nil, errors.New("decode habits: missing habits array")
	}
	out := make([]normalize.RawHabit, 0, len(doc.Habits))
	for i, item := range doc.Habits {
		h, err := decodeHabit(item)
		if err != nil {
			return nil, fmt.Errorf("decode habit %d: %w", i, err)
		}
		out = append(out, h)
	}
	return out, nil
}

func decodeHabit(m map[string]any) (normalize.RawHabit, error) {
	var (
		h   normalize.RawHabit
		err error
	)
	if h.Title, err = stringField(m, "title"); err != nil {
		return h, err
	}
	if h.Description, err = stringField(m, "description"); err != nil {
		return h, err
	}
	if h.Category, err = stringField(m, "category"); err != nil {
		return h, err
	}
	if h.Frequency, err = stringField(m, "frequency"); err != nil {
		return h, err
	}
	if h.Phase, _, err = numberField(m, "phase"); err != nil {
		return h, err
	}
	if h.Priority, _, err = numberField(m, "priority"); err != nil {
		return h, err
	}
	d, ok, err := numberField(m, "duration")
	if err != nil {
		return h, err
	}
	if ok {
		h.Duration = &d
	}
	return h, nil
}

func stringField(m map[string]any, key string) (string, error) {
	switch v := m[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("field %q: expected string, got %T", key, v)
	}
}

func numberField(m map[string]any, key string) (float64, bool, error) {
	var (
		f   float64
		err error
	)
	switch v := m[key].(type) {
	case nil:
		return 0, false, nil
	case json.Number:
		f, err = v.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, false, fmt.Errorf("field %q: expected number, got %T", key, v)
	}
	if err != nil {
		return 0, false, fmt.Errorf("field %q: %w", key, err)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false, fmt.Errorf("field %q: not finite", key)
	}
	return f, true, nil
}
