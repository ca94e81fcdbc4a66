package adventure

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// ErrSchemaViolation is returned when an LLM response does not match the Adventure shape.
var ErrSchemaViolation = errors.New("llm response does not match the adventure schema")

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchemaViolation, fmt.Sprintf(format, args...))
}

// ParseAdventure decodes a raw completion into an Adventure. Every field is
// required and range checked; nothing is defaulted.
func ParseAdventure(raw string) (Adventure, error) {
	payload := stripCodeFence(raw)
	if payload == "" {
		return Adventure{}, violation("empty response")
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return Adventure{}, violation("invalid json object: %v", err)
	}
	if fields == nil {
		return Adventure{}, violation("response is not a json object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Adventure{}, violation("unexpected data after json object")
	}

	var (
		adv Adventure
		err error
	)
	if adv.Title, err = readString(fields, "title"); err != nil {
		return Adventure{}, err
	}
	if adv.Description, err = readString(fields, "description"); err != nil {
		return Adventure{}, err
	}
	if adv.Location, err = readString(fields, "location"); err != nil {
		return Adventure{}, err
	}
	if adv.Tags, err = readTags(fields, "tags"); err != nil {
		return Adventure{}, err
	}
	if adv.Difficulty, err = readString(fields, "difficulty"); err != nil {
		return Adventure{}, err
	}
	duration, err := readNumber(fields, "duration_minutes", 0, math.MaxInt32)
	if err != nil {
		return Adventure{}, err
	}
	if duration != math.Trunc(duration) {
		return Adventure{}, violation("field duration_minutes must be an integer, got %v", duration)
	}
	adv.DurationMinutes = int(duration)
	if adv.DistanceKM, err = readNumber(fields, "distance_km", 0, math.MaxFloat64); err != nil {
		return Adventure{}, err
	}
	if adv.Latitude, err = readNumber(fields, "latitude", -90, 90); err != nil {
		return Adventure{}, err
	}
	if adv.Longitude, err = readNumber(fields, "longitude", -180, 180); err != nil {
		return Adventure{}, err
	}
	return adv, nil
}

func stripCodeFence(raw string) string {
	sanitized := strings.TrimSpace(raw)
	if !strings.HasPrefix(sanitized, "```") {
		return sanitized
	}
	sanitized = strings.TrimPrefix(sanitized, "```")
	sanitized = strings.TrimPrefix(sanitized, "json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	return strings.TrimSpace(sanitized)
}

func lookup(fields map[string]json.RawMessage, name string) (json.RawMessage, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, violation("missing required field %s", name)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, violation("field %s must not be null", name)
	}
	return raw, nil
}

func readString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, err := lookup(fields, name)
	if err != nil {
		return "", err
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", violation("field %s must be a string", name)
	}
	if strings.TrimSpace(value) == "" {
		return "", violation("field %s must not be empty", name)
	}
	return value, nil
}

func readTags(fields map[string]json.RawMessage, name string) ([]string, error) {
	raw, err := lookup(fields, name)
	if err != nil {
		return nil, err
	}
	if raw[0] != '[' {
		return nil, violation("field %s must be an array of strings", name)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, violation("field %s must be an array of strings", name)
	}
	tags := make([]string, 0, len(items))
	for i, item := range items {
		var tag string
		if len(item) == 0 || item[0] != '"' || json.Unmarshal(item, &tag) != nil {
			return nil, violation("field %s[%d] must be a string", name, i)
		}
		if strings.TrimSpace(tag) == "" {
			return nil, violation("field %s[%d] must not be empty", name, i)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func readNumber(fields map[string]json.RawMessage, name string, minVal, maxVal float64) (float64, error) {
	raw, err := lookup(fields, name)
	if err != nil {
		return 0, err
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, violation("field %s must be a number", name)
	}
	if value < minVal || value > maxVal {
		return 0, violation("field %s out of range [%v, %v]: %v", name, minVal, maxVal, value)
	}
	return value, nil
}
