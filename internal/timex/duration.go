// Package timex provides a Duration type that can be decoded from JSON and
// YAML config files, accepting both Go duration strings ("15m", "1h30m") and
// integer nanosecond counts.
package timex

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDuration is returned when a config value cannot be interpreted
// as a duration.
var ErrInvalidDuration = errors.New("invalid duration")

// Duration wraps time.Duration for use in config file DTOs.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return ErrInvalidDuration
	}
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return ErrInvalidDuration
	}
	if parsed, err := time.ParseDuration(node.Value); err == nil {
		d.Duration = parsed
		return nil
	}
	if nanos, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		d.Duration = time.Duration(nanos)
		return nil
	}
	return ErrInvalidDuration
}
