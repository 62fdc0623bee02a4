package conditions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned when a file is neither an actuator dump
// nor a flat mapping of names to booleans.
var ErrUnsupportedFormat = errors.New("unsupported conditions format")

// actuatorReport is the payload of the actuator conditions endpoint. Spring
// Boot 1.x served the matches at the top level; later versions nest them
// per application context.
type actuatorReport struct {
	Contexts        map[string]actuatorContext `json:"contexts"`
	PositiveMatches map[string]json.RawMessage `json:"positiveMatches"`
	NegativeMatches map[string]json.RawMessage `json:"negativeMatches"`
}

type actuatorContext struct {
	PositiveMatches map[string]json.RawMessage `json:"positiveMatches"`
	NegativeMatches map[string]json.RawMessage `json:"negativeMatches"`
}

// LoadFile reads a conditions file.
func LoadFile(path string) (Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening conditions file: %w", err)
	}
	defer func() { _ = f.Close() }()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return m, nil
}

// Load reads either an actuator conditions dump (JSON) or a flat YAML/JSON
// mapping of source name to full match. In an actuator dump positive
// matches are full matches and negative matches are not; a name reported
// as negative in any context is not a full match.
func Load(r io.Reader) (Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading conditions: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Map{}, nil
	}

	if trimmed[0] == '{' {
		var report actuatorReport
		if err := json.Unmarshal(trimmed, &report); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
		}
		if report.isActuator() {
			return report.outcomes(), nil
		}
		var flat map[string]bool
		if err := json.Unmarshal(trimmed, &flat); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
		}
		return Map(flat), nil
	}

	var flat map[string]bool
	if err := yaml.Unmarshal(trimmed, &flat); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if flat == nil {
		return Map{}, nil
	}
	return Map(flat), nil
}

func (r actuatorReport) isActuator() bool {
	return r.Contexts != nil || r.PositiveMatches != nil || r.NegativeMatches != nil
}

func (r actuatorReport) outcomes() Map {
	m := Map{}
	add := func(positive, negative map[string]json.RawMessage) {
		for name := range positive {
			if _, seen := m[name]; !seen {
				m[name] = true
			}
		}
		for name := range negative {
			m[name] = false
		}
	}

	add(r.PositiveMatches, r.NegativeMatches)
	for _, ctx := range r.Contexts {
		add(ctx.PositiveMatches, ctx.NegativeMatches)
	}
	return m
}
