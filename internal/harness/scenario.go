package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/holoplot/go-evremap"
	"github.com/holoplot/go-evremap/key"
)

// Scenario is a scripted sequence of physical key events.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario shows.
	Description string `yaml:"description"`

	// AltLayout starts the engine with the alternate base layout.
	AltLayout bool `yaml:"alt_layout"`

	// Events are "<state> <key>" strings, e.g. "down CAPSLOCK".
	Events []string `yaml:"events"`
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Events) == 0 {
		return fmt.Errorf("events list is required and must be non-empty")
	}

	for i, ev := range s.Events {
		if _, err := ParseEvent(ev); err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}
	}

	return nil
}

// ParseEvent parses a "<state> <key>" string.
func ParseEvent(s string) (evremap.KeyEvent, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return evremap.KeyEvent{}, fmt.Errorf("want \"<state> <key>\", got %q", s)
	}

	var st evremap.KeyState
	switch strings.ToLower(fields[0]) {
	case "down":
		st = evremap.KeyDown
	case "up":
		st = evremap.KeyUp
	case "repeat":
		st = evremap.KeyRepeat
	default:
		return evremap.KeyEvent{}, fmt.Errorf("unknown key state %q", fields[0])
	}

	code, err := key.Parse(fields[1])
	if err != nil {
		return evremap.KeyEvent{}, err
	}

	return evremap.KeyEvent{Code: code, State: st}, nil
}
