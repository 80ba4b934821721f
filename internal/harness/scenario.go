package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pengineer/internal/record"
)

// Step operations.
const (
	OpSavePrompt   = "save_prompt"
	OpDeletePrompt = "delete_prompt"
	OpSaveList     = "save_list"
	OpDeleteList   = "delete_list"
)

// Step outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Scenario is a sequence of store mutations with expectations.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Subscribers is the number of callbacks registered before the first step.
	Subscribers int `yaml:"subscribers"`

	Steps []Step `yaml:"steps"`

	// Expect is checked after the last step. Optional.
	Expect *FinalState `yaml:"expect,omitempty"`
}

// Step is one mutation.
type Step struct {
	// Op is one of save_prompt, delete_prompt, save_list, delete_list.
	Op string `yaml:"op"`

	// Prompt is the record for save_prompt. An empty id is filled in
	// from a sequential generator ("prompt-1", "prompt-2", ...).
	Prompt *record.Prompt `yaml:"prompt,omitempty"`

	// List is the record for save_list.
	List *record.List `yaml:"list,omitempty"`

	// Key is the id or name for delete_prompt and delete_list.
	Key string `yaml:"key,omitempty"`

	// Expect is the expected outcome. Defaults to "ok".
	Expect string `yaml:"expect,omitempty"`
}

// FinalState lists the keys expected in the cache, in order.
type FinalState struct {
	Prompts []string `yaml:"prompts"`
	Lists   []string `yaml:"lists"`

	// Notifications is the count each subscriber should have received.
	Notifications *int `yaml:"notifications,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Subscribers < 0 {
		return fmt.Errorf("subscribers must not be negative")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	for i, step := range s.Steps {
		switch step.Op {
		case OpSavePrompt:
			if step.Prompt == nil {
				return fmt.Errorf("step %d: %s requires prompt", i, step.Op)
			}
		case OpSaveList:
			if step.List == nil {
				return fmt.Errorf("step %d: %s requires list", i, step.Op)
			}
		case OpDeletePrompt, OpDeleteList:
			if step.Key == "" {
				return fmt.Errorf("step %d: %s requires key", i, step.Op)
			}
		default:
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}

		switch step.Expect {
		case "", OutcomeOK, OutcomeConflict, OutcomeError:
		default:
			return fmt.Errorf("step %d: unknown expect %q", i, step.Expect)
		}
	}
	return nil
}
