// Package catalog describes the providers and models a chat can target.
package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/BurntSushi/toml"
)

type Provider struct {
	ID      string `json:"id" toml:"id"`
	Name    string `json:"name" toml:"name"`
	Status  string `json:"status" toml:"status"`
	Enabled bool   `json:"enabled" toml:"enabled"`
}

type Model struct {
	ID          string `json:"id" toml:"id"`
	Name        string `json:"name" toml:"name"`
	Summary     string `json:"summary,omitempty" toml:"summary,omitempty"`
	Description string `json:"description,omitempty" toml:"description,omitempty"`
	Provider    string `json:"provider" toml:"provider"`
}

type ModelGroup struct {
	ID     string  `json:"id" toml:"id"`
	Label  string  `json:"label" toml:"label"`
	Models []Model `json:"models" toml:"models"`
}

type Defaults struct {
	Model       string  `json:"model" toml:"model"`
	Temperature float64 `json:"temperature" toml:"temperature"`
	MaxTokens   int     `json:"maxTokens" toml:"max_tokens"`

	// Set when decoded from JSON; which numeric fields the payload carried
	decoded        bool
	hasTemperature bool
	hasMaxTokens   bool
}

// UnmarshalJSON keeps only numeric temperature and maxTokens values and
// records which of them were present.
func (d *Defaults) UnmarshalJSON(data []byte) error {
	var wire struct {
		Model       json.RawMessage `json:"model"`
		Temperature json.RawMessage `json:"temperature"`
		MaxTokens   json.RawMessage `json:"maxTokens"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*d = Defaults{decoded: true}
	_ = json.Unmarshal(wire.Model, &d.Model)

	var temperature float64
	if len(wire.Temperature) > 0 && json.Unmarshal(wire.Temperature, &temperature) == nil {
		d.Temperature = temperature
		d.hasTemperature = true
	}

	var maxTokens float64
	if len(wire.MaxTokens) > 0 && json.Unmarshal(wire.MaxTokens, &maxTokens) == nil &&
		maxTokens == math.Trunc(maxTokens) && maxTokens >= 0 && maxTokens <= math.MaxInt32 {
		d.MaxTokens = int(maxTokens)
		d.hasMaxTokens = true
	}
	return nil
}

// HasTemperature reports whether Temperature carries a value. Defaults
// built in code are a complete block unless entirely empty.
func (d Defaults) HasTemperature() bool {
	if d.decoded {
		return d.hasTemperature
	}
	return !d.isZero()
}

// HasMaxTokens reports whether MaxTokens carries a value.
func (d Defaults) HasMaxTokens() bool {
	if d.decoded {
		return d.hasMaxTokens
	}
	return !d.isZero()
}

func (d Defaults) isZero() bool {
	return d.Model == "" && d.Temperature == 0 && d.MaxTokens == 0
}

// Config is the body of GET /api/config.
type Config struct {
	Providers   []Provider   `json:"providers"`
	ModelGroups []ModelGroup `json:"modelGroups"`
	Defaults    Defaults     `json:"defaults"`
}

// ProviderIDs lists every provider an API key can be stored for, in display order.
var ProviderIDs = []string{"openai", "anthropic", "google", "perplexity", "deepseek"}

// ProviderNames maps provider ids to display names.
var ProviderNames = map[string]string{
	"openai":     "OpenAI",
	"anthropic":  "Anthropic",
	"google":     "Google",
	"perplexity": "Perplexity",
	"deepseek":   "DeepSeek",
}

func DefaultDefaults() Defaults {
	return Defaults{
		Model:       "gpt-4o",
		Temperature: 0.7,
		MaxTokens:   2000,
	}
}

// Find returns the model with the given id across all groups.
func Find(groups []ModelGroup, id string) (Model, bool) {
	for _, g := range groups {
		for _, m := range g.Models {
			if m.ID == id {
				return m, true
			}
		}
	}
	return Model{}, false
}

// First returns the first model of the first non-empty group.
func First(groups []ModelGroup) (Model, bool) {
	for _, g := range groups {
		if len(g.Models) > 0 {
			return g.Models[0], true
		}
	}
	return Model{}, false
}

// All flattens groups in order.
func All(groups []ModelGroup) []Model {
	var models []Model
	for _, g := range groups {
		models = append(models, g.Models...)
	}
	return models
}

// Label renders a model the way pickers show it: "Name (summary)".
func Label(m Model) string {
	if m.Summary == "" {
		return m.Name
	}
	return fmt.Sprintf("%s (%s)", m.Name, m.Summary)
}

type catalogFile struct {
	Groups []ModelGroup `toml:"groups"`
}

// LoadFile reads model groups from a TOML file:
//
//	[[groups]]
//	id = "openai-chat"
//	label = "OpenAI - Chat"
//	  [[groups.models]]
//	  id = "gpt-4o"
//	  name = "GPT-4o"
//	  provider = "openai"
func LoadFile(path string) ([]ModelGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var f catalogFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(f.Groups) == 0 {
		return nil, fmt.Errorf("catalog %s has no model groups", path)
	}
	return f.Groups, nil
}
