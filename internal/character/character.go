// Package character reads agent character files. Only the fields agentwire
// needs are decoded; the full document is kept as Raw.
package character

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
)

// DefaultName is used when no character file is given or a file has no name.
const DefaultName = "Agent"

// Character is a parsed character file.
type Character struct {
	Name          string   `json:"name"`
	Clients       []string `json:"clients,omitempty"`
	ModelProvider string   `json:"modelProvider,omitempty"`

	Path string          `json:"-"`
	Raw  json.RawMessage `json:"-"`
}

// Default returns the built-in character.
func Default() *Character {
	return &Character{Name: DefaultName}
}

// Parse strips JSONC comments and trailing commas from data, then decodes
// the character fields.
func Parse(data []byte) (*Character, error) {
	stripped := jsonc.ToJSON(data)

	var c Character
	if err := json.Unmarshal(stripped, &c); err != nil {
		return nil, fmt.Errorf("parsing character: %w", err)
	}
	if strings.TrimSpace(c.Name) == "" {
		c.Name = DefaultName
	}
	c.Raw = stripped
	return &c, nil
}

// ReadFile reads and parses one character file.
func ReadFile(fs afero.Fs, path string) (*Character, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Load reads every file in the comma-separated list. An empty list yields
// the default character. The first file that cannot be loaded aborts the
// whole load.
func Load(fs afero.Fs, list string) ([]*Character, error) {
	var out []*Character
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		c, err := ReadFile(fs, p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return []*Character{Default()}, nil
	}
	return out, nil
}

// ErrNoCharacter is returned by Primary on an empty slice.
var ErrNoCharacter = errors.New("no character loaded")

// Primary returns the first character, the one the chat relay talks to.
func Primary(chars []*Character) (*Character, error) {
	if len(chars) == 0 {
		return nil, ErrNoCharacter
	}
	return chars[0], nil
}
