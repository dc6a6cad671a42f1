package cup

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"
)

// LoadFromBytes parses a YAML cup document and validates it. A document
// starting with '{' is decoded as JSON with DecodeJSON.
func LoadFromBytes(data []byte) (*Cup, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return DecodeJSON(data)
	}
	var c Cup
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing cup: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DecodeJSON parses a JSON cup document and validates it.
func DecodeJSON(data []byte) (*Cup, error) {
	var c Cup
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "decoding cup json")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// EncodeJSON renders c as indented JSON.
func EncodeJSON(c *Cup) ([]byte, error) {
	bz, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "encoding cup json")
	}
	return bz, nil
}

// LoadFromFile reads a cup document. Files ending in .json are decoded as
// JSON, everything else as YAML.
func LoadFromFile(path string) (*Cup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cup file: %w", err)
	}
	if isJSON(path) {
		return DecodeJSON(data)
	}
	return LoadFromBytes(data)
}

// SaveToFile writes c to path, choosing the encoding from the extension.
func SaveToFile(c *Cup, path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = EncodeJSON(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("encoding cup: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing cup file: %w", err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Clone returns a deep copy of c that shares no memory with it.
func (c *Cup) Clone() (*Cup, error) {
	var out Cup
	if err := deepcopy.Copy(&out, c); err != nil {
		return nil, fmt.Errorf("copying cup: %w", err)
	}
	return &out, nil
}
