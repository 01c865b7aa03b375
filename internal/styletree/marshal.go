// File: internal/styletree/marshal.go
package styletree

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/framesmith/api/schemas"
)

// Format names a textual encoding of the style tree.
type Format string

const (
	FormatJSON       Format = "json"
	FormatJSONIndent Format = "json-indent"
	FormatYAML       Format = "yaml"
)

// ParseFormat validates a configured format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJSONIndent, FormatYAML:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported style tree format %q (want json, json-indent or yaml)", s)
	}
}

// Extension returns the file extension conventionally used for the format.
func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Marshal encodes a style tree. A nil root (an elided instance) encodes as an
// empty list.
func Marshal(root *schemas.StyleElement, format Format) ([]byte, error) {
	var v interface{} = root
	if root == nil {
		v = []*schemas.StyleElement{}
	}

	switch format {
	case FormatJSON, "":
		return json.Marshal(v)
	case FormatJSONIndent:
		return json.MarshalIndent(v, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode style tree as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to flush yaml encoder: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported style tree format %q", format)
	}
}

// Unmarshal decodes a style tree produced by Marshal. An empty list decodes to nil.
func Unmarshal(data []byte, format Format) (*schemas.StyleElement, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("[]")) {
		return nil, nil
	}

	var el schemas.StyleElement
	switch format {
	case FormatJSON, FormatJSONIndent, "":
		if err := json.Unmarshal(trimmed, &el); err != nil {
			return nil, fmt.Errorf("failed to decode style tree: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(trimmed, &el); err != nil {
			return nil, fmt.Errorf("failed to decode style tree: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported style tree format %q", format)
	}
	return &el, nil
}
