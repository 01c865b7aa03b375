// File: api/schemas/style.go
package schemas

import (
	"bytes"
	"fmt"

	json "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// -- Style Tree Schema --

// Role is the structural classification assigned to every converted scene node,
// independent of the design tool's native type tag.
type Role string

const (
	RoleElement  Role = "element"
	RoleInstance Role = "instance"
	RoleVector   Role = "vector"
)

// Display mirrors the CSS display property. Only block and flex are produced by
// the converter; grid is reserved for future layout modes.
type Display string

const (
	DisplayBlock Display = "block"
	DisplayFlex  Display = "flex"
	DisplayGrid  Display = "grid"
)

// StyleElement is the CSS-flavored description of one scene node and its
// descendants. Optional fields are omitted from serialized output when absent,
// so downstream templating can tell "not specified" apart from "empty".
type StyleElement struct {
	FrameName string  `json:"frameName,omitempty" yaml:"frameName,omitempty"`
	Type      Role    `json:"type" yaml:"type"`
	Display   Display `json:"display" yaml:"display"`

	// Layout
	FlexDirection  string `json:"flexDirection,omitempty" yaml:"flexDirection,omitempty"`
	FlexWrap       string `json:"flexWrap,omitempty" yaml:"flexWrap,omitempty"`
	Gap            string `json:"gap,omitempty" yaml:"gap,omitempty"`
	JustifyContent string `json:"justifyContent,omitempty" yaml:"justifyContent,omitempty"`
	AlignItems     string `json:"alignItems,omitempty" yaml:"alignItems,omitempty"`
	Width          string `json:"width,omitempty" yaml:"width,omitempty"`
	Height         string `json:"height,omitempty" yaml:"height,omitempty"`

	// Box model
	PaddingLeft   string `json:"paddingLeft,omitempty" yaml:"paddingLeft,omitempty"`
	PaddingTop    string `json:"paddingTop,omitempty" yaml:"paddingTop,omitempty"`
	PaddingRight  string `json:"paddingRight,omitempty" yaml:"paddingRight,omitempty"`
	PaddingBottom string `json:"paddingBottom,omitempty" yaml:"paddingBottom,omitempty"`

	// Typography
	FontFamily    string  `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	FontSize      string  `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontWeight    float64 `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
	LineHeight    string  `json:"lineHeight,omitempty" yaml:"lineHeight,omitempty"`
	LetterSpacing string  `json:"letterSpacing,omitempty" yaml:"letterSpacing,omitempty"`
	TextAlign     string  `json:"textAlign,omitempty" yaml:"textAlign,omitempty"`

	// Paint and effects
	Color           string `json:"color,omitempty" yaml:"color,omitempty"`
	Opacity         string `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	BoxShadow       string `json:"boxShadow,omitempty" yaml:"boxShadow,omitempty"`
	BorderRadius    string `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
	BackdropFilter  string `json:"backdropFilter,omitempty" yaml:"backdropFilter,omitempty"`

	// Borders
	Border       string `json:"border,omitempty" yaml:"border,omitempty"`
	BorderLeft   string `json:"borderLeft,omitempty" yaml:"borderLeft,omitempty"`
	BorderRight  string `json:"borderRight,omitempty" yaml:"borderRight,omitempty"`
	BorderTop    string `json:"borderTop,omitempty" yaml:"borderTop,omitempty"`
	BorderBottom string `json:"borderBottom,omitempty" yaml:"borderBottom,omitempty"`

	// InstanceProps is a passthrough bag for downstream extensions.
	InstanceProps map[string]any `json:"instanceProps,omitempty" yaml:"instanceProps,omitempty"`

	Children *Children `json:"children,omitempty" yaml:"children,omitempty"`
}

// Children holds either terminal text content or an ordered list of child
// elements. Exactly one of Text or Elements is meaningful.
type Children struct {
	Text     *string
	Elements []*StyleElement
}

// TextChildren wraps literal character content.
func TextChildren(s string) *Children {
	return &Children{Text: &s}
}

// ElementChildren wraps an ordered element list. A nil list becomes an empty one
// so that a container whose children were all elided still serializes as [].
func ElementChildren(elements []*StyleElement) *Children {
	if elements == nil {
		elements = []*StyleElement{}
	}
	return &Children{Elements: elements}
}

// IsText reports whether the children are terminal text content.
func (c *Children) IsText() bool {
	return c != nil && c.Text != nil
}

// MarshalJSON encodes the union as a JSON string or array.
func (c Children) MarshalJSON() ([]byte, error) {
	if c.Text != nil {
		return json.Marshal(*c.Text)
	}
	if c.Elements == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Elements)
}

// UnmarshalJSON accepts either a JSON string or an array of elements.
func (c *Children) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("children: empty value")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("children: %w", err)
		}
		c.Text, c.Elements = &s, nil
		return nil
	case '[':
		elements := []*StyleElement{}
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return fmt.Errorf("children: %w", err)
		}
		c.Text, c.Elements = nil, elements
		return nil
	default:
		return fmt.Errorf("children: expected string or array, got %q", trimmed[:1])
	}
}

// MarshalYAML encodes the union as a YAML scalar or sequence.
func (c Children) MarshalYAML() (interface{}, error) {
	if c.Text != nil {
		return *c.Text, nil
	}
	if c.Elements == nil {
		return []*StyleElement{}, nil
	}
	return c.Elements, nil
}

// UnmarshalYAML accepts either a scalar or a sequence node.
func (c *Children) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return fmt.Errorf("children: %w", err)
		}
		c.Text, c.Elements = &s, nil
		return nil
	case yaml.SequenceNode:
		elements := []*StyleElement{}
		if err := value.Decode(&elements); err != nil {
			return fmt.Errorf("children: %w", err)
		}
		c.Text, c.Elements = nil, elements
		return nil
	default:
		return fmt.Errorf("children: expected scalar or sequence at line %d", value.Line)
	}
}
