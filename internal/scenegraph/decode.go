// File: internal/scenegraph/decode.go
package scenegraph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	json "github.com/json-iterator/go"
)

var (
	// ErrMalformedNode marks a node that is missing fields required by its
	// declared type. It signals a schema mismatch with the upstream API and
	// is never masked into a default.
	ErrMalformedNode = errors.New("malformed scene node")
	// ErrNodeNotFound is returned when a nodes envelope holds no usable document.
	ErrNodeNotFound = errors.New("scene node not found in response")
)

// Dialect selects which field carries the node-level background paints. The
// API renamed "background" to "backgrounds" between schema revisions.
type Dialect string

const (
	DialectAuto        Dialect = "auto"
	DialectBackground  Dialect = "background"
	DialectBackgrounds Dialect = "backgrounds"
)

// ParseDialect validates a configured dialect name. Empty means auto.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case "", DialectAuto:
		return DialectAuto, nil
	case DialectBackground, DialectBackgrounds:
		return d, nil
	default:
		return "", fmt.Errorf("unknown background dialect %q (want auto, background or backgrounds)", s)
	}
}

// DecodeOptions tunes how raw JSON is mapped onto node variants.
type DecodeOptions struct {
	Dialect Dialect
}

// rawNode mirrors the loosely-typed API record. Pointers distinguish absent
// fields from zero values.
type rawNode struct {
	ID                      string       `json:"id"`
	Name                    string       `json:"name"`
	Type                    string       `json:"type"`
	AbsoluteBoundingBox     *Rect        `json:"absoluteBoundingBox"`
	LayoutMode              *string      `json:"layoutMode"`
	LayoutWrap              string       `json:"layoutWrap"`
	ItemSpacing             *float64     `json:"itemSpacing"`
	PrimaryAxisAlignItems   string       `json:"primaryAxisAlignItems"`
	CounterAxisAlignItems   string       `json:"counterAxisAlignItems"`
	LayoutSizingHorizontal  string       `json:"layoutSizingHorizontal"`
	LayoutSizingVertical    string       `json:"layoutSizingVertical"`
	PaddingLeft             *float64     `json:"paddingLeft"`
	PaddingTop              *float64     `json:"paddingTop"`
	PaddingRight            *float64     `json:"paddingRight"`
	PaddingBottom           *float64     `json:"paddingBottom"`
	Fills                   []Paint      `json:"fills"`
	Strokes                 []Paint      `json:"strokes"`
	Background              []Paint      `json:"background"`
	Backgrounds             []Paint      `json:"backgrounds"`
	Effects                 []Effect     `json:"effects"`
	CornerRadius            *float64     `json:"cornerRadius"`
	StrokeWeight            *float64     `json:"strokeWeight"`
	IndividualStrokeWeights *SideWeights `json:"individualStrokeWeights"`
	Opacity                 *float64     `json:"opacity"`
	Style                   *TypeStyle   `json:"style"`
	Characters              string       `json:"characters"`
	ComponentID             string       `json:"componentId"`
	Children                []*rawNode   `json:"children"`
}

// Decode parses a single raw scene node and its descendants.
func Decode(data []byte, opts DecodeOptions) (Node, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode scene node: %w", err)
	}
	return build(&raw, opts, "")
}

type nodesEnvelope struct {
	Nodes map[string]*struct {
		Document json.RawMessage `json:"document"`
	} `json:"nodes"`
}

// ExtractDocument returns the raw document JSON of one entry in a files/nodes
// API response, together with the id of the entry used. When nodeID does not
// match any key, the entry with the lowest key is used.
func ExtractDocument(data []byte, nodeID string) ([]byte, string, error) {
	var env nodesEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, "", fmt.Errorf("failed to decode nodes response: %w", err)
	}

	id := nodeID
	entry, ok := env.Nodes[id]
	if !ok {
		keys := make([]string, 0, len(env.Nodes))
		for k := range env.Nodes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			id = keys[0]
			entry = env.Nodes[id]
		}
	}
	if entry == nil || len(entry.Document) == 0 || string(entry.Document) == "null" {
		return nil, "", fmt.Errorf("%w: id %q", ErrNodeNotFound, nodeID)
	}
	return entry.Document, id, nil
}

// DecodeResponse extracts and decodes a document node from a files/nodes API
// response. See ExtractDocument for how the entry is chosen.
func DecodeResponse(data []byte, nodeID string, opts DecodeOptions) (Node, error) {
	doc, _, err := ExtractDocument(data, nodeID)
	if err != nil {
		return nil, err
	}
	return Decode(doc, opts)
}

// IsEnvelope reports whether data looks like a files/nodes API response
// rather than a bare node.
func IsEnvelope(data []byte) bool {
	return json.Get(data, "nodes").ValueType() == json.ObjectValue
}

// DecodeDocument accepts either a bare node or a nodes envelope.
func DecodeDocument(data []byte, nodeID string, opts DecodeOptions) (Node, error) {
	if IsEnvelope(data) {
		return DecodeResponse(data, nodeID, opts)
	}
	return Decode(data, opts)
}

func build(raw *rawNode, opts DecodeOptions, path string) (Node, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: null node at %s", ErrMalformedNode, pathOrRoot(path))
	}
	path = path + "/" + describe(raw)

	common := Common{
		ID:                      raw.ID,
		Name:                    raw.Name,
		Type:                    raw.Type,
		AbsoluteBoundingBox:     raw.AbsoluteBoundingBox,
		Fills:                   raw.Fills,
		Strokes:                 raw.Strokes,
		Background:              selectBackground(raw, opts.Dialect),
		Effects:                 raw.Effects,
		CornerRadius:            raw.CornerRadius,
		StrokeWeight:            raw.StrokeWeight,
		IndividualStrokeWeights: raw.IndividualStrokeWeights,
		Opacity:                 raw.Opacity,
		Layout: Layout{
			Wrap:             ParseLayoutWrap(raw.LayoutWrap),
			ItemSpacing:      raw.ItemSpacing,
			SizingHorizontal: ParseSizingMode(raw.LayoutSizingHorizontal),
			SizingVertical:   ParseSizingMode(raw.LayoutSizingVertical),
		},
	}
	if raw.LayoutMode != nil {
		common.Layout.HasMode = true
		common.Layout.Mode = ParseLayoutMode(*raw.LayoutMode)
	}

	switch raw.Type {
	case TypeInstance:
		return &InstanceNode{Common: common, ComponentID: raw.ComponentID}, nil
	case TypeText:
		if raw.Style == nil {
			return nil, fmt.Errorf("%w: text node %s has no style record", ErrMalformedNode, path)
		}
		return &TextNode{Common: common, Style: raw.Style, Characters: raw.Characters}, nil
	}

	children, err := buildChildren(raw.Children, opts, path)
	if err != nil {
		return nil, err
	}
	common.Children = children

	switch raw.Type {
	case TypeFrame:
		return &FrameNode{
			Common: common,
			Padding: Padding{
				Left:   raw.PaddingLeft,
				Top:    raw.PaddingTop,
				Right:  raw.PaddingRight,
				Bottom: raw.PaddingBottom,
			},
			Alignment: Alignment{
				Primary: ParsePrimaryAxisAlign(raw.PrimaryAxisAlignItems),
				Counter: ParseCounterAxisAlign(raw.CounterAxisAlignItems),
			},
		}, nil
	case TypeVector:
		return &VectorNode{Common: common}, nil
	default:
		return &OtherNode{Common: common}, nil
	}
}

func buildChildren(raws []*rawNode, opts DecodeOptions, path string) ([]Node, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	children := make([]Node, 0, len(raws))
	for _, r := range raws {
		child, err := build(r, opts, path)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func selectBackground(raw *rawNode, dialect Dialect) []Paint {
	switch dialect {
	case DialectBackground:
		return raw.Background
	case DialectBackgrounds:
		return raw.Backgrounds
	default:
		if raw.Background != nil {
			return raw.Background
		}
		return raw.Backgrounds
	}
}

func describe(raw *rawNode) string {
	if raw.ID != "" {
		return raw.Type + "(" + raw.ID + ")"
	}
	if raw.Type == "" {
		return "?"
	}
	return raw.Type
}

func pathOrRoot(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
