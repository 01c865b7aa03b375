// File: internal/scenegraph/node.go
//
// Package scenegraph models the design tool's scene graph as a closed set of
// node variants. Each variant carries only the fields that are legitimately
// present for its role, so consumers switch on the concrete type instead of
// probing an open-ended record for field membership.
package scenegraph

// Native type tags used by the design tool.
const (
	TypeFrame    = "FRAME"
	TypeText     = "TEXT"
	TypeInstance = "INSTANCE"
	TypeVector   = "VECTOR"
)

// Node is implemented by FrameNode, TextNode, InstanceNode, VectorNode and OtherNode.
type Node interface {
	// Base exposes the fields shared by every variant.
	Base() *Common
	sealed()
}

// Rect is an absolute bounding box in canvas pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Vector is a 2D offset.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Color channels are in the 0..1 range.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Paint is a fill or stroke definition.
type Paint struct {
	Type    string   `json:"type"`
	Visible *bool    `json:"visible,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Color   *Color   `json:"color,omitempty"`
}

// IsVisible reports whether the paint is not explicitly hidden.
func (p Paint) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

// Effect is a visual effect such as a shadow or blur.
type Effect struct {
	Type    string   `json:"type"`
	Visible *bool    `json:"visible,omitempty"`
	Color   *Color   `json:"color,omitempty"`
	Offset  *Vector  `json:"offset,omitempty"`
	Radius  *float64 `json:"radius,omitempty"`
}

// SideWeights holds independent per-side stroke weights.
type SideWeights struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Layout groups the auto-layout and sizing declarations of a node.
type Layout struct {
	// HasMode is false when the node carries no layoutMode field at all.
	HasMode          bool
	Mode             LayoutMode
	Wrap             LayoutWrap
	ItemSpacing      *float64
	SizingHorizontal SizingMode
	SizingVertical   SizingMode
}

// Active reports whether auto-layout is switched on.
func (l Layout) Active() bool {
	return l.HasMode && l.Mode != LayoutModeNone
}

// Common holds the fields every variant may carry.
type Common struct {
	ID                      string
	Name                    string
	Type                    string
	AbsoluteBoundingBox     *Rect
	Layout                  Layout
	Fills                   []Paint
	Strokes                 []Paint
	Background              []Paint
	Effects                 []Effect
	CornerRadius            *float64
	StrokeWeight            *float64
	IndividualStrokeWeights *SideWeights
	Opacity                 *float64
	Children                []Node
}

// Base implements Node.
func (c *Common) Base() *Common { return c }

func (c *Common) sealed() {}

// Padding values are in pixels; nil means the field was absent.
type Padding struct {
	Left   *float64
	Top    *float64
	Right  *float64
	Bottom *float64
}

// Alignment holds the auto-layout alignment of a frame's children.
type Alignment struct {
	Primary PrimaryAxisAlign
	Counter CounterAxisAlign
}

// FrameNode is a container with box padding and child alignment.
type FrameNode struct {
	Common
	Padding   Padding
	Alignment Alignment
}

// TypeStyle is the typography record of a text node.
type TypeStyle struct {
	FontFamily          string   `json:"fontFamily"`
	FontSize            float64  `json:"fontSize"`
	FontWeight          float64  `json:"fontWeight"`
	LineHeightPx        *float64 `json:"lineHeightPx,omitempty"`
	LetterSpacing       *float64 `json:"letterSpacing,omitempty"`
	TextAlignHorizontal string   `json:"textAlignHorizontal,omitempty"`
}

// TextNode is terminal text content. Its raw children, if any, are never decoded.
type TextNode struct {
	Common
	Style      *TypeStyle
	Characters string
}

// InstanceNode is an opaque use of a reusable component. Its internal
// structure is never decoded.
type InstanceNode struct {
	Common
	ComponentID string
}

// VectorNode is a vector shape.
type VectorNode struct {
	Common
}

// OtherNode covers every native type without a dedicated variant.
type OtherNode struct {
	Common
}
