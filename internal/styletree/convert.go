// File: internal/styletree/convert.go
//
// Package styletree converts a decoded scene graph into the CSS-flavored style
// tree consumed by code generation. Conversion is pure: it performs no I/O,
// holds no state between calls, and yields the same tree for the same input.
package styletree

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/framesmith/api/schemas"
	"github.com/xkilldash9x/framesmith/internal/scenegraph"
)

const flexStart = "flex-start"

// pending is a node waiting on the work stack together with the element its
// result is appended to.
type pending struct {
	node   scenegraph.Node
	parent *schemas.StyleElement
}

// Convert builds the style tree for root. It returns nil when the root is a
// component instance, which is elided rather than expanded.
//
// Descent is depth-first and pre-order: a node's own attributes are resolved
// before any of its children. An explicit stack replaces call recursion so
// very deep scene graphs cannot exhaust the goroutine stack.
func Convert(root scenegraph.Node) *schemas.StyleElement {
	el, children := convertNode(root)
	if el == nil {
		return nil
	}

	stack := make([]pending, 0, len(children))
	stack = pushReversed(stack, el, children)

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		child, grandchildren := convertNode(top.node)
		if child == nil {
			continue
		}
		// Siblings are pushed in reverse, so they pop (and append) in source order.
		top.parent.Children.Elements = append(top.parent.Children.Elements, child)
		stack = pushReversed(stack, child, grandchildren)
	}
	return el
}

func pushReversed(stack []pending, parent *schemas.StyleElement, nodes []scenegraph.Node) []pending {
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, pending{node: nodes[i], parent: parent})
	}
	return stack
}

// convertNode resolves one node's own attributes. It returns the children that
// still need converting; the element's Children list is pre-allocated for them.
func convertNode(node scenegraph.Node) (*schemas.StyleElement, []scenegraph.Node) {
	if node == nil {
		return nil, nil
	}
	c := node.Base()
	role := Classify(c.Type)
	if _, isInstance := node.(*scenegraph.InstanceNode); isInstance || role == schemas.RoleInstance {
		return nil, nil
	}

	el := &schemas.StyleElement{
		Type:    role,
		Display: schemas.DisplayBlock,
	}
	if c.Name != "" {
		el.FrameName = c.Name
	}

	frame, isFrame := node.(*scenegraph.FrameNode)
	if isFrame {
		applyPadding(el, frame.Padding)
	}

	applyAutoLayout(el, c.Layout)
	applySizing(el, c)

	el.JustifyContent, el.AlignItems = flexStart, flexStart
	if isFrame {
		el.JustifyContent = justifyContent(frame.Alignment.Primary)
		el.AlignItems = alignItems(frame.Alignment.Counter)
	}

	text, isText := node.(*scenegraph.TextNode)
	if isText {
		applyTypography(el, text.Style)
	}

	if color, ok := FillColor(c.Fills); ok {
		el.Color = color
	}
	if c.Opacity != nil && *c.Opacity != 1 {
		el.Opacity = number(*c.Opacity)
	}
	if bg, ok := FillColor(c.Background); ok {
		el.BackgroundColor = bg
	}
	if shadow, ok := BoxShadow(c.Effects); ok {
		el.BoxShadow = shadow
	}
	if c.CornerRadius != nil && *c.CornerRadius != 0 {
		el.BorderRadius = px(*c.CornerRadius)
	}
	applyBorder(el, c)

	if isText {
		el.Children = schemas.TextChildren(text.Characters)
		return el, nil
	}
	if len(c.Children) > 0 {
		el.Children = schemas.ElementChildren(make([]*schemas.StyleElement, 0, len(c.Children)))
		return el, c.Children
	}
	return el, nil
}

func applyPadding(el *schemas.StyleElement, p scenegraph.Padding) {
	el.PaddingLeft = positivePx(p.Left)
	el.PaddingTop = positivePx(p.Top)
	el.PaddingRight = positivePx(p.Right)
	el.PaddingBottom = positivePx(p.Bottom)
}

func applyAutoLayout(el *schemas.StyleElement, l scenegraph.Layout) {
	if !l.Active() {
		return
	}
	el.Display = schemas.DisplayFlex
	if l.Mode == scenegraph.LayoutModeHorizontal {
		el.FlexDirection = "row"
	} else {
		el.FlexDirection = "column"
	}
	if l.Wrap == scenegraph.LayoutWrapWrap {
		el.FlexWrap = "wrap"
	}
	el.Gap = positivePx(l.ItemSpacing)
}

func applySizing(el *schemas.StyleElement, c *scenegraph.Common) {
	var width, height *float64
	if box := c.AbsoluteBoundingBox; box != nil {
		width, height = &box.Width, &box.Height
	}
	el.Width = sizing(c.Layout.SizingHorizontal, width)
	el.Height = sizing(c.Layout.SizingVertical, height)
}

// applyTypography dereferences style unconditionally. A text node without a
// style record violates the input contract and is rejected when decoding.
func applyTypography(el *schemas.StyleElement, style *scenegraph.TypeStyle) {
	el.FontFamily = style.FontFamily
	el.FontSize = px(style.FontSize)
	el.FontWeight = style.FontWeight

	el.LineHeight = "normal"
	if style.LineHeightPx != nil && *style.LineHeightPx != 0 {
		el.LineHeight = px(*style.LineHeightPx)
	}
	el.LetterSpacing = "0"
	if style.LetterSpacing != nil && *style.LetterSpacing != 0 {
		el.LetterSpacing = px(*style.LetterSpacing)
	}
	if style.TextAlignHorizontal != "" {
		el.TextAlign = strings.ToLower(style.TextAlignHorizontal)
	}
}

// applyBorder emits per-side borders when the node carries independent
// weights, otherwise a single border from the uniform weight. Either form
// needs a resolvable solid stroke color.
func applyBorder(el *schemas.StyleElement, c *scenegraph.Common) {
	color, ok := FillColor(c.Strokes)
	if !ok {
		return
	}
	if w := c.IndividualStrokeWeights; w != nil {
		el.BorderTop = borderDecl(w.Top, color)
		el.BorderRight = borderDecl(w.Right, color)
		el.BorderBottom = borderDecl(w.Bottom, color)
		el.BorderLeft = borderDecl(w.Left, color)
		return
	}
	if c.StrokeWeight != nil {
		el.Border = borderDecl(*c.StrokeWeight, color)
	}
}

func borderDecl(weight float64, color string) string {
	if weight <= 0 {
		return ""
	}
	return fmt.Sprintf("%s solid %s", px(weight), color)
}

func positivePx(v *float64) string {
	if v == nil || *v <= 0 {
		return ""
	}
	return px(*v)
}
