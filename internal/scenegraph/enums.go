// File: internal/scenegraph/enums.go
package scenegraph

// The design tool adds enum values over time. Every parser below is total: an
// unrecognized value maps to the Unknown member instead of failing.

// LayoutMode is the auto-layout direction of a node.
type LayoutMode string

const (
	LayoutModeNone       LayoutMode = "NONE"
	LayoutModeHorizontal LayoutMode = "HORIZONTAL"
	LayoutModeVertical   LayoutMode = "VERTICAL"
	LayoutModeUnknown    LayoutMode = ""
)

// ParseLayoutMode maps a raw layoutMode value.
func ParseLayoutMode(s string) LayoutMode {
	switch LayoutMode(s) {
	case LayoutModeNone, LayoutModeHorizontal, LayoutModeVertical:
		return LayoutMode(s)
	default:
		return LayoutModeUnknown
	}
}

// LayoutWrap controls whether auto-layout children wrap.
type LayoutWrap string

const (
	LayoutWrapNoWrap  LayoutWrap = "NO_WRAP"
	LayoutWrapWrap    LayoutWrap = "WRAP"
	LayoutWrapUnknown LayoutWrap = ""
)

// ParseLayoutWrap maps a raw layoutWrap value.
func ParseLayoutWrap(s string) LayoutWrap {
	switch LayoutWrap(s) {
	case LayoutWrapNoWrap, LayoutWrapWrap:
		return LayoutWrap(s)
	default:
		return LayoutWrapUnknown
	}
}

// SizingMode is the per-axis sizing behavior of a node.
type SizingMode string

const (
	SizingHug     SizingMode = "HUG"
	SizingFill    SizingMode = "FILL"
	SizingFixed   SizingMode = "FIXED"
	SizingUnknown SizingMode = ""
)

// ParseSizingMode maps a raw layoutSizingHorizontal/Vertical value.
func ParseSizingMode(s string) SizingMode {
	switch SizingMode(s) {
	case SizingHug, SizingFill, SizingFixed:
		return SizingMode(s)
	default:
		return SizingUnknown
	}
}

// PrimaryAxisAlign is the main-axis distribution of auto-layout children.
type PrimaryAxisAlign string

const (
	PrimaryMin          PrimaryAxisAlign = "MIN"
	PrimaryMax          PrimaryAxisAlign = "MAX"
	PrimaryCenter       PrimaryAxisAlign = "CENTER"
	PrimarySpaceBetween PrimaryAxisAlign = "SPACE_BETWEEN"
	PrimarySpaceAround  PrimaryAxisAlign = "SPACE_AROUND"
	PrimaryUnknown      PrimaryAxisAlign = ""
)

// ParsePrimaryAxisAlign maps a raw primaryAxisAlignItems value.
func ParsePrimaryAxisAlign(s string) PrimaryAxisAlign {
	switch PrimaryAxisAlign(s) {
	case PrimaryMin, PrimaryMax, PrimaryCenter, PrimarySpaceBetween, PrimarySpaceAround:
		return PrimaryAxisAlign(s)
	default:
		return PrimaryUnknown
	}
}

// CounterAxisAlign is the cross-axis alignment of auto-layout children.
type CounterAxisAlign string

const (
	CounterMin      CounterAxisAlign = "MIN"
	CounterMax      CounterAxisAlign = "MAX"
	CounterCenter   CounterAxisAlign = "CENTER"
	CounterBaseline CounterAxisAlign = "BASELINE"
	CounterUnknown  CounterAxisAlign = ""
)

// ParseCounterAxisAlign maps a raw counterAxisAlignItems value.
func ParseCounterAxisAlign(s string) CounterAxisAlign {
	switch CounterAxisAlign(s) {
	case CounterMin, CounterMax, CounterCenter, CounterBaseline:
		return CounterAxisAlign(s)
	default:
		return CounterUnknown
	}
}
