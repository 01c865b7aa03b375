// File: internal/styletree/classify.go
package styletree

import (
	"github.com/xkilldash9x/framesmith/api/schemas"
	"github.com/xkilldash9x/framesmith/internal/scenegraph"
)

// Classify maps a native type tag onto a structural role. Unrecognized tags,
// including node kinds the design tool may add later, are plain elements.
func Classify(nativeType string) schemas.Role {
	switch nativeType {
	case scenegraph.TypeInstance:
		return schemas.RoleInstance
	case scenegraph.TypeVector:
		return schemas.RoleVector
	default:
		return schemas.RoleElement
	}
}

// justifyContent maps the primary-axis alignment of a frame.
func justifyContent(a scenegraph.PrimaryAxisAlign) string {
	switch a {
	case scenegraph.PrimaryMax:
		return "flex-end"
	case scenegraph.PrimaryCenter:
		return "center"
	case scenegraph.PrimarySpaceBetween:
		return "space-between"
	case scenegraph.PrimarySpaceAround:
		return "space-around"
	case scenegraph.PrimaryMin:
		return flexStart
	default:
		return flexStart
	}
}

// alignItems maps the counter-axis alignment of a frame.
func alignItems(a scenegraph.CounterAxisAlign) string {
	switch a {
	case scenegraph.CounterMax:
		return "flex-end"
	case scenegraph.CounterCenter:
		return "center"
	case scenegraph.CounterBaseline:
		return "baseline"
	case scenegraph.CounterMin:
		return flexStart
	default:
		return flexStart
	}
}

// sizing maps an axis sizing mode. extent is nil when the node has no
// bounding box; a FIXED axis is then left unset.
func sizing(mode scenegraph.SizingMode, extent *float64) string {
	switch mode {
	case scenegraph.SizingHug:
		return "fit-content"
	case scenegraph.SizingFill:
		return "100%"
	case scenegraph.SizingFixed:
		if extent == nil {
			return ""
		}
		return px(*extent)
	default:
		return ""
	}
}
