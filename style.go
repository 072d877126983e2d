package trellis

// StateColor holds a color for the default and selected states.
type StateColor struct {
	Default  Color
	Selected Color
}

// NodeStyle is the visual style of a node. It is resolved once when the node
// is created and never recomputed.
type NodeStyle struct {
	Background   StateColor
	Outline      StateColor
	OutlineWidth float64
}

var nodeStylePalette = [...]NodeStyle{
	paletteStyle(38, 70, 83),
	paletteStyle(42, 157, 143),
	paletteStyle(233, 196, 106),
	paletteStyle(244, 162, 97),
	paletteStyle(231, 111, 81),
}

func paletteStyle(r, g, b float64) NodeStyle {
	return NodeStyle{
		Background: StateColor{
			Default:  ColorRGBA255(r, g, b, 255),
			Selected: ColorRGBA255(r+10, g+10, b+10, 255),
		},
		Outline: StateColor{
			Default:  Color{},
			Selected: Color{1, 1, 1, 1},
		},
		OutlineWidth: 2,
	}
}

// styleForID picks a palette entry from a 31-multiplier string hash of the id.
func styleForID(id ElementID) NodeStyle {
	var hash uint32
	for _, c := range []byte(id.String()) {
		hash = hash*31 + uint32(c)
	}
	return nodeStylePalette[hash%uint32(len(nodeStylePalette))]
}

var (
	defaultHandleColor = ColorRGBA255(160, 160, 160, 160)
	defaultEdgeColor   = Color{1, 0, 84.0 / 255, 1}
)

const defaultHandleRadius = 6.0
