package layout

// Size is the measured size of one tag.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is the top-left position of one placed tag.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PackResult struct {
	Positions []Point `json:"positions"`
	TotalSize Size    `json:"totalSize"`
}

// Pack lays out variable-width tags into rows, greedy, single pass,
// left-to-right and top-to-bottom. Items are never reordered and never
// shrunk: an item wider than maxWidth is placed alone on its own line,
// even if it overflows.
func Pack(items []Size, maxWidth, spacing float64) PackResult {
	positions := make([]Point, 0, len(items))
	if len(items) == 0 {
		return PackResult{Positions: positions}
	}

	var x, y, lineHeight, maxRight float64
	for _, item := range items {
		if x+item.Width > maxWidth && x > 0 {
			x = 0
			y += lineHeight + spacing
			lineHeight = 0
		}

		positions = append(positions, Point{X: x, Y: y})

		if right := x + item.Width; right > maxRight {
			maxRight = right
		}
		x += item.Width + spacing
		if item.Height > lineHeight {
			lineHeight = item.Height
		}
	}

	return PackResult{
		Positions: positions,
		TotalSize: Size{Width: maxRight, Height: y + lineHeight},
	}
}
