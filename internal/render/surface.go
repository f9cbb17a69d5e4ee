package render

import "math"

// Align is the horizontal anchor of a text run relative to its x coordinate.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) MarshalText() ([]byte, error) {
	switch a {
	case AlignCenter:
		return []byte("center"), nil
	case AlignRight:
		return []byte("right"), nil
	default:
		return []byte("left"), nil
	}
}

// Font selects a core PDF font. Style is "", "B", "I" or "BI".
type Font struct {
	Family string  `json:"family"`
	Style  string  `json:"style,omitempty"`
	Size   float64 `json:"size"`
}

// Bold returns the same font in bold.
func (f Font) Bold() Font {
	f.Style = "B"
	return f
}

// Sized returns the same font at another point size.
func (f Font) Sized(size float64) Font {
	f.Size = size
	return f
}

// LineHeight is the baseline-to-baseline distance in millimetres.
func (f Font) LineHeight() float64 {
	return math.Round(f.Size*0.3528*1.2*100) / 100
}

// Color is an RGB triple.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	black = Color{}
	white = Color{R: 255, G: 255, B: 255}
)

// Column describes one table column.
type Column struct {
	Head  string  `json:"head"`
	Width float64 `json:"width"`
	Align Align   `json:"align"`
}

// Table is a grid of pre-formatted cells. Rows never break across pages.
type Table struct {
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Columns  []Column   `json:"columns"`
	Rows     [][]string `json:"rows"`
	Font     Font       `json:"font"`
	HeadFont Font       `json:"headFont"`
	HeadFill *Color     `json:"headFill,omitempty"`
	HeadText Color      `json:"headText"`
	Padding  float64    `json:"padding"`
	Grid     bool       `json:"grid"`
}

// Width is the sum of the column widths.
func (t Table) Width() float64 {
	var w float64
	for _, c := range t.Columns {
		w += c.Width
	}
	return w
}

// Surface is the drawing target of the layout engine. Coordinates are
// millimetres from the top-left corner of the current page and text y is the
// baseline. Implementations own pagination.
type Surface interface {
	Width() float64
	SetFont(f Font)
	SetTextColor(c Color)
	SetFillColor(c Color)
	SetLineWidth(w float64)
	Text(x, y float64, s string, a Align)
	// Paragraph wraps s to width and returns the baseline of its last line.
	Paragraph(x, y, width float64, s string, a Align) float64
	Line(x1, y1, x2, y2 float64)
	Rect(x, y, w, h float64, fill bool)
	// Table draws t, breaking pages between rows, and returns the y at
	// which the table ended on the last page it touched.
	Table(t Table) float64
	// Reserve returns y unchanged when h millimetres fit below it on the
	// current page; otherwise it starts a new page and returns its top.
	Reserve(y, h float64) float64
	// Bottom is the lowest printable y of a page.
	Bottom() float64
}
