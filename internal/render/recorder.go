package render

import (
	"math"
	"strings"
)

// OpKind names a recorded drawing instruction.
type OpKind string

const (
	OpPage      OpKind = "page"
	OpFont      OpKind = "font"
	OpTextColor OpKind = "textColor"
	OpFillColor OpKind = "fillColor"
	OpLineWidth OpKind = "lineWidth"
	OpText      OpKind = "text"
	OpParagraph OpKind = "paragraph"
	OpLine      OpKind = "line"
	OpRect      OpKind = "rect"
	OpTable     OpKind = "table"
)

// Op is one drawing instruction in emission order.
type Op struct {
	Kind  OpKind  `json:"kind"`
	Page  int     `json:"page"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	X2    float64 `json:"x2,omitempty"`
	Y2    float64 `json:"y2,omitempty"`
	W     float64 `json:"w,omitempty"`
	H     float64 `json:"h,omitempty"`
	Text  string  `json:"text,omitempty"`
	Align Align   `json:"align,omitempty"`
	Fill  bool    `json:"fill,omitempty"`
	Font  *Font   `json:"font,omitempty"`
	Color *Color  `json:"color,omitempty"`
	Table *Table  `json:"table,omitempty"`
	EndY  float64 `json:"endY,omitempty"`
}

// Recorder is a Surface that keeps the instruction list instead of drawing.
// Text width is estimated at half an em per character.
type Recorder struct {
	Ops []Op `json:"ops"`

	width  float64
	height float64
	margin float64
	font   Font
	page   int
}

// NewRecorder starts recording on a page of the given size.
func NewRecorder(width, height, margin float64) *Recorder {
	r := &Recorder{width: width, height: height, margin: margin}
	r.newPage()
	return r
}

func (r *Recorder) newPage() {
	r.page++
	r.Ops = append(r.Ops, Op{Kind: OpPage, Page: r.page})
}

func (r *Recorder) add(op Op) {
	op.Page = r.page
	r.Ops = append(r.Ops, op)
}

// Pages is the number of pages started.
func (r *Recorder) Pages() int { return r.page }

func (r *Recorder) Width() float64 { return r.width }

func (r *Recorder) SetFont(f Font) {
	r.font = f
	r.add(Op{Kind: OpFont, Font: &f})
}

func (r *Recorder) SetTextColor(c Color) { r.add(Op{Kind: OpTextColor, Color: &c}) }

func (r *Recorder) SetFillColor(c Color) { r.add(Op{Kind: OpFillColor, Color: &c}) }

func (r *Recorder) SetLineWidth(w float64) { r.add(Op{Kind: OpLineWidth, W: w}) }

func (r *Recorder) Text(x, y float64, s string, a Align) {
	r.add(Op{Kind: OpText, X: x, Y: y, Text: s, Align: a})
}

func (r *Recorder) Paragraph(x, y, width float64, s string, a Align) float64 {
	n := len(wrap(s, r.chars(r.font, width)))
	end := y + float64(n-1)*r.font.LineHeight()
	r.add(Op{Kind: OpParagraph, X: x, Y: y, W: width, Text: s, Align: a, EndY: end})
	return end
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.add(Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2})
}

func (r *Recorder) Rect(x, y, w, h float64, fill bool) {
	r.add(Op{Kind: OpRect, X: x, Y: y, W: w, H: h, Fill: fill})
}

func (r *Recorder) Bottom() float64 { return r.height - r.margin }

func (r *Recorder) Reserve(y, h float64) float64 {
	if y+h <= r.Bottom() {
		return y
	}
	r.newPage()
	return r.margin + r.font.LineHeight()
}

func (r *Recorder) Table(t Table) float64 {
	r.add(Op{Kind: OpTable, X: t.X, Y: t.Y, Table: &t})
	idx := len(r.Ops) - 1
	y := t.Y + r.rowHeight(t, t.HeadFont, headings(t))
	for _, row := range t.Rows {
		h := r.rowHeight(t, t.Font, row)
		if y+h > r.height-r.margin {
			r.newPage()
			y = r.margin + r.rowHeight(t, t.HeadFont, headings(t))
		}
		y += h
	}
	r.Ops[idx].EndY = y
	return y
}

func (r *Recorder) rowHeight(t Table, f Font, row []string) float64 {
	n := 1
	for i, c := range t.Columns {
		if k := len(wrap(cell(row, i), r.chars(f, c.Width-2*t.Padding))); k > n {
			n = k
		}
	}
	return float64(n)*f.LineHeight() + 2*t.Padding
}

func (r *Recorder) chars(f Font, width float64) int {
	em := f.Size * 0.3528
	if em <= 0 {
		return math.MaxInt32
	}
	n := int(width / (em / 2))
	if n < 1 {
		return 1
	}
	return n
}

// wrap breaks s on newlines and then greedily on spaces so that no line is
// longer than max characters, except single words that cannot be split.
func wrap(s string, max int) []string {
	var out []string
	for _, seg := range strings.Split(s, "\n") {
		line := ""
		for _, w := range strings.Fields(seg) {
			switch {
			case line == "":
				line = w
			case len(line)+1+len(w) <= max:
				line += " " + w
			default:
				out = append(out, line)
				line = w
			}
		}
		out = append(out, line)
	}
	return out
}

// Texts returns the strings of every text and paragraph instruction.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpText || op.Kind == OpParagraph {
			out = append(out, op.Text)
		}
	}
	return out
}

// Find returns the first text or paragraph instruction starting with prefix.
func (r *Recorder) Find(prefix string) (Op, bool) {
	for _, op := range r.Ops {
		if (op.Kind == OpText || op.Kind == OpParagraph) && strings.HasPrefix(op.Text, prefix) {
			return op, true
		}
	}
	return Op{}, false
}

// Tables returns the recorded tables in order.
func (r *Recorder) Tables() []Table {
	var out []Table
	for _, op := range r.Ops {
		if op.Kind == OpTable {
			out = append(out, *op.Table)
		}
	}
	return out
}
