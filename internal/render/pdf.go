package render

import (
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFSurface draws onto a gofpdf document.
type PDFSurface struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	width  float64
	height float64
	margin float64
	font   Font
}

// NewPDFSurface starts a single-page document of the given size in
// millimetres. stamp is written as both creation and modification date so
// that identical input yields identical bytes.
func NewPDFSurface(width, height, margin float64, stamp time.Time) *PDFSurface {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetCellMargin(0)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.AddPage()
	return &PDFSurface{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		width:  width,
		height: height,
		margin: margin,
	}
}

// SetInfo fills the document title and author.
func (p *PDFSurface) SetInfo(title, author string) {
	p.pdf.SetTitle(title, true)
	p.pdf.SetAuthor(author, true)
	p.pdf.SetCreator("pharmabill", false)
}

func (p *PDFSurface) Width() float64 { return p.width }

func (p *PDFSurface) SetFont(f Font) {
	p.font = f
	p.pdf.SetFont(f.Family, f.Style, f.Size)
}

func (p *PDFSurface) SetTextColor(c Color) { p.pdf.SetTextColor(c.R, c.G, c.B) }

func (p *PDFSurface) SetFillColor(c Color) { p.pdf.SetFillColor(c.R, c.G, c.B) }

func (p *PDFSurface) SetLineWidth(w float64) { p.pdf.SetLineWidth(w) }

func (p *PDFSurface) Text(x, y float64, s string, a Align) {
	p.text(x, y, p.tr(fold(s)), a)
}

// text draws an already translated string.
func (p *PDFSurface) text(x, y float64, s string, a Align) {
	switch a {
	case AlignCenter:
		x -= p.pdf.GetStringWidth(s) / 2
	case AlignRight:
		x -= p.pdf.GetStringWidth(s)
	}
	p.pdf.Text(x, y, s)
}

func (p *PDFSurface) Paragraph(x, y, width float64, s string, a Align) float64 {
	lh := p.font.LineHeight()
	lines := p.lines(s, width)
	for i, ln := range lines {
		ax := x
		switch a {
		case AlignCenter:
			ax = x + width/2
		case AlignRight:
			ax = x + width
		}
		p.text(ax, y+float64(i)*lh, ln, a)
	}
	return y + float64(len(lines)-1)*lh
}

// lines wraps s to width with the current font and returns translated lines.
// There is always at least one line.
func (p *PDFSurface) lines(s string, width float64) []string {
	var out []string
	for _, seg := range strings.Split(fold(s), "\n") {
		if seg == "" {
			out = append(out, "")
			continue
		}
		for _, ln := range p.pdf.SplitText(seg, width) {
			out = append(out, p.tr(ln))
		}
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

func (p *PDFSurface) Line(x1, y1, x2, y2 float64) { p.pdf.Line(x1, y1, x2, y2) }

func (p *PDFSurface) Rect(x, y, w, h float64, fill bool) {
	style := "D"
	if fill {
		style = "F"
	}
	p.pdf.Rect(x, y, w, h, style)
}

func (p *PDFSurface) Bottom() float64 { return p.height - p.margin }

func (p *PDFSurface) Reserve(y, h float64) float64 {
	if y+h <= p.Bottom() {
		return y
	}
	p.pdf.AddPage()
	return p.margin + p.font.LineHeight()
}

func (p *PDFSurface) Table(t Table) float64 {
	saved := p.font
	y := p.tableRow(t, t.Y, headings(t), true)
	for _, row := range t.Rows {
		p.SetFont(t.Font)
		h := p.rowHeight(t, row)
		if y+h > p.height-p.margin {
			p.pdf.AddPage()
			y = p.tableRow(t, p.margin, headings(t), true)
		}
		y = p.tableRow(t, y, row, false)
	}
	if !t.Grid && len(t.Rows) > 0 {
		p.pdf.Line(t.X, y, t.X+t.Width(), y)
	}
	p.SetFont(saved)
	return y
}

func headings(t Table) []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Head
	}
	return out
}

func (p *PDFSurface) rowHeight(t Table, row []string) float64 {
	n := 1
	for i, c := range t.Columns {
		if k := len(p.lines(cell(row, i), c.Width-2*t.Padding)); k > n {
			n = k
		}
	}
	return float64(n)*p.font.LineHeight() + 2*t.Padding
}

// tableRow draws one row at y and returns the y below it.
func (p *PDFSurface) tableRow(t Table, y float64, row []string, head bool) float64 {
	if head {
		p.SetFont(t.HeadFont)
	} else {
		p.SetFont(t.Font)
	}
	h := p.rowHeight(t, row)
	lh := p.font.LineHeight()
	fill := head && t.HeadFill != nil
	if fill {
		p.SetFillColor(*t.HeadFill)
		p.SetTextColor(t.HeadText)
	}
	x := t.X
	for i, c := range t.Columns {
		if fill {
			p.pdf.Rect(x, y, c.Width, h, "F")
		}
		if t.Grid {
			p.pdf.Rect(x, y, c.Width, h, "D")
		}
		for j, ln := range p.lines(cell(row, i), c.Width-2*t.Padding) {
			base := y + t.Padding + float64(j)*lh + lh*0.75
			switch c.Align {
			case AlignCenter:
				p.text(x+c.Width/2, base, ln, AlignCenter)
			case AlignRight:
				p.text(x+c.Width-t.Padding, base, ln, AlignRight)
			default:
				p.text(x+t.Padding, base, ln, AlignLeft)
			}
		}
		x += c.Width
	}
	if fill {
		p.SetTextColor(black)
	}
	if head && !t.Grid {
		p.pdf.Line(t.X, y+h, t.X+t.Width(), y+h)
	}
	return y + h
}

// PageCount is the number of pages started so far.
func (p *PDFSurface) PageCount() int { return p.pdf.PageCount() }

// Output writes the finished document.
func (p *PDFSurface) Output(w io.Writer) error {
	return p.pdf.Output(w)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// fold replaces runes outside Latin-1, which the core fonts cannot measure.
func fold(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xff {
			return '?'
		}
		return r
	}, s)
}
