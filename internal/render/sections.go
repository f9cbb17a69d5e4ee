package render

import "strings"

const termsLabel = "TERMS: Credit"

type painter struct {
	s Surface
	l Layout
	d sheet
	w float64
	m float64
}

// paint emits every section top to bottom.
func paint(s Surface, l Layout, d sheet) {
	p := painter{s: s, l: l, d: d, w: s.Width(), m: l.Margin}
	s.SetLineWidth(0.1)
	s.SetTextColor(black)

	var y float64
	if l.Receipt {
		y = p.receiptHeader()
		y = p.receiptMeta(y)
	} else {
		y = p.header()
		y = p.meta(y)
	}
	y = p.items(y)
	y = p.summary(y + 5)
	y = p.amountInWords(y)
	p.signature(y + 8)
}

func (p painter) font(size float64) Font { return p.l.Font.Sized(size) }

func (p painter) header() float64 {
	s, pr, w, m := p.s, p.d.profile, p.w, p.m

	s.SetFont(p.font(8).Bold())
	s.Text(m, 10, "GSTIN No. "+pr.GSTIN, AlignLeft)
	s.Text(w/2, 10, p.l.Title, AlignCenter)
	s.Text(w-m, 10, p.d.copy, AlignRight)
	s.Line(m, 12, w-m, 12)

	if p.l.Accent {
		s.SetFillColor(accent(pr.Theme))
		s.Rect(m, 14, w-2*m, 12, true)
		s.SetTextColor(white)
	}
	s.SetFont(p.font(18).Bold())
	s.Text(w/2, 22, pr.CompanyName, AlignCenter)
	s.SetFont(p.font(9).Bold())
	s.Text(w-m-2, 22, pr.Phone, AlignRight)
	if p.l.Accent {
		s.SetTextColor(black)
	}

	s.SetFont(p.font(9))
	s.Text(w/2, 30, pr.AddressLine1, AlignCenter)
	s.Text(w/2, 34, pr.AddressLine2, AlignCenter)
	s.SetFont(p.font(7))
	s.Text(w/2, 38, licences(pr.DrugLicences()), AlignCenter)
	s.SetFont(p.font(9).Bold())
	s.Text(w-m-2, 38, termsLabel, AlignRight)

	s.Line(m, 42, w-m, 42)
	return 44
}

func licences(dl []string) string {
	parts := make([]string, len(dl))
	for i, s := range dl {
		parts[i] = "(" + s + ")"
	}
	return strings.Join(parts, " ")
}

// meta draws the purchaser box on the left and the four invoice boxes on the
// right. Labels are printed even when the value is empty.
func (p painter) meta(y float64) float64 {
	s, inv, w, m := p.s, p.d.inv, p.w, p.m
	const boxW, boxH = 80.0, 8.0
	left := w - 2*m - boxW
	rx := m + left

	s.Rect(m, y, left, 4*boxH, false)
	for i := 0; i < 4; i++ {
		s.Rect(rx, y+float64(i)*boxH, boxW, boxH, false)
	}

	s.SetFont(p.font(8))
	s.Text(m+2, y+4, "Purchaser's Name and Address", AlignLeft)
	s.SetFont(p.font(9).Bold())
	s.Text(m+2, y+9, inv.PartyName, AlignLeft)
	s.SetFont(p.font(8))
	s.Paragraph(m+2, y+14, left-10, inv.PartyAddress, AlignLeft)
	s.Text(m+2, y+28, "GSTIN - "+inv.PartyGSTIN, AlignLeft)

	s.Text(rx+2, y+6, "INVOICE NO. "+inv.InvoiceNo, AlignLeft)
	s.Text(w-m-2, y+6, "DATE: "+displayDate(inv.Date), AlignRight)
	s.Text(rx+2, y+14, "GR No. "+inv.GRNo, AlignLeft)
	s.Text(rx+2, y+22, "Vehicle No. "+inv.VehicleNo, AlignLeft)
	s.Text(rx+2, y+30, "TRANSPORT: "+inv.Transport, AlignLeft)
	return y + 4*boxH + 4
}

func (p painter) receiptHeader() float64 {
	s, pr, w, m := p.s, p.d.profile, p.w, p.m
	inner := w - 2*m

	y := m + 4
	s.SetFont(p.font(10).Bold())
	y = s.Paragraph(m, y, inner, pr.CompanyName, AlignCenter)

	s.SetFont(p.font(7))
	lh := p.font(7).LineHeight()
	y = s.Paragraph(m, y+lh, inner, pr.AddressLine1, AlignCenter)
	y = s.Paragraph(m, y+lh, inner, pr.AddressLine2, AlignCenter)
	y = s.Paragraph(m, y+lh, inner, "GSTIN: "+pr.GSTIN, AlignCenter)
	y = s.Paragraph(m, y+lh, inner, "Ph: "+pr.Phone, AlignCenter)
	if dl := pr.DrugLicences(); len(dl) > 0 {
		y = s.Paragraph(m, y+lh, inner, "DL: "+strings.Join(dl, ", "), AlignCenter)
	}

	y += lh + 1
	s.SetFont(p.font(9).Bold())
	s.Text(w/2, y, p.l.Title, AlignCenter)
	s.SetFont(p.font(7))
	y += lh
	s.Text(w/2, y, p.d.copy, AlignCenter)
	s.Text(w/2, y+lh, termsLabel, AlignCenter)
	y += lh + 1.5
	s.Line(m, y, w-m, y)
	return y + lh
}

func (p painter) receiptMeta(y float64) float64 {
	s, inv, w, m := p.s, p.d.inv, p.w, p.m
	inner := w - 2*m
	lh := p.font(7).LineHeight()

	s.SetFont(p.font(7))
	s.Text(m, y, "Invoice No: "+inv.InvoiceNo, AlignLeft)
	s.Text(w-m, y, "Date: "+displayDate(inv.Date), AlignRight)
	y += lh
	s.SetFont(p.font(7).Bold())
	y = s.Paragraph(m, y, inner, "Party: "+inv.PartyName, AlignLeft)
	s.SetFont(p.font(7))
	y = s.Paragraph(m, y+lh, inner, inv.PartyAddress, AlignLeft)
	for _, ln := range []string{
		"GSTIN: " + inv.PartyGSTIN,
		"GR No: " + inv.GRNo,
		"Vehicle No: " + inv.VehicleNo,
		"Transport: " + inv.Transport,
	} {
		y += lh
		s.Text(m, y, ln, AlignLeft)
	}
	y += 1.5
	s.Line(m, y, w-m, y)
	return y + 1
}

// items draws the line item table and returns the y where it ended.
func (p painter) items(y float64) float64 {
	cols := p.l.columns(p.d.summary.Totals.Interstate())
	t := Table{
		X:        p.m,
		Y:        y,
		Font:     p.l.TableFont,
		HeadFont: p.l.TableFont.Bold(),
		HeadText: black,
		Padding:  1,
		Grid:     p.l.Grid,
	}
	if p.l.Receipt {
		t.Padding = 0.5
	}
	for _, c := range cols {
		t.Columns = append(t.Columns, c.Column)
	}
	t.Rows = make([][]string, 0, len(p.d.inv.Items))
	for i, it := range p.d.inv.Items {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = c.cell(i+1, it)
		}
		t.Rows = append(t.Rows, row)
	}
	if p.l.Accent {
		fill := accent(p.d.profile.Theme)
		t.HeadFill = &fill
		t.HeadText = white
	}
	return p.s.Table(t)
}

type amountLine struct {
	label string
	value string
}

func (p painter) totalLines() []amountLine {
	t := p.d.summary.Totals
	lines := []amountLine{{"Total Amount Before Tax:", t.Taxable.StringFixed(2)}}
	if t.Interstate() {
		lines = append(lines, amountLine{"Add: IGST:", t.IGST.StringFixed(2)})
	} else {
		lines = append(lines,
			amountLine{"Add: SGST:", t.SGST.StringFixed(2)},
			amountLine{"Add: CGST:", t.CGST.StringFixed(2)},
		)
	}
	if p.l.RoundGrandTotal && !p.d.roundOff.IsZero() {
		lines = append(lines, amountLine{"Round Off:", signed(p.d.roundOff)})
	}
	return lines
}

// summary draws the HSN block on the left and the totals on the right when
// both fit on the current page. Otherwise, and always on a receipt, the
// totals follow the HSN block, which breaks across pages row by row. It
// returns the y below both.
func (p painter) summary(y float64) float64 {
	rows := p.d.summary.Rows
	step := p.l.TableFont.Sized(7).LineHeight() + 1
	totalsH := float64(len(p.totalLines())+2)*step + 12
	hsnH := float64(len(rows)+1) * step

	if !p.l.Receipt && y+max(hsnH, totalsH) <= p.s.Bottom() {
		return max(p.hsn(y, step), p.totals(y, step))
	}
	end := p.hsn(y, step)
	return p.totals(p.s.Reserve(end+step, totalsH), step)
}

func (p painter) hsn(y, step float64) float64 {
	s, m := p.s, p.m
	interstate := p.d.summary.Totals.Interstate()
	body := p.l.Font.Sized(7)

	type hsnCol struct {
		head  string
		x     float64
		align Align
		value func(r int) string
	}
	rows := p.d.summary.Rows
	cols := []hsnCol{
		{"HSN/SAC", m, AlignLeft, func(i int) string { return rows[i].HSN }},
		{"Taxable", m + 40, AlignRight, func(i int) string { return rows[i].Taxable.StringFixed(2) }},
	}
	switch {
	case p.l.Receipt:
		cols[1].x = m + 38
		cols = append(cols, hsnCol{"GST Amt", p.w - m, AlignRight, func(i int) string { return rows[i].Tax().StringFixed(2) }})
	case interstate:
		cols = append(cols, hsnCol{"IGST", m + 62, AlignRight, func(i int) string { return rows[i].IGST.StringFixed(2) }})
	default:
		cols = append(cols,
			hsnCol{"SGST", m + 62, AlignRight, func(i int) string { return rows[i].SGST.StringFixed(2) }},
			hsnCol{"CGST", m + 84, AlignRight, func(i int) string { return rows[i].CGST.StringFixed(2) }},
		)
	}

	heading := func(y float64) {
		s.SetFont(body.Bold())
		for _, c := range cols {
			s.Text(c.x, y, c.head, c.align)
		}
		s.SetFont(body)
	}

	y = s.Reserve(y, step)
	heading(y)
	for i := range rows {
		next := s.Reserve(y+step, 0)
		if next != y+step {
			// new page: repeat the heading above the remaining rows
			heading(next)
			next += step
		}
		y = next
		for _, c := range cols {
			s.Text(c.x, y, c.value(i), c.align)
		}
	}
	return y
}

func (p painter) totals(y, step float64) float64 {
	s, w, m := p.s, p.w, p.m
	x := p.l.TotalsX
	body := p.l.Font.Sized(7)

	s.SetFont(body)
	for _, ln := range p.totalLines() {
		y += step
		s.Text(x, y, ln.label, AlignLeft)
		s.Text(w-m, y, ln.value, AlignRight)
	}
	y += step - 1
	s.Line(x, y, w-m, y)

	size := 11.0
	if p.l.Receipt {
		size = 9
	}
	y += p.l.Font.Sized(size).LineHeight() + 1
	s.SetFont(p.l.Font.Sized(size).Bold())
	s.Text(x, y, "GRAND TOTAL", AlignLeft)
	s.Text(w-m, y, p.d.grand.StringFixed(2), AlignRight)
	return y
}

func (p painter) amountInWords(y float64) float64 {
	s, m := p.s, p.m
	body := p.l.Font.Sized(7)
	inner := p.w - 2*m

	y = s.Reserve(y+8, 2*body.LineHeight())
	s.SetFont(body)
	y = s.Paragraph(m, y, inner, "Bill Amount In Words : "+p.d.words, AlignLeft)
	if p.d.taxWords != "" {
		y = s.Paragraph(m, y+body.LineHeight(), inner, "GST Amount In Words : "+p.d.taxWords, AlignLeft)
	}
	return y
}

func (p painter) signature(y float64) float64 {
	s, pr, w, m := p.s, p.d.profile, p.w, p.m
	body := p.l.Font.Sized(7)
	lh := body.LineHeight()

	if p.l.Receipt {
		y = s.Reserve(y, 8*lh)
		s.SetFont(body)
		s.Text(m, y, "Terms & Conditions:", AlignLeft)
		y = s.Paragraph(m, y+lh, w-2*m, pr.Terms, AlignLeft)
		s.SetFont(body.Bold())
		y = s.Reserve(y+2*lh, 4*lh)
		s.Text(w-m, y, "For "+pr.CompanyName, AlignRight)
		y += 4 * lh
		s.Text(w-m, y, "Auth. Signatory", AlignRight)
		return y
	}

	y = s.Reserve(y, 30)
	s.SetFont(body)
	s.Text(m, y, "Terms & Conditions:", AlignLeft)
	end := s.Paragraph(m, y+5, 100, pr.Terms, AlignLeft)
	s.SetFont(body.Bold())
	s.Text(w-m-5, y+5, "For "+pr.CompanyName, AlignRight)
	s.Text(w-m-5, y+25, "Auth. Signatory", AlignRight)
	return max(end, y+25)
}
