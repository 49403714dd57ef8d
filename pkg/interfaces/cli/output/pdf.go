package output

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/domain/services"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	rowHeight    = 6.0
)

type pdfColumn struct {
	title string
	width float64
	align string
}

// WritePDF renders the report as a PDF: a summary page with the order book,
// the auto-plan outcome when present, and a daily load heatmap per line when
// utilization is present.
func WritePDF(w io.Writer, report *Report) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	renderSummaryPage(pdf, tr, report)

	if report.AutoPlan != nil {
		pdf.AddPage()
		renderAutoPlanPage(pdf, tr, report)
	}
	if report.Utilization != nil {
		pdf.AddPage()
		renderUtilizationPage(pdf, tr, report)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func renderTitle(pdf *fpdf.Fpdf, title string) float64 {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, title, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)
	return marginTop + 16
}

// renderTable draws a header and rows starting at y, adding pages as rows run
// past the bottom margin. It returns the y below the last row.
func renderTable(pdf *fpdf.Fpdf, tr func(string) string, y float64, columns []pdfColumn, rows [][]string) float64 {
	drawHeader := func(y float64) float64 {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(217, 225, 242)
		pdf.SetXY(marginLeft, y)
		for _, c := range columns {
			pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, "C", true, 0, "")
		}
		return y + rowHeight
	}

	y = drawHeader(y)
	pdf.SetFont("Helvetica", "", 8)
	for _, row := range rows {
		if y+rowHeight > pageHeight-marginBottom {
			pdf.AddPage()
			y = drawHeader(marginTop)
			pdf.SetFont("Helvetica", "", 8)
		}
		pdf.SetXY(marginLeft, y)
		for i, c := range columns {
			value := ""
			if i < len(row) {
				value = tr(row[i])
			}
			pdf.CellFormat(c.width, rowHeight, value, "1", 0, c.align, false, 0, "")
		}
		y += rowHeight
	}
	return y
}

func renderSummaryPage(pdf *fpdf.Fpdf, tr func(string) string, report *Report) {
	y := renderTitle(pdf, "Production Line Plan")
	board := report.Board

	var assigned, remaining entities.Quantity
	for _, o := range board.Orders {
		assigned += o.AssignedQty
		remaining += o.RemainingQty
	}
	var capacity entities.Capacity
	for _, u := range board.Units {
		capacity += u.TotalCapacity()
	}

	summaryItems := []struct {
		label string
		value string
	}{
		{"Orders", fmt.Sprintf("%d", len(board.Orders))},
		{"Production Lines", fmt.Sprintf("%d", len(board.Lines()))},
		{"Total Daily Capacity", fmt.Sprintf("%d units/day", capacity)},
		{"Assigned Quantity", fmt.Sprintf("%d", assigned)},
		{"Remaining Quantity", fmt.Sprintf("%d", remaining)},
	}
	if !report.GeneratedAt.IsZero() {
		summaryItems = append(summaryItems, struct {
			label string
			value string
		}{"Generated", report.GeneratedAt.Format("2006-01-02 15:04")})
	}

	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		y += 6
	}
	y += 6

	columns := []pdfColumn{
		{"Order", 30, "L"}, {"Customer", 55, "L"}, {"Style", 40, "L"}, {"ETD", 25, "C"},
		{"Total", 22, "R"}, {"Assigned", 22, "R"}, {"Remaining", 22, "R"}, {"Status", 51, "L"},
	}
	rows := make([][]string, 0, len(board.Orders))
	for _, o := range board.Orders {
		status := o.Status.String()
		if o.Tentative {
			status += " (tentative)"
		}
		rows = append(rows, []string{
			o.OrderNumber, o.Customer, o.Style, o.ETDDate.String(),
			fmt.Sprintf("%d", o.TotalQty), fmt.Sprintf("%d", o.AssignedQty), fmt.Sprintf("%d", o.RemainingQty), status,
		})
	}
	renderTable(pdf, tr, y, columns, rows)
}

func renderAutoPlanPage(pdf *fpdf.Fpdf, tr func(string) string, report *Report) {
	result := report.AutoPlan
	y := renderTitle(pdf, fmt.Sprintf("Auto Plan %s .. %s", result.From, result.To))

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(0, 6, fmt.Sprintf("Placed: %d   Failed: %d", len(result.Placed), len(result.Failed)), "", 0, "L", false, 0, "")
	y += 10

	if len(result.Placed) > 0 {
		columns := []pdfColumn{
			{"Order", 35, "L"}, {"Line", 50, "L"}, {"Quantity", 30, "R"}, {"Start", 30, "C"},
			{"End", 30, "C"}, {"Days", 20, "R"}, {"Rate/Day", 30, "R"},
		}
		rows := make([][]string, 0, len(result.Placed))
		for _, p := range result.Placed {
			rows = append(rows, []string{
				p.OrderNumber, p.LineName, fmt.Sprintf("%d", p.Quantity), p.StartDate.String(),
				p.EndDate.String(), fmt.Sprintf("%d", p.RequiredDays), entities.FormatUnits(p.DailyRate),
			})
		}
		y = renderTable(pdf, tr, y, columns, rows) + 8
	}

	if len(result.Failed) > 0 {
		columns := []pdfColumn{{"Order", 35, "L"}, {"Quantity", 30, "R"}, {"Reason", 202, "L"}}
		rows := make([][]string, 0, len(result.Failed))
		for _, f := range result.Failed {
			label := f.OrderNumber
			if label == "" {
				label = f.OrderID
			}
			rows = append(rows, []string{label, fmt.Sprintf("%d", f.Quantity), f.Reason})
		}
		renderTable(pdf, tr, y, columns, rows)
	}
}

// renderUtilizationPage draws one heatmap row per line: a cell per day filled
// with the load band color.
func renderUtilizationPage(pdf *fpdf.Fpdf, tr func(string) string, report *Report) {
	util := report.Utilization
	y := renderTitle(pdf, fmt.Sprintf("Daily Load %s .. %s", util.From, util.To))

	labelWidth := 60.0
	pctWidth := 20.0
	days := len(entities.DaysInRange(util.From, util.To))
	if days == 0 {
		return
	}
	cellWidth := (pageWidth - marginLeft - marginRight - labelWidth - pctWidth) / float64(days)

	pdf.SetFont("Helvetica", "", 6)
	for i := 0; i < days; i++ {
		day := util.From.AddDays(i)
		if days > 31 && i%7 != 0 {
			continue
		}
		pdf.SetXY(marginLeft+labelWidth+float64(i)*cellWidth, y)
		pdf.CellFormat(cellWidth, 4, fmt.Sprintf("%d", day.Time().Day()), "", 0, "C", false, 0, "")
	}
	y += 5

	for _, line := range util.Lines {
		if y+rowHeight > pageHeight-marginBottom-20 {
			pdf.AddPage()
			y = marginTop
		}
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(labelWidth, rowHeight, tr(fmt.Sprintf("%s / %s (%d)", line.UnitName, line.LineName, line.DailyCapacity)), "", 0, "L", false, 0, "")

		pdf.SetDrawColor(255, 255, 255)
		pdf.SetLineWidth(0.1)
		for i, load := range line.Days {
			r, g, b := bandRGB(load.Band)
			pdf.SetFillColor(r, g, b)
			pdf.Rect(marginLeft+labelWidth+float64(i)*cellWidth, y+0.5, cellWidth, rowHeight-1, "FD")
		}

		pdf.SetXY(marginLeft+labelWidth+float64(days)*cellWidth, y)
		pdf.CellFormat(pctWidth, rowHeight, Percent(line.Utilization), "", 0, "R", false, 0, "")
		y += rowHeight + 1
	}

	y += 6
	pdf.SetFont("Helvetica", "B", 9)
	for _, u := range util.Units {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(labelWidth, rowHeight, tr(u.UnitName), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, rowHeight, Percent(u.Utilization), "", 0, "L", false, 0, "")
		y += rowHeight
	}
}

func bandRGB(band services.LoadBand) (int, int, int) {
	switch band {
	case services.BandCritical:
		return 244, 67, 54
	case services.BandElevated:
		return 255, 193, 7
	case services.BandNormal:
		return 76, 175, 80
	default:
		return 238, 238, 238
	}
}
