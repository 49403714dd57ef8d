package output

import (
	"fmt"
	"html"
	"strings"

	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/domain/services"
)

// BoardChart is a Gantt-style picture of the board: one block of rows per
// production line, one row per assignment track, with a strip of daily load
// bands under each line.
type BoardChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	RowHeight    int
	BandHeight   int
	From         entities.Day
	To           entities.Day
}

// GanttBar represents a single assignment in the chart
type GanttBar struct {
	Assignment entities.Assignment
	X          int
	Width      int
	Color      string
	Placed     bool
}

type chartLine struct {
	label  string
	line   entities.ProductionLine
	tracks [][]entities.Assignment
}

// NewBoardChart sizes a chart for the report. The time axis is the
// utilization window when present, then the auto-plan window, then the span of
// all assignments on the board.
func NewBoardChart(report *Report) *BoardChart {
	from, to := chartWindow(report)
	if to.Before(from) {
		to = from
	}

	rows := 0
	for _, line := range report.Board.Lines() {
		tracks := len(services.AssignmentTracks(line))
		if tracks == 0 {
			tracks = 1
		}
		rows += tracks
	}

	rowHeight := 24
	bandHeight := 8
	lines := len(report.Board.Lines())
	return &BoardChart{
		Width:        1200,
		Height:       rows*rowHeight + lines*(bandHeight+8) + 140,
		MarginLeft:   220,
		MarginTop:    60,
		MarginRight:  40,
		MarginBottom: 80,
		RowHeight:    rowHeight,
		BandHeight:   bandHeight,
		From:         from,
		To:           to,
	}
}

func chartWindow(report *Report) (entities.Day, entities.Day) {
	if report.Utilization != nil && !report.Utilization.From.IsZero() {
		return report.Utilization.From, report.Utilization.To
	}
	if report.AutoPlan != nil && !report.AutoPlan.From.IsZero() {
		return report.AutoPlan.From, report.AutoPlan.To
	}

	var from, to entities.Day
	for _, line := range report.Board.Lines() {
		for _, a := range line.Assignments {
			if from.IsZero() || a.StartDate.Before(from) {
				from = a.StartDate
			}
			if to.IsZero() || a.EndDate.After(to) {
				to = a.EndDate
			}
		}
	}
	if from.IsZero() {
		today := entities.Today()
		return entities.MonthWindow(today)
	}
	return from, to
}

// GenerateSVG creates an SVG representation of the board
func (gc *BoardChart) GenerateSVG(report *Report) string {
	if len(report.Board.Lines()) == 0 {
		return gc.generateEmptyChart()
	}

	var svg strings.Builder

	svg.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, gc.Width, gc.Height))
	svg.WriteString(`<defs>`)
	svg.WriteString(`<style>`)
	svg.WriteString(`.line-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.time-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.assignment-bar { stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`.assignment-text { font-family: Arial, sans-serif; font-size: 9px; fill: white; }`)
	svg.WriteString(`</style>`)
	svg.WriteString(`</defs>`)

	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, gc.Width, gc.Height))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="30" class="title" text-anchor="middle">Production Line Plan %s .. %s</text>`,
		gc.Width/2, gc.From, gc.To))

	placed := placedAssignments(report)
	lines := gc.collectLines(report.Board)

	gc.drawTimeAxis(&svg)
	y := gc.MarginTop
	for _, cl := range lines {
		y = gc.drawLine(&svg, cl, placed, y)
	}
	gc.drawTimeGrid(&svg, y)
	gc.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

func (gc *BoardChart) collectLines(board *entities.Board) []chartLine {
	var lines []chartLine
	for _, unit := range board.Units {
		for _, line := range unit.Lines {
			lines = append(lines, chartLine{
				label:  unit.Name + " / " + line.Name,
				line:   line,
				tracks: services.AssignmentTracks(line),
			})
		}
	}
	return lines
}

func placedAssignments(report *Report) map[string]bool {
	placed := make(map[string]bool)
	if report.AutoPlan != nil {
		for _, p := range report.AutoPlan.Placed {
			placed[p.AssignmentID] = true
		}
	}
	return placed
}

// dayCount is the number of calendar days on the axis
func (gc *BoardChart) dayCount() int {
	return entities.DurationDays(gc.From, gc.To)
}

// xFor maps a day to its left edge, clamped to the chart area
func (gc *BoardChart) xFor(day entities.Day) int {
	chartWidth := gc.Width - gc.MarginLeft - gc.MarginRight
	offset := gc.From.DaysUntil(day)
	if offset < 0 {
		offset = 0
	}
	if offset > gc.dayCount() {
		offset = gc.dayCount()
	}
	return gc.MarginLeft + int(float64(offset)/float64(gc.dayCount())*float64(chartWidth))
}

// drawTimeAxis draws day labels, thinned out for long windows
func (gc *BoardChart) drawTimeAxis(svg *strings.Builder) {
	step := 1
	if gc.dayCount() > 31 {
		step = 7
	}
	if gc.dayCount() > 180 {
		step = 30
	}
	for i := 0; i < gc.dayCount(); i += step {
		day := gc.From.AddDays(i)
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="time-label" text-anchor="middle">%s</text>`,
			gc.xFor(day), gc.MarginTop-8, day.Time().Format("Jan 2")))
	}
}

func (gc *BoardChart) drawTimeGrid(svg *strings.Builder, bottom int) {
	step := 1
	if gc.dayCount() > 31 {
		step = 7
	}
	for i := 0; i <= gc.dayCount(); i += step {
		x := gc.xFor(gc.From.AddDays(i))
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
			x, gc.MarginTop, x, bottom))
	}
}

// drawLine draws the tracks and band strip of one line starting at y and
// returns the y below it.
func (gc *BoardChart) drawLine(svg *strings.Builder, cl chartLine, placed map[string]bool, y int) int {
	rows := len(cl.tracks)
	if rows == 0 {
		rows = 1
	}
	blockHeight := rows * gc.RowHeight

	svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="line-label" text-anchor="end">%s</text>`,
		gc.MarginLeft-15, y+gc.RowHeight/2+4, html.EscapeString(cl.label)))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="time-label" text-anchor="end">%d/day</text>`,
		gc.MarginLeft-15, y+gc.RowHeight/2+16, cl.line.DailyCapacity))

	for i, track := range cl.tracks {
		rowY := y + i*gc.RowHeight
		for _, a := range track {
			gc.drawBar(svg, gc.barFor(a, placed[a.ID]), rowY)
		}
	}

	bandY := y + blockHeight + 2
	days := entities.DaysInRange(gc.From, gc.To)
	for _, load := range services.DailyUsage(cl.line, days) {
		x := gc.xFor(load.Day)
		w := gc.xFor(load.Day.AddDays(1)) - x
		if w < 1 {
			w = 1
		}
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"><title>%s: %s of %d (%s)</title></rect>`,
			x, bandY, w, gc.BandHeight, bandColor(load.Band), load.Day,
			entities.FormatUnits(load.Load), cl.line.DailyCapacity, Percent(load.Utilization)))
	}

	bottom := bandY + gc.BandHeight + 4
	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		gc.MarginLeft, bottom, gc.Width-gc.MarginRight, bottom))
	return bottom + 2
}

func (gc *BoardChart) barFor(a entities.Assignment, placed bool) GanttBar {
	x := gc.xFor(a.StartDate)
	width := gc.xFor(a.EndDate.AddDays(1)) - x
	if width < 2 {
		width = 2
	}
	return GanttBar{Assignment: a, X: x, Width: width, Color: barColor(a, placed), Placed: placed}
}

func (gc *BoardChart) drawBar(svg *strings.Builder, bar GanttBar, rowY int) {
	barHeight := gc.RowHeight - 4
	barY := rowY + 2
	a := bar.Assignment

	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="assignment-bar">`,
		bar.X, barY, bar.Width, barHeight, bar.Color))
	svg.WriteString(fmt.Sprintf(`<title>%s: %d units, %s .. %s, %s/day</title></rect>`,
		html.EscapeString(a.OrderNumber), a.Quantity, a.StartDate, a.EndDate, entities.FormatUnits(a.DailyRate())))

	if bar.Width > 50 {
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="assignment-text" text-anchor="middle">%s (%d)</text>`,
			bar.X+bar.Width/2, barY+barHeight/2+3, html.EscapeString(a.OrderNumber), a.Quantity))
	}
}

func (gc *BoardChart) drawLegend(svg *strings.Builder) {
	legendX := gc.Width - gc.MarginRight - 420
	legendY := gc.Height - gc.MarginBottom + 20

	items := []struct {
		color string
		label string
	}{
		{"#2196F3", "Assignment"},
		{"#FF9800", "Auto-placed"},
		{"#9E9E9E", "Tentative"},
		{bandColor(services.BandNormal), "Load ≤70%"},
		{bandColor(services.BandElevated), "Load ≤90%"},
		{bandColor(services.BandCritical), "Load >90%"},
	}
	for i, item := range items {
		x := legendX + (i%3)*140
		y := legendY + (i/3)*16
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`, x, y, item.color))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="time-label">%s</text>`, x+18, y+8, item.label))
	}
}

func barColor(a entities.Assignment, placed bool) string {
	switch {
	case placed:
		return "#FF9800"
	case a.Tentative:
		return "#9E9E9E"
	default:
		return "#2196F3"
	}
}

func bandColor(band services.LoadBand) string {
	switch band {
	case services.BandCritical:
		return "#F44336"
	case services.BandElevated:
		return "#FFC107"
	case services.BandNormal:
		return "#4CAF50"
	default:
		return "#EEEEEE"
	}
}

// generateEmptyChart creates an empty chart when the board has no lines
func (gc *BoardChart) generateEmptyChart() string {
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
		<rect width="%d" height="%d" fill="white"/>
		<text x="%d" y="%d" class="title" text-anchor="middle">No Production Lines Found</text>
		<style>
			.title { font-family: Arial, sans-serif; font-size: 16px; fill: #666; }
		</style>
	</svg>`, gc.Width, gc.Height, gc.Width, gc.Height, gc.Width/2, gc.Height/2)
}
