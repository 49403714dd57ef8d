package output

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/vsinha/lineplan/pkg/application/dto"
	"github.com/vsinha/lineplan/pkg/domain/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

// TemplateData contains all data for rendering the HTML report
type TemplateData struct {
	Title       string
	GeneratedAt time.Time
	Chart       template.HTML
	Orders      []entities.Order
	AutoPlan    *dto.AutoPlanResult
	Lines       []LineRow
}

// LineRow is one utilization row with the ratio already formatted
type LineRow struct {
	UnitName      string
	LineName      string
	DailyCapacity entities.Capacity
	Utilization   string
}

// WriteHTML renders a standalone HTML page with the board chart and tables
func WriteHTML(w io.Writer, report *Report) error {
	chart := NewBoardChart(report)
	// the chart escapes every label it draws
	svg := template.HTML(chart.GenerateSVG(report))
	data := TemplateData{
		Title:       fmt.Sprintf("Production Line Plan %s .. %s", chart.From, chart.To),
		GeneratedAt: report.GeneratedAt,
		Chart:       svg,
		Orders:      report.Board.Orders,
		AutoPlan:    report.AutoPlan,
	}
	if report.Utilization != nil {
		for _, l := range report.Utilization.Lines {
			data.Lines = append(data.Lines, LineRow{
				UnitName:      l.UnitName,
				LineName:      l.LineName,
				DailyCapacity: l.DailyCapacity,
				Utilization:   Percent(l.Utilization),
			})
		}
	}

	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
