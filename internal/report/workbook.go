package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/smukkama/factory-monitor/internal/aggregation"
	"github.com/smukkama/factory-monitor/internal/database"
)

// Sheet names in workbook order
const (
	SheetKPIs       = "KPIs"
	SheetLines      = "Lines"
	SheetAlerts     = "Alerts"
	SheetTrend      = "Trend"
	SheetProduction = "Production"
)

// Source is the read side a workbook is built from
type Source interface {
	DashboardStats() aggregation.DashboardStats
	OEE() aggregation.OEE
	UptimePercentage() float64
	ScrapRate() float64
	LinePerformance() []aggregation.LinePerformance
	Alerts() []aggregation.Alert
	ProductionTrend() []aggregation.TrendPoint
}

// Build renders the dashboard figures and the given production logs into a
// new workbook. The caller owns the returned file.
func Build(src Source, production []database.ProductionLog) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, name := range []string{SheetKPIs, SheetLines, SheetAlerts, SheetTrend, SheetProduction} {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
			continue
		}
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	writers := []func(*excelize.File) error{
		func(f *excelize.File) error { return writeKPIs(f, src) },
		func(f *excelize.File) error { return writeLines(f, src.LinePerformance()) },
		func(f *excelize.File) error { return writeAlerts(f, src.Alerts()) },
		func(f *excelize.File) error { return writeTrend(f, src.ProductionTrend()) },
		func(f *excelize.File) error { return writeProduction(f, production) },
	}
	for _, write := range writers {
		if err := write(f); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and streams it to w
func Write(w io.Writer, src Source, production []database.ProductionLog) error {
	f, err := Build(src, production)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeKPIs(f *excelize.File, src Source) error {
	stats := src.DashboardStats()
	oee := src.OEE()

	rows := [][]any{
		{"Metric", "Value"},
		{"Total lines", stats.TotalLines},
		{"Total machines", stats.TotalMachines},
		{"Running", stats.RunningMachines},
		{"Idle", stats.IdleMachines},
		{"Stopped", stats.StoppedMachines},
		{"Maintenance", stats.MaintenanceMachines},
		{"Active downtimes", stats.ActiveDowntimes},
		{"Average yield %", stats.AverageYield},
		{"Uptime %", src.UptimePercentage()},
		{"Scrap rate %", src.ScrapRate()},
		{"OEE %", oee.OEE},
		{"Availability %", oee.Availability},
		{"Performance %", oee.Performance},
		{"Quality %", oee.Quality},
	}
	if err := writeRows(f, SheetKPIs, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetKPIs, "A", "A", 22)
}

func writeLines(f *excelize.File, lines []aggregation.LinePerformance) error {
	rows := [][]any{{"Line", "Name", "Location", "Machines", "Running", "Output", "Avg yield %", "Uptime %"}}
	for _, l := range lines {
		rows = append(rows, []any{l.LineID, l.LineName, l.Location, l.TotalMachines, l.RunningMachines, l.TotalOutput, l.AverageYield, l.UptimePercent})
	}
	return writeRows(f, SheetLines, rows)
}

func writeAlerts(f *excelize.File, alerts []aggregation.Alert) error {
	rows := [][]any{{"Type", "Title", "Machine", "Message", "Timestamp"}}
	for _, a := range alerts {
		rows = append(rows, []any{a.Type, a.Title, a.MachineName, a.Message, a.Timestamp.UTC().Format("2006-01-02 15:04")})
	}
	return writeRows(f, SheetAlerts, rows)
}

func writeTrend(f *excelize.File, trend []aggregation.TrendPoint) error {
	rows := [][]any{{"Date", "Input", "Output", "Scrap", "Yield %"}}
	for _, p := range trend {
		rows = append(rows, []any{p.Date, p.Input, p.Output, p.Scrap, p.Yield})
	}
	return writeRows(f, SheetTrend, rows)
}

func writeProduction(f *excelize.File, logs []database.ProductionLog) error {
	rows := [][]any{{"ID", "Machine", "Date", "Shift", "Input", "Output", "Scrap", "Yield %", "Operator"}}
	for _, p := range logs {
		rows = append(rows, []any{p.ID, p.MachineID, p.ShiftDate, string(p.Shift), p.Input, p.Output, p.Scrap, p.Yield, p.OperatorID})
	}
	return writeRows(f, SheetProduction, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
