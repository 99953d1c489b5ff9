package report

import (
	"fmt"
	"io"
	"math"

	"github.com/olekukonko/tablewriter"

	"github.com/kacperjurak/batteryaging"
	"github.com/kacperjurak/batteryaging/pkg/models"
)

// TrendRow is the fitted aging trend of one parameter of one battery.
type TrendRow struct {
	BatteryID string
	Parameter models.Parameter
	LastAge   float64
	Result    batteryaging.TrendResult
}

// Trends fits method to every battery and parameter with at least
// batteryaging.MinTrendPoints present values. Absent values are skipped.
func Trends(d models.CombinedDataset, method batteryaging.TrendMethod) []TrendRow {
	if method == batteryaging.TrendNone {
		return nil
	}

	var rows []TrendRow
	for _, id := range d.Batteries() {
		recs := d.ForBattery(id)
		for _, p := range models.Parameters {
			var ages, values []float64
			for _, r := range recs {
				v := p.Value(r)
				if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
					continue
				}
				ages = append(ages, float64(r.RelativeAge))
				values = append(values, *v)
			}
			if len(values) < batteryaging.MinTrendPoints {
				continue
			}
			rows = append(rows, TrendRow{
				BatteryID: id,
				Parameter: p,
				LastAge:   ages[len(ages)-1],
				Result:    batteryaging.FitTrend(ages, values, method),
			})
		}
	}
	return rows
}

// WriteTrendTable prints rows as a text table.
func WriteTrendTable(w io.Writer, rows []TrendRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Battery", "Parameter", "Points", "Model", "Solver", "Slope", "ChiSq"})
	for _, r := range rows {
		model, solver, slope, chiSq := string(r.Result.Method), r.Result.Solver, "-", "-"
		if r.Result.Status == batteryaging.OK {
			slope = formatFloat(r.Result.Slope(r.LastAge))
			chiSq = formatFloat(r.Result.Min)
		} else {
			solver = "failed"
		}
		table.Append([]string{
			r.BatteryID,
			r.Parameter.Short(),
			fmt.Sprintf("%d", r.Result.Points),
			model,
			solver,
			slope,
			chiSq,
		})
	}
	table.Render()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.4g", v)
}
