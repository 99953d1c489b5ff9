package aggregate

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/kacperjurak/batteryaging"
	"github.com/kacperjurak/batteryaging/pkg/dataset"
	"github.com/kacperjurak/batteryaging/pkg/models"
)

// MeasurementLoader resolves a metadata filename to its measurement series.
// A missing file must be reported with an error satisfying dataset.IsNotFound.
type MeasurementLoader interface {
	Load(filename string) (models.MeasurementSeries, error)
}

// Aggregator builds the combined dataset from catalog rows.
type Aggregator struct {
	progress io.Writer
}

// Options holds configuration for creating a new Aggregator
type Options struct {
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// New creates a new aggregator
func New(opts Options) *Aggregator {
	return &Aggregator{progress: opts.Progress}
}

// Aggregate walks metadata battery by battery, in first-seen order, and emits
// one record per row whose measurement file exists. The relative age counts
// emitted records per battery; skipped rows do not consume an age.
func (a *Aggregator) Aggregate(metadata []models.MetadataRecord, loader MeasurementLoader) (models.CombinedDataset, error) {
	bar := a.startProgress(len(metadata))
	defer a.finishProgress(bar)

	order, groups := groupByBattery(metadata)

	combined := make(models.CombinedDataset, 0, len(metadata))
	for _, batteryID := range order {
		relativeAge := 0
		for _, row := range groups[batteryID] {
			rec, ok, err := a.process(row, relativeAge, loader)
			a.step(bar)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			combined = append(combined, rec)
			relativeAge++
		}
	}

	logrus.Infof("Aggregated %d of %d metadata rows across %d batteries", len(combined), len(metadata), len(order))
	return combined, nil
}

func (a *Aggregator) process(row models.MetadataRecord, relativeAge int, loader MeasurementLoader) (models.AggregatedRecord, bool, error) {
	series, err := loader.Load(row.Filename)
	if path, missing := dataset.NotFoundPath(err); missing {
		logrus.Warnf("File not found: %s", path)
		return models.AggregatedRecord{}, false, nil
	}
	if err != nil {
		return models.AggregatedRecord{}, false, errors.Wrapf(err, "battery %s test %s", row.BatteryID, row.TestID)
	}

	var magnitude *float64
	if series.HasImpedance {
		magnitude = MeanMagnitude(series.Impedance)
	}

	return models.AggregatedRecord{
		BatteryID:                row.BatteryID,
		RelativeAge:              relativeAge,
		CycleID:                  row.TestID,
		ImpedanceMagnitude:       magnitude,
		ElectrolyteResistance:    row.Re,
		ChargeTransferResistance: row.Rct,
	}, true, nil
}

// MeanMagnitude averages the moduli of the samples that parse. Samples that
// do not parse are left out; nil means no sample parsed.
func MeanMagnitude(samples []string) *float64 {
	magnitudes := make([]float64, 0, len(samples))
	for _, s := range samples {
		if m, ok := batteryaging.ParseMagnitude(s); ok {
			magnitudes = append(magnitudes, m)
		}
	}
	if len(magnitudes) == 0 {
		if len(samples) > 0 {
			logrus.Debugf("none of %d impedance samples parsed", len(samples))
		}
		return nil
	}
	mean := stat.Mean(magnitudes, nil)
	return &mean
}

// groupByBattery keeps the first-seen order of battery IDs and the row order
// within each battery.
func groupByBattery(metadata []models.MetadataRecord) ([]string, map[string][]models.MetadataRecord) {
	var order []string
	groups := make(map[string][]models.MetadataRecord)
	for _, row := range metadata {
		if _, seen := groups[row.BatteryID]; !seen {
			order = append(order, row.BatteryID)
		}
		groups[row.BatteryID] = append(groups[row.BatteryID], row)
	}
	return order, groups
}

func (a *Aggregator) startProgress(total int) *pb.ProgressBar {
	if a.progress == nil || total == 0 {
		return nil
	}
	bar := pb.New(total)
	bar.Output = a.progress
	bar.ManualUpdate = true
	bar.ShowTimeLeft = false
	bar.Prefix("rows ")
	return bar.Start()
}

func (a *Aggregator) step(bar *pb.ProgressBar) {
	if bar == nil {
		return
	}
	bar.Increment()
	bar.Update()
}

func (a *Aggregator) finishProgress(bar *pb.ProgressBar) {
	if bar != nil {
		bar.Finish()
	}
}
