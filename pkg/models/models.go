package models

// MetadataRecord is one row of the dataset catalog (metadata.csv).
type MetadataRecord struct {
	Type      string   `json:"type"`
	BatteryID string   `json:"battery_id"`
	TestID    string   `json:"test_id"`
	UID       string   `json:"uid"`
	Filename  string   `json:"filename"`
	Re        *float64 `json:"Re"`
	Rct       *float64 `json:"Rct"`
}

// MeasurementSeries holds the raw impedance samples of one test file.
type MeasurementSeries struct {
	HasImpedance bool
	Impedance    []string
}

// AggregatedRecord is one row of the combined dataset.
type AggregatedRecord struct {
	BatteryID                string   `json:"battery_id"`
	RelativeAge              int      `json:"relative_age"`
	CycleID                  string   `json:"cycle_id"`
	ImpedanceMagnitude       *float64 `json:"impedance_magnitude"`
	ElectrolyteResistance    *float64 `json:"electrolyte_resistance"`
	ChargeTransferResistance *float64 `json:"charge_transfer_resistance"`
}

// CombinedDataset keeps records ordered by first-seen battery, then by
// metadata row order within the battery.
type CombinedDataset []AggregatedRecord

// Batteries returns the distinct battery IDs in first-seen order.
func (d CombinedDataset) Batteries() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range d {
		if !seen[r.BatteryID] {
			seen[r.BatteryID] = true
			ids = append(ids, r.BatteryID)
		}
	}
	return ids
}

// ForBattery returns the records of one battery in relative age order.
func (d CombinedDataset) ForBattery(id string) []AggregatedRecord {
	var res []AggregatedRecord
	for _, r := range d {
		if r.BatteryID == id {
			res = append(res, r)
		}
	}
	return res
}

// Float returns a pointer to v. It is the constructor for present values.
func Float(v float64) *float64 {
	return &v
}
