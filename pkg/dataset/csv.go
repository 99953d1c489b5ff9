package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/kacperjurak/batteryaging/pkg/models"
)

// ImpedanceColumn is the measurement column holding complex impedance samples.
const ImpedanceColumn = "Battery_impedance"

var requiredMetadataColumns = []string{"battery_id", "test_id", "filename", "Re", "Rct"}

// ReadMetadata loads the dataset catalog.
func ReadMetadata(path string) ([]models.MetadataRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open metadata %s", path)
	}
	defer f.Close()

	records, err := parseMetadata(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read metadata %s", path)
	}
	return records, nil
}

func parseMetadata(r io.Reader) ([]models.MetadataRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "header")
	}
	cols := columnIndex(header)
	for _, name := range requiredMetadataColumns {
		if _, ok := cols[name]; !ok {
			return nil, errors.Errorf("missing column %q", name)
		}
	}

	var records []models.MetadataRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		records = append(records, models.MetadataRecord{
			Type:      get("type"),
			BatteryID: get("battery_id"),
			TestID:    get("test_id"),
			UID:       get("uid"),
			Filename:  get("filename"),
			Re:        parseOptional(get("Re")),
			Rct:       parseOptional(get("Rct")),
		})
	}
	return records, nil
}

// parseOptional returns nil for blank or non-numeric cells.
func parseOptional(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

// FileLoader reads measurement files from a directory.
type FileLoader struct {
	Dir string
}

// NewFileLoader creates a loader for the measurement directory of l.
func NewFileLoader(l Layout) *FileLoader {
	return &FileLoader{Dir: l.DataDir}
}

// Path is the location a metadata filename resolves to.
func (l *FileLoader) Path(filename string) string {
	return filepath.Join(l.Dir, filename)
}

// Load reads the impedance column of one measurement file. A missing file
// yields a *NotFoundError.
func (l *FileLoader) Load(filename string) (models.MeasurementSeries, error) {
	path := l.Path(filename)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return models.MeasurementSeries{}, &NotFoundError{Path: path}
	}
	if err != nil {
		return models.MeasurementSeries{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	series, err := ReadMeasurement(f)
	if err != nil {
		return models.MeasurementSeries{}, errors.Wrapf(err, "read %s", path)
	}
	return series, nil
}

// ReadMeasurement extracts the raw impedance samples of a measurement CSV.
// Files without the impedance column yield a series with HasImpedance false.
func ReadMeasurement(r io.Reader) (models.MeasurementSeries, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return models.MeasurementSeries{}, nil
	}
	if err != nil {
		return models.MeasurementSeries{}, errors.Wrap(err, "header")
	}
	col, ok := columnIndex(header)[ImpedanceColumn]
	if !ok {
		return models.MeasurementSeries{}, nil
	}

	series := models.MeasurementSeries{HasImpedance: true}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.MeasurementSeries{}, errors.Wrapf(err, "line %d", line)
		}
		sample := ""
		if col < len(row) {
			sample = row[col]
		}
		series.Impedance = append(series.Impedance, sample)
	}
	return series, nil
}
