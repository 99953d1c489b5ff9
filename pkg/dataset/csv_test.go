package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metadataCSV = `type,start_time,ambient_temperature,battery_id,test_id,uid,filename,Capacity,Re,Rct
discharge,"[2010.       7.      21.      15.       0.      35.093]",4,B0047,0,1,00001.csv,1.6743,,
impedance,"[2010.       7.      21.      16.      53.      45.968]",24,B0047,1,2,00002.csv,,0.05605783343888099,0.20097016584458333
impedance,"[2010.       7.      22.      16.      53.      45.968]",24,B0047,2,3,00003.csv,,0.0,bogus
`

func TestParseMetadata(t *testing.T) {
	records, err := parseMetadata(strings.NewReader(metadataCSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "discharge", records[0].Type)
	assert.Equal(t, "B0047", records[0].BatteryID)
	assert.Equal(t, "0", records[0].TestID)
	assert.Equal(t, "00001.csv", records[0].Filename)
	assert.Nil(t, records[0].Re)
	assert.Nil(t, records[0].Rct)

	require.NotNil(t, records[1].Re)
	assert.InDelta(t, 0.05605783343888099, *records[1].Re, 1e-15)
	assert.InDelta(t, 0.20097016584458333, *records[1].Rct, 1e-15)

	// zero stays a value, garbage becomes absent
	require.NotNil(t, records[2].Re)
	assert.Equal(t, 0.0, *records[2].Re)
	assert.Nil(t, records[2].Rct)
}

func TestParseMetadataMissingColumn(t *testing.T) {
	_, err := parseMetadata(strings.NewReader("battery_id,test_id,filename,Re\nB1,0,a.csv,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Rct"`)
}

func TestReadMetadataMissingFile(t *testing.T) {
	_, err := ReadMetadata(filepath.Join(t.TempDir(), "metadata.csv"))
	assert.Error(t, err)
	assert.False(t, IsNotFound(err))
}

func TestReadMeasurement(t *testing.T) {
	series, err := ReadMeasurement(strings.NewReader(
		"Sense_current,Battery_current,Current_ratio,Battery_impedance,Rectified_Impedance\n" +
			"(1+1j),(1+1j),(1+0j),(3+4j),(0.1+0.1j)\n" +
			"(1+1j),(1+1j),(1+0j),,(0.1+0.1j)\n" +
			"(1+1j),(1+1j),(1+0j),(0-5j),(0.1+0.1j)\n"))
	require.NoError(t, err)
	assert.True(t, series.HasImpedance)
	assert.Equal(t, []string{"(3+4j)", "", "(0-5j)"}, series.Impedance)
}

func TestReadMeasurementWithoutImpedance(t *testing.T) {
	series, err := ReadMeasurement(strings.NewReader(
		"Voltage_measured,Current_measured,Temperature_measured,Time\n4.19,-0.004,24.3,0\n"))
	require.NoError(t, err)
	assert.False(t, series.HasImpedance)
	assert.Empty(t, series.Impedance)

	series, err = ReadMeasurement(strings.NewReader(""))
	require.NoError(t, err)
	assert.False(t, series.HasImpedance)
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "00002.csv"),
		[]byte("Battery_impedance\n(3+4j)\n"), 0o644))

	loader := &FileLoader{Dir: dir}
	series, err := loader.Load("00002.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"(3+4j)"}, series.Impedance)

	_, err = loader.Load("00009.csv")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	path, ok := NotFoundPath(err)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "00009.csv"), path)
	assert.Equal(t, "file not found: "+path, err.Error())
}
