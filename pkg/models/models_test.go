package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func dataset() CombinedDataset {
	return CombinedDataset{
		{BatteryID: "B0005", RelativeAge: 0, CycleID: "1"},
		{BatteryID: "B0005", RelativeAge: 1, CycleID: "3"},
		{BatteryID: "B0006", RelativeAge: 0, CycleID: "2"},
		{BatteryID: "B0005", RelativeAge: 2, CycleID: "7"},
	}
}

func TestBatteriesFirstSeenOrder(t *testing.T) {
	assert.Equal(t, []string{"B0005", "B0006"}, dataset().Batteries())
	assert.Empty(t, CombinedDataset{}.Batteries())
}

func TestForBattery(t *testing.T) {
	recs := dataset().ForBattery("B0005")
	if assert.Len(t, recs, 3) {
		assert.Equal(t, []string{"1", "3", "7"}, []string{recs[0].CycleID, recs[1].CycleID, recs[2].CycleID})
	}
	assert.Empty(t, dataset().ForBattery("B0018"))
}

func TestParameterValue(t *testing.T) {
	r := AggregatedRecord{
		ImpedanceMagnitude:       nil,
		ElectrolyteResistance:    Float(0.05),
		ChargeTransferResistance: Float(0),
	}
	assert.Nil(t, ImpedanceMagnitude.Value(r))
	assert.Equal(t, 0.05, *ElectrolyteResistance.Value(r))
	// zero is a value, not an absence
	if assert.NotNil(t, ChargeTransferResistance.Value(r)) {
		assert.Equal(t, 0.0, *ChargeTransferResistance.Value(r))
	}
}

func TestParameterNames(t *testing.T) {
	var names []string
	for _, p := range Parameters {
		names = append(names, p.String())
	}
	assert.Equal(t, []string{
		"Battery Impedance",
		"Re (Electrolyte Resistance)",
		"Rct (Charge Transfer Resistance)",
	}, names)
	assert.Equal(t, "Parameter(7)", Parameter(7).String())
	assert.Equal(t, "Rct", ChargeTransferResistance.Short())
}
