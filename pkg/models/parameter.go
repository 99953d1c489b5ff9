package models

import "fmt"

// Parameter is a plotted quantity of the combined dataset.
type Parameter int

// Display order. Index positions are used by trace visibility vectors.
const (
	ImpedanceMagnitude Parameter = iota
	ElectrolyteResistance
	ChargeTransferResistance
)

// Parameters lists every Parameter in display order.
var Parameters = []Parameter{
	ImpedanceMagnitude,
	ElectrolyteResistance,
	ChargeTransferResistance,
}

func (p Parameter) String() string {
	switch p {
	case ImpedanceMagnitude:
		return "Battery Impedance"
	case ElectrolyteResistance:
		return "Re (Electrolyte Resistance)"
	case ChargeTransferResistance:
		return "Rct (Charge Transfer Resistance)"
	}
	return fmt.Sprintf("Parameter(%d)", int(p))
}

// Short is the column label used in text reports.
func (p Parameter) Short() string {
	switch p {
	case ImpedanceMagnitude:
		return "|Z|"
	case ElectrolyteResistance:
		return "Re"
	case ChargeTransferResistance:
		return "Rct"
	}
	return p.String()
}

// Value selects the column of r that p names. nil means absent.
func (p Parameter) Value(r AggregatedRecord) *float64 {
	switch p {
	case ImpedanceMagnitude:
		return r.ImpedanceMagnitude
	case ElectrolyteResistance:
		return r.ElectrolyteResistance
	case ChargeTransferResistance:
		return r.ChargeTransferResistance
	}
	return nil
}
