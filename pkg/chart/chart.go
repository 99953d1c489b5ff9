// Package chart models the battery aging chart: one trace per parameter and
// two dropdown menus, one choosing the visible parameter and one choosing the
// battery whose data every trace is bound to.
//
// Transitions are pure: Select returns a new State and never modifies its
// argument. Parameter options only touch trace visibility and the y-axis
// title; battery options only touch trace data and the chart title. The two
// menus therefore commute and resetting one leaves the other alone.
package chart

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/kacperjurak/batteryaging/pkg/models"
)

const (
	DefaultTitle       = "Battery Aging Analysis"
	DefaultXAxisTitle  = "Age (Charge/Discharge Cycle)"
	DefaultYAxisTitle  = "Parameter Value"
	ParameterResetText = "Select Topic"
	BatteryResetText   = "Select Battery ID"
	TraceMode          = "markers+lines"
)

// Axis identifies one of the two independent selectors.
type Axis int

const (
	ParameterAxis Axis = iota
	BatteryAxis
)

func (a Axis) String() string {
	switch a {
	case ParameterAxis:
		return "parameter"
	case BatteryAxis:
		return "battery"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Trace is the plotted series of one parameter.
type Trace struct {
	Name      string
	Parameter models.Parameter
	Mode      string
	Visible   bool
	X         []int
	// Y entries are nil where the parameter is absent.
	Y []*float64
}

type Layout struct {
	Title      string
	XAxisTitle string
	YAxisTitle string
}

// Option is one dropdown entry.
type Option struct {
	Label     string
	Axis      Axis
	Reset     bool
	Parameter models.Parameter
	Battery   string
}

// Menu is one dropdown. X and Y position it in paper coordinates.
type Menu struct {
	Axis    Axis
	Options []Option
	X       float64
	Y       float64
}

// State is the complete display state of the chart.
type State struct {
	Parameters []models.Parameter
	Batteries  []string
	Traces     []Trace
	Layout     Layout

	// SelectedParameter and SelectedBattery are nil while the axis is reset.
	SelectedParameter *models.Parameter
	SelectedBattery   *string

	series map[string]batterySeries
}

// batterySeries is the data of one battery in relative age order; values is
// indexed by parameter.
type batterySeries struct {
	ages   []int
	values [][]*float64
}

// Build creates the initial, unselected chart for d. Every trace starts
// hidden and empty.
func Build(d models.CombinedDataset) State {
	params := append([]models.Parameter(nil), models.Parameters...)

	traces := make([]Trace, len(params))
	for i, p := range params {
		traces[i] = Trace{
			Name:      p.String(),
			Parameter: p,
			Mode:      TraceMode,
			Visible:   false,
			X:         []int{},
			Y:         []*float64{},
		}
	}

	batteries := d.Batteries()
	series := make(map[string]batterySeries, len(batteries))
	for _, id := range batteries {
		series[id] = newBatterySeries(d.ForBattery(id), params)
	}

	return State{
		Parameters: params,
		Batteries:  batteries,
		Traces:     traces,
		Layout: Layout{
			Title:      DefaultTitle,
			XAxisTitle: DefaultXAxisTitle,
			YAxisTitle: DefaultYAxisTitle,
		},
		series: series,
	}
}

func newBatterySeries(recs []models.AggregatedRecord, params []models.Parameter) batterySeries {
	recs = append([]models.AggregatedRecord(nil), recs...)
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].RelativeAge < recs[j].RelativeAge
	})

	s := batterySeries{
		ages:   make([]int, len(recs)),
		values: make([][]*float64, len(params)),
	}
	for i, r := range recs {
		s.ages[i] = r.RelativeAge
	}
	for pi, p := range params {
		s.values[pi] = make([]*float64, len(recs))
		for i, r := range recs {
			s.values[pi][i] = p.Value(r)
		}
	}
	return s
}

// ParameterOption selects p.
func ParameterOption(p models.Parameter) Option {
	return Option{Label: p.String(), Axis: ParameterAxis, Parameter: p}
}

// BatteryOption selects the battery id.
func BatteryOption(id string) Option {
	return Option{Label: "Battery " + id, Axis: BatteryAxis, Battery: id}
}

// ResetParameter hides every trace.
func ResetParameter() Option {
	return Option{Label: ParameterResetText, Axis: ParameterAxis, Reset: true}
}

// ResetBattery clears the data of every trace.
func ResetBattery() Option {
	return Option{Label: BatteryResetText, Axis: BatteryAxis, Reset: true}
}

// Menus returns the parameter dropdown followed by the battery dropdown.
// Each starts with its reset option.
func (s State) Menus() []Menu {
	params := []Option{ResetParameter()}
	for _, p := range s.Parameters {
		params = append(params, ParameterOption(p))
	}
	batteries := []Option{ResetBattery()}
	for _, id := range s.Batteries {
		batteries = append(batteries, BatteryOption(id))
	}
	return []Menu{
		{Axis: ParameterAxis, Options: params, X: 0.15, Y: 1.15},
		{Axis: BatteryAxis, Options: batteries, X: 0.35, Y: 1.15},
	}
}

// VisibleCount is the number of visible traces.
func (s State) VisibleCount() int {
	n := 0
	for _, t := range s.Traces {
		if t.Visible {
			n++
		}
	}
	return n
}

// Select applies o and returns the resulting state. s is not modified.
func Select(s State, o Option) (State, error) {
	e, err := s.Effect(o)
	if err != nil {
		return s, err
	}
	next := s.Apply(e)

	switch o.Axis {
	case ParameterAxis:
		next.SelectedParameter = nil
		if !o.Reset {
			p := o.Parameter
			next.SelectedParameter = &p
		}
	case BatteryAxis:
		next.SelectedBattery = nil
		if !o.Reset {
			id := o.Battery
			next.SelectedBattery = &id
		}
	}
	return next, nil
}

func (s State) parameterIndex(p models.Parameter) (int, bool) {
	for i, q := range s.Parameters {
		if q == p {
			return i, true
		}
	}
	return 0, false
}

// String describes o for error messages and logs.
func (o Option) String() string {
	if o.Reset {
		return fmt.Sprintf("%s reset", o.Axis)
	}
	return fmt.Sprintf("%s %q", o.Axis, o.Label)
}

var errUnknownOption = errors.New("unknown chart option")
