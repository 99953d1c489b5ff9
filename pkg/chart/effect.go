package chart

import (
	"github.com/pkg/errors"
)

// Effect is the update a dropdown option performs. Nil fields are left
// untouched. Visible, X and Y are indexed by trace.
type Effect struct {
	Visible    []bool
	X          [][]int
	Y          [][]*float64
	Title      *string
	YAxisTitle *string
}

// Effect computes the update o performs on s.
func (s State) Effect(o Option) (Effect, error) {
	switch o.Axis {
	case ParameterAxis:
		return s.parameterEffect(o)
	case BatteryAxis:
		return s.batteryEffect(o)
	}
	return Effect{}, errors.Wrapf(errUnknownOption, "%s", o)
}

// parameterEffect always produces a complete visibility vector, so at most
// one trace is visible whatever the prior state was.
func (s State) parameterEffect(o Option) (Effect, error) {
	visible := make([]bool, len(s.Traces))
	title := ParameterResetText
	if !o.Reset {
		if _, ok := s.parameterIndex(o.Parameter); !ok {
			return Effect{}, errors.Wrapf(errUnknownOption, "%s", o)
		}
		for i, t := range s.Traces {
			visible[i] = t.Parameter == o.Parameter
		}
		title = o.Parameter.String()
	}
	return Effect{Visible: visible, YAxisTitle: &title}, nil
}

// batteryEffect binds every trace, visible or not, to the battery's values
// of the trace's own parameter.
func (s State) batteryEffect(o Option) (Effect, error) {
	x := make([][]int, len(s.Traces))
	y := make([][]*float64, len(s.Traces))

	if o.Reset {
		for i := range s.Traces {
			x[i] = []int{}
			y[i] = []*float64{}
		}
		title := BatteryResetText
		return Effect{X: x, Y: y, Title: &title}, nil
	}

	series, ok := s.series[o.Battery]
	if !ok {
		return Effect{}, errors.Wrapf(errUnknownOption, "%s", o)
	}
	for i, t := range s.Traces {
		idx, ok := s.parameterIndex(t.Parameter)
		if !ok {
			return Effect{}, errors.Errorf("trace %q has no parameter column", t.Name)
		}
		x[i] = append([]int(nil), series.ages...)
		y[i] = append([]*float64(nil), series.values[idx]...)
	}
	title := "Battery ID " + o.Battery
	return Effect{X: x, Y: y, Title: &title}, nil
}

// Apply returns a copy of s with e applied.
func (s State) Apply(e Effect) State {
	next := s
	next.Traces = append([]Trace(nil), s.Traces...)

	for i := range next.Traces {
		if e.Visible != nil && i < len(e.Visible) {
			next.Traces[i].Visible = e.Visible[i]
		}
		if e.X != nil && i < len(e.X) {
			next.Traces[i].X = e.X[i]
		}
		if e.Y != nil && i < len(e.Y) {
			next.Traces[i].Y = e.Y[i]
		}
	}
	if e.Title != nil {
		next.Layout.Title = *e.Title
	}
	if e.YAxisTitle != nil {
		next.Layout.YAxisTitle = *e.YAxisTitle
	}
	return next
}
