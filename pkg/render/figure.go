package render

import (
	"math"

	"github.com/pkg/errors"

	"github.com/kacperjurak/batteryaging/pkg/chart"
)

// Figure is the plotly.js figure specification of a chart state.
type Figure struct {
	Data   []Scatter `json:"data"`
	Layout Layout    `json:"layout"`
}

type Scatter struct {
	Type    string     `json:"type"`
	Mode    string     `json:"mode"`
	Name    string     `json:"name"`
	Visible bool       `json:"visible"`
	X       []int      `json:"x"`
	Y       []*float64 `json:"y"`
}

type Text struct {
	Text string `json:"text"`
}

type Axis struct {
	Title Text `json:"title"`
}

type Layout struct {
	Title       Text         `json:"title"`
	XAxis       Axis         `json:"xaxis"`
	YAxis       Axis         `json:"yaxis"`
	UpdateMenus []UpdateMenu `json:"updatemenus"`
}

type UpdateMenu struct {
	Buttons    []Button `json:"buttons"`
	Direction  string   `json:"direction"`
	ShowActive bool     `json:"showactive"`
	X          float64  `json:"x"`
	XAnchor    string   `json:"xanchor"`
	Y          float64  `json:"y"`
	YAnchor    string   `json:"yanchor"`
}

// Button is an "update" dropdown entry. Args holds the restyle update
// followed by the relayout update.
type Button struct {
	Label  string                    `json:"label"`
	Method string                    `json:"method"`
	Args   [2]map[string]interface{} `json:"args"`
}

// NewFigure translates a chart state and its menus into a plotly figure.
func NewFigure(state chart.State) (Figure, error) {
	fig := Figure{
		Data: make([]Scatter, len(state.Traces)),
		Layout: Layout{
			Title: Text{state.Layout.Title},
			XAxis: Axis{Title: Text{state.Layout.XAxisTitle}},
			YAxis: Axis{Title: Text{state.Layout.YAxisTitle}},
		},
	}
	for i, t := range state.Traces {
		fig.Data[i] = Scatter{
			Type:    "scatter",
			Mode:    t.Mode,
			Name:    t.Name,
			Visible: t.Visible,
			X:       nonNilInts(t.X),
			Y:       sanitize(t.Y),
		}
	}

	for _, m := range state.Menus() {
		menu := UpdateMenu{
			Direction:  "down",
			ShowActive: true,
			X:          m.X,
			XAnchor:    "left",
			Y:          m.Y,
			YAnchor:    "top",
		}
		for _, o := range m.Options {
			e, err := state.Effect(o)
			if err != nil {
				return Figure{}, errors.Wrapf(err, "menu button %q", o.Label)
			}
			menu.Buttons = append(menu.Buttons, newButton(o.Label, e))
		}
		fig.Layout.UpdateMenus = append(fig.Layout.UpdateMenus, menu)
	}
	return fig, nil
}

func newButton(label string, e chart.Effect) Button {
	restyle := map[string]interface{}{}
	relayout := map[string]interface{}{}

	if e.Visible != nil {
		restyle["visible"] = e.Visible
	}
	if e.X != nil {
		x := make([][]int, len(e.X))
		for i := range e.X {
			x[i] = nonNilInts(e.X[i])
		}
		restyle["x"] = x
	}
	if e.Y != nil {
		y := make([][]*float64, len(e.Y))
		for i := range e.Y {
			y[i] = sanitize(e.Y[i])
		}
		restyle["y"] = y
	}
	if e.Title != nil {
		relayout["title.text"] = *e.Title
	}
	if e.YAxisTitle != nil {
		relayout["yaxis.title.text"] = *e.YAxisTitle
	}

	return Button{
		Label:  label,
		Method: "update",
		Args:   [2]map[string]interface{}{restyle, relayout},
	}
}

// sanitize turns values JSON cannot carry into gaps.
func sanitize(values []*float64) []*float64 {
	res := make([]*float64, len(values))
	for i, v := range values {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		f := *v
		res[i] = &f
	}
	return res
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
