package render

import (
	"bytes"
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kacperjurak/batteryaging/internal/utils"
	"github.com/kacperjurak/batteryaging/pkg/chart"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{if .PlotlyURL}}<script src="{{.PlotlyURL}}" charset="utf-8"></script>{{else}}<script type="text/javascript">{{.Script}}</script>{{end}}
</head>
<body>
<div id="{{.ElementID}}" style="width:100%;height:100vh;"></div>
<script type="text/javascript">
(function() {
  var figure = {{.Figure}};
  Plotly.newPlot({{.ElementID}}, figure.data, figure.layout, {responsive: true});
})();
</script>
</body>
</html>
`))

type pageData struct {
	Title     string
	Script    template.JS
	PlotlyURL string
	ElementID string
	Figure    template.JS
}

// HTMLRenderer writes a chart as an interactive plotly document.
type HTMLRenderer struct {
	script    []byte
	plotlyURL string
}

// Options holds configuration for creating a new HTMLRenderer
type Options struct {
	// Script is the plotly.js bundle inlined into the document.
	Script []byte
	// PlotlyURL replaces the inlined bundle with a script reference. The
	// document then needs network access to display.
	PlotlyURL string
}

// NewHTMLRenderer creates a new renderer
func NewHTMLRenderer(opts Options) *HTMLRenderer {
	return &HTMLRenderer{script: opts.Script, plotlyURL: opts.PlotlyURL}
}

// Render writes state to path. The document is written to a temporary file
// first and renamed into place, so path is never left half written.
func (r *HTMLRenderer) Render(state chart.State, path string) error {
	doc, err := r.Document(state)
	if err != nil {
		return err
	}
	if err := writeAtomic(path, doc); err != nil {
		return err
	}
	logrus.Debugf("Wrote %d bytes to %s", len(doc), path)
	return nil
}

// Document returns the HTML of state.
func (r *HTMLRenderer) Document(state chart.State) ([]byte, error) {
	if len(r.script) == 0 && r.plotlyURL == "" {
		return nil, errors.New("no plotly.js bundle to embed")
	}

	fig, err := NewFigure(state)
	if err != nil {
		return nil, errors.Wrap(err, "build figure")
	}
	figJSON, err := json.Marshal(fig)
	if err != nil {
		return nil, errors.Wrap(err, "encode figure")
	}

	var buf bytes.Buffer
	err = page.Execute(&buf, pageData{
		Title:     state.Layout.Title,
		Script:    inlineScript(r.script),
		PlotlyURL: r.plotlyURL,
		ElementID: utils.ElementID("battery-aging"),
		Figure:    template.JS(figJSON),
	})
	if err != nil {
		return nil, errors.Wrap(err, "render document")
	}
	return buf.Bytes(), nil
}

// inlineScript keeps a closing script tag inside the bundle from ending the
// element early.
func inlineScript(script []byte) template.JS {
	return template.JS(strings.ReplaceAll(string(script), "</script", `<\/script`))
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	name := tmp.Name()

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(name, 0o644)
	}
	if err == nil {
		err = os.Rename(name, path)
	}
	if err != nil {
		os.Remove(name)
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
