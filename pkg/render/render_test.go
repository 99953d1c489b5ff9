package render

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kacperjurak/batteryaging/pkg/chart"
	"github.com/kacperjurak/batteryaging/pkg/models"
)

const testScript = "window.Plotly={newPlot:function(){}};"

func testRenderer() *HTMLRenderer {
	return NewHTMLRenderer(Options{Script: []byte(testScript)})
}

func testState() chart.State {
	f := models.Float
	return chart.Build(models.CombinedDataset{
		{BatteryID: "B0005", RelativeAge: 0, ImpedanceMagnitude: f(0.2), ElectrolyteResistance: f(0.05), ChargeTransferResistance: f(0.1)},
		{BatteryID: "B0005", RelativeAge: 1, ImpedanceMagnitude: nil, ElectrolyteResistance: f(math.Inf(1)), ChargeTransferResistance: f(0.11)},
		{BatteryID: "B0006", RelativeAge: 0, ImpedanceMagnitude: f(0.3), ElectrolyteResistance: f(0.07), ChargeTransferResistance: f(0.2)},
	})
}

func TestNewFigure(t *testing.T) {
	fig, err := NewFigure(testState())
	require.NoError(t, err)

	require.Len(t, fig.Data, 3)
	for _, s := range fig.Data {
		assert.False(t, s.Visible)
		assert.Equal(t, "markers+lines", s.Mode)
		assert.NotNil(t, s.X)
		assert.Empty(t, s.Y)
	}
	assert.Equal(t, "Battery Aging Analysis", fig.Layout.Title.Text)
	assert.Equal(t, "Age (Charge/Discharge Cycle)", fig.Layout.XAxis.Title.Text)

	require.Len(t, fig.Layout.UpdateMenus, 2)
	params := fig.Layout.UpdateMenus[0].Buttons
	require.Len(t, params, 4)
	assert.Equal(t, "Select Topic", params[0].Label)
	assert.Equal(t, []bool{false, false, false}, params[0].Args[0]["visible"])
	assert.Equal(t, "Select Topic", params[0].Args[1]["yaxis.title.text"])
	assert.Equal(t, []bool{false, true, false}, params[2].Args[0]["visible"])
	assert.NotContains(t, params[2].Args[0], "x")

	batteries := fig.Layout.UpdateMenus[1].Buttons
	require.Len(t, batteries, 3)
	assert.Equal(t, "Battery B0005", batteries[1].Label)
	assert.Equal(t, "update", batteries[1].Method)
	assert.Equal(t, "Battery ID B0005", batteries[1].Args[1]["title.text"])
	assert.NotContains(t, batteries[1].Args[0], "visible")
	assert.Equal(t, [][]int{{0, 1}, {0, 1}, {0, 1}}, batteries[1].Args[0]["x"])

	y := batteries[1].Args[0]["y"].([][]*float64)
	assert.Nil(t, y[0][1])
	// infinite values become gaps
	assert.Nil(t, y[1][1])
	assert.Equal(t, 0.05, *y[1][0])

	assert.Equal(t, [][]int{{}, {}, {}}, batteries[0].Args[0]["x"])
	assert.Equal(t, "Select Battery ID", batteries[0].Args[1]["title.text"])
}

func TestFigureJSON(t *testing.T) {
	fig, err := NewFigure(testState())
	require.NoError(t, err)
	raw, err := json.Marshal(fig)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	layout := decoded["layout"].(map[string]interface{})
	menus := layout["updatemenus"].([]interface{})
	assert.Len(t, menus, 2)
	assert.Contains(t, string(raw), `"y":[[0.2,null],[0.05,null],[0.1,0.11]]`)
}

func TestRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battery_aging_analysis.html")
	require.NoError(t, testRenderer().Render(testState(), path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(content)
	assert.NotEmpty(t, doc)
	assert.Contains(t, doc, testScript)
	assert.NotContains(t, doc, "src=")
	assert.Contains(t, doc, "Plotly.newPlot(")
	assert.Contains(t, doc, `"updatemenus"`)
	assert.Contains(t, doc, "Battery B0006")
	assert.Contains(t, doc, `id="battery-aging-`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestRenderUnwritableDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.html")
	err := testRenderer().Render(testState(), path)
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestDocumentTitleEscaped(t *testing.T) {
	st := chart.Build(models.CombinedDataset{{BatteryID: "<b>"}})
	doc, err := NewHTMLRenderer(Options{PlotlyURL: "plotly.js"}).Document(st)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(doc), "<b>"))
	assert.Contains(t, string(doc), `src="plotly.js"`)
}

func TestDocumentWithoutBundle(t *testing.T) {
	_, err := NewHTMLRenderer(Options{}).Document(testState())
	require.Error(t, err)
}

func TestDocumentInlinesBundle(t *testing.T) {
	script := []byte(`var s = "</script><script>alert(1)</script>";` + testScript)
	doc, err := NewHTMLRenderer(Options{Script: script}).Document(testState())
	require.NoError(t, err)

	html := string(doc)
	assert.NotContains(t, html, "src=")
	assert.NotContains(t, html, "alert(1)</script>")
	assert.Contains(t, html, `<\/script><script>alert(1)<\/script>`)
	assert.Equal(t, 2, strings.Count(html, "</script>"))
}
