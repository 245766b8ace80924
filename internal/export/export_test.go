package export

import (
	"encoding/json"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/testutil"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

func ringResult(t *testing.T) (*blob.Result, trace.Image) {
	t.Helper()
	img := testutil.MustGrid(t, `
		.....
		.###.
		.#.#.
		.###.
		.....
	`)
	res, err := blob.Find(img, blob.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Contours, 2)
	return res, img
}

func TestFormatJSON(t *testing.T) {
	res, _ := ringResult(t)
	out, err := Format([]Document{{File: "ring.png", Result: res}}, "json")
	require.NoError(t, err)

	var decoded struct {
		Images []Document `json:"images"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Images, 1)
	assert.Equal(t, "ring.png", decoded.Images[0].File)
	assert.Equal(t, blob.Hole, decoded.Images[0].Result.Contours[1].Polarity)
	assert.Contains(t, out, `"polarity": "outer"`)
}

func TestFormatYAML(t *testing.T) {
	res, _ := ringResult(t)
	out, err := Format([]Document{{File: "ring.png", Result: res}}, "yaml")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, out, "polarity: hole")
	assert.Contains(t, decoded, "images")
}

func TestFormatCSV(t *testing.T) {
	res, _ := ringResult(t)
	out, err := Format([]Document{{File: "ring.png", Result: res}, {File: "bad.png", Error: "boom"}}, "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "file,contour,label,polarity,index,x,y", lines[0])
	assert.Len(t, lines, 1+len(res.Contours[0].Points)+len(res.Contours[1].Points))
	assert.Equal(t, "ring.png,0,1,outer,0,1,1", lines[1])
}

func TestFormatText(t *testing.T) {
	res, _ := ringResult(t)
	out, err := Format([]Document{{File: "ring.png", Result: res}, {File: "bad.png", Error: "boom"}}, "text")
	require.NoError(t, err)

	assert.Contains(t, out, "# ring.png\n5x5, 1 components, 2 contours\n")
	assert.Contains(t, out, "Outer 1: 8 points")
	assert.Contains(t, out, "Hole 1: 4 points")
	assert.Contains(t, out, "turns -4")
	assert.Contains(t, out, "# bad.png\nerror: boom\n")
}

func TestFormatSVG(t *testing.T) {
	res, _ := ringResult(t)
	out, err := Format([]Document{{Result: res}}, "svg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 1, strings.Count(out, "<path"), "holes share their component's path")
	assert.Equal(t, 2, strings.Count(out, "Z"))
	assert.Contains(t, out, `fill-rule="evenodd"`)
	assert.Contains(t, out, "M1.5 1.5")

	_, err = Format(nil, "svg")
	assert.Error(t, err)
}

func TestFormatUnsupported(t *testing.T) {
	_, err := Format(nil, "xml")
	assert.Error(t, err)
	_, err = FormatTrace(TraceDocument{}, "xml")
	assert.Error(t, err)
	assert.True(t, IsValidFormat("yaml"))
	assert.False(t, IsValidFormat("xml"))
}

func TestFormatTrace(t *testing.T) {
	img := testutil.MustGrid(t, ".###.")
	var points trace.Contour
	res, err := trace.Trace(&points, img, 2, 0, trace.DefaultOptions())
	require.NoError(t, err)
	doc := NewTraceDocument("row.png", img, res, points)

	text, err := FormatTrace(doc, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Outer contour: start (2,0,right), stop (2,0,right), length 4, turns +4, complete")
	assert.Contains(t, text, "(2,0) (3,0) (2,0) (1,0)")

	js, err := FormatTrace(doc, "json")
	require.NoError(t, err)
	var decoded TraceDocument
	require.NoError(t, json.Unmarshal([]byte(js), &decoded))
	assert.Equal(t, doc, decoded)

	csvOut, err := FormatTrace(doc, "csv")
	require.NoError(t, err)
	assert.Equal(t, "index,x,y\n0,2,0\n1,3,0\n2,2,0\n3,1,0\n", csvOut)

	svg, err := FormatTrace(doc, "svg")
	require.NoError(t, err)
	assert.Contains(t, svg, `width="5" height="1"`)

	y, err := FormatTrace(doc, "yaml")
	require.NoError(t, err)
	assert.Contains(t, y, "turns: 4")
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#10ff80")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0xff, B: 0x80, A: 255}, c)

	_, err = ParseHexColor("red")
	assert.Error(t, err)
	_, err = ParseHexColor("#gggggg")
	assert.Error(t, err)
}

func TestOverlay(t *testing.T) {
	res, img := ringResult(t)
	opts := DefaultOverlayOptions()

	out := Overlay(nil, img, res, opts)
	assert.Equal(t, 5, out.Bounds().Dx())
	assert.Equal(t, opts.Outer, out.NRGBAAt(1, 1))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, out.NRGBAAt(0, 0))

	opts.Scale = 3
	scaled := Overlay(nil, img, res, opts)
	assert.Equal(t, 15, scaled.Bounds().Dx())
	assert.Equal(t, opts.Outer, scaled.NRGBAAt(4, 4))

	single := OverlayTrace(img, trace.Contour{{X: 2, Y: 1}}, DefaultOverlayOptions())
	assert.Equal(t, DefaultOverlayOptions().Outer, single.NRGBAAt(2, 1))
}
