package lightlab

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatFieldClampsAndSnaps(t *testing.T) {
	panel := NewPanel("Test")
	var got []float32
	field := panel.Root().AddFloat("Intensity", 50, 0, 200).Step(1).OnChange(func(v float32) {
		got = append(got, v)
	})

	field.Set(250)
	field.Set(-3)
	field.Set(12.4)
	field.Set(float32(math.NaN()))
	assert.Equal(t, []float32{200, 0, 12, 0}, got)

	field.Nudge(3)
	assert.Equal(t, float32(3), field.Get())
}

func TestFloatFieldSetFiresOnSameValue(t *testing.T) {
	panel := NewPanel("Test")
	calls := 0
	field := panel.Root().AddFloat("Speed", 1, 0.1, 5).Step(0.1).OnChange(func(float32) { calls++ })

	field.Set(1)
	field.Set(1)
	assert.Equal(t, 2, calls)
}

func TestFloatFieldDisplayUsesStepPrecision(t *testing.T) {
	panel := NewPanel("Test")
	assert.Equal(t, "0.52", panel.Root().AddFloat("Angle", 0.5236, 0, 1.5708).Step(0.01).Display())
	assert.Equal(t, "100", panel.Root().AddFloat("Intensity", 100, 0, 200).Step(1).Display())
}

func TestBoolField(t *testing.T) {
	panel := NewPanel("Test")
	var got []bool
	field := panel.Root().AddBool("Enable Animation", false).OnChange(func(v bool) { got = append(got, v) })

	field.Nudge(1)
	field.Nudge(2)
	assert.True(t, field.Get())
	assert.False(t, field.SetValue("yes"))
	assert.True(t, field.SetValue(false))
	assert.Equal(t, []bool{true, false}, got)
	assert.Equal(t, "[ ]", field.Display())
}

func TestColorField(t *testing.T) {
	panel := NewPanel("Test")
	var got uint32
	field := panel.Root().AddColor("Light Color", 0xff0000).OnChange(func(v uint32) { got = v })

	assert.True(t, field.SetValue("#00ff00"))
	assert.Equal(t, uint32(0x00ff00), got)
	assert.Equal(t, "#00ff00", field.Value())

	assert.True(t, field.SetValue(float64(0x0000ff)))
	assert.Equal(t, uint32(0x0000ff), field.Get())

	assert.False(t, field.SetValue("#zzzzzz"))
	assert.False(t, field.SetValue(-1.0))
	assert.Equal(t, uint32(0x0000ff), field.Get())
}

func TestColorFieldNudgeRotatesHue(t *testing.T) {
	panel := NewPanel("Test")
	field := panel.Root().AddColor("Light Color", 0xff0000)

	field.Nudge(12)
	r, g, b := (field.Get()>>16)&0xff, (field.Get()>>8)&0xff, field.Get()&0xff
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0xff), g)
	assert.Equal(t, uint32(0), b)

	field.Nudge(-12)
	assert.Equal(t, uint32(0xff0000), field.Get())
}

func TestChoiceField(t *testing.T) {
	panel := NewPanel("Test")
	var got []int
	field := AddChoice(panel.Root(), "Shadow Map Size", 1024, ShadowMapSizes).OnChange(func(v int) { got = append(got, v) })

	assert.False(t, field.Set(1000))
	assert.True(t, field.SetValue(2048.0))
	assert.False(t, field.SetValue(2048.5))
	assert.False(t, field.SetValue("2048"))
	field.Nudge(1)
	field.Nudge(-5)
	assert.Equal(t, []int{2048, 4096, 4096}, got)
}

func TestChoiceFieldInvalidInitial(t *testing.T) {
	panel := NewPanel("Test")
	field := AddChoice(panel.Root(), "Direction", "sideways", []string{"clockwise", "counter-clockwise"})
	assert.Equal(t, "clockwise", field.Get())
	assert.Equal(t, "< clockwise >", field.Display())
}

func newNestedPanel() *Panel {
	panel := NewPanel("Rig")
	panel.Root().AddBool("Effect", false)
	spot := panel.AddFolder("Spotlight Settings").Open()
	spot.AddFloat("Intensity", 100, 0, 200).Step(1)
	anim := panel.AddFolder("Animation Settings")
	anim.AddBool("Enable Animation", false)
	anim.AddFloat("Speed", 1, 0.1, 5).Step(0.1)
	return panel
}

func TestPanelLookup(t *testing.T) {
	panel := newNestedPanel()

	field, ok := panel.Field("Spotlight Settings/Intensity")
	require.True(t, ok)
	assert.Equal(t, "Intensity", field.Label())

	_, ok = panel.Field("Intensity")
	assert.False(t, ok)
	assert.False(t, panel.Set("Missing/Field", 1.0))
	assert.True(t, panel.Set("Animation Settings/Speed", 2.0))

	folder, ok := panel.Root().Folder("Animation Settings")
	require.True(t, ok)
	assert.False(t, folder.IsOpen())
}

func TestPanelWalkOrder(t *testing.T) {
	var paths []string
	newNestedPanel().Walk(func(path string, _ Field) bool {
		paths = append(paths, path)
		return true
	})
	assert.Equal(t, []string{
		"Effect",
		"Spotlight Settings/Intensity",
		"Animation Settings/Enable Animation",
		"Animation Settings/Speed",
	}, paths)
}

func TestPanelRowsHideClosedFolders(t *testing.T) {
	panel := newNestedPanel()
	rows := panel.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, "Effect: [ ]", rows[0].Text())
	assert.Equal(t, "▾ Spotlight Settings", rows[1].Text())
	assert.Equal(t, "  Intensity: 100", rows[2].Text())
	assert.Equal(t, "▸ Animation Settings", rows[3].Text())

	folder, _ := panel.Root().Folder("Animation Settings")
	folder.Open()
	assert.Len(t, panel.Rows(), 6)
}

func TestParseHexColor(t *testing.T) {
	for _, s := range []string{"#a1b2c3", "a1b2c3", "0xa1b2c3", " #A1B2C3 "} {
		v, err := ParseHexColor(s)
		require.NoError(t, err, s)
		assert.Equal(t, uint32(0xa1b2c3), v)
	}
	_, err := ParseHexColor("#fff")
	assert.Error(t, err)
}

func TestHexLinearRoundTrip(t *testing.T) {
	for _, hex := range []uint32{0x000000, 0xffffff, 0x808080, 0x12ab7f} {
		assert.Equal(t, hex, LinearToHex(HexToLinear(hex)))
	}
	assert.InDelta(t, 0.2158, HexToLinear(0x808080).X(), 1e-3)
}
