package main

import (
	"image"
	stdcolor "image/color"
	"strings"
	"testing"

	"honnef.co/go/flamechart"
	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/tree"

	tui "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = stdcolor.RGBA{R: 0xFF, A: 0xFF}
	blue = stdcolor.RGBA{B: 0xFF, A: 0xFF}
)

func TestCells(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2*cellWidth, cellHeight))
	for y := 0; y < cellHeight; y++ {
		for x := 0; x < 2*cellWidth; x++ {
			c := red
			if y >= cellHeight/2 {
				c = blue
			}
			img.SetRGBA(x, y, c)
		}
	}
	cells := toCells(img, 2, 2)
	require.Len(t, cells, 2)
	assert.Equal(t, cell{top: red, bottom: blue}, cells[0][0])
	assert.Equal(t, cells[0][0], cells[0][1])
	assert.Equal(t, cell{}, cells[1][0], "outside of the image")

	out := renderCells(cells)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 2, strings.Count(lines[0], upperHalf))
}

func TestAverage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, stdcolor.RGBA{R: 100, A: 0xFF})
	img.SetRGBA(1, 0, stdcolor.RGBA{R: 200, A: 0xFF})
	assert.Equal(t, stdcolor.RGBA{R: 150, A: 0xFF}, average(img, img.Bounds()))
}

func newTestModel(t *testing.T) *model {
	t.Helper()
	m, err := newModel(flamechart.Options{Data: []*tree.Node{{
		Name: "main", Start: 0, Duration: 100,
		Children: []*tree.Node{{Name: "work", Start: 20, Duration: 30}},
	}}}, 50, 22)
	require.NoError(t, err)
	return m
}

func press(m *model, k string) tui.Cmd {
	var msg tui.KeyMsg
	switch k {
	case "left":
		msg = tui.KeyMsg{Type: tui.KeyLeft}
	case "home":
		msg = tui.KeyMsg{Type: tui.KeyHome}
	default:
		msg = tui.KeyMsg{Type: tui.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, 50, m.cols)
	assert.Equal(t, 20, m.rows)
	w, h := m.img.Size()
	assert.Equal(t, 200, w)
	assert.Equal(t, 160, h)
	assert.Equal(t, 19, strings.Count(m.chart, "\n"))
	assert.Contains(t, m.View(), "zoom in")
}

func TestKeys(t *testing.T) {
	m := newTestModel(t)
	c := m.fc.Canvas()
	full := c.RealView()

	cmd := press(m, "+")
	require.NotNil(t, cmd, "a frame is scheduled")
	assert.True(t, m.ticking)
	assert.Less(t, c.RealView(), full)

	assert.Nil(t, press(m, "+"), "the frame is already underway")
	m.Update(frameMsg{})
	assert.False(t, m.ticking)

	zoomed := c.PositionX()
	press(m, "left")
	assert.Less(t, c.PositionX(), zoomed)

	press(m, "home")
	assert.Equal(t, 0.0, c.PositionX())
	assert.InDelta(t, full, c.RealView(), 1e-9)

	press(m, "?")
	assert.True(t, m.help.ShowAll)

	cmd = press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tui.QuitMsg{}, cmd())
}

func TestWheel(t *testing.T) {
	m := newTestModel(t)
	c := m.fc.Canvas()
	full := c.RealView()

	m.Update(tui.MouseMsg{X: 10, Y: 15, Action: tui.MouseActionPress, Button: tui.MouseButtonWheelDown})
	assert.InDelta(t, full, c.RealView(), 1e-9, "can't zoom out further")

	m.Update(tui.MouseMsg{X: 10, Y: 15, Action: tui.MouseActionPress, Button: tui.MouseButtonWheelUp})
	assert.Less(t, c.RealView(), full)

	// The footer isn't part of the chart.
	view := c.RealView()
	m.Update(tui.MouseMsg{X: 10, Y: 21, Action: tui.MouseActionPress, Button: tui.MouseButtonWheelUp})
	assert.Equal(t, view, c.RealView())
}

func TestResize(t *testing.T) {
	m := newTestModel(t)
	m.Update(tui.WindowSizeMsg{Width: 30, Height: 12})
	assert.Equal(t, 30, m.cols)
	assert.Equal(t, 10, m.rows)
	w, h := m.img.Size()
	assert.Equal(t, 120, w)
	assert.Equal(t, 80, h)
	assert.Equal(t, 30, m.help.Width)
}

func TestStatus(t *testing.T) {
	m := newTestModel(t)
	n := &tree.Node{Name: "work", Start: 20, Duration: 30}
	m.fc.Select.Emit(event.Selection{Kind: event.KindFlameChartNode, Node: n})
	assert.Equal(t, "flame-chart-node: work (20 + 30)", m.status)
	assert.Contains(t, m.View(), "work (20 + 30)")

	m.fc.Select.Emit(event.Selection{Kind: event.KindFlameChartNode})
	assert.Equal(t, "nothing selected", m.status)
}
