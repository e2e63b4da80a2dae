package main

import (
	"fmt"
	"time"

	"honnef.co/go/flamechart"
	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/plugins/marks"
	"honnef.co/go/flamechart/plugins/waterfall"
	"honnef.co/go/flamechart/raster"
	"honnef.co/go/flamechart/render"
	"honnef.co/go/flamechart/tree"

	"gioui.org/f32"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
)

const (
	frameInterval = time.Second / 30
	// footerLines is the status line plus the help line.
	footerLines = 2
	// wheelStep is the zoom delta of one wheel notch or key press.
	wheelStep = 100
)

var statusStyle = styles.NewStyle().Bold(true)

type frameMsg struct{}

type keyMap struct {
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Left    key.Binding
	Right   key.Binding
	Reset   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Left, k.Right, k.Reset, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.Left, k.Right},
		{k.Reset, k.Help, k.Quit},
	}
}

var keys = keyMap{
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "pan left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "pan right"),
	),
	Reset: key.NewBinding(
		key.WithKeys("home", "0"),
		key.WithHelp("home/0", "show all"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}

type model struct {
	fc     *flamechart.FlameChart
	img    *raster.Canvas
	frames *render.FrameQueue
	help   help.Model

	cols, rows int
	// ticking is true while a frameMsg is on its way.
	ticking bool
	pressed bool
	chart   string
	status  string
}

func newModel(opts flamechart.Options, cols, rows int) (*model, error) {
	m := &model{
		frames: &render.FrameQueue{},
		help:   help.New(),
		status: "click a block to select it",
	}
	m.cols, m.rows = max(cols, 1), max(rows-footerLines, 1)
	m.img = raster.New(m.cols*cellWidth, m.rows*cellHeight)
	opts.Frames = m.frames
	fc, err := flamechart.New(m.img, opts)
	if err != nil {
		return nil, err
	}
	m.fc = fc
	fc.OnSelect(func(sel event.Selection) { m.status = describe(sel) })
	m.frames.Tick()
	m.draw()
	return m, nil
}

func describe(sel event.Selection) string {
	switch n := sel.Node.(type) {
	case *tree.Node:
		return fmt.Sprintf("%s: %s (%g + %g)", sel.Kind, n.Name, n.Start, n.Duration)
	case *waterfall.Item:
		return fmt.Sprintf("%s: %s", sel.Kind, n.Name)
	case *marks.Mark:
		return fmt.Sprintf("%s: %s at %g", sel.Kind, n.FullName, n.Timestamp)
	default:
		return "nothing selected"
	}
}

func (m *model) draw() {
	m.chart = renderCells(toCells(m.img.RGBA(), m.cols, m.rows))
}

// schedule returns the command that delivers the next frame, if one is needed and none is underway.
func (m *model) schedule() tui.Cmd {
	if m.ticking || !m.frames.Pending() {
		return nil
	}
	m.ticking = true
	return tui.Tick(frameInterval, func(time.Time) tui.Msg { return frameMsg{} })
}

func (m *model) Init() tui.Cmd { return m.schedule() }

func (m *model) center() f32.Point {
	return f32.Pt(float32(m.cols*cellWidth)/2, float32(m.rows*cellHeight)/2)
}

func (m *model) Update(msg tui.Msg) (tui.Model, tui.Cmd) {
	in := m.fc.Input()
	switch msg := msg.(type) {
	case frameMsg:
		m.ticking = false
		if m.frames.Tick() > 0 {
			m.draw()
		}
	case tui.WindowSizeMsg:
		m.cols, m.rows = max(msg.Width, 1), max(msg.Height-footerLines, 1)
		m.help.Width = msg.Width
		m.fc.Resize(m.cols*cellWidth, m.rows*cellHeight)
	case tui.KeyMsg:
		step := float64(m.cols*cellWidth) / 10
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tui.Quit
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, keys.ZoomIn):
			in.HandleWheel(m.center(), 0, -wheelStep)
		case key.Matches(msg, keys.ZoomOut):
			in.HandleWheel(m.center(), 0, wheelStep)
		case key.Matches(msg, keys.Left):
			in.HandleWheel(m.center(), -step, 0)
		case key.Matches(msg, keys.Right):
			in.HandleWheel(m.center(), step, 0)
		case key.Matches(msg, keys.Reset):
			m.fc.Canvas().ResetView()
			m.fc.Render()
		}
	case tui.MouseMsg:
		m.mouse(tui.MouseEvent(msg))
	}
	return m, m.schedule()
}

func (m *model) mouse(ev tui.MouseEvent) {
	if ev.Y >= m.rows {
		return
	}
	in := m.fc.Input()
	pos := f32.Pt(pixel(ev.X, ev.Y))
	switch ev.Action {
	case tui.MouseActionPress:
		switch ev.Button {
		case tui.MouseButtonWheelUp:
			in.HandleWheel(pos, 0, -wheelStep)
		case tui.MouseButtonWheelDown:
			in.HandleWheel(pos, 0, wheelStep)
		case tui.MouseButtonWheelLeft:
			in.HandleWheel(pos, -cellWidth*4, 0)
		case tui.MouseButtonWheelRight:
			in.HandleWheel(pos, cellWidth*4, 0)
		case tui.MouseButtonLeft:
			in.HandleMouseMove(pos)
			in.HandleMouseDown(pos)
			m.pressed = true
		}
	case tui.MouseActionRelease:
		if m.pressed {
			m.pressed = false
			in.HandleMouseUp(pos)
		}
	case tui.MouseActionMotion:
		in.HandleMouseMove(pos)
	}
}

func (m *model) View() string {
	return styles.JoinVertical(styles.Left, m.chart, statusStyle.Render(m.status), m.help.View(keys))
}
