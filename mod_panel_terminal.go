package lightlab

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

const terminalEventBuffer = 64

var (
	styleTitle  = tcell.StyleDefault.Bold(true)
	styleFolder = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleCursor = tcell.StyleDefault.Reverse(true)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// TerminalPanel draws a Panel with tcell and edits it from the keyboard.
// A goroutine pumps screen events into a channel; Update drains it on the
// frame thread so field callbacks never race the scene.
type TerminalPanel struct {
	screen tcell.Screen
	panel  *Panel
	events chan tcell.Event
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once

	cursor int
	status string
}

func NewTerminalPanel(screen tcell.Screen, panel *Panel) *TerminalPanel {
	return &TerminalPanel{
		screen: screen,
		panel:  panel,
		events: make(chan tcell.Event, terminalEventBuffer),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start initialises the screen and launches the event pump.
func (t *TerminalPanel) Start() error {
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	t.screen.Clear()
	go t.pollLoop()
	return nil
}

func (t *TerminalPanel) pollLoop() {
	defer close(t.doneCh)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case <-t.stopCh:
			return
		default:
		}
		select {
		case t.events <- ev:
		case <-t.stopCh:
			return
		}
	}
}

// Close stops the pump and restores the terminal. Safe to call twice.
func (t *TerminalPanel) Close() {
	t.once.Do(func() {
		close(t.stopCh)
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
		<-t.doneCh
		t.screen.Fini()
	})
}

// Update applies every queued event and redraws. It reports whether the
// user asked to quit.
func (t *TerminalPanel) Update() (quit bool) {
	for {
		select {
		case ev := <-t.events:
			if t.handle(ev) {
				quit = true
			}
		default:
			t.Draw()
			return quit
		}
	}
}

func (t *TerminalPanel) Cursor() int { return t.cursor }

func (t *TerminalPanel) Status() string { return t.status }

func (t *TerminalPanel) handle(ev tcell.Event) (quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
	case *tcell.EventKey:
		return t.handleKey(ev)
	}
	return false
}

func (t *TerminalPanel) handleKey(ev *tcell.EventKey) (quit bool) {
	rows := t.panel.Rows()
	t.clampCursor(len(rows))

	steps := 1
	if ev.Modifiers()&tcell.ModShift != 0 {
		steps = 10
	}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		t.cursor--
	case tcell.KeyDown:
		t.cursor++
	case tcell.KeyLeft:
		t.nudge(rows, -steps)
	case tcell.KeyRight:
		t.nudge(rows, steps)
	case tcell.KeyEnter:
		t.activate(rows)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case ' ':
			t.activate(rows)
		case 's':
			t.save()
		case 'l':
			t.load()
		}
	}
	t.clampCursor(len(t.panel.Rows()))
	return false
}

func (t *TerminalPanel) clampCursor(n int) {
	if t.cursor >= n {
		t.cursor = n - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

func (t *TerminalPanel) nudge(rows []PanelRow, steps int) {
	if t.cursor >= len(rows) || rows[t.cursor].Field == nil {
		return
	}
	rows[t.cursor].Field.Nudge(steps)
}

// activate opens/closes folders and flips checkboxes.
func (t *TerminalPanel) activate(rows []PanelRow) {
	if t.cursor >= len(rows) {
		return
	}
	row := rows[t.cursor]
	switch {
	case row.Folder != nil:
		if row.Folder.IsOpen() {
			row.Folder.Close()
		} else {
			row.Folder.Open()
		}
	case row.Field != nil && row.Field.Kind() == FieldBool:
		row.Field.Nudge(1)
	}
}

func (t *TerminalPanel) save() {
	if t.panel.PresetPath == "" {
		t.status = "no preset path configured"
		return
	}
	if err := SavePanelPreset(t.panel, t.panel.PresetPath); err != nil {
		t.status = "save failed: " + err.Error()
		return
	}
	t.status = "saved " + t.panel.PresetPath
}

func (t *TerminalPanel) load() {
	if t.panel.PresetPath == "" {
		t.status = "no preset path configured"
		return
	}
	skipped, err := LoadPanelPreset(t.panel, t.panel.PresetPath)
	if err != nil {
		t.status = "load failed: " + err.Error()
		return
	}
	t.status = fmt.Sprintf("loaded %s (%d skipped)", t.panel.PresetPath, len(skipped))
}

// Draw renders the visible rows, scrolling to keep the cursor on screen.
func (t *TerminalPanel) Draw() {
	s := t.screen
	s.Clear()
	width, height := s.Size()

	drawText(s, 0, 0, width, styleTitle, t.panel.Title)
	rows := t.panel.Rows()
	t.clampCursor(len(rows))

	visible := height - 3
	if visible < 1 {
		visible = 1
	}
	first := 0
	if t.cursor >= visible {
		first = t.cursor - visible + 1
	}
	for i := first; i < len(rows) && i-first < visible; i++ {
		row := rows[i]
		style := tcell.StyleDefault
		if row.Folder != nil {
			style = styleFolder
		}
		if i == t.cursor {
			style = styleCursor
		}
		y := i - first + 1
		x := drawText(s, 0, y, width, style, row.Text())
		if c, ok := row.Field.(*ColorField); ok && x+2 < width {
			swatch := tcell.StyleDefault.Background(tcell.NewHexColor(int32(c.Get())))
			s.SetContent(x+1, y, ' ', nil, swatch)
			s.SetContent(x+2, y, ' ', nil, swatch)
		}
	}

	help := "↑↓ move  ←→ adjust (shift ×10)  space/enter toggle  s save  l load  q quit"
	drawText(s, 0, height-2, width, tcell.StyleDefault.Dim(true), help)
	drawText(s, 0, height-1, width, styleStatus, t.status)
	s.Show()
}

func drawText(s tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) int {
	for _, r := range text {
		if x >= maxWidth {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// TerminalPanelModule shows the Panel resource in the terminal. Install it
// after every module that declares panel folders.
type TerminalPanelModule struct {
	// Screen defaults to the process terminal.
	Screen tcell.Screen
}

func (mod TerminalPanelModule) Install(app *App, cmd *Commands) {
	panel := Resource[Panel](app)
	if panel == nil {
		panic("TerminalPanelModule requires PanelModule")
	}
	screen := mod.Screen
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			app.Logger().Warnf("Terminal panel disabled: %v", err)
			return
		}
	}

	tp := NewTerminalPanel(screen, panel)
	if err := tp.Start(); err != nil {
		app.Logger().Warnf("Terminal panel disabled: %v", err)
		return
	}
	app.addResources(tp)
	app.UseSystem(System(terminalPanelSystem).InStage(PreUpdate).RunAlways())
	if app.stateful {
		app.UseSystem(System(closeTerminalPanelSystem).InStage(Finale).InState(OnExit(app.finalState)))
	}
}

func terminalPanelSystem(cmd *Commands, tp *TerminalPanel) {
	if tp.Update() {
		cmd.Quit()
	}
}

func closeTerminalPanelSystem(tp *TerminalPanel) {
	tp.Close()
}
