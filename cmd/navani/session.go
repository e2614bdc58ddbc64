package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cdr.dev/slog"

	"oss.terrastruct.com/navani/lib/geo"
	"oss.terrastruct.com/navani/lib/log"
	"oss.terrastruct.com/navani/nvconfig"
	"oss.terrastruct.com/navani/nvformat"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvinteract"
	"oss.terrastruct.com/navani/nvlib"
	"oss.terrastruct.com/navani/nvoracle"
	"oss.terrastruct.com/navani/nvparser"
	"oss.terrastruct.com/navani/nvrenderers/nvsvg"
	"oss.terrastruct.com/navani/nvstate"
)

// message is sent by the watch page for every input event and form action.
type message struct {
	Type string `json:"type"`

	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button int     `json:"button"`
	Touch  bool    `json:"touch"`
	Ctrl   bool    `json:"ctrl"`
	Meta   bool    `json:"meta"`
	Shift  bool    `json:"shift"`
	DeltaY float64 `json:"deltaY"`
	Key    string  `json:"key"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Editor *editorForm `json:"editor,omitempty"`

	Table string `json:"table"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Name  string `json:"name"`
}

type editorForm struct {
	Mode       string       `json:"mode"`
	FromTable  string       `json:"fromTable"`
	FromColumn string       `json:"fromColumn"`
	ToTable    string       `json:"toTable"`
	ToColumn   string       `json:"toColumn"`
	Name       string       `json:"name"`
	Kind       nvstate.Kind `json:"kind"`
	Required   bool         `json:"required"`
	Anchor     *geo.Point   `json:"anchor,omitempty"`
}

// compileResult is broadcast to every watch page after each change.
type compileResult struct {
	Err       string      `json:"err"`
	SVG       string      `json:"svg"`
	Notice    string      `json:"notice,omitempty"`
	Name      string      `json:"name"`
	Mode      string      `json:"mode"`
	Selection []string    `json:"selection"`
	Editor    *editorForm `json:"editor,omitempty"`
}

var pointerKinds = map[string]nvinteract.Kind{
	"pointerdown":   nvinteract.PointerDown,
	"pointermove":   nvinteract.PointerMove,
	"pointerup":     nvinteract.PointerUp,
	"pointercancel": nvinteract.PointerCancel,
	"wheel":         nvinteract.Wheel,
	"key":           nvinteract.Key,
}

// session is the diagram being edited in watch mode. Every method locks mu;
// the state is shared by the file watcher and all connected pages.
type session struct {
	mu   sync.Mutex
	cfg  *nvconfig.Config
	m    nvgeom.Measurer
	st   *nvstate.State
	ctrl *nvinteract.Controller
	// dsl is the text the state was last loaded from or written as.
	dsl    string
	loaded bool
	notice string
}

func newSession(cfg *nvconfig.Config, m nvgeom.Measurer, name string) *session {
	st := nvstate.New()
	if name != "" {
		st.Name = name
	}
	return &session{
		cfg: cfg,
		m:   m,
		st:  st,
		ctrl: nvinteract.New(st, &nvinteract.Options{
			DragThreshold: nvinteract.DefaultOptions.DragThreshold,
			Layout:        cfg.LayoutOptions(),
			Router:        cfg.RouterOptions(),
		}),
	}
}

// load replaces the schema with text. Positions of tables that keep their
// name survive. Text identical to the last load or write is a no-op so the
// session's own writes do not reset gestures.
func (s *session) load(ctx context.Context, text string) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded && text == s.dsl {
		return false, nil
	}
	_, err = nvlib.Compile(ctx, text, &nvlib.CompileOptions{
		Ruler:  s.m,
		Layout: s.cfg.LayoutOptions(),
		Router: s.cfg.RouterOptions(),
		State:  s.st,
	})
	if err != nil {
		if errors.Is(err, nvparser.ErrNoTables) {
			s.notice = "No tables found; keeping the current diagram"
		}
		return false, err
	}
	s.ctrl.Reset()
	s.loaded = true
	s.dsl = text
	s.notice = ""
	return true, nil
}

// handle applies msg. When the schema changed, dsl is the text to write
// back to the input file.
func (s *session) handle(ctx context.Context, msg *message) (dsl string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notice = ""
	changed := false
	switch msg.Type {
	case "resize":
		if msg.Width > 0 && msg.Height > 0 {
			s.st.Viewport.Width = msg.Width
			s.st.Viewport.Height = msg.Height
		}
	case "editor":
		if msg.Editor == nil || s.st.Editor == nil {
			return "", errors.New("no relation editor is open")
		}
		s.st.Editor.Name = msg.Editor.Name
		s.st.Editor.ToColumn = msg.Editor.ToColumn
		s.st.Editor.Kind = msg.Editor.Kind
		s.st.Editor.Required = msg.Editor.Required
		if err := nvoracle.CommitEditor(s.st); err != nil {
			return "", err
		}
		changed = true
	case "editorcancel":
		s.st.CloseEditor()
	case "edit":
		// Opens the editor on the relationship sourced at table.name.
		if err := nvoracle.OpenEditEditor(s.st, msg.Table, msg.Name); err != nil {
			return "", err
		}
	case "deleterelationship":
		if err := nvoracle.DeleteRelationship(s.st, msg.Table, msg.Name); err != nil {
			return "", err
		}
		changed = true
	case "style":
		if err := nvoracle.SetTableStyle(s.st, msg.Table, msg.Icon, msg.Color); err != nil {
			return "", err
		}
		changed = true
	case "template":
		t, err := nvoracle.AddTemplate(s.st, msg.Name)
		if err != nil {
			return "", err
		}
		// New tables are placed at the center of the screen.
		c := s.st.Viewport.ScreenToWorld(geo.NewPoint(s.st.Viewport.Width/2, s.st.Viewport.Height/2))
		nvlib.Measure(s.st, s.m)
		w, h := nvgeom.Dimensions(t)
		if err := nvoracle.MoveTable(s.st, t.Name, c.X-w/2, c.Y-h/2); err != nil {
			return "", err
		}
		changed = true
	default:
		kind, ok := pointerKinds[msg.Type]
		if !ok {
			return "", fmt.Errorf("unknown message type %q", msg.Type)
		}
		eff, err := s.ctrl.Handle(ctx, s.event(kind, msg))
		s.notice = eff.Notice
		if err != nil {
			return "", err
		}
		if eff.SchemaChanged {
			changed = true
		}
	}

	if !changed {
		return "", nil
	}
	nvlib.Measure(s.st, s.m)
	s.dsl = nvformat.Format(s.st.Schema, s.cfg.FormatOptions())
	log.Debug(ctx, "schema changed", slog.F("message", msg.Type), slog.F("tables", len(s.st.Schema.Tables)))
	return s.dsl, nil
}

func (s *session) event(kind nvinteract.Kind, msg *message) nvinteract.Event {
	e := nvinteract.Event{
		Kind:      kind,
		GestureID: msg.ID,
		Button:    nvinteract.Button(msg.Button),
		Touch:     msg.Touch,
		Mods: nvinteract.Modifiers{
			Ctrl:  msg.Ctrl,
			Meta:  msg.Meta,
			Shift: msg.Shift,
		},
		DeltaY: msg.DeltaY,
		Key:    msg.Key,
	}
	if kind != nvinteract.Key {
		e.Point = geo.NewPoint(msg.X, msg.Y)
	}
	return e
}

// render draws the viewport with the draft preview and marquee.
func (s *session) render() *compileResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &compileResult{
		Notice:    s.notice,
		Name:      s.st.Name,
		Mode:      s.ctrl.Mode().String(),
		Selection: append([]string{}, s.st.Selection...),
	}
	if e := s.st.Editor; e != nil {
		mode := "create"
		if e.Mode == nvstate.EditorEdit {
			mode = "edit"
		}
		res.Editor = &editorForm{
			Mode:       mode,
			FromTable:  e.FromTable,
			FromColumn: e.FromColumn,
			ToTable:    e.ToTable,
			ToColumn:   e.ToColumn,
			Name:       e.Name,
			Kind:       e.Kind,
			Required:   e.Required,
			Anchor:     e.Anchor,
		}
	}

	svg, err := nvsvg.Render(s.st, &nvsvg.RenderOpts{
		Theme:    s.cfg.Theme(),
		Viewport: true,
		Measurer: s.m,
		Router:   s.cfg.RouterOptions(),
		Preview:  s.ctrl.Preview(),
		Marquee:  s.ctrl.MarqueeRect(),
	})
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.SVG = string(svg)
	return res
}

// snapshot returns a deep copy of the state for rendering outside the lock.
func (s *session) snapshot() *nvstate.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := *s.st
	st.Schema = s.st.Schema.Copy()
	st.Selection = nil
	st.Hover = ""
	st.Draft = nil
	st.Editor = nil
	return &st
}
