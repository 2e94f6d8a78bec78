// Command worldedit is a terminal editor for the maps and relation graphs
// of a world document.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ha1tch/worldcanvas/pkg/canvas"
	"github.com/ha1tch/worldcanvas/pkg/config"
	"github.com/ha1tch/worldcanvas/pkg/crop"
	"github.com/ha1tch/worldcanvas/pkg/world"
	"github.com/ha1tch/worldcanvas/pkg/worldfile"
)

// Mode represents editor mode
type Mode int

const (
	ModeCanvas Mode = iota
	ModeInput
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
	MsgSuccess
)

// Editor holds all editor state
type Editor struct {
	screen   tcell.Screen
	cfg      *config.Config
	log      *slog.Logger
	ctx      context.Context
	world    *world.World
	filename string
	modified bool
	mode     Mode

	message     string
	messageType MessageType
	flashStart  atomic.Int64 // unix ms of the last message, read by the ticker
	quitArmed   bool

	// Active collection
	current   int
	graph     *world.Graph
	canvas    *canvas.Canvas
	ctrl      *canvas.Controller
	presenter *canvas.Presenter

	// Mouse
	pressed     tcell.ButtonMask
	pressButton canvas.Button
	pressX      int
	pressY      int
	pressEdge   string // edge label under the press, selected on a click

	// Map backgrounds decoded for display, by map id
	backgrounds map[string]image.Image
	bgCancel    context.CancelFunc

	// Input state
	inputBuffer []rune
	inputPrompt string
	inputAction func(string) // on Enter
	inputLive   func(string) // on every edit

	sidebarWidth int
}

func main() {
	var (
		configPath string
		logPath    string
	)
	cmd := &cobra.Command{
		Use:           "worldedit <file>",
		Short:         "Edit the maps and relation graphs of a world document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logPath == "" {
				logPath = cfg.Editor.LogFile
			}
			logger, closeLog, err := openLog(logPath, cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			w, err := loadOrCreate(args[0], cfg)
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initializing screen: %w", err)
			}
			defer screen.Fini()
			screen.EnableMouse(tcell.MouseMotionEvents)
			screen.Clear()

			ed := newEditor(cmd.Context(), screen, cfg, logger, w, args[0])
			ed.run()
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", config.Path(), "Config file")
	cmd.Flags().StringVar(&logPath, "log", "", "Write debug logs to this file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "worldedit: %v\n", err)
		os.Exit(1)
	}
}

// openLog returns a file logger. The terminal belongs to tcell, so without
// a log file nothing is logged.
func openLog(path string, cfg *config.Config) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return newLogger(f, level), func() { f.Close() }, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadOrCreate reads path, or starts a world with one map and one graph
// when the file does not exist yet.
func loadOrCreate(path string, cfg *config.Config) (*world.World, error) {
	w, err := worldfile.ReadFile(path)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if _, err := worldfile.FormatOf(path); err != nil {
		return nil, err
	}
	w = &world.World{ID: world.UUID("w"), Name: "Untitled world"}
	w.AddMap("Map", cfg.Editor.MapWidth, cfg.Editor.MapHeight, nil)
	w.AddGraph("Relations", nil)
	return w, nil
}

func newEditor(ctx context.Context, screen tcell.Screen, cfg *config.Config, logger *slog.Logger, w *world.World, filename string) *Editor {
	if ctx == nil {
		ctx = context.Background()
	}
	ed := &Editor{
		screen:       screen,
		cfg:          cfg,
		log:          logger,
		ctx:          ctx,
		world:        w,
		filename:     filename,
		backgrounds:  make(map[string]image.Image),
		sidebarWidth: 32,
	}
	ed.canvas = canvas.New(nil)
	ed.ctrl = canvas.NewController(ed.canvas, cfg.CanvasOptions(logger))
	ed.presenter = canvas.NewPresenter(ed.canvas)
	ed.activate(0)
	for _, m := range w.Maps {
		ed.decodeStoredBackground(m)
	}
	return ed
}

func (ed *Editor) run() {
	done := make(chan struct{})
	defer close(done)
	// Redraw while a new message is flashing
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				elapsed := time.Now().UnixMilli() - ed.flashStart.Load()
				if elapsed >= 0 && elapsed < 700 {
					ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
				}
			}
		}
	}()

	for {
		ed.draw()
		ed.screen.Show()

		if ed.handleEvent(ed.screen.PollEvent()) {
			if ed.bgCancel != nil {
				ed.bgCancel()
			}
			return
		}
	}
}

// handleEvent processes one event and reports whether the editor should
// quit.
func (ed *Editor) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case nil:
		return true
	case *tcell.EventResize:
		ed.screen.Sync()
	case *tcell.EventKey:
		return ed.handleKey(ev)
	case *tcell.EventMouse:
		ed.handleMouse(ev)
	case *tcell.EventInterrupt:
		if res, ok := ev.Data().(backgroundResult); ok {
			ed.applyBackground(res)
		}
	}
	return false
}

// activate shows collection i (maps first, then graphs). Out of range
// indexes wrap.
func (ed *Editor) activate(i int) {
	all := ed.world.Collections()
	if len(all) == 0 {
		ed.current = 0
		ed.graph = nil
		ed.ctrl.Activate(nil)
		return
	}
	i = ((i % len(all)) + len(all)) % len(all)

	g, err := world.NewGraph(all[i], world.WithOnChange(ed.onChange))
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.current = i
	ed.graph = g
	ed.ctrl.Activate(g)
	ed.log.Debug("collection activated", "id", g.ID(), "type", g.Type())
}

func (ed *Editor) onChange(c world.Collection) {
	ed.world.Replace(c)
	ed.modified = true
	ed.quitArmed = false
}

func (ed *Editor) collection() (world.Collection, bool) {
	if ed.graph == nil {
		return world.Collection{}, false
	}
	return ed.world.Collection(ed.graph.ID())
}

func (ed *Editor) save() {
	if err := worldfile.WriteFile(ed.filename, ed.world); err != nil {
		ed.showMessage("Save failed: "+err.Error(), MsgError)
		ed.log.Error("save failed", "path", ed.filename, "err", err)
		return
	}
	ed.modified = false
	ed.showMessage("Saved "+ed.filename, MsgSuccess)
	ed.log.Info("saved", "path", ed.filename)
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
	ed.flashStart.Store(time.Now().UnixMilli())
}

// prompt switches to input mode; action receives the entered text.
func (ed *Editor) prompt(label, initial string, action func(string)) {
	ed.mode = ModeInput
	ed.inputPrompt = label
	ed.inputBuffer = []rune(initial)
	ed.inputAction = action
	ed.inputLive = nil
}

// liveEdit switches to input mode and passes the text to set after every
// keystroke. Enter and Esc only leave input mode.
func (ed *Editor) liveEdit(label, initial string, set func(string)) {
	ed.prompt(label, initial, nil)
	ed.inputLive = set
}

func (ed *Editor) startBackground(mapID, path string) {
	f, err := os.Open(path)
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	if ed.bgCancel != nil {
		ed.bgCancel()
	}
	ctx, cancel := context.WithCancel(ed.ctx)
	ed.bgCancel = cancel
	ed.showMessage("Processing "+path+"...", MsgInfo)

	opts := ed.cfg.CropOptions(ed.log)
	go func() {
		defer f.Close()
		res := processBackground(ctx, f, opts)
		res.mapID = mapID
		res.path = path
		ed.screen.PostEvent(tcell.NewEventInterrupt(res))
	}()
}

func (ed *Editor) applyBackground(res backgroundResult) {
	if res.err != nil {
		if errors.Is(res.err, context.Canceled) {
			return
		}
		ed.showMessage(res.path+": "+res.err.Error(), MsgError)
		return
	}
	if !ed.world.SetBackground(res.mapID, res.raster.DataURL()) {
		ed.showMessage("Map was removed before the image was ready", MsgError)
		return
	}
	ed.backgrounds[res.mapID] = res.preview
	ed.modified = true
	ed.showMessage(fmt.Sprintf("Background %dx%d set", res.raster.Width, res.raster.Height), MsgSuccess)
	ed.log.Info("background set", "map", res.mapID, "bytes", len(res.raster.Data))
}

// decodeStoredBackground decodes a background already in the document so
// the canvas can tint cells with it.
func (ed *Editor) decodeStoredBackground(m world.Collection) {
	if m.Background == "" {
		return
	}
	img, _, err := crop.DecodeDataURL(m.Background)
	if err != nil {
		ed.log.Warn("stored background unreadable", "map", m.ID, "err", err)
		return
	}
	ed.backgrounds[m.ID] = img
}
