package trellis

import (
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// EditorOptions configures NewEditor.
type EditorOptions struct {
	Width, Height int
	Interactor    InteractorOptions
	MinZoom       float64
	MaxZoom       float64
	// Backend overrides the id-buffer backend. nil uses an
	// EbitenPickBackend sized to the screen.
	Backend PickBackend
	Logger  *slog.Logger
	// DisableInput stops Update from polling the real mouse and keyboard.
	// Injected events are still processed.
	DisableInput bool
	// ShowFPS draws an FPS and graph-count overlay.
	ShowFPS bool
	// Debug logs frame statistics every DebugInterval ticks.
	Debug         bool
	DebugInterval int
	ScreenshotDir string
}

// EditorOptionsFromConfig converts a Config into EditorOptions.
func EditorOptionsFromConfig(cfg *Config, logger *slog.Logger) EditorOptions {
	return EditorOptions{
		Width:         cfg.Window.Width,
		Height:        cfg.Window.Height,
		Interactor:    cfg.InteractorOptions(),
		MinZoom:       cfg.Interaction.MinZoom,
		MaxZoom:       cfg.Interaction.MaxZoom,
		Logger:        logger,
		ShowFPS:       cfg.Window.ShowFPS,
		Debug:         cfg.Debug.Enabled,
		DebugInterval: cfg.Debug.IntervalTicks,
	}
}

// Editor wires the graph, viewport, pick resolver, interactor and renderer
// into an ebiten.Game.
type Editor struct {
	graph      *Graph
	viewport   *Viewport
	backend    PickBackend
	picker     *PickResolver
	interactor *Interactor
	renderer   *Renderer
	logger     *slog.Logger

	inputEnabled bool
	input        inputState
	injectQueue  []syntheticEvent
	runner       *ScriptRunner
	frameHook    func()

	showFPS       bool
	hud           hud
	debug         bool
	debugInterval int
	stats         debugStats

	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir   string
	screenshotQueue []string
}

// NewEditor creates an editor for graph.
func NewEditor(graph *Graph, opts EditorOptions) *Editor {
	if graph == nil {
		panic("trellis: NewEditor requires a graph")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	vp := NewViewport(float64(opts.Width), float64(opts.Height))
	if opts.MinZoom > 0 {
		vp.MinZoom = opts.MinZoom
	}
	if opts.MaxZoom > 0 {
		vp.MaxZoom = opts.MaxZoom
	}
	backend := opts.Backend
	if backend == nil {
		backend = NewEbitenPickBackend(opts.Width, opts.Height)
	}
	iopts := opts.Interactor
	if iopts == (InteractorOptions{}) {
		iopts = DefaultInteractorOptions()
	}

	graph.SetLogger(logger)
	picker := NewPickResolver(graph, vp, backend)
	picker.SetLogger(logger)
	interactor := NewInteractor(graph, vp, picker, iopts)
	interactor.SetLogger(logger)

	e := &Editor{
		graph:         graph,
		viewport:      vp,
		backend:       backend,
		picker:        picker,
		interactor:    interactor,
		renderer:      NewRenderer(),
		logger:        logger,
		inputEnabled:  !opts.DisableInput,
		showFPS:       opts.ShowFPS,
		debug:         opts.Debug,
		debugInterval: opts.DebugInterval,
		ScreenshotDir: opts.ScreenshotDir,
	}
	if e.debugInterval <= 0 {
		e.debugInterval = 60
	}
	if e.ScreenshotDir == "" {
		e.ScreenshotDir = "screenshots"
	}
	return e
}

// Graph returns the edited graph.
func (e *Editor) Graph() *Graph { return e.graph }

// Viewport returns the editor viewport.
func (e *Editor) Viewport() *Viewport { return e.viewport }

// Interactor returns the editor interactor.
func (e *Editor) Interactor() *Interactor { return e.interactor }

// Renderer returns the editor renderer.
func (e *Editor) Renderer() *Renderer { return e.renderer }

// PickResolver returns the editor pick resolver.
func (e *Editor) PickResolver() *PickResolver { return e.picker }

// SetEventStore forwards editor events to store (see the ecs package).
func (e *Editor) SetEventStore(store EventStore) { e.interactor.SetEventStore(store) }

// SetFrameHook registers fn to run at the end of every tick, after the
// interactor has advanced. Pass nil to remove it.
func (e *Editor) SetFrameHook(fn func()) { e.frameHook = fn }

// SetDebug toggles per-frame statistics logging.
func (e *Editor) SetDebug(enabled bool) { e.debug = enabled }

// Update implements ebiten.Game.
func (e *Editor) Update() error {
	tps := ebiten.TPS()
	if tps <= 0 {
		tps = 60
	}
	e.tick(time.Second / time.Duration(tps))
	return nil
}

// tick runs one frame of editor logic: script step, one injected event or
// real input, then the viewport and interactor clocks.
func (e *Editor) tick(dt time.Duration) {
	start := time.Now()

	if e.runner != nil {
		e.runner.step(e)
	}
	if !e.processInjectedInput() && e.inputEnabled {
		e.pollInput()
	}
	e.viewport.Update(float32(dt.Seconds()))
	e.interactor.Advance(dt)
	if e.showFPS {
		e.hud.update(e, dt.Seconds())
	}
	if e.frameHook != nil {
		e.frameHook()
	}

	e.stats.updateTime = time.Since(start)
	e.stats.ticks++
}

// Draw implements ebiten.Game.
func (e *Editor) Draw(screen *ebiten.Image) {
	start := time.Now()

	switch e.renderer.Prepare(e.graph) {
	case SyncFull:
		e.stats.fullSyncs++
	case SyncPartial:
		e.stats.partialSyncs++
	}
	e.renderer.Draw(screen, e.viewport, RenderStateOf(e.interactor))
	if e.showFPS {
		e.hud.draw(screen)
	}

	if b, ok := e.backend.(*EbitenPickBackend); ok {
		e.stats.pickReads += b.Pending()
		b.Flush()
	}
	e.flushScreenshots(screen)

	e.stats.drawTime = time.Since(start)
	if e.debug && e.stats.ticks%e.debugInterval == 0 {
		e.debugLog()
	}
}

// Layout implements ebiten.Game. The screen matches the window size.
// A size change drops the id buffer, so the next pick re-renders it.
func (e *Editor) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := float64(outsideWidth), float64(outsideHeight)
	if w == e.viewport.Width && h == e.viewport.Height {
		return outsideWidth, outsideHeight
	}
	e.viewport.Resize(w, h)
	if b, ok := e.backend.(*EbitenPickBackend); ok {
		b.Resize(outsideWidth, outsideHeight)
	}
	e.picker.Invalidate()
	return outsideWidth, outsideHeight
}

// Run opens a window and runs the editor until it is closed.
func Run(title string, e *Editor) error {
	w, h := int(e.viewport.Width), int(e.viewport.Height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(e)
}
