package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Ashfaaq98/signalroot-console/internal/backend"
	"github.com/Ashfaaq98/signalroot-console/internal/bus"
	"github.com/Ashfaaq98/signalroot-console/internal/clipboard"
	"github.com/Ashfaaq98/signalroot-console/internal/collection"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
)

// Options wires the UI to its data sources.
type Options struct {
	// Store backs incidents and services. Nil shows the seeded incidents and a
	// read-only service list.
	Store   *store.Store
	Backend *backend.Client
	// Bus receives service and webhook activity. Defaults to a NullBus.
	Bus    bus.Bus
	Logger *log.Logger
	// Route is the initial path, e.g. "/incidents/1".
	Route string
	// Now is the clock used for relative times.
	Now func() time.Time
	// Clipboard overrides the system clipboard writer.
	Clipboard func(string) error
	// Screen overrides the terminal (tcell.NewSimulationScreen in tests).
	Screen tcell.Screen
}

// UI represents the terminal user interface
type UI struct {
	app     *tview.Application
	store   *store.Store
	backend *backend.Client
	bus     bus.Bus
	logger  *log.Logger
	now     func() time.Time
	copier  *clipboard.Copier
	theme   Theme

	// Layout components
	layout    *tview.Flex
	appTitle  *tview.TextView
	sidebar   *tview.List
	pages     *tview.Pages
	statusBar *tview.TextView

	incidents *incidentsView
	detail    *detailView
	services  *servicesView
	changelog *changelogView
	api       *apiView
	webhooks  *webhooksView

	route     Route
	running   atomic.Bool
	inline    sync.Mutex
	lastFocus tview.Primitive

	globalInputCapture func(*tcell.EventKey) *tcell.EventKey

	ctx    context.Context
	cancel context.CancelFunc
}

// view is one screen hosted in the pages container.
type view interface {
	name() string
	primitive() tview.Primitive
	// focusTarget is focused when the view is shown.
	focusTarget() tview.Primitive
	// mount starts the first load; later calls are no-ops.
	mount()
	refresh()
	close()
}

// NewUI creates a new terminal user interface
func NewUI(ctx context.Context, opts Options) (*UI, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.Backend == nil {
		opts.Backend = backend.NewClient(backend.Options{Logger: logger})
	}
	if opts.Bus == nil {
		opts.Bus = bus.NewNullBus(logger)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	start, err := ParseRoute(opts.Route)
	if err != nil {
		return nil, err
	}

	uiCtx, cancel := context.WithCancel(ctx)
	ui := &UI{
		app:     tview.NewApplication(),
		store:   opts.Store,
		backend: opts.Backend,
		bus:     opts.Bus,
		logger:  logger,
		now:     opts.Now,
		theme:   defaultTheme(),
		ctx:     uiCtx,
		cancel:  cancel,
	}
	if opts.Screen != nil {
		ui.app.SetScreen(opts.Screen)
	}
	ui.copier = clipboard.New(clipboard.Options{
		Write:  opts.Clipboard,
		Logger: logger,
		OnChange: func(string) {
			go ui.queue(func() { ui.webhooks.render(); ui.api.render() })
		},
	})

	ui.incidents = newIncidentsView(ui)
	ui.detail = newDetailView(ui)
	ui.services = newServicesView(ui)
	ui.changelog = newChangelogView(ui)
	ui.api = newAPIView(ui)
	ui.webhooks = newWebhooksView(ui)

	ui.setupLayout()
	ui.setupKeybindings()
	ui.queue(func() { ui.navigate(start) })
	return ui, nil
}

func (ui *UI) views() []view {
	return []view{ui.incidents, ui.detail, ui.services, ui.changelog, ui.api, ui.webhooks}
}

// Start runs the application until it is stopped or ctx is done.
func (ui *UI) Start(ctx context.Context) error {
	ui.logger.Println("Starting TUI application")

	go func() {
		select {
		case <-ctx.Done():
			ui.logger.Println("External context cancelled, stopping TUI")
		case <-ui.ctx.Done():
		}
		ui.cancel()
		ui.app.Stop()
	}()

	ui.running.Store(true)
	err := ui.app.Run()
	ui.running.Store(false)
	ui.shutdown()
	return err
}

// Stop stops the TUI application
func (ui *UI) Stop() {
	ui.logger.Println("Stopping TUI application")
	ui.cancel()
	ui.app.Stop()
}

// shutdown unmounts every view so late load results are dropped.
func (ui *UI) shutdown() {
	ui.copier.Stop()
	for _, v := range ui.views() {
		v.close()
	}
}

// Navigate switches to the screen at path.
func (ui *UI) Navigate(path string) error {
	r, err := ParseRoute(path)
	if err != nil {
		return err
	}
	ui.queue(func() { ui.navigate(r) })
	return nil
}

// RefreshIncidents reloads the incident list, e.g. after an ingest. Safe to
// call from any goroutine.
func (ui *UI) RefreshIncidents() {
	ui.incidents.refresh()
}

// CurrentRoute returns the route being shown.
func (ui *UI) CurrentRoute() Route {
	return ui.route
}

func (ui *UI) navigate(r Route) {
	ui.route = r
	var v view
	switch r.View {
	case ViewIncidentDetail:
		ui.detail.show(r.ID)
		v = ui.detail
	case ViewServices:
		v = ui.services
	case ViewChangelog:
		v = ui.changelog
	case ViewAPI:
		v = ui.api
	case ViewWebhooks:
		v = ui.webhooks
	default:
		v = ui.incidents
	}
	ui.pages.SwitchToPage(v.name())
	if idx := navIndex(r); ui.sidebar.GetCurrentItem() != idx {
		ui.sidebar.SetCurrentItem(idx)
	}
	v.mount()
	ui.app.SetFocus(v.focusTarget())
	ui.setStatusDirect("[%s]%s[-:-:-]", ui.theme.TagAccent, r.Path())
	ui.logger.Printf("navigate %s", r.Path())
}

func (ui *UI) currentView() view {
	switch ui.route.View {
	case ViewIncidentDetail:
		return ui.detail
	case ViewServices:
		return ui.services
	case ViewChangelog:
		return ui.changelog
	case ViewAPI:
		return ui.api
	case ViewWebhooks:
		return ui.webhooks
	default:
		return ui.incidents
	}
}

// setupLayout creates the main layout
func (ui *UI) setupLayout() {
	ui.appTitle = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.appTitle.SetBackgroundColor(ui.theme.Surface)
	ui.appTitle.SetText(fmt.Sprintf(" [%s]SignalRoot Console[-]", ui.theme.TagAccent))

	ui.sidebar = tview.NewList()
	ui.sidebar.SetTitle(" Navigation ")
	ui.sidebar.SetBorder(true)
	ui.sidebar.SetTitleAlign(tview.AlignLeft)
	ui.sidebar.ShowSecondaryText(false)
	ui.sidebar.SetMainTextColor(ui.theme.TextPrimary)
	ui.sidebar.SetSelectedTextColor(ui.theme.SelectionFg)
	ui.sidebar.SetSelectedBackgroundColor(ui.theme.SelectionBg)
	ui.sidebar.SetBorderColor(ui.theme.Border)
	ui.sidebar.SetBackgroundColor(ui.theme.Surface)
	for _, item := range navigation {
		ui.sidebar.AddItem(item.label, "", item.shortcut, nil)
	}
	ui.sidebar.SetSelectedFunc(func(index int, _, _ string, _ rune) {
		if index >= 0 && index < len(navigation) {
			ui.navigate(navigation[index].route)
		}
	})

	ui.pages = tview.NewPages()
	for _, v := range ui.views() {
		ui.pages.AddPage(v.name(), v.primitive(), true, false)
	}

	ui.statusBar = tview.NewTextView()
	ui.statusBar.SetDynamicColors(true)
	ui.statusBar.SetTextColor(ui.theme.TextPrimary)
	ui.statusBar.SetBackgroundColor(ui.theme.Surface)

	leftCol := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.appTitle, 2, 0, false).
		AddItem(ui.sidebar, 0, 1, false)

	ui.layout = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(leftCol, 24, 0, false).
		AddItem(ui.pages, 0, 1, true)

	ui.app.SetRoot(ui.rootLayout(), true)
}

func (ui *UI) rootLayout() tview.Primitive {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.layout, 0, 1, true).
		AddItem(ui.statusBar, 1, 0, false)
}

// setupKeybindings sets up global keybindings
func (ui *UI) setupKeybindings() {
	handler := func(event *tcell.EventKey) *tcell.EventKey {
		// While a form or input is focused, let it have every key.
		if ui.isDialogActive() {
			return event
		}

		switch event.Key() {
		case tcell.KeyCtrlC:
			ui.Stop()
			return nil
		case tcell.KeyTab:
			ui.toggleSidebarFocus()
			return nil
		case tcell.KeyEsc:
			if ui.route.View == ViewIncidentDetail {
				ui.navigate(Route{View: ViewIncidents})
				return nil
			}
			ui.setStatusDirect("[%s]Ready[-:-:-]", ui.theme.TagAccent)
			return nil
		case tcell.KeyRune:
			switch r := event.Rune(); r {
			case 'q', 'Q':
				ui.Stop()
				return nil
			case 'r':
				ui.currentView().refresh()
				return nil
			case '?':
				ui.showHelp()
				return nil
			case '/':
				if s, ok := ui.currentView().(searchable); ok {
					ui.app.SetFocus(s.searchField())
					return nil
				}
			case '1', '2', '3', '4', '5':
				ui.navigate(navigation[r-'1'].route)
				return nil
			}
		}
		return event
	}
	ui.globalInputCapture = handler
	ui.app.SetInputCapture(handler)
}

type searchable interface {
	searchField() *tview.InputField
}

func (ui *UI) toggleSidebarFocus() {
	if ui.app.GetFocus() == ui.sidebar {
		ui.app.SetFocus(ui.currentView().focusTarget())
		ui.sidebar.SetBorderColor(ui.theme.Border)
		return
	}
	ui.app.SetFocus(ui.sidebar)
	ui.sidebar.SetBorderColor(ui.theme.FocusBorder)
}

// isDialogActive returns true when a dialog or text input is focused to bypass global shortcuts.
func (ui *UI) isDialogActive() bool {
	focused := ui.app.GetFocus()
	if focused == nil {
		return false
	}
	switch focused.(type) {
	case *tview.Form,
		*tview.Modal,
		*tview.InputField,
		*tview.TextArea,
		*tview.DropDown,
		*tview.Button:
		return true
	default:
		return false
	}
}

// queue runs fn on the UI goroutine. Before the app runs (tests) it runs
// inline, one caller at a time.
func (ui *UI) queue(fn func()) {
	if ui.running.Load() {
		ui.app.QueueUpdateDraw(fn)
		return
	}
	ui.inline.Lock()
	defer ui.inline.Unlock()
	fn()
}

// load runs a collection load off the UI goroutine. A refresh issued while
// the store is loading is reported and otherwise ignored.
func load[T any](ui *UI, label string, st *collection.Store[T]) {
	go func() {
		err := st.Load(ui.ctx)
		switch {
		case errors.Is(err, collection.ErrLoadInProgress):
			ui.queue(func() {
				ui.setStatusDirect("[%s]%s: already loading, refresh ignored[-:-:-]", ui.theme.TagMuted, label)
			})
		case errors.Is(err, collection.ErrClosed), collection.IsStale(err):
		case err != nil:
			ui.logger.Printf("%s load failed: %v", label, err)
		}
	}()
}

// setStatusDirect updates the status bar immediately. Use this only from the
// UI goroutine.
func (ui *UI) setStatusDirect(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	timestamp := ui.now().Format("15:04:05")
	ui.statusBar.SetText(fmt.Sprintf("[%s]%s[-] [%s]|[-] %s [%s]| 1-5 views  / search  r refresh  ? help  q quit[-]",
		ui.theme.TagMuted, timestamp,
		ui.theme.TagTextPrimary,
		message,
		ui.theme.TagMuted))
}

// showModal displays a message with a single Close button.
func (ui *UI) showModal(title, text string) {
	modal := tview.NewModal()
	modal.SetText(text)
	modal.SetTitle(fmt.Sprintf(" %s ", title))
	modal.AddButtons([]string{"Close"})
	modal.SetBackgroundColor(ui.theme.Surface)
	modal.SetTextColor(ui.theme.TextPrimary)
	modal.SetBorderColor(ui.theme.FocusBorder)
	modal.SetDoneFunc(func(int, string) {
		ui.restoreMainLayout()
	})
	ui.showDialog(modal, modal)
}

// confirm asks a yes/no question and calls onYes on confirmation.
func (ui *UI) confirm(text string, onYes func()) {
	modal := tview.NewModal()
	modal.SetText(text)
	modal.AddButtons([]string{"Delete", "Cancel"})
	modal.SetBackgroundColor(ui.theme.Surface)
	modal.SetTextColor(ui.theme.TextPrimary)
	modal.SetBorderColor(ui.theme.FocusBorder)
	modal.SetDoneFunc(func(buttonIndex int, _ string) {
		ui.restoreMainLayout()
		if buttonIndex == 0 {
			onYes()
		}
	})
	ui.showDialog(modal, modal)
}

func (ui *UI) showDialog(root, focus tview.Primitive) {
	ui.lastFocus = ui.app.GetFocus()
	ui.app.SetRoot(root, true)
	ui.app.SetFocus(focus)
}

// centered wraps p in a fixed-size box in the middle of the screen.
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

// restoreMainLayout restores the main layout after closing a dialog
func (ui *UI) restoreMainLayout() {
	ui.app.SetRoot(ui.rootLayout(), true)
	if ui.globalInputCapture != nil {
		ui.app.SetInputCapture(ui.globalInputCapture)
	}
	target := ui.lastFocus
	if target == nil {
		target = ui.currentView().focusTarget()
	}
	ui.app.SetFocus(target)
}

func (ui *UI) showHelp() {
	text := `Global
  1-5      switch view (Incidents, Services, Changelog, API, Webhooks)
  Tab      toggle sidebar focus
  /        focus search
  r        refresh (retry after an error)
  Esc      back to the incident list
  q        quit

Incidents
  Enter    open incident     f  cycle status     v  cycle severity
  s        cycle sort key    d  flip direction

Services
  a  add    e  edit    x  delete

Changelog
  Enter    expand or collapse a release    t  cycle change type

API Explorer
  c        copy endpoint URL    m  cycle method

Webhooks
  o s g t  toggle overview, setup, config, testing
  c        copy webhook URL     x  send test payload`
	ui.showModal("Help", text)
}

// headerCell is a bold table header cell.
func (ui *UI) headerCell(text string) *tview.TableCell {
	return tview.NewTableCell(tview.Escape(text)).
		SetTextColor(ui.theme.TableHeader).
		SetBackgroundColor(ui.theme.TableHeaderBg).
		SetAttributes(tcell.AttrBold).
		SetSelectable(false)
}

// fillTable writes headers and rows, or a single message row when rows is
// empty.
func (ui *UI) fillTable(table *tview.Table, headers []string, rows []Row, empty string) {
	table.Clear()
	for col, h := range headers {
		table.SetCell(0, col, ui.headerCell(h))
	}
	if len(rows) == 0 {
		table.SetCell(1, 0, tview.NewTableCell(tview.Escape(empty)).
			SetTextColor(ui.theme.TextMuted).
			SetSelectable(false))
		return
	}
	for i, row := range rows {
		for col, text := range row.Cells {
			cell := tview.NewTableCell(tview.Escape(text)).
				SetTextColor(ui.theme.TableRow).
				SetReference(row.ID)
			if col == 0 && row.Severity != "" {
				cell.SetTextColor(ui.theme.severityColor(row.Severity))
			}
			table.SetCell(i+1, col, cell)
		}
	}
}

// selectedRef returns the reference of the selected row's first cell.
func selectedRef(table *tview.Table) string {
	row, _ := table.GetSelection()
	cell := table.GetCell(row, 0)
	if cell == nil {
		return ""
	}
	id, _ := cell.GetReference().(string)
	return id
}

// loadState renders a non-Loaded snapshot as a single message; ok is false
// when the view should show that message instead of its rows.
func loadState[T any](snap collection.Snapshot[T], noun string) (message string, ok bool) {
	switch snap.State {
	case collection.Idle, collection.Loading:
		return fmt.Sprintf("Loading %s...", noun), false
	case collection.Failed:
		if snap.Fallback {
			return "", true
		}
		return fmt.Sprintf("Error loading %s: %s (press r to retry)", noun, snap.Err), false
	default:
		return "", true
	}
}
