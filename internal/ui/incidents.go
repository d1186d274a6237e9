package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Ashfaaq98/signalroot-console/internal/collection"
	"github.com/Ashfaaq98/signalroot-console/internal/model"
	"github.com/Ashfaaq98/signalroot-console/internal/seed"
)

// incidentsView is the incident list: search, status and severity facets,
// sortable columns and per-severity stats over the whole collection.
type incidentsView struct {
	ui    *UI
	data  *collection.Store[model.Incident]
	state ListState
	once  sync.Once

	root   *tview.Flex
	search *tview.InputField
	stats  *tview.TextView
	table  *tview.Table
}

func newIncidentsView(ui *UI) *incidentsView {
	v := &incidentsView{
		ui: ui,
		state: ListState{
			Filter: model.NewIncidentFilter(),
			Sort:   model.DefaultIncidentSort,
		},
	}

	var src collection.Source[model.Incident]
	if ui.store != nil {
		src = collection.SourceFunc[model.Incident](func(ctx context.Context) ([]model.Incident, error) {
			return ui.store.ListIncidents(ctx)
		})
	} else {
		src = collection.Static(seed.Incidents())
	}
	v.data = collection.New(src,
		collection.WithLogger[model.Incident](ui.logger),
		collection.WithOnChange(func(collection.Snapshot[model.Incident]) {
			ui.queue(v.render)
		}),
	)

	v.search = tview.NewInputField().
		SetLabel("Search: ").
		SetPlaceholder("title, service or summary")
	v.search.SetChangedFunc(func(text string) {
		v.state = v.state.WithSearch(text)
		v.render()
	})
	v.search.SetDoneFunc(func(tcell.Key) { ui.app.SetFocus(v.table) })

	v.stats = tview.NewTextView().SetDynamicColors(true)

	v.table = tview.NewTable()
	v.table.SetBorder(true)
	v.table.SetTitle(" Incidents ")
	v.table.SetTitleAlign(tview.AlignLeft)
	v.table.SetSelectable(true, false)
	v.table.SetFixed(1, 0)
	v.table.SetBorderColor(ui.theme.Border)
	v.table.SetBackgroundColor(ui.theme.Surface)
	v.table.SetSelectedStyle(tcell.StyleDefault.Background(ui.theme.SelectionBg).Foreground(ui.theme.SelectionFg))
	v.table.SetSelectedFunc(func(int, int) {
		if id := selectedRef(v.table); id != "" {
			ui.navigate(Route{View: ViewIncidentDetail, ID: id})
		}
	})
	v.table.SetInputCapture(v.handleKey)

	v.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.search, 1, 0, false).
		AddItem(v.stats, 2, 0, false).
		AddItem(v.table, 0, 1, true)

	v.render()
	return v
}

func (v *incidentsView) name() string                   { return string(ViewIncidents) }
func (v *incidentsView) primitive() tview.Primitive     { return v.root }
func (v *incidentsView) focusTarget() tview.Primitive   { return v.table }
func (v *incidentsView) searchField() *tview.InputField { return v.search }
func (v *incidentsView) close()                         { v.data.Close() }

func (v *incidentsView) mount() {
	v.once.Do(func() { load(v.ui, "incidents", v.data) })
}

func (v *incidentsView) refresh() {
	load(v.ui, "incidents", v.data)
}

func (v *incidentsView) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() != tcell.KeyRune {
		return ev
	}
	switch ev.Rune() {
	case 'f':
		v.state = v.state.CycleFacet(model.FacetStatus, model.Statuses)
	case 'v':
		v.state = v.state.CycleFacet(model.FacetSeverity, model.Severities)
	case 's':
		v.state = v.state.CycleSortKey(IncidentColumns)
	case 'd':
		v.state = v.state.ToggleDirection()
	default:
		return ev
	}
	v.render()
	return nil
}

// visible returns the filtered and sorted incidents.
func (v *incidentsView) visible() []model.Incident {
	return Derive(v.data.Snapshot().Items, v.state, model.IncidentSchema)
}

func (v *incidentsView) render() {
	snap := v.data.Snapshot()
	t := v.ui.theme

	filters := fmt.Sprintf("status: %s   severity: %s   sort: %s %s",
		v.state.Filter.Facet(model.FacetStatus),
		v.state.Filter.Facet(model.FacetSeverity),
		v.state.Sort.Key, v.state.Sort.Direction)

	headers := Headers(IncidentColumns, v.state.Sort)
	msg, ok := loadState(snap, "incidents")
	if !ok {
		color := t.TagMuted
		if snap.State == collection.Failed {
			color = t.TagError
		}
		v.stats.SetText(fmt.Sprintf("[%s]%s[-]\n[%s]%s[-]", color, tview.Escape(msg), t.TagMuted, filters))
		v.ui.fillTable(v.table, headers, nil, msg)
		return
	}

	items := Derive(snap.Items, v.state, model.IncidentSchema)
	v.stats.SetText(fmt.Sprintf("[%s]%s[-]\n[%s]%s   %s[-]",
		t.TagTextPrimary, FormatStats(IncidentStats(snap.Items)),
		t.TagMuted, FoundLabel(len(items), "incidents"), filters))

	empty := "No incidents found. Try adjusting your search or filters"
	v.ui.fillTable(v.table, headers, IncidentRows(items, v.ui.now()), empty)
	for i, inc := range items {
		v.table.GetCell(i+1, 3).SetText(fmt.Sprintf("[%s]%s[-]", t.statusTag(inc.Status), inc.Status))
	}
}

// detailView shows one incident. Each open gets its own collection so a
// slow load for a previous incident is discarded.
type detailView struct {
	ui   *UI
	mu   sync.Mutex
	id   string
	data *collection.Store[model.Incident]

	text *tview.TextView
}

func newDetailView(ui *UI) *detailView {
	v := &detailView{ui: ui}
	v.text = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true).
		SetScrollable(true)
	v.text.SetBorder(true)
	v.text.SetTitle(" Incident (Esc: back) ")
	v.text.SetTitleAlign(tview.AlignLeft)
	v.text.SetBorderColor(ui.theme.Border)
	v.text.SetBackgroundColor(ui.theme.Surface)
	v.text.SetTextColor(ui.theme.TextPrimary)
	return v
}

func (v *detailView) name() string                 { return string(ViewIncidentDetail) }
func (v *detailView) primitive() tview.Primitive   { return v.text }
func (v *detailView) focusTarget() tview.Primitive { return v.text }
func (v *detailView) mount()                       {}

func (v *detailView) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.data != nil {
		v.data.Close()
	}
}

func (v *detailView) refresh() {
	v.mu.Lock()
	data := v.data
	v.mu.Unlock()
	if data != nil {
		load(v.ui, "incident", data)
	}
}

// show unmounts the previous incident and starts loading id.
func (v *detailView) show(id string) {
	ui := v.ui
	var src collection.Source[model.Incident]
	if ui.store != nil {
		src = collection.SourceFunc[model.Incident](func(ctx context.Context) ([]model.Incident, error) {
			inc, err := ui.store.GetIncident(ctx, id)
			if err != nil {
				return nil, err
			}
			return []model.Incident{inc}, nil
		})
	} else {
		src = collection.SourceFunc[model.Incident](func(context.Context) ([]model.Incident, error) {
			for _, inc := range seed.Incidents() {
				if inc.ID == id {
					return []model.Incident{inc}, nil
				}
			}
			return nil, fmt.Errorf("incident %s not found", id)
		})
	}

	data := collection.New(src,
		collection.WithLogger[model.Incident](ui.logger),
		collection.WithOnChange(func(collection.Snapshot[model.Incident]) {
			ui.queue(v.render)
		}),
	)

	v.mu.Lock()
	if v.data != nil {
		v.data.Close()
	}
	v.id = id
	v.data = data
	v.mu.Unlock()

	v.render()
	load(ui, "incident", data)
}

func (v *detailView) render() {
	v.mu.Lock()
	data, id := v.data, v.id
	v.mu.Unlock()
	if data == nil {
		v.text.SetText("")
		return
	}

	t := v.ui.theme
	snap := data.Snapshot()
	if msg, ok := loadState(snap, "incident "+id); !ok {
		color := t.TagMuted
		if snap.State == collection.Failed {
			color = t.TagError
		}
		v.text.SetText(fmt.Sprintf("[%s]%s[-]", color, tview.Escape(msg)))
		return
	}
	if len(snap.Items) == 0 {
		v.text.SetText(fmt.Sprintf("[%s]Incident %s not found[-]", t.TagError, tview.Escape(id)))
		return
	}

	lines := IncidentDetail(snap.Items[0], v.ui.now())
	for i := range lines {
		lines[i] = tview.Escape(lines[i])
	}
	// Title and section headings stand out.
	lines[0] = fmt.Sprintf("[%s::b]%s[-::-]", t.TagAccent, lines[0])
	for i := 1; i < len(lines); i++ {
		if lines[i-1] == "" && lines[i] != "" && !strings.HasPrefix(lines[i], " ") {
			lines[i] = fmt.Sprintf("[%s::b]%s[-::-]", t.TagWarning, lines[i])
		}
	}
	v.text.SetText(strings.Join(lines, "\n"))
	v.text.ScrollToBeginning()
}
