package ui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Ashfaaq98/signalroot-console/internal/collection"
	"github.com/Ashfaaq98/signalroot-console/internal/model"
	"github.com/Ashfaaq98/signalroot-console/internal/query"
	"github.com/Ashfaaq98/signalroot-console/internal/seed"
)

// apiView is the API explorer: endpoints from the backend's OpenAPI
// document, or the bundled document when that fails.
type apiView struct {
	ui    *UI
	data  *collection.Store[model.APIEndpoint]
	state ListState
	once  sync.Once

	root   *tview.Flex
	search *tview.InputField
	info   *tview.TextView
	table  *tview.Table
	detail *tview.TextView
}

func newAPIView(ui *UI) *apiView {
	v := &apiView{
		ui: ui,
		state: ListState{
			Filter: query.NewFilterState(model.FacetMethod, model.FacetTag),
		},
	}

	v.data = collection.New[model.APIEndpoint](
		collection.SourceFunc[model.APIEndpoint](ui.backend.Endpoints),
		collection.WithFallback(seed.FallbackAPIDocs(ui.backend.BaseURL()).Endpoints()),
		collection.WithLogger[model.APIEndpoint](ui.logger),
		collection.WithOnChange(func(collection.Snapshot[model.APIEndpoint]) {
			ui.queue(v.render)
		}),
	)

	v.search = tview.NewInputField().
		SetLabel("Search: ").
		SetPlaceholder("path, summary or description")
	v.search.SetChangedFunc(func(text string) {
		v.state = v.state.WithSearch(text)
		v.render()
	})
	v.search.SetDoneFunc(func(tcell.Key) { ui.app.SetFocus(v.table) })

	v.info = tview.NewTextView().SetDynamicColors(true)

	v.table = tview.NewTable()
	v.table.SetBorder(true)
	v.table.SetTitle(" API Explorer (c: copy URL  m: method) ")
	v.table.SetTitleAlign(tview.AlignLeft)
	v.table.SetSelectable(true, false)
	v.table.SetFixed(1, 0)
	v.table.SetBorderColor(ui.theme.Border)
	v.table.SetBackgroundColor(ui.theme.Surface)
	v.table.SetSelectedStyle(tcell.StyleDefault.Background(ui.theme.SelectionBg).Foreground(ui.theme.SelectionFg))
	v.table.SetSelectionChangedFunc(func(int, int) { v.renderDetail() })
	v.table.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() != tcell.KeyRune {
			return ev
		}
		switch ev.Rune() {
		case 'c':
			v.copySelected()
		case 'm':
			v.state = v.state.CycleFacet(model.FacetMethod, model.EndpointSchema.Categories)
			v.render()
		default:
			return ev
		}
		return nil
	})

	v.detail = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
	v.detail.SetBorder(true)
	v.detail.SetTitle(" Endpoint ")
	v.detail.SetTitleAlign(tview.AlignLeft)
	v.detail.SetBorderColor(ui.theme.Border)
	v.detail.SetBackgroundColor(ui.theme.Surface)

	v.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.search, 1, 0, false).
		AddItem(v.info, 2, 0, false).
		AddItem(v.table, 0, 2, true).
		AddItem(v.detail, 0, 1, false)

	v.render()
	return v
}

func (v *apiView) name() string                   { return string(ViewAPI) }
func (v *apiView) primitive() tview.Primitive     { return v.root }
func (v *apiView) focusTarget() tview.Primitive   { return v.table }
func (v *apiView) searchField() *tview.InputField { return v.search }
func (v *apiView) close()                         { v.data.Close() }

func (v *apiView) mount() {
	v.once.Do(func() { load(v.ui, "API docs", v.data) })
}

func (v *apiView) refresh() {
	load(v.ui, "API docs", v.data)
}

func (v *apiView) selected() (model.APIEndpoint, bool) {
	id := selectedRef(v.table)
	for _, e := range v.data.Snapshot().Items {
		if e.ID() == id {
			return e, true
		}
	}
	return model.APIEndpoint{}, false
}

func (v *apiView) copySelected() {
	e, ok := v.selected()
	if !ok {
		return
	}
	if v.ui.copier.Copy(e.ID(), v.ui.backend.BaseURL()+e.Path) {
		v.ui.setStatusDirect("[%s]Copied %s[-:-:-]", v.ui.theme.TagSuccess, tview.Escape(e.Path))
	}
}

func (v *apiView) render() {
	snap := v.data.Snapshot()
	t := v.ui.theme
	headers := Headers(EndpointColumns, v.state.Sort)

	msg, ok := loadState(snap, "API documentation")
	if !ok {
		color := t.TagMuted
		if snap.State == collection.Failed {
			color = t.TagError
		}
		v.info.SetText(fmt.Sprintf("[%s]%s[-]", color, tview.Escape(msg)))
		v.ui.fillTable(v.table, headers, nil, msg)
		v.detail.SetText("")
		return
	}

	items := Derive(snap.Items, v.state, model.EndpointSchema)
	info := fmt.Sprintf("[%s]%s   base URL: %s   method: %s[-]",
		t.TagMuted, FoundLabel(len(items), "endpoints"), tview.Escape(v.ui.backend.BaseURL()), v.state.Filter.Facet(model.FacetMethod))
	if snap.Fallback {
		info += fmt.Sprintf("\n[%s]%s (showing bundled API documentation)[-]", t.TagError, tview.Escape(snap.Err))
	}
	v.info.SetText(info)
	v.ui.fillTable(v.table, headers, EndpointRows(items), "No endpoints found")
	v.renderDetail()
}

func (v *apiView) renderDetail() {
	e, ok := v.selected()
	if !ok {
		v.detail.SetText("")
		return
	}
	t := v.ui.theme
	text := fmt.Sprintf("[%s::b]%s[-::-]\n%s\n\n%s", t.TagAccent, tview.Escape(e.ID()), tview.Escape(e.Summary), tview.Escape(e.Description))
	if v.ui.copier.IsCopied(e.ID()) {
		text += fmt.Sprintf("\n\n[%s]Copied![-]", t.TagSuccess)
	}
	v.detail.SetText(text)
}
