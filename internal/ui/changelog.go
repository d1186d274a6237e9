package ui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Ashfaaq98/signalroot-console/internal/collection"
	"github.com/Ashfaaq98/signalroot-console/internal/model"
	"github.com/Ashfaaq98/signalroot-console/internal/query"
)

// changelogView lists releases with a stats panel over every release and a
// change type facet. Enter expands or collapses a release. A failed load
// shows the error and no releases until r retries.
type changelogView struct {
	ui       *UI
	data     *collection.Store[model.ChangelogVersion]
	state    ListState
	expanded query.IDSet
	once     sync.Once

	root   *tview.Flex
	search *tview.InputField
	stats  *tview.TextView
	table  *tview.Table
}

func newChangelogView(ui *UI) *changelogView {
	v := &changelogView{
		ui: ui,
		state: ListState{
			Filter: model.NewChangelogFilter(),
			Sort:   model.DefaultChangelogSort,
		},
	}

	v.data = collection.New[model.ChangelogVersion](
		collection.SourceFunc[model.ChangelogVersion](ui.backend.Versions),
		collection.WithLogger[model.ChangelogVersion](ui.logger),
		collection.WithOnChange(func(snap collection.Snapshot[model.ChangelogVersion]) {
			ui.queue(func() {
				// The newest release starts expanded.
				if v.expanded.Len() == 0 && len(snap.Items) > 0 {
					latest := query.Sort(snap.Items, model.DefaultChangelogSort, model.ChangelogSchema)
					v.expanded.Add(latest[0].Version)
				}
				v.render()
			})
		}),
	)

	v.search = tview.NewInputField().
		SetLabel("Search: ").
		SetPlaceholder("version or change description")
	v.search.SetChangedFunc(func(text string) {
		v.state = v.state.WithSearch(text)
		v.render()
	})
	v.search.SetDoneFunc(func(tcell.Key) { ui.app.SetFocus(v.table) })

	v.stats = tview.NewTextView().SetDynamicColors(true)

	v.table = tview.NewTable()
	v.table.SetBorder(true)
	v.table.SetTitle(" Changelog (Enter: expand  t: type) ")
	v.table.SetTitleAlign(tview.AlignLeft)
	v.table.SetSelectable(true, false)
	v.table.SetBorderColor(ui.theme.Border)
	v.table.SetBackgroundColor(ui.theme.Surface)
	v.table.SetSelectedStyle(tcell.StyleDefault.Background(ui.theme.SelectionBg).Foreground(ui.theme.SelectionFg))
	v.table.SetSelectedFunc(func(int, int) {
		if id := selectedRef(v.table); id != "" {
			v.toggle(id)
		}
	})
	v.table.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyRune && ev.Rune() == 't' {
			v.state = v.state.CycleFacet(model.FacetType, model.ChangeTypes)
			v.render()
			return nil
		}
		return ev
	})

	v.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.search, 1, 0, false).
		AddItem(v.stats, 3, 0, false).
		AddItem(v.table, 0, 1, true)

	v.render()
	return v
}

func (v *changelogView) name() string                   { return string(ViewChangelog) }
func (v *changelogView) primitive() tview.Primitive     { return v.root }
func (v *changelogView) focusTarget() tview.Primitive   { return v.table }
func (v *changelogView) searchField() *tview.InputField { return v.search }
func (v *changelogView) close()                         { v.data.Close() }

func (v *changelogView) mount() {
	v.once.Do(func() { load(v.ui, "changelog", v.data) })
}

func (v *changelogView) refresh() {
	load(v.ui, "changelog", v.data)
}

func (v *changelogView) toggle(version string) {
	v.expanded.Toggle(version)
	row, _ := v.table.GetSelection()
	v.render()
	v.table.Select(row, 0)
}

func (v *changelogView) render() {
	snap := v.data.Snapshot()
	t := v.ui.theme
	v.table.Clear()

	msg, ok := loadState(snap, "changelog")
	if !ok {
		color := t.TagMuted
		if snap.State == collection.Failed {
			color = t.TagError
		}
		v.stats.SetText(fmt.Sprintf("[%s]%s[-]", color, tview.Escape(msg)))
		v.table.SetCell(0, 0, tview.NewTableCell(tview.Escape(msg)).SetTextColor(t.TextMuted).SetSelectable(false))
		return
	}

	items := Derive(snap.Items, v.state, model.ChangelogSchema)
	header := fmt.Sprintf("[%s]%s[-]\n[%s]%s   type: %s[-]",
		t.TagTextPrimary, FormatStats(ChangelogStats(snap.Items)),
		t.TagMuted, FoundLabel(len(items), "releases"), v.state.Filter.Facet(model.FacetType))
	v.stats.SetText(header)

	if len(items) == 0 {
		v.table.SetCell(0, 0, tview.NewTableCell("No releases found. Try adjusting your search or filters").
			SetTextColor(t.TextMuted).SetSelectable(false))
		return
	}
	row := 0
	for _, ver := range items {
		for i, line := range ChangelogVersionLines(ver, v.expanded.Contains(ver.Version)) {
			cell := tview.NewTableCell(tview.Escape(line)).SetReference(ver.Version)
			if i == 0 {
				cell.SetTextColor(t.TableHeader).SetAttributes(tcell.AttrBold)
			} else {
				cell.SetTextColor(t.TableRow)
			}
			v.table.SetCell(row, 0, cell)
			row++
		}
	}
}
