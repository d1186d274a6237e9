package ui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Ashfaaq98/signalroot-console/internal/collection"
	"github.com/Ashfaaq98/signalroot-console/internal/model"
	"github.com/Ashfaaq98/signalroot-console/internal/query"
	"github.com/Ashfaaq98/signalroot-console/internal/seed"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
)

// webhooksView shows the integration guides. Results and the in-flight
// marker are only touched on the UI goroutine.
type webhooksView struct {
	ui       *UI
	data     *collection.Store[model.WebhookGuide]
	expanded query.IDSet
	results  map[string]model.WebhookResult
	testing  map[string]bool
	once     sync.Once

	root  *tview.Flex
	list  *tview.List
	guide *tview.TextView
}

func newWebhooksView(ui *UI) *webhooksView {
	v := &webhooksView{
		ui:       ui,
		expanded: query.NewIDSet(SectionOverview),
		results:  make(map[string]model.WebhookResult),
		testing:  make(map[string]bool),
	}
	v.data = collection.New(
		collection.Static(seed.WebhookGuides(ui.backend.BaseURL())),
		collection.WithLogger[model.WebhookGuide](ui.logger),
		collection.WithOnChange(func(collection.Snapshot[model.WebhookGuide]) {
			ui.queue(v.reloadList)
		}),
	)

	v.list = tview.NewList()
	v.list.SetBorder(true)
	v.list.SetTitle(" Integrations ")
	v.list.SetTitleAlign(tview.AlignLeft)
	v.list.SetMainTextColor(ui.theme.TextPrimary)
	v.list.SetSecondaryTextColor(ui.theme.TextMuted)
	v.list.SetSelectedTextColor(ui.theme.SelectionFg)
	v.list.SetSelectedBackgroundColor(ui.theme.SelectionBg)
	v.list.SetBorderColor(ui.theme.Border)
	v.list.SetBackgroundColor(ui.theme.Surface)
	v.list.SetChangedFunc(func(int, string, string, rune) { v.render() })
	v.list.SetInputCapture(v.handleKey)

	v.guide = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true).
		SetScrollable(true)
	v.guide.SetBorder(true)
	v.guide.SetTitle(" o s g t: sections  c: copy URL  x: test ")
	v.guide.SetTitleAlign(tview.AlignLeft)
	v.guide.SetBorderColor(ui.theme.Border)
	v.guide.SetBackgroundColor(ui.theme.Surface)
	v.guide.SetTextColor(ui.theme.TextPrimary)

	v.root = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(v.list, 32, 0, true).
		AddItem(v.guide, 0, 1, false)
	return v
}

func (v *webhooksView) name() string                 { return string(ViewWebhooks) }
func (v *webhooksView) primitive() tview.Primitive   { return v.root }
func (v *webhooksView) focusTarget() tview.Primitive { return v.list }
func (v *webhooksView) close()                       { v.data.Close() }

func (v *webhooksView) mount() {
	v.once.Do(func() { load(v.ui, "webhooks", v.data) })
}

func (v *webhooksView) refresh() {
	load(v.ui, "webhooks", v.data)
}

func (v *webhooksView) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() != tcell.KeyRune {
		return ev
	}
	switch ev.Rune() {
	case 'o':
		v.toggleSection(SectionOverview)
	case 's':
		v.toggleSection(SectionSetup)
	case 'g':
		v.toggleSection(SectionConfig)
	case 't':
		v.toggleSection(SectionTesting)
	case 'c':
		v.copyURL()
	case 'x':
		v.runTest()
	default:
		return ev
	}
	return nil
}

func (v *webhooksView) toggleSection(section string) {
	v.expanded.Toggle(section)
	v.render()
}

func (v *webhooksView) reloadList() {
	current := v.list.GetCurrentItem()
	v.list.Clear()
	for _, g := range v.data.Snapshot().Items {
		v.list.AddItem(g.Name, g.Category+" · "+g.Popularity, 0, nil)
	}
	if current > 0 && current < v.list.GetItemCount() {
		v.list.SetCurrentItem(current)
	}
	v.render()
}

func (v *webhooksView) selected() (model.WebhookGuide, bool) {
	items := v.data.Snapshot().Items
	idx := v.list.GetCurrentItem()
	if idx < 0 || idx >= len(items) {
		return model.WebhookGuide{}, false
	}
	return items[idx], true
}

func (v *webhooksView) copyURL() {
	g, ok := v.selected()
	if !ok {
		return
	}
	url := g.Configuration.WebhookURL
	if v.ui.copier.Copy(url, url) {
		v.ui.setStatusDirect("[%s]Copied %s[-:-:-]", v.ui.theme.TagSuccess, tview.Escape(url))
	}
}

// runTest posts the guide's sample payload. One test per guide at a time.
func (v *webhooksView) runTest() {
	g, ok := v.selected()
	if !ok || v.testing[g.Key] {
		return
	}
	v.testing[g.Key] = true
	v.render()

	ui := v.ui
	go func() {
		result := ui.backend.TestWebhook(ui.ctx, g.Testing.Path, g.Testing.SamplePayload)
		ui.recordActivity(ui.ctx, store.ActivityWebhookTested, g.Key, map[string]string{
			"success": strconv.FormatBool(result.Success),
			"message": result.Message,
		})
		ui.queue(func() {
			delete(v.testing, g.Key)
			v.results[g.Key] = result
			color := ui.theme.TagSuccess
			if !result.Success {
				color = ui.theme.TagError
			}
			ui.setStatusDirect("[%s]%s: %s[-:-:-]", color, tview.Escape(g.Name), tview.Escape(result.Message))
			v.render()
		})
	}()
}

func (v *webhooksView) render() {
	t := v.ui.theme
	snap := v.data.Snapshot()
	if msg, ok := loadState(snap, "webhook guides"); !ok {
		v.guide.SetText(fmt.Sprintf("[%s]%s[-]", t.TagMuted, tview.Escape(msg)))
		return
	}
	g, ok := v.selected()
	if !ok {
		v.guide.SetText(fmt.Sprintf("[%s]No integrations available[-]", t.TagMuted))
		return
	}

	var last *model.WebhookResult
	if r, ok := v.results[g.Key]; ok {
		last = &r
	}
	lines := WebhookGuideLines(g, v.expanded, v.ui.copier.IsCopied(g.Configuration.WebhookURL), last)
	for i := range lines {
		lines[i] = tview.Escape(lines[i])
	}
	lines[0] = fmt.Sprintf("[%s::b]%s[-::-]", t.TagAccent, lines[0])
	if v.testing[g.Key] {
		lines = append(lines, "", fmt.Sprintf("[%s]Testing %s...[-]", t.TagWarning, tview.Escape(g.Name)))
	}
	v.guide.SetText(strings.Join(lines, "\n"))
}
