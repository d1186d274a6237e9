package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Ashfaaq98/signalroot-console/internal/bus"
	"github.com/Ashfaaq98/signalroot-console/internal/collection"
	"github.com/Ashfaaq98/signalroot-console/internal/model"
	"github.com/Ashfaaq98/signalroot-console/internal/query"
	"github.com/Ashfaaq98/signalroot-console/internal/seed"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
)

var errReadOnly = errors.New("no database configured, services are read-only")

// servicesView is the service registry: list, add, edit and delete.
type servicesView struct {
	ui   *UI
	data *collection.Store[model.Service]
	once sync.Once

	table *tview.Table
}

func newServicesView(ui *UI) *servicesView {
	v := &servicesView{ui: ui}

	var src collection.Source[model.Service]
	if ui.store != nil {
		src = collection.SourceFunc[model.Service](func(ctx context.Context) ([]model.Service, error) {
			return ui.store.ListServices(ctx)
		})
	} else {
		src = collection.Static(seed.Services())
	}
	v.data = collection.New(src,
		collection.WithLogger[model.Service](ui.logger),
		collection.WithOnChange(func(collection.Snapshot[model.Service]) {
			ui.queue(v.render)
		}),
	)

	v.table = tview.NewTable()
	v.table.SetBorder(true)
	v.table.SetTitle(" Services (a: add  e: edit  x: delete) ")
	v.table.SetTitleAlign(tview.AlignLeft)
	v.table.SetSelectable(true, false)
	v.table.SetFixed(1, 0)
	v.table.SetBorderColor(ui.theme.Border)
	v.table.SetBackgroundColor(ui.theme.Surface)
	v.table.SetSelectedStyle(tcell.StyleDefault.Background(ui.theme.SelectionBg).Foreground(ui.theme.SelectionFg))
	v.table.SetInputCapture(v.handleKey)

	v.render()
	return v
}

func (v *servicesView) name() string                 { return string(ViewServices) }
func (v *servicesView) primitive() tview.Primitive   { return v.table }
func (v *servicesView) focusTarget() tview.Primitive { return v.table }
func (v *servicesView) close()                       { v.data.Close() }

func (v *servicesView) mount() {
	v.once.Do(func() { load(v.ui, "services", v.data) })
}

func (v *servicesView) refresh() {
	load(v.ui, "services", v.data)
}

func (v *servicesView) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() != tcell.KeyRune {
		return ev
	}
	switch ev.Rune() {
	case 'a':
		v.showForm(model.Service{})
	case 'e':
		if svc, ok := v.selected(); ok {
			v.showForm(svc)
		}
	case 'x':
		if svc, ok := v.selected(); ok {
			v.ui.confirm(fmt.Sprintf("Delete service %q?", svc.Name), func() {
				v.remove(svc)
			})
		}
	default:
		return ev
	}
	return nil
}

func (v *servicesView) selected() (model.Service, bool) {
	id := selectedRef(v.table)
	for _, svc := range v.data.Snapshot().Items {
		if svc.ID == id {
			return svc, true
		}
	}
	return model.Service{}, false
}

func (v *servicesView) render() {
	snap := v.data.Snapshot()
	headers := Headers(ServiceColumns, query.SortState{})
	if msg, ok := loadState(snap, "services"); !ok {
		v.ui.fillTable(v.table, headers, nil, msg)
		return
	}
	v.ui.fillTable(v.table, headers, ServiceRows(snap.Items), "No services yet. Press a to add one")
}

// showForm opens the add form for a zero service, the edit form otherwise.
func (v *servicesView) showForm(svc model.Service) {
	ui := v.ui
	editing := svc.ID != ""
	title := " Add Service "
	if editing {
		title = " Edit Service "
	}

	form := tview.NewForm()
	form.AddInputField("Name", svc.Name, 40, nil, nil)
	form.AddInputField("Description", svc.Description, 60, nil, nil)
	form.AddButton("Save", func() {
		svc.Name = form.GetFormItemByLabel("Name").(*tview.InputField).GetText()
		svc.Description = form.GetFormItemByLabel("Description").(*tview.InputField).GetText()
		if err := svc.Validate(); err != nil {
			ui.setStatusDirect("[%s]%v[-:-:-]", ui.theme.TagError, err)
			return
		}
		ui.restoreMainLayout()
		v.save(svc, editing)
	})
	form.AddButton("Cancel", ui.restoreMainLayout)
	form.SetCancelFunc(ui.restoreMainLayout)
	form.SetBorder(true)
	form.SetTitle(title)
	form.SetTitleAlign(tview.AlignLeft)
	form.SetBorderColor(ui.theme.FocusBorder)
	form.SetBackgroundColor(ui.theme.Surface)

	ui.showDialog(centered(form, 80, 9), form)
}

// save persists off the UI goroutine and reloads the list.
func (v *servicesView) save(svc model.Service, editing bool) {
	ui := v.ui
	go func() {
		saved, err := v.persist(ui.ctx, svc, editing)
		ui.queue(func() {
			if err != nil {
				ui.setStatusDirect("[%s]Failed to save service: %v[-:-:-]", ui.theme.TagError, err)
				return
			}
			ui.setStatusDirect("[%s]Saved service %s[-:-:-]", ui.theme.TagSuccess, saved.Name)
		})
		if err == nil {
			v.refresh()
		}
	}()
}

func (v *servicesView) persist(ctx context.Context, svc model.Service, editing bool) (model.Service, error) {
	st := v.ui.store
	if st == nil {
		return model.Service{}, errReadOnly
	}
	var (
		saved model.Service
		err   error
		kind  = store.ActivityServiceCreated
	)
	if editing {
		saved, err = st.UpdateService(ctx, svc)
		kind = store.ActivityServiceUpdated
	} else {
		saved, err = st.CreateService(ctx, svc)
	}
	if err != nil {
		return model.Service{}, err
	}
	v.ui.recordActivity(ctx, kind, saved.ID, map[string]string{"name": saved.Name})
	return saved, nil
}

func (v *servicesView) remove(svc model.Service) {
	ui := v.ui
	go func() {
		err := errReadOnly
		if ui.store != nil {
			err = ui.store.DeleteService(ui.ctx, svc.ID)
		}
		if err == nil {
			ui.recordActivity(ui.ctx, store.ActivityServiceDeleted, svc.ID, map[string]string{"name": svc.Name})
		}
		ui.queue(func() {
			if err != nil {
				ui.setStatusDirect("[%s]Failed to delete service: %v[-:-:-]", ui.theme.TagError, err)
				return
			}
			ui.setStatusDirect("[%s]Deleted service %s[-:-:-]", ui.theme.TagSuccess, svc.Name)
		})
		if err == nil {
			v.refresh()
		}
	}()
}

// recordActivity writes to the activity log and the bus. Failures are
// logged only.
func (ui *UI) recordActivity(ctx context.Context, kind, subject string, details map[string]string) {
	if ui.store != nil {
		d := make(map[string]interface{}, len(details))
		for k, val := range details {
			d[k] = val
		}
		if err := ui.store.RecordActivity(ctx, store.Activity{Kind: kind, Subject: subject, Details: d}); err != nil {
			ui.logger.Printf("record activity %s: %v", kind, err)
		}
	}
	if err := ui.bus.PublishActivity(ctx, bus.ActivityMessage{
		Kind:    kind,
		Subject: subject,
		Actor:   "console",
		Details: details,
	}); err != nil {
		ui.logger.Printf("publish activity %s: %v", kind, err)
	}
}
