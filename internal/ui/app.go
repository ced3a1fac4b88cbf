package ui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/dastanaron/signupsaver/internal/models"
	"github.com/dastanaron/signupsaver/internal/popup"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	ModeNormal = 1
	ModeForm   = 2
	ModeModal  = 3
)

// Options configures the terminal popup
type Options struct {
	FolderName  string
	Folders     popup.FolderResolver
	Bookmarks   popup.Reconciler
	DefaultTab  models.Tab // pre-fills the save form
	StatusDelay time.Duration
}

// App represents the TUI application
type App struct {
	app      *tview.Application
	list     *tview.List
	detail   *tview.TextView
	status   *tview.TextView
	help     *tview.TextView
	pages    *tview.Pages
	mode     uint8
	items    []models.Bookmark // rows of list, same order
	tab      models.Tab        // page the save form was submitted with
	popup    *popup.Popup
	notifier *popup.Notifier
}

// NewApp creates a new application instance
func NewApp(opts Options) *App {
	a := &App{
		app:    tview.NewApplication(),
		list:   tview.NewList(),
		detail: tview.NewTextView().SetDynamicColors(true).SetWrap(true),
		status: tview.NewTextView().SetDynamicColors(true),
		help:   tview.NewTextView().SetDynamicColors(true),
		pages:  tview.NewPages(),
		mode:   ModeNormal,
		tab:    opts.DefaultTab,
	}
	a.notifier = popup.NewNotifier(a, opts.StatusDelay)
	a.popup = popup.New(popup.Deps{
		FolderName: opts.FolderName,
		Folders:    opts.Folders,
		Bookmarks:  opts.Bookmarks,
		Tabs:       a,
		List:       a,
		Status:     a.notifier,
	})
	return a
}

// Run starts the application
func (a *App) Run() error {
	a.list.SetBorder(true).SetTitle("SignUpSaver")
	a.detail.SetBorder(true).SetTitle("Details")

	cols := tview.NewFlex().
		AddItem(a.list, 0, 3, true).
		AddItem(a.detail, 0, 1, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(cols, 0, 1, true).
		AddItem(a.status, 1, 0, false).
		AddItem(a.help, 1, 0, false)

	a.pages.AddPage("main", layout, true, true)

	if err := a.popup.Open(context.Background()); err != nil {
		return err
	}

	a.list.SetChangedFunc(a.onSelect)
	a.app.SetRoot(a.pages, true)
	a.app.SetInputCapture(a.globalInput)
	a.updateHelp()
	a.showDetails()

	defer a.notifier.Stop()
	return a.app.Run()
}

// ActiveTab returns the page last submitted through the save form
func (a *App) ActiveTab(context.Context) (models.Tab, error) {
	return a.tab, nil
}

// Append adds a row at the bottom
func (a *App) Append(b models.Bookmark) {
	a.items = append(a.items, b)
	a.list.AddItem(rowText(b), b.URL, 0, nil)
	a.afterListChange()
}

// Prepend adds a row on top
func (a *App) Prepend(b models.Bookmark) {
	a.items = append([]models.Bookmark{b}, a.items...)
	a.list.InsertItem(0, rowText(b), b.URL, 0, nil)
	a.list.SetCurrentItem(0)
	a.afterListChange()
}

// Remove drops the row of bookmark id
func (a *App) Remove(id string) {
	for i, b := range a.items {
		if b.ID == id {
			a.items = append(a.items[:i], a.items[i+1:]...)
			a.list.RemoveItem(i)
			break
		}
	}
	a.afterListChange()
}

// Show displays a status message; called from event handlers
func (a *App) Show(text string) {
	a.status.SetText(fmt.Sprintf("[::b]%s[::-]", text))
}

// Hide clears the status message; called from the notifier's timer
func (a *App) Hide() {
	a.app.QueueUpdateDraw(func() {
		a.status.SetText("")
	})
}

func rowText(b models.Bookmark) string {
	if b.Title == "" {
		return b.URL
	}
	return b.Title
}

func (a *App) afterListChange() {
	a.updateHelp()
	a.showDetails()
}

func (a *App) current() *models.Bookmark {
	i := a.list.GetCurrentItem()
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return &a.items[i]
}

func (a *App) updateHelp() {
	a.help.SetText(fmt.Sprintf(
		"[::b]s[::r] save  [::b]d[::r] del  [::b]Enter[::r] open  [::b]q[::r] quit [::b]%d[::r] bookmarks",
		len(a.items)))
}

func (a *App) showDetails() {
	b := a.current()
	if b == nil {
		a.detail.SetText("")
		return
	}
	a.detail.SetText(fmt.Sprintf(
		"[::b]Title:[::-]\n%s\n\n[::b]URL:[::-]\n%s\n\n[::b]ID:[::-]\n%s",
		b.Title, b.URL, b.ID))
}

func (a *App) onSelect(int, string, string, rune) {
	a.showDetails()
}

func (a *App) globalInput(event *tcell.EventKey) *tcell.EventKey {
	// modals handle their own keys
	if a.pages.HasPage("confirm") || a.pages.HasPage("error") {
		return event
	}

	switch a.mode {
	case ModeNormal:
		switch event.Key() {
		case tcell.KeyEnter:
			if b := a.current(); b != nil && b.URL != "" {
				openURL(b.URL)
			}
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 's':
				a.showSaveForm()
				return nil
			case 'd':
				b := a.current()
				if b == nil {
					return nil
				}
				id := b.ID
				a.showConfirm(fmt.Sprintf("Are you sure you want to delete bookmark '%s'?", rowText(*b)), func() {
					if err := a.popup.Delete(context.Background(), id); err != nil {
						a.showError(fmt.Sprintf("Error deleting bookmark: %v", err))
					}
				})
				return nil
			case 'q':
				a.app.Stop()
				return nil
			}
		}
	case ModeForm:
		if event.Key() == tcell.KeyEscape {
			a.closeForm()
			return nil
		}
	}
	return event
}

func (a *App) showSaveForm() {
	tab := a.tab

	form := tview.NewForm()
	form.AddInputField("Title", tab.Title, 60, nil, func(t string) { tab.Title = t })
	form.AddInputField("URL", tab.URL, 60, nil, func(t string) { tab.URL = t })
	form.AddButton("Save", func() {
		if tab.URL == "" {
			a.showError("Error: URL is required")
			return
		}
		a.tab = tab
		a.closeForm()
		if _, err := a.popup.Save(context.Background()); err != nil {
			a.showError(fmt.Sprintf("Error saving bookmark: %v", err))
		}
	})
	form.AddButton("Cancel", a.closeForm)

	form.SetBorder(true).SetTitle("Save page")
	a.pages.AddPage("form", form, true, true)
	a.app.SetFocus(form)
	a.mode = ModeForm
}

func (a *App) closeForm() {
	a.pages.RemovePage("form")
	a.mode = ModeNormal
	a.app.SetFocus(a.list)
}

// showError shows a modal with an error message
func (a *App) showError(message string) {
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			a.pages.RemovePage("error")
			a.restoreFocus()
		})

	modal.SetBorder(true).SetTitle("Error")
	a.pages.AddPage("error", modal, true, true)
	a.mode = ModeModal
	a.app.SetFocus(modal)
}

func (a *App) showConfirm(message string, onConfirm func()) {
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"Cancel", "OK"}).
		SetDoneFunc(func(buttonIndex int, _ string) {
			a.pages.RemovePage("confirm")
			a.restoreFocus()
			if buttonIndex == 1 && onConfirm != nil {
				onConfirm()
			}
		})

	modal.SetBorder(true).SetTitle("Confirm")
	a.pages.AddPage("confirm", modal, true, true)
	a.mode = ModeModal
	a.app.SetFocus(modal)
}

func (a *App) restoreFocus() {
	if a.pages.HasPage("form") {
		a.mode = ModeForm
		return
	}
	a.mode = ModeNormal
	a.app.SetFocus(a.list)
}

func openURL(url string) {
	var cmd string
	var args []string
	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default:
		cmd = "xdg-open"
	}
	args = append(args, url)
	_ = exec.Command(cmd, args...).Start()
}
