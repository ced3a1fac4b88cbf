package popup

import (
	"context"
	"fmt"

	"github.com/dastanaron/signupsaver/internal/models"
)

// TabSource returns the page the user wants to save
type TabSource interface {
	ActiveTab(ctx context.Context) (models.Tab, error)
}

// StaticTab is a TabSource that always returns the same page
type StaticTab models.Tab

func (t StaticTab) ActiveTab(context.Context) (models.Tab, error) {
	return models.Tab(t), nil
}

// ListSurface renders the folder's bookmarks as rows
type ListSurface interface {
	Append(b models.Bookmark)
	Prepend(b models.Bookmark)
	Remove(id string)
}

// Notify receives status keys; *Notifier implements it
type Notify interface {
	Notify(key StatusKey)
}

// FolderResolver is the part of service.FolderService the popup needs
type FolderResolver interface {
	Find(ctx context.Context, name string) (string, error)
	Resolve(ctx context.Context, name string) (string, error)
}

// Reconciler is the part of service.BookmarkService the popup needs
type Reconciler interface {
	Save(ctx context.Context, title, url, folderID string) (models.SaveResult, error)
	List(ctx context.Context, folderID string) ([]models.Bookmark, error)
	Delete(ctx context.Context, id string) error
}

// Popup wires user actions to the services and the presentation surfaces
type Popup struct {
	folderName string
	folders    FolderResolver
	bookmarks  Reconciler
	tabs       TabSource
	list       ListSurface
	status     Notify
}

// Deps groups what a Popup is built from
type Deps struct {
	FolderName string
	Folders    FolderResolver
	Bookmarks  Reconciler
	Tabs       TabSource
	List       ListSurface
	Status     Notify
}

// New creates a popup controller
func New(d Deps) *Popup {
	name := d.FolderName
	if name == "" {
		name = models.DefaultFolderName
	}
	return &Popup{
		folderName: name,
		folders:    d.Folders,
		bookmarks:  d.Bookmarks,
		tabs:       d.Tabs,
		list:       d.List,
		status:     d.Status,
	}
}

// Open renders the folder's bookmarks. A missing folder renders nothing and is not created.
func (p *Popup) Open(ctx context.Context) error {
	folderID, err := p.folders.Find(ctx, p.folderName)
	if err != nil {
		return err
	}
	if folderID == "" {
		return nil
	}

	bookmarks, err := p.bookmarks.List(ctx, folderID)
	if err != nil {
		return err
	}
	for _, b := range bookmarks {
		p.list.Append(b)
	}
	return nil
}

// Save bookmarks the active tab and reports the outcome on the status surface
func (p *Popup) Save(ctx context.Context) (models.SaveResult, error) {
	res, err := p.save(ctx)
	if err != nil {
		p.status.Notify(StatusUnknown)
		return models.SaveResult{}, err
	}

	switch res.Outcome {
	case models.OutcomeCreated:
		p.list.Prepend(res.Bookmark)
		p.status.Notify(StatusAddition)
	case models.OutcomeDuplicate:
		p.status.Notify(StatusExists)
	case models.OutcomeRejected:
		p.status.Notify(StatusNotValidTarget)
	default:
		p.status.Notify(StatusUnknown)
	}
	return res, nil
}

func (p *Popup) save(ctx context.Context) (models.SaveResult, error) {
	tab, err := p.tabs.ActiveTab(ctx)
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("active tab: %w", err)
	}

	folderID, err := p.folders.Resolve(ctx, p.folderName)
	if err != nil {
		return models.SaveResult{}, err
	}

	return p.bookmarks.Save(ctx, tab.Title, tab.URL, folderID)
}

// Delete removes a bookmark. On failure the list is left as it is.
func (p *Popup) Delete(ctx context.Context, id string) error {
	if err := p.bookmarks.Delete(ctx, id); err != nil {
		p.status.Notify(StatusUnknown)
		return err
	}
	p.list.Remove(id)
	p.status.Notify(StatusRemoval)
	return nil
}
