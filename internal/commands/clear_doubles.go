package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/dastanaron/signupsaver/internal/service"
)

// ClearDoublesCommand handles removal of duplicate bookmarks inside the folder
type ClearDoublesCommand struct {
	folderName  string
	folderSvc   *service.FolderService
	bookmarkSvc *service.BookmarkService
	out         io.Writer
}

// NewClearDoublesCommand creates a new clear doubles command
func NewClearDoublesCommand(folderName string, folderSvc *service.FolderService, bookmarkSvc *service.BookmarkService, out io.Writer) *ClearDoublesCommand {
	return &ClearDoublesCommand{
		folderName:  folderName,
		folderSvc:   folderSvc,
		bookmarkSvc: bookmarkSvc,
		out:         out,
	}
}

type titleURL struct {
	title string
	url   string
}

// Execute removes bookmarks whose title and URL already appeared earlier in the folder.
// It returns how many were deleted.
func (c *ClearDoublesCommand) Execute(ctx context.Context) (int, error) {
	folderID, err := c.folderSvc.Find(ctx, c.folderName)
	if err != nil {
		return 0, err
	}
	if folderID == "" {
		fmt.Fprintln(c.out, "No duplicate bookmarks found.")
		return 0, nil
	}

	bookmarks, err := c.bookmarkSvc.List(ctx, folderID)
	if err != nil {
		return 0, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	// title+URL -> ID of bookmark to keep
	seen := make(map[titleURL]string)
	var duplicates []string
	for _, b := range bookmarks {
		key := titleURL{title: b.Title, url: b.URL}
		if keepID, ok := seen[key]; ok {
			duplicates = append(duplicates, b.ID)
			fmt.Fprintf(c.out, "Found duplicate: '%s' (ID: %s, keeping ID: %s)\n", b.Title, b.ID, keepID)
			continue
		}
		seen[key] = b.ID
	}

	if len(duplicates) == 0 {
		fmt.Fprintln(c.out, "No duplicate bookmarks found.")
		return 0, nil
	}

	deleted := 0
	for _, id := range duplicates {
		if err := c.bookmarkSvc.Delete(ctx, id); err != nil {
			fmt.Fprintf(c.out, "Warning: failed to delete bookmark ID %s: %v\n", id, err)
			continue
		}
		deleted++
	}

	fmt.Fprintf(c.out, "Deleted %d duplicate bookmark(s).\n", deleted)
	return deleted, nil
}
