package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dastanaron/signupsaver/internal/models"
	"github.com/dastanaron/signupsaver/internal/parser"
	"github.com/dastanaron/signupsaver/internal/service"
)

// ImportCommand saves every link of a Netscape bookmark file into the folder
type ImportCommand struct {
	folderName  string
	folderSvc   *service.FolderService
	bookmarkSvc *service.BookmarkService
	out         io.Writer
}

// ImportStats counts what an import did
type ImportStats struct {
	Created   int
	Duplicate int
	Rejected  int
	Failed    int
}

// NewImportCommand creates a new import command
func NewImportCommand(folderName string, folderSvc *service.FolderService, bookmarkSvc *service.BookmarkService, out io.Writer) *ImportCommand {
	return &ImportCommand{
		folderName:  folderName,
		folderSvc:   folderSvc,
		bookmarkSvc: bookmarkSvc,
		out:         out,
	}
}

// Execute imports bookmarks from HTML file
func (c *ImportCommand) Execute(ctx context.Context, filePath string) (ImportStats, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return ImportStats{}, fmt.Errorf("cannot open file: %w", err)
	}
	defer file.Close()

	return c.Import(ctx, file)
}

// Import reconciles the links read from r
func (c *ImportCommand) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats

	tabs, err := parser.ParseBookmarksHTML(r)
	if err != nil {
		return stats, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if len(tabs) == 0 {
		fmt.Fprintln(c.out, "No bookmarks found.")
		return stats, nil
	}

	folderID, err := c.folderSvc.Resolve(ctx, c.folderName)
	if err != nil {
		return stats, err
	}

	for _, t := range tabs {
		res, err := c.bookmarkSvc.Save(ctx, t.Title, t.URL, folderID)
		if err != nil {
			fmt.Fprintf(c.out, "Warning: failed to import bookmark '%s': %v\n", t.Title, err)
			stats.Failed++
			continue
		}
		switch res.Outcome {
		case models.OutcomeCreated:
			stats.Created++
		case models.OutcomeDuplicate:
			stats.Duplicate++
		case models.OutcomeRejected:
			stats.Rejected++
		}
	}

	fmt.Fprintf(c.out, "Imported %d bookmarks (%d already saved, %d not valid targets, %d failed).\n",
		stats.Created, stats.Duplicate, stats.Rejected, stats.Failed)
	return stats, nil
}
