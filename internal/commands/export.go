package commands

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"

	"github.com/dastanaron/signupsaver/internal/models"
	"github.com/dastanaron/signupsaver/internal/service"
)

// ExportCommand writes the folder as a Netscape bookmark file
type ExportCommand struct {
	folderName  string
	folderSvc   *service.FolderService
	bookmarkSvc *service.BookmarkService
	out         io.Writer
}

// NewExportCommand creates a new export command
func NewExportCommand(folderName string, folderSvc *service.FolderService, bookmarkSvc *service.BookmarkService, out io.Writer) *ExportCommand {
	return &ExportCommand{
		folderName:  folderName,
		folderSvc:   folderSvc,
		bookmarkSvc: bookmarkSvc,
		out:         out,
	}
}

// Execute exports bookmarks to HTML file
func (c *ExportCommand) Execute(ctx context.Context, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("cannot create file: %w", err)
	}
	defer file.Close()

	n, err := c.Export(ctx, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Exported %d bookmarks to %s\n", n, filePath)
	return nil
}

// Export writes the folder to w in store order and returns how many bookmarks it wrote.
// A missing folder exports an empty one.
func (c *ExportCommand) Export(ctx context.Context, w io.Writer) (int, error) {
	folderID, err := c.folderSvc.Find(ctx, c.folderName)
	if err != nil {
		return 0, err
	}

	var bookmarks []models.Bookmark
	if folderID != "" {
		bookmarks, err = c.bookmarkSvc.List(ctx, folderID)
		if err != nil {
			return 0, fmt.Errorf("failed to get bookmarks: %w", err)
		}
	}

	fmt.Fprintf(w, "<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	fmt.Fprintf(w, "<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	fmt.Fprintf(w, "<TITLE>Bookmarks</TITLE>\n")
	fmt.Fprintf(w, "<H1>Bookmarks</H1>\n")
	fmt.Fprintf(w, "<DL><p>\n")
	fmt.Fprintf(w, "    <DT><H3>%s</H3>\n", html.EscapeString(c.folderName))
	fmt.Fprintf(w, "    <DL><p>\n")
	for _, b := range bookmarks {
		fmt.Fprintf(w, "        <DT><A HREF=\"%s\">%s</A>\n", html.EscapeString(b.URL), html.EscapeString(b.Title))
	}
	fmt.Fprintf(w, "    </DL><p>\n")
	if _, err := fmt.Fprintf(w, "</DL><p>\n"); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}

	return len(bookmarks), nil
}
