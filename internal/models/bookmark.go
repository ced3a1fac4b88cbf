package models

import "time"

// DefaultFolderName is the title of the folder every saved bookmark goes into
const DefaultFolderName = "SignUpSaver"

// Node is a single record of the bookmark store, either a folder or a bookmark.
// Folders have an empty URL.
type Node struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId,omitempty"`
	Index     int       `json:"index"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	DateAdded time.Time `json:"dateAdded"`
}

// IsFolder reports whether the node is a folder
func (n Node) IsFolder() bool {
	return n.URL == ""
}

// Bookmark represents a bookmark entry
type Bookmark struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	ParentID string `json:"parentId,omitempty"`
	Index    int    `json:"index"`
}

// BookmarkFromNode converts a store node to a bookmark
func BookmarkFromNode(n Node) Bookmark {
	return Bookmark{
		ID:       n.ID,
		Title:    n.Title,
		URL:      n.URL,
		ParentID: n.ParentID,
		Index:    n.Index,
	}
}

// Tab is the page a bookmark is saved from
type Tab struct {
	Title string
	URL   string
}
