package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dastanaron/signupsaver/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

const nodeColumns = `id, parent_id, position, title, url, date_added`

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// one writer at a time, and ":memory:" databases live on a single connection
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return newSQLiteStore(db), nil
}

func newSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func initSchema(db *sql.DB) error {
	createTables := `
	CREATE TABLE IF NOT EXISTS nodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id INTEGER,
		position INTEGER NOT NULL DEFAULT 0,
		title TEXT NOT NULL,
		url TEXT,
		FOREIGN KEY(parent_id) REFERENCES nodes(id)
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, position);
	`
	if _, err := db.Exec(createTables); err != nil {
		return err
	}

	// Migration: add date_added column if it doesn't exist
	// SQLite doesn't support IF NOT EXISTS for ALTER TABLE ADD COLUMN,
	// so we check if the column exists first
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('nodes') WHERE name = 'date_added'
	`).Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		_, err = db.Exec(`ALTER TABLE nodes ADD COLUMN date_added INTEGER NOT NULL DEFAULT 0`)
		if err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Search(ctx context.Context, q Query) ([]models.Node, error) {
	var (
		conds []string
		args  []any
	)
	if q.Title != "" {
		conds = append(conds, "title = ?")
		args = append(args, q.Title)
	}
	if q.URL != "" {
		conds = append(conds, "url = ?")
		args = append(args, q.URL)
	}

	stmt := `SELECT ` + nodeColumns + ` FROM nodes`
	if len(conds) > 0 {
		stmt += ` WHERE ` + strings.Join(conds, " AND ")
	}
	stmt += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("search nodes: %w", err)
	}
	defer rows.Close()

	nodes, err := scanNodes(rows)
	if err != nil {
		return nil, err
	}

	// SQLite's LOWER only folds ASCII, so query words are matched here
	out := nodes[:0]
	for _, n := range nodes {
		if q.Matches(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *SQLiteStore) Create(ctx context.Context, d CreateDetails) (models.Node, error) {
	parent, err := parseParent(d.ParentID)
	if err != nil {
		return models.Node{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Node{}, err
	}
	defer tx.Rollback()

	if parent != nil {
		var url sql.NullString
		err := tx.QueryRowContext(ctx, `SELECT url FROM nodes WHERE id = ?`, parent).Scan(&url)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Node{}, ErrNotFound
		}
		if err != nil {
			return models.Node{}, fmt.Errorf("lookup parent: %w", err)
		}
		if url.Valid && url.String != "" {
			return models.Node{}, ErrNotFound
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE parent_id IS ?`, parent).Scan(&count); err != nil {
		return models.Node{}, fmt.Errorf("count children: %w", err)
	}
	pos := insertPosition(d.Index, count)

	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET position = position + 1 WHERE parent_id IS ? AND position >= ?`,
		parent, pos,
	); err != nil {
		return models.Node{}, fmt.Errorf("shift siblings: %w", err)
	}

	added := s.now()
	var url any
	if d.URL != "" {
		url = d.URL
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO nodes(parent_id, position, title, url, date_added) VALUES (?, ?, ?, ?, ?)`,
		parent, pos, d.Title, url, added.UnixMilli(),
	)
	if err != nil {
		return models.Node{}, fmt.Errorf("insert node: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Node{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Node{}, err
	}

	return models.Node{
		ID:        strconv.FormatInt(id, 10),
		ParentID:  d.ParentID,
		Index:     pos,
		Title:     d.Title,
		URL:       d.URL,
		DateAdded: time.UnixMilli(added.UnixMilli()),
	}, nil
}

func (s *SQLiteStore) GetChildren(ctx context.Context, id string) ([]models.Node, error) {
	parent, err := parseParent(id)
	if err != nil {
		return nil, err
	}

	if parent != nil {
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE id = ?`, parent).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("lookup node: %w", err)
		}
		if exists == 0 {
			return nil, ErrNotFound
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE parent_id IS ? ORDER BY position`, parent)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	return scanNodes(rows)
}

func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	nodeID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		parent   sql.NullInt64
		position int
	)
	err = tx.QueryRowContext(ctx, `SELECT parent_id, position FROM nodes WHERE id = ?`, nodeID).
		Scan(&parent, &position)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup node: %w", err)
	}

	var children int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE parent_id = ?`, nodeID).Scan(&children); err != nil {
		return fmt.Errorf("count children: %w", err)
	}
	if children > 0 {
		return ErrFolderNotEmpty
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, nodeID); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}

	var parentArg any
	if parent.Valid {
		parentArg = parent.Int64
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET position = position - 1 WHERE parent_id IS ? AND position > ?`,
		parentArg, position,
	); err != nil {
		return fmt.Errorf("shift siblings: %w", err)
	}

	return tx.Commit()
}

// parseParent maps an id to a query argument; the empty id is the root (NULL)
func parseParent(id string) (any, error) {
	if id == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	return v, nil
}

func scanNodes(rows *sql.Rows) ([]models.Node, error) {
	var nodes []models.Node
	for rows.Next() {
		var (
			n      models.Node
			id     int64
			parent sql.NullInt64
			url    sql.NullString
			added  int64
		)
		if err := rows.Scan(&id, &parent, &n.Index, &n.Title, &url, &added); err != nil {
			return nil, err
		}
		n.ID = strconv.FormatInt(id, 10)
		if parent.Valid {
			n.ParentID = strconv.FormatInt(parent.Int64, 10)
		}
		n.URL = url.String
		n.DateAdded = time.UnixMilli(added)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}
