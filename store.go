package pubsite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/pubsite/content"
)

// indexDateLayout keeps stored dates lexically ordered.
const indexDateLayout = "2006-01-02T15:04:05Z"

// Store is a SQLite snapshot of the post listing, written by `pubsite index`
// for tools that prefer SQL over the JSON export.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    date TEXT NOT NULL,
    author TEXT NOT NULL,
    tags TEXT NOT NULL,
    image TEXT NOT NULL,
    body TEXT NOT NULL,
    reading_time TEXT NOT NULL,
    draft INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS posts_date ON posts (date DESC, position);
`)
	return err
}

// ReplacePosts swaps the stored snapshot for posts. The slice order is kept
// as the tie-breaker for posts sharing a date.
func (s *Store) ReplacePosts(ctx context.Context, posts []content.Post) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO posts (slug, position, title, description, date, author, tags, image, body, reading_time, draft) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range posts {
		draft := 0
		if p.Draft {
			draft = 1
		}
		if _, err = stmt.ExecContext(ctx, p.Slug, i, p.Title, p.Description, p.Date.UTC().Format(indexDateLayout),
			p.Author, joinTags(p.Tags), p.Image, p.Body, p.ReadingTime, draft); err != nil {
			return fmt.Errorf("index %s: %w", p.Slug, err)
		}
	}
	return tx.Commit()
}

// ListPosts returns indexed posts ordered by date descending.
// If tag is non-empty, results are filtered to posts carrying it, ignoring case.
func (s *Store) ListPosts(tag string) ([]content.Post, error) {
	const columns = `SELECT slug, title, description, date, author, tags, image, body, reading_time, draft FROM posts`
	var rows *sql.Rows
	var err error
	if strings.TrimSpace(tag) == "" {
		rows, err = s.db.Query(columns + ` ORDER BY date DESC, position ASC`)
	} else {
		normalizedTag := strings.ToLower(strings.TrimSpace(tag))
		rows, err = s.db.Query(columns+` WHERE instr(lower(tags), ',' || ? || ',') > 0 ORDER BY date DESC, position ASC`, normalizedTag)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]content.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListTags returns a sorted, deduplicated slice of all indexed tags.
func (s *Store) ListTags() ([]string, error) {
	posts, err := s.ListPosts("")
	if err != nil {
		return nil, err
	}
	return content.TagsOf(posts), nil
}

// GetPost returns a single indexed post by slug.
func (s *Store) GetPost(slug string) (content.Post, bool, error) {
	row := s.db.QueryRow(`SELECT slug, title, description, date, author, tags, image, body, reading_time, draft FROM posts WHERE slug = ?`, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Post{}, false, nil
	}
	if err != nil {
		return content.Post{}, false, err
	}
	return p, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (content.Post, error) {
	var p content.Post
	var date, tags string
	var draft int
	if err := row.Scan(&p.Slug, &p.Title, &p.Description, &date, &p.Author, &tags, &p.Image, &p.Body, &p.ReadingTime, &draft); err != nil {
		return content.Post{}, err
	}
	t, err := time.Parse(indexDateLayout, date)
	if err != nil {
		return content.Post{}, fmt.Errorf("post %s: bad date %q: %w", p.Slug, date, err)
	}
	p.Date = t
	p.Tags = ParseTags(tags)
	p.Draft = draft == 1
	return p, nil
}

func joinTags(tags []string) string {
	return "," + strings.Join(tags, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return []string{}
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
