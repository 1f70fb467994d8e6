package store

import (
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "github.com/glebarez/go-sqlite"
)

var ErrNotFound = errors.New("post not found")

// Post is the resource served by the example API.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Attribute exposes the fields of a post by their JSON names,
// which makes a Post usable as a timecheck.ResourceSnapshot.
func (p Post) Attribute(name string) (any, bool) {
	switch name {
	case "id":
		return p.ID, true
	case "title":
		return p.Title, true
	case "body":
		return p.Body, true
	case "lastUpdated":
		return p.LastUpdated, true
	}
	return nil, false
}

// Store is an interface for post storage.
//
// Implementations must be thread-safe!
type Store interface {
	// Get returns the post with the given id, or ErrNotFound.
	Get(id string) (Post, error)
	// All returns all posts ordered by last update, newest first.
	All() ([]Post, error)
	// Put inserts or replaces the post. An empty id is assigned a new one.
	Put(p Post) (Post, error)
	// Delete removes the post with the given id.
	Delete(id string) error
}

func assignID(p Post) Post {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return p
}

func sortNewestFirst(posts []Post) {
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].LastUpdated.After(posts[j].LastUpdated)
	})
}

type MemStore struct {
	mutex *sync.RWMutex
	db    map[string]Post
}

func NewMemStore() MemStore {
	return MemStore{
		mutex: &sync.RWMutex{},
		db:    make(map[string]Post),
	}
}

func (m MemStore) Get(id string) (Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	p, ok := m.db[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return p, nil
}

func (m MemStore) All() ([]Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	posts := make([]Post, 0, len(m.db))
	for _, p := range m.db {
		posts = append(posts, p)
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (m MemStore) Put(p Post) (Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	p = assignID(p)
	m.db[p.ID] = p
	return p, nil
}

func (m MemStore) Delete(id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.db, id)
	return nil
}

type SQLiteStore struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStore opens the given file as the db.
// If file name is empty, a new in-memory db is opened.
func NewSQLiteStore(filename string) (SQLiteStore, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return SQLiteStore{}, err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT,
		body TEXT,
		last_updated INTEGER
	)`)
	if err != nil {
		return SQLiteStore{}, err
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS last_updated_idx ON posts (last_updated)")
	if err != nil {
		return SQLiteStore{}, err
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return SQLiteStore{}, err
	}
	return SQLiteStore{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s SQLiteStore) Close() error {
	return s.db.Close()
}

func (s SQLiteStore) Get(id string) (Post, error) {
	var p Post
	var lastUpdated int64
	err := s.db.QueryRow("SELECT id, title, body, last_updated FROM posts WHERE id = ?", id).
		Scan(&p.ID, &p.Title, &p.Body, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	p.LastUpdated = time.Unix(0, lastUpdated).UTC()
	return p, nil
}

func (s SQLiteStore) All() ([]Post, error) {
	posts := make([]Post, 0)
	rows, err := s.db.Query("SELECT id, title, body, last_updated FROM posts ORDER BY last_updated DESC")
	if err != nil {
		return posts, err
	}
	defer rows.Close()
	for rows.Next() {
		var p Post
		var lastUpdated int64
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &lastUpdated); err != nil {
			return posts, err
		}
		p.LastUpdated = time.Unix(0, lastUpdated).UTC()
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s SQLiteStore) Put(p Post) (Post, error) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	p = assignID(p)
	_, err := s.db.Exec("INSERT OR REPLACE INTO posts (id, title, body, last_updated) VALUES (?, ?, ?, ?)",
		p.ID, p.Title, p.Body, p.LastUpdated.UnixNano())
	return p, err
}

func (s SQLiteStore) Delete(id string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM posts WHERE id = ?", id)
	return err
}
