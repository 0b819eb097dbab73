package pages

import (
	"context"
	"encoding/json"
	"errors"
	"notion-mini/core"
	"notion-mini/ids"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// StorageKey is the key the page sequence is persisted under.
	StorageKey   = "notion-mini.pages.v1"
	DefaultTitle = "Untitled"
)

type listenerEntry struct {
	id int
	fn core.Listener
}

// Store holds the ordered page sequence. Every effective mutation replaces
// the sequence with a new snapshot, writes it to the key-value store and then
// hands a copy to each listener. Listeners run while the store is locked and
// must not call mutating methods.
type Store struct {
	mu sync.Mutex

	kv  core.KeyValueStore
	key string
	ids core.IDGenerator
	now func() time.Time
	log logrus.FieldLogger

	pages        []core.Page
	listeners    []listenerEntry
	nextListener int
}

type Option func(*Store)

func WithIDGenerator(gen core.IDGenerator) Option {
	return func(s *Store) { s.ids = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// Open builds a store from the sequence persisted in kv. A missing, unreadable
// or malformed value is replaced by the welcome page, which is written back
// immediately. A nil kv keeps everything in memory only.
func Open(ctx context.Context, kv core.KeyValueStore, opts ...Option) *Store {
	s := &Store{
		kv:  kv,
		key: StorageKey,
		ids: ids.Generator{},
		now: time.Now,
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.kv == nil {
		s.kv = nopStore{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if loaded, ok := s.load(ctx); ok {
		s.pages = loaded
		s.log.WithField("pages", len(loaded)).Info("Loaded pages from storage")
		return s
	}
	s.pages = s.initialPages()
	s.persist(ctx)
	s.log.Info("Initialized default pages")
	return s
}

func (s *Store) load(ctx context.Context) ([]core.Page, bool) {
	log := s.log.WithField("key", s.key)
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			log.Debug("No persisted pages")
		} else {
			log.WithField("error", err).Warn("Failed to read persisted pages")
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	var loaded []core.Page
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.WithField("error", err).Warn("Persisted pages are malformed")
		return nil, false
	}
	// "null" decodes without error but is not a sequence.
	if loaded == nil {
		log.Warn("Persisted pages are not a sequence")
		return nil, false
	}
	return loaded, true
}

func (s *Store) initialPages() []core.Page {
	now := s.now().UnixMilli()
	unchecked := false
	return []core.Page{{
		ID:        s.ids.NewID(),
		Title:     "Getting started",
		CreatedAt: now,
		UpdatedAt: now,
		Blocks: []core.Block{
			{ID: s.ids.NewID(), Type: core.BlockHeading, Text: "Welcome to your notes"},
			{ID: s.ids.NewID(), Type: core.BlockParagraph, Text: "This is a minimal Notion-like editor with blocks."},
			{ID: s.ids.NewID(), Type: core.BlockBulleted, Text: "Create pages from the sidebar"},
			{ID: s.ids.NewID(), Type: core.BlockBulleted, Text: "Add and edit blocks inline"},
			{ID: s.ids.NewID(), Type: core.BlockTodo, Text: "Try the checkbox block", Checked: &unchecked},
		},
	}}
}

// persist writes the current snapshot. Failures are logged and dropped.
func (s *Store) persist(ctx context.Context) {
	log := s.log.WithField("key", s.key)
	data, err := json.Marshal(s.pages)
	if err != nil {
		log.WithField("error", err).Warn("Failed to encode pages")
		return
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		log.WithField("error", err).Warn("Failed to persist pages")
		return
	}
	log.WithField("data_length", len(data)).Debug("Pages persisted")
}

func (s *Store) commit(ctx context.Context, next []core.Page) {
	s.pages = next
	s.persist(ctx)
	for _, l := range s.listeners {
		l.fn(core.ClonePages(s.pages))
	}
}

// bump returns the new updatedAt for a page, never moving backwards.
func (s *Store) bump(prev int64) int64 {
	return max(prev, s.now().UnixMilli())
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.pages, func(p core.Page) bool { return p.ID == id })
}

// updatePage replaces the page with the result of fn when fn reports a
// change, bumping its updatedAt. Callers hold s.mu.
func (s *Store) updatePage(ctx context.Context, id string, fn func(core.Page) (core.Page, bool)) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	page, changed := fn(s.pages[i])
	if !changed {
		return false
	}
	page.UpdatedAt = s.bump(page.UpdatedAt)
	next := slices.Clone(s.pages)
	next[i] = page
	s.commit(ctx, next)
	return true
}

// Subscribe registers fn and calls it right away with the current pages.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn core.Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListener++
	id := s.nextListener
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	fn(core.ClonePages(s.pages))

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(l listenerEntry) bool { return l.id == id })
	}
}

// Pages returns a copy of the current snapshot.
func (s *Store) Pages() []core.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ClonePages(s.pages)
}

func (s *Store) FindPage(id string) (core.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Page{}, false
	}
	return s.pages[i].Clone(), true
}

// FirstPageID returns the id of the landing page.
func (s *Store) FirstPageID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pages) == 0 {
		return "", false
	}
	return s.pages[0].ID, true
}
