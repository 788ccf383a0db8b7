// Package store holds the client's ordered copy of the post collection and
// reconciles it with server responses.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/notedesk/internal/cache"
	"github.com/debemdeboas/notedesk/internal/model"
)

var (
	ErrStale        = errors.New("load superseded by a newer load")
	ErrClosed       = errors.New("store is closed")
	ErrPostNotFound = errors.New("post not found")
)

var storeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storeLogger = l
}

type Fetcher interface {
	ListPosts(ctx context.Context, includeDeleted bool) ([]model.Post, error)
}

type Store struct {
	fetcher Fetcher

	mu         sync.RWMutex
	posts      []model.Post
	index      *cache.Cache[model.PostID, int]
	loading    bool
	err        error
	generation uint64
	closed     bool
}

func New(f Fetcher) *Store {
	return &Store{
		fetcher: f,
		posts:   []model.Post{},
		index:   cache.NewCache[model.PostID, int](),
	}
}

// Load fetches the full collection and replaces the local one. A failed load
// records the error and clears the collection. Only the most recently started
// load applies its result; older ones return ErrStale.
func (s *Store) Load(ctx context.Context, includeDeleted bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.generation++
	gen := s.generation
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	posts, err := s.fetcher.ListPosts(ctx, includeDeleted)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if gen != s.generation {
		storeLogger.Debug().Uint64("generation", gen).Msg("Discarding superseded load")
		return ErrStale
	}
	s.loading = false

	if err != nil {
		s.err = err
		s.replace([]model.Post{})
		storeLogger.Error().Err(err).Bool("include_deleted", includeDeleted).Msg("Error loading posts")
		return fmt.Errorf("failed to load posts: %w", err)
	}

	s.replace(dedupe(posts))
	storeLogger.Info().Int("count", len(s.posts)).Bool("include_deleted", includeDeleted).Msg("Loaded posts")
	return nil
}

// replace swaps in a new collection and rebuilds the index. Callers hold s.mu.
func (s *Store) replace(posts []model.Post) {
	index := make(map[model.PostID]int, len(posts))
	for i, p := range posts {
		index[p.ID] = i
	}
	s.posts = posts
	s.index.SetTo(index)
}

// dedupe keeps the first occurrence of each identifier.
func dedupe(posts []model.Post) []model.Post {
	seen := make(map[model.PostID]struct{}, len(posts))
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.ID]; ok {
			storeLogger.Warn().Str("post_id", string(p.ID)).Msg("Duplicate post in load response, keeping first")
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// ApplySearch returns the posts whose title contains query, ignoring case.
// An empty query returns the whole collection in order.
func (s *Store) ApplySearch(query string) []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterByTitle(s.posts, query)
}

func FilterByTitle(posts []model.Post, query string) []model.Post {
	if query == "" {
		return slices.Clone(posts)
	}
	q := strings.ToLower(query)
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
		}
	}
	return out
}

// MergeUpdated replaces the entry with the same identifier in place. It never
// adds a post that is not already present.
func (s *Store) MergeUpdated(post model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index.Get(post.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPostNotFound, post.ID)
	}

	posts := slices.Clone(s.posts)
	posts[i] = post
	s.posts = posts
	return nil
}

// RemoveOrMerge applies a delete result. With includeDeleted the flagged post
// stays visible and is merged, otherwise it is removed.
func (s *Store) RemoveOrMerge(post model.Post, includeDeleted bool) error {
	if includeDeleted {
		return s.MergeUpdated(post)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index.Get(post.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPostNotFound, post.ID)
	}

	s.replace(slices.Delete(slices.Clone(s.posts), i, i+1))
	return nil
}

// Posts returns a copy of the collection in server order.
func (s *Store) Posts() []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.posts)
}

func (s *Store) Find(id model.PostID) (model.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index.Get(id)
	if !ok {
		return model.Post{}, false
	}
	return s.posts[i], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the error of the last applied load, if it failed.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Close makes every later or in-flight load a no-op.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.loading = false
}
