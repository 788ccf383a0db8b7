// Package app wires the router, the post store and the edit session into a
// single controller that front ends drive.
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/notedesk/internal/editor"
	"github.com/debemdeboas/notedesk/internal/model"
	"github.com/debemdeboas/notedesk/internal/router"
	"github.com/debemdeboas/notedesk/internal/store"
)

var ErrClosed = errors.New("app is closed")

var appLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	appLogger = l
}

// Controller owns the include-deleted toggle, the search state and the
// selection. Everything shown to the user is derived from those plus the
// store and the session.
type Controller struct {
	router  *router.Router
	store   *store.Store
	session *editor.Session

	mu             sync.Mutex
	includeDeleted bool
	pendingQuery   string
	appliedQuery   string
	selected       model.PostID
	hasSelection   bool
	source         model.Post
	deferredNav    bool
	closed         bool
	onChange       func()
}

type Option func(*Controller)

func WithIncludeDeleted(v bool) Option {
	return func(c *Controller) {
		c.includeDeleted = v
	}
}

// WithOnChange registers a callback run after every state change, outside
// the controller lock.
func WithOnChange(fn func()) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

func New(r *router.Router, s *store.Store, sess *editor.Session, opts ...Option) *Controller {
	c := &Controller{
		router:  r,
		store:   s,
		session: sess,
	}
	for _, opt := range opts {
		opt(c)
	}
	r.SetGuard(sess.InFlight)
	return c
}

// Start reads the initial selection, subscribes to navigation and performs
// the first load.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	c.selected, c.hasSelection = c.router.CurrentSelection()
	c.mu.Unlock()

	c.router.Start(c.onNavigate)
	return c.Reload(ctx)
}

// Close stops reacting to navigation and makes late results no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.router.Stop()
	c.store.Close()
	c.session.Abandon()
}

func (c *Controller) onNavigate(id model.PostID, ok bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.session.InFlight() {
		c.deferredNav = true
		c.mu.Unlock()
		appLogger.Debug().Str("post_id", string(id)).Msg("Deferring navigation until the mutation settles")
		return
	}
	c.selected, c.hasSelection = id, ok
	c.syncLocked()
	c.mu.Unlock()

	c.notify()
}

// syncLocked re-derives the session from the selection and the store.
// Callers hold c.mu.
func (c *Controller) syncLocked() {
	if c.session.InFlight() {
		return
	}

	post, found := c.selectedPostLocked()
	if !found {
		c.source = model.Post{}
		if _, open := c.session.PostID(); open {
			_ = c.session.Close()
		}
		return
	}

	id, open := c.session.PostID()
	if open && id == post.ID && post == c.source {
		return
	}

	if err := c.session.Begin(post); err != nil {
		appLogger.Warn().Err(err).Str("post_id", string(post.ID)).Msg("Failed to start edit session")
		return
	}
	c.source = post
}

func (c *Controller) selectedPostLocked() (model.Post, bool) {
	if !c.hasSelection {
		return model.Post{}, false
	}
	return c.store.Find(c.selected)
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

// Reload fetches the collection with the current include-deleted setting.
// A load superseded by a newer one is not an error.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	includeDeleted := c.includeDeleted
	c.mu.Unlock()

	c.notify()
	err := c.store.Load(ctx, includeDeleted)
	if errors.Is(err, store.ErrStale) || errors.Is(err, store.ErrClosed) {
		return nil
	}

	c.mu.Lock()
	c.syncLocked()
	c.mu.Unlock()
	c.notify()

	return err
}

func (c *Controller) SetIncludeDeleted(ctx context.Context, v bool) error {
	c.mu.Lock()
	if c.includeDeleted == v {
		c.mu.Unlock()
		return nil
	}
	c.includeDeleted = v
	c.mu.Unlock()

	return c.Reload(ctx)
}

func (c *Controller) IncludeDeleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.includeDeleted
}

// SetPendingQuery updates the search box without filtering.
func (c *Controller) SetPendingQuery(q string) {
	c.mu.Lock()
	c.pendingQuery = q
	c.mu.Unlock()
	c.notify()
}

// SubmitSearch commits the pending query as the applied one.
func (c *Controller) SubmitSearch() {
	c.mu.Lock()
	c.appliedQuery = c.pendingQuery
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) Select(id model.PostID) error {
	return c.router.Select(id)
}

// Selection returns the selected identifier, which may name a post that is
// not in the collection.
func (c *Controller) Selection() (model.PostID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected, c.hasSelection
}

// CloseEditor drops the draft and clears the selection.
func (c *Controller) CloseEditor() error {
	if err := c.session.Close(); err != nil {
		return err
	}
	c.router.ClearSelection()
	c.notify()
	return nil
}

func (c *Controller) SetTitle(title string) error {
	defer c.notify()
	return c.session.SetTitle(title)
}

func (c *Controller) SetBody(body string) error {
	defer c.notify()
	return c.session.SetBody(body)
}

// Save sends the draft of the selected post and merges the server's copy.
func (c *Controller) Save(ctx context.Context) error {
	post, ok := c.SelectedPost()
	if !ok {
		return editor.ErrNoSelection
	}

	saved, err := c.mutate(func() (model.Post, error) {
		return c.session.Save(ctx, post)
	})
	if err != nil {
		return err
	}

	if err := c.store.MergeUpdated(saved); err != nil {
		appLogger.Warn().Err(err).Str("post_id", string(saved.ID)).Msg("Saved post is no longer in the collection")
	}
	c.finishMutation(post.ID, true)
	return nil
}

// Delete soft-deletes the selected post after confirmation.
func (c *Controller) Delete(ctx context.Context) error {
	post, ok := c.SelectedPost()
	if !ok {
		return editor.ErrNoSelection
	}
	includeDeleted := c.IncludeDeleted()

	deleted, err := c.mutate(func() (model.Post, error) {
		return c.session.Delete(ctx, post)
	})
	if err != nil {
		return err
	}

	if err := c.store.RemoveOrMerge(deleted, includeDeleted); err != nil {
		appLogger.Warn().Err(err).Str("post_id", string(deleted.ID)).Msg("Deleted post is no longer in the collection")
	}
	c.finishMutation(post.ID, true)
	return nil
}

// mutate runs fn and settles a failed mutation. A result discarded by a
// reset session, or a call rejected because another mutation owns the
// session, leaves the controller untouched.
func (c *Controller) mutate(fn func() (model.Post, error)) (model.Post, error) {
	c.notify()
	post, err := fn()
	switch {
	case err == nil:
		return post, nil
	case errors.Is(err, editor.ErrStale), errors.Is(err, editor.ErrMutationInFlight):
		return model.Post{}, err
	}

	id, _ := c.session.PostID()
	c.finishMutation(id, false)
	return model.Post{}, err
}

// finishMutation applies navigation observed while the mutation was in
// flight. A successful mutation clears the fragment if it still points at
// the mutated post.
func (c *Controller) finishMutation(id model.PostID, success bool) {
	if success {
		if cur, ok := c.router.CurrentSelection(); ok && cur == id {
			c.router.ClearSelection()
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.deferredNav {
		appLogger.Debug().Msg("Applying deferred navigation")
	}
	c.deferredNav = false
	c.selected, c.hasSelection = c.router.CurrentSelection()
	c.syncLocked()
	c.mu.Unlock()

	c.notify()
}

// SelectedPost returns the selected post when it is in the collection.
func (c *Controller) SelectedPost() (model.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedPostLocked()
}

// VisiblePosts filters the collection by the applied query.
func (c *Controller) VisiblePosts() []model.Post {
	c.mu.Lock()
	query := c.appliedQuery
	c.mu.Unlock()
	return c.store.ApplySearch(query)
}

func (c *Controller) CanSave() bool {
	post, ok := c.SelectedPost()
	return ok && c.session.CanSave(post)
}

// Session exposes the edit session for read-only queries.
func (c *Controller) Session() *editor.Session {
	return c.session
}
