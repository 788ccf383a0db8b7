// Package router maps the location fragment to the selected post and back.
package router

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/notedesk/internal/codec"
	"github.com/debemdeboas/notedesk/internal/model"
	"github.com/debemdeboas/notedesk/internal/nav"
)

var ErrMutationInFlight = errors.New("selection is locked while a save or delete is in progress")

var routerLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	routerLogger = l
}

// Router derives the selection from a Navigation fragment.
type Router struct {
	nav   nav.Navigation
	codec *codec.Codec

	mu          sync.Mutex
	busy        func() bool
	unsubscribe func()
}

func New(n nav.Navigation, c *codec.Codec) *Router {
	return &Router{
		nav:   n,
		codec: c,
	}
}

// SetGuard installs the check Select consults before navigating.
func (r *Router) SetGuard(busy func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.busy = busy
}

// CurrentSelection decodes the present fragment. An undecodable fragment or
// an empty identifier is no selection.
func (r *Router) CurrentSelection() (model.PostID, bool) {
	return r.decode(r.nav.Fragment())
}

// Select writes the token for id as the new fragment.
func (r *Router) Select(id model.PostID) error {
	r.mu.Lock()
	busy := r.busy
	r.mu.Unlock()

	if busy != nil && busy() {
		routerLogger.Debug().Str("post_id", string(id)).Msg("Selection rejected while mutation in flight")
		return ErrMutationInFlight
	}

	r.nav.SetFragment(r.codec.Encode(id))
	return nil
}

func (r *Router) ClearSelection() {
	r.nav.SetFragment("")
}

// Link returns the shareable token for id.
func (r *Router) Link(id model.PostID) string {
	return r.codec.Encode(id)
}

// Resolve decodes a token the same way the fragment is decoded.
func (r *Router) Resolve(token string) (model.PostID, bool) {
	return r.decode(token)
}

// Start subscribes to fragment changes. onChange receives the re-derived
// selection for every change, including ones made through Select.
func (r *Router) Start(onChange func(id model.PostID, ok bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.unsubscribe != nil {
		r.unsubscribe()
	}
	r.unsubscribe = r.nav.Subscribe(func(fragment string) {
		id, ok := r.decode(fragment)
		routerLogger.Debug().Str("post_id", string(id)).Bool("selected", ok).Msg("Selection changed")
		onChange(id, ok)
	})
}

// Stop unsubscribes from fragment changes.
func (r *Router) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}

func (r *Router) decode(fragment string) (model.PostID, bool) {
	id, ok := r.codec.Decode(fragment)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
