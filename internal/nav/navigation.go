// Package nav provides the "current location fragment" capability the router
// reads and writes, with change notifications.
package nav

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Navigation is the port to the location fragment.
type Navigation interface {
	// Fragment returns the current fragment without a leading '#'.
	Fragment() string
	// SetFragment replaces the fragment and notifies subscribers when it changed.
	SetFragment(fragment string)
	// Subscribe registers fn for fragment changes. The returned func unsubscribes.
	Subscribe(fn func(fragment string)) (unsubscribe func())
}

var navLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	navLogger = l
}

func normalize(fragment string) string {
	return strings.TrimPrefix(strings.TrimSpace(fragment), "#")
}

type subscriber struct {
	fn func(string)
}

// subscribers fans fragment changes out to every registered callback.
type subscribers struct {
	mu    sync.RWMutex
	items map[*subscriber]bool
}

func newSubscribers() *subscribers {
	return &subscribers{
		items: make(map[*subscriber]bool),
	}
}

func (s *subscribers) add(fn func(string)) func() {
	sub := &subscriber{fn: fn}

	s.mu.Lock()
	s.items[sub] = true
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.items, sub)
		})
	}
}

// broadcast calls every subscriber outside the lock so callbacks may
// subscribe, unsubscribe or navigate again.
func (s *subscribers) broadcast(fragment string) {
	s.mu.RLock()
	fns := make([]func(string), 0, len(s.items))
	for sub := range s.items {
		fns = append(fns, sub.fn)
	}
	s.mu.RUnlock()

	navLogger.Debug().Str("fragment", fragment).Int("subscribers", len(fns)).Msg("Fragment changed")
	for _, fn := range fns {
		fn(fragment)
	}
}

func (s *subscribers) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
