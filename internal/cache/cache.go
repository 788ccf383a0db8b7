// Package cache provides a thread-safe generic cache and the cache of
// rendered post bodies.
package cache

import (
	"strconv"
	"sync"
)

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

// SetTo replaces the whole content with items. The cache takes ownership of the map.
func (c *Cache[K, V]) SetTo(items map[K]V) {
	if items == nil {
		items = make(map[K]V)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// RenderedBody is a post body rendered for the terminal.
type RenderedBody struct {
	Text string
}

var renderedBodyCache = NewCache[string, *RenderedBody]()

func renderedKey(contentHash, style string, width int) string {
	return contentHash + ":" + style + ":" + strconv.Itoa(width)
}

func GetRenderedBody(contentHash, style string, width int) (*RenderedBody, bool) {
	return renderedBodyCache.Get(renderedKey(contentHash, style, width))
}

func SetRenderedBody(contentHash, style string, width int, text string) {
	renderedBodyCache.Set(renderedKey(contentHash, style, width), &RenderedBody{Text: text})
}

func ClearRenderedBodyCache() {
	renderedBodyCache.Clear()
}
