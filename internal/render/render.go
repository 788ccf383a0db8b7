// Package render renders post bodies as styled terminal markdown.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/notedesk/internal/cache"
	"github.com/debemdeboas/notedesk/internal/model"
	"github.com/debemdeboas/notedesk/internal/util"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

const (
	minWordWrap = 20
	maxWordWrap = 200
)

type Renderer struct {
	style string
	width int

	// glamour renderers are not safe for concurrent use
	mu   sync.Mutex
	term *glamour.TermRenderer
}

// New creates a renderer for one of glamour's standard styles ("dark",
// "light", "notty", "ascii", ...). The word wrap is clamped to a readable range.
func New(style string, wordWrap int) (*Renderer, error) {
	width := min(max(wordWrap, minWordWrap), maxWordWrap)

	term, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer with style %q: %w", style, err)
	}

	return &Renderer{
		style: style,
		width: width,
		term:  term,
	}, nil
}

func (r *Renderer) Width() int {
	return r.width
}

// Render renders markdown without consulting the cache.
func (r *Renderer) Render(markdown string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out, err := r.term.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// RenderCached renders markdown, reusing an earlier result for the same
// content, style and width.
func (r *Renderer) RenderCached(markdown string) (string, error) {
	contentHash := util.ContentHashString(markdown)

	if cached, found := cache.GetRenderedBody(contentHash, r.style, r.width); found {
		renderLogger.Debug().Str("contentHash", contentHash).Str("style", r.style).Msg("Cache hit for rendered body")
		return cached.Text, nil
	}

	renderLogger.Debug().Str("contentHash", contentHash).Str("style", r.style).Msg("Cache miss for rendered body")
	out, err := r.Render(markdown)
	if err != nil {
		return "", err
	}

	cache.SetRenderedBody(contentHash, r.style, r.width, out)
	return out, nil
}

// RenderPost renders the post's title as a heading above its body.
func (r *Renderer) RenderPost(p model.Post) (string, error) {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(p.DisplayTitle())
	b.WriteString("\n\n")
	b.WriteString(p.Body)
	return r.RenderCached(b.String())
}
