package app

import (
	"fmt"

	"github.com/debemdeboas/notedesk/internal/config"
	"github.com/debemdeboas/notedesk/internal/model"
)

// View is everything a front end needs to draw one frame.
type View struct {
	// Status is a full-page message that replaces the list and editor when set.
	Status string
	Failed bool

	IncludeDeleted bool
	PendingQuery   string
	AppliedQuery   string

	Items        []ListItem
	EmptyMessage string

	Editor EditorPane
}

type ListItem struct {
	ID       model.PostID
	Token    string
	Title    string
	Snippet  string
	Selected bool
	Deleted  bool
}

type EditorPane struct {
	Open        bool
	Placeholder string

	PostID        model.PostID
	Title         string
	Body          string
	InputsEnabled bool

	SaveLabel     string
	SaveEnabled   bool
	CloseEnabled  bool
	DeleteLabel   string
	DeleteEnabled bool

	Error string
}

// snapshot is the state View is computed from.
type snapshot struct {
	loading        bool
	loadErr        error
	posts          []model.Post
	visible        []model.Post
	includeDeleted bool
	pendingQuery   string
	appliedQuery   string
	selected       model.PostID
	hasSelection   bool
	selectedPost   model.Post
	found          bool
	draft          model.Draft
	editing        bool
	inFlight       bool
	canSave        bool
	editError      string
	link           func(model.PostID) string
}

func (c *Controller) View() View {
	c.mu.Lock()
	s := snapshot{
		loading:        c.store.Loading(),
		loadErr:        c.store.Err(),
		posts:          c.store.Posts(),
		visible:        c.store.ApplySearch(c.appliedQuery),
		includeDeleted: c.includeDeleted,
		pendingQuery:   c.pendingQuery,
		appliedQuery:   c.appliedQuery,
		selected:       c.selected,
		hasSelection:   c.hasSelection,
		link:           c.router.Link,
	}
	s.selectedPost, s.found = c.selectedPostLocked()
	c.mu.Unlock()

	id, open := c.session.PostID()
	s.editing = open && s.found && id == s.selectedPost.ID
	s.draft = c.session.Draft()
	s.inFlight = c.session.InFlight()
	s.canSave = s.found && c.session.CanSave(s.selectedPost)
	s.editError = c.session.Error()

	return buildView(s)
}

func buildView(s snapshot) View {
	v := View{
		IncludeDeleted: s.includeDeleted,
		PendingQuery:   s.pendingQuery,
		AppliedQuery:   s.appliedQuery,
	}

	if s.loading && len(s.posts) == 0 {
		v.Status = config.MsgLoadingPosts
		return v
	}
	if s.loadErr != nil {
		v.Status = fmt.Sprintf(config.MsgErrorFmt, ErrorMessage(s.loadErr, config.ErrUnknown))
		v.Failed = true
		return v
	}

	v.Items = make([]ListItem, 0, len(s.visible))
	for _, p := range s.visible {
		v.Items = append(v.Items, ListItem{
			ID:       p.ID,
			Token:    s.link(p.ID),
			Title:    p.DisplayTitle(),
			Snippet:  p.DisplaySnippet(),
			Selected: s.hasSelection && p.ID == s.selected,
			Deleted:  p.Deleted,
		})
	}
	if len(v.Items) == 0 {
		if s.appliedQuery != "" {
			v.EmptyMessage = config.MsgNoPostsMatch
		} else {
			v.EmptyMessage = config.MsgNoPostsFound
		}
	}

	v.Editor = buildEditor(s)
	return v
}

func buildEditor(s snapshot) EditorPane {
	if !s.found {
		return EditorPane{Placeholder: config.MsgSelectPost}
	}

	e := EditorPane{
		Open:          true,
		PostID:        s.selectedPost.ID,
		Title:         s.selectedPost.Title,
		Body:          s.selectedPost.Body,
		InputsEnabled: !s.inFlight,
		SaveLabel:     config.LabelSave,
		SaveEnabled:   s.canSave,
		CloseEnabled:  !s.inFlight,
		DeleteLabel:   config.LabelDelete,
		DeleteEnabled: !s.inFlight && !s.selectedPost.Deleted,
	}
	if s.editing {
		e.Title = s.draft.Title
		e.Body = s.draft.Body
		if s.editError != "" {
			e.Error = fmt.Sprintf(config.MsgErrorFmt, s.editError)
		}
	}
	if s.inFlight {
		e.SaveLabel = config.LabelSaving
	}
	if s.selectedPost.Deleted {
		e.DeleteLabel = config.LabelDeleted
	}
	return e
}

// ErrorMessage returns err's text, or fallback when it has none.
func ErrorMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
