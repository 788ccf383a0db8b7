// Package editor implements the edit session for a single selected post:
// its draft, validation, and the save and delete lifecycle.
package editor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/notedesk/internal/api"
	"github.com/debemdeboas/notedesk/internal/config"
	"github.com/debemdeboas/notedesk/internal/model"
)

var (
	ErrNoSelection      = errors.New("no post is being edited")
	ErrNoChanges        = errors.New("draft has no changes")
	ErrInvalidDraft     = errors.New(config.ErrTitleBodyRequired)
	ErrCancelled        = errors.New("delete cancelled")
	ErrAlreadyDeleted   = errors.New("post is already deleted")
	ErrMutationInFlight = errors.New("a save or delete is already in progress")
	ErrStale            = errors.New("session was reset while the request was in flight")
)

var editorLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	editorLogger = l
}

type Updater interface {
	UpdatePost(ctx context.Context, id model.PostID, patch model.PostPatch) (model.Post, error)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

type State int

const (
	Closed State = iota
	Editing
	Saving
	Deleting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	case Deleting:
		return "deleting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Session struct {
	updater Updater
	confirm Confirmer

	mu     sync.Mutex
	state  State
	postID model.PostID
	draft  model.Draft
	errMsg string
	epoch  uint64
}

func NewSession(u Updater, c Confirmer) *Session {
	return &Session{
		updater: u,
		confirm: c,
	}
}

// Begin starts editing post, discarding any previous draft and error.
func (s *Session) Begin(post model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight() {
		return ErrMutationInFlight
	}

	s.state = Editing
	s.postID = post.ID
	s.draft = model.DraftFrom(post)
	s.errMsg = ""
	s.epoch++
	return nil
}

func (s *Session) SetTitle(title string) error {
	return s.edit(func(d *model.Draft) { d.Title = title })
}

func (s *Session) SetBody(body string) error {
	return s.edit(func(d *model.Draft) { d.Body = body })
}

func (s *Session) edit(fn func(d *model.Draft)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == Closed:
		return ErrNoSelection
	case s.inFlight():
		return ErrMutationInFlight
	}
	fn(&s.draft)
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PostID returns the identifier of the post being edited.
func (s *Session) PostID() (model.PostID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postID, s.state != Closed
}

func (s *Session) Draft() model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Error returns the inline error message, or "" when there is none.
func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight()
}

func (s *Session) inFlight() bool {
	return s.state == Saving || s.state == Deleting
}

// CanSave reports whether the draft differs from source and nothing is in flight.
func (s *Session) CanSave(source model.Post) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Editing && s.postID == source.ID && !s.draft.Matches(source)
}

// Save sends the draft for source. Validation failures and server errors
// leave the session open with an inline error; success closes it and returns
// the server's copy of the post.
func (s *Session) Save(ctx context.Context, source model.Post) (model.Post, error) {
	s.mu.Lock()
	if err := s.checkMutable(source); err != nil {
		s.mu.Unlock()
		return model.Post{}, err
	}
	if s.draft.Matches(source) {
		s.mu.Unlock()
		return model.Post{}, ErrNoChanges
	}
	if !s.draft.Valid() {
		s.errMsg = config.ErrTitleBodyRequired
		s.mu.Unlock()
		return model.Post{}, ErrInvalidDraft
	}

	s.state = Saving
	s.errMsg = ""
	epoch := s.epoch
	patch := model.ContentPatch(s.draft)
	s.mu.Unlock()

	editorLogger.Debug().Str("post_id", string(source.ID)).Msg("Saving post")
	post, err := s.updater.UpdatePost(ctx, source.ID, patch)

	return s.settle(epoch, post, err, saveMessage)
}

// Delete soft-deletes source after the Confirmer agrees. Declining is a no-op.
func (s *Session) Delete(ctx context.Context, source model.Post) (model.Post, error) {
	s.mu.Lock()
	if err := s.checkMutable(source); err != nil {
		s.mu.Unlock()
		return model.Post{}, err
	}
	if source.Deleted {
		s.mu.Unlock()
		return model.Post{}, ErrAlreadyDeleted
	}
	epoch := s.epoch
	s.mu.Unlock()

	if s.confirm == nil || !s.confirm.Confirm(config.MsgConfirmDelete) {
		return model.Post{}, ErrCancelled
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return model.Post{}, ErrStale
	}
	if s.inFlight() {
		s.mu.Unlock()
		return model.Post{}, ErrMutationInFlight
	}
	s.state = Deleting
	s.errMsg = ""
	s.mu.Unlock()

	editorLogger.Debug().Str("post_id", string(source.ID)).Msg("Deleting post")
	post, err := s.updater.UpdatePost(ctx, source.ID, model.DeletePatch())

	return s.settle(epoch, post, err, deleteMessage)
}

// checkMutable requires an idle session editing source. Callers hold s.mu.
func (s *Session) checkMutable(source model.Post) error {
	if s.state == Closed || s.postID != source.ID {
		return ErrNoSelection
	}
	if s.inFlight() {
		return ErrMutationInFlight
	}
	return nil
}

func (s *Session) settle(epoch uint64, post model.Post, err error, message func(error) string) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		editorLogger.Debug().Msg("Discarding result for a reset session")
		return model.Post{}, ErrStale
	}

	if err != nil {
		s.state = Editing
		s.errMsg = message(err)
		editorLogger.Error().Err(err).Str("post_id", string(s.postID)).Msg("Mutation failed")
		return model.Post{}, fmt.Errorf("failed to update post: %w", err)
	}

	s.reset()
	return post, nil
}

// Close discards the draft and error. It is rejected while a mutation is in flight.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight() {
		return ErrMutationInFlight
	}
	s.reset()
	return nil
}

// Abandon closes the session even while a mutation is in flight; the
// mutation's result is then discarded.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.state = Closed
	s.postID = ""
	s.draft = model.Draft{}
	s.errMsg = ""
	s.epoch++
}

func saveMessage(err error) string {
	var validationErr *api.ValidationError
	var statusErr *api.StatusError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &statusErr):
		return fmt.Sprintf(config.ErrUpdatePostFmt, statusErr.StatusCode)
	case err.Error() != "":
		return err.Error()
	default:
		return config.ErrUnknownSaving
	}
}

func deleteMessage(err error) string {
	var validationErr *api.ValidationError
	var statusErr *api.StatusError
	switch {
	case errors.As(err, &validationErr):
		return fmt.Sprintf(config.ErrDeletePostFmt, http.StatusUnprocessableEntity)
	case errors.As(err, &statusErr):
		return fmt.Sprintf(config.ErrDeletePostFmt, statusErr.StatusCode)
	case err.Error() != "":
		return err.Error()
	default:
		return config.ErrUnknownDeleting
	}
}
