// Package model defines the post and draft types shared by the client packages.
package model

import (
	"strings"

	"github.com/debemdeboas/notedesk/internal/config"
)

type PostID string

// Post is the client's cached copy of a server-owned post.
type Post struct {
	ID      PostID `json:"id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Deleted bool   `json:"deleted"`
}

// Snippet returns the first line of the body.
func (p Post) Snippet() string {
	line, _, _ := strings.Cut(p.Body, "\n")
	return line
}

func (p Post) DisplayTitle() string {
	if p.Title == "" {
		return config.MsgUntitledPost
	}
	return p.Title
}

func (p Post) DisplaySnippet() string {
	if s := p.Snippet(); s != "" {
		return s
	}
	return config.MsgNoContent
}

// Draft is the working copy of a post's editable fields.
type Draft struct {
	Title string
	Body  string
}

func DraftFrom(p Post) Draft {
	return Draft{Title: p.Title, Body: p.Body}
}

// Matches reports whether the draft equals the post's current title and body.
func (d Draft) Matches(p Post) bool {
	return d.Title == p.Title && d.Body == p.Body
}

// Valid reports whether both fields are non-empty after trimming whitespace.
func (d Draft) Valid() bool {
	return strings.TrimSpace(d.Title) != "" && strings.TrimSpace(d.Body) != ""
}

// PostPatch is the body of a partial update. Unset fields are omitted.
type PostPatch struct {
	Title   *string `json:"title,omitempty"`
	Body    *string `json:"body,omitempty"`
	Deleted *bool   `json:"deleted,omitempty"`
}

func ContentPatch(d Draft) PostPatch {
	title, body := d.Title, d.Body
	return PostPatch{Title: &title, Body: &body}
}

func DeletePatch() PostPatch {
	deleted := true
	return PostPatch{Deleted: &deleted}
}
