package model

import (
	"encoding/json"
	"testing"
)

func TestPostID(t *testing.T) {
	t.Run("PostID type operations", func(t *testing.T) {
		var pid PostID = "test-post-456"

		if string(pid) != "test-post-456" {
			t.Errorf("Expected string conversion 'test-post-456', got %s", string(pid))
		}

		var pid2 PostID = "test-post-456"
		var pid3 PostID = "different-post"

		if pid != pid2 {
			t.Error("Expected equal PostIDs to be equal")
		}
		if pid == pid3 {
			t.Error("Expected different PostIDs to be different")
		}
	})
}

func TestPostSnippet(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{"Single line", "Hello world", "Hello world"},
		{"Multiple lines", "First line\nSecond line\nThird", "First line"},
		{"Leading newline", "\nSecond", ""},
		{"Empty body", "", ""},
		{"Carriage return kept", "First\r\nSecond", "First\r"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			post := Post{Body: tc.body}
			if got := post.Snippet(); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestPostDisplayFallbacks(t *testing.T) {
	t.Run("Empty post uses placeholders", func(t *testing.T) {
		post := Post{}
		if post.DisplayTitle() != "Untitled Post" {
			t.Errorf("Expected 'Untitled Post', got %q", post.DisplayTitle())
		}
		if post.DisplaySnippet() != "No content" {
			t.Errorf("Expected 'No content', got %q", post.DisplaySnippet())
		}
	})

	t.Run("Populated post uses its own values", func(t *testing.T) {
		post := Post{Title: "Foo", Body: "bar\nbaz"}
		if post.DisplayTitle() != "Foo" {
			t.Errorf("Expected 'Foo', got %q", post.DisplayTitle())
		}
		if post.DisplaySnippet() != "bar" {
			t.Errorf("Expected 'bar', got %q", post.DisplaySnippet())
		}
	})
}

func TestDraft(t *testing.T) {
	post := Post{ID: "a", Title: "Foo", Body: "Body"}

	t.Run("DraftFrom matches its source", func(t *testing.T) {
		d := DraftFrom(post)
		if !d.Matches(post) {
			t.Error("Expected fresh draft to match source")
		}
	})

	t.Run("Changed draft no longer matches", func(t *testing.T) {
		d := DraftFrom(post)
		d.Body = "Body!"
		if d.Matches(post) {
			t.Error("Expected edited draft to differ from source")
		}
	})

	t.Run("Validation trims whitespace", func(t *testing.T) {
		cases := map[Draft]bool{
			{Title: "T", Body: "B"}:     true,
			{Title: "  ", Body: "B"}:    false,
			{Title: "T", Body: "\n\t "}: false,
			{}:                          false,
		}
		for d, want := range cases {
			if got := d.Valid(); got != want {
				t.Errorf("Valid(%+v) = %v, want %v", d, got, want)
			}
		}
	})
}

func TestPostPatchJSON(t *testing.T) {
	t.Run("Content patch carries title and body only", func(t *testing.T) {
		data, err := json.Marshal(ContentPatch(Draft{Title: "T", Body: ""}))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if string(data) != `{"title":"T","body":""}` {
			t.Errorf("Unexpected JSON: %s", data)
		}
	})

	t.Run("Delete patch carries deleted only", func(t *testing.T) {
		data, err := json.Marshal(DeletePatch())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if string(data) != `{"deleted":true}` {
			t.Errorf("Unexpected JSON: %s", data)
		}
	})
}

func TestPostJSON(t *testing.T) {
	var post Post
	err := json.Unmarshal([]byte(`{"id":"x1","title":"Hi","body":"a\nb","deleted":true}`), &post)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := Post{ID: "x1", Title: "Hi", Body: "a\nb", Deleted: true}
	if post != expected {
		t.Errorf("Expected %+v, got %+v", expected, post)
	}
}
