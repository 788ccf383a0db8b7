package nav

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestMemoryFragment(t *testing.T) {
	t.Run("Initial fragment is normalized", func(t *testing.T) {
		m := NewMemory("#abc")
		if m.Fragment() != "abc" {
			t.Errorf("Expected 'abc', got %q", m.Fragment())
		}
	})

	t.Run("SetFragment notifies on change only", func(t *testing.T) {
		m := NewMemory("")
		var got []string
		m.Subscribe(func(f string) { got = append(got, f) })

		m.SetFragment("one")
		m.SetFragment("#one")
		m.SetFragment("two")
		m.SetFragment("")

		expected := []string{"one", "two", ""}
		if len(got) != len(expected) {
			t.Fatalf("Expected %d notifications, got %d (%v)", len(expected), len(got), got)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("Notification %d: expected %q, got %q", i, expected[i], got[i])
			}
		}
	})

	t.Run("Unsubscribe stops notifications and is idempotent", func(t *testing.T) {
		m := NewMemory("")
		calls := 0
		unsubscribe := m.Subscribe(func(string) { calls++ })

		m.SetFragment("x")
		unsubscribe()
		unsubscribe()
		m.SetFragment("y")

		if calls != 1 {
			t.Errorf("Expected 1 call, got %d", calls)
		}
		if m.Subscribers() != 0 {
			t.Errorf("Expected 0 subscribers, got %d", m.Subscribers())
		}
	})

	t.Run("Subscriber may navigate from inside a callback", func(t *testing.T) {
		m := NewMemory("")
		m.Subscribe(func(f string) {
			if f == "redirect" {
				m.SetFragment("target")
			}
		})

		m.SetFragment("redirect")
		if m.Fragment() != "target" {
			t.Errorf("Expected 'target', got %q", m.Fragment())
		}
	})
}

func TestMemoryHistory(t *testing.T) {
	m := NewMemory("")
	var got []string
	m.Subscribe(func(f string) { got = append(got, f) })

	m.SetFragment("a")
	m.SetFragment("b")

	if !m.Back() {
		t.Fatal("Expected Back to succeed")
	}
	if m.Fragment() != "a" {
		t.Errorf("Expected 'a' after Back, got %q", m.Fragment())
	}

	if !m.Forward() {
		t.Fatal("Expected Forward to succeed")
	}
	if m.Fragment() != "b" {
		t.Errorf("Expected 'b' after Forward, got %q", m.Fragment())
	}

	if m.Forward() {
		t.Error("Expected Forward at newest entry to fail")
	}

	m.Back()
	m.Back()
	if m.Back() {
		t.Error("Expected Back at oldest entry to fail")
	}

	// Navigating after going back drops forward entries.
	m.SetFragment("c")
	if m.Forward() {
		t.Error("Expected forward history to be discarded")
	}

	expected := []string{"a", "b", "a", "b", "a", "", "c"}
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Notification %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
}

func TestFileNavigation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state", "fragment")

	t.Run("Missing file means empty fragment", func(t *testing.T) {
		f, err := NewFile(path)
		if err != nil {
			t.Fatalf("Failed to create file navigation: %v", err)
		}
		defer f.Close()

		if f.Fragment() != "" {
			t.Errorf("Expected empty fragment, got %q", f.Fragment())
		}
	})

	t.Run("SetFragment persists and notifies", func(t *testing.T) {
		f, err := NewFile(path)
		if err != nil {
			t.Fatalf("Failed to create file navigation: %v", err)
		}
		defer f.Close()

		var mu sync.Mutex
		var got []string
		f.Subscribe(func(s string) {
			mu.Lock()
			got = append(got, s)
			mu.Unlock()
		})

		f.SetFragment("#token")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read fragment file: %v", err)
		}
		if string(data) != "token\n" {
			t.Errorf("Expected file content 'token\\n', got %q", data)
		}

		// Give the watcher time to observe our own write; it must not re-notify.
		time.Sleep(200 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		if len(got) != 1 || got[0] != "token" {
			t.Errorf("Expected a single 'token' notification, got %v", got)
		}
	})

	t.Run("Reopening reads the persisted fragment", func(t *testing.T) {
		f, err := NewFile(path)
		if err != nil {
			t.Fatalf("Failed to create file navigation: %v", err)
		}
		defer f.Close()

		if f.Fragment() != "token" {
			t.Errorf("Expected 'token', got %q", f.Fragment())
		}
	})

	t.Run("External writes notify subscribers", func(t *testing.T) {
		f, err := NewFile(path)
		if err != nil {
			t.Fatalf("Failed to create file navigation: %v", err)
		}
		defer f.Close()

		changes := make(chan string, 16)
		f.Subscribe(func(s string) { changes <- s })

		if err := os.WriteFile(path, []byte("pasted-link\n"), 0644); err != nil {
			t.Fatalf("Failed to write fragment file: %v", err)
		}

		// A truncating write may be observed half-way, so wait for the final value.
		deadline := time.After(5 * time.Second)
		for seen := false; !seen; {
			select {
			case got := <-changes:
				seen = got == "pasted-link"
			case <-deadline:
				t.Fatal("Timed out waiting for external change notification")
			}
		}

		if f.Fragment() != "pasted-link" {
			t.Errorf("Expected 'pasted-link', got %q", f.Fragment())
		}
	})
}
