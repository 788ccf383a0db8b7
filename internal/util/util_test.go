package util

import "testing"

func TestContentHash(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected string
	}{
		{"Empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"ASCII", "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContentHashString(tc.content); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
			if got := ContentHash([]byte(tc.content)); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}
