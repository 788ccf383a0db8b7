package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)

	// This test mainly ensures the function doesn't panic
}

func TestApplyDefaults(t *testing.T) {
	t.Run("Config struct defaults", func(t *testing.T) {
		config := &Config{}
		applyDefaults(config)

		if config.Version != SupportedVersion {
			t.Errorf("Expected version %q, got %q", SupportedVersion, config.Version)
		}

		// Test API defaults
		if config.API.BaseURL != "http://localhost:3000" {
			t.Errorf("Expected base URL 'http://localhost:3000', got %q", config.API.BaseURL)
		}
		if config.API.Timeout != 30*time.Second {
			t.Errorf("Expected timeout 30s, got %v", config.API.Timeout)
		}
		if config.API.UserAgent != "notedesk" {
			t.Errorf("Expected user agent 'notedesk', got %q", config.API.UserAgent)
		}

		// Test Links defaults
		if config.Links.CipherKey != "//TODO:_ChangeTh!s_B4_Deploy" {
			t.Errorf("Unexpected cipher key %q", config.Links.CipherKey)
		}
		if config.Links.TokenTag != "my-note-app-post" {
			t.Errorf("Unexpected token tag %q", config.Links.TokenTag)
		}

		if config.Navigation.FragmentFile != "" {
			t.Errorf("Expected empty fragment file, got %q", config.Navigation.FragmentFile)
		}

		// Test Editor defaults
		if config.Editor.IncludeDeleted {
			t.Error("Expected deleted posts to be hidden by default")
		}
		if !config.Editor.ConfirmDeletes {
			t.Error("Expected delete confirmation to be enabled by default")
		}

		// Test Render defaults
		if config.Render.Style != "dark" {
			t.Errorf("Expected style 'dark', got %q", config.Render.Style)
		}
		if config.Render.WordWrap != 80 {
			t.Errorf("Expected word wrap 80, got %d", config.Render.WordWrap)
		}

		if config.Logging.Level != "info" {
			t.Errorf("Expected logging level 'info', got %q", config.Logging.Level)
		}
	})

	t.Run("Custom struct with various field types", func(t *testing.T) {
		type TestStruct struct {
			StringField   string        `default:"test-string"`
			BoolField     bool          `default:"true"`
			IntField      int           `default:"42"`
			Float64Field  float64       `default:"3.14"`
			SliceField    []string      `default:"a,b,c"`
			DurationField time.Duration `default:"1m30s"`
			NoDefault     string        // No default tag
		}

		test := &TestStruct{}
		applyDefaults(test)

		if test.StringField != "test-string" {
			t.Errorf("Expected string field 'test-string', got %q", test.StringField)
		}
		if !test.BoolField {
			t.Error("Expected bool field to be true")
		}
		if test.IntField != 42 {
			t.Errorf("Expected int field 42, got %d", test.IntField)
		}
		if test.Float64Field != 3.14 {
			t.Errorf("Expected float64 field 3.14, got %f", test.Float64Field)
		}
		expectedSlice := []string{"a", "b", "c"}
		if !reflect.DeepEqual(test.SliceField, expectedSlice) {
			t.Errorf("Expected slice %v, got %v", expectedSlice, test.SliceField)
		}
		if test.DurationField != 90*time.Second {
			t.Errorf("Expected duration 1m30s, got %v", test.DurationField)
		}
		if test.NoDefault != "" {
			t.Errorf("Expected no default field to be empty, got %q", test.NoDefault)
		}
	})

	t.Run("Invalid default values", func(t *testing.T) {
		type InvalidStruct struct {
			BadBool     bool          `default:"not-a-bool"`
			BadInt      int           `default:"not-an-int"`
			BadFloat    float64       `default:"not-a-float"`
			BadDuration time.Duration `default:"soon"`
		}

		test := &InvalidStruct{}
		applyDefaults(test) // Should not panic

		if test.BadBool || test.BadInt != 0 || test.BadFloat != 0.0 || test.BadDuration != 0 {
			t.Errorf("Expected invalid defaults to leave zero values, got %+v", test)
		}
	})

	t.Run("Nested struct defaults", func(t *testing.T) {
		type Inner struct {
			InnerField string `default:"inner-value"`
		}
		type Outer struct {
			OuterField  string `default:"outer-value"`
			InnerStruct Inner
		}

		test := &Outer{}
		applyDefaults(test)

		if test.OuterField != "outer-value" {
			t.Errorf("Expected outer field 'outer-value', got %q", test.OuterField)
		}
		if test.InnerStruct.InnerField != "inner-value" {
			t.Errorf("Expected inner field 'inner-value', got %q", test.InnerStruct.InnerField)
		}
	})

	t.Run("Non-struct input", func(t *testing.T) {
		// Should not panic with non-struct inputs
		stringVar := "test"
		applyDefaults(&stringVar)
		applyDefaults(stringVar)
		applyDefaults(42)
		applyDefaults(nil)
	})
}

func TestLoadConfig(t *testing.T) {
	SetLogger(zerolog.Nop())

	restore := func() {
		original := AppConfig
		t.Cleanup(func() { AppConfig = original })
	}

	t.Run("Missing file uses defaults", func(t *testing.T) {
		restore()
		if err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if AppConfig.API.BaseURL != "http://localhost:3000" {
			t.Errorf("Expected default base URL, got %q", AppConfig.API.BaseURL)
		}
	})

	t.Run("Unreadable path is an error", func(t *testing.T) {
		restore()
		dir := t.TempDir()
		if err := LoadConfig(dir); err == nil {
			t.Error("Expected an error when the config path is a directory")
		}
	})

	t.Run("YAML overrides merge with defaults", func(t *testing.T) {
		restore()
		if err := LoadConfig("testdata/custom.yaml"); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		c := AppConfig
		if c.API.BaseURL != "https://notes.example.com" || c.API.Timeout != 5*time.Second {
			t.Errorf("Unexpected API config %+v", c.API)
		}
		if c.Links.TokenTag != "custom-tag" || c.Links.CipherKey != "//TODO:_ChangeTh!s_B4_Deploy" {
			t.Errorf("Unexpected links config %+v", c.Links)
		}
		if c.Editor.ConfirmDeletes {
			t.Error("Expected confirm_deletes override to be false")
		}
		if c.Logging.Level != "debug" {
			t.Errorf("Expected level 'debug', got %q", c.Logging.Level)
		}
		if c.API.UserAgent != "notedesk" || c.Render.WordWrap != 80 {
			t.Error("Expected untouched fields to keep their defaults")
		}
	})

	t.Run("TOML is chosen by extension", func(t *testing.T) {
		restore()
		if err := LoadConfig("testdata/custom.toml"); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		c := AppConfig
		if c.API.BaseURL != "https://notes.example.com" || c.API.Timeout != 5*time.Second {
			t.Errorf("Unexpected API config %+v", c.API)
		}
		if c.Links.CipherKey != "another-key" || c.Links.TokenTag != "my-note-app-post" {
			t.Errorf("Unexpected links config %+v", c.Links)
		}
		if !c.Editor.IncludeDeleted || !c.Editor.ConfirmDeletes {
			t.Errorf("Unexpected editor config %+v", c.Editor)
		}
		if c.Render.Style != "light" || c.Render.WordWrap != 100 {
			t.Errorf("Unexpected render config %+v", c.Render)
		}
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		restore()
		t.Setenv(EnvAPIURL, "http://env.example.com")
		t.Setenv(EnvCipherKey, "env-key")
		t.Setenv(EnvIncludeDeleted, "true")
		t.Setenv(EnvLogLevel, "warn")

		if err := LoadConfig("testdata/custom.yaml"); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		c := AppConfig
		if c.API.BaseURL != "http://env.example.com" {
			t.Errorf("Expected env base URL, got %q", c.API.BaseURL)
		}
		if c.Links.CipherKey != "env-key" {
			t.Errorf("Expected env cipher key, got %q", c.Links.CipherKey)
		}
		if !c.Editor.IncludeDeleted {
			t.Error("Expected env include_deleted")
		}
		if c.Logging.Level != "warn" {
			t.Errorf("Expected env level, got %q", c.Logging.Level)
		}
	})

	t.Run("Invalid boolean in environment", func(t *testing.T) {
		restore()
		t.Setenv(EnvIncludeDeleted, "maybe")

		err := LoadConfig("testdata/defaults.yaml")
		if err == nil || !strings.Contains(err.Error(), EnvIncludeDeleted) {
			t.Errorf("Expected error naming %s, got %v", EnvIncludeDeleted, err)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	SetLogger(zerolog.Nop())

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(EnvTokenTag+"=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	t.Setenv(EnvTokenTag, "")
	os.Unsetenv(EnvTokenTag)

	LoadDotEnv(path)
	if got := os.Getenv(EnvTokenTag); got != "from-dotenv" {
		t.Errorf("Expected 'from-dotenv', got %q", got)
	}

	// A missing file is ignored.
	LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}

func TestFragmentPath(t *testing.T) {
	t.Run("Configured path", func(t *testing.T) {
		c := &Config{Navigation: NavigationConfig{FragmentFile: "/tmp/notedesk/fragment"}}
		path, err := c.FragmentPath()
		if err != nil || path != "/tmp/notedesk/fragment" {
			t.Errorf("Expected configured path, got (%q, %v)", path, err)
		}
	})

	t.Run("Cache directory fallback", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", t.TempDir())
		t.Setenv("HOME", t.TempDir())

		c := &Config{}
		path, err := c.FragmentPath()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if filepath.Base(path) != DefaultFragmentFileName || filepath.Base(filepath.Dir(path)) != "notedesk" {
			t.Errorf("Unexpected fallback path %q", path)
		}
	})
}
