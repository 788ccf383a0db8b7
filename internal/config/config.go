package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

const SupportedVersion = "1"

// Config represents the complete configuration structure
type Config struct {
	Version    string           `yaml:"version" toml:"version" default:"1"`
	API        APIConfig        `yaml:"api" toml:"api"`
	Links      LinksConfig      `yaml:"links" toml:"links"`
	Navigation NavigationConfig `yaml:"navigation" toml:"navigation"`
	Editor     EditorConfig     `yaml:"editor" toml:"editor"`
	Render     RenderConfig     `yaml:"render" toml:"render"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
}

type APIConfig struct {
	BaseURL   string        `yaml:"base_url" toml:"base_url" default:"http://localhost:3000"`
	Timeout   time.Duration `yaml:"timeout" toml:"timeout" default:"30s"`
	UserAgent string        `yaml:"user_agent" toml:"user_agent" default:"notedesk"`
}

// LinksConfig holds the parameters of the share-link obfuscation. Changing
// either invalidates every link handed out before.
type LinksConfig struct {
	CipherKey string `yaml:"cipher_key" toml:"cipher_key" default:"//TODO:_ChangeTh!s_B4_Deploy"`
	TokenTag  string `yaml:"token_tag" toml:"token_tag" default:"my-note-app-post"`
}

type NavigationConfig struct {
	// FragmentFile holds the current selection. Empty means the user cache directory.
	FragmentFile string `yaml:"fragment_file" toml:"fragment_file" default:""`
}

type EditorConfig struct {
	IncludeDeleted bool `yaml:"include_deleted" toml:"include_deleted" default:"false"`
	ConfirmDeletes bool `yaml:"confirm_deletes" toml:"confirm_deletes" default:"true"`
}

type RenderConfig struct {
	Style    string `yaml:"style" toml:"style" default:"dark"`
	WordWrap int    `yaml:"word_wrap" toml:"word_wrap" default:"80"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level" default:"info"`
}

var AppConfig *Config

// LoadConfig reads a YAML or TOML file, chosen by extension, over the
// defaults and then applies NOTEDESK_* environment overrides. A missing file
// is not an error.
func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	if err := decodeFile(path, config); err != nil {
		return err
	}

	if err := applyEnv(config); err != nil {
		return err
	}

	if config.Version != SupportedVersion {
		return fmt.Errorf("unsupported configuration version %q (expected %q)", config.Version, SupportedVersion)
	}

	AppConfig = config
	return nil
}

func decodeFile(path string, config *Config) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), config); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	configLogger.Debug().Str("path", path).Msg("Loaded config file")
	return nil
}

// LoadDotEnv loads variables from a .env file into the environment without
// overriding variables that are already set.
func LoadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		configLogger.Debug().Err(err).Str("path", path).Msg("No .env file loaded")
	}
}

const (
	EnvAPIURL         = "NOTEDESK_API_URL"
	EnvCipherKey      = "NOTEDESK_CIPHER_KEY"
	EnvTokenTag       = "NOTEDESK_TOKEN_TAG"
	EnvFragmentFile   = "NOTEDESK_FRAGMENT_FILE"
	EnvIncludeDeleted = "NOTEDESK_INCLUDE_DELETED"
	EnvLogLevel       = "NOTEDESK_LOG_LEVEL"
)

func applyEnv(config *Config) error {
	strs := map[string]*string{
		EnvAPIURL:       &config.API.BaseURL,
		EnvCipherKey:    &config.Links.CipherKey,
		EnvTokenTag:     &config.Links.TokenTag,
		EnvFragmentFile: &config.Navigation.FragmentFile,
		EnvLogLevel:     &config.Logging.Level,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(EnvIncludeDeleted); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvIncludeDeleted, err)
		}
		config.Editor.IncludeDeleted = b
	}
	return nil
}

// FragmentPath resolves the fragment file, falling back to the user cache
// directory.
func (c *Config) FragmentPath() (string, error) {
	if c.Navigation.FragmentFile != "" {
		return c.Navigation.FragmentFile, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(dir, "notedesk", DefaultFragmentFileName), nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		if field.Type() == durationType {
			if val, err := time.ParseDuration(defaultValue); err == nil {
				field.SetInt(int64(val))
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
