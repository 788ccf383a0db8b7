package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/notedesk/internal/api"
	"github.com/debemdeboas/notedesk/internal/app"
	"github.com/debemdeboas/notedesk/internal/codec"
	"github.com/debemdeboas/notedesk/internal/config"
	"github.com/debemdeboas/notedesk/internal/editor"
	"github.com/debemdeboas/notedesk/internal/logger"
	"github.com/debemdeboas/notedesk/internal/nav"
	"github.com/debemdeboas/notedesk/internal/render"
	"github.com/debemdeboas/notedesk/internal/router"
	"github.com/debemdeboas/notedesk/internal/store"
)

// globalOptions are the persistent flags. Set flags win over the
// environment, which wins over the config file.
type globalOptions struct {
	configPath   string
	envPath      string
	logLevel     string
	fragmentFile string
	apiURL       string
}

func loadSettings(opts *globalOptions, logOut io.Writer) (*config.Config, zerolog.Logger, error) {
	config.LoadDotEnv(opts.envPath)

	if err := config.LoadConfig(opts.configPath); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	cfg := config.AppConfig

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.fragmentFile != "" {
		cfg.Navigation.FragmentFile = opts.fragmentFile
	}
	if opts.apiURL != "" {
		cfg.API.BaseURL = opts.apiURL
	}

	l := logger.NewWithWriter(cfg.Logging.Level, logOut)
	setLoggers(l)
	return cfg, l, nil
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l.With().Str("component", "config").Logger())
	nav.SetLogger(l.With().Str("component", "nav").Logger())
	router.SetLogger(l.With().Str("component", "router").Logger())
	api.SetLogger(l.With().Str("component", "api").Logger())
	store.SetLogger(l.With().Str("component", "store").Logger())
	editor.SetLogger(l.With().Str("component", "editor").Logger())
	app.SetLogger(l.With().Str("component", "app").Logger())
	render.SetLogger(l.With().Str("component", "render").Logger())
}

func newCodec(cfg *config.Config) (*codec.Codec, error) {
	c, err := codec.New(cfg.Links.CipherKey, cfg.Links.TokenTag)
	if err != nil {
		return nil, fmt.Errorf("invalid links config: %w", err)
	}
	return c, nil
}

// deps is everything a command that talks to the API needs.
type deps struct {
	cfg    *config.Config
	log    zerolog.Logger
	codec  *codec.Codec
	nav    *nav.File
	router *router.Router
	client *api.Client
	app    *app.Controller
}

func newDeps(cfg *config.Config, l zerolog.Logger, confirm editor.Confirmer, opts ...app.Option) (*deps, error) {
	c, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}

	fragmentPath, err := cfg.FragmentPath()
	if err != nil {
		return nil, err
	}
	n, err := nav.NewFile(fragmentPath)
	if err != nil {
		return nil, fmt.Errorf("open fragment file: %w", err)
	}

	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithUserAgent(cfg.API.UserAgent+"/"+Version),
	)
	if err != nil {
		_ = n.Close()
		return nil, err
	}

	r := router.New(n, c)
	opts = append([]app.Option{app.WithIncludeDeleted(cfg.Editor.IncludeDeleted)}, opts...)
	controller := app.New(r, store.New(client), editor.NewSession(client, confirm), opts...)

	l.Debug().Str("api", cfg.API.BaseURL).Str("fragment_file", n.Path()).Msg("Initialized")

	return &deps{
		cfg:    cfg,
		log:    l,
		codec:  c,
		nav:    n,
		router: r,
		client: client,
		app:    controller,
	}, nil
}

func (d *deps) Close() {
	d.app.Close()
	if err := d.nav.Close(); err != nil {
		d.log.Warn().Err(err).Msg("Failed to close fragment watcher")
	}
}

// promptConfirmer asks on out and reads a yes/no answer from in.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

func (p *promptConfirmer) Confirm(prompt string) bool {
	fmt.Fprint(p.out, promptStyle.Render(prompt+" [y/N] "))
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
