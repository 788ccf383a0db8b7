package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/notedesk/internal/app"
	"github.com/debemdeboas/notedesk/internal/config"
	"github.com/debemdeboas/notedesk/internal/editor"
	"github.com/debemdeboas/notedesk/internal/model"
	"github.com/debemdeboas/notedesk/internal/render"
)

var errInvalidLink = errors.New("invalid link")

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Browse and edit posts from the command line",
		Long: `notedesk lists, edits and soft-deletes posts served by a posts API.

The selected post is kept in a fragment file as an obfuscated link token, so
any process (or a pasted link) can change the selection and every running
"notedesk watch" follows it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultConfigFileName, "Config file path (YAML or TOML)")
	flags.StringVar(&opts.envPath, "env-file", config.DotEnvFileName, "Environment file to load")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.fragmentFile, "fragment-file", "", "File holding the selected post link")
	flags.StringVar(&opts.apiURL, "api-url", "", "Base URL of the posts API")

	cmd.AddCommand(
		listCmd(opts),
		linkCmd(opts),
		resolveCmd(opts),
		openCmd(opts),
		closeCmd(opts),
		showCmd(opts),
		editCmd(opts),
		deleteCmd(opts),
		watchCmd(opts),
		versionCmd(),
	)

	return cmd
}

// openApp loads settings and builds the dependencies without loading posts.
func openApp(cmd *cobra.Command, opts *globalOptions, confirm editor.Confirmer, appOpts ...app.Option) (*deps, error) {
	cfg, l, err := loadSettings(opts, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return newDeps(cfg, l, confirm, appOpts...)
}

// withApp opens the app, performs the first load and runs fn.
func withApp(cmd *cobra.Command, opts *globalOptions, confirm editor.Confirmer, fn func(d *deps) error, appOpts ...app.Option) error {
	d, err := openApp(cmd, opts, confirm, appOpts...)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.app.Start(cmd.Context()); err != nil {
		return fmt.Errorf("load posts: %w", err)
	}
	return fn(d)
}

func listCmd(opts *globalOptions) *cobra.Command {
	var (
		search         string
		includeDeleted bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, nil, func(d *deps) error {
				if cmd.Flags().Changed("include-deleted") {
					if err := d.app.SetIncludeDeleted(cmd.Context(), includeDeleted); err != nil {
						return err
					}
				}
				d.app.SetPendingQuery(search)
				d.app.SubmitSearch()

				fmt.Fprint(cmd.OutOrStdout(), formatList(d.app.View()))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show posts whose title contains this text")
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "Include soft-deleted posts")
	return cmd
}

func linkCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "link <post-id>",
		Short: "Print the shareable link token for a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadSettings(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c, err := newCodec(cfg)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "#"+c.Encode(model.PostID(args[0])))
			return nil
		},
	}
}

func resolveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <link>",
		Short: "Print the post id a link token points at",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadSettings(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c, err := newCodec(cfg)
			if err != nil {
				return err
			}

			id, ok := c.Decode(tokenFromLink(args[0]))
			if !ok || id == "" {
				return errInvalidLink
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

// tokenFromLink accepts a bare token, "#token", or a URL ending in "#token".
func tokenFromLink(link string) string {
	if i := strings.LastIndexByte(link, '#'); i >= 0 {
		return link[i+1:]
	}
	return link
}

func openCmd(opts *globalOptions) *cobra.Command {
	var isLink bool

	cmd := &cobra.Command{
		Use:   "open <post-id>",
		Short: "Select a post for editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, nil, func(d *deps) error {
				if isLink {
					d.nav.SetFragment(tokenFromLink(args[0]))
				} else if err := d.app.Select(model.PostID(args[0])); err != nil {
					return err
				}

				if _, ok := d.app.Selection(); !ok {
					return errInvalidLink
				}
				fmt.Fprint(cmd.OutOrStdout(), formatEditor(d.app.View()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&isLink, "link", false, "Treat the argument as a link token")
	return cmd
}

func closeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the editor and clear the selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, nil, func(d *deps) error {
				return d.app.CloseEditor()
			})
		},
	}
}

func showCmd(opts *globalOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the selected post",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, nil, func(d *deps) error {
				post, ok := d.app.SelectedPost()
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), placeholderStyle.Render(config.MsgSelectPost))
					return nil
				}

				if raw {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", post.DisplayTitle(), post.Body)
					return nil
				}

				r, err := render.New(d.cfg.Render.Style, d.cfg.Render.WordWrap)
				if err != nil {
					return err
				}
				out, err := r.RenderPost(post)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown source instead of rendering it")
	return cmd
}

func editCmd(opts *globalOptions) *cobra.Command {
	var title, body, bodyFile string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change the title or body of the selected post and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("title") && !flags.Changed("body") && !flags.Changed("body-file") {
				return errors.New("nothing to change: pass --title, --body or --body-file")
			}
			if flags.Changed("body-file") {
				data, err := readBodyFile(cmd.InOrStdin(), bodyFile)
				if err != nil {
					return err
				}
				body = string(data)
			}

			return withApp(cmd, opts, nil, func(d *deps) error {
				if _, ok := d.app.SelectedPost(); !ok {
					return editor.ErrNoSelection
				}

				if flags.Changed("title") {
					if err := d.app.SetTitle(title); err != nil {
						return err
					}
				}
				if flags.Changed("body") || flags.Changed("body-file") {
					if err := d.app.SetBody(body); err != nil {
						return err
					}
				}

				err := d.app.Save(cmd.Context())
				switch {
				case errors.Is(err, editor.ErrNoChanges):
					fmt.Fprintln(cmd.OutOrStdout(), "No changes to save")
					return nil
				case err != nil:
					return inlineError(d.app.View(), err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Saved"))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&body, "body", "b", "", "New body")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the new body from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file")
	return cmd
}

func readBodyFile(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read body file: %w", err)
	}
	return data, nil
}

func deleteCmd(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Soft-delete the selected post",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := newPromptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			ask := !yes

			confirm := editor.ConfirmFunc(func(message string) bool {
				return !ask || prompt.Confirm(message)
			})

			return withApp(cmd, opts, confirm, func(d *deps) error {
				ask = ask && d.cfg.Editor.ConfirmDeletes

				err := d.app.Delete(cmd.Context())
				switch {
				case errors.Is(err, editor.ErrCancelled):
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				case err != nil:
					return inlineError(d.app.View(), err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(config.LabelDeleted))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// inlineError prefers the editor's message, which is what the user would see.
func inlineError(v app.View, err error) error {
	if v.Editor.Error != "" {
		return errors.New(strings.TrimPrefix(v.Editor.Error, "Error: "))
	}
	return err
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	}
}

func watchCmd(opts *globalOptions) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the post list and editor, following selection changes",
		Long: `watch redraws whenever the selection changes, for example when another
notedesk process runs "open" or a link is pasted into the fragment file.
With --interval the collection is also reloaded periodically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var (
				mu   sync.Mutex
				last string
				d    *deps
			)
			redraw := func() {
				mu.Lock()
				defer mu.Unlock()
				if d == nil {
					return
				}
				frame := formatView(d.app.View())
				if frame == last {
					return
				}
				last = frame
				fmt.Fprint(out, frame)
			}

			started, err := openApp(cmd, opts, nil, app.WithOnChange(redraw))
			if err != nil {
				return err
			}
			defer started.Close()

			mu.Lock()
			d = started
			mu.Unlock()

			// A failed load is drawn as the error page; --interval retries it.
			if err := started.app.Start(cmd.Context()); err != nil {
				started.log.Warn().Err(err).Msg("Initial load failed")
			}
			redraw()

			var tick <-chan time.Time
			if interval > 0 {
				t := time.NewTicker(interval)
				defer t.Stop()
				tick = t.C
			}

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-tick:
					if err := started.app.Reload(cmd.Context()); err != nil {
						started.log.Warn().Err(err).Msg("Reload failed")
					}
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Reload the collection this often (0 disables)")
	return cmd
}
