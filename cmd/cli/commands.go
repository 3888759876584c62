package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/and161185/goph-notes/internal/client"
	"github.com/and161185/goph-notes/internal/model"
)

type globalFlags struct {
	sessions sessionFile
	server   string
	caPath   string
	insecure bool
	timeout  time.Duration
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{sessions: defaultSessionFile()}
	root := &cobra.Command{
		Use:           "notes",
		Short:         "Command-line client for the notes service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.server, "server", "http://localhost:8000", "server base URL")
	root.PersistentFlags().StringVar(&g.caPath, "cacert", "", "CA cert (PEM) for https servers")
	root.PersistentFlags().BoolVar(&g.insecure, "insecure", false, "skip cert verify (dev)")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(
		versionCmd(),
		registerCmd(g),
		loginCmd(g),
		logoutCmd(g),
		meCmd(g),
		addCmd(g),
		editCmd(g),
		pinCmd(g),
		rmCmd(g),
		listCmd(g),
		searchCmd(g),
	)
	return root
}

// connect builds a client; authed clients load the saved token.
func (g *globalFlags) connect(authed bool) (*client.Client, error) {
	hc, err := httpClient(g.caPath, g.insecure)
	if err != nil {
		return nil, err
	}
	opts := []client.Option{client.WithHTTPClient(hc)}
	if authed {
		tok, err := g.sessions.token(g.server, time.Now())
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithToken(tok))
	}
	return client.New(g.server, opts...), nil
}

func (g *globalFlags) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), g.timeout)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "notes %s (%s)\n", version, buildDate)
		},
	}
}

func registerCmd(g *globalFlags) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and save its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.connect(false)
			if err != nil {
				return err
			}
			ctx, cancel := g.ctx(cmd)
			defer cancel()
			u, err := c.Register(ctx, name, email, password)
			if err != nil {
				return err
			}
			if err := g.sessions.save(g.server, c.Token()); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

func loginCmd(g *globalFlags) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.connect(false)
			if err != nil {
				return err
			}
			ctx, cancel := g.ctx(cmd)
			defer cancel()
			tok, err := c.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := g.sessions.save(g.server, tok); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

func logoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the token saved for --server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.sessions.forget(g.server)
		},
	}
}

func meCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.connect(true)
			if err != nil {
				return err
			}
			ctx, cancel := g.ctx(cmd)
			defer cancel()
			u, err := c.Me(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
}

func addCmd(g *globalFlags) *cobra.Command {
	var title, content, contentFile string
	var tags []string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if contentFile != "" {
				var err error
				if content, err = readContent(contentFile); err != nil {
					return err
				}
			}
			c, err := g.connect(true)
			if err != nil {
				return err
			}
			ctx, cancel := g.ctx(cmd)
			defer cancel()
			n, err := c.AddNote(ctx, model.NewNote{Title: title, Content: content, Tags: tags})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), n)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "note title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "note content")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "read content from file (- for stdin)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	return cmd
}

func editCmd(g *globalFlags) *cobra.Command {
	var title, content string
	var tags []string
	var clearTags, pinned bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the given fields of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd model.NoteUpdate
			f := cmd.Flags()
			if f.Changed("title") {
				upd.Title = model.Some(title)
			}
			if f.Changed("content") {
				upd.Content = model.Some(content)
			}
			if f.Changed("tag") {
				upd.Tags = model.Some(tags)
			}
			if clearTags {
				upd.Tags = model.Some([]string{})
			}
			if f.Changed("pinned") {
				upd.IsPinned = model.Some(pinned)
			}
			c, err := g.connect(true)
			if err != nil {
				return err
			}
			ctx, cancel := g.ctx(cmd)
			defer cancel()
			n, err := c.EditNote(ctx, args[0], upd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), n)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "new content")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replace tags (repeatable)")
	cmd.Flags().BoolVar(&clearTags, "clear-tags", false, "remove all tags")
	cmd.Flags().BoolVar(&pinned, "pinned", false, "set pin flag")
	return cmd
}

func pinCmd(g *globalFlags) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "pin <id>",
		Short: "Pin a note (or unpin with --off)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.connect(true)
			if err != nil {
				return err
			}
			ctx, cancel := g.ctx(cmd)
			defer cancel()
			n, err := c.PinNote(ctx, args[0], !off)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), n)
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "unpin instead")
	return cmd
}

func rmCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.connect(true)
			if err != nil {
				return err
			}
			ctx, cancel := g.ctx(cmd)
			defer cancel()
			if err := c.DeleteNote(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}

func listCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes, pinned first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.connect(true)
			if err != nil {
				return err
			}
			ctx, cancel := g.ctx(cmd)
			defer cancel()
			notes, err := c.ListNotes(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), notes)
		},
	}
}

func searchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find notes whose title or content contains query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.connect(true)
			if err != nil {
				return err
			}
			ctx, cancel := g.ctx(cmd)
			defer cancel()
			notes, err := c.SearchNotes(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), notes)
		},
	}
}
