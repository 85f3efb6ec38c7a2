package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nahidnstu12/team-docs-sub001/internal/config"
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/editor"
	"github.com/nahidnstu12/team-docs-sub001/internal/export"
	"github.com/nahidnstu12/team-docs-sub001/internal/logging"
	"github.com/nahidnstu12/team-docs-sub001/internal/palette"
	"github.com/nahidnstu12/team-docs-sub001/internal/server"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
	"github.com/nahidnstu12/team-docs-sub001/internal/tui"
)

type command struct {
	usage       string
	help        string
	minArgs     int
	interactive bool
	run         func(ctx context.Context, rt *runtime, args []string) error
}

var commands = map[string]command{
	"serve":  {usage: "serve", help: "Serve the HTTP and websocket API", run: serve},
	"edit":   {usage: "edit <page-id>", help: "Edit a page in the terminal", minArgs: 1, interactive: true, run: edit},
	"new":    {usage: "new <title>", help: "Create an empty page and print its id", minArgs: 1, run: newPage},
	"list":   {usage: "list", help: "List pages, most recently updated first", run: listPages},
	"export": {usage: "export <page-id> [md|html]", help: "Write a page as Markdown or HTML", minArgs: 1, run: exportPage},
}

var commandOrder = []string{"serve", "edit", "new", "list", "export"}

func serve(ctx context.Context, rt *runtime, _ []string) error {
	srv := server.New(rt.pages,
		server.WithLogger(logging.Component(rt.logger, "server")),
		server.WithEditorOptions(rt.editorOptions),
		server.WithAutosaver(rt.autosaver),
		server.WithRegistry(rt.registry),
	)
	rt.cfg.OnChange(func(ch config.Change) {
		if ch.Changed("editor") {
			srv.Sessions().Configure(ch.New.TriggerRune(), ch.New.Editor.HitZone)
		}
	})

	listen := rt.cfg.Settings().Server.Listen
	errc := make(chan error, 1)
	go func() { errc <- srv.Start(listen) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	rt.logger.Info().Msg("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func edit(ctx context.Context, rt *runtime, args []string) error {
	page, err := rt.pages.Load(ctx, args[0])
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()

	var app *tui.App
	opts := append(rt.editorOptions(),
		editor.WithLogger(logging.Component(rt.logger, "editor")),
		editor.WithAnchor(func(s *state.State) palette.Anchor { return app.Anchor(s) }),
	)
	ed, err := editor.New(page.Payload, opts...)
	if err != nil {
		return err
	}
	rt.autosaver.Track(ed.ID(), page.ID)
	rt.cfg.OnChange(func(ch config.Change) {
		if ch.Changed("editor") {
			ed.Configure(ch.New.TriggerRune(), ch.New.Editor.HitZone)
		}
	})

	// stage hands the current document to the autosaver so a save never
	// writes an older version than the one on screen.
	stage := func() error {
		payload, err := ed.Payload()
		if err != nil {
			return err
		}
		return rt.autosaver.Stage(ed.ID(), ed.Version(), payload)
	}
	app = tui.New(screen, ed,
		tui.WithTitle(page.Title),
		tui.WithLogger(logging.Component(rt.logger, "tui")),
		tui.WithSave(func(ctx context.Context) error {
			if err := stage(); err != nil {
				return err
			}
			return rt.autosaver.Flush(ctx, ed.ID())
		}),
	)

	runErr := app.Run(ctx)
	if ed.Version() > 0 {
		if err := stage(); err != nil {
			return err
		}
	}
	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(runErr, rt.autosaver.Untrack(closeCtx, ed.ID()))
}

func newPage(ctx context.Context, rt *runtime, args []string) error {
	blank, err := document.Blank().MarshalJSON()
	if err != nil {
		return err
	}
	page, err := rt.pages.Create(ctx, args[0], blank)
	if err != nil {
		return err
	}
	fmt.Println(page.ID)
	return nil
}

func listPages(ctx context.Context, rt *runtime, _ []string) error {
	pages, err := rt.pages.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tVERSION\tUPDATED")
	for _, p := range pages {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.ID, p.Title, p.Version, p.UpdatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func exportPage(ctx context.Context, rt *runtime, args []string) error {
	format := export.FormatMarkdown
	if len(args) > 1 {
		f, err := export.ParseFormat(args[1])
		if err != nil {
			return err
		}
		format = f
	}
	page, err := rt.pages.Load(ctx, args[0])
	if err != nil {
		return err
	}
	doc, err := document.ParseJSON(page.Payload)
	if err != nil {
		return err
	}
	return export.Write(os.Stdout, doc, format)
}
