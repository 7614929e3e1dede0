package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/aretw0/promowizard/internal/presentation/tui"
	"github.com/aretw0/promowizard/pkg/adapters/memory"
	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/sanitize"
	"github.com/aretw0/promowizard/pkg/wizard"
	"golang.org/x/term"
)

// RunOptions configures an interactive terminal session.
type RunOptions struct {
	AccountID string
	// SessionID resumes a persisted session instead of opening a new one.
	SessionID string

	In     io.Reader
	Out    io.Writer
	Render tui.Renderer
	Banner bool
}

// TerminalOptions fills In, Out and Render for the process terminal. Rich rendering
// and the banner are enabled only when stdout is a TTY.
func TerminalOptions(opts RunOptions) RunOptions {
	opts.In, opts.Out = os.Stdin, os.Stdout
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		opts.Render = tui.Plain
		return opts
	}
	width := 0
	if w, _, err := term.GetSize(fd); err == nil {
		width = w
	}
	opts.Render = tui.NewRenderer(width)
	opts.Banner = true
	return opts
}

type terminal struct {
	app  *App
	id   string
	out  io.Writer
	opts RunOptions
}

// Run drives one wizard from the terminal until it is submitted, the user quits,
// or input ends. Quitting keeps the session for a later resume.
func Run(ctx context.Context, app *App, opts RunOptions) error {
	if opts.Render == nil {
		opts.Render = tui.Plain
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Banner {
		tui.PrintBanner(opts.Out)
	}

	t := &terminal{app: app, out: opts.Out, opts: opts}
	if opts.SessionID != "" {
		t.id = opts.SessionID
		t.system("Resuming session '%s'.", t.id)
	} else {
		id, err := app.Sessions.Open(ctx, opts.AccountID)
		if err != nil {
			return fmt.Errorf("open session: %w", err)
		}
		t.id = id
		app.Logger.Info("Session Created", "session_id", id)
	}

	view, err := t.view(ctx)
	if err != nil {
		return err
	}
	if err := t.render(view); err != nil {
		return err
	}

	scanner := bufio.NewScanner(NewInterruptibleReader(opts.In, ctx.Done()))
	for {
		fmt.Fprint(t.out, "> ")
		if !scanner.Scan() {
			t.system("Session '%s' saved.", t.id)
			return handleExecutionError(scanner.Err())
		}
		line, err := sanitize.Line(scanner.Text())
		if err != nil {
			t.system("%v", err)
			continue
		}
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			t.system("Session '%s' saved. Resume with --session %s", t.id, t.id)
			return nil
		}

		view, err = t.dispatch(ctx, view, line)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
		if err != nil {
			t.system("%v", err)
		}
		for _, e := range t.app.Shells.For(t.id).Drain() {
			t.event(e)
		}
		if view.Closed {
			t.app.Shells.Drop(t.id)
			return nil
		}
		if err := t.render(view); err != nil {
			return err
		}
	}
}

func (t *terminal) view(ctx context.Context) (wizard.View, error) {
	var v wizard.View
	err := t.app.Sessions.Do(ctx, t.id, func(ctx context.Context, c *wizard.Controller) error {
		v = c.View()
		return nil
	})
	return v, err
}

// dispatch applies one command line to the session and returns the new view.
func (t *terminal) dispatch(ctx context.Context, current wizard.View, line string) (wizard.View, error) {
	cmd, rest, _ := strings.Cut(line, " ")
	args := strings.Fields(rest)

	var v wizard.View
	err := t.app.Sessions.Do(ctx, t.id, func(ctx context.Context, c *wizard.Controller) error {
		defer func() { v = c.View() }()

		switch {
		case cmd == "next":
			c.Next(ctx)
		case cmd == "back":
			c.Previous(ctx)
		case cmd == "submit":
			_, err := c.Submit(ctx)
			return err
		case current.Step == domain.StepName:
			c.NameStep().SetName(line)
		case current.Step == domain.StepProducts:
			return productCommand(ctx, c, cmd, args)
		case current.Step == domain.StepStores && cmd == "s" && len(args) == 1:
			t.toggleStore(c, args[0])
		default:
			return fmt.Errorf("unknown command %q", line)
		}
		return nil
	})
	if errors.Is(err, domain.ErrSessionNotFound) {
		return current, err
	}
	return v, err
}

func productCommand(ctx context.Context, c *wizard.Controller, cmd string, args []string) error {
	products := c.Products()
	switch {
	case cmd == "n" && len(args) == 0:
		return products.NextPage(ctx)
	case cmd == "p" && len(args) == 0:
		return products.PreviousPage(ctx)
	case cmd == "t" && len(args) == 1:
		checked := true
		for _, item := range products.Page().Items {
			if item.ID == args[0] {
				checked = !item.IsSelected
			}
		}
		return products.Toggle(args[0], checked)
	case cmd == "d" && len(args) == 2:
		_, err := products.EditDiscount(args[0], strings.TrimSuffix(args[1], "%"))
		return err
	}
	return fmt.Errorf("unknown command %q", strings.TrimSpace(cmd+" "+strings.Join(args, " ")))
}

func (t *terminal) toggleStore(c *wizard.Controller, id string) {
	steps := c.StoreStep()
	if slices.ContainsFunc(steps.Stores(), func(s domain.StoreSelection) bool { return s.StoreID == id }) {
		steps.RemoveStore(id)
		return
	}
	for _, s := range t.app.Stores {
		if s.StoreID == id {
			steps.AddStore(s)
			return
		}
	}
	t.system("Unknown store '%s'.", id)
}

func (t *terminal) render(v wizard.View) error {
	out, err := t.opts.Render(tui.StepMarkdown(v, t.app.Stores))
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	fmt.Fprintln(t.out, out)
	return nil
}

func (t *terminal) event(e memory.ShellEvent) {
	switch e.Kind {
	case memory.ShellNotify:
		t.system("[%s] %s", e.Notification.Title, e.Notification.Message)
	case memory.ShellNavigate:
		t.system("Promotion record: %s", e.RecordID)
	case memory.ShellClose:
		t.system("Wizard closed.")
	}
}

// system prints a standardized system message.
func (t *terminal) system(format string, args ...any) {
	fmt.Fprintf(t.out, ">>> %s\n", fmt.Sprintf(format, args...))
}
