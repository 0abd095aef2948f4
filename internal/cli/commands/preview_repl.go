package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/indexlens/indexlens/internal/filterquery"
	"github.com/indexlens/indexlens/internal/preview"
	"github.com/spf13/cobra"
)

// previewREPL holds the mutable state of an interactive preview run.
type previewREPL struct {
	cmd    *cobra.Command
	cmdCtx *CommandContext
	sess   *preview.Session
}

func runPreviewREPL(cmd *cobra.Command, cmdCtx *CommandContext, opts *PreviewOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	sess, err := newPreviewSession(cmdCtx, opts.Limit)
	if err != nil {
		return err
	}
	p := &previewREPL{cmd: cmd, cmdCtx: cmdCtx, sess: sess}
	defer func() { p.sess.Close() }()

	// Load the index list up front so completion knows the names.
	if err := p.sess.ListIndices(ctx); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "indexlens> ",
		HistoryFile:     historyFilePath(),
		AutoComplete:    newPreviewCompleter(p.sess.Snapshot().IndexOptions),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// Print welcome message
	_, _ = fmt.Fprintf(out, "indexlens preview REPL (cluster: %s)\n", cmdCtx.Cfg.Cluster.URL)
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	// REPL loop
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := p.handleDotCommand(ctx, line); quit {
				break
			}
			rl.SetPrompt(p.prompt())
			continue
		}

		// Everything else is a filter expression over the selected index.
		p.applyFilter(ctx, line)
	}

	return nil
}

// prompt shows the selected index once one is chosen.
func (p *previewREPL) prompt() string {
	if selected := p.sess.Snapshot().SelectedIndex; selected != "" {
		return fmt.Sprintf("%s> ", selected)
	}
	return "indexlens> "
}

func (p *previewREPL) handleDotCommand(ctx context.Context, line string) bool {
	out := p.cmd.OutOrStdout()
	errOut := p.cmd.ErrOrStderr()

	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	arg := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printPreviewREPLHelp(out)

	case ".indices":
		p.showIndices(ctx, arg)

	case ".use":
		if arg == "" {
			_, _ = fmt.Fprintln(errOut, "Usage: .use <index>")
			return false
		}
		if err := p.sess.SelectIndex(ctx, arg); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			return false
		}
		p.render()

	case ".fields":
		p.showFields()

	case ".filter":
		// Bare .filter clears the active filter.
		p.applyFilter(ctx, arg)

	case ".limit":
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			_, _ = fmt.Fprintln(errOut, "Usage: .limit <rows>")
			return false
		}
		p.setLimit(ctx, n)

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

// showIndices lists the selectable indices, optionally narrowed to
// names containing the argument.
func (p *previewREPL) showIndices(ctx context.Context, search string) {
	if err := p.sess.ListIndices(ctx); err != nil {
		_, _ = fmt.Fprintf(p.cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	out := p.cmd.OutOrStdout()
	needle := strings.ToLower(search)
	shown := 0
	for _, opt := range p.sess.Snapshot().IndexOptions {
		if needle != "" && !strings.Contains(strings.ToLower(opt.Value), needle) {
			continue
		}
		_, _ = fmt.Fprintf(out, "  %s\n", opt.Value)
		shown++
	}
	_, _ = fmt.Fprintf(out, "(%d indices)\n", shown)
}

func (p *previewREPL) showFields() {
	state := p.sess.Snapshot()
	out := p.cmd.OutOrStdout()

	if state.SelectedIndex == "" {
		_, _ = fmt.Fprintln(p.cmd.ErrOrStderr(), "No index selected (use .use <index>)")
		return
	}
	for _, col := range state.Columns {
		_, _ = fmt.Fprintf(out, "  %s\n", col.ID)
	}
	_, _ = fmt.Fprintf(out, "(%d fields)\n", len(state.Columns))
}

// applyFilter applies a filter expression and re-renders. Parse errors
// keep the current rows on screen.
func (p *previewREPL) applyFilter(ctx context.Context, expr string) {
	if err := p.sess.ApplyFilter(ctx, expr); err != nil {
		var parseErr *filterquery.ParseError
		if errors.As(err, &parseErr) {
			_, _ = fmt.Fprintf(p.cmd.ErrOrStderr(), "Filter error: %v\n", parseErr)
			return
		}
		_, _ = fmt.Fprintf(p.cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	p.render()
}

// setLimit swaps in a session with the new row limit, replaying the
// current selection and filter.
func (p *previewREPL) setLimit(ctx context.Context, n int) {
	state := p.sess.Snapshot()

	sess, err := newPreviewSession(p.cmdCtx, n)
	if err != nil {
		_, _ = fmt.Fprintf(p.cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	p.sess.Close()
	p.sess = sess

	if state.SelectedIndex == "" {
		return
	}
	if err := p.sess.SelectIndex(ctx, state.SelectedIndex); err != nil {
		_, _ = fmt.Fprintf(p.cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	if state.Filter != "" {
		p.applyFilter(ctx, state.Filter)
		return
	}
	p.render()
}

func (p *previewREPL) render() {
	if err := renderPreview(p.cmdCtx.Renderer, p.sess.Snapshot()); err != nil {
		_, _ = fmt.Fprintf(p.cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	_, _ = fmt.Fprintln(p.cmd.OutOrStdout())
}

func printPreviewREPLHelp(w io.Writer) {
	help := `
Commands:
  .indices [text]  List indices, optionally containing text
  .use <index>     Select an index and preview its documents
  .fields          Show the selected index's columns
  .filter [expr]   Apply a filter expression (bare .filter clears it)
  .limit <rows>    Change the row limit
  .clear           Clear the screen
  .help            Show this help message
  .quit / .exit    Exit the REPL

Tips:
  - A bare expression like level:error filters the selected index
  - Several field:value pairs must all match
  - Quote values with spaces: message:"connection refused"
  - Tab completion works for index names after .use
`
	_, _ = fmt.Fprintln(w, help)
}

// historyFilePath picks a per-user history location, falling back to
// the system temp directory.
func historyFilePath() string {
	if cacheDir, err := os.UserCacheDir(); err == nil {
		dir := filepath.Join(cacheDir, "indexlens")
		if err := os.MkdirAll(dir, 0o750); err == nil {
			return filepath.Join(dir, "preview_history")
		}
	}
	return filepath.Join(os.TempDir(), "indexlens_history")
}

// newPreviewCompleter creates a readline completer for dot-commands and
// index names.
func newPreviewCompleter(options []preview.Option) *readline.PrefixCompleter {
	useItems := make([]readline.PrefixCompleterInterface, 0, len(options))
	for _, opt := range options {
		useItems = append(useItems, readline.PcItem(opt.Value))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".indices"),
		readline.PcItem(".use", useItems...),
		readline.PcItem(".fields"),
		readline.PcItem(".filter"),
		readline.PcItem(".limit"),
		readline.PcItem(".clear"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
