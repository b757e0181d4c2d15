package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datalink/pkg/grid"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl <file>",
		Short: "Interactively explore a JSON row file",
		Long: `Open an interactive shell over a JSON array of row objects.
Supports searching, sorting, and inspecting columns without leaving
the terminal. Type .help inside the shell for the command list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runTableREPL(cmd, args[0], cfg.Output)
		},
	}
}

// replState holds the file path and the working table so .reload can
// swap the table in place.
type replState struct {
	path string
	tbl  *grid.Table
}

func runTableREPL(cmd *cobra.Command, path, format string) error {
	tbl, err := loadTableFile(path)
	if err != nil {
		return err
	}
	st := &replState{path: path, tbl: tbl}

	historyFile := filepath.Join(filepath.Dir(path), ".datalink_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "datalink> ",
		HistoryFile:     historyFile,
		AutoComplete:    newReplCompleter(tbl),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "DataLink table shell (%s: %d rows, %d columns)\n",
		filepath.Base(path), tbl.RowCount(), tbl.ColumnCount())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

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
		if !strings.HasPrefix(line, ".") {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown input: %s (type .help for commands)\n", line)
			continue
		}
		if quit := handleReplCommand(cmd, st, line, format); quit {
			break
		}
	}

	return nil
}

// handleReplCommand runs one dot-command. Returns true to exit the loop.
func handleReplCommand(cmd *cobra.Command, st *replState, line, format string) bool {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printReplHelp(out)

	case ".columns":
		if err := renderGrid(out, columnsTable(st.tbl), format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}

	case ".count":
		_, _ = fmt.Fprintf(out, "%d rows\n", st.tbl.RowCount())

	case ".rows":
		view := st.tbl
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				_, _ = fmt.Fprintln(errOut, "Usage: .rows [count]")
				return false
			}
			view = headRows(st.tbl, n)
		}
		if err := renderGrid(out, view, format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}

	case ".search", ".exclude":
		if len(args) == 0 {
			_, _ = fmt.Fprintf(errOut, "Usage: %s key=value [key=value ...]\n", command)
			return false
		}
		cond, err := buildCondition(st.tbl, args)
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			return false
		}
		view, err := st.tbl.SearchRowsAsTable(cond, command == ".exclude")
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			return false
		}
		if err := renderGrid(out, view, format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}

	case ".sort":
		if len(args) == 0 {
			_, _ = fmt.Fprintln(errOut, "Usage: .sort <column> [desc] [int]")
			return false
		}
		column := args[0]
		desc, intOrder := false, false
		for _, opt := range args[1:] {
			switch strings.ToLower(opt) {
			case "desc":
				desc = true
			case "asc":
			case "int":
				intOrder = true
			default:
				_, _ = fmt.Fprintf(errOut, "Unknown sort option: %s\n", opt)
				return false
			}
		}
		var err error
		if desc {
			err = st.tbl.SortRowsDescending(column, intOrder)
		} else {
			err = st.tbl.SortRowsAscending(column, intOrder)
		}
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			return false
		}
		_, _ = fmt.Fprintf(out, "Sorted by %s\n", column)

	case ".reload":
		tbl, err := loadTableFile(st.path)
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			return false
		}
		st.tbl = tbl
		_, _ = fmt.Fprintf(out, "Reloaded %s (%d rows)\n", filepath.Base(st.path), tbl.RowCount())

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(errOut, "Unknown command: %s (type .help for commands)\n", command)
	}

	return false
}

// columnsTable builds a table describing the columns of t.
func columnsTable(t *grid.Table) *grid.Table {
	meta := grid.NewTable()
	for _, col := range t.Columns() {
		kind, err := t.ColumnKind(col)
		if err != nil {
			continue
		}
		_ = meta.AddRow(map[string]any{"column": col, "kind": kind.String()})
	}
	return meta
}

// headRows returns a copy of t truncated to the first n rows.
func headRows(t *grid.Table, n int) *grid.Table {
	view := t.Clone()
	for view.RowCount() > n {
		_, _ = view.RemoveRow(view.RowCount() - 1)
	}
	return view
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help                      Show this help message
  .columns                   List columns and their kinds
  .rows [n]                  Show all rows, or the first n
  .count                     Show the row count
  .search k=v [k=v ...]      Show rows matching every pair
  .exclude k=v [k=v ...]     Show rows matching no pair set
  .sort <column> [desc|int]  Sort rows in place
  .reload                    Re-read the file from disk
  .clear                     Clear the screen
  .quit / .exit              Exit the shell

Tips:
  - Use arrow keys to navigate history
  - Tab completion works for commands and column names
`
	_, _ = fmt.Fprintln(w, help)
}

// newReplCompleter creates a readline completer over the dot-commands
// and the table's column names.
func newReplCompleter(t *grid.Table) *readline.PrefixCompleter {
	var cols []readline.PrefixCompleterInterface
	for _, c := range t.Columns() {
		cols = append(cols, readline.PcItem(c))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".columns"),
		readline.PcItem(".rows"),
		readline.PcItem(".count"),
		readline.PcItem(".search", cols...),
		readline.PcItem(".exclude", cols...),
		readline.PcItem(".sort", cols...),
		readline.PcItem(".reload"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
