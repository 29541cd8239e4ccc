package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"chessrules/internal/storage"
)

// Run is the entry point for the db maintenance commands
func Run(args []string) error {
	return run(os.Stdout, args)
}

func run(out io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, moves")
	}

	switch args[0] {
	case "init":
		return runInit(out, args[1:])
	case "delete":
		return runDelete(out, args[1:])
	case "query":
		return runQuery(out, args[1:])
	case "moves":
		return runMoves(out, args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// openStore parses -path plus any extra flags and opens the database
func openStore(name string, args []string, extra func(fs *flag.FlagSet)) (*storage.Store, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	if extra != nil {
		extra(fs)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(out io.Writer, args []string) error {
	store, err := openStore("init", args, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintln(out, "Database initialized")
	return nil
}

func runDelete(out io.Writer, args []string) error {
	store, err := openStore("delete", args, nil)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintln(out, "Database deleted")
	return nil
}

func runQuery(out io.Writer, args []string) error {
	var sessionID, label *string
	store, err := openStore("query", args, func(fs *flag.FlagSet) {
		sessionID = fs.String("session", "", "Session ID to filter (optional, * for all)")
		label = fs.String("label", "", "Session label to filter (optional, * for all)")
	})
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.QuerySessions(*sessionID, *label)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Session ID\tLabel\tTurn\tKing Safety\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(s.SessionID),
			s.Label,
			s.InitialTurn,
			s.KingSafety,
			s.StartTimeUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d session(s)\n", len(sessions))
	return nil
}

func runMoves(out io.Writer, args []string) error {
	var sessionID *string
	store, err := openStore("moves", args, func(fs *flag.FlagSet) {
		sessionID = fs.String("session", "", "Session ID (required)")
	})
	if err != nil {
		return err
	}
	defer store.Close()

	if *sessionID == "" {
		return fmt.Errorf("session ID required")
	}

	moves, err := store.QueryMoves(*sessionID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(moves) == 0 {
		fmt.Fprintln(out, "No moves found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tColor\tPiece\tMove\tBoard After")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, m := range moves {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", m.MoveNumber, m.PlayerColor, m.Piece, m.MoveUCI, m.BoardAfter)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d move(s)\n", len(moves))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
