// Package main is the interactive terminal chess board.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"chessrules/internal/checkpoint"
	"chessrules/internal/cli"
	"chessrules/internal/service"
	clitransport "chessrules/internal/transport/cli"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

func main() {
	var (
		theme      = flag.String("theme", "", "Board theme: off, brown, green, gray (default brown on a terminal)")
		stateDir   = flag.String("state-dir", "", "Directory for the session checkpoint (resume on next start)")
		kingSafety = flag.String("king-safety", "premove", "King move filter: premove or simulate")
		reselect   = flag.Bool("reselect", false, "Clicking another own piece switches the selection")
	)
	flag.Parse()

	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))

	// Resolve the theme before any store is opened
	selected := cli.ThemeOff
	if interactive {
		selected = cli.ThemeBrown
	}
	if *theme != "" {
		var err error
		if selected, err = cli.ParseTheme(*theme); err != nil {
			log.Fatalf("Bad -theme: %v", err)
		}
	}

	var checkpoints *checkpoint.Store
	if *stateDir != "" {
		var err error
		checkpoints, err = checkpoint.Open(*stateDir)
		if err != nil {
			log.Fatalf("Failed to open checkpoint store: %v", err)
		}
	}

	svc, err := service.New(service.Config{
		KingSafety:       *kingSafety,
		ReselectOwnPiece: *reselect,
	}, nil, checkpoints)
	if err != nil {
		if checkpoints != nil {
			checkpoints.Close()
		}
		log.Fatalf("Failed to start: %v", err)
	}
	defer svc.Shutdown(time.Second)

	info, restored, err := svc.Start()
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	var input cli.LineReader
	if interactive {
		historyFile := ""
		if *stateDir != "" {
			historyFile = filepath.Join(*stateDir, "history")
		}
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "> ",
			HistoryFile:     historyFile,
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
		})
		if err != nil {
			log.Fatalf("Failed to initialize readline: %v", err)
		}
		defer rl.Close()
		input = rl
	} else {
		input = cli.NewScannerReader(os.Stdin)
	}

	view := cli.New(input, os.Stdout)
	if err := view.SetTheme(selected); err != nil {
		log.Printf("Theme: %v", err)
	}

	view.ShowWelcome(info.Label)
	if restored {
		view.ShowInfo("Resumed previous session")
	}

	if err := clitransport.New(svc, view).Run(); err != nil {
		log.Printf("Input error: %v", err)
	}
}
