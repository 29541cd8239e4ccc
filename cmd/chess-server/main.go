// Package main runs the chess rules service behind an HTTP API, with an
// optional SQLite move log and badger session checkpoints.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessrules/cmd/chess-server/cli"
	"chessrules/internal/checkpoint"
	"chessrules/internal/service"
	"chessrules/internal/storage"
	"chessrules/internal/transport/http"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, fixed token secret)")
		storagePath = flag.String("storage-path", "", "Path to SQLite move log (disabled if empty)")
		stateDir    = flag.String("state-dir", "", "Directory for session checkpoints (disabled if empty)")
		authEnabled = flag.Bool("auth", false, "Require a session token for clicks and undo")
		kingSafety  = flag.String("king-safety", "premove", "King move filter: premove or simulate")
		reselect    = flag.Bool("reselect", false, "Clicking another own piece switches the selection")
		rateLimit   = flag.Int("rate-limit", 0, "Requests per second per IP (0 uses the default)")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	if *pidLock && *pidPath == "" {
		log.Fatal("Error: -pid-lock flag requires the -pid flag to be set")
	}

	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatalf("Failed to manage PID file: %v", err)
		}
		defer cleanup()
		log.Printf("PID file created at: %s (lock: %v)", *pidPath, *pidLock)
	}

	// 1. Move log (optional)
	var store *storage.Store
	if *storagePath != "" {
		log.Printf("Initializing move log at: %s", *storagePath)
		var err error
		store, err = storage.NewStore(*storagePath, *dev)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		if err := store.InitDB(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Printf("Move log disabled (use -storage-path to enable)")
	}

	// 2. Checkpoints (optional)
	var checkpoints *checkpoint.Store
	if *stateDir != "" {
		var err error
		checkpoints, err = checkpoint.Open(*stateDir)
		if err != nil {
			log.Fatalf("Failed to open checkpoint store: %v", err)
		}
	}

	// 3. Token secret
	var tokenSecret []byte
	if *authEnabled {
		if *dev {
			tokenSecret = []byte("dev-secret-minimum-32-characters-long")
			log.Printf("Using fixed token secret (dev mode)")
		} else {
			tokenSecret = make([]byte, 32)
			if _, err := rand.Read(tokenSecret); err != nil {
				log.Fatalf("Failed to generate token secret: %v", err)
			}
			log.Printf("Token secret generated (tokens valid until restart)")
		}
	}

	// 4. Service
	svc, err := service.New(service.Config{
		KingSafety:       *kingSafety,
		ReselectOwnPiece: *reselect,
		TokenSecret:      tokenSecret,
	}, store, checkpoints)
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}

	info, restored, err := svc.Start()
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	if restored {
		log.Printf("Resumed session %s (%s)", info.Label, info.ID)
	} else {
		log.Printf("Started session %s (%s)", info.Label, info.ID)
	}

	// 5. HTTP
	app := http.NewFiberApp(svc, http.Config{DevMode: *dev, RateLimit: *rateLimit})
	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		log.Printf("Chess API Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		log.Printf("King safety: %s, reselect: %v", *kingSafety, *reselect)
		if *authEnabled {
			log.Printf("Authentication: Enabled (token from POST /api/v1/session)")
		} else {
			log.Printf("Authentication: Disabled")
		}
		log.Printf("API Endpoints: http://%s/api/v1/game", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	// Release long-poll waiters before draining connections
	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
