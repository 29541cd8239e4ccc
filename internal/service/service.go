package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"chessrules/internal/board"
	"chessrules/internal/checkpoint"
	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/rules"
	"chessrules/internal/storage"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
)

const DefaultTokenTTL = 24 * time.Hour

var (
	ErrUnauthorized = errors.New("token does not belong to the active session")
	ErrAuthDisabled = errors.New("authentication disabled")
)

var validate = validator.New()

// Config holds the tunables of a Service
type Config struct {
	KingSafety       string        `validate:"omitempty,oneof=premove simulate"`
	ReselectOwnPiece bool
	TokenSecret      []byte        `validate:"omitempty,min=32"` // empty disables tokens
	TokenTTL         time.Duration `validate:"min=0"`
	WaitTimeout      time.Duration `validate:"min=0"`
}

// SessionInfo identifies the active session
type SessionInfo struct {
	ID    string
	Label string
}

// Snapshot is a consistent copy of the active session
type Snapshot struct {
	SessionInfo
	State   game.State
	Options game.Options
}

type session struct {
	info SessionInfo
	game *game.Game
}

// Service owns the single active session with optional persistence
type Service struct {
	mu          sync.RWMutex
	current     *session
	opts        game.Options
	store       *storage.Store    // nil if the move log is disabled
	checkpoints *checkpoint.Store // nil if checkpoints are disabled
	waiter      *WaitRegistry
	tokenSecret []byte
	tokenTTL    time.Duration
}

// New creates a service. store and checkpoints may be nil.
func New(cfg Config, store *storage.Store, checkpoints *checkpoint.Store) (*Service, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid service config: %w", err)
	}

	policy, err := rules.ParsePolicy(cfg.KingSafety)
	if err != nil {
		return nil, err
	}

	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	return &Service{
		opts: game.Options{
			KingSafety:       policy,
			ReselectOwnPiece: cfg.ReselectOwnPiece,
		},
		store:       store,
		checkpoints: checkpoints,
		waiter:      NewWaitRegistry(cfg.WaitTimeout),
		tokenSecret: cfg.TokenSecret,
		tokenTTL:    ttl,
	}, nil
}

// Start resumes the checkpointed session or begins a new one
func (s *Service) Start() (SessionInfo, bool, error) {
	info, ok, err := s.Restore()
	if err != nil {
		log.Printf("Checkpoint unreadable, starting fresh: %v", err)
	}
	if ok {
		return info, true, nil
	}
	info, err = s.NewSession(core.NewSessionRequest{})
	return info, false, err
}

// Restore loads the checkpointed session, reporting whether one existed
func (s *Service) Restore() (SessionInfo, bool, error) {
	if s.checkpoints == nil {
		return SessionInfo{}, false, nil
	}

	rec, err := s.checkpoints.Load()
	if errors.Is(err, checkpoint.ErrNotFound) {
		return SessionInfo{}, false, nil
	}
	if err != nil {
		return SessionInfo{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.replace(&session{
		info: SessionInfo{ID: rec.SessionID, Label: rec.Label},
		game: game.Resume(rec.State, s.opts),
	})
	return s.current.info, true, nil
}

// NewSession discards the active session and starts another, optionally
// from a given placement and side to move
func (s *Service) NewSession(req core.NewSessionRequest) (SessionInfo, error) {
	if err := validate.Struct(req); err != nil {
		return SessionInfo{}, fmt.Errorf("%w: %v", core.ErrInvalidBoard, err)
	}

	b := board.Initial()
	if req.Board != "" {
		parsed, err := board.ParseFEN(req.Board)
		if err != nil {
			return SessionInfo{}, err
		}
		b = parsed
	}

	turn := core.ColorWhite
	if req.Turn != "" {
		turn, _ = core.ParseColor(req.Turn)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &session{
		info: SessionInfo{
			ID:    uuid.New().String(),
			Label: petname.Generate(2, "-"),
		},
		game: game.NewFrom(b, turn, s.opts),
	}
	s.replace(sess)

	if s.store != nil {
		s.store.RecordNewSession(storage.SessionRecord{
			SessionID:    sess.info.ID,
			Label:        sess.info.Label,
			InitialBoard: b.FEN(),
			InitialTurn:  turn.String(),
			KingSafety:   s.opts.KingSafety.String(),
			StartTimeUTC: time.Now().UTC(),
		})
	}
	s.checkpoint()

	return sess.info, nil
}

// replace swaps the active session, waking waiters of the old one. Caller holds mu.
func (s *Service) replace(next *session) {
	if s.current != nil {
		s.waiter.RemoveSession(s.current.info.ID)
	}
	s.current = next
}

// active returns the current session or ErrNoSession. Caller holds mu.
func (s *Service) active() (*session, error) {
	if s.current == nil {
		return nil, core.ErrNoSession
	}
	return s.current, nil
}

// owned returns the active session, or ErrUnauthorized when sessionID is set
// and names a different one. Callers hold s.mu.
func (s *Service) owned(sessionID string) (*session, error) {
	sess, err := s.active()
	if err != nil {
		return nil, err
	}
	if sessionID != "" && sess.info.ID != sessionID {
		return nil, ErrUnauthorized
	}
	return sess, nil
}

// Session returns the identity of the active session
func (s *Service) Session() (SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.active()
	if err != nil {
		return SessionInfo{}, err
	}
	return sess.info, nil
}

// Snapshot returns a copy of the active session's state
func (s *Service) Snapshot() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.active()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{SessionInfo: sess.info, State: sess.game.State(), Options: s.opts}, nil
}

// Options returns the rule options sessions are played under
func (s *Service) Options() game.Options {
	return s.opts
}

// Click applies a board click to the active session
func (s *Service) Click(sq core.Square) (game.Outcome, error) {
	return s.ClickAs("", sq)
}

// ClickAs applies a click only while sessionID is still the active session.
// An empty sessionID skips the ownership check.
func (s *Service) ClickAs(sessionID string, sq core.Square) (game.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.owned(sessionID)
	if err != nil {
		return game.OutcomeIgnored, err
	}

	mover := sess.game.Turn()
	out := sess.game.Click(sq)
	if out != game.OutcomeMoved {
		return out, nil
	}

	count := sess.game.MoveCount()
	if s.store != nil {
		last := sess.game.LastMove()
		s.store.RecordMove(storage.MoveRecord{
			SessionID:   sess.info.ID,
			MoveNumber:  count,
			MoveUCI:     last.String(),
			Piece:       string(board.Letter(sess.game.Board().At(last.To))),
			PlayerColor: mover.String(),
			BoardAfter:  sess.game.Board().FEN(),
			MoveTimeUTC: time.Now().UTC(),
		})
	}
	s.checkpoint()
	s.waiter.NotifySession(sess.info.ID, count)

	return out, nil
}

// Undo reverts the last move of the active session, reporting whether one existed
func (s *Service) Undo() (bool, error) {
	return s.UndoAs("")
}

// UndoAs is Undo scoped to sessionID, see ClickAs
func (s *Service) UndoAs(sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.owned(sessionID)
	if err != nil {
		return false, err
	}

	if !sess.game.Undo() {
		return false, nil
	}

	count := sess.game.MoveCount()
	if s.store != nil {
		s.store.DeleteUndoneMoves(sess.info.ID, count)
	}
	s.checkpoint()
	s.waiter.NotifySession(sess.info.ID, count)

	return true, nil
}

// PossibleMoves returns the legal destinations from sq, never nil
func (s *Service) PossibleMoves(sq core.Square) ([]core.Square, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.active()
	if err != nil {
		return nil, err
	}

	moves := sess.game.PossibleMoves(sq)
	if moves == nil {
		moves = []core.Square{}
	}
	return moves, nil
}

// RegisterWait returns a channel that fires once the history length differs
// from moveCount. It fires immediately if it already does.
func (s *Service) RegisterWait(ctx context.Context, moveCount int) (<-chan struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.active()
	if err != nil {
		return nil, err
	}

	if sess.game.MoveCount() != moveCount {
		ready := make(chan struct{}, 1)
		ready <- struct{}{}
		return ready, nil
	}
	return s.waiter.RegisterWait(ctx, sess.info.ID, moveCount), nil
}

// checkpoint saves the active session. Caller holds mu.
func (s *Service) checkpoint() {
	if s.checkpoints == nil || s.current == nil {
		return
	}
	err := s.checkpoints.Save(checkpoint.Record{
		SessionID: s.current.info.ID,
		Label:     s.current.info.Label,
		State:     s.current.game.State(),
	})
	if err != nil {
		log.Printf("Checkpoint failed: %v", err)
	}
}

// AuthEnabled reports whether mutating calls require a session token
func (s *Service) AuthEnabled() bool {
	return len(s.tokenSecret) > 0
}

// IssueToken creates a bearer token bound to the given session
func (s *Service) IssueToken(info SessionInfo) (string, error) {
	if !s.AuthEnabled() {
		return "", ErrAuthDisabled
	}
	claims := map[string]any{
		"label": info.Label,
	}
	return auth.GenerateHS256Token(s.tokenSecret, info.ID, claims, s.tokenTTL)
}

// ValidateToken verifies a token and returns the session ID it was issued for
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	if !s.AuthEnabled() {
		return "", nil, ErrAuthDisabled
	}
	return auth.ValidateHS256Token(s.tokenSecret, token)
}

// Authorize checks that sessionID is the active session
func (s *Service) Authorize(sessionID string) error {
	info, err := s.Session()
	if err != nil {
		return err
	}
	if info.ID != sessionID {
		return ErrUnauthorized
	}
	return nil
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Shutdown releases waiters and closes persistence
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	if s.checkpoints != nil {
		if err := s.checkpoints.Close(); err != nil {
			errs = append(errs, fmt.Errorf("checkpoint close: %w", err))
		}
	}

	return errors.Join(errs...)
}
