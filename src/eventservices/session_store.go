package eventservices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
	"github.com/jiaming2012/spx-fair-value/src/utils"
)

// SessionStore persists estimates by trading day. Load returns an empty session when nothing
// was saved for date. Append adds one estimate to the session of its trading day atomically.
type SessionStore interface {
	Load(ctx context.Context, date string) (*eventmodels.Session, error)
	Save(ctx context.Context, session *eventmodels.Session) error
	Append(ctx context.Context, estimate *eventmodels.FairPriceEstimate) (*eventmodels.Session, error)
}

// FileSessionStore keeps one JSON file per trading day under <dir>/sessions.
type FileSessionStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func (s *FileSessionStore) path(date string) string {
	return filepath.Join(s.dir, "sessions", fmt.Sprintf("%s.json", date))
}

func (s *FileSessionStore) Load(ctx context.Context, date string) (*eventmodels.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := utils.ParseDate(date); err != nil {
		return nil, fmt.Errorf("FileSessionStore.Load: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(date)
}

func (s *FileSessionStore) load(date string) (*eventmodels.Session, error) {
	data, err := os.ReadFile(s.path(date))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return eventmodels.NewSession(date), nil
		}

		return nil, fmt.Errorf("FileSessionStore.Load: failed to read session %s: %w", date, err)
	}

	var session eventmodels.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("FileSessionStore.Load: failed to decode session %s: %w", date, err)
	}

	if session.Date != date {
		return nil, fmt.Errorf("FileSessionStore.Load: session file %s holds date %s", date, session.Date)
	}

	return &session, nil
}

func (s *FileSessionStore) Save(ctx context.Context, session *eventmodels.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if session == nil {
		return fmt.Errorf("FileSessionStore.Save: missing session")
	}

	if _, err := utils.ParseDate(session.Date); err != nil {
		return fmt.Errorf("FileSessionStore.Save: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(session)
}

func (s *FileSessionStore) save(session *eventmodels.Session) error {
	session.UpdatedAt = s.now()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("FileSessionStore.Save: failed to encode session %s: %w", session.Date, err)
	}

	path := s.path(session.Date)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("FileSessionStore.Save: failed to create sessions dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), session.Date+".*.tmp")
	if err != nil {
		return fmt.Errorf("FileSessionStore.Save: failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("FileSessionStore.Save: failed to write session %s: %w", session.Date, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("FileSessionStore.Save: failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("FileSessionStore.Save: failed to rename session file: %w", err)
	}

	log.Debugf("FileSessionStore: saved %d estimates to %s", len(session.Estimates), path)

	return nil
}

// Append adds estimate to the session of its trading day. An estimate with the same ID replaces
// the stored one.
func (s *FileSessionStore) Append(ctx context.Context, estimate *eventmodels.FairPriceEstimate) (*eventmodels.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	date, err := tradingDate(estimate)
	if err != nil {
		return nil, fmt.Errorf("FileSessionStore.Append: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load(date)
	if err != nil {
		return nil, fmt.Errorf("FileSessionStore.Append: %w", err)
	}

	replaced := false
	for i, e := range session.Estimates {
		if e.ID == estimate.ID {
			session.Estimates[i] = estimate
			replaced = true
			break
		}
	}

	if !replaced {
		session.Estimates = append(session.Estimates, estimate)
	}

	if err := s.save(session); err != nil {
		return nil, fmt.Errorf("FileSessionStore.Append: %w", err)
	}

	return session, nil
}

func NewFileSessionStore(dir string) *FileSessionStore {
	return &FileSessionStore{
		dir: dir,
		now: time.Now,
	}
}

func tradingDate(estimate *eventmodels.FairPriceEstimate) (string, error) {
	if estimate == nil {
		return "", fmt.Errorf("missing estimate")
	}

	return utils.TradingDate(estimate.Timestamp)
}
