package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wanamsabukid860/wanam-sa-bukid-booking/models"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/utils"
	"gorm.io/gorm"
)

// Session actions
const (
	SessionActionPause  = "pause"
	SessionActionResume = "resume"
	SessionActionStop   = "stop"
)

const (
	// DefaultSessionMinutes is the ordering window granted when the
	// request does not specify a duration.
	DefaultSessionMinutes = 30
	// ResetWindowMinutes is the window granted by a manual reset,
	// regardless of the session's original duration.
	ResetWindowMinutes = 30
	// MaxSaneDurationMinutes is the longest stored duration the repair
	// sweep considers legitimate.
	MaxSaneDurationMinutes = 120
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFinished = errors.New("session already finished")
)

// ValidationError reports malformed session input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidActionError reports an unrecognized session action token.
type InvalidActionError struct {
	Action string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid session action %q", e.Action)
}

// StoreUnavailableError wraps a persistence failure. It is the only error
// class callers may treat as transient.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return "session store unavailable: " + e.Err.Error()
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// SessionService owns the lifecycle of table ordering sessions. All time
// arithmetic for session boundaries happens here, in the application clock,
// and is persisted as absolute timestamps. The service never recomputes a
// deadline with SQL date functions, so application and database time zones
// cannot disagree about when a session ends.
//
// Mutations on the same session are serialized with a per-session mutex;
// the database rows themselves stay last-write-wins.
type SessionService struct {
	db *gorm.DB

	// freezeOnPause switches the pause semantics. The legacy behavior
	// (false) leaves end_time untouched while paused, so the wall-clock
	// deadline keeps approaching. When true, pausing records the pause
	// instant and resuming pushes end_time forward by the paused span.
	freezeOnPause bool

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewSessionService(db *gorm.DB, freezeOnPause bool) *SessionService {
	return &SessionService{
		db:            db,
		freezeOnPause: freezeOnPause,
		locks:         make(map[string]*sync.Mutex),
	}
}

// Ping reports whether the backing store is reachable.
func (s *SessionService) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return &StoreUnavailableError{Err: err}
	}
	if err := sqlDB.Ping(); err != nil {
		return &StoreUnavailableError{Err: err}
	}
	return nil
}

// CreateSession opens a new ordering window for a table. durationMinutes <= 0
// means "use the default". Returns the persisted session with its computed
// absolute end time.
func (s *SessionService) CreateSession(tableNumber, durationMinutes int) (*models.OrderSession, error) {
	if tableNumber <= 0 {
		return nil, &ValidationError{Field: "table_number", Reason: "must be a positive integer"}
	}
	if durationMinutes < 0 {
		return nil, &ValidationError{Field: "duration_minutes", Reason: "must not be negative"}
	}
	if durationMinutes == 0 {
		durationMinutes = DefaultSessionMinutes
	}

	startTime := time.Now()
	endTime := startTime.Add(time.Duration(durationMinutes) * time.Minute)

	session := models.OrderSession{
		SessionID:   utils.NewSessionID(),
		TableNumber: tableNumber,
		StartTime:   startTime,
		EndTime:     endTime,
		IsPaused:    false,
		IsFinished:  false,
	}

	if err := s.db.Create(&session).Error; err != nil {
		return nil, &StoreUnavailableError{Err: err}
	}

	utils.InfoLogger.Printf("Session %s created for table %d (%d minutes, ends %s)",
		session.SessionID, tableNumber, durationMinutes, endTime.Format(time.RFC3339))

	return &session, nil
}

// ApplyAction performs pause/resume/stop on a session. Unknown actions fail
// before any row is touched; finished sessions reject every action.
func (s *SessionService) ApplyAction(sessionID, action string) (*models.OrderSession, error) {
	if action != SessionActionPause && action != SessionActionResume && action != SessionActionStop {
		return nil, &InvalidActionError{Action: action}
	}

	unlock := s.lockSession(sessionID)
	defer unlock()

	session, err := s.fetchSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsFinished {
		return nil, ErrSessionFinished
	}

	now := time.Now()
	updates := map[string]interface{}{}

	switch action {
	case SessionActionPause:
		updates["is_paused"] = true
		if s.freezeOnPause && !session.IsPaused {
			updates["paused_at"] = now
			session.PausedAt = &now
		}
		session.IsPaused = true

	case SessionActionResume:
		updates["is_paused"] = false
		if s.freezeOnPause && session.PausedAt != nil {
			newEnd := session.EndTime.Add(now.Sub(*session.PausedAt))
			updates["end_time"] = newEnd
			updates["paused_at"] = nil
			session.EndTime = newEnd
			session.PausedAt = nil
		}
		session.IsPaused = false

	case SessionActionStop:
		updates["is_finished"] = true
		updates["paused_at"] = nil
		session.IsFinished = true
		session.PausedAt = nil
	}

	if err := s.db.Model(&models.OrderSession{}).
		Where("session_id = ?", sessionID).
		Updates(updates).Error; err != nil {
		return nil, &StoreUnavailableError{Err: err}
	}

	utils.InfoLogger.Printf("Session %s: %s applied", sessionID, action)
	return session, nil
}

// ResetSession gives the session a fresh fixed-size window starting now and
// clears any pause. It is the manual recovery action for timers that staff
// perceive as stuck.
func (s *SessionService) ResetSession(sessionID string) (*models.OrderSession, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	session, err := s.fetchSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsFinished {
		return nil, ErrSessionFinished
	}

	newEndTime := time.Now().Add(ResetWindowMinutes * time.Minute)

	if err := s.db.Model(&models.OrderSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"end_time":  newEndTime,
			"is_paused": false,
			"paused_at": nil,
		}).Error; err != nil {
		return nil, &StoreUnavailableError{Err: err}
	}

	session.EndTime = newEndTime
	session.IsPaused = false
	session.PausedAt = nil

	utils.InfoLogger.Printf("Session %s reset, new end time %s",
		sessionID, newEndTime.Format(time.RFC3339))
	return session, nil
}

// GetSession is a pure read; it never mutates the row.
func (s *SessionService) GetSession(sessionID string) (*models.OrderSession, error) {
	return s.fetchSession(sessionID)
}

// RepairBrokenSessions rewrites every session whose stored window exceeds the
// sane maximum back to the standard window. Historical bug class: sessions
// created with multi-hour end times that left table timers counting 500+
// minutes. Idempotent; a second sweep with no new sessions repairs nothing.
func (s *SessionService) RepairBrokenSessions() (int64, error) {
	var broken []models.OrderSession
	maxSane := time.Duration(MaxSaneDurationMinutes) * time.Minute

	if err := s.db.Find(&broken).Error; err != nil {
		return 0, &StoreUnavailableError{Err: err}
	}

	var fixed int64
	for _, session := range broken {
		if session.EndTime.Sub(session.StartTime) <= maxSane {
			continue
		}

		// Recompute in the application, from the stored absolute start
		// time, so the repaired deadline is driver- and zone-independent.
		repairedEnd := session.StartTime.Add(DefaultSessionMinutes * time.Minute)
		if err := s.db.Model(&models.OrderSession{}).
			Where("session_id = ?", session.SessionID).
			Update("end_time", repairedEnd).Error; err != nil {
			return fixed, &StoreUnavailableError{Err: err}
		}
		fixed++
	}

	if fixed > 0 {
		utils.InfoLogger.Printf("Repaired %d broken sessions", fixed)
	}
	return fixed, nil
}

func (s *SessionService) fetchSession(sessionID string) (*models.OrderSession, error) {
	var session models.OrderSession
	if err := s.db.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, &StoreUnavailableError{Err: err}
	}
	return &session, nil
}

// lockSession serializes mutations on one session id within this process.
// Lock entries are never reclaimed; the session space is bounded by the
// number of physical tables times seatings per day.
func (s *SessionService) lockSession(sessionID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}
