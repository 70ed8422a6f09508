package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wanamsabukid860/wanam-sa-bukid-booking/models"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/utils"
)

func setupSessionTestDB(t *testing.T) *gorm.DB {
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.OrderSession{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestCreateSessionDefaultDuration(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)

	session, err := svc.CreateSession(5, 0)
	assert.NoError(t, err)
	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, 5, session.TableNumber)
	assert.False(t, session.IsPaused)
	assert.False(t, session.IsFinished)

	// default window is exactly 30 minutes from the start time
	assert.WithinDuration(t, session.StartTime.Add(30*time.Minute), session.EndTime, time.Second)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), session.EndTime, 5*time.Second)
}

func TestCreateSessionCustomDuration(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)

	session, err := svc.CreateSession(3, 45)
	assert.NoError(t, err)
	assert.WithinDuration(t, session.StartTime.Add(45*time.Minute), session.EndTime, time.Second)
}

func TestCreateSessionValidation(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)

	_, err := svc.CreateSession(0, 30)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.CreateSession(-2, 30)
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.CreateSession(4, -10)
	assert.ErrorAs(t, err, &validationErr)
}

func TestSessionIDsAreUnique(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := svc.CreateSession(1, 30)
		assert.NoError(t, err)
		assert.False(t, seen[session.SessionID], "duplicate session id %s", session.SessionID)
		seen[session.SessionID] = true
	}
}

func TestApplyActionLifecycle(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)

	created, err := svc.CreateSession(5, 0)
	assert.NoError(t, err)

	// pause: flag set, end time untouched (literal legacy semantics)
	paused, err := svc.ApplyAction(created.SessionID, SessionActionPause)
	assert.NoError(t, err)
	assert.True(t, paused.IsPaused)

	stored, err := svc.GetSession(created.SessionID)
	assert.NoError(t, err)
	assert.True(t, stored.IsPaused)
	assert.WithinDuration(t, created.EndTime, stored.EndTime, time.Second)

	// resume
	resumed, err := svc.ApplyAction(created.SessionID, SessionActionResume)
	assert.NoError(t, err)
	assert.False(t, resumed.IsPaused)

	// stop is terminal
	stopped, err := svc.ApplyAction(created.SessionID, SessionActionStop)
	assert.NoError(t, err)
	assert.True(t, stopped.IsFinished)

	_, err = svc.ApplyAction(created.SessionID, SessionActionPause)
	assert.ErrorIs(t, err, ErrSessionFinished)
	_, err = svc.ApplyAction(created.SessionID, SessionActionResume)
	assert.ErrorIs(t, err, ErrSessionFinished)
	_, err = svc.ResetSession(created.SessionID)
	assert.ErrorIs(t, err, ErrSessionFinished)

	stored, err = svc.GetSession(created.SessionID)
	assert.NoError(t, err)
	assert.True(t, stored.IsFinished)
}

func TestApplyActionUnknownToken(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)

	created, err := svc.CreateSession(2, 0)
	assert.NoError(t, err)

	_, err = svc.ApplyAction(created.SessionID, "explode")
	var actionErr *InvalidActionError
	assert.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "explode", actionErr.Action)

	// no mutation happened
	stored, err := svc.GetSession(created.SessionID)
	assert.NoError(t, err)
	assert.False(t, stored.IsPaused)
	assert.False(t, stored.IsFinished)
}

func TestApplyActionNotFound(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)

	_, err := svc.ApplyAction("SESS-DOESNOTEXIST", SessionActionPause)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSessionNotFound(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)

	session, err := svc.GetSession("SESS-MISSING")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, session)
}

func TestResetSessionGivesFixedWindow(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)

	// a long session, paused, still resets to 30 minutes from now
	created, err := svc.CreateSession(7, 90)
	assert.NoError(t, err)

	_, err = svc.ApplyAction(created.SessionID, SessionActionPause)
	assert.NoError(t, err)

	reset, err := svc.ResetSession(created.SessionID)
	assert.NoError(t, err)
	assert.False(t, reset.IsPaused)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), reset.EndTime, 5*time.Second)

	stored, err := svc.GetSession(created.SessionID)
	assert.NoError(t, err)
	assert.False(t, stored.IsPaused)
	assert.WithinDuration(t, reset.EndTime, stored.EndTime, time.Second)
}

func TestResetSessionNotFound(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)

	_, err := svc.ResetSession("SESS-MISSING")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRepairBrokenSessionsIsIdempotent(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)

	start := time.Now().Add(-10 * time.Minute)
	broken := models.OrderSession{
		SessionID:   "SESS-BROKEN180",
		TableNumber: 9,
		StartTime:   start,
		EndTime:     start.Add(180 * time.Minute),
	}
	assert.NoError(t, db.Create(&broken).Error)

	healthy, err := svc.CreateSession(4, 30)
	assert.NoError(t, err)

	fixed, err := svc.RepairBrokenSessions()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), fixed)

	repaired, err := svc.GetSession("SESS-BROKEN180")
	assert.NoError(t, err)
	assert.WithinDuration(t, start.Add(30*time.Minute), repaired.EndTime, time.Second)

	// healthy session untouched
	stored, err := svc.GetSession(healthy.SessionID)
	assert.NoError(t, err)
	assert.WithinDuration(t, healthy.EndTime, stored.EndTime, time.Second)

	// second sweep with no new sessions repairs nothing
	fixed, err = svc.RepairBrokenSessions()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), fixed)
}

func TestFreezeOnPauseExtendsDeadline(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, true)

	created, err := svc.CreateSession(6, 30)
	assert.NoError(t, err)
	originalEnd := created.EndTime

	_, err = svc.ApplyAction(created.SessionID, SessionActionPause)
	assert.NoError(t, err)

	// backdate the pause instant to simulate ten minutes on hold
	pausedAt := time.Now().Add(-10 * time.Minute)
	assert.NoError(t, db.Model(&models.OrderSession{}).
		Where("session_id = ?", created.SessionID).
		Update("paused_at", pausedAt).Error)

	resumed, err := svc.ApplyAction(created.SessionID, SessionActionResume)
	assert.NoError(t, err)
	assert.False(t, resumed.IsPaused)
	assert.WithinDuration(t, originalEnd.Add(10*time.Minute), resumed.EndTime, 5*time.Second)
}

func TestLiteralPauseKeepsDeadline(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)

	created, err := svc.CreateSession(6, 30)
	assert.NoError(t, err)

	_, err = svc.ApplyAction(created.SessionID, SessionActionPause)
	assert.NoError(t, err)
	_, err = svc.ApplyAction(created.SessionID, SessionActionResume)
	assert.NoError(t, err)

	stored, err := svc.GetSession(created.SessionID)
	assert.NoError(t, err)
	assert.WithinDuration(t, created.EndTime, stored.EndTime, time.Second)
}

func TestSessionIsActivePredicate(t *testing.T) {
	now := time.Now()
	session := models.OrderSession{
		StartTime: now,
		EndTime:   now.Add(30 * time.Minute),
	}

	assert.True(t, session.IsActive(now))
	assert.False(t, session.IsActive(now.Add(31*time.Minute)))

	session.IsFinished = true
	assert.False(t, session.IsActive(now))
	assert.Equal(t, time.Duration(0), session.RemainingAt(now))
}

func TestPing(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := NewSessionService(db, false)
	assert.NoError(t, svc.Ping())
}
