package service

import (
	"context"
	"testing"
	"time"

	"mcq-bot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func saveSettings(t *testing.T, store *testStore, owner, at, tz, freq string) {
	t.Helper()
	f, err := domain.ParseFrequency(freq)
	require.NoError(t, err)
	require.NoError(t, store.settings.UpsertSettings(context.Background(), &domain.UserSettings{
		OwnerID:            owner,
		DailyQuizTime:      at,
		Timezone:           tz,
		Frequency:          f,
		MinQuestions:       2,
		MaxQuestions:       4,
		DailyQuestionCount: 3,
	}))
}

func TestScheduler_FiresOncePerSlot(t *testing.T) {
	store := newTestStore(t)
	saveSettings(t, store, "alice", "09:00", "UTC", "daily")

	sessions := new(MockSessionManager)
	notifier := new(MockQuizNotifier)
	start := &QuizStart{Total: 3}
	sessions.On("Start", mock.Anything, "alice", 3).Return(start, nil).Once()
	notifier.On("NotifyQuizStarted", mock.Anything, "alice", start).Return(nil).Once()

	scheduler := NewScheduler(store.settings, sessions, notifier, 30*time.Second, 5*time.Minute, zap.NewNop())
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 8, 59, 30, 0, time.UTC)

	fired, err := scheduler.Tick(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, 0, fired, "before the slot")

	total := 0
	for i := 1; i <= 10; i++ {
		fired, err = scheduler.Tick(ctx, base.Add(time.Duration(i)*30*time.Second))
		require.NoError(t, err)
		total += fired
	}
	assert.Equal(t, 1, total)

	// next day fires again
	sessions.On("Start", mock.Anything, "alice", 3).Return(start, nil).Once()
	notifier.On("NotifyQuizStarted", mock.Anything, "alice", start).Return(nil).Once()
	fired, err = scheduler.Tick(ctx, base.Add(24*time.Hour+time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	sessions.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestScheduler_TwoSchedulersShareOneSlot(t *testing.T) {
	store := newTestStore(t)
	saveSettings(t, store, "alice", "09:00", "UTC", "daily")

	sessions := new(MockSessionManager)
	sessions.On("Start", mock.Anything, "alice", 3).Return(&QuizStart{Total: 3}, nil).Once()

	a := NewScheduler(store.settings, sessions, nil, time.Minute, 5*time.Minute, zap.NewNop())
	b := NewScheduler(store.settings, sessions, nil, time.Minute, 5*time.Minute, zap.NewNop())
	now := time.Date(2026, 3, 2, 9, 1, 0, 0, time.UTC)

	firedA, err := a.Tick(context.Background(), now)
	require.NoError(t, err)
	firedB, err := b.Tick(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, firedA+firedB)
	sessions.AssertExpectations(t)
}

func TestScheduler_SkipsActiveQuizAndEmptyBank(t *testing.T) {
	store := newTestStore(t)
	saveSettings(t, store, "alice", "09:00", "UTC", "daily")
	saveSettings(t, store, "bob", "09:00", "UTC", "daily")

	sessions := new(MockSessionManager)
	sessions.On("Start", mock.Anything, "alice", 3).Return(nil, domain.NewInvalidStateError("a quiz is already in progress")).Once()
	sessions.On("Start", mock.Anything, "bob", 3).Return(nil, domain.NewNotFoundError("question bank is empty")).Once()

	scheduler := NewScheduler(store.settings, sessions, nil, time.Minute, 5*time.Minute, zap.NewNop())
	now := time.Date(2026, 3, 2, 9, 2, 0, 0, time.UTC)

	fired, err := scheduler.Tick(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)

	// the slot is consumed even though nothing was delivered
	fired, err = scheduler.Tick(context.Background(), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
	sessions.AssertExpectations(t)
}

func TestScheduler_HonoursTimezoneAndFrequency(t *testing.T) {
	store := newTestStore(t)
	// 2026-03-02 is a Monday
	saveSettings(t, store, "tokyo", "09:00", "Asia/Tokyo", "daily")
	saveSettings(t, store, "weekend", "09:00", "UTC", "weekdays:sat,sun")

	sessions := new(MockSessionManager)
	sessions.On("Start", mock.Anything, "tokyo", 3).Return(&QuizStart{Total: 3}, nil).Once()

	scheduler := NewScheduler(store.settings, sessions, nil, time.Minute, 5*time.Minute, zap.NewNop())

	// 09:00 UTC is 18:00 in Tokyo, nobody is due
	fired, err := scheduler.Tick(context.Background(), time.Date(2026, 3, 2, 9, 1, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, fired)

	// 00:01 UTC is 09:01 in Tokyo
	fired, err = scheduler.Tick(context.Background(), time.Date(2026, 3, 3, 0, 1, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	sessions.AssertExpectations(t)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	scheduler := NewScheduler(store.settings, new(MockSessionManager), nil, 10*time.Millisecond, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}
