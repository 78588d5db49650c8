package service

import (
	"context"
	"errors"
	"testing"

	"mcq-bot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestSettingsService_DefaultsFromConfig(t *testing.T) {
	store := newTestStore(t)
	settings, err := store.settingsService().Get(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", settings.OwnerID)
	assert.Equal(t, "09:00", settings.DailyQuizTime)
	assert.Equal(t, domain.FrequencyDaily, settings.Frequency.Kind)
	assert.Equal(t, 2, settings.MinQuestions)
	assert.Equal(t, 4, settings.MaxQuestions)
	assert.Nil(t, settings.LastFiredAt)
}

func TestSettingsService_UpdatePersists(t *testing.T) {
	store := newTestStore(t)
	svc := store.settingsService()
	ctx := context.Background()

	updated, err := svc.Update(ctx, "alice", SettingsUpdate{
		DailyQuizTime: strPtr(" 18:30 "),
		Timezone:      strPtr("Europe/Berlin"),
		Frequency:     strPtr("weekdays:mon,wed,fri"),
		MaxQuestions:  intPtr(6),
	})
	require.NoError(t, err)
	assert.Equal(t, "18:30", updated.DailyQuizTime)

	stored, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "18:30", stored.DailyQuizTime)
	assert.Equal(t, "Europe/Berlin", stored.Timezone)
	assert.Equal(t, "weekdays:mon,wed,fri", stored.Frequency.String())
	assert.Equal(t, 2, stored.MinQuestions)
	assert.Equal(t, 6, stored.MaxQuestions)
}

func TestSettingsService_UpdateRejectsInvalidValues(t *testing.T) {
	store := newTestStore(t)
	svc := store.settingsService()
	ctx := context.Background()

	_, err := svc.Update(ctx, "alice", SettingsUpdate{
		DailyQuizTime: strPtr("25:00"),
		Frequency:     strPtr("sometimes"),
		MinQuestions:  intPtr(5),
		MaxQuestions:  intPtr(3),
	})
	require.Error(t, err)

	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, v := range verrs {
		fields = append(fields, v.Field)
	}
	assert.Contains(t, fields, "daily_quiz_time")
	assert.Contains(t, fields, "frequency")
	assert.Contains(t, fields, "max_questions")

	_, err = svc.Update(ctx, "alice", SettingsUpdate{MaxQuestions: intPtr(11)})
	assert.Error(t, err, "max_questions above the ceiling")

	stored, err := store.settings.GetSettings(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, stored, "rejected updates are not persisted")
}
