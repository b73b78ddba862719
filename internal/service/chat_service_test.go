package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/Freeeeeet/moments_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChatStore struct {
	upserted     []*model.Chat
	settings     map[int64][4]int
	active       map[int64]bool
	memberCounts map[int64]int
	byID         map[int64]*model.Chat
	updateSetErr error
	upsertErr    error
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{
		settings:     make(map[int64][4]int),
		active:       make(map[int64]bool),
		memberCounts: make(map[int64]int),
		byID:         make(map[int64]*model.Chat),
	}
}

func (f *fakeChatStore) Upsert(_ context.Context, chat *model.Chat) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, chat)
	f.byID[chat.ID] = chat
	return nil
}

func (f *fakeChatStore) GetByID(_ context.Context, chatID int64) (*model.Chat, error) {
	return f.byID[chatID], nil
}

func (f *fakeChatStore) UpdateSettings(_ context.Context, chatID int64, perDay int, window model.TimeRange, minutesTakePhoto int) error {
	if f.updateSetErr != nil {
		return f.updateSetErr
	}
	f.settings[chatID] = [4]int{perDay, window.From, window.To, minutesTakePhoto}
	return nil
}

func (f *fakeChatStore) SetActive(_ context.Context, chatID int64, active bool) error {
	f.active[chatID] = active
	return nil
}

func (f *fakeChatStore) UpdateMemberCount(_ context.Context, chatID int64, memberCount int) error {
	f.memberCounts[chatID] = memberCount
	return nil
}

type generateCall struct {
	chatID int64
	perDay int
	window model.TimeRange
	force  bool
}

type fakeScheduleGenerator struct {
	calls []generateCall
	err   error
}

func (f *fakeScheduleGenerator) GenerateForChat(_ context.Context, chatID int64, perDay int, window model.TimeRange, forceImmediateStart bool) (int, error) {
	f.calls = append(f.calls, generateCall{chatID: chatID, perDay: perDay, window: window, force: forceImmediateStart})
	if f.err != nil {
		return 0, f.err
	}
	return perDay, nil
}

func TestRegisterChat_AppliesDefaultsAndGenerates(t *testing.T) {
	store := newFakeChatStore()
	gen := &fakeScheduleGenerator{}
	svc := NewChatService(store, gen, zap.NewNop())

	err := svc.RegisterChat(context.Background(), &model.Chat{
		ID:    123456,
		Type:  model.ChatTypeGroup,
		Title: "Family",
	})
	require.NoError(t, err)

	require.Len(t, store.upserted, 1)
	chat := store.upserted[0]
	assert.Equal(t, int64(-123456), chat.ID)
	assert.Equal(t, model.DefaultNotificationsPerDay, chat.NotificationsPerDay)
	assert.Equal(t, model.DefaultWindowFrom, chat.NotificationRange.From)
	assert.Equal(t, model.DefaultWindowTo, chat.NotificationRange.To)
	assert.Equal(t, model.DefaultMinutesTakePhoto, chat.MinutesTakePhoto)

	// Расписание на остаток дня создаётся сразу и с отступом от "сейчас"
	require.Len(t, gen.calls, 1)
	assert.Equal(t, int64(-123456), gen.calls[0].chatID)
	assert.True(t, gen.calls[0].force)
}

func TestRegisterChat_GenerationFailureDoesNotFailRegistration(t *testing.T) {
	store := newFakeChatStore()
	gen := &fakeScheduleGenerator{err: fmt.Errorf("storage unavailable")}
	svc := NewChatService(store, gen, zap.NewNop())

	err := svc.RegisterChat(context.Background(), &model.Chat{ID: -5, Type: model.ChatTypeGroup})
	assert.NoError(t, err)
	assert.Len(t, store.upserted, 1)
}

func TestUpdateSettings_Valid(t *testing.T) {
	store := newFakeChatStore()
	gen := &fakeScheduleGenerator{}
	svc := NewChatService(store, gen, zap.NewNop())

	err := svc.UpdateSettings(context.Background(), 123, 2, model.TimeRange{From: 8, To: 22}, 30)
	require.NoError(t, err)

	assert.Equal(t, [4]int{2, 8, 22, 30}, store.settings[-123])

	require.Len(t, gen.calls, 1)
	assert.Equal(t, generateCall{chatID: -123, perDay: 2, window: model.TimeRange{From: 8, To: 22}, force: true}, gen.calls[0])
}

func TestUpdateSettings_Validation(t *testing.T) {
	tests := []struct {
		name    string
		perDay  int
		window  model.TimeRange
		minutes int
	}{
		{"per day too low", 0, model.TimeRange{From: 9, To: 21}, 15},
		{"per day too high", 4, model.TimeRange{From: 9, To: 21}, 15},
		{"from negative", 1, model.TimeRange{From: -1, To: 21}, 15},
		{"from above 23", 1, model.TimeRange{From: 24, To: 21}, 15},
		{"to negative", 1, model.TimeRange{From: 9, To: -1}, 15},
		{"to above 23", 1, model.TimeRange{From: 9, To: 24}, 15},
		{"from equals to", 1, model.TimeRange{From: 9, To: 9}, 15},
		{"from after to", 1, model.TimeRange{From: 21, To: 9}, 15},
		{"minutes too low", 1, model.TimeRange{From: 9, To: 21}, 0},
		{"minutes too high", 1, model.TimeRange{From: 9, To: 21}, 121},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeChatStore()
			gen := &fakeScheduleGenerator{}
			svc := NewChatService(store, gen, zap.NewNop())

			err := svc.UpdateSettings(context.Background(), 123, tt.perDay, tt.window, tt.minutes)
			assert.Error(t, err)
			assert.Empty(t, store.settings)
			assert.Empty(t, gen.calls)
		})
	}
}

func TestUpdateSettings_RegenerationFailureIsNotFatal(t *testing.T) {
	store := newFakeChatStore()
	gen := &fakeScheduleGenerator{err: fmt.Errorf("storage unavailable")}
	svc := NewChatService(store, gen, zap.NewNop())

	err := svc.UpdateSettings(context.Background(), 123, 1, model.TimeRange{From: 9, To: 21}, 15)
	assert.NoError(t, err)
	assert.Equal(t, [4]int{1, 9, 21, 15}, store.settings[-123])
}

func TestGetChat_NormalizesID(t *testing.T) {
	store := newFakeChatStore()
	store.byID[-777] = &model.Chat{ID: -777, Title: "Friends"}
	svc := NewChatService(store, &fakeScheduleGenerator{}, zap.NewNop())

	chat, err := svc.GetChat(context.Background(), 777)
	require.NoError(t, err)
	require.NotNil(t, chat)
	assert.Equal(t, "Friends", chat.Title)
}

func TestDeactivateChat(t *testing.T) {
	store := newFakeChatStore()
	svc := NewChatService(store, &fakeScheduleGenerator{}, zap.NewNop())

	err := svc.DeactivateChat(context.Background(), 123)
	require.NoError(t, err)
	assert.False(t, store.active[-123])

	active, ok := store.active[-123]
	require.True(t, ok)
	assert.False(t, active)
}
