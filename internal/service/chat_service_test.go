package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatdesk/internal/delivery"
	app_errors "chatdesk/internal/errors"
	"chatdesk/internal/kv"
	"chatdesk/internal/model"
	"chatdesk/internal/repository"
	"chatdesk/internal/repository/mocks"
	"chatdesk/internal/service"
)

// fakeDeliverer replays a fixed event script and records the request it was
// given.
type fakeDeliverer struct {
	events  []delivery.Event
	lastReq *delivery.Request
	tenant  delivery.TenantConfig
}

func (f *fakeDeliverer) Send(_ context.Context, req *delivery.Request, tenant delivery.TenantConfig) <-chan delivery.Event {
	f.lastReq = req
	f.tenant = tenant
	ch := make(chan delivery.Event, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch
}

func openSession(id, groupID string) *model.Session {
	now := time.Now().UTC()
	return &model.Session{
		ID: id, GroupID: groupID, UserID: "u1",
		Title: "Support chat", Status: model.SessionOpen,
		CreatedAt: now, UpdatedAt: now,
	}
}

func collectEvents(ch chan delivery.Event) []delivery.Event {
	var events []delivery.Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestChatService_CreateSession(t *testing.T) {
	repoMock := mocks.NewMockRepository(t)
	svc := service.NewChatService(repoMock, &fakeDeliverer{}, nil, kv.NewMemoryStore())

	var saved *model.Session
	repoMock.On("CreateSession", mock.Anything, mock.AnythingOfType("*model.Session")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*model.Session) }).
		Return(nil)

	session, err := svc.CreateSession(context.Background(), &service.CreateSessionRequest{GroupID: "g1", UserID: "u1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, model.SessionOpen, session.Status)
	assert.Equal(t, "New conversation", session.Title)
	assert.Equal(t, saved.ID, session.ID)
}

func TestChatService_ListSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("Cache hit skips the database", func(t *testing.T) {
		repoMock := mocks.NewMockRepository(t)
		cache := kv.NewMemoryStore()
		cached, _ := json.Marshal([]*model.Session{openSession("s1", "g1")})
		require.NoError(t, cache.Set(ctx, kv.Key("sessions", "g1"), string(cached)))

		svc := service.NewChatService(repoMock, &fakeDeliverer{}, nil, cache)
		sessions, err := svc.ListSessions(ctx, "g1")
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "s1", sessions[0].ID)
		repoMock.AssertNotCalled(t, "GetSessions", mock.Anything, mock.Anything)
	})

	t.Run("Cache miss loads and populates", func(t *testing.T) {
		repoMock := mocks.NewMockRepository(t)
		cache := kv.NewMemoryStore()
		repoMock.On("GetSessions", mock.Anything, "g1").
			Return([]*model.Session{openSession("s1", "g1")}, nil)

		svc := service.NewChatService(repoMock, &fakeDeliverer{}, nil, cache)
		sessions, err := svc.ListSessions(ctx, "g1")
		require.NoError(t, err)
		require.Len(t, sessions, 1)

		// Second call must come from the cache.
		again, err := svc.ListSessions(ctx, "g1")
		require.NoError(t, err)
		require.Len(t, again, 1)
		repoMock.AssertNumberOfCalls(t, "GetSessions", 1)
	})
}

func TestChatService_GetFullSession(t *testing.T) {
	repoMock := mocks.NewMockRepository(t)
	svc := service.NewChatService(repoMock, &fakeDeliverer{}, nil, kv.NewMemoryStore())

	repoMock.On("GetSession", mock.Anything, "s1").Return(openSession("s1", "g1"), nil)
	repoMock.On("GetMessagesBySessionID", mock.Anything, "s1").Return([]model.Message{
		{ID: "m1", SessionID: "s1", Role: "user", Content: "hi"},
		{ID: "m2", SessionID: "s1", Role: "assistant", Content: "hello"},
	}, nil)
	repoMock.On("GetCitationsByMessageID", mock.Anything, "m2").Return([]model.Citation{
		{ID: "m2-c0", Title: "Doc"},
	}, nil)

	full, err := svc.GetFullSession(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, full.Messages, 2)
	assert.Nil(t, full.Messages[0].Citations)
	require.Len(t, full.Messages[1].Citations, 1)
	assert.Equal(t, "m2-c0", full.Messages[1].Citations[0].ID)
}

func TestChatService_GetFullSession_NotFound(t *testing.T) {
	repoMock := mocks.NewMockRepository(t)
	svc := service.NewChatService(repoMock, &fakeDeliverer{}, nil, kv.NewMemoryStore())
	repoMock.On("GetSession", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	_, err := svc.GetFullSession(context.Background(), "missing")
	assert.ErrorIs(t, err, app_errors.ErrNotFound)
}

func TestChatService_UpdateSessionTitle(t *testing.T) {
	t.Run("Empty title is rejected", func(t *testing.T) {
		repoMock := mocks.NewMockRepository(t)
		svc := service.NewChatService(repoMock, &fakeDeliverer{}, nil, kv.NewMemoryStore())

		err := svc.UpdateSessionTitle(context.Background(), "s1", "")
		assert.ErrorIs(t, err, app_errors.ErrValidation)
		repoMock.AssertNotCalled(t, "UpdateSessionTitle", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success invalidates the group cache", func(t *testing.T) {
		ctx := context.Background()
		repoMock := mocks.NewMockRepository(t)
		cache := kv.NewMemoryStore()
		require.NoError(t, cache.Set(ctx, kv.Key("sessions", "g1"), "[]"))

		repoMock.On("UpdateSessionTitle", mock.Anything, "s1", "Renamed").Return(nil)
		repoMock.On("GetSession", mock.Anything, "s1").Return(openSession("s1", "g1"), nil)

		svc := service.NewChatService(repoMock, &fakeDeliverer{}, nil, cache)
		require.NoError(t, svc.UpdateSessionTitle(ctx, "s1", "Renamed"))

		_, err := cache.Get(ctx, kv.Key("sessions", "g1"))
		assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	})
}

func TestChatService_HandleSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Persists assistant turn under the final event id", func(t *testing.T) {
		repoMock := mocks.NewMockRepository(t)
		deliverer := &fakeDeliverer{events: []delivery.Event{
			{Kind: delivery.EventDelta, Text: "Hello "},
			{Kind: delivery.EventDelta, Text: "there"},
			{Kind: delivery.EventFinal, MessageID: "stable-1", Citations: []model.Citation{{ID: "stable-1-c0", Title: "Doc"}}},
		}}
		svc := service.NewChatService(repoMock, deliverer, nil, kv.NewMemoryStore())

		repoMock.On("GetSession", mock.Anything, "s1").Return(openSession("s1", "g1"), nil)
		repoMock.On("AddMessage", mock.Anything, mock.MatchedBy(func(m *model.Message) bool {
			return m.Role == "user" && m.Content == "hi there"
		})).Return(nil).Once()
		repoMock.On("AddMessage", mock.Anything, mock.MatchedBy(func(m *model.Message) bool {
			return m.Role == "assistant" && m.ID == "stable-1" && m.Content == "Hello there"
		})).Return(nil).Once()
		repoMock.On("AddCitations", mock.Anything, "stable-1", mock.AnythingOfType("[]model.Citation")).Return(nil)
		repoMock.On("UpdateSessionLastMessage", mock.Anything, "s1", "Hello there").Return(nil)

		streamChan := make(chan delivery.Event, 8)
		svc.HandleSendMessage(ctx, &service.SendMessageRequest{SessionID: "s1", UserID: "u1", Content: "hi there"}, streamChan)

		events := collectEvents(streamChan)
		require.Len(t, events, 3)
		assert.Equal(t, delivery.EventFinal, events[2].Kind)
		assert.NotEmpty(t, deliverer.lastReq.ChatID)
	})

	t.Run("Closed session emits a conflict and persists nothing", func(t *testing.T) {
		repoMock := mocks.NewMockRepository(t)
		svc := service.NewChatService(repoMock, &fakeDeliverer{}, nil, kv.NewMemoryStore())

		closed := openSession("s1", "g1")
		closed.Status = model.SessionClosed
		repoMock.On("GetSession", mock.Anything, "s1").Return(closed, nil)

		streamChan := make(chan delivery.Event, 2)
		svc.HandleSendMessage(ctx, &service.SendMessageRequest{SessionID: "s1", Content: "hi"}, streamChan)

		events := collectEvents(streamChan)
		require.Len(t, events, 1)
		assert.Equal(t, delivery.EventError, events[0].Kind)
		assert.Contains(t, events[0].Message, "closed")
		repoMock.AssertNotCalled(t, "AddMessage", mock.Anything, mock.Anything)
	})

	t.Run("Error stream leaves no assistant row", func(t *testing.T) {
		repoMock := mocks.NewMockRepository(t)
		deliverer := &fakeDeliverer{events: []delivery.Event{
			{Kind: delivery.EventDelta, Text: "partial"},
			{Kind: delivery.EventError, Message: "delivery unavailable: boom"},
		}}
		svc := service.NewChatService(repoMock, deliverer, nil, kv.NewMemoryStore())

		repoMock.On("GetSession", mock.Anything, "s1").Return(openSession("s1", "g1"), nil)
		repoMock.On("AddMessage", mock.Anything, mock.MatchedBy(func(m *model.Message) bool {
			return m.Role == "user"
		})).Return(nil).Once()

		streamChan := make(chan delivery.Event, 4)
		svc.HandleSendMessage(ctx, &service.SendMessageRequest{SessionID: "s1", Content: "hi"}, streamChan)

		events := collectEvents(streamChan)
		require.Len(t, events, 2)
		assert.Equal(t, delivery.EventError, events[1].Kind)
		repoMock.AssertNotCalled(t, "AddCitations", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Empty session id creates one titled from the content", func(t *testing.T) {
		repoMock := mocks.NewMockRepository(t)
		deliverer := &fakeDeliverer{events: []delivery.Event{
			{Kind: delivery.EventFinal, MessageID: "stable-2", Text: "ok"},
		}}
		svc := service.NewChatService(repoMock, deliverer, nil, kv.NewMemoryStore())

		var created *model.Session
		repoMock.On("CreateSession", mock.Anything, mock.AnythingOfType("*model.Session")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*model.Session) }).
			Return(nil)
		repoMock.On("AddMessage", mock.Anything, mock.Anything).Return(nil)
		repoMock.On("AddCitations", mock.Anything, "stable-2", mock.Anything).Return(nil)
		repoMock.On("UpdateSessionLastMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		streamChan := make(chan delivery.Event, 4)
		svc.HandleSendMessage(ctx, &service.SendMessageRequest{GroupID: "g1", UserID: "u1", Content: "What are your opening hours?"}, streamChan)
		collectEvents(streamChan)

		require.NotNil(t, created)
		assert.Equal(t, "g1", created.GroupID)
		assert.Equal(t, "What are your opening hours?", created.Title)
	})

	t.Run("Tenant overrides reach the pipeline", func(t *testing.T) {
		repoMock := mocks.NewMockRepository(t)
		deliverer := &fakeDeliverer{events: []delivery.Event{
			{Kind: delivery.EventFinal, MessageID: "stable-3"},
		}}
		tenants := service.NewTenantService(repoMock, kv.NewMemoryStore())
		svc := service.NewChatService(repoMock, deliverer, tenants, kv.NewMemoryStore())

		repoMock.On("GetSession", mock.Anything, "s1").Return(openSession("s1", "g1"), nil)
		repoMock.On("GetTenantSettings", mock.Anything, "g1").Return(&model.TenantSettings{
			GroupID:           "g1",
			WebhookURL:        "https://hooks.example/g1",
			SimulationEnabled: true,
		}, nil)
		repoMock.On("AddMessage", mock.Anything, mock.Anything).Return(nil)
		repoMock.On("AddCitations", mock.Anything, "stable-3", mock.Anything).Return(nil)
		repoMock.On("UpdateSessionLastMessage", mock.Anything, "s1", mock.Anything).Return(nil)

		streamChan := make(chan delivery.Event, 2)
		svc.HandleSendMessage(ctx, &service.SendMessageRequest{SessionID: "s1", Content: "hi"}, streamChan)
		collectEvents(streamChan)

		assert.Equal(t, "https://hooks.example/g1", deliverer.tenant.WebhookURL)
		assert.True(t, deliverer.tenant.SimulationEnabled)
	})
}

func TestChatService_DeleteSession(t *testing.T) {
	repoMock := mocks.NewMockRepository(t)
	svc := service.NewChatService(repoMock, &fakeDeliverer{}, nil, kv.NewMemoryStore())

	repoMock.On("GetSession", mock.Anything, "s1").Return(openSession("s1", "g1"), nil)
	repoMock.On("DeleteSession", mock.Anything, "s1").Return(nil)

	assert.NoError(t, svc.DeleteSession(context.Background(), "s1"))
}

func TestChatService_StatusTransitions(t *testing.T) {
	repoMock := mocks.NewMockRepository(t)
	svc := service.NewChatService(repoMock, &fakeDeliverer{}, nil, kv.NewMemoryStore())

	repoMock.On("UpdateSessionStatus", mock.Anything, "s1", model.SessionClosed).Return(nil)
	repoMock.On("UpdateSessionStatus", mock.Anything, "s1", model.SessionOpen).Return(nil)
	repoMock.On("UpdateSessionStatus", mock.Anything, "s1", model.SessionArchived).Return(nil)
	repoMock.On("UpdateSessionStatus", mock.Anything, "missing", mock.Anything).Return(repository.ErrNotFound)
	repoMock.On("GetSession", mock.Anything, "s1").Return(openSession("s1", "g1"), nil)

	ctx := context.Background()
	assert.NoError(t, svc.CloseSession(ctx, "s1"))
	assert.NoError(t, svc.ReopenSession(ctx, "s1"))
	assert.NoError(t, svc.ArchiveSession(ctx, "s1"))
	assert.ErrorIs(t, svc.CloseSession(ctx, "missing"), app_errors.ErrNotFound)
}
