package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"hearth-chat-be/internal/model"
	"hearth-chat-be/internal/repository/contract"
	"hearth-chat-be/internal/repository/memory"
	"hearth-chat-be/internal/websocket"
	"hearth-chat-be/pkg/llm"
	"hearth-chat-be/pkg/llm/factory"
)

type nopLog struct{}

func (nopLog) Debug(string, string, map[string]interface{}) {}
func (nopLog) Info(string, string, map[string]interface{})  {}
func (nopLog) Warn(string, string, map[string]interface{})  {}
func (nopLog) Error(string, string, map[string]interface{}) {}
func (nopLog) Sync() error                                  { return nil }

type fakeMessageRepo struct {
	mu     sync.Mutex
	nextID uint
	rooms  map[uint]bool
	roomAI map[uint]*contract.RoomAISettings

	userMessages []*model.Message
	aiMessages   []*model.Message
}

func newFakeMessageRepo(roomIDs ...uint) *fakeMessageRepo {
	rooms := make(map[uint]bool)
	for _, id := range roomIDs {
		rooms[id] = true
	}
	return &fakeMessageRepo{rooms: rooms, roomAI: make(map[uint]*contract.RoomAISettings)}
}

func (f *fakeMessageRepo) SaveUserMessage(_ context.Context, params contract.SaveUserMessageParams) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.rooms[params.RoomID] {
		return nil, contract.ErrNoSuchRoom
	}
	f.nextID++
	msg := &model.Message{
		ID:         f.nextID,
		RoomID:     params.RoomID,
		SenderType: model.SenderTypeUser,
		UserID:     params.UserID,
		Username:   params.Username,
		Content:    params.Content,
		Emotion:    params.Emotion,
		ImageURLs:  params.ImageURLs,
		Timestamp:  time.Now(),
	}
	f.userMessages = append(f.userMessages, msg)
	return msg, nil
}

func (f *fakeMessageRepo) SaveAIMessage(_ context.Context, params contract.SaveAIMessageParams) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.rooms[params.RoomID] {
		return nil, contract.ErrNoSuchRoom
	}
	f.nextID++
	msg := &model.Message{
		ID:                f.nextID,
		RoomID:            params.RoomID,
		SenderType:        model.SenderTypeAI,
		AIName:            params.AIName,
		AIProvider:        params.AIProvider,
		Content:           params.Content,
		QuestionMessageID: params.QuestionMessageID,
		ImageURLs:         params.ImageURLs,
		Timestamp:         time.Now(),
	}
	f.aiMessages = append(f.aiMessages, msg)
	return msg, nil
}

func (f *fakeMessageRepo) GetRoomMessages(_ context.Context, roomID uint, offset, limit int) ([]*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*model.Message
	for _, m := range f.userMessages {
		if m.RoomID == roomID {
			all = append(all, m)
		}
	}
	for _, m := range f.aiMessages {
		if m.RoomID == roomID {
			all = append(all, m)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeMessageRepo) GetRoomAISettings(_ context.Context, roomID uint) (*contract.RoomAISettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roomAI[roomID], nil
}

func (f *fakeMessageRepo) lastAIMessage() *model.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.aiMessages) == 0 {
		return nil
	}
	return f.aiMessages[len(f.aiMessages)-1]
}

type fakeRoomRepo struct {
	mu     sync.Mutex
	nextID uint
	rooms  map[uint]*model.Room
}

func newFakeRoomRepo(roomIDs ...uint) *fakeRoomRepo {
	rooms := make(map[uint]*model.Room)
	var maxID uint
	for _, id := range roomIDs {
		rooms[id] = &model.Room{ID: id, Name: "room", IsActive: true, IsPublic: true}
		if id > maxID {
			maxID = id
		}
	}
	return &fakeRoomRepo{rooms: rooms, nextID: maxID}
}

func (f *fakeRoomRepo) addRoom(room *model.Room) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[room.ID] = room
}

func (f *fakeRoomRepo) Create(_ context.Context, room *model.Room, ownerID uint, ownerName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	room.ID = f.nextID
	room.Participants = append(room.Participants, model.RoomParticipant{
		RoomID: room.ID, UserID: ownerID, Username: ownerName, IsOwner: true,
	})
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeRoomRepo) FindByID(_ context.Context, id uint) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok || !room.IsActive {
		return nil, contract.ErrNoSuchRoom
	}
	return room, nil
}

func (f *fakeRoomRepo) FindAll(context.Context, bool) ([]*model.Room, error) { return nil, nil }

func (f *fakeRoomRepo) AddParticipant(_ context.Context, roomID, userID uint, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room := f.rooms[roomID]
	for _, p := range room.Participants {
		if p.UserID == userID {
			return nil
		}
	}
	room.Participants = append(room.Participants, model.RoomParticipant{
		RoomID: roomID, UserID: userID, Username: username,
	})
	return nil
}

func (f *fakeRoomRepo) IsParticipant(_ context.Context, roomID, userID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return false, nil
	}
	for _, p := range room.Participants {
		if p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoomRepo) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok := f.rooms[id]; ok {
		room.IsActive = false
	}
	return nil
}

type fakeSettingsRepo struct {
	mu   sync.Mutex
	rows map[uint]*model.UserSettings
}

func (f *fakeSettingsRepo) Get(_ context.Context, userID uint) (*model.UserSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		f.rows = make(map[uint]*model.UserSettings)
	}
	row, ok := f.rows[userID]
	if !ok {
		row = &model.UserSettings{UserID: userID, AIResponseEnabled: true}
		f.rows[userID] = row
	}
	return row, nil
}

func (f *fakeSettingsRepo) Upsert(_ context.Context, settings *model.UserSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		f.rows = make(map[uint]*model.UserSettings)
	}
	f.rows[settings.UserID] = settings
	return nil
}

type chatFixture struct {
	svc         IChatService
	hub         *websocket.Hub
	client      *websocket.Client
	messageRepo *fakeMessageRepo
	roomRepo    *fakeRoomRepo
	settings    *fakeSettingsRepo
}

func newChatFixture(t *testing.T, providerURL string) *chatFixture {
	t.Helper()

	hub := websocket.NewHub(nil, "test-instance", nopLog{})
	go hub.Run()

	messageRepo := newFakeMessageRepo(1)
	roomRepo := newFakeRoomRepo(1)
	settingsRepo := &fakeSettingsRepo{}
	settingsService := NewSettingsService(settingsRepo, memory.NewSettingsCache())

	providers := factory.New(factory.Config{
		GeminiAPIBase:   providerURL,
		GeminiAPIKey:    "test-key",
		MediaBaseURL:    providerURL,
		ProviderTimeout: 5 * time.Second,
		ImageTimeout:    time.Second,
	})

	svc := NewChatService(messageRepo, roomRepo, settingsService, providers, hub, nil, nopLog{}, "", 5*time.Second)

	client := websocket.NewClient(hub, nil, 7, "tester", svc)
	t.Cleanup(client.Close)
	if err := svc.HandleJoinRoom(context.Background(), client, 1); err != nil {
		t.Fatalf("HandleJoinRoom() error = %v", err)
	}

	return &chatFixture{
		svc:         svc,
		hub:         hub,
		client:      client,
		messageRepo: messageRepo,
		roomRepo:    roomRepo,
		settings:    settingsRepo,
	}
}

func receiveEvent(t *testing.T, c *websocket.Client) websocket.Event {
	t.Helper()
	select {
	case event := <-c.Send:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func geminiStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"AI 응답입니다"}]}}]}`))
	}))
}

func TestHandleChatMessageProducesAIReply(t *testing.T) {
	srv := geminiStub(t)
	defer srv.Close()
	fx := newChatFixture(t, srv.URL)

	fx.svc.HandleChatMessage(context.Background(), fx.client, &websocket.Frame{
		RoomID:  1,
		Message: "안녕하세요",
		Emotion: "happy",
	})

	userEvent, ok := receiveEvent(t, fx.client).(websocket.UserMessageEvent)
	if !ok {
		t.Fatal("first event is not a user_message")
	}
	if userEvent.Type != "user_message" || userEvent.Sender != "tester" || userEvent.Message != "안녕하세요" {
		t.Errorf("unexpected user event: %+v", userEvent)
	}
	if userEvent.Emotion != "happy" {
		t.Errorf("Emotion = %q, want happy", userEvent.Emotion)
	}
	if _, err := time.Parse(time.RFC3339, userEvent.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339", userEvent.Timestamp)
	}

	aiEvent, ok := receiveEvent(t, fx.client).(websocket.AIMessageEvent)
	if !ok {
		t.Fatal("second event is not an ai_message")
	}
	if aiEvent.Type != "ai_message" || aiEvent.Sender != "Gemini" || aiEvent.Message != "AI 응답입니다" {
		t.Errorf("unexpected ai event: %+v", aiEvent)
	}
	if aiEvent.QuestionerUsername != "tester" {
		t.Errorf("QuestionerUsername = %q", aiEvent.QuestionerUsername)
	}

	saved := fx.messageRepo.lastAIMessage()
	if saved == nil {
		t.Fatal("AI reply was not persisted")
	}
	if saved.QuestionMessageID == nil || *saved.QuestionMessageID != fx.messageRepo.userMessages[0].ID {
		t.Errorf("QuestionMessageID = %v, want link to the question row", saved.QuestionMessageID)
	}
	if saved.AIProvider != llm.ProviderGemini {
		t.Errorf("AIProvider = %q", saved.AIProvider)
	}
}

func TestHandleChatMessageImageOnlyPlaceholder(t *testing.T) {
	srv := geminiStub(t)
	defer srv.Close()
	fx := newChatFixture(t, srv.URL)

	fx.svc.HandleChatMessage(context.Background(), fx.client, &websocket.Frame{
		RoomID:    1,
		Message:   "   ",
		ImageURLs: []string{"/media/pic.png"},
	})

	userEvent, ok := receiveEvent(t, fx.client).(websocket.UserMessageEvent)
	if !ok {
		t.Fatal("first event is not a user_message")
	}
	if userEvent.Message != "[이미지 첨부]" {
		t.Errorf("Message = %q, want the image placeholder", userEvent.Message)
	}
}

func TestHandleChatMessageAIDisabled(t *testing.T) {
	srv := geminiStub(t)
	defer srv.Close()
	fx := newChatFixture(t, srv.URL)

	fx.settings.Upsert(context.Background(), &model.UserSettings{UserID: 7, AIResponseEnabled: false})

	fx.svc.HandleChatMessage(context.Background(), fx.client, &websocket.Frame{
		RoomID:  1,
		Message: "조용한 방",
	})

	if _, ok := receiveEvent(t, fx.client).(websocket.UserMessageEvent); !ok {
		t.Fatal("expected the user_message broadcast")
	}

	select {
	case event := <-fx.client.Send:
		t.Fatalf("unexpected event %T after disabling AI responses", event)
	case <-time.After(300 * time.Millisecond):
	}
	if fx.messageRepo.lastAIMessage() != nil {
		t.Error("AI reply persisted despite being disabled")
	}
}

func TestHandleChatMessageProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	fx := newChatFixture(t, srv.URL)

	fx.svc.HandleChatMessage(context.Background(), fx.client, &websocket.Frame{
		RoomID:  1,
		Message: "실패 테스트",
	})

	receiveEvent(t, fx.client) // user_message

	aiEvent, ok := receiveEvent(t, fx.client).(websocket.AIMessageEvent)
	if !ok {
		t.Fatal("expected a synthesized ai_message")
	}
	if !strings.Contains(aiEvent.Sender, "연결 실패") {
		t.Errorf("Sender = %q, want the failure suffix", aiEvent.Sender)
	}
	if !strings.Contains(aiEvent.Message, "503") {
		t.Errorf("Message = %q, want the upstream status surfaced", aiEvent.Message)
	}

	saved := fx.messageRepo.lastAIMessage()
	if saved == nil || saved.AIProvider != llm.ProviderError {
		t.Errorf("failure record = %+v, want AIProvider %q", saved, llm.ProviderError)
	}
}

func TestHandleChatMessageUnknownRoom(t *testing.T) {
	srv := geminiStub(t)
	defer srv.Close()
	fx := newChatFixture(t, srv.URL)

	fx.svc.HandleChatMessage(context.Background(), fx.client, &websocket.Frame{
		RoomID:  99,
		Message: "어디로",
	})

	errEvent, ok := receiveEvent(t, fx.client).(websocket.ErrorEvent)
	if !ok {
		t.Fatal("expected an error event")
	}
	if errEvent.Message != "존재하지 않는 채팅방입니다." {
		t.Errorf("Message = %q", errEvent.Message)
	}
}

func TestHandleJoinRoomValidation(t *testing.T) {
	srv := geminiStub(t)
	defer srv.Close()
	fx := newChatFixture(t, srv.URL)

	if err := fx.svc.HandleJoinRoom(context.Background(), fx.client, 0); err == nil {
		t.Error("expected an error for a missing room id")
	}
	if err := fx.svc.HandleJoinRoom(context.Background(), fx.client, 42); err == nil || err.Error() != "존재하지 않는 채팅방입니다." {
		t.Errorf("join unknown room error = %v", err)
	}
}

func TestHandleJoinRoomPrivateRoomMembersOnly(t *testing.T) {
	srv := geminiStub(t)
	defer srv.Close()
	fx := newChatFixture(t, srv.URL)

	fx.roomRepo.addRoom(&model.Room{
		ID: 5, Name: "private", IsActive: true, IsPublic: false,
		Participants: []model.RoomParticipant{{RoomID: 5, UserID: 99, Username: "owner", IsOwner: true}},
	})

	err := fx.svc.HandleJoinRoom(context.Background(), fx.client, 5)
	if err == nil || err.Error() != "채팅방 참여자만 입장할 수 있습니다." {
		t.Errorf("join private room error = %v", err)
	}

	// A broadcast on the private room must not reach the rejected socket.
	fx.hub.Broadcast(websocket.RoomKey(5), websocket.NewErrorEvent("secret"))
	select {
	case event := <-fx.client.Send:
		t.Fatalf("rejected client received %+v", event)
	case <-time.After(100 * time.Millisecond):
	}

	// Once a participant, the same user joins fine.
	fx.roomRepo.AddParticipant(context.Background(), 5, fx.client.UserID, fx.client.Username)
	if err := fx.svc.HandleJoinRoom(context.Background(), fx.client, 5); err != nil {
		t.Errorf("join as participant error = %v", err)
	}
}

func TestResolveAISettingsPrecedence(t *testing.T) {
	srv := geminiStub(t)
	defer srv.Close()
	fx := newChatFixture(t, srv.URL)
	svc := fx.svc.(*chatService)

	fx.messageRepo.roomAI[1] = &contract.RoomAISettings{Provider: "gradio", Model: "room-model"}
	fx.settings.Upsert(context.Background(), &model.UserSettings{
		UserID:            7,
		AIResponseEnabled: true,
		AIProvider:        "lily",
		LilyModel:         "user-lily",
	})

	prefs, err := svc.settingsService.Preferences(context.Background(), 7)
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}

	// Frame override wins over everything.
	provider, modelName, _ := svc.resolveAISettings(context.Background(), &websocket.Frame{
		RoomID:    1,
		AISetting: websocket.ClientAISetting{AIProvider: "gemini", GeminiModel: "frame-gemini"},
	}, prefs)
	if provider != "gemini" || modelName != "frame-gemini" {
		t.Errorf("frame override: got (%q, %q)", provider, modelName)
	}

	// Stored preferences beat the room default.
	provider, modelName, _ = svc.resolveAISettings(context.Background(), &websocket.Frame{RoomID: 1}, prefs)
	if provider != "lily" || modelName != "user-lily" {
		t.Errorf("user preference: got (%q, %q)", provider, modelName)
	}

	// Room settings apply when the user expressed nothing.
	provider, modelName, _ = svc.resolveAISettings(context.Background(), &websocket.Frame{RoomID: 1}, nil)
	if provider != "gradio" || modelName != "room-model" {
		t.Errorf("room default: got (%q, %q)", provider, modelName)
	}

	// Process default closes the chain.
	provider, _, _ = svc.resolveAISettings(context.Background(), &websocket.Frame{RoomID: 2}, nil)
	if provider != "gemini" {
		t.Errorf("process default: got %q", provider)
	}
}
