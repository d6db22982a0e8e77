package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"hearth-chat-be/internal/chat/emotion"
	"hearth-chat-be/internal/chat/prompt"
	"hearth-chat-be/internal/chat/session"
	"hearth-chat-be/internal/model"
	"hearth-chat-be/internal/pkg/logger"
	"hearth-chat-be/internal/repository/contract"
	"hearth-chat-be/internal/websocket"
	"hearth-chat-be/pkg/events"
	"hearth-chat-be/pkg/llm"
	"hearth-chat-be/pkg/llm/factory"
	pktNats "hearth-chat-be/pkg/nats"
)

const (
	storeTimeout = 10 * time.Second

	// Persisted in place of text when a frame carries images only.
	imagePlaceholder = "[이미지 첨부]"
)

type IChatService interface {
	websocket.ChatHandler
}

type chatService struct {
	messageRepo     contract.MessageRepository
	roomRepo        contract.RoomRepository
	settingsService ISettingsService
	providers       *factory.Factory
	hub             *websocket.Hub
	publisher       *pktNats.Publisher
	logger          logger.ILogger

	defaultProvider string
	providerTimeout time.Duration

	// Per-connection emotion and context buffers, reaped on disconnect.
	mu    sync.Mutex
	conns map[*websocket.Client]*connState
}

type connState struct {
	tracker *emotion.Tracker
	history *session.Context
}

func NewChatService(
	messageRepo contract.MessageRepository,
	roomRepo contract.RoomRepository,
	settingsService ISettingsService,
	providers *factory.Factory,
	hub *websocket.Hub,
	publisher *pktNats.Publisher,
	log logger.ILogger,
	defaultProvider string,
	providerTimeout time.Duration,
) IChatService {
	if defaultProvider == "" {
		defaultProvider = llm.ProviderGemini
	}
	if providerTimeout == 0 {
		providerTimeout = 20 * time.Minute
	}
	return &chatService{
		messageRepo:     messageRepo,
		roomRepo:        roomRepo,
		settingsService: settingsService,
		providers:       providers,
		hub:             hub,
		publisher:       publisher,
		logger:          log,
		defaultProvider: defaultProvider,
		providerTimeout: providerTimeout,
		conns:           make(map[*websocket.Client]*connState),
	}
}

func (s *chatService) HandleJoinRoom(ctx context.Context, client *websocket.Client, roomID uint) error {
	if roomID == 0 {
		return errors.New("roomId가 필요합니다.")
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	room, err := s.roomRepo.FindByID(storeCtx, roomID)
	if err != nil {
		if errors.Is(err, contract.ErrNoSuchRoom) {
			return errors.New("존재하지 않는 채팅방입니다.")
		}
		s.logger.Error("ChatService", "Room lookup failed on join", map[string]interface{}{"room_id": roomID, "error": err.Error()})
		return errors.New("채팅방 조회에 실패했습니다.")
	}

	if !room.IsPublic {
		member, err := s.roomRepo.IsParticipant(storeCtx, roomID, client.UserID)
		if err != nil {
			s.logger.Error("ChatService", "Participant lookup failed on join", map[string]interface{}{"room_id": roomID, "error": err.Error()})
			return errors.New("채팅방 조회에 실패했습니다.")
		}
		if !member {
			return errors.New("채팅방 참여자만 입장할 수 있습니다.")
		}
	}

	s.hub.Subscribe(websocket.RoomKey(roomID), client)
	s.logger.Info("ChatService", "Client joined room", map[string]interface{}{"room_id": roomID, "user_id": client.UserID})
	return nil
}

func (s *chatService) HandleChatMessage(ctx context.Context, client *websocket.Client, frame *websocket.Frame) {
	state := s.state(client)

	text := strings.TrimSpace(frame.Message)
	if text == "" {
		text = imagePlaceholder
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	saved, err := s.messageRepo.SaveUserMessage(storeCtx, contract.SaveUserMessageParams{
		RoomID:    frame.RoomID,
		UserID:    &client.UserID,
		Username:  client.Username,
		Content:   text,
		Emotion:   frame.Emotion,
		ImageURLs: frame.ImageURLs,
	})
	if err != nil {
		if errors.Is(err, contract.ErrNoSuchRoom) {
			client.Deliver(websocket.NewErrorEvent("존재하지 않는 채팅방입니다."))
			return
		}
		s.logger.Error("ChatService", "User message persist failed", map[string]interface{}{"room_id": frame.RoomID, "error": err.Error()})
		client.Deliver(websocket.NewErrorEvent("메시지 저장에 실패했습니다."))
		return
	}

	if frame.Emotion != "" {
		state.tracker.Record(frame.Emotion)
	}
	trend := state.tracker.Trend()

	s.hub.Broadcast(websocket.RoomKey(frame.RoomID), websocket.UserMessageEvent{
		Type:      "user_message",
		RoomID:    frame.RoomID,
		Sender:    client.Username,
		UserID:    &client.UserID,
		Timestamp: saved.Timestamp.Format(time.RFC3339),
		Emotion:   frame.Emotion,
		ImageURL:  frame.ImageURL,
		ImageURLs: frame.ImageURLs,
		Message:   saved.Content,
	})
	s.publishEvent(events.NewMessageSaved(saved.RoomID, saved.ID, model.SenderTypeUser, ""))

	prefs, err := s.settingsService.Preferences(storeCtx, client.UserID)
	if err != nil {
		s.logger.Warn("ChatService", "Preferences lookup failed, using defaults", map[string]interface{}{"user_id": client.UserID, "error": err.Error()})
	}
	if prefs != nil && !prefs.AIResponseEnabled {
		return
	}

	providerName, modelName, lilyURL := s.resolveAISettings(storeCtx, frame, prefs)

	in := prompt.Input{
		Text:               saved.Content,
		Emotion:            frame.Emotion,
		Trend:              trend,
		HasDocuments:       len(frame.Documents) > 0,
		DocumentsSupported: factory.Supports(providerName, len(frame.Documents) > 0),
	}

	// The receive loop never waits on the provider; further frames on this
	// socket keep flowing while the turn runs.
	go s.runAITurn(client, state, frame, saved, prompt.Compose(in), providerName, modelName, lilyURL)
}

// resolveAISettings applies the precedence: per-frame override, stored user
// preferences, room defaults, process default.
func (s *chatService) resolveAISettings(ctx context.Context, frame *websocket.Frame, prefs *model.UserSettings) (providerName, modelName, lilyURL string) {
	var roomAI *contract.RoomAISettings
	if ra, err := s.messageRepo.GetRoomAISettings(ctx, frame.RoomID); err == nil {
		roomAI = ra
	}

	providerName = frame.AISetting.AIProvider
	if providerName == "" && prefs != nil {
		providerName = prefs.AIProvider
	}
	if providerName == "" && roomAI != nil {
		providerName = roomAI.Provider
	}
	if providerName == "" {
		providerName = s.defaultProvider
	}

	switch providerName {
	case llm.ProviderGemini:
		modelName = frame.AISetting.GeminiModel
		if modelName == "" && prefs != nil {
			modelName = prefs.GeminiModel
		}
	case llm.ProviderLily:
		modelName = frame.AISetting.LilyModel
		if modelName == "" && prefs != nil {
			modelName = prefs.LilyModel
		}
	}
	if modelName == "" && roomAI != nil && roomAI.Provider == providerName {
		modelName = roomAI.Model
	}

	lilyURL = frame.AISetting.LilyAPIURL
	if lilyURL == "" && prefs != nil {
		lilyURL = prefs.LilyAPIURL
	}
	return providerName, modelName, lilyURL
}

func (s *chatService) runAITurn(client *websocket.Client, state *connState, frame *websocket.Frame, question *model.Message, composed, providerName, modelName, lilyURL string) {
	ctx, cancel := context.WithTimeout(client.Context(), s.providerTimeout)
	defer cancel()

	adapter, err := s.providers.Resolve(providerName, lilyURL)
	if err != nil {
		s.deliverFailure(client, frame, question, providerName, err)
		return
	}

	documents := make([]llm.Document, 0, len(frame.Documents))
	for _, d := range frame.Documents {
		documents = append(documents, llm.Document{DocumentID: d.DocumentID})
	}

	result, err := adapter.Invoke(ctx, llm.Request{
		Prompt:    composed,
		ImageURLs: frame.ImageURLs,
		Documents: documents,
		UserID:    strconv.FormatUint(uint64(client.UserID), 10),
		Model:     modelName,
	})
	if err != nil {
		// A socket that went away takes its turn with it.
		if client.Context().Err() != nil || errors.Is(err, context.Canceled) {
			return
		}
		s.deliverFailure(client, frame, question, providerName, err)
		return
	}

	// The client may disconnect right after the provider answers; the room
	// still gets the reply, so persist on a fresh context.
	saveCtx, saveCancel := context.WithTimeout(context.Background(), storeTimeout)
	defer saveCancel()

	aiMsg, err := s.messageRepo.SaveAIMessage(saveCtx, contract.SaveAIMessageParams{
		RoomID:            frame.RoomID,
		Content:           result.Text,
		AIName:            result.DisplayName,
		AIProvider:        result.ProviderTag,
		QuestionMessageID: &question.ID,
		ImageURLs:         frame.ImageURLs,
	})
	if err != nil {
		s.logger.Error("ChatService", "AI message persist failed", map[string]interface{}{"room_id": frame.RoomID, "error": err.Error()})
		client.Deliver(websocket.NewErrorEvent("AI 응답 저장에 실패했습니다."))
		return
	}

	s.hub.Broadcast(websocket.RoomKey(frame.RoomID), websocket.AIMessageEvent{
		Type:               "ai_message",
		RoomID:             frame.RoomID,
		Sender:             result.DisplayName,
		AIName:             result.DisplayName,
		Timestamp:          aiMsg.Timestamp.Format(time.RFC3339),
		QuestionerUsername: client.Username,
		Message:            result.Text,
		ImageURLs:          frame.ImageURLs,
	})
	s.publishEvent(events.NewMessageSaved(aiMsg.RoomID, aiMsg.ID, model.SenderTypeAI, result.ProviderTag))

	state.history.Append(session.Exchange{
		UserMessage: question.Content,
		UserEmotion: frame.Emotion,
		AIMessage:   result.Text,
	})
}

// deliverFailure persists and broadcasts a synthesized reply so the outage
// is visible in the room. There is no silent fallback to another provider.
func (s *chatService) deliverFailure(client *websocket.Client, frame *websocket.Frame, question *model.Message, providerName string, cause error) {
	sender := providerDisplayName(providerName) + " (연결 실패)"
	text := failureText(cause)

	s.logger.Warn("ChatService", "Provider call failed", map[string]interface{}{
		"room_id":  frame.RoomID,
		"provider": providerName,
		"error":    cause.Error(),
	})

	saveCtx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	aiMsg, err := s.messageRepo.SaveAIMessage(saveCtx, contract.SaveAIMessageParams{
		RoomID:            frame.RoomID,
		Content:           text,
		AIName:            sender,
		AIProvider:        llm.ProviderError,
		QuestionMessageID: &question.ID,
		ImageURLs:         frame.ImageURLs,
	})
	if err != nil {
		s.logger.Error("ChatService", "Failure record persist failed", map[string]interface{}{"room_id": frame.RoomID, "error": err.Error()})
		client.Deliver(websocket.NewErrorEvent("AI 응답 저장에 실패했습니다."))
		return
	}

	s.hub.Broadcast(websocket.RoomKey(frame.RoomID), websocket.AIMessageEvent{
		Type:               "ai_message",
		RoomID:             frame.RoomID,
		Sender:             sender,
		AIName:             sender,
		Timestamp:          aiMsg.Timestamp.Format(time.RFC3339),
		QuestionerUsername: client.Username,
		Message:            text,
		ImageURLs:          frame.ImageURLs,
	})
	s.publishEvent(events.NewAIFailed(frame.RoomID, providerName, cause.Error()))
}

func (s *chatService) publishEvent(event events.Event) {
	if s.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("ChatService", "Event publish failed", map[string]interface{}{"event": event.EventType(), "error": err.Error()})
		}
	}()
}

func (s *chatService) state(client *websocket.Client) *connState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.conns[client]
	if !ok {
		st = &connState{tracker: emotion.NewTracker(), history: session.NewContext()}
		s.conns[client] = st
		go func() {
			<-client.Context().Done()
			s.mu.Lock()
			delete(s.conns, client)
			s.mu.Unlock()
		}()
	}
	return st
}

func providerDisplayName(providerName string) string {
	switch providerName {
	case llm.ProviderGemini:
		return "Gemini"
	case llm.ProviderLily:
		return "Lily LLM"
	case llm.ProviderGradio:
		return "AI Hub"
	default:
		return providerName
	}
}

func failureText(cause error) string {
	var upstream *llm.UpstreamError
	switch {
	case errors.Is(cause, llm.ErrTimeout):
		return "AI 응답 시간이 초과되었습니다. 잠시 후 다시 시도하거나 다른 AI 제공자로 전환해 주세요."
	case errors.As(cause, &upstream):
		text := fmt.Sprintf("AI 서버 오류가 발생했습니다 (HTTP %d). 다른 AI 제공자로 전환해 주세요.", upstream.Status)
		if upstream.Detail != "" {
			text += " (" + upstream.Detail + ")"
		}
		return text
	case errors.Is(cause, llm.ErrNetwork):
		return "AI 서버에 연결하지 못했습니다. 다른 AI 제공자로 전환해 주세요."
	default:
		return "AI 응답 생성에 실패했습니다: " + cause.Error()
	}
}
