package service

import (
	"context"
	"errors"
	"testing"

	"docchat/internal/models"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"
)

type fakeChatRepo struct {
	chats    map[uint]*models.Chat
	messages map[uint][]models.ChatMessage
	nextID   uint
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:    map[uint]*models.Chat{},
		messages: map[uint][]models.ChatMessage{},
		nextID:   1,
	}
}

func (r *fakeChatRepo) GetOrCreate(ctx context.Context, userID string, chatID uint) (*models.Chat, error) {
	if chatID == 0 {
		chat := &models.Chat{ID: r.nextID, UserID: userID}
		r.nextID++
		r.chats[chat.ID] = chat
		return chat, nil
	}
	chat, ok := r.chats[chatID]
	if !ok || chat.UserID != userID {
		return nil, errors.New("record not found")
	}
	return chat, nil
}

func (r *fakeChatRepo) AppendMessage(ctx context.Context, chatID uint, role, content string) (*models.ChatMessage, error) {
	m := models.ChatMessage{ChatID: chatID, Role: role, Content: content}
	r.messages[chatID] = append(r.messages[chatID], m)
	return &m, nil
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, userID string, chatID uint) ([]models.ChatMessage, error) {
	chat, ok := r.chats[chatID]
	if !ok || chat.UserID != userID {
		return nil, errors.New("record not found")
	}
	return r.messages[chatID], nil
}

type fakeRetriever struct {
	texts []string
}

func (f *fakeRetriever) Run(ctx context.Context, query, userID string, topK int) []string {
	return f.texts
}

type fakeLLM struct {
	reply    string
	err      error
	received []schema.Message
}

func (f *fakeLLM) Generate(ctx context.Context, messages []schema.Message) (string, error) {
	f.received = messages
	return f.reply, f.err
}

func TestSendMessagePersistsBothTurns(t *testing.T) {
	repo := newFakeChatRepo()
	gen := &fakeLLM{reply: "an answer"}
	svc := NewChatService(repo, &fakeRetriever{texts: []string{"a chunk"}}, gen, 5, logger.New("test"))

	reply, chatID, err := svc.SendMessage(context.Background(), "u1", 0, "a question")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if reply != "an answer" {
		t.Errorf("reply = %q, want %q", reply, "an answer")
	}
	if chatID == 0 {
		t.Error("chatID not assigned")
	}

	msgs := repo.messages[chatID]
	if len(msgs) != 2 {
		t.Fatalf("got %d persisted messages, want 2", len(msgs))
	}
	if msgs[0].Role != models.MessageRoleUser || msgs[0].Content != "a question" {
		t.Errorf("first persisted message = %+v", msgs[0])
	}
	if msgs[1].Role != models.MessageRoleAssistant || msgs[1].Content != "an answer" {
		t.Errorf("second persisted message = %+v", msgs[1])
	}
}

func TestSendMessageGenerationFailureApologizes(t *testing.T) {
	repo := newFakeChatRepo()
	gen := &fakeLLM{err: errors.New("model unavailable")}
	svc := NewChatService(repo, &fakeRetriever{}, gen, 5, logger.New("test"))

	reply, chatID, err := svc.SendMessage(context.Background(), "u1", 0, "a question")
	if err != nil {
		t.Fatalf("SendMessage() error = %v, generation failure must not surface", err)
	}
	if reply != apologyReply {
		t.Errorf("reply = %q, want the apology", reply)
	}

	msgs := repo.messages[chatID]
	if len(msgs) != 2 || msgs[1].Content != apologyReply {
		t.Errorf("apology not persisted: %+v", msgs)
	}
}

// The prompt history window must hold only turns that existed before the
// current message, so a fresh chat prompts with system + user only.
func TestSendMessagePromptExcludesCurrentMessage(t *testing.T) {
	repo := newFakeChatRepo()
	gen := &fakeLLM{reply: "ok"}
	svc := NewChatService(repo, &fakeRetriever{}, gen, 5, logger.New("test"))

	if _, _, err := svc.SendMessage(context.Background(), "u1", 0, "first message"); err != nil {
		t.Fatal(err)
	}

	if len(gen.received) != 2 {
		t.Fatalf("got %d prompt messages, want system + user only", len(gen.received))
	}
	if gen.received[1].Content != "first message" {
		t.Errorf("last prompt message = %q, want the new user message", gen.received[1].Content)
	}
}

func TestSendMessageContinuesExistingChat(t *testing.T) {
	repo := newFakeChatRepo()
	gen := &fakeLLM{reply: "second answer"}
	svc := NewChatService(repo, &fakeRetriever{}, gen, 5, logger.New("test"))

	_, chatID, err := svc.SendMessage(context.Background(), "u1", 0, "first")
	if err != nil {
		t.Fatal(err)
	}

	_, sameID, err := svc.SendMessage(context.Background(), "u1", chatID, "second")
	if err != nil {
		t.Fatal(err)
	}
	if sameID != chatID {
		t.Errorf("chat id changed from %d to %d", chatID, sameID)
	}

	// system + 2 prior turns + new user message
	if len(gen.received) != 4 {
		t.Errorf("got %d prompt messages, want 4", len(gen.received))
	}
	if len(repo.messages[chatID]) != 4 {
		t.Errorf("got %d persisted messages, want 4", len(repo.messages[chatID]))
	}
}

func TestSendMessageRejectsForeignChat(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewChatService(repo, &fakeRetriever{}, &fakeLLM{reply: "ok"}, 5, logger.New("test"))

	_, chatID, err := svc.SendMessage(context.Background(), "u1", 0, "mine")
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.SendMessage(context.Background(), "u2", chatID, "not mine"); err == nil {
		t.Error("expected error for another user's chat")
	}
}
