package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docchat/internal/dal"
	"docchat/internal/models"
	"docchat/internal/service"
	"docchat/pkg/logger"
	"github.com/gin-gonic/gin"
)

type fakeDocuments struct {
	docs      []*models.Document
	uploadErr error
	deleteErr error
	deleted   uint
}

func (f *fakeDocuments) Upload(ctx context.Context, userID, filename string, content io.Reader, size int64) (*models.Document, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &models.Document{ID: 1, UserID: userID, Filename: filename, Status: models.DocumentPending}, nil
}

func (f *fakeDocuments) List(ctx context.Context, userID string) ([]*models.Document, error) {
	return f.docs, nil
}

func (f *fakeDocuments) Delete(ctx context.Context, userID string, documentID uint) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = documentID
	return nil
}

type fakeChats struct {
	reply      string
	chatID     uint
	sendErr    error
	historyErr error
	history    []models.ChatMessage
}

func (f *fakeChats) SendMessage(ctx context.Context, userID string, chatID uint, message string) (string, uint, error) {
	if f.sendErr != nil {
		return "", 0, f.sendErr
	}
	return f.reply, f.chatID, nil
}

func (f *fakeChats) History(ctx context.Context, userID string, chatID uint) ([]models.ChatMessage, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func newTestRouter(documents DocumentOperations, chats ChatOperations) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, NewAPI(documents, chats, logger.New("test")))
	return router
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return body, w.FormDataContentType()
}

func TestMissingUserHeaderRejected(t *testing.T) {
	router := newTestRouter(&fakeDocuments{}, &fakeChats{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUploadDocument(t *testing.T) {
	router := newTestRouter(&fakeDocuments{}, &fakeChats{})

	body, contentType := multipartBody(t, "report.txt", "some text")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != string(models.DocumentPending) {
		t.Errorf("status = %q, want pending", resp.Status)
	}
}

func TestUploadUnsupportedType(t *testing.T) {
	router := newTestRouter(&fakeDocuments{uploadErr: service.ErrUnsupportedFileType}, &fakeChats{})

	body, contentType := multipartBody(t, "payload.exe", "MZ")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteDocumentNotFound(t *testing.T) {
	router := newTestRouter(&fakeDocuments{deleteErr: dal.ErrNotFound}, &fakeChats{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/42", nil)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	docs := &fakeDocuments{}
	router := newTestRouter(docs, &fakeChats{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/42", nil)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if docs.deleted != 42 {
		t.Errorf("deleted id = %d, want 42", docs.deleted)
	}
}

func TestSendMessage(t *testing.T) {
	router := newTestRouter(&fakeDocuments{}, &fakeChats{reply: "grounded answer", chatID: 7})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"a question"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ChatID uint   `json:"chat_id"`
		Reply  string `json:"reply"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ChatID != 7 || resp.Reply != "grounded answer" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSendMessageEmptyPayload(t *testing.T) {
	router := newTestRouter(&fakeDocuments{}, &fakeChats{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChatHistoryNotFound(t *testing.T) {
	router := newTestRouter(&fakeDocuments{}, &fakeChats{historyErr: dal.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/9/messages", nil)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestChatHistory(t *testing.T) {
	history := []models.ChatMessage{
		{Role: models.MessageRoleUser, Content: "hi"},
		{Role: models.MessageRoleAssistant, Content: "hello"},
	}
	router := newTestRouter(&fakeDocuments{}, &fakeChats{history: history})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/9/messages", nil)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Messages) != 2 || resp.Messages[0].Role != "user" {
		t.Errorf("messages = %+v", resp.Messages)
	}
}
