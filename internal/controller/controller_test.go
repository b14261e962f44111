package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/serverutils"
	"rag-chat-be/pkg/history"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakeChatService struct {
	turns []history.Turn
}

func (f *fakeChatService) Chat(context.Context, string, string) (dto.ChatResponse, error) {
	return dto.ChatResponse{Response: "ok", Duration: 0.1}, nil
}

func (f *fakeChatService) History(context.Context, string) ([]history.Turn, error) {
	return f.turns, nil
}

func (f *fakeChatService) ClearHistory(context.Context, string) error { return nil }
func (f *fakeChatService) Start()                                     {}
func (f *fakeChatService) Shutdown(context.Context) error             { return nil }

type fakeIngestionService struct {
	uploads []string
}

func (f *fakeIngestionService) IngestUpload(_ context.Context, filename string, _ []byte) (dto.UploadResponse, error) {
	f.uploads = append(f.uploads, filename)
	return dto.UploadResponse{Message: "File uploaded and indexed", Filename: filename}, nil
}

func (f *fakeIngestionService) IngestPending(context.Context) (dto.IngestReport, error) {
	return dto.IngestReport{}, nil
}

func testApp(register func(r fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(nopLogger{}))
	register(app.Group("/api"))
	return app
}

func TestHistoryPayloadShape(t *testing.T) {
	duration := 0.42
	svc := &fakeChatService{turns: []history.Turn{
		{Role: history.RoleUser, Content: "hi", CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{Role: history.RoleAssistant, Content: "hello", CreatedAt: time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC), Duration: &duration},
	}}
	app := testApp(NewChatController(svc).RegisterRoutes)

	req := httptest.NewRequest("GET", "/api/chat/v1/history?session_id=s1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope struct {
		Data dto.HistoryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Len(t, envelope.Data.History, 2)
	assert.Equal(t, "s1", envelope.Data.SessionId)
	assert.False(t, envelope.Data.History[0].CreatedAt.IsZero())
	require.NotNil(t, envelope.Data.History[1].Duration)

	// The turn log is published under "history" with per-turn timestamps.
	assert.Contains(t, string(body), `"history"`)
	assert.Contains(t, string(body), `"created_at"`)
}

func multipartPDF(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestUploadAcceptsDeclaredPDF(t *testing.T) {
	svc := &fakeIngestionService{}
	app := testApp(NewUploadController(svc, 25).RegisterRoutes)

	body, contentType := multipartPDF(t, "doc.pdf", "application/pdf", []byte("%PDF-1.4 content"))
	req := httptest.NewRequest("POST", "/api/upload/v1", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"doc.pdf"}, svc.uploads)
}

func TestUploadRejectsWrongContentType(t *testing.T) {
	svc := &fakeIngestionService{}
	app := testApp(NewUploadController(svc, 25).RegisterRoutes)

	// Declared media type decides; a pdf-looking body with a text/plain
	// declaration is still rejected up front.
	body, contentType := multipartPDF(t, "doc.pdf", "text/plain", []byte("%PDF-1.4 content"))
	req := httptest.NewRequest("POST", "/api/upload/v1", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "unsupported_type")
	assert.Empty(t, svc.uploads)
}

func TestUploadRejectsNonPDFContent(t *testing.T) {
	svc := &fakeIngestionService{}
	app := testApp(NewUploadController(svc, 25).RegisterRoutes)

	body, contentType := multipartPDF(t, "doc.pdf", "application/pdf", []byte("<html>not a pdf</html>"))
	req := httptest.NewRequest("POST", "/api/upload/v1", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "not_a_pdf")
	assert.Empty(t, svc.uploads)
}
