package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"beecok/internal/http/middleware"
	"beecok/internal/model"
	"beecok/internal/service"
	serviceMocks "beecok/internal/service/mocks"
)

const token = "good-token"

var testUser = &model.User{ID: "11111111-1111-1111-1111-111111111111", Username: "ann", Email: "ann@example.com"}

type mocks struct {
	auth   *serviceMocks.MockAuthService
	spaces *serviceMocks.MockSpaceService
	docs   *serviceMocks.MockDocumentService
	search *serviceMocks.MockSearchService
	chats  *serviceMocks.MockChatService
	system *serviceMocks.MockSystemService
	logs   *observer.ObservedLogs
}

func (m *mocks) assert(t *testing.T) {
	m.auth.AssertExpectations(t)
	m.spaces.AssertExpectations(t)
	m.docs.AssertExpectations(t)
	m.search.AssertExpectations(t)
	m.chats.AssertExpectations(t)
	m.system.AssertExpectations(t)
}

// newApp registers every route over fresh service mocks. The auth mock accepts token.
func newApp(t *testing.T) (*fiber.App, *mocks) {
	t.Helper()
	m := &mocks{
		auth:   new(serviceMocks.MockAuthService),
		spaces: new(serviceMocks.MockSpaceService),
		docs:   new(serviceMocks.MockDocumentService),
		search: new(serviceMocks.MockSearchService),
		chats:  new(serviceMocks.MockChatService),
		system: new(serviceMocks.MockSystemService),
	}
	core, logs := observer.New(zap.ErrorLevel)
	m.logs = logs
	m.auth.On("Authenticate", mock.Anything, token).Return(testUser, nil).Maybe()
	m.auth.On("Authenticate", mock.Anything, mock.Anything).Return(nil, service.ErrUnauthorized).Maybe()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	RegisterRoutes(app, Services{
		Auth:      m.auth,
		Spaces:    m.spaces,
		Documents: m.docs,
		Search:    m.search,
		Chats:     m.chats,
		System:    m.system,
		Log:       zap.New(core),
	})
	return app, m
}

func request(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func TestRoot(t *testing.T) {
	app, _ := newApp(t)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "2.0.0", body["version"])
	assert.Equal(t, []any{".pdf", ".docx", ".pptx", ".txt"}, body["supported_formats"])
}

func TestHealthCheck(t *testing.T) {
	app, m := newApp(t)
	m.system.On("Health", mock.Anything).Return(&model.HealthReport{Status: service.StatusUnhealthy}).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

	// unhealthy still answers 200
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body model.HealthReport
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, service.StatusUnhealthy, body.Status)
	m.assert(t)
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	in := service.RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"}

	tests := []struct {
		name   string
		err    error
		status int
		code   string
		detail string
	}{
		{"success", nil, http.StatusOK, "", ""},
		{"email taken", service.ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN", "Email already registered"},
		{"username taken", service.ErrUsernameTaken, http.StatusBadRequest, "USERNAME_TAKEN", "Username already taken"},
		{"server error", errors.New("disk full"), http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed due to server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, m := newApp(t)
			if tt.err == nil {
				m.auth.On("Register", mock.Anything, in).
					Return(&model.AuthResponse{Message: "User registered successfully", AccessToken: "tok", TokenType: "bearer", User: *testUser}, nil).Once()
			} else {
				m.auth.On("Register", mock.Anything, in).Return(nil, tt.err).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(t, in))
			req.Header.Set("Content-Type", "application/json")
			resp, _ := app.Test(req)

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.err == nil {
				var res model.AuthResponse
				json.NewDecoder(resp.Body).Decode(&res)
				assert.Equal(t, "tok", res.AccessToken)
				assert.Equal(t, "bearer", res.TokenType)
				assert.Equal(t, "ann", res.User.Username)
			} else {
				res := decodeError(t, resp)
				assert.Equal(t, tt.code, res.Code)
				assert.Equal(t, tt.detail, res.Detail)
				assert.NotEmpty(t, res.RequestID)
			}
			m.assert(t)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		app, _ := newApp(t)
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, resp).Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		app, m := newApp(t)
		m.auth.On("Login", mock.Anything, "ann@example.com", "secret1").
			Return(&model.AuthResponse{AccessToken: "tok", TokenType: "bearer", User: *testUser}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(t, loginRequest{Email: "ann@example.com", Password: "secret1"}))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		m.assert(t)
	})

	t.Run("bad credentials", func(t *testing.T) {
		app, m := newApp(t)
		m.auth.On("Login", mock.Anything, "ann@example.com", "wrong").Return(nil, service.ErrInvalidCredentials).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(t, loginRequest{Email: "ann@example.com", Password: "wrong"}))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		res := decodeError(t, resp)
		assert.Equal(t, "Incorrect email or password", res.Detail)
		assert.Equal(t, "INVALID_CREDENTIALS", res.Code)
		m.assert(t)
	})
}

func TestMe(t *testing.T) {
	app, _ := newApp(t)

	resp, _ := app.Test(request(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, testUser.Email, body["email"])
	assert.NotContains(t, body, "password_hash")

	t.Run("no token", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "UNAUTHORIZED", res.Code)
		assert.Equal(t, "Not authenticated", res.Detail)
	})

	t.Run("rejected token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer stale")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Could not validate credentials", decodeError(t, resp).Detail)
	})
}

func TestSpaces(t *testing.T) {
	spaceID := uuid.New().String()

	t.Run("list", func(t *testing.T) {
		app, m := newApp(t)
		m.spaces.On("List", mock.Anything, testUser.ID).
			Return(&model.SpaceList{Spaces: []model.Space{{ID: spaceID, Name: "Research", DocumentCount: 2}}, TotalSpaces: 1}, nil).Once()

		resp, _ := app.Test(request(http.MethodGet, "/spaces", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res model.SpaceList
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, 1, res.TotalSpaces)
		assert.Equal(t, int64(2), res.Spaces[0].DocumentCount)
		m.assert(t)
	})

	t.Run("create", func(t *testing.T) {
		app, m := newApp(t)
		in := service.SpaceInput{Name: "Research", Description: "papers"}
		m.spaces.On("Create", mock.Anything, testUser.ID, in).Return(&model.Space{ID: spaceID, Name: "Research"}, nil).Once()

		resp, _ := app.Test(request(http.MethodPost, "/spaces", jsonBody(t, in)))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "Space 'Research' created successfully", body["message"])
		m.assert(t)
	})

	t.Run("create duplicate", func(t *testing.T) {
		app, m := newApp(t)
		in := service.SpaceInput{Name: "Research"}
		dup := &service.Error{Kind: service.ErrDuplicateName, Detail: "Space with name 'Research' already exists"}
		m.spaces.On("Create", mock.Anything, testUser.ID, in).Return(nil, dup).Once()

		resp, _ := app.Test(request(http.MethodPost, "/spaces", jsonBody(t, in)))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "DUPLICATE_NAME", res.Code)
		assert.Equal(t, "Space with name 'Research' already exists", res.Detail)
		m.assert(t)
	})

	t.Run("get not found", func(t *testing.T) {
		app, m := newApp(t)
		m.spaces.On("Get", mock.Anything, testUser.ID, spaceID).Return(nil, service.ErrSpaceNotFound).Once()

		resp, _ := app.Test(request(http.MethodGet, "/spaces/"+spaceID, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Space not found", decodeError(t, resp).Detail)
		m.assert(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		app, m := newApp(t)
		resp, _ := app.Test(request(http.MethodGet, "/spaces/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Code)
		m.assert(t)
	})

	t.Run("update", func(t *testing.T) {
		app, m := newApp(t)
		name := "Renamed"
		m.spaces.On("Update", mock.Anything, testUser.ID, spaceID, service.SpaceUpdate{Name: &name}).
			Return(&model.Space{ID: spaceID, Name: name}, nil).Once()

		resp, _ := app.Test(request(http.MethodPut, "/spaces/"+spaceID, strings.NewReader(`{"name":"Renamed"}`)))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "Space updated successfully", body["message"])
		m.assert(t)
	})

	t.Run("delete", func(t *testing.T) {
		app, m := newApp(t)
		m.spaces.On("Delete", mock.Anything, testUser.ID, spaceID).
			Return(&service.SpaceDeletion{Name: "Research", DocumentsDeleted: 3}, nil).Once()

		resp, _ := app.Test(request(http.MethodDelete, "/spaces/"+spaceID, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "Space 'Research' and all its documents deleted successfully", body["message"])
		assert.Equal(t, float64(3), body["documents_deleted"])
		m.assert(t)
	})
}

func multipartFile(t *testing.T, name, content string) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	part.Write([]byte(content))
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	spaceID := uuid.New().String()
	target := "/spaces/" + spaceID + "/upload"
	named := func(name string) any {
		return mock.MatchedBy(func(in service.UploadInput) bool {
			return in.SpaceID == spaceID && in.Filename == name && in.Size == 11 && in.Content != nil
		})
	}

	t.Run("success", func(t *testing.T) {
		app, m := newApp(t)
		m.docs.On("Upload", mock.Anything, testUser.ID, named("notes.txt")).Return(&model.UploadReceipt{
			ID: uuid.NewString(), Filename: "notes.txt", SpaceID: spaceID, SpaceName: "Research", Status: "indexed",
		}, nil).Once()

		body, ct := multipartFile(t, "notes.txt", "hello world")
		req := request(http.MethodPost, target, body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res struct {
			Message  string              `json:"message"`
			Document model.UploadReceipt `json:"document"`
		}
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "File uploaded to space 'Research' successfully", res.Message)
		assert.Equal(t, "indexed", res.Document.Status)
		m.assert(t)
	})

	t.Run("no file", func(t *testing.T) {
		app, m := newApp(t)
		resp, _ := app.Test(request(http.MethodPost, target, nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Code)
		m.assert(t)
	})

	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"unsupported", &service.Error{Kind: service.ErrUnsupportedType, Detail: "Unsupported file type. Supported formats: .pdf, .docx, .pptx, .txt"},
			http.StatusBadRequest, "Unsupported file type. Supported formats: .pdf, .docx, .pptx, .txt"},
		{"too large", service.ErrFileTooLarge, http.StatusBadRequest, "File size too large. Maximum allowed size is 50MB."},
		{"empty text", service.ErrEmptyText, http.StatusBadRequest, "No text could be extracted from the document"},
		{"space not owned", service.ErrSpaceNotFound, http.StatusNotFound, "Space not found"},
		{"processing failure", errors.New("index down"), http.StatusInternalServerError, "Error processing document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, m := newApp(t)
			m.docs.On("Upload", mock.Anything, testUser.ID, named("notes.txt")).Return(nil, tt.err).Once()

			body, ct := multipartFile(t, "notes.txt", "hello world")
			req := request(http.MethodPost, target, body)
			req.Header.Set("Content-Type", ct)
			resp, _ := app.Test(req)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.detail, decodeError(t, resp).Detail)
			m.assert(t)
		})
	}
}

func TestDeleteDocument(t *testing.T) {
	spaceID, docID := uuid.New().String(), uuid.New().String()
	target := "/spaces/" + spaceID + "/documents/" + docID

	t.Run("success", func(t *testing.T) {
		app, m := newApp(t)
		m.docs.On("Delete", mock.Anything, testUser.ID, spaceID, docID).
			Return(&model.Document{ID: docID, SpaceID: spaceID, OriginalFileName: "notes.txt"}, nil).Once()

		resp, _ := app.Test(request(http.MethodDelete, target, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "Document 'notes.txt' deleted successfully", body["message"])
		assert.Equal(t, spaceID, body["space_id"])
		m.assert(t)
	})

	t.Run("not found", func(t *testing.T) {
		app, m := newApp(t)
		m.docs.On("Delete", mock.Anything, testUser.ID, spaceID, docID).Return(nil, service.ErrDocumentNotFound).Once()

		resp, _ := app.Test(request(http.MethodDelete, target, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "DOCUMENT_NOT_FOUND", decodeError(t, resp).Code)
		m.assert(t)
	})

	t.Run("service error", func(t *testing.T) {
		app, m := newApp(t)
		m.docs.On("Delete", mock.Anything, testUser.ID, spaceID, docID).Return(nil, errors.New("storage down")).Once()

		resp, _ := app.Test(request(http.MethodDelete, target, nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Error deleting document", decodeError(t, resp).Detail)
		m.assert(t)
	})

	t.Run("invalid document id", func(t *testing.T) {
		app, m := newApp(t)
		resp, _ := app.Test(request(http.MethodDelete, "/spaces/"+spaceID+"/documents/42", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		m.assert(t)
	})
}

func TestSearch(t *testing.T) {
	s1, s2 := uuid.New().String(), uuid.New().String()

	t.Run("parses parameters", func(t *testing.T) {
		app, m := newApp(t)
		want := service.SearchParams{Query: "tides", SpaceIDs: []string{s1, s2}, Filename: "moon.pdf", MaxResults: 20}
		m.search.On("Search", mock.Anything, testUser.ID, want).
			Return(&model.SearchResult{Answer: "the moon", Query: "tides", Sources: []model.Source{}}, nil).Once()

		resp, _ := app.Test(request(http.MethodGet, "/search?q=tides&space_ids="+s1+",%20"+s2+",&filename=moon.pdf&max_results=20", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res model.SearchResult
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "the moon", res.Answer)
		m.assert(t)
	})

	t.Run("defaults", func(t *testing.T) {
		app, m := newApp(t)
		m.search.On("Search", mock.Anything, testUser.ID, service.SearchParams{Query: "tides"}).
			Return(&model.SearchResult{}, nil).Once()

		resp, _ := app.Test(request(http.MethodGet, "/search?q=tides", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		m.assert(t)
	})

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"max_results not a number", "/search?q=x&max_results=ten", http.StatusBadRequest, "INVALID_MAX_RESULTS"},
		{"max_results zero", "/search?q=x&max_results=0", http.StatusBadRequest, "INVALID_MAX_RESULTS"},
		{"bad space id", "/search?q=x&space_ids=abc", http.StatusBadRequest, "INVALID_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, m := newApp(t)
			resp, _ := app.Test(request(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, resp).Code)
			m.assert(t)
		})
	}

	t.Run("service errors", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
			detail string
		}{
			{service.ErrEmptyQuery, http.StatusBadRequest, "Search query cannot be empty"},
			{&service.Error{Kind: service.ErrSpaceNotFound, Detail: "Space '" + s1 + "' not found or access denied"},
				http.StatusNotFound, "Space '" + s1 + "' not found or access denied"},
			{errors.New("index down"), http.StatusInternalServerError, "Search error"},
		}
		for _, tc := range cases {
			app, m := newApp(t)
			m.search.On("Search", mock.Anything, testUser.ID, mock.Anything).Return(nil, tc.err).Once()

			resp, _ := app.Test(request(http.MethodGet, "/search?q=%20", nil))
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.detail, decodeError(t, resp).Detail)
			m.assert(t)
		}
	})
}

func TestChats(t *testing.T) {
	chatID := uuid.New().String()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("list", func(t *testing.T) {
		app, m := newApp(t)
		m.chats.On("List", mock.Anything, testUser.ID).Return([]model.Chat{{ID: chatID, Title: "New Chat"}}, nil).Once()

		resp, _ := app.Test(request(http.MethodGet, "/chats", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Chats []model.Chat `json:"chats"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		require.Len(t, body.Chats, 1)
		m.assert(t)
	})

	t.Run("create without body", func(t *testing.T) {
		app, m := newApp(t)
		m.chats.On("Create", mock.Anything, testUser.ID, "").Return(&model.Chat{ID: chatID, Title: "New Chat"}, nil).Once()

		resp, _ := app.Test(request(http.MethodPost, "/chats", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		m.assert(t)
	})

	t.Run("messages of unknown chat", func(t *testing.T) {
		app, m := newApp(t)
		m.chats.On("Messages", mock.Anything, testUser.ID, chatID).Return(nil, service.ErrChatNotFound).Once()

		resp, _ := app.Test(request(http.MethodGet, "/chats/"+chatID+"/messages", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Chat not found", decodeError(t, resp).Detail)
		m.assert(t)
	})

	t.Run("send", func(t *testing.T) {
		app, m := newApp(t)
		m.chats.On("Send", mock.Anything, testUser.ID, chatID, "what is up").Return(&model.Exchange{
			UserMessage: model.Message{Sender: model.SenderUser, Content: "what is up", Timestamp: now},
			AIMessage:   model.Message{Sender: model.SenderAssistant, Content: "answer", Timestamp: now},
		}, nil).Once()

		resp, _ := app.Test(request(http.MethodPost, "/chats/"+chatID+"/messages", jsonBody(t, messageRequest{Content: "what is up"})))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var ex model.Exchange
		json.NewDecoder(resp.Body).Decode(&ex)
		assert.Equal(t, "answer", ex.AIMessage.Content)
		m.assert(t)
	})
}

func TestStats(t *testing.T) {
	app, m := newApp(t)
	m.system.On("Stats", mock.Anything, testUser.ID).
		Return(&model.StatsReport{UserStats: model.UserStats{SpacesCount: 2}}, nil).Once()

	resp, _ := app.Test(request(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var res model.StatsReport
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Equal(t, int64(2), res.UserStats.SpacesCount)

	m.system.On("Stats", mock.Anything, testUser.ID).Return(nil, errors.New("db gone")).Once()
	resp, _ = app.Test(request(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Error getting stats", decodeError(t, resp).Detail)
	m.assert(t)
}

func TestInternalErrorsStayInLogs(t *testing.T) {
	spaceID, docID := uuid.New().String(), uuid.New().String()
	cause := errors.New("pq: password authentication failed for user \"beecok\" at 10.0.0.7:5432")

	tests := []struct {
		name       string
		setupMocks func(m *mocks)
		req        func() *http.Request
		detail     string
	}{
		{
			name: "search",
			setupMocks: func(m *mocks) {
				m.search.On("Search", mock.Anything, testUser.ID, mock.Anything).Return(nil, cause).Once()
			},
			req:    func() *http.Request { return request(http.MethodGet, "/search?q=dose", nil) },
			detail: "Search error",
		},
		{
			name: "upload",
			setupMocks: func(m *mocks) {
				m.docs.On("Upload", mock.Anything, testUser.ID, mock.Anything).Return(nil, cause).Once()
			},
			req: func() *http.Request {
				body, ct := multipartFile(t, "notes.txt", "hello world")
				req := request(http.MethodPost, "/spaces/"+spaceID+"/upload", body)
				req.Header.Set("Content-Type", ct)
				return req
			},
			detail: "Error processing document",
		},
		{
			name: "delete document",
			setupMocks: func(m *mocks) {
				m.docs.On("Delete", mock.Anything, testUser.ID, spaceID, docID).Return(nil, cause).Once()
			},
			req:    func() *http.Request { return request(http.MethodDelete, "/spaces/"+spaceID+"/documents/"+docID, nil) },
			detail: "Error deleting document",
		},
		{
			name: "stats",
			setupMocks: func(m *mocks) {
				m.system.On("Stats", mock.Anything, testUser.ID).Return(nil, cause).Once()
			},
			req:    func() *http.Request { return request(http.MethodGet, "/stats", nil) },
			detail: "Error getting stats",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, m := newApp(t)
			tt.setupMocks(m)

			resp, err := app.Test(tt.req())
			require.NoError(t, err)
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.NotContains(t, string(raw), "10.0.0.7")
			assert.NotContains(t, string(raw), "password")
			var body errorPayload
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tt.detail, body.Detail)
			assert.Equal(t, "INTERNAL_ERROR", body.Code)

			entries := m.logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, cause.Error(), entries[0].ContextMap()["error"])
			m.assert(t)
		})
	}

	t.Run("mapped errors are not logged", func(t *testing.T) {
		app, m := newApp(t)
		m.search.On("Search", mock.Anything, testUser.ID, mock.Anything).Return(nil, service.ErrEmptyQuery).Once()

		resp, _ := app.Test(request(http.MethodGet, "/search?q=%20", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Zero(t, m.logs.Len())
		m.assert(t)
	})
}

func TestRouting(t *testing.T) {
	app, _ := newApp(t)

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// /health only allows GET
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Code)
	})
}
