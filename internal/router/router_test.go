package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoseacodes/mailgate/internal/config"
	"github.com/hoseacodes/mailgate/internal/handler"
	"github.com/hoseacodes/mailgate/internal/lib/email"
	"github.com/hoseacodes/mailgate/internal/middleware"
	"github.com/hoseacodes/mailgate/internal/server"
	"github.com/hoseacodes/mailgate/internal/service"
	"github.com/hoseacodes/mailgate/internal/token"
)

type recordingSender struct {
	sent []*email.Message
}

func (r *recordingSender) Send(_ context.Context, msg *email.Message) (*email.Result, error) {
	r.sent = append(r.sent, msg)
	return &email.Result{ProviderID: "msg_1"}, nil
}

func (r *recordingSender) SendBatch(_ context.Context, msgs []*email.Message) ([]email.Result, error) {
	r.sent = append(r.sent, msgs...)
	results := make([]email.Result, len(msgs))
	return results, nil
}

func newTestRouter(t *testing.T) (*echo.Echo, *recordingSender) {
	t.Helper()

	logger := zerolog.Nop()
	sender := &recordingSender{}

	srv := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				Port:               "0",
				CORSAllowedOrigins: []string{"*"},
			},
			Mail: config.MailConfig{
				Provider:    "resend",
				Enabled:     true,
				FromAddress: "noreply@example.com",
				FromName:    "Acme Portal",
				TemplateDir: t.TempDir(),
			},
			Token: config.TokenConfig{Secret: "test-secret", TTL: time.Hour},
			App: config.AppConfig{
				BaseURL:     "http://localhost:8080",
				AdminEmail:  "admin@example.com",
				OpsEmail:    "ops@example.com",
				Name:        "Acme",
				DisplayName: "Acme Portal",
			},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
		Mailer: sender,
	}

	services, err := service.NewService(srv)
	require.NoError(t, err)

	handlers := handler.NewHandlers(srv, services)
	middlewares := middleware.NewMiddlewares(srv)

	return New(handlers, middlewares), sender
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSendApprovedEndpoint(t *testing.T) {
	e, sender := newTestRouter(t)

	rec := doJSON(e, http.MethodPost, "/api/email/send",
		`{"templateType":"approved","email":"ann@acme.test","name":"Ann Lee"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result service.DispatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "ann@acme.test", result.Recipient)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Your Acme Account Has Been Approved", sender.sent[0].Subject)
}

func TestSendMissingTemplateType(t *testing.T) {
	e, sender := newTestRouter(t)

	rec := doJSON(e, http.MethodPost, "/api/email/send", `{"email":"ann@acme.test"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sender.sent)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "BAD_REQUEST", payload["code"])
}

func TestSendUnknownTemplateType(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := doJSON(e, http.MethodPost, "/api/email/send",
		`{"templateType":"newsletter","email":"a@b.test","name":"A"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "newsletter")
}

func TestApproveWithValidToken(t *testing.T) {
	e, sender := newTestRouter(t)

	issuer := token.NewIssuer("test-secret", time.Hour)
	raw, err := issuer.Issue("ann@acme.test", "Ann Lee")
	require.NoError(t, err)

	rec := doJSON(e, http.MethodGet, "/auth/approve?token="+raw, "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, true, payload["emailSent"])

	user := payload["user"].(map[string]interface{})
	assert.Equal(t, "APPROVED", user["status"])
	assert.Equal(t, "ann@acme.test", user["email"])

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ann@acme.test"}, sender.sent[0].To)
}

func TestApproveWithInvalidToken(t *testing.T) {
	e, sender := newTestRouter(t)

	rec := doJSON(e, http.MethodGet, "/auth/approve?token=garbage", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_INVALID")
	assert.Empty(t, sender.sent)
}

func TestManualDeny(t *testing.T) {
	e, sender := newTestRouter(t)

	rec := doJSON(e, http.MethodPost, "/auth/manual-deny",
		`{"email":"ann@acme.test","name":"Ann Lee"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	user := payload["user"].(map[string]interface{})
	assert.Equal(t, "DENIED", user["status"])

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Subject, "Registration Status")
}

func TestDeliverBatch(t *testing.T) {
	e, sender := newTestRouter(t)

	rec := doJSON(e, http.MethodPost, "/api/email/deliver",
		`{"batch":true,"messages":[
			{"to":["a@example.com"],"subject":"one","text":"1"},
			{"to":["b@example.com"],"subject":"two","text":"2"}
		]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload handler.DeliverResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 2, payload.Count)
	assert.Len(t, sender.sent, 2)
}

func TestStatusEndpoint(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := doJSON(e, http.MethodGet, "/status", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestUnknownRouteIs404(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := doJSON(e, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found")
}
