package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoseacodes/mailgate/internal/config"
	"github.com/hoseacodes/mailgate/internal/errs"
	"github.com/hoseacodes/mailgate/internal/lib/email"
	"github.com/hoseacodes/mailgate/internal/server"
)

type fakeSender struct {
	sent []*email.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg *email.Message) (*email.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, msg)
	return &email.Result{ProviderID: "msg_1"}, nil
}

type fakeBatchSender struct {
	fakeSender
	batches [][]*email.Message
}

func (f *fakeBatchSender) SendBatch(_ context.Context, msgs []*email.Message) ([]email.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, msgs)
	results := make([]email.Result, len(msgs))
	for i := range results {
		results[i] = email.Result{ProviderID: "batch_1"}
	}
	return results, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Primary: config.Primary{Env: "test"},
		Mail: config.MailConfig{
			Provider:    "resend",
			Enabled:     true,
			FromAddress: "noreply@example.com",
			FromName:    "User Management System",
			TemplateDir: "no-such-dir",
		},
		Token: config.TokenConfig{
			Secret: "test-secret",
			TTL:    time.Hour,
		},
		App: config.AppConfig{
			BaseURL:     "http://localhost:8080",
			AdminEmail:  "admin@example.com",
			OpsEmail:    "ops@example.com",
			Name:        "Acme",
			DisplayName: "Acme Portal",
		},
	}
}

func newTestService(cfg *config.Config, sender email.Sender) *NotificationService {
	logger := zerolog.Nop()
	return NewNotificationService(&server.Server{
		Config: cfg,
		Logger: &logger,
		Mailer: sender,
	})
}

func userReq(kind Kind) *DispatchRequest {
	return &DispatchRequest{
		Kind: kind,
		User: &UserEvent{Email: "ann@acme.test", Name: "Ann Lee"},
	}
}

func consultationReq(kind Kind) *DispatchRequest {
	return &DispatchRequest{
		Kind: kind,
		Consultation: &ConsultationEvent{
			FirstName:        "Ann",
			LastName:         "Lee",
			Email:            "ann@acme.test",
			Company:          "Acme",
			ConsultationType: "Architecture Review",
			Date:             "2026-03-14",
			TimeSlot:         "15:00",
			MeetingLink:      "https://meet.example.com/x",
		},
	}
}

func TestDispatchApprovedSendsToUser(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender)

	result, err := svc.Dispatch(context.Background(), userReq(KindApproved))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "ann@acme.test", result.Recipient)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"ann@acme.test"}, msg.To)
	assert.Equal(t, "Your Acme Account Has Been Approved", msg.Subject)
	assert.Equal(t, "noreply@example.com", msg.From)
	assert.Contains(t, msg.HTML, "Ann Lee")
	assert.NotContains(t, msg.HTML, "{{userName}}")
}

func TestDispatchApprovalRoutesToAdminWithDecisionLinks(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender)

	result, err := svc.Dispatch(context.Background(), userReq(KindApproval))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "admin@example.com", result.Recipient)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"admin@example.com"}, msg.To)
	assert.Contains(t, msg.HTML, "http://localhost:8080/auth/approve?token=")
	assert.Contains(t, msg.HTML, "http://localhost:8080/auth/deny?token=")
}

func TestDispatchApprovalEmbedsVerifiableToken(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender)

	_, err := svc.Dispatch(context.Background(), userReq(KindApproval))
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	// The issuer that built the link must accept its own token.
	raw, err := svc.issuer.Issue("ann@acme.test", "Ann Lee")
	require.NoError(t, err)

	claims, err := svc.VerifyApprovalToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "ann@acme.test", claims.Email)
	assert.Equal(t, "Ann Lee", claims.Name)
}

func TestVerifyApprovalTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(testConfig(), &fakeSender{})

	_, err := svc.VerifyApprovalToken("garbage")

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Status)
	assert.Equal(t, errs.CodeTokenInvalid, httpErr.Code)
}

func TestDispatchConsultationNotificationRoutesToOps(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender)

	result, err := svc.Dispatch(context.Background(), consultationReq(KindConsultationNotification))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "ops@example.com", result.Recipient)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "New Engineering Consultation Scheduled - Acme", msg.Subject)
	assert.Contains(t, msg.HTML, "Saturday, March 14, 2026")
	assert.Contains(t, msg.HTML, "3:00 PM CST")
	assert.Empty(t, msg.Attachments)
}

func TestDispatchConsultationConfirmationAttachesInvite(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender)

	result, err := svc.Dispatch(context.Background(), consultationReq(KindConsultationConfirmation))
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"ann@acme.test"}, msg.To)
	require.Len(t, msg.Attachments, 1)

	att := msg.Attachments[0]
	assert.Equal(t, "consultation.ics", att.Filename)
	assert.Contains(t, string(att.Content), "BEGIN:VCALENDAR")
	assert.Contains(t, string(att.Content), "DTSTART:20260314T150000Z")
	assert.Contains(t, string(att.Content), "DTEND:20260314T153000Z")
}

func TestDispatchConsultationConfirmationBadSlotSkipsInvite(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender)

	req := consultationReq(KindConsultationConfirmation)
	req.Consultation.TimeSlot = "3pm-ish"

	result, err := svc.Dispatch(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, sender.sent, 1)
	assert.Empty(t, sender.sent[0].Attachments)
}

func TestDispatchMissingFieldsFailsBeforeSending(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender)

	req := consultationReq(KindConsultationConfirmation)
	req.Consultation.MeetingLink = ""

	_, err := svc.Dispatch(context.Background(), req)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Status)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "meetingLink", httpErr.Errors[0].Field)

	assert.Empty(t, sender.sent)
}

func TestDispatchUnknownKind(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender)

	_, err := svc.Dispatch(context.Background(), &DispatchRequest{Kind: "newsletter"})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Status)
	assert.Contains(t, httpErr.Message, "newsletter")
	assert.Contains(t, httpErr.Message, "consultation-confirmation")

	assert.Empty(t, sender.sent)
}

func TestDispatchTransportFailureYieldsFailedResult(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay unreachable")}
	svc := newTestService(testConfig(), sender)

	result, err := svc.Dispatch(context.Background(), userReq(KindPending))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "ann@acme.test", result.Recipient)
	assert.Contains(t, result.ErrorDetail, "relay unreachable")
}

func TestDispatchDisabledMailDropsMessage(t *testing.T) {
	cfg := testConfig()
	cfg.Mail.Enabled = false

	sender := &fakeSender{}
	svc := newTestService(cfg, sender)

	result, err := svc.Dispatch(context.Background(), userReq(KindApproved))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "email service is disabled", result.ErrorDetail)
	assert.Empty(t, sender.sent)
}

func TestDispatchPasswordResetRequiresResetURL(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender)

	_, err := svc.Dispatch(context.Background(), userReq(KindPasswordReset))

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "resetUrl", httpErr.Errors[0].Field)
}

func TestDispatchGeneric(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender)

	result, err := svc.Dispatch(context.Background(), &DispatchRequest{
		Kind: KindGeneric,
		Generic: &GenericMessage{
			To:      []string{"a@example.com", "b@example.com"},
			Subject: "Hello",
			Text:    "Plain body",
		},
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, sender.sent[0].To)
	assert.Equal(t, "Plain body", sender.sent[0].Text)
}

func TestDeliverBatchUsesBatchEndpoint(t *testing.T) {
	sender := &fakeBatchSender{}
	svc := newTestService(testConfig(), sender)

	msgs := []*email.Message{
		{To: []string{"a@example.com"}, Subject: "one", Text: "1"},
		{To: []string{"b@example.com"}, Subject: "two", Text: "2"},
	}

	results, err := svc.Deliver(context.Background(), msgs, true)
	require.NoError(t, err)

	assert.Len(t, results, 2)
	require.Len(t, sender.batches, 1)
	assert.Len(t, sender.batches[0], 2)
	assert.Empty(t, sender.sent)

	// Sender identity defaults were stamped before handoff.
	assert.Equal(t, "noreply@example.com", msgs[0].From)
}

func TestDeliverSequentialWithoutBatchSupport(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender)

	msgs := []*email.Message{
		{To: []string{"a@example.com"}, Subject: "one", Text: "1"},
		{To: []string{"b@example.com"}, Subject: "two", Text: "2"},
	}

	results, err := svc.Deliver(context.Background(), msgs, true)
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Len(t, sender.sent, 2)
}

func TestDeliverDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Mail.Enabled = false
	svc := newTestService(cfg, &fakeSender{})

	_, err := svc.Deliver(context.Background(), []*email.Message{{To: []string{"a@example.com"}}}, false)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, errs.CodeMailDisabled, httpErr.Code)
}
