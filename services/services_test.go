package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

type fakeModel struct {
	answer   string
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.opts)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.answer}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestAssistantAsk(t *testing.T) {
	model := &fakeModel{answer: "It uses Go."}
	assistant := NewAssistantWithModel(model)
	require.True(t, assistant.Configured())

	answer, err := assistant.Ask(context.Background(), "A dashboard written in Go.", "What language?")
	require.NoError(t, err)
	assert.Equal(t, "It uses Go.", answer)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	system, ok := model.messages[0].Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Contains(t, system.Text, "A dashboard written in Go.")
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)

	assert.InDelta(t, 0.2, model.opts.Temperature, 1e-9)
	assert.Equal(t, 32, model.opts.TopK)
	assert.InDelta(t, 1.0, model.opts.TopP, 1e-9)
}

func TestAssistantEmptyAnswer(t *testing.T) {
	answer, err := NewAssistantWithModel(&fakeModel{answer: "  "}).Ask(context.Background(), "ctx", "q")
	require.NoError(t, err)
	assert.Equal(t, EmptyAnswer, answer)
}

func TestAssistantFailures(t *testing.T) {
	_, err := NewAssistantWithModel(nil).Ask(context.Background(), "ctx", "q")
	assert.ErrorIs(t, err, errs.ErrAIService)
	assert.ErrorIs(t, err, errs.ErrAIUnavailable)

	_, err = NewAssistantWithModel(&fakeModel{err: errors.New("googleapi: API key not valid. Please pass a valid API key.")}).
		Ask(context.Background(), "ctx", "q")
	assert.ErrorIs(t, err, errs.ErrInvalidAPIKey)
	assert.Equal(t, http.StatusBadGateway, errs.StatusCode(err))

	_, err = NewAssistantWithModel(&fakeModel{err: errors.New("rpc error: RESOURCE_EXHAUSTED")}).
		Ask(context.Background(), "ctx", "q")
	assert.Equal(t, http.StatusTooManyRequests, errs.StatusCode(err))

	_, err = NewAssistantWithModel(&fakeModel{answer: "x"}).Ask(context.Background(), "ctx", "   ")
	assert.Equal(t, http.StatusBadRequest, errs.StatusCode(err))
}

func TestNewAssistantWithoutKey(t *testing.T) {
	assistant, err := NewAssistant(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, assistant.Configured())
}

func TestGreeting(t *testing.T) {
	assert.Equal(t, `I am an AI assistant with knowledge about the "Shop" project. Ask me anything about its details!`, Greeting("Shop"))
}

func TestMailerSendEmail(t *testing.T) {
	var got ResendEmailRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer server.Close()

	mailer := NewMailer("re_test", "Site <site@example.com>", server.URL)
	require.True(t, mailer.Configured())

	err := mailer.SendEmail(context.Background(), "Hello", "<p>hi</p>", "visitor@example.com", []string{"owner@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, []string{"owner@example.com"}, got.To)
	assert.Equal(t, "Site <site@example.com>", got.From)
	assert.Equal(t, "visitor@example.com", got.ReplyTo)
}

func TestMailerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer server.Close()

	err := NewMailer("re_test", "bad", server.URL).SendEmail(context.Background(), "s", "b", "", []string{"a@b.com"})
	require.Error(t, err)
	assert.True(t, errs.IsDeliveryError(err))
	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.GetFullError(), "invalid from address")

	err = NewMailer("", "", server.URL).SendEmail(context.Background(), "s", "b", "", []string{"a@b.com"})
	assert.True(t, errs.IsConfigError(err))

	err = NewMailer("k", "f", server.URL).SendEmail(context.Background(), "s", "b", "", nil)
	assert.Error(t, err)
}

func TestContactHTMLEscapes(t *testing.T) {
	body := ContactHTML(ContactMessage{Name: "<b>Eve</b>", Email: "eve@example.com", Message: "line1\nline2"})
	assert.Contains(t, body, "&lt;b&gt;Eve&lt;/b&gt;")
	assert.Contains(t, body, "line1<br>line2")
}

type fakeMessages struct {
	params *openapi.CreateMessageParams
	err    error
}

func (f *fakeMessages) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &openapi.ApiV2010Message{Sid: &sid}, nil
}

func TestLeadNotifier(t *testing.T) {
	messages := &fakeMessages{}
	notifier := &LeadNotifier{messages: messages, from: "+15550000000", to: "+15551111111"}
	lead := models.Lead{Email: "a@b.com", Phone: "555-123-4567", ProjectName: "Shop"}

	require.NoError(t, notifier.NotifyLead(context.Background(), lead))
	require.NotNil(t, messages.params)
	assert.Equal(t, "+15551111111", *messages.params.To)
	assert.Equal(t, "+15550000000", *messages.params.From)
	assert.Equal(t, "New lead for Shop: a@b.com, 555-123-4567", *messages.params.Body)

	messages.err = errors.New("twilio down")
	assert.True(t, errs.IsDeliveryError(notifier.NotifyLead(context.Background(), lead)))
}

func TestNewLeadNotifierRequiresConfig(t *testing.T) {
	assert.Nil(t, NewLeadNotifier("", "token", "+1", "+2"))
	assert.NotNil(t, NewLeadNotifier("AC123", "token", "+1", "+2"))
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestLeadExporter(t *testing.T) {
	putter := &fakePutter{}
	exporter := NewLeadExporter(putter, "leads-bucket")
	exporter.now = func() time.Time { return time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC) }

	leads := []models.Lead{{
		ID:          uuid.New(),
		Email:       "a@b.com",
		Phone:       "555-123-4567",
		ProjectID:   uuid.New(),
		ProjectName: "Shop, Inc",
		CapturedAt:  time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC),
	}}

	result, err := exporter.Export(context.Background(), leads)
	require.NoError(t, err)
	assert.Equal(t, ExportResult{Bucket: "leads-bucket", Key: "leads/leads-20240601T123000Z.csv", Rows: 1}, result)
	assert.Equal(t, "leads-bucket", *putter.input.Bucket)
	assert.Equal(t, "text/csv", *putter.input.ContentType)

	records, err := csv.NewReader(bytes.NewReader(putter.body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "project_name", records[0][5])
	assert.Equal(t, "Shop, Inc", records[1][5])
	assert.Equal(t, "2024-05-31T08:00:00Z", records[1][1])

	putter.err = errors.New("access denied")
	_, err = exporter.Export(context.Background(), leads)
	assert.True(t, errs.IsDeliveryError(err))
}

func TestWriteLeadsCSVNeutralizesFormulas(t *testing.T) {
	email := "=cmd|'/Ccalc'!A0@evil.com"
	require.True(t, models.ValidEmail(email), "the lead gate accepts this address")

	leads := []models.Lead{{
		ID:          uuid.New(),
		Email:       email,
		Phone:       "+1 555 123 4567",
		ProjectID:   uuid.New(),
		ProjectName: "@SUM(A1:A2)",
		CapturedAt:  time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC),
	}, {
		ID:          uuid.New(),
		Email:       "jane@example.com",
		Phone:       "555-123-4567",
		ProjectID:   uuid.New(),
		ProjectName: "Shop",
		CapturedAt:  time.Date(2024, 5, 31, 9, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteLeadsCSV(&buf, leads))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "'"+email, records[1][2])
	assert.Equal(t, "'+1 555 123 4567", records[1][3])
	assert.Equal(t, "'@SUM(A1:A2)", records[1][5])

	assert.Equal(t, "jane@example.com", records[2][2])
	assert.Equal(t, "555-123-4567", records[2][3])
	assert.Equal(t, "Shop", records[2][5])
}

func TestWriteLeadsCSVEmpty(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteLeadsCSV(&buf, nil))
	assert.Equal(t, "id,captured_at,email,phone,project_id,project_name\n", buf.String())
}
