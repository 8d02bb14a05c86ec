package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/rpupo63/mindmesh-portfolio/errs"
)

const DefaultAssistantModel = "gemini-2.5-flash"

// Messages shown by the project chat widget.
const (
	FallbackAnswer = "I seem to be having trouble connecting. Please check your API key setup and try again."
	EmptyAnswer    = "I received a response, but it was empty. The model may not have had an answer based on the context."
)

const systemInstructionTemplate = `You are an expert AI assistant providing information about a software project.
Your knowledge is strictly limited to the project description provided below.
Do not make up information. If the answer is not in the description, state that the information is not available in the provided context.
Answer concisely and directly based on the user's question.

PROJECT DESCRIPTION:
---
%s
---
`

// Greeting is the first message of a project chat.
func Greeting(projectName string) string {
	return fmt.Sprintf("I am an AI assistant with knowledge about the %q project. Ask me anything about its details!", projectName)
}

// Assistant answers visitor questions about a single project's description.
type Assistant struct {
	model  llms.Model
	logger zerolog.Logger
}

// NewAssistant builds a Gemini-backed assistant. An empty apiKey yields an assistant
// whose every answer fails with errs.ErrAIUnavailable.
func NewAssistant(ctx context.Context, apiKey, modelName string) (*Assistant, error) {
	if apiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set, project assistant disabled")
		return NewAssistantWithModel(nil), nil
	}
	if modelName == "" {
		modelName = DefaultAssistantModel
	}
	model, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(modelName))
	if err != nil {
		return nil, fmt.Errorf("creating googleai client: %w", err)
	}
	return NewAssistantWithModel(model), nil
}

func NewAssistantWithModel(model llms.Model) *Assistant {
	return &Assistant{
		model:  model,
		logger: log.With().Str("component", "assistant").Logger(),
	}
}

func (a *Assistant) Configured() bool {
	return a != nil && a.model != nil
}

// Ask answers question using only projectContext.
func (a *Assistant) Ask(ctx context.Context, projectContext, question string) (string, error) {
	if !a.Configured() {
		return "", errs.NewAIServiceError(errs.ErrAIUnavailable)
	}
	if strings.TrimSpace(question) == "" {
		return "", errs.NewMissingRequiredFieldError("question")
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, fmt.Sprintf(systemInstructionTemplate, projectContext)),
		llms.TextParts(llms.ChatMessageTypeHuman, question),
	}
	resp, err := a.model.GenerateContent(ctx, messages,
		llms.WithTemperature(0.2),
		llms.WithTopK(32),
		llms.WithTopP(1),
	)
	if err != nil {
		a.logger.Error().Err(err).Msg("assistant request failed")
		return "", errs.NewAIServiceError(classifyAIError(err))
	}

	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return EmptyAnswer, nil
	}
	return resp.Choices[0].Content, nil
}

func classifyAIError(err error) error {
	msg := err.Error()
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case strings.Contains(msg, "API key not valid"), strings.Contains(msg, "API_KEY_INVALID"):
		return fmt.Errorf("%w: %v", errs.ErrInvalidAPIKey, err)
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"), strings.Contains(msg, "429"), strings.Contains(strings.ToLower(msg), "quota"):
		return fmt.Errorf("%w: %v", errs.ErrRateLimitExceeded, err)
	default:
		return err
	}
}
