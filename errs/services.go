package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Third-Party API & LLM Specific Errors
var (
	ErrAIService          = errors.New("AI service error")
	ErrAIUnavailable      = errors.New("AI assistant is not configured")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrInvalidAPIKey      = errors.New("invalid API key")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Configuration & Environment Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
	ErrConfigInvalid = errors.New("configuration invalid")
)

// Outbound delivery errors (email, SMS, object storage)
var (
	ErrDelivery = errors.New("delivery failed")
)

// NewAIServiceError wraps a failed or unconfigured generative-AI call.
func NewAIServiceError(cause error) *ApiErr {
	status := http.StatusServiceUnavailable
	switch {
	case errors.Is(cause, ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
	case errors.Is(cause, ErrInvalidAPIKey):
		status = http.StatusBadGateway
	}
	return &ApiErr{
		StatusCode: status,
		err:        ErrAIService,
		Details:    describeAIFailure(cause),
		Cause:      cause,
		Field:      "assistant",
	}
}

func describeAIFailure(cause error) string {
	switch {
	case cause == nil:
		return "An error occurred while communicating with the AI. Please try again later."
	case errors.Is(cause, ErrAIUnavailable):
		return "The AI assistant is not configured on this server."
	case errors.Is(cause, ErrInvalidAPIKey):
		return "The configured API key is not valid."
	case errors.Is(cause, ErrRateLimitExceeded):
		return "The AI service is busy. Please try again shortly."
	default:
		return "An error occurred while communicating with the AI. Please try again later."
	}
}

func NewConfigError(configName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigInvalid,
		Details:    fmt.Sprintf("Configuration %s is invalid", configName),
		Cause:      cause,
		Field:      configName,
	}
}

func NewConfigMissingError(configName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("%s is not configured", configName),
		Field:      configName,
	}
}

func NewDeliveryError(channel string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrDelivery,
		Details:    fmt.Sprintf("Failed to deliver via %s", channel),
		Cause:      cause,
	}
}

func IsAIServiceError(err error) bool {
	return errors.Is(err, ErrAIService)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigMissing) || errors.Is(err, ErrConfigInvalid)
}

func IsDeliveryError(err error) bool {
	return errors.Is(err, ErrDelivery)
}
