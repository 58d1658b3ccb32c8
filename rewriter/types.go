package rewriter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Tone string

const (
	ToneProfessional Tone = "Professional"
	ToneFriendly     Tone = "Friendly"
	TonePersuasive   Tone = "Persuasive"
	ToneApologetic   Tone = "Apologetic"
)

var Tones = []Tone{ToneProfessional, ToneFriendly, TonePersuasive, ToneApologetic}

func ParseTone(s string) (Tone, error) {
	s = strings.TrimSpace(s)
	for _, t := range Tones {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tone %q", s)
}

const (
	DefaultModel       = "command"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

var (
	ErrEmptyEmail       = errors.New("email text is empty")
	ErrEmptyResponse    = errors.New("empty response from model")
	ErrRetriesExhausted = errors.New("max retries reached due to rate limits")
)

type Request struct {
	Email       string  `json:"email" validate:"required"`
	Tone        Tone    `json:"tone" validate:"required,oneof=Professional Friendly Persuasive Apologetic"`
	Model       string  `json:"model" validate:"required"`
	Temperature float64 `json:"temperature" validate:"gte=0,lte=1"`
	MaxTokens   int     `json:"max_tokens" validate:"gt=0"`
}

// NewRequest fills temperature and token budget with the defaults used by the
// web form.
func NewRequest(email string, tone Tone, model string) Request {
	return Request{
		Email:       email,
		Tone:        tone,
		Model:       model,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (r Request) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return ErrEmptyEmail
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid rewrite request: %w", err)
	}
	return nil
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

type Result struct {
	Status    Status `json:"status"`
	Rewritten string `json:"rewritten_email,omitempty"`
	Error     string `json:"error,omitempty"`
	Attempts  int    `json:"attempts"`

	err error
}

func success(text string, attempts int) Result {
	return Result{Status: StatusSuccess, Rewritten: text, Attempts: attempts}
}

func failure(err error, attempts int) Result {
	return Result{Status: StatusError, Error: err.Error(), Attempts: attempts, err: err}
}

func (r Result) OK() bool { return r.Status == StatusSuccess }

// Err returns the error behind a failed result, nil on success.
func (r Result) Err() error { return r.err }

type Validation struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`

	err error
}

func (v Validation) Err() error { return v.err }
