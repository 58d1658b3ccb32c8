package rewriter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTone(t *testing.T) {
	tone, err := ParseTone("professional")
	require.NoError(t, err)
	assert.Equal(t, ToneProfessional, tone)

	tone, err = ParseTone(" APOLOGETIC ")
	require.NoError(t, err)
	assert.Equal(t, ToneApologetic, tone)

	_, err = ParseTone("sarcastic")
	assert.Error(t, err)
}

func TestNewRequest_Defaults(t *testing.T) {
	req := NewRequest("hi", ToneFriendly, "command")
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
	assert.Equal(t, 1000, req.MaxTokens)
	assert.NoError(t, req.Validate())
}

func TestRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Request)
	}{
		{"blank email", func(r *Request) { r.Email = " \n" }},
		{"unknown tone", func(r *Request) { r.Tone = "Sarcastic" }},
		{"missing model", func(r *Request) { r.Model = "" }},
		{"temperature above one", func(r *Request) { r.Temperature = 1.5 }},
		{"negative temperature", func(r *Request) { r.Temperature = -0.1 }},
		{"zero tokens", func(r *Request) { r.MaxTokens = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := NewRequest("hello", ToneProfessional, "command")
			tc.mut(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestResultVariants(t *testing.T) {
	ok := success("done", 1)
	assert.True(t, ok.OK())
	assert.NoError(t, ok.Err())

	boom := errors.New("boom")
	bad := failure(boom, 2)
	assert.False(t, bad.OK())
	assert.Equal(t, StatusError, bad.Status)
	assert.Equal(t, "boom", bad.Error)
	assert.ErrorIs(t, bad.Err(), boom)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Hi, pls send report.", ToneProfessional)
	assert.Contains(t, p, "in a professional tone")
	assert.Contains(t, p, "maintaining the original message")
	assert.Contains(t, p, "Improve clarity, professionalism, and politeness")
	assert.Contains(t, p, "Original email: Hi, pls send report.")
}

func TestIsRateLimit(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"Rate Limit Exceeded", true},
		{"RATE LIMIT", true},
		{"you hit the rate limit, slow down", true},
		{"rate-limited", false},
		{"ratelimit", false},
		{"invalid api token", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsRateLimit(errors.New(tc.msg), DefaultRateLimitMarker), tc.msg)
	}
	assert.False(t, IsRateLimit(nil, DefaultRateLimitMarker))
	assert.False(t, IsRateLimit(errors.New("rate limit"), ""))
}
