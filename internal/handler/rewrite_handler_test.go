package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/ttf-construction/ai-takeoff-api/internal/service"
	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
)

type completerMock struct {
	resp openai.ChatCompletionResponse
	err  error
}

func (m *completerMock) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return m.resp, m.err
}

func newRewriteHandler(mock *completerMock) *RewriteHandler {
	cfg := config.OpenAIConfig{Model: "gpt-3.5-turbo", MaxTokens: 4000, Temperature: 0.3}
	return NewRewriteHandler(service.NewRewriteServiceWithClient(mock, cfg, nil))
}

func TestRewriteHandlerRewrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &completerMock{
		resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "**Slab on grade** report"}},
			},
		},
	}
	handler := newRewriteHandler(mock)

	c, w := newGinContext(http.MethodPost, "/rewrite-text", []byte(`{"text":"SOG 4 inch","fileName":"plan.pdf"}`))
	handler.Rewrite(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"rewrittenText":"**Slab on grade** report"`)
	require.Contains(t, w.Body.String(), `"originalText":"SOG 4 inch"`)
}

func TestRewriteHandlerRequiresText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRewriteHandler(&completerMock{})

	c, w := newGinContext(http.MethodPost, "/rewrite-text", []byte(`{"fileName":"plan.pdf"}`))
	handler.Rewrite(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "No text provided")
}

func TestRewriteHandlerUpstreamFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRewriteHandler(&completerMock{err: errors.New("rate limited")})

	c, w := newGinContext(http.MethodPost, "/rewrite-text", []byte(`{"text":"SOG 4 inch"}`))
	handler.Rewrite(c)
	require.Equal(t, http.StatusBadGateway, w.Code)
}
