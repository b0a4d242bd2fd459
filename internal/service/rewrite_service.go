package service

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
)

const rewriteSystemPrompt = `You are a professional structural engineer specializing in concrete construction and slab systems. Your task is to analyze and rewrite extracted text from construction drawings and specifications to provide comprehensive, professional engineering documentation.

CRITICAL REQUIREMENTS:
- Write ONLY as a professional structural engineer with expertise in concrete construction
- Use ONLY the information provided in the extracted text - do not add external knowledge
- Expand and elaborate on the provided information to create comprehensive documentation
- Use proper engineering terminology and construction industry standards
- Structure the response as a professional engineering report

PROFESSIONAL ENGINEERING FOCUS:
1. **Structural Analysis**: Interpret structural elements, load requirements, and design specifications
2. **Construction Methodology**: Detail construction processes, sequencing, and installation requirements
3. **Material Specifications**: Expand on concrete mixes, reinforcement, and material requirements
4. **Safety & Compliance**: Highlight safety requirements, inspection protocols, and code compliance
5. **Technical Details**: Provide detailed explanations of structural components and their functions
6. **Quality Control**: Include inspection requirements, testing protocols, and quality standards

FORMATTING REQUIREMENTS:
- Use **bold text** for all measurements, specifications, and critical technical information
- Structure with clear engineering sections and subsections
- Use bullet points for technical specifications and requirements
- Include detailed explanations of structural elements and their purposes
- Maintain professional engineering documentation standards
- Expand on abbreviations and technical terms with full explanations
- Provide context for all structural elements and their relationships

EXPANSION GUIDELINES:
- Take every piece of information and expand it with professional engineering context
- Explain the purpose and function of each structural element mentioned
- Detail the construction sequence and methodology
- Include relevant engineering calculations and design considerations
- Explain the relationship between different structural components
- Provide comprehensive coverage of all technical aspects mentioned in the original text`

const rewriteUserPromptFormat = `As a professional structural engineer, please analyze and rewrite the following extracted text from the construction document "%s".

Transform this information into a comprehensive professional engineering report that:
- Expands on every technical detail provided
- Explains the structural purpose and function of each element
- Details construction methodology and sequencing
- Includes relevant engineering specifications and requirements
- Uses proper structural engineering terminology
- Provides context for all measurements, materials, and structural components

Extracted text to analyze:
%s`

// chatCompleter is the slice of the OpenAI client the service needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// RewriteResult carries the enhanced text together with its source.
type RewriteResult struct {
	RewrittenText string `json:"rewrittenText"`
	OriginalText  string `json:"originalText"`
	FileName      string `json:"fileName"`
}

// RewriteService turns raw extracted drawing text into a structured
// engineering report via a chat completion.
type RewriteService struct {
	client chatCompleter
	cfg    config.OpenAIConfig
	logger *zap.Logger
}

// NewRewriteService constructs the service from configuration. It returns the
// service with a nil client when no API key is configured; Rewrite then fails
// with a configuration error instead of a network error.
func NewRewriteService(cfg config.OpenAIConfig, logger *zap.Logger) *RewriteService {
	var client chatCompleter
	if cfg.APIKey != "" {
		client = openai.NewClient(cfg.APIKey)
	}
	return &RewriteService{client: client, cfg: cfg, logger: logger}
}

// NewRewriteServiceWithClient injects a preconstructed completion client.
func NewRewriteServiceWithClient(client chatCompleter, cfg config.OpenAIConfig, logger *zap.Logger) *RewriteService {
	return &RewriteService{client: client, cfg: cfg, logger: logger}
}

// Rewrite expands the extracted text into an engineering report.
func (s *RewriteService) Rewrite(ctx context.Context, text, fileName string) (*RewriteResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "No text provided")
	}
	if s.client == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "OpenAI API key not configured")
	}

	req := openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rewriteSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(rewriteUserPromptFormat, fileName, text)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: float32(s.cfg.Temperature),
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("chat completion failed", zap.String("file_name", fileName), zap.Error(err))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "Failed to process text with OpenAI")
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "No response from OpenAI")
	}

	return &RewriteResult{
		RewrittenText: resp.Choices[0].Message.Content,
		OriginalText:  text,
		FileName:      fileName,
	}, nil
}
