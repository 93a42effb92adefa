package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/licensepro/alvara-backend/pkg/genai"
	"github.com/licensepro/alvara-backend/pkg/logger"
)

// Fixed user-facing messages from the original advisory flow. A remote
// failure surfaces one of these, never an error response.
const (
	MessageNoLicenses    = "Nenhuma licença cadastrada para análise de compliance."
	MessageEmptyInsights = "Dados insuficientes para gerar insights."
	MessageUnavailable   = "O assistente de IA está temporariamente indisponível para análise."

	systemInstruction     = "Você é um assistente virtual especializado em auditoria jurídica e compliance empresarial."
	generationTemperature = 0.4
)

type projectionSource interface {
	Projections(ctx context.Context) ([]Projection, error)
}

type textGenerator interface {
	GenerateText(ctx context.Context, req genai.GenerateRequest) (string, error)
}

// Service produces the executive compliance summary.
type Service struct {
	source projectionSource
	client textGenerator
	logg   *logger.Logger
}

// NewService builds the advisory service.
func NewService(source projectionSource, client textGenerator, logg *logger.Logger) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("projection source required")
	}
	if client == nil {
		return nil, fmt.Errorf("text generator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{source: source, client: client, logg: logg}, nil
}

// Analyze builds the prompt from the current license collection and asks
// the model for a summary. It always returns displayable text: an empty
// collection short-circuits without a remote call, and remote failures
// fall back to the fixed unavailability message.
func (s *Service) Analyze(ctx context.Context) string {
	projections, err := s.source.Projections(ctx)
	if err != nil {
		s.logg.Error(ctx, "load license projections", err)
		return MessageUnavailable
	}
	if len(projections) == 0 {
		return MessageNoLicenses
	}

	payload, err := json.Marshal(projections)
	if err != nil {
		s.logg.Error(ctx, "marshal projections", err)
		return MessageUnavailable
	}

	text, err := s.client.GenerateText(ctx, genai.GenerateRequest{
		Prompt:            buildPrompt(string(payload)),
		SystemInstruction: systemInstruction,
		Temperature:       generationTemperature,
	})
	if err != nil {
		s.logg.Error(ctx, "generate compliance summary", err)
		return MessageUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return MessageEmptyInsights
	}
	return text
}

func buildPrompt(payload string) string {
	var b strings.Builder
	b.WriteString("Como um Auditor de Compliance Sênior, analise estas licenças de múltiplas empresas:\n")
	b.WriteString(payload)
	b.WriteString("\n\nForneça um resumo executivo profissional:\n")
	b.WriteString("1. Liste os riscos imediatos por empresa.\n")
	b.WriteString("2. Identifique gargalos de renovação.\n")
	b.WriteString("3. Dê uma recomendação estratégica curta em português (máx 150 palavras).\n")
	b.WriteString("Mantenha um tom corporativo e sério.\n")
	return b.String()
}
