package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"captable/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// AgentService turns a natural-language what-if question into a structured
// issuance scenario proposal.
type AgentService interface {
	InterpretScenario(ctx context.Context, naturalLanguage, shareholderList, shareClassList string) (*core.ScenarioAgentResponse, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

func (a *Agent) InterpretScenario(ctx context.Context, naturalLanguage, shareholderList, shareClassList string) (*core.ScenarioAgentResponse, error) {
	prompt := fmt.Sprintf(`You are an equity management assistant.
Your goal is to interpret a hypothetical share issuance described in natural language ("what if we issue...") and propose a structured future issuance for dilution modeling.
Rules:
1. Use ONLY shareholder and share class names from the lists below. If the event introduces a new investor, use their name as given.
2. Shares must be a positive whole number; price per share is a non-negative decimal string.
3. Dates are YYYY-MM-DD.
4. Provide a confidence score (0.0-1.0) and explain your reasoning.
5. If the question lacks the share count or the price, ask for clarification instead of guessing.

Shareholders:
%s

Share classes:
%s

Question: %s`, shareholderList, shareClassList, naturalLanguage)

	// The response schema is reflected from the Go struct, so schema and
	// parser can never drift apart.
	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "issuance_scenario_proposal",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A proposed hypothetical share issuance for dilution modeling"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var response core.ScenarioAgentResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if response.IsClarificationRequest {
		if response.Clarification == nil {
			return nil, fmt.Errorf("clarification requested without a message")
		}
		return &response, nil
	}

	if response.Proposal == nil {
		return nil, fmt.Errorf("response carries neither proposal nor clarification")
	}
	response.Proposal.Normalize()
	if err := response.Proposal.Validate(); err != nil {
		return nil, fmt.Errorf("proposal validation failed: %w", err)
	}
	return &response, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.ScenarioAgentResponse
	return reflector.Reflect(v)
}
