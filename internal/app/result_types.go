package app

import "captable/internal/core"

// AIScenarioResult is the outcome of a natural-language what-if. Exactly one
// of Clarification or Proposal is set; Result is present when the proposal
// resolved against the company's records and the scenario ran.
type AIScenarioResult struct {
	IsClarification bool                   `json:"is_clarification"`
	Clarification   string                 `json:"clarification,omitempty"`
	Proposal        *core.ScenarioProposal `json:"proposal,omitempty"`
	Result          *core.ScenarioResult   `json:"result,omitempty"`
	Unresolved      []string               `json:"unresolved,omitempty"`
}
