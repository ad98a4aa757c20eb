package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
	"github.com/imaging-appropriateness-mcp-server/internal/feedback"
)

// handleEvaluateAppropriateness runs a full evaluation for a clinical request
func (s *Server) handleEvaluateAppropriateness(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "evaluate_appropriateness").Info("Tool invoked")

	var clinical domain.ClinicalRequest
	if err := unmarshalArguments(req, &clinical); err != nil {
		return errorResult(err), nil
	}
	if clinical.Topic == "" || clinical.Procedure == "" {
		return errorResult(fmt.Errorf("topic and procedure are required")), nil
	}

	result := s.evaluator.Evaluate(&clinical)
	return jsonResult(result)
}

// listAlternativesInput is the argument shape for the list_alternatives tool
type listAlternativesInput struct {
	Topic     string `json:"topic"`
	Procedure string `json:"procedure,omitempty"`
}

// handleListAlternatives ranks alternatives for a topic
func (s *Server) handleListAlternatives(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "list_alternatives").Info("Tool invoked")

	var input listAlternativesInput
	if err := unmarshalArguments(req, &input); err != nil {
		return errorResult(err), nil
	}
	if input.Topic == "" {
		return errorResult(fmt.Errorf("topic is required")), nil
	}

	alternatives := s.ranker.Rank(input.Topic, input.Procedure)
	return jsonResult(map[string]interface{}{
		"topic":        input.Topic,
		"alternatives": alternatives,
	})
}

// checkSafetyInput is the argument shape for the check_safety tool
type checkSafetyInput struct {
	Topic     string                    `json:"topic"`
	Procedure string                    `json:"procedure"`
	Scenario  domain.ScenarioAttributes `json:"scenario"`
}

// handleCheckSafety evaluates only the safety rules for a scenario
func (s *Server) handleCheckSafety(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "check_safety").Info("Tool invoked")

	var input checkSafetyInput
	if err := unmarshalArguments(req, &input); err != nil {
		return errorResult(err), nil
	}
	if input.Procedure == "" {
		return errorResult(fmt.Errorf("procedure is required")), nil
	}

	clinical := &domain.ClinicalRequest{
		Topic:     input.Topic,
		Procedure: input.Procedure,
		Scenario:  input.Scenario,
	}
	warnings := s.deriver.Derive(clinical)
	return jsonResult(map[string]interface{}{
		"procedure": input.Procedure,
		"warnings":  warnings,
	})
}

// getCriteriaInput is the argument shape for the get_criteria tool
type getCriteriaInput struct {
	ID    string `json:"id,omitempty"`
	Topic string `json:"topic,omitempty"`
}

// handleGetCriteria retrieves criteria facts by id or topic
func (s *Server) handleGetCriteria(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "get_criteria").Info("Tool invoked")

	var input getCriteriaInput
	if err := unmarshalArguments(req, &input); err != nil {
		return errorResult(err), nil
	}

	switch {
	case input.ID != "":
		fact, ok := s.base.Get(input.ID)
		if !ok {
			return errorResult(fmt.Errorf("no criteria fact with id %s", input.ID)), nil
		}
		return jsonResult(fact)
	case input.Topic != "":
		facts := s.base.FindByTopic(input.Topic)
		return jsonResult(map[string]interface{}{
			"dataset_version": s.base.Version(),
			"count":           len(facts),
			"criteria":        facts,
		})
	default:
		return jsonResult(map[string]interface{}{
			"dataset_version": s.base.Version(),
			"topics":          s.base.Topics(),
		})
	}
}

// handleSaveFeedback records clinician feedback on an evaluation
func (s *Server) handleSaveFeedback(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "save_feedback").Info("Tool invoked")

	if s.feedbackStore == nil {
		return errorResult(fmt.Errorf("feedback capture is disabled")), nil
	}

	var fb feedback.Feedback
	if err := unmarshalArguments(req, &fb); err != nil {
		return errorResult(err), nil
	}
	if fb.Topic == "" || fb.Procedure == "" {
		return errorResult(fmt.Errorf("topic and procedure are required")), nil
	}

	if err := s.feedbackStore.Save(ctx, &fb); err != nil {
		return errorResult(fmt.Errorf("failed to save feedback: %w", err)), nil
	}
	return jsonResult(fb)
}

// unmarshalArguments decodes the tool call arguments into v
func unmarshalArguments(req *mcp.CallToolRequest, v interface{}) error {
	raw, _ := req.Params.Arguments.(json.RawMessage)
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}

// jsonResult wraps a value as an indented JSON text content block
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil
}

// errorResult reports a tool-level failure to the client
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: err.Error()},
		},
	}
}
