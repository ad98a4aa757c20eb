// Package mcp exposes the appropriateness engine as an MCP server over stdio.
// The server is self-contained: the embedded dataset and a SQLite feedback
// store are all it needs.
package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/imaging-appropriateness-mcp-server/internal/config"
	"github.com/imaging-appropriateness-mcp-server/internal/domain"
	"github.com/imaging-appropriateness-mcp-server/internal/feedback"
	"github.com/imaging-appropriateness-mcp-server/internal/knowledge"
	"github.com/imaging-appropriateness-mcp-server/internal/service"
)

// Server is the MCP server wrapping the evaluation engine.
type Server struct {
	config        *config.LiteConfig
	mcpServer     *mcp.Server
	base          *knowledge.Base
	evaluator     *service.EvaluatorService
	ranker        domain.AlternativeRanker
	deriver       domain.WarningDeriver
	feedbackStore feedback.Store
	logger        *logrus.Logger
}

// ServerOption is a functional option for Server.
type ServerOption func(*Server) error

// WithFeedbackStore sets a custom feedback store.
func WithFeedbackStore(store feedback.Store) ServerOption {
	return func(s *Server) error {
		s.feedbackStore = store
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// NewServer creates the MCP server: loads the dataset, compiles the engine and
// registers all tools.
func NewServer(cfg *config.LiteConfig, opts ...ServerOption) (*Server, error) {
	server := &Server{
		config: cfg,
		logger: logrus.New(),
	}

	// Configure default logger
	if cfg.LogFormat == "text" {
		server.logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		server.logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	server.logger.SetLevel(level)

	// Apply options
	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	// Load the criteria dataset and build the engine
	ds, err := knowledge.LoadDataset(cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	server.base = knowledge.NewBase(server.logger, ds)

	evaluator, err := service.NewEvaluatorService(server.logger, server.base, ds.FactorRules)
	if err != nil {
		return nil, fmt.Errorf("failed to build evaluator: %w", err)
	}
	server.evaluator = evaluator
	server.ranker = service.NewRatingRanker(server.logger, server.base)
	server.deriver = service.NewSafetyDeriver(server.logger)

	// Initialize feedback store if enabled and not provided
	if server.feedbackStore == nil && cfg.FeedbackEnabled {
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		store, err := feedback.NewSQLiteStore(cfg.FeedbackDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create feedback store: %w", err)
		}
		server.feedbackStore = store
	}

	// Create server info
	serverInfo := &mcp.Implementation{
		Name:    "imaging-appropriateness-mcp-server",
		Version: "v0.1.0",
	}

	server.mcpServer = mcp.NewServer(serverInfo, nil)
	server.registerTools()

	server.logger.WithFields(logrus.Fields{
		"dataset_version": server.base.Version(),
	}).Info("MCP server initialized")

	return server, nil
}

// registerTools registers all MCP tools with the SDK
func (s *Server) registerTools() {
	tools := []struct {
		tool    *mcp.Tool
		handler mcp.ToolHandler
	}{
		{
			tool: &mcp.Tool{
				Name:        "evaluate_appropriateness",
				Description: "Evaluate the appropriateness of an imaging procedure for a clinical scenario. Returns a 1-9 score, category, status color, contributing factors, ranked alternatives, safety warnings and evidence links.",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			handler: s.handleEvaluateAppropriateness,
		},
		{
			tool: &mcp.Tool{
				Name:        "list_alternatives",
				Description: "List alternative imaging procedures for a clinical topic, ordered by appropriateness rating, with relative cost and radiation comparisons.",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			handler: s.handleListAlternatives,
		},
		{
			tool: &mcp.Tool{
				Name:        "check_safety",
				Description: "Check a clinical scenario against the safety rules for a proposed procedure without running a full evaluation.",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			handler: s.handleCheckSafety,
		},
		{
			tool: &mcp.Tool{
				Name:        "get_criteria",
				Description: "Retrieve appropriateness criteria facts by topic or by fact id.",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			handler: s.handleGetCriteria,
		},
		{
			tool: &mcp.Tool{
				Name:        "save_feedback",
				Description: "Record clinician feedback on an evaluation: agreement or a corrected category with notes.",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			handler: s.handleSaveFeedback,
		},
	}

	for _, t := range tools {
		s.mcpServer.AddTool(t.tool, t.handler)
		s.logger.WithField("tool_name", t.tool.Name).Debug("Registered MCP tool")
	}

	s.logger.WithField("tool_count", len(tools)).Info("Registered all MCP tools")
}

// Start runs the MCP server over stdio until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting imaging appropriateness MCP server")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.feedbackStore != nil {
		if err := s.feedbackStore.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close feedback store")
		}
	}
	return nil
}

// FeedbackStore returns the feedback store for external access.
func (s *Server) FeedbackStore() feedback.Store {
	return s.feedbackStore
}
