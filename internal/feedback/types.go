// Package feedback provides clinician feedback storage for appropriateness
// evaluations. It stores agreements and corrections so dataset curators can
// review where the criteria table diverges from clinical judgment.
package feedback

import (
	"context"
	"io"
	"time"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
)

// Feedback represents a clinician's feedback on one evaluation.
type Feedback struct {
	ID                int64           `json:"id,omitempty"`
	Topic             string          `json:"topic"`
	Variant           string          `json:"variant,omitempty"`
	Procedure         string          `json:"procedure"`
	Score             float64         `json:"score"`              // Score the engine produced
	SuggestedCategory domain.Category `json:"suggested_category"` // Engine's category
	ClinicianCategory domain.Category `json:"clinician_category"` // Clinician's decision
	ClinicianAgreed   bool            `json:"clinician_agreed"`   // Did the clinician agree?
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores or updates feedback for an evaluation.
	// If feedback for the same topic+variant+procedure exists, it is updated.
	Save(ctx context.Context, feedback *Feedback) error

	// Get retrieves the feedback for a scenario.
	Get(ctx context.Context, topic, variant, procedure string) (*Feedback, error)

	// List returns all feedback entries with pagination.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// Stats aggregates agreement figures across all entries.
	Stats(ctx context.Context) (*Stats, error)

	// Delete removes a feedback entry by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all feedback to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports feedback from a JSON reader.
	// Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// Stats summarizes how often clinicians agreed with the engine's category.
// AgreementRate is 0 when no feedback exists.
type Stats struct {
	Total         int64   `json:"total"`
	Agreed        int64   `json:"agreed"`
	Disagreed     int64   `json:"disagreed"`
	AgreementRate float64 `json:"agreement_rate"`
}

// FeedbackExport represents the JSON export format.
type FeedbackExport struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}
