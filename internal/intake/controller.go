// Package intake orchestrates extraction, validation and deadline
// normalization for one conversation turn, deciding whether the pipeline can
// proceed or must re-prompt the user for a specific field.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ganbatte-hq/ganbatte/internal/geo"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// Field names used in clarification results and override requests.
const (
	FieldPickup   = "pickup"
	FieldDropoff  = "dropoff"
	FieldDeadline = "deadline"
)

// Extractor produces a draft job from conversation text.
type Extractor interface {
	Extract(ctx context.Context, latest string, state models.ConversationState, overrideField string) (*models.DraftJob, error)
}

// AddressValidator judges and resolves location strings.
type AddressValidator interface {
	Validate(ctx context.Context, address string) geo.Validation
}

// DeadlineNormalizer resolves free-text deadline phrases.
type DeadlineNormalizer interface {
	Normalize(raw string, now time.Time) models.DeadlineResolution
}

// TurnResult is the outcome of processing one conversation turn.
type TurnResult struct {
	Job                *models.DraftJob `json:"job"`
	NeedsClarification bool             `json:"needs_clarification"`
	Field              string           `json:"field,omitempty"`
	Message            string           `json:"message,omitempty"`
}

// Controller runs the clarification loop.
type Controller struct {
	extractor  Extractor
	validator  AddressValidator
	normalizer DeadlineNormalizer
	now        func() time.Time
	logger     *slog.Logger
}

// NewController wires the pipeline. A nil clock defaults to time.Now.
func NewController(extractor Extractor, validator AddressValidator, normalizer DeadlineNormalizer, clock func() time.Time, logger *slog.Logger) *Controller {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		extractor:  extractor,
		validator:  validator,
		normalizer: normalizer,
		now:        clock,
		logger:     logger,
	}
}

// ProcessTurn runs one turn of the pipeline. Validation order is fixed:
// pickup before dropoff before deadline, so a message with several bad fields
// always surfaces the pickup issue first and the loop converges in at most
// three clarification rounds.
func (c *Controller) ProcessTurn(ctx context.Context, message string, state models.ConversationState, overrideField string) (TurnResult, error) {
	job, err := c.extractor.Extract(ctx, message, state, overrideField)
	if err != nil {
		return TurnResult{}, fmt.Errorf("extract: %w", err)
	}

	// Deadline resolution is assigned regardless of outcome; an empty ISO
	// just means step three below will ask for it.
	if job.DeadlineISO == "" {
		res := c.normalizer.Normalize(job.Deadline, c.now())
		job.DeadlineISO = res.ISO
		job.DeadlineDisplay = res.Display
	}

	if job.PickupResolved == "" {
		v := c.validator.Validate(ctx, job.Pickup)
		if !v.Valid {
			c.logger.Info("turn.clarify", "session_id", state.SessionID, "field", FieldPickup, "reason", v.Reason)
			return clarify(job, FieldPickup,
				"I couldn't pin down the pickup location. What's the full street address where we should pick up (e.g. \"123 Main St, Irvine CA\")?"), nil
		}
		job.PickupResolved = v.Resolved
		job.PickupCoord = v.Coord
	}

	if job.DropoffResolved == "" {
		v := c.validator.Validate(ctx, job.Dropoff)
		if !v.Valid {
			c.logger.Info("turn.clarify", "session_id", state.SessionID, "field", FieldDropoff, "reason", v.Reason)
			return clarify(job, FieldDropoff,
				"I couldn't pin down the delivery location. What's the full street address where this should be delivered?"), nil
		}
		job.DropoffResolved = v.Resolved
		job.DropoffCoord = v.Coord
	}

	if job.DeadlineISO == "" {
		c.logger.Info("turn.clarify", "session_id", state.SessionID, "field", FieldDeadline)
		return clarify(job, FieldDeadline,
			"When does this need to be delivered? You can type something like \"next tuesday by 2pm\", or pick a date from the calendar."), nil
	}

	c.logger.Info("turn.complete", "session_id", state.SessionID, "parts", len(job.Parts))
	return TurnResult{Job: job}, nil
}

func clarify(job *models.DraftJob, field, message string) TurnResult {
	return TurnResult{
		Job:                job,
		NeedsClarification: true,
		Field:              field,
		Message:            message,
	}
}
