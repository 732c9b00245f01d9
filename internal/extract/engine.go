package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ganbatte-hq/ganbatte/internal/metrics"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// Engine extracts a draft job from conversation text.
type Engine struct {
	provider  CompletionProvider
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewEngine creates an extraction engine. The collector may be nil.
func NewEngine(provider CompletionProvider, collector *metrics.Collector, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{provider: provider, collector: collector, logger: logger}
}

// Extract produces a draft job from the latest message plus conversation
// state. When overrideField names a field being corrected, only that field is
// taken fresh from the model and the previously confirmed draft fills the
// rest.
func (e *Engine) Extract(ctx context.Context, latest string, state models.ConversationState, overrideField string) (*models.DraftJob, error) {
	systemPrompt := buildSystemPrompt(state.DefaultAddress, overrideField)
	userPrompt := buildUserPrompt(state.Transcript(), latest)

	e.logger.Debug("extract.start", "session_id", state.SessionID, "override", overrideField)

	start := time.Now()
	raw, err := e.provider.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}
	if e.collector != nil {
		e.collector.RecordTiming(metrics.OpLLMExtract, time.Since(start))
	}

	parsed, err := parseExtraction(raw, e.logger)
	if err != nil {
		return nil, err
	}

	job := &models.DraftJob{
		Parts:    parsed.Parts,
		Pickup:   parsed.Pickup,
		Dropoff:  parsed.Dropoff,
		Deadline: parsed.Deadline,
	}

	if overrideField != "" {
		job = mergeOverride(job, state.LastConfirmed, overrideField)
	}

	e.logger.Info("extract.done",
		"session_id", state.SessionID,
		"parts", len(job.Parts),
		"has_pickup", job.Pickup != "",
		"has_dropoff", job.Dropoff != "",
		"has_deadline", job.Deadline != "")

	return job, nil
}

// mergeOverride combines a fresh single-field extraction with the previously
// confirmed draft: the new extraction wins for the overridden field, prior
// values fill gaps elsewhere. This is what keeps already-valid fields from
// regressing across clarification rounds.
func mergeOverride(fresh, prior *models.DraftJob, overrideField string) *models.DraftJob {
	if prior == nil {
		return fresh
	}

	merged := prior.Clone()

	switch overrideField {
	case "pickup":
		merged.Pickup = fresh.Pickup
		merged.PickupResolved = ""
		merged.PickupCoord = nil
	case "dropoff":
		merged.Dropoff = fresh.Dropoff
		merged.DropoffResolved = ""
		merged.DropoffCoord = nil
	case "deadline":
		merged.Deadline = fresh.Deadline
		merged.DeadlineISO = ""
		merged.DeadlineDisplay = ""
	case "parts":
		merged.Parts = fresh.Parts
	}

	// A fresh extraction may still surface fields the prior draft lacked.
	if merged.Pickup == "" {
		merged.Pickup = fresh.Pickup
	}
	if merged.Dropoff == "" {
		merged.Dropoff = fresh.Dropoff
	}
	if merged.Deadline == "" {
		merged.Deadline = fresh.Deadline
	}
	if len(merged.Parts) == 0 {
		merged.Parts = fresh.Parts
	}

	return merged
}
