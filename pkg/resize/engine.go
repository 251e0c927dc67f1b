package resize

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/framefit/framefit/pkg/cache"
	"github.com/framefit/framefit/pkg/canvas"
	"github.com/framefit/framefit/pkg/classify"
	"github.com/framefit/framefit/pkg/experiment"
	"github.com/framefit/framefit/pkg/observability"
	"github.com/framefit/framefit/pkg/optimize"
	"github.com/framefit/framefit/pkg/plan"
	"github.com/framefit/framefit/pkg/score"
	"github.com/framefit/framefit/pkg/store"
	"github.com/framefit/framefit/pkg/vision"
)

// =============================================================================
// Engine
// =============================================================================

// Engine orchestrates resize operations. It is stateless between calls;
// shared mutable state lives in the injected selector, store, and cache, so
// multiple goroutines can safely use the same Engine with different
// options.
type Engine struct {
	Model        vision.Model        // nil disables the model path entirely
	Selector     *experiment.Selector // nil disables variant assignment
	Store        store.Store         // nil disables persistence
	Cache        cache.Cache         // nil disables the placement cache
	Keyer        cache.Keyer
	Logger       *log.Logger
	ModelTimeout time.Duration
}

// NewEngine creates an engine with the given collaborators. Any of model,
// selector, st, and c may be nil; the engine degrades to the deterministic
// planner with no persistence. A nil logger uses log.Default().
func NewEngine(model vision.Model, selector *experiment.Selector, st store.Store, c cache.Cache, logger *log.Logger) *Engine {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		Model:        model,
		Selector:     selector,
		Store:        st,
		Cache:        c,
		Keyer:        cache.NewDefaultKeyer(),
		Logger:       logger,
		ModelTimeout: DefaultModelTimeout,
	}
}

// =============================================================================
// Resize - One Operation End To End
// =============================================================================

// Resize drives one resize operation: classify, attempt the model under a
// timeout, fall back to the deterministic planner on any model failure,
// clamp the result to scaling rules and canvas bounds, score it, and
// persist the session. The returned result always carries a placement for
// every element; only input validation can fail the call.
func (e *Engine) Resize(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	start := time.Now()
	observability.Resize().OnResizeStart(ctx, len(opts.Elements), opts.Target.Width, opts.Target.Height)

	analyses := classify.Classify(opts.Elements, opts.Current, logger)
	logger.Debug("classified elements", "count", len(analyses))

	variant := e.assignVariant(ctx, opts.UserID, logger)

	result := &Result{VariantID: variant.ID}
	outcome := e.obtainPlacements(ctx, &opts, variant, result, logger)
	if outcome.OK() {
		result.Placements = outcome.Proposal.Placements
		result.Rationale = outcome.Proposal.Rationale
	} else {
		logger.Info("model unavailable, using deterministic planner", "reason", outcome.Reason)
		result.Placements = plan.Plan(opts.Elements, opts.Current, opts.Target)
		result.UsedFallback = true
	}

	result.Placements = e.enforceRules(result.Placements, opts.Elements, analyses, opts.Target)

	placed := canvas.ApplyAll(opts.Elements, result.Placements)
	result.Score = score.Score(placed, analyses, opts.Target)

	if opts.ApplyOptimizer && result.Score.Total < opts.OptimizeThreshold {
		opt := optimize.Optimize(placed, analyses, opts.Target, opts.OptimizeThreshold)
		// Optimizer passes move and scale freely; clamp their output to the
		// same rule and containment guarantees as every other source before
		// scoring the final geometry.
		result.Placements = e.enforceRules(placementsFrom(opt.Elements), opts.Elements, analyses, opts.Target)
		placed = canvas.ApplyAll(opts.Elements, result.Placements)
		result.Score = score.Score(placed, analyses, opts.Target)
		result.Notes = opt.Notes
		result.Adjustments = opt.Adjustments
		logger.Debug("optimizer applied",
			"before", opt.Before.Total, "after", result.Score.Total,
			"adjustments", len(opt.Adjustments))
	}

	result.Duration = time.Since(start)
	e.persistSession(ctx, &opts, result, logger)

	observability.Resize().OnResizeComplete(ctx, result.UsedFallback, result.Score.Total, result.Duration, nil)
	logger.Info("resize complete",
		"elements", len(opts.Elements),
		"fallback", result.UsedFallback,
		"score", result.Score.Total,
		"duration", result.Duration)
	return result, nil
}

// =============================================================================
// Model Attempt
// =============================================================================

// obtainPlacements returns placements from the cache or the model as an
// explicit outcome. Every failure mode maps to a Failed outcome; nothing on
// this path propagates an error to the caller.
func (e *Engine) obtainPlacements(ctx context.Context, opts *Options, variant experiment.Variant, result *Result, logger *log.Logger) vision.Outcome {
	key := e.placementKey(opts, variant.ID)

	if !opts.SkipCache {
		if data, hit, err := e.Cache.Get(ctx, key); err == nil && hit {
			var p vision.Proposal
			if json.Unmarshal(data, &p) == nil && len(p.Placements) > 0 {
				result.CacheHit = true
				logger.Debug("placement cache hit")
				return vision.Proposed(&p)
			}
		}
	}

	if e.Model == nil {
		return vision.Failed("no model configured", nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.modelTimeout())
	defer cancel()

	observability.Model().OnModelCall(ctx, variant.ID, len(opts.Elements))
	callStart := time.Now()
	proposal, err := e.Model.ProposePlacements(callCtx, vision.Request{
		Image:        opts.Image,
		Elements:     opts.Elements,
		Current:      opts.Current,
		Target:       opts.Target,
		Instructions: variant.Template,
	})
	callDuration := time.Since(callStart)

	if err != nil {
		reason := "model error"
		if callCtx.Err() != nil {
			reason = "model timeout"
		}
		observability.Model().OnModelResult(ctx, variant.ID, false, reason, callDuration)
		return vision.Failed(reason, err)
	}
	observability.Model().OnModelResult(ctx, variant.ID, true, "", callDuration)

	if !opts.SkipCache {
		if data, err := json.Marshal(proposal); err == nil {
			_ = e.Cache.Set(ctx, key, data, cache.TTLPlacements)
		}
	}
	return vision.Proposed(proposal)
}

func (e *Engine) placementKey(opts *Options, variantID string) string {
	snapshot := cache.SnapshotHash(struct {
		Elements []canvas.Element `json:"elements"`
		Current  canvas.Size      `json:"current"`
	}{opts.Elements, opts.Current})
	return e.keyer().PlacementKey(snapshot, cache.PlacementKeyOpts{
		TargetWidth:  opts.Target.Width,
		TargetHeight: opts.Target.Height,
		VariantID:    variantID,
	})
}

// =============================================================================
// Rule Enforcement
// =============================================================================

// enforceRules clamps every placement to its element's scaling rules and to
// the target canvas bounds. This runs on model output and planner output
// alike, so the containment guarantees hold regardless of the source.
func (e *Engine) enforceRules(placements []canvas.Placement, elements []canvas.Element, analyses map[string]classify.Analysis, target canvas.Size) []canvas.Placement {
	byID := make(map[string]*canvas.Element, len(elements))
	for i := range elements {
		byID[elements[i].ID] = &elements[i]
	}

	out := make([]canvas.Placement, 0, len(elements))
	seen := make(map[string]bool, len(placements))
	for _, p := range placements {
		el, ok := byID[p.ID]
		if !ok {
			continue
		}
		seen[p.ID] = true
		out = append(out, e.enforceOne(p, el, analyses, target))
	}

	// A full placement set is part of the engine contract: elements the
	// source skipped keep their remapped planner position.
	for i := range elements {
		if !seen[elements[i].ID] {
			fill := plan.Plan(elements[i:i+1], target, target)
			out = append(out, e.enforceOne(fill[0], &elements[i], analyses, target))
		}
	}
	return out
}

func (e *Engine) enforceOne(p canvas.Placement, el *canvas.Element, analyses map[string]classify.Analysis, target canvas.Size) canvas.Placement {
	rules := classify.ScalingFor(classify.TypeUnknown)
	if a, ok := analyses[p.ID]; ok {
		rules = a.Scaling
	}

	p.ScaleX = clampRange(p.ScaleX, rules.MinScale, rules.MaxScale)
	p.ScaleY = clampRange(p.ScaleY, rules.MinScale, rules.MaxScale)
	if rules.LockAspect {
		s := min(p.ScaleX, p.ScaleY)
		p.ScaleX, p.ScaleY = s, s
	}
	return plan.Clamp(p, *el, target)
}

func clampRange(v, lo, hi float64) float64 {
	if lo > 0 && v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}

// =============================================================================
// Internal Helpers
// =============================================================================

func (e *Engine) assignVariant(ctx context.Context, userID string, logger *log.Logger) experiment.Variant {
	if e.Selector == nil {
		return experiment.Variant{}
	}
	v, err := e.Selector.Assign(ctx, userID)
	if err != nil {
		logger.Warn("variant assignment failed", "err", err)
		return experiment.Variant{}
	}
	return v
}

// persistSession records the completed resize. Persistence failures are
// logged and swallowed: the caller already holds usable placements.
func (e *Engine) persistSession(ctx context.Context, opts *Options, result *Result, logger *log.Logger) {
	if e.Store == nil {
		return
	}
	session := &store.Session{
		ID:               uuid.NewString(),
		UserID:           experiment.SanitizeUserID(opts.UserID),
		VariantID:        result.VariantID,
		Status:           store.StatusCompleted,
		SourceElements:   opts.Elements,
		SourceSize:       opts.Current,
		TargetSize:       opts.Target,
		Placements:       result.Placements,
		UsedFallback:     result.UsedFallback,
		Score:            result.Score,
		ProcessingTimeMs: float64(result.Duration.Milliseconds()),
	}
	if err := e.Store.CreateSession(ctx, session); err != nil {
		logger.Warn("session write failed", "err", err)
		return
	}
	result.SessionID = session.ID
}

func (e *Engine) modelTimeout() time.Duration {
	if e.ModelTimeout <= 0 {
		return DefaultModelTimeout
	}
	return e.ModelTimeout
}

func (e *Engine) keyer() cache.Keyer {
	if e.Keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return e.Keyer
}

func placementsFrom(elements []canvas.Element) []canvas.Placement {
	out := make([]canvas.Placement, len(elements))
	for i := range elements {
		e := &elements[i]
		sx, sy := e.ScaleX, e.ScaleY
		if sx == 0 {
			sx = 1
		}
		if sy == 0 {
			sy = 1
		}
		out[i] = canvas.Placement{ID: e.ID, Left: e.Left, Top: e.Top, ScaleX: sx, ScaleY: sy}
	}
	return out
}
