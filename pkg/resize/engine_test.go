package resize

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/framefit/framefit/pkg/cache"
	"github.com/framefit/framefit/pkg/canvas"
	"github.com/framefit/framefit/pkg/classify"
	"github.com/framefit/framefit/pkg/experiment"
	"github.com/framefit/framefit/pkg/plan"
	"github.com/framefit/framefit/pkg/score"
	"github.com/framefit/framefit/pkg/store"
	"github.com/framefit/framefit/pkg/vision"
)

// stubModel returns a canned proposal or error and counts calls.
type stubModel struct {
	proposal *vision.Proposal
	err      error
	calls    int
}

func (m *stubModel) ProposePlacements(ctx context.Context, req vision.Request) (*vision.Proposal, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.proposal, nil
}

// blockingModel waits for cancellation, standing in for a slow upstream.
type blockingModel struct{}

func (m *blockingModel) ProposePlacements(ctx context.Context, req vision.Request) (*vision.Proposal, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testOptions() Options {
	return Options{
		Elements: []canvas.Element{
			{ID: "title", Kind: canvas.KindText, Left: 100, Top: 60, Width: 400, Height: 60, Text: "Big Sale"},
			{ID: "hero", Kind: canvas.KindImage, Left: 100, Top: 160, Width: 500, Height: 300},
			{ID: "cta", Kind: canvas.KindShape, Left: 100, Top: 500, Width: 200, Height: 60, Fill: "#00f"},
		},
		Current: canvas.Size{Width: 800, Height: 600},
		Target:  canvas.Size{Width: 1200, Height: 628},
	}
}

func placementIDs(t *testing.T, placements []canvas.Placement, elements []canvas.Element) map[string]canvas.Placement {
	t.Helper()
	byID := make(map[string]canvas.Placement, len(placements))
	for _, p := range placements {
		byID[p.ID] = p
	}
	for _, e := range elements {
		if _, ok := byID[e.ID]; !ok {
			t.Fatalf("no placement for element %s", e.ID)
		}
	}
	return byID
}

func checkContainment(t *testing.T, byID map[string]canvas.Placement, elements []canvas.Element, target canvas.Size) {
	t.Helper()
	for _, e := range elements {
		p := byID[e.ID]
		w := e.Width * p.ScaleX
		h := e.Height * p.ScaleY
		if p.Left < plan.Margin-1e-9 || p.Top < plan.Margin-1e-9 {
			t.Errorf("%s at (%v, %v) violates the margin", e.ID, p.Left, p.Top)
		}
		if p.Left+w > target.Width-plan.Margin+1e-9 || p.Top+h > target.Height-plan.Margin+1e-9 {
			t.Errorf("%s extends past the usable area", e.ID)
		}
	}
}

func TestResizeFallsBackWithoutModel(t *testing.T) {
	e := NewEngine(nil, nil, nil, nil, nil)
	opts := testOptions()

	result, err := e.Resize(context.Background(), opts)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if !result.UsedFallback {
		t.Error("expected the deterministic planner without a model")
	}
	byID := placementIDs(t, result.Placements, opts.Elements)
	checkContainment(t, byID, opts.Elements, opts.Target)
	if result.Score.Total <= 0 {
		t.Errorf("score = %v, want positive", result.Score.Total)
	}
}

func TestResizeFallsBackOnModelError(t *testing.T) {
	model := &stubModel{err: errors.New("upstream down")}
	e := NewEngine(model, nil, nil, nil, nil)
	opts := testOptions()

	result, err := e.Resize(context.Background(), opts)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if !result.UsedFallback {
		t.Error("model error should degrade to the planner, not fail the call")
	}
	if model.calls != 1 {
		t.Errorf("model calls = %d, want 1", model.calls)
	}
	placementIDs(t, result.Placements, opts.Elements)
}

func TestResizeFallsBackOnModelTimeout(t *testing.T) {
	e := NewEngine(&blockingModel{}, nil, nil, nil, nil)
	e.ModelTimeout = 20 * time.Millisecond
	opts := testOptions()

	start := time.Now()
	result, err := e.Resize(context.Background(), opts)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if !result.UsedFallback {
		t.Error("timed-out model should degrade to the planner")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("resize took %v, timeout not enforced", elapsed)
	}
}

func TestResizeUsesModelProposal(t *testing.T) {
	model := &stubModel{proposal: &vision.Proposal{
		Placements: []canvas.Placement{
			{ID: "title", Left: 150, Top: 80, ScaleX: 1.1, ScaleY: 1.1},
			{ID: "hero", Left: 150, Top: 200, ScaleX: 0.9, ScaleY: 0.9},
			{ID: "cta", Left: 150, Top: 540, ScaleX: 1, ScaleY: 1},
		},
		Rationale: "kept vertical rhythm",
	}}
	e := NewEngine(model, nil, nil, nil, nil)
	opts := testOptions()

	result, err := e.Resize(context.Background(), opts)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if result.UsedFallback {
		t.Error("healthy model should not trigger the planner")
	}
	if result.Rationale != "kept vertical rhythm" {
		t.Errorf("rationale = %q", result.Rationale)
	}
	byID := placementIDs(t, result.Placements, opts.Elements)
	checkContainment(t, byID, opts.Elements, opts.Target)
}

func TestResizeEnforcesRulesOnModelOutput(t *testing.T) {
	// The model proposes an absurd scale and skips an element. Enforcement
	// clamps the one and backfills the other.
	model := &stubModel{proposal: &vision.Proposal{
		Placements: []canvas.Placement{
			{ID: "title", Left: 30, Top: 30, ScaleX: 50, ScaleY: 50},
			{ID: "hero", Left: 150, Top: 200, ScaleX: 1, ScaleY: 1},
			{ID: "cta", Left: 150, Top: 540, ScaleX: 1, ScaleY: 1},
		},
	}}
	e := NewEngine(model, nil, nil, nil, nil)
	opts := testOptions()

	result, err := e.Resize(context.Background(), opts)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	byID := placementIDs(t, result.Placements, opts.Elements)
	checkContainment(t, byID, opts.Elements, opts.Target)
	if p := byID["title"]; p.ScaleX >= 50 {
		t.Errorf("title scale %v not clamped", p.ScaleX)
	}
}

func TestResizeCachesModelProposals(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	model := &stubModel{proposal: &vision.Proposal{
		Placements: []canvas.Placement{
			{ID: "title", Left: 150, Top: 80, ScaleX: 1, ScaleY: 1},
			{ID: "hero", Left: 150, Top: 200, ScaleX: 1, ScaleY: 1},
			{ID: "cta", Left: 150, Top: 540, ScaleX: 1, ScaleY: 1},
		},
	}}
	e := NewEngine(model, nil, nil, c, nil)
	opts := testOptions()
	ctx := context.Background()

	first, err := e.Resize(ctx, opts)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if first.CacheHit {
		t.Error("first call reported a cache hit")
	}

	second, err := e.Resize(ctx, opts)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if !second.CacheHit {
		t.Error("second identical call missed the cache")
	}
	if model.calls != 1 {
		t.Errorf("model calls = %d, want 1", model.calls)
	}

	skipped, err := e.Resize(ctx, Options{
		Elements:  opts.Elements,
		Current:   opts.Current,
		Target:    opts.Target,
		SkipCache: true,
	})
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if skipped.CacheHit {
		t.Error("SkipCache call still hit the cache")
	}
	if model.calls != 2 {
		t.Errorf("model calls = %d, want 2 after SkipCache", model.calls)
	}
}

func TestResizeOptimizerKeepsContainment(t *testing.T) {
	// A wide canvas with its mass on the left: the planner pins the title
	// against the right margin, and the balance pass then shifts elements
	// further right. The optimizer's output must still honor the margins.
	elements := []canvas.Element{
		{ID: "hero", Kind: canvas.KindImage, Left: 100, Top: 100, Width: 1200, Height: 800},
		{ID: "title", Kind: canvas.KindText, Left: 1700, Top: 40, Width: 400, Height: 80, Text: "Launch Week"},
		{ID: "note", Kind: canvas.KindText, Left: 100, Top: 880, Width: 500, Height: 100,
			Text: "Terms apply in all participating regions and stores"},
	}
	opts := Options{
		Elements:          elements,
		Current:           canvas.Size{Width: 2000, Height: 1000},
		Target:            canvas.Size{Width: 2000, Height: 1000},
		ApplyOptimizer:    true,
		OptimizeThreshold: 99,
	}
	e := NewEngine(nil, nil, nil, nil, nil)

	result, err := e.Resize(context.Background(), opts)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	byID := placementIDs(t, result.Placements, elements)
	checkContainment(t, byID, elements, opts.Target)

	// The reported score describes the returned geometry, not an
	// intermediate optimizer state.
	placed := canvas.ApplyAll(elements, result.Placements)
	analyses := classify.Classify(elements, opts.Current, nil)
	if got := score.Score(placed, analyses, opts.Target); got.Total != result.Score.Total {
		t.Errorf("reported score %v does not match rescoring %v", result.Score.Total, got.Total)
	}
}

func TestResizeValidation(t *testing.T) {
	e := NewEngine(nil, nil, nil, nil, nil)
	ctx := context.Background()

	if _, err := e.Resize(ctx, Options{
		Current: canvas.Size{Width: 0, Height: 600},
		Target:  canvas.Size{Width: 800, Height: 600},
		Elements: []canvas.Element{
			{ID: "a", Width: 10, Height: 10},
		},
	}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("zero width error = %v", err)
	}

	if _, err := e.Resize(ctx, Options{
		Current: canvas.Size{Width: 800, Height: 600},
		Target:  canvas.Size{Width: 800, Height: 600},
	}); !errors.Is(err, ErrNoElements) {
		t.Errorf("empty elements error = %v", err)
	}
}

func TestResizePersistsSessions(t *testing.T) {
	st := store.NewMemoryStore()
	e := NewEngine(nil, experiment.NewSelector(experiment.DefaultVariants()), st, nil, nil)
	opts := testOptions()
	opts.UserID = "user-1"

	result, err := e.Resize(context.Background(), opts)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if result.SessionID == "" {
		t.Fatal("no session ID with a store configured")
	}
	if result.VariantID == "" {
		t.Fatal("no variant assigned with a selector configured")
	}

	session, err := st.GetSession(context.Background(), result.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if !session.UsedFallback {
		t.Error("session lost the fallback flag")
	}
	if session.UserID != "user-1" {
		t.Errorf("session user = %q", session.UserID)
	}
	if len(session.Placements) != len(opts.Elements) {
		t.Errorf("session placements = %d, want %d", len(session.Placements), len(opts.Elements))
	}
}

func TestSubmitFeedbackCreatesExample(t *testing.T) {
	st := store.NewMemoryStore()
	selector := experiment.NewSelector(experiment.DefaultVariants())
	e := NewEngine(nil, selector, st, nil, nil)
	ctx := context.Background()

	result, err := e.Resize(ctx, testOptions())
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}

	session, err := e.SubmitFeedback(ctx, result.SessionID, store.FeedbackUpdate{Rating: 5})
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	if session.Rating == nil || *session.Rating != 5 {
		t.Errorf("session rating = %v", session.Rating)
	}

	examples, err := st.ListExamples(ctx, time.Time{}, 0)
	if err != nil {
		t.Fatalf("ListExamples: %v", err)
	}
	if len(examples) != 1 {
		t.Fatalf("examples = %d, want 1 for a decisive rating", len(examples))
	}
	if examples[0].SessionID != result.SessionID {
		t.Errorf("example session = %s", examples[0].SessionID)
	}
	if examples[0].QualityScore != 1.0 {
		t.Errorf("quality = %v, want 1.0 for a five-star rating", examples[0].QualityScore)
	}

	// Variant metrics absorbed the rating.
	for _, v := range selector.Variants() {
		if v.ID == result.VariantID && v.Metrics.TotalUses != 1 {
			t.Errorf("variant uses = %d, want 1", v.Metrics.TotalUses)
		}
	}
}

func TestSubmitFeedbackMidRatingSkipsExample(t *testing.T) {
	st := store.NewMemoryStore()
	e := NewEngine(nil, nil, st, nil, nil)
	ctx := context.Background()

	result, err := e.Resize(ctx, testOptions())
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if _, err := e.SubmitFeedback(ctx, result.SessionID, store.FeedbackUpdate{Rating: 3}); err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}

	examples, err := st.ListExamples(ctx, time.Time{}, 0)
	if err != nil {
		t.Fatalf("ListExamples: %v", err)
	}
	if len(examples) != 0 {
		t.Errorf("examples = %d, mid-range ratings should not train", len(examples))
	}
}

func TestSubmitFeedbackErrors(t *testing.T) {
	ctx := context.Background()

	noStore := NewEngine(nil, nil, nil, nil, nil)
	if _, err := noStore.SubmitFeedback(ctx, "s1", store.FeedbackUpdate{Rating: 5}); !errors.Is(err, ErrNoStore) {
		t.Errorf("error = %v, want ErrNoStore", err)
	}

	e := NewEngine(nil, nil, store.NewMemoryStore(), nil, nil)
	if _, err := e.SubmitFeedback(ctx, "ghost", store.FeedbackUpdate{Rating: 5}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, err := e.SubmitFeedback(ctx, "ghost", store.FeedbackUpdate{Rating: 9}); !errors.Is(err, store.ErrInvalidRating) {
		t.Errorf("error = %v, want ErrInvalidRating", err)
	}
}

func TestRetrainReportsPatterns(t *testing.T) {
	st := store.NewMemoryStore()
	e := NewEngine(nil, nil, st, nil, nil)
	ctx := context.Background()

	for i, rating := range []int{5, 5, 1} {
		result, err := e.Resize(ctx, testOptions())
		if err != nil {
			t.Fatalf("Resize %d: %v", i, err)
		}
		if _, err := e.SubmitFeedback(ctx, result.SessionID, store.FeedbackUpdate{Rating: rating}); err != nil {
			t.Fatalf("SubmitFeedback %d: %v", i, err)
		}
	}

	report, err := e.Retrain(ctx, 7, 0)
	if err != nil {
		t.Fatalf("Retrain: %v", err)
	}
	if report.SessionsRead != 3 {
		t.Errorf("SessionsRead = %d, want 3", report.SessionsRead)
	}
	if report.ExamplesRead != 3 {
		t.Errorf("ExamplesRead = %d, want 3", report.ExamplesRead)
	}
	if report.Patterns.HighQuality.Count != 2 {
		t.Errorf("high quality = %d, want 2", report.Patterns.HighQuality.Count)
	}
	if report.Patterns.LowQuality.Count != 1 {
		t.Errorf("low quality = %d, want 1", report.Patterns.LowQuality.Count)
	}
}

func TestRetrainRequiresStore(t *testing.T) {
	e := NewEngine(nil, nil, nil, nil, nil)
	if _, err := e.Retrain(context.Background(), 7, 4); !errors.Is(err, ErrNoStore) {
		t.Errorf("error = %v, want ErrNoStore", err)
	}
}
