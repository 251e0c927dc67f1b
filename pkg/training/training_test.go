package training

import (
	"errors"
	"math"
	"testing"

	"github.com/framefit/framefit/pkg/canvas"
)

func boolPtr(b bool) *bool { return &b }

func TestQualityScore(t *testing.T) {
	cases := []struct {
		name string
		fb   Feedback
		want float64
	}{
		{"five star helpful", Feedback{Rating: 5, Helpful: boolPtr(true)}, 1.0},
		{"five star plain", Feedback{Rating: 5}, 1.0},
		{"three star", Feedback{Rating: 3}, 0.6},
		{"three star helpful", Feedback{Rating: 3, Helpful: boolPtr(true)}, 0.66},
		{"three star unhelpful", Feedback{Rating: 3, Helpful: boolPtr(false)}, 0.54},
		{"corrections discount", Feedback{Rating: 5, HasCorrections: true}, 0.8},
		{"one star corrected", Feedback{Rating: 1, HasCorrections: true}, 0.16},
		{"zero rating floor", Feedback{Rating: 0, HasCorrections: true}, 0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := QualityScore(tc.fb)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("QualityScore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestQualityScoreAlwaysInRange(t *testing.T) {
	for rating := -2; rating <= 8; rating++ {
		for _, helpful := range []*bool{nil, boolPtr(true), boolPtr(false)} {
			for _, corr := range []bool{false, true} {
				got := QualityScore(Feedback{Rating: rating, Helpful: helpful, HasCorrections: corr})
				if got < 0 || got > 1 {
					t.Errorf("rating=%d corrections=%v: score %v out of range", rating, corr, got)
				}
			}
		}
	}
}

func TestExtractFeatures(t *testing.T) {
	elements := []canvas.Element{
		{ID: "a", Kind: canvas.KindText, Left: 10, Top: 20, Width: 100, Height: 40, ScaleX: 2},
		{ID: "b", Kind: canvas.KindImage, Left: 200, Top: 100, Width: 300, Height: 200},
	}
	source := canvas.Size{Width: 800, Height: 600}
	target := canvas.Size{Width: 1600, Height: 600}

	f, err := ExtractFeatures(elements, source, target)
	if err != nil {
		t.Fatalf("ExtractFeatures: %v", err)
	}

	if f.ElementCount != 2 {
		t.Errorf("ElementCount = %d", f.ElementCount)
	}
	if math.Abs(f.CanvasComplexity-0.2) > 1e-9 {
		t.Errorf("CanvasComplexity = %v, want 0.2", f.CanvasComplexity)
	}
	// Source AR 4/3, target AR 8/3: |8/3 - 4/3| / (4/3) = 1.
	if math.Abs(f.AspectRatioChange-1) > 1e-9 {
		t.Errorf("AspectRatioChange = %v, want 1", f.AspectRatioChange)
	}
	// Area doubles.
	if math.Abs(f.SizeChangeRatio-2) > 1e-9 {
		t.Errorf("SizeChangeRatio = %v, want 2", f.SizeChangeRatio)
	}
	if len(f.Elements) != 2 {
		t.Fatalf("Elements = %d entries", len(f.Elements))
	}
	// Scaled width counts, not the raw one.
	if f.Elements[0].Width != 200 {
		t.Errorf("effective width = %v, want 200", f.Elements[0].Width)
	}
	if f.Elements[1].Type != canvas.KindImage {
		t.Errorf("element type = %q", f.Elements[1].Type)
	}
}

func TestExtractFeaturesClampsSizeRatio(t *testing.T) {
	elements := []canvas.Element{{ID: "a", Width: 10, Height: 10}}

	huge, err := ExtractFeatures(elements, canvas.Size{Width: 10, Height: 10}, canvas.Size{Width: 5000, Height: 5000})
	if err != nil {
		t.Fatalf("ExtractFeatures: %v", err)
	}
	if huge.SizeChangeRatio != 100 {
		t.Errorf("grow ratio = %v, want clamp at 100", huge.SizeChangeRatio)
	}

	tiny, err := ExtractFeatures(elements, canvas.Size{Width: 5000, Height: 5000}, canvas.Size{Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("ExtractFeatures: %v", err)
	}
	if tiny.SizeChangeRatio != 0.01 {
		t.Errorf("shrink ratio = %v, want clamp at 0.01", tiny.SizeChangeRatio)
	}
}

func TestExtractFeaturesErrors(t *testing.T) {
	elements := []canvas.Element{{ID: "a", Width: 10, Height: 10}}

	if _, err := ExtractFeatures(elements, canvas.Size{Width: 100, Height: 100}, canvas.Size{Width: 0, Height: 100}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("zero target width error = %v", err)
	}
	if _, err := ExtractFeatures(nil, canvas.Size{Width: 100, Height: 100}, canvas.Size{Width: 100, Height: 100}); !errors.Is(err, ErrNoElements) {
		t.Errorf("empty snapshot error = %v", err)
	}
}

func TestExtractFeaturesCapsElementList(t *testing.T) {
	elements := make([]canvas.Element, 150)
	for i := range elements {
		elements[i] = canvas.Element{ID: "e", Width: 10, Height: 10}
	}

	f, err := ExtractFeatures(elements, canvas.Size{Width: 100, Height: 100}, canvas.Size{Width: 200, Height: 200})
	if err != nil {
		t.Fatalf("ExtractFeatures: %v", err)
	}
	if f.ElementCount != 150 {
		t.Errorf("ElementCount = %d, want the true count", f.ElementCount)
	}
	if len(f.Elements) != maxElementFeatures {
		t.Errorf("feature list = %d entries, want cap of %d", len(f.Elements), maxElementFeatures)
	}
	if f.CanvasComplexity != 1 {
		t.Errorf("CanvasComplexity = %v, want clamp at 1", f.CanvasComplexity)
	}
}

func TestAnalyzePatternsPartitions(t *testing.T) {
	examples := []Example{
		{QualityScore: 0.9, Features: Features{CanvasComplexity: 0.8, AspectRatioChange: 0.6, SizeChangeRatio: 1.0}},
		{QualityScore: 0.8, Features: Features{CanvasComplexity: 0.6, AspectRatioChange: 0.4, SizeChangeRatio: 3.0}},
		{QualityScore: 0.6, Features: Features{CanvasComplexity: 0.5}}, // mid-range, ignored
		{QualityScore: 0.3, Features: Features{CanvasComplexity: 0.2, SizeChangeRatio: 4.0}},
	}

	p := AnalyzePatterns(examples)

	if p.HighQuality.Count != 2 {
		t.Errorf("high count = %d, want 2", p.HighQuality.Count)
	}
	if p.LowQuality.Count != 1 {
		t.Errorf("low count = %d, want 1", p.LowQuality.Count)
	}
	if math.Abs(p.HighQuality.MeanComplexity-0.7) > 1e-9 {
		t.Errorf("high mean complexity = %v, want 0.7", p.HighQuality.MeanComplexity)
	}
	if math.Abs(p.HighQuality.MeanSizeChangeRatio-2.0) > 1e-9 {
		t.Errorf("high mean size ratio = %v, want 2.0", p.HighQuality.MeanSizeChangeRatio)
	}
	if p.LowQuality.MeanSizeChangeRatio != 4.0 {
		t.Errorf("low mean size ratio = %v, want 4.0", p.LowQuality.MeanSizeChangeRatio)
	}
}

func TestAnalyzePatternsEmpty(t *testing.T) {
	p := AnalyzePatterns(nil)
	if p.HighQuality.Count != 0 || p.LowQuality.Count != 0 {
		t.Errorf("empty input produced counts: %+v", p)
	}
	if p.HighQuality.MeanComplexity != 0 {
		t.Errorf("empty set mean = %v, want 0", p.HighQuality.MeanComplexity)
	}
}

func TestImprovedPrompts(t *testing.T) {
	p := Patterns{
		HighQuality: SetStats{Count: 5, MeanComplexity: 0.8, MeanAspectRatioChange: 0.6},
		LowQuality:  SetStats{Count: 3, MeanSizeChangeRatio: 2.5, MeanComplexity: 0.75},
	}

	prompts := ImprovedPrompts(p)

	// Complex-canvas (high), AR-change (high), large-size-ratio (low), and
	// dense-canvas (low) all trip their thresholds.
	if len(prompts) != 4 {
		t.Errorf("prompts = %d, want 4: %v", len(prompts), prompts)
	}
}

func TestImprovedPromptsQuietWhenNoPatterns(t *testing.T) {
	p := Patterns{
		HighQuality: SetStats{Count: 5, MeanComplexity: 0.3, MeanAspectRatioChange: 0.1},
		LowQuality:  SetStats{Count: 3, MeanSizeChangeRatio: 1.0, MeanComplexity: 0.3},
	}
	if prompts := ImprovedPrompts(p); len(prompts) != 0 {
		t.Errorf("unexpected prompts: %v", prompts)
	}
}

func TestImprovedPromptsShrinkGuidance(t *testing.T) {
	p := Patterns{
		LowQuality: SetStats{Count: 2, MeanSizeChangeRatio: 0.3},
	}
	prompts := ImprovedPrompts(p)
	if len(prompts) != 1 {
		t.Fatalf("prompts = %d, want 1: %v", len(prompts), prompts)
	}
}
