package classify

import (
	"fmt"
	"testing"

	"github.com/framefit/framefit/pkg/canvas"
)

var testSize = canvas.Size{Width: 800, Height: 600}

func TestClassifyType(t *testing.T) {
	cases := []struct {
		name    string
		element canvas.Element
		want    ElementType
	}{
		{"tagged text", canvas.Element{ID: "a", Kind: canvas.KindText, Width: 200, Height: 40, Text: "Hello world"}, TypeText},
		{"logo text", canvas.Element{ID: "a", Kind: canvas.KindText, Width: 100, Height: 40, Text: "Acme Logo"}, TypeLogo},
		{"tagged image", canvas.Element{ID: "a", Kind: canvas.KindImage, Width: 300, Height: 300}, TypeImage},
		{"tagged icon", canvas.Element{ID: "a", Kind: canvas.KindIcon, Width: 32, Height: 32}, TypeIcon},
		{"small shape reads as icon", canvas.Element{ID: "a", Kind: canvas.KindShape, Width: 48, Height: 48, Fill: "#f00"}, TypeIcon},
		{"large untagged area reads as image", canvas.Element{ID: "a", Width: 400, Height: 300}, TypeImage},
		{"stroked transparent reads as decoration", canvas.Element{ID: "a", Width: 200, Height: 100, Fill: "none", Stroke: "#000"}, TypeDecoration},
		{"large shape", canvas.Element{ID: "a", Kind: canvas.KindShape, Width: 200, Height: 150, Fill: "#00f"}, TypeShape},
		{"untagged small box", canvas.Element{ID: "a", Width: 50, Height: 50, Fill: "#0f0"}, TypeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analyses := Classify([]canvas.Element{tc.element}, testSize, nil)
			if got := analyses["a"].ElementType; got != tc.want {
				t.Errorf("type = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestClassifyTitleForcedPrimary(t *testing.T) {
	elements := []canvas.Element{
		{ID: "title", Kind: canvas.KindText, Left: 500, Top: 500, Width: 100, Height: 30, Text: "Summer Sale"},
	}
	analyses := Classify(elements, testSize, nil)

	if got := analyses["title"].Importance; got != ImportancePrimary {
		t.Errorf("short text importance = %s, want primary", got)
	}
}

func TestClassifyLongTextNotTitle(t *testing.T) {
	long := "This paragraph goes well past the thirty rune cutoff for headings."
	elements := []canvas.Element{
		// Bottom-right, small: no importance points at all.
		{ID: "body", Kind: canvas.KindText, Left: 600, Top: 500, Width: 10, Height: 10, Text: long},
		{ID: "anchor", Kind: canvas.KindShape, Left: 0, Top: 0, Width: 400, Height: 400, Fill: "#eee"},
	}
	analyses := Classify(elements, testSize, nil)

	if got := analyses["body"].Importance; got == ImportancePrimary {
		t.Errorf("long text importance = %s, should not be primary", got)
	}
}

func TestClassifySmallImageForcedPrimary(t *testing.T) {
	elements := []canvas.Element{
		{ID: "logo", Kind: canvas.KindImage, Left: 700, Top: 550, Width: 50, Height: 50},
	}
	analyses := Classify(elements, testSize, nil)

	if got := analyses["logo"].Importance; got != ImportancePrimary {
		t.Errorf("small image importance = %s, want primary", got)
	}
}

func TestClassifyPrimaryCap(t *testing.T) {
	// Ten short text elements would all be titles. The cap allows
	// ceil(0.3 * 10) = 3 primaries.
	var elements []canvas.Element
	for i := 0; i < 10; i++ {
		elements = append(elements, canvas.Element{
			ID:     fmt.Sprintf("t%02d", i),
			Kind:   canvas.KindText,
			Left:   float64(i * 70),
			Top:    float64(i * 50),
			Width:  100,
			Height: 30,
			Text:   "Headline",
		})
	}
	analyses := Classify(elements, testSize, nil)

	primaries := 0
	for _, a := range analyses {
		if a.Importance == ImportancePrimary {
			primaries++
		}
	}
	if primaries != 3 {
		t.Errorf("primaries = %d, want 3", primaries)
	}
}

func TestClassifyPrimaryCapDemotionDeterministic(t *testing.T) {
	// Equal visual weight everywhere, so demotion falls back to ID order:
	// the lexicographically smallest IDs are demoted first.
	var elements []canvas.Element
	for i := 0; i < 4; i++ {
		elements = append(elements, canvas.Element{
			ID:     fmt.Sprintf("e%d", i),
			Kind:   canvas.KindText,
			Left:   100,
			Top:    100,
			Width:  100,
			Height: 30,
			Text:   "Headline",
		})
	}
	analyses := Classify(elements, testSize, nil)

	// ceil(0.3 * 4) = 2 primaries survive; e0 and e1 are demoted.
	for _, id := range []string{"e0", "e1"} {
		if got := analyses[id].Importance; got != ImportanceSecondary {
			t.Errorf("%s importance = %s, want secondary", id, got)
		}
	}
	for _, id := range []string{"e2", "e3"} {
		if got := analyses[id].Importance; got != ImportancePrimary {
			t.Errorf("%s importance = %s, want primary", id, got)
		}
	}
}

func TestClassifySkipsMalformedElements(t *testing.T) {
	elements := []canvas.Element{
		{ID: "", Width: 100, Height: 100},
		{ID: "ok", Kind: canvas.KindShape, Width: 200, Height: 200, Fill: "#abc"},
	}
	analyses := Classify(elements, testSize, nil)

	if len(analyses) != 1 {
		t.Fatalf("analyses = %d entries, want 1", len(analyses))
	}
	if _, ok := analyses["ok"]; !ok {
		t.Error("valid element missing from analyses")
	}
}

func TestScalingRulesByType(t *testing.T) {
	cases := []struct {
		t          ElementType
		lockAspect bool
	}{
		{TypeText, false},
		{TypeImage, true},
		{TypeLogo, true},
		{TypeIcon, true},
	}
	for _, tc := range cases {
		rules := ScalingFor(tc.t)
		if rules.LockAspect != tc.lockAspect {
			t.Errorf("%s LockAspect = %v, want %v", tc.t, rules.LockAspect, tc.lockAspect)
		}
		if rules.MinScale <= 0 || rules.MaxScale < rules.MinScale {
			t.Errorf("%s has degenerate bounds (%v, %v)", tc.t, rules.MinScale, rules.MaxScale)
		}
	}
}

func TestVisualWeightBounds(t *testing.T) {
	elements := []canvas.Element{
		{ID: "dominant", Kind: canvas.KindImage, Width: 800, Height: 600},
		{ID: "tiny", Width: 1, Height: 1, Fill: "#111"},
	}
	analyses := Classify(elements, testSize, nil)

	for id, a := range analyses {
		if a.Visual.Weight < 1 || a.Visual.Weight > 10 {
			t.Errorf("%s weight = %d, want within [1, 10]", id, a.Visual.Weight)
		}
	}
	if analyses["dominant"].Visual.Weight <= analyses["tiny"].Visual.Weight {
		t.Error("full-canvas image should outweigh a 1px box")
	}
}
