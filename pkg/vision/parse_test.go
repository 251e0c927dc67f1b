package vision

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/framefit/framefit/pkg/canvas"
)

var parseElements = []canvas.Element{
	{ID: "a", Width: 100, Height: 50},
	{ID: "b", Width: 200, Height: 100},
}

func TestParseProposalValid(t *testing.T) {
	raw := json.RawMessage(`{
		"placements": [
			{"id": "a", "left": 20, "top": 30, "scale_x": 1.2, "scale_y": 1.2},
			{"id": "b", "left": 200, "top": 150, "scale_x": 0.8, "scale_y": 0.8}
		],
		"rationale": "kept the reading order"
	}`)

	p, err := ParseProposal(raw, parseElements)
	if err != nil {
		t.Fatalf("ParseProposal: %v", err)
	}
	if len(p.Placements) != 2 {
		t.Fatalf("placements = %d, want 2", len(p.Placements))
	}
	if p.Placements[0].Left != 20 || p.Placements[0].ScaleX != 1.2 {
		t.Errorf("placement a = %+v", p.Placements[0])
	}
	if p.Rationale == "" {
		t.Error("rationale dropped")
	}
}

func TestParseProposalMissingElement(t *testing.T) {
	raw := json.RawMessage(`{
		"placements": [
			{"id": "a", "left": 20, "top": 30, "scale_x": 1, "scale_y": 1}
		]
	}`)

	if _, err := ParseProposal(raw, parseElements); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestParseProposalDropsUnknownIDs(t *testing.T) {
	raw := json.RawMessage(`{
		"placements": [
			{"id": "a", "left": 20, "top": 30, "scale_x": 1, "scale_y": 1},
			{"id": "hallucinated", "left": 0, "top": 0, "scale_x": 1, "scale_y": 1},
			{"id": "b", "left": 200, "top": 150, "scale_x": 1, "scale_y": 1}
		]
	}`)

	p, err := ParseProposal(raw, parseElements)
	if err != nil {
		t.Fatalf("ParseProposal: %v", err)
	}
	if len(p.Placements) != 2 {
		t.Fatalf("placements = %d, want 2 after dropping the unknown ID", len(p.Placements))
	}
	for _, pl := range p.Placements {
		if pl.ID == "hallucinated" {
			t.Error("unknown ID survived")
		}
	}
}

func TestParseProposalDropsDuplicates(t *testing.T) {
	raw := json.RawMessage(`{
		"placements": [
			{"id": "a", "left": 20, "top": 30, "scale_x": 1, "scale_y": 1},
			{"id": "a", "left": 999, "top": 999, "scale_x": 2, "scale_y": 2},
			{"id": "b", "left": 200, "top": 150, "scale_x": 1, "scale_y": 1}
		]
	}`)

	p, err := ParseProposal(raw, parseElements)
	if err != nil {
		t.Fatalf("ParseProposal: %v", err)
	}
	if len(p.Placements) != 2 {
		t.Fatalf("placements = %d, want 2", len(p.Placements))
	}
	// First occurrence wins.
	if p.Placements[0].Left != 20 {
		t.Errorf("duplicate overwrote the first placement: %+v", p.Placements[0])
	}
}

func TestParseProposalRejectsBadGeometry(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"zero scale", `{"placements": [
			{"id": "a", "left": 0, "top": 0, "scale_x": 0, "scale_y": 1},
			{"id": "b", "left": 0, "top": 0, "scale_x": 1, "scale_y": 1}]}`},
		{"negative scale", `{"placements": [
			{"id": "a", "left": 0, "top": 0, "scale_x": 1, "scale_y": -2},
			{"id": "b", "left": 0, "top": 0, "scale_x": 1, "scale_y": 1}]}`},
		{"not json", `placements: nope`},
		{"empty placements", `{"placements": []}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseProposal(json.RawMessage(tc.raw), parseElements); !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}
