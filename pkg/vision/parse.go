package vision

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/framefit/framefit/pkg/canvas"
)

// ParseProposal decodes a raw model response and validates it against the
// requested elements. The response must cover every element with finite
// geometry and positive scales; anything less is a model failure, which the
// orchestrator answers with the deterministic planner. Placements for
// unknown element IDs are dropped rather than rejected.
func ParseProposal(raw json.RawMessage, elements []canvas.Element) (*Proposal, error) {
	var p Proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(p.Placements) == 0 {
		return nil, fmt.Errorf("%w: no placements", ErrMalformedResponse)
	}

	known := make(map[string]bool, len(elements))
	for i := range elements {
		known[elements[i].ID] = true
	}

	seen := make(map[string]bool, len(p.Placements))
	kept := p.Placements[:0]
	for _, pl := range p.Placements {
		if !known[pl.ID] || seen[pl.ID] {
			continue
		}
		if err := validPlacement(pl); err != nil {
			return nil, err
		}
		seen[pl.ID] = true
		kept = append(kept, pl)
	}
	p.Placements = kept

	for i := range elements {
		if !seen[elements[i].ID] {
			return nil, fmt.Errorf("%w: element %s not placed", ErrMalformedResponse, elements[i].ID)
		}
	}
	return &p, nil
}

func validPlacement(p canvas.Placement) error {
	for _, v := range [4]float64{p.Left, p.Top, p.ScaleX, p.ScaleY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite geometry for %s", ErrMalformedResponse, p.ID)
		}
	}
	if p.ScaleX <= 0 || p.ScaleY <= 0 {
		return fmt.Errorf("%w: non-positive scale for %s", ErrMalformedResponse, p.ID)
	}
	return nil
}
