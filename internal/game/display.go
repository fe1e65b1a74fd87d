// internal/game/display.go
//
// Arrow row rendering for a scored guess, as a pure value: no timing or
// animation state lives here.

package game

// ArrowSlots is the fixed width of the arrow row shown under each guess.
const ArrowSlots = 5

const (
	glyphUp   = "↑"
	glyphDown = "↓"
)

// DisplayPlan is what the client renders for one scored guess:
// len(Glyphs) arrows followed by Slots-len(Glyphs) empty slots.
type DisplayPlan struct {
	Glyphs []string `json:"glyphs"`
	Slots  int      `json:"slots"`
}

// Plan maps a ScoreResult to its arrow row. Exact guesses show no arrows.
func Plan(r ScoreResult) DisplayPlan {
	p := DisplayPlan{Glyphs: []string{}, Slots: ArrowSlots}
	glyph := glyphUp
	switch r.Direction {
	case DirectionExact:
		return p
	case DirectionDown:
		glyph = glyphDown
	}
	n := min(max(r.Magnitude, 0), ArrowSlots)
	for i := 0; i < n; i++ {
		p.Glyphs = append(p.Glyphs, glyph)
	}
	return p
}
