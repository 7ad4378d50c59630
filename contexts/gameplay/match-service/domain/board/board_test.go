package board

import (
	"errors"
	"strings"
	"testing"
)

func TestInitialLayout(t *testing.T) {
	b := Initial()

	if got := b.Count(ColorBlack); got != 2 {
		t.Fatalf("expected 2 black discs, got %d", got)
	}
	if got := b.Count(ColorWhite); got != 2 {
		t.Fatalf("expected 2 white discs, got %d", got)
	}
	if got := b.CountEmpty(); got != 60 {
		t.Fatalf("expected 60 empty cells, got %d", got)
	}
	if b[3][3] != CellWhite || b[4][4] != CellWhite {
		t.Fatalf("expected white on (3,3) and (4,4), board %q", b.String())
	}
	if b[3][4] != CellBlack || b[4][3] != CellBlack {
		t.Fatalf("expected black on (3,4) and (4,3), board %q", b.String())
	}
}

func TestParseRoundTrip(t *testing.T) {
	original := Initial()
	parsed, err := Parse(original.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed != original {
		t.Fatalf("round trip mismatch: %q vs %q", parsed.String(), original.String())
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	if _, err := Parse("---"); err == nil {
		t.Fatal("expected error for short board text")
	}
	bad := strings.Repeat("-", 63) + "X"
	if _, err := Parse(bad); err == nil {
		t.Fatal("expected error for invalid cell")
	}
}

func TestSideToMoveAlternates(t *testing.T) {
	if got := SideToMove(0); got != ColorBlack {
		t.Fatalf("turn 0 should be black, got %s", got)
	}
	if got := SideToMove(1); got != ColorWhite {
		t.Fatalf("turn 1 should be white, got %s", got)
	}
	if got := SideToMove(10); got != ColorBlack {
		t.Fatalf("turn 10 should be black, got %s", got)
	}
}

func TestLegalMovesFromOpening(t *testing.T) {
	moves := LegalMoves(Initial(), ColorBlack)
	want := []Position{{2, 3}, {3, 2}, {4, 5}, {5, 4}}
	if len(moves) != len(want) {
		t.Fatalf("expected %d legal moves, got %v", len(want), moves)
	}
	for i, pos := range want {
		if moves[i] != pos {
			t.Fatalf("expected move %d to be %v, got %v", i, pos, moves[i])
		}
	}
}

func TestApplyFlipsBracketedDiscs(t *testing.T) {
	next, flipped, err := Apply(Initial(), ColorBlack, Position{Row: 2, Col: 3})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(flipped) != 1 || flipped[0] != (Position{Row: 3, Col: 3}) {
		t.Fatalf("expected flip of (3,3), got %v", flipped)
	}
	if got := next.Count(ColorBlack); got != 4 {
		t.Fatalf("expected 4 black discs after move, got %d", got)
	}
	if got := next.Count(ColorWhite); got != 1 {
		t.Fatalf("expected 1 white disc after move, got %d", got)
	}

	// The original board is a value and must be untouched.
	if got := Initial().Count(ColorBlack); got != 2 {
		t.Fatalf("initial board mutated, black count %d", got)
	}
}

func TestApplyRejectsIllegalMoves(t *testing.T) {
	cases := []Position{
		{Row: 3, Col: 3}, // occupied
		{Row: 0, Col: 0}, // flips nothing
		{Row: -1, Col: 4},
		{Row: 8, Col: 8},
	}
	for _, pos := range cases {
		if _, _, err := Apply(Initial(), ColorBlack, pos); !errors.Is(err, ErrIllegalMove) {
			t.Fatalf("expected ErrIllegalMove for %v, got %v", pos, err)
		}
	}
}

func TestShouldEndOnFullBoard(t *testing.T) {
	raw := strings.Repeat("B", 32) + strings.Repeat("W", 32)
	b, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !ShouldEnd(b, ColorBlack) {
		t.Fatal("full board must end the game")
	}
}

func TestShouldEndWhenColorEliminated(t *testing.T) {
	raw := "BB" + strings.Repeat("-", 62)
	b, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !ShouldEnd(b, ColorWhite) {
		t.Fatal("board with a wiped-out color must end the game")
	}
}

func TestShouldEndWhenNeitherSideCanMove(t *testing.T) {
	// Two isolated clusters with no brackets available to either side.
	raw := "BB" + strings.Repeat("-", 60) + "WW"
	b, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(LegalMoves(b, ColorBlack)) != 0 || len(LegalMoves(b, ColorWhite)) != 0 {
		t.Fatalf("fixture expects no legal moves, board %q", b.String())
	}
	if !ShouldEnd(b, ColorBlack) {
		t.Fatal("mutually blocked board must end the game")
	}
}

func TestShouldEndFalseInOpenPosition(t *testing.T) {
	if ShouldEnd(Initial(), ColorBlack) {
		t.Fatal("opening position must not end the game")
	}
}

func TestOutcomeAttribution(t *testing.T) {
	majorityBlack, err := Parse(strings.Repeat("B", 40) + strings.Repeat("W", 24))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := Outcome(majorityBlack, ColorWhite); got != ResultCollective {
		t.Fatalf("black majority vs white AI should be collective, got %s", got)
	}
	if got := Outcome(majorityBlack, ColorBlack); got != ResultAI {
		t.Fatalf("black majority with black AI should be ai, got %s", got)
	}

	even, err := Parse(strings.Repeat("B", 32) + strings.Repeat("W", 32))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := Outcome(even, ColorWhite); got != ResultDraw {
		t.Fatalf("equal counts should draw, got %s", got)
	}
}
