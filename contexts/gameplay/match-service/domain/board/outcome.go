package board

// Result tags who won a finished game. The collective is the aggregate of
// human voters playing against the automated side.
type Result string

const (
	ResultAI         Result = "ai"
	ResultCollective Result = "collective"
	ResultDraw       Result = "draw"
)

// ShouldEnd reports whether the game is over once next is on play.
//
// The single-color-remaining check is deliberately stronger than standard
// tournament rules and is kept as a house rule: a wiped-out side ends the
// game even if skipping turns could continue it.
func ShouldEnd(b Board, next Color) bool {
	if b.Full() {
		return true
	}
	if b.Count(ColorBlack) == 0 || b.Count(ColorWhite) == 0 {
		return true
	}
	return len(LegalMoves(b, next)) == 0 && len(LegalMoves(b, Opposite(next))) == 0
}

// Outcome scores a final board. Equal counts draw; otherwise the majority
// color wins and the result is attributed to the AI or to the collective
// depending on which side the automated player holds.
func Outcome(b Board, aiSide Color) Result {
	black := b.Count(ColorBlack)
	white := b.Count(ColorWhite)
	if black == white {
		return ResultDraw
	}

	majority := ColorBlack
	if white > black {
		majority = ColorWhite
	}
	if majority == aiSide {
		return ResultAI
	}
	return ResultCollective
}
