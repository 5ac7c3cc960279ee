package ranking

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPoints sets the points awarded for a win, a draw and a loss.
// Negative values and a non-positive win value are ignored because they
// would move ratings outside the 0..scale range.
func WithPoints(win, draw, loss int) Option {
	return func(e *Engine) {
		if win <= 0 || draw < 0 || loss < 0 || draw > win || loss > win {
			return
		}
		e.winPoints = win
		e.drawPoints = draw
		e.lossPoints = loss
	}
}

// WithScale sets the upper bound of the rating range.
func WithScale(scale float64) Option {
	return func(e *Engine) {
		if scale > 0 {
			e.scale = scale
		}
	}
}

// WithZeroPlayedPolicy selects the rating of a player with no matches played.
func WithZeroPlayedPolicy(policy ZeroPlayedPolicy) Option {
	return func(e *Engine) {
		switch policy {
		case ZeroPlayedZero, ZeroPlayedNaN:
			e.zeroPlayed = policy
		}
	}
}
