package game

import "errors"

// Rejections: the submission is ignored and the round is unchanged (ErrTimeUp
// is the exception, it ends the round).
var (
	ErrNotPlaying     = errors.New("round is not in progress")
	ErrUnknownCounty  = errors.New("not a known county")
	ErrDuplicateGuess = errors.New("county already guessed")
	ErrWrongInput     = errors.New("input kind not accepted by this mode")
	ErrTimeUp         = errors.New("time limit reached")
	ErrNoRound        = errors.New("no round started")
)

// Caller errors.
var (
	ErrUnknownMode       = errors.New("unknown mode")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrUnknownTheme      = errors.New("unknown theme")
)

// IsRejection reports whether err is an invalid-input rejection rather than
// a caller bug.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNotPlaying) ||
		errors.Is(err, ErrUnknownCounty) ||
		errors.Is(err, ErrDuplicateGuess) ||
		errors.Is(err, ErrWrongInput) ||
		errors.Is(err, ErrTimeUp)
}
