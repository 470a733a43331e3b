package game

import "errors"

// Action rejections. Every validation failure is detected before any state
// mutation and returned as one of these; nothing in this package panics
// across the session boundary. The deck-corruption invariant violation is
// the one fatal case and lives in the deck package (deck.ErrCorrupt).
var (
	ErrNotPlaying       = errors.New("not a player in this game")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrNotStarted       = errors.New("game not started")
	ErrAlreadyDealt     = errors.New("already dealt")
	ErrNotEnoughPlayers = errors.New("not enough players to deal")
	ErrCannotContinue   = errors.New("not enough players to continue")
	ErrCardNotHeld      = errors.New("card not held")
	ErrCardNotPlayable  = errors.New("card not playable")
	ErrRenege           = errors.New("reneging not allowed")
	ErrMustDrawFirst    = errors.New("must draw first")
	ErrAlreadyDrawn     = errors.New("already drawn this turn")
	ErrJoinRejected     = errors.New("join rejected")
	ErrUnauthorized     = errors.New("not authorized")
	ErrAlreadySeated    = errors.New("already seated")
)
