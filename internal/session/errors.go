package session

import "errors"

// Session protocol failures are the only user-visible errors in the
// system. Each maps to a stable wire code so clients can retry the
// originating action with corrected input.
var (
	ErrNoSuchSession    = errors.New("no such session")
	ErrSessionExists    = errors.New("session already exists")
	ErrSessionFull      = errors.New("session is full")
	ErrNotParticipant   = errors.New("not a participant")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrNoHost           = errors.New("caller is not the host")
	ErrInvalidPhase     = errors.New("invalid phase for action")
)

// Code translates a session error into its wire code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNoSuchSession):
		return "no_such_session"
	case errors.Is(err, ErrSessionFull):
		return "session_is_full"
	case errors.Is(err, ErrNotParticipant):
		return "not_participant"
	case errors.Is(err, ErrNotEnoughPlayers):
		return "not_enough_players"
	case errors.Is(err, ErrNoHost):
		return "no_host"
	case errors.Is(err, ErrInvalidPhase):
		return "invalid_phase"
	}
	return "unknown_error"
}
