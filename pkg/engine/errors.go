package engine

import "errors"

var (
	// ErrInvalidConfiguration items mal formados al iniciar; la sesión no se crea.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrIgnoredDuplicateSubmission envío fuera del estado Presenting. Recuperable, no se muestra al jugador.
	ErrIgnoredDuplicateSubmission = errors.New("submission ignored")
	// ErrOutOfSequenceAdvance advance antes de responder el ítem actual.
	ErrOutOfSequenceAdvance = errors.New("advance before answer")
	ErrSessionIncomplete    = errors.New("session not complete")
	ErrNotStarted           = errors.New("session not started")
	ErrUnknownOption        = errors.New("unknown option")
	ErrWrongItemKind        = errors.New("wrong item kind")
	ErrReflectionTooShort   = errors.New("reflection too short")
	ErrInvalidState         = errors.New("invalid session state")
)
