package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrFormNotFound is returned when a form definition cannot be found by the loader.
var ErrFormNotFound = errors.New("form not found")

// ErrBlockNotFound is returned by lookups that address an unknown block.
var ErrBlockNotFound = errors.New("block not found")

// ErrQuestionNotFound is returned by lookups that address an unknown question.
var ErrQuestionNotFound = errors.New("question not found")

// ErrUnknownAction is returned when an action type is not recognised by a transport.
var ErrUnknownAction = errors.New("unknown action")
