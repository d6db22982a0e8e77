package contract

import "errors"

var (
	// ErrNoSuchRoom is returned when a message references an unknown or
	// inactive room.
	ErrNoSuchRoom = errors.New("no such room")

	// ErrNoSuchQuestion is returned when an ai message references a question
	// message that does not exist, is not a user message, or lives in a
	// different room.
	ErrNoSuchQuestion = errors.New("no such question message")
)
