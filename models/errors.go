package models

import "errors"

// Sentinel errors for the participation and chat engine. Handlers match these
// with errors.Is and translate them to HTTP status codes; anything else is an
// unclassified persistence failure and surfaces as a 500.
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrAlreadyParticipant = errors.New("already a participant")
	ErrNotParticipant     = errors.New("not a participant of this event")
	ErrRemovedFromEvent   = errors.New("removed from this event")
	ErrNotEventCreator    = errors.New("only the event creator can manage participants")
	ErrChatForbidden      = errors.New("not allowed to access this event's chat")
	ErrEmptyMessage       = errors.New("message cannot be empty")
)
