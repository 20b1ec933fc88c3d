package service

import "errors"

// Sentinel errors surfaced to the HTTP layer. Collaborator failures
// (evaluator, tip generator, resource fetchers) are never represented here:
// they degrade to default or empty results inside the evaluation pipeline.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("access denied")
	ErrEmptyDiagram     = errors.New("diagram has no elements")
	ErrAlreadySubmitted = errors.New("session already submitted")
	ErrSessionClosed    = errors.New("session is no longer active")
)
