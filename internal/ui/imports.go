package ui

import "github.com/bamsammich/kopeer/internal/event"

// Event is re-exported for presenter signatures.
type Event = event.Event

// Re-export event types for convenience.
const (
	WalkStarted   = event.WalkStarted
	WalkComplete  = event.WalkComplete
	DirCreated    = event.DirCreated
	FileCompleted = event.FileCompleted
	LinkCreated   = event.LinkCreated
	FileSkipped   = event.FileSkipped
	FileFailed    = event.FileFailed
	VerifyStarted = event.VerifyStarted
	VerifyOK      = event.VerifyOK
	VerifyFailed  = event.VerifyFailed
)
