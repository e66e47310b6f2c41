package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the width below which the detail pane is hidden.
	LayoutCompactWidth = 100

	// LayoutListShare is the fraction of the width given to the thread list
	// when the detail pane is shown.
	LayoutListShare = 0.55
)

// Timing constants.
const (
	// DefaultUIInterval is how often the view re-reads the caches.
	DefaultUIInterval = time.Second

	// DefaultRequestTimeout bounds each request started from the UI.
	DefaultRequestTimeout = 15 * time.Second

	// UserNameCheckDelay debounces the availability check on the signup form.
	UserNameCheckDelay = 400 * time.Millisecond
)

// Text limits.
const (
	excerptWidth  = 72
	maxTitleWidth = 60
	searchLimit   = 20
	logTailLines  = 400
)
