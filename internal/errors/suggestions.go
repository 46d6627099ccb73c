package errors

import "errors"

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	ErrPermissionDenied:  "Grant screen recording access to your terminal in System Settings > Privacy & Security > Screen Recording, then try again.",
	ErrNoCaptureTool:     "Install gnome-screenshot, grim or scrot so screenshots can be taken.",
	ErrInvalidTimeOfDay:  "Use 24h HH:MM format, for example '18:30'.",
	ErrInvalidInterval:   "Set the interval in milliseconds, for example 'worklog config set interval 300000' for 5 minutes.",
	ErrInvalidQuality:    "Pick a JPEG quality between 0 and 100.",
	ErrUnknownOption:     "Run 'worklog config show' to list the available options.",
	ErrInvalidDay:        "Try 'today', 'yesterday', '2024-01-31' or '3 days ago'.",
	ErrDiskFull:          "Free up disk space and try again.",
	ErrDaemonNotRunning:  "Start it with 'worklog daemon start'.",
	ErrControlNotSupport: "Restart the daemon with autoStart enabled instead.",
	ErrInvalidDirectory:  "Use an absolute path such as '~/Pictures/worklog', or an empty value for the default location.",
	ErrJournalLocked:     "The daemon holds the journal while running. Stop it with 'worklog daemon stop' to read history.",
}

// GetSuggestion returns a suggestion for an error, if available.
// It walks the error chain to find matching suggestions.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	switch Classify(err) {
	case KindArchive:
		return "The screenshot is still on disk. Check 'git status' in the screenshots directory."
	case KindReport:
		return "Check that the reports directory is writable."
	case KindConfig:
		return "Settings are kept in memory; check that the config directory is writable."
	}

	return ""
}

// FormatError formats an error with optional suggestion.
func FormatError(err error) string {
	msg := err.Error()
	if suggestion := GetSuggestion(err); suggestion != "" {
		msg += "\n" + suggestion
	}
	return msg
}
