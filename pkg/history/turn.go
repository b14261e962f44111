package history

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one chat message in a session's append-only log. Duration is the
// generation wall-clock time in seconds and is only set on assistant turns.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Duration  *float64  `json:"duration,omitempty"`
}

// HasSystemTurn reports whether the log already contains a system turn.
func HasSystemTurn(turns []Turn) bool {
	for _, t := range turns {
		if t.Role == RoleSystem {
			return true
		}
	}
	return false
}

// Trim bounds a turn log to roughly budget characters of content, keeping
// the most recent window. The system turn (if any) is always kept, and the
// window is anchored so it starts on a user turn; leading assistant turns
// that would open the window without their question are dropped.
func Trim(turns []Turn, budget int) []Turn {
	if budget <= 0 || len(turns) == 0 {
		return turns
	}

	var system *Turn
	rest := make([]Turn, 0, len(turns))
	for i := range turns {
		if turns[i].Role == RoleSystem && system == nil {
			system = &turns[i]
			continue
		}
		rest = append(rest, turns[i])
	}

	used := 0
	if system != nil {
		used = len(system.Content)
	}

	// Walk backwards until the budget is spent.
	start := len(rest)
	for i := len(rest) - 1; i >= 0; i-- {
		used += len(rest[i].Content)
		if used > budget && start < len(rest) {
			break
		}
		start = i
	}

	// Anchor the window on a user turn.
	for start < len(rest) && rest[start].Role != RoleUser {
		start++
	}

	window := rest[start:]
	if system == nil {
		return window
	}
	out := make([]Turn, 0, len(window)+1)
	out = append(out, *system)
	out = append(out, window...)
	return out
}
