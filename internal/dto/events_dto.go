package dto

// ChatCompletedEvent is published after every answered chat request.
type ChatCompletedEvent struct {
	SessionId string  `json:"session_id"`
	Duration  float64 `json:"duration"`
}

// DocumentIndexedEvent is published once per successfully indexed source.
type DocumentIndexedEvent struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}
