package dto

import "time"

type ChatRequest struct {
	UserInput string `json:"user_input" validate:"required"`
	SessionId string `json:"session_id" validate:"required"`
}

type ChatResponse struct {
	Response string  `json:"response"`
	Duration float64 `json:"duration"`
}

type HistoryTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Duration  *float64  `json:"duration,omitempty"`
}

type HistoryResponse struct {
	SessionId string        `json:"session_id"`
	History   []HistoryTurn `json:"history"`
}
