package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartChatInput struct {
	CandidateID uuid.UUID `json:"candidate_id" binding:"required"`
	JobID       uuid.UUID `json:"job_id" binding:"required"`
}

type SendMessageInput struct {
	Content string `json:"content" binding:"required,max=2000"`
}

type RoomResponse struct {
	ID          uuid.UUID `json:"id"`
	EmployerID  uuid.UUID `json:"employer_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	JobID       uuid.UUID `json:"job_id"`
	Status      string    `json:"status"`
	UnreadCount int64     `json:"unread_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// SocketFrame is the envelope exchanged on the chat WebSocket.
// Client -> server types: join_room, send_message, typing.
// Server -> client types: new_message, joined_room, user_typing, error.
type SocketFrame struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}
