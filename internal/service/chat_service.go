package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"ajil.mn/jobmarket/internal/repository"
	"ajil.mn/jobmarket/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RoomChannel is the Redis pub/sub channel carrying live pushes for a room.
// Every server instance subscribes per connected socket, so delivery works
// across horizontally scaled instances.
func RoomChannel(roomID uuid.UUID) string {
	return fmt.Sprintf("chat_room:%s", roomID)
}

type ChatService interface {
	StartChat(ctx context.Context, employerID uuid.UUID, input dto.StartChatInput) (*model.ChatRoom, error)
	GetRoom(ctx context.Context, userID, roomID uuid.UUID) (*model.ChatRoom, error)
	ListRooms(ctx context.Context, userID uuid.UUID) ([]dto.RoomResponse, error)
	CloseRoom(ctx context.Context, userID, roomID uuid.UUID) (*model.ChatRoom, error)
	RequestReopen(ctx context.Context, userID, roomID uuid.UUID) (*model.ChatRoom, error)
	AcceptReopen(ctx context.Context, userID, roomID uuid.UUID) (*model.ChatRoom, error)
	HideRoom(ctx context.Context, userID, roomID uuid.UUID) error

	SendMessage(ctx context.Context, userID, roomID uuid.UUID, content string) (*model.ChatMessage, error)
	GetMessages(ctx context.Context, userID, roomID uuid.UUID, page dto.PageQuery) ([]*model.ChatMessage, error)
	MarkRead(ctx context.Context, userID, roomID uuid.UUID) error
	DeleteMessage(ctx context.Context, userID, messageID uuid.UUID) error
	PublishTyping(ctx context.Context, userID, roomID uuid.UUID) error
}

type chatService struct {
	repo        repository.ChatRepository
	userRepo    repository.UserRepository
	redisClient *redis.Client
}

func NewChatService(repo repository.ChatRepository, userRepo repository.UserRepository, redisClient *redis.Client) ChatService {
	return &chatService{
		repo:        repo,
		userRepo:    userRepo,
		redisClient: redisClient,
	}
}

// StartChat creates (or returns) the room for the triple. Only an employer
// may open a chat, and only with a candidate; the state machine itself does
// not re-check this.
func (s *chatService) StartChat(ctx context.Context, employerID uuid.UUID, input dto.StartChatInput) (*model.ChatRoom, error) {
	employer, err := s.userRepo.FindByID(ctx, employerID)
	if err != nil {
		return nil, err
	}
	if employer.UserType != model.UserTypeEmployer {
		return nil, apperror.New(http.StatusForbidden, "only employers can start a chat", apperror.ErrForbidden)
	}

	candidate, err := s.userRepo.FindByID(ctx, input.CandidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "candidate not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	if candidate.UserType != model.UserTypeCandidate {
		return nil, apperror.New(http.StatusBadRequest, "chat target must be a candidate", apperror.ErrBadRequest)
	}

	room, _, err := s.repo.FindOrCreateRoom(ctx, employerID, input.CandidateID, input.JobID)
	return room, err
}

func (s *chatService) GetRoom(ctx context.Context, userID, roomID uuid.UUID) (*model.ChatRoom, error) {
	return s.participantRoom(ctx, userID, roomID)
}

func (s *chatService) ListRooms(ctx context.Context, userID uuid.UUID) ([]dto.RoomResponse, error) {
	rooms, err := s.repo.FindRoomsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		unread, err := s.repo.CountUnread(ctx, room.ID, userID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.RoomResponse{
			ID:          room.ID,
			EmployerID:  room.EmployerID,
			CandidateID: room.CandidateID,
			JobID:       room.JobID,
			Status:      room.Status,
			UnreadCount: unread,
			CreatedAt:   room.CreatedAt,
		})
	}

	return responses, nil
}

func (s *chatService) CloseRoom(ctx context.Context, userID, roomID uuid.UUID) (*model.ChatRoom, error) {
	room, err := s.participantRoom(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}

	if room.Status != model.RoomStatusActive {
		return nil, apperror.New(http.StatusConflict, "room is not active", apperror.ErrConflict)
	}

	room.Status = model.RoomStatusClosed
	room.ClosedByID = &userID
	room.ReopenRequestedByID = nil

	if err := s.repo.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *chatService) RequestReopen(ctx context.Context, userID, roomID uuid.UUID) (*model.ChatRoom, error) {
	room, err := s.participantRoom(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}

	if room.Status != model.RoomStatusClosed {
		return nil, apperror.New(http.StatusConflict, "room is not closed", apperror.ErrConflict)
	}

	room.Status = model.RoomStatusPendingReopen
	room.ReopenRequestedByID = &userID

	if err := s.repo.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// AcceptReopen moves pending_reopen back to active. Only the participant who
// did NOT request the reopen may accept; the requester accepting is rejected
// with no state change.
func (s *chatService) AcceptReopen(ctx context.Context, userID, roomID uuid.UUID) (*model.ChatRoom, error) {
	room, err := s.participantRoom(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}

	if room.Status != model.RoomStatusPendingReopen {
		return nil, apperror.New(http.StatusConflict, "room has no pending reopen request", apperror.ErrConflict)
	}

	if room.ReopenRequestedByID != nil && *room.ReopenRequestedByID == userID {
		return nil, apperror.New(http.StatusForbidden, "reopen must be accepted by the other participant", apperror.ErrForbidden)
	}

	room.Status = model.RoomStatusActive
	room.ClosedByID = nil
	room.ReopenRequestedByID = nil

	if err := s.repo.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// HideRoom marks the room deleted for this party only. Status is untouched
// and the other participant keeps seeing the room.
func (s *chatService) HideRoom(ctx context.Context, userID, roomID uuid.UUID) error {
	room, err := s.participantRoom(ctx, userID, roomID)
	if err != nil {
		return err
	}

	if room.EmployerID == userID {
		room.EmployerDeleted = true
	} else {
		room.CandidateDeleted = true
	}

	return s.repo.UpdateRoom(ctx, room)
}

// SendMessage persists the message first, then publishes it to the room
// channel. Subscribers not connected at publish time miss the live push and
// pick the message up from history.
func (s *chatService) SendMessage(ctx context.Context, userID, roomID uuid.UUID, content string) (*model.ChatMessage, error) {
	room, err := s.participantRoom(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}

	if room.Status != model.RoomStatusActive {
		return nil, apperror.New(http.StatusForbidden, "room is not active", apperror.ErrForbidden)
	}

	message := &model.ChatMessage{
		RoomID:   roomID,
		SenderID: userID,
		Content:  content,
	}

	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	s.publish(ctx, roomID, "new_message", message)

	return message, nil
}

func (s *chatService) GetMessages(ctx context.Context, userID, roomID uuid.UUID, page dto.PageQuery) ([]*model.ChatMessage, error) {
	if _, err := s.participantRoom(ctx, userID, roomID); err != nil {
		return nil, err
	}

	page.Defaults()
	return s.repo.FindMessages(ctx, roomID, page.Offset(), page.Limit)
}

func (s *chatService) MarkRead(ctx context.Context, userID, roomID uuid.UUID) error {
	if _, err := s.participantRoom(ctx, userID, roomID); err != nil {
		return err
	}
	return s.repo.MarkMessagesRead(ctx, roomID, userID)
}

func (s *chatService) DeleteMessage(ctx context.Context, userID, messageID uuid.UUID) error {
	message, err := s.repo.FindMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if message.SenderID != userID {
		return apperror.New(http.StatusForbidden, "only the sender can delete a message", apperror.ErrForbidden)
	}

	return s.repo.SoftDeleteMessage(ctx, messageID)
}

func (s *chatService) PublishTyping(ctx context.Context, userID, roomID uuid.UUID) error {
	if _, err := s.participantRoom(ctx, userID, roomID); err != nil {
		return err
	}

	s.publish(ctx, roomID, "user_typing", map[string]any{
		"room_id": roomID,
		"user_id": userID,
	})
	return nil
}

func (s *chatService) publish(ctx context.Context, roomID uuid.UUID, frameType string, data any) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"type": frameType,
		"data": data,
	})
	if err != nil {
		return
	}

	s.redisClient.Publish(ctx, RoomChannel(roomID), payload)
}

func (s *chatService) participantRoom(ctx context.Context, userID, roomID uuid.UUID) (*model.ChatRoom, error) {
	room, err := s.repo.FindRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if !room.HasParticipant(userID) {
		return nil, apperror.New(http.StatusForbidden, "not a participant of this room", apperror.ErrForbidden)
	}

	return room, nil
}
