package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"ajil.mn/jobmarket/internal/service"
	"ajil.mn/jobmarket/pkg/response"
	"ajil.mn/jobmarket/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type ChatHandler struct {
	service     service.ChatService
	redisClient *redis.Client
	startLimit  time.Duration
	upgrader    websocket.Upgrader
}

func NewChatHandler(service service.ChatService, redisClient *redis.Client, startLimit time.Duration) *ChatHandler {
	return &ChatHandler{
		service:     service,
		redisClient: redisClient,
		startLimit:  startLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS is enforced at the HTTP layer
			},
		},
	}
}

// REST Endpoints

func (h *ChatHandler) StartChat(c *gin.Context) {
	var input dto.StartChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	allowed, err := service.CheckAndSetRateLimit(c.Request.Context(), h.redisClient, userID, "chat_start", h.startLimit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if !allowed {
		ttl, _ := service.GetRateLimitTTL(c.Request.Context(), h.redisClient, userID, "chat_start")
		c.Header("Retry-After", fmt.Sprintf("%.0f", ttl.Seconds()))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "you are starting chats too fast"})
		return
	}

	room, err := h.service.StartChat(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	rooms, err := h.service.ListRooms(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

func (h *ChatHandler) GetRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	room, err := h.service.GetRoom(c.Request.Context(), userID, roomID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

func (h *ChatHandler) CloseRoom(c *gin.Context) {
	h.transition(c, h.service.CloseRoom)
}

func (h *ChatHandler) RequestReopen(c *gin.Context) {
	h.transition(c, h.service.RequestReopen)
}

func (h *ChatHandler) AcceptReopen(c *gin.Context) {
	h.transition(c, h.service.AcceptReopen)
}

func (h *ChatHandler) HideRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.HideRoom(c.Request.Context(), userID, roomID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "room hidden"})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var input dto.SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	message, err := h.service.SendMessage(c.Request.Context(), userID, roomID, input.Content)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var page dto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	messages, err := h.service.GetMessages(c.Request.Context(), userID, roomID, page)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, roomID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "messages marked as read"})
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

func (h *ChatHandler) Typing(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.PublishTyping(c.Request.Context(), userID, roomID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// transition is the shared body of the room state endpoints
// (close, request-reopen, accept-reopen).
func (h *ChatHandler) transition(c *gin.Context, fn func(ctx context.Context, userID, roomID uuid.UUID) (*model.ChatRoom, error)) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	room, err := fn(c.Request.Context(), userID, roomID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// WebSocket Endpoint

// HandleWebSocket upgrades the connection and bridges it to the Redis pub/sub
// channel of the room the client joins. Incoming frames: join_room,
// send_message, typing. Outgoing frames: joined_room, new_message,
// user_typing, error.
func (h *ChatHandler) HandleWebSocket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	if h.redisClient == nil {
		log.Println("redis client is nil, cannot bridge chat websocket")
		return
	}

	ctx := c.Request.Context()

	// Frames read from the client are funneled through a channel so the
	// select loop below stays the single writer on the connection.
	incoming := make(chan dto.SocketFrame)
	clientClosed := make(chan struct{})

	go func() {
		defer close(clientClosed)
		for {
			var frame dto.SocketFrame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			select {
			case incoming <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		pubsub *redis.PubSub
		msgCh  <-chan *redis.Message
		roomID uuid.UUID
		inRoom bool
	)
	defer func() {
		if pubsub != nil {
			pubsub.Close()
		}
	}()

	writeFrame := func(frameType string, data map[string]any) error {
		return conn.WriteJSON(dto.SocketFrame{Type: frameType, Data: data})
	}

	join := func(id uuid.UUID) bool {
		if _, err := h.service.GetRoom(ctx, userID, id); err != nil {
			writeFrame("error", map[string]any{"error": "cannot join room"})
			return false
		}
		if pubsub != nil {
			pubsub.Close()
		}
		pubsub = h.redisClient.Subscribe(ctx, service.RoomChannel(id))
		if _, err := pubsub.Receive(ctx); err != nil {
			log.Printf("failed to subscribe to room channel: %v", err)
			return false
		}
		msgCh = pubsub.Channel()
		roomID = id
		inRoom = true
		return writeFrame("joined_room", map[string]any{"room_id": id.String()}) == nil
	}

	// Clients may name the room up front instead of sending join_room.
	if raw := c.Query("room_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeFrame("error", map[string]any{"error": "room_id is required"})
			return
		}
		if !join(id) {
			return
		}
	}

	for {
		select {
		case frame, ok := <-incoming:
			if !ok {
				return
			}
			switch frame.Type {
			case "join_room":
				id, err := frameUUID(frame, "room_id")
				if err != nil {
					writeFrame("error", map[string]any{"error": "room_id is required"})
					continue
				}
				join(id)

			case "send_message":
				if !inRoom {
					writeFrame("error", map[string]any{"error": "join a room first"})
					continue
				}
				content, _ := frame.Data["content"].(string)
				if content == "" {
					writeFrame("error", map[string]any{"error": "content is required"})
					continue
				}
				if _, err := h.service.SendMessage(ctx, userID, roomID, content); err != nil {
					writeFrame("error", map[string]any{"error": err.Error()})
				}
				// The persisted message arrives back through the Redis channel.

			case "typing":
				if !inRoom {
					continue
				}
				if err := h.service.PublishTyping(ctx, userID, roomID); err != nil {
					log.Printf("failed to publish typing event: %v", err)
				}

			default:
				writeFrame("error", map[string]any{"error": "unknown frame type"})
			}

		case msg, ok := <-msgCh:
			if !ok {
				msgCh = nil
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("failed to write message to websocket: %v", err)
				return
			}

		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}

func frameUUID(frame dto.SocketFrame, key string) (uuid.UUID, error) {
	raw, _ := frame.Data[key].(string)
	return uuid.Parse(raw)
}
