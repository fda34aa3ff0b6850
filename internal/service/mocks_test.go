package service

import (
	"context"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes shared by the service tests.

type mockUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newMockUserRepo(users ...*model.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User, company *model.Company, membership *model.CompanyUser) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByRegistryNumber(ctx context.Context, registryNumber string) (*model.User, error) {
	for _, u := range m.users {
		if u.RegistryNumber != nil && *u.RegistryNumber == registryNumber {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindAll(ctx context.Context, filter dto.UserFilter) ([]*model.User, int64, error) {
	var out []*model.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if u, ok := m.users[id]; ok {
		u.IsActive = active
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockUserRepo) PrimaryMembership(ctx context.Context, userID uuid.UUID) (*model.CompanyUser, error) {
	return nil, gorm.ErrRecordNotFound
}

type mockResumeRepo struct {
	resumes map[uuid.UUID]*model.Resume

	setDefaultCalls int
}

func newMockResumeRepo(resumes ...*model.Resume) *mockResumeRepo {
	m := &mockResumeRepo{resumes: make(map[uuid.UUID]*model.Resume)}
	for _, r := range resumes {
		m.resumes[r.ID] = r
	}
	return m
}

func (m *mockResumeRepo) Create(ctx context.Context, resume *model.Resume) error {
	if resume.ID == uuid.Nil {
		resume.ID = uuid.New()
	}
	m.resumes[resume.ID] = resume
	return nil
}

func (m *mockResumeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Resume, error) {
	if r, ok := m.resumes[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResumeRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*model.Resume, error) {
	var out []*model.Resume
	for _, r := range m.resumes {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockResumeRepo) FindDefault(ctx context.Context, userID uuid.UUID) (*model.Resume, error) {
	for _, r := range m.resumes {
		if r.UserID == userID && r.IsDefault {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResumeRepo) Update(ctx context.Context, resume *model.Resume) error {
	m.resumes[resume.ID] = resume
	return nil
}

func (m *mockResumeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.resumes, id)
	return nil
}

func (m *mockResumeRepo) SetDefault(ctx context.Context, userID, resumeID uuid.UUID) error {
	m.setDefaultCalls++

	target, ok := m.resumes[resumeID]
	if !ok || target.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	for _, r := range m.resumes {
		if r.UserID == userID {
			r.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

type mockChatRepo struct {
	rooms    map[uuid.UUID]*model.ChatRoom
	messages map[uuid.UUID]*model.ChatMessage
}

func newMockChatRepo(rooms ...*model.ChatRoom) *mockChatRepo {
	m := &mockChatRepo{
		rooms:    make(map[uuid.UUID]*model.ChatRoom),
		messages: make(map[uuid.UUID]*model.ChatMessage),
	}
	for _, r := range rooms {
		m.rooms[r.ID] = r
	}
	return m
}

func (m *mockChatRepo) FindOrCreateRoom(ctx context.Context, employerID, candidateID, jobID uuid.UUID) (*model.ChatRoom, bool, error) {
	for _, r := range m.rooms {
		if r.EmployerID == employerID && r.CandidateID == candidateID && r.JobID == jobID {
			return r, false, nil
		}
	}
	room := &model.ChatRoom{
		ID:          uuid.New(),
		EmployerID:  employerID,
		CandidateID: candidateID,
		JobID:       jobID,
		Status:      model.RoomStatusActive,
	}
	m.rooms[room.ID] = room
	return room, true, nil
}

func (m *mockChatRepo) FindRoomByID(ctx context.Context, id uuid.UUID) (*model.ChatRoom, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChatRepo) FindRoomsForUser(ctx context.Context, userID uuid.UUID) ([]*model.ChatRoom, error) {
	var out []*model.ChatRoom
	for _, r := range m.rooms {
		if !r.HasParticipant(userID) {
			continue
		}
		if (r.EmployerID == userID && r.EmployerDeleted) || (r.CandidateID == userID && r.CandidateDeleted) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockChatRepo) UpdateRoom(ctx context.Context, room *model.ChatRoom) error {
	m.rooms[room.ID] = room
	return nil
}

func (m *mockChatRepo) CreateMessage(ctx context.Context, message *model.ChatMessage) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	m.messages[message.ID] = message
	return nil
}

func (m *mockChatRepo) FindMessages(ctx context.Context, roomID uuid.UUID, offset, limit int) ([]*model.ChatMessage, error) {
	var out []*model.ChatMessage
	for _, msg := range m.messages {
		if msg.RoomID == roomID && !msg.IsDeleted {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockChatRepo) FindMessageByID(ctx context.Context, id uuid.UUID) (*model.ChatMessage, error) {
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChatRepo) MarkMessagesRead(ctx context.Context, roomID, readerID uuid.UUID) error {
	for _, msg := range m.messages {
		if msg.RoomID == roomID && msg.SenderID != readerID {
			msg.IsRead = true
		}
	}
	return nil
}

func (m *mockChatRepo) SoftDeleteMessage(ctx context.Context, id uuid.UUID) error {
	if msg, ok := m.messages[id]; ok {
		msg.IsDeleted = true
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockChatRepo) CountUnread(ctx context.Context, roomID, userID uuid.UUID) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.RoomID == roomID && msg.SenderID != userID && !msg.IsRead && !msg.IsDeleted {
			n++
		}
	}
	return n, nil
}
