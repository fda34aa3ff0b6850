package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"ajil.mn/jobmarket/pkg/apperror"
	"github.com/google/uuid"
)

func chatFixture(t *testing.T) (ChatService, *mockChatRepo, *model.User, *model.User) {
	t.Helper()

	employer := &model.User{ID: uuid.New(), UserType: model.UserTypeEmployer, Username: "hr"}
	candidate := &model.User{ID: uuid.New(), UserType: model.UserTypeCandidate, Username: "dev"}

	repo := newMockChatRepo()
	svc := NewChatService(repo, newMockUserRepo(employer, candidate), nil)
	return svc, repo, employer, candidate
}

func statusOf(err error) int {
	return apperror.MapErrorToStatus(err)
}

func TestStartChatOnlyEmployer(t *testing.T) {
	svc, _, employer, candidate := chatFixture(t)
	ctx := context.Background()
	jobID := uuid.New()

	if _, err := svc.StartChat(ctx, employer.ID, dto.StartChatInput{CandidateID: candidate.ID, JobID: jobID}); err != nil {
		t.Fatalf("employer StartChat returned error: %v", err)
	}

	_, err := svc.StartChat(ctx, candidate.ID, dto.StartChatInput{CandidateID: employer.ID, JobID: jobID})
	if statusOf(err) != http.StatusForbidden {
		t.Errorf("candidate StartChat status = %d, want 403", statusOf(err))
	}

	_, err = svc.StartChat(ctx, employer.ID, dto.StartChatInput{CandidateID: employer.ID, JobID: jobID})
	if statusOf(err) != http.StatusBadRequest {
		t.Errorf("StartChat with non-candidate target status = %d, want 400", statusOf(err))
	}
}

func TestStartChatIdempotent(t *testing.T) {
	svc, repo, employer, candidate := chatFixture(t)
	ctx := context.Background()
	input := dto.StartChatInput{CandidateID: candidate.ID, JobID: uuid.New()}

	first, err := svc.StartChat(ctx, employer.ID, input)
	if err != nil {
		t.Fatalf("first StartChat returned error: %v", err)
	}
	second, err := svc.StartChat(ctx, employer.ID, input)
	if err != nil {
		t.Fatalf("second StartChat returned error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("same triple produced two rooms: %s and %s", first.ID, second.ID)
	}
	if len(repo.rooms) != 1 {
		t.Errorf("room count = %d, want 1", len(repo.rooms))
	}
}

func TestRoomStateMachine(t *testing.T) {
	svc, _, employer, candidate := chatFixture(t)
	ctx := context.Background()

	room, err := svc.StartChat(ctx, employer.ID, dto.StartChatInput{CandidateID: candidate.ID, JobID: uuid.New()})
	if err != nil {
		t.Fatalf("StartChat returned error: %v", err)
	}

	// active -> closed
	room, err = svc.CloseRoom(ctx, candidate.ID, room.ID)
	if err != nil {
		t.Fatalf("CloseRoom returned error: %v", err)
	}
	if room.Status != model.RoomStatusClosed {
		t.Fatalf("Status = %q, want closed", room.Status)
	}
	if room.ClosedByID == nil || *room.ClosedByID != candidate.ID {
		t.Error("ClosedByID does not record the closer")
	}

	// closing again conflicts
	if _, err := svc.CloseRoom(ctx, employer.ID, room.ID); statusOf(err) != http.StatusConflict {
		t.Errorf("double close status = %d, want 409", statusOf(err))
	}

	// sending into a closed room is rejected
	if _, err := svc.SendMessage(ctx, employer.ID, room.ID, "hello?"); statusOf(err) != http.StatusForbidden {
		t.Errorf("send into closed room status = %d, want 403", statusOf(err))
	}

	// closed -> pending_reopen
	room, err = svc.RequestReopen(ctx, employer.ID, room.ID)
	if err != nil {
		t.Fatalf("RequestReopen returned error: %v", err)
	}
	if room.Status != model.RoomStatusPendingReopen {
		t.Fatalf("Status = %q, want pending_reopen", room.Status)
	}

	// the requester cannot accept their own request
	if _, err := svc.AcceptReopen(ctx, employer.ID, room.ID); statusOf(err) != http.StatusForbidden {
		t.Errorf("requester accept status = %d, want 403", statusOf(err))
	}
	if room.Status != model.RoomStatusPendingReopen {
		t.Error("rejected accept changed room state")
	}

	// the other participant accepts
	room, err = svc.AcceptReopen(ctx, candidate.ID, room.ID)
	if err != nil {
		t.Fatalf("AcceptReopen returned error: %v", err)
	}
	if room.Status != model.RoomStatusActive {
		t.Fatalf("Status = %q, want active", room.Status)
	}
	if room.ClosedByID != nil || room.ReopenRequestedByID != nil {
		t.Error("reopen did not clear close/reopen markers")
	}

	// messaging works again
	if _, err := svc.SendMessage(ctx, employer.ID, room.ID, "welcome back"); err != nil {
		t.Errorf("SendMessage after reopen returned error: %v", err)
	}
}

func TestReopenRequiresClosedRoom(t *testing.T) {
	svc, _, employer, candidate := chatFixture(t)
	ctx := context.Background()

	room, err := svc.StartChat(ctx, employer.ID, dto.StartChatInput{CandidateID: candidate.ID, JobID: uuid.New()})
	if err != nil {
		t.Fatalf("StartChat returned error: %v", err)
	}

	if _, err := svc.RequestReopen(ctx, employer.ID, room.ID); statusOf(err) != http.StatusConflict {
		t.Errorf("reopen active room status = %d, want 409", statusOf(err))
	}
	if _, err := svc.AcceptReopen(ctx, candidate.ID, room.ID); statusOf(err) != http.StatusConflict {
		t.Errorf("accept without pending request status = %d, want 409", statusOf(err))
	}
}

func TestRoomAccessControl(t *testing.T) {
	svc, _, employer, candidate := chatFixture(t)
	ctx := context.Background()

	room, err := svc.StartChat(ctx, employer.ID, dto.StartChatInput{CandidateID: candidate.ID, JobID: uuid.New()})
	if err != nil {
		t.Fatalf("StartChat returned error: %v", err)
	}

	outsider := uuid.New()
	if _, err := svc.GetRoom(ctx, outsider, room.ID); statusOf(err) != http.StatusForbidden {
		t.Errorf("outsider GetRoom status = %d, want 403", statusOf(err))
	}
	if _, err := svc.SendMessage(ctx, outsider, room.ID, "hi"); statusOf(err) != http.StatusForbidden {
		t.Errorf("outsider SendMessage status = %d, want 403", statusOf(err))
	}

	if _, err := svc.GetRoom(ctx, employer.ID, uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing room error = %v, want ErrNotFound", err)
	}
}

func TestHideRoomPerParty(t *testing.T) {
	svc, _, employer, candidate := chatFixture(t)
	ctx := context.Background()

	room, err := svc.StartChat(ctx, employer.ID, dto.StartChatInput{CandidateID: candidate.ID, JobID: uuid.New()})
	if err != nil {
		t.Fatalf("StartChat returned error: %v", err)
	}

	if err := svc.HideRoom(ctx, employer.ID, room.ID); err != nil {
		t.Fatalf("HideRoom returned error: %v", err)
	}

	employerRooms, err := svc.ListRooms(ctx, employer.ID)
	if err != nil {
		t.Fatalf("ListRooms returned error: %v", err)
	}
	if len(employerRooms) != 0 {
		t.Errorf("employer still sees %d rooms after hide, want 0", len(employerRooms))
	}

	candidateRooms, err := svc.ListRooms(ctx, candidate.ID)
	if err != nil {
		t.Fatalf("ListRooms returned error: %v", err)
	}
	if len(candidateRooms) != 1 {
		t.Errorf("candidate sees %d rooms, want 1", len(candidateRooms))
	}
}

func TestDeleteMessageSenderOnly(t *testing.T) {
	svc, repo, employer, candidate := chatFixture(t)
	ctx := context.Background()

	room, err := svc.StartChat(ctx, employer.ID, dto.StartChatInput{CandidateID: candidate.ID, JobID: uuid.New()})
	if err != nil {
		t.Fatalf("StartChat returned error: %v", err)
	}

	message, err := svc.SendMessage(ctx, employer.ID, room.ID, "confidential")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}

	if err := svc.DeleteMessage(ctx, candidate.ID, message.ID); statusOf(err) != http.StatusForbidden {
		t.Errorf("non-sender delete status = %d, want 403", statusOf(err))
	}

	if err := svc.DeleteMessage(ctx, employer.ID, message.ID); err != nil {
		t.Fatalf("sender delete returned error: %v", err)
	}
	if !repo.messages[message.ID].IsDeleted {
		t.Error("message was not soft deleted")
	}
}

func TestUnreadCounts(t *testing.T) {
	svc, _, employer, candidate := chatFixture(t)
	ctx := context.Background()

	room, err := svc.StartChat(ctx, employer.ID, dto.StartChatInput{CandidateID: candidate.ID, JobID: uuid.New()})
	if err != nil {
		t.Fatalf("StartChat returned error: %v", err)
	}

	for _, text := range []string{"hi", "are you there?"} {
		if _, err := svc.SendMessage(ctx, employer.ID, room.ID, text); err != nil {
			t.Fatalf("SendMessage returned error: %v", err)
		}
	}

	rooms, err := svc.ListRooms(ctx, candidate.ID)
	if err != nil {
		t.Fatalf("ListRooms returned error: %v", err)
	}
	if rooms[0].UnreadCount != 2 {
		t.Errorf("UnreadCount = %d, want 2", rooms[0].UnreadCount)
	}

	if err := svc.MarkRead(ctx, candidate.ID, room.ID); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}

	rooms, err = svc.ListRooms(ctx, candidate.ID)
	if err != nil {
		t.Fatalf("ListRooms returned error: %v", err)
	}
	if rooms[0].UnreadCount != 0 {
		t.Errorf("UnreadCount after MarkRead = %d, want 0", rooms[0].UnreadCount)
	}
}
