package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"ajil.mn/jobmarket/pkg/apperror"
	"github.com/google/uuid"
)

func TestResumeOwnership(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	resume := &model.Resume{ID: uuid.New(), UserID: owner, Title: "Backend Engineer"}

	svc := NewResumeService(newMockResumeRepo(resume), nil)
	ctx := context.Background()

	if _, err := svc.Get(ctx, owner, resume.ID); err != nil {
		t.Fatalf("owner Get returned error: %v", err)
	}

	_, err := svc.Get(ctx, stranger, resume.ID)
	if err == nil {
		t.Fatal("expected error for foreign resume")
	}
	if apperror.MapErrorToStatus(err) != http.StatusForbidden {
		t.Errorf("foreign resume status = %d, want 403", apperror.MapErrorToStatus(err))
	}

	_, err = svc.Get(ctx, owner, uuid.New())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing resume error = %v, want ErrNotFound", err)
	}
}

func TestResumeSetDefaultSwitches(t *testing.T) {
	owner := uuid.New()
	first := &model.Resume{ID: uuid.New(), UserID: owner, Title: "First", IsDefault: true}
	second := &model.Resume{ID: uuid.New(), UserID: owner, Title: "Second"}

	repo := newMockResumeRepo(first, second)
	svc := NewResumeService(repo, nil)
	ctx := context.Background()

	if err := svc.SetDefault(ctx, owner, second.ID); err != nil {
		t.Fatalf("SetDefault returned error: %v", err)
	}

	if first.IsDefault {
		t.Error("previous default was not cleared")
	}
	if !second.IsDefault {
		t.Error("new default was not set")
	}
}

func TestResumeSetDefaultForeignIsNotFound(t *testing.T) {
	owner := uuid.New()
	resume := &model.Resume{ID: uuid.New(), UserID: owner}

	svc := NewResumeService(newMockResumeRepo(resume), nil)

	err := svc.SetDefault(context.Background(), uuid.New(), resume.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("SetDefault on foreign resume = %v, want ErrNotFound", err)
	}
}

func TestResumeListPromotesSingleResume(t *testing.T) {
	owner := uuid.New()
	only := &model.Resume{ID: uuid.New(), UserID: owner, Title: "Only"}

	repo := newMockResumeRepo(only)
	svc := NewResumeService(repo, nil)

	resumes, err := svc.List(context.Background(), owner)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(resumes) != 1 {
		t.Fatalf("len(resumes) = %d, want 1", len(resumes))
	}
	if !resumes[0].IsDefault {
		t.Error("single resume was not promoted to default")
	}
	if repo.setDefaultCalls != 1 {
		t.Errorf("setDefaultCalls = %d, want 1", repo.setDefaultCalls)
	}
}

func TestResumeListLeavesMultipleAlone(t *testing.T) {
	owner := uuid.New()
	a := &model.Resume{ID: uuid.New(), UserID: owner, Title: "A"}
	b := &model.Resume{ID: uuid.New(), UserID: owner, Title: "B"}

	repo := newMockResumeRepo(a, b)
	svc := NewResumeService(repo, nil)

	if _, err := svc.List(context.Background(), owner); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.setDefaultCalls != 0 {
		t.Errorf("setDefaultCalls = %d, want 0 for multiple resumes", repo.setDefaultCalls)
	}
}

func TestResumeCreateNeverDefault(t *testing.T) {
	svc := NewResumeService(newMockResumeRepo(), nil)

	resume, err := svc.Create(context.Background(), uuid.New(), dto.CreateResumeInput{Title: "New"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if resume.IsDefault {
		t.Error("newly created resume must not be default")
	}
}

func TestResumeUpdatePartialMerge(t *testing.T) {
	owner := uuid.New()
	resume := &model.Resume{
		ID:        uuid.New(),
		UserID:    owner,
		Title:     "Original",
		BasicInfo: model.JSONMap{"name": "Jane"},
	}

	svc := NewResumeService(newMockResumeRepo(resume), nil)

	newTitle := "Updated"
	updated, err := svc.Update(context.Background(), owner, resume.ID, dto.UpdateResumeInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != "Updated" {
		t.Errorf("Title = %q, want %q", updated.Title, "Updated")
	}
	if updated.BasicInfo["name"] != "Jane" {
		t.Error("untouched section was modified")
	}
}

type fakeFileStorage struct {
	deleted []string
}

func (f *fakeFileStorage) Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	return "https://files.test/" + folder + "/" + fileName, nil
}

func (f *fakeFileStorage) Delete(ctx context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func TestResumeUploadFile(t *testing.T) {
	owner := uuid.New()
	resume := &model.Resume{ID: uuid.New(), UserID: owner, Title: "Backend Engineer"}

	files := &fakeFileStorage{}
	svc := NewResumeService(newMockResumeRepo(resume), files)
	ctx := context.Background()

	updated, err := svc.UploadFile(ctx, owner, resume.ID, strings.NewReader("%PDF"), "cv.pdf")
	if err != nil {
		t.Fatalf("UploadFile returned error: %v", err)
	}
	if updated.FileURL == nil || *updated.FileURL == "" {
		t.Fatal("FileURL was not set")
	}
	first := *updated.FileURL

	// Replacing the attachment removes the previous file.
	updated, err = svc.UploadFile(ctx, owner, resume.ID, strings.NewReader("%PDF"), "cv-v2.pdf")
	if err != nil {
		t.Fatalf("second UploadFile returned error: %v", err)
	}
	if *updated.FileURL == first {
		t.Error("FileURL was not replaced")
	}
	if len(files.deleted) != 1 || files.deleted[0] != first {
		t.Errorf("deleted = %v, want [%s]", files.deleted, first)
	}
}

func TestResumeUploadFileForeign(t *testing.T) {
	owner := uuid.New()
	resume := &model.Resume{ID: uuid.New(), UserID: owner}

	svc := NewResumeService(newMockResumeRepo(resume), &fakeFileStorage{})

	_, err := svc.UploadFile(context.Background(), uuid.New(), resume.ID, strings.NewReader("x"), "cv.pdf")
	if status := apperror.MapErrorToStatus(err); status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", status)
	}
}

func TestResumeUploadFileWithoutStorage(t *testing.T) {
	owner := uuid.New()
	resume := &model.Resume{ID: uuid.New(), UserID: owner}

	svc := NewResumeService(newMockResumeRepo(resume), nil)

	_, err := svc.UploadFile(context.Background(), owner, resume.ID, strings.NewReader("x"), "cv.pdf")
	if status := apperror.MapErrorToStatus(err); status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", status)
	}
}
