package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"projecthub/internal/apperrors"
	"projecthub/internal/logger"
	"projecthub/internal/metrics"
	"projecthub/internal/model"
	"projecthub/internal/repository"
	"projecthub/internal/storage"
)

const uploadURLPrefix = "/api/uploads/"

// UploadedFile is the metadata returned to the client after an upload.
type UploadedFile struct {
	Filename     string
	OriginalName string
	URL          string
	MimeType     string
	Size         int64
	UploadedAt   time.Time
	ProjectID    *uuid.UUID
}

type UploadService struct {
	gate    gate
	uploads *repository.UploadRepository
	store   *storage.Local
	log     *zap.Logger
}

func NewUploadService(projects *repository.ProjectRepository, uploads *repository.UploadRepository, store *storage.Local) *UploadService {
	return &UploadService{
		gate:    gate{projects: projects},
		uploads: uploads,
		store:   store,
		log:     logger.WithModule("uploads"),
	}
}

func (s *UploadService) MaxSize() int64 { return s.store.MaxSize() }

// Upload stores src and records who uploaded it. When projectID is set the
// caller must have access to that project and the file is listed on it.
func (s *UploadService) Upload(ctx context.Context, userID uuid.UUID, src io.Reader, originalName string, projectID *uuid.UUID) (*UploadedFile, error) {
	if projectID != nil {
		if _, err := s.gate.accessible(ctx, userID, *projectID); err != nil {
			return nil, err
		}
	}

	stored, err := s.store.Save(src, originalName)
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		metrics.RecordUpload("rejected")
		return nil, apperrors.NewBadRequest(fmt.Sprintf("File too large. Maximum size is %dMB.", s.store.MaxSize()>>20))
	case errors.Is(err, storage.ErrUnsupportedType):
		metrics.RecordUpload("rejected")
		return nil, apperrors.NewBadRequest("Invalid file type. Only PDF, images, Word documents and text files are allowed.")
	case err != nil:
		metrics.RecordUpload("failed")
		return nil, apperrors.Wrap(err, "failed to store file")
	}

	now := time.Now().UTC()
	result := &UploadedFile{
		Filename:     stored.Filename,
		OriginalName: stored.OriginalName,
		URL:          uploadURLPrefix + stored.Filename,
		MimeType:     stored.MimeType,
		Size:         stored.Size,
		UploadedAt:   now,
		ProjectID:    projectID,
	}

	upload := &model.Upload{
		Filename:     stored.Filename,
		OriginalName: stored.OriginalName,
		MimeType:     stored.MimeType,
		Size:         stored.Size,
		UploadedBy:   userID,
	}
	var attach *model.ProjectFile
	if projectID != nil {
		attach = &model.ProjectFile{
			ProjectID:    *projectID,
			OriginalName: stored.OriginalName,
			URL:          result.URL,
			MimeType:     stored.MimeType,
			Size:         stored.Size,
			UploadedAt:   now,
		}
	}

	if err := s.uploads.Create(ctx, upload, attach); err != nil {
		if rmErr := s.store.Remove(stored.Filename); rmErr != nil {
			s.log.Warn("failed to remove unrecorded upload", zap.String("filename", stored.Filename), zap.Error(rmErr))
		}
		metrics.RecordUpload("failed")
		return nil, apperrors.Wrap(err, "failed to record upload")
	}

	metrics.RecordUpload("stored")
	s.log.Info("file uploaded",
		zap.String("filename", stored.Filename),
		zap.String("mime_type", stored.MimeType),
		zap.Int64("size", stored.Size),
		zap.String("user_id", userID.String()),
	)
	return result, nil
}

// Path resolves a stored file for download.
func (s *UploadService) Path(filename string) (string, error) {
	path, err := s.store.Path(filename)
	if err != nil {
		return "", apperrors.ErrNotFound.WithMessage("File not found")
	}
	return path, nil
}

// Delete is allowed for the uploader and for owners of projects listing the
// file. Metadata goes first; a failed disk removal is only logged.
func (s *UploadService) Delete(ctx context.Context, userID uuid.UUID, filename string) error {
	upload, err := s.uploads.GetByFilename(ctx, filename)
	if err != nil {
		if errors.Is(err, repository.ErrUploadNotFound) {
			return apperrors.ErrNotFound.WithMessage("File not found")
		}
		return apperrors.Wrap(err, "failed to load upload")
	}

	if upload.UploadedBy != userID {
		owners, err := s.uploads.OwnersOf(ctx, filename)
		if err != nil {
			return apperrors.Wrap(err, "failed to check file ownership")
		}
		if !slices.Contains(owners, userID) {
			return apperrors.ErrForbidden.WithMessage("You can only delete files you uploaded")
		}
	}

	if err := s.uploads.Delete(ctx, filename); err != nil {
		if errors.Is(err, repository.ErrUploadNotFound) {
			return apperrors.ErrNotFound.WithMessage("File not found")
		}
		return apperrors.Wrap(err, "failed to delete upload")
	}
	if err := s.store.Remove(filename); err != nil {
		s.log.Error("failed to remove file from disk", zap.String("filename", filename), zap.Error(err))
	}
	return nil
}
