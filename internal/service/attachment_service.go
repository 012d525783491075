package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-issue-api/internal/models"
	"github.com/noah-isme/campus-issue-api/pkg/config"
	appErrors "github.com/noah-isme/campus-issue-api/pkg/errors"
)

type attachmentRepository interface {
	Create(ctx context.Context, a *models.Attachment) error
	FindByID(ctx context.Context, id string) (*models.Attachment, error)
}

type attachmentStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
}

// AttachmentService validates and stores file uploads on issues. Bytes go to
// local storage; metadata goes to the attachments table.
type AttachmentService struct {
	repo    attachmentRepository
	issues  issueRepository
	storage attachmentStorage
	audit   auditRecorder
	config  config.UploadsConfig
	logger  *zap.Logger
}

// NewAttachmentService constructs an AttachmentService.
func NewAttachmentService(repo attachmentRepository, issues issueRepository, storage attachmentStorage, audit auditRecorder, cfg config.UploadsConfig, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentService{repo: repo, issues: issues, storage: storage, audit: audit, config: cfg, logger: logger}
}

// Upload stores one file against an issue the actor can view.
func (s *AttachmentService) Upload(ctx context.Context, actor *models.JWTClaims, issueID string, header *multipart.FileHeader) (*models.Attachment, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}
	if !CanPerform(actor.UserID, actor.Role, ActionView, issue, "") {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to attach files to this issue")
	}

	if header.Size > s.config.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.config.MaxFileSizeBytes))
	}

	mimeType := header.Header.Get("Content-Type")
	if len(s.config.AllowedMIMEs) > 0 && !contains(s.config.AllowedMIMEs, mimeType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file type %q is not allowed", mimeType))
	}

	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	defer file.Close() //nolint:errcheck

	storedName := filepath.Join(issueID, uuid.NewString()+filepath.Ext(header.Filename))
	path, err := s.storage.SaveStream(storedName, file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}

	attachment := &models.Attachment{
		IssueID:  issue.ID,
		Filename: filepath.Base(header.Filename),
		Path:     path,
		MimeType: mimeType,
		Size:     header.Size,
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attachment")
	}

	if s.audit != nil {
		log := &models.AuditLog{
			UserID:     &actor.UserID,
			Action:     models.AuditActionAttachmentAdd,
			Resource:   "issue",
			ResourceID: &issue.ID,
			NewValues:  []byte(fmt.Sprintf(`{"attachment_id":%q}`, attachment.ID)),
		}
		if err := s.audit.Create(ctx, log); err != nil {
			s.logger.Warn("failed to record audit log", zap.String("action", log.Action), zap.Error(err))
		}
	}

	return attachment, nil
}

// Download returns the attachment metadata and an open file handle. The
// caller owns closing the handle.
func (s *AttachmentService) Download(ctx context.Context, actor *models.JWTClaims, attachmentID string) (*models.Attachment, *os.File, error) {
	attachment, err := s.repo.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachment")
	}

	issue, err := s.issues.FindByID(ctx, attachment.IssueID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}
	if !CanPerform(actor.UserID, actor.Role, ActionView, issue, "") {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to download this attachment")
	}

	file, err := s.storage.Open(attachment.Path)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open attachment")
	}
	return attachment, file, nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
