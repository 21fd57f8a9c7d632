package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"time"

	"github.com/rs/zerolog"

	"hirelane/api/internal/ids"
	"hirelane/api/internal/models"
	"hirelane/api/internal/repository"
	"hirelane/api/internal/resume"
	"hirelane/api/internal/storage"
)

var (
	ErrJobClosed         = errors.New("job is no longer accepting applications")
	ErrUnsupportedResume = errors.New("unsupported resume format")
)

type ApplyInput struct {
	JobID     string
	User      *models.User
	Email     string
	FirstName string
	LastName  string
	CoverNote string
	File      multipart.File
	Header    *multipart.FileHeader
}

type ApplicationService struct {
	jobs  *repository.JobRepository
	apps  *repository.ApplicationRepository
	store *storage.ObjectStore
	log   zerolog.Logger
	now   func() time.Time
}

func NewApplicationService(
	jobs *repository.JobRepository,
	apps *repository.ApplicationRepository,
	store *storage.ObjectStore,
	log zerolog.Logger,
) *ApplicationService {
	return &ApplicationService{
		jobs:  jobs,
		apps:  apps,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Apply accepts a submission from a signed-in user or a guest. The resume
// goes to object storage first; the row is only written once the upload
// succeeded, so a stored key always resolves.
func (s *ApplicationService) Apply(ctx context.Context, input ApplyInput) (models.Application, error) {
	if input.File == nil || input.Header == nil {
		return models.Application{}, errors.New("invalid file payload")
	}

	job, err := s.jobs.GetByID(ctx, input.JobID)
	if err != nil {
		return models.Application{}, err
	}
	if job.Status != models.JobStatusOpen {
		return models.Application{}, ErrJobClosed
	}
	if job.ClosesAt != nil && job.ClosesAt.Before(s.now()) {
		return models.Application{}, ErrJobClosed
	}

	head := make([]byte, 512)
	n, err := input.File.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return models.Application{}, fmt.Errorf("read head: %w", err)
	}
	head = head[:n]

	var data []byte
	if seeker, ok := input.File.(io.ReadSeeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return models.Application{}, fmt.Errorf("rewind: %w", err)
		}
		data, err = io.ReadAll(seeker)
		if err != nil {
			return models.Application{}, fmt.Errorf("read file: %w", err)
		}
	} else {
		rest, err := io.ReadAll(input.File)
		if err != nil {
			return models.Application{}, fmt.Errorf("read file: %w", err)
		}
		data = append(head, rest...)
	}
	if len(data) == 0 {
		return models.Application{}, errors.New("empty file")
	}

	result, err := resume.DetectHead(head)
	if err != nil {
		return models.Application{}, ErrUnsupportedResume
	}

	email := input.Email
	var userID *string
	if input.User != nil {
		email = input.User.Email
		userID = &input.User.ID
	}
	email = normalizeEmail(email)

	appID := ids.New()
	objectKey := s.buildObjectKey(appID, string(result.Type))

	if err := s.store.PutResume(ctx, objectKey, bytes.NewReader(data), int64(len(data)), result.MIME); err != nil {
		return models.Application{}, err
	}

	app := models.Application{
		ID:        appID,
		JobID:     job.ID,
		UserID:    userID,
		Email:     email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		ResumeKey: objectKey,
		CoverNote: input.CoverNote,
		Status:    models.ApplicationStatusSubmitted,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return models.Application{}, fmt.Errorf("save application: %w", err)
	}

	s.log.Info().
		Str("application_id", app.ID).
		Str("job_id", job.ID).
		Bool("guest", userID == nil).
		Msg("application submitted")
	return app, nil
}

func (s *ApplicationService) buildObjectKey(appID string, ext string) string {
	datePrefix := s.now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, fmt.Sprintf("%s.%s", appID, ext))
}
