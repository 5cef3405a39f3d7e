package screening

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/resume-evaluator/internal/archive"
	"github.com/spigell/resume-evaluator/internal/extraction"
	"github.com/spigell/resume-evaluator/internal/guard"
	"github.com/spigell/resume-evaluator/internal/logger"
	"github.com/spigell/resume-evaluator/internal/textract"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type IngestStatus string

const (
	StatusAccepted IngestStatus = "accepted"
	StatusSkipped  IngestStatus = "skipped"
	StatusFailed   IngestStatus = "failed"
)

type Upload struct {
	Name        string
	ContentType string
	Content     []byte
}

type IngestResult struct {
	Status   IngestStatus
	ID       string
	FileName string
	// ExistingFile is the name the duplicate content was first uploaded under.
	ExistingFile string
	// Err is only set by batch ingestion.
	Err error
}

// IngestJobDescription registers, extracts and stores a job description.
// A duplicate upload is reported as skipped, not as an error.
func (s *Service) IngestJobDescription(ctx context.Context, upload Upload) (IngestResult, error) {
	log := logger.WithPipeline(s.logger, string(extraction.StageJobDescription), "", "").
		With(zap.String(logger.FieldFile, upload.Name))

	text, reg, err := s.admit(ctx, log, upload, guard.RoleJobDescription, "")
	if err != nil {
		return IngestResult{}, err
	}
	if !reg.Accepted {
		return skipped(upload, reg), nil
	}

	jd, err := s.extractor.JobDescription(ctx, text)
	if err != nil {
		s.release(ctx, log, reg.Hash, guard.RoleJobDescription, "")
		return IngestResult{}, fmt.Errorf("extract job description %s: %w", upload.Name, err)
	}

	jd.FileName = upload.Name
	jd.ContentHash = reg.Hash
	if err := s.store.SaveJobDescription(ctx, jd); err != nil {
		s.release(ctx, log, reg.Hash, guard.RoleJobDescription, "")
		return IngestResult{}, fmt.Errorf("save job description %s: %w", upload.Name, err)
	}

	s.archiveUpload(ctx, log, upload, guard.RoleJobDescription, "", reg.Hash)

	log.Info("job description stored", zap.String(logger.FieldJD, jd.ID), zap.String("role", jd.Role))

	return IngestResult{Status: StatusAccepted, ID: jd.ID, FileName: upload.Name}, nil
}

// IngestResume stores a resume for an existing job description. The same
// file may be ingested once per job description.
func (s *Service) IngestResume(ctx context.Context, jdID string, upload Upload) (IngestResult, error) {
	if _, err := s.store.GetJobDescription(ctx, jdID); err != nil {
		return IngestResult{}, fmt.Errorf("get job description %s: %w", jdID, err)
	}

	log := logger.WithPipeline(s.logger, string(extraction.StageResume), jdID, "").
		With(zap.String(logger.FieldFile, upload.Name))

	text, reg, err := s.admit(ctx, log, upload, guard.RoleResume, jdID)
	if err != nil {
		return IngestResult{}, err
	}
	if !reg.Accepted {
		return skipped(upload, reg), nil
	}

	resume, err := s.extractor.Resume(ctx, text)
	if err != nil {
		s.release(ctx, log, reg.Hash, guard.RoleResume, jdID)
		return IngestResult{}, fmt.Errorf("extract resume %s: %w", upload.Name, err)
	}

	resume.JDID = jdID
	resume.FileName = upload.Name
	resume.ContentHash = reg.Hash
	if err := s.store.SaveResume(ctx, resume); err != nil {
		s.release(ctx, log, reg.Hash, guard.RoleResume, jdID)
		return IngestResult{}, fmt.Errorf("save resume %s: %w", upload.Name, err)
	}

	s.archiveUpload(ctx, log, upload, guard.RoleResume, jdID, reg.Hash)

	log.Info("resume stored", zap.String(logger.FieldResume, resume.ID))

	return IngestResult{Status: StatusAccepted, ID: resume.ID, FileName: upload.Name}, nil
}

// IngestResumes ingests files in parallel. A failing file is reported in its
// result and does not stop the others.
func (s *Service) IngestResumes(ctx context.Context, jdID string, uploads []Upload) []IngestResult {
	results := make([]IngestResult, len(uploads))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)

	for i, upload := range uploads {
		g.Go(func() error {
			result, err := s.IngestResume(ctx, jdID, upload)
			if err != nil {
				result = IngestResult{Status: StatusFailed, FileName: upload.Name, Err: err}
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// admit reads the upload text and registers its fingerprint. Unreadable
// files are refused before they take a fingerprint.
func (s *Service) admit(ctx context.Context, log *zap.Logger, upload Upload, role guard.Role, jdID string) (string, guard.Result, error) {
	if len(upload.Content) == 0 {
		return "", guard.Result{}, fmt.Errorf("%s: file is empty", upload.Name)
	}

	text, err := textract.Extract(upload.Content, upload.ContentType, upload.Name)
	if strings.TrimSpace(text) == "" {
		if err != nil {
			return "", guard.Result{}, fmt.Errorf("read text from %s: %w", upload.Name, err)
		}
		return "", guard.Result{}, fmt.Errorf("%s: no text found", upload.Name)
	}
	if err != nil {
		log.Warn("text extraction degraded", zap.Error(err))
	}

	reg, err := s.guard.Register(ctx, guard.Upload{Name: upload.Name, Content: upload.Content}, role, jdID)
	if err != nil {
		return "", guard.Result{}, err
	}

	return text, reg, nil
}

func skipped(upload Upload, reg guard.Result) IngestResult {
	return IngestResult{Status: StatusSkipped, FileName: upload.Name, ExistingFile: reg.ExistingFile}
}

func (s *Service) release(ctx context.Context, log *zap.Logger, hash string, role guard.Role, jdID string) {
	if err := s.guard.Release(context.WithoutCancel(ctx), hash, role, jdID); err != nil {
		log.Error("failed to release file fingerprint", zap.Error(err))
	}
}

func (s *Service) archiveUpload(ctx context.Context, log *zap.Logger, upload Upload, role guard.Role, jdID, hash string) {
	if s.archive == nil {
		return
	}

	key := archive.Key(role, jdID, hash, upload.Name)
	contentType := textract.DetectType(upload.ContentType, upload.Name).ContentType()
	if err := s.archive.Put(ctx, key, upload.Content, contentType); err != nil {
		log.Warn("archiving upload failed", zap.String("key", key), zap.Error(err))
	}
}
