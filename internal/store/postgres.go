package store

import (
	"context"
	"errors"
	"time"

	"github.com/spigell/resume-evaluator/internal/guard"
	"github.com/spigell/resume-evaluator/internal/records"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	pgDuplicateKeyCode = "23505"
	// malformed uuid in a lookup; no such row can exist
	pgInvalidTextCode = "22P02"
)

type jobDescriptionRow struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	FileName    string
	ContentHash string
	Role        string
	Record      datatypes.JSONType[records.JobDescription] `gorm:"type:jsonb"`
	CreatedAt   time.Time
}

func (jobDescriptionRow) TableName() string { return "job_descriptions" }

type resumeRow struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	JDID          string `gorm:"column:jd_id;type:uuid"`
	FileName      string
	ContentHash   string
	CandidateName string
	Status        string
	Record        datatypes.JSONType[records.Resume] `gorm:"type:jsonb"`
	CreatedAt     time.Time
	ReviewedAt    *time.Time
}

func (resumeRow) TableName() string { return "resumes" }

type evaluationRow struct {
	ID                   string `gorm:"type:uuid;primaryKey"`
	JDID                 string `gorm:"column:jd_id;type:uuid"`
	ResumeID             string `gorm:"type:uuid"`
	CandidateName        string
	RubricVersion        string
	CategoryScores       datatypes.JSONType[map[string]float64] `gorm:"type:jsonb"`
	CategoryExplanations datatypes.JSONType[map[string]string]  `gorm:"type:jsonb"`
	OverallScore         float64
	CandidateTier        string
	EmbeddingSignals     datatypes.JSONType[map[string]float64] `gorm:"type:jsonb"`
	Model                string
	EvaluatedAt          time.Time
}

func (evaluationRow) TableName() string { return "evaluations" }

type fingerprintRow struct {
	ContentHash string
	FileRole    string
	JDScope     string `gorm:"column:jd_scope"`
	FileName    string
	CreatedAt   time.Time
}

func (fingerprintRow) TableName() string { return "file_fingerprints" }

// Postgres is the gorm-backed Store. The schema comes from the embedded migrations.
type Postgres struct {
	db *gorm.DB
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

// mapError translates driver errors into package errors.
func mapError(err error, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return duplicateErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgDuplicateKeyCode:
			return duplicateErr
		case pgInvalidTextCode:
			return ErrNotFound
		}
	}

	return err
}

func (p *Postgres) InsertFingerprint(ctx context.Context, fp guard.Fingerprint) error {
	row := fingerprintRow{
		ContentHash: fp.Hash,
		FileRole:    string(fp.Role),
		JDScope:     fp.Scope,
		FileName:    fp.FileName,
		CreatedAt:   fp.CreatedAt,
	}
	return mapError(p.db.WithContext(ctx).Create(&row).Error, guard.ErrDuplicate)
}

func (p *Postgres) FindFingerprint(ctx context.Context, hash string, role guard.Role, scope string) (*guard.Fingerprint, error) {
	var row fingerprintRow
	err := p.db.WithContext(ctx).
		Where("content_hash = ? AND file_role = ? AND jd_scope = ?", hash, string(role), scope).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, guard.ErrNotRegistered
	}
	if err != nil {
		return nil, err
	}

	return &guard.Fingerprint{
		Hash:      row.ContentHash,
		Role:      guard.Role(row.FileRole),
		Scope:     row.JDScope,
		FileName:  row.FileName,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (p *Postgres) DeleteFingerprint(ctx context.Context, hash string, role guard.Role, scope string) error {
	return p.db.WithContext(ctx).
		Where("content_hash = ? AND file_role = ? AND jd_scope = ?", hash, string(role), scope).
		Delete(&fingerprintRow{}).Error
}

func (p *Postgres) SaveJobDescription(ctx context.Context, jd *records.JobDescription) error {
	prepareJobDescription(jd, time.Now().UTC())

	row := jobDescriptionRow{
		ID:          jd.ID,
		FileName:    jd.FileName,
		ContentHash: jd.ContentHash,
		Role:        jd.Role,
		Record:      datatypes.NewJSONType(*jd),
		CreatedAt:   jd.CreatedAt,
	}
	return mapError(p.db.WithContext(ctx).Create(&row).Error, errors.New("job description already exists"))
}

func (p *Postgres) GetJobDescription(ctx context.Context, id string) (*records.JobDescription, error) {
	var row jobDescriptionRow
	if err := p.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, mapError(err, nil)
	}
	return row.toRecord(), nil
}

func (p *Postgres) ListJobDescriptions(ctx context.Context) ([]*records.JobDescription, error) {
	var rows []jobDescriptionRow
	if err := p.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*records.JobDescription, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toRecord())
	}
	return out, nil
}

func (r jobDescriptionRow) toRecord() *records.JobDescription {
	jd := r.Record.Data()
	jd.ID = r.ID
	jd.FileName = r.FileName
	jd.ContentHash = r.ContentHash
	jd.CreatedAt = r.CreatedAt
	return &jd
}

func (p *Postgres) SaveResume(ctx context.Context, resume *records.Resume) error {
	if err := prepareResume(resume, time.Now().UTC()); err != nil {
		return err
	}

	row := resumeRow{
		ID:            resume.ID,
		JDID:          resume.JDID,
		FileName:      resume.FileName,
		ContentHash:   resume.ContentHash,
		CandidateName: resume.Name(),
		Status:        string(resume.Status),
		Record:        datatypes.NewJSONType(*resume),
		CreatedAt:     resume.CreatedAt,
	}
	return mapError(p.db.WithContext(ctx).Create(&row).Error, errors.New("resume already exists"))
}

func (p *Postgres) GetResume(ctx context.Context, id string) (*records.Resume, error) {
	var row resumeRow
	if err := p.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, mapError(err, nil)
	}
	return row.toRecord(), nil
}

func (p *Postgres) ListResumes(ctx context.Context, jdID string) ([]*records.Resume, error) {
	return p.listResumes(ctx, jdID, false)
}

func (p *Postgres) ListUnreviewedResumes(ctx context.Context, jdID string) ([]*records.Resume, error) {
	return p.listResumes(ctx, jdID, true)
}

func (p *Postgres) listResumes(ctx context.Context, jdID string, unreviewedOnly bool) ([]*records.Resume, error) {
	query := p.db.WithContext(ctx).Order("created_at ASC")
	if jdID != "" {
		query = query.Where("jd_id = ?", jdID)
	}
	if unreviewedOnly {
		query = query.Where("status = ?", string(records.NotReviewed))
	}

	var rows []resumeRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*records.Resume, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toRecord())
	}
	return out, nil
}

func (r resumeRow) toRecord() *records.Resume {
	resume := r.Record.Data()
	resume.ID = r.ID
	resume.JDID = r.JDID
	resume.FileName = r.FileName
	resume.ContentHash = r.ContentHash
	resume.Status = records.ReviewStatus(r.Status)
	resume.CreatedAt = r.CreatedAt
	return &resume
}

// CompleteReview runs the status compare-and-set and the evaluation insert in
// one transaction. A concurrent reviewer blocks on the row lock and then sees
// zero affected rows.
func (p *Postgres) CompleteReview(ctx context.Context, evaluation *records.Evaluation) error {
	if err := prepareEvaluation(evaluation, time.Now().UTC()); err != nil {
		return err
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&resumeRow{}).
			Where("id = ? AND status = ?", evaluation.ResumeID, string(records.NotReviewed)).
			Updates(map[string]any{
				"status":      string(records.Reviewed),
				"reviewed_at": evaluation.EvaluatedAt,
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&resumeRow{}).Where("id = ?", evaluation.ResumeID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrAlreadyReviewed
		}

		row := evaluationRow{
			ID:                   evaluation.ID,
			JDID:                 evaluation.JDID,
			ResumeID:             evaluation.ResumeID,
			CandidateName:        evaluation.CandidateName,
			RubricVersion:        evaluation.RubricVersion,
			CategoryScores:       datatypes.NewJSONType(evaluation.CategoryScores),
			CategoryExplanations: datatypes.NewJSONType(evaluation.CategoryExplanations),
			OverallScore:         evaluation.OverallScore,
			CandidateTier:        string(evaluation.Tier),
			EmbeddingSignals:     datatypes.NewJSONType(evaluation.Signals),
			Model:                evaluation.Model,
			EvaluatedAt:          evaluation.EvaluatedAt,
		}
		return tx.Create(&row).Error
	})
	return mapError(err, errors.New("evaluation already exists"))
}

func (p *Postgres) ListEvaluations(ctx context.Context, jdID string) ([]*records.Evaluation, error) {
	query := p.db.WithContext(ctx).Order("overall_score DESC").Order("evaluated_at ASC")
	if jdID != "" {
		query = query.Where("jd_id = ?", jdID)
	}

	var rows []evaluationRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*records.Evaluation, 0, len(rows))
	for _, row := range rows {
		out = append(out, &records.Evaluation{
			ID:                   row.ID,
			JDID:                 row.JDID,
			ResumeID:             row.ResumeID,
			CandidateName:        row.CandidateName,
			RubricVersion:        row.RubricVersion,
			CategoryScores:       row.CategoryScores.Data(),
			CategoryExplanations: row.CategoryExplanations.Data(),
			OverallScore:         row.OverallScore,
			Tier:                 records.Tier(row.CandidateTier),
			Signals:              row.EmbeddingSignals.Data(),
			Model:                row.Model,
			EvaluatedAt:          row.EvaluatedAt,
		})
	}
	return out, nil
}
