package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spigell/resume-evaluator/internal/guard"
	"github.com/spigell/resume-evaluator/internal/records"
)

type fingerprintKey struct {
	hash  string
	role  guard.Role
	scope string
}

// Memory is a process-local Store used by tests and dry runs. Records are
// held by value.
type Memory struct {
	mu           sync.Mutex
	jds          map[string]records.JobDescription
	resumes      map[string]records.Resume
	evaluations  []records.Evaluation
	fingerprints map[fingerprintKey]guard.Fingerprint
	now          func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		jds:          map[string]records.JobDescription{},
		resumes:      map[string]records.Resume{},
		fingerprints: map[fingerprintKey]guard.Fingerprint{},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) InsertFingerprint(_ context.Context, fp guard.Fingerprint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fingerprintKey{hash: fp.Hash, role: fp.Role, scope: fp.Scope}
	if _, ok := m.fingerprints[key]; ok {
		return guard.ErrDuplicate
	}
	m.fingerprints[key] = fp
	return nil
}

func (m *Memory) FindFingerprint(_ context.Context, hash string, role guard.Role, scope string) (*guard.Fingerprint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fp, ok := m.fingerprints[fingerprintKey{hash: hash, role: role, scope: scope}]
	if !ok {
		return nil, guard.ErrNotRegistered
	}
	return &fp, nil
}

func (m *Memory) DeleteFingerprint(_ context.Context, hash string, role guard.Role, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.fingerprints, fingerprintKey{hash: hash, role: role, scope: scope})
	return nil
}

func (m *Memory) SaveJobDescription(_ context.Context, jd *records.JobDescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prepareJobDescription(jd, m.now())
	m.jds[jd.ID] = *jd
	return nil
}

func (m *Memory) GetJobDescription(_ context.Context, id string) (*records.JobDescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	jd, ok := m.jds[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &jd, nil
}

func (m *Memory) ListJobDescriptions(context.Context) ([]*records.JobDescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*records.JobDescription, 0, len(m.jds))
	for _, jd := range m.jds {
		out = append(out, &jd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SaveResume(_ context.Context, resume *records.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := prepareResume(resume, m.now()); err != nil {
		return err
	}
	if _, ok := m.jds[resume.JDID]; !ok {
		return ErrNotFound
	}
	m.resumes[resume.ID] = *resume
	return nil
}

func (m *Memory) GetResume(_ context.Context, id string) (*records.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	resume, ok := m.resumes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &resume, nil
}

func (m *Memory) ListResumes(_ context.Context, jdID string) ([]*records.Resume, error) {
	return m.listResumes(jdID, false), nil
}

func (m *Memory) ListUnreviewedResumes(_ context.Context, jdID string) ([]*records.Resume, error) {
	return m.listResumes(jdID, true), nil
}

func (m *Memory) listResumes(jdID string, unreviewedOnly bool) []*records.Resume {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*records.Resume, 0)
	for _, resume := range m.resumes {
		if jdID != "" && resume.JDID != jdID {
			continue
		}
		if unreviewedOnly && resume.Status != records.NotReviewed {
			continue
		}
		out = append(out, &resume)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *Memory) CompleteReview(_ context.Context, evaluation *records.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := prepareEvaluation(evaluation, m.now()); err != nil {
		return err
	}

	resume, ok := m.resumes[evaluation.ResumeID]
	if !ok {
		return ErrNotFound
	}
	if resume.Status != records.NotReviewed {
		return ErrAlreadyReviewed
	}

	resume.Status = records.Reviewed
	m.resumes[resume.ID] = resume
	m.evaluations = append(m.evaluations, *evaluation)
	return nil
}

func (m *Memory) ListEvaluations(_ context.Context, jdID string) ([]*records.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*records.Evaluation, 0, len(m.evaluations))
	for _, evaluation := range m.evaluations {
		if jdID != "" && evaluation.JDID != jdID {
			continue
		}
		out = append(out, &evaluation)
	}
	sortEvaluations(out)
	return out, nil
}
