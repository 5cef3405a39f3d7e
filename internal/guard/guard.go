// Package guard makes file ingestion idempotent by registering a content
// fingerprint under a unique (hash, role, scope) key.
package guard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/resume-evaluator/internal/logger"

	"go.uber.org/zap"
)

type Role string

const (
	RoleJobDescription Role = "jd"
	RoleResume         Role = "resume"
)

var (
	// ErrDuplicate is returned by Store.InsertFingerprint when the key is taken.
	ErrDuplicate = errors.New("fingerprint already registered")
	// ErrNotRegistered is returned by Store.FindFingerprint when nothing matches.
	ErrNotRegistered = errors.New("fingerprint not registered")
)

// Fingerprint is one registered upload. Scope is the owning job description id
// for resumes and empty for job descriptions.
type Fingerprint struct {
	Hash      string
	Role      Role
	Scope     string
	FileName  string
	CreatedAt time.Time
}

// Store persists fingerprints. InsertFingerprint must be atomic with respect
// to the (Hash, Role, Scope) key.
type Store interface {
	InsertFingerprint(ctx context.Context, fp Fingerprint) error
	FindFingerprint(ctx context.Context, hash string, role Role, scope string) (*Fingerprint, error)
	DeleteFingerprint(ctx context.Context, hash string, role Role, scope string) error
}

type Upload struct {
	Name    string
	Content []byte
}

type Result struct {
	Accepted bool
	Hash     string
	// ExistingFile is the name the content was first registered under.
	ExistingFile string
}

type Guard struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func New(store Store, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{store: store, logger: log, now: time.Now}
}

// Hash returns the hex SHA-256 digest of content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Register records the upload or reports the file that already holds its
// fingerprint. Only a uniqueness conflict yields a rejection; other store
// failures are returned as errors.
func (g *Guard) Register(ctx context.Context, upload Upload, role Role, owningJDID string) (Result, error) {
	scope, err := scopeFor(role, owningJDID)
	if err != nil {
		return Result{}, err
	}

	hash := Hash(upload.Content)
	log := g.logger.With(
		zap.String(logger.FieldFile, upload.Name),
		zap.String("role", string(role)),
		zap.String("content_hash", hash),
	)

	err = g.store.InsertFingerprint(ctx, Fingerprint{
		Hash:      hash,
		Role:      role,
		Scope:     scope,
		FileName:  upload.Name,
		CreatedAt: g.now().UTC(),
	})
	if err == nil {
		log.Debug("file fingerprint registered")
		return Result{Accepted: true, Hash: hash}, nil
	}
	if !errors.Is(err, ErrDuplicate) {
		return Result{}, fmt.Errorf("register fingerprint: %w", err)
	}

	existing, err := g.store.FindFingerprint(ctx, hash, role, scope)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotRegistered):
		// released between our insert and this lookup
		existing = &Fingerprint{}
	default:
		return Result{}, fmt.Errorf("find fingerprint: %w", err)
	}

	log.Info("duplicate file skipped", zap.String("existing_file", existing.FileName))

	return Result{Accepted: false, Hash: hash, ExistingFile: existing.FileName}, nil
}

// Release removes a registration so the same file can be submitted again,
// e.g. after its extraction failed.
func (g *Guard) Release(ctx context.Context, hash string, role Role, owningJDID string) error {
	scope, err := scopeFor(role, owningJDID)
	if err != nil {
		return err
	}

	if err := g.store.DeleteFingerprint(ctx, hash, role, scope); err != nil {
		return fmt.Errorf("release fingerprint: %w", err)
	}

	g.logger.Debug("file fingerprint released", zap.String("content_hash", hash), zap.String("role", string(role)))
	return nil
}

func scopeFor(role Role, owningJDID string) (string, error) {
	owningJDID = strings.TrimSpace(owningJDID)

	switch role {
	case RoleJobDescription:
		if owningJDID != "" {
			return "", errors.New("job description fingerprints are global and take no owning job description")
		}
		return "", nil
	case RoleResume:
		if owningJDID == "" {
			return "", errors.New("resume fingerprints require an owning job description")
		}
		return owningJDID, nil
	default:
		return "", fmt.Errorf("unknown file role %q", role)
	}
}
