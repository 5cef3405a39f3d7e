// Package archive keeps a copy of every accepted upload in blob storage.
package archive

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/spigell/resume-evaluator/internal/guard"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"go.uber.org/zap"
)

const DefaultContainer = "uploads"

var (
	ErrEmptyKey   = errors.New("archive key is empty")
	ErrInvalidKey = errors.New("archive key is invalid")
)

type Archive interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
}

// Key builds the blob path role/<scope>/<hash>/<file name>. Identical content
// maps to the same key, so re-archiving is idempotent.
func Key(role guard.Role, owningJDID, hash, fileName string) string {
	scope := owningJDID
	if scope == "" {
		scope = "global"
	}

	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "." || name == "/" || name == "" || name == ".." {
		name = "upload"
	}

	return path.Join(string(role), scope, hash, name)
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	return nil
}

type Azure struct {
	client    *azblob.Client
	container string
	logger    *zap.Logger
}

var _ Archive = (*Azure)(nil)

func NewAzure(connectionString, container string, log *zap.Logger) (*Azure, error) {
	if strings.TrimSpace(connectionString) == "" {
		return nil, errors.New("storage connection string is required")
	}
	if container == "" {
		container = DefaultContainer
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Azure{client: client, container: container, logger: log.With(zap.String("container", container))}, nil
}

// Ensure creates the container when it does not exist yet.
func (a *Azure) Ensure(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %s: %w", a.container, err)
	}

	a.logger.Debug("storage container ready")
	return nil
}

func (a *Azure) Put(ctx context.Context, key string, content []byte, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := a.client.UploadBuffer(ctx, a.container, key, content, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	a.logger.Debug("upload archived", zap.String("key", key), zap.Int("size", len(content)))
	return nil
}
