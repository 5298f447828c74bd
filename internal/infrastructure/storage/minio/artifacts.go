package minio

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// UploadResult describes a published artifact.
type UploadResult struct {
	Bucket    string
	ObjectKey string
	ETag      string
	Size      int64
}

// ArtifactStore publishes pipeline output files.  Each file is stored under
// runs/<runID>/<name> and copied to latest/<name>.
type ArtifactStore struct {
	client *MinIOClient
	logger logging.Logger
}

func NewArtifactStore(client *MinIOClient, log logging.Logger) *ArtifactStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ArtifactStore{client: client, logger: log.Named("artifacts")}
}

// ObjectKey returns the per-run key for localPath.
func ObjectKey(runID, localPath string) string {
	runID = strings.Trim(runID, "/")
	if runID == "" {
		runID = "adhoc"
	}
	return path.Join("runs", runID, filepath.Base(localPath))
}

// Publish uploads localPath and returns the per-run object.
func (s *ArtifactStore) Publish(ctx context.Context, runID, localPath string) (*UploadResult, error) {
	if err := s.client.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	contentType := "application/octet-stream"
	if strings.EqualFold(filepath.Ext(localPath), ".csv") {
		contentType = "text/csv"
	}
	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"run-id": runID},
	}

	bucket := s.client.Bucket()
	key := ObjectKey(runID, localPath)
	info, err := s.client.client.FPutObject(ctx, bucket, key, localPath, opts)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeStorageFailed, "upload %s", localPath)
	}

	latest := path.Join("latest", filepath.Base(localPath))
	if _, err := s.client.client.FPutObject(ctx, bucket, latest, localPath, opts); err != nil {
		s.logger.Warn("failed to update latest artifact", logging.String("key", latest), logging.Err(err))
	}

	s.logger.Info("artifact published",
		logging.String("bucket", bucket),
		logging.String("key", key),
		logging.Int64("size", info.Size),
	)
	return &UploadResult{Bucket: bucket, ObjectKey: key, ETag: info.ETag, Size: info.Size}, nil
}

// Exists reports whether objectKey is present in the artifact bucket.
func (s *ArtifactStore) Exists(ctx context.Context, objectKey string) (bool, error) {
	_, err := s.client.client.StatObject(ctx, s.client.Bucket(), objectKey, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, errors.Wrapf(err, errors.ErrCodeStorageFailed, "stat %s", objectKey)
}

//Personal.AI order the ending
