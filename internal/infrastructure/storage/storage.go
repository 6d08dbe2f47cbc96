// Package storage implements domain.BlobStore on the local filesystem and S3,
// plus the naming scheme for uploaded doctor documents.
package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/you/nirogsvc/domain"
)

// New returns the store selected by driver ("local" or "s3").
func New(driver, localPath, bucket, region, prefix string, maxBytes int64) (domain.BlobStore, error) {
	switch driver {
	case "", "local":
		return NewLocalStore(localPath)
	case "s3":
		sess, err := NewS3Session(region)
		if err != nil {
			return nil, err
		}
		return NewS3Store(sess, bucket, prefix, maxBytes), nil
	}
	return nil, fmt.Errorf("storage: unknown driver %q", driver)
}

// DocumentName builds a collision-free object name for a doctor's document:
// doctors/<userID>/<kind>_<unixnano>_<uuid><ext>.
func DocumentName(userID uint, kind, filename string, at time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return fmt.Sprintf("doctors/%d/%s_%d_%s%s", userID, kind, at.UnixNano(), uuid.NewString(), ext)
}
