// Package storage is where exported reports land. The "local" driver (the
// default) writes under STORAGE_LOCAL_ROOT; "s3" writes to an S3-compatible
// bucket such as AWS S3, MinIO or R2.
//
//	disk, err := storage.Open(config.StorageDefault())
//	err = disk.Put(ctx, "exports/Sales_Report_3-7-2024.xlsx", data, export.ContentType)
//	fmt.Println(disk.URL("exports/Sales_Report_3-7-2024.xlsx"))
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/smartshelf/shelfweb/config"
)

// ErrNotFound is returned by Get when nothing is stored at path.
var ErrNotFound = errors.New("storage: file not found")

// Disk is implemented by every driver. Paths are slash-separated and
// relative to the disk root.
type Disk interface {
	// Put writes content to path, replacing what was there.
	Put(ctx context.Context, path string, content []byte, contentType string) error

	// Get returns the content at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether something is stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes path. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// URL is where a user can fetch path.
	URL(path string) string

	// Name is the driver name.
	Name() string
}

// Open builds the named disk from config.
func Open(name string) (Disk, error) {
	switch name {
	case "", "local":
		return NewLocal(config.StorageLocalRoot(), config.StorageURL())
	case "s3":
		return NewS3(context.Background(), S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
	default:
		return nil, fmt.Errorf("storage: unknown disk %q", name)
	}
}
