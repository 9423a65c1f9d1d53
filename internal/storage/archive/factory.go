// internal/storage/archive/factory.go
package archive

import "fmt"

// Open returns the backend named by kind: "localfs" rooted at path, or
// "s3" using s3cfg.
func Open(kind, path string, s3cfg S3Config) (Storage, error) {
	switch kind {
	case "", "localfs":
		return NewLocalFS(path)
	case "s3":
		return NewS3(s3cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", kind)
	}
}
