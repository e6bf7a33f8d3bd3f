package storage

// Backend names accepted by New.
const (
	BackendGridFS = "gridfs"
	BackendMinIO  = "minio"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Config selects and configures the blob store.
type Config struct {
	Backend      string
	GridFSBucket string
	MinIO        MinIOConfig
}

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}
