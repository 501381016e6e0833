package files

import (
	"context"
	"time"

	"tooma/internal/domain"
)

// Repository is the persistence the registry needs.
// Implemented by repository.FileUploadRepository.
type Repository interface {
	Create(ctx context.Context, f *domain.FileUpload) error
	GetByUniqueID(ctx context.Context, uniqueID string) (*domain.FileUpload, error)
	GetWithBuyers(ctx context.Context, uniqueID string) (*domain.FileUpload, error)
	Save(ctx context.Context, f *domain.FileUpload) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	ListByUserID(ctx context.Context, userID int64) ([]domain.FileUpload, error)
}

// LinkIssuer mints presigned download URLs. Implemented by storage.LinkIssuer.
type LinkIssuer interface {
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}
