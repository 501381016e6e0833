package buyers

import (
	"context"

	"tooma/internal/domain"
	"tooma/internal/pkg/notify"
)

// Repository is implemented by repository.BuyerInfoRepository.
type Repository interface {
	Create(ctx context.Context, b *domain.BuyerInfo) error
	GetByID(ctx context.Context, id int64) (*domain.BuyerInfo, error)
	FindFirstByEmail(ctx context.Context, fileUploadID int64, email string) (*domain.BuyerInfo, error)
	ListByFileID(ctx context.Context, fileUploadID int64) ([]domain.BuyerInfo, error)
	ListByOwnerID(ctx context.Context, userID int64) ([]domain.BuyerInfo, error)
	UpdatePaymentLink(ctx context.Context, id int64, link string) error
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.BuyerPaymentStatus) error
}

// FileLookup is implemented by repository.FileUploadRepository.
type FileLookup interface {
	GetByUniqueID(ctx context.Context, uniqueID string) (*domain.FileUpload, error)
	GetByID(ctx context.Context, id int64) (*domain.FileUpload, error)
}

// Notifier sends the buyer and owner emails. Implementations must not block
// the request on delivery failures.
type Notifier interface {
	BuyerRegistered(ctx context.Context, m notify.BuyerRegistered)
	PaymentReceived(ctx context.Context, m notify.PaymentReceived)
	NewPurchase(ctx context.Context, m notify.NewPurchase)
}
