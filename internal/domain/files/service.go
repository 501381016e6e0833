package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"tooma/internal/domain"
	"tooma/internal/domain/payment"
	"tooma/internal/pkg/logging"
	"tooma/internal/pkg/storage"
	"tooma/internal/repository"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"gorm.io/gorm"
)

// ExpiryWindow is how long an upload stays shareable after creation.
const ExpiryWindow = 7 * 24 * time.Hour

// Settings carries the URLs and limits the registry composes links from.
type Settings struct {
	// APIBaseURL is the public root of the versioned API, e.g.
	// https://api.example.com/api/v1.
	APIBaseURL      string
	FrontendURL     string
	UploadPrefix    string
	MaxUploadSize   int64
	LinkTTL         time.Duration
	FallbackLinkTTL time.Duration
}

type Service struct {
	repo    Repository
	store   storage.ObjectStore
	links   LinkIssuer
	gateway payment.Gateway
	log     logging.Logger
	cfg     Settings

	now         func() time.Time
	newUniqueID func() (string, error)
}

func NewService(repo Repository, store storage.ObjectStore, links LinkIssuer, gateway payment.Gateway, log logging.Logger, cfg Settings) *Service {
	if cfg.LinkTTL <= 0 {
		cfg.LinkTTL = 2 * time.Hour
	}
	if cfg.FallbackLinkTTL <= 0 {
		cfg.FallbackLinkTTL = time.Hour
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &Service{
		repo:        repo,
		store:       store,
		links:       links,
		gateway:     gateway,
		log:         log,
		cfg:         cfg,
		now:         time.Now,
		newUniqueID: NewUniqueID,
	}
}

type CreateInput struct {
	OwnerID       int64
	OwnerEmail    string
	Title         string
	Message       string
	File          *multipart.FileHeader
	Banner        *multipart.FileHeader
	PaymentAmount *string
}

// CreateUpload stores the blobs, persists the record, optionally opens a
// payment link for the owner and finally signs the first download URL.
// If the download URL cannot be signed the record is removed again; a
// payment failure leaves the record in place.
func (s *Service) CreateUpload(ctx context.Context, in CreateInput) (*domain.FileUpload, error) {
	if in.File == nil || in.File.Filename == "" || in.File.Size == 0 {
		return nil, ErrMissingFile
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	if err := s.checkSize(in.File); err != nil {
		return nil, err
	}
	if in.Banner != nil {
		if err := s.checkSize(in.Banner); err != nil {
			return nil, err
		}
	}

	var amount *string
	if in.PaymentAmount != nil {
		normalized, err := payment.NormalizeAmount(*in.PaymentAmount)
		if err != nil {
			return nil, err
		}
		amount = &normalized
	}

	fileKey, err := s.putBlob(ctx, in.File)
	if err != nil {
		return nil, err
	}
	var bannerKey string
	if in.Banner != nil {
		if bannerKey, err = s.putBlob(ctx, in.Banner); err != nil {
			s.discardBlobs(ctx, fileKey)
			return nil, err
		}
	}

	uniqueID, err := s.newUniqueID()
	if err != nil {
		s.discardBlobs(ctx, fileKey, bannerKey)
		return nil, err
	}

	now := s.now()
	f := &domain.FileUpload{
		UserID:        in.OwnerID,
		OwnerEmail:    in.OwnerEmail,
		UniqueID:      uniqueID,
		FileKey:       fileKey,
		BannerKey:     bannerKey,
		ExpiresAt:     now.Add(ExpiryWindow),
		Title:         strings.TrimSpace(in.Title),
		Message:       in.Message,
		PaymentAmount: amount,
		UploadedAt:    now,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		s.discardBlobs(ctx, fileKey, bannerKey)
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUniqueID, uniqueID)
		}
		return nil, fmt.Errorf("create file upload: %w", err)
	}

	if amount != nil {
		link, err := s.gateway.Initiate(ctx, payment.FileRef{ID: f.ID, UniqueID: f.UniqueID}, *amount, in.OwnerEmail, s.MetadataLink(f.UniqueID))
		if err != nil {
			s.log.Error("owner payment initiation failed", "unique_id", f.UniqueID, "err", err)
			return nil, fmt.Errorf("%w: %v", ErrPaymentInitiation, err)
		}
		if err := s.repo.UpdateFields(ctx, f.ID, map[string]interface{}{
			"request_payment": true,
			"payment_link":    link,
		}); err != nil {
			return nil, fmt.Errorf("save payment link: %w", err)
		}
		f.RequestPayment = true
		f.PaymentLink = &link
	}

	downloadURL, err := s.links.PresignDownload(ctx, f.FileKey, s.cfg.LinkTTL)
	if err != nil {
		s.log.Warn("download link generation failed, rolling back upload", "unique_id", f.UniqueID, "key", f.FileKey, "err", err)
		if delErr := s.repo.Delete(ctx, f.ID); delErr != nil {
			s.log.Error("rollback delete failed", "unique_id", f.UniqueID, "err", delErr)
		}
		s.discardBlobs(ctx, fileKey, bannerKey)
		return nil, fmt.Errorf("%w: %w", ErrLinkGeneration, err)
	}

	metadataLink := s.MetadataLink(f.UniqueID)
	if err := s.repo.UpdateFields(ctx, f.ID, map[string]interface{}{
		"s3_download_link": downloadURL,
		"metadata_link":    metadataLink,
	}); err != nil {
		return nil, fmt.Errorf("save links: %w", err)
	}
	f.S3DownloadLink = &downloadURL
	f.MetadataLink = &metadataLink

	s.log.Info("file upload created", "unique_id", f.UniqueID, "user_id", f.UserID, "request_payment", f.RequestPayment)
	return f, nil
}

// Get returns the owner's view of an upload, buyers included.
func (s *Service) Get(ctx context.Context, callerID int64, uniqueID string) (*domain.FileUpload, error) {
	f, err := s.repo.GetWithBuyers(ctx, uniqueID)
	if err != nil {
		return nil, notFound(err)
	}
	if f.UserID != callerID {
		return nil, ErrForbidden
	}
	return f, nil
}

// GetByUniqueID is the unauthenticated lookup other packages build on.
func (s *Service) GetByUniqueID(ctx context.Context, uniqueID string) (*domain.FileUpload, error) {
	f, err := s.repo.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

type UpdateInput struct {
	Title         *string
	Message       *string
	PaymentAmount *string
}

// Update applies a partial edit by the owner. Links missing on the row are
// filled in before saving; existing links are left alone.
func (s *Service) Update(ctx context.Context, callerID int64, uniqueID string, in UpdateInput) (*domain.FileUpload, error) {
	f, err := s.repo.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, notFound(err)
	}
	if f.UserID != callerID {
		return nil, ErrForbidden
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		f.Title = title
	}
	if in.Message != nil {
		f.Message = *in.Message
	}
	if in.PaymentAmount != nil {
		normalized, err := payment.NormalizeAmount(*in.PaymentAmount)
		if err != nil {
			return nil, err
		}
		f.PaymentAmount = &normalized
		f.RequestPayment = true
	}

	s.ensureLinks(ctx, f)

	if err := s.repo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("save file upload: %w", err)
	}
	return f, nil
}

// ensureLinks fills an empty download link with a short-lived URL and
// derives the metadata link. Signing failures leave the link empty.
func (s *Service) ensureLinks(ctx context.Context, f *domain.FileUpload) {
	if f.S3DownloadLink == nil && f.HasFile() {
		u, err := s.links.Presign(ctx, f.FileKey, s.cfg.FallbackLinkTTL)
		if err != nil {
			s.log.Warn("fallback download link failed", "unique_id", f.UniqueID, "err", err)
		} else {
			f.S3DownloadLink = &u
		}
	}
	if f.MetadataLink == nil {
		m := s.MetadataLink(f.UniqueID)
		f.MetadataLink = &m
	}
}

// ListForUser returns userID's uploads; callers may only list their own.
func (s *Service) ListForUser(ctx context.Context, callerID, userID int64) ([]domain.FileUpload, error) {
	if callerID != userID {
		return nil, ErrForbidden
	}
	return s.repo.ListByUserID(ctx, userID)
}

type DownloadInfo struct {
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	ExpiresAt     time.Time `json:"expires_at"`
	PresignedURL  string    `json:"presigned_url"`
	PaymentAmount *string   `json:"payment_amount"`
}

// GetDownloadInfo re-signs the download URL for a live upload and caches it
// on the row. Expiry is judged on the record alone.
func (s *Service) GetDownloadInfo(ctx context.Context, uniqueID string) (*DownloadInfo, error) {
	f, err := s.repo.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, notFound(err)
	}
	if f.Expired(s.now()) {
		return nil, ErrExpired
	}

	u, err := s.links.PresignDownload(ctx, f.FileKey, s.cfg.LinkTTL)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, f.ID, map[string]interface{}{"s3_download_link": u}); err != nil {
		return nil, fmt.Errorf("save download link: %w", err)
	}

	return &DownloadInfo{
		Title:         f.Title,
		Message:       f.Message,
		ExpiresAt:     f.ExpiresAt,
		PresignedURL:  u,
		PaymentAmount: f.PaymentAmount,
	}, nil
}

// MetadataLink is the API URL recipients open to reach the shared page.
func (s *Service) MetadataLink(uniqueID string) string {
	return s.cfg.APIBaseURL + "/files/download/" + uniqueID
}

// SharedPageURL is the front-end page for an upload.
func (s *Service) SharedPageURL(uniqueID string) string {
	return s.cfg.FrontendURL + "/shared/" + uniqueID + "/"
}

// DownloadRedirect resolves the front-end page for an existing upload.
func (s *Service) DownloadRedirect(ctx context.Context, uniqueID string) (string, error) {
	if _, err := s.GetByUniqueID(ctx, uniqueID); err != nil {
		return "", err
	}
	return s.SharedPageURL(uniqueID), nil
}

func (s *Service) checkSize(fh *multipart.FileHeader) error {
	if s.cfg.MaxUploadSize > 0 && fh.Size > s.cfg.MaxUploadSize {
		return fmt.Errorf("%w: %s exceeds the %s limit", ErrFileTooLarge,
			humanize.Bytes(uint64(fh.Size)), humanize.Bytes(uint64(s.cfg.MaxUploadSize)))
	}
	return nil
}

func (s *Service) putBlob(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	key := objectKey(s.cfg.UploadPrefix, fh.Filename, mt.Extension())
	if err := s.store.Put(ctx, key, src, fh.Size, mt.String()); err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	return key, nil
}

func (s *Service) discardBlobs(ctx context.Context, keys ...string) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if err := s.store.Delete(ctx, k); err != nil {
			s.log.Warn("orphan blob cleanup failed", "key", k, "err", err)
		}
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrFileNotFound
	}
	return err
}
