package buyers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tooma/internal/domain"
	"tooma/internal/domain/payment"
	"tooma/internal/pkg/logging"
	"tooma/internal/pkg/notify"

	"gorm.io/gorm"
)

type Settings struct {
	// APIBaseURL is the public root of the versioned API; payment callbacks
	// are built under it.
	APIBaseURL  string
	FrontendURL string
	Currency    string
}

type Service struct {
	repo     Repository
	files    FileLookup
	gateway  payment.Gateway
	notifier Notifier
	log      logging.Logger
	cfg      Settings
}

func NewService(repo Repository, files FileLookup, gateway payment.Gateway, notifier Notifier, log logging.Logger, cfg Settings) *Service {
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &Service{
		repo:     repo,
		files:    files,
		gateway:  gateway,
		notifier: notifier,
		log:      log,
		cfg:      cfg,
	}
}

type RegisterInput struct {
	Email         string
	Name          string
	Requirements  *string
	PaymentStatus string
}

// RegisterBuyer records a new buyer against the upload. Every call inserts
// a row. When the upload carries a positive amount a checkout link is opened
// for the buyer; if that fails the row is kept and ErrPaymentInitiation is
// returned alongside it.
func (s *Service) RegisterBuyer(ctx context.Context, uniqueID string, in RegisterInput) (*domain.BuyerInfo, error) {
	f, err := s.files.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, fileNotFound(err)
	}

	requirements := domain.DefaultRequirements
	if in.Requirements != nil {
		requirements = *in.Requirements
	}
	orderStatus := domain.OrderStatusPending
	if f.HasFile() {
		orderStatus = domain.OrderStatusFulfilled
	}

	b := &domain.BuyerInfo{
		FileUploadID:  f.ID,
		BuyerEmail:    strings.TrimSpace(in.Email),
		BuyerName:     strings.TrimSpace(in.Name),
		Requirements:  requirements,
		PaymentStatus: domain.BuyerPaymentStatus(in.PaymentStatus),
		OrderStatus:   orderStatus,
		PaymentAmount: copyAmount(f.PaymentAmount),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create buyer: %w", err)
	}

	if payment.IsPositive(f.PaymentAmount) {
		link, err := s.gateway.Initiate(ctx, payment.FileRef{ID: f.ID, UniqueID: f.UniqueID}, *f.PaymentAmount, b.BuyerEmail, s.CallbackURL(b.ID))
		if err != nil {
			s.log.Error("buyer payment initiation failed", "buyer_id", b.ID, "unique_id", f.UniqueID, "err", err)
			return b, fmt.Errorf("%w: %v", ErrPaymentInitiation, err)
		}
		if err := s.repo.UpdatePaymentLink(ctx, b.ID, link); err != nil {
			return b, fmt.Errorf("save buyer payment link: %w", err)
		}
		b.PaymentLink = &link
	}

	s.notifier.BuyerRegistered(ctx, notify.BuyerRegistered{
		BuyerName:   b.BuyerName,
		BuyerEmail:  b.BuyerEmail,
		FileTitle:   f.Title,
		PaymentLink: deref(b.PaymentLink),
		SharedURL:   s.sharedURL(f.UniqueID, b.ID),
	})

	s.log.Info("buyer registered", "buyer_id", b.ID, "unique_id", f.UniqueID, "order_status", b.OrderStatus)
	return b, nil
}

func (s *Service) GetBuyer(ctx context.Context, id int64) (*domain.BuyerInfo, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, buyerNotFound(err)
	}
	return b, nil
}

type VerifyResult struct {
	BuyerEmail         string                    `json:"buyer_email"`
	PaymentStatus      domain.BuyerPaymentStatus `json:"payment_status"`
	FileUploadUniqueID string                    `json:"file_upload_unique_id"`
	BuyerInfoID        int64                     `json:"buyer_info_id"`
	PaymentLink        *string                   `json:"payment_link"`
}

// VerifyBuyer finds the first registration of email against the upload so a
// returning buyer can resume.
func (s *Service) VerifyBuyer(ctx context.Context, uniqueID, email string) (*VerifyResult, error) {
	f, err := s.files.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, fileNotFound(err)
	}
	b, err := s.repo.FindFirstByEmail(ctx, f.ID, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}
	return &VerifyResult{
		BuyerEmail:         b.BuyerEmail,
		PaymentStatus:      b.PaymentStatus,
		FileUploadUniqueID: f.UniqueID,
		BuyerInfoID:        b.ID,
		PaymentLink:        b.PaymentLink,
	}, nil
}

// ListForFile returns the upload's buyers to its owner.
func (s *Service) ListForFile(ctx context.Context, callerID int64, uniqueID string) ([]domain.BuyerInfo, error) {
	f, err := s.files.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, fileNotFound(err)
	}
	if f.UserID != callerID {
		return nil, ErrForbidden
	}
	return s.repo.ListByFileID(ctx, f.ID)
}

// ListForOwner returns buyers across all of the caller's uploads.
func (s *Service) ListForOwner(ctx context.Context, callerID int64) ([]domain.BuyerInfo, error) {
	return s.repo.ListByOwnerID(ctx, callerID)
}

// HandlePaymentCallback settles a buyer's payment after the gateway
// redirect. On success the buyer is marked paid and the front-end URL to
// send them to is returned; otherwise the buyer is marked failed and
// ErrPaymentFailed is returned. Nothing is written when either query
// parameter is missing.
func (s *Service) HandlePaymentCallback(ctx context.Context, buyerID int64, reference, trxref string) (string, error) {
	if reference == "" || trxref == "" {
		return "", ErrMissingReference
	}

	b, err := s.repo.GetByID(ctx, buyerID)
	if err != nil {
		return "", buyerNotFound(err)
	}
	f, err := s.files.GetByID(ctx, b.FileUploadID)
	if err != nil {
		return "", fmt.Errorf("load file for buyer %d: %w", b.ID, err)
	}

	ok, data := s.gateway.Verify(ctx, reference)
	if !ok {
		if err := s.repo.UpdatePaymentStatus(ctx, b.ID, domain.BuyerPaymentFailed); err != nil {
			return "", fmt.Errorf("mark buyer %d failed: %w", b.ID, err)
		}
		s.log.Warn("payment verification failed", "buyer_id", b.ID, "reference", reference, "response", data)
		return "", ErrPaymentFailed
	}

	if err := s.repo.UpdatePaymentStatus(ctx, b.ID, domain.BuyerPaymentPaid); err != nil {
		return "", fmt.Errorf("mark buyer %d paid: %w", b.ID, err)
	}
	s.log.Info("payment verified", "buyer_id", b.ID, "reference", reference, "unique_id", f.UniqueID)

	amount := deref(b.PaymentAmount)
	s.notifier.PaymentReceived(ctx, notify.PaymentReceived{
		BuyerName:  b.BuyerName,
		BuyerEmail: b.BuyerEmail,
		FileTitle:  f.Title,
		Amount:     amount,
		Currency:   s.cfg.Currency,
		SharedURL:  s.sharedURL(f.UniqueID, b.ID),
	})
	s.notifier.NewPurchase(ctx, notify.NewPurchase{
		OwnerEmail: f.OwnerEmail,
		BuyerName:  b.BuyerName,
		BuyerEmail: b.BuyerEmail,
		FileTitle:  f.Title,
		Amount:     amount,
		Currency:   s.cfg.Currency,
	})

	return s.sharedURL(f.UniqueID, b.ID), nil
}

// CallbackURL is where the gateway sends the buyer after checkout.
func (s *Service) CallbackURL(buyerID int64) string {
	return s.cfg.APIBaseURL + "/payment-callback/" + strconv.FormatInt(buyerID, 10)
}

func (s *Service) sharedURL(uniqueID string, buyerID int64) string {
	return fmt.Sprintf("%s/shared/%s/%d/", s.cfg.FrontendURL, uniqueID, buyerID)
}

func copyAmount(a *string) *string {
	if a == nil {
		return nil
	}
	v := *a
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fileNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrFileNotFound
	}
	return err
}

func buyerNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBuyerNotFound
	}
	return err
}
