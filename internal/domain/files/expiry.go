package files

import (
	"context"
	"fmt"
	"time"

	"tooma/internal/domain"
	"tooma/internal/pkg/logging"
	"tooma/internal/pkg/notify"
)

// ExpiryNotifier delivers one expiry notice. Implemented by notify.Notifier.
type ExpiryNotifier interface {
	ExpiryNotice(ctx context.Context, m notify.ExpiryNotice) error
}

// ExpiryRepository is the slice of Repository the sweep needs.
type ExpiryRepository interface {
	ListExpiringUnnotified(ctx context.Context, from, to time.Time, limit int) ([]domain.FileUpload, error)
	MarkExpiryNotified(ctx context.Context, id int64, at time.Time) error
}

// ExpirySweeper tells owners their uploads are about to expire. It needs no
// object store or payment gateway, so batch jobs can run it on a bare DB.
type ExpirySweeper struct {
	repo     ExpiryRepository
	notifier ExpiryNotifier
	log      logging.Logger
	now      func() time.Time
}

func NewExpirySweeper(repo ExpiryRepository, notifier ExpiryNotifier, log logging.Logger) *ExpirySweeper {
	return &ExpirySweeper{repo: repo, notifier: notifier, log: log, now: time.Now}
}

// Run emails owners whose uploads expire within window and marks each row
// once its notice went out. Rows without an owner email are marked without
// sending. Delivery failures are counted and retried on the next run.
func (s *ExpirySweeper) Run(ctx context.Context, window time.Duration, limit int) (sent, failed int, err error) {
	now := s.now()
	due, err := s.repo.ListExpiringUnnotified(ctx, now, now.Add(window), limit)
	if err != nil {
		return 0, 0, fmt.Errorf("list expiring uploads: %w", err)
	}

	for _, f := range due {
		if f.OwnerEmail != "" {
			if err := s.notifier.ExpiryNotice(ctx, notify.ExpiryNotice{
				OwnerEmail: f.OwnerEmail,
				FileTitle:  f.Title,
				UniqueID:   f.UniqueID,
				ExpiresAt:  f.ExpiresAt,
			}); err != nil {
				s.log.Warn("expiry notice failed", "unique_id", f.UniqueID, "err", err)
				failed++
				continue
			}
			sent++
		}
		if err := s.repo.MarkExpiryNotified(ctx, f.ID, now); err != nil {
			return sent, failed, fmt.Errorf("mark %s notified: %w", f.UniqueID, err)
		}
	}
	return sent, failed, nil
}
