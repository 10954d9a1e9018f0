package storage

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/okosten/hallbook/internal/retry"
)

// ReceiptUploader wraps a BlobStore with the bounded-retry contract. A
// duplicate object name is not retried blindly, the object is renamed and
// tried again within the same attempt budget.
type ReceiptUploader struct {
	store  BlobStore
	policy retry.Policy
	logger *zap.Logger
}

func NewReceiptUploader(store BlobStore, logger *zap.Logger) *ReceiptUploader {
	return &ReceiptUploader{
		store:  store,
		policy: retry.DefaultUpload,
		logger: logger,
	}
}

// Upload stores a receipt and returns its public URL.
func (u *ReceiptUploader) Upload(ctx context.Context, data []byte, contentType string, bookingRef string) (string, error) {
	name := fmt.Sprintf("receipt-%s%s", bookingRef, ExtensionFor(contentType))

	var url string
	err := u.policy.Do(ctx, func(attemptCtx context.Context) error {
		got, err := u.store.Upload(attemptCtx, data, contentType, name)
		if err != nil {
			if errors.Is(err, ErrDuplicateName) {
				// rename and retry once within this attempt instead of
				// hammering the same name
				name = fmt.Sprintf("receipt-%s-%d%s", bookingRef, suffix(), ExtensionFor(contentType))
				got, err = u.store.Upload(attemptCtx, data, contentType, name)
			}
			if err != nil {
				if errors.Is(err, ErrTooLarge) || errors.Is(err, ErrBadMIMEType) {
					return retry.Permanent(err)
				}
				u.logger.Warn("receipt upload attempt failed", zap.String("name", name), zap.Error(err))
				return err
			}
		}
		url = got
		return nil
	})
	if err != nil {
		return "", err
	}
	return url, nil
}

func suffix() int64 {
	return time.Now().UnixMilli()*1000 + rand.Int63n(1000)
}
