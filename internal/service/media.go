package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/regbot/internal/logger"
	"github.com/dtroode/regbot/internal/metrics"
	"github.com/dtroode/regbot/internal/model"
)

// Media moves remotely-held content into object storage.
type Media struct {
	fetcher model.FileFetcher
	storage model.Storage
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewMedia(
	fetcher model.FileFetcher,
	storage model.Storage,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Media {
	return &Media{
		fetcher: fetcher,
		storage: storage,
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch downloads the content behind token. Failures are NotFound or
// Transport faults.
func (m *Media) Fetch(ctx context.Context, token string) ([]byte, error) {
	data, err := m.fetcher.Fetch(ctx, token)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, model.ErrMediaNotFound) || errors.Is(err, model.ErrTransport) {
		return nil, err
	}
	return nil, model.NewTransportFault(err)
}

// Store uploads data under the user's slot key and returns the storage path.
func (m *Media) Store(ctx context.Context, userID int64, slot model.Slot, data []byte, kind model.ContentKind) (string, error) {
	key := model.MediaKey(userID, slot, kind)

	err := m.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), kind.MIMEType())
	if err != nil {
		return "", model.NewStorageFault(err)
	}

	return key, nil
}

// Collect fetches and stores one slot. Already uploaded refs are returned as is.
func (m *Media) Collect(ctx context.Context, userID int64, ref model.MediaRef) (string, error) {
	if !ref.Pending() {
		return ref.Path, nil
	}

	path, err := m.collect(ctx, userID, ref)
	m.metrics.ObserveUpload(string(ref.Slot), err)
	if err != nil {
		return "", fmt.Errorf("failed to collect %s: %w", ref.Slot, err)
	}

	m.logger.Debug("media stored", "user_id", userID, "slot", ref.Slot, "path", path)
	return path, nil
}

func (m *Media) collect(ctx context.Context, userID int64, ref model.MediaRef) (string, error) {
	data, err := m.Fetch(ctx, ref.Token)
	if err != nil {
		return "", err
	}
	return m.Store(ctx, userID, ref.Slot, data, ref.Kind)
}
