package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dtroode/regbot/internal/model"
)

const maxFileSize = 50 << 20

// ErrFileTooLarge is wrapped in a transport fault when a download exceeds the
// size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

var _ model.FileFetcher = (*Fetcher)(nil)

// Fetcher downloads files users sent to the bot.
type Fetcher struct {
	api     botAPI
	http    *http.Client
	maxSize int64
}

func NewFetcher(api botAPI, timeout time.Duration) *Fetcher {
	return &Fetcher{
		api:     api,
		http:    &http.Client{Timeout: timeout},
		maxSize: maxFileSize,
	}
}

// Fetch resolves the file id and downloads its content.
func (f *Fetcher) Fetch(ctx context.Context, token string) ([]byte, error) {
	url, err := f.api.GetFileDirectURL(token)
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
			return nil, model.NewMediaNotFound(token)
		}
		return nil, model.NewTransportFault(fmt.Errorf("failed to resolve file: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, model.NewTransportFault(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, model.NewMediaNotFound(token)
	case resp.StatusCode != http.StatusOK:
		return nil, model.NewTransportFault(fmt.Errorf("file download returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, model.NewTransportFault(fmt.Errorf("failed to read file: %w", err))
	}
	if int64(len(data)) > f.maxSize {
		return nil, model.NewTransportFault(fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, f.maxSize))
	}
	return data, nil
}
