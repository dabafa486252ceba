// Package mocks holds testify mocks of the model interfaces.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/regbot/internal/model"
)

type Registrar struct {
	mock.Mock
}

func (m *Registrar) Register(ctx context.Context, key model.SubmissionKey, record model.Record) error {
	args := m.Called(ctx, key, record)
	return args.Error(0)
}

type Storage struct {
	mock.Mock
}

func (m *Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.Error(0)
}

func (m *Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *Storage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *Storage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type FileFetcher struct {
	mock.Mock
}

func (m *FileFetcher) Fetch(ctx context.Context, token string) ([]byte, error) {
	args := m.Called(ctx, token)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type SubmissionLedger struct {
	mock.Mock
}

func (m *SubmissionLedger) Reserve(ctx context.Context, key model.SubmissionKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *SubmissionLedger) Finish(ctx context.Context, key model.SubmissionKey, status model.SubmissionStatus, detail string) error {
	args := m.Called(ctx, key, status, detail)
	return args.Error(0)
}
