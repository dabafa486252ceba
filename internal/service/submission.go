package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dtroode/regbot/internal/logger"
	"github.com/dtroode/regbot/internal/metrics"
	"github.com/dtroode/regbot/internal/model"
)

const defaultUploadConcurrency = 4

// Collector uploads one slot and returns its storage path.
type Collector interface {
	Collect(ctx context.Context, userID int64, ref model.MediaRef) (string, error)
}

// Notifier fans a completed registration out to observers.
type Notifier interface {
	Notify(ctx context.Context, event model.RegistrationCompleted) []model.DeliveryOutcome
}

// Submission turns a completed session into one registration API call.
type Submission struct {
	collector   Collector
	registrar   model.Registrar
	ledger      model.SubmissionLedger
	notifier    Notifier
	concurrency int
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

func NewSubmission(
	collector Collector,
	registrar model.Registrar,
	ledger model.SubmissionLedger,
	notifier Notifier,
	concurrency int,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Submission {
	if concurrency <= 0 {
		concurrency = defaultUploadConcurrency
	}
	return &Submission{
		collector:   collector,
		registrar:   registrar,
		ledger:      ledger,
		notifier:    notifier,
		concurrency: concurrency,
		metrics:     metrics,
		logger:      logger,
	}
}

// Submit uploads pending media, builds the record and registers it. A session
// key is submitted at most once; later calls return ErrAlreadySubmitted.
func (s *Submission) Submit(ctx context.Context, session model.Session) (model.SubmitResult, error) {
	key := session.Key()
	log := s.logger.With("user_id", session.UserID, "generation", session.Generation)

	reserved, err := s.ledger.Reserve(ctx, key)
	if err != nil {
		s.metrics.ObserveSubmission("ledger_error")
		return model.SubmitResult{}, fmt.Errorf("failed to reserve submission: %w", err)
	}
	if !reserved {
		s.metrics.ObserveSubmission("duplicate")
		log.Warn("duplicate submission ignored")
		return model.SubmitResult{}, model.ErrAlreadySubmitted
	}

	paths, failed := s.collectMedia(ctx, session, log)

	record := model.Record{
		UserID: session.UserID,
		Fields: make(map[string]string, len(session.Answers)),
		Media:  paths,
	}
	for k, v := range session.Answers {
		record.Fields[k] = v
	}

	if err := s.registrar.Register(ctx, key, record); err != nil {
		status := model.SubmissionFailed
		if errors.Is(err, model.ErrRemoteRejected) {
			status = model.SubmissionRejected
		}
		s.finish(ctx, key, status, err.Error(), log)
		s.metrics.ObserveSubmission(string(status))
		log.Error("registration failed", "error", err)
		return model.SubmitResult{}, fmt.Errorf("failed to register: %w", err)
	}

	s.finish(ctx, key, model.SubmissionSucceeded, "", log)
	s.metrics.ObserveSubmission(string(model.SubmissionSucceeded))
	log.Info("registration submitted", "media", len(paths), "failed_media", len(failed))

	s.notifier.Notify(ctx, model.RegistrationCompleted{
		UserID: session.UserID,
		Name:   session.Answers[model.AnswerName],
	})

	return model.SubmitResult{
		SubmissionID: uuid.New(),
		Record:       record,
		FailedSlots:  failed,
	}, nil
}

// collectMedia uploads every slot concurrently. A failed slot is logged and
// left out of the result.
func (s *Submission) collectMedia(ctx context.Context, session model.Session, log *logger.Logger) (map[model.Slot]string, []model.Slot) {
	var (
		mu     sync.Mutex
		paths  = make(map[model.Slot]string, len(session.Media))
		failed []model.Slot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for slot, ref := range session.Media {
		slot, ref := slot, ref
		g.Go(func() error {
			path, err := s.collector.Collect(gctx, session.UserID, ref)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error("media upload failed, slot omitted", "error", model.NewPartialMediaFault(slot, err))
				failed = append(failed, slot)
				return nil
			}
			paths[slot] = path
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
	return paths, failed
}

func (s *Submission) finish(ctx context.Context, key model.SubmissionKey, status model.SubmissionStatus, detail string, log *logger.Logger) {
	if err := s.ledger.Finish(ctx, key, status, detail); err != nil {
		log.Error("failed to record submission outcome", "status", status, "error", err)
	}
}
