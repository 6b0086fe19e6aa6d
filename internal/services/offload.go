package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kubev2v/offload-agent/internal/models"
	"github.com/kubev2v/offload-agent/internal/store"
	"github.com/kubev2v/offload-agent/pkg/scheduler"
	"github.com/kubev2v/offload-agent/pkg/worker"
)

// OffloadService runs calls on the worker pool and journals their progress.
type OffloadService struct {
	scheduler *scheduler.Scheduler
	store     *store.Store
}

func NewOffloadService(st *store.Store, spawner worker.Spawner, opts ...scheduler.Option) *OffloadService {
	s := &OffloadService{store: st}
	opts = append(opts, scheduler.WithObserver(s))
	s.scheduler = scheduler.NewScheduler(spawner, opts...)
	return s
}

func (s *OffloadService) Start(ctx context.Context, size int) error {
	return s.scheduler.Start(ctx, size)
}

func (s *OffloadService) Stop(ctx context.Context) error {
	return s.scheduler.Stop(ctx)
}

func (s *OffloadService) Close() {
	s.scheduler.Close()
}

func (s *OffloadService) Status(ctx context.Context) (models.PoolStatus, error) {
	st, err := s.scheduler.Status(ctx)
	if err != nil {
		return models.PoolStatus{}, err
	}

	status := models.PoolStatus{
		Size:     st.Size(),
		InFlight: st.InFlight,
		Queued:   st.Queued,
		Slots:    make([]models.Slot, 0, len(st.Slots)),
	}
	for _, sl := range st.Slots {
		status.Slots = append(status.Slots, models.Slot{
			Index:  sl.Index,
			UnitID: sl.UnitID,
			Status: models.SlotStatus(sl.Status),
		})
	}
	return status, nil
}

// Submit journals the call and queues it. It returns the call ID.
func (s *OffloadService) Submit(ctx context.Context, functionName string, args json.RawMessage) (string, error) {
	id, _, err := s.submit(ctx, functionName, args)
	return id, err
}

// Run submits the call and returns a future resolved with its outcome.
func (s *OffloadService) Run(ctx context.Context, functionName string, args json.RawMessage) (string, *models.Future[models.Result[json.RawMessage]], error) {
	return s.submit(ctx, functionName, args)
}

func (s *OffloadService) submit(ctx context.Context, functionName string, args json.RawMessage) (string, *models.Future[models.Result[json.RawMessage]], error) {
	if len(args) == 0 {
		args = json.RawMessage("null")
	}

	id := uuid.NewString()
	if err := s.store.Calls().Create(ctx, id, functionName, args); err != nil {
		return "", nil, err
	}

	c := make(chan models.Result[json.RawMessage], 1)
	_, err := s.scheduler.Submit(scheduler.Call{
		ID:           id,
		FunctionName: functionName,
		Arguments:    args,
		OnSuccess: func(value json.RawMessage) {
			if err := s.store.Calls().MarkSucceeded(context.Background(), id, value); err != nil {
				zap.S().Named("offload_service").Errorw("failed to journal success", "call", id, "error", err)
			}
			c <- models.Result[json.RawMessage]{Data: value}
		},
		OnError: func(callErr error) {
			if err := s.store.Calls().MarkFailed(context.Background(), id, callErr); err != nil {
				zap.S().Named("offload_service").Errorw("failed to journal failure", "call", id, "error", err)
			}
			c <- models.Result[json.RawMessage]{Err: callErr}
		},
	})
	if err != nil {
		if jErr := s.store.Calls().MarkFailed(ctx, id, err); jErr != nil {
			zap.S().Named("offload_service").Errorw("failed to journal rejected call", "call", id, "error", jErr)
		}
		return id, nil, err
	}

	zap.S().Named("offload_service").Debugw("call submitted", "call", id, "function", functionName)
	return id, models.NewFuture(c), nil
}

// CallDispatched journals the slot that picked the call up.
func (s *OffloadService) CallDispatched(callID string, slot int) {
	if err := s.store.Calls().MarkProcessing(context.Background(), callID, slot); err != nil {
		zap.S().Named("offload_service").Errorw("failed to journal dispatch", "call", callID, "slot", slot, "error", err)
	}
}

func (s *OffloadService) Get(ctx context.Context, id string) (*models.CallRecord, error) {
	return s.store.Calls().Get(ctx, id)
}

type CallListParams struct {
	Functions []string
	Statuses  []models.CallStatus
	Limit     uint64
	Offset    uint64
}

type CallListResult struct {
	Calls []models.CallRecord
	Total int
}

func (s *OffloadService) List(ctx context.Context, params CallListParams) (*CallListResult, error) {
	filters := []store.ListOption{
		store.ByFunction(params.Functions...),
		store.ByStatus(params.Statuses...),
	}

	opts := append([]store.ListOption{store.WithDefaultSort()}, filters...)
	if params.Limit > 0 {
		opts = append(opts, store.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, store.WithOffset(params.Offset))
	}

	calls, err := s.store.Calls().List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	total, err := s.store.Calls().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	return &CallListResult{Calls: calls, Total: total}, nil
}
