package worker

import (
	"context"
	"encoding/json"
	"time"

	"roost/internal/service"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TaskSweepRun is the periodic completion-sweep task.
const TaskSweepRun = "sweep:run"

// Worker runs the asynq consumer (notification delivery) and the scheduler
// that enqueues the periodic completion sweep.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	sweep     *service.SweepService
	log       *zap.Logger
}

func New(redisAddr string, sweep *service.SweepService, log *zap.Logger) *Worker {
	redis := asynq.RedisClientOpt{Addr: redisAddr}
	server := asynq.NewServer(redis, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"default": 1},
	})
	scheduler := asynq.NewScheduler(redis, &asynq.SchedulerOpts{Location: time.UTC})
	return &Worker{server: server, scheduler: scheduler, sweep: sweep, log: log}
}

// Start launches the consumer and scheduler. Both run until Shutdown.
func (w *Worker) Start() error {
	if _, err := w.scheduler.Register("*/10 * * * *", asynq.NewTask(TaskSweepRun, nil)); err != nil {
		return err
	}
	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskNotifySend, w.handleNotify)
	mux.HandleFunc(TaskSweepRun, w.handleSweep)
	if err := w.server.Start(mux); err != nil {
		return err
	}
	return w.scheduler.Start()
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

func (w *Worker) handleSweep(ctx context.Context, _ *asynq.Task) error {
	_, err := w.sweep.Run(ctx, time.Now())
	return err
}

// handleNotify delivers one stored notification. Delivery is a log line for
// now; the outbox row already exists, so swapping in email or push later
// changes only this function.
func (w *Worker) handleNotify(_ context.Context, t *asynq.Task) error {
	var p service.NotifyPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	w.log.Info("notification delivered",
		zap.Uint("notification_id", p.NotificationID),
		zap.Uint("user_id", p.UserID),
		zap.String("type", p.Type))
	return nil
}
