package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Poller refreshes the store on a fixed interval, independent of user operations, so
// the snapshot follows price and supply changes made by other accounts.
type Poller struct {
	refresher refresher
	interval  time.Duration

	mu    sync.Mutex
	sched gocron.Scheduler
	log   *log.Entry
}

// NewPoller returns a Poller running r every interval.
func NewPoller(r refresher, interval time.Duration) *Poller {
	return &Poller{
		refresher: r,
		interval:  interval,
		log:       log.WithFields(log.Fields{"component": "SyncPoller"}),
	}
}

// Start schedules the refresh job. A refresh still running when the next one is due
// causes that one to be skipped. The poller stops when ctx is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.sched = scheduler
	p.mu.Unlock()

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		if err := p.refresher.Bootstrap(jobCtx); err != nil {
			p.log.WithFields(log.Fields{"exec": execID, "error": err}).Warning("Periodic refresh had failed reads")
		}
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		if sdErr := p.Shutdown(); sdErr != nil {
			p.log.WithFields(log.Fields{"error": sdErr}).Error("Scheduler shutdown error")
		}
	}()

	p.log.WithFields(log.Fields{"interval": p.interval}).Info("Poller started")
	return nil
}

// Shutdown stops the scheduler and waits for a running refresh to return.
func (p *Poller) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sched == nil {
		return nil
	}
	err := p.sched.Shutdown()
	p.sched = nil
	return err
}
