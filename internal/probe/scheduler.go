package probe

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okrtracker/okr-web/internal/logging"
)

const (
	StateUnknown = "unknown"
	StateUp      = "up"
	StateDown    = "down"
)

// Pinger is anything whose reachability can be checked; apiclient.Transport
// implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the outcome of the latest check.
type Status struct {
	State     string    `json:"state"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Scheduler checks the OKR API on a cron schedule and keeps the latest
// result for /health.
type Scheduler struct {
	cron    *cron.Cron
	target  Pinger
	timeout time.Duration
	status  atomic.Pointer[Status]
	now     func() time.Time

	// ctx is cancelled by Stop; every check runs under it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(target Pinger, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		target:  target,
		timeout: timeout,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.status.Store(&Status{State: StateUnknown})
	return s
}

// Start runs one check immediately, then on spec. The spec accepts the
// optional seconds field and descriptors such as "@every 30s".
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.Check(s.ctx) }); err != nil {
		logging.L().Sugar().Errorf("probe: bad schedule %q: %v", spec, err)
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Check(s.ctx)
	}()
	s.cron.Start()
	logging.L().Sugar().Infof("probe: upstream check scheduled (%s)", spec)
	return nil
}

// Stop cancels in-flight checks and waits for them to return, or for ctx
// to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		<-cronDone.Done()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Check pings the target once and records the result.
func (s *Scheduler) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	st := Status{State: StateUp, CheckedAt: s.now().UTC()}
	if err := s.target.Ping(ctx); err != nil {
		st.State = StateDown
		st.Error = err.Error()
	}

	prev := s.status.Swap(&st)
	if prev.State != st.State {
		logging.L().Sugar().Infof("probe: upstream %s -> %s", prev.State, st.State)
	}
	return st
}

// Status returns the latest result.
func (s *Scheduler) Status() Status {
	return *s.status.Load()
}
