package probe

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakePinger struct {
	err   atomic.Pointer[error]
	calls atomic.Int32
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.calls.Add(1)
	if p := f.err.Load(); p != nil {
		return *p
	}
	return nil
}

func (f *fakePinger) fail(err error) { f.err.Store(&err) }

func TestCheck_RecordsTransitions(t *testing.T) {
	p := &fakePinger{}
	s := NewScheduler(p, time.Second)
	assert.Equal(t, StateUnknown, s.Status().State)

	st := s.Check(context.Background())
	assert.Equal(t, StateUp, st.State)
	assert.False(t, st.CheckedAt.IsZero())
	assert.Equal(t, st, s.Status())

	p.fail(errors.New("connection refused"))
	st = s.Check(context.Background())
	assert.Equal(t, StateDown, st.State)
	assert.Equal(t, "connection refused", st.Error)
}

func TestCheck_AppliesTimeout(t *testing.T) {
	s := NewScheduler(pingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}), 10*time.Millisecond)

	st := s.Check(context.Background())
	assert.Equal(t, StateDown, st.State)
	assert.Contains(t, st.Error, "deadline")
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestStart_RunsImmediatelyAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := &fakePinger{}
	s := NewScheduler(p, time.Second)
	require.NoError(t, s.Start("@every 1h"))

	assert.Eventually(t, func() bool { return s.Status().State == StateUp }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestStart_BadSchedule(t *testing.T) {
	s := NewScheduler(&fakePinger{}, time.Second)
	assert.Error(t, s.Start("every now and then"))
}

func TestStop_CancelsAndWaitsForFirstCheck(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	var returned atomic.Bool
	s := NewScheduler(pingFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		returned.Store(true)
		return ctx.Err()
	}), time.Hour)
	require.NoError(t, s.Start("@every 1h"))

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first check did not start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	assert.NoError(t, ctx.Err(), "stop returned before its deadline")
	assert.True(t, returned.Load(), "check was cancelled and awaited")
	assert.Equal(t, StateDown, s.Status().State)
}
