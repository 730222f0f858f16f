package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err   atomic.Value
	calls atomic.Int32
}

func newFakePinger(err error) *fakePinger {
	p := &fakePinger{}
	p.set(err)
	return p
}

func (p *fakePinger) set(err error) {
	p.err.Store(&err)
}

func (p *fakePinger) Ping(ctx context.Context) error {
	p.calls.Add(1)
	return *p.err.Load().(*error)
}

func TestChecker_NotReadyBeforeFirstCheck(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := NewChecker(logger, time.Second)

	assert.False(t, c.Ready())
	assert.NotEmpty(t, c.LastError())
}

func TestChecker_Check(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := NewChecker(logger, time.Second)
	db := newFakePinger(nil)
	cache := newFakePinger(nil)
	c.Add("database", db)
	c.Add("redis", cache)

	require.NoError(t, c.Check(context.Background()))
	assert.True(t, c.Ready())
	assert.Empty(t, c.LastError())

	cache.set(errors.New("connection refused"))
	err := c.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: connection refused")
	assert.False(t, c.Ready())
	assert.Contains(t, c.LastError(), "redis")

	cache.set(nil)
	require.NoError(t, c.Check(context.Background()))
	assert.True(t, c.Ready())
}

func TestChecker_NoDependenciesIsReady(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := NewChecker(logger, time.Second)

	require.NoError(t, c.Check(context.Background()))
	assert.True(t, c.Ready())
}

func TestChecker_StartRunsInitialCheck(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := NewChecker(logger, time.Second)
	db := newFakePinger(nil)
	c.Add("database", db)

	require.NoError(t, c.Start("@every 1h"))
	defer c.Stop()

	assert.Eventually(t, c.Ready, time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, db.calls.Load(), int32(1))

	assert.Error(t, c.Start("@every 1h"))
}

func TestChecker_InvalidSchedule(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := NewChecker(logger, time.Second)

	err := c.Start("not a schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid health schedule")
}
