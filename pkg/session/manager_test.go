package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/callable/zoo"
	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/dsl"
	"github.com/aretw0/wca/pkg/fsm"
	"github.com/aretw0/wca/pkg/session"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingPong(t *testing.T, proc callable.Processor) *fsm.State {
	t.Helper()
	b := dsl.New()
	b.State("ping").Process(proc).On("pong").When(zoo.NewAlways()).Say("pong").Done()
	b.State("pong").On("ping").When(zoo.NewAlways()).Say("ping").Done()
	start, err := b.Build("ping")
	require.NoError(t, err)
	return start
}

func TestManager_IndependentSessions(t *testing.T) {
	ctx := context.Background()
	mgr, err := session.NewManager(ctx, pingPong(t, zoo.NewEmpty()), session.WithLogger(slogt.New(t)))
	require.NoError(t, err)

	inst, snap, err := mgr.Feed(ctx, "a", domain.Frame{})
	require.NoError(t, err)
	assert.Equal(t, "pong", inst.Audio)
	assert.Equal(t, "pong", snap.State)
	assert.Equal(t, uint64(1), snap.Frames)

	snap, err = mgr.Create("b")
	require.NoError(t, err)
	assert.Equal(t, "ping", snap.State)

	snap, err = mgr.Current("a")
	require.NoError(t, err)
	assert.Equal(t, "pong", snap.State)

	assert.Equal(t, []string{"a", "b"}, mgr.List())
}

func TestManager_ResetAndDelete(t *testing.T) {
	ctx := context.Background()
	mgr, err := session.NewManager(ctx, pingPong(t, zoo.NewEmpty()))
	require.NoError(t, err)

	_, _, err = mgr.Feed(ctx, "a", domain.Frame{})
	require.NoError(t, err)

	snap, err := mgr.Reset("a")
	require.NoError(t, err)
	assert.Equal(t, "ping", snap.State)

	require.NoError(t, mgr.Delete("a"))
	_, err = mgr.Current("a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, mgr.Delete("a"), domain.ErrSessionNotFound)
	_, err = mgr.Reset("a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_PreparesOnce(t *testing.T) {
	var prepares atomic.Int32
	proc := &preparedProcessor{prepares: &prepares}

	ctx := context.Background()
	mgr, err := session.NewManager(ctx, pingPong(t, proc))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, _, err := mgr.Feed(ctx, fmt.Sprintf("s%d", i), domain.Frame{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), prepares.Load())
}

func TestManager_PrepareFailure(t *testing.T) {
	var prepares atomic.Int32
	boom := errors.New("no backend")
	proc := &preparedProcessor{prepares: &prepares, err: boom}

	_, err := session.NewManager(context.Background(), pingPong(t, proc))
	assert.ErrorIs(t, err, boom)
}

func TestManager_SerializesPerSession(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	slow := &callable.ProcessorFunc{
		Name: "Slow",
		Fn: func(context.Context, domain.Frame) (map[string]any, error) {
			n := inFlight.Add(1)
			for {
				old := maxInFlight.Load()
				if n <= old || maxInFlight.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return nil, nil
		},
	}

	b := dsl.New()
	b.State("loop").Process(slow)
	start, err := b.Build("loop")
	require.NoError(t, err)

	ctx := context.Background()
	mgr, err := session.NewManager(ctx, start)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := mgr.Feed(ctx, "shared", domain.Frame{ID: uint64(i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight.Load())
	snap, err := mgr.Current("shared")
	require.NoError(t, err)
	assert.Equal(t, uint64(20), snap.Frames)
}

type preparedProcessor struct {
	prepares *atomic.Int32
	err      error
}

func (p *preparedProcessor) CallableName() string { return "Prepared" }
func (p *preparedProcessor) Args() callable.Args  { return callable.Args{} }

func (p *preparedProcessor) Prepare(context.Context) error {
	p.prepares.Add(1)
	return p.err
}

func (p *preparedProcessor) Process(context.Context, domain.Frame) (map[string]any, error) {
	return nil, nil
}
