package runner

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boost-swap/pkg/store"
	"boost-swap/pkg/swap"
)

var statuses = swap.StatusTable{
	"INITIATED": {Step: 0},
	"FUNDED": {Step: 1, Notification: func(s *swap.Swap) swap.Notification {
		return swap.Notification{Message: "funded " + s.ID}
	}},
	"SUCCESS": {Step: 2, Terminal: true},
}

// scriptedDriver moves each swap along a fixed path, failing once where
// asked
type scriptedDriver struct {
	mu     sync.Mutex
	next   map[string]string
	failAt map[string]error
	calls  map[string]int
}

func newScriptedDriver() *scriptedDriver {
	return &scriptedDriver{
		next:   map[string]string{"INITIATED": "FUNDED", "FUNDED": "SUCCESS"},
		failAt: make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (d *scriptedDriver) PerformNextSwapAction(ctx context.Context, st swap.Store, network swap.Network, walletID string, s *swap.Swap) (*swap.Update, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls[s.ID]++
	if err, ok := d.failAt[s.Status]; ok {
		delete(d.failAt, s.Status)
		return nil, err
	}
	next, ok := d.next[s.Status]
	if !ok {
		return nil, nil
	}
	return &swap.Update{Status: next}, nil
}

func (d *scriptedDriver) Statuses() swap.StatusTable {
	return statuses
}

func newStore(t *testing.T, swaps ...*swap.Swap) *store.Storage {
	t.Helper()
	st, err := store.NewStorage(filepath.Join(t.TempDir(), "swaps.json"))
	require.NoError(t, err)
	for _, s := range swaps {
		require.NoError(t, st.Create(s))
	}
	return st
}

func TestStep(t *testing.T) {
	st := newStore(t, &swap.Swap{ID: "a", Status: "INITIATED"})

	var seen []string
	var messages []string
	r := New(newScriptedDriver(), st, WithObserver(func(s *swap.Swap, n *swap.Notification) {
		seen = append(seen, s.Status)
		if n != nil {
			messages = append(messages, n.Message)
		}
	}))

	s, changed, err := r.Step(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "FUNDED", s.Status)

	stored, err := st.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "FUNDED", stored.Status)

	assert.Equal(t, []string{"FUNDED"}, seen)
	assert.Equal(t, []string{"funded a"}, messages)

	_, _, err = r.Step(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStepTerminal(t *testing.T) {
	driver := newScriptedDriver()
	r := New(driver, newStore(t, &swap.Swap{ID: "a", Status: "SUCCESS"}))

	s, changed, err := r.Step(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "SUCCESS", s.Status)
	assert.Zero(t, driver.calls["a"])
}

func TestRunRetriesErrors(t *testing.T) {
	driver := newScriptedDriver()
	driver.failAt["FUNDED"] = errors.New("agent timeout")
	r := New(driver, newStore(t, &swap.Swap{ID: "a", Status: "INITIATED"}), WithInterval(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := r.Run(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", s.Status)
	assert.Equal(t, 3, driver.calls["a"])
}

func TestRunStopsOnCancel(t *testing.T) {
	driver := newScriptedDriver()
	driver.next = map[string]string{}
	r := New(driver, newStore(t, &swap.Swap{ID: "a", Status: "INITIATED"}), WithInterval(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s, err := r.Run(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, s)
	assert.Equal(t, "INITIATED", s.Status)
}

func TestRunAll(t *testing.T) {
	st := newStore(t,
		&swap.Swap{ID: "a", Status: "INITIATED"},
		&swap.Swap{ID: "b", Status: "FUNDED"},
		&swap.Swap{ID: "c", Status: "SUCCESS"},
	)
	driver := newScriptedDriver()
	r := New(driver, st, WithInterval(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, r.RunAll(ctx))
	for _, id := range []string{"a", "b", "c"} {
		s, err := st.Get(id)
		require.NoError(t, err)
		assert.Equal(t, "SUCCESS", s.Status, id)
	}
	assert.Zero(t, driver.calls["c"])

	// nothing left to do
	assert.NoError(t, r.RunAll(ctx))
}
