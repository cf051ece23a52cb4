package listing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type emitted struct {
	mu     sync.Mutex
	values []string
}

func (e *emitted) add(v string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values = append(e.values, v)
}

func (e *emitted) get() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.values...)
}

func TestDebouncerEmitsLastValue(t *testing.T) {
	defer goleak.VerifyNone(t)

	var got emitted
	d := NewDebouncer(30*time.Millisecond, got.add)

	d.Push("a")
	d.Push("ap")
	d.Push("app")

	require.Eventually(t, func() bool { return len(got.get()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"app"}, got.get())
}

func TestDebouncerRestartsOnPush(t *testing.T) {
	defer goleak.VerifyNone(t)

	var got emitted
	d := NewDebouncer(100*time.Millisecond, got.add)

	d.Push("p")
	time.Sleep(20 * time.Millisecond)
	d.Push("pi")
	time.Sleep(20 * time.Millisecond)
	d.Push("pie")
	assert.Empty(t, got.get(), "nothing is emitted while input keeps changing")

	require.Eventually(t, func() bool { return len(got.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"pie"}, got.get())
}

func TestDebouncerStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var got emitted
	d := NewDebouncer(20*time.Millisecond, got.add)

	d.Push("pie")
	d.Stop()
	d.Push("cake")
	time.Sleep(60 * time.Millisecond)

	assert.Empty(t, got.get())
}

func TestDebouncerFlush(t *testing.T) {
	defer goleak.VerifyNone(t)

	var got emitted
	d := NewDebouncer(time.Hour, got.add)

	d.Push("pie")
	d.Flush()
	d.Flush()

	assert.Equal(t, []string{"pie"}, got.get())
	d.Stop()
}

func TestDebouncerWithoutDelay(t *testing.T) {
	var got emitted
	d := NewDebouncer(0, got.add)

	d.Push("a")
	d.Push("b")

	assert.Equal(t, []string{"a", "b"}, got.get())
}
