package rate

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/alon-poshil/authgate/secondary"
)

// cmdCounter is a go-redis hook that counts Redis round-trips.
type cmdCounter struct {
	commands  atomic.Int64
	pipelines atomic.Int64
}

func (h *cmdCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *cmdCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.commands.Add(1)
		return next(ctx, cmd)
	}
}

func (h *cmdCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		h.pipelines.Add(1)
		h.commands.Add(int64(len(cmds)))
		return next(ctx, cmds)
	}
}

func (h *cmdCounter) Reset() {
	h.commands.Store(0)
	h.pipelines.Store(0)
}

func newCountedLimiter(t *testing.T, max int) (*Limiter, *cmdCounter) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	counter := &cmdCounter{}
	rdb.AddHook(counter)

	// connection setup may issue extra commands on first use
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("warmup ping: %v", err)
	}
	counter.Reset()

	clock := newFakeClock()
	l, err := New(secondary.NewRedisStorage(rdb, ""), Config{Window: time.Minute, Max: max}, clock.Now)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, counter
}

// An admitted request costs one read and one write.
func TestAdmitAllowedRedisBudget(t *testing.T) {
	l, counter := newCountedLimiter(t, 2)

	d, err := l.Admit(context.Background(), "198.51.100.4")
	if err != nil || !d.Allowed {
		t.Fatalf("expected allowed, got %+v err=%v", d, err)
	}
	if got := counter.commands.Load(); got != 2 {
		t.Fatalf("admitted request used %d commands, want 2", got)
	}
	if got := counter.pipelines.Load(); got != 0 {
		t.Fatalf("expected no pipelines, got %d", got)
	}
}

// A denied request only reads.
func TestAdmitDeniedRedisBudget(t *testing.T) {
	l, counter := newCountedLimiter(t, 1)
	ctx := context.Background()

	if _, err := l.Admit(ctx, "198.51.100.4"); err != nil {
		t.Fatalf("first Admit: %v", err)
	}
	counter.Reset()

	d, err := l.Admit(ctx, "198.51.100.4")
	if err != nil || d.Allowed {
		t.Fatalf("expected denied, got %+v err=%v", d, err)
	}
	if got := counter.commands.Load(); got != 1 {
		t.Fatalf("denied request used %d commands, want 1", got)
	}
}
