package engine

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"
)

func TestHandle_AwaitBlocksUntilBound(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := NewHandle()
		m := NewMock()

		h.Bind(context.Background(), func(context.Context) (Engine, error) {
			time.Sleep(2 * time.Second)
			return m, nil
		})

		start := time.Now()
		e, err := h.Await(context.Background())
		if err != nil {
			t.Fatalf("Await() error = %v", err)
		}
		if e != m {
			t.Error("Await() returned a different engine")
		}
		if waited := time.Since(start); waited != 2*time.Second {
			t.Errorf("waited %v, want 2s", waited)
		}
	})
}

func TestHandle_BindOnlyOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := NewHandle()
		first, second := NewMock(), NewMock()
		calls := 0

		h.Bind(context.Background(), func(context.Context) (Engine, error) {
			calls++
			return first, nil
		})
		h.Bind(context.Background(), func(context.Context) (Engine, error) {
			calls++
			return second, nil
		})

		e, _ := h.Await(context.Background())
		synctest.Wait()
		if calls != 1 {
			t.Errorf("acquire called %d times, want 1", calls)
		}
		if e != first {
			t.Error("second Bind replaced the engine")
		}
	})
}

func TestHandle_BindFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := NewHandle()
		boom := errors.New("no audio device")

		h.Bind(context.Background(), func(context.Context) (Engine, error) {
			return nil, boom
		})

		_, err := h.Await(context.Background())
		if !errors.Is(err, boom) {
			t.Errorf("Await() error = %v, want %v", err, boom)
		}
	})
}

func TestHandle_AwaitHonorsContext(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := NewHandle()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err := h.Await(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Await() error = %v, want DeadlineExceeded", err)
		}
	})
}

func TestHandle_CloseClosesEngine(t *testing.T) {
	m := NewMock()
	h := Bound(m)

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !m.IsClosed() {
		t.Error("engine not closed")
	}
	if _, err := h.Await(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Await() after Close error = %v, want ErrClosed", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestHandle_CloseBeforeBindReleasesLateEngine(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := NewHandle()
		m := NewMock()
		release := make(chan struct{})

		h.Bind(context.Background(), func(context.Context) (Engine, error) {
			<-release
			return m, nil
		})

		_ = h.Close()
		if _, err := h.Await(context.Background()); !errors.Is(err, ErrNotBound) {
			t.Errorf("Await() error = %v, want ErrNotBound", err)
		}

		close(release)
		synctest.Wait()
		if !m.IsClosed() {
			t.Error("late engine was not closed")
		}
	})
}
