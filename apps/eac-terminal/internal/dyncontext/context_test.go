package dyncontext

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestContext_PutGetRemove(t *testing.T) {
	c := New()
	c.Put("pin_id", 3)

	v, ok := c.Get("pin_id")
	if !ok || v != 3 {
		t.Errorf("Get() = %v, %v, want 3, true", v, ok)
	}

	old, ok := c.Remove("pin_id")
	if !ok || old != 3 {
		t.Errorf("Remove() = %v, %v, want 3, true", old, ok)
	}
	if _, ok := c.Get("pin_id"); ok {
		t.Error("Get() after Remove should return ok=false")
	}
}

func TestValue(t *testing.T) {
	c := New()
	c.Put("flag", true)
	c.Put("nilval", nil)

	got, ok, err := Value[bool](c, "flag")
	if err != nil || !ok || !got {
		t.Errorf("Value[bool]() = %v, %v, %v", got, ok, err)
	}

	if _, ok, err := Value[bool](c, "missing"); ok || err != nil {
		t.Errorf("missing key: ok=%v err=%v", ok, err)
	}
	if _, ok, err := Value[bool](c, "nilval"); ok || err != nil {
		t.Errorf("nil value: ok=%v err=%v", ok, err)
	}
	if _, _, err := Value[string](c, "flag"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("type mismatch: err=%v, want ErrTypeMismatch", err)
	}
}

func TestGetPromise_SameInstance(t *testing.T) {
	c := New()
	p1, err := GetPromise[int](c, "p")
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	p2, err := GetPromise[int](c, "p")
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if p1 != p2 {
		t.Error("GetPromise should return the same instance for the same key")
	}
	if _, err := GetPromise[string](c, "p"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("err = %v, want ErrTypeMismatch", err)
	}
}

func TestContext_ConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Put("k", i)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = c.Get("k")
			_ = MustPromise[int](c, "p")
		}()
	}
	wg.Wait()
}

func TestPromise_DeliverDeref(t *testing.T) {
	p := NewPromise[string]()
	if p.IsDelivered() {
		t.Fatal("new promise should not be delivered")
	}
	if _, ok := p.DerefNonblocking(); ok {
		t.Fatal("DerefNonblocking() on empty promise should return ok=false")
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = p.Deliver("done")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := p.Deref(ctx)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if v != "done" {
		t.Errorf("Deref() = %q, want %q", v, "done")
	}
	if !p.IsDelivered() {
		t.Error("IsDelivered() = false after Deliver")
	}
}

func TestPromise_DoubleDeliver(t *testing.T) {
	p := NewPromise[int]()
	if err := p.Deliver(1); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if err := p.Deliver(2); !errors.Is(err, ErrAlreadyDelivered) {
		t.Errorf("second Deliver() err = %v, want ErrAlreadyDelivered", err)
	}
	if v, _ := p.DerefNonblocking(); v != 1 {
		t.Errorf("value = %d, want 1 (first delivery wins)", v)
	}
}

func TestPromise_DerefContextCancel(t *testing.T) {
	p := NewPromise[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Deref(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Deref() err = %v, want context.Canceled", err)
	}
}
