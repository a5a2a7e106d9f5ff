package dyncontext

import (
	"context"
	"sync"
)

// Promise は一度だけ値を受け渡すスロット。
// Deliverは一度のみ成功し、待機側はDerefでブロック、DerefNonblockingで非ブロック参照する。
type Promise[T any] struct {
	mu    sync.Mutex
	done  chan struct{}
	value T
	set   bool
}

// NewPromise は新しいPromiseを生成する。
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Deliver は値を格納し、待機中のすべてのDerefを解放する。
// 既に格納済みの場合はErrAlreadyDeliveredを返す。
func (p *Promise[T]) Deliver(v T) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.set {
		return ErrAlreadyDelivered
	}
	p.value = v
	p.set = true
	close(p.done)
	return nil
}

// Deref は値が格納されるかctxが終了するまでブロックする。
func (p *Promise[T]) Deref(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// DerefNonblocking は格納済みの値を返す。未格納の場合はok=false。
func (p *Promise[T]) DerefNonblocking() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.set
}

// IsDelivered は値が格納済みかどうかを返す。
func (p *Promise[T]) IsDelivered() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set
}

// Done は値の格納時にクローズされるチャネルを返す。
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}
