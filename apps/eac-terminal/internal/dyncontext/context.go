// Package dyncontext は認証試行単位の共有コンテキストを提供する。
// 試行ワーカーと対話側ワーカーの双方から読み書きされるため、
// すべての操作はキー単位で排他される。複数キーにまたがるトランザクションは提供しない。
package dyncontext

import (
	"fmt"
	"sync"
)

// Context は認証試行スコープのキー・値ストア。
type Context struct {
	mu       sync.Mutex
	values   map[string]any
	promises map[string]any
}

// New は空のContextを生成する。
func New() *Context {
	return &Context{
		values:   make(map[string]any),
		promises: make(map[string]any),
	}
}

// Put は値を格納する。
func (c *Context) Put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = v
}

// Get は値を取得する。
func (c *Context) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// Remove は値を削除し、削除前の値を返す。
func (c *Context) Remove(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	delete(c.values, key)
	return v, ok
}

// Value は型付きで値を取得する。
// 未格納の場合はok=false、型が異なる場合はErrTypeMismatchを返す。
func Value[T any](c *Context, key string) (T, bool, error) {
	var zero T
	v, ok := c.Get(key)
	if !ok || v == nil {
		return zero, false, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, false, fmt.Errorf("%w: key=%s, got %T", ErrTypeMismatch, key, v)
	}
	return t, true, nil
}

// GetPromise はkeyに対応するPromiseを返す。未生成の場合は生成して登録する。
// 同一キーに異なる型で要求した場合はErrTypeMismatchを返す。
func GetPromise[T any](c *Context, key string) (*Promise[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.promises[key]; ok {
		p, ok := existing.(*Promise[T])
		if !ok {
			return nil, fmt.Errorf("%w: promise key=%s, got %T", ErrTypeMismatch, key, existing)
		}
		return p, nil
	}
	p := NewPromise[T]()
	c.promises[key] = p
	return p, nil
}

// MustPromise はGetPromiseのエラーをpanicに変換する。
// キーと型の組がコード上で固定されている箇所でのみ使用する。
func MustPromise[T any](c *Context, key string) *Promise[T] {
	p, err := GetPromise[T](c, key)
	if err != nil {
		panic(err)
	}
	return p
}
