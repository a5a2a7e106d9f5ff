// Package valkey はセッションジャーナル用Valkeyクライアントの生成と判定関数を提供する。
package valkey

import (
	"net"
	"strconv"
	"time"
)

// Options はジャーナル接続の設定値。
type Options struct {
	Addr           string // host:port
	Password       string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PoolSize       int
	MinIdleConns   int
}

// JournalOptions はジャーナル書き込み向けの初期値を返す。
// 認証処理の付帯処理のため読み書きは500msで打ち切る。
func JournalOptions() *Options {
	return &Options{
		Addr:           "localhost:6379",
		ConnectTimeout: 2 * time.Second,
		ReadTimeout:    500 * time.Millisecond,
		WriteTimeout:   500 * time.Millisecond,
		PoolSize:       5,
		MinIdleConns:   1,
	}
}

// WithAddr は接続先を設定する。
func (o *Options) WithAddr(addr string) *Options {
	o.Addr = addr
	return o
}

// WithPassword は認証パスワードを設定する。
func (o *Options) WithPassword(password string) *Options {
	o.Password = password
	return o
}

// WithTimeouts は接続・読み取り・書き込みのタイムアウトを設定する。
func (o *Options) WithTimeouts(connect, read, write time.Duration) *Options {
	o.ConnectTimeout, o.ReadTimeout, o.WriteTimeout = connect, read, write
	return o
}

// WithPool はコネクションプールの大きさを設定する。
func (o *Options) WithPool(size, minIdle int) *Options {
	o.PoolSize, o.MinIdleConns = size, minIdle
	return o
}

// BuildAddr はhostとportを連結する。IPv6アドレスは角括弧で囲む。
func BuildAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
