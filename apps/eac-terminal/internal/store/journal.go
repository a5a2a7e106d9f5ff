// Package store はセッション・カードのジャーナルをValkeyに記録する。
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/config"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/apperr"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/model"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/valkey"
)

// Journal はregistry.JournalのValkey実装。
type Journal struct {
	client *redis.Client
	ttl    time.Duration
}

// NewJournal は新しいJournalを生成する。
func NewJournal(client *redis.Client) *Journal {
	return &Journal{client: client, ttl: config.SessionJournalTTL}
}

// SessionCreated はセッションレコードを書き込む。
func (j *Journal) SessionCreated(ctx context.Context, rec *model.SessionRecord) error {
	return j.putSession(ctx, rec)
}

// SessionUpdated はセッションレコードを上書きし、TTLを延長する。
func (j *Journal) SessionUpdated(ctx context.Context, rec *model.SessionRecord) error {
	return j.putSession(ctx, rec)
}

func (j *Journal) putSession(ctx context.Context, rec *model.SessionRecord) error {
	key := KeyPrefixSession + rec.Token
	pipe := j.client.TxPipeline()
	pipe.HSet(ctx, key, StructToMap(rec))
	pipe.Expire(ctx, key, j.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return wrap("HSET", key, err)
	}
	return nil
}

// SessionDestroyed はセッションレコードを削除する。
func (j *Journal) SessionDestroyed(ctx context.Context, token string) error {
	if err := j.client.Del(ctx, KeyPrefixSession+token).Err(); err != nil {
		return wrap("DEL", KeyPrefixSession+token, err)
	}
	return nil
}

// CardAdded はカードレコードを書き込み、インデックスに追加する。
func (j *Journal) CardAdded(ctx context.Context, rec *model.CardRecord) error {
	pipe := j.client.TxPipeline()
	pipe.HSet(ctx, KeyPrefixCard+rec.Key, StructToMap(rec))
	pipe.ZAdd(ctx, KeyCardIndex, redis.Z{Score: float64(rec.AddedAt), Member: rec.Key})
	if _, err := pipe.Exec(ctx); err != nil {
		return wrap("HSET", KeyPrefixCard+rec.Key, err)
	}
	return nil
}

// CardRemoved はカードレコードとインデックスを削除する。
func (j *Journal) CardRemoved(ctx context.Context, key string) error {
	pipe := j.client.TxPipeline()
	pipe.Del(ctx, KeyPrefixCard+key)
	pipe.ZRem(ctx, KeyCardIndex, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return wrap("DEL", KeyPrefixCard+key, err)
	}
	return nil
}

// GetSession はセッションレコードを取得する。存在しない場合はErrSessionNotFoundを返す。
func (j *Journal) GetSession(ctx context.Context, token string) (*model.SessionRecord, error) {
	m, err := j.client.HGetAll(ctx, KeyPrefixSession+token).Result()
	if err != nil {
		return nil, wrap("HGETALL", KeyPrefixSession+token, err)
	}
	if len(m) == 0 {
		return nil, apperr.ErrSessionNotFound
	}
	var rec model.SessionRecord
	if err := MapToStruct(m, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValkeyCommand, err)
	}
	return &rec, nil
}

// ListCards はカードレコードを追加順に返す。インデックスに残った欠損キーは読み飛ばす。
func (j *Journal) ListCards(ctx context.Context) ([]*model.CardRecord, error) {
	keys, err := j.client.ZRange(ctx, KeyCardIndex, 0, -1).Result()
	if err != nil {
		return nil, wrap("ZRANGE", KeyCardIndex, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	pipe := j.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.HGetAll(ctx, KeyPrefixCard+k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, wrap("HGETALL", KeyPrefixCard, err)
	}

	out := make([]*model.CardRecord, 0, len(keys))
	for _, cmd := range cmds {
		m := cmd.Val()
		if len(m) == 0 {
			continue
		}
		var rec model.CardRecord
		if err := MapToStruct(m, &rec); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrValkeyCommand, err)
		}
		out = append(out, &rec)
	}
	return out, nil
}

// Ping は接続を確認する。
func (j *Journal) Ping(ctx context.Context) error {
	if err := j.client.Ping(ctx).Err(); err != nil {
		return wrap("PING", "", err)
	}
	return nil
}

// wrap はValkeyのエラーを接続エラーとコマンドエラーに分類する。
func wrap(op, key string, err error) error {
	sentinel := apperr.ErrValkeyCommand
	if valkey.IsConnectionError(err) {
		sentinel = apperr.ErrValkeyConnection
	}
	return apperr.NewValkeyError(op, key, fmt.Errorf("%w: %v", sentinel, err))
}
