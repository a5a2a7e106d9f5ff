// Package registry はセッションと認識済みカードのプロセス内レジストリを提供する。
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/apperr"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/logging"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/model"
)

// DefaultMaxTokenAttempts はトークン衝突時の生成試行回数の既定値。
const DefaultMaxTokenAttempts = 8

// Journal はレジストリの変更を外部に記録する。
// 記録の失敗はログに残すのみで、レジストリの操作は失敗させない。
type Journal interface {
	SessionCreated(ctx context.Context, rec *model.SessionRecord) error
	SessionUpdated(ctx context.Context, rec *model.SessionRecord) error
	SessionDestroyed(ctx context.Context, token string) error
	CardAdded(ctx context.Context, rec *model.CardRecord) error
	CardRemoved(ctx context.Context, key string) error
}

// TokenGenerator はセッショントークンを生成する。
type TokenGenerator func() (string, error)

// NewUUIDToken はUUIDv4のセッショントークンを生成する。
func NewUUIDToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Registry はセッションとカードエントリを保持する。並行利用に対して安全。
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*StateEntry
	cards    []*CardEntry

	journal     Journal
	newToken    TokenGenerator
	maxAttempts int
	now         func() time.Time
	fields      *logging.CommonFields
}

// Option はRegistryの設定関数。
type Option func(*Registry)

// WithJournal はジャーナルを設定する。
func WithJournal(j Journal) Option {
	return func(r *Registry) { r.journal = j }
}

// WithTokenGenerator はトークン生成器を設定する。
func WithTokenGenerator(g TokenGenerator) Option {
	return func(r *Registry) { r.newToken = g }
}

// WithMaxTokenAttempts はトークン生成の試行回数上限を設定する。
func WithMaxTokenAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithClock は時刻取得関数を設定する。
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithLogFields はログフィールド生成器を設定する。
func WithLogFields(f *logging.CommonFields) Option {
	return func(r *Registry) { r.fields = f }
}

// New は新しいRegistryを生成する。
func New(opts ...Option) *Registry {
	r := &Registry{
		sessions:    make(map[string]*StateEntry),
		newToken:    NewUUIDToken,
		maxAttempts: DefaultMaxTokenAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fields == nil {
		r.fields = logging.NewCommonFields(logging.NewMasker(true))
	}
	return r
}

// AddCard はカードエントリを追加する。
// 同一 (context, ifdName, slot) が既に存在する場合はErrDuplicateCardEntryを返し、レジストリは変更しない。
func (r *Registry) AddCard(ctx context.Context, ctxHandle []byte, ifdName string, slot int, cardType string) (*CardEntry, error) {
	r.mu.Lock()
	for _, c := range r.cards {
		if c.Matches(ctxHandle, ifdName, slot) {
			r.mu.Unlock()
			slog.Error("カードエントリの重複追加",
				"event_id", "REGISTRY_DUPLICATE_CARD",
				"ifd_name", ifdName,
				"slot_index", slot,
			)
			return nil, fmt.Errorf("%w: device=%s slot=%d", apperr.ErrDuplicateCardEntry, ifdName, slot)
		}
	}
	entry := &CardEntry{
		Context:   slices.Clone(ctxHandle),
		IFDName:   ifdName,
		SlotIndex: slot,
		CardType:  cardType,
		AddedAt:   r.now(),
	}
	r.cards = append(r.cards, entry)
	r.mu.Unlock()

	if r.journal != nil {
		r.logJournalError("CardAdded", r.journal.CardAdded(ctx, entry.Record()))
	}
	return entry, nil
}

// RemoveCard はカードエントリを削除し、そのカードに接続していたセッションの接続を解除する。
// 削除した場合はtrueを返す。
func (r *Registry) RemoveCard(ctx context.Context, ctxHandle []byte, ifdName string, slot int) bool {
	removed := r.removeCards(func(c *CardEntry) bool { return c.Matches(ctxHandle, ifdName, slot) })
	r.afterRemove(ctx, removed)
	return len(removed) > 0
}

// RemoveTerminal はリーダー切断時に、そのリーダーのカードエントリをすべて削除する。
func (r *Registry) RemoveTerminal(ctx context.Context, ctxHandle []byte, ifdName string) int {
	removed := r.removeCards(func(c *CardEntry) bool {
		return c.IFDName == ifdName && string(c.Context) == string(ctxHandle)
	})
	r.afterRemove(ctx, removed)
	return len(removed)
}

func (r *Registry) removeCards(match func(*CardEntry) bool) []*CardEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []*CardEntry
	kept := r.cards[:0]
	for _, c := range r.cards {
		if match(c) {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	clear(r.cards[len(kept):])
	r.cards = kept

	for _, s := range r.sessions {
		if cc := s.ConnectedCard(); cc != nil && slices.Contains(removed, cc.Card) {
			s.RemoveCard()
		}
	}
	return removed
}

func (r *Registry) afterRemove(ctx context.Context, removed []*CardEntry) {
	if r.journal == nil {
		return
	}
	for _, c := range removed {
		r.logJournalError("CardRemoved", r.journal.CardRemoved(ctx, c.Key()))
	}
}

// GetCardEntry はカードエントリを返す。存在しない場合はok=false。
func (r *Registry) GetCardEntry(ctxHandle []byte, ifdName string, slot int) (*CardEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cards {
		if c.Matches(ctxHandle, ifdName, slot) {
			return c, true
		}
	}
	return nil, false
}

// ListCardEntries はカードエントリを追加順に返す。
func (r *Registry) ListCardEntries() []*CardEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.cards)
}

// CreateSession は新しいトークンでセッションを生成する。
// トークンが衝突した場合は再生成し、上限回数に達した場合はErrTokenSpaceExhaustedを返す。
func (r *Registry) CreateSession(ctx context.Context) (*StateEntry, error) {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		token, err := r.newToken()
		if err != nil {
			return nil, fmt.Errorf("generate session token: %w", err)
		}
		entry, err := r.CreateSessionWithToken(ctx, token)
		if err == nil {
			return entry, nil
		}
		slog.Warn("生成したセッショントークンが既に存在するため再生成",
			"event_id", "REGISTRY_TOKEN_COLLISION",
			"attempt", attempt,
		)
	}
	return nil, fmt.Errorf("%w: %d attempts", apperr.ErrTokenSpaceExhausted, r.maxAttempts)
}

// CreateSessionWithToken は指定トークンでセッションを生成する。
// 既に存在する場合はErrSessionAlreadyExistsを返す。
func (r *Registry) CreateSessionWithToken(ctx context.Context, token string) (*StateEntry, error) {
	r.mu.Lock()
	if _, ok := r.sessions[token]; ok {
		r.mu.Unlock()
		return nil, apperr.ErrSessionAlreadyExists
	}
	entry := &StateEntry{Token: token, CreatedAt: r.now()}
	r.sessions[token] = entry
	r.mu.Unlock()

	slog.Info("セッション生成", r.fields.SessionLogFields("REGISTRY_SESSION_CREATED", token)...)
	if r.journal != nil {
		r.logJournalError("SessionCreated", r.journal.SessionCreated(ctx, model.NewSessionRecord(token, entry.CreatedAt.Unix())))
	}
	return entry, nil
}

// GetSession はセッションを返す。存在しない場合はErrSessionNotFoundを返す。
func (r *Registry) GetSession(token string) (*StateEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[token]
	if !ok {
		return nil, apperr.ErrSessionNotFound
	}
	return entry, nil
}

// DestroySession はセッションを削除し、進行中のプロトコルを破棄する。削除した場合はtrueを返す。
func (r *Registry) DestroySession(ctx context.Context, token string) bool {
	r.mu.Lock()
	entry, ok := r.sessions[token]
	delete(r.sessions, token)
	r.mu.Unlock()
	if !ok {
		return false
	}
	entry.close()

	slog.Info("セッション破棄", r.fields.SessionLogFields("REGISTRY_SESSION_DESTROYED", token)...)
	if r.journal != nil {
		r.logJournalError("SessionDestroyed", r.journal.SessionDestroyed(ctx, token))
	}
	return true
}

// SessionCount は有効なセッション数を返す。
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// RecordStage はセッションの段階をジャーナルに記録する。
func (r *Registry) RecordStage(ctx context.Context, entry *StateEntry, stage model.Stage, resultMinor string) {
	if r.journal == nil {
		return
	}
	rec := model.NewSessionRecord(entry.Token, entry.CreatedAt.Unix())
	rec.Stage = stage
	rec.ResultMinor = resultMinor
	rec.UpdatedAt = r.now().Unix()
	if cc := entry.ConnectedCard(); cc != nil {
		rec.CardKey = cc.Card.Key()
	}
	r.logJournalError("SessionUpdated", r.journal.SessionUpdated(ctx, rec))
}

func (r *Registry) logJournalError(op string, err error) {
	if err == nil {
		return
	}
	slog.Warn("ジャーナル記録に失敗",
		"event_id", "REGISTRY_JOURNAL_ERR",
		"operation", op,
		"error", err,
	)
}
