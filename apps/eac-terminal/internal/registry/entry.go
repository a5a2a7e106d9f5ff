package registry

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/eac"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/model"
)

// CardEntry はスロットに挿入された認識済みカード。
// (Context, IFDName, SlotIndex) の組で一意に識別される。
type CardEntry struct {
	Context   []byte
	IFDName   string
	SlotIndex int
	CardType  string
	AddedAt   time.Time
}

// Matches は識別子の組が一致するかを返す。
func (c *CardEntry) Matches(ctxHandle []byte, ifdName string, slot int) bool {
	return bytes.Equal(c.Context, ctxHandle) && c.IFDName == ifdName && c.SlotIndex == slot
}

// Key はジャーナル用のキーを返す。
func (c *CardEntry) Key() string {
	return CardKey(c.Context, c.IFDName, c.SlotIndex)
}

// Record はジャーナルレコードに変換する。
func (c *CardEntry) Record() *model.CardRecord {
	return &model.CardRecord{
		Key:       c.Key(),
		Context:   hex.EncodeToString(c.Context),
		IFDName:   c.IFDName,
		SlotIndex: c.SlotIndex,
		CardType:  c.CardType,
		AddedAt:   c.AddedAt.Unix(),
	}
}

// CardKey は識別子の組からキー文字列を生成する。
func CardKey(ctxHandle []byte, ifdName string, slot int) string {
	return fmt.Sprintf("%s/%s/%d", hex.EncodeToString(ctxHandle), ifdName, slot)
}

// ConnectedCard はセッションに接続されたカードとスロットハンドル。
type ConnectedCard struct {
	SlotHandle []byte
	Card       *CardEntry
}

// StateEntry はセッション単位の状態（プロトコルと接続カード）。
type StateEntry struct {
	Token     string
	CreatedAt time.Time

	mu       sync.Mutex
	protocol *eac.Protocol
	card     *ConnectedCard
}

// SetConnectedCard はカードを接続済みとして記録する。
func (s *StateEntry) SetConnectedCard(slotHandle []byte, card *CardEntry) *ConnectedCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.card = &ConnectedCard{SlotHandle: bytes.Clone(slotHandle), Card: card}
	return s.card
}

// ConnectedCard は接続中のカードを返す。未接続の場合はnil。
func (s *StateEntry) ConnectedCard() *ConnectedCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.card
}

// RemoveCard はカードの接続を解除する。
func (s *StateEntry) RemoveCard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.card = nil
}

// SetProtocol は認証プロトコルを設定する。既存のプロトコルは破棄される。
func (s *StateEntry) SetProtocol(p *eac.Protocol) {
	s.mu.Lock()
	old := s.protocol
	s.protocol = p
	s.mu.Unlock()
	if old != nil && old != p {
		old.Close()
	}
}

// Protocol は認証プロトコルを返す。未設定の場合はnil。
func (s *StateEntry) Protocol() *eac.Protocol {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.protocol
}

// close はプロトコルを破棄し接続を解除する。
func (s *StateEntry) close() {
	s.mu.Lock()
	p := s.protocol
	s.protocol = nil
	s.card = nil
	s.mu.Unlock()
	if p != nil {
		p.Close()
	}
}
