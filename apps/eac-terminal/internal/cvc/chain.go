package cvc

import (
	"bytes"
	"fmt"
)

// Chain はリンク証明書から端末証明書までの順序付きCV証明書列。
// chain[i].CAR == chain[i-1].CHR を満たし、末尾が端末証明書となる。
type Chain struct {
	certs []*Certificate
}

// ParseChain はDERエンコードされたCV証明書群を解析し、CAR/CHRの連結順に並べる。
// 入力順序は問わない。連結順に並べられない場合は入力順を維持し、Verifyで検出する。
func ParseChain(raw [][]byte) (*Chain, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyChain
	}
	certs := make([]*Certificate, 0, len(raw))
	for i, der := range raw {
		c, err := ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i, err)
		}
		certs = append(certs, c)
	}
	return NewChain(certs), nil
}

// NewChain は解析済み証明書からChainを生成する。重複する証明書は除く。
func NewChain(certs []*Certificate) *Chain {
	return &Chain{certs: order(dedupe(certs))}
}

func dedupe(certs []*Certificate) []*Certificate {
	out := make([]*Certificate, 0, len(certs))
next:
	for _, c := range certs {
		for _, seen := range out {
			if bytes.Equal(seen.Raw, c.Raw) {
				continue next
			}
		}
		out = append(out, c)
	}
	return out
}

// order はCAR→CHRの連結を辿って証明書を並べる。
func order(certs []*Certificate) []*Certificate {
	holders := make(map[PublicKeyReference]bool, len(certs))
	for _, c := range certs {
		holders[c.CHR] = true
	}
	var start *Certificate
	for _, c := range certs {
		// 自己署名CVCAまたは集合外の発行者を持つ証明書が起点
		if c.CAR == c.CHR || !holders[c.CAR] {
			if start != nil {
				return certs
			}
			start = c
		}
	}
	if start == nil {
		return certs
	}

	ordered := []*Certificate{start}
	used := map[*Certificate]bool{start: true}
	for cur := start; len(ordered) < len(certs); {
		var next *Certificate
		for _, c := range certs {
			if !used[c] && c.CAR == cur.CHR {
				next = c
				break
			}
		}
		if next == nil {
			return certs
		}
		ordered = append(ordered, next)
		used[next] = true
		cur = next
	}
	return ordered
}

// Certificates は証明書列のコピーを返す。
func (c *Chain) Certificates() []*Certificate {
	return append([]*Certificate(nil), c.certs...)
}

// Len は証明書数を返す。
func (c *Chain) Len() int {
	return len(c.certs)
}

// TerminalCertificate は末尾の端末証明書を返す。
func (c *Chain) TerminalCertificate() *Certificate {
	if len(c.certs) == 0 {
		return nil
	}
	return c.certs[len(c.certs)-1]
}

// Verify はCAR/CHRの連結と端末証明書のロールを検査する。
func (c *Chain) Verify() error {
	if len(c.certs) == 0 {
		return ErrEmptyChain
	}
	for i := 1; i < len(c.certs); i++ {
		if c.certs[i].CAR != c.certs[i-1].CHR {
			return fmt.Errorf("%w: certificate %d CAR %q does not match CHR %q",
				ErrChainBroken, i, c.certs[i].CAR, c.certs[i-1].CHR)
		}
	}
	return RequireAuthenticationTerminal(c.TerminalCertificate().CHAT)
}

// FromCAR はcarで発行された証明書から端末証明書までの部分チェーンを返す。
// 該当する証明書が無い場合はErrChainBrokenを返す。
func (c *Chain) FromCAR(car PublicKeyReference) (*Chain, error) {
	for i, cert := range c.certs {
		if cert.CAR == car {
			return &Chain{certs: append([]*Certificate(nil), c.certs[i:]...)}, nil
		}
	}
	return nil, fmt.Errorf("%w: no certificate issued by %q", ErrChainBroken, car)
}

// Extend は追加証明書を加えて並べ直したChainを返す。
func (c *Chain) Extend(additional []*Certificate) *Chain {
	all := append(c.Certificates(), additional...)
	return NewChain(all)
}
