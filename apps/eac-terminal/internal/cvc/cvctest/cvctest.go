// Package cvctest はCV証明書・CertificateDescriptionのテスト用フィクスチャを生成する。
package cvctest

import (
	"crypto"
	"crypto/sha256"
	"encoding/asn1"
	"time"

	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
)

// OIDECDSASHA256 は id-TA-ECDSA-SHA-256。
var OIDECDSASHA256 = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 2, 2, 3}

// Cert はCV証明書の生成パラメータ。
type Cert struct {
	CAR         string
	CHR         string
	CHAT        *cvc.CHAT
	KeyOID      asn1.ObjectIdentifier // 省略時 OIDECDSASHA256
	Point       []byte                // 省略時 固定値
	Description []byte                // 指定時 id-description拡張にハッシュを格納
	Effective   time.Time
	Expiration  time.Time
	Signature   []byte
}

// Build はDERエンコードされたCV証明書を生成する。
func (c Cert) Build() []byte {
	keyOID := c.KeyOID
	if keyOID == nil {
		keyOID = OIDECDSASHA256
	}
	point := c.Point
	if point == nil {
		point = append([]byte{0x04}, make([]byte, 64)...)
	}
	eff, exp := c.Effective, c.Expiration
	if eff.IsZero() {
		eff = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if exp.IsZero() {
		exp = eff.AddDate(1, 0, 0)
	}
	sig := c.Signature
	if sig == nil {
		sig = make([]byte, 64)
	}

	var body []byte
	body = append(body, cvc.EncodeApplication(0x29, false, []byte{0x00})...)
	body = append(body, cvc.EncodeApplication(0x02, false, []byte(c.CAR))...)
	pk := append(mustOID(keyOID), cvc.EncodeContext(6, false, point)...)
	body = append(body, cvc.EncodeApplication(0x49, true, pk)...)
	body = append(body, cvc.EncodeApplication(0x20, false, []byte(c.CHR))...)
	body = append(body, c.CHAT.Bytes()...)
	body = append(body, cvc.EncodeApplication(0x25, false, cvc.EncodeDate(eff))...)
	body = append(body, cvc.EncodeApplication(0x24, false, cvc.EncodeDate(exp))...)
	if c.Description != nil {
		h, err := cvc.HashForKeyOID(keyOID)
		if err != nil {
			h = crypto.SHA256
		}
		hasher := h.New()
		hasher.Write(c.Description)
		ext := append(mustOID(cvc.OIDDescription), cvc.EncodeContext(0, false, hasher.Sum(nil))...)
		body = append(body, cvc.EncodeApplication(0x05, true, cvc.EncodeApplication(0x13, true, ext))...)
	}

	inner := append(cvc.EncodeApplication(0x4E, true, body), cvc.EncodeApplication(0x37, false, sig)...)
	return cvc.EncodeApplication(0x21, true, inner)
}

func mustOID(oid asn1.ObjectIdentifier) []byte {
	b, err := cvc.EncodeOID(oid)
	if err != nil {
		panic(err)
	}
	return b
}

// MustCHAT はNewCHATのエラーをpanicに変換する。
func MustCHAT(role cvc.Role, rights ...cvc.AccessRight) *cvc.CHAT {
	c, err := cvc.NewCHAT(role, rights...)
	if err != nil {
		panic(err)
	}
	return c
}

// Desc はCertificateDescriptionの生成パラメータ。
type Desc struct {
	IssuerName       string
	IssuerURL        string
	SubjectName      string
	SubjectURL       string
	Terms            string
	RedirectURL      string
	CommCertificates [][]byte // nilの場合は[7]を省略する
}

// Build はDERエンコードされたCertificateDescription（プレーンテキスト規約）を生成する。
func (d Desc) Build() []byte {
	var b cryptobyte.Builder
	b.AddASN1(casn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(cvc.OIDTermsPlain)
		addExplicit(b, 1, casn1.UTF8String, d.IssuerName)
		if d.IssuerURL != "" {
			addExplicit(b, 2, casn1.PrintableString, d.IssuerURL)
		}
		addExplicit(b, 3, casn1.UTF8String, d.SubjectName)
		if d.SubjectURL != "" {
			addExplicit(b, 4, casn1.PrintableString, d.SubjectURL)
		}
		addExplicit(b, 5, casn1.UTF8String, d.Terms)
		if d.RedirectURL != "" {
			addExplicit(b, 6, casn1.PrintableString, d.RedirectURL)
		}
		if d.CommCertificates != nil {
			b.AddASN1(casn1.Tag(7).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
				b.AddASN1(casn1.SET, func(b *cryptobyte.Builder) {
					for _, h := range d.CommCertificates {
						b.AddASN1OctetString(h)
					}
				})
			})
		}
	})
	return b.BytesOrPanic()
}

func addExplicit(b *cryptobyte.Builder, n uint8, tag casn1.Tag, s string) {
	b.AddASN1(casn1.Tag(n).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
		b.AddASN1(tag, func(b *cryptobyte.Builder) {
			b.AddBytes([]byte(s))
		})
	})
}

// SHA256 はフィクスチャ用の通信証明書ハッシュを計算する。
func SHA256(der []byte) []byte {
	sum := sha256.Sum256(der)
	return sum[:]
}
