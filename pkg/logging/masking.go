// Package logging はログ関連のユーティリティを提供する。
package logging

import "encoding/hex"

// MaskToken はセッショントークンをマスキングする。
// 先頭8文字 + マスク + 末尾4文字
// 例: 6f1c2a4e-0b7d-4c1e-9a55-3e2f1d0c9b8a → 6f1c2a4e************************9b8a
// enabled=false の場合はマスキングせずにそのまま返す。
func MaskToken(token string, enabled bool) string {
	if !enabled {
		return token
	}
	return MaskPartial(token, 8, 4, '*')
}

// MaskHandle はスロットハンドル（バイト列）を16進文字列化してマスキングする。
// 先頭4文字と末尾2文字のみ残す。
func MaskHandle(handle []byte, enabled bool) string {
	s := hex.EncodeToString(handle)
	if !enabled {
		return s
	}
	return MaskPartial(s, 4, 2, '*')
}

// MaskPartial は文字列の一部をマスキングする。
// keepPrefix: 先頭から保持する文字数
// keepSuffix: 末尾から保持する文字数
// maskChar: マスキングに使用する文字
func MaskPartial(s string, keepPrefix, keepSuffix int, maskChar rune) string {
	runes := []rune(s)
	if len(runes) <= keepPrefix+keepSuffix {
		return s
	}

	for i := keepPrefix; i < len(runes)-keepSuffix; i++ {
		runes[i] = maskChar
	}
	return string(runes)
}

// Masker はマスキング設定を保持する構造体。
type Masker struct {
	enabled bool
}

// NewMasker は新しいMaskerを生成する。
func NewMasker(enabled bool) *Masker {
	return &Masker{enabled: enabled}
}

// Token はセッショントークンをマスキングする。
func (m *Masker) Token(token string) string {
	return MaskToken(token, m.enabled)
}

// Handle はスロットハンドルをマスキングする。
func (m *Masker) Handle(handle []byte) string {
	return MaskHandle(handle, m.enabled)
}

// IsEnabled はマスキングが有効かどうかを返す。
func (m *Masker) IsEnabled() bool {
	return m.enabled
}
