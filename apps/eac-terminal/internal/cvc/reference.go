package cvc

import "fmt"

// PublicKeyReference はCAR/CHRとして使われる公開鍵参照。
// 国コード(2) | 保有者ニーモニック(可変) | シーケンス番号(5) の連結。
type PublicKeyReference string

const (
	countryCodeLen    = 2
	sequenceNumberLen = 5
)

// ParsePublicKeyReference はバイト列から公開鍵参照を生成する。
func ParsePublicKeyReference(b []byte) (PublicKeyReference, error) {
	if len(b) < countryCodeLen+sequenceNumberLen || len(b) > 16 {
		return "", fmt.Errorf("%w: public key reference length %d", ErrMalformedCertificate, len(b))
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return "", fmt.Errorf("%w: public key reference is not printable", ErrMalformedCertificate)
		}
	}
	return PublicKeyReference(b), nil
}

// CountryCode は国コードを返す。
func (r PublicKeyReference) CountryCode() string {
	if len(r) < countryCodeLen {
		return ""
	}
	return string(r[:countryCodeLen])
}

// HolderMnemonic は保有者ニーモニックを返す。
func (r PublicKeyReference) HolderMnemonic() string {
	if len(r) < countryCodeLen+sequenceNumberLen {
		return ""
	}
	return string(r[countryCodeLen : len(r)-sequenceNumberLen])
}

// SequenceNumber はシーケンス番号を返す。
func (r PublicKeyReference) SequenceNumber() string {
	if len(r) < sequenceNumberLen {
		return ""
	}
	return string(r[len(r)-sequenceNumberLen:])
}

// Bytes はエンコード済みバイト列を返す。
func (r PublicKeyReference) Bytes() []byte {
	return []byte(r)
}
