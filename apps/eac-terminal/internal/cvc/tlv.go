package cvc

import (
	"encoding/asn1"
	"fmt"
)

// CV証明書で使用するBER-TLVタグ（ISO/IEC 7816-4 アプリケーションクラス）
const (
	tagCVCertificate  = 0x21 // 7F21
	tagCertBody       = 0x4E // 7F4E
	tagProfileID      = 0x29 // 5F29
	tagCAR            = 0x02 // 42
	tagPublicKey      = 0x49 // 7F49
	tagCHR            = 0x20 // 5F20
	tagCHAT           = 0x4C // 7F4C
	tagDiscretionary  = 0x13 // 53
	tagEffectiveDate  = 0x25 // 5F25
	tagExpirationDate = 0x24 // 5F24
	tagExtensions     = 0x05 // 65
	tagDiscTemplate   = 0x13 // 73
	tagSignature      = 0x37 // 5F37
)

// tlv はBER-TLVを1要素読み取り、残りのバイト列を返す。
func readTLV(b []byte) (asn1.RawValue, []byte, error) {
	var v asn1.RawValue
	rest, err := asn1.Unmarshal(b, &v)
	if err != nil {
		return asn1.RawValue{}, nil, err
	}
	return v, rest, nil
}

// children は構築型TLVの内容を子要素に分解する。
func children(body []byte) ([]asn1.RawValue, error) {
	var out []asn1.RawValue
	for len(body) > 0 {
		v, rest, err := readTLV(body)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		body = rest
	}
	return out, nil
}

// expect はTLVのクラス・タグ・構築型フラグを検査する。
func expect(v asn1.RawValue, class, tag int, compound bool) error {
	if v.Class != class || v.Tag != tag || v.IsCompound != compound {
		return fmt.Errorf("unexpected tag class=%d tag=0x%X compound=%v, want class=%d tag=0x%X",
			v.Class, v.Tag, v.IsCompound, class, tag)
	}
	return nil
}

// encodeTLV はTLVをエンコードする。タグ番号31以上は複数バイトのタグになる。
// RawValueのMarshalが失敗するのはタグ番号が負の場合のみで、呼び出し側の誤りとしてpanicする。
func encodeTLV(class, tag int, compound bool, body []byte) []byte {
	if tag < 0 {
		panic(fmt.Sprintf("cvc: negative TLV tag %d", tag))
	}
	b, err := asn1.Marshal(asn1.RawValue{Class: class, Tag: tag, IsCompound: compound, Bytes: body})
	if err != nil {
		panic(fmt.Sprintf("cvc: encode TLV tag 0x%X: %v", tag, err))
	}
	return b
}

// EncodeApplication はアプリケーションクラスのTLVをエンコードする。
// tagは非負のタグ番号定数であること（負の場合はpanicする）。
func EncodeApplication(tag int, compound bool, body []byte) []byte {
	return encodeTLV(asn1.ClassApplication, tag, compound, body)
}

// EncodeContext はコンテキスト固有クラスのTLVをエンコードする。
// tagは非負のタグ番号定数であること（負の場合はpanicする）。
func EncodeContext(tag int, compound bool, body []byte) []byte {
	return encodeTLV(asn1.ClassContextSpecific, tag, compound, body)
}

// EncodeOID はOIDをUNIVERSAL 06としてエンコードする。
func EncodeOID(oid asn1.ObjectIdentifier) ([]byte, error) {
	b, err := asn1.Marshal(oid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v", ErrInvalidOID, oid, err)
	}
	return b, nil
}

// OIDContent はOIDのDER値部分（タグと長さを除いたもの）を返す。
func OIDContent(oid asn1.ObjectIdentifier) ([]byte, error) {
	b, err := EncodeOID(oid)
	if err != nil {
		return nil, err
	}
	v, _, err := readTLV(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOID, err)
	}
	return v.Bytes, nil
}

// ParseOID はUNIVERSAL 06のTLVからOIDを取り出す。
func ParseOID(v asn1.RawValue) (asn1.ObjectIdentifier, error) {
	var oid asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(v.FullBytes, &oid); err != nil {
		return nil, err
	}
	return oid, nil
}
