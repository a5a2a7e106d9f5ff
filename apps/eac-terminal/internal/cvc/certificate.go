package cvc

import (
	"bytes"
	"crypto"
	_ "crypto/sha1"   // SHA-1 登録
	_ "crypto/sha256" // SHA-224/256 登録
	_ "crypto/sha512" // SHA-384/512 登録
	"encoding/asn1"
	"fmt"
	"time"
)

// 証明書拡張OID
var (
	// OIDDescription は端末証明書拡張 id-description（CertificateDescriptionのハッシュ）
	OIDDescription = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 3, 1, 3, 1}
	// OIDSector は端末証明書拡張 id-sector
	OIDSector = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 3, 1, 3, 2}
)

// TA公開鍵OID（id-TA-ECDSA / id-TA-RSA）
var (
	oidTAECDSA = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 2, 2}
	oidTARSA   = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 2, 1}
)

// PublicKey はCV証明書の公開鍵（7F49）。
// 要素はコンテキストタグ番号（0x81→1, 0x86→6）で保持する。
type PublicKey struct {
	OID      asn1.ObjectIdentifier
	Elements map[int][]byte
}

// Point はECDSA公開点（86）を返す。
func (k PublicKey) Point() []byte {
	return k.Elements[6]
}

// Extension は証明書拡張（73）。
type Extension struct {
	OID    asn1.ObjectIdentifier
	Values map[int][]byte
}

// Certificate はCard Verifiable Certificate。
type Certificate struct {
	Raw          []byte // 7F21全体
	BodyTLV      []byte // 7F4E全体
	SignatureTLV []byte // 5F37全体

	ProfileIdentifier byte
	CAR               PublicKeyReference
	CHR               PublicKeyReference
	PublicKey         PublicKey
	CHAT              *CHAT
	EffectiveDate     time.Time
	ExpirationDate    time.Time
	Extensions        []Extension
	Signature         []byte
}

// ParseCertificate はDERエンコードされたCV証明書を解析する。
func ParseCertificate(der []byte) (*Certificate, error) {
	outer, rest, err := readTLV(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCertificate, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedCertificate)
	}
	return parseCertificateValue(outer)
}

// SplitCertificates は連結されたCV証明書列を個々の証明書に分割する。
func SplitCertificates(b []byte) ([]*Certificate, error) {
	var out []*Certificate
	for len(b) > 0 {
		v, rest, err := readTLV(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCertificate, err)
		}
		cert, err := parseCertificateValue(v)
		if err != nil {
			return nil, err
		}
		out = append(out, cert)
		b = rest
	}
	return out, nil
}

func parseCertificateValue(outer asn1.RawValue) (*Certificate, error) {
	if err := expect(outer, asn1.ClassApplication, tagCVCertificate, true); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCertificate, err)
	}
	parts, err := children(outer.Bytes)
	if err != nil || len(parts) != 2 {
		return nil, fmt.Errorf("%w: expected body and signature", ErrMalformedCertificate)
	}
	body, sig := parts[0], parts[1]
	if err := expect(body, asn1.ClassApplication, tagCertBody, true); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCertificate, err)
	}
	if err := expect(sig, asn1.ClassApplication, tagSignature, false); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCertificate, err)
	}

	c := &Certificate{
		Raw:          outer.FullBytes,
		BodyTLV:      body.FullBytes,
		SignatureTLV: sig.FullBytes,
		Signature:    sig.Bytes,
	}
	if err := c.parseBody(body.Bytes); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Certificate) parseBody(b []byte) error {
	elems, err := children(b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCertificate, err)
	}
	// CPI, CAR, PK, CHR, CHAT, 有効開始日, 有効期限 は必須。拡張は任意。
	if len(elems) != 7 && len(elems) != 8 {
		return fmt.Errorf("%w: body has %d elements", ErrMalformedCertificate, len(elems))
	}
	fields := []struct {
		tag      int
		compound bool
	}{
		{tagProfileID, false}, {tagCAR, false}, {tagPublicKey, true}, {tagCHR, false},
		{tagCHAT, true}, {tagEffectiveDate, false}, {tagExpirationDate, false}, {tagExtensions, true},
	}
	for i, e := range elems {
		if err := expect(e, asn1.ClassApplication, fields[i].tag, fields[i].compound); err != nil {
			return fmt.Errorf("%w: body element %d: %v", ErrMalformedCertificate, i, err)
		}
	}

	if len(elems[0].Bytes) != 1 {
		return fmt.Errorf("%w: profile identifier", ErrMalformedCertificate)
	}
	c.ProfileIdentifier = elems[0].Bytes[0]
	if c.CAR, err = ParsePublicKeyReference(elems[1].Bytes); err != nil {
		return err
	}
	if c.PublicKey, err = parsePublicKey(elems[2].Bytes); err != nil {
		return err
	}
	if c.CHR, err = ParsePublicKeyReference(elems[3].Bytes); err != nil {
		return err
	}
	if c.CHAT, err = parseCHATValue(elems[4]); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCertificate, err)
	}
	if c.EffectiveDate, err = parseDate(elems[5].Bytes); err != nil {
		return err
	}
	if c.ExpirationDate, err = parseDate(elems[6].Bytes); err != nil {
		return err
	}
	if len(elems) == 8 {
		if c.Extensions, err = parseExtensions(elems[7].Bytes); err != nil {
			return err
		}
	}
	return nil
}

func parsePublicKey(b []byte) (PublicKey, error) {
	elems, err := children(b)
	if err != nil || len(elems) == 0 {
		return PublicKey{}, fmt.Errorf("%w: public key", ErrMalformedCertificate)
	}
	oid, err := ParseOID(elems[0])
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: public key OID: %v", ErrMalformedCertificate, err)
	}
	pk := PublicKey{OID: oid, Elements: make(map[int][]byte, len(elems)-1)}
	for _, e := range elems[1:] {
		if e.Class != asn1.ClassContextSpecific {
			return PublicKey{}, fmt.Errorf("%w: public key element class %d", ErrMalformedCertificate, e.Class)
		}
		pk.Elements[e.Tag] = e.Bytes
	}
	return pk, nil
}

func parseExtensions(b []byte) ([]Extension, error) {
	elems, err := children(b)
	if err != nil {
		return nil, fmt.Errorf("%w: extensions: %v", ErrMalformedCertificate, err)
	}
	out := make([]Extension, 0, len(elems))
	for _, e := range elems {
		if err := expect(e, asn1.ClassApplication, tagDiscTemplate, true); err != nil {
			return nil, fmt.Errorf("%w: extension: %v", ErrMalformedCertificate, err)
		}
		inner, err := children(e.Bytes)
		if err != nil || len(inner) == 0 {
			return nil, fmt.Errorf("%w: extension content", ErrMalformedCertificate)
		}
		oid, err := ParseOID(inner[0])
		if err != nil {
			return nil, fmt.Errorf("%w: extension OID: %v", ErrMalformedCertificate, err)
		}
		ext := Extension{OID: oid, Values: make(map[int][]byte, len(inner)-1)}
		for _, v := range inner[1:] {
			ext.Values[v.Tag] = v.Bytes
		}
		out = append(out, ext)
	}
	return out, nil
}

// parseDate は6桁アンパックBCD（YYMMDD）の日付を解析する。
func parseDate(b []byte) (time.Time, error) {
	if len(b) != 6 {
		return time.Time{}, fmt.Errorf("%w: date length %d", ErrMalformedCertificate, len(b))
	}
	var d [6]int
	for i, v := range b {
		if v > 9 {
			return time.Time{}, fmt.Errorf("%w: date digit out of range", ErrMalformedCertificate)
		}
		d[i] = int(v)
	}
	year := 2000 + d[0]*10 + d[1]
	month := time.Month(d[2]*10 + d[3])
	day := d[4]*10 + d[5]
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: invalid date", ErrMalformedCertificate)
	}
	return t, nil
}

// EncodeDate は日付を6桁アンパックBCDにエンコードする。
func EncodeDate(t time.Time) []byte {
	y, m, d := t.Year()%100, int(t.Month()), t.Day()
	return []byte{byte(y / 10), byte(y % 10), byte(m / 10), byte(m % 10), byte(d / 10), byte(d % 10)}
}

// Extension はOIDに一致する拡張を返す。
func (c *Certificate) Extension(oid asn1.ObjectIdentifier) (Extension, bool) {
	for _, e := range c.Extensions {
		if e.OID.Equal(oid) {
			return e, true
		}
	}
	return Extension{}, false
}

// Role はCHATから導出した証明書保有者ロールを返す。
func (c *Certificate) Role() Role {
	return c.CHAT.Role()
}

// VerifyData はPSO:Verify Certificateに渡すボディと署名の連結を返す。
func (c *Certificate) VerifyData() []byte {
	out := make([]byte, 0, len(c.BodyTLV)+len(c.SignatureTLV))
	out = append(out, c.BodyTLV...)
	return append(out, c.SignatureTLV...)
}

// HashForKeyOID はTA公開鍵OIDから署名に用いるハッシュアルゴリズムを返す。
func HashForKeyOID(oid asn1.ObjectIdentifier) (crypto.Hash, error) {
	if len(oid) != len(oidTAECDSA)+1 {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, oid)
	}
	prefix, last := oid[:len(oid)-1], oid[len(oid)-1]
	switch {
	case prefix.Equal(oidTAECDSA):
		switch last {
		case 1:
			return crypto.SHA1, nil
		case 2:
			return crypto.SHA224, nil
		case 3:
			return crypto.SHA256, nil
		case 4:
			return crypto.SHA384, nil
		case 5:
			return crypto.SHA512, nil
		}
	case prefix.Equal(oidTARSA):
		switch last {
		case 1, 3:
			return crypto.SHA1, nil
		case 2, 4:
			return crypto.SHA256, nil
		case 5, 6:
			return crypto.SHA512, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, oid)
}

// VerifyAgainstDescription は端末証明書のid-description拡張に格納されたハッシュと
// CertificateDescription原文のハッシュが一致することを検査する。
func VerifyAgainstDescription(cert *Certificate, desc *Description) error {
	ext, ok := cert.Extension(OIDDescription)
	if !ok {
		return fmt.Errorf("%w: terminal certificate has no description extension", ErrCertificateMismatch)
	}
	want, ok := ext.Values[0]
	if !ok {
		return fmt.Errorf("%w: description extension has no hash", ErrCertificateMismatch)
	}
	h, err := HashForKeyOID(cert.PublicKey.OID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCertificateMismatch, err)
	}
	hasher := h.New()
	hasher.Write(desc.Raw)
	if got := hasher.Sum(nil); !bytes.Equal(got, want) {
		return fmt.Errorf("%w: description hash differs", ErrCertificateMismatch)
	}
	return nil
}
