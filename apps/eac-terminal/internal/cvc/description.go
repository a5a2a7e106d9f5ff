package cvc

import (
	"bytes"
	"encoding/asn1"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// 利用規約の記述形式OID（BSI TR-03110 Part 4 C.3.1）
var (
	OIDTermsPlain = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 3, 1, 3, 1, 1}
	OIDTermsHTML  = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 3, 1, 3, 1, 2}
	OIDTermsPDF   = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 3, 1, 3, 1, 3}
)

// TermsFormat は利用規約の記述形式。
type TermsFormat int

const (
	TermsPlainText TermsFormat = iota + 1
	TermsHTML
	TermsPDF
)

// Description はCertificateDescription。
type Description struct {
	Raw              []byte
	DescriptionType  asn1.ObjectIdentifier
	IssuerName       string
	IssuerURL        string
	SubjectName      string
	SubjectURL       string
	TermsFormat      TermsFormat
	TermsOfUsage     []byte
	RedirectURL      string
	CommCertificates [][]byte
}

// ParseDescription はDERエンコードされたCertificateDescriptionを解析する。
func ParseDescription(der []byte) (*Description, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, casn1.SEQUENCE) || !input.Empty() {
		return nil, fmt.Errorf("%w: not a single SEQUENCE", ErrMalformedDescription)
	}

	d := &Description{Raw: bytes.Clone(der)}
	if !seq.ReadASN1ObjectIdentifier(&d.DescriptionType) {
		return nil, fmt.Errorf("%w: descriptionType", ErrMalformedDescription)
	}
	switch {
	case d.DescriptionType.Equal(OIDTermsPlain):
		d.TermsFormat = TermsPlainText
	case d.DescriptionType.Equal(OIDTermsHTML):
		d.TermsFormat = TermsHTML
	case d.DescriptionType.Equal(OIDTermsPDF):
		d.TermsFormat = TermsPDF
	default:
		return nil, fmt.Errorf("%w: unknown descriptionType %s", ErrMalformedDescription, d.DescriptionType)
	}

	var err error
	if d.IssuerName, err = readExplicitString(&seq, 1, false); err != nil {
		return nil, fmt.Errorf("%w: issuerName: %v", ErrMalformedDescription, err)
	}
	if d.IssuerURL, err = readExplicitString(&seq, 2, true); err != nil {
		return nil, fmt.Errorf("%w: issuerURL: %v", ErrMalformedDescription, err)
	}
	if d.SubjectName, err = readExplicitString(&seq, 3, false); err != nil {
		return nil, fmt.Errorf("%w: subjectName: %v", ErrMalformedDescription, err)
	}
	if d.SubjectURL, err = readExplicitString(&seq, 4, true); err != nil {
		return nil, fmt.Errorf("%w: subjectURL: %v", ErrMalformedDescription, err)
	}

	var terms cryptobyte.String
	if !seq.ReadASN1(&terms, explicitTag(5)) {
		return nil, fmt.Errorf("%w: termsOfUsage", ErrMalformedDescription)
	}
	var termsBody cryptobyte.String
	var termsTag casn1.Tag
	if !terms.ReadAnyASN1(&termsBody, &termsTag) {
		return nil, fmt.Errorf("%w: termsOfUsage content", ErrMalformedDescription)
	}
	d.TermsOfUsage = bytes.Clone(termsBody)

	if d.RedirectURL, err = readExplicitString(&seq, 6, true); err != nil {
		return nil, fmt.Errorf("%w: redirectURL: %v", ErrMalformedDescription, err)
	}

	var comm cryptobyte.String
	var hasComm bool
	if !seq.ReadOptionalASN1(&comm, &hasComm, explicitTag(7)) {
		return nil, fmt.Errorf("%w: commCertificates", ErrMalformedDescription)
	}
	if hasComm {
		var set cryptobyte.String
		if !comm.ReadASN1(&set, casn1.SET) {
			return nil, fmt.Errorf("%w: commCertificates SET", ErrMalformedDescription)
		}
		for !set.Empty() {
			var h cryptobyte.String
			if !set.ReadASN1(&h, casn1.OCTET_STRING) {
				return nil, fmt.Errorf("%w: commCertificates entry", ErrMalformedDescription)
			}
			d.CommCertificates = append(d.CommCertificates, bytes.Clone(h))
		}
	}
	if !seq.Empty() {
		return nil, fmt.Errorf("%w: trailing elements", ErrMalformedDescription)
	}
	return d, nil
}

func explicitTag(n uint8) casn1.Tag {
	return casn1.Tag(n).ContextSpecific().Constructed()
}

// readExplicitString は [n] EXPLICIT の文字列型要素を読む。
// URLはPrintableStringが規定だが、IA5String/UTF8Stringも受け付ける。
func readExplicitString(s *cryptobyte.String, n uint8, optional bool) (string, error) {
	var wrapped cryptobyte.String
	present := true
	if optional {
		if !s.ReadOptionalASN1(&wrapped, &present, explicitTag(n)) {
			return "", fmt.Errorf("invalid [%d]", n)
		}
		if !present {
			return "", nil
		}
	} else if !s.ReadASN1(&wrapped, explicitTag(n)) {
		return "", fmt.Errorf("missing [%d]", n)
	}
	var body cryptobyte.String
	var tag casn1.Tag
	if !wrapped.ReadAnyASN1(&body, &tag) {
		return "", fmt.Errorf("invalid [%d] content", n)
	}
	switch tag {
	case casn1.UTF8String, casn1.PrintableString, casn1.IA5String:
		return string(body), nil
	default:
		return "", fmt.Errorf("unexpected string tag %d", tag)
	}
}

// TermsText はプレーンテキスト/HTML形式の利用規約を文字列で返す。PDFの場合は空文字列。
func (d *Description) TermsText() string {
	if d.TermsFormat == TermsPDF {
		return ""
	}
	return string(d.TermsOfUsage)
}

// HasCommCertificate は宣言済み通信証明書ハッシュにhashが含まれるかを返す。
func (d *Description) HasCommCertificate(hash []byte) bool {
	for _, h := range d.CommCertificates {
		if bytes.Equal(h, hash) {
			return true
		}
	}
	return false
}
