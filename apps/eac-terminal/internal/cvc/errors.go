package cvc

import "errors"

// 構造解析エラー
var (
	// ErrMalformedCertificate はCV証明書のTLV構造が不正な場合のエラー
	ErrMalformedCertificate = errors.New("malformed CV certificate")

	// ErrMalformedCHAT はCHATのエンコードが不正な場合のエラー
	ErrMalformedCHAT = errors.New("malformed CHAT")

	// ErrMalformedDescription はCertificateDescriptionのエンコードが不正な場合のエラー
	ErrMalformedDescription = errors.New("malformed certificate description")

	// ErrInvalidOID はOIDをDERエンコードできない場合のエラー
	ErrInvalidOID = errors.New("invalid object identifier")
)

// 検証エラー
var (
	// ErrEmptyChain は証明書チェーンが空の場合のエラー
	ErrEmptyChain = errors.New("certificate chain is empty")

	// ErrChainBroken はCAR/CHRの連結が成立しない場合のエラー
	ErrChainBroken = errors.New("certificate chain is broken")

	// ErrUnsupportedTerminalRole は端末証明書のロールが認証端末でない場合のエラー
	ErrUnsupportedTerminalRole = errors.New("unsupported terminal role")

	// ErrCertificateMismatch は端末証明書とCertificateDescriptionの結び付けが一致しない場合のエラー
	ErrCertificateMismatch = errors.New("certificate description does not match terminal certificate")

	// ErrAuthorizationExceeded は要求CHATが上限CHATを超える権限を含む場合のエラー
	ErrAuthorizationExceeded = errors.New("requested access rights exceed terminal authorization")

	// ErrUnsupportedAlgorithm は公開鍵OIDからハッシュアルゴリズムを決定できない場合のエラー
	ErrUnsupportedAlgorithm = errors.New("unsupported terminal authentication algorithm")
)
