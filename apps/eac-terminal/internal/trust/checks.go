// Package trust はTR-03112 3.4.4のチャネル結合チェックを実装する。
package trust

import (
	"bytes"
	"crypto"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"log/slog"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
)

// EIDServerLabel はeIDサーバー証明書のログ上の名前。
const EIDServerLabel = "eID-Server"

// ServerCertificate はTCトークン取得時に観測したURLとTLSサーバー証明書（DER）の組。
type ServerCertificate struct {
	URL         string
	Certificate []byte
}

// Inputs はチェックに必要なセッション由来の値。
type Inputs struct {
	// SkipChecks はすべてのチェックを無効化する（検証・試験環境のみ）
	SkipChecks bool
	// SameChannel はeIDサーバーとの通信が端末と同一TLSチャネルであることを示す
	SameChannel bool
	// EIDServerCertificate はeIDサーバーとのTLS確立時に観測したサーバー証明書
	EIDServerCertificate []byte
	// TCTokenURL は有効化トークンのURL
	TCTokenURL string
	// TCTokenServerCertificates はTCトークン取得時に観測した証明書。nilは未記録を表す
	TCTokenServerCertificates []ServerCertificate
}

// Perform は3つのチェックをすべて実行する。SkipChecksが真の場合は警告を記録して何もしない。
func Perform(desc *cvc.Description, in Inputs) error {
	if in.SkipChecks {
		slog.Warn("TR-03112 3.4.4チェックを無効化して続行",
			"event_id", "EAC_CHECKS_SKIPPED",
		)
		return nil
	}
	if err := CheckEIDServerCertificate(desc, in); err != nil {
		return err
	}
	if err := CheckTCTokenServerCertificates(desc, in.TCTokenServerCertificates); err != nil {
		return err
	}
	return CheckSameOrigin(in.TCTokenURL, desc.SubjectURL)
}

// CheckEIDServerCertificate はeIDサーバー証明書が宣言済み通信証明書に含まれることを検査する。
// 同一チャネルの場合は検査しない。
func CheckEIDServerCertificate(desc *cvc.Description, in Inputs) error {
	if in.SameChannel {
		return nil
	}
	if len(in.EIDServerCertificate) == 0 {
		return &CheckError{Check: CheckNameEIDServer, Reason: "no eID-Server certificate observed"}
	}
	if !IsInCommCertificates(in.EIDServerCertificate, desc.CommCertificates, EIDServerLabel) {
		return &CheckError{Check: CheckNameEIDServer, Reason: "eID-Server certificate not in certificate description"}
	}
	return nil
}

// CheckTCTokenServerCertificates はTCトークン取得時のすべての証明書が宣言済み通信証明書に含まれることを検査する。
// certsがnilの場合は失敗、空の場合は成功とする。
func CheckTCTokenServerCertificates(desc *cvc.Description, certs []ServerCertificate) error {
	if certs == nil {
		return &CheckError{Check: CheckNameTCTokenServer, Reason: "no TC Token server certificates recorded"}
	}
	for _, sc := range certs {
		label, err := OriginKey(sc.URL)
		if err != nil {
			return &CheckError{Check: CheckNameTCTokenServer, Reason: err.Error()}
		}
		if !IsInCommCertificates(sc.Certificate, desc.CommCertificates, label) {
			return &CheckError{Check: CheckNameTCTokenServer, Reason: "certificate of " + label + " not in certificate description"}
		}
	}
	return nil
}

// IsInCommCertificates は証明書のハッシュが宣言済みハッシュ集合に含まれるかを返す。
// ハッシュアルゴリズムは格納ハッシュの長さから選ぶ。labelはログ用。
func IsInCommCertificates(certDER []byte, hashes [][]byte, label string) bool {
	for _, want := range hashes {
		h, ok := hashForLength(len(want))
		if !ok {
			slog.Debug("通信証明書ハッシュ長が不明",
				"event_id", "EAC_COMM_CERT_HASH_UNKNOWN",
				"name", label,
				"length", len(want),
			)
			continue
		}
		hasher := h.New()
		hasher.Write(certDER)
		if bytes.Equal(hasher.Sum(nil), want) {
			slog.Debug("通信証明書一致",
				"event_id", "EAC_COMM_CERT_MATCH",
				"name", label,
			)
			return true
		}
	}
	return false
}

func hashForLength(n int) (crypto.Hash, bool) {
	switch n {
	case 20:
		return crypto.SHA1, true
	case 28:
		return crypto.SHA224, true
	case 32:
		return crypto.SHA256, true
	case 48:
		return crypto.SHA384, true
	case 64:
		return crypto.SHA512, true
	default:
		return 0, false
	}
}
