package eac

import (
	"encoding/asn1"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// プロトコルOIDの接頭辞（BSI TR-03110 Part 3 A.1.1）
var (
	oidCA   = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 3}
	oidPACE = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 4}
)

// SecurityInfo はSecurityInfosの一要素。
type SecurityInfo struct {
	Protocol asn1.ObjectIdentifier
	Version  int
	// KeyID は省略時-1
	KeyID int
}

// SecurityInfos はEF.CardAccessのSecurityInfos。
type SecurityInfos struct {
	Raw   []byte
	Infos []SecurityInfo
}

// ParseSecurityInfos はEF.CardAccess（SET OF SecurityInfo）を解析する。
// requiredDataがINTEGERでない要素（公開鍵情報等）はバージョン0として保持する。
func ParseSecurityInfos(b []byte) (*SecurityInfos, error) {
	input := cryptobyte.String(b)
	var set cryptobyte.String
	if !input.ReadASN1(&set, casn1.SET) || !input.Empty() {
		return nil, fmt.Errorf("%w: EF.CardAccess is not a SET", ErrMalformedSecurityInfos)
	}

	out := &SecurityInfos{Raw: b}
	for !set.Empty() {
		var seq cryptobyte.String
		if !set.ReadASN1(&seq, casn1.SEQUENCE) {
			return nil, fmt.Errorf("%w: SecurityInfo is not a SEQUENCE", ErrMalformedSecurityInfos)
		}
		info := SecurityInfo{KeyID: -1}
		if !seq.ReadASN1ObjectIdentifier(&info.Protocol) {
			return nil, fmt.Errorf("%w: SecurityInfo protocol", ErrMalformedSecurityInfos)
		}
		if seq.PeekASN1Tag(casn1.INTEGER) {
			if !seq.ReadASN1Integer(&info.Version) {
				return nil, fmt.Errorf("%w: SecurityInfo version", ErrMalformedSecurityInfos)
			}
		} else if !seq.SkipASN1(peekTag(seq)) {
			return nil, fmt.Errorf("%w: SecurityInfo requiredData", ErrMalformedSecurityInfos)
		}
		if seq.PeekASN1Tag(casn1.INTEGER) {
			if !seq.ReadASN1Integer(&info.KeyID) {
				return nil, fmt.Errorf("%w: SecurityInfo keyId", ErrMalformedSecurityInfos)
			}
		}
		out.Infos = append(out.Infos, info)
	}
	return out, nil
}

// peekTag は先頭要素のタグを返す。
func peekTag(s cryptobyte.String) casn1.Tag {
	if len(s) == 0 {
		return 0
	}
	return casn1.Tag(s[0])
}

// ChipAuthentication はCA（id-CA-*）のSecurityInfoを返す。
// 複数ある場合はバージョンが最も大きいものを選ぶ。
func (s *SecurityInfos) ChipAuthentication() (SecurityInfo, error) {
	var best SecurityInfo
	found := false
	for _, info := range s.Infos {
		if !hasPrefix(info.Protocol, oidCA) || len(info.Protocol) != len(oidCA)+2 {
			continue
		}
		if !found || info.Version > best.Version {
			best = info
			found = true
		}
	}
	if !found {
		return SecurityInfo{}, ErrNoChipAuthenticationInfo
	}
	return best, nil
}

// PACE はPACEのSecurityInfo群を返す。
func (s *SecurityInfos) PACE() []SecurityInfo {
	var out []SecurityInfo
	for _, info := range s.Infos {
		if hasPrefix(info.Protocol, oidPACE) && len(info.Protocol) > len(oidPACE)+1 {
			out = append(out, info)
		}
	}
	return out
}

func hasPrefix(oid, prefix asn1.ObjectIdentifier) bool {
	return len(oid) >= len(prefix) && oid[:len(prefix)].Equal(prefix)
}
