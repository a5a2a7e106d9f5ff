package cvc

import (
	"encoding/asn1"
	"fmt"
	"math/bits"
	"strings"
)

// 端末種別OID（BSI TR-03110 Part 3 C.4）
var (
	OIDInspectionSystem       = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 3, 1, 2, 1}
	OIDAuthenticationTerminal = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 3, 1, 2, 2}
	OIDSignatureTerminal      = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 3, 1, 2, 3}
)

// TerminalType はCHATの端末種別。
type TerminalType int

const (
	TypeInspectionSystem TerminalType = iota + 1
	TypeAuthenticationTerminal
	TypeSignatureTerminal
)

// templateLen は端末種別ごとの権限テンプレート長（バイト）。
func (t TerminalType) templateLen() int {
	if t == TypeAuthenticationTerminal {
		return 5
	}
	return 1
}

// OID は端末種別のOIDを返す。
func (t TerminalType) OID() asn1.ObjectIdentifier {
	switch t {
	case TypeInspectionSystem:
		return OIDInspectionSystem
	case TypeSignatureTerminal:
		return OIDSignatureTerminal
	default:
		return OIDAuthenticationTerminal
	}
}

func terminalTypeFromOID(oid asn1.ObjectIdentifier) (TerminalType, bool) {
	switch {
	case oid.Equal(OIDAuthenticationTerminal):
		return TypeAuthenticationTerminal, true
	case oid.Equal(OIDInspectionSystem):
		return TypeInspectionSystem, true
	case oid.Equal(OIDSignatureTerminal):
		return TypeSignatureTerminal, true
	default:
		return 0, false
	}
}

// Role は証明書保有者のロール。
type Role int

const (
	RoleCVCA Role = iota + 1
	RoleDVOfficial
	RoleDVNonOfficial
	RoleAuthenticationTerminal
	RoleInspectionSystem
	RoleSignatureTerminal
)

// String はロール名を返す。
func (r Role) String() string {
	switch r {
	case RoleCVCA:
		return "CVCA"
	case RoleDVOfficial:
		return "DV_OFFICIAL"
	case RoleDVNonOfficial:
		return "DV_NON_OFFICIAL"
	case RoleAuthenticationTerminal:
		return "AUTHENTICATION_TERMINAL"
	case RoleInspectionSystem:
		return "INSPECTION_SYSTEM"
	case RoleSignatureTerminal:
		return "SIGNATURE_TERMINAL"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// AccessRight は認証端末CHATのビット位置（最下位ビット=0）。
type AccessRight uint

const (
	AgeVerification AccessRight = iota
	CommunityIDVerification
	RestrictedIdentification
	PrivilegedTerminal
	CANAllowed
	PINManagement
	InstallCertificate
	InstallQualifiedCertificate
	ReadDG01
	ReadDG02
	ReadDG03
	ReadDG04
	ReadDG05
	ReadDG06
	ReadDG07
	ReadDG08
	ReadDG09
	ReadDG10
	ReadDG11
	ReadDG12
	ReadDG13
	ReadDG14
	ReadDG15
	ReadDG16
	ReadDG17
	ReadDG18
	ReadDG19
	ReadDG20
	ReadDG21
	ReadDG22
	PSA
	RFU31
	WriteDG22
	WriteDG21
	WriteDG20
	WriteDG19
	WriteDG18
	WriteDG17
)

// roleShift はテンプレート上位2ビット（ロール）の位置。
const roleShift = 38

var rightNames = [...]string{
	"AGE_VERIFICATION", "COMMUNITY_ID_VERIFICATION", "RESTRICTED_IDENTIFICATION",
	"PRIVILEGED_TERMINAL", "CAN_ALLOWED", "PIN_MANAGEMENT", "INSTALL_CERT",
	"INSTALL_QUALIFIED_CERT",
	"READ_DG01", "READ_DG02", "READ_DG03", "READ_DG04", "READ_DG05", "READ_DG06",
	"READ_DG07", "READ_DG08", "READ_DG09", "READ_DG10", "READ_DG11", "READ_DG12",
	"READ_DG13", "READ_DG14", "READ_DG15", "READ_DG16", "READ_DG17", "READ_DG18",
	"READ_DG19", "READ_DG20", "READ_DG21", "READ_DG22",
	"PSA", "RFU",
	"WRITE_DG22", "WRITE_DG21", "WRITE_DG20", "WRITE_DG19", "WRITE_DG18", "WRITE_DG17",
}

// String はアクセス権名を返す。
func (r AccessRight) String() string {
	if int(r) < len(rightNames) {
		return rightNames[r]
	}
	return fmt.Sprintf("BIT_%d", uint(r))
}

// CHAT はCertificate Holder Authorization Template。
// ロール（上位2ビット）と権限ビット列を保持する。値は不変として扱い、変更系はコピーを返す。
type CHAT struct {
	terminalType TerminalType
	template     uint64
}

// NewCHAT は認証端末CHATを生成する。
func NewCHAT(role Role, rights ...AccessRight) (*CHAT, error) {
	var roleBits uint64
	switch role {
	case RoleCVCA:
		roleBits = 0b11
	case RoleDVOfficial:
		roleBits = 0b10
	case RoleDVNonOfficial:
		roleBits = 0b01
	case RoleAuthenticationTerminal:
		roleBits = 0b00
	default:
		return nil, fmt.Errorf("%w: role %s is not an authentication terminal hierarchy role", ErrMalformedCHAT, role)
	}
	c := &CHAT{terminalType: TypeAuthenticationTerminal, template: roleBits << roleShift}
	return c.With(rights...), nil
}

// ParseCHAT は7F4C形式のCHATを解析する。
func ParseCHAT(b []byte) (*CHAT, error) {
	v, rest, err := readTLV(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCHAT, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedCHAT)
	}
	return parseCHATValue(v)
}

func parseCHATValue(v asn1.RawValue) (*CHAT, error) {
	if err := expect(v, asn1.ClassApplication, tagCHAT, true); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCHAT, err)
	}
	elems, err := children(v.Bytes)
	if err != nil || len(elems) != 2 {
		return nil, fmt.Errorf("%w: expected OID and discretionary data", ErrMalformedCHAT)
	}
	oid, err := ParseOID(elems[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCHAT, err)
	}
	tt, ok := terminalTypeFromOID(oid)
	if !ok {
		return nil, fmt.Errorf("%w: unknown terminal type %s", ErrMalformedCHAT, oid)
	}
	if err := expect(elems[1], asn1.ClassApplication, tagDiscretionary, false); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCHAT, err)
	}
	return newCHATFromTemplate(tt, elems[1].Bytes)
}

// ParseCHATTemplate は端末種別と権限テンプレート（53の内容）からCHATを生成する。
func ParseCHATTemplate(tt TerminalType, template []byte) (*CHAT, error) {
	return newCHATFromTemplate(tt, template)
}

func newCHATFromTemplate(tt TerminalType, template []byte) (*CHAT, error) {
	if len(template) != tt.templateLen() {
		return nil, fmt.Errorf("%w: template length %d, want %d", ErrMalformedCHAT, len(template), tt.templateLen())
	}
	var v uint64
	for _, b := range template {
		v = v<<8 | uint64(b)
	}
	// IS/STの1バイトテンプレートはロール位置を認証端末と揃える
	v <<= uint(8 * (5 - len(template)))
	return &CHAT{terminalType: tt, template: v}, nil
}

// Type は端末種別を返す。
func (c *CHAT) Type() TerminalType {
	return c.terminalType
}

// Role はロールを返す。ロールビットは2ビットのため、どの値も既定のロールのいずれかに対応する。
func (c *CHAT) Role() Role {
	bits := c.template >> roleShift & 0b11
	switch c.terminalType {
	case TypeInspectionSystem:
		if bits == 0 {
			return RoleInspectionSystem
		}
	case TypeSignatureTerminal:
		if bits == 0 {
			return RoleSignatureTerminal
		}
	}
	switch bits {
	case 0b11:
		return RoleCVCA
	case 0b10:
		return RoleDVOfficial
	case 0b01:
		return RoleDVNonOfficial
	default:
		return RoleAuthenticationTerminal
	}
}

// Has は権限ビットが立っているかを返す。
func (c *CHAT) Has(r AccessRight) bool {
	if r >= roleShift {
		return false
	}
	return c.template&(1<<r) != 0
}

// With は権限を追加したCHATを返す。
func (c *CHAT) With(rights ...AccessRight) *CHAT {
	out := *c
	for _, r := range rights {
		if r < roleShift {
			out.template |= 1 << r
		}
	}
	return &out
}

// Without は権限を除いたCHATを返す。
func (c *CHAT) Without(rights ...AccessRight) *CHAT {
	out := *c
	for _, r := range rights {
		if r < roleShift {
			out.template &^= 1 << r
		}
	}
	return &out
}

// Rights は立っている権限を昇順で返す。
func (c *CHAT) Rights() []AccessRight {
	var out []AccessRight
	for m := c.rightsMask(); m != 0; m &= m - 1 {
		out = append(out, AccessRight(bits.TrailingZeros64(m)))
	}
	return out
}

func (c *CHAT) rightsMask() uint64 {
	return c.template & (1<<roleShift - 1)
}

// Template は権限テンプレート（53の内容）を返す。
func (c *CHAT) Template() []byte {
	n := c.terminalType.templateLen()
	v := c.template >> uint(8*(5-n))
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// Bytes は7F4C形式でエンコードする。
func (c *CHAT) Bytes() []byte {
	oid, err := EncodeOID(c.terminalType.OID())
	if err != nil {
		// 端末種別OIDはパッケージ定数のみ
		panic(err)
	}
	body := append(oid, EncodeApplication(tagDiscretionary, false, c.Template())...)
	return EncodeApplication(tagCHAT, true, body)
}

// Equal は端末種別とテンプレートが等しいかを返す。
func (c *CHAT) Equal(o *CHAT) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.terminalType == o.terminalType && c.template == o.template
}

// String はロールと権限の一覧を返す。
func (c *CHAT) String() string {
	names := make([]string, 0, len(c.Rights()))
	for _, r := range c.Rights() {
		names = append(names, r.String())
	}
	return fmt.Sprintf("%s[%s]", c.Role(), strings.Join(names, ","))
}

// RestrictAccessRights はceilingに無い権限をすべて落としたCHATを返す。
// ロールと端末種別はレシーバのものを維持する。
func (c *CHAT) RestrictAccessRights(ceiling *CHAT) *CHAT {
	out := *c
	out.template = c.template&^(1<<roleShift-1) | c.rightsMask()&ceiling.rightsMask()
	return &out
}

// VerifyNotExceeding はrequestedがceilingに無い権限を含む場合にErrAuthorizationExceededを返す。
func VerifyNotExceeding(ceiling, requested *CHAT) error {
	if requested.terminalType != ceiling.terminalType {
		return fmt.Errorf("%w: terminal type mismatch", ErrAuthorizationExceeded)
	}
	extra := requested.rightsMask() &^ ceiling.rightsMask()
	if extra == 0 {
		return nil
	}
	excess := &CHAT{terminalType: requested.terminalType, template: extra}
	names := make([]string, 0)
	for _, r := range excess.Rights() {
		names = append(names, r.String())
	}
	return fmt.Errorf("%w: %s", ErrAuthorizationExceeded, strings.Join(names, ", "))
}

// RequireAuthenticationTerminal はCHATのロールが認証端末であることを検査する。
func RequireAuthenticationTerminal(c *CHAT) error {
	if c == nil {
		return fmt.Errorf("%w: missing CHAT", ErrUnsupportedTerminalRole)
	}
	if role := c.Role(); role != RoleAuthenticationTerminal {
		return fmt.Errorf("%w: %s", ErrUnsupportedTerminalRole, role)
	}
	return nil
}
