package trust

import (
	"fmt"
	"net/url"
	"strings"
)

// OriginKey はURLから scheme://host[:port] のキーを作る。ポートは明示されている場合のみ付ける。
func OriginKey(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %v", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("URL %q is not absolute", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}

// CheckSameOrigin はTCトークンURLとCertificateDescriptionのsubjectURLが同一オリジンであることを検査する。
// スキームとホストは大文字小文字を区別しない。ポート省略時はhttp=80, https=443とみなす。
func CheckSameOrigin(tcTokenURL, subjectURL string) error {
	if tcTokenURL == "" {
		return &CheckError{Check: CheckNameSameOrigin, Reason: "no TC Token URL"}
	}
	a, err := parseOrigin(tcTokenURL)
	if err != nil {
		return &CheckError{Check: CheckNameSameOrigin, Reason: "TC Token URL: " + err.Error()}
	}
	b, err := parseOrigin(subjectURL)
	if err != nil {
		return &CheckError{Check: CheckNameSameOrigin, Reason: "subject URL: " + err.Error()}
	}
	if a != b {
		return &CheckError{Check: CheckNameSameOrigin, Reason: fmt.Sprintf("%s and %s differ", a, b)}
	}
	return nil
}

type origin struct {
	scheme string
	host   string
	port   string
}

func (o origin) String() string {
	return o.scheme + "://" + o.host + ":" + o.port
}

func parseOrigin(raw string) (origin, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return origin{}, err
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return origin{}, fmt.Errorf("%q is not an absolute URL", raw)
	}
	o := origin{
		scheme: strings.ToLower(u.Scheme),
		host:   strings.ToLower(u.Hostname()),
		port:   u.Port(),
	}
	if o.port == "" {
		switch o.scheme {
		case "http":
			o.port = "80"
		case "https":
			o.port = "443"
		default:
			return origin{}, fmt.Errorf("no default port for scheme %q", o.scheme)
		}
	}
	return o, nil
}
