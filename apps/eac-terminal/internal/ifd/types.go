package ifd

// HTTPヘッダー
const (
	HeaderTraceID     = "X-Trace-ID"
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
)

// APIパス
const (
	PathTransmit         = "/api/v1/transmit"
	PathEstablishChannel = "/api/v1/establish-channel"
)

// TransmitRequest はAPDU送信要求。バイト列はbase64で送られる。
type TransmitRequest struct {
	SlotHandle []byte `json:"slot_handle"`
	Command    []byte `json:"command"`
}

// TransmitResponse はAPDU送信応答。
type TransmitResponse struct {
	Response []byte `json:"response"`
}

// EstablishRequest はPACEチャネル確立要求。
type EstablishRequest struct {
	SlotHandle             []byte `json:"slot_handle"`
	PinID                  uint8  `json:"pin_id"`
	CHAT                   []byte `json:"chat"`
	CertificateDescription []byte `json:"certificate_description,omitempty"`
}

// EstablishResponse はPACEチャネル確立応答。
type EstablishResponse struct {
	RetryCounter int    `json:"retry_counter"`
	EFCardAccess []byte `json:"ef_card_access"`
	CurrentCAR   string `json:"car_current"`
	PreviousCAR  string `json:"car_previous,omitempty"`
	IDPICC       []byte `json:"id_picc"`
}

// ProblemDetails はRFC 7807エラーレスポンス。ResultMinorはゲートウェイ固有の拡張。
type ProblemDetails struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Detail      string `json:"detail"`
	Status      int    `json:"status"`
	ResultMinor string `json:"result_minor,omitempty"`
}
