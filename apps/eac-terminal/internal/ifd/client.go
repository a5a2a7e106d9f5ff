// Package ifd はIFD Gateway（リモートカードリーダー）のHTTPクライアントを提供する。
package ifd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/card"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/config"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/eac"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/apperr"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/logging"
)

// Client はIFD Gatewayクライアント。card.Dispatcherとconsent.ChannelEstablisherを実装する。
type Client struct {
	httpClient *resty.Client
	cb         *gobreaker.CircuitBreaker
	baseURL    string
}

// NewClient は新しいIFD Gatewayクライアントを生成する。
func NewClient(cfg *config.Config) *Client {
	// タイムアウトは操作ごとにctxで与える
	httpClient := resty.New()

	cbSettings := gobreaker.Settings{
		Name:        config.CBName,
		MaxRequests: config.CBMaxRequests,
		Interval:    config.CBInterval,
		Timeout:     config.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.CBFailureThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				slog.Warn("circuit breaker opened",
					"event_id", "CB_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateHalfOpen:
				slog.Info("circuit breaker half-open",
					"event_id", "CB_HALF_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateClosed:
				slog.Info("circuit breaker closed",
					"event_id", "CB_CLOSE",
					"cb_name", name,
				)
			}
		},
	}

	return &Client{
		httpClient: httpClient,
		cb:         gobreaker.NewCircuitBreaker(cbSettings),
		baseURL:    strings.TrimRight(cfg.IFDGatewayURL, "/"),
	}
}

// Send はコマンドAPDUをゲートウェイ経由でカードに送信し、応答APDUを返す。
func (c *Client) Send(ctx context.Context, command []byte, slotHandle []byte) ([]byte, error) {
	body, err := c.post(ctx, PathTransmit, config.IFDRequestTimeout, &TransmitRequest{
		SlotHandle: slotHandle,
		Command:    command,
	})
	if err != nil {
		return nil, err
	}
	var resp TransmitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", card.ErrTransport, ErrInvalidResponse, err)
	}
	if len(resp.Response) < 2 {
		return nil, fmt.Errorf("%w: %w: response APDU too short", card.ErrTransport, ErrInvalidResponse)
	}
	return resp.Response, nil
}

// EstablishChannel はPIN/CAN入力を含むPACEをリーダー側で実行する。
// ゲートウェイがminorコードを返した場合はそれを保持したeac.Errorに変換する。
func (c *Client) EstablishChannel(ctx context.Context, slotHandle []byte, pinID eac.PasswordID, chat *cvc.CHAT, description []byte) (*eac.PACEOutput, error) {
	req := &EstablishRequest{
		SlotHandle:             slotHandle,
		PinID:                  uint8(pinID),
		CertificateDescription: description,
	}
	if chat != nil {
		req.CHAT = chat.Bytes()
	}

	body, err := c.post(ctx, PathEstablishChannel, config.IFDEstablishTimeout, req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.ResultMinor() != "" {
			return nil, eac.ErrorFromMinor(apiErr.ResultMinor(), apiErr.Error())
		}
		return nil, err
	}

	var resp EstablishResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", card.ErrTransport, ErrInvalidResponse, err)
	}
	if len(resp.EFCardAccess) == 0 || resp.CurrentCAR == "" {
		return nil, fmt.Errorf("%w: %w: incomplete PACE output", card.ErrTransport, ErrInvalidResponse)
	}
	out := &eac.PACEOutput{
		RetryCounter: resp.RetryCounter,
		EFCardAccess: resp.EFCardAccess,
		CurrentCAR:   []byte(resp.CurrentCAR),
		IDPICC:       resp.IDPICC,
	}
	if resp.PreviousCAR != "" {
		out.PreviousCAR = []byte(resp.PreviousCAR)
	}
	return out, nil
}

// post はCircuit Breaker越しにJSONをPOSTし、200応答のボディを返す。
// 呼び出し元ctxの終了はCBの失敗に数えずcard.ErrInterruptedとして返す。
func (c *Client) post(ctx context.Context, path string, timeout time.Duration, payload any) ([]byte, error) {
	start := time.Now()

	result, err := c.cb.Execute(func() (any, error) {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		req := c.httpClient.R().
			SetContext(reqCtx).
			SetHeader(HeaderContentType, ContentTypeJSON).
			SetBody(payload)
		if traceID := logging.TraceIDFromContext(ctx); traceID != "" {
			req.SetHeader(HeaderTraceID, traceID)
		}

		resp, err := req.Post(c.baseURL + path)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %s: %v", card.ErrInterrupted, path, ctx.Err()), nil
			}
			return nil, apperr.NewGatewayError(path, 0, fmt.Errorf("%w: %w: %v", card.ErrTransport, apperr.ErrIFDGateway, err))
		}

		latencyMs := time.Since(start).Milliseconds()
		statusCode := resp.StatusCode()

		if statusCode != 200 {
			apiErr := parseAPIError(statusCode, resp.Body())
			slog.Error("IFD gateway error",
				"event_id", "IFD_API_ERR",
				"path", path,
				"error", apiErr.Error(),
				"http_status", statusCode,
				"latency_ms", latencyMs,
			)
			// 5xx（501除く）のみCBの失敗として数える
			if apiErr.IsServerError() && statusCode != 501 {
				return nil, apiErr
			}
			return apiErr, nil
		}

		slog.Debug("IFD gateway success",
			"path", path,
			"latency_ms", latencyMs,
		)
		return resp.Body(), nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}

	switch v := result.(type) {
	case []byte:
		return v, nil
	case error:
		return nil, v
	default:
		return nil, fmt.Errorf("%w: %w", card.ErrTransport, ErrInvalidResponse)
	}
}

// parseAPIError はHTTPエラーレスポンスをAPIErrorに変換する。
func parseAPIError(statusCode int, body []byte) *APIError {
	var details ProblemDetails
	if err := json.Unmarshal(body, &details); err == nil && (details.Title != "" || details.ResultMinor != "") {
		return &APIError{
			StatusCode: statusCode,
			Message:    details.Title,
			Details:    &details,
		}
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    string(body),
	}
}
