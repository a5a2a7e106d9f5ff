// Package mocks はテスト用のgomockモックを提供する。
package mocks

//go:generate mockgen -destination=mock_card.go -package=mocks github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/card Dispatcher
//go:generate mockgen -destination=mock_eac.go -package=mocks github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/eac SchemaValidator,UserConsentRunner
//go:generate mockgen -destination=mock_registry.go -package=mocks github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/registry Journal
//go:generate mockgen -destination=mock_consent.go -package=mocks github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/consent ChannelEstablisher
