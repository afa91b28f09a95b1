// Package models defines the vault's persisted account record and the
// codec for the serialized account list.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"
)

// Account is one stored login. Only ID and Nickname are plaintext; every
// other field is a cryptox blob.
type Account struct {
	// ID is an opaque unique identifier, generated when empty on add.
	ID string `json:"id"`
	// Nickname is the display label. Not secret.
	Nickname string `json:"nickname"`
	// EncryptedUsername is the sealed login name.
	EncryptedUsername string `json:"encrypted_username"`
	// EncryptedPassword is the sealed password.
	EncryptedPassword string `json:"encrypted_password"`
	// EncryptedTOTPSecret is the sealed base32 second-factor secret. Empty
	// means no second factor is configured.
	EncryptedTOTPSecret string `json:"encrypted_totp_secret,omitempty"`
}

// HasTOTPSecret reports whether a second factor is configured.
func (a Account) HasTOTPSecret() bool {
	return a.EncryptedTOTPSecret != ""
}

// LogValue keeps encrypted fields out of slog output.
func (a Account) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", a.ID),
		slog.String("nickname", a.Nickname),
		slog.Bool("totp", a.HasTOTPSecret()),
	)
}

// MarshalZerologObject keeps encrypted fields out of zerolog output.
func (a Account) MarshalZerologObject(e *zerolog.Event) {
	e.Str("id", a.ID).Str("nickname", a.Nickname).Bool("totp", a.HasTOTPSecret())
}

// record mirrors Account on the wire. The second-factor field is a pointer
// so that both an absent key and an explicit null decode to "no secret".
type record struct {
	ID                  string  `json:"id"`
	Nickname            string  `json:"nickname"`
	EncryptedUsername   string  `json:"encrypted_username"`
	EncryptedPassword   string  `json:"encrypted_password"`
	EncryptedTOTPSecret *string `json:"encrypted_totp_secret"`
}

// EncodeAccounts serializes the full list, preserving order.
func EncodeAccounts(accounts []Account) (string, error) {
	if accounts == nil {
		accounts = []Account{}
	}
	b, err := json.Marshal(accounts)
	if err != nil {
		return "", fmt.Errorf("encode accounts: %w", err)
	}
	return string(b), nil
}

// DecodeAccounts parses a list produced by EncodeAccounts. An empty blob or
// a JSON null yields an empty list. Unknown fields are ignored.
func DecodeAccounts(blob string) ([]Account, error) {
	trimmed := bytes.TrimSpace([]byte(blob))
	if len(trimmed) == 0 {
		return []Account{}, nil
	}

	var recs []record
	if err := json.Unmarshal(trimmed, &recs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	accounts := make([]Account, 0, len(recs))
	for _, r := range recs {
		a := Account{
			ID:                r.ID,
			Nickname:          r.Nickname,
			EncryptedUsername: r.EncryptedUsername,
			EncryptedPassword: r.EncryptedPassword,
		}
		if r.EncryptedTOTPSecret != nil {
			a.EncryptedTOTPSecret = *r.EncryptedTOTPSecret
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}
