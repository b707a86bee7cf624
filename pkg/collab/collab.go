// Package collab holds the services the editor hands its output to:
// storage upload, minting, sharing and user identity.
package collab

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrTransport  = errors.New("transport error")
	ErrValidation = errors.New("validation error")
	ErrNoWallet   = errors.New("no wallet connected")
)

type Upload struct {
	CID     string
	URI     string
	Gateway string
}

// URL is the address a browser can fetch.
func (u *Upload) URL() string {
	if u.Gateway != "" {
		return u.Gateway
	}
	return u.URI
}

type Uploader interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (*Upload, error)
}

type MintRequest struct {
	MetadataURI   string `json:"metadataUri" validate:"required"`
	WalletAddress string `json:"walletAddress" validate:"required,eth_addr"`
	Name          string `json:"name,omitempty" validate:"max=256"`
	Description   string `json:"description,omitempty" validate:"max=2048"`
}

type MintReceipt struct {
	TransactionHash string `json:"transactionHash"`
	Message         string `json:"message"`
}

type Minter interface {
	Mint(ctx context.Context, req *MintRequest) (*MintReceipt, error)
}

type Sharer interface {
	Share(ctx context.Context, imageURL, text string) error
}

type User struct {
	FID      int64
	Username string
}

// Identity returns the verified user, or nil without error when nobody is
// signed in.
type Identity interface {
	Current(ctx context.Context) (*User, error)
}
