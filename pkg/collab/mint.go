package collab

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
)

var validate = validator.New()

func (r *MintRequest) Validate() error {
	if r.WalletAddress == "" {
		return ErrNoWallet
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func NewMintService(endpoint string) *MintService {
	return &MintService{
		cli: resty.New().SetBaseURL(endpoint),
	}
}

// MintService submits mint requests to the application's mint endpoint.
// Signing happens in the user's wallet, outside of this process.
type MintService struct {
	cli *resty.Client
}

type mintError struct {
	Error string `json:"error"`
}

func (m *MintService) Mint(ctx context.Context, req *MintRequest) (*MintReceipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out MintReceipt
	var fail mintError
	resp, err := m.cli.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&fail).
		Post("/api/mint")
	if err != nil {
		return nil, fmt.Errorf("mint failed: %w: %w", ErrTransport, err)
	}

	if resp.IsError() {
		if resp.StatusCode() == 400 {
			return nil, fmt.Errorf("mint failed: %w: %s", ErrValidation, fail.Error)
		}
		return nil, fmt.Errorf("mint failed: %w: %d %s", ErrTransport, resp.StatusCode(), fail.Error)
	}

	return &out, nil
}
