package collab

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const (
	NFTStorageEndpoint = "https://api.nft.storage"
	IPFSGateway        = "https://ipfs.io/ipfs/"
)

func NewNFTStorage(token string, opts ...NFTStorageOption) *NFTStorage {
	n := &NFTStorage{
		cli:     resty.New().SetBaseURL(NFTStorageEndpoint),
		token:   token,
		gateway: IPFSGateway,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

type NFTStorageOption func(n *NFTStorage)

func WithEndpoint(url string) NFTStorageOption {
	return func(n *NFTStorage) {
		n.cli.SetBaseURL(url)
	}
}

func WithGateway(url string) NFTStorageOption {
	return func(n *NFTStorage) {
		n.gateway = url
	}
}

type NFTStorage struct {
	cli     *resty.Client
	token   string
	gateway string
}

type nftStorageResponse struct {
	OK    bool `json:"ok"`
	Value struct {
		CID string `json:"cid"`
	} `json:"value"`
}

func (n *NFTStorage) Upload(ctx context.Context, name, contentType string, data []byte) (*Upload, error) {
	if n.token == "" {
		return nil, errors.New("nft.storage token is not configured")
	}

	var out nftStorageResponse
	resp, err := n.cli.R().
		SetContext(ctx).
		SetAuthToken(n.token).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		SetResult(&out).
		Post("/upload")
	if err != nil {
		return nil, fmt.Errorf("upload %s failed: %w: %w", name, ErrTransport, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("upload %s failed: %w: %d %s", name, ErrTransport, resp.StatusCode(), resp.String())
	}
	if out.Value.CID == "" {
		return nil, fmt.Errorf("upload %s failed: %w: response missing cid", name, ErrTransport)
	}

	return &Upload{
		CID:     out.Value.CID,
		URI:     "ipfs://" + out.Value.CID,
		Gateway: n.gateway + out.Value.CID,
	}, nil
}
