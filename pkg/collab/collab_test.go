package collab

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const wallet = "0x52908400098527886e0f7030069857d2e4169ee7"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNFTStorage_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.Equal(t, "image/png", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.Equal(t, "png-bytes", string(body))
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "value": map[string]string{"cid": "bafy123"}})
	}))
	defer srv.Close()

	n := NewNFTStorage("secret", WithEndpoint(srv.URL))
	up, err := n.Upload(context.Background(), "glitch.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "bafy123", up.CID)
	require.Equal(t, "ipfs://bafy123", up.URI)
	require.Equal(t, "https://ipfs.io/ipfs/bafy123", up.URL())
}

func TestNFTStorage_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") == "application/json" {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	n := NewNFTStorage("secret", WithEndpoint(srv.URL))

	_, err := n.Upload(context.Background(), "glitch.png", "image/png", []byte("x"))
	require.ErrorIs(t, err, ErrTransport)
	require.Contains(t, err.Error(), "403")

	_, err = n.Upload(context.Background(), "metadata.json", "application/json", []byte("{}"))
	require.ErrorIs(t, err, ErrTransport)
	require.Contains(t, err.Error(), "missing cid")

	_, err = NewNFTStorage("").Upload(context.Background(), "a", "b", nil)
	require.Error(t, err)
}

func TestLocalStore_Upload(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewLocalStore(fs, "/nft-images/", "https://cdn.example.com/")

	up, err := s.Upload(context.Background(), "../glitch.png", "image/png", []byte("data"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(up.URL(), "https://cdn.example.com/nft-images/"))
	require.True(t, strings.HasSuffix(up.URL(), "-glitch.png"))

	bs, err := afero.ReadFile(fs, strings.TrimPrefix(up.URL(), "https://cdn.example.com/"))
	require.NoError(t, err)
	require.Equal(t, "data", string(bs))
}

func TestMintRequest_Validate(t *testing.T) {
	require.ErrorIs(t, (&MintRequest{MetadataURI: "ipfs://x"}).Validate(), ErrNoWallet)
	require.ErrorIs(t, (&MintRequest{MetadataURI: "ipfs://x", WalletAddress: "0x123"}).Validate(), ErrValidation)
	require.ErrorIs(t, (&MintRequest{WalletAddress: wallet}).Validate(), ErrValidation)
	require.NoError(t, (&MintRequest{MetadataURI: "ipfs://x", WalletAddress: wallet}).Validate())
}

func TestMintService_Mint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/mint", r.URL.Path)
		var req MintRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Name == "reject" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
			return
		}
		if req.Name == "boom" {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to mint NFT"})
			return
		}
		require.Equal(t, "ipfs://meta", req.MetadataURI)
		require.Equal(t, wallet, req.WalletAddress)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "transactionHash": "0xabc", "message": "ok"})
	}))
	defer srv.Close()

	m := NewMintService(srv.URL)
	ctx := context.Background()

	rc, err := m.Mint(ctx, &MintRequest{MetadataURI: "ipfs://meta", WalletAddress: wallet, Name: "Glitch Art 1"})
	require.NoError(t, err)
	require.Equal(t, "0xabc", rc.TransactionHash)

	_, err = m.Mint(ctx, &MintRequest{MetadataURI: "ipfs://meta", WalletAddress: wallet, Name: "reject"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = m.Mint(ctx, &MintRequest{MetadataURI: "ipfs://meta", WalletAddress: wallet, Name: "boom"})
	require.ErrorIs(t, err, ErrTransport)
	require.Contains(t, err.Error(), "Failed to mint NFT")

	_, err = m.Mint(ctx, &MintRequest{MetadataURI: "ipfs://meta"})
	require.ErrorIs(t, err, ErrNoWallet)
}

func TestComposeURL(t *testing.T) {
	require.Equal(t,
		"https://warpcast.com/~/compose?text=my%20art&embeds[]=https%3A%2F%2Fipfs.io%2Fipfs%2Fbafy",
		ComposeURL(Warpcast, "my art", "https://ipfs.io/ipfs/bafy"))
	require.Equal(t,
		"https://basedcast.xyz/compose?text=%23GlitchArt&embed=https%3A%2F%2Fx.io%2Fa.png",
		ComposeURL(Base, "#GlitchArt", "https://x.io/a.png"))
}

func TestEscape_MatchesURIComponent(t *testing.T) {
	require.Equal(t, "Check%20out%20my%20glitch%20art!%20%23GlitchArt", escape("Check out my glitch art! #GlitchArt"))
	require.Equal(t, "Wow!%20(it's)%201%2B1*2%20~ok", escape("Wow! (it's) 1+1*2 ~ok"))
}

func TestComposeSharer_OpensLink(t *testing.T) {
	var opened string
	s := NewComposeSharer(Base, OpenerFunc(func(_ context.Context, link string) error {
		opened = link
		return nil
	}))
	require.NoError(t, s.Share(context.Background(), "https://x.io/a.png", "hi"))
	require.Equal(t, ComposeURL(Base, "hi", "https://x.io/a.png"), opened)

	p, err := ParsePlatform("Warpcast")
	require.NoError(t, err)
	require.Equal(t, Warpcast, p)
	_, err = ParsePlatform("myspace")
	require.ErrorIs(t, err, ErrValidation)
}

func TestIdentity(t *testing.T) {
	u, err := Anonymous{}.Current(context.Background())
	require.NoError(t, err)
	require.Nil(t, u)

	u, err = StaticIdentity(0, "").Current(context.Background())
	require.NoError(t, err)
	require.Nil(t, u)

	u, err = StaticIdentity(42, "glitcher").Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, &User{FID: 42, Username: "glitcher"}, u)
}

func TestDryRun(t *testing.T) {
	d := DryRun(zaptest.NewLogger(t))
	ctx := context.Background()

	up, err := d.Upload(ctx, "glitch.png", "image/png", make([]byte, 2048))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(up.URL(), "dryrun://"))

	_, err = d.Mint(ctx, &MintRequest{MetadataURI: up.URI})
	require.ErrorIs(t, err, ErrNoWallet)

	rc, err := d.Mint(ctx, &MintRequest{MetadataURI: up.URI, WalletAddress: wallet})
	require.NoError(t, err)
	require.NotEmpty(t, rc.Message)

	require.NoError(t, d.Share(ctx, up.URL(), "hi"))
}
