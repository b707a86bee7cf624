package collab

import (
	"context"
	"fmt"

	"github.com/inhies/go-bytesize"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

// DryRun stands in for every collaborator and only logs what it is asked
// to do.
func DryRun(logger *zap.Logger) *DryRunner {
	return &DryRunner{logger.With(zap.String("via", "dry-run"))}
}

type DryRunner struct {
	l *zap.Logger
}

func (d *DryRunner) Upload(_ context.Context, name, contentType string, data []byte) (*Upload, error) {
	id := xid.New().String()
	d.l.With(
		zap.String("name", name),
		zap.String("type", contentType),
		zap.String("size", bytesize.New(float64(len(data))).String()),
	).Info("upload")
	return &Upload{CID: id, URI: fmt.Sprintf("dryrun://%s/%s", id, name)}, nil
}

func (d *DryRunner) Mint(_ context.Context, req *MintRequest) (*MintReceipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	d.l.With(
		zap.String("metadata", req.MetadataURI),
		zap.String("wallet", req.WalletAddress),
		zap.String("name", req.Name),
	).Info("mint")
	return &MintReceipt{Message: "dry run, nothing minted"}, nil
}

func (d *DryRunner) Share(_ context.Context, imageURL, text string) error {
	d.l.With(zap.String("image", imageURL), zap.String("text", text)).Info("share")
	return nil
}
