package imaging

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/form"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"golang.org/x/sync/errgroup"
)

const (
	ReasonUnsupportedType = "unsupported_type"
	ReasonLimit           = "limit"
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Upload is a raw file as selected by the user.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Result struct {
	Added    []form.Attachment
	Rejected []Rejection
}

type Compressor interface {
	Compress(ctx context.Context, u Upload) (form.Attachment, error)
}

type Pipeline struct {
	compressor Compressor
	maxImages  int
	logger     *logger.Logger
}

func NewPipeline(compressor Compressor, log *logger.Logger) *Pipeline {
	return &Pipeline{compressor: compressor, maxImages: form.MaxImages, logger: log}
}

// AddFiles filters files by type, drops what does not fit next to the
// existing attachments and compresses the rest in parallel. A compression
// failure fails the whole batch: no attachment is returned.
func (p *Pipeline) AddFiles(ctx context.Context, existing int, files []Upload) (*Result, error) {
	res := &Result{}
	accepted := make([]Upload, 0, len(files))
	room := p.maxImages - existing

	for _, f := range files {
		if !allowedTypes[detectType(f)] {
			res.Rejected = append(res.Rejected, Rejection{Name: f.Name, Reason: ReasonUnsupportedType})
			continue
		}
		if len(accepted) >= room {
			res.Rejected = append(res.Rejected, Rejection{Name: f.Name, Reason: ReasonLimit})
			continue
		}
		accepted = append(accepted, f)
	}

	if len(res.Rejected) > 0 {
		p.logger.Warn("Pipeline.AddFiles: files rejected", "rejected", len(res.Rejected), "accepted", len(accepted))
	}
	if len(accepted) == 0 {
		return res, nil
	}

	compressed := make([]form.Attachment, len(accepted))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range accepted {
		g.Go(func() error {
			att, err := p.compressor.Compress(gctx, f)
			if err != nil {
				return err
			}
			compressed[i] = att
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Error("Pipeline.AddFiles: compression failed, batch dropped", "files", len(accepted), "error", err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrImageBatch, err)
	}

	res.Added = compressed
	p.logger.Debug("Pipeline.AddFiles: batch compressed", "added", len(compressed))
	return res, nil
}

// detectType sniffs the content and falls back to the declared type.
func detectType(f Upload) string {
	if len(f.Data) > 0 {
		sniffed := http.DetectContentType(f.Data)
		if sniffed != "application/octet-stream" {
			return sniffed
		}
	}
	ct := strings.ToLower(strings.TrimSpace(f.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
