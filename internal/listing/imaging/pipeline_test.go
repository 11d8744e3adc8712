package imaging

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/form"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeCompressor struct {
	mu     sync.Mutex
	calls  []string
	failOn string
}

func (f *fakeCompressor) Compress(_ context.Context, u Upload) (form.Attachment, error) {
	f.mu.Lock()
	f.calls = append(f.calls, u.Name)
	f.mu.Unlock()
	if u.Name == f.failOn {
		return form.Attachment{}, errors.New("corrupt file")
	}
	return form.Attachment{Name: u.Name, ContentType: "image/jpeg", Data: u.Data}, nil
}

func TestPipeline_RejectsUnsupportedTypes(t *testing.T) {
	data := pngBytes(t, 4, 4)
	p := NewPipeline(&fakeCompressor{}, logger.NewNop())

	res, err := p.AddFiles(context.Background(), 0, []Upload{
		{Name: "photo.png", ContentType: "image/png", Data: data},
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hello there")},
		{Name: "fake.png", ContentType: "image/png", Data: []byte("%PDF-1.4 not an image")},
	})

	require.NoError(t, err)
	require.Len(t, res.Added, 1)
	assert.Equal(t, "photo.png", res.Added[0].Name)
	assert.ElementsMatch(t, []Rejection{
		{Name: "notes.txt", Reason: ReasonUnsupportedType},
		{Name: "fake.png", Reason: ReasonUnsupportedType},
	}, res.Rejected)
}

func TestPipeline_ElevenImagesKeepsFirstTen(t *testing.T) {
	data := pngBytes(t, 4, 4)
	files := make([]Upload, 0, 11)
	for i := 0; i < 11; i++ {
		files = append(files, Upload{Name: fmt.Sprintf("img-%02d.png", i), ContentType: "image/png", Data: data})
	}
	p := NewPipeline(&fakeCompressor{}, logger.NewNop())

	res, err := p.AddFiles(context.Background(), 0, files)

	require.NoError(t, err)
	require.Len(t, res.Added, 10)
	for i, att := range res.Added {
		assert.Equal(t, fmt.Sprintf("img-%02d.png", i), att.Name, "input order is kept")
	}
	assert.Equal(t, []Rejection{{Name: "img-10.png", Reason: ReasonLimit}}, res.Rejected)
}

func TestPipeline_CapCountsExistingAttachments(t *testing.T) {
	data := pngBytes(t, 4, 4)
	p := NewPipeline(&fakeCompressor{}, logger.NewNop())

	res, err := p.AddFiles(context.Background(), 9, []Upload{
		{Name: "a.png", Data: data},
		{Name: "b.png", Data: data},
	})

	require.NoError(t, err)
	assert.Len(t, res.Added, 1)
	assert.Len(t, res.Rejected, 1)
}

func TestPipeline_CompressionFailureDropsBatch(t *testing.T) {
	data := pngBytes(t, 4, 4)
	p := NewPipeline(&fakeCompressor{failOn: "b.png"}, logger.NewNop())

	res, err := p.AddFiles(context.Background(), 0, []Upload{
		{Name: "a.png", Data: data},
		{Name: "b.png", Data: data},
		{Name: "c.png", Data: data},
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrImageBatch)
}

func TestJPEGCompressor_DownscalesLongestEdge(t *testing.T) {
	c := NewJPEGCompressor()

	att, err := c.Compress(context.Background(), Upload{Name: "wide.png", Data: pngBytes(t, 2048, 512)})

	require.NoError(t, err)
	assert.Equal(t, 1024, att.Width)
	assert.Equal(t, 256, att.Height)
	assert.Equal(t, "wide.jpg", att.Name)
	assert.Equal(t, "image/jpeg", att.ContentType)
	assert.LessOrEqual(t, len(att.Data), DefaultMaxBytes)

	_, format, err := image.Decode(bytes.NewReader(att.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestJPEGCompressor_SmallImageKeepsSize(t *testing.T) {
	c := NewJPEGCompressor()

	att, err := c.Compress(context.Background(), Upload{Name: "tall.png", Data: pngBytes(t, 30, 60)})

	require.NoError(t, err)
	assert.Equal(t, 30, att.Width)
	assert.Equal(t, 60, att.Height)
}

func TestJPEGCompressor_TooLarge(t *testing.T) {
	c := &JPEGCompressor{MaxDimension: 512, MaxBytes: 10}

	_, err := c.Compress(context.Background(), Upload{Name: "x.png", Data: pngBytes(t, 200, 200)})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestJPEGCompressor_GarbageFails(t *testing.T) {
	_, err := NewJPEGCompressor().Compress(context.Background(), Upload{Name: "x.jpg", Data: []byte{0xff, 0xd8, 0xff, 0x00}})
	assert.Error(t, err)
}

func TestScaledSize(t *testing.T) {
	w, h := scaledSize(600, 3000, 1024)
	assert.Equal(t, 204, w)
	assert.Equal(t, 1024, h)
}

// pngHeader is a PNG that declares w x h RGBA pixels but carries no image data.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // truecolor with alpha

	chunk := append([]byte("IHDR"), ihdr...)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestJPEGCompressor_RefusesHugeDimensions(t *testing.T) {
	data := pngHeader(20000, 20000)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 20000, cfg.Width)

	_, err = NewJPEGCompressor().Compress(context.Background(), Upload{Name: "bomb.png", Data: data})
	assert.ErrorIs(t, err, ErrTooManyPixels)
}

func TestJPEGCompressor_PixelLimitIsConfigurable(t *testing.T) {
	c := &JPEGCompressor{MaxDimension: 64, MaxBytes: DefaultMaxBytes, MaxPixels: 100}

	_, err := c.Compress(context.Background(), Upload{Name: "x.png", Data: pngBytes(t, 11, 10)})
	assert.ErrorIs(t, err, ErrTooManyPixels)

	_, err = c.Compress(context.Background(), Upload{Name: "x.png", Data: pngBytes(t, 10, 10)})
	assert.NoError(t, err)
}

func TestPipeline_HugeImageFailsBatch(t *testing.T) {
	p := NewPipeline(NewJPEGCompressor(), logger.NewNop())

	res, err := p.AddFiles(context.Background(), 0, []Upload{
		{Name: "ok.png", Data: pngBytes(t, 8, 8)},
		{Name: "bomb.png", Data: pngHeader(20000, 20000)},
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrImageBatch)
}
