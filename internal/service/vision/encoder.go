package vision

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// Encoder re-encodes camera frames with gocv.
type Encoder struct {
	ext         gocv.FileExt
	params      []int
	contentType string
}

// NewEncoder builds an encoder for format "jpeg" or "png". quality is in
// (0,1]; for PNG it maps inversely onto the zlib compression level.
func NewEncoder(format string, quality float64) (*Encoder, error) {
	if quality <= 0 || quality > 1 {
		return nil, fmt.Errorf("quality must be in (0,1], got %v", quality)
	}

	switch format {
	case "jpeg", "jpg":
		return &Encoder{
			ext:         gocv.JPEGFileExt,
			params:      []int{int(gocv.IMWriteJpegQuality), int(math.Round(quality * 100))},
			contentType: "image/jpeg",
		}, nil
	case "png":
		compression := int(math.Round((1 - quality) * 9))
		return &Encoder{
			ext:         gocv.PNGFileExt,
			params:      []int{int(gocv.IMWritePngCompression), compression},
			contentType: "image/png",
		}, nil
	default:
		return nil, fmt.Errorf("unsupported capture format %q", format)
	}
}

// ContentType is the MIME type of Encode's output.
func (e *Encoder) ContentType() string {
	return e.contentType
}

// Encode decodes a camera frame and renders it into the configured format.
func (e *Encoder) Encode(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("empty frame")
	}

	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %v", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("decoded frame is empty")
	}

	buf, err := gocv.IMEncodeWithParams(e.ext, mat, e.params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %v", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
