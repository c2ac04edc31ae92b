package zoo

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/domain"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DummyConfig holds the arguments of Dummy.
type DummyConfig struct {
	DummyInput string `json:"dummy_input"`
}

// Dummy returns a fixed fact regardless of the frame.
type Dummy struct {
	cfg DummyConfig
}

func NewDummy() *Dummy {
	return &Dummy{cfg: DummyConfig{DummyInput: "dummy_input_value"}}
}

func newDummy(args callable.Args) (callable.Processor, error) {
	d := NewDummy()
	if err := callable.Decode(args, &d.cfg); err != nil {
		return nil, err
	}
	return d, nil
}

func (*Dummy) CallableName() string  { return DummyName }
func (d *Dummy) Args() callable.Args { return callable.ArgsOf(d.cfg) }

func (*Dummy) Process(context.Context, domain.Frame) (map[string]any, error) {
	return map[string]any{"dummy_key": "dummy_value"}, nil
}

// Empty extracts nothing.
type Empty struct{}

func NewEmpty() *Empty { return &Empty{} }

func newEmpty(args callable.Args) (callable.Processor, error) {
	if err := callable.Decode(args, &struct{}{}); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (*Empty) CallableName() string { return EmptyName }
func (*Empty) Args() callable.Args  { return callable.Args{} }

func (*Empty) Process(context.Context, domain.Frame) (map[string]any, error) {
	return map[string]any{}, nil
}

// Keys written by ImageInfo.
const (
	ImageWidthKey  = "image_width"
	ImageHeightKey = "image_height"
	ImageFormatKey = "image_format"
	ImageErrorKey  = "image_error"
)

// ImageInfoConfig holds the arguments of ImageInfo.
type ImageInfoConfig struct {
	// Lenient records decode failures under ImageErrorKey instead of failing the step.
	Lenient bool `json:"lenient"`
}

// ImageInfo reports the dimensions and encoding of the frame image.
type ImageInfo struct {
	cfg ImageInfoConfig
}

func NewImageInfo(lenient bool) *ImageInfo {
	return &ImageInfo{cfg: ImageInfoConfig{Lenient: lenient}}
}

func newImageInfo(args callable.Args) (callable.Processor, error) {
	var cfg ImageInfoConfig
	if err := callable.Decode(args, &cfg); err != nil {
		return nil, err
	}
	return &ImageInfo{cfg: cfg}, nil
}

func (*ImageInfo) CallableName() string  { return ImageInfoName }
func (p *ImageInfo) Args() callable.Args { return callable.ArgsOf(p.cfg) }

func (p *ImageInfo) Process(_ context.Context, frame domain.Frame) (map[string]any, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(frame.Data))
	if err != nil {
		if p.cfg.Lenient {
			return map[string]any{ImageErrorKey: err.Error()}, nil
		}
		return nil, fmt.Errorf("decode frame %d: %w", frame.ID, err)
	}
	return map[string]any{
		ImageWidthKey:  cfg.Width,
		ImageHeightKey: cfg.Height,
		ImageFormatKey: format,
	}, nil
}
