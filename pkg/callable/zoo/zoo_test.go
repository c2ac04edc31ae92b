package zoo_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/callable/zoo"
	"github.com/aretw0/wca/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_RegistersBuiltins(t *testing.T) {
	regs := zoo.Default()

	assert.Equal(t, []string{zoo.AlwaysName, zoo.HasObjectClassName}, regs.Predicates.Names())
	assert.Equal(t, []string{zoo.DummyName, zoo.EmptyName, zoo.HTTPDetectorName, zoo.ImageInfoName}, regs.Processors.Names())
}

func TestHasObjectClass(t *testing.T) {
	regs := zoo.Default()
	ctx := context.Background()

	p, err := regs.Predicates.New(zoo.HasObjectClassName, callable.Args{"class_name": "person"})
	require.NoError(t, err)
	assert.Equal(t, callable.Args{"class_name": "person"}, p.Args())

	ok, err := p.Test(ctx, domain.AppState{"person": []any{}})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Test(ctx, domain.AppState{"dog": []any{}})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = regs.Predicates.New(zoo.HasObjectClassName, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArguments)
}

func TestAlways(t *testing.T) {
	ok, err := zoo.NewAlways().Test(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = zoo.Default().Predicates.New(zoo.AlwaysName, callable.Args{"x": 1})
	assert.ErrorIs(t, err, domain.ErrInvalidArguments)
}

func TestDummy(t *testing.T) {
	regs := zoo.Default()

	p, err := regs.Processors.New(zoo.DummyName, nil)
	require.NoError(t, err)
	assert.Equal(t, callable.Args{"dummy_input": "dummy_input_value"}, p.Args())

	out, err := p.Process(context.Background(), domain.Frame{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"dummy_key": "dummy_value"}, out)

	p, err = regs.Processors.New(zoo.DummyName, callable.Args{"dummy_input": "other"})
	require.NoError(t, err)
	assert.Equal(t, callable.Args{"dummy_input": "other"}, p.Args())
}

func TestImageInfo(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out, err := zoo.NewImageInfo(false).Process(context.Background(), domain.Frame{ID: 1, Data: buf.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		zoo.ImageWidthKey:  4,
		zoo.ImageHeightKey: 3,
		zoo.ImageFormatKey: "png",
	}, out)
}

func TestImageInfo_Garbage(t *testing.T) {
	frame := domain.Frame{ID: 2, Data: []byte("not an image")}

	_, err := zoo.NewImageInfo(false).Process(context.Background(), frame)
	assert.Error(t, err)

	out, err := zoo.NewImageInfo(true).Process(context.Background(), frame)
	require.NoError(t, err)
	assert.Contains(t, out, zoo.ImageErrorKey)
}
