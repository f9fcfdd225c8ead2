// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-crawler/internal/library"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}

	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, img))
	return buffer.Bytes()
}

/*
TestThumbnail resamples to the exact target size and emits a JPEG.
*/
func TestThumbnail(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"portrait_cover", 512, 800},
		{"landscape_cover", 800, 300},
		{"already_small", 20, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			small, err := library.Thumbnail(encodePNG(t, tt.width, tt.height), 51, 80)
			require.NoError(t, err)

			config, format, err := image.DecodeConfig(bytes.NewReader(small))
			require.NoError(t, err)
			assert.Equal(t, "jpeg", format)
			assert.Equal(t, 51, config.Width)
			assert.Equal(t, 80, config.Height)
		})
	}
}

/*
TestThumbnail_JPEGInput accepts JPEG covers as well.
*/
func TestThumbnail_JPEGInput(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, jpeg.Encode(&buffer, image.NewGray(image.Rect(0, 0, 100, 160)), nil))

	small, err := library.Thumbnail(buffer.Bytes(), 51, 80)
	require.NoError(t, err)
	assert.NotEmpty(t, small)
}

/*
TestThumbnail_Invalid rejects garbage and bad dimensions.
*/
func TestThumbnail_Invalid(t *testing.T) {
	_, err := library.Thumbnail([]byte("not an image"), 51, 80)
	assert.Error(t, err)

	_, err = library.Thumbnail(encodePNG(t, 10, 10), 0, 80)
	assert.Error(t, err)
}
