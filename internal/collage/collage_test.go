package collage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPhoto(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRender_EmptyIsAnError(t *testing.T) {
	_, err := Render(nil, time.Now())
	assert.Error(t, err)
}

func TestRender_TwoPhotos(t *testing.T) {
	items := []Item{
		{Image: testPhoto(t, 100, 80, color.RGBA{200, 50, 50, 255}), Label: "Ann"},
		{Image: testPhoto(t, 60, 120, color.RGBA{50, 200, 50, 255}), Label: "Bob"},
	}

	out, err := Render(items, time.Date(2025, 6, 10, 12, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	// Две клетки в один ряд: 2 колонки, 1 строка
	wantWidth := 2*cellSize + 3*cellPadding
	wantHeight := headerHeight + cellSize + 2*cellPadding
	assert.Equal(t, wantWidth, img.Bounds().Dx())
	assert.Equal(t, wantHeight, img.Bounds().Dy())
}

func TestRender_GridGrowsWithPhotos(t *testing.T) {
	items := make([]Item, 5)
	for i := range items {
		items[i] = Item{Image: testPhoto(t, 50, 50, color.RGBA{100, 100, 200, 255})}
	}

	out, err := Render(items, time.Now())
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	// 5 фото: 3 колонки, 2 строки
	wantWidth := 3*cellSize + 4*cellPadding
	wantHeight := headerHeight + 2*cellSize + 3*cellPadding
	assert.Equal(t, wantWidth, img.Bounds().Dx())
	assert.Equal(t, wantHeight, img.Bounds().Dy())
}

func TestRender_BrokenPhotoDoesNotFail(t *testing.T) {
	items := []Item{
		{Image: []byte("definitely not an image"), Label: "Ann"},
		{Image: testPhoto(t, 50, 50, color.RGBA{100, 100, 200, 255}), Label: "Bob"},
	}

	out, err := Render(items, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
