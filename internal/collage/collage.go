package collage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Константы размеров и отступов
const (
	cellSize     = 360
	cellPadding  = 12
	headerHeight = 64
	cornerRadius = 14.0
	labelHeight  = 30.0
	maxColumns   = 4
)

// Цветовая схема
var (
	bgColor       = color.RGBA{24, 26, 30, 255}
	headerColor   = color.RGBA{235, 236, 240, 255}
	labelBgColor  = color.RGBA{0, 0, 0, 140}
	labelTxtColor = color.RGBA{245, 245, 245, 255}
	emptyColor    = color.RGBA{45, 48, 54, 255}
)

// Item одна клетка коллажа: фото участника и подпись (имя)
type Item struct {
	Image []byte
	Label string
}

// Render собирает фотографии момента в сетку и возвращает PNG.
// Сетка подбирается под количество фото, но не шире maxColumns колонок.
func Render(items []Item, momentAt time.Time) ([]byte, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no photos to render")
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(items)))))
	if cols > maxColumns {
		cols = maxColumns
	}
	rows := (len(items) + cols - 1) / cols

	width := cols*cellSize + (cols+1)*cellPadding
	height := headerHeight + rows*cellSize + (rows+1)*cellPadding

	dc := gg.NewContext(width, height)
	dc.SetColor(bgColor)
	dc.Clear()

	drawHeader(dc, momentAt, width)

	for i, item := range items {
		x := float64(cellPadding + (i%cols)*(cellSize+cellPadding))
		y := float64(headerHeight + cellPadding + (i/cols)*(cellSize+cellPadding))
		drawCell(dc, item, x, y)
	}

	return encodeImage(dc)
}

// drawHeader рисует дату момента по центру шапки
func drawHeader(dc *gg.Context, momentAt time.Time, width int) {
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(headerColor)

	title := momentAt.UTC().Format("02.01.2006 15:04")
	dc.DrawStringAnchored(title, float64(width)/2, float64(headerHeight)/2, 0.5, 0.5)
}

// drawCell рисует одно фото со скруглёнными углами и подписью автора
func drawCell(dc *gg.Context, item Item, x, y float64) {
	img, _, err := image.Decode(bytes.NewReader(item.Image))

	dc.Push()
	dc.DrawRoundedRectangle(x, y, cellSize, cellSize, cornerRadius)
	dc.Clip()

	if err != nil {
		// Битое фото - оставляем пустую клетку с подписью
		dc.SetColor(emptyColor)
		dc.DrawRectangle(x, y, cellSize, cellSize)
		dc.Fill()
	} else {
		drawCover(dc, img, x, y)
	}

	if item.Label != "" {
		dc.SetColor(labelBgColor)
		dc.DrawRectangle(x, y+cellSize-labelHeight, cellSize, labelHeight)
		dc.Fill()

		dc.SetFontFace(basicfont.Face7x13)
		dc.SetColor(labelTxtColor)
		dc.DrawStringAnchored(item.Label, x+cellSize/2, y+cellSize-labelHeight/2, 0.5, 0.5)
	}

	dc.Pop()
}

// drawCover вписывает фото в клетку по принципу cover: масштабирует до
// заполнения и центрирует, лишнее срезается клипом
func drawCover(dc *gg.Context, img image.Image, x, y float64) {
	bounds := img.Bounds()
	iw := float64(bounds.Dx())
	ih := float64(bounds.Dy())
	if iw == 0 || ih == 0 {
		return
	}

	scale := math.Max(cellSize/iw, cellSize/ih)
	offsetX := x + (cellSize-iw*scale)/2
	offsetY := y + (cellSize-ih*scale)/2

	dc.Push()
	dc.Translate(offsetX, offsetY)
	dc.Scale(scale, scale)
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}

func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
