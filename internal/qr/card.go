package qr

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font/basicfont"
)

// Константы размеров карточки подтверждения
const (
	qrImageSize   = 360
	cardWidth     = 440
	cardHeight    = 560
	cardPadding   = 40
	lineHeight    = 18.0
	titleOffsetY  = 26.0
	detailOffsetY = 420.0
)

const cardTitle = "Study space booking"

// RenderCard рендерит карточку подтверждения: QR-код и текстовые
// поля payload под ним. Возвращает PNG.
func RenderCard(payload string) ([]byte, error) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	dc := gg.NewContext(cardWidth, cardHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Без ttf-ассетов используем basicfont
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(cardTitle, cardWidth/2, titleOffsetY, 0.5, 0.5)

	dc.DrawImage(code.Image(qrImageSize), (cardWidth-qrImageSize)/2, cardPadding)

	y := detailOffsetY
	for _, line := range strings.Split(payload, "\n") {
		dc.DrawStringAnchored(line, cardWidth/2, y, 0.5, 0.5)
		y += lineHeight
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buf.Bytes(), nil
}
