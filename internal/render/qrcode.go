package render

import (
	"errors"
	"image"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

var ErrEmptyQRPayload = errors.New("empty qr payload")

// QRCode returns the settings URL as a QR code image, sizePx square.
func QRCode(payload string, sizePx int) (image.Image, error) {
	code, err := newQRCode(payload)
	if err != nil {
		return nil, err
	}
	return code.Image(qrSize(sizePx)), nil
}

// QRCodePNG is QRCode encoded as PNG, for serving over HTTP.
func QRCodePNG(payload string, sizePx int) ([]byte, error) {
	code, err := newQRCode(payload)
	if err != nil {
		return nil, err
	}
	return code.PNG(qrSize(sizePx))
}

func newQRCode(payload string) (*qrcode.QRCode, error) {
	if payload == "" {
		return nil, ErrEmptyQRPayload
	}
	return qrcode.New(payload, qrcode.Medium)
}

func qrSize(sizePx int) int {
	if sizePx <= 0 {
		return defaultQRCodeSizePx
	}
	return sizePx
}
