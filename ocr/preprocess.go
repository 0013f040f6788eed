package ocr

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/docproc/docerr"
)

// minOCRWidth is the width small images are upscaled to before recognition.
const minOCRWidth = 1000

// Preprocess prepares an encoded image for recognition: it is converted to
// grayscale, upscaled when narrower than minOCRWidth, contrast-stretched and
// sharpened, then re-encoded as PNG. PNG, JPEG, GIF, TIFF, BMP and WebP
// input is accepted.
func Preprocess(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, docerr.Wrap(docerr.Ocr, "Failed to decode image", err)
	}

	out := prepare(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, docerr.Wrap(docerr.Ocr, "Failed to encode image", err)
	}
	return buf.Bytes(), nil
}

func prepare(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	if w := out.Bounds().Dx(); w > 0 && w < minOCRWidth {
		out = imaging.Resize(out, minOCRWidth, 0, imaging.Lanczos)
	}
	out = imaging.AdjustContrast(out, 20)
	return imaging.Sharpen(out, 1.0)
}
