package doctoolkit

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"golang.org/x/image/bmp"

	"github.com/alnah/go-doctoolkit/internal/fileutil"
)

// Image defaults.
const (
	DefaultImageDPI    = 150
	DefaultJPEGQuality = 90
	webpQuality        = 90
)

// decodeImage reads any registered format (PNG, JPEG, GIF, BMP, WEBP).
func decodeImage(path string) (image.Image, string, error) {
	f, err := os.Open(path) // #nosec G304 -- staged path
	if err != nil {
		return nil, "", fmt.Errorf("%w: opening image: %v", ErrStorage, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: decoding image: %v", ErrConversion, err)
	}
	return img, format, nil
}

// encodeImage writes img to w in format. JPEG has no alpha channel, so
// transparent pixels are composited onto white first.
func encodeImage(w io.Writer, img image.Image, format ImageFormat, jpegQuality int) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, flatten(img), &jpeg.Options{Quality: jpegQuality})
	case FormatGIF:
		return gif.Encode(w, img, &gif.Options{NumColors: 256})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatWEBP:
		return webp.Encode(w, img, &webp.Options{Quality: webpQuality})
	}
	return ErrUnsupportedFormat
}

// flatten draws img over an opaque white background.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

// writeImage encodes img into a new file at path, removing it on failure.
func writeImage(path string, img image.Image, format ImageFormat, jpegQuality int) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm) // #nosec G304 -- generated name
	if err != nil {
		return fmt.Errorf("%w: creating image: %v", ErrStorage, err)
	}
	if err := encodeImage(f, img, format, jpegQuality); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("%w: encoding %s: %v", ErrConversion, format, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("%w: closing image: %v", ErrStorage, err)
	}
	return nil
}

// ConvertImage re-encodes input into format, keeping its pixel dimensions.
func (t *Toolkit) ConvertImage(ctx context.Context, input string, format ImageFormat) (string, error) {
	if format.Ext() == "" {
		return "", ErrUnsupportedFormat
	}
	if err := requireFiles(input); err != nil {
		return "", err
	}

	out := t.scratch.OutputPath(prefixConverted, format.Ext())
	err := t.pool.Do(ctx, func() error {
		img, _, err := decodeImage(input)
		if err != nil {
			return err
		}
		return writeImage(out, img, format, t.jpegQuality)
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// importExt maps the image formats pdfcpu imports natively to the extension
// it expects.
var importExt = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
}

// ImagesToPDF embeds each image on its own page, in input order.
// JPEG and PNG are imported as is; other formats are transcoded to PNG first.
func (t *Toolkit) ImagesToPDF(ctx context.Context, inputs []string) (string, error) {
	if len(inputs) == 0 {
		return "", fmt.Errorf("%w: no images", ErrTooFewFiles)
	}
	if err := requireFiles(inputs...); err != nil {
		return "", err
	}

	out := t.scratch.OutputPath(prefixImages, ".pdf")
	var workDir string
	defer func() {
		if workDir != "" {
			_ = os.RemoveAll(workDir)
		}
	}()

	err := t.pool.Do(ctx, func() error {
		importable := make([]string, 0, len(inputs))
		for i, in := range inputs {
			format, err := sniffImageFormat(in)
			if err != nil {
				return err
			}
			if importExt[format] != "" && strings.EqualFold(filepath.Ext(in), importExt[format]) {
				importable = append(importable, in)
				continue
			}

			if workDir == "" {
				if workDir, err = t.scratch.NewWorkDir(); err != nil {
					return err
				}
			}

			// pdfcpu picks the decoder from the file extension.
			if ext := importExt[format]; ext != "" {
				renamed := filepath.Join(workDir, fmt.Sprintf("%03d%s", i+1, ext))
				if err := fileutil.CopyFile(in, renamed); err != nil {
					return fmt.Errorf("%w: copying image: %v", ErrStorage, err)
				}
				importable = append(importable, renamed)
				continue
			}

			img, _, err := decodeImage(in)
			if err != nil {
				return err
			}
			pngPath := filepath.Join(workDir, fmt.Sprintf("%03d.png", i+1))
			if err := writeImage(pngPath, img, FormatPNG, t.jpegQuality); err != nil {
				return err
			}
			importable = append(importable, pngPath)
		}

		if err := api.ImportImagesFile(importable, out, pdfcpu.DefaultImportConfig(), pdfConfig()); err != nil {
			return fmt.Errorf("%w: importing images: %v", ErrConversion, err)
		}
		return nil
	})
	if err != nil {
		_ = os.Remove(out)
		return "", err
	}
	return out, nil
}

// sniffImageFormat returns the registered format name of the image at path.
func sniffImageFormat(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- staged path
	if err != nil {
		return "", fmt.Errorf("%w: opening image: %v", ErrStorage, err)
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", fmt.Errorf("%w: unrecognized image: %v", ErrConversion, err)
	}
	return format, nil
}

// PDFToImages rasterizes every page of input to a JPEG named
// <stem>_page_<n>.jpg, in page order.
func (t *Toolkit) PDFToImages(ctx context.Context, input, stem string) (*PageSet, error) {
	if err := requireFiles(input); err != nil {
		return nil, err
	}

	dir, err := t.scratch.NewWorkDir()
	if err != nil {
		return nil, err
	}

	set := &PageSet{Dir: dir}
	err = t.pool.Do(ctx, func() error {
		doc, err := fitz.New(input)
		if err != nil {
			return fmt.Errorf("%w: opening PDF: %v", ErrConversion, err)
		}
		defer doc.Close()

		for i := range doc.NumPage() {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrCanceled, err)
			}
			img, err := doc.ImageDPI(i, t.imageDPI)
			if err != nil {
				return fmt.Errorf("%w: rendering page %d: %v", ErrConversion, i+1, err)
			}
			path := filepath.Join(dir, pageFileName(stem, i+1, ".jpg"))
			if err := writeImage(path, img, FormatJPEG, t.jpegQuality); err != nil {
				return err
			}
			set.Paths = append(set.Paths, path)
		}
		return nil
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return set, nil
}
