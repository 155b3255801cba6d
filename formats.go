package doctoolkit

import (
	"path/filepath"
	"strings"
)

// Kind names a family of accepted uploads.
type Kind int

const (
	KindWord Kind = iota
	KindExcel
	KindPowerPoint
	KindText
	KindMarkdown
	KindHTML
	KindPDF
	KindImage
)

var kindExtensions = map[Kind][]string{
	KindWord:       {".doc", ".docx"},
	KindExcel:      {".xls", ".xlsx"},
	KindPowerPoint: {".ppt", ".pptx"},
	KindText:       {".txt"},
	KindMarkdown:   {".md", ".markdown"},
	KindHTML:       {".html", ".htm"},
	KindPDF:        {".pdf"},
	KindImage:      {".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"},
}

var kindNames = map[Kind]string{
	KindWord:       "Word document",
	KindExcel:      "Excel workbook",
	KindPowerPoint: "PowerPoint presentation",
	KindText:       "text file",
	KindMarkdown:   "Markdown file",
	KindHTML:       "HTML file",
	KindPDF:        "PDF",
	KindImage:      "image",
}

// Extensions returns the accepted extensions, lower case with a leading dot.
func (k Kind) Extensions() []string {
	return append([]string(nil), kindExtensions[k]...)
}

func (k Kind) String() string {
	return kindNames[k]
}

// Allows reports whether an upload with this declared name and content type
// belongs to the kind. Extensions compare case-insensitively. Images are also
// accepted on an image/* content type alone.
func (k Kind) Allows(filename, contentType string) bool {
	if k == KindImage && strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range kindExtensions[k] {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ImageFormat is a target format for image conversion.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "PNG"
	FormatJPEG ImageFormat = "JPEG"
	FormatWEBP ImageFormat = "WEBP"
	FormatBMP  ImageFormat = "BMP"
	FormatGIF  ImageFormat = "GIF"
)

var imageFormats = map[ImageFormat]struct {
	ext         string
	contentType string
}{
	FormatPNG:  {".png", "image/png"},
	FormatJPEG: {".jpeg", "image/jpeg"},
	FormatWEBP: {".webp", "image/webp"},
	FormatBMP:  {".bmp", "image/bmp"},
	FormatGIF:  {".gif", "image/gif"},
}

// ParseImageFormat parses a format name case-insensitively. "JPG" is
// accepted as JPEG and an empty name selects PNG.
func ParseImageFormat(s string) (ImageFormat, error) {
	f := ImageFormat(strings.ToUpper(strings.TrimSpace(s)))
	switch f {
	case "":
		return FormatPNG, nil
	case "JPG":
		return FormatJPEG, nil
	}
	if _, ok := imageFormats[f]; !ok {
		return "", ErrUnsupportedFormat
	}
	return f, nil
}

// Ext returns the file extension for the format, with a leading dot.
func (f ImageFormat) Ext() string {
	return imageFormats[f].ext
}

// ContentType returns the MIME type for the format.
func (f ImageFormat) ContentType() string {
	return imageFormats[f].contentType
}
