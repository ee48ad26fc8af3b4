package media

import (
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned for files whose header no registered decoder accepts.
var ErrNotImage = errors.New("not a decodable image")

// ImageMeta holds the image attributes recorded by the image profile.
type ImageMeta struct {
	Width   int
	Height  int
	TakenAt *time.Time
	Camera  string
}

// ExtractImageMeta reads pixel dimensions and, when present, the EXIF
// capture time and camera of the image at path. A missing EXIF block is not
// an error; an unreadable or undecodable header is.
func ExtractImageMeta(path string) (ImageMeta, error) {
	var meta ImageMeta

	f, err := os.Open(path)
	if err != nil {
		return meta, err
	}
	defer f.Close()

	// Header only, no full decode.
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return meta, ErrNotImage
	}
	meta.Width = cfg.Width
	meta.Height = cfg.Height

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return meta, nil
	}
	x, err := exif.Decode(f)
	if err != nil {
		return meta, nil
	}

	if t, err := x.DateTime(); err == nil {
		meta.TakenAt = &t
	}
	meta.Camera = strings.TrimSpace(strings.Join(nonEmpty(
		exifString(x, exif.Make),
		exifString(x, exif.Model),
	), " "))

	return meta, nil
}

func exifString(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func nonEmpty(vals ...string) []string {
	out := vals[:0]
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
