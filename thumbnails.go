package spindrift

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ThumbnailDir is the output sub-directory holding generated thumbnails.
const ThumbnailDir = "thumbs"

const thumbnailQuality = 80

// makeThumbnail decodes an image from src, scales it down to at most width
// pixels wide and encodes it as JPEG. Narrower images are re-encoded as is.
func makeThumbnail(src io.Reader, width int) ([]byte, image.Point, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, image.Point{}, errors.Wrap(err, "decode image")
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > width {
		newH := h * width / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = width, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, image.Point{}, errors.Wrap(err, "encode jpeg")
	}
	return buf.Bytes(), image.Pt(w, h), nil
}

// localImagePath resolves a droplet image src against the droplet's own
// directory. Remote sources report false.
func localImagePath(d *Droplet) (string, bool) {
	if d.Image == nil || d.Image.Src == "" {
		return "", false
	}
	if u, err := url.Parse(d.Image.Src); err == nil && u.Scheme != "" {
		return "", false
	}
	if filepath.IsAbs(d.Image.Src) {
		return d.Image.Src, true
	}
	return filepath.Join(filepath.Dir(d.Source()), filepath.FromSlash(d.Image.Src)), true
}

// writeThumbnail writes a thumbnail of the droplet image into outputDir and
// returns its slash-separated path relative to outputDir. It returns an
// empty path when the droplet has no local image.
func writeThumbnail(outputDir string, width int, d *Droplet) (string, error) {
	src, ok := localImagePath(d)
	if !ok {
		return "", nil
	}
	f, err := os.Open(src)
	if err != nil {
		return "", newPathError(src, err)
	}
	defer f.Close()

	data, _, err := makeThumbnail(f, width)
	if err != nil {
		return "", err
	}
	name := strings.TrimSuffix(d.FileName(), ".html") + ".jpg"
	dir := filepath.Join(outputDir, ThumbnailDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create thumbnail dir")
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", errors.Wrap(err, "write thumbnail")
	}
	return path.Join(ThumbnailDir, name), nil
}
