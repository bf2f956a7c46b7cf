package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/image/draw"
)

const (
	jpegQuality    = 82
	maxUploadSize  = 10 << 20 // 10MB
	maxImagePixels = 40_000_000
)

// MediaFolders are the top-level folders uploads are filed under.
var MediaFolders = []string{"posts", "projects", "authors", "docs"}

var (
	ErrUploadTooLarge = errors.New("file too large (max 10MB)")
	ErrUploadEmpty    = errors.New("empty file")
	ErrImageTooLarge  = errors.New("image dimensions too large")
)

// Bucket is the object store for uploaded media. Objects are addressed by
// slash-separated keys such as "posts/1700000000000-cover.jpg".
type Bucket struct {
	fs afero.Fs
}

// NewBucket returns a Bucket rooted at dir on the local disk.
func NewBucket(dir string) (*Bucket, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Bucket{fs: afero.NewBasePathFs(afero.NewOsFs(), dir)}, nil
}

// NewMemBucket returns an in-memory Bucket.
func NewMemBucket() *Bucket {
	return &Bucket{fs: afero.NewMemMapFs()}
}

func cleanKey(key string) (string, error) {
	k := path.Clean("/" + key)
	if k == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return k, nil
}

// Put writes r under key, creating parent folders.
func (b *Bucket) Put(key string, r io.Reader) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := b.fs.MkdirAll(path.Dir(k), 0o755); err != nil {
		return err
	}
	return afero.WriteReader(b.fs, k, r)
}

// Exists reports whether key is present.
func (b *Bucket) Exists(key string) bool {
	k, err := cleanKey(key)
	if err != nil {
		return false
	}
	ok, _ := afero.Exists(b.fs, k)
	return ok
}

// Read returns the contents of key.
func (b *Bucket) Read(key string) ([]byte, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	return afero.ReadFile(b.fs, k)
}

// Remove deletes key. A missing object is not an error.
func (b *Bucket) Remove(key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := b.fs.Remove(k); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Handler serves objects over HTTP. Directory listings are not exposed.
func (b *Bucket) Handler() http.Handler {
	files := http.FileServer(afero.NewHttpFs(b.fs).Dir("/"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		// Uploaded files are served from the site origin; keep them inert.
		w.Header().Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; style-src 'unsafe-inline'; sandbox")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

// processImage decodes an image, scales it down to maxWidth when wider,
// and re-encodes it as JPEG. Images over maxImagePixels are rejected before
// the pixel data is decoded.
func processImage(data []byte, maxWidth int) ([]byte, int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, 0, 0, ErrImageTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if maxWidth > 0 && w > maxWidth {
		newH := h * maxWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := path.Ext(name)
	base := Slugify(strings.TrimSuffix(name, ext))
	if base == "" {
		base = "file"
	}
	return base
}

func isImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif":
		return true
	}
	return false
}

// Uploader stores uploaded files in the bucket and records them in the store.
type Uploader struct {
	Bucket   *Bucket
	Store    *Store
	MaxWidth int
	now      func() int64
}

// Upload stores fh under folder. Images are resized and converted to JPEG;
// anything else is kept as-is. Keys are <folder>/<unix millis>-<slug>.<ext>.
func (u *Uploader) Upload(ctx context.Context, folder string, fh *multipart.FileHeader) (Media, error) {
	if fh.Size > maxUploadSize {
		return Media{}, ErrUploadTooLarge
	}
	if fh.Size == 0 {
		return Media{}, ErrUploadEmpty
	}
	if !validFolder(folder) {
		folder = MediaFolders[0]
	}
	f, err := fh.Open()
	if err != nil {
		return Media{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		return Media{}, err
	}
	if len(data) > maxUploadSize {
		return Media{}, ErrUploadTooLarge
	}

	m := Media{OriginalName: fh.Filename, ContentType: http.DetectContentType(data)}
	ext := strings.ToLower(path.Ext(fh.Filename))
	if isImageType(m.ContentType) {
		out, w, h, err := processImage(data, u.MaxWidth)
		if err != nil {
			return Media{}, err
		}
		data, m.Width, m.Height = out, w, h
		m.ContentType = "image/jpeg"
		ext = ".jpg"
	}
	m.Size = int64(len(data))
	m.Path = u.uniqueKey(folder, slugifyFilename(fh.Filename), ext)

	if err := u.Bucket.Put(m.Path, bytes.NewReader(data)); err != nil {
		return Media{}, fmt.Errorf("write media: %w", err)
	}
	if err := u.Store.SaveMedia(ctx, &m); err != nil {
		_ = u.Bucket.Remove(m.Path)
		return Media{}, err
	}
	return m, nil
}

// uniqueKey appends a counter if the key is already taken.
func (u *Uploader) uniqueKey(folder, base, ext string) string {
	stamp := time.Now().UnixMilli()
	if u.now != nil {
		stamp = u.now()
	}
	candidate := fmt.Sprintf("%s/%d-%s%s", folder, stamp, base, ext)
	for counter := 2; u.Bucket.Exists(candidate); counter++ {
		candidate = fmt.Sprintf("%s/%d-%s-%d%s", folder, stamp, base, counter, ext)
	}
	return candidate
}

// Delete removes the object and its metadata.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	if err := u.Bucket.Remove(key); err != nil {
		return err
	}
	return u.Store.DeleteMedia(ctx, key)
}

func validFolder(folder string) bool {
	for _, f := range MediaFolders {
		if f == folder {
			return true
		}
	}
	return false
}
