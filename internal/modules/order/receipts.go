package order

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Receipts stores uploaded receipt images on local disk under the media
// directory, the same way the storefront serves product images.
type Receipts struct {
	dir string
}

func NewReceipts(mediaDir string) *Receipts {
	return &Receipts{dir: mediaDir}
}

var allowedReceiptExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Save writes the uploaded image and returns its media-relative path.
func (r *Receipts) Save(code, filename string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedReceiptExt[ext] {
		return "", fmt.Errorf("invalid receipt: unsupported image type %q", ext)
	}

	rel := filepath.Join("receipts", fmt.Sprintf("%s-%d%s", NormalizeCode(code), time.Now().UnixNano(), ext))
	abs := filepath.Join(r.dir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(abs)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(abs)
		return "", err
	}
	return rel, nil
}
