package analyzer

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// LoadImage reads a screenshot from disk. The MIME type comes from the file
// extension, or from sniffing the content when the extension is unknown.
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read screenshot: %w", err)
	}
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mt == "" {
		mt = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if !strings.HasPrefix(mt, "image/") {
		return Image{}, fmt.Errorf("%s is not an image (%s)", filepath.Base(path), mt)
	}
	return Image{Name: filepath.Base(path), MIMEType: mt, Data: data}, nil
}

// LoadImages loads every path, failing on the first unreadable one.
func LoadImages(paths []string) ([]Image, error) {
	out := make([]Image, 0, len(paths))
	for _, p := range paths {
		img, err := LoadImage(p)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}
