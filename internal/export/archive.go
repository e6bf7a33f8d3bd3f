package export

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zip"
)

// ArchiveName names an attachment inside the export archive as
// <Name>_<RegNo><ext>. The extension comes from the stored blob name, or
// from its content type when the name has none.
func ArchiveName(name, regNo, storedName, contentType string) string {
	base := clean(strings.TrimSpace(name))
	if reg := clean(regNo); reg != "" {
		if base != "" {
			base += "_"
		}
		base += reg
	}
	if base == "" {
		base = "attachment"
	}
	ext := strings.ToLower(path.Ext(storedName))
	if clean(strings.TrimPrefix(ext, ".")) == "" {
		ext = ""
		if contentType != "" {
			if m := mimetype.Lookup(contentType); m != nil {
				ext = m.Extension()
			}
		}
	}
	return base + ext
}

func clean(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// Archive builds a zip file in memory. Entry names are made unique by
// suffixing -2, -3, ... before the extension.
type Archive struct {
	buf  bytes.Buffer
	zw   *zip.Writer
	seen map[string]int
	n    int
}

func NewArchive() *Archive {
	a := &Archive{seen: map[string]int{}}
	a.zw = zip.NewWriter(&a.buf)
	return a
}

// Add writes one entry and returns the name it was stored under.
func (a *Archive) Add(name string, modified time.Time, data []byte) (string, error) {
	name = a.unique(name)
	w, err := a.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return "", fmt.Errorf("zip entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("zip write %s: %w", name, err)
	}
	a.n++
	return name, nil
}

func (a *Archive) unique(name string) string {
	a.seen[name]++
	if a.seen[name] == 1 {
		return name
	}
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := a.seen[name]; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, taken := a.seen[candidate]; !taken {
			a.seen[candidate] = 1
			return candidate
		}
	}
}

// Len reports how many entries were added.
func (a *Archive) Len() int { return a.n }

// Bytes finishes the archive and returns it. The archive cannot be added to
// afterwards.
func (a *Archive) Bytes() ([]byte, error) {
	if err := a.zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return a.buf.Bytes(), nil
}
