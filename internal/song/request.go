package song

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode"
)

const maxTitleKeyRunes = 100

// Blob is an uploaded file.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string // optional, only its extension is used
}

// PublishRequest carries everything needed to publish one song.
type PublishRequest struct {
	OwnerID string
	Title   string
	Author  string
	Audio   Blob
	Image   Blob
}

func (r PublishRequest) normalized() PublishRequest {
	r.OwnerID = strings.TrimSpace(r.OwnerID)
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.Audio = r.Audio.normalized()
	r.Image = r.Image.normalized()
	return r
}

func (b Blob) normalized() Blob {
	b.ContentType = strings.ToLower(strings.TrimSpace(b.ContentType))
	if b.ContentType == "" && len(b.Data) > 0 {
		b.ContentType = http.DetectContentType(b.Data)
	}
	return b
}

// validate reports every missing field at once.
func (r PublishRequest) validate() error {
	var missing []string
	if r.OwnerID == "" {
		missing = append(missing, "owner")
	}
	if r.Title == "" {
		missing = append(missing, "title")
	}
	if r.Author == "" {
		missing = append(missing, "author")
	}
	if len(r.Audio.Data) == 0 || r.Audio.ContentType == "" {
		missing = append(missing, "song")
	}
	if len(r.Image.Data) == 0 || r.Image.ContentType == "" {
		missing = append(missing, "image")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// objectKey builds "<kind>-<title>-<attemptID><ext>". ext is the upload's lowercased
// file extension (".mp3", ".png") when it looks sane, and is empty otherwise, so a key
// may end at the attempt id.
func objectKey(kind, title, attemptID, filename string) string {
	return fmt.Sprintf("%s-%s-%s%s", kind, keySafeTitle(title), attemptID, keyExt(filename))
}

// keySafeTitle keeps the title readable but strips separators and control characters
// so it cannot change the key's path.
func keySafeTitle(title string) string {
	runes := []rune(title)
	if len(runes) > maxTitleKeyRunes {
		runes = runes[:maxTitleKeyRunes]
	}
	for i, r := range runes {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			runes[i] = '_'
		}
	}
	return string(runes)
}

func keyExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
