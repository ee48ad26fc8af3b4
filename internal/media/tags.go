package media

import (
	"errors"
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// ErrNoTags is returned for files without a tag block the reader knows.
var ErrNoTags = errors.New("no readable tags")

// TagMeta holds the audio/video tags recorded by the audio and video
// profiles. Zero values mean the tag is absent.
type TagMeta struct {
	// Format is the container type (MP3, M4A, FLAC, ...) or, when the
	// container is not recognised, the tag format (ID3v2.3, MP4, ...).
	Format string
	Artist string
	Album  string
	Title  string
	Track  int
	Year   int
}

// ExtractTags reads ID3, MP4, FLAC or Ogg tags from the file at path.
func ExtractTags(path string) (TagMeta, error) {
	var meta TagMeta

	f, err := os.Open(path)
	if err != nil {
		return meta, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return meta, ErrNoTags
	}
	if err != nil {
		return meta, err
	}

	meta.Format = string(m.FileType())
	if meta.Format == "" {
		meta.Format = string(m.Format())
	}
	meta.Artist = strings.TrimSpace(m.Artist())
	meta.Album = strings.TrimSpace(m.Album())
	meta.Title = strings.TrimSpace(m.Title())
	meta.Track, _ = m.Track()
	meta.Year = m.Year()
	return meta, nil
}
