// Package extract holds the metadata profiles applied to every matched file.
// A profile fixes the column list and turns a file into a record.Record.
package extract

import (
	"crypto/md5"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/eargollo/filelist/internal/media"
	"github.com/eargollo/filelist/internal/record"
)

// DefaultProfile is used when none is configured.
const DefaultProfile = "info"

var baseColumns = []record.Column{
	{Name: "path", Type: record.TypeText},
	{Name: "filename", Type: record.TypeText},
}

var infoColumns = []record.Column{
	{Name: "size", Type: record.TypeInteger},
	{Name: "ctime", Type: record.TypeTime},
	{Name: "wtime", Type: record.TypeTime},
}

// Profile describes one kind of file listing.
type Profile struct {
	Name        string
	Description string
	// DefaultPattern applies when the user gives no pattern.
	DefaultPattern string

	payload []record.Column
	extract func(path string, info fs.FileInfo) ([]any, error)
}

// Columns returns the full column list, path and filename first.
func (p Profile) Columns() []record.Column {
	cols := make([]record.Column, 0, len(baseColumns)+len(p.payload))
	cols = append(cols, baseColumns...)
	return append(cols, p.payload...)
}

// Record builds the record for the file at path. Extraction failures do not
// drop the file: size becomes -1 and every other payload value nil.
func (p Profile) Record(path string, info fs.FileInfo) record.Record {
	rec := make(record.Record, 0, len(baseColumns)+len(p.payload))
	rec = append(rec, filepath.Dir(path), filepath.Base(path))
	if len(p.payload) == 0 {
		return rec
	}

	vals, err := p.extract(path, info)
	if err != nil || len(vals) != len(p.payload) {
		vals = make([]any, len(p.payload))
		vals[0] = int64(-1)
	}
	return append(rec, vals...)
}

var profiles = map[string]Profile{
	"list": {
		Name:           "list",
		Description:    "path and file name only",
		DefaultPattern: "*.*",
	},
	"info": {
		Name:           "info",
		Description:    "size, creation and last write time",
		DefaultPattern: "*.*",
		payload:        infoColumns,
		extract:        extractInfo,
	},
	"sha256": hashProfile("sha256", func() (hash.Hash, error) { return sha256.New(), nil }),
	"md5":    hashProfile("md5", func() (hash.Hash, error) { return md5.New(), nil }),
	"blake2b": hashProfile("blake2b", func() (hash.Hash, error) {
		return blake2b.New256(nil)
	}),
	"image": {
		Name:           "image",
		Description:    "file info plus pixel dimensions, capture time and camera",
		DefaultPattern: "*.jpg",
		payload: append(append([]record.Column(nil), infoColumns...),
			record.Column{Name: "width", Type: record.TypeInteger},
			record.Column{Name: "height", Type: record.TypeInteger},
			record.Column{Name: "taken", Type: record.TypeTime},
			record.Column{Name: "camera", Type: record.TypeText},
		),
		extract: extractImage,
	},
	"audio": {
		Name:           "audio",
		Description:    "file info plus format, artist, album, track, title and year tags",
		DefaultPattern: "*.mp3",
		payload: append(append([]record.Column(nil), infoColumns...),
			record.Column{Name: "format", Type: record.TypeText},
			record.Column{Name: "artist", Type: record.TypeText},
			record.Column{Name: "album", Type: record.TypeText},
			record.Column{Name: "track", Type: record.TypeInteger},
			record.Column{Name: "title", Type: record.TypeText},
			record.Column{Name: "year", Type: record.TypeInteger},
		),
		extract: extractAudio,
	},
	"video": {
		Name:           "video",
		Description:    "file info plus format, artist, title and year tags",
		DefaultPattern: "*.mp4",
		payload: append(append([]record.Column(nil), infoColumns...),
			record.Column{Name: "format", Type: record.TypeText},
			record.Column{Name: "artist", Type: record.TypeText},
			record.Column{Name: "title", Type: record.TypeText},
			record.Column{Name: "year", Type: record.TypeInteger},
		),
		extract: extractVideo,
	},
}

// Lookup returns the named profile.
func Lookup(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (available: %v)", name, Names())
	}
	return p, nil
}

// Names lists the registered profiles in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func extractInfo(path string, info fs.FileInfo) ([]any, error) {
	if info == nil {
		var err error
		if info, err = os.Stat(path); err != nil {
			return nil, err
		}
	}
	return []any{info.Size(), changeTime(info), info.ModTime()}, nil
}

func hashProfile(name string, newHash func() (hash.Hash, error)) Profile {
	return Profile{
		Name:           name,
		Description:    "file info plus " + name + " digest of the content",
		DefaultPattern: "*.*",
		payload: append(append([]record.Column(nil), infoColumns...),
			record.Column{Name: "hash", Type: record.TypeBlob}),
		extract: func(path string, info fs.FileInfo) ([]any, error) {
			vals, err := extractInfo(path, info)
			if err != nil {
				return nil, err
			}
			sum, err := digest(path, newHash)
			if err != nil {
				return nil, err
			}
			return append(vals, sum), nil
		},
	}
}

const hashBlockSize = 64 * 1024

// digest streams the file through a fresh hash.
func digest(path string, newHash func() (hash.Hash, error)) ([]byte, error) {
	h, err := newHash()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, hashBlockSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return nil, fmt.Errorf("hash %q: %w", path, err)
	}
	return h.Sum(nil), nil
}

func extractImage(path string, info fs.FileInfo) ([]any, error) {
	vals, err := extractInfo(path, info)
	if err != nil {
		return nil, err
	}
	if media.Detect(path) != media.FileTypeImage {
		return append(vals, nil, nil, nil, nil), nil
	}
	meta, err := media.ExtractImageMeta(path)
	if err != nil {
		return nil, err
	}
	var taken any
	if meta.TakenAt != nil {
		taken = *meta.TakenAt
	}
	return append(vals, int64(meta.Width), int64(meta.Height), taken, textOrNil(meta.Camera)), nil
}

func extractAudio(path string, info fs.FileInfo) ([]any, error) {
	vals, meta, ok, err := extractTags(path, info, media.FileTypeAudio)
	if err != nil {
		return nil, err
	}
	if !ok {
		return append(vals, nil, nil, nil, nil, nil, nil), nil
	}
	return append(vals, textOrNil(meta.Format), textOrNil(meta.Artist), textOrNil(meta.Album),
		intOrNil(meta.Track), textOrNil(meta.Title), intOrNil(meta.Year)), nil
}

func extractVideo(path string, info fs.FileInfo) ([]any, error) {
	vals, meta, ok, err := extractTags(path, info, media.FileTypeVideo)
	if err != nil {
		return nil, err
	}
	if !ok {
		return append(vals, nil, nil, nil, nil), nil
	}
	return append(vals, textOrNil(meta.Format), textOrNil(meta.Artist),
		textOrNil(meta.Title), intOrNil(meta.Year)), nil
}

// extractTags returns the info values and, for files of the wanted type
// that carry tags, their tags. ok is false when the tag columns stay empty.
func extractTags(path string, info fs.FileInfo, want media.FileType) (vals []any, meta media.TagMeta, ok bool, err error) {
	if vals, err = extractInfo(path, info); err != nil {
		return nil, meta, false, err
	}
	if media.Detect(path) != want {
		return vals, meta, false, nil
	}
	meta, err = media.ExtractTags(path)
	if errors.Is(err, media.ErrNoTags) {
		return vals, meta, false, nil
	}
	if err != nil {
		return nil, meta, false, err
	}
	return vals, meta, true, nil
}

func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func intOrNil(n int) any {
	if n == 0 {
		return nil
	}
	return int64(n)
}
