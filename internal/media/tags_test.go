package media

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// id3v23 builds an ID3v2.3 tag with ISO-8859-1 text frames, zero padding and
// a short fake audio body.
func id3v23(frames map[string]string) []byte {
	var body bytes.Buffer
	for _, id := range []string{"TIT2", "TPE1", "TALB", "TRCK", "TYER"} {
		text, ok := frames[id]
		if !ok {
			continue
		}
		body.WriteString(id)
		binary.Write(&body, binary.BigEndian, uint32(len(text)+1))
		body.Write([]byte{0, 0, 0})
		body.WriteString(text)
	}
	body.Write(make([]byte, 32))

	size := body.Len()
	var out bytes.Buffer
	out.WriteString("ID3")
	out.Write([]byte{3, 0, 0,
		byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)})
	out.Write(body.Bytes())
	out.Write(bytes.Repeat([]byte{0xff, 0xfb, 0x90, 0x00}, 64))
	return out.Bytes()
}

func TestExtractTagsReadsID3(t *testing.T) {
	p := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(p, id3v23(map[string]string{
		"TIT2": "Blue Line",
		"TPE1": "The Examples",
		"TALB": "Fixtures",
		"TRCK": "3/12",
		"TYER": "1999",
	}), 0o644))

	meta, err := ExtractTags(p)
	require.NoError(t, err)
	assert.Equal(t, TagMeta{
		Format: "MP3",
		Artist: "The Examples",
		Album:  "Fixtures",
		Title:  "Blue Line",
		Track:  3,
		Year:   1999,
	}, meta)
}

func TestExtractTagsWithoutTags(t *testing.T) {
	p := filepath.Join(t.TempDir(), "raw.mp3")
	require.NoError(t, os.WriteFile(p, bytes.Repeat([]byte{0x55}, 512), 0o644))

	_, err := ExtractTags(p)
	assert.ErrorIs(t, err, ErrNoTags)
}

func TestExtractTagsMissingFile(t *testing.T) {
	_, err := ExtractTags(filepath.Join(t.TempDir(), "gone.mp3"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
