package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTextRendering(t *testing.T) {
	ts := time.Date(2023, 7, 15, 10, 4, 5, 0, time.Local)
	r := Record{"/data/a", "1.txt", int64(42), ts, []byte{0xde, 0xad}, nil, 1.5}

	assert.Equal(t, []string{"/data/a", "1.txt", "42", "2023-07-15 10:04:05", "dead", "", "1.5"}, r.Text())
	assert.Equal(t, "/data/a", r.Path())
	assert.Equal(t, "1.txt", r.Filename())
	assert.Len(t, r.Payload(), 5)
}

func TestFormatStoreKeepsBlobsAndFormatsTimes(t *testing.T) {
	ts := time.Date(2023, 7, 15, 10, 4, 5, 0, time.Local)
	assert.Equal(t, "2023-07-15 10:04:05", FormatStore(ts))
	assert.Equal(t, []byte{1, 2}, FormatStore([]byte{1, 2}))
	assert.Equal(t, int64(7), FormatStore(7))
	assert.Nil(t, FormatStore((*time.Time)(nil)))
	assert.Nil(t, FormatStore(nil))
}
