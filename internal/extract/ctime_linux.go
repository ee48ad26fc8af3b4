//go:build linux

package extract

import (
	"io/fs"
	"syscall"
	"time"
)

// changeTime returns the inode change time, falling back to the mtime.
func changeTime(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Unix())
	}
	return info.ModTime()
}
