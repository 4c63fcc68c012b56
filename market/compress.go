package market

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// decompress wraps r according to the extension of path: .xz and .lzma
// files are decoded, anything else is read as is.
func decompress(path string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		zr, err := xz.NewReader(bufio.NewReader(r))
		if err != nil {
			return nil, err
		}
		return zr, nil
	case ".lzma":
		zr, err := lzma.NewReader(bufio.NewReader(r))
		if err != nil {
			return nil, err
		}
		return zr, nil
	}
	return r, nil
}
