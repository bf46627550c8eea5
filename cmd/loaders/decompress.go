package loaders

import (
	"compress/gzip"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// decompressReader unwraps one compression layer based on the file
// name suffix and returns the plain reader together with the name with
// the compression suffix stripped. Uncompressed inputs pass through.
func decompressReader(r io.Reader, name string) (io.ReadCloser, string, error) {
	lower := strings.ToLower(name)

	switch {
	case strings.HasSuffix(lower, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, "", err
		}
		return gz, name[:len(name)-len(".gz")], nil
	case strings.HasSuffix(lower, ".zst"):
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, "", err
		}
		return decoder.IOReadCloser(), name[:len(name)-len(".zst")], nil
	default:
		return io.NopCloser(r), name, nil
	}
}
