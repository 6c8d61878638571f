package u

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// Compression is a compression format, picked by file extension
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionZstd
	CompressionBrotli
)

var (
	// ErrCompressionNotSupported is returned when writing bzip2
	ErrCompressionNotSupported = errors.New("compression not supported for writing")
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionZstd:
		return "zstd"
	case CompressionBrotli:
		return "brotli"
	}
	return "none"
}

// CompressionFromPath returns compression based on file extension
// TODO: could sniff file content instead of checking file extension
func CompressionFromPath(path string) Compression {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gz":
		return CompressionGzip
	case ".bz2":
		return CompressionBzip2
	case ".zst", ".zstd":
		return CompressionZstd
	case ".br":
		return CompressionBrotli
	}
	return CompressionNone
}

// implement io.ReadCloser over os.File wrapped with io.Reader.
// io.Closer goes to os.File, io.Reader goes to wrapping reader
type readerWrappedFile struct {
	f *os.File
	r io.Reader
	// optional, for readers that need to release resources
	onClose func()
}

func (rc *readerWrappedFile) Close() error {
	if rc.onClose != nil {
		rc.onClose()
	}
	return rc.f.Close()
}

func (rc *readerWrappedFile) Read(p []byte) (int, error) {
	return rc.r.Read(p)
}

// OpenFileMaybeCompressed opens a file that might be compressed with gzip,
// bzip2, zstd or brotli
func OpenFileMaybeCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc := &readerWrappedFile{f: f}
	switch CompressionFromPath(path) {
	case CompressionGzip:
		rc.r, err = gzip.NewReader(f)
	case CompressionBzip2:
		rc.r = bzip2.NewReader(f)
	case CompressionZstd:
		var zr *zstd.Decoder
		zr, err = zstd.NewReader(f)
		if err == nil {
			rc.r = zr
			rc.onClose = zr.Close
		}
	case CompressionBrotli:
		rc.r = brotli.NewReader(f)
	default:
		return f, nil
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return rc, nil
}

// ReadFileMaybeCompressed reads a file, decompressing based on extension
func ReadFileMaybeCompressed(path string) ([]byte, error) {
	r, err := OpenFileMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func getErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func zstdNewWriter(dst io.Writer) (*zstd.Encoder, error) {
	// zstd.SpeedBestCompression is much slower and not much better
	return zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

// CompressData compresses d. CompressionNone returns d as is.
func CompressData(d []byte, c Compression) ([]byte, error) {
	var dst bytes.Buffer
	var w io.WriteCloser
	var err error
	switch c {
	case CompressionNone:
		return d, nil
	case CompressionGzip:
		w, err = gzip.NewWriterLevel(&dst, gzip.BestCompression)
	case CompressionZstd:
		w, err = zstdNewWriter(&dst)
	case CompressionBrotli:
		w = brotli.NewWriterLevel(&dst, brotli.BestCompression)
	default:
		return nil, ErrCompressionNotSupported
	}
	if err != nil {
		return nil, err
	}
	_, err = w.Write(d)
	err2 := w.Close()
	if err = getErr(err, err2); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}
