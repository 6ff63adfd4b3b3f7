// Package archive turns downloaded product bytes into plain product files.
//
// Archives publish products as Unix compress (.Z) or gzip streams, and station
// observations additionally as Compact RINEX. Decompress peels every layer it
// recognises and passes anything else through unchanged.
package archive

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"

	"github.com/mholt/archives"

	"github.com/glorpus-work/gnssget/pkg/errors"
)

var (
	// ErrUnsupportedFormat reports a recognised format this package cannot expand.
	ErrUnsupportedFormat = stderrors.New("unsupported format")
	// ErrCorrupt reports a stream that does not decode.
	ErrCorrupt = stderrors.New("corrupt input")
)

// Decompress returns the plain content of raw. name is only used as a format
// hint; content sniffing takes precedence where the format has a signature.
func Decompress(ctx context.Context, name string, raw []byte) ([]byte, error) {
	data, err := decompressStream(ctx, name, raw)
	if err != nil {
		return nil, err
	}
	if isCRINEX(data) {
		return decodeCRINEX(data)
	}
	return data, nil
}

func decompressStream(ctx context.Context, name string, raw []byte) ([]byte, error) {
	if isUnixCompress(raw) {
		return unlzw(raw)
	}

	format, stream, err := archives.Identify(ctx, name, bytes.NewReader(raw))
	if stderrors.Is(err, archives.NoMatch) {
		return raw, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to identify compression format")
	}

	dec, ok := format.(archives.Decompressor)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s is not a single-stream compression", format.Extension())
	}

	rc, err := dec.OpenReader(stream)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "failed to open %s stream: %v", format.Extension(), err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "failed to read %s stream: %v", format.Extension(), err)
	}
	return data, nil
}
