package blockdupes

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// blockReader reads a file one fixed-size block at a time into a buffer it owns
type blockReader struct {
	file   *os.File
	buf    []byte
	offset int64 // offset of the next unread block
}

// openBlockReader opens path positioned at offset, hinting sequential access
func openBlockReader(path string, blockSize int, offset int64) (*blockReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	// Advisory only; not all filesystems support it
	_ = unix.Fadvise(int(file.Fd()), offset, 0, unix.FADV_SEQUENTIAL)

	if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &blockReader{
		file:   file,
		buf:    make([]byte, blockSize),
		offset: offset,
	}, nil
}

// next reads the next block. It returns the block zero-padded to the full
// block size and the number of bytes actually read. n == 0 with a nil error
// means end of file.
func (br *blockReader) next() ([]byte, int, error) {
	n, err := io.ReadFull(br.file, br.buf)
	switch err {
	case nil:
	case io.EOF:
		return nil, 0, nil
	case io.ErrUnexpectedEOF:
		clear(br.buf[n:])
	default:
		return nil, 0, err
	}

	br.offset += int64(n)
	return br.buf, n, nil
}

func (br *blockReader) Close() error {
	return br.file.Close()
}
