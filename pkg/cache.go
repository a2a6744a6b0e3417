package blockdupes

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// blockDigest is the cached result for one block: the digest of the
// zero-padded block and the number of real bytes it held
type blockDigest struct {
	digest Digest
	n      int
}

// blockHashCache is the lazily built, append-only digest sequence of one candidate
type blockHashCache struct {
	id       int
	path     string
	blocks   []blockDigest
	offset   int64 // bytes consumed so far
	complete bool  // end of file observed; len(blocks) is the block count
	err      error // sticky read failure
}

func newBlockHashCache(id int, path string) *blockHashCache {
	return &blockHashCache{id: id, path: path}
}

// Len returns the number of blocks hashed so far
func (c *blockHashCache) Len() int {
	return len(c.blocks)
}

// fileTable holds the open readers of partially hashed candidates.
// Least recently used readers are closed when the table is full and
// reopened at their cached offset on next demand.
type fileTable struct {
	readers   *lru.Cache[int, *blockReader]
	blockSize int
}

func newFileTable(maxOpen, blockSize int) (*fileTable, error) {
	if maxOpen < 2 {
		maxOpen = 2
	}
	readers, err := lru.NewWithEvict[int, *blockReader](maxOpen, func(_ int, r *blockReader) {
		r.Close()
	})
	if err != nil {
		return nil, err
	}
	return &fileTable{readers: readers, blockSize: blockSize}, nil
}

// reader returns an open reader for c positioned at its next unhashed block
func (ft *fileTable) reader(c *blockHashCache) (*blockReader, error) {
	if r, ok := ft.readers.Get(c.id); ok {
		if r.offset == c.offset {
			return r, nil
		}
		ft.readers.Remove(c.id)
	}

	if IsDebugEnabled(DebugCache) {
		VerboseLog(3, "fileTable: opening %s at offset %d", c.path, c.offset)
	}
	r, err := openBlockReader(c.path, ft.blockSize, c.offset)
	if err != nil {
		return nil, err
	}
	ft.readers.Add(c.id, r)
	return r, nil
}

// release closes the reader of candidate id, if open
func (ft *fileTable) release(id int) {
	ft.readers.Remove(id)
}

// Close closes every open reader
func (ft *fileTable) Close() {
	ft.readers.Purge()
}

// block returns block i of c, hashing it if it has not been demanded before.
// ok is false when the file has fewer than i+1 blocks.
func (ft *fileTable) block(c *blockHashCache, i int, algorithm HashAlgorithm, stats *Stats) (blockDigest, bool, error) {
	for len(c.blocks) <= i {
		if c.complete {
			return blockDigest{}, false, nil
		}
		if c.err != nil {
			return blockDigest{}, false, c.err
		}

		r, err := ft.reader(c)
		if err != nil {
			c.err = comparisonError(err, c.path)
			return blockDigest{}, false, c.err
		}

		buf, n, err := r.next()
		if err != nil {
			ft.release(c.id)
			c.err = comparisonError(err, c.path)
			return blockDigest{}, false, c.err
		}
		if n == 0 {
			c.complete = true
			ft.release(c.id)
			continue
		}

		c.blocks = append(c.blocks, blockDigest{digest: algorithm.Digest(buf), n: n})
		c.offset += int64(n)
		stats.BlocksHashed++
		stats.BytesRead += int64(n)
	}
	return c.blocks[i], true, nil
}
