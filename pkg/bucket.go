package blockdupes

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// bucketResult is the output of one detection run over a bucket
type bucketResult struct {
	sets  []keptSet
	stats Stats
	err   error
}

// bucketBySize groups candidate positions by file size. Buckets are ordered
// by the position of their first member and members keep candidate order.
func bucketBySize(candidates []Candidate) [][]int {
	bySize := make(map[int64]int)
	var buckets [][]int
	for pos, c := range candidates {
		idx, ok := bySize[c.Size]
		if !ok {
			idx = len(buckets)
			bySize[c.Size] = idx
			buckets = append(buckets, nil)
		}
		buckets[idx] = append(buckets[idx], pos)
	}
	return buckets
}

// runBuckets detects duplicates in every bucket, on a goroutine pool when
// more than one worker is configured. Singleton buckets need no I/O.
func (d *Detector) runBuckets(ctx context.Context, candidates []Candidate, buckets [][]int) ([]bucketResult, error) {
	results := make([]bucketResult, len(buckets))

	workers := d.opts.Workers
	if workers > len(buckets) {
		workers = len(buckets)
	}

	if workers <= 1 {
		for i, members := range buckets {
			results[i] = d.runBucket(ctx, candidates, members, d.opts.MaxOpenFiles)
			if results[i].err != nil {
				return results[:i+1], results[i].err
			}
		}
		return results, nil
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	maxOpen := d.opts.MaxOpenFiles / workers
	var wg sync.WaitGroup
	for i, members := range buckets {
		i, members := i, members
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = d.runBucket(ctx, candidates, members, maxOpen)
		}); err != nil {
			wg.Done()
			results[i] = bucketResult{err: err}
		}
	}
	wg.Wait()

	for _, r := range results {
		if r.err != nil {
			return results, r.err
		}
	}
	return results, nil
}

// runBucket runs one independent detection over members
func (d *Detector) runBucket(ctx context.Context, candidates []Candidate, members []int, maxOpen int) bucketResult {
	if err := ctx.Err(); err != nil {
		return bucketResult{err: err}
	}
	if len(members) == 1 {
		pos := members[0]
		VerboseLog(1, "Check file: %s", candidates[pos].Path)
		return bucketResult{sets: []keptSet{{pos: pos, set: DuplicateSet{Kept: candidates[pos]}}}}
	}

	run, err := d.newRun(candidates, members, maxOpen)
	if err != nil {
		return bucketResult{err: err}
	}
	sets, err := run.run(ctx)
	return bucketResult{sets: sets, stats: run.stats, err: err}
}
