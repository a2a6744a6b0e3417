package blockdupes

import (
	"context"
	"sort"
)

// Candidate is a file that passed the scan filters
type Candidate struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	Root string `json:"root,omitempty"`
}

// DuplicateSet is a kept candidate and every later candidate proven identical to it
type DuplicateSet struct {
	Kept       Candidate   `json:"kept"`
	Duplicates []Candidate `json:"duplicates"`
}

// HasDuplicates returns true if at least one candidate matched the kept one
func (ds DuplicateSet) HasDuplicates() bool {
	return len(ds.Duplicates) > 0
}

// Paths returns the kept path followed by the duplicate paths
func (ds DuplicateSet) Paths() []string {
	paths := make([]string, 0, len(ds.Duplicates)+1)
	paths = append(paths, ds.Kept.Path)
	for _, d := range ds.Duplicates {
		paths = append(paths, d.Path)
	}
	return paths
}

// Stats counts the work done by a detection run
type Stats struct {
	Files            int   `json:"files"`
	PairsCompared    int   `json:"pairs_compared"`
	PairsIdentical   int   `json:"pairs_identical"`
	PairsDifferent   int   `json:"pairs_different"`
	BlocksHashed     int   `json:"blocks_hashed"`
	BytesRead        int64 `json:"bytes_read"`
	ComparisonErrors int   `json:"comparison_errors"`
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.PairsCompared += o.PairsCompared
	s.PairsIdentical += o.PairsIdentical
	s.PairsDifferent += o.PairsDifferent
	s.BlocksHashed += o.BlocksHashed
	s.BytesRead += o.BytesRead
	s.ComparisonErrors += o.ComparisonErrors
}

// DetectOptions configures a Detector
type DetectOptions struct {
	BlockSize    int           // bytes per hashed block, must be positive
	Algorithm    HashAlgorithm // block digest
	Workers      int           // concurrent size buckets; <= 1 runs sequentially
	SizeBuckets  bool          // only compare candidates of equal size
	MaxOpenFiles int           // open readers per run
}

// Detector partitions candidates into duplicate sets by block-incremental hashing
type Detector struct {
	opts  DetectOptions
	stats Stats
}

// NewDetector validates opts and returns a Detector
func NewDetector(opts DetectOptions) (*Detector, error) {
	if opts.BlockSize <= 0 {
		return nil, ConfigErrorf("block size must be positive, got: %d", opts.BlockSize)
	}
	if opts.Algorithm == nil {
		return nil, ConfigErrorf("no hash algorithm selected")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxOpenFiles <= 0 {
		opts.MaxOpenFiles = DefaultMaxOpenFiles
	}
	return &Detector{opts: opts}, nil
}

// Stats returns the counters of the last Detect call
func (d *Detector) Stats() Stats {
	return d.stats
}

// Detect returns one DuplicateSet per kept candidate, in candidate order.
// Sets without duplicates are included. If ctx is cancelled the sets
// completed so far are returned together with ctx.Err().
func (d *Detector) Detect(ctx context.Context, candidates []Candidate) ([]DuplicateSet, error) {
	defer VerboseEnter()()
	d.stats = Stats{Files: len(candidates)}

	var buckets [][]int
	if d.opts.SizeBuckets {
		buckets = bucketBySize(candidates)
	} else {
		all := make([]int, len(candidates))
		for i := range all {
			all[i] = i
		}
		buckets = [][]int{all}
	}

	results, err := d.runBuckets(ctx, candidates, buckets)

	var sets []keptSet
	for _, r := range results {
		sets = append(sets, r.sets...)
		d.stats.add(r.stats)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].pos < sets[j].pos })

	groups := make([]DuplicateSet, len(sets))
	for i, s := range sets {
		groups[i] = s.set
	}
	return groups, err
}

// keptSet is a DuplicateSet tagged with its kept candidate's position
type keptSet struct {
	pos int
	set DuplicateSet
}

// pairState is the terminal state of one pair comparison
type pairState int

const (
	pairDifferent pairState = iota
	pairIdentical
)

// detectRun owns the caches, resolved set and open files for one group of
// candidates. Runs never share state.
type detectRun struct {
	candidates []Candidate
	members    []int // positions in candidates, in order
	caches     map[int]*blockHashCache
	resolved   map[int]struct{}
	files      *fileTable
	algorithm  HashAlgorithm
	stats      Stats
}

func (d *Detector) newRun(candidates []Candidate, members []int, maxOpen int) (*detectRun, error) {
	files, err := newFileTable(maxOpen, d.opts.BlockSize)
	if err != nil {
		return nil, err
	}
	caches := make(map[int]*blockHashCache, len(members))
	for _, pos := range members {
		caches[pos] = newBlockHashCache(pos, candidates[pos].Path)
	}
	return &detectRun{
		candidates: candidates,
		members:    members,
		caches:     caches,
		resolved:   make(map[int]struct{}),
		files:      files,
		algorithm:  d.opts.Algorithm,
	}, nil
}

// run performs the kept-versus-rest sweep. Only later members are compared:
// an earlier unresolved member was itself kept and already compared against
// every member after it.
func (r *detectRun) run(ctx context.Context) ([]keptSet, error) {
	defer r.files.Close()

	var sets []keptSet
	for ki, k := range r.members {
		if _, ok := r.resolved[k]; ok {
			VerboseLog(1, "Skip duplicate file: %s", r.candidates[k].Path)
			continue
		}
		VerboseLog(1, "Check file: %s", r.candidates[k].Path)

		set := DuplicateSet{Kept: r.candidates[k]}
		for _, c := range r.members[ki+1:] {
			if _, ok := r.resolved[c]; ok {
				continue
			}

			state, err := r.compare(ctx, k, c)
			if err != nil {
				return sets, err
			}
			if state == pairIdentical {
				VerboseLog(2, " - %s", r.candidates[c].Path)
				set.Duplicates = append(set.Duplicates, r.candidates[c])
				r.resolved[c] = struct{}{}
				r.drop(c)
			}
		}

		r.drop(k)
		sets = append(sets, keptSet{pos: k, set: set})
	}
	return sets, nil
}

// drop discards the cache and open reader of a candidate that can no longer be a comparison base
func (r *detectRun) drop(pos int) {
	delete(r.caches, pos)
	r.files.release(pos)
}

// compare runs two candidates in lock-step, block by block, and stops at
// the first block whose digest or length differs or where one stream ends
// before the other. The only error returned is ctx.Err(); read failures
// make the pair different.
func (r *detectRun) compare(ctx context.Context, k, c int) (pairState, error) {
	kc, cc := r.caches[k], r.caches[c]
	r.stats.PairsCompared++

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return pairDifferent, err
		}

		kb, kok, err := r.files.block(kc, i, r.algorithm, &r.stats)
		if err != nil {
			return r.failed(err), nil
		}
		cb, cok, err := r.files.block(cc, i, r.algorithm, &r.stats)
		if err != nil {
			return r.failed(err), nil
		}

		if !kok && !cok {
			r.stats.PairsIdentical++
			return pairIdentical, nil
		}
		if kok != cok || kb != cb {
			if IsDebugEnabled(DebugCompare) {
				VerboseLog(2, "compare: %s != %s at block %d", kc.path, cc.path, i)
			}
			r.stats.PairsDifferent++
			return pairDifferent, nil
		}
	}
}

func (r *detectRun) failed(err error) pairState {
	Warnf("%v", err)
	r.stats.ComparisonErrors++
	r.stats.PairsDifferent++
	return pairDifferent
}
