package membership

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"
	"github.com/kwertop/membench/filters"
)

type bloomFilter struct {
	filter  *filters.BloomFilter
	backend Backend
	n       int
}

// BuildBloom sizes a Bloom filter for len(logins) items at opts.FPRate and
// inserts every login.
func BuildBloom(logins []string, opts BloomOptions) (Structure, time.Duration, error) {
	if opts.FPRate <= 0 || opts.FPRate >= 1 {
		return nil, 0, buildError(errors.Newf("false positive rate %v must be within (0, 1)", opts.FPRate), Bloom)
	}
	start := time.Now()
	var (
		f   *filters.BloomFilter
		err error
	)
	switch opts.Backend {
	case BackendMem, "":
		f, err = filters.NewMemBloomFilterWithParameters(uint(len(logins)), opts.FPRate)
	case BackendRedis:
		if opts.Redis == nil {
			return nil, 0, buildError(errors.New("redis backend selected without a redis connection"), Bloom)
		}
		f, err = filters.NewRedisBloomFilterWithParameters(opts.Redis, uint(len(logins)), opts.FPRate)
	default:
		return nil, 0, buildError(errors.Newf("unknown bloom backend %q", opts.Backend), Bloom)
	}
	if err != nil {
		return nil, 0, buildError(err, Bloom)
	}
	for _, u := range logins {
		if err := f.InsertString(u); err != nil {
			_ = f.Release()
			return nil, 0, buildError(errors.Wrapf(err, "inserting %q", u), Bloom)
		}
	}
	backend := opts.Backend
	if backend == "" {
		backend = BackendMem
	}
	return &bloomFilter{filter: f, backend: backend, n: len(logins)}, time.Since(start), nil
}

func (s *bloomFilter) Method() Method { return Bloom }
func (s *bloomFilter) Len() int       { return s.n }

func (s *bloomFilter) Contains(username string) (bool, error) {
	return s.filter.LookupString(username)
}

func (s *bloomFilter) Notes() string {
	notes := fmt.Sprintf("bits=%d hashes=%d backend=%s", s.filter.GetCap(), s.filter.GetNumHashes(), s.backend)
	if rate, err := s.filter.BloomPositiveRate(); err == nil {
		notes += fmt.Sprintf(" est_fp=%.2g", rate)
	}
	return notes
}

func (s *bloomFilter) Release() error {
	return s.filter.Release()
}

type cuckooFilter struct {
	filter *filters.CuckooFilter
	failed swiss.Map[string, struct{}]
	n      int
}

// BuildCuckoo inserts logins into a Cuckoo filter sized for opts.Capacity
// items. Logins that cannot be inserted because the filter is full are
// tracked; the build then returns the filter together with an error marked
// ErrInsertFailures.
func BuildCuckoo(logins []string, opts CuckooOptions) (Structure, time.Duration, error) {
	if opts.FPRate <= 0 || opts.FPRate >= 1 {
		return nil, 0, buildError(errors.Newf("false positive rate %v must be within (0, 1)", opts.FPRate), Cuckoo)
	}
	if opts.BucketSize <= 0 || opts.Retries < 0 || opts.Capacity < 0 {
		return nil, 0, buildError(errors.Newf("invalid cuckoo options %+v", opts), Cuckoo)
	}
	capacity := opts.Capacity
	if capacity == 0 {
		capacity = len(logins)
	}
	start := time.Now()
	s := &cuckooFilter{
		filter: filters.NewCuckooFilterWithErrorRate(uint64(capacity), uint64(opts.BucketSize), uint64(opts.Retries), opts.FPRate),
		n:      len(logins),
	}
	s.failed.Init(0)
	for _, u := range logins {
		err := s.filter.InsertString(u)
		if err == nil {
			continue
		}
		if !errors.Is(err, filters.ErrCuckooFilterFull) {
			s.release()
			return nil, 0, buildError(errors.Wrapf(err, "inserting %q", u), Cuckoo)
		}
		// A repeated login fills its buckets with copies of itself; failed
		// inserts leave the filter unchanged, so one copy is still there.
		if s.filter.LookupString(u) {
			continue
		}
		s.failed.Put(u, struct{}{})
	}
	elapsed := time.Since(start)
	if n := s.failed.Len(); n > 0 {
		err := errors.Mark(buildError(errors.Newf("%d of %d logins could not be inserted", n, len(logins)), Cuckoo), ErrInsertFailures)
		return s, elapsed, err
	}
	return s, elapsed, nil
}

func (s *cuckooFilter) Method() Method { return Cuckoo }
func (s *cuckooFilter) Len() int       { return s.n }

func (s *cuckooFilter) Contains(username string) (bool, error) {
	return s.filter.LookupString(username), nil
}

func (s *cuckooFilter) InsertFailures() int { return s.failed.Len() }

func (s *cuckooFilter) Failed(username string) bool {
	_, ok := s.failed.Get(username)
	return ok
}

func (s *cuckooFilter) Notes() string {
	return fmt.Sprintf("buckets=%d fp_bits=%d load=%.3f est_fp=%.2g",
		s.filter.Size(), s.filter.FingerPrintLength(), s.filter.LoadFactor(), s.filter.CuckooPositiveRate())
}

func (s *cuckooFilter) Release() error {
	s.release()
	return nil
}

func (s *cuckooFilter) release() {
	s.filter.Release()
	s.failed.Close()
}
