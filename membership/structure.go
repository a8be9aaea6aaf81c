package membership

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// ErrStructureBuild marks errors raised while constructing a structure.
var ErrStructureBuild = errors.New("structure build error")

// ErrInsertFailures additionally marks a build that completed but could not
// insert every login. The structure returned with it is usable.
var ErrInsertFailures = errors.New("insertion failures")

// Structure answers membership queries for one login list.
type Structure interface {
	Method() Method
	// Contains reports whether username is (probably) a member.
	Contains(username string) (bool, error)
	// Len is the number of logins the structure was built from.
	Len() int
	// Release frees the memory or external storage held by the structure. The
	// structure must not be used afterwards.
	Release() error
}

// FailureTracker is implemented by structures whose inserts can fail.
type FailureTracker interface {
	InsertFailures() int
	// Failed reports whether username was a login that could not be inserted.
	Failed(username string) bool
}

// Describer is implemented by structures that report their internal sizing.
type Describer interface {
	Notes() string
}

// Backend selects where the Bloom filter keeps its bits.
type Backend string

const (
	// BackendMem keeps the bits in process memory.
	BackendMem Backend = "mem"
	// BackendRedis keeps the bits in a Redis string.
	BackendRedis Backend = "redis"
)

// BloomOptions configure BuildBloom.
type BloomOptions struct {
	FPRate  float64
	Backend Backend
	// Redis is the connection used by BackendRedis.
	Redis redis.Cmdable
}

// CuckooOptions configure BuildCuckoo.
type CuckooOptions struct {
	// Capacity is the number of items the filter is sized for. Zero sizes the
	// filter for the login list.
	Capacity   int
	FPRate     float64
	BucketSize int
	Retries    int
}

// Options hold the tuning parameters of every builder.
type Options struct {
	Bloom  BloomOptions
	Cuckoo CuckooOptions
}

// DefaultOptions returns the default tuning parameters.
func DefaultOptions() Options {
	return Options{
		Bloom:  BloomOptions{FPRate: 0.001, Backend: BackendMem},
		Cuckoo: CuckooOptions{FPRate: 0.001, BucketSize: 4, Retries: 500},
	}
}

// Build constructs the structure for method from logins and returns it with
// the construction time. A non-nil structure returned together with an error
// marked ErrInsertFailures was built with some logins missing.
func Build(method Method, logins []string, opts Options) (Structure, time.Duration, error) {
	switch method {
	case Linear:
		return BuildLinear(logins)
	case Sorted:
		return BuildSorted(logins)
	case Hash:
		return BuildHash(logins)
	case Bloom:
		return BuildBloom(logins, opts.Bloom)
	case Cuckoo:
		return BuildCuckoo(logins, opts.Cuckoo)
	}
	return nil, 0, buildError(errors.Newf("unknown method %q", method), method)
}

// Partial reports whether err describes a build that still produced a usable
// structure.
func Partial(err error) bool {
	return errors.Is(err, ErrInsertFailures)
}

func buildError(err error, method Method) error {
	return errors.Mark(errors.Wrapf(err, "building %s", method.DisplayName()), ErrStructureBuild)
}
