package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cockroachdb/errors"
)

// Scheme selects how synthetic usernames are built.
type Scheme string

const (
	// Sequential names are user0, user1, ...
	Sequential Scheme = "sequential"
	// AdjNoun names look like brave_otter_15.
	AdjNoun Scheme = "adjnoun"
	// Randomish names are a random alphanumeric prefix plus the index.
	Randomish Scheme = "randomish"
	// Mixed picks one of the three schemes above per index.
	Mixed Scheme = "mixed"
	// Fake uses gofakeit usernames suffixed with the index.
	Fake Scheme = "fake"
)

// Schemes lists the recognized username schemes.
var Schemes = []Scheme{Sequential, AdjNoun, Randomish, Mixed, Fake}

// ParseScheme returns the scheme named s.
func ParseScheme(s string) (Scheme, error) {
	for _, scheme := range Schemes {
		if string(scheme) == s {
			return scheme, nil
		}
	}
	return "", errors.Newf("unknown username scheme %q, choose from %v", s, Schemes)
}

var (
	adjectives = []string{"swift", "silent", "bright", "brave", "clever", "fuzzy", "lucky", "mighty"}
	nouns      = []string{"tiger", "otter", "falcon", "panda", "lynx", "koala", "dragon", "llama"}
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

func seqName(i int) string {
	return "user" + strconv.Itoa(i)
}

func adjNounName(i int) string {
	adj := adjectives[i%len(adjectives)]
	noun := nouns[(i/len(adjectives))%len(nouns)]
	return adj + "_" + noun + "_" + strconv.Itoa(i)
}

// indexRand returns a generator that depends only on seed and i, so a name
// does not depend on the names generated before it.
func indexRand(seed int64, i int) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(i)))
}

func randomishName(rng *rand.Rand, i int) string {
	var prefix [6]byte
	for j := range prefix {
		prefix[j] = alphanumeric[rng.IntN(len(alphanumeric))]
	}
	return string(prefix[:]) + "_" + strconv.Itoa(i)
}

func mixedName(seed int64, i int) string {
	rng := indexRand(seed, i)
	switch rng.IntN(3) {
	case 0:
		return seqName(i)
	case 1:
		return adjNounName(i)
	default:
		return randomishName(rng, i)
	}
}

// MakeLogins returns n distinct usernames built with scheme. The result only
// depends on n, scheme and seed.
func MakeLogins(n int, scheme Scheme, seed int64) ([]string, error) {
	logins := make([]string, n)
	switch scheme {
	case Sequential:
		for i := range logins {
			logins[i] = seqName(i)
		}
	case AdjNoun:
		for i := range logins {
			logins[i] = adjNounName(i)
		}
	case Randomish:
		for i := range logins {
			logins[i] = randomishName(indexRand(seed, i), i)
		}
	case Mixed:
		for i := range logins {
			logins[i] = mixedName(seed, i)
		}
	case Fake:
		faker := gofakeit.New(seed)
		for i := range logins {
			logins[i] = faker.Username() + "_" + strconv.Itoa(i)
		}
	default:
		return nil, errors.Newf("unknown username scheme %q, choose from %v", scheme, Schemes)
	}
	return logins, nil
}

// MakeQueries returns q queries against logins. Each query is drawn from the
// logins with probability dupRate and is otherwise a username guaranteed not to
// be a login.
func MakeQueries(logins []string, q int, dupRate float64, rng *rand.Rand) []Query {
	sorted := slices.Clone(logins)
	slices.Sort(sorted)
	queries := make([]Query, 0, q)
	for j := 0; j < q; j++ {
		if len(logins) > 0 && rng.Float64() < dupRate {
			queries = append(queries, Query{Username: logins[rng.IntN(len(logins))], Present: true})
			continue
		}
		for {
			u := fmt.Sprintf("fake%d_%d", j, 1000+rng.IntN(9000))
			if _, found := slices.BinarySearch(sorted, u); !found {
				queries = append(queries, Query{Username: u})
				break
			}
		}
	}
	return queries
}

// GenerateOptions configure Generate.
type GenerateOptions struct {
	Logins  int
	Queries int
	Scheme  Scheme
	Seed    int64
	DupRate float64
	// Labels writes a header and an is_present column into the query file.
	Labels bool
}

// Generate writes logins_<N>.csv and queries_<Q>.csv into dir and returns
// their paths.
func Generate(dir string, opts GenerateOptions) (loginPath, queryPath string, err error) {
	if opts.Logins <= 0 || opts.Queries <= 0 {
		return "", "", errors.Newf("login and query counts must be positive, got %d and %d", opts.Logins, opts.Queries)
	}
	if opts.DupRate < 0 || opts.DupRate > 1 {
		return "", "", errors.Newf("dup rate %v must be within [0, 1]", opts.DupRate)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", errors.Wrapf(err, "creating %s", dir)
	}
	logins, err := MakeLogins(opts.Logins, opts.Scheme, opts.Seed)
	if err != nil {
		return "", "", err
	}
	queries := MakeQueries(logins, opts.Queries, opts.DupRate, rand.New(rand.NewPCG(uint64(opts.Seed), 0)))

	loginPath = LoginFile(dir, opts.Logins)
	queryPath = QueryFile(dir, opts.Queries)
	if err := WriteLogins(loginPath, logins); err != nil {
		return "", "", err
	}
	if err := WriteQueries(queryPath, queries, opts.Labels); err != nil {
		return "", "", err
	}
	return loginPath, queryPath, nil
}

// WriteLogins writes one username per row, without a header.
func WriteLogins(path string, logins []string) error {
	return writeCSV(path, func(w *csv.Writer) error {
		for _, u := range logins {
			if err := w.Write([]string{u}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteQueries writes one username per row. With labels it writes a
// username,is_present header and column instead.
func WriteQueries(path string, queries []Query, labels bool) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if labels {
			if err := w.Write([]string{"username", "is_present"}); err != nil {
				return err
			}
		}
		record := make([]string, 1, 2)
		for _, q := range queries {
			record = record[:1]
			record[0] = q.Username
			if labels {
				present := "0"
				if q.Present {
					present = "1"
				}
				record = append(record, present)
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, fn func(w *csv.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "closing %s", path)
		}
	}()
	buf := bufio.NewWriterSize(f, readBufferSize)
	w := csv.NewWriter(buf)
	if err := fn(w); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(buf.Flush(), "flushing %s", path)
}
