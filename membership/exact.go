package membership

import (
	"sort"
	"time"

	"github.com/cockroachdb/swiss"
)

type linearScan struct {
	logins []string
}

// BuildLinear wraps logins without copying them.
func BuildLinear(logins []string) (Structure, time.Duration, error) {
	start := time.Now()
	s := &linearScan{logins: logins}
	return s, time.Since(start), nil
}

func (s *linearScan) Method() Method { return Linear }
func (s *linearScan) Len() int       { return len(s.logins) }

func (s *linearScan) Contains(username string) (bool, error) {
	for _, u := range s.logins {
		if u == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *linearScan) Release() error {
	s.logins = nil
	return nil
}

type sortedSearch struct {
	sorted []string
}

// BuildSorted copies and sorts logins. The copy and the sort are both timed.
func BuildSorted(logins []string) (Structure, time.Duration, error) {
	start := time.Now()
	sorted := make([]string, len(logins))
	copy(sorted, logins)
	sort.Strings(sorted)
	return &sortedSearch{sorted: sorted}, time.Since(start), nil
}

func (s *sortedSearch) Method() Method { return Sorted }
func (s *sortedSearch) Len() int       { return len(s.sorted) }

func (s *sortedSearch) Contains(username string) (bool, error) {
	i := sort.SearchStrings(s.sorted, username)
	return i < len(s.sorted) && s.sorted[i] == username, nil
}

func (s *sortedSearch) Release() error {
	s.sorted = nil
	return nil
}

type hashSet struct {
	set swiss.Map[string, struct{}]
	n   int
}

// BuildHash inserts logins into a hash set. Duplicate logins collapse into one
// entry.
func BuildHash(logins []string) (Structure, time.Duration, error) {
	start := time.Now()
	s := &hashSet{n: len(logins)}
	s.set.Init(len(logins))
	for _, u := range logins {
		s.set.Put(u, struct{}{})
	}
	return s, time.Since(start), nil
}

func (s *hashSet) Method() Method { return Hash }
func (s *hashSet) Len() int       { return s.n }

func (s *hashSet) Contains(username string) (bool, error) {
	_, ok := s.set.Get(username)
	return ok, nil
}

// Distinct returns the number of distinct logins in the set.
func (s *hashSet) Distinct() int { return s.set.Len() }

func (s *hashSet) Release() error {
	s.set.Close()
	return nil
}
