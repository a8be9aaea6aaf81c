package filters

import (
	"errors"
	"math"
	"math/rand"

	"github.com/kwertop/membench/internal/util"
)

// ErrCuckooFilterFull is returned by Insert when no slot could be freed for
// the element within the configured number of retries.
var ErrCuckooFilterFull = errors.New("membench: cannot insert element, cuckoofilter is full")

// cuckooLoadFactor is the occupancy a 4-way cuckoo filter reliably reaches.
const cuckooLoadFactor = 0.955

// CuckooFilter is an in-memory Cuckoo filter
// _buckets_ is a slice of BucketMem, all sharing _cells_
// _length_ represents the number of entries present in the Cuckoo Filter
// _rng_ picks eviction victims; it is seeded so that runs are reproducible
type CuckooFilter struct {
	buckets []BucketMem
	cells   []uint32
	length  uint64
	*AbstractCuckooFilter
	rng *rand.Rand
}

// NewCuckooFilter creates a new in-memory CuckooFilter
// _size_ is the number of buckets, rounded up to a power of two
// _bucketSize_ is the size of the individual buckets inside the bucket slice
// _fingerPrintLength_ is the fingerprint width in bits, between 1 and 32
func NewCuckooFilter(size, bucketSize, fingerPrintLength uint64) *CuckooFilter {
	return NewCuckooFilterWithRetries(size, bucketSize, fingerPrintLength, 500)
}

// NewCuckooFilterWithRetries creates new in-memory CuckooFilter with specified _retries_
// _size_ is the number of buckets, rounded up to a power of two
// _bucketSize_ is the size of the individual buckets inside the bucket slice
// _fingerPrintLength_ is the fingerprint width in bits, between 1 and 32
// _retries_ is the number of displacements that the Cuckoo filter makes if the two
// candidate buckets of the input are already full
func NewCuckooFilterWithRetries(size, bucketSize, fingerPrintLength, retries uint64) *CuckooFilter {
	size = util.NextPowerOfTwo(size)
	bucketSize = util.Max(bucketSize, 1)
	fingerPrintLength = util.Clamp(fingerPrintLength, 1, 32)
	cells := make([]uint32, size*bucketSize)
	filter := make([]BucketMem, size)
	for i := range filter {
		start := uint64(i) * bucketSize
		filter[i] = newBucketMem(cells[start : start+bucketSize : start+bucketSize])
	}
	baseFilter := makeAbstractCuckooFilter(size, bucketSize, fingerPrintLength, retries)
	return &CuckooFilter{
		buckets:              filter,
		cells:                cells,
		AbstractCuckooFilter: baseFilter,
		rng:                  rand.New(rand.NewSource(1)),
	}
}

// NewCuckooFilterWithErrorRate creates an in-memory CuckooFilter able to hold
// _capacity_ elements with a false positive rate of at most _errorRate_
// _bucketSize_ is the size of the individual buckets inside the bucket slice
// _retries_ is the number of displacements tried before an insert fails
func NewCuckooFilterWithErrorRate(capacity, bucketSize, retries uint64, errorRate float64) *CuckooFilter {
	bucketSize = util.Max(bucketSize, 1)
	fingerPrintLength := util.CalculateFingerPrintBits(bucketSize, errorRate)
	size := uint64(math.Ceil(float64(capacity) / cuckooLoadFactor / float64(bucketSize)))
	return NewCuckooFilterWithRetries(size, bucketSize, fingerPrintLength, retries)
}

// Length returns the current length of the Cuckoo Filter or the current number of entries
// present in the Cuckoo Filter
func (cuckooFilter *CuckooFilter) Length() uint64 {
	return cuckooFilter.length
}

// LoadFactor returns the fraction of occupied slots
func (cuckooFilter *CuckooFilter) LoadFactor() float64 {
	if cuckooFilter.CellSize() == 0 {
		return 0
	}
	return float64(cuckooFilter.length) / float64(cuckooFilter.CellSize())
}

// Insert writes the _data_ in the Cuckoo Filter for future lookup.
// When both candidate buckets are full, resident fingerprints are displaced up
// to _retries_ times. If that does not free a slot ErrCuckooFilterFull is returned.
// _destructive_ set to false undoes the displacements of a failed insert, so every
// previously inserted element stays in the filter; set to true the last displaced
// fingerprint is dropped instead.
func (cuckooFilter *CuckooFilter) Insert(data []byte, destructive bool) error {
	fingerPrint, fIndex, sIndex := cuckooFilter.getPositions(data)
	if cuckooFilter.buckets[fIndex].add(fingerPrint) || cuckooFilter.buckets[sIndex].add(fingerPrint) {
		cuckooFilter.length++
		return nil
	}
	index := fIndex
	if cuckooFilter.rng.Intn(2) == 1 {
		index = sIndex
	}
	currFingerPrint := fingerPrint
	var items []entry
	for i := uint64(0); i < cuckooFilter.retries; i++ {
		slot := uint64(cuckooFilter.rng.Int63n(int64(cuckooFilter.bucketSize)))
		prevFingerPrint := cuckooFilter.buckets[index].swap(slot, currFingerPrint)
		items = append(items, entry{prevFingerPrint, index, slot})
		index = cuckooFilter.altIndex(index, prevFingerPrint)
		currFingerPrint = prevFingerPrint
		if cuckooFilter.buckets[index].add(currFingerPrint) {
			cuckooFilter.length++
			return nil
		}
	}
	if !destructive {
		for i := len(items) - 1; i >= 0; i-- {
			item := items[i]
			cuckooFilter.buckets[item.bucket].swap(item.slot, item.fingerPrint)
		}
	}
	return ErrCuckooFilterFull
}

// InsertString accepts string value as _data_ for a non-destructive insert
func (cuckooFilter *CuckooFilter) InsertString(data string) error {
	return cuckooFilter.Insert([]byte(data), false)
}

// Lookup returns true if the _data_ is present in the Cuckoo Filter, else false
func (cuckooFilter *CuckooFilter) Lookup(data []byte) bool {
	fingerPrint, fIndex, sIndex := cuckooFilter.getPositions(data)
	return cuckooFilter.buckets[fIndex].lookup(fingerPrint) ||
		cuckooFilter.buckets[sIndex].lookup(fingerPrint)
}

// LookupString accepts string value as _data_ to lookup the Cuckoo filter
func (cuckooFilter *CuckooFilter) LookupString(data string) bool {
	return cuckooFilter.Lookup([]byte(data))
}

// Remove deletes the _data_ from the Cuckoo Filter
func (cuckooFilter *CuckooFilter) Remove(data []byte) bool {
	fingerPrint, fIndex, sIndex := cuckooFilter.getPositions(data)
	if cuckooFilter.buckets[fIndex].remove(fingerPrint) || cuckooFilter.buckets[sIndex].remove(fingerPrint) {
		cuckooFilter.length--
		return true
	}
	return false
}

// Release drops the buckets so they can be collected. The filter must not be
// used afterwards.
func (cuckooFilter *CuckooFilter) Release() {
	cuckooFilter.buckets = nil
	cuckooFilter.cells = nil
	cuckooFilter.length = 0
}
