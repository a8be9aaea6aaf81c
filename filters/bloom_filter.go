package filters

import (
	"fmt"
	"math"

	"github.com/dgryski/go-metro"
	"github.com/kwertop/membench/internal/util"
	"github.com/redis/go-redis/v9"
)

// The BloomFilter data structure. It mainly has two fields: _size_ and _numHashes_
// _size_ denotes the number of bits of the bloom filter
// _numHashes_ denotes the number of hashing functions applied on the entrant element
// during insertion or lookup.
// _filter_ is the bitset backing internally the bloom filter. It can either be a type of
// BitSetMem (in-memory) or BitSetRedis (redis-backed).
// _indexes_ is scratch space for the probe positions of one element.
type BloomFilter struct {
	size      uint
	numHashes uint
	filter    IBitSet
	indexes   []uint
}

// NewBloomFilterWithBitSet creates and returns a new BloomFilter
// _size_ is the maximum size of the bloom filter
// _numHashes_ is the number of hashing functions to be applied on the entrant
// _filter_ is either BitSetMem or BitSetRedis
func NewBloomFilterWithBitSet(size, numHashes uint, filter IBitSet) (*BloomFilter, error) {
	if filter.Size() != size {
		return nil, fmt.Errorf("membench: error initializing filter as size of bitset %v doesn't match with size %v passed", filter.Size(), size)
	}
	numHashes = util.Max(numHashes, 1)
	return &BloomFilter{
		size:      util.Max(size, 1),
		numHashes: numHashes,
		filter:    filter,
		indexes:   make([]uint, numHashes),
	}, nil
}

// NewMemBloomFilterWithParameters creates and returns a new in-memory BloomFilter
// _numItems_ is the number of items for which the bloom filter has to be checked for validation
// _errorRate_ is the acceptable false positive error rate
// Based upon the above two parameters passed, the size of the bloom filter is calculated
func NewMemBloomFilterWithParameters(numItems uint, errorRate float64) (*BloomFilter, error) {
	size, numHashes := bloomParameters(numItems, errorRate)
	return NewBloomFilterWithBitSet(size, numHashes, NewBitSetMem(size))
}

// NewRedisBloomFilterWithParameters creates and returns a new Redis backed BloomFilter
// _client_ is the redis connection holding the bitset
// _numItems_ is the number of items for which the bloom filter has to be checked for validation
// _errorRate_ is the acceptable false positive error rate
func NewRedisBloomFilterWithParameters(client redis.Cmdable, numItems uint, errorRate float64) (*BloomFilter, error) {
	size, numHashes := bloomParameters(numItems, errorRate)
	filter, err := NewBitSetRedis(client, size)
	if err != nil {
		return nil, err
	}
	return NewBloomFilterWithBitSet(size, numHashes, filter)
}

func bloomParameters(numItems uint, errorRate float64) (uint, uint) {
	numItems = util.Max(numItems, 1)
	size := util.Max(util.CalculateFilterSize(numItems, errorRate), 1)
	return size, util.Max(util.CalculateNumHashes(size, numItems), 1)
}

// Insert writes new _data_ in the bloom filter
func (bloomFilter *BloomFilter) Insert(data []byte) error {
	hashes := getHashes(data)
	for i := uint(0); i < bloomFilter.numHashes; i++ {
		bloomFilter.indexes[i] = bloomFilter.getIndex(hashes, i)
	}
	_, err := bloomFilter.filter.InsertMulti(bloomFilter.indexes)
	return err
}

// Lookup returns true if the corresponding bits in the bitset for _data_ is set,
// otherwise false
func (bloomFilter *BloomFilter) Lookup(data []byte) (bool, error) {
	hashes := getHashes(data)
	for i := uint(0); i < bloomFilter.numHashes; i++ {
		ok, err := bloomFilter.filter.Has(bloomFilter.getIndex(hashes, i))
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// InsertString accepts string value as _data_ for inserting into the Bloom filter
func (bloomFilter *BloomFilter) InsertString(data string) error {
	return bloomFilter.Insert([]byte(data))
}

// LookupString accepts string value as _data_ to lookup the Bloom filter
func (bloomFilter *BloomFilter) LookupString(data string) (bool, error) {
	return bloomFilter.Lookup([]byte(data))
}

// GetCap returns the size of the bloom filter
func (bloomFilter *BloomFilter) GetCap() uint {
	return bloomFilter.size
}

// GetNumHashes returns the number of hash functions used in the bloom filter
func (bloomFilter *BloomFilter) GetNumHashes() uint {
	return bloomFilter.numHashes
}

// BloomPositiveRate returns the estimated false positive error rate of the
// filter given the bits set so far
func (bloomFilter *BloomFilter) BloomPositiveRate() (float64, error) {
	length, err := bloomFilter.filter.BitCount()
	if err != nil {
		return 0, err
	}
	return math.Pow(float64(length)/float64(bloomFilter.size), float64(bloomFilter.numHashes)), nil
}

// Release frees the bitset.
func (bloomFilter *BloomFilter) Release() error {
	return bloomFilter.filter.Release()
}

func getHashes(data []byte) [2]uint64 {
	hash1, hash2 := metro.Hash128(data, 1373)
	return [2]uint64{hash1, hash2}
}

// getIndex is enhanced double hashing: h0 + i*h1 + (i^3-i)/6.
func (bloomFilter *BloomFilter) getIndex(hashes [2]uint64, i uint) uint {
	j := uint64(i)
	return uint((hashes[0] + j*hashes[1] + (j*j*j-j)/6) % uint64(bloomFilter.size))
}
