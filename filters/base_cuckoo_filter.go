package filters

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// AbstractCuckooFilter holds the shape of a cuckoo filter.
// _size_ is the number of buckets, always a power of two so that the
// alternate index of a fingerprint is symmetric
// _fingerPrintLength_ is the width of a fingerprint in bits
type AbstractCuckooFilter struct {
	size              uint64
	bucketSize        uint64
	fingerPrintLength uint64
	retries           uint64
	indexMask         uint64
	fingerPrintMask   uint32
}

// entry records one displacement so that a failed insert can be undone
type entry struct {
	fingerPrint uint32
	bucket      uint64
	slot        uint64
}

func makeAbstractCuckooFilter(size, bucketSize, fingerPrintLength, retries uint64) *AbstractCuckooFilter {
	baseFilter := &AbstractCuckooFilter{}
	baseFilter.size = size
	baseFilter.bucketSize = bucketSize
	baseFilter.fingerPrintLength = fingerPrintLength
	baseFilter.retries = retries
	baseFilter.indexMask = size - 1
	baseFilter.fingerPrintMask = uint32((uint64(1) << fingerPrintLength) - 1)
	return baseFilter
}

// Size returns the size of the buckets slice of the Cuckoo Filter
func (cuckooFilter *AbstractCuckooFilter) Size() uint64 {
	return cuckooFilter.size
}

// BucketSize returns the size of the individual buckets of the Cuckoo Filter
func (cuckooFilter *AbstractCuckooFilter) BucketSize() uint64 {
	return cuckooFilter.bucketSize
}

// FingerPrintLength returns the length of the fingerprint of the Cuckoo Filter in bits
func (cuckooFilter *AbstractCuckooFilter) FingerPrintLength() uint64 {
	return cuckooFilter.fingerPrintLength
}

// CellSize returns the overall size of the Cuckoo Filter - _size_ * _bucketSize_
func (cuckooFilter *AbstractCuckooFilter) CellSize() uint64 {
	return cuckooFilter.size * cuckooFilter.bucketSize
}

// CuckooPositiveRate returns the upper bound of the false positive error rate of the filter
func (cuckooFilter *AbstractCuckooFilter) CuckooPositiveRate() float64 {
	return math.Pow(2, math.Log2(float64(2*cuckooFilter.bucketSize))-float64(cuckooFilter.fingerPrintLength))
}

// getPositions returns the fingerprint of _data_ and its two candidate buckets.
// A fingerprint is never 0 since 0 marks an empty slot.
func (cuckooFilter *AbstractCuckooFilter) getPositions(data []byte) (uint32, uint64, uint64) {
	hash := xxh3.Hash(data)
	fingerPrint := uint32(hash>>32) & cuckooFilter.fingerPrintMask
	if fingerPrint == 0 {
		fingerPrint = 1
	}
	firstIndex := hash & cuckooFilter.indexMask
	return fingerPrint, firstIndex, cuckooFilter.altIndex(firstIndex, fingerPrint)
}

// altIndex maps a bucket to the other candidate bucket of _fingerPrint_.
// altIndex(altIndex(i, f), f) == i.
func (cuckooFilter *AbstractCuckooFilter) altIndex(index uint64, fingerPrint uint32) uint64 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], fingerPrint)
	return (index ^ xxhash.Sum64(buf[:])) & cuckooFilter.indexMask
}
