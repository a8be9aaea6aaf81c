package filters

import (
	"github.com/bits-and-blooms/bitset"
)

// BitSetMem is an implementation of IBitSet.
// _size_ is the number of bits in the bitset
// _set_ is the bitset implementation adopted from https://github.com/bits-and-blooms/bitset
type BitSetMem struct {
	set  *bitset.BitSet
	size uint
}

// NewBitSetMem creates a new BitSetMem of size _size_
func NewBitSetMem(size uint) *BitSetMem {
	return &BitSetMem{bitset.New(size), size}
}

// Size returns the size of the bitset
func (bitSet *BitSetMem) Size() uint {
	return bitSet.size
}

// Has checks if the bit at index _index_ is set
func (bitSet *BitSetMem) Has(index uint) (bool, error) {
	return bitSet.set.Test(index), nil
}

// Insert sets the bit at index specified by _index_
func (bitSet *BitSetMem) Insert(index uint) (bool, error) {
	bitSet.set.Set(index)
	return true, nil
}

// InsertMulti sets the bits at indices specified by array _indexes_
func (bitSet *BitSetMem) InsertMulti(indexes []uint) (bool, error) {
	for i := range indexes {
		bitSet.set.Set(indexes[i])
	}
	return true, nil
}

// BitCount returns the total number of set bits in the bitset
func (bitSet *BitSetMem) BitCount() (uint, error) {
	return bitSet.set.Count(), nil
}

// Release drops the backing words so they can be collected.
func (bitSet *BitSetMem) Release() error {
	bitSet.set = bitset.New(0)
	bitSet.size = 0
	return nil
}
