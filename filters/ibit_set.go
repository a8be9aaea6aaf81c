package filters

// IBitSet is the bitset backing a BloomFilter.
type IBitSet interface {
	// Size returns the number of bits in the bitset
	Size() uint

	// Has returns true if the bit is set at index, else false
	Has(index uint) (bool, error)

	// Insert sets the bit at index to true
	Insert(index uint) (bool, error)

	// InsertMulti sets the bits at the indices passed in the indexes array
	InsertMulti(indexes []uint) (bool, error)

	// BitCount returns the total number of set bits in the bitset
	BitCount() (uint, error)

	// Release frees the storage held by the bitset. The bitset must not be
	// used afterwards.
	Release() error
}
