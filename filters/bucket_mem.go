package filters

// BucketMem is in-memory data structure holding the fingerprints of one bucket
// of a cuckoo filter.
// _elements_ is a window into the filter's shared fingerprint array, 0 marks
// an empty slot
// _length_ is used to track the number of non-empty entries in the bucket
type BucketMem struct {
	elements []uint32
	length   uint64
}

func newBucketMem(elements []uint32) BucketMem {
	return BucketMem{elements: elements}
}

// Size returns the number of slots in the bucket
func (bucket *BucketMem) Size() uint64 {
	return uint64(len(bucket.elements))
}

// Length returns the number of entries in the bucket
func (bucket *BucketMem) Length() uint64 {
	return bucket.length
}

// isFree returns true if there is room for more entries in the bucket
func (bucket *BucketMem) isFree() bool {
	return bucket.length < uint64(len(bucket.elements))
}

// at returns the value stored at _index_
func (bucket *BucketMem) at(index uint64) uint32 {
	return bucket.elements[index]
}

// add inserts the _element_ in the bucket at the next available slot
func (bucket *BucketMem) add(element uint32) bool {
	if element == 0 || !bucket.isFree() {
		return false
	}
	bucket.elements[bucket.indexOf(0)] = element
	bucket.length++
	return true
}

// remove deletes one copy of _element_ from the bucket
func (bucket *BucketMem) remove(element uint32) bool {
	index := bucket.indexOf(element)
	if index < 0 {
		return false
	}
	bucket.elements[index] = 0
	bucket.length--
	return true
}

// lookup returns true if the _element_ is present in the bucket
func (bucket *BucketMem) lookup(element uint32) bool {
	return bucket.indexOf(element) > -1
}

// swap stores _element_ at the occupied slot _index_ and returns the
// element previously stored there
func (bucket *BucketMem) swap(index uint64, element uint32) uint32 {
	temp := bucket.elements[index]
	bucket.elements[index] = element
	return temp
}

func (bucket *BucketMem) indexOf(element uint32) int {
	for index, val := range bucket.elements {
		if val == element {
			return index
		}
	}
	return -1
}
