// Package util holds the sizing math and small helpers shared by the filters.
package util

import (
	"math"
	"math/rand"
)

const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
const (
	letterIdxBits = 6                    // 6 bits to represent a letter index
	letterIdxMask = 1<<letterIdxBits - 1 // All 1-bits, as many as letterIdxBits
	letterIdxMax  = 63 / letterIdxBits   // # of letter indices fitting in 63 bits
)

// maxFingerPrintBits is the widest fingerprint a cuckoo bucket slot can hold.
const maxFingerPrintBits = 32

// CalculateFilterSize returns the number of bits a bloom filter needs to hold
// _length_ items at the false positive rate _errorRate_.
func CalculateFilterSize(length uint, errorRate float64) uint {
	return uint(math.Ceil(-((float64(length) * math.Log(errorRate)) / math.Pow(math.Log(2), 2))))
}

// CalculateNumHashes returns the optimal number of hash functions for a bloom
// filter of _size_ bits holding _length_ items.
func CalculateNumHashes(size, length uint) uint {
	if length == 0 {
		return 1
	}
	return uint(math.Ceil(float64(size) / float64(length) * math.Log(2)))
}

// CalculateFingerPrintBits returns the fingerprint width in bits needed by a
// cuckoo filter with buckets of _bucketSize_ entries to stay under _errorRate_.
func CalculateFingerPrintBits(bucketSize uint64, errorRate float64) uint64 {
	v := uint64(math.Ceil(math.Log2(1/errorRate) + math.Log2(float64(2*bucketSize))))
	return Clamp(v, 1, maxFingerPrintBits)
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n == 0).
func NextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

func Max[T uint | uint64 | int](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Clamp[T uint | uint64 | int](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GenerateRandomString returns a random alphabetic string of length _n_.
// It is used to name redis keys.
func GenerateRandomString(n int) string {
	b := make([]byte, n)
	// A rand.Int63() generates 63 random bits, enough for letterIdxMax characters!
	for i, cache, remain := n-1, rand.Int63(), letterIdxMax; i >= 0; {
		if remain == 0 {
			cache, remain = rand.Int63(), letterIdxMax
		}
		if idx := int(cache & letterIdxMask); idx < len(letterBytes) {
			b[i] = letterBytes[idx]
			i--
		}
		cache >>= letterIdxBits
		remain--
	}
	return string(b)
}
