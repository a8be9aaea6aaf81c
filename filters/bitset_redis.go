package filters

import (
	"context"
	"fmt"

	"github.com/kwertop/membench/internal/util"
	"github.com/redis/go-redis/v9"
)

// BitSetRedis is an implementation of IBitSet.
// _size_ is the number of bits in the bitset
// _key_ is the redis key to the bitset data structure in redis
// _client_ is the redis connection used for every bit operation
// Bitsets or Bitmaps are implemented in Redis using string.
// All bit operations are done on the string stored at _key_.
// For more details, please refer https://redis.io/docs/data-types/bitmaps/
type BitSetRedis struct {
	size   uint
	key    string
	client redis.Cmdable
}

// NewBitSetRedis creates a new zeroed BitSetRedis of size _size_ under a
// random key.
func NewBitSetRedis(client redis.Cmdable, size uint) (*BitSetRedis, error) {
	key := "membench:bitset:" + util.GenerateRandomString(16)
	ctx := context.Background()
	if err := client.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("membench: error while creating bitset redis. error: %v", err)
	}
	if size > 0 {
		// Setting the last bit to 0 makes redis allocate the whole string.
		if err := client.SetBit(ctx, key, int64(size-1), 0).Err(); err != nil {
			return nil, fmt.Errorf("membench: error while creating bitset redis. error: %v", err)
		}
	}
	return &BitSetRedis{size: size, key: key, client: client}, nil
}

// Size returns the size of the bitset saved in redis
func (bitSet *BitSetRedis) Size() uint {
	return bitSet.size
}

// Has checks if the bit at index _index_ is set
func (bitSet *BitSetRedis) Has(index uint) (bool, error) {
	val, err := bitSet.client.GetBit(context.Background(), bitSet.key, int64(index)).Result()
	if err != nil {
		return false, err
	}
	return val != 0, nil
}

// Insert sets the bit at index specified by _index_
func (bitSet *BitSetRedis) Insert(index uint) (bool, error) {
	err := bitSet.client.SetBit(context.Background(), bitSet.key, int64(index), 1).Err()
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertMulti sets the bits at indices specified by array _indexes_
func (bitSet *BitSetRedis) InsertMulti(indexes []uint) (bool, error) {
	if len(indexes) == 0 {
		return false, fmt.Errorf("membench: at least 1 index is required")
	}
	ctx := context.Background()
	pipe := bitSet.client.Pipeline()
	for i := range indexes {
		pipe.SetBit(ctx, bitSet.key, int64(indexes[i]), 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// BitCount returns the total number of set bits in the bitset saved in redis
func (bitSet *BitSetRedis) BitCount() (uint, error) {
	val, err := bitSet.client.BitCount(context.Background(), bitSet.key, &redis.BitCount{Start: 0, End: -1}).Result()
	if err != nil {
		return 0, err
	}
	return uint(val), nil
}

// Release deletes the bitset from redis.
func (bitSet *BitSetRedis) Release() error {
	return bitSet.client.Del(context.Background(), bitSet.key).Err()
}
