/*
Package filters provides the probabilistic membership filters benchmarked by
membench: a Bloom filter and a Cuckoo filter.

A Bloom filter is a space-efficient probabilistic data structure that is used to test
whether an element is a member of a set. It never reports a false negative for an
inserted element and reports false positives at a rate governed by its size and
number of hash functions.
Refer: https://web.stanford.edu/~balaji/papers/bloom.pdf

A Cuckoo filter is a data structure used for approximate set membership queries, similar to a
Bloom filter. Unlike a Bloom filter, a Cuckoo filter allows for efficient removal of elements.
An insertion can fail once the filter is close to full; such failures are returned to the
caller as ErrCuckooFilterFull so the element can be tracked.
Refer: https://www.cs.cmu.edu/~dga/papers/cuckoo-conext2014.pdf

The Bloom filter's bitset is either in-memory (https://github.com/bits-and-blooms/bitset)
or stored in Redis using the SETBIT/GETBIT commands.
None of the filters are safe for concurrent use.
*/
package filters
