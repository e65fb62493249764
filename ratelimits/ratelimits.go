package ratelimits

import (
	"errors"
	"sync"
	"time"
)

const (
	// How many keys a bucket holds when created
	BUCKET_INITIAL_FILL = 16

	// The maximum amount of keys a user may possess
	BUCKET_UPPER_BOUND = 32

	// How often new keys drip into the buckets
	DROP_INTERVAL = 10 * time.Second

	// How many keys may drop at a time
	DROP_SIZE = 1
)

// Global pointer to a container instance
var Container = &BucketContainer{}

// BucketContainer maps user ids to their remaining command keys
type BucketContainer struct {
	sync.RWMutex

	buckets map[string]int8
}

// Init allocates the map and starts the refill routine
func (b *BucketContainer) Init() {
	b.Lock()
	b.buckets = make(map[string]int8)
	b.Unlock()

	go b.refiller()
}

// refiller tops up user buckets in a set interval. A bucket at -1 marks a
// user who spammed past empty and has to sit out two full drop cycles.
func (b *BucketContainer) refiller() {
	for {
		b.Lock()
		for user, keys := range b.buckets {
			switch {
			case keys == -1:
				b.buckets[user]++
			case keys == 0:
				b.buckets[user] = BUCKET_INITIAL_FILL
			case keys < BUCKET_UPPER_BOUND:
				b.buckets[user] += DROP_SIZE
			}
		}
		b.Unlock()

		time.Sleep(DROP_INTERVAL)
	}
}

func (b *BucketContainer) createBucketIfNotExists(user string) {
	b.RLock()
	_, ok := b.buckets[user]
	b.RUnlock()

	if !ok {
		b.Lock()
		b.buckets[user] = BUCKET_INITIAL_FILL
		b.Unlock()
	}
}

// Drain removes $amount from $user's bucket if enough keys are left
func (b *BucketContainer) Drain(amount int8, user string) error {
	b.createBucketIfNotExists(user)

	b.RLock()
	remaining := b.buckets[user]
	b.RUnlock()

	if amount > remaining {
		return errors.New("no keys left")
	}

	b.Lock()
	b.buckets[user] -= amount
	b.Unlock()

	return nil
}

// HasKeys checks if the user still has keys
func (b *BucketContainer) HasKeys(user string) bool {
	b.createBucketIfNotExists(user)

	b.RLock()
	defer b.RUnlock()

	return b.buckets[user] > 0
}

// Set overrides the bucket for $user
func (b *BucketContainer) Set(user string, value int8) {
	b.Lock()
	b.buckets[user] = value
	b.Unlock()
}
