package sync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutex_SameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	counter := 0
	var wg sync.WaitGroup

	for range 200 {
		wg.Go(func() {
			m.Do("wallet", func() {
				counter++
			})
		})
	}
	wg.Wait()

	assert.Equal(t, 200, counter)
}

func TestShardedMutex_EmptyKeyUsesFirstShard(t *testing.T) {
	m := NewShardedMutex()
	assert.Equal(t, 0, m.shardFor(""))
	m.Lock("")
	m.Unlock("")
}

func TestShardedMutex_Distribution(t *testing.T) {
	m := NewShardedMutex()
	used := make(map[int]bool)
	for _, key := range []string{"admin", "next_contract", "AAAA", "BBBB", "CCCC", "DDDD", "EEEE", "FFFF"} {
		idx := m.shardFor(key)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, DefaultShards)
		used[idx] = true
	}
	assert.Greater(t, len(used), 1)
}

func TestNewShardedMutexN_ClampsToOne(t *testing.T) {
	m := NewShardedMutexN(0)
	assert.Len(t, m.shards, 1)
	assert.Equal(t, 0, m.shardFor("anything"))
}
