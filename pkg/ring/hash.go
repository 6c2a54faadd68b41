package ring

import (
	"encoding/binary"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// HashFunc computes a deterministic 64-bit hash of data under seed. The
// choice of function is fixed for the lifetime of a deployment: it
// determines token layout, and therefore key ownership, for every ring built
// from it.
type HashFunc func(data []byte, seed uint64) uint64

// XXHash64 is the default HashFunc. cespare/xxhash/v2 has no seed parameter
// in its exported API, so the seed is folded into the hashed buffer once per
// call instead of threaded through the streaming hasher.
func XXHash64(data []byte, seed uint64) uint64 {
	buf := make([]byte, 8+len(data))
	binary.LittleEndian.PutUint64(buf, seed)
	copy(buf[8:], data)
	return xxhash.Sum64(buf)
}

// hashKey hashes a lookup key under seed.
func hashKey(hash HashFunc, key string, seed uint64) uint64 {
	return hash([]byte(key), seed)
}

// hashVNode hashes the name of the replicaIndex'th virtual node belonging to
// nodeID under seed.
func hashVNode(hash HashFunc, nodeID string, replicaIndex int, seed uint64) uint64 {
	name := nodeID + "#" + strconv.Itoa(replicaIndex)
	return hash([]byte(name), seed)
}

// hashProbe hashes the probeIndex'th multiprobe start point for key under seed.
func hashProbe(hash HashFunc, key string, probeIndex int, seed uint64) uint64 {
	name := key + "|" + strconv.Itoa(probeIndex)
	return hash([]byte(name), seed)
}
