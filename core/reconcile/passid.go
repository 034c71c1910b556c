package reconcile

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	passMu      sync.Mutex
	passEntropy io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	passEntropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewPassID returns a time-sortable pass identifier, so archived reports list
// in the order the passes ran.
func NewPassID() string {
	passMu.Lock()
	defer passMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), passEntropy)
	if err != nil {
		panic(err)
	}
	return id.String()
}
