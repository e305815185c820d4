package codec

import (
	"sync"

	"google.golang.org/protobuf/types/known/structpb"
)

// Envelope pool for reducing GC pressure on the read path
var envelopePool = sync.Pool{
	New: func() any {
		return &structpb.Struct{}
	},
}

// getEnvelope retrieves an envelope from the pool
func getEnvelope() *structpb.Struct {
	return envelopePool.Get().(*structpb.Struct)
}

// putEnvelope returns an envelope to the pool
// The envelope is reset so it holds no references to decoded fields
func putEnvelope(env *structpb.Struct) {
	if env == nil {
		return
	}
	env.Reset()
	envelopePool.Put(env)
}
