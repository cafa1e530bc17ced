package codec

import (
	"sort"
	"sync"
)

// Registry maps codec names and transfer syntax UIDs to codecs. Every
// codec is reachable under both identifiers.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec // keyed by name and by UID
}

var defaultRegistry = &Registry{
	codecs: make(map[string]Codec),
}

// Register adds a codec to the default registry.
func Register(codec Codec) {
	defaultRegistry.Register(codec)
}

// Get looks up a codec in the default registry by name or UID.
func Get(nameOrUID string) (Codec, error) {
	return defaultRegistry.Get(nameOrUID)
}

// List returns the codecs in the default registry.
func List() []Codec {
	return defaultRegistry.List()
}

// Register adds a codec under both its name and its UID. A codec registered
// under an already-taken key replaces the previous one.
func (r *Registry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[codec.Name()] = codec
	r.codecs[codec.UID()] = codec
}

// Get looks up a codec by name or UID.
func (r *Registry) Get(nameOrUID string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codec, ok := r.codecs[nameOrUID]
	if !ok {
		return nil, ErrCodecNotFound
	}
	return codec, nil
}

// List returns each registered codec once, sorted by name.
func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Codec]bool)
	codecs := make([]Codec, 0, len(r.codecs))
	for _, c := range r.codecs {
		if !seen[c] {
			seen[c] = true
			codecs = append(codecs, c)
		}
	}
	sort.Slice(codecs, func(i, j int) bool { return codecs[i].Name() < codecs[j].Name() })
	return codecs
}
