package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// ProcessingRepository tracks which chat sessions currently have an
// assistant reply in flight, so a second send is rejected until the
// first one finishes.
type ProcessingRepository struct {
	cache *cache.Cache
}

func NewProcessingRepository() *ProcessingRepository {
	// A reply takes seconds; the expiration is a safety net in case a
	// crash leaves a session marked busy.
	c := cache.New(2*time.Minute, 1*time.Minute)
	return &ProcessingRepository{
		cache: c,
	}
}

// TryAcquire marks the session busy. It returns false when a reply is
// already being produced for the session.
func (r *ProcessingRepository) TryAcquire(sessionId string) bool {
	return r.cache.Add(sessionId, struct{}{}, cache.DefaultExpiration) == nil
}

func (r *ProcessingRepository) Release(sessionId string) {
	r.cache.Delete(sessionId)
}

func (r *ProcessingRepository) IsBusy(sessionId string) bool {
	_, found := r.cache.Get(sessionId)
	return found
}
