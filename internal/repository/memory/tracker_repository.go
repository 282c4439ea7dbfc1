package memory

import (
	"time"

	"ai-chat-be/pkg/lifecycle"

	"github.com/patrickmn/go-cache"
)

// TrackerRepository keeps one lifecycle tracker per user so repeated
// status polls observe the same progress and escalation state.
type TrackerRepository struct {
	cache *cache.Cache
}

func NewTrackerRepository() *TrackerRepository {
	// Trackers become irrelevant once provisioning settles; expire
	// them after an hour of inactivity and purge every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &TrackerRepository{
		cache: c,
	}
}

func (r *TrackerRepository) Save(userId string, tracker *lifecycle.Tracker) {
	r.cache.Set(userId, tracker, cache.DefaultExpiration)
}

func (r *TrackerRepository) Get(userId string) (*lifecycle.Tracker, bool) {
	if x, found := r.cache.Get(userId); found {
		return x.(*lifecycle.Tracker), true
	}
	return nil, false
}

func (r *TrackerRepository) Delete(userId string) {
	r.cache.Delete(userId)
}
