package memory

import (
	"strconv"
	"time"

	"hearth-chat-be/internal/model"

	"github.com/patrickmn/go-cache"
)

// SettingsCache keeps recently read user AI preferences in memory so a
// chatty socket does not hit the store on every frame.
type SettingsCache struct {
	cache *cache.Cache
}

func NewSettingsCache() *SettingsCache {
	// Default expiration 5 minutes, purge sweep every 10 minutes.
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &SettingsCache{
		cache: c,
	}
}

func (r *SettingsCache) Save(settings *model.UserSettings) {
	r.cache.Set(key(settings.UserID), settings, cache.DefaultExpiration)
}

func (r *SettingsCache) Get(userID uint) (*model.UserSettings, bool) {
	if x, found := r.cache.Get(key(userID)); found {
		return x.(*model.UserSettings), true
	}
	return nil, false
}

func (r *SettingsCache) Delete(userID uint) {
	r.cache.Delete(key(userID))
}

func key(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}
