package cache

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/Keksclan/goMensaSquirrel/meal"
	"github.com/dgraph-io/ristretto/v2"
)

// DayCache keeps recently served durable-store days in process so repeated
// lookups for a facility that is not in the plan collection do not hit the
// backing store every time. Entries expire after the configured TTL.
type DayCache struct {
	rc  *ristretto.Cache[string, meal.Day]
	ttl time.Duration
}

// NewDayCache creates a DayCache holding up to maxEntries days (each entry
// has a cost of 1). A zero ttl keeps entries until evicted.
func NewDayCache(maxEntries int64, ttl time.Duration) (*DayCache, error) {
	rc, err := ristretto.NewCache(&ristretto.Config[string, meal.Day]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &DayCache{rc: rc, ttl: ttl}, nil
}

func dayKey(facility, lang string, date civil.Date) string {
	return Key(facility, lang) + "@" + date.String()
}

// Get returns a copy of the cached day.
func (c *DayCache) Get(facility, lang string, date civil.Date) (meal.Day, bool) {
	d, ok := c.rc.Get(dayKey(facility, lang, date))
	if !ok {
		return meal.Day{}, false
	}
	return d.Clone(), true
}

// Set stores a copy of day. The write is visible to Get once Set returns.
func (c *DayCache) Set(facility, lang string, day meal.Day) {
	c.rc.SetWithTTL(dayKey(facility, lang, day.Date), day.Clone(), 1, c.ttl)
	c.rc.Wait()
}

// Delete drops the cached day for date.
func (c *DayCache) Delete(facility, lang string, date civil.Date) {
	c.rc.Del(dayKey(facility, lang, date))
}

// Close stops the cache's background goroutines.
func (c *DayCache) Close() {
	c.rc.Close()
}
