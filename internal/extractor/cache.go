package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedRecognizer memoizes recognitions by image content, so re-uploading
// the same photo (testMode first, then a real parse) runs OCR once.
type CachedRecognizer struct {
	next  Recognizer
	cache *gocache.Cache
}

// NewCachedRecognizer wraps next with an in-memory cache. A ttl <= 0 disables caching.
func NewCachedRecognizer(next Recognizer, ttl time.Duration) Recognizer {
	if ttl <= 0 {
		return next
	}
	return &CachedRecognizer{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Recognize returns a cached recognition or delegates. Errors are not cached.
func (c *CachedRecognizer) Recognize(ctx context.Context, img []byte) (Recognition, error) {
	key := imageKey(img)
	if v, found := c.cache.Get(key); found {
		return v.(Recognition), nil
	}
	rec, err := c.next.Recognize(ctx, img)
	if err != nil {
		return Recognition{}, err
	}
	c.cache.SetDefault(key, rec)
	return rec, nil
}

// Len reports the number of cached recognitions.
func (c *CachedRecognizer) Len() int {
	return c.cache.ItemCount()
}

func imageKey(img []byte) string {
	sum := sha256.Sum256(img)
	return hex.EncodeToString(sum[:])
}
