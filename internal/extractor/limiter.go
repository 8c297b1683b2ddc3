package extractor

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedRecognizer throttles calls to a shared recognizer.
type RateLimitedRecognizer struct {
	next    Recognizer
	limiter *rate.Limiter
}

// NewRateLimitedRecognizer allows perSecond calls with the given burst.
// A perSecond <= 0 returns next unchanged.
func NewRateLimitedRecognizer(next Recognizer, perSecond float64, burst int) Recognizer {
	if perSecond <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedRecognizer{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Recognize waits for a slot, then delegates. When no slot frees up before
// ctx's deadline it returns ErrRateLimited.
func (r *RateLimitedRecognizer) Recognize(ctx context.Context, img []byte) (Recognition, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return Recognition{}, ctx.Err()
		}
		return Recognition{}, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return r.next.Recognize(ctx, img)
}
