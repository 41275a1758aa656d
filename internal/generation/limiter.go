package generation

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited throttles a TextGenerator to a fixed number of calls per
// minute and retries transient failures.
type RateLimited struct {
	next    TextGenerator
	limiter *rate.Limiter
	policy  RetryPolicy
}

// NewRateLimited wraps next. A non-positive perMinute disables throttling.
func NewRateLimited(next TextGenerator, perMinute int, policy RetryPolicy) *RateLimited {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
		policy:  policy,
	}
}

func (r *RateLimited) Generate(ctx context.Context, parts []Part) (string, error) {
	var out string
	err := Retry(ctx, r.policy, func() error {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		text, err := r.next.Generate(ctx, parts)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	return out, err
}

// RetryingImages retries transient image provider failures.
type RetryingImages struct {
	next   ImageGenerator
	policy RetryPolicy
}

func NewRetryingImages(next ImageGenerator, policy RetryPolicy) *RetryingImages {
	return &RetryingImages{next: next, policy: policy}
}

func (r *RetryingImages) Generate(ctx context.Context, prompt string) (ImagePart, error) {
	var out ImagePart
	err := Retry(ctx, r.policy, func() error {
		img, err := r.next.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		out = img
		return nil
	})
	return out, err
}
