package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned by a Geocoder when the provider answered and the
// place does not exist. Not-found is a definitive answer and is never retried.
var ErrNotFound = errors.New("geocode: not found")

// Place is one provider hit.
type Place struct {
	DisplayName string
	Lat         float64
	Lon         float64
}

// Geocoder is an external geocoding provider.
type Geocoder interface {
	Name() string
	Lookup(ctx context.Context, query string) (*Place, error)
}

// ExternalLayer calls the provider under a fixed-interval rate limit with a
// bounded retry budget. Public geocoding endpoints throttle aggressively;
// the limiter applies to retries as much as to fresh queries.
type ExternalLayer struct {
	geocoder    Geocoder
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
	confidence  float64
}

// NewExternalLayer wraps geocoder with a minimum delay between calls and at
// most maxAttempts tries per query.
func NewExternalLayer(geocoder Geocoder, minDelay time.Duration, maxAttempts int, confidence float64) *ExternalLayer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if minDelay <= 0 {
		minDelay = time.Second
	}
	return &ExternalLayer{
		geocoder:    geocoder,
		limiter:     rate.NewLimiter(rate.Every(minDelay), 1),
		maxAttempts: maxAttempts,
		backoff:     time.Second,
		confidence:  confidence,
	}
}

// Name implements Layer.
func (l *ExternalLayer) Name() string { return l.geocoder.Name() }

// Resolve implements Layer. A region hint from the classifier is appended to
// the query to disambiguate names shared by many towns.
func (l *ExternalLayer) Resolve(ctx context.Context, q *Query) (*Result, error) {
	query := q.Raw
	source := l.geocoder.Name()
	if q.RegionHint != "" {
		query = q.Raw + " " + q.RegionHint
		source += "_with_context"
	}

	var lastErr error
	delay := l.backoff
	for attempt := 0; attempt < l.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		place, err := l.geocoder.Lookup(ctx, query)
		if err == nil {
			name := place.DisplayName
			if name == "" {
				name = q.Raw
			}
			return &Result{
				CanonicalName: name,
				Lat:           place.Lat,
				Lon:           place.Lon,
				Confidence:    l.confidence,
				Source:        source,
			}, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoMatch
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%s: %d attempts: %w", l.geocoder.Name(), l.maxAttempts, lastErr)
}
