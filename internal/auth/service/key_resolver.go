package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
	apperrors "github.com/allisson/secretgate/internal/errors"
	"github.com/allisson/secretgate/internal/logging"
)

const (
	maxKeySetBytes      = 1 << 20
	defaultCacheTTL     = time.Hour
	defaultFetchTimeout = 10 * time.Second
)

// KeyResolverConfig configures where and how often the key set is fetched.
type KeyResolverConfig struct {
	URI          string
	AlternateURI string
	CacheTTL     time.Duration
	// MinRefreshInterval throttles refreshes forced by unknown key ids. Zero disables it.
	MinRefreshInterval time.Duration
}

// KeyResolverOption customizes the key resolver.
type KeyResolverOption func(*keyResolver)

// WithKeyResolverClock replaces time.Now, mainly for tests.
func WithKeyResolverClock(now func() time.Time) KeyResolverOption {
	return func(r *keyResolver) {
		r.now = now
	}
}

type keyResolver struct {
	config     KeyResolverConfig
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	fetchGroup     singleflight.Group
	refreshLimiter *rate.Limiter

	mu      sync.RWMutex
	current *KeySet
}

// NewKeyResolver creates a KeyResolver backed by an HTTP JWKS endpoint. The snapshot starts
// empty and is populated by the first resolution.
func NewKeyResolver(
	config KeyResolverConfig,
	httpClient *http.Client,
	logger *slog.Logger,
	opts ...KeyResolverOption,
) KeyResolver {
	if config.CacheTTL <= 0 {
		config.CacheTTL = defaultCacheTTL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFetchTimeout}
	}

	r := &keyResolver{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
	if config.MinRefreshInterval > 0 {
		r.refreshLimiter = rate.NewLimiter(rate.Every(config.MinRefreshInterval), 1)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve implements KeyResolver.
func (r *keyResolver) Resolve(ctx context.Context, kid string) (authDomain.SigningKey, error) {
	if kid == "" {
		return authDomain.SigningKey{}, apperrors.Wrap(authDomain.ErrKeyNotFound, "empty key id")
	}

	set, err := r.keySet(ctx)
	if err != nil {
		return authDomain.SigningKey{}, err
	}
	if key, ok := set.Lookup(kid); ok {
		return key, nil
	}

	if !r.allowForcedRefresh(set) {
		r.logger.Debug("forced key set refresh throttled", logging.MaskedAttr("kid", kid))
		return authDomain.SigningKey{}, authDomain.ErrKeyNotFound
	}

	r.logger.Info("unknown key id, refreshing key set", logging.MaskedAttr("kid", kid))
	set, err = r.fetch(ctx)
	if err != nil {
		return authDomain.SigningKey{}, err
	}
	if key, ok := set.Lookup(kid); ok {
		return key, nil
	}
	return authDomain.SigningKey{}, authDomain.ErrKeyNotFound
}

// allowForcedRefresh throttles refreshes caused by unknown key ids. A snapshot older than
// the minimum interval is always refreshable, so a burst of junk ids cannot hide a rotated key
// for longer than one interval.
func (r *keyResolver) allowForcedRefresh(set *KeySet) bool {
	if r.refreshLimiter == nil || r.refreshLimiter.Allow() {
		return true
	}
	return r.now().Sub(set.FetchedAt()) >= r.config.MinRefreshInterval
}

// ResolveByTrial implements KeyResolver.
func (r *keyResolver) ResolveByTrial(
	ctx context.Context,
	verify func(authDomain.SigningKey) error,
) (authDomain.SigningKey, error) {
	set, err := r.keySet(ctx)
	if err != nil {
		return authDomain.SigningKey{}, err
	}

	for _, key := range set.SigningKeys() {
		if verify(key) == nil {
			return key, nil
		}
	}
	return authDomain.SigningKey{}, authDomain.ErrNoMatchingKey
}

// Refresh implements KeyResolver.
func (r *keyResolver) Refresh(ctx context.Context) error {
	_, err := r.fetch(ctx)
	return err
}

// Invalidate implements KeyResolver.
func (r *keyResolver) Invalidate() {
	r.mu.Lock()
	r.current = nil
	r.mu.Unlock()
}

// keySet returns the cached snapshot, fetching when it is missing or older than the TTL.
func (r *keyResolver) keySet(ctx context.Context) (*KeySet, error) {
	r.mu.RLock()
	set := r.current
	r.mu.RUnlock()

	if set != nil && !set.Expired(r.now(), r.config.CacheTTL) {
		return set, nil
	}
	return r.fetch(ctx)
}

// fetch collapses concurrent fetches into one request pair (primary, then alternate). The
// shared fetch outlives the caller that started it, so one cancelled request does not fail
// the others waiting on it. A cancelled caller stops waiting right away.
func (r *keyResolver) fetch(ctx context.Context) (*KeySet, error) {
	results := r.fetchGroup.DoChan("jwks", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout())
		defer cancel()
		return r.fetchAll(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", authDomain.ErrKeySetUnreachable, ctx.Err())
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*KeySet), nil
	}
}

// fetchTimeout bounds one shared fetch: the client timeout per source, for both sources.
func (r *keyResolver) fetchTimeout() time.Duration {
	timeout := r.httpClient.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return 2 * timeout
}

func (r *keyResolver) fetchAll(ctx context.Context) (*KeySet, error) {
	set, err := r.fetchFrom(ctx, r.config.URI)
	if err != nil && r.config.AlternateURI != "" {
		r.logger.Warn("primary key set source failed, trying alternate",
			slog.String("uri", r.config.URI),
			slog.Any("error", err),
		)
		var altErr error
		set, altErr = r.fetchFrom(ctx, r.config.AlternateURI)
		if altErr != nil {
			return nil, apperrors.Join(err, altErr)
		}
		err = nil
	}
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.current = set
	r.mu.Unlock()

	r.logger.Debug("key set refreshed",
		slog.String("uri", set.Source()),
		slog.Int("keys", set.Len()),
	)
	return set, nil
}

func (r *keyResolver) fetchFrom(ctx context.Context, uri string) (*KeySet, error) {
	if uri == "" {
		return nil, apperrors.Wrap(authDomain.ErrKeySetUnreachable, "no key set uri configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authDomain.ErrKeySetUnreachable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authDomain.ErrKeySetUnreachable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d from %s", authDomain.ErrKeySetUnreachable, resp.StatusCode, uri)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySetBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authDomain.ErrKeySetUnreachable, err)
	}

	keys, err := ParseKeySet(body)
	if err != nil {
		return nil, err
	}
	return NewKeySet(keys, uri, r.now()), nil
}
