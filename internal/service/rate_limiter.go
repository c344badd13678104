package service

import (
	"context"
	"net/netip"
	"strings"
	"sync"
	"time"
)

// RateDecision es el resultado de consultar el limiter. RetryAfter solo
// tiene sentido cuando Allowed es false.
type RateDecision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RateLimiter limita la frecuencia de solicitudes por clave.
type RateLimiter interface {
	Allow(ctx context.Context, key string) RateDecision
}

// KeyNormalizer canonicaliza una clave antes de contarla.
type KeyNormalizer func(key string) string

// IPKeyNormalizer devuelve un normalizador que baja a minusculas y, para
// claves "ip:<addr>" IPv6, agrupa por prefijo de ipv6Bits bits. Un cliente
// IPv6 suele controlar un /64 completo.
func IPKeyNormalizer(ipv6Bits int) KeyNormalizer {
	if ipv6Bits <= 0 || ipv6Bits > 128 {
		ipv6Bits = 64
	}
	return func(key string) string {
		key = strings.ToLower(strings.TrimSpace(key))
		raw, ok := strings.CutPrefix(key, "ip:")
		if !ok {
			return key
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return key
		}
		addr = addr.Unmap()
		if addr.Is4() {
			return "ip:" + addr.String()
		}
		prefix, err := addr.WithZone("").Prefix(ipv6Bits)
		if err != nil {
			return key
		}
		return "ip:" + prefix.String()
	}
}

type memoryRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	hits      map[string][]time.Time
	normalize KeyNormalizer
	now       func() time.Time
}

// NewMemoryRateLimiter crea un rate limiter de ventana deslizante en memoria.
func NewMemoryRateLimiter(window time.Duration, max int, normalize KeyNormalizer) RateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if normalize == nil {
		normalize = IPKeyNormalizer(64)
	}
	return &memoryRateLimiter{
		window:    window,
		max:       max,
		hits:      make(map[string][]time.Time),
		normalize: normalize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (l *memoryRateLimiter) Allow(_ context.Context, key string) RateDecision {
	key = l.normalize(key)
	if key == "" {
		return RateDecision{RetryAfter: l.window}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cutoff := now.Add(-l.window)
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		// se libera un hueco cuando sale el golpe mas viejo
		return RateDecision{RetryAfter: kept[0].Add(l.window).Sub(now)}
	}
	l.hits[key] = append(kept, now)
	return RateDecision{Allowed: true}
}
