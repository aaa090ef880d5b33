// Package headers owns the rotation of browser-like request header profiles.
// The choice of profiles is a transport-layer policy injected into the
// fetcher, not part of the discovery pipeline itself.
package headers

import (
	"math/rand"
	"sync"
	"time"
)

// Profile is a complete header set applied to one outgoing request.
type Profile map[string]string

// Rotator hands out header profiles for outgoing fetches.
type Rotator struct {
	profiles []Profile
	mu       sync.Mutex
	rng      *rand.Rand
}

func NewRotator() *Rotator {
	return &Rotator{
		profiles: defaultProfiles(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Pick returns a randomly selected header profile. Safe for concurrent use:
// detail fetches share one rotator across the worker pool.
func (r *Rotator) Pick() Profile {
	if len(r.profiles) == 0 {
		return nil
	}
	r.mu.Lock()
	n := r.rng.Intn(len(r.profiles))
	r.mu.Unlock()
	return r.profiles[n]
}

func defaultProfiles() []Profile {
	// Accept-Encoding is left to the HTTP transport: setting it by hand
	// disables net/http's transparent gzip decompression.
	common := map[string]string{
		"Referer":         "https://www.google.com/",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Cache-Control":   "max-age=0",
		"Connection":      "keep-alive",
	}
	variants := []struct {
		userAgent string
		extraKey  string
		extraVal  string
	}{
		{
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.82 Safari/537.36",
			extraKey:  "TE",
			extraVal:  "Trailers",
		},
		{
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:87.0) Gecko/20100101 Firefox/87.0",
			extraKey:  "Upgrade-Insecure-Requests",
			extraVal:  "1",
		},
		{
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.82 Safari/537.36",
			extraKey:  "TE",
			extraVal:  "Trailers",
		},
		{
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.82 Safari/537.36",
			extraKey:  "Upgrade-Insecure-Requests",
			extraVal:  "1",
		},
	}

	profiles := make([]Profile, 0, len(variants))
	for _, v := range variants {
		p := make(Profile, len(common)+2)
		for k, val := range common {
			p[k] = val
		}
		p["User-Agent"] = v.userAgent
		p[v.extraKey] = v.extraVal
		profiles = append(profiles, p)
	}
	return profiles
}
