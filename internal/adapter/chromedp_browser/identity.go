package chromedp_browser

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Identity is the network face a browser launch presents: its user agent and,
// optionally, the proxy it routes through.
type Identity struct {
	UserAgent string
	Proxy     string
}

var defaultUserAgents = []string{
	defaultUserAgent,
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// IdentityPool hands out identities. Proxies rotate sequentially, user agents
// are picked at random.
type IdentityPool struct {
	proxies    []string
	userAgents []string
	mu         sync.Mutex
	proxyIndex int
	rng        *rand.Rand
}

// NewIdentityPool builds a pool from a comma separated proxy list. An empty
// list means direct connections.
func NewIdentityPool(proxyList string, src rand.Source) *IdentityPool {
	var proxies []string
	for _, p := range strings.Split(proxyList, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &IdentityPool{
		proxies:    proxies,
		userAgents: defaultUserAgents,
		rng:        rand.New(src),
	}
}

// Next returns the identity for the next launch.
func (p *IdentityPool) Next() Identity {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := Identity{UserAgent: p.userAgents[p.rng.Intn(len(p.userAgents))]}
	if len(p.proxies) > 0 {
		id.Proxy = p.proxies[p.proxyIndex]
		p.proxyIndex = (p.proxyIndex + 1) % len(p.proxies)
	}
	return id
}
