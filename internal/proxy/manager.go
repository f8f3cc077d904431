// Package proxy rotates outbound proxies and browser user agents.
package proxy

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
)

// Manager handles the rotation of proxies and user agents.
type Manager struct {
	proxies    []*url.URL
	userAgents []string
	mu         sync.Mutex
	proxyIndex int
}

// NewManager parses proxyURLs up front so a bad entry fails at startup.
func NewManager(proxyURLs, userAgents []string) (*Manager, error) {
	m := &Manager{userAgents: userAgents}
	for _, raw := range proxyURLs {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q", raw)
		}
		m.proxies = append(m.proxies, u)
	}
	return m, nil
}

// HasProxies reports whether any proxy is configured.
func (m *Manager) HasProxies() bool {
	return len(m.proxies) > 0
}

// NextProxy returns the next proxy in round-robin order, or nil when none
// is configured.
func (m *Manager) NextProxy() *url.URL {
	if len(m.proxies) == 0 {
		return nil // No proxy
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return p
}

// Proxy has the signature of http.Transport.Proxy.
func (m *Manager) Proxy(*http.Request) (*url.URL, error) {
	return m.NextProxy(), nil
}

// UserAgent returns a random user agent string.
func (m *Manager) UserAgent() string {
	if len(m.userAgents) == 0 {
		return ""
	}
	return m.userAgents[rand.IntN(len(m.userAgents))]
}
