package relay

import (
	"crypto/tls"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
)

// HTTPPool round-robins requests over a small set of fasthttp clients so a
// slow config fetch and a burst of message forwards never contend for the
// same connection pool.
type HTTPPool struct {
	clients []*fasthttp.Client
	size    uint32
	index   uint32
}

func NewHTTPPool(size int) *HTTPPool {
	if size <= 0 {
		size = 1
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ClientSessionCache: tls.NewLRUClientSessionCache(64),
	}

	clients := make([]*fasthttp.Client, size)
	for i := 0; i < size; i++ {
		clients[i] = &fasthttp.Client{
			MaxConnsPerHost:     256,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxResponseBodySize: 1024 * 1024,
			TLSConfig:           tlsConfig,
		}
	}

	return &HTTPPool{
		clients: clients,
		size:    uint32(size),
	}
}

func (hp *HTTPPool) GetClient() *fasthttp.Client {
	n := atomic.AddUint32(&hp.index, 1)
	return hp.clients[n%hp.size]
}
