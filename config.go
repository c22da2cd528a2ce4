package zmtp

import (
	"sync"
	"time"
)

const defaultReadBufferSize = 4096

type Config struct {
	sync.RWMutex
	connectTimeout   time.Duration
	handshakeTimeout time.Duration
	readBufferSize   int
}

func (c *Config) Default() {
	c.Lock()
	defer c.Unlock()

	c.connectTimeout = time.Second * 3
	c.handshakeTimeout = time.Second * 5
	c.readBufferSize = defaultReadBufferSize
}

func (c *Config) ConnectTimeout() time.Duration {
	c.RLock()
	defer c.RUnlock()
	return c.connectTimeout
}

func (c *Config) SetConnectTimeout(d time.Duration) {
	c.Lock()
	defer c.Unlock()
	c.connectTimeout = d
}

func (c *Config) HandshakeTimeout() time.Duration {
	c.RLock()
	defer c.RUnlock()
	return c.handshakeTimeout
}

func (c *Config) SetHandshakeTimeout(d time.Duration) {
	c.Lock()
	defer c.Unlock()
	c.handshakeTimeout = d
}

func (c *Config) ReadBufferSize() int {
	c.RLock()
	defer c.RUnlock()
	return c.readBufferSize
}

func (c *Config) SetReadBufferSize(size int) {
	c.Lock()
	defer c.Unlock()
	c.readBufferSize = size
}
