package store

import "sync"

// Connection groups the series produced by one telemetry connection.
// Series are registered when the connection's field list is finalized, before
// sample traffic starts.
type Connection struct {
	name string

	mu     sync.RWMutex
	series []*Series
}

// Name returns the connection's display name.
func (c *Connection) Name() string {
	return c.name
}

// NewSeries creates a series owned by this connection at the given location.
// The connection's name is injected so Label can disambiguate identical
// field names across connections.
func (c *Connection) NewSeries(location int, opts ...SeriesOption) (*Series, error) {
	allOpts := append([]SeriesOption{WithConnectionName(c.name)}, opts...)

	s, err := NewSeries(location, allOpts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.series = append(c.series, s)
	c.mu.Unlock()

	return s, nil
}

// Series returns the connection's series in registration order.
func (c *Connection) Series() []*Series {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Series, len(c.series))
	copy(out, c.series)

	return out
}

// SeriesByLocation returns the series registered at the given location, or
// nil if none is.
func (c *Connection) SeriesByLocation(location int) *Series {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, s := range c.series {
		if s.location == location {
			return s
		}
	}

	return nil
}

// Session owns the full dataset set of one capture session: every connection
// and every series. It is the explicit context that labeling and snapshot
// operations receive, replacing any global connection registry.
//
// Registration (AddConnection, NewSeries) is mutex-guarded; sample traffic
// never touches the session lock.
type Session struct {
	mu          sync.RWMutex
	connections []*Connection
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// AddConnection registers a new connection with the given display name.
func (s *Session) AddConnection(name string) *Connection {
	conn := &Connection{name: name}

	s.mu.Lock()
	s.connections = append(s.connections, conn)
	s.mu.Unlock()

	return conn
}

// ConnectionCount returns the number of active connections.
func (s *Session) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.connections)
}

// Connections returns the session's connections in registration order.
func (s *Session) Connections() []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Connection, len(s.connections))
	copy(out, s.connections)

	return out
}

// Label returns the display label for a series, prefixing the connection
// name only when more than one connection is active.
func (s *Session) Label(series *Series) string {
	return series.Label(s.ConnectionCount())
}

// AllSeries returns every series of every connection, connection by
// connection in registration order.
func (s *Session) AllSeries() []*Series {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Series
	for _, conn := range s.connections {
		out = append(out, conn.Series()...)
	}

	return out
}

// Clear discards every connection and series, releasing all sample storage.
// Sessions either accumulate or are cleared in full; there is no partial
// rollback.
func (s *Session) Clear() {
	s.mu.Lock()
	s.connections = nil
	s.mu.Unlock()
}
