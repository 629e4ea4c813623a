package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// SlowQueryThreshold marks a page round-trip as slow.
const SlowQueryThreshold = time.Second

// Collector interface for data layer metrics
type Collector interface {
	DBQuery(duration time.Duration, err error)
	MongoOperation(operation string, err error)
	RedisCommand(command string, err error)
	HealthCheck(component string, healthy bool)
}

// NoOpCollector implements Collector with no-op methods
type NoOpCollector struct{}

func (NoOpCollector) DBQuery(time.Duration, error)  {}
func (NoOpCollector) MongoOperation(string, error) {}
func (NoOpCollector) RedisCommand(string, error)   {}
func (NoOpCollector) HealthCheck(string, bool)     {}

// DataCollector keeps in-process counters of page queries, cache traffic
// and health checks.
type DataCollector struct {
	// Query metrics
	dbQueries     atomic.Int64
	dbQueryErrors atomic.Int64
	dbSlowQueries atomic.Int64
	dbQueryNanos  atomic.Int64

	// MongoDB metrics
	mongoOperations sync.Map // operation -> *atomic.Int64
	mongoErrors     atomic.Int64

	// Redis metrics
	redisCommands atomic.Int64
	redisErrors   atomic.Int64

	// Health metrics
	healthChecks map[string]bool
	healthMu     sync.RWMutex

	lastDBQuery atomic.Value // time.Time
}

// NewDataCollector creates a new data collector
func NewDataCollector() *DataCollector {
	c := &DataCollector{healthChecks: make(map[string]bool)}
	c.lastDBQuery.Store(time.Time{})
	return c
}

// DBQuery records a store round-trip
func (c *DataCollector) DBQuery(duration time.Duration, err error) {
	c.dbQueries.Add(1)
	c.dbQueryNanos.Add(int64(duration))
	c.lastDBQuery.Store(time.Now())

	if err != nil {
		c.dbQueryErrors.Add(1)
	}
	if duration > SlowQueryThreshold {
		c.dbSlowQueries.Add(1)
	}
}

// MongoOperation records MongoDB operation metrics
func (c *DataCollector) MongoOperation(operation string, err error) {
	counter, _ := c.mongoOperations.LoadOrStore(operation, &atomic.Int64{})
	counter.(*atomic.Int64).Add(1)

	if err != nil {
		c.mongoErrors.Add(1)
	}
}

// RedisCommand records Redis command metrics
func (c *DataCollector) RedisCommand(_ string, err error) {
	c.redisCommands.Add(1)
	if err != nil {
		c.redisErrors.Add(1)
	}
}

// HealthCheck records health check metrics
func (c *DataCollector) HealthCheck(component string, healthy bool) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()
	c.healthChecks[component] = healthy
}

// MongoOperations returns how often operation was recorded.
func (c *DataCollector) MongoOperations(operation string) int64 {
	if counter, ok := c.mongoOperations.Load(operation); ok {
		return counter.(*atomic.Int64).Load()
	}
	return 0
}

// GetStats returns current statistics
func (c *DataCollector) GetStats() map[string]any {
	c.healthMu.RLock()
	healthStatus := make(map[string]bool, len(c.healthChecks))
	for component, status := range c.healthChecks {
		healthStatus[component] = status
	}
	c.healthMu.RUnlock()

	operations := map[string]int64{}
	c.mongoOperations.Range(func(k, v any) bool {
		operations[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})

	var avg time.Duration
	if n := c.dbQueries.Load(); n > 0 {
		avg = time.Duration(c.dbQueryNanos.Load() / n)
	}

	return map[string]any{
		"queries": map[string]any{
			"total":        c.dbQueries.Load(),
			"errors":       c.dbQueryErrors.Load(),
			"slow_queries": c.dbSlowQueries.Load(),
			"avg_duration": avg,
			"last_query":   c.lastDBQuery.Load(),
		},
		"mongodb": map[string]any{
			"operations": operations,
			"errors":     c.mongoErrors.Load(),
		},
		"redis": map[string]any{
			"commands": c.redisCommands.Load(),
			"errors":   c.redisErrors.Load(),
		},
		"health":    healthStatus,
		"timestamp": time.Now(),
	}
}
