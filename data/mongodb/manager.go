// Package mongodb connects cursorpage to MongoDB: a manager that routes reads
// to replicas and a Collection wrapper exposing paginated queries.
//
// Pagination only reads, so collections are normally taken from a slave:
//
//	manager, err := mongodb.NewMongoManager(ctx, cfg.Data.MongoDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer manager.Close(ctx)
//
//	coll, err := manager.Collection("users", true)
//	pages := mongodb.NewCollection(coll, defaults)
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/ncobase/cursorpage/data/config"
	"github.com/ncobase/cursorpage/data/metrics"
	"github.com/ncobase/cursorpage/logging/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNoAvailableSlaves = errors.New("no available slave databases")
	ErrInvalidStrategy   = errors.New("invalid load balance strategy")
	ErrNoDatabase        = errors.New("mongodb database name is empty")
)

type MongoManager struct {
	master    *mongo.Client
	slaves    []*mongo.Client
	strategy  MongoLoadBalancer
	database  string
	collector metrics.Collector
	mutex     sync.RWMutex
}

// NewMongoManager connects to the master and every reachable slave.
// Unreachable slaves are skipped; reads fall back to the master.
func NewMongoManager(ctx context.Context, conf *config.MongoDB, collector ...metrics.Collector) (*MongoManager, error) {
	if conf == nil || conf.Master == nil {
		return nil, errors.New("master mongodb configuration is required")
	}

	strategy, err := newBalancer(conf)
	if err != nil {
		return nil, err
	}

	master, err := newMongoClient(ctx, conf, conf.Master)
	if err != nil {
		return nil, err
	}

	var slaves []*mongo.Client
	for i, slaveCfg := range conf.Slaves {
		slave, err := newMongoClient(ctx, conf, slaveCfg)
		if err != nil {
			logger.Warnf(ctx, "failed to connect to slave mongodb %d: %v", i, err)
			continue
		}
		slaves = append(slaves, slave)
	}

	m := &MongoManager{
		master:    master,
		slaves:    slaves,
		strategy:  strategy,
		database:  conf.Database,
		collector: metrics.NoOpCollector{},
	}
	if len(collector) > 0 && collector[0] != nil {
		m.collector = collector[0]
	}
	return m, nil
}

func newBalancer(conf *config.MongoDB) (MongoLoadBalancer, error) {
	switch conf.Strategy {
	case "round_robin", "":
		return NewMongoRoundRobinBalancer(), nil
	case "random":
		return &MongoRandomBalancer{}, nil
	case "weight":
		return NewMongoWeightBalancer(conf.Slaves), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidStrategy, conf.Strategy)
	}
}

type MongoLoadBalancer interface {
	Next([]*mongo.Client) (*mongo.Client, error)
}

type MongoRoundRobinBalancer struct {
	current atomic.Uint64
}

func NewMongoRoundRobinBalancer() *MongoRoundRobinBalancer {
	return &MongoRoundRobinBalancer{}
}

func (rb *MongoRoundRobinBalancer) Next(slaves []*mongo.Client) (*mongo.Client, error) {
	if len(slaves) == 0 {
		return nil, ErrNoAvailableSlaves
	}

	next := rb.current.Add(1) % uint64(len(slaves))
	return slaves[next], nil
}

type MongoRandomBalancer struct{}

func (rb *MongoRandomBalancer) Next(slaves []*mongo.Client) (*mongo.Client, error) {
	if len(slaves) == 0 {
		return nil, ErrNoAvailableSlaves
	}

	return slaves[rand.Intn(len(slaves))], nil
}

type MongoWeightBalancer struct {
	weights []int
	current atomic.Uint64
}

func NewMongoWeightBalancer(nodes []*config.MongoNode) *MongoWeightBalancer {
	weights := make([]int, len(nodes))
	for i, node := range nodes {
		weights[i] = node.Weight
		if weights[i] <= 0 {
			weights[i] = 1
		}
	}
	return &MongoWeightBalancer{weights: weights}
}

func (wb *MongoWeightBalancer) Next(slaves []*mongo.Client) (*mongo.Client, error) {
	if len(slaves) == 0 {
		return nil, ErrNoAvailableSlaves
	}

	// Slaves that failed to connect are missing from the slice; only the
	// weights of the surviving prefix apply.
	weights := wb.weights
	if len(weights) > len(slaves) {
		weights = weights[:len(slaves)]
	}
	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight == 0 {
		return slaves[0], nil
	}

	next := wb.current.Add(1) % uint64(totalWeight)

	var accumulator int
	for i, w := range weights {
		accumulator += w
		if uint64(accumulator) > next {
			return slaves[i], nil
		}
	}

	return slaves[0], nil
}

func (m *MongoManager) Master() *mongo.Client {
	if m == nil {
		return nil
	}
	return m.master
}

// Slave picks a read replica, falling back to the master.
func (m *MongoManager) Slave() *mongo.Client {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if len(m.slaves) == 0 {
		return m.master
	}

	slave, err := m.strategy.Next(m.slaves)
	if err != nil {
		return m.master
	}
	return slave
}

// Collection returns collName in the configured database.
func (m *MongoManager) Collection(collName string, readOnly bool) (*mongo.Collection, error) {
	if m.database == "" {
		return nil, ErrNoDatabase
	}
	client := m.master
	if readOnly {
		client = m.Slave()
	}
	return client.Database(m.database).Collection(collName), nil
}

// Health pings the master and drops slaves that no longer answer.
func (m *MongoManager) Health(ctx context.Context) error {
	if err := m.master.Ping(ctx, nil); err != nil {
		m.collector.HealthCheck("mongodb_master", false)
		return fmt.Errorf("master mongodb health check failed: %w", err)
	}
	m.collector.HealthCheck("mongodb_master", true)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	var healthySlaves []*mongo.Client
	for i, slave := range m.slaves {
		if err := slave.Ping(ctx, nil); err != nil {
			logger.Warnf(ctx, "slave mongodb %d health check failed: %v", i, err)
			continue
		}
		healthySlaves = append(healthySlaves, slave)
	}
	m.slaves = healthySlaves
	m.collector.HealthCheck("mongodb_slaves", len(m.slaves) > 0)

	return nil
}

func (m *MongoManager) Close(ctx context.Context) error {
	var errs []error

	if err := m.master.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error closing master connection: %w", err))
	}

	for i, slave := range m.slaves {
		if slave != m.master {
			if err := slave.Disconnect(ctx); err != nil {
				errs = append(errs, fmt.Errorf("error closing slave %d connection: %w", i, err))
			}
		}
	}

	return errors.Join(errs...)
}

func newMongoClient(ctx context.Context, conf *config.MongoDB, node *config.MongoNode) (*mongo.Client, error) {
	if node == nil || node.URI == "" {
		return nil, errors.New("mongodb configuration is nil or empty")
	}

	clientOptions := options.Client().ApplyURI(node.URI)
	if conf.ConnectTimeout > 0 {
		clientOptions.SetConnectTimeout(conf.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping error: %w", err)
	}

	return client, nil
}
