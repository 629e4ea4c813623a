package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// MongoDB mongodb config struct
type MongoDB struct {
	Master         *MongoNode    `json:"master"`
	Slaves         []*MongoNode  `json:"slaves"`
	Strategy       string        `json:"strategy"`
	Database       string        `json:"database"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
}

// MongoNode mongodb node config
type MongoNode struct {
	URI    string `json:"uri"`
	Weight int    `json:"weight"`
}

// getMongoDBConfigs reads MongoDB configurations
func getMongoDBConfigs(v *viper.Viper) *MongoDB {
	timeout := v.GetDuration("data.mongodb.connect_timeout")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MongoDB{
		Master: &MongoNode{
			URI: v.GetString("data.mongodb.master.uri"),
		},
		Slaves:         getMongoSlaveConfigs(v),
		Strategy:       v.GetString("data.mongodb.strategy"),
		Database:       v.GetString("data.mongodb.database"),
		ConnectTimeout: timeout,
	}
}

// getMongoSlaveConfigs reads MongoDB slave configurations
func getMongoSlaveConfigs(v *viper.Viper) []*MongoNode {
	var slaves []*MongoNode

	slavesInterface, ok := v.Get("data.mongodb.slaves").([]any)
	if !ok {
		return slaves
	}

	for i := range slavesInterface {
		slave := &MongoNode{
			URI:    v.GetString(fmt.Sprintf("data.mongodb.slaves.%d.uri", i)),
			Weight: v.GetInt(fmt.Sprintf("data.mongodb.slaves.%d.weight", i)),
		}
		if slave.URI == "" {
			continue
		}
		if slave.Weight <= 0 {
			slave.Weight = 1
		}
		slaves = append(slaves, slave)
	}

	return slaves
}
