package config

import (
	"fmt"
	"time"

	"github.com/ncobase/cursorpage/paging"
	"github.com/ncobase/cursorpage/validator"
	"github.com/spf13/viper"
)

const (
	defaultLimit    = paging.DefaultLimit
	defaultMaxLimit = paging.MaxLimit
)

// Paging holds the process-wide pagination defaults.
type Paging struct {
	Limit               int           `json:"limit" yaml:"limit" validate:"gte=0"`
	MaxLimit            int           `json:"max_limit" yaml:"max_limit" validate:"gte=0"`
	OrderingField       string        `json:"ordering_field" yaml:"ordering_field"`
	Ordering            string        `json:"ordering" yaml:"ordering"`
	ResponseFormat      string        `json:"response_format" yaml:"response_format"`
	AutomaticPagination bool          `json:"automatic_pagination" yaml:"automatic_pagination"`
	CacheTTL            time.Duration `json:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
}

func getPagingConfig(v *viper.Viper) *Paging {
	return &Paging{
		Limit:               v.GetInt("paging.limit"),
		MaxLimit:            v.GetInt("paging.max_limit"),
		OrderingField:       v.GetString("paging.ordering_field"),
		Ordering:            v.GetString("paging.ordering"),
		ResponseFormat:      v.GetString("paging.response_format"),
		AutomaticPagination: v.GetBool("paging.automatic_pagination"),
		CacheTTL:            v.GetDuration("paging.cache_ttl"),
	}
}

// Defaults converts the section into paging.Defaults. Unset values keep the
// built-in defaults; an unknown ordering or response format is an error.
func (p *Paging) Defaults() (paging.Defaults, error) {
	d := paging.NewDefaults()
	if p == nil {
		return d, nil
	}
	if err := validator.Error(p); err != nil {
		return d, fmt.Errorf("%w: paging: %v", paging.ErrConfiguration, err)
	}

	if p.Limit > 0 {
		d.Limit = p.Limit
	}
	if p.MaxLimit > 0 {
		d.MaxLimit = p.MaxLimit
	}
	if p.OrderingField != "" {
		d.OrderingField = p.OrderingField
	}
	if p.Ordering != "" {
		dir, err := paging.ParseDirection(p.Ordering)
		if err != nil {
			return d, err
		}
		d.Ordering = dir
	}
	if p.ResponseFormat != "" {
		if _, ok := paging.GetFormatter(p.ResponseFormat); !ok {
			return d, fmt.Errorf("%w: unknown response format %q", paging.ErrConfiguration, p.ResponseFormat)
		}
		d.ResponseFormat = p.ResponseFormat
	}
	d.AutomaticPagination = p.AutomaticPagination
	return d, nil
}

// CacheEnabled reports whether pages should be cached.
func (p *Paging) CacheEnabled() bool {
	return p != nil && p.CacheTTL > 0
}
