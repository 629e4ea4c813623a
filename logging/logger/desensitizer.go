package logger

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/ncobase/cursorpage/logging/logger/config"
	"github.com/sirupsen/logrus"
)

// Desensitizer masks sensitive values in log fields. Filters and decoded
// page pointers are logged at debug level, so nested maps and slices are
// walked as well.
type Desensitizer struct {
	config *config.Desensitization
	fields []string
}

// NewDesensitizer creates a new desensitizer instance
func NewDesensitizer(cfg *config.Desensitization) *Desensitizer {
	if cfg == nil {
		cfg = config.DefaultDesensitization()
	}
	fields := make([]string, 0, len(cfg.SensitiveFields))
	for _, f := range cfg.SensitiveFields {
		fields = append(fields, strings.ToLower(f))
	}
	return &Desensitizer{config: cfg, fields: fields}
}

// DesensitizeFields processes log fields and masks sensitive data
func (d *Desensitizer) DesensitizeFields(fields logrus.Fields) logrus.Fields {
	if !d.config.Enabled {
		return fields
	}

	result := make(logrus.Fields, len(fields))
	for key, value := range fields {
		result[key] = d.desensitizeValue(key, value, 0)
	}
	return result
}

func (d *Desensitizer) desensitizeValue(key string, value any, depth int) any {
	if value == nil || depth > 10 {
		return value
	}
	if d.isSensitiveField(key) {
		return d.mask()
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return value
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			out[k] = d.desensitizeValue(k, iter.Value().Interface(), depth+1)
		}
		return out
	case reflect.Slice, reflect.Array:
		// []byte and fixed-size byte arrays such as ObjectID stay as they are.
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return value
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = d.desensitizeValue("", v.Index(i).Interface(), depth+1)
		}
		return out
	default:
		return d.desensitizeElement(value, depth)
	}
}

// desensitizeElement handles bson.D style elements, which are structs with
// Key and Value fields.
func (d *Desensitizer) desensitizeElement(value any, depth int) any {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Struct {
		return value
	}
	keyField := v.FieldByName("Key")
	valField := v.FieldByName("Value")
	if !keyField.IsValid() || !valField.IsValid() || keyField.Kind() != reflect.String {
		return value
	}
	key := keyField.String()
	return map[string]any{key: d.desensitizeValue(key, valField.Interface(), depth+1)}
}

func (d *Desensitizer) isSensitiveField(key string) bool {
	if key == "" {
		return false
	}
	lower := strings.ToLower(key)
	for _, f := range d.fields {
		if d.config.ExactFieldMatch {
			if lower == f {
				return true
			}
			continue
		}
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

func (d *Desensitizer) mask() string {
	return strings.Repeat(d.config.MaskChar, d.config.FixedMaskLength)
}

// DesensitizeHook applies a Desensitizer to every entry before it is written.
type DesensitizeHook struct {
	d *Desensitizer
}

// NewDesensitizeHook wraps d as a logrus hook.
func NewDesensitizeHook(d *Desensitizer) *DesensitizeHook {
	return &DesensitizeHook{d: d}
}

func (h *DesensitizeHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *DesensitizeHook) Fire(entry *logrus.Entry) error {
	if h.d == nil {
		return fmt.Errorf("desensitize hook has no desensitizer")
	}
	entry.Data = h.d.DesensitizeFields(entry.Data)
	return nil
}
