package paging

import (
	"slices"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// Built-in response formats.
const (
	FormatDefault = "default"
	// FormatChat shows the most recent document last, the way a chat
	// history is displayed. It requires descending ordering.
	FormatChat = "chat"
)

// Formatter shapes the documents of a batch before they reach the caller.
// It must not change the number of documents.
type Formatter interface {
	Format(docs []bson.M) []bson.M
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(docs []bson.M) []bson.M

func (f FormatterFunc) Format(docs []bson.M) []bson.M { return f(docs) }

var (
	formatters = map[string]Formatter{
		FormatDefault: FormatterFunc(func(docs []bson.M) []bson.M { return docs }),
		FormatChat: FormatterFunc(func(docs []bson.M) []bson.M {
			out := slices.Clone(docs)
			slices.Reverse(out)
			return out
		}),
	}
	formatMu sync.RWMutex
)

// RegisterFormatter makes a formatter available under name, replacing any
// previous registration.
func RegisterFormatter(name string, f Formatter) {
	formatMu.Lock()
	defer formatMu.Unlock()
	formatters[name] = f
}

// GetFormatter returns the formatter registered under name.
func GetFormatter(name string) (Formatter, bool) {
	formatMu.RLock()
	defer formatMu.RUnlock()
	f, ok := formatters[name]
	return f, ok
}

// RegisteredFormats returns the registered format names, sorted.
func RegisteredFormats() []string {
	formatMu.RLock()
	defer formatMu.RUnlock()
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
