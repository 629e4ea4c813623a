package paging

import (
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// projectionPlan splits the caller's projection into the parts each executor
// needs. The ordering field and _id are always returned by the store because
// pointers are built from them; whichever of them the caller did not ask for
// is listed in hidden and removed before the batch is handed back.
type projectionPlan struct {
	include bson.M
	exclude bson.M
	hidden  []string

	// mentioned holds every path named by the caller's projection together
	// with its parents. Parents emptied by strip are kept only if mentioned.
	mentioned map[string]bool
}

func planProjection(projection bson.M, field string) projectionPlan {
	plan := projectionPlan{include: bson.M{}, exclude: bson.M{}, mentioned: map[string]bool{}}

	for k, v := range projection {
		if isExclusion(v) {
			plan.exclude[k] = v
		} else {
			plan.include[k] = v
		}
		for path := k; path != ""; path = parentPath(path) {
			plan.mentioned[path] = true
		}
	}

	required := []string{IDField}
	if field != IDField {
		required = append(required, field)
	}

	// An exclusion of a required field, of one of its parents or of one of
	// its children would change the value pointers are built from.
	excluded := make([]string, 0, len(plan.exclude))
	for k := range plan.exclude {
		excluded = append(excluded, k)
	}
	sort.Strings(excluded)
	for _, name := range required {
		for _, k := range excluded {
			if _, ok := plan.exclude[k]; !ok || !overlaps(k, name) {
				continue
			}
			delete(plan.exclude, k)
			plan.hidden = append(plan.hidden, k)
		}
	}

	// An inclusion projection returns _id unless it is excluded, which was
	// handled above; any other required field has to be listed explicitly.
	if len(plan.include) > 0 && field != IDField && !includesPath(plan.include, field) {
		plan.include[field] = 1
		plan.hidden = append(plan.hidden, field)
	}

	return plan
}

// needsPipeline reports whether the projection can only be expressed with a
// separate exclusion stage. A find projection cannot mix inclusions and
// exclusions.
func (p projectionPlan) needsPipeline() bool {
	return len(p.exclude) > 0
}

// strip removes the hidden fields from docs in place.
func (p projectionPlan) strip(docs []bson.M) {
	if len(p.hidden) == 0 {
		return
	}
	for _, doc := range docs {
		for _, name := range p.hidden {
			removeField(doc, name, p.mentioned)
		}
	}
}

func isExclusion(v any) bool {
	switch n := v.(type) {
	case bool:
		return !n
	case int:
		return n == 0
	case int32:
		return n == 0
	case int64:
		return n == 0
	case float64:
		return n == 0
	}
	return false
}

// includesPath reports whether field, or one of its parents, is included.
func includesPath(include bson.M, field string) bool {
	if _, ok := include[field]; ok {
		return true
	}
	for i := strings.LastIndexByte(field, '.'); i > 0; i = strings.LastIndexByte(field[:i], '.') {
		if _, ok := include[field[:i]]; ok {
			return true
		}
	}
	return false
}

// lookupField resolves a dotted path against nested documents.
func lookupField(doc bson.M, path string) any {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		switch d := cur.(type) {
		case bson.M:
			cur = d[part]
		case map[string]any:
			cur = d[part]
		case bson.D:
			cur = nil
			for _, e := range d {
				if e.Key == part {
					cur = e.Value
					break
				}
			}
		default:
			return nil
		}
	}
	return cur
}

// overlaps reports whether a and b are the same path or one contains the other.
func overlaps(a, b string) bool {
	return a == b || strings.HasPrefix(b, a+".") || strings.HasPrefix(a, b+".")
}

func parentPath(path string) string {
	if i := strings.LastIndexByte(path, '.'); i > 0 {
		return path[:i]
	}
	return ""
}

// removeField deletes a dotted path. Parent documents left empty are removed
// too unless keep names them.
func removeField(doc bson.M, path string, keep map[string]bool) {
	parts := strings.Split(path, ".")
	parents := make([]bson.M, 0, len(parts))
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		parents = append(parents, cur)
		next, ok := cur[part].(bson.M)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, parts[len(parts)-1])

	for i := len(parents) - 1; i >= 0; i-- {
		child := strings.Join(parts[:i+1], ".")
		if len(cur) > 0 || keep[child] {
			return
		}
		delete(parents[i], parts[i])
		cur = parents[i]
	}
}
