package paging

import (
	"go.mongodb.org/mongo-driver/bson"
)

// BuildFilter composes base with the range condition that selects the
// documents strictly beyond p in the direction given by op. base is not
// modified.
//
// When field is the unique id the condition is a plain range on _id.
// Otherwise ties on field are broken by _id:
//
//	{$or: [{field: {op: value}}, {field: value, _id: {op: id}}]}
//
// A top-level $or already present in base is kept by moving both
// disjunctions under $and.
func BuildFilter(base bson.M, field string, p *Pointer, op Operator) bson.M {
	filter := make(bson.M, len(base)+1)
	for k, v := range base {
		filter[k] = v
	}
	if p == nil {
		return filter
	}

	if field == IDField {
		cond := bson.M{string(op): p.ID}
		if existing, ok := filter[IDField]; ok {
			delete(filter, IDField)
			appendAnd(filter, bson.M{IDField: existing}, bson.M{IDField: cond})
		} else {
			filter[IDField] = cond
		}
		return filter
	}

	ranged := bson.A{
		bson.M{field: bson.M{string(op): p.Value}},
		bson.M{field: p.Value, IDField: bson.M{string(op): p.ID}},
	}
	if existing, ok := filter["$or"]; ok {
		delete(filter, "$or")
		appendAnd(filter, bson.M{"$or": ranged}, bson.M{"$or": existing})
	} else {
		filter["$or"] = ranged
	}
	return filter
}

// appendAnd adds clauses to the $and of filter, keeping existing clauses.
func appendAnd(filter bson.M, clauses ...any) {
	var and bson.A
	switch existing := filter["$and"].(type) {
	case bson.A:
		and = append(and, existing...)
	case []any:
		and = append(and, existing...)
	case []bson.M:
		for _, c := range existing {
			and = append(and, c)
		}
	case []bson.D:
		for _, c := range existing {
			and = append(and, c)
		}
	case nil:
	default:
		and = append(and, bson.M{"$and": existing})
	}
	filter["$and"] = append(and, clauses...)
}

// BuildSort returns the sort keys for a query in direction dir. The _id
// tie-break follows the same direction as field so that the order matches the
// range built by BuildFilter.
func BuildSort(field string, dir Direction) bson.D {
	if field == IDField {
		return bson.D{{Key: IDField, Value: int(dir)}}
	}
	return bson.D{
		{Key: field, Value: int(dir)},
		{Key: IDField, Value: int(dir)},
	}
}
