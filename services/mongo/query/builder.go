package query

import (
	"go.mongodb.org/mongo-driver/bson"
)

type Builder struct {
	filter bson.M
}

func NewBuilder() *Builder {
	return &Builder{filter: bson.M{}}
}

func (b *Builder) Where(key string, value interface{}) *Builder {
	b.filter[key] = value
	return b
}

func (b *Builder) WhereIn(key string, values []interface{}) *Builder {
	b.filter[key] = bson.M{"$in": values}
	return b
}

func (b *Builder) WhereGTE(key string, value interface{}) *Builder {
	b.merge(key, "$gte", value)
	return b
}

func (b *Builder) WhereLTE(key string, value interface{}) *Builder {
	b.merge(key, "$lte", value)
	return b
}

func (b *Builder) WhereExists(key string) *Builder {
	b.filter[key] = bson.M{"$exists": true}
	return b
}

func (b *Builder) WhereOr(conditions ...bson.M) *Builder {
	b.filter["$or"] = conditions
	return b
}

// merge lets range bounds on the same key coexist, e.g. $gte and $lte on
// week_iso.
func (b *Builder) merge(key, op string, value interface{}) {
	if existing, ok := b.filter[key].(bson.M); ok {
		existing[op] = value
		return
	}
	b.filter[key] = bson.M{op: value}
}

func (b *Builder) Build() bson.M {
	return b.filter
}
