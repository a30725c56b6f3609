package command

import (
	"go.mongodb.org/mongo-driver/bson"
)

type UpdateBuilder struct {
	update bson.M
}

func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{update: bson.M{}}
}

func (u *UpdateBuilder) Set(key string, value interface{}) *UpdateBuilder {
	if u.update["$set"] == nil {
		u.update["$set"] = bson.M{}
	}
	u.update["$set"].(bson.M)[key] = value
	return u
}

func (u *UpdateBuilder) CurrentDate(key string) *UpdateBuilder {
	if u.update["$currentDate"] == nil {
		u.update["$currentDate"] = bson.M{}
	}
	u.update["$currentDate"].(bson.M)[key] = true
	return u
}

func (u *UpdateBuilder) Unset(key string) *UpdateBuilder {
	if u.update["$unset"] == nil {
		u.update["$unset"] = bson.M{}
	}
	u.update["$unset"].(bson.M)[key] = ""
	return u
}

func (u *UpdateBuilder) Build() bson.M {
	return u.update
}
