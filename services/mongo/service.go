package mongo

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names used across the services.
const (
	CollectionUsers    = "users"
	CollectionReports  = "reports"
	CollectionComments = "comments"
	CollectionMessages = "messages"
)

// MongoService wraps the injected database handle. Resource services embed
// it; nothing here is process-global.
type MongoService struct {
	db *mongo.Database
}

func New(db *mongo.Database) *MongoService {
	return &MongoService{db: db}
}

func (s *MongoService) GetDatabase() *mongo.Database {
	return s.db
}

func (s *MongoService) GetCollection(name string) *mongo.Collection {
	return s.db.Collection(name)
}
