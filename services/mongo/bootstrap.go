package mongo

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/sahelys/sahelys-backend/apperrors"
	"github.com/sahelys/sahelys-backend/models"
	"github.com/sahelys/sahelys-backend/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// EnsureIndexes creates the collection indexes on startup. CreateMany is
// idempotent when the indexes already exist with the same definition.
func (s *MongoService) EnsureIndexes(ctx context.Context) error {
	users := s.GetCollection(CollectionUsers)
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return apperrors.Internalf("failed to create user indexes: %v", err)
	}

	// The week-slot uniqueness only applies to the weekly variant, so the
	// unique index is partial on week_iso existing. Simple reports would
	// otherwise collide on the missing field.
	reports := s.GetCollection(CollectionReports)
	_, err = reports.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "week_iso", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"week_iso": bson.M{"$exists": true}}),
		},
		{Keys: bson.D{{Key: "week_iso", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return apperrors.Internalf("failed to create report indexes: %v", err)
	}

	comments := s.GetCollection(CollectionComments)
	_, err = comments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "report_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "admin_id", Value: 1}}},
	})
	if err != nil {
		return apperrors.Internalf("failed to create comment indexes: %v", err)
	}

	messages := s.GetCollection(CollectionMessages)
	_, err = messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "read_status", Value: 1}}},
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return apperrors.Internalf("failed to create message indexes: %v", err)
	}

	log.Printf("MongoService: Ensured collection indexes")
	return nil
}

// EnsureAdminUser seeds the initial admin account if no user with the
// given email exists yet.
func (s *MongoService) EnsureAdminUser(ctx context.Context, email, name, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	users := s.GetCollection(CollectionUsers)

	exists, err := query.Exists(ctx, users, bson.M{"email": email})
	if err != nil {
		return apperrors.Internalf("failed to check admin user: %v", err)
	}
	if exists {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internalf("failed to hash admin password: %v", err)
	}

	now := time.Now().UTC()
	admin := &models.User{
		Email:          email,
		Name:           name,
		Role:           models.UserRoleAdmin,
		Status:         models.UserStatusActive,
		HashedPassword: string(hashedPassword),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := users.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return apperrors.Internalf("failed to seed admin user: %v", err)
	}

	log.Printf("MongoService: Seeded admin user %s", email)
	return nil
}
