package mongo

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/sahelys/sahelys-backend/apperrors"
	"github.com/sahelys/sahelys-backend/models"
	"github.com/sahelys/sahelys-backend/policy"
	"github.com/sahelys/sahelys-backend/services/mongo/command"
	"github.com/sahelys/sahelys-backend/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type UserService struct {
	*MongoService
}

func NewUserService(mongoService *MongoService) *UserService {
	return &UserService{MongoService: mongoService}
}

type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     models.UserRole
	Status   models.UserStatus
}

type UpdateUserInput struct {
	Name   *string
	Role   *models.UserRole
	Status *models.UserStatus
}

func (s *UserService) validateCredentials(email, name, password string) error {
	if !emailPattern.MatchString(email) {
		return apperrors.Validationf("invalid email format")
	}
	if len(strings.TrimSpace(name)) < 2 {
		return apperrors.Validationf("name must be at least 2 characters")
	}
	if len(password) < 6 {
		return apperrors.Validationf("password must be at least 6 characters")
	}
	return nil
}

func (s *UserService) insertUser(ctx context.Context, user *models.User, password string) error {
	collection := s.GetCollection(CollectionUsers)

	// Emails are stored lowercase; uniqueness is case-insensitive.
	user.Email = strings.ToLower(user.Email)

	exists, err := query.Exists(ctx, collection, bson.M{"email": user.Email})
	if err != nil {
		return apperrors.Internalf("failed to check email uniqueness: %v", err)
	}
	if exists {
		return apperrors.Conflictf("a user with email %s already exists", user.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internalf("failed to hash password: %v", err)
	}
	user.HashedPassword = string(hashedPassword)

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := command.InsertOne(ctx, collection, user)
	if err != nil {
		// The unique index wins the race the existence check can lose.
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflictf("a user with email %s already exists", user.Email)
		}
		return apperrors.Internalf("failed to create user: %v", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return apperrors.Internalf("failed to get inserted user ID, expected ObjectID, got %T", res.InsertedID)
	}
	user.ID = oid
	log.Printf("UserService: Created user %s (%s)", user.ID.Hex(), user.Email)
	return nil
}

// Register is the public self-registration path: new accounts are always
// active employees.
func (s *UserService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	if err := s.validateCredentials(email, name, password); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:  email,
		Name:   strings.TrimSpace(name),
		Role:   models.UserRoleEmployee,
		Status: models.UserStatusActive,
	}
	if err := s.insertUser(ctx, user, password); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser is the admin path with a free choice of role and status.
func (s *UserService) CreateUser(ctx context.Context, actor *models.User, input CreateUserInput) (*models.User, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}
	if err := s.validateCredentials(input.Email, input.Name, input.Password); err != nil {
		return nil, err
	}
	if !input.Role.IsValid() {
		return nil, apperrors.Validationf("invalid role %q", input.Role)
	}
	if !input.Status.IsValid() {
		return nil, apperrors.Validationf("invalid status %q", input.Status)
	}

	user := &models.User{
		Email:  input.Email,
		Name:   strings.TrimSpace(input.Name),
		Role:   input.Role,
		Status: input.Status,
	}
	if err := s.insertUser(ctx, user, input.Password); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies email/password for login. Either failure mode
// surfaces the same way so probing accounts is not possible.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	collection := s.GetCollection(CollectionUsers)

	var user models.User
	err := query.FindOne(ctx, collection, bson.M{"email": strings.ToLower(email)}, &user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.Forbiddenf("invalid email or password")
		}
		return nil, apperrors.Internalf("failed to get user: %v", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, apperrors.Forbiddenf("invalid email or password")
	}
	if !user.IsActive() {
		return nil, apperrors.Forbiddenf("user account is inactive")
	}

	return &user, nil
}

// GetUserByID loads a user with no authorization applied. The auth
// middleware uses it to resolve token subjects to live records.
func (s *UserService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	collection := s.GetCollection(CollectionUsers)

	var user models.User
	err := query.FindByID(ctx, collection, id, &user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFoundf("user not found")
		}
		return nil, apperrors.Internalf("failed to get user: %v", err)
	}
	return &user, nil
}

func (s *UserService) GetUser(ctx context.Context, actor *models.User, id string) (*models.User, error) {
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return nil, apperrors.Validationf("invalid user id")
	}
	if err := policy.CanReadUser(actor, oid); err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, oid)
}

func (s *UserService) ListUsers(ctx context.Context, actor *models.User, role, status string, limit, skip int64) ([]*models.User, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}

	builder := query.NewBuilder()
	if role != "" {
		builder.Where("role", role)
	}
	if status != "" {
		builder.Where("status", status)
	}

	collection := s.GetCollection(CollectionUsers)
	var users []*models.User
	if err := query.FindWithPagination(ctx, collection, builder.Build(), &users, limit, skip); err != nil {
		return nil, apperrors.Internalf("failed to get users: %v", err)
	}
	return users, nil
}

// ListActiveEmployees returns every active employee, sorted by name. Used
// for message receiver pickers.
func (s *UserService) ListActiveEmployees(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}

	collection := s.GetCollection(CollectionUsers)
	filter := bson.M{"role": models.UserRoleEmployee, "status": models.UserStatusActive}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	var employees []*models.User
	if err := query.FindManyWithOptions(ctx, collection, filter, &employees, opts); err != nil {
		return nil, apperrors.Internalf("failed to get employees: %v", err)
	}
	return employees, nil
}

func (s *UserService) UpdateUser(ctx context.Context, actor *models.User, id string, input UpdateUserInput) (*models.User, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return nil, apperrors.Validationf("invalid user id")
	}

	if _, err := s.GetUserByID(ctx, oid); err != nil {
		return nil, err
	}

	update := command.NewUpdateBuilder()
	if input.Name != nil {
		if len(strings.TrimSpace(*input.Name)) < 2 {
			return nil, apperrors.Validationf("name must be at least 2 characters")
		}
		update.Set("name", strings.TrimSpace(*input.Name))
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, apperrors.Validationf("invalid role %q", *input.Role)
		}
		update.Set("role", *input.Role)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, apperrors.Validationf("invalid status %q", *input.Status)
		}
		update.Set("status", *input.Status)
	}
	update.CurrentDate("updated_at")

	collection := s.GetCollection(CollectionUsers)
	if _, err := command.UpdateByID(ctx, collection, oid, update.Build()); err != nil {
		return nil, apperrors.Internalf("failed to update user: %v", err)
	}

	return s.GetUserByID(ctx, oid)
}

// ChangePassword rehashes and stores a new password for the user.
func (s *UserService) ChangePassword(ctx context.Context, id primitive.ObjectID, newPassword string) error {
	if len(newPassword) < 6 {
		return apperrors.Validationf("password must be at least 6 characters")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internalf("failed to hash password: %v", err)
	}

	collection := s.GetCollection(CollectionUsers)
	update := command.NewUpdateBuilder().Set("hashed_password", string(hashedPassword)).CurrentDate("updated_at")
	if _, err := command.UpdateByID(ctx, collection, id, update.Build()); err != nil {
		return apperrors.Internalf("failed to update password: %v", err)
	}
	return nil
}

// DeleteUser removes the user and everything they own: their reports, the
// comments they authored, and every message they sent or received. The
// collections are independent, so ordering does not matter; the store offers
// no multi-collection transaction, so a crash mid-way can leave orphans.
func (s *UserService) DeleteUser(ctx context.Context, actor *models.User, id string) error {
	if err := policy.CanManageUsers(actor); err != nil {
		return err
	}
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return apperrors.Validationf("invalid user id")
	}
	if oid == actor.ID {
		return apperrors.Validationf("cannot delete your own account")
	}

	user, err := s.GetUserByID(ctx, oid)
	if err != nil {
		return err
	}

	if _, err := command.DeleteMany(ctx, s.GetCollection(CollectionReports), bson.M{"user_id": oid}); err != nil {
		return apperrors.Internalf("failed to delete user reports: %v", err)
	}
	if _, err := command.DeleteMany(ctx, s.GetCollection(CollectionComments), bson.M{"admin_id": oid}); err != nil {
		return apperrors.Internalf("failed to delete user comments: %v", err)
	}
	messageFilter := query.NewBuilder().WhereOr(bson.M{"sender_id": oid}, bson.M{"receiver_id": oid}).Build()
	if _, err := command.DeleteMany(ctx, s.GetCollection(CollectionMessages), messageFilter); err != nil {
		return apperrors.Internalf("failed to delete user messages: %v", err)
	}
	if _, err := command.DeleteByID(ctx, s.GetCollection(CollectionUsers), oid); err != nil {
		return apperrors.Internalf("failed to delete user: %v", err)
	}

	log.Printf("UserService: Deleted user %s (%s) with cascade", oid.Hex(), user.Email)
	return nil
}
