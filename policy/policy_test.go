package policy

import (
	"testing"

	"github.com/sahelys/sahelys-backend/apperrors"
	"github.com/sahelys/sahelys-backend/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func employee() *models.User {
	return &models.User{
		ID:     primitive.NewObjectID(),
		Role:   models.UserRoleEmployee,
		Status: models.UserStatusActive,
	}
}

func admin() *models.User {
	return &models.User{
		ID:     primitive.NewObjectID(),
		Role:   models.UserRoleAdmin,
		Status: models.UserStatusActive,
	}
}

func TestRequireActive(t *testing.T) {
	assert.NoError(t, RequireActive(employee()))

	inactive := employee()
	inactive.Status = models.UserStatusInactive
	assert.ErrorIs(t, RequireActive(inactive), apperrors.ErrForbidden)
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(admin()))
	assert.ErrorIs(t, RequireAdmin(employee()), apperrors.ErrForbidden)
}

func TestCanCreateWeeklyReport(t *testing.T) {
	assert.NoError(t, CanCreateWeeklyReport(employee()))
	assert.ErrorIs(t, CanCreateWeeklyReport(admin()), apperrors.ErrForbidden)
}

func TestCanReadReport(t *testing.T) {
	owner := employee()
	other := employee()

	assert.NoError(t, CanReadReport(admin(), owner.ID))
	assert.NoError(t, CanReadReport(owner, owner.ID))

	// A foreign report reads as missing, not as denied.
	err := CanReadReport(other, owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NotErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCanReadComment(t *testing.T) {
	owner := employee()
	other := employee()

	assert.NoError(t, CanReadComment(admin(), owner.ID))
	assert.NoError(t, CanReadComment(owner, owner.ID))

	// Unlike reports, comments are loaded unfiltered, so the denial is
	// explicit.
	err := CanReadComment(other, owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCanReadMessage(t *testing.T) {
	sender := admin()
	receiver := employee()
	bystander := employee()

	assert.NoError(t, CanReadMessage(sender, sender.ID, receiver.ID))
	assert.NoError(t, CanReadMessage(receiver, sender.ID, receiver.ID))
	assert.ErrorIs(t, CanReadMessage(bystander, sender.ID, receiver.ID), apperrors.ErrForbidden)
}

func TestMessageRoles(t *testing.T) {
	assert.NoError(t, CanSendMessage(admin()))
	assert.ErrorIs(t, CanSendMessage(employee()), apperrors.ErrForbidden)

	assert.NoError(t, CanMarkMessageRead(employee()))
	assert.ErrorIs(t, CanMarkMessageRead(admin()), apperrors.ErrForbidden)

	assert.NoError(t, CanDeleteMessage(admin()))
	assert.ErrorIs(t, CanDeleteMessage(employee()), apperrors.ErrForbidden)
}

func TestCanReadUser(t *testing.T) {
	self := employee()
	other := employee()

	assert.NoError(t, CanReadUser(admin(), other.ID))
	assert.NoError(t, CanReadUser(self, self.ID))
	assert.ErrorIs(t, CanReadUser(self, other.ID), apperrors.ErrForbidden)
}
