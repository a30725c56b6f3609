// Package policy is the access decision layer: stateless functions mapping
// (actor, resource ownership) to allow or deny for each resource type and
// operation. A nil return means allow.
//
// Denials are deliberately split between two sentinels. Where the underlying
// lookup is owner-filtered (report read for employees, comment/message
// mutation by the author/sender), a miss is reported as not-found so callers
// learn nothing about resources outside their view. Where the resource is
// loaded without an owner filter first (comment read, message read), the
// explicit ownership check surfaces forbidden.
package policy

import (
	"github.com/sahelys/sahelys-backend/apperrors"
	"github.com/sahelys/sahelys-backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequireActive gates mutating surfaces on account status.
func RequireActive(actor *models.User) error {
	if !actor.IsActive() {
		return apperrors.Forbiddenf("user account is inactive")
	}
	return nil
}

// RequireAdmin allows admins only.
func RequireAdmin(actor *models.User) error {
	if !actor.IsAdmin() {
		return apperrors.Forbiddenf("admin rights required")
	}
	return nil
}

// RequireEmployee allows employees only.
func RequireEmployee(actor *models.User) error {
	if !actor.IsEmployee() {
		return apperrors.Forbiddenf("employee rights required")
	}
	return nil
}

// CanCreateWeeklyReport: only employees own week slots.
func CanCreateWeeklyReport(actor *models.User) error {
	return RequireEmployee(actor)
}

// CanReadReport: admins read any report; employees only their own. A
// non-owner employee gets not-found, never forbidden.
func CanReadReport(actor *models.User, ownerID primitive.ObjectID) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.ID == ownerID {
		return nil
	}
	return apperrors.NotFoundf("report not found")
}

// CanMutateReport: updates and deletes are owner-employee operations. The
// services pair this with an owner-filtered lookup, so a foreign id is a
// not-found before this check ever sees it.
func CanMutateReport(actor *models.User) error {
	return RequireEmployee(actor)
}

// CanWriteComment: create, update and delete are admin operations; update
// and delete additionally filter by the authoring admin in the store.
func CanWriteComment(actor *models.User) error {
	return RequireAdmin(actor)
}

// CanReadComment: admins read any comment; the owning employee of the
// comment's report reads it too. This path loads the comment unfiltered, so
// the denial is an explicit forbidden.
func CanReadComment(actor *models.User, reportOwnerID primitive.ObjectID) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.ID == reportOwnerID {
		return nil
	}
	return apperrors.Forbiddenf("not allowed to read this comment")
}

// CanSendMessage: single and broadcast sends are admin operations; receiver
// activity is checked by the service.
func CanSendMessage(actor *models.User) error {
	return RequireAdmin(actor)
}

// CanReadMessage: sender or receiver only; unfiltered load, explicit
// forbidden.
func CanReadMessage(actor *models.User, senderID, receiverID primitive.ObjectID) error {
	if actor.ID == senderID || actor.ID == receiverID {
		return nil
	}
	return apperrors.Forbiddenf("not allowed to read this message")
}

// CanMarkMessageRead: receiving employees only.
func CanMarkMessageRead(actor *models.User) error {
	return RequireEmployee(actor)
}

// CanDeleteMessage: sending admins only.
func CanDeleteMessage(actor *models.User) error {
	return RequireAdmin(actor)
}

// CanManageUsers: all user administration is admin-only.
func CanManageUsers(actor *models.User) error {
	return RequireAdmin(actor)
}

// CanReadUser: admins read anyone; everyone reads their own profile.
func CanReadUser(actor *models.User, targetID primitive.ObjectID) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.ID == targetID {
		return nil
	}
	return apperrors.Forbiddenf("not allowed to read this user")
}
