package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is an admin remark attached to one report. The report must exist
// when the comment is created; report deletion removes its comments.
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ReportID  primitive.ObjectID `json:"report_id" bson:"report_id"`
	AdminID   primitive.ObjectID `json:"admin_id" bson:"admin_id"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// CommentView joins the authoring admin's display name onto a comment.
type CommentView struct {
	Comment   `bson:",inline"`
	AdminName string `json:"admin_name" bson:"admin_name"`
}
