package mongo

import (
	"context"
	"log"
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
)

// CommentService manages admin feedback attached to reports.
type CommentService struct {
	*MongoService
	reports *ReportService
}

func NewCommentService(mongoService *MongoService, reports *ReportService) *CommentService {
	return &CommentService{MongoService: mongoService, reports: reports}
}

func (s *CommentService) collection() *mongo.Collection {
	return s.GetCollection(CollectionComments)
}

func adminLookup() bson.M {
	return bson.M{"$lookup": bson.M{
		"from":         CollectionUsers,
		"localField":   "admin_id",
		"foreignField": "_id",
		"as":           "admin_info",
	}}
}

type commentDoc struct {
	models.Comment `bson:",inline"`
	AdminInfo      []models.User `bson:"admin_info"`
}

func (d *commentDoc) toView() *models.CommentView {
	view := &models.CommentView{Comment: d.Comment}
	if len(d.AdminInfo) > 0 {
		view.AdminName = d.AdminInfo[0].Name
	} else {
		view.AdminName = "unknown"
	}
	return view
}

// Create attaches a comment to an existing report on behalf of an admin.
func (s *CommentService) Create(ctx context.Context, actor *models.User, reportID, content string) (*models.CommentView, error) {
	if err := policy.CanWriteComment(actor); err != nil {
		return nil, err
	}
	rid, err := ObjectIDFromString(reportID)
	if err != nil {
		return nil, apperrors.Validationf("invalid report id")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validationf("content is required")
	}

	// Dangling comments are never created; the report must exist first.
	if _, err := s.reports.GetReportOwner(ctx, rid); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := &models.Comment{
		ReportID:  rid,
		AdminID:   actor.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := command.InsertOne(ctx, s.collection(), comment)
	if err != nil {
		return nil, apperrors.Internalf("failed to create comment: %v", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperrors.Internalf("failed to get inserted comment ID, expected ObjectID, got %T", res.InsertedID)
	}
	comment.ID = oid

	log.Printf("CommentService: Created comment %s on report %s", oid.Hex(), rid.Hex())
	return &models.CommentView{Comment: *comment, AdminName: actor.Name}, nil
}

// GetByReport lists a report's comments oldest first. Employees may only
// read comments on their own reports.
func (s *CommentService) GetByReport(ctx context.Context, actor *models.User, reportID string) ([]*models.CommentView, error) {
	rid, err := ObjectIDFromString(reportID)
	if err != nil {
		return nil, apperrors.Validationf("invalid report id")
	}

	ownerID, err := s.reports.GetReportOwner(ctx, rid)
	if err != nil {
		return nil, err
	}
	if err := policy.CanReadComment(actor, ownerID); err != nil {
		return nil, err
	}

	pipeline := []bson.M{
		{"$match": bson.M{"report_id": rid}},
		adminLookup(),
		{"$sort": bson.M{"created_at": 1}},
	}

	var docs []commentDoc
	if err := query.Aggregate(ctx, s.collection(), pipeline, &docs); err != nil {
		return nil, apperrors.Internalf("failed to get comments: %v", err)
	}

	views := make([]*models.CommentView, 0, len(docs))
	for i := range docs {
		views = append(views, docs[i].toView())
	}
	return views, nil
}

// Get loads one comment, applying the target report's ownership rule.
func (s *CommentService) Get(ctx context.Context, actor *models.User, id string) (*models.CommentView, error) {
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return nil, apperrors.Validationf("invalid comment id")
	}

	pipeline := []bson.M{
		{"$match": bson.M{"_id": oid}},
		adminLookup(),
	}

	var docs []commentDoc
	if err := query.Aggregate(ctx, s.collection(), pipeline, &docs); err != nil {
		return nil, apperrors.Internalf("failed to get comment: %v", err)
	}
	if len(docs) == 0 {
		return nil, apperrors.NotFoundf("comment not found")
	}
	doc := docs[0]

	ownerID, err := s.reports.GetReportOwner(ctx, doc.ReportID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanReadComment(actor, ownerID); err != nil {
		return nil, err
	}
	return doc.toView(), nil
}

// Update edits a comment's content. The lookup is filtered on the acting
// admin's authorship, so another admin's comment reads as not-found.
func (s *CommentService) Update(ctx context.Context, actor *models.User, id, content string) (*models.CommentView, error) {
	if err := policy.CanWriteComment(actor); err != nil {
		return nil, err
	}
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return nil, apperrors.Validationf("invalid comment id")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validationf("content is required")
	}

	collection := s.collection()

	update := command.NewUpdateBuilder().
		Set("content", content).
		CurrentDate("updated_at")
	res, err := command.UpdateOne(ctx, collection, bson.M{"_id": oid, "admin_id": actor.ID}, update.Build())
	if err != nil {
		return nil, apperrors.Internalf("failed to update comment: %v", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.NotFoundf("comment not found")
	}

	var updated models.Comment
	if err := query.FindByID(ctx, collection, oid, &updated); err != nil {
		return nil, apperrors.Internalf("failed to reload comment: %v", err)
	}
	log.Printf("CommentService: Updated comment %s", oid.Hex())
	return &models.CommentView{Comment: updated, AdminName: actor.Name}, nil
}

// Delete removes a comment authored by the acting admin.
func (s *CommentService) Delete(ctx context.Context, actor *models.User, id string) error {
	if err := policy.CanWriteComment(actor); err != nil {
		return err
	}
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return apperrors.Validationf("invalid comment id")
	}

	res, err := command.DeleteOne(ctx, s.collection(), bson.M{"_id": oid, "admin_id": actor.ID})
	if err != nil {
		return apperrors.Internalf("failed to delete comment: %v", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFoundf("comment not found")
	}

	log.Printf("CommentService: Deleted comment %s", oid.Hex())
	return nil
}

// ListAll pages through every comment, optionally filtered by report.
func (s *CommentService) ListAll(ctx context.Context, actor *models.User, reportID string, limit, skip int64) ([]*models.CommentView, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	match := bson.M{}
	if reportID != "" {
		rid, err := ObjectIDFromString(reportID)
		if err != nil {
			return nil, apperrors.Validationf("invalid report id")
		}
		match["report_id"] = rid
	}

	pipeline := []bson.M{
		{"$match": match},
		adminLookup(),
		{"$sort": bson.M{"created_at": -1}},
		{"$skip": skip},
		{"$limit": limit},
	}

	var docs []commentDoc
	if err := query.Aggregate(ctx, s.collection(), pipeline, &docs); err != nil {
		return nil, apperrors.Internalf("failed to get comments: %v", err)
	}

	views := make([]*models.CommentView, 0, len(docs))
	for i := range docs {
		views = append(views, docs[i].toView())
	}
	return views, nil
}
