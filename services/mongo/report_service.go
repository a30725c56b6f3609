package mongo

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/sahelys/sahelys-backend/apperrors"
	"github.com/sahelys/sahelys-backend/isoweek"
	"github.com/sahelys/sahelys-backend/models"
	"github.com/sahelys/sahelys-backend/policy"
	"github.com/sahelys/sahelys-backend/services/mongo/command"
	"github.com/sahelys/sahelys-backend/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReportService struct {
	*MongoService
}

func NewReportService(mongoService *MongoService) *ReportService {
	return &ReportService{MongoService: mongoService}
}

func (s *ReportService) collection() *mongo.Collection {
	return s.GetCollection(CollectionReports)
}

type WeeklyReportInput struct {
	WeekISO      string
	Tasks        []models.TaskItem
	Difficulties string
	Remarks      string
}

type WeeklyReportUpdate struct {
	Tasks        []models.TaskItem
	Difficulties *string
	Remarks      *string
}

type SimpleReportInput struct {
	Title       string
	Description string
	Category    string
	Sections    []models.ReportSection
}

func validateTasks(tasks []models.TaskItem) error {
	if len(tasks) == 0 {
		return apperrors.Validationf("at least one task is required")
	}
	for _, task := range tasks {
		if strings.TrimSpace(task.Title) == "" {
			return apperrors.Validationf("task title is required")
		}
		if task.Hours < 0 {
			return apperrors.Validationf("task hours must not be negative")
		}
	}
	return nil
}

// CreateWeeklyReport inserts a week-slotted report for the acting employee.
// One report per (user, week): a taken slot is a conflict, and the partial
// unique index backstops the check under concurrent inserts.
func (s *ReportService) CreateWeeklyReport(ctx context.Context, actor *models.User, input WeeklyReportInput) (*models.ReportView, error) {
	if err := policy.RequireActive(actor); err != nil {
		return nil, err
	}
	if err := policy.CanCreateWeeklyReport(actor); err != nil {
		return nil, err
	}
	if !isoweek.Validate(input.WeekISO) {
		return nil, apperrors.Validationf("invalid week format, expected YYYY-Www")
	}
	if err := validateTasks(input.Tasks); err != nil {
		return nil, err
	}

	collection := s.collection()

	taken, err := query.Exists(ctx, collection, bson.M{"user_id": actor.ID, "week_iso": input.WeekISO})
	if err != nil {
		return nil, apperrors.Internalf("failed to check week slot: %v", err)
	}
	if taken {
		return nil, apperrors.Conflictf("a report already exists for week %s", input.WeekISO)
	}

	now := time.Now().UTC()
	report := &models.WeeklyReport{
		Kind:         models.ReportKindWeekly,
		UserID:       actor.ID,
		WeekISO:      input.WeekISO,
		Tasks:        input.Tasks,
		Difficulties: input.Difficulties,
		Remarks:      input.Remarks,
		Status:       models.StatusSubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	report.RecalculateTotalHours()

	res, err := command.InsertOne(ctx, collection, report)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflictf("a report already exists for week %s", input.WeekISO)
		}
		return nil, apperrors.Internalf("failed to create weekly report: %v", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperrors.Internalf("failed to get inserted report ID, expected ObjectID, got %T", res.InsertedID)
	}
	log.Printf("ReportService: Created weekly report %s for week %s", oid.Hex(), input.WeekISO)

	return s.weeklyReportView(ctx, oid)
}

// CreateSimpleReport inserts the free-form variant. Any active user may file
// one; it starts out pending and editable.
func (s *ReportService) CreateSimpleReport(ctx context.Context, actor *models.User, input SimpleReportInput) (*models.SimpleReport, error) {
	if err := policy.RequireActive(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.Validationf("title is required")
	}
	if len(input.Sections) == 0 {
		return nil, apperrors.Validationf("at least one section is required")
	}

	now := time.Now().UTC()
	report := &models.SimpleReport{
		Kind:        models.ReportKindSimple,
		UserID:      actor.ID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Sections:    input.Sections,
		Status:      models.StatusPending,
		CreatedBy:   actor.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := command.InsertOne(ctx, s.collection(), report)
	if err != nil {
		return nil, apperrors.Internalf("failed to create simple report: %v", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperrors.Internalf("failed to get inserted report ID, expected ObjectID, got %T", res.InsertedID)
	}
	report.ID = oid

	log.Printf("ReportService: Created simple report %s by %s", oid.Hex(), actor.Name)
	return report, nil
}

// UpdateSimpleReport replaces the editable fields of a pending simple
// report. The lookup is owner-filtered, so a foreign id is a not-found.
func (s *ReportService) UpdateSimpleReport(ctx context.Context, actor *models.User, id string, input SimpleReportInput) (*models.SimpleReport, error) {
	if err := policy.RequireActive(actor); err != nil {
		return nil, err
	}
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return nil, apperrors.Validationf("invalid report id")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.Validationf("title is required")
	}
	if len(input.Sections) == 0 {
		return nil, apperrors.Validationf("at least one section is required")
	}

	collection := s.collection()

	var existing models.SimpleReport
	err = query.FindOne(ctx, collection, simpleReportFilter(bson.M{"_id": oid, "user_id": actor.ID}), &existing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFoundf("report not found")
		}
		return nil, apperrors.Internalf("failed to get report: %v", err)
	}
	if existing.Status != models.StatusPending {
		return nil, apperrors.Forbiddenf("only pending reports can be modified")
	}

	update := command.NewUpdateBuilder().
		Set("title", input.Title).
		Set("description", input.Description).
		Set("category", input.Category).
		Set("sections", input.Sections).
		CurrentDate("updated_at")
	if _, err := command.UpdateByID(ctx, collection, oid, update.Build()); err != nil {
		return nil, apperrors.Internalf("failed to update simple report: %v", err)
	}

	var updated models.SimpleReport
	if err := query.FindByID(ctx, collection, oid, &updated); err != nil {
		return nil, apperrors.Internalf("failed to reload report: %v", err)
	}
	log.Printf("ReportService: Updated simple report %s", oid.Hex())
	return &updated, nil
}

// reportDoc is the raw decode shape spanning both report variants plus the
// joined lookups.
type reportDoc struct {
	ID           primitive.ObjectID     `bson:"_id"`
	Kind         models.ReportKind      `bson:"kind"`
	UserID       primitive.ObjectID     `bson:"user_id"`
	WeekISO      string                 `bson:"week_iso"`
	Tasks        []models.TaskItem      `bson:"tasks"`
	Difficulties string                 `bson:"difficulties"`
	Remarks      string                 `bson:"remarks"`
	TotalHours   float64                `bson:"total_hours"`
	Title        string                 `bson:"title"`
	Description  string                 `bson:"description"`
	Category     string                 `bson:"category"`
	Sections     []models.ReportSection `bson:"sections"`
	Status       models.ReportStatus    `bson:"status"`
	CreatedBy    string                 `bson:"created_by"`
	CreatedAt    time.Time              `bson:"created_at"`
	UpdatedAt    time.Time              `bson:"updated_at"`
	UserInfo     []models.User          `bson:"user_info"`
	Comments     []models.Comment       `bson:"comments"`
}

func (d *reportDoc) kind() models.ReportKind {
	if d.Kind != "" {
		return d.Kind
	}
	// Legacy documents predate the kind tag; the week slot discriminates.
	if d.WeekISO != "" {
		return models.ReportKindWeekly
	}
	return models.ReportKindSimple
}

// weeklyReportFilter narrows a filter to weekly documents, with the same
// legacy fallback as reportDoc.kind for documents that predate the kind tag.
func weeklyReportFilter(filter bson.M) bson.M {
	filter["$or"] = []bson.M{
		{"kind": models.ReportKindWeekly},
		{"kind": bson.M{"$exists": false}, "week_iso": bson.M{"$exists": true}},
	}
	return filter
}

func simpleReportFilter(filter bson.M) bson.M {
	filter["$or"] = []bson.M{
		{"kind": models.ReportKindSimple},
		{"kind": bson.M{"$exists": false}, "week_iso": bson.M{"$exists": false}},
	}
	return filter
}

func (d *reportDoc) userName() string {
	if len(d.UserInfo) > 0 {
		return d.UserInfo[0].Name
	}
	if d.CreatedBy != "" {
		return d.CreatedBy
	}
	return "unknown"
}

func (d *reportDoc) toWeeklyView() *models.ReportView {
	view := &models.ReportView{
		WeeklyReport: models.WeeklyReport{
			ID:           d.ID,
			Kind:         models.ReportKindWeekly,
			UserID:       d.UserID,
			WeekISO:      d.WeekISO,
			Tasks:        d.Tasks,
			Difficulties: d.Difficulties,
			Remarks:      d.Remarks,
			TotalHours:   d.TotalHours,
			Status:       d.Status,
			CreatedAt:    d.CreatedAt,
			UpdatedAt:    d.UpdatedAt,
		},
		UserName: d.userName(),
	}
	if len(d.UserInfo) > 0 {
		view.UserEmail = d.UserInfo[0].Email
	}
	return view
}

func (d *reportDoc) toSimple() *models.SimpleReport {
	return &models.SimpleReport{
		ID:          d.ID,
		Kind:        models.ReportKindSimple,
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Sections:    d.Sections,
		Status:      d.Status,
		CreatedBy:   d.userName(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func userLookup() bson.M {
	return bson.M{"$lookup": bson.M{
		"from":         CollectionUsers,
		"localField":   "user_id",
		"foreignField": "_id",
		"as":           "user_info",
	}}
}

// weeklyReportView re-reads one weekly report with its owner joined on.
func (s *ReportService) weeklyReportView(ctx context.Context, id primitive.ObjectID) (*models.ReportView, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"_id": id}},
		userLookup(),
	}

	var docs []reportDoc
	if err := query.Aggregate(ctx, s.collection(), pipeline, &docs); err != nil {
		return nil, apperrors.Internalf("failed to get weekly report: %v", err)
	}
	if len(docs) == 0 {
		return nil, apperrors.NotFoundf("report not found")
	}
	return docs[0].toWeeklyView(), nil
}

// GetReport loads one report of either variant. Admins see any report;
// employees only their own, and a foreign report reads as not-found.
func (s *ReportService) GetReport(ctx context.Context, actor *models.User, id string) (*models.Report, error) {
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return nil, apperrors.Validationf("invalid report id")
	}

	pipeline := []bson.M{
		{"$match": bson.M{"_id": oid}},
		userLookup(),
	}

	var docs []reportDoc
	if err := query.Aggregate(ctx, s.collection(), pipeline, &docs); err != nil {
		return nil, apperrors.Internalf("failed to get report: %v", err)
	}
	if len(docs) == 0 {
		return nil, apperrors.NotFoundf("report not found")
	}
	doc := docs[0]

	if err := policy.CanReadReport(actor, doc.UserID); err != nil {
		return nil, err
	}

	if doc.kind() == models.ReportKindWeekly {
		return &models.Report{Kind: models.ReportKindWeekly, Weekly: doc.toWeeklyView()}, nil
	}
	return &models.Report{Kind: models.ReportKindSimple, Simple: doc.toSimple()}, nil
}

type ReportFilter struct {
	WeekISO string
	UserID  string
}

// ListReports returns summaries of both variants, newest first. Employees
// are always scoped to their own reports.
func (s *ReportService) ListReports(ctx context.Context, actor *models.User, filter ReportFilter, limit, skip int64) ([]models.ReportListItem, error) {
	builder := query.NewBuilder()

	if filter.UserID != "" {
		uid, err := ObjectIDFromString(filter.UserID)
		if err != nil {
			return nil, apperrors.Validationf("invalid user id")
		}
		builder.Where("user_id", uid)
	}
	if filter.WeekISO != "" {
		if !isoweek.Validate(filter.WeekISO) {
			return nil, apperrors.Validationf("invalid week format")
		}
		builder.Where("week_iso", filter.WeekISO)
	}
	if actor.IsEmployee() {
		builder.Where("user_id", actor.ID)
	}

	pipeline := []bson.M{
		{"$match": builder.Build()},
		userLookup(),
		{"$lookup": bson.M{
			"from":         CollectionComments,
			"localField":   "_id",
			"foreignField": "report_id",
			"as":           "comments",
		}},
		{"$sort": bson.M{"created_at": -1}},
		{"$skip": skip},
		{"$limit": limit},
	}

	var docs []reportDoc
	if err := query.Aggregate(ctx, s.collection(), pipeline, &docs); err != nil {
		return nil, apperrors.Internalf("failed to get reports: %v", err)
	}

	items := make([]models.ReportListItem, 0, len(docs))
	for _, doc := range docs {
		if doc.kind() == models.ReportKindWeekly {
			items = append(items, models.ReportListItem{
				Kind: models.ReportKindWeekly,
				Weekly: &models.ReportSummary{
					ID:          doc.ID.Hex(),
					WeekISO:     doc.WeekISO,
					UserName:    doc.userName(),
					TotalHours:  doc.TotalHours,
					TasksCount:  len(doc.Tasks),
					HasComments: len(doc.Comments) > 0,
					CreatedAt:   doc.CreatedAt,
				},
			})
		} else {
			items = append(items, models.ReportListItem{
				Kind:   models.ReportKindSimple,
				Simple: doc.toSimple(),
			})
		}
	}
	return items, nil
}

// ListReportViews returns fully denormalized weekly reports for exports,
// optionally bounded by an inclusive week range and an owner.
func (s *ReportService) ListReportViews(ctx context.Context, actor *models.User, startWeek, endWeek, userID string) ([]*models.ReportView, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	builder := query.NewBuilder().WhereExists("week_iso")
	if startWeek != "" {
		if !isoweek.Validate(startWeek) {
			return nil, apperrors.Validationf("invalid week format")
		}
		builder.WhereGTE("week_iso", startWeek)
	}
	if endWeek != "" {
		if !isoweek.Validate(endWeek) {
			return nil, apperrors.Validationf("invalid week format")
		}
		builder.WhereLTE("week_iso", endWeek)
	}
	if userID != "" {
		uid, err := ObjectIDFromString(userID)
		if err != nil {
			return nil, apperrors.Validationf("invalid user id")
		}
		builder.Where("user_id", uid)
	}

	pipeline := []bson.M{
		{"$match": builder.Build()},
		userLookup(),
		{"$sort": bson.M{"week_iso": -1, "created_at": -1}},
	}

	var docs []reportDoc
	if err := query.Aggregate(ctx, s.collection(), pipeline, &docs); err != nil {
		return nil, apperrors.Internalf("failed to get reports: %v", err)
	}

	views := make([]*models.ReportView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, doc.toWeeklyView())
	}
	return views, nil
}

// UpdateWeeklyReport mutates an owned weekly report. A replacement task list
// recomputes total_hours from scratch; it never merges with stored tasks.
func (s *ReportService) UpdateWeeklyReport(ctx context.Context, actor *models.User, id string, input WeeklyReportUpdate) (*models.ReportView, error) {
	if err := policy.CanMutateReport(actor); err != nil {
		return nil, err
	}
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return nil, apperrors.Validationf("invalid report id")
	}

	collection := s.collection()

	// The filter pins the variant: a simple report id is a not-found here,
	// never a weekly document with injected tasks.
	var existing models.WeeklyReport
	err = query.FindOne(ctx, collection, weeklyReportFilter(bson.M{"_id": oid, "user_id": actor.ID}), &existing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFoundf("report not found")
		}
		return nil, apperrors.Internalf("failed to get report: %v", err)
	}

	update := command.NewUpdateBuilder()
	if input.Tasks != nil {
		if err := validateTasks(input.Tasks); err != nil {
			return nil, err
		}
		replacement := models.WeeklyReport{Tasks: input.Tasks}
		replacement.RecalculateTotalHours()
		update.Set("tasks", input.Tasks)
		update.Set("total_hours", replacement.TotalHours)
	}
	if input.Difficulties != nil {
		update.Set("difficulties", *input.Difficulties)
	}
	if input.Remarks != nil {
		update.Set("remarks", *input.Remarks)
	}
	update.CurrentDate("updated_at")

	if _, err := command.UpdateByID(ctx, collection, oid, update.Build()); err != nil {
		return nil, apperrors.Internalf("failed to update weekly report: %v", err)
	}

	log.Printf("ReportService: Updated weekly report %s", oid.Hex())
	return s.weeklyReportView(ctx, oid)
}

// DeleteReport removes an owned report and its comments.
func (s *ReportService) DeleteReport(ctx context.Context, actor *models.User, id string) error {
	if err := policy.CanMutateReport(actor); err != nil {
		return err
	}
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return apperrors.Validationf("invalid report id")
	}

	collection := s.collection()

	exists, err := query.Exists(ctx, collection, bson.M{"_id": oid, "user_id": actor.ID})
	if err != nil {
		return apperrors.Internalf("failed to get report: %v", err)
	}
	if !exists {
		return apperrors.NotFoundf("report not found")
	}

	if _, err := command.DeleteMany(ctx, s.GetCollection(CollectionComments), bson.M{"report_id": oid}); err != nil {
		return apperrors.Internalf("failed to delete report comments: %v", err)
	}
	if _, err := command.DeleteByID(ctx, collection, oid); err != nil {
		return apperrors.Internalf("failed to delete report: %v", err)
	}

	log.Printf("ReportService: Deleted report %s", oid.Hex())
	return nil
}

// GetReportOwner resolves a report id to its owning user, with no
// authorization. Comment reads use it to apply the ownership rule.
func (s *ReportService) GetReportOwner(ctx context.Context, id primitive.ObjectID) (primitive.ObjectID, error) {
	var doc struct {
		UserID primitive.ObjectID `bson:"user_id"`
	}
	err := query.FindByID(ctx, s.collection(), id, &doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return primitive.NilObjectID, apperrors.NotFoundf("report not found")
		}
		return primitive.NilObjectID, apperrors.Internalf("failed to get report: %v", err)
	}
	return doc.UserID, nil
}
