package mongo

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sahelys/sahelys-backend/apperrors"
	"github.com/sahelys/sahelys-backend/isoweek"
	"github.com/sahelys/sahelys-backend/models"
	"github.com/sahelys/sahelys-backend/policy"
	"github.com/sahelys/sahelys-backend/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatsService derives aggregate views over reports and messages.
type StatsService struct {
	*MongoService
}

func NewStatsService(mongoService *MongoService) *StatsService {
	return &StatsService{MongoService: mongoService}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GetWeeklyStats groups weekly reports by week, newest week first. The
// average divides by distinct reporting employees; a week with none
// averages to zero rather than dividing by it.
func (s *StatsService) GetWeeklyStats(ctx context.Context, actor *models.User, startWeek, endWeek string) ([]*models.WeeklyStats, error) {
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

	pipeline := []bson.M{
		{"$match": builder.Build()},
		{"$group": bson.M{
			"_id":           "$week_iso",
			"total_reports": bson.M{"$sum": 1},
			"total_hours":   bson.M{"$sum": "$total_hours"},
			"users":         bson.M{"$addToSet": "$user_id"},
		}},
		{"$project": bson.M{
			"week_iso":           "$_id",
			"total_reports":      1,
			"total_hours":        1,
			"employees_reported": bson.M{"$size": "$users"},
			"average_hours_per_employee": bson.M{"$cond": bson.M{
				"if":   bson.M{"$gt": []interface{}{bson.M{"$size": "$users"}, 0}},
				"then": bson.M{"$divide": []interface{}{"$total_hours", bson.M{"$size": "$users"}}},
				"else": 0,
			}},
		}},
		{"$sort": bson.M{"week_iso": -1}},
	}

	var rows []models.WeeklyStats
	if err := query.Aggregate(ctx, s.GetCollection(CollectionReports), pipeline, &rows); err != nil {
		return nil, apperrors.Internalf("failed to aggregate weekly stats: %v", err)
	}

	stats := make([]*models.WeeklyStats, 0, len(rows))
	for i := range rows {
		rows[i].TotalHours = round2(rows[i].TotalHours)
		rows[i].AverageHoursPerEmployee = round2(rows[i].AverageHoursPerEmployee)
		stats = append(stats, &rows[i])
	}
	return stats, nil
}

// GetDashboardStats assembles the landing-page counters plus a short
// recent-activity feed merged from messages and reports.
func (s *StatsService) GetDashboardStats(ctx context.Context, actor *models.User) (*models.DashboardStats, error) {
	messages := s.GetCollection(CollectionMessages)
	reports := s.GetCollection(CollectionReports)

	messageScope := bson.M{"receiver_id": actor.ID}
	reportScope := bson.M{}
	if actor.IsAdmin() {
		messageScope = bson.M{"sender_id": actor.ID}
	} else {
		reportScope["user_id"] = actor.ID
	}

	totalMessages, err := query.Count(ctx, messages, messageScope)
	if err != nil {
		return nil, apperrors.Internalf("failed to count messages: %v", err)
	}

	unreadFilter := bson.M{"read_status": false}
	for k, v := range messageScope {
		unreadFilter[k] = v
	}
	unreadMessages, err := query.Count(ctx, messages, unreadFilter)
	if err != nil {
		return nil, apperrors.Internalf("failed to count unread messages: %v", err)
	}

	totalReports, err := query.Count(ctx, reports, reportScope)
	if err != nil {
		return nil, apperrors.Internalf("failed to count reports: %v", err)
	}

	pendingFilter := bson.M{"status": models.StatusPending}
	for k, v := range reportScope {
		pendingFilter[k] = v
	}
	pendingReports, err := query.Count(ctx, reports, pendingFilter)
	if err != nil {
		return nil, apperrors.Internalf("failed to count pending reports: %v", err)
	}

	activity, err := s.recentActivity(ctx, messageScope, reportScope)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		TotalMessages:  int(totalMessages),
		UnreadMessages: int(unreadMessages),
		TotalReports:   int(totalReports),
		PendingReports: int(pendingReports),
		RecentActivity: activity,
	}, nil
}

type activityMessage struct {
	ID        primitive.ObjectID `bson:"_id"`
	Subject   string             `bson:"subject"`
	CreatedAt time.Time          `bson:"created_at"`
}

type activityReport struct {
	ID        primitive.ObjectID `bson:"_id"`
	WeekISO   string             `bson:"week_iso"`
	Title     string             `bson:"title"`
	CreatedAt time.Time          `bson:"created_at"`
}

// recentActivity merges the 3 latest messages with the 2 latest reports,
// re-sorted newest first and capped at 5.
func (s *StatsService) recentActivity(ctx context.Context, messageScope, reportScope bson.M) ([]models.ActivityItem, error) {
	var recentMessages []activityMessage
	err := query.FindWithPagination(ctx, s.GetCollection(CollectionMessages), messageScope, &recentMessages, 3, 0)
	if err != nil {
		return nil, apperrors.Internalf("failed to get recent messages: %v", err)
	}

	var recentReports []activityReport
	err = query.FindWithPagination(ctx, s.GetCollection(CollectionReports), reportScope, &recentReports, 2, 0)
	if err != nil {
		return nil, apperrors.Internalf("failed to get recent reports: %v", err)
	}

	activity := make([]models.ActivityItem, 0, len(recentMessages)+len(recentReports))
	for _, m := range recentMessages {
		description := "New message"
		if m.Subject != "" {
			description = fmt.Sprintf("Message: %s", m.Subject)
		}
		activity = append(activity, models.ActivityItem{
			ID:          m.ID.Hex(),
			Type:        "message",
			Description: description,
			Timestamp:   m.CreatedAt,
		})
	}
	for _, r := range recentReports {
		description := fmt.Sprintf("Report: %s", r.Title)
		if r.WeekISO != "" {
			description = fmt.Sprintf("Weekly report %s", r.WeekISO)
		}
		activity = append(activity, models.ActivityItem{
			ID:          r.ID.Hex(),
			Type:        "report",
			Description: description,
			Timestamp:   r.CreatedAt,
		})
	}

	sort.Slice(activity, func(i, j int) bool {
		return activity[i].Timestamp.After(activity[j].Timestamp)
	})
	if len(activity) > 5 {
		activity = activity[:5]
	}
	return activity, nil
}
