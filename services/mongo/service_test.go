package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/sahelys/sahelys-backend/apperrors"
	"github.com/sahelys/sahelys-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setupTestService connects to the database named by MONGO_TEST_URI and
// hands back a fresh, throwaway database. Tests are skipped when the
// variable is unset.
func setupTestService(t *testing.T) (*MongoService, func()) {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	dbName := fmt.Sprintf("sahelys_test_%d", time.Now().UnixNano())
	svc := New(client.Database(dbName))
	require.NoError(t, svc.EnsureIndexes(ctx))

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database(dbName).Drop(ctx)
		_ = client.Disconnect(ctx)
	}
	return svc, cleanup
}

func createTestEmployee(t *testing.T, svc *MongoService, email string) *models.User {
	t.Helper()
	users := NewUserService(svc)
	user, err := users.Register(context.Background(), email, "Test Employee", "password123")
	require.NoError(t, err)
	return user
}

func createTestAdmin(t *testing.T, svc *MongoService, email string) *models.User {
	t.Helper()
	require.NoError(t, svc.EnsureAdminUser(context.Background(), email, "Test Admin", "password123"))
	users := NewUserService(svc)
	admin, err := users.Authenticate(context.Background(), email, "password123")
	require.NoError(t, err)
	return admin
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	users := NewUserService(svc)

	user, err := users.Register(ctx, "Awa@Sahelys.BF", "Awa Traore", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "awa@sahelys.bf", user.Email)
	assert.Equal(t, models.UserRoleEmployee, user.Role)
	assert.NotEmpty(t, user.HashedPassword)

	_, err = users.Register(ctx, "awa@sahelys.bf", "Awa Again", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	authed, err := users.Authenticate(ctx, "awa@sahelys.bf", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = users.Authenticate(ctx, "awa@sahelys.bf", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestWeeklyReportWeekSlotConflict(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	reports := NewReportService(svc)
	employee := createTestEmployee(t, svc, "slot@sahelys.bf")

	input := WeeklyReportInput{
		WeekISO: "2025-W35",
		Tasks:   []models.TaskItem{{Title: "terrain", Hours: 8}},
	}

	first, err := reports.CreateWeeklyReport(ctx, employee, input)
	require.NoError(t, err)
	assert.Equal(t, 8.0, first.TotalHours)
	assert.Equal(t, models.StatusSubmitted, first.Status)

	_, err = reports.CreateWeeklyReport(ctx, employee, input)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Another employee fills the same week without conflict.
	other := createTestEmployee(t, svc, "other@sahelys.bf")
	_, err = reports.CreateWeeklyReport(ctx, other, input)
	assert.NoError(t, err)
}

func TestWeeklyReportTotalHoursDerived(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	reports := NewReportService(svc)
	employee := createTestEmployee(t, svc, "hours@sahelys.bf")

	created, err := reports.CreateWeeklyReport(ctx, employee, WeeklyReportInput{
		WeekISO: "2025-W30",
		Tasks: []models.TaskItem{
			{Title: "a", Hours: 2.5},
			{Title: "b", Hours: 5},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 7.5, created.TotalHours, 1e-9)

	updated, err := reports.UpdateWeeklyReport(ctx, employee, created.ID.Hex(), WeeklyReportUpdate{
		Tasks: []models.TaskItem{{Title: "c", Hours: 1}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, updated.TotalHours, 1e-9)
	assert.Len(t, updated.Tasks, 1)
}

func TestReportOwnershipConflation(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	reports := NewReportService(svc)
	owner := createTestEmployee(t, svc, "owner@sahelys.bf")
	intruder := createTestEmployee(t, svc, "intruder@sahelys.bf")
	admin := createTestAdmin(t, svc, "chief@sahelys.bf")

	created, err := reports.CreateWeeklyReport(ctx, owner, WeeklyReportInput{
		WeekISO: "2025-W31",
		Tasks:   []models.TaskItem{{Title: "t", Hours: 3}},
	})
	require.NoError(t, err)
	id := created.ID.Hex()

	_, err = reports.GetReport(ctx, owner, id)
	assert.NoError(t, err)
	_, err = reports.GetReport(ctx, admin, id)
	assert.NoError(t, err)

	// A foreign report reads as missing.
	_, err = reports.GetReport(ctx, intruder, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = reports.DeleteReport(ctx, intruder, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSimpleReportPendingGate(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	reports := NewReportService(svc)
	employee := createTestEmployee(t, svc, "simple@sahelys.bf")

	created, err := reports.CreateSimpleReport(ctx, employee, SimpleReportInput{
		Title:    "incident reseau",
		Sections: []models.ReportSection{{Title: "constat", Description: "coupure de 2h"}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, employee.Name, created.CreatedBy)

	updated, err := reports.UpdateSimpleReport(ctx, employee, created.ID.Hex(), SimpleReportInput{
		Title:    "incident reseau majeur",
		Sections: created.Sections,
	})
	require.NoError(t, err)
	assert.Equal(t, "incident reseau majeur", updated.Title)
}

func TestUpdateRejectsCrossVariantID(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	reports := NewReportService(svc)
	employee := createTestEmployee(t, svc, "variants@sahelys.bf")

	simple, err := reports.CreateSimpleReport(ctx, employee, SimpleReportInput{
		Title:    "panne serveur",
		Sections: []models.ReportSection{{Title: "constat", Description: "disque plein"}},
	})
	require.NoError(t, err)
	weekly, err := reports.CreateWeeklyReport(ctx, employee, WeeklyReportInput{
		WeekISO: "2025-W33",
		Tasks:   []models.TaskItem{{Title: "t", Hours: 4}},
	})
	require.NoError(t, err)

	// A weekly update aimed at a simple report id must not inject tasks
	// into the simple document.
	_, err = reports.UpdateWeeklyReport(ctx, employee, simple.ID.Hex(), WeeklyReportUpdate{
		Tasks: []models.TaskItem{{Title: "intrus", Hours: 2}},
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = reports.UpdateSimpleReport(ctx, employee, weekly.ID.Hex(), SimpleReportInput{
		Title:    "intrus",
		Sections: simple.Sections,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Both documents are untouched.
	report, err := reports.GetReport(ctx, employee, simple.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, report.Simple)
	assert.Equal(t, "constat", report.Simple.Sections[0].Title)
	assert.Equal(t, "panne serveur", report.Simple.Title)

	report, err = reports.GetReport(ctx, employee, weekly.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, report.Weekly)
	assert.Equal(t, 4.0, report.Weekly.TotalHours)
}

func TestDeleteReportCascadesComments(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	reports := NewReportService(svc)
	comments := NewCommentService(svc, reports)
	employee := createTestEmployee(t, svc, "cascade@sahelys.bf")
	admin := createTestAdmin(t, svc, "cascade-admin@sahelys.bf")

	created, err := reports.CreateWeeklyReport(ctx, employee, WeeklyReportInput{
		WeekISO: "2025-W32",
		Tasks:   []models.TaskItem{{Title: "t", Hours: 1}},
	})
	require.NoError(t, err)

	comment, err := comments.Create(ctx, admin, created.ID.Hex(), "bien recu")
	require.NoError(t, err)

	require.NoError(t, reports.DeleteReport(ctx, employee, created.ID.Hex()))

	_, err = comments.Get(ctx, admin, comment.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCommentAuthorship(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	reports := NewReportService(svc)
	comments := NewCommentService(svc, reports)
	employee := createTestEmployee(t, svc, "commented@sahelys.bf")
	author := createTestAdmin(t, svc, "author@sahelys.bf")
	other := createTestAdmin(t, svc, "other-admin@sahelys.bf")

	report, err := reports.CreateWeeklyReport(ctx, employee, WeeklyReportInput{
		WeekISO: "2025-W33",
		Tasks:   []models.TaskItem{{Title: "t", Hours: 1}},
	})
	require.NoError(t, err)

	comment, err := comments.Create(ctx, author, report.ID.Hex(), "premier retour")
	require.NoError(t, err)

	// Another admin neither edits nor deletes someone else's comment.
	_, err = comments.Update(ctx, other, comment.ID.Hex(), "detourne")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	err = comments.Delete(ctx, other, comment.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	updated, err := comments.Update(ctx, author, comment.ID.Hex(), "retour corrige")
	require.NoError(t, err)
	assert.Equal(t, "retour corrige", updated.Content)

	// The report owner reads comments on their report; a comment on a
	// foreign report stays out of reach.
	list, err := comments.GetByReport(ctx, employee, report.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBroadcastAllOrNothing(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	messages := NewMessageService(svc)
	admin := createTestAdmin(t, svc, "sender@sahelys.bf")
	alice := createTestEmployee(t, svc, "alice@sahelys.bf")
	bob := createTestEmployee(t, svc, "bob@sahelys.bf")

	// One unknown receiver fails the whole batch.
	_, err := messages.Broadcast(ctx, admin, []string{
		alice.ID.Hex(),
		"ffffffffffffffffffffffff",
	}, "note", "reunion lundi")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	inbox, err := messages.Inbox(ctx, alice, false, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, inbox)

	sent, err := messages.Broadcast(ctx, admin, []string{alice.ID.Hex(), bob.ID.Hex()}, "note", "reunion lundi")
	require.NoError(t, err)
	assert.Len(t, sent, 2)

	inbox, err = messages.Inbox(ctx, alice, false, 10, 0)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}

func TestMarkReadIdempotent(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	messages := NewMessageService(svc)
	admin := createTestAdmin(t, svc, "mr-admin@sahelys.bf")
	employee := createTestEmployee(t, svc, "reader@sahelys.bf")

	sent, err := messages.Send(ctx, admin, employee.ID.Hex(), "objet", "contenu du message")
	require.NoError(t, err)
	assert.False(t, sent.ReadStatus)

	first, err := messages.MarkRead(ctx, employee, sent.ID.Hex())
	require.NoError(t, err)
	require.True(t, first.ReadStatus)
	require.NotNil(t, first.ReadAt)

	time.Sleep(10 * time.Millisecond)

	second, err := messages.MarkRead(ctx, employee, sent.ID.Hex())
	require.NoError(t, err)
	assert.True(t, second.ReadStatus)
	require.NotNil(t, second.ReadAt)
	assert.Equal(t, first.ReadAt.UnixMilli(), second.ReadAt.UnixMilli())
}

func TestGetMessageMarksRead(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	messages := NewMessageService(svc)
	admin := createTestAdmin(t, svc, "gm-admin@sahelys.bf")
	employee := createTestEmployee(t, svc, "gm-reader@sahelys.bf")

	sent, err := messages.Send(ctx, admin, employee.ID.Hex(), "", "a lire")
	require.NoError(t, err)

	// The sender opening it does not flip the flag.
	viewed, err := messages.Get(ctx, admin, sent.ID.Hex())
	require.NoError(t, err)
	assert.False(t, viewed.ReadStatus)

	viewed, err = messages.Get(ctx, employee, sent.ID.Hex())
	require.NoError(t, err)
	assert.True(t, viewed.ReadStatus)
	assert.NotNil(t, viewed.ReadAt)
}

func TestDeleteUserCascades(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	users := NewUserService(svc)
	reports := NewReportService(svc)
	messages := NewMessageService(svc)
	admin := createTestAdmin(t, svc, "du-admin@sahelys.bf")
	employee := createTestEmployee(t, svc, "leaving@sahelys.bf")

	_, err := reports.CreateWeeklyReport(ctx, employee, WeeklyReportInput{
		WeekISO: "2025-W34",
		Tasks:   []models.TaskItem{{Title: "t", Hours: 1}},
	})
	require.NoError(t, err)
	_, err = messages.Send(ctx, admin, employee.ID.Hex(), "", "au revoir")
	require.NoError(t, err)

	// No self-deletion.
	err = users.DeleteUser(ctx, admin, admin.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, users.DeleteUser(ctx, admin, employee.ID.Hex()))

	_, err = users.GetUserByID(ctx, employee.ID)
	assert.Error(t, err)

	items, err := reports.ListReports(ctx, admin, ReportFilter{UserID: employee.ID.Hex()}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWeeklyStats(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	reports := NewReportService(svc)
	stats := NewStatsService(svc)
	admin := createTestAdmin(t, svc, "stats-admin@sahelys.bf")
	alice := createTestEmployee(t, svc, "stats-alice@sahelys.bf")
	bob := createTestEmployee(t, svc, "stats-bob@sahelys.bf")

	_, err := reports.CreateWeeklyReport(ctx, alice, WeeklyReportInput{
		WeekISO: "2025-W20",
		Tasks:   []models.TaskItem{{Title: "t", Hours: 10}},
	})
	require.NoError(t, err)
	_, err = reports.CreateWeeklyReport(ctx, bob, WeeklyReportInput{
		WeekISO: "2025-W20",
		Tasks:   []models.TaskItem{{Title: "t", Hours: 20}},
	})
	require.NoError(t, err)
	_, err = reports.CreateWeeklyReport(ctx, alice, WeeklyReportInput{
		WeekISO: "2025-W21",
		Tasks:   []models.TaskItem{{Title: "t", Hours: 7}},
	})
	require.NoError(t, err)

	rows, err := stats.GetWeeklyStats(ctx, admin, "", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest week first.
	assert.Equal(t, "2025-W21", rows[0].WeekISO)
	assert.Equal(t, "2025-W20", rows[1].WeekISO)

	w20 := rows[1]
	assert.Equal(t, 2, w20.TotalReports)
	assert.Equal(t, 2, w20.EmployeesReported)
	assert.InDelta(t, 30, w20.TotalHours, 1e-9)
	assert.InDelta(t, 15, w20.AverageHoursPerEmployee, 1e-9)

	// Range bounds are inclusive.
	rows, err = stats.GetWeeklyStats(ctx, admin, "2025-W21", "2025-W21")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-W21", rows[0].WeekISO)
}

func TestWeeklyStatsEmpty(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	admin := createTestAdmin(t, svc, "empty-admin@sahelys.bf")

	rows, err := NewStatsService(svc).GetWeeklyStats(context.Background(), admin, "", "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDashboardStats(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()
	reports := NewReportService(svc)
	messages := NewMessageService(svc)
	stats := NewStatsService(svc)
	admin := createTestAdmin(t, svc, "dash-admin@sahelys.bf")
	employee := createTestEmployee(t, svc, "dash@sahelys.bf")

	_, err := reports.CreateWeeklyReport(ctx, employee, WeeklyReportInput{
		WeekISO: "2025-W22",
		Tasks:   []models.TaskItem{{Title: "t", Hours: 2}},
	})
	require.NoError(t, err)
	_, err = messages.Send(ctx, admin, employee.ID.Hex(), "info", "bonjour")
	require.NoError(t, err)

	dashboard, err := stats.GetDashboardStats(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.TotalMessages)
	assert.Equal(t, 1, dashboard.UnreadMessages)
	assert.Equal(t, 1, dashboard.TotalReports)
	assert.NotEmpty(t, dashboard.RecentActivity)
	assert.LessOrEqual(t, len(dashboard.RecentActivity), 5)
}
