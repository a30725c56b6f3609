package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportKind string

const (
	ReportKindWeekly ReportKind = "weekly"
	ReportKindSimple ReportKind = "simple"
)

type ReportStatus string

const (
	StatusPending   ReportStatus = "pending"
	StatusSubmitted ReportStatus = "submitted"
)

// TaskItem is one line of a weekly report.
type TaskItem struct {
	Title   string  `json:"title" bson:"title"`
	Hours   float64 `json:"hours" bson:"hours"`
	Notes   string  `json:"notes,omitempty" bson:"notes,omitempty"`
	Project string  `json:"project,omitempty" bson:"project,omitempty"`
}

// WeeklyReport is the week-slotted report variant. One per (user, week),
// enforced by a partial unique index on documents that carry week_iso.
type WeeklyReport struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Kind         ReportKind         `json:"kind" bson:"kind"`
	UserID       primitive.ObjectID `json:"user_id" bson:"user_id"`
	WeekISO      string             `json:"week_iso" bson:"week_iso"`
	Tasks        []TaskItem         `json:"tasks" bson:"tasks"`
	Difficulties string             `json:"difficulties,omitempty" bson:"difficulties,omitempty"`
	Remarks      string             `json:"remarks,omitempty" bson:"remarks,omitempty"`
	TotalHours   float64            `json:"total_hours" bson:"total_hours"`
	Status       ReportStatus       `json:"status" bson:"status"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// RecalculateTotalHours derives total_hours from the current task list.
// total_hours is never settable on its own.
func (r *WeeklyReport) RecalculateTotalHours() {
	var total float64
	for _, task := range r.Tasks {
		total += task.Hours
	}
	r.TotalHours = total
}

type ReportSection struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
}

// SimpleReport is the free-form report variant. It has no week slot and is
// exempt from the weekly uniqueness invariant. Only pending simple reports
// stay editable by their owner.
type SimpleReport struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Kind        ReportKind         `json:"kind" bson:"kind"`
	UserID      primitive.ObjectID `json:"user_id" bson:"user_id"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Category    string             `json:"category" bson:"category"`
	Sections    []ReportSection    `json:"sections" bson:"sections"`
	Status      ReportStatus       `json:"status" bson:"status"`
	CreatedBy   string             `json:"created_by" bson:"created_by"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// ReportView is the denormalized read shape for a weekly report, with the
// owner's display name joined on.
type ReportView struct {
	WeeklyReport `bson:",inline"`
	UserName     string `json:"user_name" bson:"user_name"`
	UserEmail    string `json:"user_email,omitempty" bson:"user_email,omitempty"`
}

// ReportSummary is the weekly-report list shape.
type ReportSummary struct {
	ID          string    `json:"id"`
	WeekISO     string    `json:"week_iso"`
	UserName    string    `json:"user_name"`
	TotalHours  float64   `json:"total_hours"`
	TasksCount  int       `json:"tasks_count"`
	HasComments bool      `json:"has_comments"`
	CreatedAt   time.Time `json:"created_at"`
}

// Report is the tagged variant returned by single-report reads: exactly one
// of Weekly or Simple is set, matching Kind.
type Report struct {
	Kind   ReportKind    `json:"kind"`
	Weekly *ReportView   `json:"-"`
	Simple *SimpleReport `json:"-"`
}

// MarshalJSON flattens the union: the response body is the variant itself,
// which carries its own kind field.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.Kind == ReportKindWeekly {
		return json.Marshal(r.Weekly)
	}
	return json.Marshal(r.Simple)
}

// ReportListItem is the tagged variant for list rows.
type ReportListItem struct {
	Kind   ReportKind     `json:"kind"`
	Weekly *ReportSummary `json:"-"`
	Simple *SimpleReport  `json:"-"`
}

func (i ReportListItem) MarshalJSON() ([]byte, error) {
	if i.Kind == ReportKindWeekly {
		return json.Marshal(struct {
			Kind ReportKind `json:"kind"`
			*ReportSummary
		}{i.Kind, i.Weekly})
	}
	return json.Marshal(i.Simple)
}

// WeeklyStats is one row of the grouped-by-week aggregation.
type WeeklyStats struct {
	WeekISO                 string  `json:"week_iso" bson:"week_iso"`
	TotalReports            int     `json:"total_reports" bson:"total_reports"`
	TotalHours              float64 `json:"total_hours" bson:"total_hours"`
	EmployeesReported       int     `json:"employees_reported" bson:"employees_reported"`
	AverageHoursPerEmployee float64 `json:"average_hours_per_employee" bson:"average_hours_per_employee"`
}
