// Package records stores the app's domain documents: schedules, todo
// groups, pets, and feed posts.
package records

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("record not found")

// Schedule is a calendar entry, possibly spanning multiple days.
type Schedule struct {
	ID             string    `firestore:"-" json:"id"`
	Title          string    `firestore:"title" json:"title"`
	Memo           string    `firestore:"memo" json:"memo"`
	IsAllDay       bool      `firestore:"isAllDay" json:"isAllDay"`
	StartDate      time.Time `firestore:"startDate" json:"startDate"`
	EndDate        time.Time `firestore:"endDate" json:"endDate"`
	PetNames       []string  `firestore:"petNames" json:"petNames"`
	Color          string    `firestore:"color" json:"color"`
	RecurrenceRule string    `firestore:"recurrenceRule" json:"recurrenceRule"`
	AlarmRule      string    `firestore:"alarmRule" json:"alarmRule"`
}

// Task is a single checkable item inside a todo group.
type Task struct {
	ID        int64  `firestore:"id" json:"id"`
	Title     string `firestore:"title" json:"title"`
	Date      string `firestore:"date" json:"date"`
	IsChecked bool   `firestore:"isChecked" json:"isChecked"`
}

// TodoGroup is a named set of tasks assigned to one caretaker. The app
// assigns the numeric ID client-side; deletion is keyed on that field,
// not the document name.
type TodoGroup struct {
	ID           int64  `firestore:"id" json:"id"`
	AssigneeName string `firestore:"assigneeName" json:"assigneeName"`
	Tasks        []Task `firestore:"tasks" json:"tasks"`
}

// Pet is a registered animal profile.
type Pet struct {
	PetID           string `firestore:"petId" json:"petId"`
	Name            string `firestore:"name" json:"name"`
	ProfileImageURL string `firestore:"profileImageUrl" json:"profileImageUrl"`
}

// FeedPost is a community feed entry.
type FeedPost struct {
	ID           string    `firestore:"-" json:"id"`
	Title        string    `firestore:"title" json:"title"`
	Content      string    `firestore:"content" json:"content"`
	ImageURLs    []string  `firestore:"imageUrls" json:"imageUrls"`
	Hashtags     []string  `firestore:"hashtags" json:"hashtags"`
	LikeCount    int       `firestore:"likeCount" json:"likeCount"`
	CommentCount int       `firestore:"commentCount" json:"commentCount"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
}

// Store is the persistence boundary for domain records.
type Store interface {
	// ListSchedulesByDay returns schedules whose startDate falls on the
	// given calendar day, ordered by startDate.
	ListSchedulesByDay(ctx context.Context, day time.Time) ([]Schedule, error)
	GetSchedule(ctx context.Context, id string) (*Schedule, error)
	CreateSchedule(ctx context.Context, schedule *Schedule) (string, error)
	// PutSchedule overwrites the document, creating it if absent.
	PutSchedule(ctx context.Context, id string, schedule *Schedule) error
	DeleteSchedule(ctx context.Context, id string) error

	ListTodoGroups(ctx context.Context) ([]TodoGroup, error)
	CreateTodoGroup(ctx context.Context, group *TodoGroup) error
	// DeleteTodoGroup removes the group whose "id" field matches groupID.
	DeleteTodoGroup(ctx context.Context, groupID int64) error

	ListPets(ctx context.Context) ([]Pet, error)
	CreatePet(ctx context.Context, pet *Pet) error
	DeletePet(ctx context.Context, petID string) error

	// ListFeedPosts returns posts newest first.
	ListFeedPosts(ctx context.Context) ([]FeedPost, error)
	CreateFeedPost(ctx context.Context, post *FeedPost) (string, error)

	Close() error
}
