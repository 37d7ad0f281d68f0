package records

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/howsu-app/howsu-backend/internal/log"
)

const (
	schedulesCollection  = "schedules"
	todoGroupsCollection = "todoGroups"
	petsCollection       = "pets"
	feedPostsCollection  = "feed_posts"
)

// FirestoreStore persists domain records in Cloud Firestore, one
// collection per record kind.
type FirestoreStore struct {
	client    *firestore.Client
	projectID string
}

var _ Store = (*FirestoreStore)(nil)

// NewFirestoreStore connects to Firestore for the given project. An empty
// or "(default)" database selects the default database.
func NewFirestoreStore(ctx context.Context, projectID, database string, opts ...option.ClientOption) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required")
	}

	var client *firestore.Client
	var err error
	if database != "" && database != "(default)" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, database, opts...)
	} else {
		client, err = firestore.NewClient(ctx, projectID, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("creating Firestore client: %w", err)
	}

	log.LogInfoWithFields("records", "Connected to Firestore", map[string]any{
		"project":  projectID,
		"database": database,
	})
	return &FirestoreStore{client: client, projectID: projectID}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) ListSchedulesByDay(ctx context.Context, day time.Time) ([]Schedule, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	iter := s.client.Collection(schedulesCollection).
		Where("startDate", ">=", dayStart).
		Where("startDate", "<", dayEnd).
		OrderBy("startDate", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var schedules []Schedule
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating schedules: %w", err)
		}

		var schedule Schedule
		if err := doc.DataTo(&schedule); err != nil {
			log.LogError("Skipping malformed schedule document %s: %v", doc.Ref.ID, err)
			continue
		}
		schedule.ID = doc.Ref.ID
		schedules = append(schedules, schedule)
	}
	return schedules, nil
}

func (s *FirestoreStore) GetSchedule(ctx context.Context, id string) (*Schedule, error) {
	doc, err := s.client.Collection(schedulesCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting schedule %s: %w", id, err)
	}

	var schedule Schedule
	if err := doc.DataTo(&schedule); err != nil {
		return nil, fmt.Errorf("unmarshaling schedule %s: %w", id, err)
	}
	schedule.ID = doc.Ref.ID
	return &schedule, nil
}

func (s *FirestoreStore) CreateSchedule(ctx context.Context, schedule *Schedule) (string, error) {
	ref, _, err := s.client.Collection(schedulesCollection).Add(ctx, schedule)
	if err != nil {
		return "", fmt.Errorf("creating schedule: %w", err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) PutSchedule(ctx context.Context, id string, schedule *Schedule) error {
	if _, err := s.client.Collection(schedulesCollection).Doc(id).Set(ctx, schedule); err != nil {
		return fmt.Errorf("writing schedule %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreStore) DeleteSchedule(ctx context.Context, id string) error {
	if _, err := s.client.Collection(schedulesCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("deleting schedule %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreStore) ListTodoGroups(ctx context.Context) ([]TodoGroup, error) {
	iter := s.client.Collection(todoGroupsCollection).Documents(ctx)
	defer iter.Stop()

	var groups []TodoGroup
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating todo groups: %w", err)
		}

		var group TodoGroup
		if err := doc.DataTo(&group); err != nil {
			log.LogError("Skipping malformed todo group document %s: %v", doc.Ref.ID, err)
			continue
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *FirestoreStore) CreateTodoGroup(ctx context.Context, group *TodoGroup) error {
	if _, _, err := s.client.Collection(todoGroupsCollection).Add(ctx, group); err != nil {
		return fmt.Errorf("creating todo group: %w", err)
	}
	return nil
}

// DeleteTodoGroup deletes by the app-assigned "id" field rather than the
// document name, which is how the mobile client addresses groups.
func (s *FirestoreStore) DeleteTodoGroup(ctx context.Context, groupID int64) error {
	iter := s.client.Collection(todoGroupsCollection).
		Where("id", "==", groupID).
		Documents(ctx)
	defer iter.Stop()

	deleted := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("querying todo group %d: %w", groupID, err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("deleting todo group %d: %w", groupID, err)
		}
		deleted++
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *FirestoreStore) ListPets(ctx context.Context) ([]Pet, error) {
	iter := s.client.Collection(petsCollection).Documents(ctx)
	defer iter.Stop()

	var pets []Pet
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating pets: %w", err)
		}

		var pet Pet
		if err := doc.DataTo(&pet); err != nil {
			log.LogError("Skipping malformed pet document %s: %v", doc.Ref.ID, err)
			continue
		}
		pets = append(pets, pet)
	}
	return pets, nil
}

func (s *FirestoreStore) CreatePet(ctx context.Context, pet *Pet) error {
	// The pet id doubles as the document name so creation is idempotent.
	if _, err := s.client.Collection(petsCollection).Doc(pet.PetID).Set(ctx, pet); err != nil {
		return fmt.Errorf("creating pet %s: %w", pet.PetID, err)
	}
	return nil
}

func (s *FirestoreStore) DeletePet(ctx context.Context, petID string) error {
	doc := s.client.Collection(petsCollection).Doc(petID)
	if _, err := doc.Get(ctx); status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if _, err := doc.Delete(ctx); err != nil {
		return fmt.Errorf("deleting pet %s: %w", petID, err)
	}
	return nil
}

func (s *FirestoreStore) ListFeedPosts(ctx context.Context) ([]FeedPost, error) {
	iter := s.client.Collection(feedPostsCollection).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var posts []FeedPost
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating feed posts: %w", err)
		}

		var post FeedPost
		if err := doc.DataTo(&post); err != nil {
			log.LogError("Skipping malformed feed post document %s: %v", doc.Ref.ID, err)
			continue
		}
		post.ID = doc.Ref.ID
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *FirestoreStore) CreateFeedPost(ctx context.Context, post *FeedPost) (string, error) {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	ref, _, err := s.client.Collection(feedPostsCollection).Add(ctx, post)
	if err != nil {
		return "", fmt.Errorf("creating feed post: %w", err)
	}
	return ref.ID, nil
}
