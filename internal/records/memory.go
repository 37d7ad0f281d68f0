package records

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu         sync.RWMutex
	schedules map[string]*Schedule
	// A plain slice: duplicate ids are possible, matching Firestore where
	// each create adds a document regardless of the id field.
	todoGroups []*TodoGroup
	pets       map[string]*Pet
	feedPosts  map[string]*FeedPost
	nextID     int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		schedules: make(map[string]*Schedule),
		pets:      make(map[string]*Pet),
		feedPosts: make(map[string]*FeedPost),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) generateID() string {
	s.nextID++
	return fmt.Sprintf("mem-%d", s.nextID)
}

func (s *MemoryStore) ListSchedulesByDay(_ context.Context, day time.Time) ([]Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var schedules []Schedule
	for _, schedule := range s.schedules {
		if schedule.StartDate.Before(dayStart) || !schedule.StartDate.Before(dayEnd) {
			continue
		}
		schedules = append(schedules, *schedule)
	}
	sort.Slice(schedules, func(i, j int) bool {
		return schedules[i].StartDate.Before(schedules[j].StartDate)
	})
	return schedules, nil
}

func (s *MemoryStore) GetSchedule(_ context.Context, id string) (*Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule, ok := s.schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *schedule
	return &copied, nil
}

func (s *MemoryStore) CreateSchedule(_ context.Context, schedule *Schedule) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.generateID()
	copied := *schedule
	copied.ID = id
	s.schedules[id] = &copied
	return id, nil
}

func (s *MemoryStore) PutSchedule(_ context.Context, id string, schedule *Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *schedule
	copied.ID = id
	s.schedules[id] = &copied
	return nil
}

func (s *MemoryStore) DeleteSchedule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[id]; !ok {
		return ErrNotFound
	}
	delete(s.schedules, id)
	return nil
}

func (s *MemoryStore) ListTodoGroups(_ context.Context) ([]TodoGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []TodoGroup
	for _, group := range s.todoGroups {
		groups = append(groups, *group)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (s *MemoryStore) CreateTodoGroup(_ context.Context, group *TodoGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *group
	s.todoGroups = append(s.todoGroups, &copied)
	return nil
}

// DeleteTodoGroup removes every group whose id field matches, same as the
// Firestore implementation's query-then-delete.
func (s *MemoryStore) DeleteTodoGroup(_ context.Context, groupID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.todoGroups[:0]
	deleted := 0
	for _, group := range s.todoGroups {
		if group.ID == groupID {
			deleted++
			continue
		}
		kept = append(kept, group)
	}
	s.todoGroups = kept
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) ListPets(_ context.Context) ([]Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pets []Pet
	for _, pet := range s.pets {
		pets = append(pets, *pet)
	}
	sort.Slice(pets, func(i, j int) bool { return pets[i].PetID < pets[j].PetID })
	return pets, nil
}

func (s *MemoryStore) CreatePet(_ context.Context, pet *Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *pet
	s.pets[pet.PetID] = &copied
	return nil
}

func (s *MemoryStore) DeletePet(_ context.Context, petID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pets[petID]; !ok {
		return ErrNotFound
	}
	delete(s.pets, petID)
	return nil
}

func (s *MemoryStore) ListFeedPosts(_ context.Context) ([]FeedPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var posts []FeedPost
	for _, post := range s.feedPosts {
		posts = append(posts, *post)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *MemoryStore) CreateFeedPost(_ context.Context, post *FeedPost) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	id := s.generateID()
	copied := *post
	copied.ID = id
	s.feedPosts[id] = &copied
	return id, nil
}
