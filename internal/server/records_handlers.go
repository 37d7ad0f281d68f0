package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	jsonwriter "github.com/howsu-app/howsu-backend/internal/json"
	"github.com/howsu-app/howsu-backend/internal/log"
	"github.com/howsu-app/howsu-backend/internal/records"
)

// RecordsHandler serves the authenticated domain record API
type RecordsHandler struct {
	store records.Store
}

// NewRecordsHandler creates the records API handler
func NewRecordsHandler(store records.Store) *RecordsHandler {
	return &RecordsHandler{store: store}
}

// Register wires the record routes onto mux. Callers are expected to wrap
// the mux with the auth middleware.
func (h *RecordsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/schedules", h.listSchedules)
	mux.HandleFunc("POST /api/schedules", h.createSchedule)
	mux.HandleFunc("GET /api/schedules/{id}", h.getSchedule)
	mux.HandleFunc("PUT /api/schedules/{id}", h.putSchedule)
	mux.HandleFunc("DELETE /api/schedules/{id}", h.deleteSchedule)

	mux.HandleFunc("GET /api/todo-groups", h.listTodoGroups)
	mux.HandleFunc("POST /api/todo-groups", h.createTodoGroup)
	mux.HandleFunc("DELETE /api/todo-groups/{id}", h.deleteTodoGroup)

	mux.HandleFunc("GET /api/pets", h.listPets)
	mux.HandleFunc("POST /api/pets", h.createPet)
	mux.HandleFunc("DELETE /api/pets/{id}", h.deletePet)

	mux.HandleFunc("GET /api/feed-posts", h.listFeedPosts)
	mux.HandleFunc("POST /api/feed-posts", h.createFeedPost)
}

func (h *RecordsHandler) writeStoreError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, records.ErrNotFound) {
		jsonwriter.WriteNotFound(w, "Not found")
		return
	}
	log.LogErrorWithFields("records_api", "Store operation failed", map[string]any{
		"operation": op,
		"error":     err.Error(),
	})
	jsonwriter.WriteInternalServerError(w, "Internal Server Error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonwriter.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

func (h *RecordsHandler) listSchedules(w http.ResponseWriter, r *http.Request) {
	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		jsonwriter.WriteBadRequest(w, "date query parameter is required")
		return
	}
	day, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		jsonwriter.WriteBadRequest(w, "date must be formatted as YYYY-MM-DD")
		return
	}

	schedules, err := h.store.ListSchedulesByDay(r.Context(), day)
	if err != nil {
		h.writeStoreError(w, "list schedules", err)
		return
	}
	if schedules == nil {
		schedules = []records.Schedule{}
	}
	jsonwriter.Write(w, schedules)
}

func (h *RecordsHandler) getSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.store.GetSchedule(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, "get schedule", err)
		return
	}
	jsonwriter.Write(w, schedule)
}

func (h *RecordsHandler) createSchedule(w http.ResponseWriter, r *http.Request) {
	var schedule records.Schedule
	if !decodeBody(w, r, &schedule) {
		return
	}

	id, err := h.store.CreateSchedule(r.Context(), &schedule)
	if err != nil {
		h.writeStoreError(w, "create schedule", err)
		return
	}
	schedule.ID = id
	jsonwriter.WriteResponse(w, http.StatusCreated, schedule)
}

func (h *RecordsHandler) putSchedule(w http.ResponseWriter, r *http.Request) {
	var schedule records.Schedule
	if !decodeBody(w, r, &schedule) {
		return
	}

	id := r.PathValue("id")
	if err := h.store.PutSchedule(r.Context(), id, &schedule); err != nil {
		h.writeStoreError(w, "put schedule", err)
		return
	}
	schedule.ID = id
	jsonwriter.Write(w, schedule)
}

func (h *RecordsHandler) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteSchedule(r.Context(), r.PathValue("id")); err != nil {
		h.writeStoreError(w, "delete schedule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordsHandler) listTodoGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ListTodoGroups(r.Context())
	if err != nil {
		h.writeStoreError(w, "list todo groups", err)
		return
	}
	if groups == nil {
		groups = []records.TodoGroup{}
	}
	jsonwriter.Write(w, groups)
}

func (h *RecordsHandler) createTodoGroup(w http.ResponseWriter, r *http.Request) {
	var group records.TodoGroup
	if !decodeBody(w, r, &group) {
		return
	}
	if group.ID == 0 {
		jsonwriter.WriteBadRequest(w, "todo group id is required")
		return
	}

	if err := h.store.CreateTodoGroup(r.Context(), &group); err != nil {
		h.writeStoreError(w, "create todo group", err)
		return
	}
	jsonwriter.WriteResponse(w, http.StatusCreated, group)
}

func (h *RecordsHandler) deleteTodoGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonwriter.WriteBadRequest(w, "todo group id must be numeric")
		return
	}

	if err := h.store.DeleteTodoGroup(r.Context(), groupID); err != nil {
		h.writeStoreError(w, "delete todo group", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordsHandler) listPets(w http.ResponseWriter, r *http.Request) {
	pets, err := h.store.ListPets(r.Context())
	if err != nil {
		h.writeStoreError(w, "list pets", err)
		return
	}
	if pets == nil {
		pets = []records.Pet{}
	}
	jsonwriter.Write(w, pets)
}

func (h *RecordsHandler) createPet(w http.ResponseWriter, r *http.Request) {
	var pet records.Pet
	if !decodeBody(w, r, &pet) {
		return
	}
	if pet.PetID == "" || pet.Name == "" {
		jsonwriter.WriteBadRequest(w, "petId and name are required")
		return
	}

	if err := h.store.CreatePet(r.Context(), &pet); err != nil {
		h.writeStoreError(w, "create pet", err)
		return
	}
	jsonwriter.WriteResponse(w, http.StatusCreated, pet)
}

func (h *RecordsHandler) deletePet(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePet(r.Context(), r.PathValue("id")); err != nil {
		h.writeStoreError(w, "delete pet", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordsHandler) listFeedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListFeedPosts(r.Context())
	if err != nil {
		h.writeStoreError(w, "list feed posts", err)
		return
	}
	if posts == nil {
		posts = []records.FeedPost{}
	}
	jsonwriter.Write(w, posts)
}

func (h *RecordsHandler) createFeedPost(w http.ResponseWriter, r *http.Request) {
	var post records.FeedPost
	if !decodeBody(w, r, &post) {
		return
	}
	if post.Title == "" {
		jsonwriter.WriteBadRequest(w, "title is required")
		return
	}

	// The store stamps CreatedAt, so the response carries the same
	// timestamp the document was persisted with.
	id, err := h.store.CreateFeedPost(r.Context(), &post)
	if err != nil {
		h.writeStoreError(w, "create feed post", err)
		return
	}
	post.ID = id
	jsonwriter.WriteResponse(w, http.StatusCreated, post)
}
