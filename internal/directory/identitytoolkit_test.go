package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(serverURL string) *IdentityToolkitService {
	return &IdentityToolkitService{
		httpClient: http.DefaultClient,
		baseURL:    serverURL,
		projectID:  "howsu-test",
	}
}

func TestGetUserByEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects/howsu-test/accounts:lookup", r.URL.Path)

		var body struct {
			Email []string `json:"email"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, []string{"a@b.com"}, body.Email)

		_, _ = w.Write([]byte(`{"users": [{
			"localId": "kakao:555",
			"email": "a@b.com",
			"displayName": "N",
			"photoUrl": "http://x"
		}]}`))
	}))
	defer server.Close()

	user, err := newTestService(server.URL).GetUserByEmail(context.Background(), "a@b.com")

	require.NoError(t, err)
	assert.Equal(t, "kakao:555", user.UID)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, "N", user.DisplayName)
	assert.Equal(t, "http://x", user.PhotoURL)
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{
			name:   "empty_users_list",
			status: http.StatusOK,
			body:   `{}`,
		},
		{
			name:   "email_not_found_error",
			status: http.StatusBadRequest,
			body:   `{"error": {"code": 400, "message": "EMAIL_NOT_FOUND"}}`,
		},
		{
			name:   "user_not_found_error",
			status: http.StatusBadRequest,
			body:   `{"error": {"code": 400, "message": "USER_NOT_FOUND"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestService(server.URL).GetUserByEmail(context.Background(), "a@b.com")

			assert.ErrorIs(t, err, ErrUserNotFound)
		})
	}
}

func TestGetUserByEmail_OtherErrorsPropagate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	_, err := newTestService(server.URL).GetUserByEmail(context.Background(), "a@b.com")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "PERMISSION_DENIED")
}

func TestCreateUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects/howsu-test/accounts", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "kakao:555", body["localId"])
		require.Equal(t, "a@b.com", body["email"])
		require.Equal(t, "N", body["displayName"])
		require.Equal(t, "http://x", body["photoUrl"])

		_, _ = w.Write([]byte(`{"localId": "kakao:555"}`))
	}))
	defer server.Close()

	user, err := newTestService(server.URL).CreateUser(context.Background(), CreateUserParams{
		UID:         "kakao:555",
		Email:       "a@b.com",
		DisplayName: "N",
		PhotoURL:    "http://x",
	})

	require.NoError(t, err)
	assert.Equal(t, "kakao:555", user.UID)
	assert.Equal(t, "a@b.com", user.Email)
}

func TestCreateUser_RequiresUID(t *testing.T) {
	_, err := newTestService("http://unused").CreateUser(context.Background(), CreateUserParams{
		Email: "a@b.com",
	})
	require.Error(t, err)
}

func TestCreateUser_DuplicateEmailPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "EMAIL_EXISTS"}}`))
	}))
	defer server.Close()

	_, err := newTestService(server.URL).CreateUser(context.Background(), CreateUserParams{
		UID:   "kakao:555",
		Email: "a@b.com",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMAIL_EXISTS")
}
