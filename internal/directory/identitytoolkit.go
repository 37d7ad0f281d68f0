package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/howsu-app/howsu-backend/internal/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	identityToolkitBaseURL = "https://identitytoolkit.googleapis.com/v1"
	identityToolkitScope   = "https://www.googleapis.com/auth/identitytoolkit"
)

// IdentityToolkitService implements Service against the Google Identity
// Toolkit REST API, which backs Firebase Authentication. Requests are
// authorized by a service-account token source resolved once at
// construction; there is no package-level SDK state.
type IdentityToolkitService struct {
	httpClient *http.Client
	baseURL    string // overridden in tests
	projectID  string
}

var _ Service = (*IdentityToolkitService)(nil)

// NewIdentityToolkitService builds a directory client from service-account
// credentials JSON.
func NewIdentityToolkitService(ctx context.Context, projectID string, credentialsJSON []byte) (*IdentityToolkitService, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required")
	}

	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, identityToolkitScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}

	return &IdentityToolkitService{
		httpClient: oauth2.NewClient(ctx, creds.TokenSource),
		baseURL:    identityToolkitBaseURL,
		projectID:  projectID,
	}, nil
}

// accountInfo is the account representation shared by lookup and signUp
// responses.
type accountInfo struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

func (a accountInfo) toUser() *User {
	return &User{
		UID:         a.LocalID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		PhotoURL:    a.PhotoURL,
	}
}

// apiError is the Google API error envelope.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetUserByEmail looks up a directory record by email. A missing record is
// reported as ErrUserNotFound; every other failure propagates.
func (s *IdentityToolkitService) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var resp struct {
		Users []accountInfo `json:"users"`
	}
	err := s.post(ctx, "/accounts:lookup", map[string]any{"email": []string{email}}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, ErrUserNotFound
	}
	return resp.Users[0].toUser(), nil
}

// CreateUser provisions a new record with an explicit uid. The directory's
// own uniqueness constraints are the only guard against concurrent creates
// for the same identity.
func (s *IdentityToolkitService) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	if params.UID == "" {
		return nil, fmt.Errorf("uid is required")
	}

	var resp accountInfo
	err := s.post(ctx, "/accounts", map[string]any{
		"localId":     params.UID,
		"email":       params.Email,
		"displayName": params.DisplayName,
		"photoUrl":    params.PhotoURL,
	}, &resp)
	if err != nil {
		return nil, err
	}

	log.LogInfoWithFields("directory", "Provisioned directory user", map[string]any{
		"uid": resp.LocalID,
	})

	// signUp echoes only the localId; report the record as created.
	return &User{
		UID:         resp.LocalID,
		Email:       params.Email,
		DisplayName: params.DisplayName,
		PhotoURL:    params.PhotoURL,
	}, nil
}

func (s *IdentityToolkitService) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding directory request: %w", err)
	}

	url := fmt.Sprintf("%s/projects/%s%s", s.baseURL, s.projectID, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building directory request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if decErr := json.NewDecoder(resp.Body).Decode(&apiErr); decErr == nil {
			// The Identity Toolkit reports a missing account as a 400
			// with a symbolic message rather than a 404.
			switch apiErr.Error.Message {
			case "EMAIL_NOT_FOUND", "USER_NOT_FOUND":
				return ErrUserNotFound
			}
			return fmt.Errorf("directory error %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("directory error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding directory response: %w", err)
	}
	return nil
}
