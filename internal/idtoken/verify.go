// Package idtoken verifies Firebase ID tokens offline against Google's
// published securetoken signing certificates.
package idtoken

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/howsu-app/howsu-backend/internal/log"
)

const defaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

var maxAgePattern = regexp.MustCompile(`max-age=(\d+)`)

// Verifier checks ID token signatures and claims for a single project.
// Certificates are cached between requests and refreshed when the
// upstream Cache-Control window expires.
type Verifier struct {
	projectID  string
	certsURL   string
	httpClient *http.Client
	now        func() time.Time

	mu          sync.Mutex
	keys        map[string]*rsa.PublicKey
	keysExpires time.Time
}

// NewVerifier builds a verifier for the given Firebase project.
func NewVerifier(projectID string) *Verifier {
	return &Verifier{
		projectID:  projectID,
		certsURL:   defaultCertsURL,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
}

// Claims is the subset of ID token claims the backend cares about.
type Claims struct {
	UID string
	jwt.RegisteredClaims
}

// Verify parses and validates rawToken, returning the authenticated uid.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		return "", fmt.Errorf("id token is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(rawToken, claims,
		func(t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, fmt.Errorf("id token has no kid header")
			}
			return v.keyForKID(ctx, kid)
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return "", fmt.Errorf("verifying id token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("id token is invalid")
	}

	uid := claims.Subject
	if uid == "" {
		return "", fmt.Errorf("id token has no subject")
	}
	return uid, nil
}

func (v *Verifier) keyForKID(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys == nil || v.now().After(v.keysExpires) {
		if err := v.refreshKeysLocked(ctx); err != nil {
			return nil, err
		}
	}

	key, ok := v.keys[kid]
	if !ok {
		// A fresh kid usually means Google rotated keys mid-window.
		if err := v.refreshKeysLocked(ctx); err != nil {
			return nil, err
		}
		key, ok = v.keys[kid]
	}
	if !ok {
		return nil, fmt.Errorf("no signing certificate for kid %q", kid)
	}
	return key, nil
}

func (v *Verifier) refreshKeysLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return fmt.Errorf("building certificate request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching signing certificates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading signing certificates: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("certificate endpoint returned %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return fmt.Errorf("decoding signing certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := parseCertKey(certPEM)
		if err != nil {
			return fmt.Errorf("parsing certificate %s: %w", kid, err)
		}
		keys[kid] = key
	}

	v.keys = keys
	v.keysExpires = v.now().Add(cacheTTL(resp.Header.Get("Cache-Control")))

	log.LogDebugWithFields("idtoken", "Refreshed signing certificates", map[string]any{
		"keys":    len(keys),
		"expires": v.keysExpires,
	})
	return nil
}

func parseCertKey(certPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, fmt.Errorf("not PEM encoded")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate key is %T, want RSA", cert.PublicKey)
	}
	return key, nil
}

// cacheTTL extracts max-age from a Cache-Control header, with a short
// fallback so a missing header never pins stale keys.
func cacheTTL(cacheControl string) time.Duration {
	match := maxAgePattern.FindStringSubmatch(cacheControl)
	if match == nil {
		return 5 * time.Minute
	}
	seconds, err := strconv.Atoi(match[1])
	if err != nil || seconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(seconds) * time.Second
}
