// AngelaMos | 2026
// google.go

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/carterperez-dev/templates/auth-backend/internal/core"
)

var (
	ErrInvalidAssertion = fmt.Errorf(
		"invalid identity assertion: %w", core.ErrTokenInvalid)
	ErrEmailNotVerified = fmt.Errorf(
		"provider email not verified: %w", core.ErrForbidden)
)

// Identity is the subset of a federated identity assertion the auth flows
// consume.
type Identity struct {
	SubjectID     string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// GoogleVerifier validates Google ID tokens ("credential" from Google
// Identity Services) against this application's OAuth client id.
type GoogleVerifier struct {
	clientID string
	http     *http.Client
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *GoogleVerifier) Verify(
	ctx context.Context,
	credential string,
) (*Identity, error) {
	oauth2Service, err := oauth2.NewService(
		ctx,
		option.WithHTTPClient(v.http),
	)
	if err != nil {
		return nil, fmt.Errorf("create oauth2 service: %w", err)
	}

	tokenInfo, err := oauth2Service.Tokeninfo().
		IdToken(credential).
		Context(ctx).
		Do()
	if err != nil {
		return nil, ErrInvalidAssertion
	}

	if tokenInfo.Audience != v.clientID {
		return nil, ErrInvalidAssertion
	}

	// an assertion with a valid signature but an unverified email is still
	// rejected: the email is what the account is keyed on
	if !tokenInfo.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}

	identity := &Identity{
		SubjectID:     tokenInfo.UserId,
		Email:         strings.ToLower(tokenInfo.Email),
		EmailVerified: tokenInfo.VerifiedEmail,
	}

	// Tokeninfo does not carry profile fields; fetch them best-effort and
	// fall back to the email local part.
	v.fillProfile(ctx, credential, identity)

	return identity, nil
}

func (v *GoogleVerifier) fillProfile(
	ctx context.Context,
	credential string,
	identity *Identity,
) {
	defer func() {
		if identity.Name == "" {
			identity.Name = strings.SplitN(identity.Email, "@", 2)[0]
		}
	}()

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		"https://www.googleapis.com/oauth2/v1/userinfo",
		nil,
	)
	if err != nil {
		return
	}

	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := v.http.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return
	}

	var userInfo oauth2.Userinfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return
	}

	identity.Name = userInfo.Name
	identity.Picture = userInfo.Picture
}
