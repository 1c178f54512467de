package auth

import (
	"context"
	"fmt"
	"net/http"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseAuth verifies ID tokens issued to the web client.
type FirebaseAuth struct {
	client *fbauth.Client
}

var (
	_ Authenticator = (*FirebaseAuth)(nil)
	_ Directory     = (*FirebaseAuth)(nil)
)

// NewFirebaseAuth initializes the Admin SDK. An empty credentialsFile uses
// application default credentials.
func NewFirebaseAuth(ctx context.Context, projectID, credentialsFile string) (*FirebaseAuth, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("get auth client: %w", err)
	}
	return &FirebaseAuth{client: client}, nil
}

func (f *FirebaseAuth) Authenticate(r *http.Request) (*Claims, error) {
	token, err := BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	return f.VerifyToken(r.Context(), token)
}

func (f *FirebaseAuth) VerifyToken(ctx context.Context, idToken string) (*Claims, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify ID token: %w", err)
	}
	return claimsFromToken(token.UID, token.Claims), nil
}

func (f *FirebaseAuth) Email(ctx context.Context, uid string) (string, error) {
	u, err := f.client.GetUser(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("get user %s: %w", uid, err)
	}
	if u.Email == "" {
		return "", ErrNoEmail
	}
	return u.Email, nil
}

func claimsFromToken(uid string, raw map[string]any) *Claims {
	c := &Claims{UID: uid}
	c.Email, _ = raw["email"].(string)
	c.Name, _ = raw["name"].(string)
	c.Verified, _ = raw["email_verified"].(bool)
	return c
}
