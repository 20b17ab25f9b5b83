package usecase

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/tastylog/backend/internal/domain"
	"github.com/tastylog/backend/internal/infrastructure/appwrite"
)

const avatarServiceURL = "https://ui-avatars.com/api/"

// minPasswordLength matches the remote store's password policy
const minPasswordLength = 8

// Credentials is an email/password login, plus a display name on registration
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Validate checks the credentials; requireName is set for registration
func (c Credentials) Validate(requireName bool) error {
	nameRules := []validation.Rule{validation.Length(0, 128)}
	if requireName {
		nameRules = append(nameRules, validation.Required)
	}

	err := validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required, validation.Length(minPasswordLength, 256)),
		validation.Field(&c.Name, nameRules...),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// Registration is the outcome of Register. Session is nil when the automatic
// login after account creation failed.
type Registration struct {
	Account domain.Account  `json:"account"`
	Session *domain.Session `json:"session,omitempty"`
}

// AuthService handles accounts, sessions and the profile documents kept in the users collection
type AuthService struct {
	store             domain.RemoteStore
	usersCollectionID string
}

// NewAuthService creates a new account service
func NewAuthService(store domain.RemoteStore, usersCollectionID string) *AuthService {
	return &AuthService{
		store:             store,
		usersCollectionID: usersCollectionID,
	}
}

// Login opens an email/password session. A session already attached to ctx is
// ended first; failing to end it does not stop the login.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*domain.Session, error) {
	if err := creds.Validate(false); err != nil {
		return nil, err
	}

	if domain.SessionFromContext(ctx) != "" {
		if err := s.store.DeleteSession(ctx, domain.CurrentSession); err != nil {
			log.Printf("[Auth] Ignoring failure to end previous session: %v", err)
		}
	}

	session, err := s.store.CreateSession(ctx, creds.Email, creds.Password)
	if err != nil {
		log.Printf("[Auth] Login failed for %q: %v", creds.Email, err)
		return nil, fmt.Errorf("login failed: %w", err)
	}
	log.Printf("[Auth] Login succeeded for user %s", session.UserID)
	return session, nil
}

// Register creates the account and its profile document, then logs in
func (s *AuthService) Register(ctx context.Context, creds Credentials) (*Registration, error) {
	if err := creds.Validate(true); err != nil {
		return nil, err
	}

	account, err := s.store.CreateAccount(ctx, creds.Email, creds.Password, creds.Name)
	if err != nil {
		log.Printf("[Auth] Registration failed for %q: %v", creds.Email, err)
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	log.Printf("[Auth] Account created: %s", account.ID)

	profile := domain.UserProfile{
		UserID:    account.ID,
		Email:     creds.Email,
		Name:      creds.Name,
		AvatarURL: avatarServiceURL + "?name=" + strings.ReplaceAll(creds.Name, " ", "+"),
	}
	if _, err := s.store.CreateDocument(ctx, s.usersCollectionID, domain.UniqueID, appwrite.ProfileToDocument(profile)); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	result := &Registration{Account: *account}
	session, err := s.store.CreateSession(ctx, creds.Email, creds.Password)
	if err != nil {
		log.Printf("[Auth] Automatic login after registration failed: %v", err)
		return result, nil
	}
	result.Session = session
	return result, nil
}

// Logout ends a session; an empty id ends the caller's current one
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		sessionID = domain.CurrentSession
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// CurrentAccount returns the account behind the session on ctx
func (s *AuthService) CurrentAccount(ctx context.Context) (*domain.Account, error) {
	if domain.SessionFromContext(ctx) == "" {
		return nil, domain.ErrUnauthorized
	}
	account, err := s.store.GetAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}
	return account, nil
}

// Profile merges the current account with its profile document
func (s *AuthService) Profile(ctx context.Context) (domain.UserProfile, error) {
	account, err := s.CurrentAccount(ctx)
	if err != nil {
		return domain.UserProfile{}, err
	}

	doc, err := s.findProfile(ctx, account.ID)
	if err != nil {
		return domain.UserProfile{}, err
	}

	profile := domain.UserProfile{UserID: account.ID}
	if doc != nil {
		profile = appwrite.DocumentToProfile(*doc)
		profile.UserID = account.ID
	}
	if profile.Name == "" {
		profile.Name = account.Name
	}
	profile.Email = account.Email
	if profile.AvatarURL == "" {
		profile.AvatarURL = DefaultAvatarURL(profile.Name)
	}
	return profile, nil
}

// UpdateName changes the display name kept in the profile document
func (s *AuthService) UpdateName(ctx context.Context, name string) (domain.UserProfile, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required, validation.Length(1, 128)); err != nil {
		return domain.UserProfile{}, domain.Validationf("name: %v", err)
	}
	return s.upsertProfile(ctx, appwrite.FieldName, name)
}

// UpdateAvatar points the profile at a new avatar image
func (s *AuthService) UpdateAvatar(ctx context.Context, avatarURL string) (domain.UserProfile, error) {
	if err := validation.Validate(avatarURL, validation.Required, is.URL); err != nil {
		return domain.UserProfile{}, domain.Validationf("avatar url: %v", err)
	}
	return s.upsertProfile(ctx, appwrite.FieldAvatarURL, avatarURL)
}

// upsertProfile sets one profile field, creating the profile document when the account has none
func (s *AuthService) upsertProfile(ctx context.Context, field, value string) (domain.UserProfile, error) {
	account, err := s.CurrentAccount(ctx)
	if err != nil {
		return domain.UserProfile{}, err
	}

	doc, err := s.findProfile(ctx, account.ID)
	if err != nil {
		return domain.UserProfile{}, err
	}

	if doc == nil {
		log.Printf("[Auth] No profile for user %s, creating one", account.ID)
		data := appwrite.ProfileToDocument(domain.UserProfile{UserID: account.ID, Email: account.Email})
		data[field] = value
		if _, err := s.store.CreateDocument(ctx, s.usersCollectionID, domain.UniqueID, data); err != nil {
			return domain.UserProfile{}, fmt.Errorf("failed to create profile: %w", err)
		}
	} else {
		if _, err := s.store.UpdateDocument(ctx, s.usersCollectionID, doc.ID, map[string]any{field: value}); err != nil {
			return domain.UserProfile{}, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return s.Profile(ctx)
}

func (s *AuthService) findProfile(ctx context.Context, userID string) (*domain.Document, error) {
	docs, err := s.store.ListDocuments(ctx, s.usersCollectionID, domain.Equal(appwrite.FieldUserID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}

// DefaultAvatarURL is the generated avatar shown when a profile has none
func DefaultAvatarURL(name string) string {
	return avatarServiceURL + "?name=" + url.QueryEscape(name) + "&size=200&background=random&format=png&rounded=true"
}
