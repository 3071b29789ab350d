package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"marmomart/internal/models"
	"marmomart/internal/phoneauth"
	"marmomart/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

const (
	tokenTypeAccess       = "access"
	tokenTypeRegistration = "registration"

	// registrationTTL bounds the gap between verifying a phone and submitting
	// the profile.
	registrationTTL = 15 * time.Minute
)

// AuthService signs customers in after phone verification. It implements
// phoneauth.AccountDirectory.
type AuthService struct {
	accounts    repositories.AccountRepository
	jwtSecret   []byte
	tokenDurat  time.Duration // Duration for which JWT is valid
	adminPhones map[string]bool
}

// NewAuthService creates a new AuthService. Accounts created for adminPhones
// get the admin role.
func NewAuthService(accounts repositories.AccountRepository, jwtSecret string, tokenTTL time.Duration, adminPhones []string) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	admins := make(map[string]bool, len(adminPhones))
	for _, p := range adminPhones {
		admins[p] = true
	}
	return &AuthService{
		accounts:    accounts,
		jwtSecret:   []byte(jwtSecret),
		tokenDurat:  tokenTTL,
		adminPhones: admins,
	}
}

// FindByPhone returns the account for phone, or nil if there is none.
func (s *AuthService) FindByPhone(ctx context.Context, phone string) (*models.Account, error) {
	account, err := s.accounts.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return account, nil
}

// CreateAccount registers a verified phone with the submitted profile.
func (s *AuthService) CreateAccount(ctx context.Context, phone string, profile phoneauth.Profile) (*models.Account, error) {
	role := models.RoleUser
	if s.adminPhones[phone] {
		role = models.RoleAdmin
	}
	account := &models.Account{
		Phone:        phone,
		FullName:     profile.FullName,
		Email:        profile.Email,
		BusinessName: profile.BusinessName,
		BusinessType: profile.BusinessType,
		GSTNumber:    profile.GSTNumber,
		Role:         role,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to register account: %w", err)
	}
	log.Printf("Registered account %s with role %s", account.ID, account.Role)
	return account, nil
}

// SignIn issues an access token for account.
func (s *AuthService) SignIn(_ context.Context, account *models.Account) (string, error) {
	now := time.Now()
	return s.sign(jwt.MapClaims{
		"typ":     tokenTypeAccess,
		"user_id": account.ID,
		"phone":   account.Phone,
		"role":    string(account.Role),
		"exp":     now.Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":     now.Unix(),                   // Issued at time
	})
}

// IssueRegistrationToken proves that phone was verified, so the profile can be
// submitted in a later request.
func (s *AuthService) IssueRegistrationToken(phone string) (string, error) {
	now := time.Now()
	return s.sign(jwt.MapClaims{
		"typ":   tokenTypeRegistration,
		"phone": phone,
		"exp":   now.Add(registrationTTL).Unix(),
		"iat":   now.Unix(),
	})
}

// ParseRegistrationToken returns the verified phone carried by token.
func (s *AuthService) ParseRegistrationToken(token string) (string, error) {
	claims, err := s.parse(token, tokenTypeRegistration)
	if err != nil {
		return "", err
	}
	phone, _ := claims["phone"].(string)
	if phone == "" {
		return "", ErrInvalidToken
	}
	return phone, nil
}

// ValidateToken parses and validates an access token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	return s.parse(tokenString, tokenTypeAccess)
}

// GetAccount returns the account with the given id.
func (s *AuthService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *AuthService) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

func (s *AuthService) parse(tokenString, typ string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims["typ"] != typ {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, typ)
	}
	return claims, nil
}
