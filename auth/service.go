package auth

import (
	"errors"
	"net/mail"
	"time"

	"github.com/go-pkgz/auth/v2"
	"github.com/go-pkgz/auth/v2/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/krishkalaria12/remake/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	Issuer   = "remake-app"
	Audience = "remake-app"
)

type Options struct {
	Secret   string
	TokenTTL time.Duration
	URL      string
}

// NewService builds the JWT token service. Credentials are checked by the
// login handler through ValidateUserCredentials.
func NewService(opts Options) *auth.Service {
	return auth.NewService(auth.Opts{
		SecretReader: token.SecretFunc(func(id string) (string, error) {
			return opts.Secret, nil
		}),
		TokenDuration:  opts.TokenTTL,
		CookieDuration: opts.TokenTTL * 7,
		Issuer:         Issuer,
		URL:            opts.URL,
	})
}

// IssueToken signs a JWT for user. The token subject is the user's opaque
// identifier, which is what reports are scoped by.
func IssueToken(tokens *token.Service, user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := token.Claims{
		User: &token.User{
			ID:    user.Subject(),
			Name:  user.FullName,
			Email: user.Email,
			Attributes: map[string]interface{}{
				"username": user.Username,
			},
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  []string{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return tokens.Token(claims)
}

// ValidateUserCredentials returns the matching user, or nil when the
// identity is unknown or the password is wrong.
func ValidateUserCredentials(db *gorm.DB, identity, password string) (*models.User, error) {
	var user *models.User
	var err error

	if isEmail(identity) {
		user, err = getUserByEmail(db, identity)
	} else {
		user, err = getUserByUsername(db, identity)
	}

	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, nil
	}

	if !checkPasswordHash(password, user.Password) {
		return nil, nil
	}

	return user, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(hashed), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func isEmail(identity string) bool {
	_, err := mail.ParseAddress(identity)
	return err == nil
}

func getUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where(&models.User{Email: email}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func getUserByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.Where(&models.User{Username: username}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
