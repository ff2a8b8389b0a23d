package services

import (
	"errors"
	"time"

	"github.com/alok-bhadauria/WatchParty/internal/models"
	"github.com/alok-bhadauria/WatchParty/internal/party"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: []byte(jwtSecret)}
}

func (s *AuthService) Register(username, email, displayName, password, avatar string) (*models.User, string, error) {
	var existing models.User
	if err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error; err == nil {
		return nil, "", errors.New("email or username already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		PublicID:     uuid.NewString(),
		Username:     username,
		Email:        email,
		DisplayName:  displayName,
		Avatar:       avatar,
		PasswordHash: string(hash),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, "", err
	}

	token, err := s.GenerateToken(&user)
	return &user, token, err
}

// Login accepts either a username or an email as the identifier.
func (s *AuthService) Login(identifier, password string) (*models.User, string, error) {
	var user models.User
	if err := s.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error; err != nil {
		return nil, "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", errors.New("invalid credentials")
	}

	token, err := s.GenerateToken(&user)
	return &user, token, err
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub": user.PublicID,
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("invalid subject in token")
	}

	return sub, nil
}

func (s *AuthService) GetUser(publicID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("public_id = ?", publicID).First(&user).Error; err != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}

// IdentityFromToken is the lookup the connection gateway consumes: a valid JWT
// resolves to the registered user's identity, an empty token becomes a fresh
// guest identity, anything else fails with party.ErrInvalidToken.
func (s *AuthService) IdentityFromToken(token, displayName, avatar string) (party.Identity, error) {
	if token == "" {
		if displayName == "" {
			displayName = "Guest"
		}
		return party.Identity{
			UserID:      uuid.NewString(),
			DisplayName: displayName,
			Avatar:      avatar,
			Guest:       true,
		}, nil
	}

	publicID, err := s.ValidateToken(token)
	if err != nil {
		return party.Identity{}, party.ErrInvalidToken
	}
	user, err := s.GetUser(publicID)
	if err != nil {
		return party.Identity{}, party.ErrInvalidToken
	}

	name := user.DisplayName
	if displayName != "" {
		name = displayName
	}
	av := user.Avatar
	if avatar != "" {
		av = avatar
	}
	return party.Identity{
		UserID:      user.PublicID,
		DisplayName: name,
		Avatar:      av,
	}, nil
}
