package v1

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/shenikar/guardian_response/internal/repository"
	"github.com/sirupsen/logrus"
)

const officerContextKey = "officer"

// APIKeyAuthMiddleware - middleware для аутентификации приложения охраняемого пользователя по API-ключу
func APIKeyAuthMiddleware(keys []string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			log.Warn("API key missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key required"})
			return
		}

		isValid := false
		for _, key := range keys {
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
				isValid = true
				break
			}
		}

		if !isValid {
			log.WithField("path", c.FullPath()).Warn("Invalid API key provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}

		c.Next()
	}
}

// ResponderAuthMiddleware проверяет bearer JWT и находит сотрудника по subject.
// Валидный токен без действующего сотрудника - 403.
func ResponderAuthMiddleware(secret []byte, officers OfficerDirectory, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			return
		}

		officerID, err := ParseResponderToken(secret, tokenString)
		if err != nil {
			log.WithError(err).Warn("Rejected responder token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		officer, err := officers.GetByID(c.Request.Context(), officerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.WithField("officer_id", officerID).Warn("Authenticated identity is not an officer")
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "responder is not a registered officer"})
				return
			}
			log.WithError(err).Error("Failed to look up officer")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !officer.IsActive {
			log.WithField("officer_id", officerID).Warn("Inactive officer rejected")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "officer is not active"})
			return
		}

		c.Set(officerContextKey, officer)
		c.Next()
	}
}

// IssueResponderToken подписывает HS256 токен с ID сотрудника в subject
func IssueResponderToken(secret []byte, officerID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   officerID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseResponderToken(secret []byte, tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject: %w", err)
	}
	return id, nil
}

func responderFrom(c *gin.Context) *models.Officer {
	v, ok := c.Get(officerContextKey)
	if !ok {
		return nil
	}
	officer, _ := v.(*models.Officer)
	return officer
}
