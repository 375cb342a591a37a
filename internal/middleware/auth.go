package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"Caixinha/config"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const UserIDKey = "user_id"

// JwtService valida os tokens HS256 emitidos pelo provedor de autenticação.
// O subject do token é o id (UUID) do usuário.
type JwtService struct {
	secret []byte
	issuer string
}

func NewJwtService(cfg config.JWTConfig) (*JwtService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret não configurado")
	}
	return &JwtService{secret: []byte(cfg.Secret), issuer: cfg.Issuer}, nil
}

func (s *JwtService) GenerateToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JwtService) ParseToken(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, appErrors.NewAuthError("INVALID_TOKEN", "Token inválido ou expirado")
	}
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return uuid.Nil, appErrors.NewAuthError("INVALID_TOKEN", "Emissor do token inválido")
	}

	userID, err := pkg.ParseUserID(claims.Subject)
	if err != nil {
		return uuid.Nil, appErrors.NewAuthError("INVALID_TOKEN", "Token sem usuário válido")
	}
	return userID, nil
}

func AuthMiddleware(jwtSvc *JwtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortWithError(c, appErrors.NewAuthError("UNAUTHORIZED", "Token de acesso ausente"))
			return
		}

		userID, err := jwtSvc.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortWithError(c, appErrors.FromError(err))
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
