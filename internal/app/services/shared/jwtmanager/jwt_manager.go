package jwtmanager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medledger-service/internal/app/config"
	"medledger-service/internal/pkg/constvars"
	"medledger-service/internal/pkg/exceptions"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// JWTManager signs the service tokens attached to outbound store calls.
type JWTManager struct {
	log    *zap.Logger
	secret []byte
	ttl    time.Duration
}

// CreateTokenInput defines input parameters for token creation.
type CreateTokenInput struct {
	Subject string
}

// CreateTokenOutput contains the signed token string.
type CreateTokenOutput struct {
	Token string
}

func NewJWTManager(cfg *config.InternalConfig, log *zap.Logger) (*JWTManager, error) {
	secret := strings.TrimSpace(cfg.JWT.Secret)
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}
	ttl := time.Duration(cfg.JWT.ExpTimeInHour) * time.Hour
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTManager{
		log:    log,
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// CreateToken generates a signed HS256 token with standard claims and the
// given subject.
func (j *JWTManager) CreateToken(ctx context.Context, in *CreateTokenInput) (*CreateTokenOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if in == nil || strings.TrimSpace(in.Subject) == "" {
		return nil, fmt.Errorf("subject is required")
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": in.Subject,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(j.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		j.log.Error("JWTManager.CreateToken signing failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrTokenSign(err)
	}

	return &CreateTokenOutput{Token: signed}, nil
}
