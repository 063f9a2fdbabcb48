package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type SessionData struct {
	OperatorID string    `json:"operator_id"`
	Role       string    `json:"role"`
	Token      string    `json:"token"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{
		client: client,
	}
}

func (r *SessionRepository) StoreSession(ctx context.Context, operatorID, token, role, ipAddress, userAgent string, ttl time.Duration) error {
	// key format: "session:operator:{operator_id}"
	key := fmt.Sprintf("session:operator:%s", operatorID)

	now := time.Now()
	data := SessionData{
		OperatorID: operatorID,
		Role:       role,
		Token:      token,
		IssuedAt:   now,
		ExpiresAt:  now.Add(ttl),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	err = r.client.Set(ctx, key, jsonData, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}

	// store a reverse lookup token -> operator_id for quick validation
	tokenKey := fmt.Sprintf("session:lookup:%s", token)
	err = r.client.Set(ctx, tokenKey, operatorID, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to store session lookup: %w", err)
	}

	return nil
}

// GetSessionData retrieve session data by operator ID
func (r *SessionRepository) GetSessionData(ctx context.Context, operatorID string) (*SessionData, error) {
	key := fmt.Sprintf("session:operator:%s", operatorID)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.New("session not found")
		}
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var sessionData SessionData
	err = json.Unmarshal([]byte(val), &sessionData)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return &sessionData, nil
}

// ValidateSession checks if a token exists and is valid
func (r *SessionRepository) ValidateSession(ctx context.Context, token string) (string, error) {
	tokenKey := fmt.Sprintf("session:lookup:%s", token)

	operatorID, err := r.client.Get(ctx, tokenKey).Result()
	if err != nil {
		if err == redis.Nil {
			return "", errors.New("session not found or expired")
		}
		return "", fmt.Errorf("failed to validate session: %w", err)
	}

	return operatorID, nil
}

// DeleteSession removes both the session and its reverse lookup (logout)
func (r *SessionRepository) DeleteSession(ctx context.Context, operatorID, token string) error {
	key := fmt.Sprintf("session:operator:%s", operatorID)
	tokenKey := fmt.Sprintf("session:lookup:%s", token)

	if err := r.client.Del(ctx, key, tokenKey).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// RefreshSessionTTL extends the session expiration time
func (r *SessionRepository) RefreshSessionTTL(ctx context.Context, operatorID string, newTTL time.Duration) error {
	key := fmt.Sprintf("session:operator:%s", operatorID)

	// check if exists
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check session existence: %w", err)
	}

	if exists == 0 {
		return errors.New("session not found")
	}

	// update TTL
	err = r.client.Expire(ctx, key, newTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to refresh session TTL: %w", err)
	}

	// update the lookup key TTL
	sessionData, err := r.GetSessionData(ctx, operatorID)
	if err != nil {
		return err
	}

	tokenKey := fmt.Sprintf("session:lookup:%s", sessionData.Token)
	err = r.client.Expire(ctx, tokenKey, newTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to refresh lookup TTL: %w", err)
	}

	return nil
}
