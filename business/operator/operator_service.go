package operator

import (
	"context"
	"errors"
	"strconv"
	"time"

	"floorPilot/domain"
	"floorPilot/pkg/logger"
	"floorPilot/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// OperatorRepository contract interface
type OperatorRepository interface {
	Create(ctx context.Context, operator *domain.Operator) error
	FindByID(ctx context.Context, id uint) (domain.Operator, error)
	FindByEmail(ctx context.Context, email string) (domain.Operator, error)
	FindAll(ctx context.Context) ([]domain.Operator, error)
	Update(ctx context.Context, operator *domain.Operator) error
	Delete(ctx context.Context, id uint) error
}

// SessionRepository contract interface (Redis-backed)
type SessionRepository interface {
	StoreSession(ctx context.Context, operatorID, token, role, ipAddress, userAgent string, ttl time.Duration) error
	ValidateSession(ctx context.Context, token string) (string, error)
	DeleteSession(ctx context.Context, operatorID, token string) error
}

type operatorService struct {
	operatorRepo OperatorRepository
	sessionRepo  SessionRepository
	validate     *validator.Validate
}

const (
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
)

var validRoles = map[string]bool{
	RoleViewer: true,
	RoleAdmin:  true,
}

func NewOperatorService(
	operatorRepo OperatorRepository,
	sessionRepo SessionRepository,
	validate *validator.Validate,
) *operatorService {
	return &operatorService{
		operatorRepo: operatorRepo,
		sessionRepo:  sessionRepo,
		validate:     validate,
	}
}

// Register creates a console account. There is no self-service signup; an
// admin calls this from the console.
func (s *operatorService) Register(ctx context.Context, operator *domain.Operator) (domain.Operator, error) {
	if err := s.validate.Var(operator.Email, "required,email"); err != nil {
		logger.Error("Invalid email format", err)
		return domain.Operator{}, errors.New("invalid email format")
	}

	if err := s.validate.Var(operator.Password, "required,min=6"); err != nil {
		logger.Error("Invalid operator password", err)
		return domain.Operator{}, errors.New("password must be at least 6 characters")
	}

	if operator.Role == "" {
		operator.Role = RoleViewer
	}
	if !validRoles[operator.Role] {
		return domain.Operator{}, errors.New("invalid role")
	}

	// Check if email already exists
	existing, err := s.operatorRepo.FindByEmail(ctx, operator.Email)
	if err == nil && existing.ID > 0 {
		logger.Error("Email already exists")
		return domain.Operator{}, errors.New("email already exists")
	}

	passwordHash, err := utils.HashPassword(operator.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.Operator{}, errors.New("failed to hash password")
	}

	newOperator := domain.Operator{
		FullName: operator.FullName,
		Email:    operator.Email,
		Password: string(passwordHash),
		Role:     operator.Role,
	}

	if err := s.operatorRepo.Create(ctx, &newOperator); err != nil {
		logger.Error("Failed to create new operator")
		return domain.Operator{}, err
	}

	newOperator.Password = ""
	return newOperator, nil
}

// Login checks credentials, issues a JWT, and stores the session in Redis so
// the token can be revoked before it expires.
func (s *operatorService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.Operator, error) {
	operator, err := s.operatorRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Invalid operator credentials", err)
		return "", domain.Operator{}, errors.New("invalid credentials")
	}

	ok := utils.CheckPassword(password, operator.Password)
	if !ok {
		logger.Error("Operator password incorrect")
		return "", domain.Operator{}, errors.New("invalid credentials")
	}

	operatorIDStr := strconv.FormatUint(uint64(operator.ID), 10)
	token, err := utils.GenerateJWT(operatorIDStr, operator.Role)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return "", domain.Operator{}, errors.New("failed to generate token")
	}

	if err := s.sessionRepo.StoreSession(ctx, operatorIDStr, token, operator.Role, ipAddress, userAgent, utils.TokenTTL); err != nil {
		logger.Error("Failed to store session", err)
		return "", domain.Operator{}, errors.New("failed to store session")
	}

	operator.Password = ""
	return token, operator, nil
}

// ValidateTokenFromRedis is the middleware hook: returns the operator id the
// token belongs to, or an error when the session is gone.
func (s *operatorService) ValidateTokenFromRedis(ctx context.Context, token string) (string, error) {
	return s.sessionRepo.ValidateSession(ctx, token)
}

// RefreshToken swaps a still-valid session for a fresh token, invalidating
// the old one.
func (s *operatorService) RefreshToken(ctx context.Context, oldToken, ipAddress, userAgent string) (string, domain.Operator, error) {
	operatorIDStr, err := s.sessionRepo.ValidateSession(ctx, oldToken)
	if err != nil {
		logger.Error("Failed to validate session for refresh", err)
		return "", domain.Operator{}, errors.New("session expired or invalid")
	}

	operatorID, err := strconv.ParseUint(operatorIDStr, 10, 64)
	if err != nil {
		logger.Error("Invalid operator id in session", err)
		return "", domain.Operator{}, errors.New("session expired or invalid")
	}

	operator, err := s.operatorRepo.FindByID(ctx, uint(operatorID))
	if err != nil {
		logger.Error("Operator not found for refresh", err)
		return "", domain.Operator{}, errors.New("operator not found")
	}

	newToken, err := utils.GenerateJWT(operatorIDStr, operator.Role)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return "", domain.Operator{}, errors.New("failed to generate token")
	}

	// old session goes first so the two tokens never overlap
	if err := s.sessionRepo.DeleteSession(ctx, operatorIDStr, oldToken); err != nil {
		logger.Warn("Failed to delete old session", err)
	}

	if err := s.sessionRepo.StoreSession(ctx, operatorIDStr, newToken, operator.Role, ipAddress, userAgent, utils.TokenTTL); err != nil {
		logger.Error("Failed to store refreshed session", err)
		return "", domain.Operator{}, errors.New("failed to store session")
	}

	operator.Password = ""
	return newToken, operator, nil
}

// Logout revokes the session in Redis.
func (s *operatorService) Logout(ctx context.Context, operatorID uint, token string) error {
	operatorIDStr := strconv.FormatUint(uint64(operatorID), 10)

	if err := s.sessionRepo.DeleteSession(ctx, operatorIDStr, token); err != nil {
		logger.Error("Failed to delete session", err)
		return err
	}

	return nil
}

// GetOperatorByID retrieves an operator by ID
func (s *operatorService) GetOperatorByID(ctx context.Context, id uint) (domain.Operator, error) {
	operator, err := s.operatorRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get operator by ID", err)
		return domain.Operator{}, err
	}

	operator.Password = ""
	return operator, nil
}

// GetAllOperators retrieves all operators
func (s *operatorService) GetAllOperators(ctx context.Context) ([]domain.Operator, error) {
	operators, err := s.operatorRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to get all operators", err)
		return nil, err
	}

	for i := range operators {
		operators[i].Password = ""
	}

	return operators, nil
}

// UpdateOperator updates operator information
func (s *operatorService) UpdateOperator(ctx context.Context, id uint, updateData *domain.Operator) (domain.Operator, error) {
	existing, err := s.operatorRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Operator not found for update", err)
		return domain.Operator{}, err
	}

	if updateData.FullName != "" {
		existing.FullName = updateData.FullName
	}

	if updateData.Password != "" {
		if err := s.validate.Var(updateData.Password, "required,min=6"); err != nil {
			logger.Error("Invalid password", err)
			return domain.Operator{}, errors.New("password must be at least 6 characters")
		}

		passwordHash, err := utils.HashPassword(updateData.Password)
		if err != nil {
			logger.Error("Failed to hash password", err)
			return domain.Operator{}, errors.New("failed to hash password")
		}
		existing.Password = string(passwordHash)
	}

	if updateData.Role != "" {
		if !validRoles[updateData.Role] {
			return domain.Operator{}, errors.New("invalid role")
		}
		existing.Role = updateData.Role
	}

	if err := s.operatorRepo.Update(ctx, &existing); err != nil {
		logger.Error("Failed to update operator", err)
		return domain.Operator{}, err
	}

	existing.Password = ""
	return existing, nil
}

// DeleteOperator soft deletes an operator
func (s *operatorService) DeleteOperator(ctx context.Context, id uint) error {
	_, err := s.operatorRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Operator not found for deletion", err)
		return err
	}

	if err := s.operatorRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete operator", err)
		return err
	}

	return nil
}
