package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"floorPilot/domain"
	"floorPilot/pkg/logger"

	"github.com/pobyzaarif/goshortcute"
)

// AppRepository contract interface
type AppRepository interface {
	Create(ctx context.Context, app *domain.App) error
	FindByID(ctx context.Context, id uint) (domain.App, error)
	FindBySDKKey(ctx context.Context, sdkKey string) (domain.App, error)
	FindAll(ctx context.Context) ([]domain.App, error)
	UpdateSDKKey(ctx context.Context, id uint, sdkKey string) error
	SetActive(ctx context.Context, id uint, active bool) error
}

type appService struct {
	appRepo      AppRepository
	sdkKeySecret string
}

func NewAppService(appRepo AppRepository, sdkKeySecret string) *appService {
	return &appService{
		appRepo:      appRepo,
		sdkKeySecret: sdkKeySecret,
	}
}

func (s *appService) GetAllApps(ctx context.Context) ([]domain.App, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all apps")
		return nil, fmt.Errorf("context error: %w", err)
	}

	apps, err := s.appRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find all apps", err)
		return nil, err
	}

	return apps, nil
}

func (s *appService) GetAppByID(ctx context.Context, id uint) (domain.App, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get app by id")
		return domain.App{}, fmt.Errorf("context error: %w", err)
	}

	if id == 0 {
		logger.Error("invalid app id")
		return domain.App{}, errors.New("invalid app id")
	}

	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find app by id", err)
		return domain.App{}, err
	}

	return app, nil
}

// RegisterApp creates the registry row and issues the first SDK key in one
// go, so a fresh integration can call the data plane immediately.
func (s *appService) RegisterApp(ctx context.Context, app *domain.App) (*domain.App, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when register app")
		return nil, fmt.Errorf("context error: %w", err)
	}

	// Validation
	if app.Name == "" {
		logger.Error("Invalid app data: name is required")
		return nil, errors.New("app name is required")
	}

	if app.BundleID == "" {
		logger.Error("Invalid app data: bundle id is required")
		return nil, errors.New("bundle id is required")
	}

	app.Active = true
	if err := s.appRepo.Create(ctx, app); err != nil {
		logger.Error("failed to create new app", err)
		return nil, fmt.Errorf("failed to create app: %w", err)
	}

	sdkKey, err := s.IssueSDKKey(ctx, app.ID)
	if err != nil {
		logger.Error("failed to issue initial sdk key", err)
		return nil, err
	}
	app.SDKKey = sdkKey

	logger.Info("app registered successfully", "app_id", app.ID, "bundle_id", app.BundleID)

	return app, nil
}

// IssueSDKKey mints a fresh key for the app and stores it, revoking whatever
// key was issued before. The key is AES-CBC over "appID|issuedAt", carried
// base64-encoded.
func (s *appService) IssueSDKKey(ctx context.Context, id uint) (string, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when issuing sdk key")
		return "", fmt.Errorf("context error: %w", err)
	}

	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("app not found for sdk key issuance", err)
		return "", errors.New("app not found")
	}

	payload := fmt.Sprintf("%v|%v", app.ID, time.Now().Unix())
	payloadEncrypt, err := goshortcute.AESCBCEncrypt([]byte(payload), []byte(s.sdkKeySecret))
	if err != nil {
		logger.Error("failed to encrypt sdk key payload", err)
		return "", errors.New("failed to issue sdk key")
	}
	sdkKey := goshortcute.StringtoBase64Encode(payloadEncrypt)

	if err := s.appRepo.UpdateSDKKey(ctx, app.ID, sdkKey); err != nil {
		logger.Error("failed to store sdk key", err)
		return "", fmt.Errorf("failed to store sdk key: %w", err)
	}

	logger.Info("sdk key issued", "app_id", app.ID)

	return sdkKey, nil
}

// ValidateSDKKey decodes and decrypts a presented key, then checks that it
// is the key currently on file for an active app. Rotated-away keys fail the
// last check even though they still decrypt.
func (s *appService) ValidateSDKKey(ctx context.Context, sdkKey string) (domain.App, error) {
	if sdkKey == "" {
		return domain.App{}, errors.New("missing sdk key")
	}

	strDecode := goshortcute.StringtoBase64Decode(sdkKey)
	payloadDecrypt, err := goshortcute.AESCBCDecrypt([]byte(strDecode), []byte(s.sdkKeySecret))
	if err != nil {
		logger.Warn("sdk key decrypt failed", err)
		return domain.App{}, errors.New("invalid sdk key")
	}

	parts := strings.Split(payloadDecrypt, "|")
	if len(parts) != 2 {
		logger.Warn("sdk key has malformed payload")
		return domain.App{}, errors.New("invalid sdk key")
	}

	appID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		logger.Warn("sdk key has malformed app id", err)
		return domain.App{}, errors.New("invalid sdk key")
	}

	app, err := s.appRepo.FindByID(ctx, uint(appID))
	if err != nil {
		logger.Warn("sdk key references unknown app", err)
		return domain.App{}, errors.New("invalid sdk key")
	}

	if !app.Active {
		return domain.App{}, errors.New("app is deactivated")
	}

	if app.SDKKey != sdkKey {
		return domain.App{}, errors.New("sdk key has been rotated")
	}

	return app, nil
}

func (s *appService) SetAppActive(ctx context.Context, id uint, active bool) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating app")
		return fmt.Errorf("context error: %w", err)
	}

	if id == 0 {
		logger.Error("invalid app id")
		return errors.New("invalid app id")
	}

	if err := s.appRepo.SetActive(ctx, id, active); err != nil {
		logger.Error("failed to update app", err)
		return err
	}

	logger.Info("app active flag updated", "app_id", id, "active", active)

	return nil
}
