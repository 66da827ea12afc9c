package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	ri "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"FinTrack/config"
	"FinTrack/internal/cache"
	"FinTrack/internal/model"
	"FinTrack/internal/model/dto"
	"FinTrack/internal/onboarding"
	"FinTrack/internal/queue"
	"FinTrack/internal/repository"
	pkgerrors "FinTrack/pkg/errors"
	"FinTrack/pkg/logger"
	"FinTrack/pkg/metrics"
	"FinTrack/pkg/slider"
	"FinTrack/pkg/sms"
	"FinTrack/storage/database"
	"FinTrack/utils"
)

const (
	codeCooldown = 60 * time.Second
	codeLength   = 6
)

// StatusInvalidator 步骤写入后清理注册状态缓存
type StatusInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// EventPublisher 引导事件发布
type EventPublisher interface {
	PublishStepCompleted(ctx context.Context, userID int64, step string) error
	PublishOnboardingCompleted(ctx context.Context, userID int64) error
}

var (
	stepService *StepService
	stepOnce    sync.Once
)

func Steps() *StepService {
	stepOnce.Do(func() {
		stepService = NewStepService(
			repository.NewGormStore(database.DB()),
			Registration(),
			queue.DefaultProducer(),
		)
	})
	return stepService
}

func SetSteps(s *StepService) {
	stepOnce.Do(func() {})
	stepService = s
}

// StepService 引导四个步骤的写入
type StepService struct {
	store       repository.Store
	invalidator StatusInvalidator
	events      EventPublisher
	now         func() time.Time
}

func NewStepService(store repository.Store, invalidator StatusInvalidator, events EventPublisher) *StepService {
	return &StepService{
		store:       store,
		invalidator: invalidator,
		events:      events,
		now:         time.Now,
	}
}

// CreateProfile POST /v1/user/users
func (s *StepService) CreateProfile(ctx context.Context, userID string, req dto.CreateProfileRequest) (*dto.ProfileData, error) {
	publicID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	req.Username = strings.TrimSpace(req.Username)
	if !utils.MinLength(req.Username, 3) {
		return nil, pkgerrors.UsernameInvalid
	}
	if !utils.MinLength(req.FirstName, 2) || !utils.MinLength(req.LastName, 2) || !utils.MinLength(req.DisplayName, 2) {
		return nil, pkgerrors.NameInvalid
	}
	if !utils.ValidateEmail(req.RecoveryEmail) {
		return nil, pkgerrors.RecoveryEmailInvalid
	}

	completion, err := s.completion(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if completion.IsUser {
		return nil, pkgerrors.StepAlreadyCompleted
	}

	taken, err := s.store.UsernameTaken(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, pkgerrors.UsernameTaken
	}

	user := &model.User{
		PublicID:      publicID,
		Username:      req.Username,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		DisplayName:   strings.TrimSpace(req.DisplayName),
		RecoveryEmail: strings.TrimSpace(req.RecoveryEmail),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// 并发提交时由唯一索引兜底
			return nil, pkgerrors.UsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.completed(ctx, publicID, onboarding.StepProfile, false)

	return &dto.ProfileData{
		UserID:        userID,
		Username:      user.Username,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		DisplayName:   user.DisplayName,
		RecoveryEmail: user.RecoveryEmail,
	}, nil
}

// AddAddress POST /v1/user/address，重复提交覆盖旧地址
func (s *StepService) AddAddress(ctx context.Context, userID string, req dto.AddAddressRequest) (*dto.AddressData, error) {
	publicID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	line := strings.TrimSpace(req.Address)
	if line == "" {
		return nil, pkgerrors.AddressInvalid
	}

	if err := s.require(ctx, publicID, func(c *model.Completion) bool { return c.IsUser }); err != nil {
		return nil, err
	}

	ok, err := s.store.CountryExists(ctx, req.CountryID)
	if err != nil {
		return nil, fmt.Errorf("failed to check country: %w", err)
	}
	if !ok {
		return nil, pkgerrors.CountryNotFound
	}

	city, err := s.store.GetCity(ctx, req.CityID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && city.CountryID != req.CountryID) {
		return nil, pkgerrors.CityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load city: %w", err)
	}

	address := &model.Address{
		UserID:    publicID,
		CountryID: req.CountryID,
		CityID:    req.CityID,
		Line:      line,
	}
	if err := s.store.UpsertAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to save address: %w", err)
	}

	s.completed(ctx, publicID, onboarding.StepAddress, false)

	return &dto.AddressData{
		UserID:    userID,
		CountryID: address.CountryID,
		CityID:    address.CityID,
		Address:   address.Line,
	}, nil
}

// VerifySlider 滑块验证通过后签发一次性 token，用于发送验证码
func (s *StepService) VerifySlider(ctx context.Context, req dto.VerifySliderRequest, remoteIP string) (*dto.VerifySliderData, error) {
	phone := utils.NormalizePhone(req.PhoneNumber)
	if !utils.ValidatePhone(phone) {
		return nil, pkgerrors.InvalidPhone
	}

	ok, err := slider.GetClient().Verify(ctx, req.CaptchaVerifyParam, remoteIP, config.Cfg.CaptchaSceneID)
	if err != nil || !ok {
		logger.Logger.Warn("Slider verification failed",
			zap.String("phone", utils.MaskPhone(phone)),
			zap.String("remote_ip", remoteIP),
			zap.Error(err),
		)
		return nil, pkgerrors.VerificationSliderFailed
	}

	token, err := cache.SetSliderVerificationToken(ctx, utils.HashPhone(phone))
	if err != nil {
		return nil, fmt.Errorf("failed to store slider token: %w", err)
	}

	return &dto.VerifySliderData{
		SliderToken: token,
		ExpiresIn:   int(cache.SliderTokenTTL.Seconds()),
	}, nil
}

// SendContactCode POST /v1/user/contact/code
func (s *StepService) SendContactCode(ctx context.Context, userID string, req dto.SendContactCodeRequest) (*dto.SendContactCodeData, error) {
	publicID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	phone := utils.NormalizePhone(req.PhoneNumber)
	if !utils.ValidatePhone(phone) {
		return nil, pkgerrors.InvalidPhone
	}

	if err := s.require(ctx, publicID, func(c *model.Completion) bool { return c.IsAddress }); err != nil {
		return nil, err
	}

	phoneHash := utils.HashPhone(phone)
	if err := s.checkPhoneOwner(ctx, publicID, phoneHash); err != nil {
		return nil, err
	}

	lockKey := "contact_code:" + phoneHash
	lock, err := cache.TryLock(ctx, lockKey, codeCooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire code lock: %w", err)
	}
	if lock == nil {
		return nil, pkgerrors.CaptchaRateLimited
	}

	count, err := cache.IncrCaptchaCount(ctx, phoneHash)
	if err != nil {
		_ = lock.Release(ctx)
		return nil, fmt.Errorf("failed to count captcha: %w", err)
	}
	if count > config.Cfg.CaptchaMaxDaily {
		return nil, pkgerrors.CaptchaRateLimited
	}
	if count > config.Cfg.CaptchaSliderThreshold && !cache.ValidateSliderVerificationToken(ctx, phoneHash, req.SliderToken) {
		_ = lock.Release(ctx)
		return nil, pkgerrors.VerificationSliderRequired
	}

	code, err := generateCode()
	if err != nil {
		_ = lock.Release(ctx)
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}
	if err := cache.SetCaptcha(ctx, phoneHash, cache.SceneContact, code); err != nil {
		_ = lock.Release(ctx)
		return nil, fmt.Errorf("failed to store captcha: %w", err)
	}

	if err := sms.SendCaptchaSMS(ctx, phone, code); err != nil {
		logger.Ctx(ctx).Error("Failed to send contact code",
			zap.String("user_id", userID),
			zap.String("phone", utils.MaskPhone(phone)),
			zap.Error(err),
		)
		_ = cache.DeleteCaptcha(ctx, phoneHash, cache.SceneContact)
		_ = lock.Release(ctx)
		return nil, pkgerrors.SMSUnavailable
	}

	logger.Logger.Info("Contact code sent",
		zap.String("user_id", userID),
		zap.String("phone", utils.MaskPhone(phone)),
		zap.Int("daily_count", count),
	)

	return &dto.SendContactCodeData{ExpiresIn: config.Cfg.CaptchaExpireSeconds}, nil
}

// AddContact POST /v1/user/contact
func (s *StepService) AddContact(ctx context.Context, userID string, req dto.AddContactRequest) (*dto.ContactData, error) {
	publicID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	phone := utils.NormalizePhone(req.PhoneNumber)
	if !utils.ValidatePhone(phone) {
		return nil, pkgerrors.InvalidPhone
	}

	if err := s.require(ctx, publicID, func(c *model.Completion) bool { return c.IsAddress }); err != nil {
		return nil, err
	}

	phoneHash := utils.HashPhone(phone)
	if err := s.checkPhoneOwner(ctx, publicID, phoneHash); err != nil {
		return nil, err
	}

	verified := false
	if config.Cfg.ContactVerifyPhone {
		if err := verifyCode(ctx, phoneHash, req.Code); err != nil {
			return nil, err
		}
		verified = true
	}

	cipherText, err := utils.EncryptPhone(phone)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt phone: %w", err)
	}

	contact := &model.Contact{
		UserID:      publicID,
		PhoneCipher: cipherText,
		PhoneHash:   phoneHash,
		Verified:    verified,
	}
	if verified {
		now := s.now()
		contact.VerifiedAt = &now
	}

	if err := s.store.UpsertContact(ctx, contact); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, pkgerrors.PhoneAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to save contact: %w", err)
	}

	if verified {
		_ = cache.DeleteCaptcha(ctx, phoneHash, cache.SceneContact)
	}

	s.completed(ctx, publicID, onboarding.StepContact, false)

	return &dto.ContactData{
		UserID:       userID,
		NumberMasked: utils.MaskPhone(phone),
		Verified:     verified,
	}, nil
}

// AddSettings POST /v1/user/settings，引导的最后一步
func (s *StepService) AddSettings(ctx context.Context, userID string, req dto.AddSettingsRequest) (*dto.SettingsData, error) {
	publicID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	theme := model.Theme(strings.ToLower(strings.TrimSpace(req.ThemePreference)))
	if !theme.Valid() {
		return nil, pkgerrors.ThemeInvalid
	}
	if req.BaseCurrencyID == 0 {
		req.BaseCurrencyID = model.DefaultBaseCurrencyID
	}

	completion, err := s.completion(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if !completion.IsContact {
		return nil, pkgerrors.StepPrerequisiteMissing
	}

	ok, err := s.store.CurrencyExists(ctx, req.BaseCurrencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check currency: %w", err)
	}
	if !ok {
		return nil, pkgerrors.CurrencyNotFound
	}

	ok, err = s.store.LanguageExists(ctx, req.LanguageID)
	if err != nil {
		return nil, fmt.Errorf("failed to check language: %w", err)
	}
	if !ok {
		return nil, pkgerrors.LanguageNotFound
	}

	settings := &model.Settings{
		UserID:          publicID,
		BaseCurrencyID:  req.BaseCurrencyID,
		LanguageID:      req.LanguageID,
		ThemePreference: theme,
	}
	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.completed(ctx, publicID, onboarding.StepSettings, !completion.IsSettings)

	return &dto.SettingsData{
		UserID:          userID,
		BaseCurrencyID:  settings.BaseCurrencyID,
		ThemePreference: string(settings.ThemePreference),
		LanguageID:      settings.LanguageID,
	}, nil
}

// SendWelcome 引导完成后给已验证的手机号发送欢迎短信，由 worker 调用
func (s *StepService) SendWelcome(ctx context.Context, userID int64) error {
	contact, err := s.store.GetContact(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return pkgerrors.Skip("contact not found")
	}
	if err != nil {
		return fmt.Errorf("failed to load contact: %w", err)
	}
	if !contact.Verified {
		return pkgerrors.Skip("contact not verified")
	}

	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return pkgerrors.Skip("user not found")
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	phone, err := utils.DecryptPhone(contact.PhoneCipher)
	if err != nil {
		return pkgerrors.Skip("phone cannot be decrypted")
	}

	return sms.SendWelcomeSMS(ctx, phone, user.DisplayName)
}

func (s *StepService) completion(ctx context.Context, publicID int64) (*model.Completion, error) {
	c, err := s.store.Completion(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completion: %w", err)
	}
	return c, nil
}

func (s *StepService) require(ctx context.Context, publicID int64, done func(*model.Completion) bool) error {
	c, err := s.completion(ctx, publicID)
	if err != nil {
		return err
	}
	if !done(c) {
		return pkgerrors.StepPrerequisiteMissing
	}
	return nil
}

func (s *StepService) checkPhoneOwner(ctx context.Context, publicID int64, phoneHash string) error {
	owner, err := s.store.PhoneOwner(ctx, phoneHash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check phone owner: %w", err)
	}
	if owner != publicID {
		return pkgerrors.PhoneAlreadyRegistered
	}
	return nil
}

// completed 写入成功后的收尾：清缓存、发事件、记指标，失败只记录日志
func (s *StepService) completed(ctx context.Context, publicID int64, step onboarding.Step, finished bool) {
	userID := strconv.FormatInt(publicID, 10)

	_ = s.invalidator.Invalidate(ctx, userID)

	if err := s.events.PublishStepCompleted(ctx, publicID, step.String()); err != nil {
		logger.Ctx(ctx).Error("Failed to publish step completed event",
			zap.String("user_id", userID),
			zap.String("step", step.String()),
			zap.Error(err),
		)
	}
	if finished {
		if err := s.events.PublishOnboardingCompleted(ctx, publicID); err != nil {
			logger.Ctx(ctx).Error("Failed to publish onboarding completed event",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	metrics.RecordStepCompleted(ctx, step.String())
	logger.Logger.Info("Onboarding step completed",
		zap.String("user_id", userID),
		zap.String("step", step.String()),
	)
}

func verifyCode(ctx context.Context, phoneHash, code string) error {
	if code == "" {
		return pkgerrors.VerificationCodeInvalid
	}
	stored, err := cache.GetCaptcha(ctx, phoneHash, cache.SceneContact)
	if errors.Is(err, ri.Nil) {
		return pkgerrors.VerificationCodeExpired
	}
	if err != nil {
		return fmt.Errorf("failed to load captcha: %w", err)
	}
	if stored != code {
		return pkgerrors.VerificationCodeInvalid
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n.Int64()), nil
}
