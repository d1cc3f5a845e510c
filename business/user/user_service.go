package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"silleShop/domain"
	"silleShop/pkg/logger"
	"silleShop/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uint) error
	UpdateEmailVerification(ctx context.Context, id uint, isVerified bool) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) (err error)
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var validRoles = map[string]bool{
	RoleCustomer: true,
	RoleAdmin:    true,
}

const (
	verificationCodeTTL      = 5 // minutes
	SubjectRegisterAccount   = "Activate Your Account!"
	EmailBodyRegisterAccount = `Hello %v, activate your account by opening the link below</br></br>%v</br>note: the link is only valid for %v minutes`
)

type userService struct {
	userRepo                UserRepository
	validate                *validator.Validate
	notifRepo               NotificationRepository
	appEmailVerificationKey string
	appDeploymentUrl        string
}

func NewUserService(
	userRepo UserRepository,
	validate *validator.Validate,
	notifRepo NotificationRepository,
	appEmailVerificationKey string,
	appDeploymentUrl string,
) *userService {
	return &userService{
		userRepo:                userRepo,
		validate:                validate,
		notifRepo:               notifRepo,
		appEmailVerificationKey: appEmailVerificationKey,
		appDeploymentUrl:        appDeploymentUrl,
	}
}

func (s *userService) checkEmail(email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return errors.New("invalid email format")
	}
	return nil
}

func (s *userService) checkPassword(password string) error {
	if err := s.validate.Var(password, "required,min=6"); err != nil {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

// Register creates an unverified customer account and mails the activation
// link. A failed mail send does not roll the account back; the link can be
// re-requested by registering support later.
func (s *userService) Register(ctx context.Context, user *domain.User) (domain.User, error) {
	if err := s.checkEmail(user.Email); err != nil {
		logger.Error("register rejected", err)
		return domain.User{}, err
	}
	if err := s.checkPassword(user.Password); err != nil {
		logger.Error("register rejected", err)
		return domain.User{}, err
	}

	if existing, err := s.userRepo.FindByEmail(ctx, user.Email); err == nil && existing.ID > 0 {
		logger.Error("register rejected: email taken", "email", user.Email)
		return domain.User{}, errors.New("email already exists")
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("failed to hash password", err)
		return domain.User{}, errors.New("failed to hash password")
	}

	newUser := domain.User{
		FullName:   user.FullName,
		Email:      user.Email,
		Password:   string(passwordHash),
		IsVerified: false,
		Role:       RoleCustomer,
	}
	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("failed to create new user", err)
		return domain.User{}, err
	}

	if err := s.sendActivationEmail(newUser); err != nil {
		logger.Warn("failed to send verification email", "user_id", newUser.ID, "error", err)
	}

	newUser.Password = ""
	return newUser, nil
}

// sendActivationEmail encrypts "email|expiry" into the activation link and
// mails it.
func (s *userService) sendActivationEmail(user domain.User) error {
	expAt := time.Now().Add(verificationCodeTTL * time.Minute).Unix()

	code := fmt.Sprintf("%v|%v", user.Email, expAt)
	encrypted, err := goshortcute.AESCBCEncrypt([]byte(code), []byte(s.appEmailVerificationKey))
	if err != nil {
		return fmt.Errorf("failed to encrypt verification code: %w", err)
	}

	link := s.appDeploymentUrl + "/api/v1/users/email-verification/" + goshortcute.StringtoBase64Encode(encrypted)
	body := fmt.Sprintf(EmailBodyRegisterAccount, user.FullName, link, verificationCodeTTL)

	return s.notifRepo.SendEmail(user.FullName, user.Email, SubjectRegisterAccount, body)
}

// decodeVerificationCode reverses sendActivationEmail's encoding and checks
// the embedded expiry.
func (s *userService) decodeVerificationCode(encoded string) (string, error) {
	decrypted, err := goshortcute.AESCBCDecrypt([]byte(goshortcute.StringtoBase64Decode(encoded)), []byte(s.appEmailVerificationKey))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt verification code: %w", err)
	}

	parts := strings.Split(decrypted, "|")
	if len(parts) != 2 {
		return "", errors.New("malformed verification code")
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", errors.New("malformed verification code")
	}
	if time.Now().After(time.Unix(ts, 0)) {
		return "", errors.New("verification code expired")
	}

	return parts[0], nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("login failed", err)
		return "", domain.User{}, err
	}

	if !utils.CheckPassword(password, user.Password) {
		logger.Error("login failed: incorrect password", "user_id", user.ID)
		return "", domain.User{}, errors.New("incorrect password")
	}
	if !user.IsVerified {
		logger.Error("login failed: email not verified", "user_id", user.ID)
		return "", domain.User{}, errors.New("email address has not been verified")
	}

	token, err := utils.GenerateJWT(strconv.FormatUint(uint64(user.ID), 10), user.Role)
	if err != nil {
		logger.Error("failed to generate token", err)
		return "", domain.User{}, errors.New("failed to generate token")
	}

	user.Password = ""
	return token, user, nil
}

func (s *userService) VerifyEmail(ctx context.Context, code string) error {
	email, err := s.decodeVerificationCode(code)
	if err != nil {
		logger.Error("email verification failed", err)
		return errors.New("invalid or expired url")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("email verification failed", err)
		return errors.New("failed to get user by email")
	}
	if user.IsVerified {
		logger.Warn("email verification replayed", "user_id", user.ID)
		return errors.New("invalid or expired url")
	}

	if err := s.userRepo.UpdateEmailVerification(ctx, user.ID, true); err != nil {
		logger.Error("failed to mark email verified", err)
		return err
	}

	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to get user by id", err)
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		logger.Error("failed to get all users", err)
		return nil, err
	}

	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// UpdateUser applies the non-empty fields of updateData onto the stored user.
func (s *userService) UpdateUser(ctx context.Context, id uint, updateData *domain.User) (domain.User, error) {
	existing, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("user not found for update", err)
		return domain.User{}, err
	}

	if updateData.FullName != "" {
		existing.FullName = updateData.FullName
	}

	if updateData.Email != "" {
		if err := s.checkEmail(updateData.Email); err != nil {
			logger.Error("update rejected", err)
			return domain.User{}, err
		}
		if other, err := s.userRepo.FindByEmail(ctx, updateData.Email); err == nil && other.ID != id {
			logger.Error("update rejected: email taken", "email", updateData.Email)
			return domain.User{}, errors.New("email already exists")
		}
		existing.Email = updateData.Email
	}

	if updateData.Password != "" {
		if err := s.checkPassword(updateData.Password); err != nil {
			logger.Error("update rejected", err)
			return domain.User{}, err
		}
		passwordHash, err := utils.HashPassword(updateData.Password)
		if err != nil {
			logger.Error("failed to hash password", err)
			return domain.User{}, errors.New("failed to hash password")
		}
		existing.Password = string(passwordHash)
	}

	if updateData.Role != "" {
		if !validRoles[updateData.Role] {
			return domain.User{}, errors.New("invalid role")
		}
		existing.Role = updateData.Role
	}

	if err := s.userRepo.Update(ctx, &existing); err != nil {
		logger.Error("failed to update user", err)
		return domain.User{}, err
	}

	existing.Password = ""
	return existing, nil
}

// DeleteUser removes a user together with their survey, ratings and matches.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		logger.Error("user not found for deletion", err)
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete user", err)
		return err
	}

	return nil
}
