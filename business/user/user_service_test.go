//go:build !integration

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"silleShop/domain"
	"silleShop/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"
)

const (
	testVerificationKey = "0123456789abcdef0123456789abcdef"
	testDeploymentURL   = "http://localhost:8080"
)

type fakeUserRepo struct {
	users   map[uint]domain.User
	nextID  uint
	updated *domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]domain.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uint) (domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return domain.User{}, errors.New("user not found")
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, errors.New("user not found")
}

func (f *fakeUserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return errors.New("user not found")
	}
	f.users[user.ID] = *user
	copied := *user
	f.updated = &copied
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.users[id]; !ok {
		return errors.New("user not found or already deleted")
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) UpdateEmailVerification(ctx context.Context, id uint, isVerified bool) error {
	user, ok := f.users[id]
	if !ok {
		return errors.New("user not found or status already updated")
	}
	user.IsVerified = isVerified
	f.users[id] = user
	return nil
}

type sentMail struct {
	toEmail string
	subject string
	body    string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) SendEmail(toName, toEmail, subject, message string) error {
	f.sent = append(f.sent, sentMail{toEmail: toEmail, subject: subject, body: message})
	return nil
}

func newTestUserService(repo *fakeUserRepo, mailer *fakeMailer) *userService {
	return NewUserService(repo, validator.New(), mailer, testVerificationKey, testDeploymentURL)
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string, verified bool) domain.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := domain.User{
		FullName:   "Test User",
		Email:      email,
		Password:   string(hash),
		IsVerified: verified,
		Role:       RoleCustomer,
	}
	if err := repo.Create(context.Background(), &user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestRegister_RejectsBadCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeMailer{})
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"missing email", "", "secret123"},
		{"malformed email", "not-an-email", "secret123"},
		{"short password", "a@b.com", "12345"},
	}
	for _, tc := range cases {
		_, err := svc.Register(ctx, &domain.User{Email: tc.email, Password: tc.password})
		if err == nil {
			t.Errorf("%s: register accepted", tc.name)
		}
	}

	if len(repo.users) != 0 {
		t.Errorf("rejected registration still created users: %d", len(repo.users))
	}
}

func TestRegister_CreatesUnverifiedCustomerAndSendsLink(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newTestUserService(repo, mailer)

	created, err := svc.Register(context.Background(), &domain.User{
		FullName: "Ana",
		Email:    "ana@example.com",
		Password: "secret123",
		Role:     RoleAdmin, // must be ignored
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Role != RoleCustomer || created.IsVerified {
		t.Errorf("new account = role %q verified %v, want unverified customer", created.Role, created.IsVerified)
	}
	if created.Password != "" {
		t.Error("password leaked in register response")
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if mail.toEmail != "ana@example.com" || mail.subject != SubjectRegisterAccount {
		t.Errorf("unexpected mail: %+v", mail)
	}
	if !strings.Contains(mail.body, testDeploymentURL+"/api/v1/users/email-verification/") {
		t.Errorf("mail body is missing the activation link: %s", mail.body)
	}
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeMailer{})
	seedUser(t, repo, "ana@example.com", "secret123", true)

	_, err := svc.Register(context.Background(), &domain.User{Email: "ana@example.com", Password: "secret123"})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("duplicate email accepted: %v", err)
	}
}

func TestLogin_RequiresVerifiedEmail(t *testing.T) {
	utils.SetJWTSecret("test-secret")

	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeMailer{})
	ctx := context.Background()

	unverified := seedUser(t, repo, "new@example.com", "secret123", false)
	if _, _, err := svc.Login(ctx, unverified.Email, "secret123"); err == nil {
		t.Error("unverified account could log in")
	}

	verified := seedUser(t, repo, "ana@example.com", "secret123", true)
	if _, _, err := svc.Login(ctx, verified.Email, "wrong-password"); err == nil {
		t.Error("wrong password accepted")
	}

	token, user, err := svc.Login(ctx, verified.Email, "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("login returned empty token")
	}
	if user.Password != "" {
		t.Error("password leaked in login response")
	}
}

func activationCode(t *testing.T, email string, expAt time.Time) string {
	t.Helper()

	code := fmt.Sprintf("%v|%v", email, expAt.Unix())
	encrypted, err := goshortcute.AESCBCEncrypt([]byte(code), []byte(testVerificationKey))
	if err != nil {
		t.Fatalf("failed to encrypt code: %v", err)
	}
	return goshortcute.StringtoBase64Encode(encrypted)
}

func TestVerifyEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeMailer{})
	ctx := context.Background()
	user := seedUser(t, repo, "ana@example.com", "secret123", false)

	expired := activationCode(t, user.Email, time.Now().Add(-time.Minute))
	if err := svc.VerifyEmail(ctx, expired); err == nil || !strings.Contains(err.Error(), "invalid or expired") {
		t.Errorf("expired code accepted: %v", err)
	}

	valid := activationCode(t, user.Email, time.Now().Add(5*time.Minute))
	if err := svc.VerifyEmail(ctx, valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := repo.FindByID(ctx, user.ID); !got.IsVerified {
		t.Error("account not marked verified")
	}

	// the link is single use
	if err := svc.VerifyEmail(ctx, valid); err == nil {
		t.Error("replayed verification link accepted")
	}
}

func TestUpdateUser_PersistsEmailAndRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeMailer{})
	ctx := context.Background()
	user := seedUser(t, repo, "ana@example.com", "secret123", true)

	if _, err := svc.UpdateUser(ctx, user.ID, &domain.User{Role: "superuser"}); err == nil {
		t.Error("unknown role accepted")
	}

	updated, err := svc.UpdateUser(ctx, user.ID, &domain.User{
		Email: "ana.new@example.com",
		Role:  RoleAdmin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Email != "ana.new@example.com" || updated.Role != RoleAdmin {
		t.Errorf("update result = email %q role %q", updated.Email, updated.Role)
	}

	if repo.updated == nil {
		t.Fatal("nothing reached the repository")
	}
	if repo.updated.Email != "ana.new@example.com" || repo.updated.Role != RoleAdmin {
		t.Errorf("persisted user = email %q role %q, want new email and admin role", repo.updated.Email, repo.updated.Role)
	}
}
