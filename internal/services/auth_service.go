package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/constants"
	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/repository"
	"github.com/yukikurage/assessment-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = alreadyExists("email already registered")
	ErrInvalidCredentials   = invalidCredentials("invalid email or password")
	ErrInvalidName          = invalidInput("name is required")
	ErrPasswordTooShort     = invalidInput("password too short")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
	ErrFailedToCreateOrg    = errors.New("failed to create organization")
	ErrFailedToAddMember    = errors.New("failed to add user to organization")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	orgRepo  repository.OrganizationRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, orgRepo repository.OrganizationRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		orgRepo:  orgRepo,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email    string
	Name     string
	Password string
}

// Signup creates a new user along with a personal organization they own.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashedPassword),
		GlobalRole:   models.GlobalRoleUser,
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrFailedToCreateOrg
	}

	org := &models.Organization{
		Name:       fmt.Sprintf("%s's organization", name),
		InviteCode: inviteCode,
	}

	member := &models.OrganizationMember{
		Roles:    []models.OrganizationRole{models.RoleOwner},
		JoinedAt: time.Now(),
	}

	if err := s.userRepo.CreateWithPersonalOrganization(ctx, user, org, member); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateUser) && database.IsUniqueViolation(err):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrCreateUser):
			return nil, ErrFailedToCreateUser
		case errors.Is(err, repository.ErrCreateOrganization):
			return nil, ErrFailedToCreateOrg
		case errors.Is(err, repository.ErrCreateOrganizationMember):
			return nil, ErrFailedToAddMember
		default:
			return nil, fmt.Errorf("failed to complete signup: %w", err)
		}
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrUserNotFound, "user")
	}
	return user, nil
}

// LoadActor builds the per-request actor from the user's global role and memberships.
func (s *AuthService) LoadActor(ctx context.Context, userID uint64) (access.Actor, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return access.Actor{}, lookupError(err, ErrUserNotFound, "user")
	}

	memberships, err := s.orgRepo.ListMembersByUserID(ctx, userID)
	if err != nil {
		return access.Actor{}, fmt.Errorf("failed to load memberships: %w", err)
	}

	actor := access.Actor{
		UserID:      user.ID,
		GlobalRoles: []models.GlobalRole{user.GlobalRole},
		Memberships: make(map[uint64][]models.OrganizationRole, len(memberships)),
	}
	for _, m := range memberships {
		actor.Memberships[m.OrganizationID] = access.ParseRoles([]models.OrganizationRole(m.Roles))
	}
	return actor, nil
}
