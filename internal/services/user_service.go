package services

import (
	"context"
	"log"
	"strings"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/auth"
	"rental-backend/internal/cache"
	"rental-backend/internal/models"
)

// UserStore is the persistence surface for accounts. The pgx repository
// satisfies it; tests substitute a mock.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role string) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
	SetActive(ctx context.Context, id int, active bool) error
}

type UserService struct {
	Repo       UserStore
	JWTManager *auth.JWTManager

	// invalidateAuth drops cached credentials for an email. Swappable so
	// tests can observe invalidation without a Redis instance.
	invalidateAuth func(ctx context.Context, email string)
}

func NewUserService(repo UserStore, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Repo:           repo,
		JWTManager:     jwtManager,
		invalidateAuth: cache.InvalidateAuth,
	}
}

// Login authenticates a user and returns a JWT token. A Redis credential
// cache sits in front of bcrypt; a hit skips the hash comparison but the
// user row is always re-read so deactivation takes effect immediately.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	var user *models.User
	if userID, ok := cache.GetCachedAuth(ctx, req.Email, req.Password); ok {
		cached, err := s.Repo.Get(ctx, userID)
		if err == nil {
			user = cached
		}
	}

	if user == nil {
		found, err := s.Repo.GetByEmail(ctx, req.Email)
		if err != nil {
			return nil, apperrors.Authorization("invalid email or password")
		}
		if !auth.VerifyPassword(found.PasswordHash, req.Password) {
			return nil, apperrors.Authorization("invalid email or password")
		}
		user = found
		cache.CacheAuth(ctx, req.Email, req.Password, user.ID)
	}

	if !user.IsActive {
		return nil, apperrors.Authorization("account is deactivated")
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// CreateStaff creates a staff or admin account with a hashed password.
func (s *UserService) CreateStaff(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, apperrors.Validation("name, email, and password are required")
	}
	role := req.Role
	if role == "" {
		role = models.RoleStaff
	}
	if role != models.RoleStaff && role != models.RoleAdmin {
		return nil, apperrors.Validation("role must be staff or admin")
	}

	if existing, _ := s.Repo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, apperrors.Validation("user with email %s already exists", req.Email)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.Repo.Get(ctx, id)
}

// ListStaff returns all staff accounts, active and deactivated.
func (s *UserService) ListStaff(ctx context.Context) ([]*models.User, error) {
	return s.Repo.ListByRole(ctx, models.RoleStaff)
}

// UpdateUser updates a user's profile, rehashing the password when a new one
// is supplied.
func (s *UserService) UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldEmail := user.Email
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = strings.ToLower(req.Email)
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Password != "" {
		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if req.Password != "" || user.Email != oldEmail {
		s.invalidateAuth(ctx, oldEmail)
	}
	return user, nil
}

// SetActive deactivates or reactivates an account. Deactivated staff cannot
// log in and existing tokens stop working at the next request.
func (s *UserService) SetActive(ctx context.Context, id int, active bool) error {
	user, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	if !active {
		s.invalidateAuth(ctx, user.Email)
	}
	return nil
}

// ProvisionAdmin creates the first admin account. It refuses to run when the
// email is already taken, so re-running the flag is harmless.
func (s *UserService) ProvisionAdmin(ctx context.Context, name, email, phone, password string) error {
	if name == "" || email == "" || password == "" {
		return apperrors.Validation("admin name, email, and password are required")
	}
	if existing, _ := s.Repo.GetByEmail(ctx, email); existing != nil {
		log.Printf("[Provision] admin %s already exists, nothing to do", email)
		return nil
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:         name,
		Email:        strings.ToLower(email),
		Phone:        phone,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := s.Repo.Create(ctx, admin); err != nil {
		return err
	}
	log.Printf("[Provision] created admin account %s", admin.Email)
	return nil
}
