package service

import (
	"context"
	"strings"

	"rubric_backend/internal/config"
	"rubric_backend/internal/model"
	"rubric_backend/internal/repository"
	"rubric_backend/internal/util"
	"rubric_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// RegisterRequest 创建账号请求，助教需要指定所属教师
type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Role         string `json:"role" binding:"required"`
	InstructorID *uint  `json:"instructorId"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	role := model.UserRole(req.Role)
	if !role.Valid() {
		return nil, util.NewValidationError("unknown role %q", req.Role)
	}
	if role == model.TeachingAssistant && req.InstructorID == nil {
		return nil, util.NewValidationError("A teaching assistant must be assigned to an instructor.")
	}

	repo := s.UserRepo.WithContext(ctx)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := repo.FindByEmail(email); err == nil {
		return nil, util.NewValidationError("The email %s is already registered.", email)
	} else if !isNotFound(err) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        email,
		Password:     string(hashedPassword),
		Role:         role,
		InstructorID: req.InstructorID,
	}
	if err := repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 校验密码并签发令牌，令牌中带有角色和所属教师
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	repo := s.UserRepo.WithContext(ctx)
	user, err := repo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isNotFound(err) {
			return "", nil, util.NewUnauthorizedError("invalid credentials")
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.NewUnauthorizedError("invalid credentials")
	}

	token, err := util.GenerateJWT(util.TokenSubject{
		UserID:       user.ID,
		Role:         string(user.Role),
		Email:        user.Email,
		InstructorID: user.EffectiveInstructorID(),
	}, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	if err := repo.UpdateLastLogin(user.ID); err != nil {
		logger.Log.Warn("failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return token, user, nil
}
