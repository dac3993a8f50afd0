package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-gin-user-service/internal/core/cache"
	"go-gin-user-service/internal/domain"
	"go-gin-user-service/pkg/utils"
)

type UserService struct {
	repo  domain.UserRepository
	log   *zap.Logger
	hash  func(string) (string, error)
	cache *cache.Cache
	ttl   time.Duration
}

type Option func(*UserService)

// WithCache 为 GetByID 打开读穿缓存；update/delete 成功后失效
func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(s *UserService) {
		s.cache = c
		s.ttl = ttl
	}
}

func WithHasher(h func(string) (string, error)) Option {
	return func(s *UserService) { s.hash = h }
}

func NewUserService(repo domain.UserRepository, l *zap.Logger, opts ...Option) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	s := &UserService{repo: repo, log: l, hash: utils.HashPassword, ttl: 5 * time.Minute}
	for _, o := range opts {
		o(s)
	}
	return s
}

func cacheKey(id string) string { return "user:" + id }

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (UserSummary, error) {
	hashed, err := s.hash(in.Password)
	if err != nil {
		s.log.Error("hash password failed", zap.String("op", "create"), zap.Error(err))
		return UserSummary{}, err
	}
	u := &domain.User{Email: in.Email, Name: in.Name, PasswordHash: hashed}
	if err := s.repo.Create(ctx, u); err != nil {
		s.log.Error("create user failed", zap.String("op", "create"), zap.Error(err))
		return UserSummary{}, err
	}
	return toSummary(u), nil
}

func (s *UserService) List(ctx context.Context) ([]UserSummary, error) {
	us, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("list users failed", zap.String("op", "list"), zap.Error(err))
		return nil, err
	}
	out := make([]UserSummary, 0, len(us))
	for i := range us {
		out = append(out, toSummary(&us[i]))
	}
	return out, nil
}

// GetByID 不存在时返回 found=false 且 err=nil
func (s *UserService) GetByID(ctx context.Context, id string) (UserSummary, bool, error) {
	load := func(ctx context.Context) (*UserSummary, error) {
		u, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		sum := toSummary(u)
		return &sum, nil
	}

	var (
		sum *UserSummary
		err error
	)
	if s.cache != nil {
		sum, err = cache.GetOrLoadJSON(s.cache, ctx, cacheKey(id), s.ttl, load)
	} else {
		sum, err = load(ctx)
	}
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return UserSummary{}, false, nil
	case err != nil:
		s.log.Error("get user failed", zap.String("op", "get"), zap.String("id", id), zap.Error(err))
		return UserSummary{}, false, err
	}
	return *sum, true, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (UpdatedUser, error) {
	p := domain.UserPatch{Email: in.Email, Name: in.Name}
	if in.Password != nil {
		hashed, err := s.hash(*in.Password)
		if err != nil {
			s.log.Error("hash password failed", zap.String("op", "update"), zap.String("id", id), zap.Error(err))
			return UpdatedUser{}, err
		}
		p.PasswordHash = &hashed
	}
	u, err := s.repo.Update(ctx, id, p)
	if err != nil {
		s.log.Error("update user failed", zap.String("op", "update"), zap.String("id", id), zap.Error(err))
		return UpdatedUser{}, err
	}
	s.invalidate(ctx, id)
	return toUpdated(u), nil
}

func (s *UserService) Delete(ctx context.Context, id string) (bool, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error("delete user failed", zap.String("op", "delete"), zap.String("id", id), zap.Error(err))
		return false, err
	}
	s.invalidate(ctx, id)
	return true, nil
}

func (s *UserService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cacheKey(id)); err != nil {
		// 写已成功，缓存失效失败只记录，TTL 兜底
		s.log.Warn("cache invalidate failed", zap.String("id", id), zap.Error(err))
	}
}
