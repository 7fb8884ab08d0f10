package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 10

	// maxIDAttempts bounds the retry loop when the unique index rejects a
	// generated external id under concurrent creation.
	maxIDAttempts = 3
)

type UserService struct {
	users     ports.UserRepository
	groups    ports.GroupRepository
	allocator ports.IDAllocator
	log       zerolog.Logger
}

func NewUserService(users ports.UserRepository, groups ports.GroupRepository, allocator ports.IDAllocator, log zerolog.Logger) *UserService {
	return &UserService{users: users, groups: groups, allocator: allocator, log: log}
}

// Create runs the full authorized creation flow: field validation, duplicate
// checks, policy gate, external id allocation, hashing, persistence, and the
// denormalized visibility grant on the creator's group.
func (s *UserService) Create(ctx context.Context, actorID string, in ports.CreateUserInput) (*domain.User, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if missing := missingFields(in); len(missing) > 0 {
		return nil, &domain.ValidationError{Fields: missing, Reason: "required fields are missing"}
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	tz, err := normalizeTimezone(in.Timezone)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, &domain.ConflictError{Field: "email", Value: email}
	} else if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing, err := s.users.FindByUsername(ctx, in.Username); err == nil && existing != nil {
		return nil, &domain.ConflictError{Field: "username", Value: in.Username}
	} else if err != nil && !isNotFound(err) {
		return nil, err
	}

	if !domain.CanCreate(actor.Role, role) {
		s.log.Warn().Str("actor_role", string(actor.Role)).Str("target_role", string(role)).Msg("user creation denied")
		return nil, &domain.PermissionDeniedError{ActorRole: actor.Role, TargetRole: role, Operation: "create"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.insertWithFreshID(ctx, role, func(userID string) *domain.User {
		now := time.Now().UTC()
		return &domain.User{
			UserID:       userID,
			Name:         in.Name,
			Username:     in.Username,
			Email:        email,
			PasswordHash: string(hash),
			Role:         role,
			CreatedBy:    actor.ID,
			Timezone:     tz,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	})
	if err != nil {
		return nil, err
	}

	if err := s.grantVisibility(ctx, actor, created); err != nil {
		// The record exists but the creator's group does not expose it yet;
		// report the partial failure instead of pretending it succeeded.
		return nil, err
	}

	s.log.Info().Str("user_id", created.UserID).Str("role", string(role)).Str("created_by", actor.UserID).Msg("user created")
	return created, nil
}

// insertWithFreshID allocates an external id and inserts, retrying with a new
// id when the unique index reports a collision. The allocator serializes
// suffix hand-out per prefix; the index remains the final arbiter.
func (s *UserService) insertWithFreshID(ctx context.Context, role domain.Role, build func(userID string) *domain.User) (*domain.User, error) {
	prefix := role.IDPrefix()

	max, err := s.users.MaxIDSuffix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if err := s.allocator.Seed(ctx, prefix, max); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		n, err := s.allocator.Next(ctx, prefix)
		if err != nil {
			return nil, err
		}

		created, err := s.users.Insert(ctx, build(fmt.Sprintf("%s%d", prefix, n)))
		if err == nil {
			return created, nil
		}

		var conflict *domain.ConflictError
		if errors.As(err, &conflict) && conflict.Field == "user_id" {
			s.log.Warn().Str("user_id", conflict.Value).Int("attempt", attempt+1).Msg("external id collision, retrying")
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("could not allocate a unique %s id after %d attempts", prefix, maxIDAttempts)
}

// grantVisibility records the new account on the creator's primary group:
// an ADMIN exposes the unit managers it creates through its admin group, a
// UNIT_MANAGER exposes the users it creates through its unit-manager group.
func (s *UserService) grantVisibility(ctx context.Context, actor, created *domain.User) error {
	var want domain.GroupType
	switch {
	case actor.Role == domain.RoleAdmin && created.Role == domain.RoleUnitManager:
		want = domain.GroupTypeAdmin
	case actor.Role == domain.RoleUnitManager && created.Role == domain.RoleUser:
		want = domain.GroupTypeUnitManager
	default:
		return nil
	}

	actorGroups, err := s.groups.FindByMember(ctx, actor.ID)
	if err != nil {
		return &domain.ConsistencyError{Operation: "grant visibility", Err: err}
	}
	g := actor.GroupOfType(actorGroups, want)
	if g == nil {
		return nil // creator has no primary group to record the grant on
	}

	if want == domain.GroupTypeAdmin {
		if containsID(g.VisibleUnitManagers, created.ID) {
			return nil
		}
		g.VisibleUnitManagers = append(g.VisibleUnitManagers, created.ID)
	} else {
		if containsID(g.VisibleUsers, created.ID) {
			return nil
		}
		g.VisibleUsers = append(g.VisibleUsers, created.ID)
	}

	if err := s.groups.Update(ctx, g); err != nil {
		s.log.Error().Err(err).Str("group_id", g.ID).Str("user_id", created.UserID).Msg("visibility grant write failed")
		return &domain.ConsistencyError{Operation: "grant visibility", GroupID: g.ID, Err: err}
	}
	return nil
}

// Get returns a single user, provided it falls inside the actor's scope.
// Records outside the scope are reported as not found.
func (s *UserService) Get(ctx context.Context, actorID, userID string) (*domain.User, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	target, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target.ID == actor.ID {
		return target, nil
	}

	scope, err := s.scopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !ScopeAllows(scope, target) {
		return nil, &domain.NotFoundError{Resource: "user", ID: userID}
	}
	return target, nil
}

// List returns the page of users visible to the actor.
func (s *UserService) List(ctx context.Context, actorID string, page, limit int64) (*ports.UserListResult, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}

	scope, err := s.scopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	users, total, err := s.users.List(ctx, scope, page, limit)
	if err != nil {
		return nil, err
	}

	return &ports.UserListResult{
		Users:      users,
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Update mutates a user record. Self-updates are always permitted; updating
// someone else requires the mutation policy. Role and password are immutable
// through this path.
func (s *UserService) Update(ctx context.Context, actorID, userID string, in ports.UpdateUserInput) (*domain.User, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if target.ID != actor.ID && !domain.CanUpdate(actor.Role, target.Role) {
		return nil, &domain.PermissionDeniedError{ActorRole: actor.Role, TargetRole: target.Role, Operation: "update"}
	}

	if in.Name != nil {
		target.Name = *in.Name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != target.Email {
			if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
				return nil, &domain.ConflictError{Field: "email", Value: email}
			} else if err != nil && !isNotFound(err) {
				return nil, err
			}
			target.Email = email
		}
	}
	if in.Username != nil && *in.Username != target.Username {
		if existing, err := s.users.FindByUsername(ctx, *in.Username); err == nil && existing != nil {
			return nil, &domain.ConflictError{Field: "username", Value: *in.Username}
		} else if err != nil && !isNotFound(err) {
			return nil, err
		}
		target.Username = *in.Username
	}
	if in.Timezone != nil {
		tz, err := normalizeTimezone(*in.Timezone)
		if err != nil {
			return nil, err
		}
		target.Timezone = tz
	}

	target.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

// Delete soft-deletes a user and removes it from every group it belongs to.
func (s *UserService) Delete(ctx context.Context, actorID, userID string) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	target, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if !domain.CanDelete(actor.Role, target.Role) {
		return &domain.PermissionDeniedError{ActorRole: actor.Role, TargetRole: target.Role, Operation: "delete"}
	}

	memberOf, err := s.groups.FindByMember(ctx, target.ID)
	if err != nil {
		return err
	}
	coordinator := NewMembershipCoordinator(s.users, s.groups, s.log)
	for _, g := range memberOf {
		if err := coordinator.RemoveMember(ctx, g, target); err != nil {
			return err
		}
	}

	if err := s.users.Deactivate(ctx, target.ID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", target.UserID).Str("deleted_by", actor.UserID).Msg("user deactivated")
	return nil
}

// NextID previews the external id the next user of the role would receive.
func (s *UserService) NextID(ctx context.Context, roleStr string) (string, error) {
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return "", err
	}
	prefix := role.IDPrefix()

	max, err := s.users.MaxIDSuffix(ctx, prefix)
	if err != nil {
		return "", err
	}
	if err := s.allocator.Seed(ctx, prefix, max); err != nil {
		return "", err
	}
	n, err := s.allocator.Peek(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", prefix, n), nil
}

// Groups returns the groups the actor belongs to.
func (s *UserService) Groups(ctx context.Context, actorID string) ([]*domain.Group, error) {
	if _, err := s.resolveActor(ctx, actorID); err != nil {
		return nil, err
	}
	return s.groups.FindByMember(ctx, actorID)
}

func (s *UserService) resolveActor(ctx context.Context, actorID string) (*domain.User, error) {
	if actorID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	return actor, nil
}

func (s *UserService) scopeFor(ctx context.Context, actor *domain.User) (ports.UserScope, error) {
	var actorGroups []*domain.Group
	if actor.Role == domain.RoleUnitManager && len(actor.Groups) > 0 {
		gs, err := s.groups.FindByMember(ctx, actor.ID)
		if err != nil {
			return ports.UserScope{}, err
		}
		actorGroups = gs
	}
	return ResolveUserScope(actor, actorGroups), nil
}

func missingFields(in ports.CreateUserInput) []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"email", in.Email},
		{"username", in.Username},
		{"password", in.Password},
		{"role", in.Role},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// normalizeTimezone validates an IANA zone name against the timezone
// database, defaulting to UTC when empty.
func normalizeTimezone(tz string) (string, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return "UTC", nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return "", &domain.ValidationError{Field: "timezone", Reason: fmt.Sprintf("unknown IANA timezone %q", tz)}
	}
	return tz, nil
}

func isNotFound(err error) bool {
	var nf *domain.NotFoundError
	return errors.As(err, &nf)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
