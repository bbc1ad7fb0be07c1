package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/raccoongang/edx-extended-api/internal/events"
	"github.com/raccoongang/edx-extended-api/internal/models"
	"github.com/raccoongang/edx-extended-api/internal/repositories"
	"github.com/raccoongang/edx-extended-api/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== LIFECYCLE OPERATIONS =====

func (s *userService) Create(ctx context.Context, req *CreateUserRequest) (*UserStatusResponse, error) {
	s.logger.Info("Creating user", "username", req.Username)

	if errs := s.validator.ValidateUserCreate(req); errs != nil {
		return nil, errs
	}

	// Duplicate pre-checks span active and inactive users; first match wins.
	taken, err := s.repo.User().ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if taken {
		return nil, &ConflictError{Status: StatusUsernameAlreadyUsed}
	}

	taken, err = s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if taken {
		return nil, &ConflictError{Status: StatusEmailAlreadyUsed}
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
		Profile:   profileFromCreate(req),
	}
	s.applyFlagsOnCreate(user, req)

	// User, profile and capability flags commit together; a failure leaves
	// no orphaned rows behind.
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.User().Create(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created", "user_id", user.ID, "username", user.Username)
	s.publishEvent(ctx, events.EventUserCreated, user)

	return &UserStatusResponse{Status: StatusUserCreated, UserPayload: buildUserPayload(user)}, nil
}

func (s *userService) Update(ctx context.Context, ref repositories.UserRef, req *UpdateUserRequest) (*UserStatusResponse, error) {
	user, err := s.repo.User().GetByRef(ctx, ref)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, &NotFoundError{Status: StatusUserNotFound}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Deactivated accounts refuse mutation regardless of field validity.
	if !user.IsActive {
		return nil, &ConflictError{Status: StatusUserInactive}
	}

	if errs := s.validator.ValidateUserUpdate(req); errs != nil {
		return nil, errs
	}

	// Identity collisions only count against other users; re-submitting the
	// target's own username or email is not a conflict.
	if req.Username != nil && *req.Username != user.Username {
		taken, err := s.repo.User().ExistsByUsername(ctx, *req.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
		}
		if taken {
			return nil, &ConflictError{Status: StatusUsernameAlreadyUsed}
		}
	}
	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.repo.User().ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if taken {
			return nil, &ConflictError{Status: StatusEmailAlreadyUsed}
		}
	}

	applyUserFields(user, req)
	s.applyFlagsOnUpdate(user, req)

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.User().Update(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User updated", "user_id", user.ID, "username", user.Username)
	s.publishEvent(ctx, events.EventUserUpdated, user)

	return &UserStatusResponse{Status: StatusUserUpdated, UserPayload: buildUserPayload(user)}, nil
}

func (s *userService) Deactivate(ctx context.Context, ref repositories.UserRef) (*DeactivateResult, error) {
	user, err := s.repo.User().GetByRef(ctx, ref)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, &NotFoundError{Status: StatusUserNotFound}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	result := &DeactivateResult{
		UserID:   &user.ID,
		Username: user.Username,
		Status:   StatusUserAlreadyInactive,
	}
	if !user.IsActive {
		// Idempotent: repeating the call succeeds without touching the row.
		return result, nil
	}

	user.IsActive = false
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to deactivate user: %w", err)
	}

	s.logger.Info("User deactivated", "user_id", user.ID, "username", user.Username)
	s.publishEvent(ctx, events.EventUserDeactivated, user)

	result.Status = StatusUserDeactivated
	return result, nil
}

func (s *userService) BulkDeactivate(ctx context.Context, filter repositories.UserFilter) ([]*DeactivateResult, error) {
	if filter.Empty() {
		return nil, &BadRequestError{Detail: "You cannot deactivate all users."}
	}

	// Snapshot the matched rows before the set-based update so statuses
	// reflect the pre-call state.
	matched, err := s.repo.User().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bulk filter: %w", err)
	}

	if _, err := s.repo.User().DeactivateAll(ctx, filter); err != nil {
		return nil, fmt.Errorf("failed to bulk deactivate: %w", err)
	}

	byID := make(map[uint]*models.User, len(matched))
	byUsername := make(map[string]*models.User, len(matched))
	for _, u := range matched {
		byID[u.ID] = u
		byUsername[u.Username] = u
		if u.IsActive {
			s.publishEvent(ctx, events.EventUserDeactivated, u)
		}
	}

	// One status entry per requested identifier, in request order.
	var results []*DeactivateResult
	switch {
	case len(filter.IDs) > 0:
		for _, id := range filter.IDs {
			id := id
			result := &DeactivateResult{UserID: &id, Status: StatusUserNotFound}
			if u, ok := byID[id]; ok {
				result.Username = u.Username
				result.Status = deactivateStatus(u.IsActive)
			}
			results = append(results, result)
		}
	case len(filter.Usernames) > 0:
		for _, name := range filter.Usernames {
			result := &DeactivateResult{Username: name, Status: StatusUserNotFound}
			if u, ok := byUsername[name]; ok {
				result.UserID = &u.ID
				result.Status = deactivateStatus(u.IsActive)
			}
			results = append(results, result)
		}
	default:
		for _, u := range matched {
			results = append(results, &DeactivateResult{
				UserID:   &u.ID,
				Username: u.Username,
				Status:   deactivateStatus(u.IsActive),
			})
		}
	}

	s.logger.Info("Bulk deactivation applied", "matched", len(matched), "requested", len(results))
	return results, nil
}

// ===== READ OPERATIONS =====

func (s *userService) Get(ctx context.Context, ref repositories.UserRef) (*UserListPayload, error) {
	user, err := s.repo.User().GetByRef(ctx, ref)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, &NotFoundError{Status: StatusUserNotFound}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return buildUserListPayload(user), nil
}

func (s *userService) List(ctx context.Context, filter repositories.UserFilter) ([]*UserListPayload, error) {
	users, err := s.repo.User().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	payloads := make([]*UserListPayload, 0, len(users))
	for _, u := range users {
		payloads = append(payloads, buildUserListPayload(u))
	}
	return payloads, nil
}

// ===== HELPERS =====

func deactivateStatus(wasActive bool) string {
	if wasActive {
		return StatusUserDeactivated
	}
	return StatusUserAlreadyInactive
}

func profileFromCreate(req *CreateUserRequest) models.UserProfile {
	profile := models.UserProfile{
		Name:             req.Name,
		Org:              req.Org,
		Language:         req.Language,
		Location:         req.Location,
		YearOfBirth:      req.YearOfBirth,
		Bio:              req.Bio,
		Goals:            req.Goals,
		LevelOfEducation: req.LevelOfEducation,
		Gender:           req.Gender,
		City:             req.City,
		Country:          req.Country,
		Company:          req.Company,
		EmployeeID:       req.EmployeeID,
		HireDate:         req.HireDate.TimePtr(),
		Level:            req.Level,
		JobCode:          req.JobCode,
		JobDescription:   req.JobDescription,
		Department:       req.Department,
		Supervisor:       req.Supervisor,
		LearningGroup:    req.LearningGroup,
		PhoneNumber:      req.PhoneNumber,
		Comments:         req.Comments,
	}
	if req.ExemptStatus != nil {
		profile.ExemptStatus = *req.ExemptStatus
	}
	return profile
}

// applyUserFields writes the provided identity and profile fields onto the
// record. Each external field maps to exactly one internal attribute.
func applyUserFields(user *models.User, req *UpdateUserRequest) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&user.Username, req.Username)
	setString(&user.Email, req.Email)
	setString(&user.FirstName, req.FirstName)
	setString(&user.LastName, req.LastName)

	p := &user.Profile
	setString(&p.Name, req.Name)
	setString(&p.Org, req.Org)
	setString(&p.Language, req.Language)
	setString(&p.Location, req.Location)
	setString(&p.Bio, req.Bio)
	setString(&p.Goals, req.Goals)
	setString(&p.LevelOfEducation, req.LevelOfEducation)
	setString(&p.Gender, req.Gender)
	setString(&p.City, req.City)
	setString(&p.Country, req.Country)
	setString(&p.Company, req.Company)
	setString(&p.EmployeeID, req.EmployeeID)
	setString(&p.Level, req.Level)
	setString(&p.JobCode, req.JobCode)
	setString(&p.JobDescription, req.JobDescription)
	setString(&p.Department, req.Department)
	setString(&p.Supervisor, req.Supervisor)
	setString(&p.LearningGroup, req.LearningGroup)
	setString(&p.PhoneNumber, req.PhoneNumber)
	setString(&p.Comments, req.Comments)

	if req.YearOfBirth != nil {
		p.YearOfBirth = req.YearOfBirth
	}
	if req.HireDate != nil {
		p.HireDate = req.HireDate.TimePtr()
	}
	if req.ExemptStatus != nil {
		p.ExemptStatus = *req.ExemptStatus
	}
}

func (s *userService) applyFlagsOnCreate(user *models.User, req *CreateUserRequest) {
	if req.AnalyticsAccess.Set && req.AnalyticsAccess.Value != nil {
		switch *req.AnalyticsAccess.Value {
		case models.AnalyticsRestricted:
			user.AddCapability(models.CapabilityAnalyticsLimited)
		case models.AnalyticsFullAccess:
			user.AddCapability(models.CapabilityAnalyticsFull)
		}
	}

	role := models.RoleLearner
	if req.PlatformRole != nil {
		role = *req.PlatformRole
	}
	setPlatformRole(user, role)

	applyCatalogFlag(user, models.CapabilityInternalCatalogDenied, req.InternalCatalogAccess)
	applyCatalogFlag(user, models.CapabilityEdflexCatalogDenied, req.EdflexCatalogAccess)
	applyCatalogFlag(user, models.CapabilityCrehanaCatalogDenied, req.CrehanaCatalogAccess)
	applyCatalogFlag(user, models.CapabilityAnderspinkCatalogDenied, req.AnderspinkCatalogAccess)
	applyCatalogFlag(user, models.CapabilityLearnlightCatalogDenied, req.LearnlightCatalogAccess)
}

func (s *userService) applyFlagsOnUpdate(user *models.User, req *UpdateUserRequest) {
	if req.AnalyticsAccess.Set {
		switch {
		case req.AnalyticsAccess.Value == nil:
			// Explicit null withdraws analytics access entirely.
			user.RemoveCapability(models.CapabilityAnalyticsLimited)
			user.RemoveCapability(models.CapabilityAnalyticsFull)
		case *req.AnalyticsAccess.Value == models.AnalyticsRestricted:
			user.RemoveCapability(models.CapabilityAnalyticsFull)
			user.AddCapability(models.CapabilityAnalyticsLimited)
		case *req.AnalyticsAccess.Value == models.AnalyticsFullAccess:
			user.RemoveCapability(models.CapabilityAnalyticsLimited)
			user.AddCapability(models.CapabilityAnalyticsFull)
		}
	}

	if req.PlatformRole != nil {
		setPlatformRole(user, *req.PlatformRole)
	}

	applyCatalogFlag(user, models.CapabilityInternalCatalogDenied, req.InternalCatalogAccess)
	applyCatalogFlag(user, models.CapabilityEdflexCatalogDenied, req.EdflexCatalogAccess)
	applyCatalogFlag(user, models.CapabilityCrehanaCatalogDenied, req.CrehanaCatalogAccess)
	applyCatalogFlag(user, models.CapabilityAnderspinkCatalogDenied, req.AnderspinkCatalogAccess)
	applyCatalogFlag(user, models.CapabilityLearnlightCatalogDenied, req.LearnlightCatalogAccess)
}

// applyCatalogFlag transitions one capability independently: true adds it,
// false removes it, absent leaves it untouched.
func applyCatalogFlag(user *models.User, capability models.Capability, flag *bool) {
	if flag == nil {
		return
	}
	if *flag {
		user.AddCapability(capability)
	} else {
		user.RemoveCapability(capability)
	}
}

func setPlatformRole(user *models.User, role string) {
	switch role {
	case models.RoleSuperPlatformAdmin:
		user.IsSuperuser = true
		user.IsStaff = true
	case models.RolePlatformAdmin:
		user.IsSuperuser = false
		user.IsStaff = true
	case models.RoleStudioAdmin:
		user.IsSuperuser = false
		user.IsStaff = false
		user.AddCapability(models.CapabilityStudioAdmin)
	case models.RoleLearner:
		user.IsSuperuser = false
		user.IsStaff = false
		user.RemoveCapability(models.CapabilityStudioAdmin)
	}
}

// publishEvent delivers a lifecycle event; delivery problems are logged and
// never fail the request.
func (s *userService) publishEvent(ctx context.Context, eventType string, user *models.User) {
	if s.publisher == nil {
		return
	}

	event := events.NewEvent(eventType, map[string]interface{}{
		"user_id":   user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"is_active": user.IsActive,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish lifecycle event", "error", err, "event_type", eventType, "user_id", user.ID)
	}
}
