package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"procurement/internal/authz"
	"procurement/internal/config"
	"procurement/internal/identity"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/pkg/apperr"
)

// --- DTOs ---

type NewUserRequest struct {
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Role             string `json:"role"`
	RecaptchaPayload string `json:"recaptcha_payload"`
}

// UpdateUserRequest is a partial update: absent fields keep their
// current value, which is why everything is a pointer.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	Status    *string `json:"status"`
}

type UserResponse struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

// UserService is the user lifecycle manager: registration, approval
// workflow and the cascading delete.
type UserService interface {
	Create(ctx context.Context, caller identity.Identity, req NewUserRequest) (*UserResponse, error)
	Get(ctx context.Context, caller identity.Identity, email string) (*UserResponse, error)
	GetAll(ctx context.Context) (*UsersResponse, error)
	Update(ctx context.Context, caller identity.Identity, email string, req UpdateUserRequest) (*UserResponse, error)
	Delete(ctx context.Context, email string) error
}

type userService struct {
	users        repository.UserRepository
	refData      repository.RefDataRepository
	tx           repository.TransactionManager
	verifier     BotVerifier
	inviter      DirectoryInviter
	usingB2BAuth bool
	logger       *zap.Logger
}

func NewUserService(
	users repository.UserRepository,
	refData repository.RefDataRepository,
	tx repository.TransactionManager,
	verifier BotVerifier,
	inviter DirectoryInviter,
	cfg config.Config,
	logger *zap.Logger,
) UserService {
	return &userService{
		users:        users,
		refData:      refData,
		tx:           tx,
		verifier:     verifier,
		inviter:      inviter,
		usingB2BAuth: cfg.UsesB2BAuth(),
		logger:       logger,
	}
}

// anyMissing reports whether any value is empty or whitespace.
func anyMissing(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func toUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.RoleID,
		Status:    user.UserStatusID,
	}
}

// Create registers a new account. Authenticated callers register their
// own verified email; anonymous self-registration requires a valid bot
// verification payload. New accounts always start Pending.
func (s *userService) Create(ctx context.Context, caller identity.Identity, req NewUserRequest) (*UserResponse, error) {
	const title = "Unable to create user"

	email := caller.Email
	isAnonymous := email == ""
	if isAnonymous {
		email = req.Email
	}

	if anyMissing(email, req.FirstName, req.LastName) || (isAnonymous && anyMissing(req.RecaptchaPayload)) {
		return nil, apperr.MissingMandatoryField.New(title, http.StatusBadRequest)
	}

	if isAnonymous {
		verification, err := s.verifier.VerifyPayload(ctx, req.RecaptchaPayload)
		if err != nil {
			return nil, err
		}
		if !verification.Success {
			return nil, apperr.BotValidationError.WithInner(title, http.StatusBadRequest,
				"Validation error codes: "+strings.Join(verification.ErrorCodes, ", "))
		}
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.UserAlreadyExists.New(title, http.StatusBadRequest)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// People will be User unless specified otherwise.
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	ok, err := s.refData.RoleExists(ctx, role)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidUserRoleID.New(title, http.StatusBadRequest)
	}

	user := &model.User{
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		RoleID:       role,
		UserStatusID: model.UserStatusPending,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("email", user.Email), zap.String("role", user.RoleID))
	return toUserResponse(user), nil
}

// Get returns one user's projection. Only Admins may look at accounts
// other than their own; the existence check runs after authorization.
func (s *userService) Get(ctx context.Context, caller identity.Identity, email string) (*UserResponse, error) {
	const title = "Unable to get user"

	if !authz.CanReadUser(caller, email) {
		return nil, apperr.UserNotAllowed.New(title, http.StatusForbidden)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.UserNotFound.WithInner(title, http.StatusNotFound, "Unknown user: "+email)
	}
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

// GetAll returns every user's projection. Admin gating happens at the
// route.
func (s *userService) GetAll(ctx context.Context) (*UsersResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := &UsersResponse{Users: make([]UserResponse, 0, len(users))}
	for i := range users {
		resp.Users = append(resp.Users, *toUserResponse(&users[i]))
	}
	return resp, nil
}

// Update applies a partial update. Non-admins may only touch their own
// first/last name. Setting the status to Approved under the B2B scheme
// triggers the directory invitation; the invitation and the row save
// are deliberately not atomic (the invite can succeed while the save
// later fails).
func (s *userService) Update(ctx context.Context, caller identity.Identity, email string, req UpdateUserRequest) (*UserResponse, error) {
	const title = "Unable to update the user"

	touchesPrivileged := req.Role != nil || req.Status != nil || req.Email != nil
	if !authz.CanUpdateUser(caller, email, touchesPrivileged) {
		return nil, apperr.UserNotAllowed.New(title, http.StatusForbidden)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.UserNotFound.New(title, http.StatusNotFound)
	}
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if req.Role != nil {
		ok, err := s.refData.RoleExists(ctx, *req.Role)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.InvalidUserRoleID.New(title, http.StatusBadRequest)
		}
		user.RoleID = *req.Role
	}

	if req.Email != nil {
		// Uniqueness is not re-checked here; the constraint from
		// creation time is the only guard. Known gap, kept as-is.
		if strings.TrimSpace(*req.Email) == "" {
			return nil, apperr.InvalidEmail.New(title, http.StatusBadRequest)
		}
		user.Email = *req.Email
	}

	if req.Status != nil {
		ok, err := s.refData.UserStatusExists(ctx, *req.Status)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.InvalidUserStatusID.New(title, http.StatusBadRequest)
		}
		user.UserStatusID = *req.Status

		// Note the user could be invited and the save below still fail.
		if user.UserStatusID == model.UserStatusApproved && s.usingB2BAuth {
			result, err := s.inviter.InviteUser(ctx, user.Email)
			if err != nil || result == InviteError {
				return nil, apperr.UnableToSendB2BInvitation.New(title, http.StatusBadRequest)
			}
			s.logger.Info("directory invitation sent",
				zap.String("email", user.Email), zap.String("result", result))
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

// Delete removes the user and every request revision and detail line
// she owns, in one transaction with explicit ordered deletes.
func (s *userService) Delete(ctx context.Context, email string) error {
	const title = "Unable to delete the user"

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.UserNotFound.New(title, http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.DeleteDetailsByUser(txCtx, user.ID); err != nil {
			return err
		}
		if err := s.users.DeleteRequestsByUser(txCtx, user.ID); err != nil {
			return err
		}
		return s.users.Delete(txCtx, user.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.String("email", email))
	return nil
}
