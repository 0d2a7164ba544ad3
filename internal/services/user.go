package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"employee-management/config"
	"employee-management/internal/dto"
	"employee-management/internal/entities"
	"employee-management/internal/events"
	"employee-management/internal/repositories"
	"employee-management/pkg/empid"
	"employee-management/pkg/eventbus"
	apperrors "employee-management/pkg/errors"
	"employee-management/pkg/filestorage"
	"employee-management/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const profileUploadContext = "profile"

// EventPublisher hands domain events to in-process listeners.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

// UserServiceInterface holds the employee profile operations.
type UserServiceInterface interface {
	Register(ctx context.Context, payload dto.RegisterUserDTO, image *dto.FileUpload) (*dto.UserDTO, error)
	RegisterAdmin(ctx context.Context, payload dto.RegisterUserDTO) (*dto.UserDTO, error)
	GetProfile(ctx context.Context, empID string) (*dto.UserDTO, error)
	UpdateProfile(ctx context.Context, empID string, payload dto.UpdateProfileDTO, image *dto.FileUpload) (*dto.UserDTO, error)
	ListEmployeeIDs(ctx context.Context) ([]dto.EmployeeIDDTO, error)
	GetLeaveCounts(ctx context.Context, empID string) ([]dto.LeaveCountDTO, error)
}

type UserService struct {
	userRepo      repositories.UserRepositoryInterface
	teamRepo      repositories.TeamRepositoryInterface
	leaveRepo     repositories.LeaveRepositoryInterface
	imageRepo     repositories.ImageRepositoryInterface
	txManager     repositories.TxManagerInterface
	storage       filestorage.FileStorageInterface
	events        EventPublisher
	idGen         *empid.Generator
	updateBuilder *repositories.UpdateBuilder
	validate      *validator.Validate
	bcryptCost    int
	logger        *zap.Logger
}

func NewUserService(
	userRepo repositories.UserRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	leaveRepo repositories.LeaveRepositoryInterface,
	imageRepo repositories.ImageRepositoryInterface,
	txManager repositories.TxManagerInterface,
	storage filestorage.FileStorageInterface,
	events EventPublisher,
	idGen *empid.Generator,
	validate *validator.Validate,
	bcryptCost int,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{
		userRepo:      userRepo,
		teamRepo:      teamRepo,
		leaveRepo:     leaveRepo,
		imageRepo:     imageRepo,
		txManager:     txManager,
		storage:       storage,
		events:        events,
		idGen:         idGen,
		updateBuilder: repositories.NewUpdateBuilder(repositories.DefaultUpdateSchema()),
		validate:      validate,
		bcryptCost:    bcryptCost,
		logger:        logger,
	}
}

// Register creates a regular employee account. Self-registration never
// grants the admin role.
func (s *UserService) Register(ctx context.Context, payload dto.RegisterUserDTO, image *dto.FileUpload) (*dto.UserDTO, error) {
	return s.register(ctx, payload, image, dto.RoleUser)
}

// RegisterAdmin creates an administrator through the same workflow. It is
// used by the seeder and has no HTTP route.
func (s *UserService) RegisterAdmin(ctx context.Context, payload dto.RegisterUserDTO) (*dto.UserDTO, error) {
	return s.register(ctx, payload, nil, dto.RoleAdmin)
}

func (s *UserService) register(ctx context.Context, payload dto.RegisterUserDTO, image *dto.FileUpload, role string) (*dto.UserDTO, error) {
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	payload.Username = strings.TrimSpace(payload.Username)
	logger := s.logger.With(zap.String("username", payload.Username))

	var usernameTaken, emailTaken, teamExists bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		usernameTaken, err = s.userRepo.ExistsByUsername(gctx, payload.Username)
		return err
	})
	g.Go(func() (err error) {
		emailTaken, err = s.userRepo.ExistsByEmail(gctx, payload.Email)
		return err
	})
	g.Go(func() (err error) {
		teamExists, err = s.teamRepo.Exists(gctx, payload.TeamID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to check registration constraints: %w", err)
	}

	switch {
	case usernameTaken:
		return nil, apperrors.NewConflictError("User name already exists, please choose another user name.", nil).
			WithDetails(map[string]bool{"is_user_name_exists": true})
	case emailTaken:
		return nil, apperrors.NewConflictError("User with this email already exists.", nil)
	case !teamExists:
		return nil, apperrors.NewNotFoundError("No team with this name exists.")
	}

	passwordHash, err := utils.HashPassword(payload.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := registerPayloadToEntity(payload, role)
	user.Password = passwordHash

	var (
		created  *entities.User
		uploaded *filestorage.UploadResult
	)
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.userRepo.LockEmployeeIDsInTx(ctx, tx); err != nil {
			return err
		}
		last, err := s.userRepo.LastEmployeeIDInTx(ctx, tx, s.idGen.Prefix)
		if err != nil {
			return err
		}
		if user.EmpID, err = s.idGen.Next(last); err != nil {
			return apperrors.NewInternalError("Could not assign an employee id", err)
		}

		if image != nil {
			uploaded, err = s.upload(ctx, image)
			if err != nil {
				return err
			}
			user.ProfilePicture = null.StringFrom(uploaded.URL)
		}

		if created, err = s.userRepo.CreateInTx(ctx, tx, user); err != nil {
			return err
		}

		if uploaded != nil {
			if err := s.imageRepo.CreateInTx(ctx, tx, newProfileImage(user.EmpID, uploaded, image.Filename)); err != nil {
				return err
			}
			created.ProfilePublicID = null.StringFrom(uploaded.PublicID)
		}

		if err := s.teamRepo.AddMemberInTx(ctx, tx, user.EmpID, payload.TeamID); err != nil {
			return err
		}

		seeded, err := s.leaveRepo.SeedForEmployeeInTx(ctx, tx, user.EmpID)
		if err != nil {
			return err
		}
		logger.Debug("Leave counts seeded", zap.String("emp_id", user.EmpID), zap.Int64("rows", seeded))
		return nil
	})
	if err != nil {
		if uploaded != nil {
			s.discardUpload(uploaded.PublicID)
		}
		return nil, err
	}

	logger.Info("User registered", zap.String("emp_id", created.EmpID), zap.String("role", created.Role))
	if s.events != nil {
		s.events.Publish(ctx, events.UserRegistered{
			EmpID:    created.EmpID,
			Username: created.Username,
			Email:    created.Email,
			FullName: created.FullName(),
		})
	}
	return userEntityToDTO(created), nil
}

func (s *UserService) GetProfile(ctx context.Context, empID string) (*dto.UserDTO, error) {
	user, err := s.findUser(ctx, empID)
	if err != nil {
		return nil, err
	}
	return userEntityToDTO(user), nil
}

// findUser loads an employee, rejecting ids that cannot have been issued
// without touching the database.
func (s *UserService) findUser(ctx context.Context, empID string) (*entities.User, error) {
	if !s.idGen.Valid(empID) {
		return nil, apperrors.NewNotFoundError("User not found.")
	}
	user, err := s.userRepo.FindByEmpID(ctx, empID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found.")
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial update. Removing an image (public_id),
// uploading a new one and the column changes commit together; when the
// removed image was the current picture and no replacement is sent, the
// picture is cleared. The storage object of a removed image is deleted
// inside the transaction and is not restored if a later step fails.
func (s *UserService) UpdateProfile(ctx context.Context, empID string, payload dto.UpdateProfileDTO, image *dto.FileUpload) (*dto.UserDTO, error) {
	logger := s.logger.With(zap.String("emp_id", empID))

	fields := make(repositories.Fields, len(payload.Fields))
	for k, v := range payload.Fields {
		if k == "public_id" || k == "file" {
			continue
		}
		fields[k] = v
	}
	values, problems := normalizeProfileFields(s.validate, fields)
	if len(problems) > 0 {
		return nil, apperrors.NewValidationError("Validation failed", problems)
	}

	current, err := s.findUser(ctx, empID)
	if err != nil {
		return nil, err
	}

	publicID := strings.TrimSpace(payload.PublicID)
	if len(values) == 0 && image == nil && publicID == "" {
		return nil, apperrors.NewValidationError("Nothing to update.", nil)
	}

	var uploaded *filestorage.UploadResult
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if publicID != "" {
			removedURL, err := s.imageRepo.DeleteByPublicIDInTx(ctx, tx, empID, publicID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return apperrors.NewNotFoundError("Image not found.")
				}
				return err
			}
			if err := s.storage.Delete(ctx, publicID); err != nil {
				return apperrors.NewInternalError("Failed to delete the previous image", err)
			}
			logger.Info("Previous profile image removed", zap.String("public_id", publicID))

			if image == nil && current.ProfilePicture.Valid && current.ProfilePicture.String == removedURL {
				if err := s.userRepo.UpdateProfilePictureInTx(ctx, tx, empID, ""); err != nil {
					return err
				}
			}
		}

		if image != nil {
			var err error
			if uploaded, err = s.upload(ctx, image); err != nil {
				return err
			}
			if err := s.imageRepo.CreateInTx(ctx, tx, newProfileImage(empID, uploaded, image.Filename)); err != nil {
				return err
			}
			if err := s.userRepo.UpdateProfilePictureInTx(ctx, tx, empID, uploaded.URL); err != nil {
				return err
			}
		}

		if len(values) == 0 {
			return nil
		}
		query, err := s.updateBuilder.Build("users", repositories.Fields{"emp_id": empID}, values)
		if err != nil {
			return apperrors.NewBadRequestError(err.Error())
		}
		return s.userRepo.UpdateProfileInTx(ctx, tx, query)
	})
	if err != nil {
		if uploaded != nil {
			s.discardUpload(uploaded.PublicID)
		}
		var httpErr *apperrors.HttpError
		if !errors.As(err, &httpErr) && errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found.")
		}
		return nil, err
	}

	logger.Info("User profile updated", zap.Int("fields", len(values)), zap.Bool("new_image", image != nil))
	return s.GetProfile(ctx, empID)
}

func (s *UserService) ListEmployeeIDs(ctx context.Context) ([]dto.EmployeeIDDTO, error) {
	refs, err := s.userRepo.ListEmployeeIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EmployeeIDDTO, 0, len(refs))
	for _, r := range refs {
		out = append(out, dto.EmployeeIDDTO{EmpID: r.EmpID, Name: r.Name})
	}
	return out, nil
}

func (s *UserService) GetLeaveCounts(ctx context.Context, empID string) ([]dto.LeaveCountDTO, error) {
	if !s.idGen.Valid(empID) {
		return nil, apperrors.NewNotFoundError("User not found.")
	}
	exists, err := s.userRepo.Exists(ctx, empID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFoundError("User not found.")
	}

	counts, err := s.leaveRepo.ListForEmployee(ctx, empID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LeaveCountDTO, 0, len(counts))
	for _, c := range counts {
		out = append(out, dto.LeaveCountDTO{LeaveType: c.LeaveType, LeaveCount: c.LeaveCount})
	}
	return out, nil
}

func (s *UserService) upload(ctx context.Context, image *dto.FileUpload) (*filestorage.UploadResult, error) {
	prefix := config.UploadContexts[profileUploadContext].PathPrefix
	res, err := s.storage.Upload(ctx, image.Reader, image.Filename, prefix)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to upload image", err)
	}
	return res, nil
}

// discardUpload removes an object whose database records were rolled back.
func (s *UserService) discardUpload(publicID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, publicID); err != nil {
		s.logger.Error("Failed to remove orphaned upload", zap.String("public_id", publicID), zap.Error(err))
	}
}

func newProfileImage(empID string, uploaded *filestorage.UploadResult, originalName string) *entities.Image {
	return &entities.Image{
		Purpose:      entities.ImagePurposeProfile,
		URL:          uploaded.URL,
		PublicID:     uploaded.PublicID,
		EmpID:        empID,
		OriginalName: null.NewString(originalName, originalName != ""),
	}
}

func registerPayloadToEntity(p dto.RegisterUserDTO, role string) *entities.User {
	u := &entities.User{
		Username:                   p.Username,
		FirstName:                  strings.TrimSpace(p.FirstName),
		LastName:                   strings.TrimSpace(p.LastName),
		Email:                      p.Email,
		Gender:                     optionalString(p.Gender),
		BloodGroup:                 optionalString(p.BloodGroup),
		MobileNumber:               optionalString(p.MobileNumber),
		EmergencyContactNumber:     optionalString(p.EmergencyContactNumber),
		EmergencyContactPersonInfo: optionalString(p.EmergencyContactPersonInfo),
		Address:                    optionalString(p.Address),
		Dob:                        optionalString(p.Dob),
		Designation:                optionalString(p.Designation),
		DesignationType:            optionalString(p.DesignationType),
		JoiningDate:                optionalString(p.JoiningDate),
		Experience:                 optionalString(p.Experience),
		Performance:                optionalString(p.Performance),
		Teams:                      optionalString(p.Teams),
		ClientReport:               optionalString(p.ClientReport),
		Role:                       role,
	}
	if p.CompletedProjects != nil {
		u.CompletedProjects = null.IntFrom(*p.CompletedProjects)
	}
	return u
}

func optionalString(s string) null.String {
	s = strings.TrimSpace(s)
	return null.NewString(s, s != "")
}

func userEntityToDTO(u *entities.User) *dto.UserDTO {
	if u == nil {
		return nil
	}
	return &dto.UserDTO{
		EmpID:                      u.EmpID,
		Username:                   u.Username,
		FirstName:                  u.FirstName,
		LastName:                   u.LastName,
		Email:                      u.Email,
		Gender:                     u.Gender.Ptr(),
		ProfilePicture:             u.ProfilePicture.Ptr(),
		ProfilePublicID:            u.ProfilePublicID.Ptr(),
		BloodGroup:                 u.BloodGroup.Ptr(),
		MobileNumber:               u.MobileNumber.Ptr(),
		EmergencyContactNumber:     u.EmergencyContactNumber.Ptr(),
		EmergencyContactPersonInfo: u.EmergencyContactPersonInfo.Ptr(),
		Address:                    u.Address.Ptr(),
		Dob:                        u.Dob.Ptr(),
		Designation:                u.Designation.Ptr(),
		DesignationType:            u.DesignationType.Ptr(),
		JoiningDate:                u.JoiningDate.Ptr(),
		Experience:                 u.Experience.Ptr(),
		CompletedProjects:          u.CompletedProjects.Ptr(),
		Performance:                u.Performance.Ptr(),
		Teams:                      u.Teams.Ptr(),
		ClientReport:               u.ClientReport.Ptr(),
		Role:                       u.Role,
		CreatedAt:                  u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                  u.UpdatedAt.Format(time.RFC3339),
	}
}
