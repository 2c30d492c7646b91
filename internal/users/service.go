package users

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartline/cartline-backend/pkg/db"
	"github.com/cartline/cartline-backend/pkg/db/models"
	pkgerrors "github.com/cartline/cartline-backend/pkg/errors"
	"github.com/cartline/cartline-backend/pkg/storage"
	"github.com/cartline/cartline-backend/pkg/types"
	"github.com/cartline/cartline-backend/pkg/validation"
)

const profileImagePrefix = "users/profile"

// Service covers signup, profile reads and partial profile updates.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*UserDTO, error)
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

type service struct {
	repo   userRepository
	hasher passwordHasher
	media  storage.ObjectStore
}

// ServiceParams bundles the dependencies of the users service.
type ServiceParams struct {
	Repo   userRepository
	Hasher passwordHasher
	Media  storage.ObjectStore
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	if params.Media == nil {
		return nil, fmt.Errorf("media store required")
	}
	return &service{repo: params.Repo, hasher: params.Hasher, media: params.Media}, nil
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*UserDTO, error) {
	in.Email = NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := validateRegister(in); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, uuid.Nil, in.Phone, in.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	imageURL, err := s.uploadImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		ProfileImage: imageURL,
		PasswordHash: hash,
		Address:      trimAddress(*in.Address),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*UserDTO, error) {
	if in.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one field is required to update")
	}
	if in.Email != nil {
		email := NormalizeEmail(*in.Email)
		in.Email = &email
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		in.Phone = &phone
	}
	if err := validateUpdate(in); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	var phone, email string
	if in.Phone != nil && *in.Phone != user.Phone {
		phone = *in.Phone
	}
	if in.Email != nil && *in.Email != user.Email {
		email = *in.Email
	}
	if err := s.ensureUnique(ctx, user.ID, phone, email); err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.Address != nil {
		user.Address = in.Address.Apply(user.Address)
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = hash
	}
	if in.Image != nil {
		imageURL, err := s.uploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		user.ProfileImage = imageURL
	}

	if err := s.repo.Save(ctx, user); err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

// ensureUnique rejects a phone or email already held by a user other than self.
// Empty values are skipped. Phone is checked first.
func (s *service) ensureUnique(ctx context.Context, self uuid.UUID, phone, email string) error {
	if phone != "" {
		existing, err := s.repo.FindByPhone(ctx, phone)
		switch {
		case err == nil && existing.ID != self:
			return pkgerrors.New(pkgerrors.CodeConflict, "phone number is already in use")
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check phone")
		}
	}
	if email != "" {
		existing, err := s.repo.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != self:
			return pkgerrors.New(pkgerrors.CodeConflict, "email is already in use")
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
	}
	return nil
}

func (s *service) uploadImage(ctx context.Context, img *ImageUpload) (string, error) {
	object := storage.ObjectName(profileImagePrefix, img.Extension)
	url, err := s.media.Upload(ctx, object, img.ContentType, bytes.NewReader(img.Data))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload profile image")
	}
	return url, nil
}

// uniqueConflict maps a unique-index violation that slipped past ensureUnique.
func uniqueConflict(err error) error {
	switch {
	case db.IsUniqueViolation(err, "phone"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "phone number is already in use")
	case db.IsUniqueViolation(err, "email"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email is already in use")
	}
	return nil
}

func trimAddress(a types.Address) types.Address {
	trim := func(l types.AddressLine) types.AddressLine {
		return types.AddressLine{
			Street:  strings.TrimSpace(l.Street),
			City:    strings.TrimSpace(l.City),
			Pincode: strings.TrimSpace(l.Pincode),
		}
	}
	return types.Address{Shipping: trim(a.Shipping), Billing: trim(a.Billing)}
}

func validateRegister(in RegisterInput) error {
	fields := fieldErrors{}
	fields.require("fname", in.FirstName)
	fields.require("lname", in.LastName)
	if fields.require("email", in.Email) && !validation.IsEmail(in.Email) {
		fields.add("email", "must be a valid email address")
	}
	if fields.require("phone", in.Phone) && !validation.IsPhone(in.Phone) {
		fields.add("phone", "must be a valid 10 digit mobile number")
	}
	if fields.require("password", in.Password) && !validation.IsPassword(in.Password) {
		fields.add("password", passwordRule)
	}
	if in.Address == nil {
		fields.add("address", "is required")
	} else {
		fields.addressLine("address.shipping", in.Address.Shipping)
		fields.addressLine("address.billing", in.Address.Billing)
	}
	if in.Image == nil || len(in.Image.Data) == 0 {
		fields.add("profileImage", "is required")
	}
	return fields.err()
}

func validateUpdate(in UpdateInput) error {
	fields := fieldErrors{}
	if in.FirstName != nil {
		fields.require("fname", *in.FirstName)
	}
	if in.LastName != nil {
		fields.require("lname", *in.LastName)
	}
	if in.Email != nil && fields.require("email", *in.Email) && !validation.IsEmail(*in.Email) {
		fields.add("email", "must be a valid email address")
	}
	if in.Phone != nil && fields.require("phone", *in.Phone) && !validation.IsPhone(*in.Phone) {
		fields.add("phone", "must be a valid 10 digit mobile number")
	}
	if in.Password != nil && fields.require("password", *in.Password) && !validation.IsPassword(*in.Password) {
		fields.add("password", passwordRule)
	}
	if in.Address != nil {
		fields.addressPatch("address.shipping", in.Address.Shipping)
		fields.addressPatch("address.billing", in.Address.Billing)
	}
	if in.Image != nil && len(in.Image.Data) == 0 {
		fields.add("profileImage", "must not be empty")
	}
	return fields.err()
}

const passwordRule = "must be 8-15 characters of letters, digits or !@#$%^&*"

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

// require records a missing value and reports whether the value was present.
func (f fieldErrors) require(field, value string) bool {
	if !validation.IsPresent(value) {
		f.add(field, "is required")
		return false
	}
	return true
}

func (f fieldErrors) addressLine(prefix string, line types.AddressLine) {
	f.require(prefix+".street", line.Street)
	f.require(prefix+".city", line.City)
	if f.require(prefix+".pincode", line.Pincode) && !validation.IsPincode(line.Pincode) {
		f.add(prefix+".pincode", "must be a valid 6 digit pincode")
	}
}

func (f fieldErrors) addressPatch(prefix string, patch *types.AddressLinePatch) {
	if patch == nil {
		return
	}
	if patch.Street != nil {
		f.require(prefix+".street", *patch.Street)
	}
	if patch.City != nil {
		f.require(prefix+".city", *patch.City)
	}
	if patch.Pincode != nil && f.require(prefix+".pincode", *patch.Pincode) && !validation.IsPincode(*patch.Pincode) {
		f.add(prefix+".pincode", "must be a valid 6 digit pincode")
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string(f))
}
