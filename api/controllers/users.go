package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/cartline/cartline-backend/api/responses"
	"github.com/cartline/cartline-backend/api/validators"
	"github.com/cartline/cartline-backend/internal/users"
	pkgerrors "github.com/cartline/cartline-backend/pkg/errors"
	"github.com/cartline/cartline-backend/pkg/logger"
	"github.com/cartline/cartline-backend/pkg/types"
)

const profileImageField = "profileImage"

type updateUserRequest struct {
	FirstName *string             `json:"fname"`
	LastName  *string             `json:"lname"`
	Email     *string             `json:"email"`
	Phone     *string             `json:"phone"`
	Password  *string             `json:"password"`
	Address   *types.AddressPatch `json:"address"`
}

func (r updateUserRequest) toInput() users.UpdateInput {
	return users.UpdateInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Password:  r.Password,
		Address:   r.Address,
	}
}

// UserRegister handles the multipart signup form.
func UserRegister(svc users.Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}
		if err := validators.ParseMultipartForm(w, r, maxUpload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		in := users.RegisterInput{}
		in.FirstName, _ = validators.FormValue(r, "fname")
		in.LastName, _ = validators.FormValue(r, "lname")
		in.Email, _ = validators.FormValue(r, "email")
		in.Phone, _ = validators.FormValue(r, "phone")
		in.Password, _ = validators.FormValue(r, "password")

		if raw, ok := validators.FormValue(r, "address"); ok && raw != "" {
			var addr types.Address
			if err := json.Unmarshal([]byte(raw), &addr); err != nil {
				responses.WriteError(r.Context(), logg, w, invalidAddress(err))
				return
			}
			in.Address = &addr
		}

		image, err := validators.FormImage(r, profileImageField, maxUpload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		in.Image = toImageUpload(image)

		user, err := svc.Register(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "user created successfully", user)
	}
}

func UserGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}
		userID, err := validators.PathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "user profile details", user)
	}
}

// UserUpdate accepts either a JSON body or a multipart form carrying a new profile image.
func UserUpdate(svc users.Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}
		userID, err := validators.PathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var in users.UpdateInput
		if validators.IsMultipart(r) {
			in, err = multipartUpdate(w, r, maxUpload)
		} else {
			var body updateUserRequest
			err = validators.DecodeJSONBody(w, r, &body)
			in = body.toInput()
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Update(r.Context(), userID, in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "user profile updated", user)
	}
}

func multipartUpdate(w http.ResponseWriter, r *http.Request, maxUpload int64) (users.UpdateInput, error) {
	if err := validators.ParseMultipartForm(w, r, maxUpload); err != nil {
		return users.UpdateInput{}, err
	}

	optional := func(key string) *string {
		if v, ok := validators.FormValue(r, key); ok {
			return &v
		}
		return nil
	}
	in := users.UpdateInput{
		FirstName: optional("fname"),
		LastName:  optional("lname"),
		Email:     optional("email"),
		Phone:     optional("phone"),
		Password:  optional("password"),
	}
	if raw := optional("address"); raw != nil && *raw != "" {
		var patch types.AddressPatch
		if err := json.Unmarshal([]byte(*raw), &patch); err != nil {
			return users.UpdateInput{}, invalidAddress(err)
		}
		in.Address = &patch
	}

	image, err := validators.FormImage(r, profileImageField, maxUpload)
	if err != nil {
		return users.UpdateInput{}, err
	}
	in.Image = toImageUpload(image)
	return in, nil
}

func toImageUpload(u *validators.Upload) *users.ImageUpload {
	if u == nil {
		return nil
	}
	return &users.ImageUpload{Data: u.Data, ContentType: u.ContentType, Extension: u.Extension}
}

func invalidAddress(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed").
		WithDetails(map[string]string{"address": "must be a JSON object with shipping and billing"})
}
