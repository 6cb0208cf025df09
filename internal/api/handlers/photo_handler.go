package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"photofolio/internal/apperror"
	"photofolio/internal/api/response"
	"photofolio/internal/auth"
	"photofolio/internal/models"
	"photofolio/internal/services"
	"photofolio/internal/storage"
	"photofolio/internal/validation"
)

// maxUploadSize bounds the in-memory portion of multipart parsing.
const maxUploadSize = 10 << 20 // 10 MiB

// PhotoHandler handles the photo CRUD endpoints.
type PhotoHandler struct {
	service services.PhotoServiceProvider
	files   *storage.FileStore
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(service services.PhotoServiceProvider, files *storage.FileStore) *PhotoHandler {
	return &PhotoHandler{service: service, files: files}
}

// CreatePhotoPayload defines the multipart fields for photo creation.
type CreatePhotoPayload struct {
	Title       string   `validate:"required,max=100"`
	Description string   `validate:"max=1000"`
	ImageURL    string   `validate:"omitempty,url"`
	Category    string   `validate:"omitempty,oneof=landscape portrait street nature architecture wildlife macro abstract other"`
	Tags        []string `validate:"max=10,dive,max=50"`
}

// UpdatePhotoPayload defines the multipart fields for photo updates. Absent
// fields leave the record untouched.
type UpdatePhotoPayload struct {
	Title       *string   `validate:"omitempty,max=100"`
	Description *string   `validate:"omitempty,max=1000"`
	ImageURL    *string   `validate:"omitempty,url"`
	Category    *string   `validate:"omitempty,oneof=landscape portrait street nature architecture wildlife macro abstract other"`
	Tags        *[]string `validate:"omitempty,max=10,dive,max=50"`
}

// listResponse is the paginated listing envelope.
type listResponse struct {
	Success     bool           `json:"success"`
	Count       int            `json:"count"`
	Total       int            `json:"total"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Data        []models.Photo `json:"data"`
}

// parseForm parses either a multipart or urlencoded body.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxUploadSize)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// imageFile returns the uploaded "image" part, if any.
func imageFile(r *http.Request) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		return files[0]
	}
	return nil
}

// formPtr returns the form value for key, or nil if the field was absent.
func formPtr(r *http.Request, key string) *string {
	if r.MultipartForm != nil {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			return &vs[0]
		}
	}
	if vs, ok := r.PostForm[key]; ok && len(vs) > 0 {
		return &vs[0]
	}
	return nil
}

// Create handles POST /api/photos. Exactly one image source is required:
// an uploaded "image" file or an imageUrl field.
func (h *PhotoHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		response.Error(w, apperror.NewAuthenticationError("Not authorized"))
		return
	}

	if err := parseForm(r); err != nil {
		response.Error(w, apperror.NewValidationError("Invalid request body"))
		return
	}

	payload := CreatePhotoPayload{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		ImageURL:    r.FormValue("imageUrl"),
		Category:    r.FormValue("category"),
		Tags:        models.NormalizeTags(r.FormValue("tags")),
	}
	if msgs := validation.Check(payload); len(msgs) > 0 {
		response.Error(w, apperror.NewFieldErrors(msgs))
		return
	}

	file := imageFile(r)
	if file == nil && payload.ImageURL == "" {
		response.Error(w, apperror.NewValidationError("Please provide an image file or URL"))
		return
	}

	var image models.ImageSource
	if file != nil {
		url, err := h.files.Save(file)
		if err != nil {
			handleError(w, r, apperror.NewInternalError("Failed to store uploaded file", err))
			return
		}
		image = models.UploadedImage(url)
	} else {
		image = models.ExternalImage(payload.ImageURL)
	}

	photo, err := h.service.CreatePhoto(claims.UserID, services.CreatePhotoInput{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Tags:        payload.Tags,
		Image:       image,
	})
	if err != nil {
		// The record mutation failed, so release the file we just stored.
		if image.Kind == models.ImageUploaded {
			h.removeFile(image.Ref)
		}
		handleError(w, r, err)
		return
	}

	response.OK(w, http.StatusCreated, "Photo created successfully", photo)
}

// List handles GET /api/photos with optional category filter and pagination.
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		response.Error(w, apperror.NewAuthenticationError("Not authorized"))
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = services.DefaultPageSize
	}

	result, err := h.service.ListPhotos(claims.UserID, q.Get("category"), page, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, listResponse{
		Success:     true,
		Count:       result.Count,
		Total:       result.Total,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
		Data:        result.Photos,
	})
}

// Get handles GET /api/photos/{id}.
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		response.Error(w, apperror.NewAuthenticationError("Not authorized"))
		return
	}

	photo, err := h.service.GetPhotoByID(claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "", photo)
}

// Update handles PUT /api/photos/{id}. All fields are optional; a new image
// file or imageUrl replaces the stored reference.
func (h *PhotoHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		response.Error(w, apperror.NewAuthenticationError("Not authorized"))
		return
	}
	id := chi.URLParam(r, "id")

	if err := parseForm(r); err != nil {
		response.Error(w, apperror.NewValidationError("Invalid request body"))
		return
	}

	payload := UpdatePhotoPayload{
		Title:       formPtr(r, "title"),
		Description: formPtr(r, "description"),
		ImageURL:    formPtr(r, "imageUrl"),
		Category:    formPtr(r, "category"),
	}
	if raw := formPtr(r, "tags"); raw != nil && *raw != "" {
		tags := models.NormalizeTags(*raw)
		payload.Tags = &tags
	}
	if msgs := validation.Check(payload); len(msgs) > 0 {
		response.Error(w, apperror.NewFieldErrors(msgs))
		return
	}

	in := services.UpdatePhotoInput{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Tags:        payload.Tags,
	}

	var newUpload string
	if file := imageFile(r); file != nil {
		url, err := h.files.Save(file)
		if err != nil {
			handleError(w, r, apperror.NewInternalError("Failed to store uploaded file", err))
			return
		}
		newUpload = url
		image := models.UploadedImage(url)
		in.Image = &image
	} else if payload.ImageURL != nil && *payload.ImageURL != "" {
		image := models.ExternalImage(*payload.ImageURL)
		in.Image = &image
	}

	photo, err := h.service.UpdatePhoto(claims.UserID, id, in)
	if err != nil {
		if newUpload != "" {
			h.removeFile(newUpload)
		}
		handleError(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "Photo updated successfully", photo)
}

// Delete handles DELETE /api/photos/{id}.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		response.Error(w, apperror.NewAuthenticationError("Not authorized"))
		return
	}

	if err := h.service.DeletePhoto(claims.UserID, chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "Photo deleted successfully", nil)
}

func (h *PhotoHandler) removeFile(imageURL string) {
	if err := h.files.Remove(imageURL); err != nil {
		log.Warn().Err(err).Str("image_url", imageURL).Msg("Failed to remove stored image file")
	}
}
