package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"photofolio/internal/apperror"
	"photofolio/internal/models"
	"photofolio/internal/storage"
)

// Pagination defaults and bounds for photo listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// CreatePhotoInput carries the fields for a new photo. Tags must already be
// normalized; Image is the resolved single image source.
type CreatePhotoInput struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	Image       models.ImageSource
}

// UpdatePhotoInput carries a partial photo update. Nil fields are left
// untouched.
type UpdatePhotoInput struct {
	Title       *string
	Description *string
	Category    *string
	Tags        *[]string
	Image       *models.ImageSource
}

// PhotoPage is one page of a user's photo listing.
type PhotoPage struct {
	Photos      []models.Photo
	Count       int
	Total       int
	TotalPages  int
	CurrentPage int
}

// PhotoServiceProvider defines the interface for photo services. Every method
// takes the owning user's ID; there is no way to reach another user's photos.
type PhotoServiceProvider interface {
	CreatePhoto(userID string, in CreatePhotoInput) (models.Photo, error)
	ListPhotos(userID, category string, page, limit int) (PhotoPage, error)
	GetPhotoByID(userID, id string) (models.Photo, error)
	UpdatePhoto(userID, id string, in UpdatePhotoInput) (models.Photo, error)
	DeletePhoto(userID, id string) error
}

// PhotoService provides business logic for photo records and coordinates the
// file-storage side effects of record mutations.
type PhotoService struct {
	db    *sql.DB
	files *storage.FileStore
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(db *sql.DB, files *storage.FileStore) *PhotoService {
	return &PhotoService{db: db, files: files}
}

const photoColumns = "id, user_id, title, description, image_url, category, tags_json, likes, created_at, updated_at"

func scanPhoto(scanner interface{ Scan(...interface{}) error }) (models.Photo, error) {
	var photo models.Photo
	var tagsJSON sql.NullString
	err := scanner.Scan(
		&photo.ID, &photo.UserID, &photo.Title, &photo.Description,
		&photo.ImageURL, &photo.Category, &tagsJSON, &photo.Likes,
		&photo.CreatedAt, &photo.UpdatedAt,
	)
	if err != nil {
		return photo, err
	}
	photo.TagsJSON = tagsJSON.String
	photo.PrepareForAPI()
	return photo, nil
}

// CreatePhoto inserts a new photo record owned by userID.
func (s *PhotoService) CreatePhoto(userID string, in CreatePhotoInput) (models.Photo, error) {
	photo := models.Photo{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.Image.Ref,
		Category:    in.Category,
		Tags:        in.Tags,
	}
	if photo.Category == "" {
		photo.Category = models.DefaultCategory
	}
	now := time.Now().UTC()
	photo.CreatedAt = now
	photo.UpdatedAt = now
	photo.PrepareForSave()

	_, err := s.db.Exec(
		"INSERT INTO photos(id, user_id, title, description, image_url, category, tags_json, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)",
		photo.ID, photo.UserID, photo.Title, photo.Description,
		photo.ImageURL, photo.Category, photo.TagsJSON,
		photo.CreatedAt, photo.UpdatedAt,
	)
	if err != nil {
		return models.Photo{}, apperror.NewInternalError("Failed to create photo", err)
	}

	return s.GetPhotoByID(userID, photo.ID)
}

// ListPhotos returns one page of the user's photos, newest first, optionally
// filtered by category. The page size is clamped to MaxPageSize.
func (s *PhotoService) ListPhotos(userID, category string, page, limit int) (PhotoPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	query := "SELECT " + photoColumns + " FROM photos WHERE user_id = ?"
	countQuery := "SELECT COUNT(*) FROM photos WHERE user_id = ?"
	args := []interface{}{userID}
	if category != "" {
		query += " AND category = ?"
		countQuery += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"

	var total int
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return PhotoPage{}, apperror.NewInternalError("Failed to count photos", err)
	}

	rows, err := s.db.Query(query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return PhotoPage{}, apperror.NewInternalError("Failed to list photos", err)
	}
	defer rows.Close()

	photos := []models.Photo{}
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return PhotoPage{}, apperror.NewInternalError("Failed to scan photo", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return PhotoPage{}, apperror.NewInternalError("Failed to list photos", err)
	}

	return PhotoPage{
		Photos:      photos,
		Count:       len(photos),
		Total:       total,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
	}, nil
}

// GetPhotoByID returns the photo only if it is owned by userID. An ownership
// mismatch is indistinguishable from a missing record.
func (s *PhotoService) GetPhotoByID(userID, id string) (models.Photo, error) {
	row := s.db.QueryRow("SELECT "+photoColumns+" FROM photos WHERE id = ? AND user_id = ?", id, userID)
	photo, err := scanPhoto(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Photo{}, apperror.NewNotFoundError("Photo not found")
		}
		return models.Photo{}, apperror.NewInternalError("Failed to load photo", err)
	}
	return photo, nil
}

// UpdatePhoto applies a partial update to an owned photo. When a newly
// uploaded file replaces a server-hosted image, the old file is removed after
// the record write succeeds; removal failure is logged, not surfaced.
func (s *PhotoService) UpdatePhoto(userID, id string, in UpdatePhotoInput) (models.Photo, error) {
	photo, err := s.GetPhotoByID(userID, id)
	if err != nil {
		return models.Photo{}, err
	}
	oldImageURL := photo.ImageURL

	if in.Title != nil {
		photo.Title = *in.Title
	}
	if in.Description != nil {
		photo.Description = *in.Description
	}
	if in.Category != nil {
		photo.Category = *in.Category
	}
	if in.Tags != nil {
		photo.Tags = *in.Tags
	}
	if in.Image != nil {
		photo.ImageURL = in.Image.Ref
	}
	photo.PrepareForSave()

	_, err = s.db.Exec(
		"UPDATE photos SET title = ?, description = ?, image_url = ?, category = ?, tags_json = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		photo.Title, photo.Description, photo.ImageURL, photo.Category, photo.TagsJSON, time.Now().UTC(), id, userID,
	)
	if err != nil {
		return models.Photo{}, apperror.NewInternalError("Failed to update photo", err)
	}

	// Only a replacing file upload releases the old server-hosted file.
	if in.Image != nil && in.Image.Kind == models.ImageUploaded &&
		models.IsUploadedImage(oldImageURL) && oldImageURL != photo.ImageURL {
		s.removeFile(oldImageURL, id)
	}

	return s.GetPhotoByID(userID, id)
}

// DeletePhoto removes an owned photo record, releasing its server-hosted file
// if it has one.
func (s *PhotoService) DeletePhoto(userID, id string) error {
	photo, err := s.GetPhotoByID(userID, id)
	if err != nil {
		return err
	}

	if models.IsUploadedImage(photo.ImageURL) {
		s.removeFile(photo.ImageURL, id)
	}

	if _, err := s.db.Exec("DELETE FROM photos WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return apperror.NewInternalError("Failed to delete photo", err)
	}
	return nil
}

// removeFile is the best-effort cleanup path: failures are logged so orphaned
// files stay discoverable, but the record mutation still succeeds.
func (s *PhotoService) removeFile(imageURL, photoID string) {
	if err := s.files.Remove(imageURL); err != nil {
		log.Warn().Err(err).
			Str("photo_id", photoID).
			Str("image_url", imageURL).
			Msg("Failed to remove stored image file")
	}
}
