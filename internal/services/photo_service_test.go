package services

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photofolio/internal/apperror"
	"photofolio/internal/models"
	"photofolio/internal/storage"
)

type photoEnv struct {
	svc       *PhotoService
	uploadDir string
	alice     string
	bob       string
}

func newPhotoEnv(t *testing.T) photoEnv {
	t.Helper()
	db := newTestDB(t)

	uploadDir := filepath.Join(t.TempDir(), "uploads")
	files, err := storage.NewFileStore(uploadDir)
	require.NoError(t, err)

	// Seed two users directly; password hashing is not under test here.
	for i, name := range []string{"alice", "bob"} {
		_, err := db.Exec(
			"INSERT INTO users(id, username, email, password_hash) VALUES(?, ?, ?, ?)",
			fmt.Sprintf("user-%d", i+1), name, name+"@example.com", "x",
		)
		require.NoError(t, err)
	}

	return photoEnv{
		svc:       NewPhotoService(db, files),
		uploadDir: uploadDir,
		alice:     "user-1",
		bob:       "user-2",
	}
}

// seedUpload drops a file into the upload dir and returns its public URL.
func (e photoEnv) seedUpload(t *testing.T, name string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.uploadDir, name), []byte("img"), 0644))
	return models.UploadURLPrefix + name
}

func (e photoEnv) uploadCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(e.uploadDir)
	require.NoError(t, err)
	return len(entries)
}

func externalInput(title string) CreatePhotoInput {
	return CreatePhotoInput{
		Title: title,
		Image: models.ExternalImage("https://example.com/" + title + ".jpg"),
	}
}

func TestCreateAndGetPhoto(t *testing.T) {
	env := newPhotoEnv(t)

	photo, err := env.svc.CreatePhoto(env.alice, CreatePhotoInput{
		Title:       "Sunset",
		Description: "Golden hour",
		Tags:        []string{"sun", "sky"},
		Image:       models.ExternalImage("https://example.com/sunset.jpg"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, photo.ID)
	assert.Equal(t, env.alice, photo.UserID)
	assert.Equal(t, models.DefaultCategory, photo.Category, "category defaults to other")
	assert.Equal(t, []string{"sun", "sky"}, photo.Tags)
	assert.Equal(t, 0, photo.Likes)

	got, err := env.svc.GetPhotoByID(env.alice, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.ID, got.ID)
	assert.Equal(t, "Sunset", got.Title)
}

func TestOwnershipScoping(t *testing.T) {
	env := newPhotoEnv(t)

	alicePhoto, err := env.svc.CreatePhoto(env.alice, externalInput("a1"))
	require.NoError(t, err)
	_, err = env.svc.CreatePhoto(env.alice, externalInput("a2"))
	require.NoError(t, err)
	_, err = env.svc.CreatePhoto(env.bob, externalInput("b1"))
	require.NoError(t, err)

	page, err := env.svc.ListPhotos(env.alice, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	for _, p := range page.Photos {
		assert.Equal(t, env.alice, p.UserID, "listing must never cross users")
	}

	// Another user's photo is indistinguishable from a missing one.
	_, err = env.svc.GetPhotoByID(env.bob, alicePhoto.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, missingErr := env.svc.GetPhotoByID(env.bob, "no-such-id")
	assert.Equal(t, apperror.From(missingErr).Message, apperror.From(err).Message)

	err = env.svc.DeletePhoto(env.bob, alicePhoto.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, err = env.svc.GetPhotoByID(env.alice, alicePhoto.ID)
	assert.NoError(t, err, "cross-user delete must not remove the record")

	_, err = env.svc.UpdatePhoto(env.bob, alicePhoto.ID, UpdatePhotoInput{})
	assert.True(t, apperror.IsNotFound(err))
}

func TestListPagination(t *testing.T) {
	env := newPhotoEnv(t)
	for i := 0; i < 15; i++ {
		_, err := env.svc.CreatePhoto(env.alice, externalInput(fmt.Sprintf("p%02d", i)))
		require.NoError(t, err)
	}

	page1, err := env.svc.ListPhotos(env.alice, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, page1.Count)
	assert.Equal(t, 15, page1.Total)
	assert.Equal(t, 2, page1.TotalPages)
	assert.Equal(t, 1, page1.CurrentPage)

	page2, err := env.svc.ListPhotos(env.alice, "", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, page2.Count)
	assert.Equal(t, 2, page2.TotalPages)

	// No overlap between pages.
	seen := map[string]bool{}
	for _, p := range append(page1.Photos, page2.Photos...) {
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
	assert.Len(t, seen, 15)
}

func TestListPaginationDefaults(t *testing.T) {
	env := newPhotoEnv(t)
	for i := 0; i < 15; i++ {
		_, err := env.svc.CreatePhoto(env.alice, externalInput(fmt.Sprintf("p%02d", i)))
		require.NoError(t, err)
	}

	// Out-of-range parameters fall back to sane values.
	page, err := env.svc.ListPhotos(env.alice, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, page.Count)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)

	// An oversized limit is clamped rather than honored.
	page, err = env.svc.ListPhotos(env.alice, "", 1, 100000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
}

func TestListNewestFirstAndCategoryFilter(t *testing.T) {
	env := newPhotoEnv(t)

	in := externalInput("old")
	in.Category = "landscape"
	_, err := env.svc.CreatePhoto(env.alice, in)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	in = externalInput("new")
	in.Category = "portrait"
	_, err = env.svc.CreatePhoto(env.alice, in)
	require.NoError(t, err)

	page, err := env.svc.ListPhotos(env.alice, "", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, page.Count)
	assert.Equal(t, "new", page.Photos[0].Title)
	assert.Equal(t, "old", page.Photos[1].Title)

	filtered, err := env.svc.ListPhotos(env.alice, "landscape", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, filtered.Count)
	assert.Equal(t, "old", filtered.Photos[0].Title)
	assert.Equal(t, 1, filtered.Total)
}

func TestUpdatePhotoFields(t *testing.T) {
	env := newPhotoEnv(t)
	photo, err := env.svc.CreatePhoto(env.alice, externalInput("before"))
	require.NoError(t, err)

	title := "after"
	tags := models.NormalizeTags("a, b ,, c")
	updated, err := env.svc.UpdatePhoto(env.alice, photo.ID, UpdatePhotoInput{
		Title: &title,
		Tags:  &tags,
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, []string{"a", "b", "c"}, updated.Tags)
	assert.Equal(t, photo.ImageURL, updated.ImageURL, "image untouched without a new source")
	assert.Equal(t, photo.CreatedAt, updated.CreatedAt)
}

func TestUpdateReplacingUploadDeletesOldFile(t *testing.T) {
	env := newPhotoEnv(t)
	oldURL := env.seedUpload(t, "old.jpg")

	photo, err := env.svc.CreatePhoto(env.alice, CreatePhotoInput{
		Title: "Shot",
		Image: models.UploadedImage(oldURL),
	})
	require.NoError(t, err)

	newURL := env.seedUpload(t, "new.jpg")
	require.Equal(t, 2, env.uploadCount(t))

	newImage := models.UploadedImage(newURL)
	updated, err := env.svc.UpdatePhoto(env.alice, photo.ID, UpdatePhotoInput{Image: &newImage})
	require.NoError(t, err)
	assert.Equal(t, newURL, updated.ImageURL)

	// Exactly the replacement file remains.
	require.Equal(t, 1, env.uploadCount(t))
	_, err = os.Stat(filepath.Join(env.uploadDir, "new.jpg"))
	assert.NoError(t, err)
}

func TestUpdateWithExternalURLKeepsOldFile(t *testing.T) {
	env := newPhotoEnv(t)
	oldURL := env.seedUpload(t, "old.jpg")
	photo, err := env.svc.CreatePhoto(env.alice, CreatePhotoInput{
		Title: "Shot",
		Image: models.UploadedImage(oldURL),
	})
	require.NoError(t, err)

	external := models.ExternalImage("https://example.com/x.jpg")
	updated, err := env.svc.UpdatePhoto(env.alice, photo.ID, UpdatePhotoInput{Image: &external})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x.jpg", updated.ImageURL)

	// Only a replacing file upload releases the old stored file.
	assert.Equal(t, 1, env.uploadCount(t))
}

func TestDeletePhoto(t *testing.T) {
	env := newPhotoEnv(t)
	url := env.seedUpload(t, "gone.jpg")
	photo, err := env.svc.CreatePhoto(env.alice, CreatePhotoInput{
		Title: "Shot",
		Image: models.UploadedImage(url),
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeletePhoto(env.alice, photo.ID))

	_, err = env.svc.GetPhotoByID(env.alice, photo.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, 0, env.uploadCount(t), "server-hosted file is released")
}

func TestDeletePhotoWithExternalURL(t *testing.T) {
	env := newPhotoEnv(t)
	photo, err := env.svc.CreatePhoto(env.alice, externalInput("ext"))
	require.NoError(t, err)

	require.NoError(t, env.svc.DeletePhoto(env.alice, photo.ID))
	_, err = env.svc.GetPhotoByID(env.alice, photo.ID)
	assert.True(t, apperror.IsNotFound(err))
}
