package routes

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"homeswap-server/models"
	"homeswap-server/storage"
	"homeswap-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

func CreateHome(ctx iris.Context) {
	var input CreateHomeInput

	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !input.AvailableFrom.Before(input.AvailableTo) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "availableFrom must be before availableTo", ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	photoURLs := uploadHomePhotos(input.Photos)
	photosJSON, _ := json.Marshal(photoURLs)

	home := models.Home{
		OwnerID:       claims.ID,
		Title:         input.Title,
		Description:   input.Description,
		Location:      strings.TrimSpace(input.Location),
		RoomCount:     input.RoomCount,
		AvailableFrom: input.AvailableFrom,
		AvailableTo:   input.AvailableTo,
		Photos:        photosJSON,
	}

	result := storage.DB.Create(&home)
	if result.Error != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "Failed to create home"})
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(home)
}

func GetHome(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var home models.Home
	if err := storage.DB.First(&home, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Home not found.", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(home)
}

// GetHomesByUser lists a user's homes through an explicit owner query.
func GetHomesByUser(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var homes []models.Home
	if err := storage.DB.Where("owner_id = ?", id).Order("id ASC").Find(&homes).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(homes)
}

// SearchHomes filters homes by location, case-insensitively.
func SearchHomes(ctx iris.Context) {
	q := storage.DB.Model(&models.Home{})

	if location := strings.TrimSpace(ctx.URLParam("location")); location != "" {
		q = q.Where("LOWER(location) = LOWER(?)", location)
	}
	if minRooms, err := ctx.URLParamInt("minRooms"); err == nil && minRooms > 0 {
		q = q.Where("room_count >= ?", minRooms)
	}

	var homes []models.Home
	if err := q.Order("created_at DESC").Find(&homes).Error; err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to search homes"})
		return
	}

	ctx.JSON(homes)
}

func UpdateHome(ctx iris.Context) {
	id := ctx.Params().Get("id")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var home models.Home
	if err := storage.DB.First(&home, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Home not found.", ctx)
		return
	}

	if home.OwnerID != claims.ID {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	var input UpdateHomeInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Title != "" {
		home.Title = input.Title
	}
	if input.Description != "" {
		home.Description = input.Description
	}
	if input.Location != "" {
		home.Location = strings.TrimSpace(input.Location)
	}
	if input.RoomCount > 0 {
		home.RoomCount = input.RoomCount
	}
	if !input.AvailableFrom.IsZero() && !input.AvailableTo.IsZero() {
		if !input.AvailableFrom.Before(input.AvailableTo) {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "availableFrom must be before availableTo", ctx)
			return
		}
		home.AvailableFrom = input.AvailableFrom
		home.AvailableTo = input.AvailableTo
	}
	if input.Photos != nil {
		photoURLs := uploadHomePhotos(input.Photos)
		photosJSON, _ := json.Marshal(photoURLs)
		home.Photos = photosJSON
	}

	if err := storage.DB.Save(&home).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(home)
}

func DeleteHome(ctx iris.Context) {
	id := ctx.Params().Get("id")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var home models.Home
	if err := storage.DB.First(&home, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Home not found.", ctx)
		return
	}

	if home.OwnerID != claims.ID {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	if err := storage.DB.Delete(&home).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

// uploadHomePhotos pushes base64 photos to Cloudinary and keeps the
// submitted order. Entries that fail to upload are dropped.
func uploadHomePhotos(photos []string) []string {
	urls := []string{}
	for i, photo := range photos {
		if strings.HasPrefix(photo, "http") {
			// Already hosted; keep as-is.
			urls = append(urls, photo)
			continue
		}
		publicID := fmt.Sprintf("home-%s-%d-%d", uuid.NewString(), time.Now().Unix(), i)
		if url := storage.UploadBase64Photo(photo, publicID); url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

type CreateHomeInput struct {
	Title         string    `json:"title" validate:"required,max=256"`
	Description   string    `json:"description" validate:"max=2048"`
	Location      string    `json:"location" validate:"required,max=256"`
	RoomCount     int       `json:"roomCount" validate:"required,min=1"`
	AvailableFrom time.Time `json:"availableFrom" validate:"required"`
	AvailableTo   time.Time `json:"availableTo" validate:"required"`
	Photos        []string  `json:"photos"`
}

type UpdateHomeInput struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	RoomCount     int       `json:"roomCount"`
	AvailableFrom time.Time `json:"availableFrom"`
	AvailableTo   time.Time `json:"availableTo"`
	Photos        []string  `json:"photos"`
}
