package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/services"
	"github.com/yeremiapane/food-ordering-app/utils"
	"gorm.io/gorm"
)

const maxUploadSize = 10 << 20

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

type MenuController struct {
	DB        *gorm.DB
	Catalog   *services.CatalogService
	UploadDir string
}

func NewMenuController(db *gorm.DB, catalog *services.CatalogService, uploadDir string) *MenuController {
	return &MenuController{DB: db, Catalog: catalog, UploadDir: uploadDir}
}

func foodFilter(c *gin.Context) (services.FoodFilter, error) {
	f := services.FoodFilter{
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 12),
	}
	var err error
	if f.CategoryID, err = queryUint(c, "category_id"); err != nil {
		return f, err
	}
	if f.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		return f, err
	}
	return f, nil
}

func (mc *MenuController) listFoods(c *gin.Context, f services.FoodFilter) {
	foods, total, err := mc.Catalog.ListFoods(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 12
	}
	utils.RespondPaged(c, http.StatusOK, "List of menus", foods, f.Page, f.PageSize, total)
}

// GetAllMenus -> katalog publik, hanya yang tersedia
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	f, err := foodFilter(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	available := true
	f.Available = &available
	mc.listFoods(c, f)
}

// GetAdminMenus -> termasuk yang tidak tersedia
func (mc *MenuController) GetAdminMenus(c *gin.Context) {
	f, err := foodFilter(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if v := c.Query("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid available"))
			return
		}
		f.Available = &b
	}
	mc.listFoods(c, f)
}

// GetPopularMenus
func (mc *MenuController) GetPopularMenus(c *gin.Context) {
	foods, err := mc.Catalog.PopularFoods(c.Request.Context(), queryInt(c, "limit", 8))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Popular menus", foods)
}

// GetMenuByID -> detail + menu terkait dari kategori yang sama
func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, err := paramID(c, "food_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	food, related, err := mc.Catalog.FoodDetail(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", gin.H{"food": food, "related": related})
}

// saveImage menyimpan file "image" (opsional) dan mengembalikan URL publiknya
func (mc *MenuController) saveImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", errors.New("error processing form")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("image must be one of jpg, jpeg, png, webp")
	}

	dir := filepath.Join(mc.UploadDir, "menu_images")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.New("error creating upload directory")
	}
	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(dir, filename)); err != nil {
		return "", errors.New("error saving image")
	}
	return "/uploads/menu_images/" + filename, nil
}

func (mc *MenuController) removeImage(url string) {
	if !strings.HasPrefix(url, "/uploads/menu_images/") {
		return
	}
	path := filepath.Join(mc.UploadDir, "menu_images", filepath.Base(url))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		utils.ErrorLogger.Printf("Error removing image %s: %v", path, err)
	}
}

type foodForm struct {
	CategoryID  uint
	Name        string
	Description string
	Price       decimal.Decimal
	IsAvailable bool
}

func parseFoodForm(c *gin.Context) (*foodForm, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	categoryID, err := strconv.ParseUint(c.PostForm("category_id"), 10, 32)
	if err != nil || categoryID == 0 {
		return nil, errors.New("invalid category_id")
	}
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		return nil, errors.New("name is required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("price")))
	if err != nil || price.IsNegative() {
		return nil, errors.New("invalid price")
	}
	available := true
	if v := c.PostForm("is_available"); v != "" {
		if available, err = strconv.ParseBool(v); err != nil {
			return nil, errors.New("invalid is_available")
		}
	}
	return &foodForm{
		CategoryID:  uint(categoryID),
		Name:        name,
		Description: strings.TrimSpace(c.PostForm("description")),
		Price:       price,
		IsAvailable: available,
	}, nil
}

func (mc *MenuController) categoryExists(id uint) (bool, error) {
	var n int64
	err := mc.DB.Model(&models.Category{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// CreateMenu (multipart): category_id, name, price, description, is_available, image
func (mc *MenuController) CreateMenu(c *gin.Context) {
	form, err := parseFoodForm(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if ok, err := mc.categoryExists(form.CategoryID); err != nil || !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("category not found"))
		return
	}

	imageUrl, err := mc.saveImage(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	food := models.Food{
		CategoryID:  form.CategoryID,
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		ImageUrl:    imageUrl,
		IsAvailable: form.IsAvailable,
	}
	if err := mc.DB.Create(&food).Error; err != nil {
		mc.removeImage(imageUrl)
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Menu created", food)
}

// UpdateMenu: gambar lama diganti jika ada upload baru
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, err := paramID(c, "food_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	form, err := parseFoodForm(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var food models.Food
	if err := mc.DB.First(&food, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, services.ErrFoodNotFound)
		return
	}
	if ok, err := mc.categoryExists(form.CategoryID); err != nil || !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("category not found"))
		return
	}

	imageUrl, err := mc.saveImage(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	oldImage := food.ImageUrl
	food.CategoryID = form.CategoryID
	food.Name = form.Name
	food.Description = form.Description
	food.Price = form.Price
	food.IsAvailable = form.IsAvailable
	if imageUrl != "" {
		food.ImageUrl = imageUrl
	}

	if err := mc.DB.Omit("Category").Save(&food).Error; err != nil {
		mc.removeImage(imageUrl)
		respondServiceError(c, err)
		return
	}
	if imageUrl != "" && oldImage != "" {
		mc.removeImage(oldImage)
	}

	utils.RespondJSON(c, http.StatusOK, "Menu updated successfully", food)
}

// ToggleAvailability
func (mc *MenuController) ToggleAvailability(c *gin.Context) {
	id, err := paramID(c, "food_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var food models.Food
	if err := mc.DB.First(&food, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, services.ErrFoodNotFound)
		return
	}
	food.IsAvailable = !food.IsAvailable
	if err := mc.DB.Model(&food).Update("is_available", food.IsAvailable).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu availability updated", food)
}

// DeleteMenu: order lama tetap menyimpan snapshot nama dan harga
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, err := paramID(c, "food_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var food models.Food
	if err := mc.DB.First(&food, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, services.ErrFoodNotFound)
		return
	}
	if err := mc.DB.Delete(&food).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	mc.removeImage(food.ImageUrl)
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"food_id": id})
}
