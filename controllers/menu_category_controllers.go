package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/services"
	"github.com/yeremiapane/food-ordering-app/utils"
	"gorm.io/gorm"
)

var errCategoryNotFound = errors.New("category not found")

type CategoryController struct {
	DB      *gorm.DB
	Catalog *services.CatalogService
}

func NewCategoryController(db *gorm.DB, catalog *services.CatalogService) *CategoryController {
	return &CategoryController{DB: db, Catalog: catalog}
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ImageUrl    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
}

// GetActiveCategories -> publik
func (cc *CategoryController) GetActiveCategories(c *gin.Context) {
	categories, err := cc.Catalog.ActiveCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu categories", categories)
}

// GetAllCategories (admin)
func (cc *CategoryController) GetAllCategories(c *gin.Context) {
	var categories []models.Category
	if err := cc.DB.Order("name ASC").Find(&categories).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menu categories", categories)
}

// CreateCategory
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var body categoryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	category := models.Category{
		Name:        name,
		Description: body.Description,
		ImageUrl:    body.ImageUrl,
		IsActive:    body.IsActive == nil || *body.IsActive,
	}
	if err := cc.DB.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(c, http.StatusConflict, errors.New("category name already exists"))
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// GetCategoryByID
func (cc *CategoryController) GetCategoryByID(c *gin.Context) {
	id, err := paramID(c, "cat_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var category models.Category
	if err := cc.DB.Preload("Foods").First(&category, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errCategoryNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category detail", category)
}

// UpdateCategory
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, err := paramID(c, "cat_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var body categoryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var category models.Category
	if err := cc.DB.First(&category, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errCategoryNotFound)
		return
	}

	if name := strings.TrimSpace(body.Name); name != "" {
		category.Name = name
	}
	category.Description = body.Description
	category.ImageUrl = body.ImageUrl
	if body.IsActive != nil {
		category.IsActive = *body.IsActive
	}

	if err := cc.DB.Save(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(c, http.StatusConflict, errors.New("category name already exists"))
			return
		}
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory: ditolak jika masih ada menu di kategori ini
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, err := paramID(c, "cat_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var foods int64
	if err := cc.DB.Model(&models.Food{}).Where("category_id = ?", id).Count(&foods).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if foods > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("category still has menus"))
		return
	}

	res := cc.DB.Delete(&models.Category{}, id)
	if res.Error != nil {
		respondServiceError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errCategoryNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"category_id": id})
}
