package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/services"
	"github.com/restokorp/restaurant-app/utils"
)

type AIController struct {
	DB *gorm.DB
	AI *services.AIService
}

func NewAIController(db *gorm.DB, ai *services.AIService) *AIController {
	return &AIController{DB: db, AI: ai}
}

func (ai *AIController) loadMenu() ([]models.Dish, error) {
	var menu []models.Dish
	err := ai.DB.Preload("Category").
		Where("is_available = ? AND is_deleted = ?", true, false).
		Find(&menu).Error
	return menu, err
}

// Chat -> free-form guest question about the restaurant
func (ai *AIController) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reply, err := ai.AI.Chat(c.Request.Context(), req.Message)
	if err != nil {
		utils.ErrorLogger.Printf("AI chat failed: %v", err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("assistant is unavailable, try again later"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Assistant reply", gin.H{"reply": reply})
}

// Upsell -> dish suggestions to complement what the guest already ordered
func (ai *AIController) Upsell(c *gin.Context) {
	var req struct {
		OrderedDishes []string `json:"ordered_dishes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu, err := ai.loadMenu()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	recs, err := ai.AI.UpsellRecommendations(c.Request.Context(), req.OrderedDishes, menu)
	if err != nil {
		utils.ErrorLogger.Printf("AI upsell failed: %v", err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("assistant is unavailable, try again later"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Recommendations", recs)
}

// SearchMenu -> natural-language menu search ("something spicy without meat")
func (ai *AIController) SearchMenu(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("q parameter is required"))
		return
	}

	menu, err := ai.loadMenu()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	results, err := ai.AI.SearchMenu(c.Request.Context(), query, menu)
	if err != nil {
		utils.ErrorLogger.Printf("AI search failed: %v", err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("assistant is unavailable, try again later"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Search results", results)
}
