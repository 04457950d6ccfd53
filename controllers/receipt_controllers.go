package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/utils"
)

type ReceiptController struct {
	DB *gorm.DB
}

func NewReceiptController(db *gorm.DB) *ReceiptController {
	return &ReceiptController{DB: db}
}

// GetReceipt -> receipt by id
func (rc *ReceiptController) GetReceipt(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("receipt_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid receipt id"))
		return
	}

	var receipt models.Receipt
	if err := rc.DB.Preload("ReceiptItems").First(&receipt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("receipt not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Receipt detail", receipt)
}

// GetReceiptByOrder -> receipt lookup from the order card
func (rc *ReceiptController) GetReceiptByOrder(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	var receipt models.Receipt
	if err := rc.DB.Preload("ReceiptItems").
		Where("order_id = ?", orderID).First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("receipt not found for this order"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Receipt detail", receipt)
}

// ListReceipts -> newest first, admin view
func (rc *ReceiptController) ListReceipts(c *gin.Context) {
	var receipts []models.Receipt
	if err := rc.DB.Preload("ReceiptItems").
		Order("created_at desc").Limit(100).Find(&receipts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of receipts", receipts)
}
