package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

type QRController struct {
	QR services.QRService
}

func NewQRController(qr services.QRService) *QRController {
	return &QRController{QR: qr}
}

func (qc *QRController) GenerateMenuQR(c *gin.Context) {
	issued, err := qc.QR.IssueMenuQR(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "Menu QR code generated successfully", gin.H{
		"qrCode": issued.QRCode,
		"url":    issued.URL,
	})
}

func (qc *QRController) GenerateTableQR(c *gin.Context) {
	id, ok := parseID(c, "tableId", tableNotFound)
	if !ok {
		return
	}

	issued, err := qc.QR.IssueTableActionsQR(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "Table QR code generated successfully", gin.H{
		"qrCode": issued.QRCode,
		"url":    issued.URL,
	})
}

func (qc *QRController) ServeQRCode(c *gin.Context) {
	p, err := qc.QR.Path(c.Param("filename"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.File(p)
}
