package api

import (
	"fmt"
	"io"
	"net/http"

	"pharma-market/internal/models"

	"github.com/gin-gonic/gin"
)

// maxDocumentSize bounds uploaded price lists to what fits inline in one
// extraction call
const maxDocumentSize = 20 << 20

// IngestTextRequest carries a pasted price list
type IngestTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// PublishRequest carries reviewed records to apply to the catalog
type PublishRequest struct {
	Records []models.OfferRecord `json:"records" binding:"required,min=1"`
}

func (h *Handler) ingestText(c *gin.Context) {
	var req IngestTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	records, err := h.svc.Ingestion.IngestText(c.Request.Context(), currentUser(c).ID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// ingestDocument handles a multipart upload in the "file" field
func (h *Handler) ingestDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	if fileHeader.Size > maxDocumentSize {
		respondBadRequest(c, fmt.Errorf("file exceeds %d bytes", maxDocumentSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDocumentSize))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	records, err := h.svc.Ingestion.IngestDocument(
		c.Request.Context(),
		currentUser(c).ID,
		fileHeader.Filename,
		data,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *Handler) publishPriceList(c *gin.Context) {
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.svc.Ingestion.PublishPriceList(c.Request.Context(), currentUser(c).ID, req.Records); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"published": len(req.Records)})
}

func (h *Handler) uploadHistory(c *gin.Context) {
	history, err := h.svc.Ingestion.UploadHistory(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handler) dailyStatus(c *gin.Context) {
	status, err := h.svc.Ingestion.DailyStatus(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) resetDailyStatus(c *gin.Context) {
	if err := h.svc.Ingestion.ResetDailyStatus(c.Request.Context(), currentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) incomingOrders(c *gin.Context) {
	orders, err := h.svc.Orders.WarehouseOrders(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
