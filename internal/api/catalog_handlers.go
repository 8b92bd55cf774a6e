package api

import (
	"net/http"

	"pharma-market/internal/util"

	"github.com/gin-gonic/gin"
)

// SuggestionRequest carries a misspelled query
type SuggestionRequest struct {
	Query string `json:"query"`
}

// searchDrugs handles one-shot catalog search
func (h *Handler) searchDrugs(c *gin.Context) {
	util.DrugSearchesTotal.WithLabelValues("http").Inc()

	results, err := h.svc.Catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// suggestCorrections proposes alternative spellings when a search came up empty
func (h *Handler) suggestCorrections(c *gin.Context) {
	var req SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": h.svc.Ingestion.SuggestCorrections(c.Request.Context(), req.Query),
	})
}

func (h *Handler) listWarehouses(c *gin.Context) {
	warehouses, err := h.svc.Catalog.Warehouses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, warehouses)
}

func (h *Handler) listMarket(c *gin.Context) {
	items, err := h.svc.Market.Items(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
