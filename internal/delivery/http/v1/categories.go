package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type categoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *handlerImpl) HandleGetCategories(c *gin.Context) {
	categories, err := h.categories.GetCategories(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get categories")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	response := make([]categoryResponse, len(categories))
	for i, category := range categories {
		response[i] = categoryResponse{
			ID:    category.ID,
			Name:  category.Name,
			Color: category.Color,
		}
	}

	c.JSON(http.StatusOK, gin.H{"categories": response})
}
