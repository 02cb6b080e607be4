package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (h *handlerImpl) HandleGetUsers(c *gin.Context) {
	users, err := h.users.GetUsers(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get users")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	response := make([]userResponse, len(users))
	for i, user := range users {
		response[i] = userResponse{
			ID:       user.ID,
			Username: user.Username,
		}
	}

	c.JSON(http.StatusOK, gin.H{"users": response})
}
