package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-circulation/circulation/query/itemhistory"
	"github.com/AntonStoeckl/library-circulation/circulation/query/itemstatus"
	"github.com/AntonStoeckl/library-circulation/circulation/query/patronholds"
)

func (s *server) itemStatus(c *gin.Context) {
	view, err := s.queries.ItemStatus.Handle(c.Request.Context(), itemstatus.BuildQuery(c.Param("itemID")))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (s *server) itemHistory(c *gin.Context) {
	history, err := s.queries.ItemHistory.Handle(c.Request.Context(), itemhistory.BuildQuery(c.Param("itemID")))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func (s *server) patronHolds(c *gin.Context) {
	holds, err := s.queries.PatronHolds.Handle(c.Request.Context(), patronholds.BuildQuery(c.Param("patronID")))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, holds)
}
