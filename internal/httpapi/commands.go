package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-circulation/circulation/command"
	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
)

type commandHandler[C command.Command] interface {
	Handle(ctx context.Context, command C) (shell.HandlerResult, error)
}

type commandResponse struct {
	EventType     string      `json:"eventType"`
	ItemStatus    core.Status `json:"itemStatus"`
	HoldID        string      `json:"holdId,omitempty"`
	RetryAttempts int         `json:"retryAttempts"`
}

type patronRequest struct {
	PatronID        string `json:"patronId" binding:"required"`
	PatronBarcode   string `json:"patronBarcode"`
	PickupLibraryID string `json:"pickupLibraryId"`
}

func (p patronRequest) patron() core.Patron {
	return core.Patron{ID: p.PatronID, Barcode: p.PatronBarcode}
}

type libraryRequest struct {
	TransactionLibraryID string `json:"transactionLibraryId" binding:"required"`
}

func handle[C command.Command](c *gin.Context, handler commandHandler[C], cmd C, successStatus int) {
	result, err := handler.Handle(c.Request.Context(), cmd)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(successStatus, commandResponse{
		EventType:     result.EventType,
		ItemStatus:    result.ItemStatus,
		HoldID:        result.HoldID,
		RetryAttempts: result.RetryAttempts,
	})
}

func (s *server) addItemToCirculation(c *gin.Context) {
	var in struct {
		ItemID        string `json:"itemId" binding:"required"`
		HomeLibraryID string `json:"homeLibraryId" binding:"required"`
		ItemType      string `json:"itemType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBadRequest(c, err)
		return
	}

	cmd := command.BuildAddItemToCirculation(in.ItemID, in.HomeLibraryID, in.ItemType, s.now())
	handle(c, s.commands.AddItemToCirculation, cmd, http.StatusCreated)
}

func (s *server) loanItem(c *gin.Context) {
	var in struct {
		patronRequest
		StartDate *time.Time `json:"startDate"`
		EndDate   *time.Time `json:"endDate"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBadRequest(c, err)
		return
	}

	cmd := command.BuildLoanItem(
		c.Param("itemID"),
		in.patron(),
		in.PickupLibraryID,
		valueOrZero(in.StartDate),
		valueOrZero(in.EndDate),
		s.now(),
	)
	handle(c, s.commands.LoanItem, cmd, http.StatusCreated)
}

func (s *server) requestItem(c *gin.Context) {
	var in patronRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBadRequest(c, err)
		return
	}

	cmd := command.BuildRequestItem(c.Param("itemID"), in.patron(), in.PickupLibraryID, s.now())
	handle(c, s.commands.RequestItem, cmd, http.StatusCreated)
}

func (s *server) returnItem(c *gin.Context) {
	var in libraryRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBadRequest(c, err)
		return
	}

	cmd := command.BuildReturnItem(c.Param("itemID"), in.TransactionLibraryID, s.now())
	handle(c, s.commands.ReturnItem, cmd, http.StatusOK)
}

func (s *server) receiveItem(c *gin.Context) {
	var in libraryRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBadRequest(c, err)
		return
	}

	cmd := command.BuildReceiveItem(c.Param("itemID"), in.TransactionLibraryID, s.now())
	handle(c, s.commands.ReceiveItem, cmd, http.StatusOK)
}

func (s *server) validateItemRequest(c *gin.Context) {
	cmd := command.BuildValidateItemRequest(c.Param("itemID"), s.now())
	handle(c, s.commands.ValidateItemRequest, cmd, http.StatusOK)
}

func (s *server) extendLoan(c *gin.Context) {
	var in struct {
		NewEndDate   *time.Time `json:"newEndDate"`
		RenewalCount *int       `json:"renewalCount"`
	}
	// an empty body extends by the loan duration of the item type
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBadRequest(c, err)
			return
		}
	}

	cmd := command.BuildExtendLoan(c.Param("itemID"), valueOrZero(in.NewEndDate), in.RenewalCount, s.now())
	handle(c, s.commands.ExtendLoan, cmd, http.StatusOK)
}

func (s *server) loseItem(c *gin.Context) {
	cmd := command.BuildLoseItem(c.Param("itemID"), s.now())
	handle(c, s.commands.LoseItem, cmd, http.StatusOK)
}

func (s *server) returnMissingItem(c *gin.Context) {
	cmd := command.BuildReturnMissingItem(c.Param("itemID"), s.now())
	handle(c, s.commands.ReturnMissingItem, cmd, http.StatusOK)
}

func (s *server) cancelHold(c *gin.Context) {
	cmd := command.BuildCancelHold(c.Param("itemID"), c.Param("holdID"), s.now())
	handle(c, s.commands.CancelHold, cmd, http.StatusOK)
}

func valueOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}

	return *t
}
