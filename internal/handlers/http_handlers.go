package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tonkeeper/tongo/ton"

	"raffle/internal/raffle"
)

// HTTPHandler exposes the raffle lifecycle over JSON. The caller identity
// arrives in the request body; verifying that the caller actually controls
// that identity is the host's concern, not this service's.
type HTTPHandler struct {
	service *raffle.Service
}

func NewHTTPHandler(service *raffle.Service) *HTTPHandler {
	return &HTTPHandler{
		service: service,
	}
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/admin/initialize", h.InitializeAdmin)
	router.GET("/collections", h.ListCollections)
	router.POST("/collections", h.AddCollection)
	router.POST("/raffles", h.CreateRaffle)
	router.GET("/raffles/:id", h.GetRaffle)
	router.POST("/raffles/:id/tickets", h.BuyTickets)
	router.POST("/raffles/:id/reveal", h.RevealWinner)
	router.POST("/raffles/:id/claim", h.ClaimReward)
	router.POST("/raffles/:id/withdraw", h.WithdrawAsset)
}

type initializeAdminRequest struct {
	Admin string `json:"admin" binding:"required"`
}

func (h *HTTPHandler) InitializeAdmin(c *gin.Context) {
	var request initializeAdminRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, ok := parseAccount(c, request.Admin)
	if !ok {
		return
	}

	if err := h.service.InitializeAdmin(admin); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"admin": admin.ToRaw()})
}

type addCollectionRequest struct {
	Caller     string `json:"caller" binding:"required"`
	Collection string `json:"collection" binding:"required"`
}

func (h *HTTPHandler) AddCollection(c *gin.Context) {
	var request addCollectionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller, ok := parseAccount(c, request.Caller)
	if !ok {
		return
	}
	collection, ok := parseAccount(c, request.Collection)
	if !ok {
		return
	}

	if err := h.service.AddCollection(caller, collection); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"collection": collection.ToRaw()})
}

func (h *HTTPHandler) ListCollections(c *gin.Context) {
	collections, err := h.service.Collections()
	if err != nil {
		abortWithError(c, err)
		return
	}

	addresses := make([]string, 0, len(collections))
	for _, collection := range collections {
		addresses = append(addresses, collection.ToRaw())
	}

	c.JSON(http.StatusOK, gin.H{
		"count":       len(addresses),
		"collections": addresses,
	})
}

type collectionProof struct {
	Collection string `json:"collection" binding:"required"`
	Verified   bool   `json:"verified"`
}

type createRaffleRequest struct {
	Creator     string            `json:"creator" binding:"required"`
	Asset       string            `json:"asset" binding:"required"`
	Proof       []collectionProof `json:"proof"`
	TicketPrice uint64            `json:"ticket_price"`
	EndTime     int64             `json:"end_time" binding:"required"`
	MaxTickets  uint64            `json:"max_tickets" binding:"required"`
}

func (h *HTTPHandler) CreateRaffle(c *gin.Context) {
	var request createRaffleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creator, ok := parseAccount(c, request.Creator)
	if !ok {
		return
	}
	asset, ok := parseAccount(c, request.Asset)
	if !ok {
		return
	}

	proof := make([]raffle.CollectionProof, 0, len(request.Proof))
	for _, entry := range request.Proof {
		collection, ok := parseAccount(c, entry.Collection)
		if !ok {
			return
		}
		proof = append(proof, raffle.CollectionProof{
			Collection: collection,
			Verified:   entry.Verified,
		})
	}

	rec, err := h.service.CreateRaffle(c.Request.Context(), creator, asset, proof, request.TicketPrice, request.EndTime, request.MaxTickets)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, raffleResponse(rec))
}

func (h *HTTPHandler) GetRaffle(c *gin.Context) {
	id, ok := parseRaffleID(c)
	if !ok {
		return
	}

	rec, err := h.service.GetRaffle(id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, raffleResponse(rec))
}

type buyTicketsRequest struct {
	Buyer  string `json:"buyer" binding:"required"`
	Amount uint64 `json:"amount" binding:"required"`
}

func (h *HTTPHandler) BuyTickets(c *gin.Context) {
	id, ok := parseRaffleID(c)
	if !ok {
		return
	}

	var request buyTicketsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buyer, ok := parseAccount(c, request.Buyer)
	if !ok {
		return
	}

	if err := h.service.BuyTickets(c.Request.Context(), buyer, id, request.Amount); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"raffle": id, "amount": request.Amount})
}

func (h *HTTPHandler) RevealWinner(c *gin.Context) {
	id, ok := parseRaffleID(c)
	if !ok {
		return
	}

	if err := h.service.RevealWinner(id); err != nil {
		abortWithError(c, err)
		return
	}

	rec, err := h.service.GetRaffle(id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, raffleResponse(rec))
}

type callerRequest struct {
	Caller string `json:"caller" binding:"required"`
}

func (h *HTTPHandler) ClaimReward(c *gin.Context) {
	id, ok := parseRaffleID(c)
	if !ok {
		return
	}

	var request callerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller, ok := parseAccount(c, request.Caller)
	if !ok {
		return
	}

	if err := h.service.ClaimReward(c.Request.Context(), caller, id); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"raffle": id, "status": raffle.StatusClaimed.String()})
}

func (h *HTTPHandler) WithdrawAsset(c *gin.Context) {
	id, ok := parseRaffleID(c)
	if !ok {
		return
	}

	var request callerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller, ok := parseAccount(c, request.Caller)
	if !ok {
		return
	}

	if err := h.service.WithdrawAsset(c.Request.Context(), caller, id); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"raffle": id, "status": raffle.StatusWithdrawn.String()})
}

func raffleResponse(rec *raffle.Record) gin.H {
	entrants := make([]string, 0, len(rec.Entrants))
	for _, entrant := range rec.Entrants {
		entrants = append(entrants, entrant.ToRaw())
	}

	response := gin.H{
		"id":                 rec.ID,
		"creator":            rec.Creator.ToRaw(),
		"asset":              rec.Asset.ToRaw(),
		"ticket_price":       rec.TicketPrice,
		"start_time":         rec.StartTime,
		"end_time":           rec.EndTime,
		"max_tickets":        rec.MaxTickets,
		"ticket_count":       rec.TicketCount,
		"unique_buyer_count": rec.UniqueBuyerCount,
		"status":             rec.Status.String(),
		"entrants":           entrants,
	}

	if rec.Status == raffle.StatusDrawn || rec.Status == raffle.StatusClaimed {
		response["winner_index"] = rec.WinnerIndex
		response["winner"] = rec.Winner.ToRaw()
	}

	return response
}

func parseRaffleID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid raffle id"})
		return 0, false
	}
	return id, true
}

func parseAccount(c *gin.Context, value string) (ton.AccountID, bool) {
	account, err := ton.ParseAccountID(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account address: " + value})
		return ton.AccountID{}, false
	}
	return account, true
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, raffle.ErrRaffleNotFound):
		return http.StatusNotFound
	case errors.Is(err, raffle.ErrNotAdmin),
		errors.Is(err, raffle.ErrNotCreator),
		errors.Is(err, raffle.ErrNotWinner):
		return http.StatusForbidden
	case errors.Is(err, raffle.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, raffle.ErrTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, raffle.ErrRaffleEnded),
		errors.Is(err, raffle.ErrRaffleNotEnded),
		errors.Is(err, raffle.ErrWinnersAlreadyDrawn),
		errors.Is(err, raffle.ErrWinnerNotDrawn),
		errors.Is(err, raffle.ErrNotEnoughTicketsLeft),
		errors.Is(err, raffle.ErrInvalidRevealedData),
		errors.Is(err, raffle.ErrOtherEntrants),
		errors.Is(err, raffle.ErrCapacityExceeded),
		errors.Is(err, raffle.ErrAdminAlreadyInitialized):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
