package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tonkeeper/tongo/ton"

	"raffle/internal/handlers"
	"raffle/internal/ledger"
	"raffle/internal/raffle"
	"raffle/internal/storage"
)

func rawAddress(n int) string {
	return fmt.Sprintf("0:%064x", n)
}

func tonAccount(raw string) (ton.AccountID, error) {
	return ton.ParseAccountID(raw)
}

func newTestRouter(t *testing.T) (*gin.Engine, *ledger.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewSqliteStorage(filepath.Join(t.TempDir(), "raffle.db"))
	memory := ledger.NewMemory()

	treasury, err := tonAccount(rawAddress(101))
	if err != nil {
		t.Fatal(err)
	}
	vault, err := tonAccount(rawAddress(102))
	if err != nil {
		t.Fatal(err)
	}

	service := raffle.NewService(store, memory, memory, ledger.SystemClock{}, raffle.Params{
		Treasury:       treasury,
		Vault:          vault,
		FeePercent:     5,
		MaxTickets:     2000,
		MaxCollections: 400,
	})

	router := gin.New()
	handlers.NewHTTPHandler(service).RegisterRoutes(router)
	return router, memory
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestAdminAndCollectionEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	admin := rawAddress(100)

	response := doJSON(t, router, http.MethodPost, "/admin/initialize", fmt.Sprintf(`{"admin": %q}`, admin))
	if response.Code != http.StatusOK {
		t.Fatalf("initialize: %d %s", response.Code, response.Body.String())
	}

	response = doJSON(t, router, http.MethodPost, "/admin/initialize", fmt.Sprintf(`{"admin": %q}`, admin))
	if response.Code != http.StatusConflict {
		t.Errorf("second initialize: %d", response.Code)
	}

	response = doJSON(t, router, http.MethodPost, "/collections",
		fmt.Sprintf(`{"caller": %q, "collection": %q}`, rawAddress(1), rawAddress(104)))
	if response.Code != http.StatusForbidden {
		t.Errorf("non-admin append: %d", response.Code)
	}

	response = doJSON(t, router, http.MethodPost, "/collections",
		fmt.Sprintf(`{"caller": %q, "collection": %q}`, admin, rawAddress(104)))
	if response.Code != http.StatusOK {
		t.Fatalf("append: %d %s", response.Code, response.Body.String())
	}

	response = doJSON(t, router, http.MethodGet, "/collections", "")
	if response.Code != http.StatusOK {
		t.Fatalf("list: %d", response.Code)
	}
	var listed struct {
		Count       int      `json:"count"`
		Collections []string `json:"collections"`
	}
	if err := json.Unmarshal(response.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if listed.Count != 1 || listed.Collections[0] != rawAddress(104) {
		t.Errorf("unexpected listing: %+v", listed)
	}

	response = doJSON(t, router, http.MethodPost, "/collections",
		`{"caller": "not-an-address", "collection": "also-not"}`)
	if response.Code != http.StatusBadRequest {
		t.Errorf("malformed address: %d", response.Code)
	}
}

func TestRaffleEndpoints(t *testing.T) {
	router, memory := newTestRouter(t)
	admin := rawAddress(100)
	creator := rawAddress(103)
	collection := rawAddress(104)
	asset := rawAddress(105)
	buyer := rawAddress(1)

	doJSON(t, router, http.MethodPost, "/admin/initialize", fmt.Sprintf(`{"admin": %q}`, admin))
	doJSON(t, router, http.MethodPost, "/collections",
		fmt.Sprintf(`{"caller": %q, "collection": %q}`, admin, collection))

	creatorAccount, err := tonAccount(creator)
	if err != nil {
		t.Fatal(err)
	}
	assetAccount, err := tonAccount(asset)
	if err != nil {
		t.Fatal(err)
	}
	memory.SetHolder(assetAccount, creatorAccount)

	endTime := time.Now().Unix() + 2*raffle.Day
	createBody := fmt.Sprintf(`{
		"creator": %q,
		"asset": %q,
		"proof": [{"collection": %q, "verified": true}],
		"ticket_price": 10,
		"end_time": %d,
		"max_tickets": 3
	}`, creator, asset, collection, endTime)

	response := doJSON(t, router, http.MethodPost, "/raffles", createBody)
	if response.Code != http.StatusOK {
		t.Fatalf("create: %d %s", response.Code, response.Body.String())
	}
	var created struct {
		ID     uint64 `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(response.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != "open" {
		t.Errorf("status: %s", created.Status)
	}

	// broke buyer
	response = doJSON(t, router, http.MethodPost, fmt.Sprintf("/raffles/%d/tickets", created.ID),
		fmt.Sprintf(`{"buyer": %q, "amount": 1}`, buyer))
	if response.Code != http.StatusPaymentRequired {
		t.Errorf("broke buyer: %d %s", response.Code, response.Body.String())
	}

	buyerAccount, err := tonAccount(buyer)
	if err != nil {
		t.Fatal(err)
	}
	memory.SetBalance(buyerAccount, 100)

	response = doJSON(t, router, http.MethodPost, fmt.Sprintf("/raffles/%d/tickets", created.ID),
		fmt.Sprintf(`{"buyer": %q, "amount": 2}`, buyer))
	if response.Code != http.StatusOK {
		t.Fatalf("buy: %d %s", response.Code, response.Body.String())
	}

	response = doJSON(t, router, http.MethodGet, fmt.Sprintf("/raffles/%d", created.ID), "")
	if response.Code != http.StatusOK {
		t.Fatalf("get: %d", response.Code)
	}
	var loaded struct {
		TicketCount      uint64   `json:"ticket_count"`
		UniqueBuyerCount uint64   `json:"unique_buyer_count"`
		Entrants         []string `json:"entrants"`
	}
	if err := json.Unmarshal(response.Body.Bytes(), &loaded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loaded.TicketCount != 2 || loaded.UniqueBuyerCount != 1 || len(loaded.Entrants) != 2 {
		t.Errorf("unexpected raffle state: %+v", loaded)
	}

	// the sale window is still open
	response = doJSON(t, router, http.MethodPost, fmt.Sprintf("/raffles/%d/reveal", created.ID), "")
	if response.Code != http.StatusConflict {
		t.Errorf("early reveal: %d", response.Code)
	}

	response = doJSON(t, router, http.MethodGet, "/raffles/999", "")
	if response.Code != http.StatusNotFound {
		t.Errorf("unknown raffle: %d", response.Code)
	}
}
