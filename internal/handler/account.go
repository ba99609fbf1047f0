package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/model"
	"ledger-api/internal/service"
)

// AccountHandler serves signup, account lookup and the deposit/withdraw endpoints.
type AccountHandler struct {
	accountService      *service.AccountService
	accountAssetService *service.AccountAssetService
	logger              *logrus.Logger
}

func NewAccountHandler(
	accountService *service.AccountService,
	accountAssetService *service.AccountAssetService,
	logger *logrus.Logger,
) *AccountHandler {
	return &AccountHandler{
		accountService:      accountService,
		accountAssetService: accountAssetService,
		logger:              logger,
	}
}

func (h *AccountHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/signup", h.Signup).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/accounts", h.CreateAccountWithAssets).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/accounts/{accountId}", h.GetAccount).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/deposit", h.Deposit).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/withdraw", h.Withdraw).Methods(http.MethodPost, http.MethodOptions)
}

type assetRequest struct {
	AccountID string          `json:"accountId"`
	AssetID   string          `json:"assetId"`
	Quantity  json.RawMessage `json:"quantity"`
}

func (r assetRequest) toModel() model.AssetRequest {
	return model.AssetRequest{
		AccountID: r.AccountID,
		AssetID:   r.AssetID,
		Quantity:  parseQuantity(r.Quantity),
	}
}

type initialAssetRequest struct {
	AssetID  string          `json:"assetId"`
	Quantity json.RawMessage `json:"quantity"`
}

type createAccountRequest struct {
	model.SignupInput
	Assets []initialAssetRequest `json:"assets"`
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input model.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WithError(err).Warn("Failed to decode signup request")
		writeError(w, http.StatusUnprocessableEntity, invalidRequestBody)
		return
	}

	out, err := h.accountService.Signup(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

// GetAccount returns the account view together with its asset positions.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]

	account, err := h.accountAssetService.GetAccountWithAssets(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) CreateAccountWithAssets(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Warn("Failed to decode account creation request")
		writeError(w, http.StatusUnprocessableEntity, invalidRequestBody)
		return
	}

	assets := make([]model.InitialAsset, 0, len(req.Assets))
	for _, a := range req.Assets {
		assets = append(assets, model.InitialAsset{AssetID: a.AssetID, Quantity: parseQuantity(a.Quantity)})
	}

	out, err := h.accountAssetService.CreateAccountWithInitialAssets(r.Context(), req.SignupInput, assets)
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Warn("Failed to decode deposit request")
		writeError(w, http.StatusUnprocessableEntity, invalidRequestBody)
		return
	}

	result, err := h.accountAssetService.Deposit(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Warn("Failed to decode withdraw request")
		writeError(w, http.StatusUnprocessableEntity, invalidRequestBody)
		return
	}

	result, err := h.accountAssetService.Withdraw(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
