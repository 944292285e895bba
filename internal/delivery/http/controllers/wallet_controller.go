package controllers

import (
	"log/slog"
	"net/http"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/domain"
)

// WalletSuccessResponse is the success response envelope for wallet endpoints (200).
type WalletSuccessResponse struct {
	Data  domain.WalletSession `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// WalletController exposes the simulated wallet session.
type WalletController struct {
	Logger *slog.Logger
	Wallet domain.SessionStore
}

func NewWalletController(logger *slog.Logger, wallet domain.SessionStore) *WalletController {
	return &WalletController{Logger: logger, Wallet: wallet}
}

// GetSession godoc
// @Summary Wallet session
// @Tags wallet
// @Produce json
// @Success 200 {object} controllers.WalletSuccessResponse
// @Router /wallet [get]
func (c *WalletController) GetSession(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Wallet.Session())
}

// Connect godoc
// @Summary Connect a wallet
// @Description Generates a fresh address and connects it. Connecting again replaces the address.
// @Tags wallet
// @Produce json
// @Success 200 {object} controllers.WalletSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wallet/connect [post]
func (c *WalletController) Connect(w http.ResponseWriter, r *http.Request) {
	addr, err := c.Wallet.Connect(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, domain.WalletSession{
		Connected: true,
		Address:   addr,
		Balance:   domain.WalletConnectBalance,
	})
}

// Disconnect godoc
// @Summary Disconnect the wallet
// @Tags wallet
// @Produce json
// @Success 200 {object} controllers.WalletSuccessResponse
// @Router /wallet/disconnect [post]
func (c *WalletController) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := c.Wallet.Disconnect(r.Context()); err != nil {
		c.Logger.WarnContext(r.Context(), "disconnect: clear stored wallet", "err", err)
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Wallet.Session())
}
