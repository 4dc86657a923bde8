package api

import (
	"net/http"

	"github.com/cryptify-labs/cryptify-client/internal/handler"
	"github.com/cryptify-labs/cryptify-client/wallet"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/cryptify-labs/cryptify-client/docs"
)

// SetupRouter sets up router with handlers
func SetupRouter(session *wallet.SessionStore, guard *wallet.NetworkGuard, fetcher *wallet.AccountFetcher, submitter *wallet.TransferSubmitter) http.Handler {
	walletHandler := handler.NewWalletHandler(session, guard, fetcher, submitter)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Wallet session endpoints
	mux.HandleFunc("/wallet/connect", walletHandler.Connect)
	mux.HandleFunc("/wallet/disconnect", walletHandler.Disconnect)
	mux.HandleFunc("/wallet/session", walletHandler.Session)
	mux.HandleFunc("/wallet/balance", walletHandler.Balance)

	// Network guard endpoints
	mux.HandleFunc("/network/alert", walletHandler.NetworkAlert)
	mux.HandleFunc("/network/alert/dismiss", walletHandler.DismissAlert)

	// Registry endpoints
	mux.HandleFunc("/transactions", walletHandler.AllTransactions)
	mux.HandleFunc("/transactions/user", walletHandler.UserTransactions)
	mux.HandleFunc("/transfer", walletHandler.Transfer)
	mux.HandleFunc("/transfer/status", walletHandler.TransferStatus)

	return mux
}
