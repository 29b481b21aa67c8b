package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	e "code.pegvault.io/pegclient/errors"
	"code.pegvault.io/pegclient/metrics"
	"code.pegvault.io/pegclient/quote"
	"code.pegvault.io/pegclient/types"
	"code.pegvault.io/pegclient/types/num"
)

// Client is what the service exposes over HTTP.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/client_mock.go -package mocks code.pegvault.io/pegclient/service Client
type Client interface {
	QuoteMint(asset types.AssetID, amount num.Decimal) (types.MintQuote, error)
	QuoteRedeem(asset types.AssetID, amount num.Decimal) (types.RedeemQuote, error)
	MaxRedeemable(asset types.AssetID) (num.Decimal, error)
	SubmitMint(ctx context.Context, asset types.AssetID, amount num.Decimal) (types.PendingOperation, error)
	SubmitRedeem(ctx context.Context, asset types.AssetID, amount num.Decimal) (types.PendingOperation, error)
	CurrentOperationState() types.PendingOperation
	Snapshot() types.ProtocolSnapshot
	Account() types.AccountState
	Health() quote.Health
	RewardPerToken() num.Decimal
}

// SimpleResponse is used to show if a request succeeded or not, without giving any more detail.
type SimpleResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is used when something went wrong.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// SnapshotResponse is the protocol state with its derived values.
type SnapshotResponse struct {
	Price              num.Decimal                   `json:"price"`
	TotalSupply        num.Decimal                   `json:"totalSupply"`
	CollateralValueUSD num.Decimal                   `json:"collateralValueUsd"`
	Collateral         map[types.AssetID]num.Decimal `json:"collateral"`
	Ratio              string                        `json:"ratio"`
	Health             quote.Health                  `json:"health"`
	RewardPerToken     num.Decimal                   `json:"rewardPerToken"`
	Distribution       types.Distribution            `json:"distribution"`
	UpdatedAt          time.Time                     `json:"updatedAt"`
}

// AccountResponse is the connected account's balances.
type AccountResponse struct {
	Address       string                        `json:"address"`
	TokenBalance  num.Decimal                   `json:"tokenBalance"`
	AssetBalances map[types.AssetID]num.Decimal `json:"assetBalances"`
	Allowances    map[types.AssetID]num.Decimal `json:"allowances"`
}

// RedeemQuoteResponse is a redeem quote with the vault bound on the amount.
type RedeemQuoteResponse struct {
	types.RedeemQuote
	MaxRedeemable num.Decimal `json:"maxRedeemable"`
}

// OperationRequest starts a mint or a redemption.
type OperationRequest struct {
	Asset  types.AssetID `json:"asset"`
	Amount string        `json:"amount"`
}

// OperationResponse is the state of the current operation.
type OperationResponse struct {
	ID               string                  `json:"id,omitempty"`
	Kind             string                  `json:"kind,omitempty"`
	Step             string                  `json:"step,omitempty"`
	Asset            types.AssetID           `json:"asset,omitempty"`
	Amount           string                  `json:"amount,omitempty"`
	State            types.OrchestratorState `json:"state"`
	RequiresApproval bool                    `json:"requiresApproval"`
	ApprovalTx       string                  `json:"approvalTx,omitempty"`
	SubmittedTx      string                  `json:"submittedTx,omitempty"`
	StartedAt        *time.Time              `json:"startedAt,omitempty"`
	Error            *ErrorResponse          `json:"error,omitempty"`
}

// Service is the HTTP service.
type Service struct {
	*httprouter.Router
	log *zap.Logger

	client Client
	listen string

	server *http.Server
}

// NewService creates a new service instance.
func NewService(log *zap.Logger, listen string, client Client) *Service {
	s := &Service{
		Router: httprouter.New(),
		log:    log.Named("service"),
		client: client,
		listen: listen,
	}

	s.addRoutes()
	s.server = s.getServer()

	return s
}

func (s *Service) addRoutes() {
	s.GET("/status", s.Status)
	s.GET("/snapshot", s.Snapshot)
	s.GET("/account", s.Account)
	s.GET("/quote/mint", s.QuoteMint)
	s.GET("/quote/redeem", s.QuoteRedeem)
	s.POST("/mint", s.Mint)
	s.POST("/redeem", s.Redeem)
	s.GET("/operation", s.Operation)
	s.Handler(http.MethodGet, "/metrics", metrics.Handler())
}

func (s *Service) getServer() *http.Server {
	var handler http.Handler = s

	return &http.Server{
		Addr:           s.listen,
		WriteTimeout:   time.Second * 15,
		ReadTimeout:    time.Second * 15,
		IdleTimeout:    time.Second * 60,
		MaxHeaderBytes: 1 << 20,
		Handler:        handler,
	}
}

// Start starts the HTTP server, and returns the server's exit error (if any).
func (s *Service) Start() error {
	s.log.With(zap.String("listen", s.listen)).Info("Listening")
	return s.server.ListenAndServe()
}

// Stop stops the HTTP service.
func (s *Service) Stop() {
	wait := time.Duration(3) * time.Second
	s.log.With(zap.String("listen", s.listen)).Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		s.log.Error("Server shutdown failed", zap.Error(err))
	}
}

// Status is an endpoint to show the service is up (always returns succeeded=true).
func (s *Service) Status(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeSuccess(w, SimpleResponse{Success: true}, http.StatusOK)
}

// Snapshot is an endpoint to show the latest protocol state.
func (s *Service) Snapshot(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	snap := s.client.Snapshot()
	writeSuccess(w, SnapshotResponse{
		Price:              snap.Price,
		TotalSupply:        snap.TotalSupply,
		CollateralValueUSD: snap.CollateralValueUSD,
		Collateral:         snap.Collateral,
		Ratio:              snap.Ratio().String(),
		Health:             s.client.Health(),
		RewardPerToken:     s.client.RewardPerToken(),
		Distribution:       snap.Distribution,
		UpdatedAt:          snap.UpdatedAt,
	}, http.StatusOK)
}

// Account is an endpoint to show the connected account's balances.
func (s *Service) Account(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	acc := s.client.Account()
	writeSuccess(w, AccountResponse{
		Address:       acc.Address.Hex(),
		TokenBalance:  acc.TokenBalance,
		AssetBalances: acc.AssetBalances,
		Allowances:    acc.Allowances,
	}, http.StatusOK)
}

// QuoteMint is an endpoint to preview a mint: /quote/mint?asset=WBTC&amount=0.5
func (s *Service) QuoteMint(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	asset, amount, err := quoteParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	q, err := s.client.QuoteMint(asset, amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeSuccess(w, q, http.StatusOK)
}

// QuoteRedeem is an endpoint to preview a redemption: /quote/redeem?asset=WBTC&amount=1000
func (s *Service) QuoteRedeem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	asset, amount, err := quoteParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	q, err := s.client.QuoteRedeem(asset, amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	limit, err := s.client.MaxRedeemable(asset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeSuccess(w, RedeemQuoteResponse{RedeemQuote: q, MaxRedeemable: limit}, http.StatusOK)
}

// Mint is an endpoint to start a mint.
func (s *Service) Mint(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.submit(w, r, s.client.SubmitMint)
}

// Redeem is an endpoint to start a redemption.
func (s *Service) Redeem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.submit(w, r, s.client.SubmitRedeem)
}

type submitFunc func(ctx context.Context, asset types.AssetID, amount num.Decimal) (types.PendingOperation, error)

func (s *Service) submit(w http.ResponseWriter, r *http.Request, fn submitFunc) {
	var req OperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}

	op, err := fn(r.Context(), req.Asset, amount)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.log.Info("Operation submitted",
		zap.String("operation", op.ID.String()),
		zap.String("kind", op.Kind.String()),
		zap.String("asset", string(op.Asset)),
		zap.String("amount", op.Amount.String()),
	)
	writeSuccess(w, operationResponse(op), http.StatusAccepted)
}

// Operation is an endpoint to show the current operation.
func (s *Service) Operation(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeSuccess(w, operationResponse(s.client.CurrentOperationState()), http.StatusOK)
}

func quoteParams(r *http.Request) (types.AssetID, num.Decimal, error) {
	q := r.URL.Query()
	amount, err := parseAmount(q.Get("amount"))
	if err != nil {
		return "", num.DecimalZero(), err
	}
	return types.AssetID(q.Get("asset")), amount, nil
}

func parseAmount(s string) (num.Decimal, error) {
	amount, err := num.DecimalFromString(s)
	if err != nil {
		return num.DecimalZero(), types.NewError(types.KindInvalidAmount)
	}
	return amount, nil
}

func operationResponse(op types.PendingOperation) OperationResponse {
	resp := OperationResponse{
		State:            op.State,
		RequiresApproval: op.RequiresApproval,
	}
	if op.State == types.Idle {
		return resp
	}

	startedAt := op.StartedAt
	resp.ID = op.ID.String()
	resp.Kind = op.Kind.String()
	resp.Step = op.Step().String()
	resp.Asset = op.Asset
	resp.Amount = op.Amount.String()
	resp.StartedAt = &startedAt
	if op.ApprovalTxRef != nil {
		resp.ApprovalTx = op.ApprovalTxRef.String()
	}
	if op.SubmittedTxRef != nil {
		resp.SubmittedTx = op.SubmittedTxRef.String()
	}
	if op.Err != nil {
		resp.Error = &ErrorResponse{Error: op.Err.Message(), Kind: op.Err.Kind.String()}
	}
	return resp
}

// writeError maps err to a status and a short message. Raw error text is only logged.
func (s *Service) writeError(w http.ResponseWriter, err error) {
	var opErr *types.OpError
	switch {
	case errors.As(err, &opErr):
		writeErrorResponse(w, ErrorResponse{Error: opErr.Message(), Kind: opErr.Kind.String()}, statusFor(opErr.Kind))
	case errors.Is(err, e.ErrUnknownAsset):
		writeError(w, err, http.StatusNotFound)
	case errors.Is(err, quote.ErrNoPrice), errors.Is(err, quote.ErrNoRatio):
		writeError(w, err, http.StatusServiceUnavailable)
	default:
		s.log.Error("Request failed", zap.Error(err))
		writeError(w, errors.New("internal error"), http.StatusInternalServerError)
	}
}

func statusFor(kind types.ErrorKind) int {
	switch kind {
	case types.KindInvalidAmount, types.KindInsufficientBalance, types.KindInsufficientVaultLiquidity:
		return http.StatusBadRequest
	case types.KindOperationInProgress:
		return http.StatusConflict
	case types.KindNotConnected:
		return http.StatusPreconditionFailed
	}
	return http.StatusInternalServerError
}

func writeSuccess(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	buf, _ := json.Marshal(data)
	_, _ = w.Write(buf)
}

func writeErrorResponse(w http.ResponseWriter, resp ErrorResponse, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	buf, _ := json.Marshal(resp)
	_, _ = w.Write(buf)
}

func writeError(w http.ResponseWriter, err error, status int) {
	writeErrorResponse(w, ErrorResponse{Error: err.Error()}, status)
}
