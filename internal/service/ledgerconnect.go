package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "splitledger.v1.LedgerService"

// Procedure paths, as sent by clients and routed by handlers.
const (
	LedgerServiceRecordExpenseProcedure         = "/splitledger.v1.LedgerService/RecordExpense"
	LedgerServiceGetBalancesProcedure           = "/splitledger.v1.LedgerService/GetBalances"
	LedgerServiceGetSuggestedTransfersProcedure = "/splitledger.v1.LedgerService/GetSuggestedTransfers"
	LedgerServiceRecordSettlementProcedure      = "/splitledger.v1.LedgerService/RecordSettlement"
)

// LedgerServiceHandler is the server side of LedgerService.
type LedgerServiceHandler interface {
	RecordExpense(context.Context, *connect.Request[RecordExpenseRequest]) (*connect.Response[RecordExpenseResponse], error)
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	GetSuggestedTransfers(context.Context, *connect.Request[GetSuggestedTransfersRequest]) (*connect.Response[GetSuggestedTransfersResponse], error)
	RecordSettlement(context.Context, *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)

	recordExpense := connect.NewUnaryHandler(LedgerServiceRecordExpenseProcedure, svc.RecordExpense, opts...)
	getBalances := connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...)
	getSuggestedTransfers := connect.NewUnaryHandler(LedgerServiceGetSuggestedTransfersProcedure, svc.GetSuggestedTransfers, opts...)
	recordSettlement := connect.NewUnaryHandler(LedgerServiceRecordSettlementProcedure, svc.RecordSettlement, opts...)

	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceRecordExpenseProcedure:
			recordExpense.ServeHTTP(w, r)
		case LedgerServiceGetBalancesProcedure:
			getBalances.ServeHTTP(w, r)
		case LedgerServiceGetSuggestedTransfersProcedure:
			getSuggestedTransfers.ServeHTTP(w, r)
		case LedgerServiceRecordSettlementProcedure:
			recordSettlement.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// LedgerServiceClient is a client for LedgerService.
type LedgerServiceClient struct {
	recordExpense         *connect.Client[RecordExpenseRequest, RecordExpenseResponse]
	getBalances           *connect.Client[GetBalancesRequest, GetBalancesResponse]
	getSuggestedTransfers *connect.Client[GetSuggestedTransfersRequest, GetSuggestedTransfersResponse]
	recordSettlement      *connect.Client[RecordSettlementRequest, RecordSettlementResponse]
}

// NewLedgerServiceClient constructs a client for LedgerService at baseURL
// (for example, http://api.acme.com or https://acme.com/grpc).
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec())}, opts...)
	return &LedgerServiceClient{
		recordExpense:         connect.NewClient[RecordExpenseRequest, RecordExpenseResponse](httpClient, baseURL+LedgerServiceRecordExpenseProcedure, opts...),
		getBalances:           connect.NewClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
		getSuggestedTransfers: connect.NewClient[GetSuggestedTransfersRequest, GetSuggestedTransfersResponse](httpClient, baseURL+LedgerServiceGetSuggestedTransfersProcedure, opts...),
		recordSettlement:      connect.NewClient[RecordSettlementRequest, RecordSettlementResponse](httpClient, baseURL+LedgerServiceRecordSettlementProcedure, opts...),
	}
}

// RecordExpense calls splitledger.v1.LedgerService.RecordExpense.
func (c *LedgerServiceClient) RecordExpense(ctx context.Context, req *connect.Request[RecordExpenseRequest]) (*connect.Response[RecordExpenseResponse], error) {
	return c.recordExpense.CallUnary(ctx, req)
}

// GetBalances calls splitledger.v1.LedgerService.GetBalances.
func (c *LedgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

// GetSuggestedTransfers calls splitledger.v1.LedgerService.GetSuggestedTransfers.
func (c *LedgerServiceClient) GetSuggestedTransfers(ctx context.Context, req *connect.Request[GetSuggestedTransfersRequest]) (*connect.Response[GetSuggestedTransfersResponse], error) {
	return c.getSuggestedTransfers.CallUnary(ctx, req)
}

// RecordSettlement calls splitledger.v1.LedgerService.RecordSettlement.
func (c *LedgerServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}
