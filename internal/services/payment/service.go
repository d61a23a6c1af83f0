package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"payconnect/internal/domain/payment"
	"payconnect/internal/provider"
	"payconnect/internal/store/repositories"
)

const tracerName = "payconnect/services/payment"

// ErrAccountNotConfigured is returned when the merchant has no active
// account for the requested connector.
var ErrAccountNotConfigured = errors.New("connector account not configured")

// Service executes connector flows on behalf of a merchant.
type Service struct {
	registry  *provider.Registry
	transport provider.Transport
	accounts  repositories.AccountRepository
	tokens    repositories.TokenStore
	aesKey    []byte
	tracer    trace.Tracer
}

// NewService creates a new payment service
func NewService(registry *provider.Registry, transport provider.Transport, accounts repositories.AccountRepository, tokens repositories.TokenStore, aesKey []byte) *Service {
	return &Service{
		registry:  registry,
		transport: transport,
		accounts:  accounts,
		tokens:    tokens,
		aesKey:    aesKey,
		tracer:    otel.Tracer(tracerName),
	}
}

// Registry exposes the connector registry for listing.
func (s *Service) Registry() *provider.Registry { return s.registry }

func (s *Service) Preprocess(ctx context.Context, merchantID string, kind provider.ConnectorKind, req payment.AuthorizeRequest) (payment.PaymentsResult, error) {
	return runPayment(ctx, s, merchantID, kind, provider.FlowPreprocessing, req, func(c *provider.Connector) *provider.Integration[payment.AuthorizeRequest, payment.PaymentsResult] {
		return c.Preprocessing
	}, req.PaymentID)
}

func (s *Service) Authorize(ctx context.Context, merchantID string, kind provider.ConnectorKind, req payment.AuthorizeRequest) (payment.PaymentsResult, error) {
	return runPayment(ctx, s, merchantID, kind, provider.FlowAuthorize, req, func(c *provider.Connector) *provider.Integration[payment.AuthorizeRequest, payment.PaymentsResult] {
		return c.Authorize
	}, req.PaymentID)
}

func (s *Service) Capture(ctx context.Context, merchantID string, kind provider.ConnectorKind, req payment.CaptureRequest) (payment.PaymentsResult, error) {
	return runPayment(ctx, s, merchantID, kind, provider.FlowCapture, req, func(c *provider.Connector) *provider.Integration[payment.CaptureRequest, payment.PaymentsResult] {
		return c.Capture
	}, req.PaymentID)
}

func (s *Service) Void(ctx context.Context, merchantID string, kind provider.ConnectorKind, req payment.VoidRequest) (payment.PaymentsResult, error) {
	return runPayment(ctx, s, merchantID, kind, provider.FlowVoid, req, func(c *provider.Connector) *provider.Integration[payment.VoidRequest, payment.PaymentsResult] {
		return c.Void
	}, req.PaymentID)
}

func (s *Service) Sync(ctx context.Context, merchantID string, kind provider.ConnectorKind, req payment.SyncRequest) (payment.PaymentsResult, error) {
	return runPayment(ctx, s, merchantID, kind, provider.FlowPSync, req, func(c *provider.Connector) *provider.Integration[payment.SyncRequest, payment.PaymentsResult] {
		return c.PSync
	}, req.PaymentID)
}

func (s *Service) Refund(ctx context.Context, merchantID string, kind provider.ConnectorKind, req payment.RefundRequest) (payment.RefundsResult, error) {
	return runRefund(ctx, s, merchantID, kind, provider.FlowRefundExecute, req, func(c *provider.Connector) *provider.Integration[payment.RefundRequest, payment.RefundsResult] {
		return c.RefundExecute
	}, req.RefundID)
}

func (s *Service) RefundSync(ctx context.Context, merchantID string, kind provider.ConnectorKind, req payment.RefundSyncRequest) (payment.RefundsResult, error) {
	return runRefund(ctx, s, merchantID, kind, provider.FlowRefundSync, req, func(c *provider.Connector) *provider.Integration[payment.RefundSyncRequest, payment.RefundsResult] {
		return c.RefundSync
	}, req.RefundID)
}

// runPayment folds a connector rejection into the result. A 4xx rejection
// fails the attempt; a 5xx leaves it pending for a later sync.
func runPayment[Req any](ctx context.Context, s *Service, merchantID string, kind provider.ConnectorKind, flow provider.Flow, req Req,
	pick func(*provider.Connector) *provider.Integration[Req, payment.PaymentsResult], paymentID string) (payment.PaymentsResult, error) {
	res, env, err := run(ctx, s, merchantID, kind, flow, req, pick)
	if err != nil || env == nil {
		return res, err
	}
	res = payment.PaymentsResult{PaymentID: paymentID, Status: payment.AttemptFailure, Error: env}
	if env.StatusCode >= 500 {
		res.Status = payment.AttemptPending
	}
	return res, nil
}

func runRefund[Req any](ctx context.Context, s *Service, merchantID string, kind provider.ConnectorKind, flow provider.Flow, req Req,
	pick func(*provider.Connector) *provider.Integration[Req, payment.RefundsResult], refundID string) (payment.RefundsResult, error) {
	res, env, err := run(ctx, s, merchantID, kind, flow, req, pick)
	if err != nil || env == nil {
		return res, err
	}
	res = payment.RefundsResult{RefundID: refundID, Status: payment.RefundFailure, Error: env}
	if env.StatusCode >= 500 {
		res.Status = payment.RefundPending
	}
	return res, nil
}

// run loads the merchant's account and token, then executes one flow inside
// a span.
func run[Req, Res any](ctx context.Context, s *Service, merchantID string, kind provider.ConnectorKind, flow provider.Flow, req Req,
	pick func(*provider.Connector) *provider.Integration[Req, Res]) (res Res, env *payment.ErrorEnvelope, err error) {
	ctx, span := s.tracer.Start(ctx, "connector."+string(flow), trace.WithAttributes(
		attribute.String("connector", string(kind)),
		attribute.String("flow", string(flow)),
		attribute.String("merchant_id", merchantID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if env != nil {
			span.SetAttributes(attribute.Int("connector.status_code", env.StatusCode), attribute.String("connector.error_code", env.Code))
		}
		span.End()
	}()

	c, err := s.registry.Get(kind)
	if err != nil {
		return res, nil, err
	}
	integ := pick(c)
	if integ == nil {
		return res, nil, provider.NewNotImplemented(flow, kind)
	}

	acc, err := s.account(ctx, merchantID, kind)
	if err != nil {
		return res, nil, err
	}
	var token *provider.AccessToken
	if c.NeedsAccessToken {
		token, err = s.tokens.Get(ctx, acc.ID)
		if err != nil {
			return res, nil, fmt.Errorf("load access token: %w", err)
		}
	}

	rc, err := provider.NewRequestContext(c.Converter, req)
	if err != nil {
		return res, nil, err
	}
	res, env, err = provider.Execute(ctx, s.transport, c, flow, integ, provider.Call[Req]{
		Context: rc,
		Account: acc,
		Token:   token,
		BaseURL: c.BaseURL,
	})
	if err != nil {
		log.Warn().Err(err).Str("connector", string(kind)).Str("flow", string(flow)).Str("merchant_id", merchantID).Msg("connector flow failed")
	}
	return res, env, err
}

func (s *Service) account(ctx context.Context, merchantID string, kind provider.ConnectorKind) (provider.Account, error) {
	stored, err := s.accounts.FindActive(ctx, merchantID, string(kind))
	if errors.Is(err, repositories.ErrNotFound) {
		return provider.Account{}, fmt.Errorf("%w: %s", ErrAccountNotConfigured, kind)
	}
	if err != nil {
		return provider.Account{}, fmt.Errorf("load connector account: %w", err)
	}
	auth, err := stored.AuthType(s.aesKey)
	if err != nil {
		return provider.Account{}, provider.NewFailedToObtainAuthType("credentials")
	}
	return provider.Account{ID: stored.ID, Auth: auth, Metadata: stored.Metadata}, nil
}

// StoreAccessToken records a token obtained out of band for the merchant's
// account.
func (s *Service) StoreAccessToken(ctx context.Context, merchantID string, kind provider.ConnectorKind, token provider.AccessToken) error {
	stored, err := s.accounts.FindActive(ctx, merchantID, string(kind))
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrAccountNotConfigured, kind)
	}
	if err != nil {
		return err
	}
	return s.tokens.Put(ctx, stored.ID, token)
}
