package provider

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"payconnect/internal/domain/payment"
)

// Transport performs outbound calls. Retries and timeouts belong here.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Execute runs one connector flow: build, send, then handle the response or
// render the error body. A non-2xx answer is not a Go error; it comes back
// as an envelope.
func Execute[Req, Res any](ctx context.Context, t Transport, c *Connector, flow Flow, integ *Integration[Req, Res], call Call[Req]) (Res, *payment.ErrorEnvelope, error) {
	var zero Res
	if integ == nil || integ.Build == nil || integ.Handle == nil {
		return zero, nil, NewNotImplemented(flow, c.Kind)
	}
	if call.BaseURL == "" {
		call.BaseURL = c.BaseURL
	}

	req, err := integ.Build(call)
	if err != nil {
		return zero, nil, err
	}
	req.Connector = c.Kind
	req.Flow = flow

	log.Debug().
		Str("connector", string(c.Kind)).
		Str("flow", string(flow)).
		Str("method", req.Method).
		Str("url", req.URL).
		Interface("headers", req.Headers.Masked()).
		Msg("built connector request")

	resp, err := t.Send(ctx, req)
	if err != nil {
		return zero, nil, fmt.Errorf("%s %s: %w", c.Kind, flow, err)
	}

	if !resp.IsSuccess() {
		if c.BuildError == nil {
			env := payment.NewErrorEnvelope(resp.StatusCode, "", "", nil)
			return zero, &env, nil
		}
		env, err := c.BuildError(resp)
		if err != nil {
			return zero, nil, err
		}
		log.Info().
			Str("connector", string(c.Kind)).
			Str("flow", string(flow)).
			Int("status_code", env.StatusCode).
			Str("code", env.Code).
			Msg("connector returned error")
		return zero, &env, nil
	}

	res, err := integ.Handle(call.Context.Payload(), resp)
	if err != nil {
		return zero, nil, err
	}
	ev := log.Info().
		Str("connector", string(c.Kind)).
		Str("flow", string(flow)).
		Int("status_code", resp.StatusCode)
	if sl, ok := any(res).(interface{ StatusLabel() string }); ok {
		ev = ev.Str("status", sl.StatusLabel())
	}
	ev.Msg("handled connector response")
	return res, nil, nil
}
