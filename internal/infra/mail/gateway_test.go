package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahmar7/betabase-sub002/internal/entity"
)

// fakeProvider scripts one provider rung of the fallback chain.
type fakeProvider struct {
	name       string
	configured bool
	err        error
	messageID  string
	calls      int
}

func (p *fakeProvider) Name() string     { return p.name }
func (p *fakeProvider) Configured() bool { return p.configured }

func (p *fakeProvider) Send(ctx context.Context, msg EmailMessage) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.messageID, nil
}

func TestGatewayFirstSuccessWins(t *testing.T) {
	first := &fakeProvider{name: "sendgrid", configured: true, messageID: "sg-1"}
	second := &fakeProvider{name: "mailjet", configured: true, messageID: "mj-1"}

	g := NewGateway(first, second)
	res, err := g.Send(context.Background(), EmailMessage{To: "a@b.com"})

	assert.NoError(t, err)
	assert.Equal(t, "sendgrid", res.Provider)
	assert.Equal(t, "sg-1", res.MessageID)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "later providers must not be attempted after a success")
}

func TestGatewayFallsThroughInOrder(t *testing.T) {
	first := &fakeProvider{name: "sendgrid", configured: true, err: errors.New("status 429: too many requests")}
	second := &fakeProvider{name: "mailjet", configured: true, err: errors.New("connection refused")}
	third := &fakeProvider{name: "smtp", configured: true, messageID: ""}

	g := NewGateway(first, second, third)
	res, err := g.Send(context.Background(), EmailMessage{To: "a@b.com"})

	assert.NoError(t, err)
	assert.Equal(t, "smtp", res.Provider)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 1, third.calls)
}

func TestGatewaySkipsUnconfiguredProviders(t *testing.T) {
	off := &fakeProvider{name: "sendgrid", configured: false, err: errors.New("must not be called")}
	on := &fakeProvider{name: "smtp", configured: true, messageID: "ok"}

	g := NewGateway(off, on)
	res, err := g.Send(context.Background(), EmailMessage{To: "a@b.com"})

	assert.NoError(t, err)
	assert.Equal(t, "smtp", res.Provider)
	assert.Equal(t, 0, off.calls)
}

func TestGatewayAllProvidersFail(t *testing.T) {
	first := &fakeProvider{name: "sendgrid", configured: true, err: errors.New("status 500: internal error")}
	second := &fakeProvider{name: "mailjet", configured: true, err: errors.New("rate limit exceeded")}

	g := NewGateway(first, second)
	_, err := g.Send(context.Background(), EmailMessage{To: "a@b.com"})

	assert.Error(t, err)
	var de *DeliveryError
	assert.ErrorAs(t, err, &de)
	// classified by the last rung attempted
	assert.Equal(t, entity.ErrorTypeRateLimit, de.Kind)
	assert.True(t, de.Retryable)
	assert.Len(t, de.Attempts, 2)
	assert.Equal(t, "sendgrid", de.Attempts[0].Provider)
	assert.Equal(t, "mailjet", de.Attempts[1].Provider)
	assert.Contains(t, de.Error(), "all providers failed")
}

func TestGatewayNoProviderConfigured(t *testing.T) {
	off1 := &fakeProvider{name: "sendgrid", configured: false}
	off2 := &fakeProvider{name: "smtp", configured: false}

	g := NewGateway(off1, off2)
	_, err := g.Send(context.Background(), EmailMessage{To: "a@b.com"})

	assert.Error(t, err)
	var de *DeliveryError
	assert.ErrorAs(t, err, &de)
	assert.False(t, de.Retryable)
	assert.Empty(t, de.Attempts)
	assert.Equal(t, 0, off1.calls)
	assert.Equal(t, 0, off2.calls)
}
