package provider_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/provider"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureMail struct {
	msgs []mail.Message
	err  error
}

func (c *captureMail) Send(_ context.Context, msg mail.Message) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

func (c *captureMail) Close() error { return nil }

func delivery(channel entity.Channel, recipient string) entity.Delivery {
	return entity.Delivery{
		Channel:   channel,
		Recipient: recipient,
		Code:      "482913",
		ExpiresAt: time.Date(2025, 1, 2, 3, 9, 0, 0, time.UTC),
	}
}

func TestSMS_SendOTPThroughTextBee(t *testing.T) {
	var got struct {
		Recipients []string `json:"recipients"`
		Message    string   `json:"message"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"_id":"m1"}}`))
	}))
	defer srv.Close()

	client, err := sms.NewTextBee(sms.TextBeeConfig{APIKey: "k", DeviceID: "d", BaseURL: srv.URL})
	require.NoError(t, err)

	p := provider.NewSMS(client, instrument.NewNoop())
	assert.Equal(t, entity.DeliveryModeLive, p.Mode())

	require.NoError(t, p.SendOTP(t.Context(), delivery(entity.ChannelSMS, "+15005550006")))
	assert.Equal(t, []string{"+15005550006"}, got.Recipients)
	assert.Equal(t, "Your verification code is 482913", got.Message)
}

func TestSMS_SendOTPGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := sms.NewTextBee(sms.TextBeeConfig{APIKey: "k", DeviceID: "d", BaseURL: srv.URL})
	require.NoError(t, err)

	err = provider.NewSMS(client, instrument.NewNoop()).SendOTP(t.Context(), delivery(entity.ChannelSMS, "+15005550006"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliver sms")
}

func TestEmail_SendOTP(t *testing.T) {
	mc := &captureMail{}
	p := provider.NewEmail(mc, "noreply@example.com", "", instrument.NewNoop())
	assert.Equal(t, entity.DeliveryModeLive, p.Mode())

	require.NoError(t, p.SendOTP(t.Context(), delivery(entity.ChannelEmail, "user@example.com")))
	require.Len(t, mc.msgs, 1)

	msg := mc.msgs[0]
	assert.Equal(t, "noreply@example.com", msg.From)
	assert.Equal(t, []string{"user@example.com"}, msg.To)
	assert.Equal(t, provider.DefaultEmailSubject, msg.Subject)
	assert.Equal(t, "Your verification code is 482913", msg.TextBody)
	assert.Contains(t, msg.HTMLBody, "<strong>482913</strong>")
	assert.Contains(t, msg.HTMLBody, "03:09 UTC")
}

func TestEmail_SendOTPEscapesHTML(t *testing.T) {
	mc := &captureMail{}
	p := provider.NewEmail(mc, "noreply@example.com", "Code", instrument.NewNoop())

	d := delivery(entity.ChannelEmail, "user@example.com")
	d.Code = "<b>1</b>"
	require.NoError(t, p.SendOTP(t.Context(), d))

	assert.NotContains(t, mc.msgs[0].HTMLBody, "<b>1</b>")
	assert.Contains(t, mc.msgs[0].HTMLBody, "&lt;b&gt;1&lt;/b&gt;")
}

func TestEmail_SendOTPTransportError(t *testing.T) {
	mc := &captureMail{err: errors.New("smtp: 535 auth failed")}
	err := provider.NewEmail(mc, "", "", instrument.NewNoop()).SendOTP(t.Context(), delivery(entity.ChannelEmail, "user@example.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "535 auth failed")
}

func TestLog_SendOTP(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	p := provider.NewLog(t.Context(), entity.ChannelEmail)
	assert.Equal(t, entity.DeliveryModeLog, p.Mode())
	assert.Contains(t, buf.String(), "log-only mode")

	buf.Reset()
	require.NoError(t, p.SendOTP(t.Context(), delivery(entity.ChannelEmail, "user@example.com")))
	assert.Contains(t, buf.String(), "otp delivery in log-only mode")
	assert.Contains(t, buf.String(), `"channel":"email"`)
	assert.Contains(t, buf.String(), `"recipient":"user@example.com"`)
}
