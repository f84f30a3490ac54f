/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuonguno98/statpanel/internal/config"
	"github.com/phuonguno98/statpanel/internal/mode"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	payload string
}

// fakeBroker implements mqtt.Client in memory.
type fakeBroker struct {
	mu          sync.Mutex
	opts        *mqtt.ClientOptions
	failFirst   int32
	attempts    atomic.Int32
	connected   atomic.Bool
	subscribed  map[string]mqtt.MessageHandler
	published   []published
	disconnects int
}

func newFakeBroker(failFirst int32) *fakeBroker {
	return &fakeBroker{failFirst: failFirst, subscribed: map[string]mqtt.MessageHandler{}}
}

func (b *fakeBroker) IsConnected() bool { return b.connected.Load() }
func (b *fakeBroker) IsConnectionOpen() bool { return b.connected.Load() }

func (b *fakeBroker) Connect() mqtt.Token {
	if b.attempts.Add(1) <= b.failFirst {
		return &fakeToken{err: errors.New("connection refused")}
	}
	b.connected.Store(true)
	if b.opts.OnConnect != nil {
		b.opts.OnConnect(b)
	}
	return &fakeToken{}
}

func (b *fakeBroker) Disconnect(uint) {
	b.mu.Lock()
	b.disconnects++
	b.mu.Unlock()
	b.connected.Store(false)
}

func (b *fakeBroker) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	b.mu.Lock()
	b.published = append(b.published, published{topic: topic, payload: payload.(string)})
	b.mu.Unlock()
	return &fakeToken{}
}

func (b *fakeBroker) Subscribe(topic string, _ byte, callback mqtt.MessageHandler) mqtt.Token {
	b.mu.Lock()
	b.subscribed[topic] = callback
	b.mu.Unlock()
	return &fakeToken{}
}

func (b *fakeBroker) SubscribeMultiple(map[string]byte, mqtt.MessageHandler) mqtt.Token {
	return &fakeToken{}
}

func (b *fakeBroker) Unsubscribe(...string) mqtt.Token { return &fakeToken{} }
func (b *fakeBroker) AddRoute(string, mqtt.MessageHandler) {}
func (b *fakeBroker) OptionsReader() mqtt.ClientOptionsReader { return mqtt.ClientOptionsReader{} }

// deliver sends payload to the subscriber of topic.
func (b *fakeBroker) deliver(t *testing.T, topic, payload string) {
	t.Helper()
	b.mu.Lock()
	handler := b.subscribed[topic]
	b.mu.Unlock()
	require.NotNil(t, handler, "nothing subscribed to %s", topic)
	handler(b, &fakeMessage{topic: topic, payload: []byte(payload)})
}

func (b *fakeBroker) Published() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]published(nil), b.published...)
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool { return false }
func (m *fakeMessage) Qos() byte { return 0 }
func (m *fakeMessage) Retained() bool { return false }
func (m *fakeMessage) Topic() string { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte { return m.payload }
func (m *fakeMessage) Ack() {}

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Server:     "broker.local",
		Topic:      "home/office/motion",
		EchoSuffix: config.DefaultEchoSuffix,
		Timeout:    time.Second,
	}
}

func newTestClient(broker *fakeBroker, handler Handler) *Client {
	c := NewClient(testConfig(), "pi", handler, discardLogger())
	c.newClient = func(opts *mqtt.ClientOptions) mqtt.Client {
		broker.opts = opts
		return broker
	}
	c.newBackOff = func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}
	return c
}

func TestBrokerURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"broker.local", "tcp://broker.local:1883"},
		{"broker.local:1884", "tcp://broker.local:1884"},
		{"10.0.0.2", "tcp://10.0.0.2:1883"},
		{"tcp://broker.local", "tcp://broker.local:1883"},
		{"ssl://broker.local:8883", "ssl://broker.local:8883"},
		{"  broker.local ", "tcp://broker.local:1883"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BrokerURL(tt.in), "BrokerURL(%q)", tt.in)
	}
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "pi_stats_display", ClientID("", "pi"))
	assert.Equal(t, "custom", ClientID("custom", "pi"))
	assert.Equal(t, "pi/stats_display", EchoTopic("pi", ""))
	assert.Equal(t, "pi/ack", EchoTopic("pi", "ack"))
}

func TestClient_ConnectRetriesThenSubscribes(t *testing.T) {
	broker := newFakeBroker(2)
	ctrl := mode.NewController(nil, discardLogger())
	c := newTestClient(broker, ctrl)

	c.Start(context.Background())
	defer c.Stop()

	require.Eventually(t, c.Connected, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), broker.attempts.Load())
	assert.Equal(t, "pi_stats_display", broker.opts.ClientID)
	require.Len(t, broker.opts.Servers, 1)
	assert.Equal(t, "tcp://broker.local:1883", broker.opts.Servers[0].String())
}

func TestClient_PayloadDrivesControllerAndEchoes(t *testing.T) {
	broker := newFakeBroker(0)
	ctrl := mode.NewController(nil, discardLogger())
	c := newTestClient(broker, ctrl)
	ctrl.SetEchoer(c)

	c.Start(context.Background())
	defer c.Stop()
	require.Eventually(t, c.Connected, time.Second, 5*time.Millisecond)

	broker.deliver(t, "home/office/motion", "0")
	assert.Equal(t, mode.Idle, ctrl.Current())

	broker.deliver(t, "home/office/motion", "garbage")
	assert.Equal(t, mode.Idle, ctrl.Current())

	broker.deliver(t, "home/office/motion", "1\n")
	assert.Equal(t, mode.Stats, ctrl.Current())

	assert.Equal(t, []published{
		{topic: "pi/stats_display", payload: "0"},
		{topic: "pi/stats_display", payload: "1"},
	}, broker.Published())
}

func TestClient_EchoWhileDisconnected(t *testing.T) {
	c := NewClient(testConfig(), "pi", mode.NewController(nil, discardLogger()), discardLogger())
	assert.ErrorIs(t, c.Echo("1"), ErrNotConnected)
}

func TestClient_StopAbandonsRetries(t *testing.T) {
	broker := newFakeBroker(1 << 30)
	c := newTestClient(broker, mode.NewController(nil, discardLogger()))

	c.Start(context.Background())
	require.Eventually(t, func() bool { return broker.attempts.Load() > 2 }, time.Second, time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
	assert.False(t, c.Connected())
}

func TestClient_StopDisconnects(t *testing.T) {
	broker := newFakeBroker(0)
	c := newTestClient(broker, mode.NewController(nil, discardLogger()))
	c.Start(context.Background())
	require.Eventually(t, c.Connected, time.Second, 5*time.Millisecond)

	c.Stop()
	assert.Equal(t, 1, broker.disconnects)
	assert.False(t, c.Connected())
}
