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

// Package events connects the mode controller to the MQTT presence topic.
package events

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/phuonguno98/statpanel/internal/config"
	"github.com/phuonguno98/statpanel/internal/mode"
)

// DefaultPort is used when the broker address has no port.
const DefaultPort = "1883"

// ErrNotConnected is returned by Echo while the broker is unreachable.
var ErrNotConnected = errors.New("mqtt client not connected")

// Handler receives inbound payloads.
type Handler interface {
	Handle(payload string) (mode.Mode, bool)
}

// Client subscribes to the presence topic and publishes echoes.
type Client struct {
	cfg       config.MQTTConfig
	broker    string
	clientID  string
	echoTopic string
	handler   Handler
	logger    *slog.Logger

	newClient  func(opts *mqtt.ClientOptions) mqtt.Client
	newBackOff func() backoff.BackOff

	client    mqtt.Client
	connected atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewClient creates an MQTT client for hostname. Nothing connects until Start.
func NewClient(cfg config.MQTTConfig, hostname string, handler Handler, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:       cfg,
		broker:    BrokerURL(cfg.Server),
		clientID:  ClientID(cfg.ClientID, hostname),
		echoTopic: EchoTopic(hostname, cfg.EchoSuffix),
		handler:   handler,
		logger:    logger,
		newClient: mqtt.NewClient,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = time.Minute
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// BrokerURL normalizes a broker address: a bare host gets the tcp scheme
// and the default port.
func BrokerURL(server string) string {
	server = strings.TrimSpace(server)
	if server == "" {
		return ""
	}
	if strings.Contains(server, "://") {
		u, err := url.Parse(server)
		if err == nil && u.Port() == "" {
			u.Host = net.JoinHostPort(u.Hostname(), DefaultPort)
			return u.String()
		}
		return server
	}
	if _, _, err := net.SplitHostPort(server); err == nil {
		return "tcp://" + server
	}
	return "tcp://" + net.JoinHostPort(server, DefaultPort)
}

// ClientID returns the configured client ID, or <hostname>_stats_display.
func ClientID(configured, hostname string) string {
	if configured != "" {
		return configured
	}
	return hostname + "_stats_display"
}

// EchoTopic returns <hostname>/<suffix>.
func EchoTopic(hostname, suffix string) string {
	if suffix == "" {
		suffix = config.DefaultEchoSuffix
	}
	return hostname + "/" + suffix
}

// Start connects in the background, retrying with exponential backoff until
// the first connection succeeds. The client library reconnects after that.
func (c *Client) Start(ctx context.Context) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.broker)
	opts.SetClientID(c.clientID)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(c.cfg.Timeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.client = c.newClient(opts)

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.connect(ctx)
	}()
}

func (c *Client) connect(ctx context.Context) {
	c.logger.Info("Connecting to MQTT broker", "broker", c.broker, "client_id", c.clientID)

	op := func() error {
		token := c.client.Connect()
		if !token.WaitTimeout(c.timeout()) {
			return errors.New("connect timed out")
		}
		return token.Error()
	}
	notify := func(err error, next time.Duration) {
		c.logger.Warn("MQTT connection failed, retrying", "error", err, "retry_in", next)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(c.newBackOff(), ctx), notify); err != nil {
		c.logger.Info("MQTT connection abandoned", "error", err)
	}
}

func (c *Client) onConnect(client mqtt.Client) {
	c.connected.Store(true)
	c.logger.Info("MQTT connected, subscribing", "topic", c.cfg.Topic)

	token := client.Subscribe(c.cfg.Topic, 0, c.onMessage)
	if token.WaitTimeout(c.timeout()) && token.Error() != nil {
		c.logger.Error("MQTT subscribe failed", "topic", c.cfg.Topic, "error", token.Error())
	}
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.connected.Store(false)
	c.logger.Warn("MQTT connection lost, will reconnect", "error", err)
}

func (c *Client) onMessage(_ mqtt.Client, msg mqtt.Message) {
	payload := string(msg.Payload())
	if _, ok := c.handler.Handle(payload); !ok {
		c.logger.Debug("Ignored MQTT payload", "topic", msg.Topic(), "payload", payload)
	}
}

// Echo publishes payload to the echo topic. Delivery failures after the
// publish is queued are logged, not returned.
func (c *Client) Echo(payload string) error {
	if c.client == nil || !c.client.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(c.echoTopic, 0, false, payload)
	go func() {
		if !token.WaitTimeout(c.timeout()) {
			c.logger.Warn("MQTT echo timed out", "topic", c.echoTopic)
			return
		}
		if err := token.Error(); err != nil {
			c.logger.Warn("MQTT echo failed", "topic", c.echoTopic, "error", err)
		}
	}()
	return nil
}

// Connected reports whether the subscription is live.
func (c *Client) Connected() bool {
	return c.connected.Load() && c.client != nil && c.client.IsConnected()
}

// EchoTopic returns the topic echoes are published to.
func (c *Client) EchoTopic() string {
	return c.echoTopic
}

// Stop abandons a pending connection attempt and disconnects.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
	c.connected.Store(false)
	c.logger.Info("MQTT client stopped")
}

func (c *Client) timeout() time.Duration {
	if c.cfg.Timeout <= 0 {
		return config.DefaultMQTTTimeout
	}
	return c.cfg.Timeout
}
