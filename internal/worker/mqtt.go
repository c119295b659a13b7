package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/Faultbox/glbstage/internal/config"
	"github.com/Faultbox/glbstage/internal/logger"
)

// qos for both topics. Requests and replies must arrive exactly once.
const qos = 2

// ErrNotConnected is returned when the broker connection is down.
var ErrNotConnected = errors.New("mqtt client not connected")

// Dial connects to the broker described by cfg.
func Dial(cfg config.MQTTConfig) (mqtt.Client, error) {
	log := logger.Named("mqtt")

	options := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Info("connected", zap.String("broker", cfg.Broker))
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn("connection lost", zap.Error(err))
		})

	client := mqtt.NewClient(options)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("connecting to %s: timed out after %s", cfg.Broker, cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Broker, err)
	}
	return client, nil
}

// MQTT sends requests to a remote worker through a broker.
type MQTT struct {
	client       mqtt.Client
	requestTopic string
	replyTopic   string

	mu sync.Mutex
}

var _ Transport = (*MQTT)(nil)

// NewMQTT creates a transport publishing on requestTopic and listening for
// the reply on replyTopic.
func NewMQTT(client mqtt.Client, requestTopic, replyTopic string) *MQTT {
	return &MQTT{client: client, requestTopic: requestTopic, replyTopic: replyTopic}
}

// Request subscribes to the reply topic, publishes req and returns a channel
// for the first reply. The subscription ends after that reply or when ctx is done.
func (t *MQTT) Request(ctx context.Context, req Request) (<-chan Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.client.IsConnected() {
		return nil, ErrNotConnected
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	out := make(chan Response, 1)
	delivered := make(chan struct{})
	var once sync.Once

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		var resp Response
		if err := json.Unmarshal(msg.Payload(), &resp); err != nil {
			resp = Response{Error: fmt.Sprintf("decoding reply: %v", err)}
		}
		once.Do(func() {
			out <- resp
			close(delivered)
		})
	}

	if err := wait(ctx, t.client.Subscribe(t.replyTopic, qos, handler)); err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", t.replyTopic, err)
	}
	if err := wait(ctx, t.client.Publish(t.requestTopic, qos, false, payload)); err != nil {
		t.client.Unsubscribe(t.replyTopic)
		return nil, fmt.Errorf("publishing to %s: %w", t.requestTopic, err)
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-delivered:
		}
		t.client.Unsubscribe(t.replyTopic)
	}()

	return out, nil
}

// ServeMQTT answers requests arriving on requestTopic until ctx is done.
func ServeMQTT(ctx context.Context, client mqtt.Client, srv *Server, requestTopic, replyTopic string) error {
	log := logger.Named("worker")

	handler := func(c mqtt.Client, msg mqtt.Message) {
		var req Request
		if err := json.Unmarshal(msg.Payload(), &req); err != nil {
			log.Warn("ignoring malformed request", zap.String("topic", msg.Topic()), zap.Error(err))
			return
		}
		log.Info("load requested", zap.String("topic", msg.Topic()))

		// Parsing can take a while; keep the client's message router free.
		go func() {
			resp := srv.Handle(ctx, req)
			payload, err := json.Marshal(resp)
			if err != nil {
				log.Error("encoding reply", zap.Error(err))
				return
			}
			if err := wait(ctx, c.Publish(replyTopic, qos, false, payload)); err != nil {
				log.Error("publishing reply", zap.String("topic", replyTopic), zap.Error(err))
			}
		}()
	}

	if err := wait(ctx, client.Subscribe(requestTopic, qos, handler)); err != nil {
		return fmt.Errorf("subscribing to %s: %w", requestTopic, err)
	}
	log.Info("serving", zap.String("topic", requestTopic))

	<-ctx.Done()
	client.Unsubscribe(requestTopic).WaitTimeout(time.Second)
	return nil
}

// wait blocks until the token completes or ctx is done.
func wait(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
