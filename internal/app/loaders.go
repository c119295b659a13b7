package app

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Faultbox/glbstage/internal/config"
	"github.com/Faultbox/glbstage/internal/loader"
	"github.com/Faultbox/glbstage/internal/worker"
)

// disconnectQuiesce is how long the MQTT client may flush on shutdown, in ms.
const disconnectQuiesce = 250

// newSceneLoader picks the loader for the configured worker mode. The
// returned cleanup is never nil.
func newSceneLoader(cfg *config.Config, dial func(config.MQTTConfig) (mqtt.Client, error)) (loader.SceneLoader, func(), error) {
	nop := func() {}

	switch cfg.Asset.Worker {
	case config.WorkerInline:
		return &worker.Loader{
			Transport: &worker.Inline{Server: worker.NewServer(cfg.Asset.Path)},
		}, nop, nil

	case config.WorkerMQTT:
		client, err := dial(cfg.MQTT)
		if err != nil {
			return nil, nop, err
		}
		l := &worker.Loader{
			Transport: worker.NewMQTT(client, cfg.MQTT.RequestTopic, cfg.MQTT.ReplyTopic),
		}
		return l, func() { client.Disconnect(disconnectQuiesce) }, nil

	default:
		return loader.GLB{}, nop, nil
	}
}
