package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig holds connection details for the remote command surface
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	ClientID string `mapstructure:"client_id"`
	Prefix   string `mapstructure:"prefix"`
}

// Enabled reports whether a broker is configured
func (c MQTTConfig) Enabled() bool {
	return c.Broker != ""
}

// BrokerURL returns the broker as a URL, defaulting to tcp on port 1883
func (c MQTTConfig) BrokerURL() string {
	if strings.Contains(c.Broker, "://") {
		return c.Broker
	}
	return fmt.Sprintf("tcp://%s:1883", c.Broker)
}

// CommandTopic is where remote sensor commands arrive
func (c MQTTConfig) CommandTopic() string {
	return c.Prefix + "/sensor/command"
}

// ReplyTopic is where the output of remote sensor commands is published
func (c MQTTConfig) ReplyTopic() string {
	return c.Prefix + "/sensor/reply"
}

// handleRemoteCommand runs a command payload such as "set 30" and publishes the printed output.
// Returns the reply and whether it was queued for publishing.
func handleRemoteCommand(
	payload string,
	commands *SensorCommands,
	sender *MQTTSender,
	replyTopic string,
) (CommandReply, bool) {
	args := strings.Fields(payload)
	// Accept the shell form too
	if len(args) > 0 && args[0] == "sensor" {
		args = args[1:]
	}

	var out strings.Builder
	status := commands.Run(args, &out)

	reply := CommandReply{
		Command: strings.Join(args, " "),
		Status:  status,
		Output:  strings.TrimRight(out.String(), "\n"),
	}
	return reply, sender.Reply(replyTopic, reply)
}

// mqttWorker manages the MQTT connection and runs sensor commands received on the command topic
func mqttWorker(
	ctx context.Context,
	config MQTTConfig,
	commands *SensorCommands,
	sender *MQTTSender,
	clientChan chan<- mqtt.Client,
	logger *slog.Logger,
) {
	broker := config.BrokerURL()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(5 * time.Second)

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "error", err)
	})

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info("Connected to MQTT broker", "broker", broker)

		// Send the new client to the sender worker
		select {
		case clientChan <- client:
		case <-ctx.Done():
			return
		}

		topic := config.CommandTopic()
		token := client.Subscribe(topic, 1, func(client mqtt.Client, msg mqtt.Message) {
			payload := string(msg.Payload())
			reply, queued := handleRemoteCommand(payload, commands, sender, config.ReplyTopic())
			logger.Info("Remote sensor command", "command", reply.Command, "status", reply.Status, "output", reply.Output)
			if !queued {
				logger.Warn("MQTT outgoing queue full, reply dropped", "command", reply.Command)
			}
		})

		if token.Wait() && token.Error() != nil {
			logger.Error("Failed to subscribe", "topic", topic, "error", token.Error())
		} else {
			logger.Info("Subscribed to command topic", "topic", topic)
		}
	})

	client := mqtt.NewClient(opts)

	logger.Info("Connecting to MQTT broker", "broker", broker)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		logger.Error("Failed to connect to MQTT broker", "error", token.Error())
		return
	}

	// Keep worker alive until context is done
	<-ctx.Done()

	if client.IsConnected() {
		client.Disconnect(250)
		logger.Info("Disconnected from MQTT broker")
	}
}
