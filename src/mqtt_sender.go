package main

import (
	"context"
	"encoding/json"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTMessage represents an outgoing MQTT message
type MQTTMessage struct {
	Topic   string
	Payload []byte
	QoS     byte
	Retain  bool
}

// CommandReply is the JSON body published after a remote sensor command
type CommandReply struct {
	Command string `json:"command"`
	Status  int    `json:"status"`
	Output  string `json:"output"`
}

// MQTTSender wraps a channel for sending MQTT messages with helper methods
type MQTTSender struct {
	ch chan<- MQTTMessage
}

// NewMQTTSender creates a new MQTTSender wrapping the given channel
func NewMQTTSender(ch chan<- MQTTMessage) *MQTTSender {
	return &MQTTSender{ch: ch}
}

// TrySend queues msg without blocking and reports whether it fit
func (s *MQTTSender) TrySend(msg MQTTMessage) bool {
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

// Reply publishes the outcome of a remote sensor command.
// It runs on the paho callback goroutine, so a full queue drops the reply instead of stalling message delivery.
func (s *MQTTSender) Reply(topic string, reply CommandReply) bool {
	payload, _ := json.Marshal(reply)

	return s.TrySend(MQTTMessage{
		Topic:   topic,
		Payload: payload,
		QoS:     1,
		Retain:  false,
	})
}

// mqttSenderWorker publishes outgoing MQTT messages, queuing them until a client is connected
func mqttSenderWorker(
	ctx context.Context,
	outgoingChan <-chan MQTTMessage,
	clientChan <-chan mqtt.Client,
	logger *slog.Logger,
) {
	logger.Info("MQTT sender worker started")

	var client mqtt.Client
	var messageQueue []MQTTMessage

	publish := func(msg MQTTMessage) {
		token := client.Publish(msg.Topic, msg.QoS, msg.Retain, msg.Payload)
		token.Wait()
		if token.Error() != nil {
			logger.Warn("Failed to publish", "topic", msg.Topic, "error", token.Error())
		}
	}

	for {
		select {
		case newClient := <-clientChan:
			logger.Debug("MQTT sender worker received new client")
			client = newClient

			// Process any queued messages now that we have a client
			if client != nil && client.IsConnected() {
				queuedCount := len(messageQueue)
				for _, msg := range messageQueue {
					publish(msg)
				}
				messageQueue = nil
				if queuedCount > 0 {
					logger.Info("MQTT sender worker processed queued messages", "count", queuedCount)
				}
			}

		case msg := <-outgoingChan:
			if client != nil && client.IsConnected() {
				publish(msg)
			} else {
				messageQueue = append(messageQueue, msg)
				logger.Debug("MQTT sender worker queued message", "queued", len(messageQueue))
			}

		case <-ctx.Done():
			logger.Info("MQTT sender worker stopped")
			return
		}
	}
}
