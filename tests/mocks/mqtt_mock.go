package mocks

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"
)

// MQTTClient is a mock implementation of the mqtt.MQTTClient interface
type MQTTClient struct {
	mock.Mock
}

func (m *MQTTClient) Connect() mqtt.Token {
	args := m.Called()
	return args.Get(0).(mqtt.Token)
}

func (m *MQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	args := m.Called(topic, qos, retained, payload)
	return args.Get(0).(mqtt.Token)
}

func (m *MQTTClient) Disconnect(quiesce uint) {
	m.Called(quiesce)
}

// MQTTToken is a mock implementation of the paho mqtt.Token interface
type MQTTToken struct {
	mock.Mock
}

func (t *MQTTToken) Wait() bool {
	args := t.Called()
	return args.Bool(0)
}

func (t *MQTTToken) WaitTimeout(d time.Duration) bool {
	args := t.Called(d)
	return args.Bool(0)
}

func (t *MQTTToken) Done() <-chan struct{} {
	args := t.Called()
	return args.Get(0).(<-chan struct{})
}

func (t *MQTTToken) Error() error {
	args := t.Called()
	return args.Error(0)
}
