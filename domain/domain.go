package domain

import (
	"encoding/json"
	"fmt"
)

// DefaultTopic is the topic the calculator agent actor subscribes to.
const DefaultTopic = "CalculatorOpenAPIReActAgent"

// DefaultTask is the batch of calculations the agent is asked to run.
const DefaultTask = "Precisely calculate with available tools: 2 + 2, 5*5, 2.4 / 2, -34 + 10, and 2.9283 * 2.23234"

// Record headers follow the CloudEvents Kafka binary content mode.
const HeaderEventType = "ce_type"
const HeaderContentType = "content-type"

const EventTypeTriggerAction = "TriggerAction"
const ContentTypeJSON = "application/json"

// TaskMessage describes work for the agent. It is built once per
// publisher run and not changed afterwards.
type TaskMessage struct {
	Task string `json:"task"`
}

func NewTaskMessage() TaskMessage {
	return TaskMessage{Task: DefaultTask}
}

func (m TaskMessage) Marshal() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("serialize task message: %w", err)
	}
	return data, nil
}

// Result is the response of every arithmetic operation.
type Result struct {
	Result float64 `json:"result"`
}

type Health struct {
	Status string `json:"status"`
}

const StatusHealthy = "healthy"

// Problem is the body of every error response.
type Problem struct {
	Detail string `json:"detail"`
}
