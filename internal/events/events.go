// Package events defines the CloudWatch alarm state-change payload as
// it arrives in the SNS message body.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Alarm states emitted by CloudWatch. States outside this set are
// carried verbatim rather than rejected, so source schema drift never
// drops a notification.
const (
	StateAlarm            = "ALARM"
	StateOK               = "OK"
	StateInsufficientData = "INSUFFICIENT_DATA"
)

// ErrMalformedPayload indicates the notification is not valid JSON or
// is missing a required field. Permanent: redelivery cannot fix it.
var ErrMalformedPayload = errors.New("malformed alarm payload")

// Link is a console URL attached to the notification.
type Link struct {
	Title string `json:"Title"`
	URL   string `json:"Url"`
}

// Trigger describes the metric configuration behind the alarm.
// Threshold is a pointer so an absent value can be told apart from a
// genuine zero.
type Trigger struct {
	MetricName string   `json:"MetricName"`
	Namespace  string   `json:"Namespace"`
	Threshold  *float64 `json:"Threshold"`
}

// AlarmNotification is the alarm state-change payload. Field names
// match the JSON CloudWatch publishes to SNS.
type AlarmNotification struct {
	AlarmName        string  `json:"AlarmName"`
	AlarmDescription string  `json:"AlarmDescription"`
	AWSAccountID     string  `json:"AWSAccountId"`
	NewStateValue    string  `json:"NewStateValue"`
	OldStateValue    string  `json:"OldStateValue"`
	NewStateReason   string  `json:"NewStateReason"`
	StateChangeTime  string  `json:"StateChangeTime"`
	Region           string  `json:"Region"`
	Trigger          Trigger `json:"Trigger"`
	ResourceLinks    []Link  `json:"ResourceLinks,omitempty"`
}

// Parse decodes an SNS message body into an AlarmNotification and
// validates the required fields.
func Parse(raw []byte) (*AlarmNotification, error) {
	var n AlarmNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedPayload, err)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

// Validate checks the fields without which no meaningful card can be
// rendered. A missing reason is tolerated; the transformer substitutes
// a placeholder. NewStateValue equal to OldStateValue is legal and
// treated as an informational repeat.
func (n *AlarmNotification) Validate() error {
	if n.AlarmName == "" {
		return fmt.Errorf("%w: AlarmName is required", ErrMalformedPayload)
	}
	if n.NewStateValue == "" {
		return fmt.Errorf("%w: NewStateValue is required", ErrMalformedPayload)
	}
	return nil
}
