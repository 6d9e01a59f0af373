// Package card renders alarm notifications as Microsoft Teams adaptive
// cards. Pure data transformation: no I/O, deterministic for a fixed
// clock.
package card

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/events"
)

const (
	// sanitizeLimit caps sanitized display text.
	sanitizeLimit = 1000
	// defaultRegion backs console links when no region is known.
	defaultRegion = "us-east-1"

	cardSchema      = "http://adaptivecards.io/schemas/adaptive-card.json"
	cardVersion     = "1.4"
	cardContentType = "application/vnd.microsoft.card.adaptive"
)

// Style is the visual treatment for an alarm state.
type Style struct {
	Icon   string
	Colour string
	Title  string
}

var stateStyles = map[string]Style{
	events.StateAlarm:            {Icon: "🚨", Colour: "Attention", Title: "Alarm Triggered"},
	events.StateOK:               {Icon: "✅", Colour: "Good", Title: "Alarm Resolved"},
	events.StateInsufficientData: {Icon: "⚠️", Colour: "Warning", Title: "Alarm State Uncertain"},
}

var defaultStyle = Style{Icon: "❓", Colour: "Default", Title: "Alarm State Changed"}

// StyleFor returns the style for an alarm state and whether the state
// was recognised. Unknown states get the default style so source
// schema drift never drops a notification.
func StyleFor(state string) (Style, bool) {
	style, ok := stateStyles[state]
	if !ok {
		return defaultStyle, false
	}
	return style, true
}

// Options control card rendering.
type Options struct {
	// BodyLimit truncates the reason text when positive. 0 disables
	// truncation.
	BodyLimit int
	// Region is the fallback region for console links when the alarm
	// carries none.
	Region string
	// Now supplies the timestamp when the alarm has none. Defaults to
	// time.Now; injectable so rendering stays deterministic under test.
	Now func() time.Time
}

// Card is the derived chat message, kept in a flat shape until it is
// encoded into the Teams envelope. Built and discarded within one
// invocation.
type Card struct {
	Title       string
	State       string
	StateKnown  bool
	Style       Style
	Body        string
	Truncated   bool
	Description string
	Facts       []Fact
	Links       []Action
	Time        string
}

// Fact is one title/value row in the card's fact set.
type Fact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Action is an open-URL button on the card.
type Action struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Build renders an alarm notification into a Card.
func Build(alarm *events.AlarmNotification, opts Options) (*Card, error) {
	if alarm == nil {
		return nil, fmt.Errorf("%w: notification is nil", events.ErrMalformedPayload)
	}
	if err := alarm.Validate(); err != nil {
		return nil, err
	}

	style, known := StyleFor(alarm.NewStateValue)

	name := sanitizeText(alarm.AlarmName)

	description := alarm.AlarmDescription
	if description == "" {
		description = "No description provided"
	}

	reason := alarm.NewStateReason
	if reason == "" {
		reason = "No reason provided"
	}
	body, truncated := truncate(reason, opts.BodyLimit)

	region := strings.TrimSpace(alarm.Region)
	if region == "" {
		region = strings.TrimSpace(opts.Region)
	}

	changeTime := alarm.StateChangeTime
	if changeTime == "" {
		now := opts.Now
		if now == nil {
			now = time.Now
		}
		changeTime = now().UTC().Format(time.RFC3339)
	}

	accountID := alarm.AWSAccountID
	if accountID == "" {
		accountID = "000000000000"
	}

	namespace := alarm.Trigger.Namespace
	if namespace == "" {
		namespace = "N/A"
	}

	threshold := "N/A"
	if alarm.Trigger.Threshold != nil {
		threshold = strconv.FormatFloat(*alarm.Trigger.Threshold, 'f', -1, 64)
	}

	displayRegion := region
	if displayRegion == "" {
		displayRegion = "unknown"
	}

	return &Card{
		Title:       fmt.Sprintf("%s %s: %s", style.Icon, style.Title, name),
		State:       alarm.NewStateValue,
		StateKnown:  known,
		Style:       style,
		Body:        body,
		Truncated:   truncated,
		Description: sanitizeText(description),
		Facts: []Fact{
			{Title: "AWS Account ID", Value: accountID},
			{Title: "Namespace", Value: sanitizeText(namespace)},
			{Title: "Threshold", Value: threshold},
			{Title: "Region", Value: displayRegion},
		},
		Links: buildLinks(alarm, region),
		Time:  changeTime,
	}, nil
}

// buildLinks assembles the console deep link plus any explicit
// resource links. Malformed entries are skipped, never fatal.
func buildLinks(alarm *events.AlarmNotification, region string) []Action {
	links := []Action{{
		Type:  "Action.OpenUrl",
		Title: "View Alarm in CloudWatch",
		URL:   ConsoleURL(alarm.AlarmName, region),
	}}

	for _, link := range alarm.ResourceLinks {
		if !strings.HasPrefix(link.URL, "http://") && !strings.HasPrefix(link.URL, "https://") {
			continue
		}
		title := link.Title
		if title == "" {
			title = "View Resource"
		}
		links = append(links, Action{
			Type:  "Action.OpenUrl",
			Title: title,
			URL:   link.URL,
		})
	}

	return links
}

// ConsoleURL builds the CloudWatch console deep link for an alarm.
func ConsoleURL(alarmName, region string) string {
	r := strings.TrimSpace(region)
	if r == "" {
		r = defaultRegion
	}
	return fmt.Sprintf("https://%s.console.aws.amazon.com/cloudwatch/home?region=%s#alarmsV2:alarm/%s",
		r, r, url.PathEscape(alarmName))
}

// sanitizeText normalises line endings, escapes Teams markdown
// characters, and caps the length for display fields. The reason body
// is deliberately not passed through here; it is delivered verbatim.
func sanitizeText(text string) string {
	replacer := strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
	)
	sanitized := strings.TrimSpace(replacer.Replace(text))

	runes := []rune(sanitized)
	if len(runes) > sanitizeLimit {
		sanitized = string(runes[:sanitizeLimit])
	}
	return sanitized
}

// truncate cuts text to limit runes with an ellipsis marker. limit 0
// disables truncation.
func truncate(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]) + "…", true
}
