/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package notification

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/stagetrack/config"
	"github.com/blnkfinance/stagetrack/internal/request"
)

type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

// Notifier reports unexpected errors to the Slack webhook from the configuration.
type Notifier struct {
	webhookURL string
	project    string
}

func NewNotifier(cnf *config.Configuration) *Notifier {
	return &Notifier{
		webhookURL: cnf.Notification.Slack.WebhookUrl,
		project:    cnf.ProjectName,
	}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.webhookURL != ""
}

func (n *Notifier) slackPayload(systemError error, at time.Time) slackMessage {
	return slackMessage{Blocks: []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("Error From %s 🐞", n.project), Emoji: true}},
		{Type: "section", Fields: []slackText{{Type: "mrkdwn", Text: "*Error:*\n" + systemError.Error()}}},
		{Type: "section", Fields: []slackText{{Type: "mrkdwn", Text: "*Time:*\n" + at.Format(time.RFC822)}}},
	}}
}

// SlackNotification posts systemError to the configured webhook and waits for the reply.
func (n *Notifier) SlackNotification(systemError error) error {
	if !n.Enabled() {
		return nil
	}

	payload, err := request.ToJsonReq(n.slackPayload(systemError, time.Now()))
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, n.webhookURL, payload)
	if err != nil {
		return err
	}

	_, err = request.Call(req, nil)
	return err
}

// NotifyError logs systemError and, when Slack is configured, forwards it in the background.
func (n *Notifier) NotifyError(systemError error) {
	logrus.Error(systemError)
	if !n.Enabled() {
		return
	}

	go func(systemError error) {
		if err := n.SlackNotification(systemError); err != nil {
			logrus.Errorf("failed to send slack notification: %v", err)
		}
	}(systemError)
}
