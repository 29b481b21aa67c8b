// Package notify alerts operators about operations whose outcome is unknown.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"code.pegvault.io/pegclient/config"
	"code.pegvault.io/pegclient/types"
)

const postTimeout = 10 * time.Second

type poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Slack posts a message when an operation fails with a confirmation timeout. Such a
// transaction may still be mined, so somebody has to look at it.
type Slack struct {
	client    poster
	channelID string
	enabled   bool

	wg sync.WaitGroup

	log *log.Entry
}

// NewSlack returns a notifier for cfg. A disabled notifier ignores every operation.
func NewSlack(cfg *config.SlackConfig) *Slack {
	s := &Slack{
		log: log.WithFields(log.Fields{"component": "SlackNotifier"}),
	}
	if cfg == nil || !cfg.Enabled {
		return s
	}

	s.client = slack.New(cfg.BotToken, slack.OptionAppLevelToken(cfg.AppToken))
	s.channelID = cfg.ChannelID
	s.enabled = true
	return s
}

// OperationChanged implements orchestrator.Listener. Posting happens in the background.
func (s *Slack) OperationChanged(op types.PendingOperation) {
	if !s.enabled || op.State != types.Failed || op.Err == nil || op.Err.Kind != types.KindConfirmationTimeout {
		return
	}

	message := timeoutMessage(op)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
		defer cancel()

		channel, timestamp, err := s.client.PostMessageContext(ctx, s.channelID, slack.MsgOptionText(message, false))
		if err != nil {
			s.log.WithFields(log.Fields{"operation": op.ID, "error": err}).Error("Failed to post Slack message")
			return
		}
		s.log.Debugf("Slack message successfully sent to channel %s at %s", channel, timestamp)
	}()
}

// Wait blocks until every pending message has been posted or has failed.
func (s *Slack) Wait() {
	s.wg.Wait()
}

func timeoutMessage(op types.PendingOperation) string {
	tx := "not submitted"
	if op.SubmittedTxRef != nil {
		tx = op.SubmittedTxRef.String()
	} else if op.ApprovalTxRef != nil {
		tx = op.ApprovalTxRef.String() + " (approval)"
	}

	return fmt.Sprintf(
		"%s of %s %s timed out waiting for confirmation. The transaction may still land. Tx: %s. Operation: %s",
		op.Kind, op.Amount, op.Asset, tx, op.ID,
	)
}
