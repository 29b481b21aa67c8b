package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.pegvault.io/pegclient/config"
	"code.pegvault.io/pegclient/types"
	"code.pegvault.io/pegclient/types/num"
)

type fakePoster struct {
	mu       sync.Mutex
	channels []string
}

func (f *fakePoster) PostMessageContext(_ context.Context, channelID string, _ ...slack.MsgOption) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channelID)
	return channelID, "1700000000.000100", nil
}

func timedOut() types.PendingOperation {
	ref := types.TxRef{Hash: common.HexToHash("0xabc")}
	return types.PendingOperation{
		ID:             uuid.New(),
		Kind:           types.Mint,
		Asset:          "WBTC",
		Amount:         num.MustDecimal("0.5"),
		State:          types.Failed,
		SubmittedTxRef: &ref,
		Err:            types.NewError(types.KindConfirmationTimeout),
	}
}

func TestSlack_PostsOnConfirmationTimeout(t *testing.T) {
	p := &fakePoster{}
	s := &Slack{client: p, channelID: "C123", enabled: true, log: NewSlack(nil).log}

	s.OperationChanged(timedOut())

	other := timedOut()
	other.Err = types.NewError(types.KindUserRejected)
	s.OperationChanged(other)

	running := timedOut()
	running.State = types.ExecutionSubmitted
	running.Err = nil
	s.OperationChanged(running)

	s.Wait()
	assert.Equal(t, []string{"C123"}, p.channels)
}

func TestSlack_DisabledIgnoresEverything(t *testing.T) {
	s := NewSlack(&config.SlackConfig{Enabled: false, ChannelID: "C123"})
	require.False(t, s.enabled)

	s.OperationChanged(timedOut())
	s.Wait()
}

func TestTimeoutMessage(t *testing.T) {
	msg := timeoutMessage(timedOut())
	assert.Contains(t, msg, "mint of 0.5 WBTC")
	assert.Contains(t, msg, "may still land")
	assert.Contains(t, msg, common.HexToHash("0xabc").Hex())
}
