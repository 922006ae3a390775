package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmm341/avocado-ledger/pkg/config"
)

func TestResourceNames(t *testing.T) {
	assert.Equal(t, "projects/avo/topics/ledger", TopicResourceName("avo", "ledger"))
	assert.Equal(t, "projects/avo/topics/ledger", TopicResourceName("avo", " ledger "))
	assert.Equal(t, "projects/other/topics/x", TopicResourceName("avo", "projects/other/topics/x"))
	assert.Equal(t, "projects/avo/subscriptions/ledger-sub", SubscriptionResourceName("avo", "ledger-sub"))
	assert.Empty(t, TopicResourceName("avo", ""))
	assert.Empty(t, TopicResourceName("", "ledger"))
	// a topic path is not a subscription path
	assert.Equal(t, "projects/avo/subscriptions/projects/x/topics/y", SubscriptionResourceName("avo", "projects/x/topics/y"))
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{LedgerTopic: "ledger"}, nil)
	require.ErrorIs(t, err, errProjectIDRequired)

	_, err = NewClient(context.Background(), config.GCPConfig{ProjectID: "avo"}, config.PubSubConfig{}, nil)
	require.ErrorIs(t, err, errNoTopic)
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	assert.Nil(t, c.Publisher("ledger"))
	assert.NoError(t, c.Close())
	assert.Error(t, c.Ping(context.Background()))
}
