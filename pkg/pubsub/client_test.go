package pubsub

import (
	"context"
	"testing"

	"github.com/Shashankphatkure/equico-app/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestTopicResourceName(t *testing.T) {
	assert.Equal(t, "projects/equico/topics/realtime", topicResourceName("equico", "realtime"))
	assert.Equal(t, "projects/other/topics/x", topicResourceName("equico", "projects/other/topics/x"))
	assert.Empty(t, topicResourceName("", "realtime"))
	assert.Empty(t, topicResourceName("equico", " "))
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{RealtimeTopic: "t"}, nil)
	assert.ErrorIs(t, err, errProjectIDRequired)

	_, err = NewClient(context.Background(), config.GCPConfig{ProjectID: "p"}, config.PubSubConfig{}, nil)
	assert.ErrorIs(t, err, errTopicRequired)
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	assert.Nil(t, c.RealtimePublisher())
	assert.Error(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}
