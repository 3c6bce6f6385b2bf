package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/events"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*eventbridge.PutEventsOutput)
	return out, args.Error(1)
}

func savedEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.MapSaved{BaseEvent: events.NewBase("s1", "alice", events.TypeMapSaved, i+1, time.Unix(1700000000, 0))}
	}
	return out
}

func TestPublisher_PublishBatchChunks(t *testing.T) {
	client := &mockClient{}
	var sizes []int
	client.On("PutEvents", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sizes = append(sizes, len(args.Get(1).(*eventbridge.PutEventsInput).Entries))
		}).
		Return(&eventbridge.PutEventsOutput{}, nil)

	p := NewPublisher(client, "mindmap-bus", nil)
	require.NoError(t, p.PublishBatch(context.Background(), savedEvents(23)))

	assert.Equal(t, []int{10, 10, 3}, sizes)
	client.AssertNumberOfCalls(t, "PutEvents", 3)
}

func TestPublisher_EntryShape(t *testing.T) {
	client := &mockClient{}
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		if len(in.Entries) != 1 {
			return false
		}
		entry := in.Entries[0]
		var detail map[string]interface{}
		if err := json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail); err != nil {
			return false
		}
		return aws.ToString(entry.EventBusName) == "mindmap-bus" &&
			aws.ToString(entry.Source) == Source &&
			aws.ToString(entry.DetailType) == events.TypeMapSaved &&
			entry.Resources[0] == "mindmap:session:s1" &&
			detail["aggregate_id"] == "s1"
	})).Return(&eventbridge.PutEventsOutput{}, nil)

	p := NewPublisher(client, "mindmap-bus", nil)
	require.NoError(t, p.Publish(context.Background(), savedEvents(1)[0]))
	client.AssertExpectations(t)
}

func TestPublisher_Failures(t *testing.T) {
	client := &mockClient{}
	client.On("PutEvents", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries: []types.PutEventsResultEntry{
			{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("try again")},
		},
	}, nil).Once()

	p := NewPublisher(client, "mindmap-bus", nil)
	err := p.Publish(context.Background(), savedEvents(1)[0])
	assert.ErrorContains(t, err, "throttled")

	err = p.Publish(context.Background(), savedEvents(1)[0])
	assert.EqualError(t, err, "1 events failed to publish")

	assert.NoError(t, p.PublishBatch(context.Background(), nil))
	client.AssertNumberOfCalls(t, "PutEvents", 2)
}
