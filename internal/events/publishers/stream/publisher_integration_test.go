//go:build integration

package stream_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"keyledger/internal/events"
	"keyledger/internal/events/publishers/stream"
	"keyledger/pkg/domain"
	"keyledger/pkg/testutil/containers"
)

type StreamSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	pub   *stream.Publisher
}

func TestStreamSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(StreamSuite))
}

func (s *StreamSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.pub = stream.New(s.redis.Client, "keyledger:test-events", stream.WithMaxLen(0))
}

func (s *StreamSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *StreamSuite) batch(from uint64, n int) []events.Event {
	pool := domain.MustParseAddress("0x00000000000000000000000000000000000000c0")
	out := make([]events.Event, n)
	for i := range out {
		out[i] = events.Event{
			ID:        uuid.New(),
			Sequence:  from + uint64(i),
			Kind:      events.KindTransfer,
			Emitter:   pool,
			Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Payload:   events.Transfer{To: pool, TokenID: from + uint64(i)},
		}
	}
	return out
}

func (s *StreamSuite) TestPublishThenTail() {
	ctx := context.Background()
	s.Require().NoError(s.pub.Publish(ctx, s.batch(1, 3)))

	got, cursor, err := s.pub.Read(ctx, "0", 2)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(uint64(1), got[0].Sequence)

	s.Require().NoError(s.pub.Publish(ctx, s.batch(4, 1)))

	rest, _, err := s.pub.Read(ctx, cursor, 10)
	s.Require().NoError(err)
	s.Require().Len(rest, 2)
	s.Equal(uint64(3), rest[0].Sequence)
	s.Equal(uint64(4), rest[1].Sequence)

	var payload events.Transfer
	s.Require().NoError(rest[1].DecodePayload(&payload))
	s.Equal(uint64(4), payload.TokenID)
}
