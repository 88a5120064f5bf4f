//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"sospeso/internal/audit"
	"sospeso/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite

	ctx      context.Context
	redpanda *containers.RedpandaContainer
}

func TestKafkaPublisherSuite(t *testing.T) {
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redpanda = containers.NewRedpandaContainer(s.T())
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	_ = s.redpanda.Container.Terminate(s.ctx)
}

func (s *KafkaPublisherSuite) TestEmitLandsOnTopic() {
	publisher, err := audit.NewKafkaPublisher(s.ctx, s.redpanda.Brokers, "sospeso.audit.test")
	s.Require().NoError(err)
	defer publisher.Close()

	event := audit.Event{
		Timestamp: time.Date(2024, 11, 2, 9, 0, 0, 0, time.UTC),
		Action:    audit.ActionApproved,
		VoucherID: "voucher-1",
		ActorID:   "admin-1",
		RequestID: "req-42",
	}
	s.Require().NoError(publisher.Emit(s.ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics("sospeso.audit.test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	s.Require().NoError(fetches.Err())

	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal("voucher-1", string(records[0].Key))

	var got audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(audit.ActionApproved, got.Action)
	s.Equal(event.VoucherID, got.VoucherID)
	s.Equal(event.ActorID, got.ActorID)
	s.True(got.Timestamp.Equal(event.Timestamp))
}

func (s *KafkaPublisherSuite) TestDefaultTopicFallback() {
	publisher, err := audit.NewKafkaPublisher(s.ctx, s.redpanda.Brokers, "")
	s.Require().NoError(err)
	defer publisher.Close()

	s.Require().NoError(publisher.Emit(s.ctx, audit.Event{
		Action:    audit.ActionIssued,
		VoucherID: "voucher-2",
		ActorID:   "admin-1",
	}))
}
