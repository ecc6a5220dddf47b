package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/service/game"
)

func sampleRecord() game.MatchRecord {
	start := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	return game.MatchRecord{
		ID:         "m-1",
		SessionID:  "s-1",
		Mode:       domain.PlayerVsComputer,
		Difficulty: domain.Hard,
		Result:     domain.Result{Kind: domain.ResultWin, Winner: domain.Red},
		Winner:     domain.Red,
		Moves:      12,
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
	}
}

func TestNewMatchAnalyticsEvent(t *testing.T) {
	ev := NewMatchAnalyticsEvent(sampleRecord())
	assert.Equal(t, MatchAnalyticsEvent{
		Event:      MatchFinished,
		MatchID:    "m-1",
		SessionID:  "s-1",
		Mode:       "pvc",
		Difficulty: "hard",
		Result:     "win",
		Winner:     "red",
		Moves:      12,
		Duration:   90,
	}, ev)
}

func TestPublishMatchFinished(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev MatchAnalyticsEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.MatchID != "m-1" || ev.Winner != "red" {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	p := NewProducerWith(sp, "match-analytics")
	require.NoError(t, p.PublishMatchFinished(context.Background(), sampleRecord()))
	require.NoError(t, p.Close())
}

func TestPublishMatchFinishedReportsBrokerError(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerWith(sp, "match-analytics")
	err := p.PublishMatchFinished(context.Background(), sampleRecord())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestPublishSkipsCancelledContext(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	p := NewProducerWith(sp, "match-analytics")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.PublishMatchFinished(ctx, sampleRecord()), context.Canceled)
	require.NoError(t, p.Close())
}
