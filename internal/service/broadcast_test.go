package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeSender records deliveries and fails for configured chat ids.
type fakeSender struct {
	sent    []int64
	texts   map[int64]string
	failing map[int64]bool
	block   map[int64]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		texts:   map[int64]string{},
		failing: map[int64]bool{},
		block:   map[int64]bool{},
	}
}

func (f *fakeSender) SendTo(ctx context.Context, chatID int64, text string) error {
	if f.block[chatID] {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.failing[chatID] {
		return errors.New("blocked by user")
	}
	f.sent = append(f.sent, chatID)
	f.texts[chatID] = text
	return nil
}

func TestBroadcastCountsAndAttemptsAll(t *testing.T) {
	sender := newFakeSender()
	sender.failing[200] = true
	b := NewBroadcaster(sender, time.Second)

	ids := []int64{100, 200, 300}
	sent, failed := b.Broadcast(context.Background(), ids, func(int64) string { return "привіт" })

	require.Equal(t, 2, sent)
	require.Equal(t, 1, failed)
	// the failure did not abort the remaining iteration
	require.Equal(t, []int64{100, 300}, sender.sent)
	require.Equal(t, "привіт", sender.texts[300])
}

func TestBroadcastEmptyRegistry(t *testing.T) {
	b := NewBroadcaster(newFakeSender(), time.Second)
	sent, failed := b.Broadcast(context.Background(), nil, func(int64) string { return "x" })
	require.Zero(t, sent)
	require.Zero(t, failed)
}

func TestBroadcastRendersPerRecipient(t *testing.T) {
	sender := newFakeSender()
	b := NewBroadcaster(sender, time.Second)

	sent, _ := b.Broadcast(context.Background(), []int64{1, 2}, func(id int64) string {
		return fmt.Sprintf("msg-%d", id)
	})
	require.Equal(t, 2, sent)
	require.Equal(t, "msg-1", sender.texts[1])
	require.Equal(t, "msg-2", sender.texts[2])
}

func TestBroadcastTimeoutCountsAsFailure(t *testing.T) {
	sender := newFakeSender()
	sender.block[5] = true
	b := NewBroadcaster(sender, 20*time.Millisecond)

	sent, failed := b.Broadcast(context.Background(), []int64{5, 6}, func(int64) string { return "x" })
	require.Equal(t, 1, sent)
	require.Equal(t, 1, failed)
	require.Equal(t, []int64{6}, sender.sent)
}
