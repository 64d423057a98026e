// Package jsonl implements a chain-event source reading newline-delimited
// JSON events from a file. It is primarily a replay feed: recorded chain
// activity can be played back through the full chainhook pipeline without a
// live node connection.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gabapcia/hookwatch/internal/hookeval"
	"github.com/gabapcia/hookwatch/internal/hookproc"
	"github.com/gabapcia/hookwatch/internal/pkg/x/chflow"
)

const (
	// eventChannelBufferSize bounds how far the feed may read ahead of the
	// consumer.
	eventChannelBufferSize = 10

	// maxLineSize caps a single feed line (a full chain event with blocks
	// and transactions can get large).
	maxLineSize = 16 * 1024 * 1024
)

// chainEventEnvelope is the wire form of one feed line.
type chainEventEnvelope struct {
	Type             string           `json:"type"` // "blocks_applied" or "reorg"
	NewBlocks        []hookeval.Block `json:"new_blocks,omitempty"`
	BlocksToApply    []hookeval.Block `json:"blocks_to_apply,omitempty"`
	BlocksToRollback []hookeval.Block `json:"blocks_to_rollback,omitempty"`
}

// decodeChainEvent parses one feed line into a chain event.
func decodeChainEvent(line []byte) (hookeval.ChainEvent, error) {
	var envelope chainEventEnvelope
	if err := json.Unmarshal(line, &envelope); err != nil {
		return nil, err
	}

	switch envelope.Type {
	case "blocks_applied":
		return hookeval.BlocksApplied{NewBlocks: envelope.NewBlocks}, nil
	case "reorg":
		return hookeval.Reorg{
			BlocksToApply:    envelope.BlocksToApply,
			BlocksToRollback: envelope.BlocksToRollback,
		}, nil
	default:
		return nil, fmt.Errorf("unknown chain event type %q", envelope.Type)
	}
}

type source struct {
	path string
}

var _ hookproc.ChainEventSource = (*source)(nil)

// Subscribe opens the feed file and streams its events. Malformed lines are
// forwarded as SourceEvent errors and skipped; the channel closes at EOF or
// when ctx is canceled.
func (s *source) Subscribe(ctx context.Context) (<-chan hookproc.SourceEvent, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}

	eventsCh := make(chan hookproc.SourceEvent, eventChannelBufferSize)
	go func() {
		defer f.Close()
		defer close(eventsCh)

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		line := 0
		for scanner.Scan() {
			line++
			raw := scanner.Bytes()
			if len(raw) == 0 {
				continue
			}

			event, err := decodeChainEvent(raw)
			if err != nil {
				if !chflow.Send(ctx, eventsCh, hookproc.SourceEvent{Err: fmt.Errorf("feed line %d: %w", line, err)}) {
					return
				}
				continue
			}

			if !chflow.Send(ctx, eventsCh, hookproc.SourceEvent{Event: event}) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			_ = chflow.Send(ctx, eventsCh, hookproc.SourceEvent{Err: err})
		}
	}()

	return eventsCh, nil
}

// NewSource creates a JSONL chain-event source reading from path.
func NewSource(path string) *source {
	return &source{path: path}
}
