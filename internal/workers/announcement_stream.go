package workers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	go_redis "github.com/redis/go-redis/v9"

	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/features/giveaway/service"
)

const (
	fieldGiveawayID = "giveaway_id"
	fieldAttempt    = "attempt"
	fieldNotBefore  = "not_before"

	defaultBlock = 5 * time.Second
	readCount    = 10
	errorBackoff = time.Second
)

// StreamConfig names the stream and the consumer group of the retry queue.
type StreamConfig struct {
	Stream      string
	Group       string
	Consumer    string
	MaxAttempts int
	// Backoff is multiplied by the attempt number before a retry is processed.
	Backoff time.Duration
	Block   time.Duration
}

// AnnouncementStream is a Redis stream of giveaways whose results still have
// to be published.
type AnnouncementStream struct {
	rdb go_redis.UniversalClient
	cfg StreamConfig
	now func() time.Time
}

func NewAnnouncementStream(rdb go_redis.UniversalClient, cfg StreamConfig) *AnnouncementStream {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Block <= 0 {
		cfg.Block = defaultBlock
	}
	return &AnnouncementStream{rdb: rdb, cfg: cfg, now: time.Now}
}

// Enqueue schedules a publish attempt for giveawayID.
func (s *AnnouncementStream) Enqueue(ctx context.Context, giveawayID int64, attempt int) error {
	notBefore := s.now().Add(time.Duration(attempt) * s.cfg.Backoff)
	return s.rdb.XAdd(ctx, &go_redis.XAddArgs{
		Stream: s.cfg.Stream,
		Values: map[string]interface{}{
			fieldGiveawayID: strconv.FormatInt(giveawayID, 10),
			fieldAttempt:    strconv.Itoa(attempt),
			fieldNotBefore:  strconv.FormatInt(notBefore.UnixMilli(), 10),
		},
	}).Err()
}

// Reannouncer republishes committed results.
type Reannouncer interface {
	Reannounce(ctx context.Context, giveawayID int64) error
}

// AnnouncementWorker consumes the announcement stream.
type AnnouncementWorker struct {
	stream *AnnouncementStream
	target Reannouncer
}

func NewAnnouncementWorker(stream *AnnouncementStream, target Reannouncer) *AnnouncementWorker {
	return &AnnouncementWorker{
		stream: stream,
		target: target,
	}
}

// Start begins listening to the stream. Entries left pending by a previous
// run of this consumer are processed first.
func (w *AnnouncementWorker) Start(ctx context.Context) {
	if err := w.ensureGroup(ctx); err != nil {
		logger.Error().Err(err).Str("stream", w.stream.cfg.Stream).Msg("Error creating consumer group")
	}

	logger.Info().Str("stream", w.stream.cfg.Stream).Msg("Starting announcement worker...")

	if err := w.replayPending(ctx); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("Error reading pending announcements")
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Stopping announcement worker...")
			return
		default:
		}

		if _, err := w.poll(ctx, ">"); err != nil {
			if ctx.Err() != nil {
				continue
			}
			logger.Error().Err(err).Msg("Error reading from announcement stream")
			select {
			case <-ctx.Done():
			case <-time.After(errorBackoff):
			}
		}
	}
}

func (w *AnnouncementWorker) ensureGroup(ctx context.Context) error {
	cfg := w.stream.cfg
	err := w.stream.rdb.XGroupCreateMkStream(ctx, cfg.Stream, cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// replayPending walks this consumer's pending list batch by batch, starting
// each read after the last entry of the previous one. Entries that stay
// unacked are left for the next start.
func (w *AnnouncementWorker) replayPending(ctx context.Context) error {
	start := "0"
	for {
		msgs, err := w.read(ctx, start)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			return nil
		}
		if _, err := w.handle(ctx, msgs); err != nil {
			return err
		}
		start = msgs[len(msgs)-1].ID
	}
}

// poll reads and handles one batch. id ">" reads new entries and blocks,
// any other id replays pending entries after it.
func (w *AnnouncementWorker) poll(ctx context.Context, id string) (int, error) {
	msgs, err := w.read(ctx, id)
	if err != nil {
		return 0, err
	}
	return w.handle(ctx, msgs)
}

func (w *AnnouncementWorker) read(ctx context.Context, id string) ([]go_redis.XMessage, error) {
	cfg := w.stream.cfg
	args := &go_redis.XReadGroupArgs{
		Group:    cfg.Group,
		Consumer: cfg.Consumer,
		Streams:  []string{cfg.Stream, id},
		Count:    readCount,
		Block:    cfg.Block,
	}
	if id != ">" {
		args.Block = -1
	}

	streams, err := w.stream.rdb.XReadGroup(ctx, args).Result()
	if errors.Is(err, go_redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var msgs []go_redis.XMessage
	for _, st := range streams {
		msgs = append(msgs, st.Messages...)
	}
	return msgs, nil
}

func (w *AnnouncementWorker) handle(ctx context.Context, msgs []go_redis.XMessage) (int, error) {
	cfg := w.stream.cfg
	processed := 0
	for _, msg := range msgs {
		if !w.process(ctx, msg) {
			if ctx.Err() != nil {
				return processed, ctx.Err()
			}
			continue
		}
		if err := w.stream.rdb.XAck(ctx, cfg.Stream, cfg.Group, msg.ID).Err(); err != nil {
			logger.Warn().Err(err).Str("entry_id", msg.ID).Msg("Failed to ack announcement entry")
		}
		processed++
	}
	return processed, nil
}

// process handles one entry and reports whether it may be acked. An entry
// interrupted by shutdown stays pending for the next start.
func (w *AnnouncementWorker) process(ctx context.Context, msg go_redis.XMessage) bool {
	giveawayID, attempt, notBefore, ok := parseEntry(msg.Values)
	if !ok {
		logger.Warn().Str("entry_id", msg.ID).Interface("values", msg.Values).Msg("Dropping malformed announcement entry")
		return true
	}

	if wait := notBefore.Sub(w.stream.now()); wait > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
	}

	err := w.target.Reannounce(ctx, giveawayID)
	switch {
	case err == nil:
		logger.Info().Int64("giveaway_id", giveawayID).Int("attempt", attempt).Msg("Announcement retry succeeded")
		return true
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotEnded):
		logger.Warn().Err(err).Int64("giveaway_id", giveawayID).Msg("Dropping announcement for unsettled giveaway")
		return true
	case ctx.Err() != nil:
		return false
	}

	if attempt >= w.stream.cfg.MaxAttempts {
		logger.Error().
			Err(err).
			Int64("giveaway_id", giveawayID).
			Int("attempt", attempt).
			Msg("Giving up on giveaway announcement")
		return true
	}

	logger.Warn().Err(err).Int64("giveaway_id", giveawayID).Int("attempt", attempt).Msg("Announcement retry failed, requeueing")
	if err := w.stream.Enqueue(ctx, giveawayID, attempt+1); err != nil {
		logger.Error().Err(err).Int64("giveaway_id", giveawayID).Msg("Failed to requeue announcement")
		return false
	}
	return true
}

func parseEntry(values map[string]interface{}) (giveawayID int64, attempt int, notBefore time.Time, ok bool) {
	idStr, _ := values[fieldGiveawayID].(string)
	giveawayID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || giveawayID <= 0 {
		return 0, 0, time.Time{}, false
	}

	attempt = 1
	if s, ok := values[fieldAttempt].(string); ok {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			attempt = n
		}
	}

	if s, ok := values[fieldNotBefore].(string); ok {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			notBefore = time.UnixMilli(ms)
		}
	}
	return giveawayID, attempt, notBefore, true
}
