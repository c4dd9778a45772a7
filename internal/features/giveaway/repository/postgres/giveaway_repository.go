package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

const selectGiveaway = `SELECT id, guild_id, channel_id, message_id, created_by, title, total_rewards, created_at, ended_at FROM giveaways`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.GiveawayRepository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, g *models.Giveaway, rewards []models.RewardDraft) ([]models.RewardSlot, error) {
	if len(rewards) == 0 {
		return nil, errors.New("giveaway needs at least one reward")
	}

	total := 0
	for _, rw := range rewards {
		total += rw.Amount
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO giveaways (guild_id, channel_id, message_id, created_by, title, total_rewards)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		g.GuildID, g.ChannelID, g.MessageID, g.CreatedBy, g.Title, total,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert giveaway: %w", err)
	}
	g.TotalRewards = total
	g.EndedAt = nil

	placeholders := make([]string, 0, len(rewards))
	args := make([]any, 0, len(rewards)*4)
	for i, rw := range rewards {
		n := len(args)
		placeholders = append(placeholders, fmt.Sprintf("($%d,$%d,$%d,$%d)", n+1, n+2, n+3, n+4))
		args = append(args, g.ID, i, rw.Label, rw.Amount)
	}

	rows, err := tx.Query(ctx,
		"INSERT INTO giveaway_rewards (giveaway_id, position, label, amount) VALUES "+
			strings.Join(placeholders, ",")+" RETURNING id, position",
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert rewards: %w", err)
	}

	slots := make([]models.RewardSlot, len(rewards))
	for rows.Next() {
		var id int64
		var pos int
		if err := rows.Scan(&id, &pos); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan reward id: %w", err)
		}
		slots[pos] = models.RewardSlot{
			ID:         id,
			GiveawayID: g.ID,
			Position:   pos,
			Label:      rewards[pos].Label,
			Amount:     rewards[pos].Amount,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to insert rewards: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return slots, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	return scanGiveaway(r.pool.QueryRow(ctx, selectGiveaway+` WHERE id = $1`, id))
}

func (r *postgresRepository) GetByMessage(ctx context.Context, guildID, messageID string) (*models.Giveaway, error) {
	if messageID == "" {
		return nil, repository.ErrGiveawayNotFound
	}
	return scanGiveaway(r.pool.QueryRow(ctx, selectGiveaway+` WHERE guild_id = $1 AND message_id = $2`, guildID, messageID))
}

func (r *postgresRepository) SetMessageID(ctx context.Context, id int64, messageID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE giveaways SET message_id = $2 WHERE id = $1`, id, messageID)
	if err != nil {
		return fmt.Errorf("failed to set message id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrGiveawayNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteDraft(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var found bool
	err = tx.QueryRow(ctx, `
		SELECT TRUE FROM giveaways
		WHERE id = $1 AND message_id = '' AND ended_at IS NULL
		FOR UPDATE`, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrGiveawayNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock draft: %w", err)
	}

	for _, q := range []string{
		`DELETE FROM giveaway_participants WHERE giveaway_id = $1`,
		`DELETE FROM giveaway_rewards WHERE giveaway_id = $1`,
		`DELETE FROM giveaways WHERE id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, id); err != nil {
			return fmt.Errorf("failed to delete draft: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetRewards(ctx context.Context, giveawayID int64) ([]models.RewardSlot, error) {
	return getRewards(ctx, r.pool, giveawayID)
}

func (r *postgresRepository) AddParticipant(ctx context.Context, giveawayID int64, userID string) (bool, error) {
	var joined bool
	err := r.withOpenGiveaway(ctx, giveawayID, func(tx pgx.Tx) error {
		// Re-activates a removed entry; an already active entry is left untouched.
		tag, err := tx.Exec(ctx, `
			INSERT INTO giveaway_participants (giveaway_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (giveaway_id, user_id) DO UPDATE
			SET is_removed = FALSE, joined_at = NOW(), updated_at = NOW()
			WHERE giveaway_participants.is_removed = TRUE`,
			giveawayID, userID)
		if err != nil {
			return fmt.Errorf("failed to add participant: %w", err)
		}
		joined = tag.RowsAffected() == 1
		return nil
	})
	return joined, err
}

func (r *postgresRepository) RemoveParticipant(ctx context.Context, giveawayID int64, userID string) (bool, error) {
	var left bool
	err := r.withOpenGiveaway(ctx, giveawayID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE giveaway_participants
			SET is_removed = TRUE, updated_at = NOW()
			WHERE giveaway_id = $1 AND user_id = $2 AND is_removed = FALSE`,
			giveawayID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove participant: %w", err)
		}
		left = tag.RowsAffected() == 1
		return nil
	})
	return left, err
}

// withOpenGiveaway runs fn in a transaction holding a share lock on the
// giveaway row. Settlement takes FOR UPDATE on the same row, so a participant
// write either lands before the settlement snapshot or sees the end marker.
func (r *postgresRepository) withOpenGiveaway(ctx context.Context, giveawayID int64, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var endedAt *time.Time
	err = tx.QueryRow(ctx, `SELECT ended_at FROM giveaways WHERE id = $1 FOR SHARE`, giveawayID).Scan(&endedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrGiveawayNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock giveaway: %w", err)
	}
	if endedAt != nil {
		return repository.ErrGiveawayEnded
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetActiveParticipants(ctx context.Context, giveawayID int64) ([]string, error) {
	return getActiveParticipants(ctx, r.pool, giveawayID)
}

func (r *postgresRepository) CountActiveParticipants(ctx context.Context, giveawayID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM giveaway_participants
		WHERE giveaway_id = $1 AND is_removed = FALSE`, giveawayID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) Settle(ctx context.Context, giveawayID int64, allocate models.AllocateFunc) (*models.Settlement, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock giveaway row: this is the claim, concurrent settlers block here
	g, err := scanGiveaway(tx.QueryRow(ctx, selectGiveaway+` WHERE id = $1 FOR UPDATE`, giveawayID))
	if err != nil {
		return nil, err
	}
	if g.IsEnded() {
		return nil, repository.ErrAlreadyEnded
	}

	slots, err := getRewards(ctx, tx, giveawayID)
	if err != nil {
		return nil, err
	}
	participants, err := getActiveParticipants(ctx, tx, giveawayID)
	if err != nil {
		return nil, err
	}

	results, err := allocate(slots, participants)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate winners: %w", err)
	}

	if err := insertWinners(ctx, tx, giveawayID, results); err != nil {
		return nil, err
	}

	if err := tx.QueryRow(ctx, `UPDATE giveaways SET ended_at = NOW() WHERE id = $1 RETURNING ended_at`, giveawayID).Scan(&g.EndedAt); err != nil {
		return nil, fmt.Errorf("failed to mark giveaway ended: %w", err)
	}

	// Ошибка COMMIT не говорит, применилась ли транзакция
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrCommitUncertain, err)
	}

	return &models.Settlement{Giveaway: g, Results: results}, nil
}

func (r *postgresRepository) GetResults(ctx context.Context, giveawayID int64) (*models.Settlement, error) {
	g, err := r.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if !g.IsEnded() {
		return nil, repository.ErrNotEnded
	}

	slots, err := getRewards(ctx, r.pool, giveawayID)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT reward_id, user_id FROM giveaway_winners
		WHERE giveaway_id = $1
		ORDER BY draw_rank`, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to query winners: %w", err)
	}
	defer rows.Close()

	byReward := make(map[int64][]string)
	for rows.Next() {
		var rewardID int64
		var userID string
		if err := rows.Scan(&rewardID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		byReward[rewardID] = append(byReward[rewardID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query winners: %w", err)
	}

	results := make([]models.SlotWinners, 0, len(slots))
	for _, s := range slots {
		users := byReward[s.ID]
		if users == nil {
			users = []string{}
		}
		results = append(results, models.SlotWinners{Reward: s, UserIDs: users})
	}

	return &models.Settlement{Giveaway: g, Results: results}, nil
}

// insertWinners writes all winners with one statement. Columns travel as
// arrays, so the bind parameter count does not grow with the pool.
func insertWinners(ctx context.Context, tx pgx.Tx, giveawayID int64, results []models.SlotWinners) error {
	var (
		userIDs   []string
		rewardIDs []int64
		ranks     []int32
	)
	for _, sw := range results {
		for _, uid := range sw.UserIDs {
			userIDs = append(userIDs, uid)
			rewardIDs = append(rewardIDs, sw.Reward.ID)
			ranks = append(ranks, int32(len(ranks)))
		}
	}
	if len(userIDs) == 0 {
		return nil
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO giveaway_winners (giveaway_id, user_id, reward_id, draw_rank)
		SELECT $1, w.user_id, w.reward_id, w.draw_rank
		FROM unnest($2::text[], $3::bigint[], $4::int[]) AS w (user_id, reward_id, draw_rank)
		ON CONFLICT DO NOTHING`,
		giveawayID, userIDs, rewardIDs, ranks)
	if err != nil {
		return fmt.Errorf("failed to insert winners: %w", err)
	}
	return nil
}

func getRewards(ctx context.Context, q querier, giveawayID int64) ([]models.RewardSlot, error) {
	rows, err := q.Query(ctx, `
		SELECT id, giveaway_id, position, label, amount
		FROM giveaway_rewards
		WHERE giveaway_id = $1
		ORDER BY position`, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", err)
	}
	defer rows.Close()

	var slots []models.RewardSlot
	for rows.Next() {
		var s models.RewardSlot
		if err := rows.Scan(&s.ID, &s.GiveawayID, &s.Position, &s.Label, &s.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", err)
	}
	return slots, nil
}

func getActiveParticipants(ctx context.Context, q querier, giveawayID int64) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT user_id FROM giveaway_participants
		WHERE giveaway_id = $1 AND is_removed = FALSE
		ORDER BY joined_at, user_id`, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	users := make([]string, 0)
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		users = append(users, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	return users, nil
}

func scanGiveaway(row pgx.Row) (*models.Giveaway, error) {
	var g models.Giveaway
	err := row.Scan(&g.ID, &g.GuildID, &g.ChannelID, &g.MessageID, &g.CreatedBy, &g.Title, &g.TotalRewards, &g.CreatedAt, &g.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrGiveawayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan giveaway: %w", err)
	}
	return &g, nil
}
