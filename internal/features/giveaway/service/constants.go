package service

import "time"

const (
	// Общие константы для завершения розыгрышей
	MaxRetries          = 3                      // Максимальное количество попыток settle
	RetryDelay          = 500 * time.Millisecond // Задержка между попытками
	LockTimeout         = 30 * time.Second       // TTL быстрой блокировки в Redis
	AnnounceTimeout     = 10 * time.Second       // Таймаут публикации результатов
	StatusUpdateTimeout = 5 * time.Second        // Таймаут обновления строки статуса
)

// MaxTotalRewards ограничивает сумму мест, чтобы total_rewards помещался в INTEGER.
// Один слот ограничен тем же значением тегом validate в models.RewardDraft.
const MaxTotalRewards = 1_000_000
