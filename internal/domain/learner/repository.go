package learner

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Контракты хранилища профилей. Реализации живут в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// ListOptions задаёт пагинацию для списочных запросов.
type ListOptions struct {
	// Limit - максимальное количество записей (0 = значение по умолчанию).
	Limit int

	// Offset - смещение от начала.
	Offset int
}

// DefaultListOptions возвращает пагинацию по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 50, Offset: 0}
}

// Normalize приводит опции к допустимым значениям.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 50
	}
	if o.Limit > 500 {
		o.Limit = 500
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// Repository определяет операции хранилища профилей учеников.
type Repository interface {
	// Create создаёт профиль нового ученика.
	// Возвращает ErrLearnerAlreadyExists, если профиль уже существует.
	Create(ctx context.Context, profile *Profile) error

	// GetByID возвращает профиль по идентификатору ученика.
	// Возвращает ErrLearnerNotFound, если профиль не найден.
	GetByID(ctx context.Context, id LearnerID) (*Profile, error)

	// Update сохраняет изменённый профиль.
	// Возвращает ErrLearnerNotFound, если профиль не найден.
	Update(ctx context.Context, profile *Profile) error

	// GetAll возвращает профили с пагинацией, упорядоченные по дате создания.
	GetAll(ctx context.Context, opts ListOptions) ([]*Profile, error)

	// Count возвращает общее количество профилей.
	Count(ctx context.Context) (int, error)

	// Exists проверяет существование профиля.
	Exists(ctx context.Context, id LearnerID) (bool, error)

	// FindWithActiveStreak возвращает профили с непустой серией, у которых
	// последняя активность была раньше указанной даты. Используется
	// фоновым сканером сломанных серий.
	FindWithActiveStreak(ctx context.Context, lastActiveBefore time.Time) ([]*Profile, error)
}
