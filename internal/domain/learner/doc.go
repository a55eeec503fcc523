// Package learner содержит доменную модель ученика платформы DSAPath.
// Это ядро бизнес-логики прогресса - здесь нет внешних зависимостей,
// кроме общих доменных примитивов (shared) и каталога тем (catalog).
//
// Состав пакета:
//
//   - entity.go       - сущность Profile и value objects (XP, Level, Streak и т.д.)
//   - ledger.go       - начисление XP: бонус за серию, кривая уровней, level-up
//   - streak.go       - серия активных дней по календарным суткам UTC
//   - achievements.go - каталог достижений и их проверка
//   - repository.go   - контракты хранилища
//
// Ключевые правила домена:
//
//  1. XP никогда не уменьшается. Отрицательная база начисления приводится к нулю.
//  2. Уровень вычисляется только из XP: порог перехода с уровня n равен
//     floor(100 * 1.5^(n-1)). Одно начисление может поднять несколько уровней.
//  3. Серия считается по календарным дням UTC. Повторная активность в тот же
//     день серию не меняет, пропуск дня сбрасывает её до 1.
//  4. Достижения выдаются ровно один раз; повторная проверка уже полученного
//     достижения - no-op.
//
// Все мутации профиля идут через методы доменных сервисов (XPLedger,
// StreakTracker, AchievementEvaluator), которые возвращают результат
// изменения для слоя приложения.
package learner
