package machines

import (
	"math/rand"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// Selector выбирает машину для бронирования.
// Выбор среди подходящих машин случайный, чтобы нагрузка распределялась по аудитории.
type Selector struct {
	intn func(n int) int
}

// NewSelector создает селектор со случайным выбором
func NewSelector() *Selector {
	return &Selector{intn: rand.Intn}
}

// NewSelectorWithSource создает селектор с заданным источником случайности (для тестов)
func NewSelectorWithSource(intn func(n int) int) *Selector {
	return &Selector{intn: intn}
}

// Criteria требования к машине
type Criteria struct {
	Exam             *domain.Exam
	Window           domain.TimeWindow
	AccessibilityIDs []int64
}

// Eligible возвращает машины, подходящие под требования:
// исправна, не в архиве, есть нужное ПО и средства доступности, свободна на весь интервал
func Eligible(machines []*domain.ExamMachine, c Criteria) []*domain.ExamMachine {
	result := make([]*domain.ExamMachine, 0, len(machines))
	for _, m := range machines {
		if !m.IsUsable() {
			continue
		}
		if c.Exam != nil && !m.HasRequiredSoftware(c.Exam) {
			continue
		}
		if !m.HasAccessibilities(c.AccessibilityIDs) {
			continue
		}
		if m.IsReservedDuring(c.Window) {
			continue
		}
		result = append(result, m)
	}
	return result
}

// Select выбирает случайную подходящую машину. false - свободных машин нет.
func (s *Selector) Select(machines []*domain.ExamMachine, c Criteria) (*domain.ExamMachine, bool) {
	candidates := Eligible(machines, c)
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[s.intn(len(candidates))], true
}
