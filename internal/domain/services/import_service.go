package services

import (
	"context"
	"strings"
	"sync"

	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
)

// Step шаг импорта или компенсирующее действие.
// Ошибки шаг записывает в накопитель, а не возвращает.
type Step func(ctx context.Context)

// ImportError прерывает многошаговый импорт после шага с ошибками
type ImportError struct {
	Errors []string
}

func (e *ImportError) Error() string {
	return strings.Join(e.Errors, ",")
}

// ImportService выполняет шаги импорта и хранит план отката.
// План выполняется в обратном порядке регистрации.
type ImportService struct {
	errors            *ErrorService
	logger            interfaces.LoggerPort
	rollBackOnFailure bool

	mu        sync.Mutex
	rollbacks []Step
}

// NewImportService создает координатор импорта
func NewImportService(errs *ErrorService, logger interfaces.LoggerPort, rollBackOnFailure bool) *ImportService {
	return &ImportService{
		errors:            errs,
		logger:            logger.WithField("component", "import_service"),
		rollBackOnFailure: rollBackOnFailure,
	}
}

// AddRollBackStep добавляет шаг в начало плана отката
func (s *ImportService) AddRollBackStep(step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollbacks = append([]Step{step}, s.rollbacks...)
}

// Execute регистрирует откат, очищает накопитель и выполняет шаг.
// Если шаг записал ошибки, при включенном откате выполняется весь план,
// затем возвращается *ImportError со списком ошибок.
func (s *ImportService) Execute(ctx context.Context, action Step, rollback Step) error {
	if rollback != nil {
		s.AddRollBackStep(rollback)
	}
	s.errors.Clear()

	action(ctx)

	if s.errors.HasErrors() && s.rollBackOnFailure {
		s.logger.WarnWithContext(ctx, "Шаг импорта завершился с ошибками, выполняется откат",
			interfaces.LogField{Key: "errors", Value: len(s.errors.Errors())},
		)
		s.CleanUp(ctx)
	}

	if s.errors.HasErrors() {
		return &ImportError{Errors: s.errors.Errors()}
	}
	return nil
}

// CleanUp выполняет план отката последовательно, начиная с последнего шага.
// Выполненный план не сохраняется.
func (s *ImportService) CleanUp(ctx context.Context) {
	s.mu.Lock()
	steps := s.rollbacks
	s.rollbacks = nil
	s.mu.Unlock()

	for i, step := range steps {
		s.logger.DebugWithContext(ctx, "Выполнение шага отката",
			interfaces.LogField{Key: "step", Value: i + 1},
			interfaces.LogField{Key: "total", Value: len(steps)},
		)
		step(ctx)
	}
}

// Discard отбрасывает план отката после успешного импорта
func (s *ImportService) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollbacks = nil
}

// Pending число зарегистрированных шагов отката
func (s *ImportService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rollbacks)
}
